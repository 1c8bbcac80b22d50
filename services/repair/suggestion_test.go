// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package repair

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFixSuggestion_RegexVariant(t *testing.T) {
	raw := `{"regex_pattern": ",\\s*}", "replacement": "}", "flags": ["multiline"], "replace_all": true, "explanation": "drop trailing comma"}`

	fix, err := ParseFixSuggestion(raw)
	require.NoError(t, err)
	require.NotNil(t, fix.Regex)
	assert.Nil(t, fix.Replace)
	assert.Equal(t, `,\s*}`, fix.Regex.Pattern)
	assert.Equal(t, "}", fix.Regex.Replacement)
	assert.Equal(t, []string{"multiline"}, fix.Regex.Flags)
	assert.True(t, fix.Regex.ReplaceAll)
	assert.Equal(t, "drop trailing comma", fix.Explanation)
	assert.Equal(t, "regex", fix.Kind())
}

func TestParseFixSuggestion_ReplacementVariant(t *testing.T) {
	raw := `{"replacement": "{\"a\": 1}", "explanation": "rewrote the file"}`

	fix, err := ParseFixSuggestion(raw)
	require.NoError(t, err)
	require.NotNil(t, fix.Replace)
	assert.Nil(t, fix.Regex)
	assert.Equal(t, `{"a": 1}`, fix.Replace.Content)
	assert.Equal(t, "replacement", fix.Kind())
}

func TestParseFixSuggestion_FencedReply(t *testing.T) {
	raw := "```json\n{\"replacement\": \"{}\"}\n```"

	fix, err := ParseFixSuggestion(raw)
	require.NoError(t, err)
	require.NotNil(t, fix.Replace)
	assert.Equal(t, "{}", fix.Replace.Content)
}

func TestParseFixSuggestion_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"plain prose", "Sorry, I can't help with that."},
		{"empty object", "{}"},
		{"pattern without replacement", `{"regex_pattern": ",\\s*}"}`},
		{"unrelated keys", `{"answer": 42}`},
		{"empty reply", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFixSuggestion(tt.raw)
			assert.ErrorIs(t, err, ErrMalformedResponse)
		})
	}
}

func TestParseFixSuggestion_EmptyReplacementIsLegal(t *testing.T) {
	// "replacement present but empty" is a distinct case from "absent"
	fix, err := ParseFixSuggestion(`{"replacement": ""}`)
	require.NoError(t, err)
	require.NotNil(t, fix.Replace)
	assert.Equal(t, "", fix.Replace.Content)
}

func TestStripMarkdownFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no fences", `{"a": 1}`, `{"a": 1}`},
		{"json fence", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"bare fence", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"surrounding whitespace", "  \n```json\n{}\n```  ", "{}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripMarkdownFences(tt.in))
		})
	}
}
