// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package repair

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// RegexFix is a targeted substitution: Pattern is applied to the content
// and matches are replaced with Replacement. Patterns are PCRE-style,
// which is what LLMs produce when asked for a regex.
type RegexFix struct {
	Pattern     string
	Replacement string

	// Flags holds regex options: "ignorecase"/"i", "multiline"/"m",
	// "dotall"/"s". Unknown flags are ignored.
	Flags []string

	// ReplaceAll substitutes every match instead of only the first.
	ReplaceAll bool
}

// FullReplacement swaps the entire file content.
type FullReplacement struct {
	Content string
}

// FixSuggestion is the parsed form of the LLM's reply: exactly one of
// Regex or Replace is set. Explanation is informational only; it is
// logged, never acted on.
type FixSuggestion struct {
	Regex       *RegexFix
	Replace     *FullReplacement
	Explanation string
}

// Kind names the populated variant for logging.
func (f FixSuggestion) Kind() string {
	if f.Regex != nil {
		return "regex"
	}
	if f.Replace != nil {
		return "replacement"
	}
	return "empty"
}

// fixResponse is the wire shape the LLM is instructed to return.
//
// Replacement is a pointer so that "replacement present but empty" can be
// told apart from "replacement absent": an empty full replacement is a
// legal (if useless) suggestion, a missing one is a malformed reply.
type fixResponse struct {
	RegexPattern string   `json:"regex_pattern"`
	Replacement  *string  `json:"replacement"`
	Flags        []string `json:"flags"`
	ReplaceAll   bool     `json:"replace_all"`
	Explanation  string   `json:"explanation"`
}

// fenceOpenPattern matches a leading markdown fence with an optional
// language tag, e.g. "```json\n".
var fenceOpenPattern = regexp.MustCompile("^```[a-zA-Z0-9]*\n?")

// stripMarkdownFences removes leading and trailing ``` blocks that models
// habitually wrap around JSON replies despite instructions not to.
func stripMarkdownFences(text string) string {
	text = strings.TrimSpace(text)
	text = fenceOpenPattern.ReplaceAllString(text, "")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

// ParseFixSuggestion parses a raw LLM reply into a FixSuggestion.
//
// The reply must be a JSON object matching exactly one variant:
//
//	{"regex_pattern": "...", "replacement": "...", ...}  -> RegexFix
//	{"replacement": "..."}                               -> FullReplacement
//
// Anything else (unparseable text, missing keys) fails with
// ErrMalformedResponse. Markdown fences are stripped before parsing.
func ParseFixSuggestion(raw string) (FixSuggestion, error) {
	cleaned := stripMarkdownFences(raw)

	var resp fixResponse
	if err := json.Unmarshal([]byte(cleaned), &resp); err != nil {
		return FixSuggestion{}, fmt.Errorf("%w: reply is not valid JSON: %w", ErrMalformedResponse, err)
	}

	switch {
	case resp.RegexPattern != "" && resp.Replacement != nil:
		return FixSuggestion{
			Regex: &RegexFix{
				Pattern:     resp.RegexPattern,
				Replacement: *resp.Replacement,
				Flags:       resp.Flags,
				ReplaceAll:  resp.ReplaceAll,
			},
			Explanation: resp.Explanation,
		}, nil
	case resp.RegexPattern == "" && resp.Replacement != nil:
		return FixSuggestion{
			Replace:     &FullReplacement{Content: *resp.Replacement},
			Explanation: resp.Explanation,
		}, nil
	default:
		return FixSuggestion{}, fmt.Errorf("%w: reply does not match a known fix shape", ErrMalformedResponse)
	}
}
