// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package repair

import (
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/AleutianAI/jsonmend/pkg/logging"
)

// Applier turns a FixSuggestion into new content.
//
// It never fails: malformed patterns, compile errors, and non-matching
// regexes all fall back to returning the input unchanged with
// changed=false, so the loop detects stagnation instead of crashing.
type Applier struct {
	log *logging.Logger
}

// NewApplier creates an Applier.
func NewApplier(log *logging.Logger) *Applier {
	return &Applier{log: log}
}

// Apply produces new content from a suggestion.
//
// # Inputs
//
//   - content: The current file content
//   - fix: The suggestion; exactly one variant is expected to be set
//
// # Outputs
//
//   - string: The new content, or the input unchanged on any failure
//   - bool: Whether the content actually changed
func (a *Applier) Apply(content string, fix FixSuggestion) (string, bool) {
	switch {
	case fix.Regex != nil:
		return a.applyRegex(content, fix.Regex)
	case fix.Replace != nil:
		changed := fix.Replace.Content != content
		a.log.Debug("applied full replacement", "changed", changed)
		return fix.Replace.Content, changed
	default:
		a.log.Warn("empty fix suggestion, content unchanged")
		return content, false
	}
}

func (a *Applier) applyRegex(content string, fix *RegexFix) (string, bool) {
	re, err := regexp2.Compile(fix.Pattern, regexOptions(fix.Flags))
	if err != nil {
		a.log.Warn("fix pattern does not compile, content unchanged",
			"pattern", fix.Pattern, "error", err)
		return content, false
	}

	count := 1
	if fix.ReplaceAll {
		count = -1
	}
	newContent, err := re.Replace(content, fix.Replacement, -1, count)
	if err != nil {
		// regexp2 can fail at match time (e.g. backtracking limits)
		a.log.Warn("fix pattern failed to apply, content unchanged",
			"pattern", fix.Pattern, "error", err)
		return content, false
	}
	if newContent == content {
		a.log.Warn("fix pattern matched nothing, content unchanged", "pattern", fix.Pattern)
		return content, false
	}
	a.log.Debug("applied regex fix", "pattern", fix.Pattern, "replace_all", fix.ReplaceAll)
	return newContent, true
}

// regexOptions maps suggestion flags to regexp2 options. Flags use the
// long names from the prompt contract or their single-letter forms.
func regexOptions(flags []string) regexp2.RegexOptions {
	opts := regexp2.None
	for _, flag := range flags {
		switch strings.ToLower(strings.TrimSpace(flag)) {
		case "ignorecase", "i":
			opts |= regexp2.IgnoreCase
		case "multiline", "m":
			opts |= regexp2.Multiline
		case "dotall", "s":
			opts |= regexp2.Singleline
		}
	}
	return opts
}
