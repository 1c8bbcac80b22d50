// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package repair

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/AleutianAI/jsonmend/pkg/logging"
)

// DefaultLintCommand is the preferred external JSON lint tool.
const DefaultLintCommand = "jsonlint-php"

// ErrStrategyUnavailable marks a validation strategy that cannot run in
// the current environment (missing binary, spawn failure). It is never
// surfaced as a content problem; the validator falls through to the next
// strategy.
var ErrStrategyUnavailable = errors.New("validation strategy unavailable")

// ValidationStrategy is one way of deciding whether content is valid JSON.
//
// Validate returns (nil, nil) for valid content, a Diagnostic for invalid
// content, and an error wrapping ErrStrategyUnavailable when the strategy
// itself cannot run.
type ValidationStrategy interface {
	Name() string
	Validate(ctx context.Context, content string) (*Diagnostic, error)
}

// -----------------------------------------------------------------------------
// Validator
// -----------------------------------------------------------------------------

// Validator decides whether content is valid JSON using an ordered list of
// strategies. Strategies are tried in sequence and the first available one
// wins; exactly one strategy's verdict is used per call. Unavailability of
// the preferred tool silently triggers the fallback.
type Validator struct {
	strategies []ValidationStrategy
	log        *logging.Logger
}

// NewValidator builds the standard strategy chain: the external lint tool
// first, the builtin parser as fallback. An empty lintCommand selects
// DefaultLintCommand.
func NewValidator(pm ProcessManager, lintCommand string, log *logging.Logger) *Validator {
	if lintCommand == "" {
		lintCommand = DefaultLintCommand
	}
	return &Validator{
		strategies: []ValidationStrategy{
			&LintToolStrategy{pm: pm, command: lintCommand},
			&BuiltinStrategy{},
		},
		log: log,
	}
}

// NewValidatorWithStrategies builds a Validator over an explicit strategy
// chain. Used by tests and by callers that bring their own tools.
func NewValidatorWithStrategies(log *logging.Logger, strategies ...ValidationStrategy) *Validator {
	return &Validator{strategies: strategies, log: log}
}

// Validate returns nil when content is valid JSON, or a Diagnostic
// describing the first available strategy's verdict.
func (v *Validator) Validate(ctx context.Context, content string) *Diagnostic {
	for _, s := range v.strategies {
		diag, err := s.Validate(ctx, content)
		if err != nil {
			// Environment condition, not a content error. Fall through.
			v.log.Debug("validation strategy unavailable, falling back",
				"strategy", s.Name(), "error", err)
			continue
		}
		if diag == nil {
			v.log.Debug("content is valid JSON", "strategy", s.Name())
		} else {
			v.log.Debug("content is invalid JSON", "strategy", s.Name(), "message", diag.Message)
		}
		return diag
	}
	// The builtin strategy never reports unavailable, so this is only
	// reachable with a custom all-unavailable chain.
	v.log.Warn("no validation strategy available, treating content as invalid")
	return &Diagnostic{
		Source:  SourceJSONValidator,
		Message: "no validation strategy available",
	}
}

// -----------------------------------------------------------------------------
// Lint Tool Strategy
// -----------------------------------------------------------------------------

// lintPositionPattern extracts "line N" / "line N, column M" style
// locations from lint tool output.
var lintPositionPattern = regexp.MustCompile(`(?i)line\s+(\d+)(?:\s*,?\s*col(?:umn)?\s*(\d+))?`)

// LintToolStrategy validates JSON by invoking an external lint binary
// over a temporary copy of the content. The tool is expected to exit zero
// for valid JSON and nonzero with diagnostics on stdout/stderr otherwise.
type LintToolStrategy struct {
	pm      ProcessManager
	command string
}

func (s *LintToolStrategy) Name() string { return s.command }

func (s *LintToolStrategy) Validate(ctx context.Context, content string) (*Diagnostic, error) {
	tmp, err := os.CreateTemp("", "jsonmend-*.json")
	if err != nil {
		return nil, fmt.Errorf("%w: creating temp file: %w", ErrStrategyUnavailable, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("%w: writing temp file: %w", ErrStrategyUnavailable, err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("%w: closing temp file: %w", ErrStrategyUnavailable, err)
	}

	output, exitCode, err := s.pm.Run(ctx, s.command, tmpPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStrategyUnavailable, err)
	}
	if exitCode == 0 {
		return nil, nil
	}

	message := strings.TrimSpace(string(output))
	if message == "" {
		message = fmt.Sprintf("%s exited with status %d", s.command, exitCode)
	}
	return &Diagnostic{
		Source:   SourceJSONValidator,
		Message:  message,
		Position: extractLintPosition(message),
	}, nil
}

// extractLintPosition pulls a line/column location out of lint output.
// Returns nil when no location is recognizable.
func extractLintPosition(output string) *Position {
	m := lintPositionPattern.FindStringSubmatch(output)
	if m == nil {
		return nil
	}
	line, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	pos := &Position{Line: line}
	if m[2] != "" {
		if col, err := strconv.Atoi(m[2]); err == nil {
			pos.Column = col
		}
	}
	return pos
}

// -----------------------------------------------------------------------------
// Builtin Strategy
// -----------------------------------------------------------------------------

// BuiltinStrategy validates JSON with encoding/json. It is always
// available and terminates every strategy chain.
type BuiltinStrategy struct{}

func (s *BuiltinStrategy) Name() string { return "builtin" }

func (s *BuiltinStrategy) Validate(_ context.Context, content string) (*Diagnostic, error) {
	var v any
	err := json.Unmarshal([]byte(content), &v)
	if err == nil {
		return nil, nil
	}

	diag := &Diagnostic{
		Source:  SourceJSONValidator,
		Message: err.Error(),
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		diag.Position = offsetToPosition(content, syntaxErr.Offset)
	}
	return diag, nil
}

// offsetToPosition converts a byte offset into a 1-based line/column.
func offsetToPosition(content string, offset int64) *Position {
	if offset < 0 || offset > int64(len(content)) {
		return nil
	}
	line, column := 1, 1
	for _, b := range []byte(content[:offset]) {
		if b == '\n' {
			line++
			column = 1
		} else {
			column++
		}
	}
	return &Position{Line: line, Column: column}
}

var (
	_ ValidationStrategy = (*LintToolStrategy)(nil)
	_ ValidationStrategy = (*BuiltinStrategy)(nil)
)
