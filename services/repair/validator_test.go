// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package repair

import (
	"context"
	"errors"
	"testing"

	"github.com/AleutianAI/jsonmend/pkg/logging"
)

func newTestLogger() *logging.Logger {
	return logging.New(logging.Config{Quiet: true})
}

func unavailableProcessManager() *MockProcessManager {
	return &MockProcessManager{
		RunFunc: func(ctx context.Context, name string, args ...string) ([]byte, int, error) {
			return nil, 0, errors.New(`exec: "jsonlint-php": executable file not found in $PATH`)
		},
		RunWithInputFunc: func(ctx context.Context, name string, input []byte, args ...string) ([]byte, int, error) {
			return nil, 0, errors.New(`exec: "python3": executable file not found in $PATH`)
		},
	}
}

func TestValidator_ValidJSON(t *testing.T) {
	v := NewValidator(unavailableProcessManager(), "", newTestLogger())

	inputs := []string{
		`{}`,
		`{"a": 1}`,
		`[1, 2, 3]`,
		`"just a string"`,
		`null`,
	}
	for _, input := range inputs {
		if diag := v.Validate(context.Background(), input); diag != nil {
			t.Errorf("Validate(%q) = %v, want nil", input, diag)
		}
	}
}

func TestValidator_LintToolVerdictWins(t *testing.T) {
	// The lint tool runs and rejects the content; its output must be the
	// diagnostic, not the builtin parser's.
	pm := &MockProcessManager{
		RunFunc: func(ctx context.Context, name string, args ...string) ([]byte, int, error) {
			if name != "jsonlint-php" {
				t.Fatalf("unexpected command %q", name)
			}
			return []byte("Parse error on line 2:\nunexpected token '}'"), 1, nil
		},
	}
	v := NewValidator(pm, "", newTestLogger())

	diag := v.Validate(context.Background(), `{"a": 1,}`)
	if diag == nil {
		t.Fatal("expected a diagnostic for invalid content")
	}
	if diag.Source != SourceJSONValidator {
		t.Errorf("Source = %q, want %q", diag.Source, SourceJSONValidator)
	}
	if diag.Message != "Parse error on line 2:\nunexpected token '}'" {
		t.Errorf("unexpected message: %q", diag.Message)
	}
	if diag.Position == nil || diag.Position.Line != 2 {
		t.Errorf("expected line 2 position, got %+v", diag.Position)
	}
}

func TestValidator_LintToolValidVerdict(t *testing.T) {
	pm := &MockProcessManager{
		RunFunc: func(ctx context.Context, name string, args ...string) ([]byte, int, error) {
			return []byte("Valid JSON"), 0, nil
		},
	}
	v := NewValidator(pm, "", newTestLogger())
	if diag := v.Validate(context.Background(), `{"a": 1}`); diag != nil {
		t.Errorf("expected nil diagnostic, got %v", diag)
	}
}

func TestValidator_FallbackDiagnosticShape(t *testing.T) {
	// When the lint tool is simulated absent, the builtin parser's
	// diagnostic must have the same shape: same source, non-empty message.
	input := `{"a": 1,}`

	withTool := NewValidator(&MockProcessManager{
		RunFunc: func(ctx context.Context, name string, args ...string) ([]byte, int, error) {
			return []byte("Parse error on line 1"), 1, nil
		},
	}, "", newTestLogger())
	withoutTool := NewValidator(unavailableProcessManager(), "", newTestLogger())

	toolDiag := withTool.Validate(context.Background(), input)
	builtinDiag := withoutTool.Validate(context.Background(), input)

	for name, diag := range map[string]*Diagnostic{"tool": toolDiag, "builtin": builtinDiag} {
		if diag == nil {
			t.Fatalf("%s: expected a diagnostic", name)
		}
		if diag.Source != SourceJSONValidator {
			t.Errorf("%s: Source = %q, want %q", name, diag.Source, SourceJSONValidator)
		}
		if diag.Message == "" {
			t.Errorf("%s: empty message", name)
		}
	}
}

func TestBuiltinStrategy_PositionExtraction(t *testing.T) {
	s := &BuiltinStrategy{}
	content := "{\n  \"a\": 1,\n}"

	diag, err := s.Validate(context.Background(), content)
	if err != nil {
		t.Fatalf("builtin strategy must never be unavailable: %v", err)
	}
	if diag == nil {
		t.Fatal("expected a diagnostic for trailing comma")
	}
	if diag.Position == nil {
		t.Fatal("expected a position from json.SyntaxError offset")
	}
	if diag.Position.Line != 3 {
		t.Errorf("Line = %d, want 3", diag.Position.Line)
	}
}

func TestExtractLintPosition(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   *Position
	}{
		{"line only", "Parse error on line 4:", &Position{Line: 4}},
		{"line and column", "error at line 2, column 7", &Position{Line: 2, Column: 7}},
		{"python style", `SyntaxError: invalid syntax (line 1, col 5)`, &Position{Line: 1, Column: 5}},
		{"no position", "something went wrong", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractLintPosition(tt.output)
			switch {
			case got == nil && tt.want == nil:
			case got == nil || tt.want == nil:
				t.Errorf("extractLintPosition(%q) = %+v, want %+v", tt.output, got, tt.want)
			case *got != *tt.want:
				t.Errorf("extractLintPosition(%q) = %+v, want %+v", tt.output, got, tt.want)
			}
		})
	}
}

func TestOffsetToPosition(t *testing.T) {
	content := "ab\ncd\nef"
	tests := []struct {
		offset int64
		line   int
		column int
	}{
		{0, 1, 1},
		{2, 1, 3},
		{3, 2, 1},
		{7, 3, 2},
	}
	for _, tt := range tests {
		pos := offsetToPosition(content, tt.offset)
		if pos == nil || pos.Line != tt.line || pos.Column != tt.column {
			t.Errorf("offsetToPosition(%d) = %+v, want line %d col %d", tt.offset, pos, tt.line, tt.column)
		}
	}
	if pos := offsetToPosition(content, 99); pos != nil {
		t.Errorf("out-of-range offset should yield nil, got %+v", pos)
	}
}
