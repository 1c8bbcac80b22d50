// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package repair

import "fmt"

// DiagnosticSource identifies which checker produced a Diagnostic.
type DiagnosticSource string

const (
	// SourceJSONValidator marks diagnostics from the JSON validation
	// strategies (lint tool or builtin parser).
	SourceJSONValidator DiagnosticSource = "json-validator"

	// SourceSyntaxProbe marks diagnostics from the foreign-language
	// syntax probe.
	SourceSyntaxProbe DiagnosticSource = "syntax-probe"
)

// Position is a 1-based line/column location inside the file content.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Diagnostic is a normalized error record produced by a validation
// strategy or the syntax prober and consumed by the fix requester.
//
// Diagnostics are ephemeral: they describe the current content only and
// are recreated on every repair iteration.
type Diagnostic struct {
	// Source identifies the producing checker.
	Source DiagnosticSource `json:"source"`

	// Message is the raw error text from the tool or parser.
	Message string `json:"message"`

	// Position is the error location, when the tool exposed one.
	Position *Position `json:"position,omitempty"`
}

// String renders the diagnostic the way it appears in fix prompts.
func (d Diagnostic) String() string {
	if d.Position != nil {
		return fmt.Sprintf("[%s] %s (line %d, column %d)", d.Source, d.Message, d.Position.Line, d.Position.Column)
	}
	return fmt.Sprintf("[%s] %s", d.Source, d.Message)
}
