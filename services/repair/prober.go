// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package repair

import (
	"context"
	"fmt"
	"strings"

	"github.com/AleutianAI/jsonmend/pkg/logging"
)

// ForeignSyntaxChecker parses content as another language's source without
// executing it. It exists to detect the accident of running a JSON file as
// a script: the foreign parser's syntax error often describes the mistake
// better than the JSON error does.
//
// Check returns (nil, nil) when the content parses cleanly, a Diagnostic
// when the foreign parser reports a syntax error, and an error wrapping
// ErrStrategyUnavailable when the checker cannot run here.
type ForeignSyntaxChecker interface {
	Name() string
	Check(ctx context.Context, content string) (*Diagnostic, error)
}

// Prober runs a ForeignSyntaxChecker as a best-effort secondary signal.
// It is not a gate: the repair loop relies on the Validator for
// correctness and only uses the prober's Diagnostic to enrich the prompt.
type Prober struct {
	checker ForeignSyntaxChecker
	log     *logging.Logger
}

// NewProber wraps a checker. A nil checker produces a prober that never
// yields a signal.
func NewProber(checker ForeignSyntaxChecker, log *logging.Logger) *Prober {
	return &Prober{checker: checker, log: log}
}

// Probe returns a Diagnostic when the foreign parser rejected the content,
// and nil in every other case: clean parse, unavailable checker, or no
// checker configured. Unavailability degrades to "no signal", never to an
// error.
func (p *Prober) Probe(ctx context.Context, content string) *Diagnostic {
	if p.checker == nil {
		return nil
	}
	diag, err := p.checker.Check(ctx, content)
	if err != nil {
		p.log.Debug("syntax probe unavailable, skipping", "checker", p.checker.Name(), "error", err)
		return nil
	}
	if diag == nil {
		p.log.Debug("content parses as foreign source, no probe signal", "checker", p.checker.Name())
		return nil
	}
	p.log.Debug("syntax probe produced a signal", "checker", p.checker.Name(), "message", diag.Message)
	return diag
}

// -----------------------------------------------------------------------------
// Python Checker
// -----------------------------------------------------------------------------

// pythonCompileProgram compiles stdin as Python source without executing
// it, mimicking what happens when someone runs `python file.json`.
const pythonCompileProgram = `import sys; compile(sys.stdin.read(), "<json>", "exec")`

// PythonChecker probes content with the Python interpreter's compile-only
// check. Exit status 1 with a SyntaxError traceback is the signal we are
// after; a missing interpreter degrades to unavailable.
type PythonChecker struct {
	pm          ProcessManager
	interpreter string
}

// NewPythonChecker uses the given interpreter, defaulting to "python3".
func NewPythonChecker(pm ProcessManager, interpreter string) *PythonChecker {
	if interpreter == "" {
		interpreter = "python3"
	}
	return &PythonChecker{pm: pm, interpreter: interpreter}
}

func (c *PythonChecker) Name() string { return c.interpreter }

func (c *PythonChecker) Check(ctx context.Context, content string) (*Diagnostic, error) {
	output, exitCode, err := c.pm.RunWithInput(ctx, c.interpreter, []byte(content), "-c", pythonCompileProgram)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStrategyUnavailable, err)
	}
	if exitCode == 0 {
		return nil, nil
	}

	message := strings.TrimSpace(string(output))
	if message == "" {
		message = fmt.Sprintf("%s compile check exited with status %d", c.interpreter, exitCode)
	}
	return &Diagnostic{
		Source:   SourceSyntaxProbe,
		Message:  message,
		Position: extractLintPosition(message),
	}, nil
}

var _ ForeignSyntaxChecker = (*PythonChecker)(nil)
