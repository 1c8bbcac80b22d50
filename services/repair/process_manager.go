// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package repair

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
)

// -----------------------------------------------------------------------------
// Interface Definition
// -----------------------------------------------------------------------------

// ProcessManager abstracts external process execution for the validation
// strategies and the syntax prober. All exec.Command calls in this package
// go through this interface so tests can run without real processes.
//
// A nonzero exit status is a normal result here, not an error: the lint
// tool and the foreign-language interpreter both communicate "content is
// bad" through their exit code. The error return is reserved for
// environmental failures (binary not found, spawn failure, context
// cancellation), which callers treat as "tool unavailable".
//
// # Thread Safety
//
// Implementations must be safe for concurrent use from multiple goroutines.
type ProcessManager interface {
	// Run executes a command synchronously.
	//
	// # Inputs
	//
	//   - ctx: Context for cancellation/timeout
	//   - name: The executable name or path
	//   - args: Command arguments (variadic)
	//
	// # Outputs
	//
	//   - []byte: Combined stdout and stderr output
	//   - int: The process exit code (0 on success)
	//   - error: Non-nil only if the process could not be run at all
	Run(ctx context.Context, name string, args ...string) ([]byte, int, error)

	// RunWithInput executes a command with data piped to stdin.
	//
	// Same contract as Run; input is fully buffered in memory before
	// being written to the process.
	RunWithInput(ctx context.Context, name string, input []byte, args ...string) ([]byte, int, error)
}

// -----------------------------------------------------------------------------
// Implementation
// -----------------------------------------------------------------------------

// DefaultProcessManager implements ProcessManager using os/exec.
//
// This is the production implementation that executes real processes on
// the system. Use MockProcessManager in tests instead.
type DefaultProcessManager struct{}

// NewDefaultProcessManager creates a ProcessManager that executes real
// processes using os/exec.
func NewDefaultProcessManager() *DefaultProcessManager {
	return &DefaultProcessManager{}
}

// Run executes a command synchronously and returns its combined output
// and exit code.
func (pm *DefaultProcessManager) Run(ctx context.Context, name string, args ...string) ([]byte, int, error) {
	return pm.run(ctx, name, nil, args...)
}

// RunWithInput executes a command with data piped to stdin.
func (pm *DefaultProcessManager) RunWithInput(ctx context.Context, name string, input []byte, args ...string) ([]byte, int, error) {
	return pm.run(ctx, name, input, args...)
}

func (pm *DefaultProcessManager) run(ctx context.Context, name string, input []byte, args ...string) ([]byte, int, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if input != nil {
		cmd.Stdin = bytes.NewReader(input)
	}

	// Merge stderr into stdout: the lint tools write diagnostics to
	// either stream depending on the implementation.
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	err := cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// The process ran and exited nonzero; its output is the result.
			return output.Bytes(), exitErr.ExitCode(), nil
		}
		return nil, 0, err
	}

	return output.Bytes(), 0, nil
}

// -----------------------------------------------------------------------------
// Mock Implementation for Testing
// -----------------------------------------------------------------------------

// MockProcessManager is a test double for ProcessManager.
//
// Configure the mock by setting function fields before use. If a function
// field is nil and the corresponding method is called, it panics.
//
// # Examples
//
//	mock := &MockProcessManager{
//	    RunFunc: func(ctx context.Context, name string, args ...string) ([]byte, int, error) {
//	        return []byte("Parse error on line 1"), 1, nil
//	    },
//	}
type MockProcessManager struct {
	RunFunc          func(ctx context.Context, name string, args ...string) ([]byte, int, error)
	RunWithInputFunc func(ctx context.Context, name string, input []byte, args ...string) ([]byte, int, error)
}

// Run calls RunFunc.
func (m *MockProcessManager) Run(ctx context.Context, name string, args ...string) ([]byte, int, error) {
	if m.RunFunc == nil {
		panic("MockProcessManager.Run called without RunFunc")
	}
	return m.RunFunc(ctx, name, args...)
}

// RunWithInput calls RunWithInputFunc.
func (m *MockProcessManager) RunWithInput(ctx context.Context, name string, input []byte, args ...string) ([]byte, int, error) {
	if m.RunWithInputFunc == nil {
		panic("MockProcessManager.RunWithInput called without RunWithInputFunc")
	}
	return m.RunWithInputFunc(ctx, name, input, args...)
}

// Ensure both implementations satisfy the interface
var (
	_ ProcessManager = (*DefaultProcessManager)(nil)
	_ ProcessManager = (*MockProcessManager)(nil)
)
