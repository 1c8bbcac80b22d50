// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/AleutianAI/jsonmend/services/repair"
)

// Exit codes for the CLI.
const (
	CLIExitSuccess     = 0 // File is valid JSON (repaired or already valid)
	CLIExitNotRepaired = 1 // Budget exhausted or loop aborted
	CLIExitError       = 2 // Usage or environment error (missing key, unreadable file)
)

// OutputConfig controls output behavior.
type OutputConfig struct {
	JSON  bool // Output as a JSON envelope
	Quiet bool // Suppress the final content dump
}

// RepairReport is the machine-readable summary of a repair run.
type RepairReport struct {
	APIVersion   string              `json:"api_version"`
	File         string              `json:"file"`
	Timestamp    time.Time           `json:"timestamp"`
	DurationMs   int64               `json:"duration_ms"`
	Outcome      string              `json:"outcome"`
	Iterations   int                 `json:"iterations"`
	FixesApplied int                 `json:"fixes_applied"`
	Diagnostics  []repair.Diagnostic `json:"diagnostics,omitempty"`
	Error        string              `json:"error,omitempty"`
}

// NewRepairReport builds a report from a loop result.
func NewRepairReport(file string, result repair.Result, duration time.Duration, runErr error) RepairReport {
	report := RepairReport{
		APIVersion:   "1.0",
		File:         file,
		Timestamp:    time.Now(),
		DurationMs:   duration.Milliseconds(),
		Outcome:      result.Outcome.String(),
		Iterations:   result.Iterations,
		FixesApplied: result.FixesApplied,
		Diagnostics:  result.LastDiagnostics,
	}
	if runErr != nil {
		report.Error = runErr.Error()
	}
	return report
}

// WriteReport renders the report in the configured format.
func WriteReport(w io.Writer, cfg OutputConfig, report RepairReport, content string) error {
	if cfg.JSON {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(report)
	}

	switch report.Outcome {
	case repair.OutcomeSuccess.String():
		fmt.Fprintf(w, "%s is valid JSON (%d iteration(s), %d fix(es) applied)\n",
			report.File, report.Iterations, report.FixesApplied)
		if !cfg.Quiet {
			fmt.Fprintf(w, "\n[Final Fixed JSON Content]:\n%s\n", content)
		}
	case repair.OutcomeExhausted.String():
		fmt.Fprintf(w, "Reached maximum iterations (%d); %s may still be invalid\n",
			report.Iterations, report.File)
		printDiagnostics(w, report.Diagnostics)
		if !cfg.Quiet {
			// Surface the last attempt so the user can finish by hand
			fmt.Fprintf(w, "\n[Final File State After Max Iterations]:\n%s\n", content)
		}
	default:
		fmt.Fprintf(w, "Repair aborted after %d iteration(s): %s\n", report.Iterations, report.Error)
		printDiagnostics(w, report.Diagnostics)
	}
	return nil
}

func printDiagnostics(w io.Writer, diags []repair.Diagnostic) {
	for _, d := range diags {
		fmt.Fprintf(w, "  %s\n", d.String())
	}
}
