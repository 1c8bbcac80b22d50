// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package repair implements the iterative JSON repair loop.
//
// The loop validates the content, asks an LLM service for a fix, applies
// the fix, and re-validates, until the content parses as valid JSON or a
// budget is exhausted:
//
//	Validating ──valid──► Success
//	    │
//	 invalid
//	    ▼
//	Diagnosing (validator + best-effort syntax probe)
//	    ▼
//	RequestingFix ──service error──► Aborted
//	    ▼
//	ApplyingFix ──2x no change──► Aborted
//	    ▼
//	Validating (next iteration) ──budget spent──► Exhausted
//
// The loop exclusively owns the working content. No component retains a
// reference to it across calls, and nothing is written to disk here: the
// caller persists the final content once, on success.
package repair

import (
	"context"
	"errors"
	"fmt"

	"github.com/AleutianAI/jsonmend/pkg/logging"
)

// DefaultMaxIterations bounds the repair loop when no explicit budget is
// configured.
const DefaultMaxIterations = 10

// stagnationLimit is how many consecutive no-change iterations the loop
// tolerates before concluding the service cannot help.
const stagnationLimit = 2

// ErrStagnation is the abort cause when consecutive iterations changed
// nothing.
var ErrStagnation = errors.New("consecutive fixes changed nothing")

// Outcome is the terminal state of a repair run.
type Outcome int

const (
	// OutcomeSuccess means the content is valid JSON.
	OutcomeSuccess Outcome = iota

	// OutcomeExhausted means the iteration budget ran out while the
	// content was still invalid.
	OutcomeExhausted

	// OutcomeAborted means the loop stopped early: a service failure, or
	// repeated no-op fixes.
	OutcomeAborted
)

// String returns a human-readable outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "SUCCESS"
	case OutcomeExhausted:
		return "EXHAUSTED"
	case OutcomeAborted:
		return "ABORTED"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int(o))
	}
}

// IterationResult records what a single pass did.
type IterationResult struct {
	Iteration int
	Changed   bool
	Valid     bool
}

// Result is the final state of a repair run.
//
// Content always holds the last working copy: the repaired text on
// success, the last attempted text otherwise. The caller decides whether
// to persist it (only on Success, per the resource model).
type Result struct {
	Outcome         Outcome
	Iterations      int
	FixesApplied    int
	Content         string
	LastDiagnostics []Diagnostic

	// History records each pass, in order.
	History []IterationResult
}

// contentValidator, foreignProber and fixRequester are the narrow views
// of the collaborators the loop drives. Production code passes the
// concrete types from this package; tests pass stubs.
type contentValidator interface {
	Validate(ctx context.Context, content string) *Diagnostic
}

type foreignProber interface {
	Probe(ctx context.Context, content string) *Diagnostic
}

type fixRequester interface {
	RequestFix(ctx context.Context, content string, diags []Diagnostic) (FixSuggestion, error)
}

// Loop drives the repair state machine. Strictly sequential: one
// validation, one fix request, one application per iteration.
type Loop struct {
	validator     contentValidator
	prober        foreignProber
	requester     fixRequester
	applier       *Applier
	maxIterations int
	log           *logging.Logger
}

// NewLoop assembles a repair loop. maxIterations <= 0 selects
// DefaultMaxIterations.
func NewLoop(validator contentValidator, prober foreignProber, requester fixRequester, applier *Applier, maxIterations int, log *logging.Logger) *Loop {
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}
	return &Loop{
		validator:     validator,
		prober:        prober,
		requester:     requester,
		applier:       applier,
		maxIterations: maxIterations,
		log:           log,
	}
}

// Run repairs content until it validates or the budget runs out.
//
// The returned error is non-nil only for Aborted outcomes and carries the
// abort cause (ErrServiceFailure, ErrStagnation). Exhausted is a normal,
// reported result, not an error.
func (l *Loop) Run(ctx context.Context, content string) (Result, error) {
	result := Result{Content: content}
	stagnant := 0

	for iteration := 1; iteration <= l.maxIterations; iteration++ {
		result.Iterations = iteration
		iterLog := l.log.With("iteration", iteration)
		iterLog.Info("validating content")

		diag := l.validator.Validate(ctx, content)
		if diag == nil {
			iterLog.Info("content is valid JSON")
			result.Outcome = OutcomeSuccess
			result.Content = content
			result.LastDiagnostics = nil
			result.History = append(result.History, IterationResult{Iteration: iteration, Valid: true})
			return result, nil
		}

		// Diagnostics for this iteration only; never carried forward.
		diags := []Diagnostic{*diag}
		if probe := l.prober.Probe(ctx, content); probe != nil {
			diags = append(diags, *probe)
		}
		result.LastDiagnostics = diags

		fix, err := l.requester.RequestFix(ctx, content, diags)
		if err != nil {
			if errors.Is(err, ErrMalformedResponse) {
				// Counts as a stagnant iteration: nothing changed.
				stagnant++
				result.History = append(result.History, IterationResult{Iteration: iteration})
				iterLog.Warn("unusable fix suggestion", "error", err, "stagnant", stagnant)
				if stagnant >= stagnationLimit {
					result.Outcome = OutcomeAborted
					return result, fmt.Errorf("aborting after %d stagnant iterations: %w", stagnant, ErrStagnation)
				}
				continue
			}
			iterLog.Error("fix request failed", "error", err)
			result.Outcome = OutcomeAborted
			return result, err
		}

		newContent, changed := l.applier.Apply(content, fix)
		result.History = append(result.History, IterationResult{Iteration: iteration, Changed: changed})
		iterLog.Info("fix applied", "kind", fix.Kind(), "changed", changed)

		if !changed {
			stagnant++
			if stagnant >= stagnationLimit {
				result.Outcome = OutcomeAborted
				return result, fmt.Errorf("aborting after %d stagnant iterations: %w", stagnant, ErrStagnation)
			}
			continue
		}

		stagnant = 0
		result.FixesApplied++
		content = newContent
		result.Content = content
	}

	l.log.Warn("iteration budget exhausted, content still invalid",
		"max_iterations", l.maxIterations)
	result.Outcome = OutcomeExhausted
	return result, nil
}
