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
	"fmt"
	"strings"
	"time"

	"github.com/AleutianAI/jsonmend/pkg/logging"
	"github.com/AleutianAI/jsonmend/services/llm"
)

// ErrServiceFailure means the LLM call itself failed (network, auth,
// quota, timeout). It aborts the repair loop: retrying an identical
// request is unlikely to change the outcome and burns quota.
var ErrServiceFailure = errors.New("llm service call failed")

// ErrMalformedResponse means the LLM replied, but the reply could not be
// parsed into a FixSuggestion. The loop treats it as a stagnant iteration
// rather than a fatal error.
var ErrMalformedResponse = errors.New("malformed fix suggestion")

// systemInstruction frames the model's role for every fix request.
const systemInstruction = "You are an assistant that fixes JSON syntax errors (or Python syntax errors) " +
	"when JSON is accidentally run as Python. " +
	"You must respond with a valid JSON containing the fix instructions. " +
	"Do not add extra keys."

const promptTemplate = `We have a JSON file that might be invalid JSON or might have caused
a Python SyntaxError if someone tried to run it directly as Python code.

Error output:
---
%s
---

The current content of the JSON file is:
---
%s
---

Please provide a concise fix recommendation in JSON form. Example format:

{
  "regex_pattern": "some pattern",
  "replacement": "some replacement",
  "flags": ["ignorecase"],
  "replace_all": false,
  "explanation": "one line explanation"
}

If you prefer to provide a direct updated JSON snippet, use:

{
  "replacement": "...the entire corrected JSON...",
  "explanation": "some explanation"
}

Return valid JSON with these keys. Do not wrap your answer with extra text.`

// FixRequester turns the current content plus its diagnostics into a
// prompt, sends it to the LLM service, and parses the reply into a typed
// FixSuggestion.
//
// Each call consumes service quota. Prompts are not cached or deduped
// across iterations: the content differs every time a fix is applied.
type FixRequester struct {
	client  llm.LLMClient
	timeout time.Duration
	log     *logging.Logger
}

// NewFixRequester wires a requester to an LLM backend. A zero timeout
// disables the per-request deadline.
func NewFixRequester(client llm.LLMClient, timeout time.Duration, log *logging.Logger) *FixRequester {
	return &FixRequester{client: client, timeout: timeout, log: log}
}

// RequestFix performs one blocking fix request.
//
// diags must be in detection order: the JSON validator's diagnostic first,
// then the syntax probe's, when present. Failure modes:
//
//   - ErrServiceFailure: the underlying call errored or timed out
//   - ErrMalformedResponse: the reply does not parse into one fix variant
func (r *FixRequester) RequestFix(ctx context.Context, content string, diags []Diagnostic) (FixSuggestion, error) {
	prompt := buildFixPrompt(content, diags)
	r.log.Debug("requesting fix", "prompt_bytes", len(prompt), "diagnostics", len(diags))

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	temperature := float32(0.2)
	reply, err := r.client.Generate(ctx, systemInstruction, prompt, llm.GenerationParams{
		Temperature: &temperature,
	})
	if err != nil {
		return FixSuggestion{}, fmt.Errorf("%w: %w", ErrServiceFailure, err)
	}

	suggestion, err := ParseFixSuggestion(reply)
	if err != nil {
		r.log.Warn("could not parse fix suggestion", "error", err, "reply_bytes", len(reply))
		return FixSuggestion{}, err
	}
	if suggestion.Explanation != "" {
		r.log.Info("fix suggested", "kind", suggestion.Kind(), "explanation", suggestion.Explanation)
	} else {
		r.log.Info("fix suggested", "kind", suggestion.Kind())
	}
	return suggestion, nil
}

// buildFixPrompt renders the error summary and content into the prompt.
// Diagnostics are concatenated in detection order.
func buildFixPrompt(content string, diags []Diagnostic) string {
	var summary strings.Builder
	for i, d := range diags {
		if i > 0 {
			summary.WriteString("\n\n")
		}
		summary.WriteString(d.String())
	}
	if summary.Len() == 0 {
		summary.WriteString("(no diagnostics captured)")
	}
	return fmt.Sprintf(promptTemplate, summary.String(), content)
}
