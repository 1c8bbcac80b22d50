// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

// JsonmendConfig holds the persistent settings from ~/.jsonmend/jsonmend.yaml.
// Command-line flags and JSONMEND_* environment variables override these
// per invocation.
type JsonmendConfig struct {
	// MaxIterations bounds the repair loop. e.g. 10
	MaxIterations int `yaml:"max_iterations"`

	// Model names the LLM used for fix requests. Empty defers to the
	// OPENAI_MODEL environment variable / client default.
	Model string `yaml:"model"`

	// LintCommand is the external JSON lint binary tried before the
	// builtin parser. e.g. jsonlint-php
	LintCommand string `yaml:"lint_command"`

	// Interpreter is the foreign-language binary used for the syntax
	// probe. e.g. python3
	Interpreter string `yaml:"interpreter"`

	// RequestTimeoutSeconds caps a single fix request. e.g. 120
	RequestTimeoutSeconds int `yaml:"request_timeout_seconds"`
}

// DefaultConfig returns the settings written on first run.
func DefaultConfig() JsonmendConfig {
	return JsonmendConfig{
		MaxIterations:         10,
		LintCommand:           "jsonlint-php",
		Interpreter:           "python3",
		RequestTimeoutSeconds: 120,
	}
}
