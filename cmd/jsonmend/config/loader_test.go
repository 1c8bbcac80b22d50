// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFrom_CreatesDefaultOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".jsonmend", "jsonmend.yaml")

	if err := loadFrom(path); err != nil {
		t.Fatalf("loadFrom failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default config file was not created: %v", err)
	}
	if Global.MaxIterations != 10 {
		t.Errorf("MaxIterations = %d, want 10", Global.MaxIterations)
	}
	if Global.LintCommand != "jsonlint-php" {
		t.Errorf("LintCommand = %q, want jsonlint-php", Global.LintCommand)
	}
}

func TestLoadFrom_ReadsExistingConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jsonmend.yaml")
	content := "max_iterations: 3\nmodel: gpt-4o\nlint_command: jsonlint\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	if err := loadFrom(path); err != nil {
		t.Fatalf("loadFrom failed: %v", err)
	}
	if Global.MaxIterations != 3 {
		t.Errorf("MaxIterations = %d, want 3", Global.MaxIterations)
	}
	if Global.Model != "gpt-4o" {
		t.Errorf("Model = %q, want gpt-4o", Global.Model)
	}
	if Global.LintCommand != "jsonlint" {
		t.Errorf("LintCommand = %q, want jsonlint", Global.LintCommand)
	}
	// Keys absent from the file keep their defaults
	if Global.Interpreter != "python3" {
		t.Errorf("Interpreter = %q, want python3", Global.Interpreter)
	}
}

func TestLoadFrom_RejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jsonmend.yaml")
	if err := os.WriteFile(path, []byte("max_iterations: [not an int"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := loadFrom(path); err == nil {
		t.Error("expected an error for malformed YAML")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.MaxIterations != 10 {
		t.Errorf("MaxIterations = %d, want 10", cfg.MaxIterations)
	}
	if cfg.RequestTimeoutSeconds != 120 {
		t.Errorf("RequestTimeoutSeconds = %d, want 120", cfg.RequestTimeoutSeconds)
	}
}
