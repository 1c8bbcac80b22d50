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
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/AleutianAI/jsonmend/cmd/jsonmend/config"
	"github.com/AleutianAI/jsonmend/pkg/logging"
	"github.com/AleutianAI/jsonmend/services/llm"
	"github.com/AleutianAI/jsonmend/services/repair"
)

var rootCmd = &cobra.Command{
	Use:   "jsonmend <path-to-json-file>",
	Short: "Repairs malformed JSON files using LLM-suggested fixes",
	Long: `Jsonmend iteratively validates a JSON file, asks an LLM service for a
fix when validation fails, applies the fix in memory, and re-validates,
until the file parses or the iteration budget runs out. The file on disk
is only rewritten when the repair succeeds.`,
	Args: cobra.ExactArgs(1),
	Run:  runRepairCommand,
}

func init() {
	registerRepairFlags(rootCmd)
}

func registerRepairFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.Int("max-iterations", 0, "Upper bound on repair iterations (0 = config value)")
	flags.String("model", "", "LLM model to use for fix requests")
	flags.String("lint-command", "", "External JSON lint binary to prefer over the builtin parser")
	flags.Int("timeout", 0, "Per-request timeout for the LLM call, in seconds")
	flags.Bool("json", false, "Emit a JSON report instead of human-readable output")
	flags.Bool("quiet", false, "Suppress the final content dump")
	flags.Bool("verbose", false, "Enable debug logging")
}

// repairSettings is the merged view of config file, environment and flags.
type repairSettings struct {
	MaxIterations  int
	Model          string
	LintCommand    string
	Interpreter    string
	RequestTimeout time.Duration
	Output         OutputConfig
	Verbose        bool
}

// resolveSettings merges sources with the usual precedence: explicitly set
// flags override JSONMEND_* environment variables, which override the
// config file.
func resolveSettings(cmd *cobra.Command, cfg config.JsonmendConfig) (repairSettings, error) {
	v := viper.New()
	v.SetDefault("max_iterations", cfg.MaxIterations)
	v.SetDefault("model", cfg.Model)
	v.SetDefault("lint_command", cfg.LintCommand)
	v.SetDefault("interpreter", cfg.Interpreter)
	v.SetDefault("request_timeout_seconds", cfg.RequestTimeoutSeconds)
	v.SetEnvPrefix("JSONMEND")
	v.AutomaticEnv()

	bindings := map[string]string{
		"max_iterations":          "max-iterations",
		"model":                   "model",
		"lint_command":            "lint-command",
		"request_timeout_seconds": "timeout",
	}
	for key, name := range bindings {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			if err := v.BindPFlag(key, f); err != nil {
				return repairSettings{}, fmt.Errorf("binding flag --%s: %w", name, err)
			}
		}
	}

	timeout := DefaultRequestTimeout
	if secs := v.GetInt("request_timeout_seconds"); secs > 0 {
		timeout = EnforceMinTimeout(time.Duration(secs)*time.Second, MinRequestTimeout)
	}

	jsonOut, _ := cmd.Flags().GetBool("json")
	quiet, _ := cmd.Flags().GetBool("quiet")
	verbose, _ := cmd.Flags().GetBool("verbose")

	return repairSettings{
		MaxIterations:  v.GetInt("max_iterations"),
		Model:          v.GetString("model"),
		LintCommand:    v.GetString("lint_command"),
		Interpreter:    v.GetString("interpreter"),
		RequestTimeout: timeout,
		Output:         OutputConfig{JSON: jsonOut, Quiet: quiet},
		Verbose:        verbose,
	}, nil
}

// repairDeps are the external collaborators, injectable for tests.
type repairDeps struct {
	client llm.LLMClient
	pm     repair.ProcessManager
}

func runRepairCommand(cmd *cobra.Command, args []string) {
	settings, err := resolveSettings(cmd, config.Global)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(CLIExitError)
	}

	level := logging.LevelInfo
	if settings.Verbose {
		level = logging.LevelDebug
	}
	logger := logging.New(logging.Config{Level: level, Service: "jsonmend", Quiet: settings.Output.JSON})
	defer logger.Close()

	// A missing credential is a startup failure, not a repair failure
	client, err := llm.NewOpenAIClient(logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(CLIExitError)
	}
	client.WithModel(settings.Model)

	deps := repairDeps{client: client, pm: repair.NewDefaultProcessManager()}
	os.Exit(executeRepair(cmd.Context(), args[0], settings, deps, logger, os.Stdout))
}

// executeRepair runs the repair loop against the file at path and writes
// the report. Returns the process exit code.
func executeRepair(ctx context.Context, path string, settings repairSettings, deps repairDeps, logger *logging.Logger, out io.Writer) int {
	if ctx == nil {
		ctx = context.Background()
	}

	info, err := os.Stat(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot access %s: %v\n", path, err)
		return CLIExitError
	}
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot read %s: %v\n", path, err)
		return CLIExitError
	}

	validator := repair.NewValidator(deps.pm, settings.LintCommand, logger)
	prober := repair.NewProber(repair.NewPythonChecker(deps.pm, settings.Interpreter), logger)
	requester := repair.NewFixRequester(deps.client, settings.RequestTimeout, logger)
	loop := repair.NewLoop(validator, prober, requester, repair.NewApplier(logger), settings.MaxIterations, logger)

	start := time.Now()
	result, runErr := loop.Run(ctx, string(data))
	report := NewRepairReport(path, result, time.Since(start), runErr)

	if result.Outcome == repair.OutcomeSuccess && result.FixesApplied > 0 {
		// The one and only write: intermediate attempts never touch disk
		if err := os.WriteFile(path, []byte(result.Content), info.Mode().Perm()); err != nil {
			fmt.Fprintf(os.Stderr, "Error: repaired content could not be written to %s: %v\n", path, err)
			return CLIExitError
		}
		logger.Info("file repaired", "file", path, "iterations", result.Iterations, "fixes", result.FixesApplied)
	}

	if err := WriteReport(out, settings.Output, report, result.Content); err != nil {
		fmt.Fprintf(os.Stderr, "Error: writing report: %v\n", err)
		return CLIExitError
	}

	if result.Outcome == repair.OutcomeSuccess {
		return CLIExitSuccess
	}
	return CLIExitNotRepaired
}
