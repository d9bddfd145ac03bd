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
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/InsightEase/services/behavior/engine"
	"github.com/AleutianAI/InsightEase/services/behavior/telemetry"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	analyzeDatasetPath string // JSON array of flat event objects
	analyzeConfigPath  string // YAML job config: roles + analyses
	analyzeOutPath     string // Output file; empty writes to stdout
	analyzeTelemetry   string // "stdout" or "none"
)

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the configured analyses over a dataset",
	Long: `Loads a JSON event dataset and a YAML job config, runs every
configured analysis, and writes a JSON object keyed by operation name.

Analyses run concurrently; each gets its own run id, and a failure in one
analysis fails the whole job.

Examples:
  insightease analyze --dataset events.json --config job.yaml
  insightease analyze --dataset events.json --config job.yaml --out results.json
  insightease analyze --dataset events.json --config job.yaml --telemetry stdout`,
	RunE: runAnalyzeCommand,
}

// =============================================================================
// COMMAND INITIALIZATION
// =============================================================================

func init() {
	analyzeCmd.Flags().StringVar(&analyzeDatasetPath, "dataset", "",
		"Path to the JSON event dataset (required)")
	analyzeCmd.Flags().StringVar(&analyzeConfigPath, "config", "",
		"Path to the YAML job config (required)")
	analyzeCmd.Flags().StringVar(&analyzeOutPath, "out", "",
		"Write results to this file instead of stdout")
	analyzeCmd.Flags().StringVar(&analyzeTelemetry, "telemetry", "none",
		"Telemetry exporter: stdout or none")
	_ = analyzeCmd.MarkFlagRequired("dataset")
	_ = analyzeCmd.MarkFlagRequired("config")
}

// =============================================================================
// COMMAND IMPLEMENTATION
// =============================================================================

func runAnalyzeCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	shutdown, err := telemetry.Setup(ctx, telemetry.Config{
		ServiceName:    "insightease",
		ServiceVersion: version,
		Mode:           telemetry.Mode(analyzeTelemetry),
	})
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(flushCtx); err != nil {
			slog.Warn("telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}()

	ds, err := loadDataset(analyzeDatasetPath)
	if err != nil {
		return err
	}
	cfg, err := loadJobConfig(analyzeConfigPath)
	if err != nil {
		return err
	}

	slog.Info("analysis job started",
		slog.Int("rows", len(ds.Rows)),
		slog.Int("analyses", len(cfg.Analyses)))

	results := make(map[string]*engine.Envelope, len(cfg.Analyses))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for _, a := range cfg.Analyses {
		a := a
		g.Go(func() error {
			env, err := engine.Run(gctx, ds, engine.Request{
				Operation: a.Operation,
				Roles:     cfg.Roles,
				Params:    a.Params,
			})
			if err != nil {
				return fmt.Errorf("%s: %w", a.Operation, err)
			}
			mu.Lock()
			results[string(a.Operation)] = env
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	out, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}
	out = append(out, '\n')

	if analyzeOutPath == "" {
		_, err = os.Stdout.Write(out)
		return err
	}
	if err := os.WriteFile(analyzeOutPath, out, 0o644); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}
	slog.Info("analysis job completed", slog.String("out", analyzeOutPath))
	return nil
}
