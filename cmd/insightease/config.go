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
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/InsightEase/services/behavior/dataset"
	"github.com/AleutianAI/InsightEase/services/behavior/engine"
)

// AnalysisConfig is one requested analysis in the job file.
type AnalysisConfig struct {
	// Operation names the analysis to run.
	Operation engine.Operation `yaml:"operation"`

	// Params holds the per-operation options.
	Params engine.Params `yaml:"params"`
}

// JobConfig is the YAML job file: one role mapping shared by every
// requested analysis.
type JobConfig struct {
	// Roles maps dataset columns onto analysis roles.
	Roles dataset.Roles `yaml:"roles"`

	// Analyses lists the analyses to run.
	Analyses []AnalysisConfig `yaml:"analyses"`
}

// loadJobConfig parses the YAML job file.
func loadJobConfig(path string) (*JobConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read job config: %w", err)
	}
	var cfg JobConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse job config: %w", err)
	}
	if len(cfg.Analyses) == 0 {
		return nil, fmt.Errorf("job config lists no analyses")
	}
	return &cfg, nil
}

// loadDataset parses a JSON array of flat objects into a Dataset. Column
// order is the sorted union of keys across all rows.
func loadDataset(path string) (*dataset.Dataset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}
	var rows []dataset.Row
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse dataset: %w", err)
	}

	seen := map[string]bool{}
	var columns []string
	for _, row := range rows {
		for k := range row {
			if !seen[k] {
				seen[k] = true
				columns = append(columns, k)
			}
		}
	}
	sort.Strings(columns)

	return &dataset.Dataset{Columns: columns, Rows: rows}, nil
}
