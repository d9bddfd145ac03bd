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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/InsightEase/services/behavior/engine"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDataset(t *testing.T) {
	path := writeFile(t, "events.json", `[
		{"user_id": "u1", "event": "signup", "ts": "2025-03-01T10:00:00Z"},
		{"user_id": "u1", "event": "buy", "ts": "2025-03-01T11:00:00Z", "value": 9.5}
	]`)

	ds, err := loadDataset(path)
	require.NoError(t, err)

	assert.Len(t, ds.Rows, 2)
	assert.Equal(t, []string{"event", "ts", "user_id", "value"}, ds.Columns)
	assert.Equal(t, "u1", ds.Rows[0]["user_id"])
}

func TestLoadDatasetErrors(t *testing.T) {
	_, err := loadDataset(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	bad := writeFile(t, "bad.json", `{"not": "an array"}`)
	_, err = loadDataset(bad)
	assert.Error(t, err)
}

func TestLoadJobConfig(t *testing.T) {
	path := writeFile(t, "job.yaml", `
roles:
  user_id: user_id
  event: event
  timestamp: ts
  conversion: converted
analyses:
  - operation: funnel
    params:
      funnel:
        funnel_steps: [signup, buy]
        time_window: 24
  - operation: sequence_mining
    params:
      sequence_mining:
        min_support: 0.2
`)

	cfg, err := loadJobConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "user_id", cfg.Roles.UserID)
	assert.Equal(t, "converted", cfg.Roles.Conversion)
	require.Len(t, cfg.Analyses, 2)
	assert.Equal(t, engine.OpFunnel, cfg.Analyses[0].Operation)
	assert.Equal(t, []string{"signup", "buy"}, cfg.Analyses[0].Params.Funnel.Steps)
	assert.Equal(t, 24, cfg.Analyses[0].Params.Funnel.TimeWindowHours)
	assert.Equal(t, 0.2, cfg.Analyses[1].Params.SequenceMining.MinSupport)
}

func TestLoadJobConfigErrors(t *testing.T) {
	empty := writeFile(t, "empty.yaml", `roles: {user_id: u}`)
	_, err := loadJobConfig(empty)
	assert.Error(t, err)

	bad := writeFile(t, "bad.yaml", "roles: [not, a, map]")
	_, err = loadJobConfig(bad)
	assert.Error(t, err)
}
