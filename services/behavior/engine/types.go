// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package engine dispatches a named analysis over a dataset and wraps the
// result in a run envelope with a generated run id.
package engine

import (
	"github.com/AleutianAI/InsightEase/services/behavior/attribution"
	"github.com/AleutianAI/InsightEase/services/behavior/cluster"
	"github.com/AleutianAI/InsightEase/services/behavior/dataset"
	"github.com/AleutianAI/InsightEase/services/behavior/funnel"
	"github.com/AleutianAI/InsightEase/services/behavior/keypath"
	"github.com/AleutianAI/InsightEase/services/behavior/pathgraph"
	"github.com/AleutianAI/InsightEase/services/behavior/seqmine"
)

// Operation names an analysis.
type Operation string

const (
	// OpFunnel runs stepwise conversion analysis.
	OpFunnel Operation = "funnel"

	// OpPath runs path/flow graph analysis.
	OpPath Operation = "path"

	// OpClustering runs behavioral user segmentation.
	OpClustering Operation = "clustering"

	// OpKeyPath extracts start-to-end sub-paths.
	OpKeyPath Operation = "key_path"

	// OpAttribution runs multi-touch attribution.
	OpAttribution Operation = "attribution"

	// OpSequenceMining mines frequent patterns and association rules.
	OpSequenceMining Operation = "sequence_mining"

	// OpSequenceClassification contrasts converting and non-converting
	// sequence patterns.
	OpSequenceClassification Operation = "sequence_classification"
)

// AllOperations lists every dispatchable operation.
func AllOperations() []Operation {
	return []Operation{
		OpFunnel,
		OpPath,
		OpClustering,
		OpKeyPath,
		OpAttribution,
		OpSequenceMining,
		OpSequenceClassification,
	}
}

// Params carries the per-operation options. Only the member matching the
// requested operation is consulted.
type Params struct {
	Funnel         funnel.Options      `json:"funnel,omitempty" yaml:"funnel"`
	Path           pathgraph.Options   `json:"path,omitempty" yaml:"path"`
	Clustering     cluster.Options     `json:"clustering,omitempty" yaml:"clustering"`
	KeyPath        keypath.Options     `json:"key_path,omitempty" yaml:"key_path"`
	Attribution    attribution.Options `json:"attribution,omitempty" yaml:"attribution"`
	SequenceMining seqmine.Options     `json:"sequence_mining,omitempty" yaml:"sequence_mining"`
}

// Request is one analysis invocation.
type Request struct {
	// Operation selects the analysis. Required.
	Operation Operation `json:"operation" yaml:"operation"`

	// Roles maps dataset columns to analysis roles.
	Roles dataset.Roles `json:"roles" yaml:"roles"`

	// Params holds per-operation options.
	Params Params `json:"params" yaml:"params"`
}

// Envelope wraps an analysis result with run bookkeeping.
type Envelope struct {
	// RunID is a fresh UUID for this invocation.
	RunID string `json:"run_id"`

	// Operation echoes the dispatched analysis.
	Operation Operation `json:"operation"`

	// DurationMS is the wall-clock run time in milliseconds.
	DurationMS float64 `json:"duration_ms"`

	// Rows is the input row count.
	Rows int `json:"rows"`

	// Users is the distinct user count in the input.
	Users int `json:"users"`

	// Data is the operation-specific result record.
	Data any `json:"data"`
}
