// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/AleutianAI/InsightEase/services/behavior/attribution"
	"github.com/AleutianAI/InsightEase/services/behavior/cluster"
	"github.com/AleutianAI/InsightEase/services/behavior/dataset"
	"github.com/AleutianAI/InsightEase/services/behavior/funnel"
	"github.com/AleutianAI/InsightEase/services/behavior/journey"
	"github.com/AleutianAI/InsightEase/services/behavior/keypath"
	"github.com/AleutianAI/InsightEase/services/behavior/pathgraph"
	"github.com/AleutianAI/InsightEase/services/behavior/seqmine"
	"github.com/AleutianAI/InsightEase/services/behavior/stats"
)

// Run dispatches one analysis over the dataset.
//
// # Description
//
// Journey-based operations build journeys with the composite event label;
// attribution substitutes the touchpoint columns for the event columns
// when configured. Conversion tracking flags are derived from the role
// mapping, never set by callers directly.
//
// # Outputs
//
//   - *Envelope: Result record with a fresh run id and timing.
//   - error: dataset.ErrInvalidParameter for an unknown operation, or the
//     dispatched analyzer's error. No partial result accompanies an error.
func Run(ctx context.Context, ds *dataset.Dataset, req Request) (*Envelope, error) {
	start := time.Now()
	runID := uuid.NewString()

	ctx, span := startRunSpan(ctx, string(req.Operation), runID)
	defer span.End()

	slog.Info("analysis run started",
		slog.String("run_id", runID),
		slog.String("operation", string(req.Operation)),
		slog.Int("rows", len(ds.Rows)))

	data, err := dispatch(ctx, ds, req)
	if err != nil {
		setRunSpanError(span, err)
		recordRunMetrics(ctx, string(req.Operation), time.Since(start), true)
		slog.Error("analysis run failed",
			slog.String("run_id", runID),
			slog.String("operation", string(req.Operation)),
			slog.String("error", err.Error()))
		return nil, err
	}

	env := &Envelope{
		RunID:      runID,
		Operation:  req.Operation,
		DurationMS: stats.Round(float64(time.Since(start).Microseconds())/1000, 2),
		Rows:       len(ds.Rows),
		Users:      distinctUsers(ds, req.Roles.UserID),
		Data:       data,
	}
	recordRunMetrics(ctx, string(req.Operation), time.Since(start), false)
	slog.Info("analysis run completed",
		slog.String("run_id", runID),
		slog.String("operation", string(req.Operation)),
		slog.Float64("duration_ms", env.DurationMS))
	return env, nil
}

func dispatch(ctx context.Context, ds *dataset.Dataset, req Request) (any, error) {
	switch req.Operation {
	case OpFunnel:
		js, err := journey.Build(ds, req.Roles)
		if err != nil {
			return nil, err
		}
		return funnel.Analyze(js, req.Params.Funnel)

	case OpPath:
		js, err := journey.Build(ds, req.Roles)
		if err != nil {
			return nil, err
		}
		return pathgraph.Analyze(ctx, js, req.Params.Path)

	case OpClustering:
		return cluster.Analyze(ctx, ds, req.Roles, req.Params.Clustering)

	case OpKeyPath:
		js, err := journey.Build(ds, req.Roles)
		if err != nil {
			return nil, err
		}
		return keypath.Find(js, req.Params.KeyPath)

	case OpAttribution:
		js, err := journey.Build(ds, touchpointRoles(req.Roles))
		if err != nil {
			return nil, err
		}
		opts := req.Params.Attribution
		opts.ConversionTracked = req.Roles.Conversion != "" && ds.HasColumn(req.Roles.Conversion)
		opts.ValueTracked = req.Roles.ConversionValue != "" && ds.HasColumn(req.Roles.ConversionValue)
		return attribution.Analyze(js, opts)

	case OpSequenceMining:
		js, err := journey.Build(ds, req.Roles)
		if err != nil {
			return nil, err
		}
		opts := req.Params.SequenceMining
		opts.ConversionTracked = req.Roles.Conversion != "" && ds.HasColumn(req.Roles.Conversion)
		return seqmine.Mine(js, opts)

	case OpSequenceClassification:
		js, err := journey.Build(ds, req.Roles)
		if err != nil {
			return nil, err
		}
		return seqmine.Classify(js)

	default:
		return nil, fmt.Errorf("%w: unknown operation %q", dataset.ErrInvalidParameter, req.Operation)
	}
}

// touchpointRoles rewires the event roles to the touchpoint columns for
// attribution. Without a touchpoint column the event columns stand in.
func touchpointRoles(roles dataset.Roles) dataset.Roles {
	if roles.Touchpoint == "" {
		return roles
	}
	out := roles
	out.Event = roles.Touchpoint
	out.AdditionalEventCols = roles.AdditionalTouchpointCols
	return out
}

func distinctUsers(ds *dataset.Dataset, userCol string) int {
	if userCol == "" || !ds.HasColumn(userCol) {
		return 0
	}
	seen := map[string]bool{}
	for _, row := range ds.Rows {
		seen[dataset.AsString(row[userCol])] = true
	}
	return len(seen)
}
