// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package cluster

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/AleutianAI/InsightEase/services/behavior/dataset"
	"github.com/AleutianAI/InsightEase/services/behavior/journey"
	"github.com/AleutianAI/InsightEase/services/behavior/stats"
)

// importanceCap bounds the feature importance report.
const importanceCap = 5

// Analyze segments users by behavioral or custom features.
//
// # Description
//
// Features are standardized to zero mean and unit variance, clustered
// with k-means (fixed seed, 10 restarts), and relabeled to a contiguous
// range when clusters come out empty. Each cluster reports per-feature
// statistics and a generated description; feature importance is a one-way
// ANOVA F-statistic per feature across the assignment.
//
// When the effective cluster count falls below 2 (fewer than 4 users),
// the result carries a Message instead of clusters.
func Analyze(ctx context.Context, ds *dataset.Dataset, roles dataset.Roles, opts Options) (*Result, error) {
	start := time.Now()
	if opts.NClusters <= 0 {
		opts.NClusters = DefaultOptions().NClusters
	}
	if opts.MaxPathLength <= 0 {
		opts.MaxPathLength = DefaultOptions().MaxPathLength
	}
	if opts.Mode == "" {
		opts.Mode = ModeSmart
	}
	switch opts.Mode {
	case ModeSmart:
	case ModeCustom:
		if len(opts.CustomColumns) == 0 {
			return nil, fmt.Errorf("%w: custom mode requires custom_columns", dataset.ErrInvalidParameter)
		}
	default:
		return nil, fmt.Errorf("%w: unknown clustering mode %q", dataset.ErrInvalidParameter, opts.Mode)
	}

	ctx, span := startAnalyzeSpan(ctx, string(opts.Mode), opts.NClusters)
	defer span.End()

	// Base journeys use the primary event label; a second build with the
	// composite label feeds the combined_* features.
	baseRoles := roles
	baseRoles.AdditionalEventCols = nil
	base, err := journey.Build(ds, baseRoles)
	if err != nil {
		return nil, err
	}
	var combined []*journey.UserJourney
	if len(ds.FilterExisting(roles.AdditionalEventCols)) > 0 {
		if combined, err = journey.Build(ds, roles); err != nil {
			return nil, err
		}
	}

	userIDs := make([]string, len(base))
	for i, j := range base {
		userIDs[i] = j.UserID
	}

	nClusters := opts.NClusters
	if len(userIDs) < nClusters {
		nClusters = len(userIDs) / 2
		if nClusters < 1 {
			nClusters = 1
		}
	}
	if nClusters < 2 {
		recordAnalyzeMetrics(ctx, time.Since(start), 0, true)
		return &Result{
			TotalUsers: len(userIDs),
			Message:    "not enough users for a meaningful segmentation",
		}, nil
	}

	var (
		X       [][]float64
		columns []string
	)
	if opts.Mode == ModeCustom {
		columns = opts.CustomColumns
		X, err = customFeatures(ds, roles, userIDs, columns)
	} else {
		X, columns, err = smartFeatures(base, combined, opts.SelectedFeatures, opts.MaxPathLength)
	}
	if err != nil {
		return nil, err
	}
	if len(X) < nClusters {
		recordAnalyzeMetrics(ctx, time.Since(start), 0, true)
		return &Result{
			TotalUsers: len(userIDs),
			Message:    "not enough feature rows for the requested cluster count",
		}, nil
	}

	scaled := stats.Standardize(X)
	labels := stats.KMeans(scaled, stats.DefaultKMeansOptions(nClusters))
	labels, nClusters = stats.RelabelContiguous(labels)

	res := &Result{
		TotalUsers:     len(userIDs),
		NClusters:      nClusters,
		Mode:           opts.Mode,
		FeatureColumns: columns,
	}

	for c := 0; c < nClusters; c++ {
		var members []int
		for i, l := range labels {
			if l == c {
				members = append(members, i)
			}
		}
		cl := Cluster{
			ClusterID:    c,
			UserCount:    len(members),
			Percentage:   stats.Round(float64(len(members))/float64(len(userIDs))*100, 2),
			FeatureStats: make(map[string]FeatureStat, len(columns)),
		}
		for fi, col := range columns {
			vals := make([]float64, len(members))
			for mi, i := range members {
				vals[mi] = X[i][fi]
			}
			cl.FeatureStats[col] = FeatureStat{
				Mean: stats.Round(stats.Mean(vals), 2),
				Std:  stats.RoundPtr(stats.SampleStd(vals), 2),
				Min:  stats.Round(stats.Min(vals), 2),
				Max:  stats.Round(stats.Max(vals), 2),
			}
		}
		cl.Description = describeCluster(cl.FeatureStats, columns, opts.Mode)
		res.Clusters = append(res.Clusters, cl)
	}
	sort.SliceStable(res.Clusters, func(i, j int) bool {
		return res.Clusters[i].UserCount > res.Clusters[j].UserCount
	})

	for i, uid := range userIDs {
		res.UserClusterMapping = append(res.UserClusterMapping, UserAssignment{
			UserID:  uid,
			Cluster: labels[i],
		})
	}

	res.FeatureImportance = featureImportance(X, labels, columns, nClusters)

	setAnalyzeSpanResult(span, nClusters)
	recordAnalyzeMetrics(ctx, time.Since(start), nClusters, false)
	return res, nil
}

// featureImportance ranks features by one-way ANOVA F-statistic across
// the cluster assignment. Features with a degenerate within-cluster
// sample (any group smaller than 2) are skipped.
func featureImportance(X [][]float64, labels []int, columns []string, nClusters int) []FeatureImportance {
	var out []FeatureImportance
	for fi, col := range columns {
		groups := make([][]float64, nClusters)
		for i, l := range labels {
			groups[l] = append(groups[l], X[i][fi])
		}
		degenerate := false
		for _, g := range groups {
			if len(g) < 2 {
				degenerate = true
				break
			}
		}
		if degenerate || nClusters < 2 {
			continue
		}
		f, p := stats.FOneWay(groups)
		if math.IsNaN(f) {
			f = 0
		}
		if math.IsNaN(p) {
			p = 1
		}
		out = append(out, FeatureImportance{
			Feature:    col,
			FStatistic: stats.Round(f, 2),
			PValue:     stats.Round(p, 4),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].FStatistic > out[j].FStatistic
	})
	if len(out) > importanceCap {
		out = out[:importanceCap]
	}
	return out
}
