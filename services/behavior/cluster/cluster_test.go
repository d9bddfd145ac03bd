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
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/InsightEase/services/behavior/dataset"
)

// behaviorDataset builds a table with heavy users (many events) and light
// users (two events each), plus a numeric spend column.
func behaviorDataset(t *testing.T, heavy, light int) *dataset.Dataset {
	t.Helper()
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	ds := &dataset.Dataset{Columns: []string{"user_id", "event", "ts", "spend"}}

	events := []string{"login", "browse", "search", "view", "cart"}
	for u := 0; u < heavy; u++ {
		uid := fmt.Sprintf("heavy%d", u)
		for i := 0; i < 30; i++ {
			ds.Rows = append(ds.Rows, dataset.Row{
				"user_id": uid,
				"event":   events[i%len(events)],
				"ts":      start.Add(time.Duration(i) * 5 * time.Minute),
				"spend":   100.0,
			})
		}
	}
	for u := 0; u < light; u++ {
		uid := fmt.Sprintf("light%d", u)
		for i := 0; i < 2; i++ {
			ds.Rows = append(ds.Rows, dataset.Row{
				"user_id": uid,
				"event":   events[i],
				"ts":      start.Add(time.Duration(i) * 5 * time.Minute),
				"spend":   1.0,
			})
		}
	}
	return ds
}

func behaviorRoles() dataset.Roles {
	return dataset.Roles{UserID: "user_id", Event: "event", Timestamp: "ts"}
}

func TestAnalyzeSmartSeparatesActivityLevels(t *testing.T) {
	ds := behaviorDataset(t, 4, 4)
	res, err := Analyze(context.Background(), ds, behaviorRoles(), Options{NClusters: 2})
	require.NoError(t, err)

	assert.Empty(t, res.Message)
	assert.Equal(t, 8, res.TotalUsers)
	assert.Equal(t, 2, res.NClusters)
	assert.Equal(t, ModeSmart, res.Mode)
	require.Len(t, res.Clusters, 2)
	require.Len(t, res.UserClusterMapping, 8)

	// Heavy and light users land in different clusters.
	byUser := map[string]int{}
	for _, a := range res.UserClusterMapping {
		byUser[a.UserID] = a.Cluster
	}
	assert.Equal(t, byUser["heavy0"], byUser["heavy3"])
	assert.Equal(t, byUser["light0"], byUser["light3"])
	assert.NotEqual(t, byUser["heavy0"], byUser["light0"])

	// Clusters are sorted by size descending; here both have four users.
	for _, cl := range res.Clusters {
		assert.Equal(t, 4, cl.UserCount)
		assert.Equal(t, 50.0, cl.Percentage)
		assert.NotEmpty(t, cl.Description)
		require.Contains(t, cl.FeatureStats, FeatTotalEvents)
	}

	assert.NotEmpty(t, res.FeatureImportance)
	assert.LessOrEqual(t, len(res.FeatureImportance), 5)
}

func TestAnalyzeCustomMode(t *testing.T) {
	ds := behaviorDataset(t, 4, 4)
	res, err := Analyze(context.Background(), ds, behaviorRoles(), Options{
		NClusters:     2,
		Mode:          ModeCustom,
		CustomColumns: []string{"spend"},
	})
	require.NoError(t, err)

	assert.Equal(t, ModeCustom, res.Mode)
	assert.Equal(t, []string{"spend"}, res.FeatureColumns)
	require.Len(t, res.Clusters, 2)

	means := []float64{
		res.Clusters[0].FeatureStats["spend"].Mean,
		res.Clusters[1].FeatureStats["spend"].Mean,
	}
	assert.ElementsMatch(t, []float64{100.0, 1.0}, means)
}

func TestAnalyzeTooFewUsersDegradesGracefully(t *testing.T) {
	ds := behaviorDataset(t, 1, 2)
	res, err := Analyze(context.Background(), ds, behaviorRoles(), Options{NClusters: 5})
	require.NoError(t, err)

	assert.NotEmpty(t, res.Message)
	assert.Equal(t, 3, res.TotalUsers)
	assert.Empty(t, res.Clusters)
}

func TestAnalyzeValidation(t *testing.T) {
	ds := behaviorDataset(t, 2, 2)

	_, err := Analyze(context.Background(), ds, behaviorRoles(), Options{Mode: ModeCustom})
	assert.True(t, errors.Is(err, dataset.ErrInvalidParameter))

	_, err = Analyze(context.Background(), ds, behaviorRoles(), Options{Mode: Mode("fuzzy")})
	assert.True(t, errors.Is(err, dataset.ErrInvalidParameter))

	_, err = Analyze(context.Background(), ds, behaviorRoles(), Options{
		SelectedFeatures: []string{"astrology_sign"},
	})
	assert.True(t, errors.Is(err, dataset.ErrInvalidParameter))

	_, err = Analyze(context.Background(), ds, behaviorRoles(), Options{
		Mode:          ModeCustom,
		CustomColumns: []string{"revenue"},
	})
	assert.True(t, errors.Is(err, dataset.ErrMissingColumn))
}

func TestDescribeCluster(t *testing.T) {
	stats := map[string]FeatureStat{
		FeatTotalEvents:  {Mean: 60},
		FeatSessionCount: {Mean: 1},
	}
	desc := describeCluster(stats, nil, ModeSmart)
	assert.Contains(t, desc, "highly active")
	assert.Contains(t, desc, "single visit")

	assert.Equal(t, "typical user segment", describeCluster(map[string]FeatureStat{}, nil, ModeSmart))

	custom := describeCluster(map[string]FeatureStat{"spend": {Mean: 12.345}}, []string{"spend"}, ModeCustom)
	assert.Equal(t, "spend mean 12.3", custom)
}
