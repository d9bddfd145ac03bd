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
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/InsightEase/services/behavior/attribution"
	"github.com/AleutianAI/InsightEase/services/behavior/dataset"
	"github.com/AleutianAI/InsightEase/services/behavior/funnel"
	"github.com/AleutianAI/InsightEase/services/behavior/keypath"
	"github.com/AleutianAI/InsightEase/services/behavior/pathgraph"
	"github.com/AleutianAI/InsightEase/services/behavior/seqmine"
)

func eventDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	ds := &dataset.Dataset{Columns: []string{"user_id", "event", "channel", "ts", "converted"}}

	add := func(uid, event, channel string, offset time.Duration, converted bool) {
		ds.Rows = append(ds.Rows, dataset.Row{
			"user_id":   uid,
			"event":     event,
			"channel":   channel,
			"ts":        start.Add(offset),
			"converted": converted,
		})
	}
	add("u1", "signup", "ads", 0, false)
	add("u1", "browse", "email", time.Hour, false)
	add("u1", "purchase", "search", 2*time.Hour, true)
	add("u2", "signup", "email", 0, false)
	add("u2", "browse", "email", time.Hour, false)
	return ds
}

func testRoles() dataset.Roles {
	return dataset.Roles{
		UserID:     "user_id",
		Event:      "event",
		Timestamp:  "ts",
		Conversion: "converted",
		Touchpoint: "channel",
	}
}

func TestRunFunnel(t *testing.T) {
	env, err := Run(context.Background(), eventDataset(t), Request{
		Operation: OpFunnel,
		Roles:     testRoles(),
		Params:    Params{Funnel: funnel.Options{Steps: []string{"signup", "browse", "purchase"}}},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, env.RunID)
	assert.Equal(t, OpFunnel, env.Operation)
	assert.Equal(t, 5, env.Rows)
	assert.Equal(t, 2, env.Users)

	res, ok := env.Data.(*funnel.Result)
	require.True(t, ok)
	assert.Equal(t, 2, res.Steps[0].Users)
	assert.Equal(t, 1, res.Steps[2].Users)
}

func TestRunPath(t *testing.T) {
	env, err := Run(context.Background(), eventDataset(t), Request{
		Operation: OpPath,
		Roles:     testRoles(),
		Params:    Params{Path: pathgraph.Options{MinUserCount: 1}},
	})
	require.NoError(t, err)

	res, ok := env.Data.(*pathgraph.Result)
	require.True(t, ok)
	assert.Equal(t, 2, res.TotalUsers)
	assert.Equal(t, 2, res.TotalPaths)
}

func TestRunKeyPath(t *testing.T) {
	env, err := Run(context.Background(), eventDataset(t), Request{
		Operation: OpKeyPath,
		Roles:     testRoles(),
		Params:    Params{KeyPath: keypath.Options{StartEvent: "signup", EndEvent: "purchase"}},
	})
	require.NoError(t, err)

	res, ok := env.Data.(*keypath.Result)
	require.True(t, ok)
	assert.Equal(t, 1, res.CompletePathCount)
}

func TestRunAttributionUsesTouchpointColumn(t *testing.T) {
	env, err := Run(context.Background(), eventDataset(t), Request{
		Operation: OpAttribution,
		Roles:     testRoles(),
	})
	require.NoError(t, err)

	res, ok := env.Data.(*attribution.Result)
	require.True(t, ok)

	// Credits go to channels, not event names, and only u1 converted.
	assert.Equal(t, 1, res.TotalConversions)
	for _, credits := range res.Models {
		for _, c := range credits {
			assert.Contains(t, []string{"ads", "email", "search"}, c.Touchpoint)
		}
	}
}

func TestRunSequenceMining(t *testing.T) {
	env, err := Run(context.Background(), eventDataset(t), Request{
		Operation: OpSequenceMining,
		Roles:     testRoles(),
		Params:    Params{SequenceMining: seqmine.Options{MinSupport: 0.5}},
	})
	require.NoError(t, err)

	res, ok := env.Data.(*seqmine.Result)
	require.True(t, ok)
	assert.Equal(t, 2, res.TotalSequences)
}

func TestRunUnknownOperation(t *testing.T) {
	_, err := Run(context.Background(), eventDataset(t), Request{
		Operation: Operation("sentiment"),
		Roles:     testRoles(),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, dataset.ErrInvalidParameter))
}

func TestRunPropagatesAnalyzerErrors(t *testing.T) {
	_, err := Run(context.Background(), eventDataset(t), Request{
		Operation: OpFunnel,
		Roles:     testRoles(),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, dataset.ErrInvalidParameter))
}

func TestTouchpointRolesFallback(t *testing.T) {
	roles := testRoles()
	rewired := touchpointRoles(roles)
	assert.Equal(t, "channel", rewired.Event)

	roles.Touchpoint = ""
	assert.Equal(t, "event", touchpointRoles(roles).Event)
}
