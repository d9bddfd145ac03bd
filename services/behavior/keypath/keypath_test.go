// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package keypath

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/InsightEase/services/behavior/dataset"
	"github.com/AleutianAI/InsightEase/services/behavior/journey"
)

func mkJourney(t *testing.T, userID string, gap time.Duration, labels ...string) *journey.UserJourney {
	t.Helper()
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	j := &journey.UserJourney{UserID: userID}
	for i, l := range labels {
		j.Events = append(j.Events, journey.Event{
			Label:     l,
			Timestamp: start.Add(time.Duration(i) * gap),
		})
	}
	return j
}

func TestFindExtractsBoundedSegments(t *testing.T) {
	js := []*journey.UserJourney{
		mkJourney(t, "u1", time.Minute, "A", "B", "C"),
		mkJourney(t, "u2", time.Minute, "A", "C"),
		mkJourney(t, "u3", time.Minute, "C", "A"), // end before start: excluded
		mkJourney(t, "u4", time.Minute, "B", "B"), // neither boundary
	}
	res, err := Find(js, Options{StartEvent: "A", EndEvent: "C"})
	require.NoError(t, err)

	assert.Equal(t, 2, res.CompletePathCount)
	assert.Empty(t, res.Message)
	assert.Equal(t, 1.5, res.AvgSteps)

	require.NotNil(t, res.Optimal)
	assert.Equal(t, []string{"A", "C"}, res.Optimal.MinSteps.Path)
	assert.Equal(t, []string{"A", "C"}, res.Optimal.MinDuration.Path)
	assert.Equal(t, 60.0, res.Optimal.MinDuration.DurationSeconds)

	require.Len(t, res.TopPaths, 2)
	assert.Equal(t, 50.0, res.TopPaths[0].Percentage)
}

func TestFindMaxSteps(t *testing.T) {
	long := mkJourney(t, "u1", time.Minute, "A", "x1", "x2", "x3", "C")
	res, err := Find([]*journey.UserJourney{long}, Options{StartEvent: "A", EndEvent: "C", MaxSteps: 3})
	require.NoError(t, err)
	assert.Equal(t, 0, res.CompletePathCount)
	assert.NotEmpty(t, res.Message)

	res, err = Find([]*journey.UserJourney{long}, Options{StartEvent: "A", EndEvent: "C", MaxSteps: 4})
	require.NoError(t, err)
	assert.Equal(t, 1, res.CompletePathCount)
}

func TestFindNoMatchDegradesGracefully(t *testing.T) {
	js := []*journey.UserJourney{mkJourney(t, "u1", time.Minute, "A", "B")}
	res, err := Find(js, Options{StartEvent: "A", EndEvent: "Z"})
	require.NoError(t, err)

	assert.Equal(t, 0, res.CompletePathCount)
	assert.Contains(t, res.Message, "no complete path")
	assert.Nil(t, res.Optimal)
	assert.Empty(t, res.TopPaths)
}

func TestFindValidation(t *testing.T) {
	js := []*journey.UserJourney{mkJourney(t, "u1", time.Minute, "A")}

	_, err := Find(js, Options{StartEvent: "A"})
	assert.True(t, errors.Is(err, dataset.ErrInvalidParameter))

	_, err = Find(nil, Options{StartEvent: "A", EndEvent: "B"})
	assert.True(t, errors.Is(err, dataset.ErrInsufficientData))
}
