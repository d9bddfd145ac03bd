// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package attribution

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/InsightEase/services/behavior/dataset"
	"github.com/AleutianAI/InsightEase/services/behavior/journey"
)

func mkJourney(t *testing.T, userID string, converted bool, value float64, gap time.Duration, touchpoints ...string) *journey.UserJourney {
	t.Helper()
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	j := &journey.UserJourney{UserID: userID, Converted: converted, ConversionValue: value}
	for i, tp := range touchpoints {
		j.Events = append(j.Events, journey.Event{
			Label:     tp,
			Timestamp: start.Add(time.Duration(i) * gap),
		})
	}
	return j
}

func trackedFixture(t *testing.T) []*journey.UserJourney {
	t.Helper()
	return []*journey.UserJourney{
		mkJourney(t, "u1", true, 100, time.Hour, "ads", "email", "search"),
		mkJourney(t, "u2", true, 50, time.Hour, "email"),
		mkJourney(t, "u3", false, 0, time.Hour, "ads"),
	}
}

func TestAnalyzeValueConservation(t *testing.T) {
	res, err := Analyze(trackedFixture(t), Options{ConversionTracked: true, ValueTracked: true})
	require.NoError(t, err)

	assert.Equal(t, 3, res.UserJourneyCount)
	assert.Equal(t, 2, res.TotalConversions)
	assert.Equal(t, 150.0, res.TotalConversionValue)

	// Every model conserves the total credited value.
	for model, credits := range res.Models {
		var sum float64
		for _, c := range credits {
			sum += c.Value
		}
		assert.InDelta(t, 150.0, sum, 1e-2, "model %s", model)

		var pct float64
		for _, c := range credits {
			pct += c.Percentage
		}
		assert.InDelta(t, 100.0, pct, 1e-1, "model %s", model)
	}
}

func TestFirstAndLastTouch(t *testing.T) {
	res, err := Analyze(trackedFixture(t), Options{
		Models:            []Model{ModelFirstTouch, ModelLastTouch},
		ConversionTracked: true,
		ValueTracked:      true,
	})
	require.NoError(t, err)

	first := res.Models[ModelFirstTouch]
	require.Len(t, first, 2)
	assert.Equal(t, "ads", first[0].Touchpoint)
	assert.Equal(t, 100.0, first[0].Value)
	assert.Equal(t, "email", first[1].Touchpoint)
	assert.Equal(t, 50.0, first[1].Value)

	last := res.Models[ModelLastTouch]
	require.Len(t, last, 2)
	assert.Equal(t, "search", last[0].Touchpoint)
	assert.Equal(t, 100.0, last[0].Value)
}

func TestPositionBasedDegenerateCases(t *testing.T) {
	single := []*journey.UserJourney{mkJourney(t, "u1", true, 1, time.Hour, "solo")}
	res, err := Analyze(single, Options{Models: []Model{ModelPositionBased}, ConversionTracked: true})
	require.NoError(t, err)
	require.Len(t, res.Models[ModelPositionBased], 1)
	assert.Equal(t, 100.0, res.Models[ModelPositionBased][0].Percentage)

	double := []*journey.UserJourney{mkJourney(t, "u1", true, 1, time.Hour, "a", "b")}
	res, err = Analyze(double, Options{Models: []Model{ModelPositionBased}, ConversionTracked: true})
	require.NoError(t, err)
	credits := res.Models[ModelPositionBased]
	require.Len(t, credits, 2)
	assert.Equal(t, 50.0, credits[0].Percentage)
	assert.Equal(t, 50.0, credits[1].Percentage)
}

func TestPositionBasedEndpointWeighting(t *testing.T) {
	js := []*journey.UserJourney{mkJourney(t, "u1", true, 1, time.Hour, "first", "mid1", "mid2", "last")}
	res, err := Analyze(js, Options{Models: []Model{ModelPositionBased}, ConversionTracked: true})
	require.NoError(t, err)

	byName := map[string]float64{}
	for _, c := range res.Models[ModelPositionBased] {
		byName[c.Touchpoint] = c.Percentage
	}
	assert.Equal(t, 40.0, byName["first"])
	assert.Equal(t, 40.0, byName["last"])
	assert.Equal(t, 10.0, byName["mid1"])
	assert.Equal(t, 10.0, byName["mid2"])
}

func TestTimeDecayFavorsRecency(t *testing.T) {
	// Two touchpoints a week apart: the one at conversion time wins.
	js := []*journey.UserJourney{mkJourney(t, "u1", true, 1, 7*24*time.Hour, "early", "late")}
	res, err := Analyze(js, Options{Models: []Model{ModelTimeDecay}, ConversionTracked: true})
	require.NoError(t, err)

	credits := res.Models[ModelTimeDecay]
	require.Len(t, credits, 2)
	assert.Equal(t, "late", credits[0].Touchpoint)
	assert.Greater(t, credits[0].Value, credits[1].Value)
}

func TestShapleyTruncation(t *testing.T) {
	js := []*journey.UserJourney{mkJourney(t, "u1", true, 1, time.Hour, "a", "b", "c")}
	res, err := Analyze(js, Options{Models: []Model{ModelShapley}, MaxTouchpoints: 2, ConversionTracked: true})
	require.NoError(t, err)

	credits := res.Models[ModelShapley]
	require.Len(t, credits, 2)
	for _, c := range credits {
		assert.NotEqual(t, "c", c.Touchpoint)
	}
}

func TestUntrackedConversionTreatsAllAsConverted(t *testing.T) {
	js := []*journey.UserJourney{
		mkJourney(t, "u1", false, 0, time.Hour, "a"),
		mkJourney(t, "u2", false, 0, time.Hour, "b"),
	}
	res, err := Analyze(js, Options{Models: []Model{ModelLinear}})
	require.NoError(t, err)

	assert.Equal(t, 2, res.TotalConversions)
	assert.Equal(t, 2.0, res.TotalConversionValue)
	assert.Equal(t, 100.0, res.Summary.ConversionRate)
}

func TestAnalyzeValidation(t *testing.T) {
	js := []*journey.UserJourney{mkJourney(t, "u1", true, 1, time.Hour, "a")}

	_, err := Analyze(js, Options{Models: []Model{"median_touch"}})
	assert.True(t, errors.Is(err, dataset.ErrInvalidParameter))

	_, err = Analyze(nil, Options{})
	assert.True(t, errors.Is(err, dataset.ErrInsufficientData))
}

func TestSummaryModelComparison(t *testing.T) {
	res, err := Analyze(trackedFixture(t), Options{ConversionTracked: true, ValueTracked: true})
	require.NoError(t, err)

	require.Len(t, res.Summary.ModelComparison, len(AllModels()))
	assert.InDelta(t, 1.67, res.Summary.AvgTouchpointsPerJourney, 1e-9)
	assert.InDelta(t, 66.67, res.Summary.ConversionRate, 1e-9)
	for _, cmp := range res.Summary.ModelComparison {
		assert.LessOrEqual(t, len(cmp.Top3), 3)
	}
}
