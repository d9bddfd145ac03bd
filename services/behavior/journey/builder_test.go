// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package journey

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/InsightEase/services/behavior/dataset"
)

func testDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	return &dataset.Dataset{
		Columns: []string{"user_id", "event", "page", "ts", "converted", "value"},
		Rows: []dataset.Row{
			{"user_id": "u1", "event": "view", "page": "home", "ts": "2025-03-01T10:05:00Z", "converted": false, "value": nil},
			{"user_id": "u2", "event": "view", "page": "promo", "ts": "2025-03-01T09:00:00Z", "converted": false, "value": nil},
			{"user_id": "u1", "event": "click", "page": "home", "ts": "2025-03-01T10:00:00Z", "converted": false, "value": nil},
			{"user_id": "u1", "event": "purchase", "page": "checkout", "ts": "2025-03-01T11:00:00Z", "converted": true, "value": 25.0},
		},
	}
}

func TestBuildGroupsAndSorts(t *testing.T) {
	ds := testDataset(t)
	js, err := Build(ds, dataset.Roles{UserID: "user_id", Event: "event", Timestamp: "ts"})
	require.NoError(t, err)
	require.Len(t, js, 2)

	// First-seen user order.
	assert.Equal(t, "u1", js[0].UserID)
	assert.Equal(t, "u2", js[1].UserID)

	// Chronological within each user, regardless of row order.
	assert.Equal(t, []string{"click", "view", "purchase"}, js[0].Labels())
	assert.Equal(t, []string{"view"}, js[1].Labels())
}

func TestBuildConversionFromLastRow(t *testing.T) {
	ds := testDataset(t)
	js, err := Build(ds, dataset.Roles{
		UserID:          "user_id",
		Event:           "event",
		Timestamp:       "ts",
		Conversion:      "converted",
		ConversionValue: "value",
	})
	require.NoError(t, err)

	assert.True(t, js[0].Converted)
	assert.Equal(t, 25.0, js[0].ConversionValue)
	assert.False(t, js[1].Converted)
	assert.Equal(t, 0.0, js[1].ConversionValue)
}

func TestBuildCompositeLabels(t *testing.T) {
	ds := testDataset(t)
	js, err := Build(ds, dataset.Roles{
		UserID:              "user_id",
		Event:               "event",
		AdditionalEventCols: []string{"page", "nonexistent"},
		Timestamp:           "ts",
	})
	require.NoError(t, err)

	// Absent additional columns are dropped, present ones are joined.
	assert.Equal(t, []string{"click_home", "view_home", "purchase_checkout"}, js[0].Labels())
}

func TestBuildMissingColumn(t *testing.T) {
	ds := testDataset(t)
	_, err := Build(ds, dataset.Roles{UserID: "user_id", Event: "action", Timestamp: "ts"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, dataset.ErrMissingColumn))
}

func TestBuildBadTimestamp(t *testing.T) {
	ds := &dataset.Dataset{
		Columns: []string{"user_id", "event", "ts"},
		Rows:    []dataset.Row{{"user_id": "u1", "event": "view", "ts": "not a time"}},
	}
	_, err := Build(ds, dataset.Roles{UserID: "user_id", Event: "event", Timestamp: "ts"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, dataset.ErrBadTimestamp))
}

func TestTruncate(t *testing.T) {
	labels := []string{"a", "b", "c"}
	assert.Equal(t, []string{"a", "b"}, Truncate(labels, 2))
	assert.Equal(t, labels, Truncate(labels, 5))
	assert.Equal(t, labels, Truncate(labels, 0))
}
