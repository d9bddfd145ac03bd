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
	"fmt"
	"log/slog"
	"sort"

	"github.com/AleutianAI/InsightEase/services/behavior/dataset"
)

// Build materializes per-user journeys from a dataset and role mapping.
//
// # Inputs
//
//   - ds: Rectangular dataset.
//   - roles: Column roles. UserID, Event, and Timestamp are required;
//     Conversion, ConversionValue, and AdditionalEventCols are optional.
//     Optional columns that are absent from the dataset are ignored.
//
// # Outputs
//
//   - []*UserJourney: One journey per user, in first-seen user order.
//   - error: dataset.ErrMissingColumn when a required role column is
//     absent, dataset.ErrBadTimestamp when a timestamp cannot be parsed.
func Build(ds *dataset.Dataset, roles dataset.Roles) ([]*UserJourney, error) {
	if err := ds.RequireColumns(roles.UserID, roles.Event, roles.Timestamp); err != nil {
		return nil, err
	}

	additional := ds.FilterExisting(roles.AdditionalEventCols)
	hasConversion := roles.Conversion != "" && ds.HasColumn(roles.Conversion)
	hasValue := roles.ConversionValue != "" && ds.HasColumn(roles.ConversionValue)

	type userRows struct {
		events []Event
		last   dataset.Row
	}

	order := make([]string, 0)
	byUser := make(map[string]*userRows)

	for i, row := range ds.Rows {
		uid := dataset.AsString(row[roles.UserID])
		ts, err := dataset.ParseTime(row[roles.Timestamp])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		u, ok := byUser[uid]
		if !ok {
			u = &userRows{}
			byUser[uid] = u
			order = append(order, uid)
		}
		u.events = append(u.events, Event{
			Label:     dataset.CompositeLabel(row, roles.Event, additional),
			Timestamp: ts,
		})
	}

	journeys := make([]*UserJourney, 0, len(order))
	for _, uid := range order {
		u := byUser[uid]
		if len(u.events) == 0 {
			continue
		}
		sort.SliceStable(u.events, func(a, b int) bool {
			return u.events[a].Timestamp.Before(u.events[b].Timestamp)
		})
		journeys = append(journeys, &UserJourney{
			UserID: uid,
			Events: u.events,
		})
	}

	// Conversion flag and value come from each user's chronologically last
	// row, so resolve them after sorting.
	if hasConversion || hasValue {
		lastRow := make(map[string]dataset.Row, len(order))
		lastTime := make(map[string]int64, len(order))
		for _, row := range ds.Rows {
			uid := dataset.AsString(row[roles.UserID])
			ts, _ := dataset.ParseTime(row[roles.Timestamp])
			if prev, ok := lastTime[uid]; !ok || ts.UnixNano() >= prev {
				lastTime[uid] = ts.UnixNano()
				lastRow[uid] = row
			}
		}
		for _, j := range journeys {
			row := lastRow[j.UserID]
			if hasConversion {
				j.Converted = dataset.AsBool(row[roles.Conversion])
			}
			if hasValue {
				if v, ok := dataset.AsFloat(row[roles.ConversionValue]); ok {
					j.ConversionValue = v
				}
			}
		}
	}

	if len(journeys) == 0 {
		slog.Warn("journey build produced no journeys",
			slog.Int("rows", len(ds.Rows)),
			slog.String("user_col", roles.UserID))
	}
	return journeys, nil
}

// Truncate returns the first n labels of the journey, or all of them when
// the journey is shorter. Analyzers use this to cap combinatorial work.
func Truncate(labels []string, n int) []string {
	if n > 0 && len(labels) > n {
		return labels[:n]
	}
	return labels
}
