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
	"fmt"
	"time"

	"github.com/AleutianAI/InsightEase/services/behavior/dataset"
	"github.com/AleutianAI/InsightEase/services/behavior/internal/ordmap"
	"github.com/AleutianAI/InsightEase/services/behavior/journey"
	"github.com/AleutianAI/InsightEase/services/behavior/stats"
)

// sessionGap is the inactivity threshold that opens a new session.
const sessionGap = 30 * time.Minute

// smartFeatures extracts the selected behavioral features for each user.
//
// base carries the primary event labels; combined carries the composite
// labels when additional event columns are configured (nil otherwise, in
// which case combined features fall back to the base ones).
func smartFeatures(base, combined []*journey.UserJourney, selected []string, maxPathLength int) ([][]float64, []string, error) {
	if len(selected) == 0 {
		selected = SmartFeatures()
	}
	want := map[string]bool{}
	for _, f := range selected {
		if !knownFeature(f) {
			return nil, nil, fmt.Errorf("%w: unknown feature %q", dataset.ErrInvalidParameter, f)
		}
		want[f] = true
	}

	// Canonical order keeps feature columns stable across runs.
	var columns []string
	for _, f := range SmartFeatures() {
		if want[f] {
			columns = append(columns, f)
		}
	}

	combinedByUser := map[string][]string{}
	for _, j := range combined {
		combinedByUser[j.UserID] = j.Labels()
	}

	X := make([][]float64, 0, len(base))
	for _, j := range base {
		labels := j.Labels()
		times := j.Times()
		truncated := journey.Truncate(labels, maxPathLength)

		vals := map[string]float64{}

		vals[FeatTotalEvents] = float64(len(labels))
		vals[FeatUniqueEvents] = float64(uniqueCount(labels))

		if len(times) > 1 {
			var gapSum float64
			sessions := 1
			for i := 1; i < len(times); i++ {
				gap := times[i].Sub(times[i-1])
				gapSum += gap.Seconds()
				if gap > sessionGap {
					sessions++
				}
			}
			vals[FeatAvgTimeBetween] = gapSum / float64(len(times)-1)
			vals[FeatTotalDuration] = times[len(times)-1].Sub(times[0]).Seconds()
			vals[FeatSessionCount] = float64(sessions)
		} else {
			vals[FeatSessionCount] = 1
		}
		vals[FeatAvgSessionLength] = float64(len(labels)) / vals[FeatSessionCount]

		for _, ts := range times {
			switch h := ts.Hour(); {
			case h >= 6 && h < 12:
				vals[FeatMorningActivity]++
			case h >= 12 && h < 18:
				vals[FeatAfternoonActivity]++
			case h >= 18:
				vals[FeatEveningActivity]++
			default:
				vals[FeatNightActivity]++
			}
		}

		depth := len(labels)
		if depth > maxPathLength {
			depth = maxPathLength
		}
		vals[FeatPathDepth] = float64(depth)

		vals[FeatBehaviorEntropy] = labelEntropy(labels)

		if repeats := len(truncated) - uniqueCount(truncated); repeats > 0 {
			vals[FeatHasRepetition] = 1
			vals[FeatRepetitionRate] = float64(repeats) / float64(len(truncated))
		}

		if cl, ok := combinedByUser[j.UserID]; ok {
			vals[FeatCombinedUnique] = float64(uniqueCount(cl))
			vals[FeatCombinedEntropy] = labelEntropy(cl)
		} else {
			vals[FeatCombinedUnique] = vals[FeatUniqueEvents]
			vals[FeatCombinedEntropy] = vals[FeatBehaviorEntropy]
		}

		row := make([]float64, len(columns))
		for i, c := range columns {
			row[i] = vals[c]
		}
		X = append(X, row)
	}
	return X, columns, nil
}

// customFeatures averages the given numeric columns per user, in the
// journeys' user order. Non-numeric cells are skipped; a user with no
// numeric value in a column gets 0.
func customFeatures(ds *dataset.Dataset, roles dataset.Roles, userOrder []string, columns []string) ([][]float64, error) {
	if err := ds.RequireColumns(columns...); err != nil {
		return nil, err
	}

	sums := make(map[string][]float64, len(userOrder))
	counts := make(map[string][]int, len(userOrder))
	for _, uid := range userOrder {
		sums[uid] = make([]float64, len(columns))
		counts[uid] = make([]int, len(columns))
	}
	for _, row := range ds.Rows {
		uid := dataset.AsString(row[roles.UserID])
		s, ok := sums[uid]
		if !ok {
			continue
		}
		c := counts[uid]
		for i, col := range columns {
			if v, ok := dataset.AsFloat(row[col]); ok {
				s[i] += v
				c[i]++
			}
		}
	}

	X := make([][]float64, 0, len(userOrder))
	for _, uid := range userOrder {
		row := make([]float64, len(columns))
		for i := range columns {
			if counts[uid][i] > 0 {
				row[i] = sums[uid][i] / float64(counts[uid][i])
			}
		}
		X = append(X, row)
	}
	return X, nil
}

func knownFeature(name string) bool {
	for _, f := range SmartFeatures() {
		if f == name {
			return true
		}
	}
	return false
}

func uniqueCount(labels []string) int {
	seen := map[string]bool{}
	for _, l := range labels {
		seen[l] = true
	}
	return len(seen)
}

func labelEntropy(labels []string) float64 {
	counter := ordmap.NewCounter()
	for _, l := range labels {
		counter.Add(l, 1)
	}
	counts := make([]int, 0, counter.Len())
	for _, k := range counter.Keys() {
		counts = append(counts, counter.Get(k))
	}
	return stats.Entropy(counts)
}
