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
	"strings"
)

// describeCluster renders a short human-readable label for a segment from
// its per-feature means.
func describeCluster(featStats map[string]FeatureStat, columns []string, mode Mode) string {
	if mode == ModeCustom {
		parts := make([]string, 0, 3)
		for i, col := range columns {
			if i == 3 {
				break
			}
			parts = append(parts, fmt.Sprintf("%s mean %.1f", col, featStats[col].Mean))
		}
		return strings.Join(parts, ", ")
	}

	var parts []string

	if st, ok := featStats[FeatTotalEvents]; ok {
		switch {
		case st.Mean > 50:
			parts = append(parts, "highly active users")
		case st.Mean > 20:
			parts = append(parts, "moderately active users")
		default:
			parts = append(parts, "low-activity users")
		}
	}

	if st, ok := featStats[FeatBehaviorEntropy]; ok {
		if st.Mean > 3 {
			parts = append(parts, "diverse behavior")
		} else if st.Mean < 1.5 {
			parts = append(parts, "narrow behavior")
		}
	}

	if st, ok := featStats[FeatSessionCount]; ok {
		if st.Mean > 5 {
			parts = append(parts, "frequent return visits")
		} else if st.Mean == 1 {
			parts = append(parts, "single visit")
		}
	}

	timeBuckets := []string{FeatMorningActivity, FeatAfternoonActivity, FeatEveningActivity, FeatNightActivity}
	timeNames := map[string]string{
		FeatMorningActivity:   "most active in the morning",
		FeatAfternoonActivity: "most active in the afternoon",
		FeatEveningActivity:   "most active in the evening",
		FeatNightActivity:     "most active at night",
	}
	allPresent := true
	for _, b := range timeBuckets {
		if _, ok := featStats[b]; !ok {
			allPresent = false
			break
		}
	}
	if allPresent {
		peak := timeBuckets[0]
		for _, b := range timeBuckets[1:] {
			if featStats[b].Mean > featStats[peak].Mean {
				peak = b
			}
		}
		parts = append(parts, timeNames[peak])
	}

	if st, ok := featStats[FeatPathDepth]; ok {
		if st.Mean > 8 {
			parts = append(parts, "deep navigation")
		} else if st.Mean < 3 {
			parts = append(parts, "shallow navigation")
		}
	}

	if len(parts) == 0 {
		return "typical user segment"
	}
	return strings.Join(parts, ", ")
}
