// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package seqmine

import (
	"sort"

	"github.com/AleutianAI/InsightEase/services/behavior/internal/ordmap"
	"github.com/AleutianAI/InsightEase/services/behavior/stats"
)

// prefixSpan grows frequent prefixes over the sequence database.
//
// # Description
//
// For each frequent single item, the database is projected onto the
// suffixes following that item's first occurrence; prefixes then grow one
// item at a time by the first element of each projected suffix, as long as
// the grown prefix stays above the support threshold and within
// maxLength. The projection walk uses an explicit work stack, so a long
// event vocabulary cannot exhaust the call stack.
//
// Patterns are returned sorted by (support, conversion rate) descending.
func prefixSpan(seqs []sequence, minCount, maxLength int, conversionTracked bool) []Pattern {
	total := len(seqs)
	if total == 0 || maxLength < 1 {
		return nil
	}

	itemCounts := ordmap.NewCounter()
	for _, s := range seqs {
		seen := map[string]bool{}
		for _, e := range s.events {
			if !seen[e] {
				seen[e] = true
				itemCounts.Add(e, 1)
			}
		}
	}

	var patterns []Pattern

	emit := func(prefix []string, count int, convertedCount int) {
		p := Pattern{
			Pattern:      append([]string(nil), prefix...),
			SupportCount: count,
			Support:      stats.Round(float64(count)/float64(total), 4),
			Length:       len(prefix),
		}
		if conversionTracked && convertedCount > 0 {
			p.ConversionCount = convertedCount
			p.ConversionRate = stats.Round(float64(convertedCount)/float64(count), 4)
		}
		patterns = append(patterns, p)
	}

	type frame struct {
		db     []sequence
		prefix []string
		length int
	}
	var stack []frame

	for _, item := range itemCounts.Keys() {
		count := itemCounts.Get(item)
		if count < minCount {
			continue
		}
		var convertedCount int
		for _, s := range seqs {
			if s.converted && contains(s.events, item) {
				convertedCount++
			}
		}
		emit([]string{item}, count, convertedCount)

		if projected := projectOn(seqs, item); len(projected) > 0 {
			stack = append(stack, frame{db: projected, prefix: []string{item}, length: 2})
		}
	}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.length > maxLength {
			continue
		}

		// Only the first element of each projected suffix extends the
		// prefix; deeper occurrences are reached through re-projection.
		suffixCounts := ordmap.NewCounter()
		for _, s := range f.db {
			if len(s.events) > 0 {
				suffixCounts.Add(s.events[0], 1)
			}
		}

		for _, item := range suffixCounts.Keys() {
			count := suffixCounts.Get(item)
			if count < minCount {
				continue
			}
			var convertedCount int
			for _, s := range f.db {
				if len(s.events) > 0 && s.events[0] == item && s.converted {
					convertedCount++
				}
			}
			newPrefix := append(append([]string(nil), f.prefix...), item)
			emit(newPrefix, count, convertedCount)

			if projected := projectOn(f.db, item); len(projected) > 0 {
				stack = append(stack, frame{db: projected, prefix: newPrefix, length: f.length + 1})
			}
		}
	}

	sort.SliceStable(patterns, func(a, b int) bool {
		if patterns[a].Support != patterns[b].Support {
			return patterns[a].Support > patterns[b].Support
		}
		return patterns[a].ConversionRate > patterns[b].ConversionRate
	})
	return patterns
}

// projectOn returns the suffixes following the first occurrence of item in
// each sequence; sequences without the item, or with nothing after it,
// drop out.
func projectOn(seqs []sequence, item string) []sequence {
	var projected []sequence
	for _, s := range seqs {
		for i, e := range s.events {
			if e == item {
				if i+1 < len(s.events) {
					projected = append(projected, sequence{
						events:    s.events[i+1:],
						converted: s.converted,
					})
				}
				break
			}
		}
	}
	return projected
}

func contains(events []string, item string) bool {
	for _, e := range events {
		if e == item {
			return true
		}
	}
	return false
}
