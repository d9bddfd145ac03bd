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
	"fmt"
	"sort"
	"strings"

	"github.com/AleutianAI/InsightEase/services/behavior/internal/ordmap"
	"github.com/AleutianAI/InsightEase/services/behavior/stats"
)

const ruleSep = "\x1f"

// mineAssociationRules derives A -> B and A+B -> C rules from ordered
// co-occurrence of distinct events.
//
// Each user's duplicates are collapsed (keeping first-occurrence order)
// before pairing, so a user contributes at most once per pair or triple.
// The triple walk is O(k^3) in the user's distinct event count; callers
// bound k upstream through the path length cap.
func mineAssociationRules(seqs []sequence, minCount int, minConfidence float64) []Rule {
	total := len(seqs)
	if total == 0 {
		return nil
	}

	itemCounts := ordmap.NewCounter()
	pairCounts := ordmap.NewCounter()
	tripleCounts := ordmap.NewCounter()

	for _, s := range seqs {
		unique := dedupe(s.events)
		for _, e := range unique {
			itemCounts.Add(e, 1)
		}
		n := len(unique)
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				pairCounts.Add(unique[i]+ruleSep+unique[j], 1)
				for k := j + 1; k < n; k++ {
					tripleCounts.Add(unique[i]+ruleSep+unique[j]+ruleSep+unique[k], 1)
				}
			}
		}
	}

	var rules []Rule

	for _, key := range pairCounts.Keys() {
		count := pairCounts.Get(key)
		if count < minCount {
			continue
		}
		parts := strings.SplitN(key, ruleSep, 2)
		a, b := parts[0], parts[1]
		aCount := itemCounts.Get(a)
		if aCount == 0 {
			continue
		}
		confidence := float64(count) / float64(aCount)
		if confidence < minConfidence {
			continue
		}
		lift := confidence / (float64(itemCounts.Get(b)) / float64(total))
		rules = append(rules, Rule{
			Antecedent: []string{a},
			Consequent: b,
			RuleStr:    fmt.Sprintf("%s → %s", a, b),
			Support:    stats.Round(float64(count)/float64(total), 4),
			Confidence: stats.Round(confidence, 4),
			Lift:       stats.Round(lift, 4),
			Count:      count,
			RuleType:   "single",
		})
	}

	for _, key := range tripleCounts.Keys() {
		count := tripleCounts.Get(key)
		if count < minCount {
			continue
		}
		parts := strings.SplitN(key, ruleSep, 3)
		a, b, c := parts[0], parts[1], parts[2]
		abCount := pairCounts.Get(a + ruleSep + b)
		if abCount == 0 {
			continue
		}
		confidence := float64(count) / float64(abCount)
		if confidence < minConfidence {
			continue
		}
		lift := confidence / (float64(itemCounts.Get(c)) / float64(total))
		rules = append(rules, Rule{
			Antecedent: []string{a, b},
			Consequent: c,
			RuleStr:    fmt.Sprintf("%s + %s → %s", a, b, c),
			Support:    stats.Round(float64(count)/float64(total), 4),
			Confidence: stats.Round(confidence, 4),
			Lift:       stats.Round(lift, 4),
			Count:      count,
			RuleType:   "dual",
		})
	}

	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].Confidence != rules[j].Confidence {
			return rules[i].Confidence > rules[j].Confidence
		}
		return rules[i].Lift > rules[j].Lift
	})
	if len(rules) > associationRuleCap {
		rules = rules[:associationRuleCap]
	}
	return rules
}

// dedupe collapses duplicates, preserving first-occurrence order.
func dedupe(events []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, e := range events {
		if !seen[e] {
			seen[e] = true
			out = append(out, e)
		}
	}
	return out
}
