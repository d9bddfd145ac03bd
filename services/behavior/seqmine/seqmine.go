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

	"github.com/AleutianAI/InsightEase/services/behavior/dataset"
	"github.com/AleutianAI/InsightEase/services/behavior/internal/ordmap"
	"github.com/AleutianAI/InsightEase/services/behavior/journey"
	"github.com/AleutianAI/InsightEase/services/behavior/stats"
)

// Mine runs frequent-pattern and association-rule mining over the
// journeys.
//
// # Inputs
//
//   - journeys: Per-user ordered sequences; the Converted flag is honored
//     when opts.ConversionTracked is set.
//   - opts: Thresholds; zero values take defaults.
//
// # Outputs
//
//   - *Result: Frequent patterns (top 50), association rules (top 40),
//     high-conversion patterns (top 20), and database statistics.
//   - error: dataset.ErrInvalidParameter for thresholds outside (0, 1],
//     dataset.ErrInsufficientData for an empty database.
func Mine(journeys []*journey.UserJourney, opts Options) (*Result, error) {
	if opts.MinSupport == 0 {
		opts.MinSupport = DefaultOptions().MinSupport
	}
	if opts.MaxPatternLength <= 0 {
		opts.MaxPatternLength = DefaultOptions().MaxPatternLength
	}
	if opts.MinConfidence == 0 {
		opts.MinConfidence = DefaultOptions().MinConfidence
	}
	if opts.MinSupport < 0 || opts.MinSupport > 1 {
		return nil, fmt.Errorf("%w: min_support must be in (0, 1]", dataset.ErrInvalidParameter)
	}
	if opts.MinConfidence < 0 || opts.MinConfidence > 1 {
		return nil, fmt.Errorf("%w: min_confidence must be in (0, 1]", dataset.ErrInvalidParameter)
	}

	seqs := buildSequences(journeys, opts.ConversionTracked)
	if len(seqs) == 0 {
		return nil, fmt.Errorf("%w: no event sequences", dataset.ErrInsufficientData)
	}

	minCount := int(opts.MinSupport * float64(len(seqs)))

	frequent := prefixSpan(seqs, minCount, opts.MaxPatternLength, opts.ConversionTracked)
	if len(frequent) > frequentPatternCap {
		frequent = frequent[:frequentPatternCap]
	}

	rules := mineAssociationRules(seqs, minCount, opts.MinConfidence)

	var highConversion []Pattern
	if opts.ConversionTracked {
		for _, p := range frequent {
			if p.ConversionCount > 0 && p.ConversionRate >= opts.MinConfidence {
				highConversion = append(highConversion, p)
			}
		}
		sort.SliceStable(highConversion, func(i, j int) bool {
			return highConversion[i].ConversionRate > highConversion[j].ConversionRate
		})
		if len(highConversion) > highConversionCap {
			highConversion = highConversion[:highConversionCap]
		}
	}

	st := computeStats(seqs)
	return &Result{
		FrequentPatterns:       frequent,
		AssociationRules:       rules,
		HighConversionPatterns: highConversion,
		Stats:                  st,
		TotalSequences:         len(seqs),
		AvgSequenceLength:      st.AvgLength,
	}, nil
}

// Classify contrasts the frequent patterns of converting versus
// non-converting sequences, using the journey Converted flag as the
// target.
//
// Returns dataset.ErrInsufficientData unless both classes are non-empty.
func Classify(journeys []*journey.UserJourney) (*ClassificationResult, error) {
	seqs := buildSequences(journeys, true)
	if len(seqs) == 0 {
		return nil, fmt.Errorf("%w: no event sequences", dataset.ErrInsufficientData)
	}

	var positive, negative []sequence
	for _, s := range seqs {
		if s.converted {
			positive = append(positive, s)
		} else {
			negative = append(negative, s)
		}
	}
	if len(positive) == 0 || len(negative) == 0 {
		return nil, fmt.Errorf("%w: classification needs both converting and non-converting sequences", dataset.ErrInsufficientData)
	}

	const (
		classifySupport = 0.1
		classifyMaxLen  = 3
	)
	posPatterns := prefixSpan(positive, int(classifySupport*float64(len(positive))), classifyMaxLen, true)
	negPatterns := prefixSpan(negative, int(classifySupport*float64(len(negative))), classifyMaxLen, true)

	posSet := patternSet(posPatterns)
	negSet := patternSet(negPatterns)

	res := &ClassificationResult{
		TotalSamples:      len(seqs),
		PositiveSamples:   len(positive),
		NegativeSamples:   len(negative),
		AvgLengthPositive: stats.Round(avgEventCount(positive), 2),
		AvgLengthNegative: stats.Round(avgEventCount(negative), 2),
	}
	for _, p := range posPatterns {
		if !negSet[patternKey(p.Pattern)] && len(res.DistinctivePositivePatterns) < distinctiveCap {
			res.DistinctivePositivePatterns = append(res.DistinctivePositivePatterns, p)
		}
	}
	for _, p := range negPatterns {
		if !posSet[patternKey(p.Pattern)] && len(res.DistinctiveNegativePatterns) < distinctiveCap {
			res.DistinctiveNegativePatterns = append(res.DistinctiveNegativePatterns, p)
		}
	}
	return res, nil
}

func buildSequences(journeys []*journey.UserJourney, conversionTracked bool) []sequence {
	seqs := make([]sequence, 0, len(journeys))
	for _, j := range journeys {
		if len(j.Events) == 0 {
			continue
		}
		s := sequence{events: j.Labels()}
		if conversionTracked {
			s.converted = j.Converted
		}
		seqs = append(seqs, s)
	}
	return seqs
}

func computeStats(seqs []sequence) SequenceStats {
	st := SequenceStats{
		TotalSequences:   len(seqs),
		MostCommonEvents: []EventFreq{},
	}
	if len(seqs) == 0 {
		return st
	}

	eventFreq := ordmap.NewCounter()
	var totalLen, convertedCount int
	st.MinLength = len(seqs[0].events)
	for _, s := range seqs {
		n := len(s.events)
		totalLen += n
		if n > st.MaxLength {
			st.MaxLength = n
		}
		if n < st.MinLength {
			st.MinLength = n
		}
		if s.converted {
			convertedCount++
		}
		for _, e := range s.events {
			eventFreq.Add(e, 1)
		}
	}
	st.AvgLength = stats.Round(float64(totalLen)/float64(len(seqs)), 2)
	st.UniqueEvents = eventFreq.Len()
	for _, kv := range eventFreq.MostCommon(commonEventCap) {
		st.MostCommonEvents = append(st.MostCommonEvents, EventFreq{
			Event:      kv.Key,
			Count:      kv.Count,
			Percentage: stats.Round(float64(kv.Count)/float64(len(seqs))*100, 2),
		})
	}
	st.ConversionRate = stats.Round(float64(convertedCount)/float64(len(seqs))*100, 2)
	return st
}

func patternKey(pattern []string) string {
	key := ""
	for i, p := range pattern {
		if i > 0 {
			key += ruleSep
		}
		key += p
	}
	return key
}

func patternSet(patterns []Pattern) map[string]bool {
	set := make(map[string]bool, len(patterns))
	for _, p := range patterns {
		set[patternKey(p.Pattern)] = true
	}
	return set
}

func avgEventCount(seqs []sequence) float64 {
	if len(seqs) == 0 {
		return 0
	}
	var total int
	for _, s := range seqs {
		total += len(s.events)
	}
	return float64(total) / float64(len(seqs))
}
