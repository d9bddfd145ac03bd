// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package seqmine mines frequent sequential patterns (PrefixSpan-style)
// and event association rules from per-user event sequences.
package seqmine

// Caps on reported results.
const (
	frequentPatternCap = 50
	associationRuleCap = 40
	highConversionCap  = 20
	commonEventCap     = 10
	distinctiveCap     = 10
)

// Options configures sequence mining.
type Options struct {
	// MinSupport is the minimum fraction of users a pattern must occur
	// in.
	MinSupport float64 `json:"min_support" yaml:"min_support"`

	// MaxPatternLength bounds prefix growth.
	MaxPatternLength int `json:"max_pattern_length" yaml:"max_pattern_length"`

	// MinConfidence filters association rules and high-conversion
	// patterns.
	MinConfidence float64 `json:"min_confidence" yaml:"min_confidence"`

	// ConversionTracked reports whether a conversion column was
	// configured; pattern conversion rates are only computed when true.
	ConversionTracked bool `json:"-" yaml:"-"`
}

// DefaultOptions returns the standard mining thresholds.
func DefaultOptions() Options {
	return Options{
		MinSupport:       0.1,
		MaxPatternLength: 5,
		MinConfidence:    0.5,
	}
}

// Pattern is one frequent ordered event sequence.
type Pattern struct {
	// Pattern is the ordered event tuple.
	Pattern []string `json:"pattern"`

	// SupportCount is the number of sequences containing the pattern.
	SupportCount int `json:"support_count"`

	// Support is SupportCount over the total sequence count.
	Support float64 `json:"support"`

	// Length is len(Pattern).
	Length int `json:"length"`

	// ConversionCount and ConversionRate are present only when a
	// conversion flag is tracked and at least one supporting sequence
	// converted.
	ConversionCount int     `json:"conversion_count,omitempty"`
	ConversionRate  float64 `json:"conversion_rate,omitempty"`
}

// Rule is one association rule A -> B or A+B -> C.
type Rule struct {
	// Antecedent holds one or two distinct events; order within the
	// antecedent follows their order of appearance.
	Antecedent []string `json:"antecedent"`

	// Consequent is the implied event.
	Consequent string `json:"consequent"`

	// RuleStr is a display form like "A + B → C".
	RuleStr string `json:"rule_str"`

	// Support is the co-occurrence fraction over all sequences.
	Support float64 `json:"support"`

	// Confidence is P(consequent | antecedent).
	Confidence float64 `json:"confidence"`

	// Lift is Confidence over the consequent's occurrence rate.
	Lift float64 `json:"lift"`

	// Count is the raw co-occurrence count.
	Count int `json:"count"`

	// RuleType is "single" or "dual" by antecedent arity.
	RuleType string `json:"rule_type"`
}

// EventFreq is one entry of the most-common-events report.
type EventFreq struct {
	Event      string  `json:"event"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// SequenceStats summarizes the mined sequence database.
type SequenceStats struct {
	TotalSequences   int         `json:"total_sequences"`
	AvgLength        float64     `json:"avg_length"`
	MaxLength        int         `json:"max_length"`
	MinLength        int         `json:"min_length"`
	UniqueEvents     int         `json:"unique_events"`
	MostCommonEvents []EventFreq `json:"most_common_events"`
	ConversionRate   float64     `json:"conversion_rate"`
}

// Result is the full mining output.
type Result struct {
	FrequentPatterns       []Pattern     `json:"frequent_patterns"`
	AssociationRules       []Rule        `json:"association_rules"`
	HighConversionPatterns []Pattern     `json:"high_conversion_patterns"`
	Stats                  SequenceStats `json:"sequence_stats"`
	TotalSequences         int           `json:"total_sequences"`
	AvgSequenceLength      float64       `json:"avg_sequence_length"`
}

// ClassificationResult contrasts the patterns of converting and
// non-converting sequences.
type ClassificationResult struct {
	TotalSamples                int       `json:"total_samples"`
	PositiveSamples             int       `json:"positive_samples"`
	NegativeSamples             int       `json:"negative_samples"`
	DistinctivePositivePatterns []Pattern `json:"distinctive_positive_patterns"`
	DistinctiveNegativePatterns []Pattern `json:"distinctive_negative_patterns"`
	AvgLengthPositive           float64   `json:"avg_length_positive"`
	AvgLengthNegative           float64   `json:"avg_length_negative"`
}

// sequence is the internal mining record.
type sequence struct {
	events    []string
	converted bool
}
