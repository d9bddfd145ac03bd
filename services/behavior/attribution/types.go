// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package attribution distributes conversion credit across multi-touch
// user journeys under six weighting models.
//
// # Description
//
// Each model normalizes so that the credited values across touchpoints
// sum to the total conversion value of converted journeys (percentages
// sum to 100 within a model, subject to rounding). The Shapley model is
// an average-split approximation, not an exact coalition-game
// computation.
package attribution

// Model identifies an attribution weighting scheme.
type Model string

const (
	// ModelFirstTouch credits 100% to the first touchpoint.
	ModelFirstTouch Model = "first_touch"

	// ModelLastTouch credits 100% to the last touchpoint.
	ModelLastTouch Model = "last_touch"

	// ModelLinear splits credit evenly across all touchpoints.
	ModelLinear Model = "linear"

	// ModelTimeDecay weights touchpoints by exponential recency.
	ModelTimeDecay Model = "time_decay"

	// ModelPositionBased gives 40/40 to the endpoints and splits 20
	// across the interior.
	ModelPositionBased Model = "position_based"

	// ModelShapley approximates a Shapley value as the per-journey even
	// split averaged over all journeys a touchpoint appears in.
	ModelShapley Model = "shapley"
)

// AllModels lists every supported model in canonical order.
func AllModels() []Model {
	return []Model{
		ModelFirstTouch,
		ModelLastTouch,
		ModelLinear,
		ModelTimeDecay,
		ModelPositionBased,
		ModelShapley,
	}
}

// Options configures an attribution analysis.
type Options struct {
	// Models selects which schemes to compute; empty means all.
	Models []Model `json:"models" yaml:"models"`

	// TimeDecayHalfLifeDays is the half-life for the time-decay model.
	TimeDecayHalfLifeDays int `json:"time_decay_half_life" yaml:"time_decay_half_life"`

	// MaxTouchpoints truncates journeys for the Shapley approximation.
	MaxTouchpoints int `json:"max_touchpoints" yaml:"max_touchpoints"`

	// ConversionTracked reports whether a conversion column was
	// configured. Without one, every journey counts as converted with a
	// unit conversion value.
	ConversionTracked bool `json:"-" yaml:"-"`

	// ValueTracked reports whether a conversion value column was
	// configured. Without one, converted journeys are worth 1.0.
	ValueTracked bool `json:"-" yaml:"-"`
}

// DefaultOptions returns the standard attribution configuration.
func DefaultOptions() Options {
	return Options{
		Models:                AllModels(),
		TimeDecayHalfLifeDays: 7,
		MaxTouchpoints:        5,
	}
}

// TouchpointCredit is one touchpoint's share under a model.
type TouchpointCredit struct {
	// Touchpoint is the channel/source label.
	Touchpoint string `json:"touchpoint"`

	// Value is the absolute credited conversion value.
	Value float64 `json:"value"`

	// Percentage is Value as a share of the model total.
	Percentage float64 `json:"percentage"`
}

// TouchpointShare is a compact (touchpoint, percentage) pair used in the
// cross-model comparison.
type TouchpointShare struct {
	Touchpoint string  `json:"touchpoint"`
	Percentage float64 `json:"percentage"`
}

// ModelComparison is one model's top touchpoints.
type ModelComparison struct {
	Model Model             `json:"model"`
	Top3  []TouchpointShare `json:"top3"`
}

// Summary aggregates journey statistics and the model comparison.
type Summary struct {
	AvgTouchpointsPerJourney float64           `json:"avg_touchpoints_per_journey"`
	ConversionRate           float64           `json:"conversion_rate"`
	ModelComparison          []ModelComparison `json:"model_comparison"`
}

// Result is the full attribution output.
type Result struct {
	// Models maps model name to credited touchpoints, sorted by value
	// descending.
	Models map[Model][]TouchpointCredit `json:"models"`

	Summary              Summary `json:"summary"`
	UserJourneyCount     int     `json:"user_journey_count"`
	TotalConversions     int     `json:"total_conversions"`
	TotalConversionValue float64 `json:"total_conversion_value"`
}
