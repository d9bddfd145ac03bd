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
	"fmt"
	"math"
	"time"

	"github.com/AleutianAI/InsightEase/services/behavior/dataset"
	"github.com/AleutianAI/InsightEase/services/behavior/internal/ordmap"
	"github.com/AleutianAI/InsightEase/services/behavior/journey"
	"github.com/AleutianAI/InsightEase/services/behavior/stats"
)

// touchJourney is a journey reduced to what the models need.
type touchJourney struct {
	touchpoints []string
	timestamps  []time.Time
	converted   bool
	value       float64
}

// Analyze runs the selected attribution models over the journeys.
//
// Journeys are built with the touchpoint column in the event role; when no
// conversion column is configured every journey is treated as converted
// with a unit value, matching the single-channel-log use case.
func Analyze(journeys []*journey.UserJourney, opts Options) (*Result, error) {
	if len(opts.Models) == 0 {
		opts.Models = AllModels()
	}
	if opts.TimeDecayHalfLifeDays <= 0 {
		opts.TimeDecayHalfLifeDays = 7
	}
	if opts.MaxTouchpoints <= 0 {
		opts.MaxTouchpoints = 5
	}
	for _, m := range opts.Models {
		if !knownModel(m) {
			return nil, fmt.Errorf("%w: unknown attribution model %q", dataset.ErrInvalidParameter, m)
		}
	}
	if len(journeys) == 0 {
		return nil, fmt.Errorf("%w: no user journeys", dataset.ErrInsufficientData)
	}

	tjs := make([]touchJourney, 0, len(journeys))
	for _, j := range journeys {
		tj := touchJourney{
			touchpoints: j.Labels(),
			timestamps:  j.Times(),
			converted:   j.Converted,
			value:       1.0,
		}
		if !opts.ConversionTracked {
			tj.converted = true
		}
		if opts.ValueTracked {
			tj.value = j.ConversionValue
		}
		if !tj.converted {
			tj.value = 0
		}
		if len(tj.touchpoints) > 0 {
			tjs = append(tjs, tj)
		}
	}
	if len(tjs) == 0 {
		return nil, fmt.Errorf("%w: no journeys with touchpoints", dataset.ErrInsufficientData)
	}

	res := &Result{
		Models:           make(map[Model][]TouchpointCredit, len(opts.Models)),
		UserJourneyCount: len(tjs),
	}
	var totalTouch int
	for _, tj := range tjs {
		totalTouch += len(tj.touchpoints)
		if tj.converted {
			res.TotalConversions++
			res.TotalConversionValue += tj.value
		}
	}

	for _, m := range opts.Models {
		var acc *ordmap.FloatAccumulator
		switch m {
		case ModelFirstTouch:
			acc = firstTouch(tjs)
		case ModelLastTouch:
			acc = lastTouch(tjs)
		case ModelLinear:
			acc = linear(tjs)
		case ModelTimeDecay:
			acc = timeDecay(tjs, opts.TimeDecayHalfLifeDays)
		case ModelPositionBased:
			acc = positionBased(tjs)
		case ModelShapley:
			acc = shapley(tjs, opts.MaxTouchpoints)
		}
		res.Models[m] = normalize(acc)
	}

	res.Summary = Summary{
		AvgTouchpointsPerJourney: stats.Round(float64(totalTouch)/float64(len(tjs)), 2),
		ConversionRate:           stats.Round(float64(res.TotalConversions)/float64(len(tjs))*100, 2),
	}
	for _, m := range opts.Models {
		credits := res.Models[m]
		top := len(credits)
		if top > 3 {
			top = 3
		}
		cmp := ModelComparison{Model: m, Top3: []TouchpointShare{}}
		for _, c := range credits[:top] {
			cmp.Top3 = append(cmp.Top3, TouchpointShare{Touchpoint: c.Touchpoint, Percentage: c.Percentage})
		}
		res.Summary.ModelComparison = append(res.Summary.ModelComparison, cmp)
	}
	return res, nil
}

func knownModel(m Model) bool {
	for _, k := range AllModels() {
		if m == k {
			return true
		}
	}
	return false
}

// firstTouch credits the full conversion value to the opening touchpoint.
func firstTouch(tjs []touchJourney) *ordmap.FloatAccumulator {
	acc := ordmap.NewFloatAccumulator()
	for _, tj := range tjs {
		if tj.converted {
			acc.Add(tj.touchpoints[0], tj.value)
		}
	}
	return acc
}

// lastTouch credits the full conversion value to the closing touchpoint.
func lastTouch(tjs []touchJourney) *ordmap.FloatAccumulator {
	acc := ordmap.NewFloatAccumulator()
	for _, tj := range tjs {
		if tj.converted {
			acc.Add(tj.touchpoints[len(tj.touchpoints)-1], tj.value)
		}
	}
	return acc
}

// linear splits the conversion value evenly across all touchpoints.
func linear(tjs []touchJourney) *ordmap.FloatAccumulator {
	acc := ordmap.NewFloatAccumulator()
	for _, tj := range tjs {
		if !tj.converted {
			continue
		}
		per := tj.value / float64(len(tj.touchpoints))
		for _, tp := range tj.touchpoints {
			acc.Add(tp, per)
		}
	}
	return acc
}

// timeDecay weights each touchpoint by exp(-lambda * daysBeforeConversion)
// with lambda = ln2 / halfLifeDays, normalized per journey.
func timeDecay(tjs []touchJourney, halfLifeDays int) *ordmap.FloatAccumulator {
	acc := ordmap.NewFloatAccumulator()
	lambda := math.Ln2 / float64(halfLifeDays)
	for _, tj := range tjs {
		if !tj.converted {
			continue
		}
		conversionTime := tj.timestamps[len(tj.timestamps)-1]
		weights := make([]float64, len(tj.timestamps))
		var total float64
		for i, ts := range tj.timestamps {
			daysBefore := conversionTime.Sub(ts).Hours() / 24
			weights[i] = math.Exp(-lambda * daysBefore)
			total += weights[i]
		}
		if total <= 0 {
			continue
		}
		for i, tp := range tj.touchpoints {
			acc.Add(tp, tj.value*weights[i]/total)
		}
	}
	return acc
}

// positionBased credits 40% to each endpoint and splits 20% across the
// interior; single and double touchpoint journeys degenerate to 100% and
// 50/50.
func positionBased(tjs []touchJourney) *ordmap.FloatAccumulator {
	acc := ordmap.NewFloatAccumulator()
	for _, tj := range tjs {
		if !tj.converted {
			continue
		}
		tps := tj.touchpoints
		switch n := len(tps); n {
		case 1:
			acc.Add(tps[0], tj.value)
		case 2:
			acc.Add(tps[0], tj.value*0.5)
			acc.Add(tps[1], tj.value*0.5)
		default:
			acc.Add(tps[0], tj.value*0.4)
			acc.Add(tps[n-1], tj.value*0.4)
			middle := tj.value * 0.2 / float64(n-2)
			for _, tp := range tps[1 : n-1] {
				acc.Add(tp, middle)
			}
		}
	}
	return acc
}

// shapley approximates a Shapley value: each touchpoint of a converted
// journey (truncated to maxTouchpoints) receives value/n, summed over
// journeys. This omits marginal-contribution enumeration across subsets.
func shapley(tjs []touchJourney, maxTouchpoints int) *ordmap.FloatAccumulator {
	acc := ordmap.NewFloatAccumulator()
	for _, tj := range tjs {
		if !tj.converted {
			continue
		}
		tps := tj.touchpoints
		if len(tps) > maxTouchpoints {
			tps = tps[:maxTouchpoints]
		}
		per := tj.value / float64(len(tps))
		for _, tp := range tps {
			acc.Add(tp, per)
		}
	}
	return acc
}

// normalize converts accumulated credit into rounded (value, percentage)
// pairs sorted by value descending.
func normalize(acc *ordmap.FloatAccumulator) []TouchpointCredit {
	total := acc.Total()
	out := []TouchpointCredit{}
	if total == 0 {
		return out
	}
	for _, kv := range acc.SortedDesc() {
		out = append(out, TouchpointCredit{
			Touchpoint: kv.Key,
			Value:      stats.Round(kv.Sum, 4),
			Percentage: stats.Round(kv.Sum/total*100, 2),
		})
	}
	return out
}
