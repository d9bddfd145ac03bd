// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package funnel computes stepwise conversion and drop-off over an
// ordered list of funnel step labels, with an optional time-window
// constraint between consecutive steps.
package funnel

import (
	"fmt"

	"github.com/AleutianAI/InsightEase/services/behavior/dataset"
	"github.com/AleutianAI/InsightEase/services/behavior/journey"
	"github.com/AleutianAI/InsightEase/services/behavior/stats"
)

// Options configures a funnel analysis.
type Options struct {
	// Steps is the ordered list of step labels. Required.
	Steps []string `json:"funnel_steps" yaml:"funnel_steps"`

	// TimeWindowHours bounds the elapsed time between consecutive steps.
	// 0 means unconstrained.
	TimeWindowHours int `json:"time_window" yaml:"time_window"`
}

// StepResult is one funnel stage.
type StepResult struct {
	// Step is the 1-based step index.
	Step int `json:"step"`

	// Name is the step label.
	Name string `json:"name"`

	// Users is the count of users reaching this step.
	Users int `json:"users"`

	// ConversionRate is |step| / |previous step| as a percentage. Step 1
	// is defined as 100.
	ConversionRate float64 `json:"conversion_rate"`

	// DropOffRate is 100 - ConversionRate.
	DropOffRate float64 `json:"drop_off_rate"`

	// AvgTimeFromPrev is the mean observed transition time from the
	// previous step, in hours.
	AvgTimeFromPrev float64 `json:"avg_time_from_prev"`
}

// Result is the full funnel output.
type Result struct {
	Steps                 []StepResult `json:"funnel_steps"`
	TotalUsers            int          `json:"total_users"`
	OverallConversionRate float64      `json:"overall_conversion_rate"`
}

// Analyze runs the funnel over the given journeys.
//
// A user belongs to step 0 when the step-0 label occurs anywhere in their
// events. For step i > 0 the label must occur after the first occurrence
// of step i-1's label; with a time window configured, the elapsed time
// between those two occurrences must not exceed it. Users excluded from a
// later step are not removed from earlier ones.
func Analyze(journeys []*journey.UserJourney, opts Options) (*Result, error) {
	if len(opts.Steps) == 0 {
		return nil, fmt.Errorf("%w: funnel requires at least one step", dataset.ErrInvalidParameter)
	}
	if len(journeys) == 0 {
		return nil, fmt.Errorf("%w: no user journeys", dataset.ErrInsufficientData)
	}

	stepUsers := make([]map[string]bool, len(opts.Steps))
	stepTimes := make([][]float64, len(opts.Steps))
	for i := range stepUsers {
		stepUsers[i] = make(map[string]bool)
	}

	window := float64(opts.TimeWindowHours)

	for _, j := range journeys {
		labels := j.Labels()
		times := j.Times()

		for i, step := range opts.Steps {
			if i == 0 {
				if indexOf(labels, step, 0) >= 0 {
					stepUsers[0][j.UserID] = true
				}
				continue
			}
			prevIdx := indexOf(labels, opts.Steps[i-1], 0)
			if prevIdx < 0 {
				continue
			}
			idx := indexOf(labels, step, prevIdx+1)
			if idx < 0 {
				continue
			}
			elapsed := times[idx].Sub(times[prevIdx]).Hours()
			if window > 0 && elapsed > window {
				continue
			}
			stepUsers[i][j.UserID] = true
			stepTimes[i] = append(stepTimes[i], elapsed)
		}
	}

	res := &Result{TotalUsers: len(journeys)}
	for i, step := range opts.Steps {
		users := len(stepUsers[i])
		var conv, drop float64
		switch {
		case i == 0:
			conv, drop = 100, 0
		case len(stepUsers[i-1]) > 0:
			conv = float64(users) / float64(len(stepUsers[i-1])) * 100
			drop = 100 - conv
		default:
			conv, drop = 0, 100
		}
		var avgTime float64
		if len(stepTimes[i]) > 0 {
			avgTime = stats.Mean(stepTimes[i])
		}
		res.Steps = append(res.Steps, StepResult{
			Step:            i + 1,
			Name:            step,
			Users:           users,
			ConversionRate:  stats.Round(conv, 2),
			DropOffRate:     stats.Round(drop, 2),
			AvgTimeFromPrev: stats.Round(avgTime, 2),
		})
	}

	first := res.Steps[0].Users
	last := res.Steps[len(res.Steps)-1].Users
	if first > 0 {
		res.OverallConversionRate = stats.Round(float64(last)/float64(first)*100, 2)
	}
	return res, nil
}

// indexOf returns the index of the first occurrence of label at or after
// from, or -1.
func indexOf(labels []string, label string, from int) int {
	for i := from; i < len(labels); i++ {
		if labels[i] == label {
			return i
		}
	}
	return -1
}
