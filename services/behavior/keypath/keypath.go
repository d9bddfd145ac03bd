// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package keypath extracts the sub-paths users take between a designated
// start event and end event, and reports the optimal ones.
package keypath

import (
	"fmt"
	"strings"

	"github.com/AleutianAI/InsightEase/services/behavior/dataset"
	"github.com/AleutianAI/InsightEase/services/behavior/internal/ordmap"
	"github.com/AleutianAI/InsightEase/services/behavior/journey"
	"github.com/AleutianAI/InsightEase/services/behavior/stats"
)

const pathSep = "\x1f"

// topPathCap bounds the ranked sub-path list.
const topPathCap = 10

// Options configures a key path analysis.
type Options struct {
	// StartEvent is the boundary label opening the sub-path. Required.
	StartEvent string `json:"start_event" yaml:"start_event"`

	// EndEvent is the boundary label closing the sub-path. Required.
	EndEvent string `json:"end_event" yaml:"end_event"`

	// MaxSteps caps the distance between the two boundaries.
	MaxSteps int `json:"max_steps" yaml:"max_steps"`
}

// PathRecord is one extracted sub-path.
type PathRecord struct {
	Path            []string `json:"path"`
	Steps           int      `json:"steps"`
	DurationSeconds float64  `json:"duration_seconds"`
}

// TopPath is one ranked distinct sub-path.
type TopPath struct {
	Path       []string `json:"path"`
	Count      int      `json:"count"`
	Percentage float64  `json:"percentage"`
}

// OptimalPaths holds the two optima.
type OptimalPaths struct {
	MinSteps    PathRecord `json:"min_steps"`
	MinDuration PathRecord `json:"min_duration"`
}

// Result is the key path analysis output.
//
// When no user satisfies both boundary conditions, Message is set and
// CompletePathCount is 0; this is a graceful degradation, not an error.
type Result struct {
	StartEvent         string        `json:"start_event"`
	EndEvent           string        `json:"end_event"`
	CompletePathCount  int           `json:"complete_path_count"`
	AvgDurationSeconds float64       `json:"avg_duration_seconds,omitempty"`
	AvgSteps           float64       `json:"avg_steps,omitempty"`
	Optimal            *OptimalPaths `json:"optimal_paths,omitempty"`
	TopPaths           []TopPath     `json:"top_paths,omitempty"`
	Message            string        `json:"message,omitempty"`
}

// Find extracts the start-to-end sub-path for every qualifying user.
//
// A user qualifies when the first occurrence of StartEvent comes strictly
// before the first occurrence of EndEvent and the two are at most MaxSteps
// apart. The inclusive sub-sequence between those occurrences is recorded
// with its step count and elapsed duration.
func Find(journeys []*journey.UserJourney, opts Options) (*Result, error) {
	if opts.StartEvent == "" || opts.EndEvent == "" {
		return nil, fmt.Errorf("%w: key path requires start_event and end_event", dataset.ErrInvalidParameter)
	}
	if opts.MaxSteps <= 0 {
		opts.MaxSteps = 10
	}
	if len(journeys) == 0 {
		return nil, fmt.Errorf("%w: no user journeys", dataset.ErrInsufficientData)
	}

	var records []PathRecord
	for _, j := range journeys {
		labels := j.Labels()
		times := j.Times()

		startIdx := indexOf(labels, opts.StartEvent)
		endIdx := indexOf(labels, opts.EndEvent)
		if startIdx < 0 || endIdx < 0 || startIdx >= endIdx || endIdx-startIdx > opts.MaxSteps {
			continue
		}
		segment := labels[startIdx : endIdx+1]
		records = append(records, PathRecord{
			Path:            segment,
			Steps:           len(segment) - 1,
			DurationSeconds: times[endIdx].Sub(times[startIdx]).Seconds(),
		})
	}

	res := &Result{StartEvent: opts.StartEvent, EndEvent: opts.EndEvent}
	if len(records) == 0 {
		res.Message = fmt.Sprintf("no complete path from %q to %q found", opts.StartEvent, opts.EndEvent)
		return res, nil
	}

	durations := make([]float64, len(records))
	steps := make([]float64, len(records))
	minSteps, minDuration := records[0], records[0]
	counter := ordmap.NewCounter()
	segments := map[string][]string{}
	for i, r := range records {
		durations[i] = r.DurationSeconds
		steps[i] = float64(r.Steps)
		if r.Steps < minSteps.Steps {
			minSteps = r
		}
		if r.DurationSeconds < minDuration.DurationSeconds {
			minDuration = r
		}
		key := strings.Join(r.Path, pathSep)
		counter.Add(key, 1)
		if _, ok := segments[key]; !ok {
			segments[key] = r.Path
		}
	}

	res.CompletePathCount = len(records)
	res.AvgDurationSeconds = stats.Round(stats.Mean(durations), 2)
	res.AvgSteps = stats.Round(stats.Mean(steps), 2)
	res.Optimal = &OptimalPaths{MinSteps: minSteps, MinDuration: minDuration}
	for _, kv := range counter.MostCommon(topPathCap) {
		res.TopPaths = append(res.TopPaths, TopPath{
			Path:       segments[kv.Key],
			Count:      kv.Count,
			Percentage: stats.Round(float64(kv.Count)/float64(len(records))*100, 2),
		})
	}
	return res, nil
}

func indexOf(labels []string, label string) int {
	for i, l := range labels {
		if l == label {
			return i
		}
	}
	return -1
}
