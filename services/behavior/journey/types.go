// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package journey groups raw event rows into ordered per-user event
// sequences. Every analyzer that needs time-ordered behavior starts here.
//
// # Description
//
// Build groups a dataset by the user id role, sorts each group by
// timestamp ascending, and materializes one UserJourney per user. The
// conversion flag and conversion value, when role columns are configured,
// are taken from the user's last row. Journeys with zero events are
// dropped.
//
// # Thread Safety
//
// Build is a pure function; journeys are plain values.
package journey

import "time"

// Event is one (label, instant) step in a journey.
type Event struct {
	// Label is the event name, possibly a composite of several columns
	// joined with underscores.
	Label string `json:"label"`

	// Timestamp is the event instant.
	Timestamp time.Time `json:"timestamp"`
}

// UserJourney is a user's time-ordered event sequence.
//
// Invariant: Events is sorted non-decreasing by Timestamp and never empty.
type UserJourney struct {
	// UserID is the string-normalized grouping key.
	UserID string `json:"user_id"`

	// Events is the ordered sequence of (label, timestamp) pairs.
	Events []Event `json:"events"`

	// Converted is the conversion flag from the user's last row, false
	// when no conversion column is configured.
	Converted bool `json:"converted"`

	// ConversionValue is the numeric value from the user's last row, 0
	// when no value column is configured.
	ConversionValue float64 `json:"conversion_value"`
}

// Labels returns the event labels in order.
func (j *UserJourney) Labels() []string {
	out := make([]string, len(j.Events))
	for i, e := range j.Events {
		out[i] = e.Label
	}
	return out
}

// Times returns the event timestamps in order.
func (j *UserJourney) Times() []time.Time {
	out := make([]time.Time, len(j.Events))
	for i, e := range j.Events {
		out[i] = e.Timestamp
	}
	return out
}

// Duration returns the elapsed time between the first and last event.
func (j *UserJourney) Duration() time.Duration {
	if len(j.Events) < 2 {
		return 0
	}
	return j.Events[len(j.Events)-1].Timestamp.Sub(j.Events[0].Timestamp)
}
