// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package dataset holds the in-memory rectangular table the behavior
// analyzers consume, plus the role mapping that tells them which columns
// carry user ids, events, and timestamps.
//
// # Description
//
// A Dataset is supplied by an external collaborator (upload/parsing lives
// outside this core). Cell values arrive as loosely typed interface values;
// the coercion helpers here normalize them to the string, float, bool, and
// time representations the analyzers operate on. User ids are always
// normalized to strings so that grouping is deterministic regardless of the
// original column type.
//
// # Thread Safety
//
// Dataset is read-only after construction and safe for concurrent use.
package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Row is one input record keyed by column name.
type Row map[string]any

// Dataset is an in-memory rectangular table.
type Dataset struct {
	// Columns lists the column names in their original order.
	Columns []string

	// Rows holds the records. All rows share the same column set.
	Rows []Row
}

// Roles maps analysis roles onto dataset columns.
type Roles struct {
	// UserID is the column holding the per-user grouping key. Required.
	UserID string `json:"user_id_col" yaml:"user_id"`

	// Event is the column holding the event label. Required for
	// journey-based analyses.
	Event string `json:"event_col" yaml:"event"`

	// AdditionalEventCols are joined with Event (underscore-separated)
	// into a composite label before analysis. Optional.
	AdditionalEventCols []string `json:"additional_event_cols" yaml:"additional_event_cols"`

	// Timestamp is the column holding the event instant. Required.
	Timestamp string `json:"timestamp_col" yaml:"timestamp"`

	// Conversion is the boolean-like conversion flag column. Optional.
	Conversion string `json:"conversion_col" yaml:"conversion"`

	// ConversionValue is the numeric conversion value column. Optional.
	ConversionValue string `json:"conversion_value_col" yaml:"conversion_value"`

	// Touchpoint is the channel/source column used by attribution. When
	// empty, attribution falls back to the Event column.
	Touchpoint string `json:"touchpoint_col" yaml:"touchpoint"`

	// AdditionalTouchpointCols are joined with Touchpoint into a composite
	// touchpoint label. Optional.
	AdditionalTouchpointCols []string `json:"additional_touchpoint_cols" yaml:"additional_touchpoint_cols"`
}

// HasColumn reports whether the dataset contains the named column.
func (d *Dataset) HasColumn(name string) bool {
	for _, c := range d.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// RequireColumns verifies that every named column exists.
//
// Returns ErrMissingColumn wrapped with the first absent column name.
func (d *Dataset) RequireColumns(names ...string) error {
	for _, n := range names {
		if n == "" {
			return fmt.Errorf("%w: empty column name", ErrInvalidParameter)
		}
		if !d.HasColumn(n) {
			return fmt.Errorf("%w: %q", ErrMissingColumn, n)
		}
	}
	return nil
}

// FilterExisting returns the subset of names present in the dataset,
// preserving order. Absent optional columns are silently dropped, matching
// the tolerant handling of composite label columns.
func (d *Dataset) FilterExisting(names []string) []string {
	var out []string
	for _, n := range names {
		if n != "" && d.HasColumn(n) {
			out = append(out, n)
		}
	}
	return out
}

// AsString normalizes a cell value to its string representation.
func AsString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		// JSON numbers decode as float64; render integral values without
		// a trailing ".0" so composite labels stay stable.
		if x == math.Trunc(x) && math.Abs(x) < 1e15 {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case time.Time:
		return x.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", x)
	}
}

// AsFloat coerces a cell value to a float64. The second return is false
// when the value is absent or not numeric.
func AsFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// AsBool coerces a boolean-like cell value. Accepts bools, non-zero
// numbers, and the usual true/yes/1 string spellings.
func AsBool(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case float64:
		return x != 0
	case int:
		return x != 0
	case int64:
		return x != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "true", "t", "yes", "y", "1":
			return true
		}
		return false
	default:
		return false
	}
}

// timeLayouts are tried in order when parsing string timestamps.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006/01/02 15:04:05",
	"2006-01-02",
}

// ParseTime coerces a cell value to a time.Time.
//
// Accepts time.Time, RFC3339 and common date layouts, and numeric unix
// timestamps (seconds, with millisecond values detected by magnitude).
// Returns ErrBadTimestamp when the value cannot be interpreted.
func ParseTime(v any) (time.Time, error) {
	switch x := v.(type) {
	case time.Time:
		return x, nil
	case float64:
		return fromUnix(x), nil
	case int:
		return fromUnix(float64(x)), nil
	case int64:
		return fromUnix(float64(x)), nil
	case string:
		s := strings.TrimSpace(x)
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return fromUnix(f), nil
		}
		return time.Time{}, fmt.Errorf("%w: %q", ErrBadTimestamp, s)
	default:
		return time.Time{}, fmt.Errorf("%w: %T", ErrBadTimestamp, v)
	}
}

// fromUnix interprets a numeric timestamp, treating magnitudes above 1e12
// as milliseconds.
func fromUnix(f float64) time.Time {
	if math.Abs(f) >= 1e12 {
		return time.UnixMilli(int64(f)).UTC()
	}
	sec, frac := math.Modf(f)
	return time.Unix(int64(sec), int64(frac*1e9)).UTC()
}

// CompositeLabel joins the primary column value with the additional column
// values using underscores. Columns must already be filtered to those
// present in the dataset.
func CompositeLabel(row Row, primary string, additional []string) string {
	if len(additional) == 0 {
		return AsString(row[primary])
	}
	parts := make([]string, 0, len(additional)+1)
	parts = append(parts, AsString(row[primary]))
	for _, c := range additional {
		parts = append(parts, AsString(row[c]))
	}
	return strings.Join(parts, "_")
}
