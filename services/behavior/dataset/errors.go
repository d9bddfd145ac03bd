// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package dataset

import "errors"

// Sentinel errors shared by the behavior analyzers.
var (
	// ErrMissingColumn indicates a role column is absent from the dataset.
	ErrMissingColumn = errors.New("missing column")

	// ErrInsufficientData indicates the dataset is too small for the
	// requested algorithm (too few rows, users, or distinct values).
	ErrInsufficientData = errors.New("insufficient data")

	// ErrInvalidParameter indicates an unknown operation or contradictory
	// analysis parameters.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrBadTimestamp indicates a timestamp value could not be parsed.
	ErrBadTimestamp = errors.New("unparseable timestamp")
)
