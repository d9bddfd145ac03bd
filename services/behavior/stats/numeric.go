// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package stats provides the closed-form numeric helpers shared by the
// behavior analyzers: descriptive statistics, Shannon entropy, one-way
// ANOVA, feature standardization, and k-means clustering.
//
// Everything here is implemented from first principles on purpose; the
// analyzers must not pick up a heavyweight scientific dependency for a
// handful of formulas.
package stats

import "math"

// Mean returns the arithmetic mean, or 0 for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// SampleStd returns the sample standard deviation (ddof=1).
//
// Returns NaN for fewer than two values, matching the convention of the
// presentation layer where degenerate statistics render as null.
func SampleStd(xs []float64) float64 {
	if len(xs) < 2 {
		return math.NaN()
	}
	m := Mean(xs)
	var ss float64
	for _, x := range xs {
		d := x - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)-1))
}

// Min returns the minimum value, or 0 for an empty slice.
func Min(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := xs[0]
	for _, x := range xs[1:] {
		if x < m {
			m = x
		}
	}
	return m
}

// Max returns the maximum value, or 0 for an empty slice.
func Max(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := xs[0]
	for _, x := range xs[1:] {
		if x > m {
			m = x
		}
	}
	return m
}

// Entropy returns the Shannon entropy in bits of the empirical
// distribution given by counts. Zero counts contribute nothing.
func Entropy(counts []int) float64 {
	var total float64
	for _, c := range counts {
		total += float64(c)
	}
	if total == 0 {
		return 0
	}
	var h float64
	for _, c := range counts {
		if c <= 0 {
			continue
		}
		p := float64(c) / total
		h -= p * math.Log2(p)
	}
	return h
}

// Round rounds v to the given number of decimal places.
func Round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}

// RoundPtr rounds v to the given number of decimal places, normalizing
// non-finite values (NaN, ±Inf from zero-division guards) to nil so they
// serialize as JSON null.
func RoundPtr(v float64, places int) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	r := Round(v, places)
	return &r
}

// Standardize scales each column of X to zero mean and unit variance,
// returning a new matrix. Columns with zero variance are centered only.
func Standardize(X [][]float64) [][]float64 {
	if len(X) == 0 {
		return nil
	}
	cols := len(X[0])
	means := make([]float64, cols)
	stds := make([]float64, cols)
	for j := 0; j < cols; j++ {
		col := make([]float64, len(X))
		for i := range X {
			col[i] = X[i][j]
		}
		means[j] = Mean(col)
		// Population std, zero replaced by 1 so constant columns survive.
		var ss float64
		for _, x := range col {
			d := x - means[j]
			ss += d * d
		}
		stds[j] = math.Sqrt(ss / float64(len(col)))
		if stds[j] == 0 {
			stds[j] = 1
		}
	}
	out := make([][]float64, len(X))
	for i := range X {
		out[i] = make([]float64, cols)
		for j := 0; j < cols; j++ {
			out[i][j] = (X[i][j] - means[j]) / stds[j]
		}
	}
	return out
}
