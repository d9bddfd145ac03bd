// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMean(t *testing.T) {
	assert.Equal(t, 2.0, Mean([]float64{1, 2, 3}))
	assert.Equal(t, 0.0, Mean(nil))
}

func TestSampleStd(t *testing.T) {
	// ddof=1: variance of {2,4,4,4,5,5,7,9} is 32/7.
	got := SampleStd([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	assert.InDelta(t, math.Sqrt(32.0/7.0), got, 1e-9)

	assert.True(t, math.IsNaN(SampleStd([]float64{3})))
}

func TestEntropy(t *testing.T) {
	assert.InDelta(t, 1.0, Entropy([]int{1, 1}), 1e-9)
	assert.InDelta(t, 2.0, Entropy([]int{1, 1, 1, 1}), 1e-9)
	assert.Equal(t, 0.0, Entropy([]int{4}))
	assert.Equal(t, 0.0, Entropy(nil))
}

func TestRound(t *testing.T) {
	assert.Equal(t, 3.14, Round(3.14159, 2))
	assert.Equal(t, 3.1416, Round(3.14159, 4))
	assert.Equal(t, 3.0, Round(2.5, 0))
}

func TestRoundPtr(t *testing.T) {
	p := RoundPtr(2.0, 2)
	require.NotNil(t, p)
	assert.Equal(t, 2.0, *p)

	assert.Nil(t, RoundPtr(math.NaN(), 2))
	assert.Nil(t, RoundPtr(math.Inf(1), 2))
}

func TestStandardize(t *testing.T) {
	X := [][]float64{
		{1, 10},
		{3, 10},
	}
	scaled := Standardize(X)
	assert.InDelta(t, -1.0, scaled[0][0], 1e-9)
	assert.InDelta(t, 1.0, scaled[1][0], 1e-9)

	// A zero-variance column standardizes to zeros rather than NaN.
	assert.Equal(t, 0.0, scaled[0][1])
	assert.Equal(t, 0.0, scaled[1][1])
}

func TestFOneWay(t *testing.T) {
	f, p := FOneWay([][]float64{
		{1.0, 1.1, 0.9, 1.05},
		{10.0, 10.1, 9.9, 10.05},
	})
	assert.Greater(t, f, 100.0)
	assert.Less(t, p, 0.001)

	// Overlapping groups separate weakly.
	f2, p2 := FOneWay([][]float64{
		{1, 2, 3, 4},
		{2, 3, 4, 5},
	})
	assert.Less(t, f2, f)
	assert.Greater(t, p2, p)
}

func TestKMeansSeparatesClusters(t *testing.T) {
	data := [][]float64{
		{0, 0}, {0.1, 0}, {0, 0.1},
		{5, 5}, {5.1, 5}, {5, 5.1},
	}
	labels := KMeans(data, DefaultKMeansOptions(2))
	require.Len(t, labels, 6)

	assert.Equal(t, labels[0], labels[1])
	assert.Equal(t, labels[0], labels[2])
	assert.Equal(t, labels[3], labels[4])
	assert.Equal(t, labels[3], labels[5])
	assert.NotEqual(t, labels[0], labels[3])
}

func TestKMeansDeterministic(t *testing.T) {
	data := [][]float64{
		{0, 0}, {1, 1}, {0.5, 0}, {8, 8}, {9, 9}, {8.5, 8},
	}
	first := KMeans(data, DefaultKMeansOptions(2))
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, KMeans(data, DefaultKMeansOptions(2)))
	}
}

func TestRelabelContiguous(t *testing.T) {
	labels, n := RelabelContiguous([]int{2, 0, 2, 5})
	assert.Equal(t, []int{1, 0, 1, 2}, labels)
	assert.Equal(t, 3, n)

	labels, n = RelabelContiguous([]int{0, 1, 0})
	assert.Equal(t, []int{0, 1, 0}, labels)
	assert.Equal(t, 2, n)
}
