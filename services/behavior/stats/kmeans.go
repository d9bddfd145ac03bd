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
	"math/rand"
)

// KMeansOptions configures a k-means run.
type KMeansOptions struct {
	// K is the number of clusters.
	K int

	// Restarts is the number of independent initializations; the labeling
	// with the lowest inertia wins.
	Restarts int

	// MaxIterations bounds the Lloyd iterations per restart.
	MaxIterations int

	// Seed fixes the initialization RNG so runs are reproducible.
	Seed int64
}

// DefaultKMeansOptions returns the defaults used by the clusterer.
func DefaultKMeansOptions(k int) KMeansOptions {
	return KMeansOptions{
		K:             k,
		Restarts:      10,
		MaxIterations: 300,
		Seed:          42,
	}
}

// KMeans clusters the rows of X into opts.K groups and returns a label per
// row. Labels are in [0, K); clusters that end up empty simply never
// appear in the output.
//
// Initialization is kmeans++-style: the first centroid is a uniformly
// random row, each subsequent centroid is drawn with probability
// proportional to squared distance from the nearest chosen centroid.
func KMeans(X [][]float64, opts KMeansOptions) []int {
	n := len(X)
	if n == 0 || opts.K <= 0 {
		return nil
	}
	k := opts.K
	if k > n {
		k = n
	}
	restarts := opts.Restarts
	if restarts <= 0 {
		restarts = 1
	}
	maxIter := opts.MaxIterations
	if maxIter <= 0 {
		maxIter = 300
	}

	rng := rand.New(rand.NewSource(opts.Seed))

	bestLabels := make([]int, n)
	bestInertia := math.Inf(1)

	for r := 0; r < restarts; r++ {
		centroids := seedCentroids(X, k, rng)
		labels := make([]int, n)

		for iter := 0; iter < maxIter; iter++ {
			changed := false
			for i, row := range X {
				c := nearestCentroid(row, centroids)
				if labels[i] != c {
					labels[i] = c
					changed = true
				}
			}
			recomputeCentroids(X, labels, centroids)
			if !changed && iter > 0 {
				break
			}
		}

		inertia := 0.0
		for i, row := range X {
			inertia += sqDist(row, centroids[labels[i]])
		}
		if inertia < bestInertia {
			bestInertia = inertia
			copy(bestLabels, labels)
		}
	}
	return bestLabels
}

func seedCentroids(X [][]float64, k int, rng *rand.Rand) [][]float64 {
	n := len(X)
	dims := len(X[0])
	centroids := make([][]float64, 0, k)

	first := append([]float64(nil), X[rng.Intn(n)]...)
	centroids = append(centroids, first)

	dists := make([]float64, n)
	for len(centroids) < k {
		var total float64
		for i, row := range X {
			d := math.Inf(1)
			for _, c := range centroids {
				if dd := sqDist(row, c); dd < d {
					d = dd
				}
			}
			dists[i] = d
			total += d
		}
		var idx int
		if total == 0 {
			idx = rng.Intn(n)
		} else {
			target := rng.Float64() * total
			var acc float64
			for i, d := range dists {
				acc += d
				if acc >= target {
					idx = i
					break
				}
			}
		}
		c := make([]float64, dims)
		copy(c, X[idx])
		centroids = append(centroids, c)
	}
	return centroids
}

func nearestCentroid(row []float64, centroids [][]float64) int {
	best := 0
	bestD := math.Inf(1)
	for c, cent := range centroids {
		if d := sqDist(row, cent); d < bestD {
			bestD = d
			best = c
		}
	}
	return best
}

func recomputeCentroids(X [][]float64, labels []int, centroids [][]float64) {
	k := len(centroids)
	dims := len(centroids[0])
	sums := make([][]float64, k)
	counts := make([]int, k)
	for c := range sums {
		sums[c] = make([]float64, dims)
	}
	for i, row := range X {
		c := labels[i]
		counts[c]++
		for j, v := range row {
			sums[c][j] += v
		}
	}
	for c := 0; c < k; c++ {
		if counts[c] == 0 {
			continue // empty cluster keeps its old centroid
		}
		for j := 0; j < dims; j++ {
			centroids[c][j] = sums[c][j] / float64(counts[c])
		}
	}
}

func sqDist(a, b []float64) float64 {
	var s float64
	for i := range a {
		d := a[i] - b[i]
		s += d * d
	}
	return s
}

// RelabelContiguous maps labels onto a contiguous 0..m-1 range in order of
// first appearance of each ascending original label, dropping gaps left by
// empty clusters. Returns the rewritten labels and the effective count.
func RelabelContiguous(labels []int) ([]int, int) {
	present := map[int]bool{}
	var distinct []int
	for _, l := range labels {
		if !present[l] {
			present[l] = true
			distinct = append(distinct, l)
		}
	}
	// Ascending original label order keeps ids stable across runs.
	for i := 1; i < len(distinct); i++ {
		for j := i; j > 0 && distinct[j] < distinct[j-1]; j-- {
			distinct[j], distinct[j-1] = distinct[j-1], distinct[j]
		}
	}
	remap := make(map[int]int, len(distinct))
	for newID, old := range distinct {
		remap[old] = newID
	}
	out := make([]int, len(labels))
	for i, l := range labels {
		out[i] = remap[l]
	}
	return out, len(distinct)
}
