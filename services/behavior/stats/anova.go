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

import "math"

// FOneWay computes a one-way ANOVA F-statistic and p-value across the
// given groups of observations.
//
// # Description
//
// The F-statistic is the ratio of between-group to within-group mean
// squares. The p-value is the upper tail of the F(dfB, dfW) distribution,
// evaluated through the regularized incomplete beta function.
//
// Returns (NaN, NaN) when fewer than two groups are supplied or the
// within-group variance is degenerate.
func FOneWay(groups [][]float64) (fStat, pValue float64) {
	k := len(groups)
	if k < 2 {
		return math.NaN(), math.NaN()
	}

	var n int
	var grandSum float64
	for _, g := range groups {
		n += len(g)
		for _, x := range g {
			grandSum += x
		}
	}
	if n <= k {
		return math.NaN(), math.NaN()
	}
	grandMean := grandSum / float64(n)

	var ssBetween, ssWithin float64
	for _, g := range groups {
		gm := Mean(g)
		d := gm - grandMean
		ssBetween += float64(len(g)) * d * d
		for _, x := range g {
			dd := x - gm
			ssWithin += dd * dd
		}
	}

	dfB := float64(k - 1)
	dfW := float64(n - k)
	msWithin := ssWithin / dfW
	if msWithin == 0 {
		return math.NaN(), math.NaN()
	}
	fStat = (ssBetween / dfB) / msWithin
	pValue = fSurvival(fStat, dfB, dfW)
	return fStat, pValue
}

// fSurvival is P(F > f) for an F(d1, d2) distribution.
func fSurvival(f, d1, d2 float64) float64 {
	if f <= 0 {
		return 1
	}
	x := d2 / (d2 + d1*f)
	return regIncompleteBeta(d2/2, d1/2, x)
}

// regIncompleteBeta evaluates the regularized incomplete beta function
// I_x(a, b) via the continued fraction expansion.
func regIncompleteBeta(a, b, x float64) float64 {
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return 1
	}
	lnBeta := lgamma(a+b) - lgamma(a) - lgamma(b)
	front := math.Exp(lnBeta + a*math.Log(x) + b*math.Log(1-x))
	if x < (a+1)/(a+b+2) {
		return front * betaCF(a, b, x) / a
	}
	return 1 - front*betaCF(b, a, 1-x)/b
}

// betaCF is the Lentz continued fraction for the incomplete beta function.
func betaCF(a, b, x float64) float64 {
	const (
		maxIter = 200
		eps     = 3e-14
		tiny    = 1e-30
	)

	qab := a + b
	qap := a + 1
	qam := a - 1
	c := 1.0
	d := 1 - qab*x/qap
	if math.Abs(d) < tiny {
		d = tiny
	}
	d = 1 / d
	h := d

	for m := 1; m <= maxIter; m++ {
		fm := float64(m)
		m2 := 2 * fm

		aa := fm * (b - fm) * x / ((qam + m2) * (a + m2))
		d = 1 + aa*d
		if math.Abs(d) < tiny {
			d = tiny
		}
		c = 1 + aa/c
		if math.Abs(c) < tiny {
			c = tiny
		}
		d = 1 / d
		h *= d * c

		aa = -(a + fm) * (qab + fm) * x / ((a + m2) * (qap + m2))
		d = 1 + aa*d
		if math.Abs(d) < tiny {
			d = tiny
		}
		c = 1 + aa/c
		if math.Abs(c) < tiny {
			c = tiny
		}
		d = 1 / d
		del := d * c
		h *= del

		if math.Abs(del-1) < eps {
			break
		}
	}
	return h
}

func lgamma(x float64) float64 {
	v, _ := math.Lgamma(x)
	return v
}
