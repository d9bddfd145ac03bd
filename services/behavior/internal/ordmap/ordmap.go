// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package ordmap provides insertion-ordered counters and accumulators.
//
// Go map iteration is randomized, which would make top-N truncation and
// tie-breaking nondeterministic. Every aggregate the analyzers expose is
// therefore built on these ordered containers, with ties broken by
// first-seen order.
package ordmap

import "sort"

// Counter counts string keys in first-seen order.
type Counter struct {
	keys   []string
	counts map[string]int
}

// NewCounter returns an empty counter.
func NewCounter() *Counter {
	return &Counter{counts: make(map[string]int)}
}

// Add increments key by delta.
func (c *Counter) Add(key string, delta int) {
	if _, ok := c.counts[key]; !ok {
		c.keys = append(c.keys, key)
	}
	c.counts[key] += delta
}

// Get returns the count for key (0 if absent).
func (c *Counter) Get(key string) int {
	return c.counts[key]
}

// Len returns the number of distinct keys.
func (c *Counter) Len() int {
	return len(c.keys)
}

// Keys returns the keys in first-seen order.
func (c *Counter) Keys() []string {
	return c.keys
}

// MostCommon returns up to n (key, count) pairs sorted by count
// descending, ties in first-seen order. n <= 0 returns all.
func (c *Counter) MostCommon(n int) []KV {
	out := make([]KV, 0, len(c.keys))
	for _, k := range c.keys {
		out = append(out, KV{Key: k, Count: c.counts[k]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// KV is a counted key.
type KV struct {
	Key   string
	Count int
}

// FloatAccumulator sums float values per string key in first-seen order.
type FloatAccumulator struct {
	keys []string
	sums map[string]float64
}

// NewFloatAccumulator returns an empty accumulator.
func NewFloatAccumulator() *FloatAccumulator {
	return &FloatAccumulator{sums: make(map[string]float64)}
}

// Add adds delta to key's sum.
func (a *FloatAccumulator) Add(key string, delta float64) {
	if _, ok := a.sums[key]; !ok {
		a.keys = append(a.keys, key)
	}
	a.sums[key] += delta
}

// Get returns the sum for key (0 if absent).
func (a *FloatAccumulator) Get(key string) float64 {
	return a.sums[key]
}

// Len returns the number of distinct keys.
func (a *FloatAccumulator) Len() int {
	return len(a.keys)
}

// Keys returns the keys in first-seen order.
func (a *FloatAccumulator) Keys() []string {
	return a.keys
}

// Total returns the sum over all keys.
func (a *FloatAccumulator) Total() float64 {
	var t float64
	for _, k := range a.keys {
		t += a.sums[k]
	}
	return t
}

// SortedDesc returns (key, sum) pairs sorted by sum descending, ties in
// first-seen order.
func (a *FloatAccumulator) SortedDesc() []FloatKV {
	out := make([]FloatKV, 0, len(a.keys))
	for _, k := range a.keys {
		out = append(out, FloatKV{Key: k, Sum: a.sums[k]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Sum > out[j].Sum
	})
	return out
}

// FloatKV is a summed key.
type FloatKV struct {
	Key string
	Sum float64
}
