// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package pathgraph

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/AleutianAI/InsightEase/services/behavior/dataset"
	"github.com/AleutianAI/InsightEase/services/behavior/internal/ordmap"
	"github.com/AleutianAI/InsightEase/services/behavior/journey"
	"github.com/AleutianAI/InsightEase/services/behavior/stats"
)

// pathSep joins labels into a counting key. Unit separator keeps labels
// containing underscores unambiguous.
const pathSep = "\x1f"

// cycleSampleCap bounds the number of cyclic paths reported.
const cycleSampleCap = 10

// topPathCap bounds the ranked path list.
const topPathCap = 20

// Analyze builds the path statistics and graph projections.
//
// # Inputs
//
//   - ctx: Context for tracing.
//   - journeys: Per-user ordered sequences.
//   - opts: Truncation and frequency limits; zero values take defaults.
//
// # Outputs
//
//   - *Result: Counts, cycles, top paths, both graph projections, and
//     per-node statistics sorted by unique users descending.
//   - error: dataset.ErrInsufficientData when no journeys are supplied.
func Analyze(ctx context.Context, journeys []*journey.UserJourney, opts Options) (*Result, error) {
	start := time.Now()
	if opts.MaxPathLength <= 0 {
		opts.MaxPathLength = DefaultOptions().MaxPathLength
	}
	if opts.MinUserCount <= 0 {
		opts.MinUserCount = DefaultOptions().MinUserCount
	}
	if len(journeys) == 0 {
		return nil, fmt.Errorf("%w: no user journeys", dataset.ErrInsufficientData)
	}

	ctx, span := startAnalyzeSpan(ctx, len(journeys), opts.MaxPathLength)
	defer span.End()

	// Count identical truncated sequences.
	pathCounter := ordmap.NewCounter()
	pathLabels := make(map[string][]string)
	for _, j := range journeys {
		labels := journey.Truncate(j.Labels(), opts.MaxPathLength)
		key := strings.Join(labels, pathSep)
		pathCounter.Add(key, 1)
		if _, ok := pathLabels[key]; !ok {
			pathLabels[key] = labels
		}
	}

	res := &Result{
		TotalUsers:    len(journeys),
		TotalPaths:    pathCounter.Len(),
		MaxPathLength: opts.MaxPathLength,
		CycleDetails:  []CycleDetail{},
		TopPaths:      []TopPath{},
	}

	// Cyclic paths: any label repeating within a truncated sequence.
	for _, key := range pathCounter.Keys() {
		labels := pathLabels[key]
		seen := map[string]bool{}
		cycleSeen := map[string]bool{}
		var cycleNodes []string
		for _, l := range labels {
			if seen[l] && !cycleSeen[l] {
				cycleSeen[l] = true
				cycleNodes = append(cycleNodes, l)
			}
			seen[l] = true
		}
		if len(cycleNodes) > 0 {
			res.HasCycleInData = true
			if len(res.CycleDetails) < cycleSampleCap {
				res.CycleDetails = append(res.CycleDetails, CycleDetail{
					Path:       labels,
					UserCount:  pathCounter.Get(key),
					CycleNodes: cycleNodes,
				})
			}
		}
	}

	frequent := func(key string) bool {
		return pathCounter.Get(key) >= opts.MinUserCount
	}

	// Flow (sankey) graph over frequent sequences only: an edge is added
	// only when the target has not already appeared earlier in the same
	// sequence, which keeps the layout acyclic.
	nodeIndex := map[string]int{}
	for _, key := range pathCounter.Keys() {
		if !frequent(key) {
			continue
		}
		for _, l := range pathLabels[key] {
			if _, ok := nodeIndex[l]; !ok {
				nodeIndex[l] = len(res.Flow.Nodes)
				res.Flow.Nodes = append(res.Flow.Nodes, FlowNode{Name: l})
			}
		}
	}
	type pairKey struct{ source, target int }
	var linkOrder []pairKey
	linkCount := map[pairKey]int{}
	for _, key := range pathCounter.Keys() {
		if !frequent(key) {
			continue
		}
		labels := pathLabels[key]
		count := pathCounter.Get(key)
		seen := map[string]bool{}
		for i := 0; i+1 < len(labels); i++ {
			source, target := labels[i], labels[i+1]
			if !seen[target] && source != target {
				pk := pairKey{nodeIndex[source], nodeIndex[target]}
				if _, ok := linkCount[pk]; !ok {
					linkOrder = append(linkOrder, pk)
				}
				linkCount[pk] += count
			}
			seen[source] = true
		}
	}
	for _, pk := range linkOrder {
		res.Flow.Links = append(res.Flow.Links, FlowLink{
			Source: pk.source,
			Target: pk.target,
			Value:  linkCount[pk],
		})
	}

	// Force-directed graph keeps repeats; only self-transitions drop.
	graphIndex := map[string]int{}
	for _, key := range pathCounter.Keys() {
		if !frequent(key) {
			continue
		}
		labels := pathLabels[key]
		count := pathCounter.Get(key)
		for _, l := range labels {
			if _, ok := graphIndex[l]; !ok {
				graphIndex[l] = len(res.Graph.Nodes)
				res.Graph.Nodes = append(res.Graph.Nodes, GraphNode{ID: l, Name: l})
			}
		}
		for i := 0; i+1 < len(labels); i++ {
			if labels[i] != labels[i+1] {
				res.Graph.Links = append(res.Graph.Links, GraphLink{
					Source: labels[i],
					Target: labels[i+1],
					Value:  count,
				})
			}
		}
	}

	// Top paths rank every sequence by frequency, rare ones included in
	// the counting but filtered from the report by MinUserCount.
	for _, kv := range pathCounter.MostCommon(topPathCap) {
		if kv.Count < opts.MinUserCount {
			continue
		}
		res.TopPaths = append(res.TopPaths, TopPath{
			Path:       pathLabels[kv.Key],
			UserCount:  kv.Count,
			Percentage: stats.Round(float64(kv.Count)/float64(len(journeys))*100, 2),
		})
	}

	// Per-node traffic over the full (untruncated) journeys, restricted
	// to nodes that made it into the flow graph.
	type nodeStat struct {
		in, out int
		users   map[string]bool
	}
	nodeStats := map[string]*nodeStat{}
	var nodeOrder []string
	for _, j := range journeys {
		labels := j.Labels()
		for i, l := range labels {
			if _, ok := nodeIndex[l]; !ok {
				continue
			}
			st, ok := nodeStats[l]
			if !ok {
				st = &nodeStat{users: map[string]bool{}}
				nodeStats[l] = st
				nodeOrder = append(nodeOrder, l)
			}
			st.users[j.UserID] = true
			if i < len(labels)-1 {
				st.out++
			}
			if i > 0 {
				st.in++
			}
		}
	}
	for _, name := range nodeOrder {
		st := nodeStats[name]
		res.NodeDetails = append(res.NodeDetails, NodeDetail{
			Name:        name,
			InDegree:    st.in,
			OutDegree:   st.out,
			UniqueUsers: len(st.users),
		})
	}
	sort.SliceStable(res.NodeDetails, func(a, b int) bool {
		return res.NodeDetails[a].UniqueUsers > res.NodeDetails[b].UniqueUsers
	})

	// Force node sizing from unique visiting users.
	for i := range res.Graph.Nodes {
		var visits int
		if st, ok := nodeStats[res.Graph.Nodes[i].Name]; ok {
			visits = len(st.users)
		}
		res.Graph.Nodes[i].Value = visits
		size := float64(visits) / 5
		if size < 20 {
			size = 20
		}
		if size > 60 {
			size = 60
		}
		res.Graph.Nodes[i].SymbolSize = size
	}

	setAnalyzeSpanResult(span, res.TotalPaths, res.HasCycleInData)
	recordAnalyzeMetrics(ctx, time.Since(start), res.TotalPaths, res.HasCycleInData)
	return res, nil
}
