// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package pathgraph counts per-user event sequences, detects cycles, and
// builds the two graph projections the front end renders: an acyclic flow
// (sankey) graph with intra-path repeats suppressed, and a force-directed
// graph that keeps every adjacent transition.
package pathgraph

// Options configures path analysis.
type Options struct {
	// MaxPathLength truncates each user's sequence before counting.
	MaxPathLength int `json:"max_path_length" yaml:"max_path_length"`

	// MinUserCount excludes sequences shared by fewer users from graph
	// construction. Rarer sequences still rank in TopPaths.
	MinUserCount int `json:"min_user_count" yaml:"min_user_count"`
}

// DefaultOptions returns the standard path analysis limits.
func DefaultOptions() Options {
	return Options{MaxPathLength: 10, MinUserCount: 5}
}

// FlowNode is a node in the acyclic flow graph.
type FlowNode struct {
	// Name is the event label.
	Name string `json:"name"`

	// Value is reserved for renderer-side sizing.
	Value int `json:"value"`
}

// FlowLink is an edge between flow node indexes.
type FlowLink struct {
	Source int `json:"source"`
	Target int `json:"target"`
	Value  int `json:"value"`
}

// FlowData is the sankey-style acyclic projection.
type FlowData struct {
	Nodes []FlowNode `json:"nodes"`
	Links []FlowLink `json:"links"`
}

// GraphNode is a node in the force-directed graph.
type GraphNode struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	// Value is the count of unique users visiting the node.
	Value int `json:"value"`

	// SymbolSize is a clamped (20-60) linear function of Value.
	SymbolSize float64 `json:"symbolSize"`
}

// GraphLink is a directed transition in the force-directed graph.
type GraphLink struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Value  int    `json:"value"`
}

// GraphData is the force-directed projection, repeats retained.
type GraphData struct {
	Nodes []GraphNode `json:"nodes"`
	Links []GraphLink `json:"links"`
}

// CycleDetail is one cyclic path sample.
type CycleDetail struct {
	// Path is the truncated sequence containing the repeat.
	Path []string `json:"path"`

	// UserCount is how many users share this exact sequence.
	UserCount int `json:"user_count"`

	// CycleNodes are the labels that repeat within the path.
	CycleNodes []string `json:"cycle_nodes"`
}

// TopPath is one ranked sequence.
type TopPath struct {
	Path       []string `json:"path"`
	UserCount  int      `json:"user_count"`
	Percentage float64  `json:"percentage"`
}

// NodeDetail is per-node traffic statistics.
type NodeDetail struct {
	Name        string `json:"name"`
	InDegree    int    `json:"in_degree"`
	OutDegree   int    `json:"out_degree"`
	UniqueUsers int    `json:"unique_users"`
}

// Result is the full path analysis output.
type Result struct {
	TotalUsers     int           `json:"total_users"`
	TotalPaths     int           `json:"total_paths"`
	HasCycleInData bool          `json:"has_cycle_in_data"`
	CycleDetails   []CycleDetail `json:"cycle_details"`
	TopPaths       []TopPath     `json:"top_paths"`
	Flow           FlowData      `json:"sankey_data"`
	Graph          GraphData     `json:"graph_data"`
	NodeDetails    []NodeDetail  `json:"node_details"`
	MaxPathLength  int           `json:"max_path_length"`
}
