// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package cluster groups users by behavioral features extracted from
// their journeys (smart mode) or by caller-chosen numeric columns
// (custom mode), using standardized k-means, and ranks which features
// drive the segmentation.
package cluster

// Mode selects the feature-extraction strategy.
type Mode string

const (
	// ModeSmart derives behavioral features from the journeys.
	ModeSmart Mode = "smart"

	// ModeCustom averages caller-supplied numeric columns per user.
	ModeCustom Mode = "custom"
)

// Smart feature names, in canonical column order.
const (
	FeatTotalEvents       = "total_events"
	FeatUniqueEvents      = "unique_events"
	FeatCombinedUnique    = "combined_unique"
	FeatAvgTimeBetween    = "avg_time_between"
	FeatTotalDuration     = "total_duration"
	FeatMorningActivity   = "morning_activity"
	FeatAfternoonActivity = "afternoon_activity"
	FeatEveningActivity   = "evening_activity"
	FeatNightActivity     = "night_activity"
	FeatSessionCount      = "n_sessions"
	FeatAvgSessionLength  = "avg_session_length"
	FeatPathDepth         = "path_depth"
	FeatBehaviorEntropy   = "behavior_entropy"
	FeatCombinedEntropy   = "combined_entropy"
	FeatHasRepetition     = "has_repetition"
	FeatRepetitionRate    = "repetition_rate"
)

// SmartFeatures lists every smart feature in canonical order.
func SmartFeatures() []string {
	return []string{
		FeatTotalEvents,
		FeatUniqueEvents,
		FeatCombinedUnique,
		FeatAvgTimeBetween,
		FeatTotalDuration,
		FeatMorningActivity,
		FeatAfternoonActivity,
		FeatEveningActivity,
		FeatNightActivity,
		FeatSessionCount,
		FeatAvgSessionLength,
		FeatPathDepth,
		FeatBehaviorEntropy,
		FeatCombinedEntropy,
		FeatHasRepetition,
		FeatRepetitionRate,
	}
}

// Options configures a clustering analysis.
type Options struct {
	// NClusters is the requested cluster count. Reduced to
	// user_count/2 when fewer users than clusters exist.
	NClusters int `json:"n_clusters" yaml:"n_clusters"`

	// MaxPathLength caps path-depth and repetition features.
	MaxPathLength int `json:"max_path_length" yaml:"max_path_length"`

	// Mode is "smart" or "custom"; empty defaults to smart.
	Mode Mode `json:"mode" yaml:"mode"`

	// CustomColumns are the numeric columns averaged per user in custom
	// mode.
	CustomColumns []string `json:"custom_columns" yaml:"custom_columns"`

	// SelectedFeatures restricts smart mode to a feature subset; empty
	// means all.
	SelectedFeatures []string `json:"selected_features" yaml:"selected_features"`
}

// DefaultOptions returns the standard clustering configuration.
func DefaultOptions() Options {
	return Options{
		NClusters:     3,
		MaxPathLength: 10,
		Mode:          ModeSmart,
	}
}

// FeatureStat summarizes one feature within a cluster.
type FeatureStat struct {
	Mean float64 `json:"mean"`

	// Std is null for single-member clusters.
	Std *float64 `json:"std"`

	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Cluster is one user segment.
type Cluster struct {
	ClusterID    int                    `json:"cluster_id"`
	UserCount    int                    `json:"user_count"`
	Percentage   float64                `json:"percentage"`
	FeatureStats map[string]FeatureStat `json:"feature_stats"`
	Description  string                 `json:"description"`
}

// UserAssignment maps one user to their cluster.
type UserAssignment struct {
	UserID  string `json:"user_id"`
	Cluster int    `json:"cluster"`
}

// FeatureImportance ranks one feature's separation power.
type FeatureImportance struct {
	Feature    string  `json:"feature"`
	FStatistic float64 `json:"f_statistic"`
	PValue     float64 `json:"p_value"`
}

// Result is the full clustering output.
//
// When too few users exist for a meaningful segmentation, Message is set
// and the remaining fields are zero; this mirrors the graceful handling
// of empty key paths.
type Result struct {
	TotalUsers         int                 `json:"total_users"`
	NClusters          int                 `json:"n_clusters,omitempty"`
	Mode               Mode                `json:"mode,omitempty"`
	FeatureColumns     []string            `json:"feature_columns,omitempty"`
	Clusters           []Cluster           `json:"clusters,omitempty"`
	UserClusterMapping []UserAssignment    `json:"user_cluster_mapping,omitempty"`
	FeatureImportance  []FeatureImportance `json:"feature_importance,omitempty"`
	Message            string              `json:"message,omitempty"`
}
