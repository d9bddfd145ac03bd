// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package cluster

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Package-level tracer and meter for clustering operations.
var (
	tracer = otel.Tracer("insightease.cluster")
	meter  = otel.Meter("insightease.cluster")
)

// Metrics for clustering operations.
var (
	analyzeLatency metric.Float64Histogram
	analyzeTotal   metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		analyzeLatency, err = meter.Float64Histogram(
			"cluster_analyze_duration_seconds",
			metric.WithDescription("Duration of clustering operations"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		analyzeTotal, err = meter.Int64Counter(
			"cluster_analyze_total",
			metric.WithDescription("Total number of clustering operations"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// startAnalyzeSpan creates a span for a clustering operation.
func startAnalyzeSpan(ctx context.Context, mode string, requested int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Cluster.Analyze",
		trace.WithAttributes(
			attribute.String("cluster.mode", mode),
			attribute.Int("cluster.requested", requested),
		),
	)
}

// setAnalyzeSpanResult sets the result attributes on a clustering span.
func setAnalyzeSpanResult(span trace.Span, nClusters int) {
	span.SetAttributes(
		attribute.Int("cluster.effective", nClusters),
	)
}

// recordAnalyzeMetrics records metrics for a clustering operation.
func recordAnalyzeMetrics(ctx context.Context, duration time.Duration, nClusters int, degraded bool) {
	if err := initMetrics(); err != nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.Int("n_clusters", nClusters),
		attribute.Bool("degraded", degraded),
	)

	analyzeLatency.Record(ctx, duration.Seconds(), attrs)
	analyzeTotal.Add(ctx, 1, attrs)
}
