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
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Package-level tracer and meter for path analysis operations.
var (
	tracer = otel.Tracer("insightease.pathgraph")
	meter  = otel.Meter("insightease.pathgraph")
)

// Metrics for path analysis operations.
var (
	analyzeLatency metric.Float64Histogram
	analyzeTotal   metric.Int64Counter
	pathsCounted   metric.Int64Histogram

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		analyzeLatency, err = meter.Float64Histogram(
			"pathgraph_analyze_duration_seconds",
			metric.WithDescription("Duration of path analysis operations"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		analyzeTotal, err = meter.Int64Counter(
			"pathgraph_analyze_total",
			metric.WithDescription("Total number of path analysis operations"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		pathsCounted, err = meter.Int64Histogram(
			"pathgraph_distinct_paths",
			metric.WithDescription("Distinct sequences counted per analysis"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// startAnalyzeSpan creates a span for a path analysis operation.
func startAnalyzeSpan(ctx context.Context, journeys, maxLen int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "PathGraph.Analyze",
		trace.WithAttributes(
			attribute.Int("pathgraph.journeys", journeys),
			attribute.Int("pathgraph.max_path_length", maxLen),
		),
	)
}

// setAnalyzeSpanResult sets the result attributes on an analysis span.
func setAnalyzeSpanResult(span trace.Span, totalPaths int, hasCycle bool) {
	span.SetAttributes(
		attribute.Int("pathgraph.total_paths", totalPaths),
		attribute.Bool("pathgraph.has_cycle", hasCycle),
	)
}

// recordAnalyzeMetrics records metrics for a path analysis operation.
func recordAnalyzeMetrics(ctx context.Context, duration time.Duration, totalPaths int, hasCycle bool) {
	if err := initMetrics(); err != nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.Bool("has_cycle", hasCycle),
	)

	analyzeLatency.Record(ctx, duration.Seconds(), attrs)
	analyzeTotal.Add(ctx, 1, attrs)
	pathsCounted.Record(ctx, int64(totalPaths))
}
