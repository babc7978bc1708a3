/*
Package monitoring provides Prometheus metrics for the catalog engine.

# Overview

Each Metrics value owns a private registry, so several engines (or tests)
can coexist in one process without duplicate-registration panics.

# Features

- Aggregation passes, emissions by kind, dedup skips, catalog size
- Source failures, breaker rejections, shortcut resubscriptions
- Ranking latency and result size
- Usage records, override mutations, dispatched actions
- HTTP and WebSocket metrics

# Usage

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

A nil *Metrics records nothing:

	var m *monitoring.Metrics
	m.RecordAggregation() // no-op
*/
package monitoring
