// Package main is the entry point of catalogd, the launch catalog daemon.
//
// catalogd merges installed applications, pinned shortcuts, starred contacts
// and the settings entry into one catalog, ranks it by usage and pending
// notifications, and serves it over HTTP and a WebSocket stream. Sources are
// read from a YAML fixture file that is watched for changes.
//
// Architecture:
//
//	fixture file → Source Aggregator → Ranking Pipeline → HTTP / WebSocket
//	                                 ↑                    ↓
//	                   Counter & Override Stores ← Action Dispatcher
//
// Configuration:
//   - Environment variables (12-factor)
//   - CLI flags (override env vars)
//   - Defaults for development
//
// Usage:
//
//	# Production mode
//	./catalogd -port 8000 -fixture /etc/catalogd/catalog.yaml -storage badger
//
//	# Development mode (colored logs, debug level, in-memory storage)
//	./catalogd -dev -storage memory
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
