// Package storage provides the key-value persistence capability used by the
// usage counter and override stores.
//
// Components:
//   - Store: Get/Put/Remove/Scan over named tables, with memory, BadgerDB
//     and SQLite backends
//   - Table: One named table with serialized writes and whole-table
//     stream-on-change observation
//
// Backends:
//   - memory: process-local map, used by tests and ephemeral runs
//   - badger: embedded LSM store, keys are "table\x00key"
//   - sqlite: single kv(tbl, key, value) table via modernc.org/sqlite
//
// Example Usage:
//
//	store, err := storage.Open(storage.Config{Backend: storage.BackendBadger, Path: dir}, logger)
//	counters, err := storage.NewTable(ctx, store, "counters")
//	updates := counters.Watch(ctx)
package storage
