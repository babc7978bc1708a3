// Package usage provides the usage counter store behind the catalog's
// popularity ranking.
//
// Each item id maps to a persisted record holding a long-term launch count,
// a short-term count that decays with a configurable half-life, the time of
// the last launch and a deprioritized flag. Records are exposed as
// types.Counter values:
//   - Normal{shortTerm, longTerm, combined} where
//     combined = longTerm + boostWeight * decayedShortTerm
//   - Deprioritized, a sentinel carrying no counts
//
// Deprioritizing keeps the historical counts, so undeprioritizing restores
// the item's previous standing. Launches recorded while deprioritized are
// ignored.
//
// Example Usage:
//
//	store, err := usage.NewStore(ctx, kv, usage.DefaultConfig(), logger)
//	err = store.RecordLaunch(ctx, "0/org.calc/Main")
//	counters := store.Watch(ctx)
package usage
