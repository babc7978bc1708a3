// Package types provides shared data structures for the launch catalog.
//
// This package defines the value objects that flow between the sources,
// the aggregator, the ranking pipeline and the action dispatcher.
//
// Core Types:
//   - LaunchItem: Sealed interface over the four catalog variants
//   - Application, Contact, Shortcut, SettingsEntry: The variants
//   - ItemInfo: Comparable view of the fields every variant exposes
//   - Counter: Per-item usage statistics (normal or deprioritized)
//
// Source Records:
//   - AppRecord, ShortcutRecord, ContactRecord: Raw entries delivered by
//     the host platform sources before aggregation
//
// Requests:
//   - StartRequest: Launch target handed to the external start sink
//
// Example Usage:
//
//	app := types.NewApplication(types.AppRecord{
//	    Label:     "Calculator",
//	    Component: types.ComponentName{Package: "org.calc", Class: "Main"},
//	    UserScope: "0",
//	})
//	if app.Matches("calc") {
//	    fmt.Println(app.Info().ID)
//	}
package types
