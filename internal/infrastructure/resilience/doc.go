/*
Package resilience provides the circuit breaker that guards source
resubscription in the catalog aggregator.

# Overview

A host source that keeps failing (for example a contacts provider without
permission) must not be hammered with resubscriptions, and must not stall
the other sources. Each source supervisor runs its subscription through a
Breaker; when the breaker opens, the source stays degraded to its last-known
value until the timeout elapses.

# Usage

	breaker := resilience.New("contacts", resilience.Settings{
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	err := breaker.Execute(ctx, func(ctx context.Context) error {
		return source.Watch(ctx, emit)
	})

# States

	Closed --[failures]-> Open --[timeout]-> Half-Open --[successes]-> Closed
	                                           |
	                                    [failure]
	                                           |
	                                           v
	                                         Open
*/
package resilience
