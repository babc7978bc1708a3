/*
Package catalog implements the source aggregator: it merges the
application, shortcut, contact and notification sources with the user's
label and notification overrides into one live list of launch items.

# Composition

Every value-changing source (contacts, notification ranks, overrides, the
permission signal) is combined latest-wins: an update from one source
recomputes with the most recent value of every other. The application set
is identity-changing. Shortcuts are looked up per owning package, so every
new application set hard-cancels the running shortcut subscription and
starts a new one against the new packages. The old subscription's channel
is dropped together with its context, so it can never feed a newer pass.

# Failure

Each source runs under a supervisor. A failing source is logged, counted,
and degraded to its last-known value (empty if it never reported) while
the others keep flowing. Resubscription goes through a circuit breaker and
a rate limiter.

# First load

The first pass that resolves applications is emitted twice: once with
placeholder icons, then with the resolved ones. Later passes emit once,
and only when the visible fields changed.
*/
package catalog
