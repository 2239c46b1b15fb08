// Package pending holds the single deferred gated action that survives
// a login redirect.
//
// The [Ledger] stores at most one [Action] at a time, in memory and in
// durable storage, so a full page reload between "user tapped add to
// cart" and "user finished signing in" does not lose the intent. A
// second gated attempt before the first resolves overwrites it: the
// most recent user intent wins, there is no queue.
package pending
