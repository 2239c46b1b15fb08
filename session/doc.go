// Package session persists the authenticated session of the storefront
// client: the token/user pair, the last-activity timestamp that bounds
// the sliding expiry window, and the cart, wishlist and buy-now
// snapshots that ride along with it.
//
// The [Store] is purely local. It never calls the network; token
// freshness is judged from the configured inactivity timeouts (plus an
// optional unverified JWT exp hint) and nothing else. Storage failures
// are logged and degraded: a failed read reports an absent value, a
// failed write is a no-op. None of the Store operations return errors
// to the caller.
package session
