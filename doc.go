// Package sessiongate coordinates the storefront client's local
// authentication state and its gated actions: persisting the
// token/user pair across the native and web storage backends, judging
// session freshness against a sliding inactivity window, and deferring
// a user's action (add to cart, buy now, navigate) across a login
// redirect so it can be replayed once sign-in completes.
//
// The package is the public surface. It exposes [Coordinator],
// [Builder], [Config] and the collaborator interfaces ([Cart],
// [Navigator], [Favorites]); the storage backends, the session store
// and the pending-action ledger live in their own subpackages and are
// wired together by [Builder.Build].
//
// # Failure policy
//
// Nothing in this package escapes to the caller as an error from the
// UX-facing operations. Storage failures are logged and degraded
// (reads report absent, writes no-op), corrupted persisted state reads
// as empty, and a failed replay drops the pending action instead of
// retrying forever. The package favors availability of the storefront
// over strict delivery of a deferred action.
//
// # Concurrency
//
// The session mirror and the ledger are guarded by mutexes, so every
// exported method is safe for concurrent use. There are no multi-key
// transactions: interleaved flows observe per-key best-effort
// consistency, which is all the underlying client stores can offer.
package sessiongate
