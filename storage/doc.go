// Package storage provides the durable key-value backends used by the
// session store and the pending-action ledger.
//
// A [Backend] is a flat string-to-string store selected once at
// construction time from the runtime platform. The package ships three
// implementations: [Memory] for tests and embedded use, [File] for the
// app-scoped preferences store on the native platform, and [Redis] for
// deployments that mirror client state into a shared store.
//
// Backends report infrastructure failures as errors; they never
// translate a missing key into an error. The swallow-and-degrade policy
// (treat a failed read as absent, a failed write as a no-op) belongs to
// the callers, not to this package.
package storage
