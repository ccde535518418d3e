// Package session owns the per-user E2EE lifecycle.
//
// A Session is constructed once per authenticated user and passed by
// reference to callers; there is no ambient global state. Init drives
// identity resolution and flips Ready; Teardown abandons cleanly.
// Thread-key operations gate on readiness: they wait for an in-flight
// identity resolution (bounded by the caller's context) instead of
// proceeding with a nil key.
package session
