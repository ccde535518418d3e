// Package threadkey resolves per-thread content-encryption keys.
//
// The receive path tries the local store, a supplied envelope, then the
// directory's stored envelopes. The send path falls back to minting a
// fresh key with one wrapped envelope per recipient. All resolution for
// one thread is coalesced, so racing callers share a single outcome and
// can never create two incompatible keys for the same thread.
package threadkey
