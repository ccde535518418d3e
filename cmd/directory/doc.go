// Package main runs the in-memory key directory used by lenslock during
// development and tests. It stores identity public keys (and, where the
// user opted in, a private-key backup), per-thread wrapped thread-key
// envelopes, and encrypted messages.
//
// HTTP API
//
//	POST /identity/register
//	    Store a user's identity public key, plus an optional
//	    private-key backup JWK.
//
//	GET /identity/backup/{user}
//	    Return the stored private-key backup for {user}, or 404 when
//	    the user never registered one.
//
//	GET /threads/{id}/envelopes
//	    Return every wrapped thread-key envelope pushed for {id}.
//
//	POST /threads/{id}/envelopes
//	    Store wrapped envelopes for {id}. An envelope for a recipient
//	    who already has one is ignored; envelopes are immutable.
//
//	GET /threads/{id}/recipients
//	    Return the thread's participants with their public keys. The
//	    dev directory treats every registered identity as a
//	    participant of every thread.
//
//	POST /threads/{id}/messages
//	    Store a ciphertext message; fresh envelopes riding along are
//	    stored atomically with it. The server assigns the message id
//	    and timestamp.
//
//	GET /threads/{id}/messages?limit=N
//	    Return up to N stored messages for {id}, oldest first. Absent
//	    or zero limit returns all.
//
// All state is held in memory and lost on process exit. The directory
// never sees plaintext or usable private keys; backups are only as
// private as the operator of this server, which is exactly the trust
// trade-off they encode.
package main
