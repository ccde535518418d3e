// Package directory provides an HTTP implementation of the
// domain.DirectoryClient interface.
//
// The directory is the server collaborator for key distribution: it
// stores identity public keys, optional private-key backups, wrapped
// thread-key envelopes and ciphertext messages. It never sees a raw
// thread key or any plaintext.
//
// All requests are JSON over HTTP and accept a context for cancellation
// and deadlines. Non-2xx statuses are returned as errors with the HTTP
// method, path and status text to aid diagnostics.
package directory
