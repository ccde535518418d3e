// Package store provides the file-based local key cache.
//
// It implements the domain.KeyStore contract with two namespaces:
// identity private keys (by user id) and thread keys (by thread id).
// Each namespace is a JSON map sealed with a passphrase-derived key
// (scrypt + ChaCha20-Poly1305) and written atomically via a temp file
// and rename, so readers never observe a partially persisted key. All
// methods are concurrency-safe via internal locking; the underlying
// files are reopened per operation, which is safe and cheap.
package store
