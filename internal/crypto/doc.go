// Package crypto exposes the primitives used by lenslock.
//
// Contents
//
//   - P-256 identity key pairs and their JWK import/export
//     (GenerateIdentityKeyPair, ImportPublicKeyJWK, ...)
//   - 256-bit thread keys (GenerateThreadKey, ImportThreadKeyRaw)
//   - The envelope cipher protecting message plaintext
//     (EncryptMessage, DecryptMessage)
//   - The key-wrapping protocol delivering a thread key to a recipient
//     (WrapThreadKeyForRecipient, UnwrapThreadKey)
//   - Short public-key fingerprints for display/logging (Fingerprint)
//
// # Notes
//
// Key material is passed around as the fixed-size types defined in
// internal/domain. Callers should treat shared secrets and wrapping keys
// as sensitive; this package wipes its own intermediates before
// returning.
package crypto
