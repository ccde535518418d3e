// Package identity resolves the local user's identity key pair.
//
// Resolution order: local key store, then the directory's private-key
// backup, then fresh generation with registration. Backup failures fall
// through to generation; a registration failure on the final step
// propagates so callers know E2EE setup did not complete.
package identity
