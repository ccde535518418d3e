package interfaces

import domaintypes "lenslock/internal/domain/types"

// KeyStore is the durable client-local key cache, consulted before any
// directory round-trip. It has two namespaces: identity private keys by
// user id and thread keys by thread id.
//
// Puts are idempotent upserts. Gets report absence via ok=false, never
// an error. Writes are atomic: a key is either fully persisted or not
// persisted at all.
type KeyStore interface {
	PutIdentity(userID domaintypes.UserID, priv domaintypes.P256Private) error
	GetIdentity(userID domaintypes.UserID) (domaintypes.P256Private, bool, error)

	PutThreadKey(threadID domaintypes.ThreadID, key domaintypes.ThreadKey) error
	GetThreadKey(threadID domaintypes.ThreadID) (domaintypes.ThreadKey, bool, error)
}
