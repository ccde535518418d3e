package interfaces

import (
	"context"

	domaintypes "lenslock/internal/domain/types"
)

// IdentityService resolves a user's identity key pair: local store first,
// then directory backup, then fresh generation plus registration.
type IdentityService interface {
	Resolve(ctx context.Context, userID domaintypes.UserID) (domaintypes.IdentityKeyPair, error)
}

// ThreadKeyService resolves thread keys.
//
// Resolve covers the receive path: local store, then a supplied envelope,
// then envelopes fetched from the directory; found=false means no key is
// resolvable yet. GenerateIfAbsent covers the send path's final step and
// mints one envelope per recipient when no key exists locally. Concurrent
// calls for one thread share a single resolution, so duplicate fresh-key
// generation cannot happen.
type ThreadKeyService interface {
	Resolve(
		ctx context.Context,
		threadID domaintypes.ThreadID,
		selfUserID domaintypes.UserID,
		identity domaintypes.IdentityKeyPair,
		supplied *domaintypes.ThreadKeyEnvelope,
	) (domaintypes.ThreadKey, bool, error)
	GenerateIfAbsent(
		ctx context.Context,
		threadID domaintypes.ThreadID,
		recipients []domaintypes.RecipientKey,
	) (domaintypes.ThreadKey, []domaintypes.RecipientEnvelope, error)
}

// MessageService runs the envelope cipher on top of resolved thread keys
// and degrades to sentinel text when no key is resolvable.
type MessageService interface {
	EncryptForThread(
		ctx context.Context,
		userID domaintypes.UserID,
		identity domaintypes.IdentityKeyPair,
		threadID domaintypes.ThreadID,
		plaintext string,
		recipients []domaintypes.RecipientKey,
	) (domaintypes.EncryptedPayload, error)
	DecryptForThread(
		ctx context.Context,
		userID domaintypes.UserID,
		identity domaintypes.IdentityKeyPair,
		threadID domaintypes.ThreadID,
		ciphertext string,
		supplied *domaintypes.ThreadKeyEnvelope,
	) string
	Send(
		ctx context.Context,
		userID domaintypes.UserID,
		identity domaintypes.IdentityKeyPair,
		threadID domaintypes.ThreadID,
		plaintext string,
		recipients []domaintypes.RecipientKey,
	) error
	Receive(
		ctx context.Context,
		userID domaintypes.UserID,
		identity domaintypes.IdentityKeyPair,
		threadID domaintypes.ThreadID,
		limit int,
	) ([]domaintypes.DecryptedMessage, error)
}
