package interfaces

import (
	"context"

	domaintypes "lenslock/internal/domain/types"
)

// DirectoryClient is how we talk to the key-directory server. The server
// only ever sees public keys, wrapped envelopes and ciphertext; raw
// thread keys never cross this boundary.
//
// The one exception is the identity backup: RegisterIdentity may include
// a plaintext private-key JWK so a user can recover their identity on a
// new device. This makes the directory operator fully trusted with
// message confidentiality and is a deliberate, documented trade-off.
type DirectoryClient interface {
	RegisterIdentity(
		ctx context.Context,
		userID domaintypes.UserID,
		publicKey domaintypes.JWK,
		privateKeyBackup *domaintypes.JWK,
	) error
	// FetchIdentityBackup returns nil when no backup exists.
	FetchIdentityBackup(
		ctx context.Context,
		userID domaintypes.UserID,
	) (*domaintypes.JWK, error)

	FetchThreadEnvelopes(
		ctx context.Context,
		threadID domaintypes.ThreadID,
	) ([]domaintypes.RecipientEnvelope, error)
	PushThreadEnvelopes(
		ctx context.Context,
		threadID domaintypes.ThreadID,
		envelopes []domaintypes.RecipientEnvelope,
	) error
	FetchThreadRecipients(
		ctx context.Context,
		threadID domaintypes.ThreadID,
	) ([]domaintypes.RecipientKey, error)

	// SendMessage is the only path by which ciphertext and, when a key
	// was just minted, its fresh envelopes reach the server.
	SendMessage(
		ctx context.Context,
		threadID domaintypes.ThreadID,
		senderUserID domaintypes.UserID,
		ciphertext string,
		freshEnvelopes []domaintypes.RecipientEnvelope,
	) error
	FetchMessages(
		ctx context.Context,
		threadID domaintypes.ThreadID,
		limit int,
	) ([]domaintypes.EncryptedMessage, error)
}
