package domain

import (
	interfaces "lenslock/internal/domain/interfaces"
	types "lenslock/internal/domain/types"
)

// Type aliases expose domain types from the types subpackage for compact imports.
type (
	UserID            = types.UserID
	ThreadID          = types.ThreadID
	Fingerprint       = types.Fingerprint
	P256Public        = types.P256Public
	P256Private       = types.P256Private
	IdentityKeyPair   = types.IdentityKeyPair
	ThreadKey         = types.ThreadKey
	JWK               = types.JWK
	ThreadKeyEnvelope = types.ThreadKeyEnvelope
	RecipientEnvelope = types.RecipientEnvelope
	RecipientKey      = types.RecipientKey
	EncryptedMessage  = types.EncryptedMessage
	EncryptedPayload  = types.EncryptedPayload
	DecryptedMessage  = types.DecryptedMessage
)

// Interface aliases expose domain interfaces from the interfaces subpackage.
type (
	KeyStore         = interfaces.KeyStore
	DirectoryClient  = interfaces.DirectoryClient
	IdentityService  = interfaces.IdentityService
	ThreadKeyService = interfaces.ThreadKeyService
	MessageService   = interfaces.MessageService
)
