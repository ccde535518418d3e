package types

// ThreadKeyEnvelope is the base64 wire form of a wrapped thread key:
// base64(ephemeralPublicKey(65) || wrappedKeyBytes). It can only be
// opened by the recipient whose public key was used at wrap time.
type ThreadKeyEnvelope string

// String returns the string form of the envelope.
func (e ThreadKeyEnvelope) String() string { return string(e) }

// RecipientEnvelope pairs an envelope with its addressee. One exists per
// (thread key, recipient); envelopes are immutable once pushed.
type RecipientEnvelope struct {
	RecipientUserID UserID            `json:"recipient_user_id"`
	Envelope        ThreadKeyEnvelope `json:"envelope"`
}

// RecipientKey is a thread participant's identity public key as served
// by the directory.
type RecipientKey struct {
	UserID    UserID `json:"user_id"`
	PublicKey JWK    `json:"public_key"`
}

// EncryptedMessage is a stored ciphertext blob. The ciphertext is
// self-describing (it carries its own nonce); plaintext never appears
// on the wire or at rest.
type EncryptedMessage struct {
	ID           string   `json:"id"`
	ThreadID     ThreadID `json:"thread_id"`
	SenderUserID UserID   `json:"sender_user_id"`
	Ciphertext   string   `json:"ciphertext"`
	Timestamp    int64    `json:"timestamp"`
}

// EncryptedPayload is the result of encrypting for a thread. When the
// call had to mint the thread key, FreshEnvelopes holds one wrapped copy
// per recipient for the caller to push alongside the message; it is nil
// when the key already existed.
type EncryptedPayload struct {
	Ciphertext     string
	FreshEnvelopes []RecipientEnvelope
}

// DecryptedMessage is what the receive path returns. Text holds either
// the plaintext or one of the degradation sentinels.
type DecryptedMessage struct {
	SenderUserID UserID
	Text         string
	Timestamp    int64
}
