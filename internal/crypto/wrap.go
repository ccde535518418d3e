package crypto

import (
	"crypto/ecdh"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"

	kwp "github.com/google/tink/go/kwp/subtle"
	"golang.org/x/crypto/hkdf"

	"lenslock/internal/domain"
	"lenslock/internal/util/memzero"
)

const (
	// wrapInfo domain-separates the wrapping-key derivation from any
	// other use of the same shared secret.
	wrapInfo = "thread-key-wrapping"

	ephemeralPublicBytes = 65
	wrappingKeyBytes     = 32
)

// WrapThreadKeyForRecipient seals a thread key to the holder of
// recipientPub without any interactive handshake.
//
// A one-shot ephemeral P-256 pair is agreed against the recipient's
// public key, a dedicated 256-bit wrapping key is derived with
// HKDF-SHA256 (empty salt, fixed info label), and the raw thread key is
// wrapped deterministically under it. The deterministic wrap needs no
// nonce: the wrapping key itself is single-use. The ephemeral private key
// and all intermediates are wiped before returning; the ephemeral key is
// never reused across envelopes.
//
// Wire format: base64(ephemeralPublic(65, uncompressed) || wrappedKey).
func WrapThreadKeyForRecipient(
	key domain.ThreadKey,
	recipientPub domain.P256Public,
) (domain.ThreadKeyEnvelope, error) {
	peer, err := ecdh.P256().NewPublicKey(recipientPub.Slice())
	if err != nil {
		return "", domain.KeyFormatErrorf("recipient public key: %v", err)
	}
	ephemeral, err := ecdh.P256().GenerateKey(rand.Reader)
	if err != nil {
		return "", fmt.Errorf("generate ephemeral key: %w", err)
	}
	shared, err := ephemeral.ECDH(peer)
	if err != nil {
		return "", fmt.Errorf("ephemeral key agreement: %w", err)
	}
	defer memzero.Zero(shared)

	raw := ExportThreadKeyRaw(key)
	defer memzero.Zero(raw)
	wrapped, err := wrapUnderSecret(shared, raw)
	if err != nil {
		return "", err
	}

	out := make([]byte, 0, ephemeralPublicBytes+len(wrapped))
	out = append(out, ephemeral.PublicKey().Bytes()...)
	out = append(out, wrapped...)
	return domain.ThreadKeyEnvelope(base64.StdEncoding.EncodeToString(out)), nil
}

// UnwrapThreadKey recovers the thread key from an envelope addressed to
// the holder of priv. By the symmetry of the agreement, the recipient's
// private key against the embedded ephemeral public key yields the same
// shared secret the wrapper derived from.
func UnwrapThreadKey(
	envelope domain.ThreadKeyEnvelope,
	priv domain.P256Private,
) (domain.ThreadKey, error) {
	raw, err := base64.StdEncoding.DecodeString(envelope.String())
	if err != nil {
		return domain.ThreadKey{}, domain.KeyFormatError("envelope is not valid base64")
	}
	if len(raw) <= ephemeralPublicBytes {
		return domain.ThreadKey{}, domain.KeyFormatErrorf("envelope too short: %d bytes", len(raw))
	}
	ephemeralPub, err := ecdh.P256().NewPublicKey(raw[:ephemeralPublicBytes])
	if err != nil {
		return domain.ThreadKey{}, domain.KeyFormatErrorf("ephemeral public key: %v", err)
	}
	self, err := ecdh.P256().NewPrivateKey(priv.Slice())
	if err != nil {
		return domain.ThreadKey{}, domain.KeyFormatErrorf("recipient private key: %v", err)
	}
	shared, err := self.ECDH(ephemeralPub)
	if err != nil {
		return domain.ThreadKey{}, fmt.Errorf("key agreement: %w", err)
	}
	defer memzero.Zero(shared)

	keyBytes, err := unwrapUnderSecret(shared, raw[ephemeralPublicBytes:])
	if err != nil {
		return domain.ThreadKey{}, err
	}
	defer memzero.Zero(keyBytes)
	return ImportThreadKeyRaw(keyBytes)
}

func wrapUnderSecret(shared, keyBytes []byte) ([]byte, error) {
	kek, err := deriveWrappingKey(shared)
	if err != nil {
		return nil, err
	}
	defer memzero.Zero(kek)

	wrapper, err := kwp.NewKWP(kek)
	if err != nil {
		return nil, fmt.Errorf("init key wrap: %w", err)
	}
	wrapped, err := wrapper.Wrap(keyBytes)
	if err != nil {
		return nil, fmt.Errorf("wrap thread key: %w", err)
	}
	return wrapped, nil
}

func unwrapUnderSecret(shared, wrapped []byte) ([]byte, error) {
	kek, err := deriveWrappingKey(shared)
	if err != nil {
		return nil, err
	}
	defer memzero.Zero(kek)

	unwrapper, err := kwp.NewKWP(kek)
	if err != nil {
		return nil, fmt.Errorf("init key unwrap: %w", err)
	}
	keyBytes, err := unwrapper.Unwrap(wrapped)
	if err != nil {
		return nil, domain.DecryptionError("envelope integrity check failed")
	}
	return keyBytes, nil
}

func deriveWrappingKey(shared []byte) ([]byte, error) {
	kek := make([]byte, wrappingKeyBytes)
	reader := hkdf.New(sha256.New, shared, nil, []byte(wrapInfo))
	if _, err := io.ReadFull(reader, kek); err != nil {
		return nil, fmt.Errorf("derive wrapping key: %w", err)
	}
	return kek, nil
}
