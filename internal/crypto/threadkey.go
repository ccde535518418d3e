package crypto

import (
	"crypto/rand"
	"fmt"

	"lenslock/internal/domain"
)

// GenerateThreadKey returns a fresh 256-bit content-encryption key for
// one conversation thread.
func GenerateThreadKey() (domain.ThreadKey, error) {
	var key domain.ThreadKey
	if _, err := rand.Read(key[:]); err != nil {
		return domain.ThreadKey{}, fmt.Errorf("generate thread key: %w", err)
	}
	return key, nil
}

// ExportThreadKeyRaw returns the raw 32-byte serialisation of the key.
func ExportThreadKeyRaw(key domain.ThreadKey) []byte {
	return append([]byte(nil), key[:]...)
}

// ImportThreadKeyRaw validates and deserialises raw thread-key bytes.
func ImportThreadKeyRaw(raw []byte) (domain.ThreadKey, error) {
	if len(raw) != len(domain.ThreadKey{}) {
		return domain.ThreadKey{}, domain.KeyFormatErrorf(
			"thread key: want %d bytes, got %d", len(domain.ThreadKey{}), len(raw))
	}
	var key domain.ThreadKey
	copy(key[:], raw)
	return key, nil
}
