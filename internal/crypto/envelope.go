package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"lenslock/internal/domain"
)

// nonceBytes is the AES-GCM nonce length.
const nonceBytes = 12

// EncryptMessage seals plaintext under the thread key with AES-256-GCM.
//
// Wire format: base64(nonce(12) || ciphertext+tag). A fresh random nonce
// is drawn from a CSPRNG on every call; it is never derived or
// counter-based, since nonce reuse under one key would be a catastrophic
// confidentiality failure.
func EncryptMessage(key domain.ThreadKey, plaintext string) (string, error) {
	aead, err := contentAEAD(key)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, nonceBytes)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("draw nonce: %w", err)
	}
	sealed := aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// DecryptMessage opens a ciphertext produced by EncryptMessage. Malformed
// input or an authentication-tag mismatch fails closed with a decryption
// error; garbage plaintext is never returned.
func DecryptMessage(key domain.ThreadKey, ciphertext string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", domain.DecryptionError("ciphertext is not valid base64")
	}
	aead, err := contentAEAD(key)
	if err != nil {
		return "", err
	}
	if len(raw) < nonceBytes+aead.Overhead() {
		return "", domain.DecryptionError("ciphertext too short")
	}
	plain, err := aead.Open(nil, raw[:nonceBytes], raw[nonceBytes:], nil)
	if err != nil {
		return "", domain.DecryptionError("message authentication failed")
	}
	return string(plain), nil
}

func contentAEAD(key domain.ThreadKey) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
