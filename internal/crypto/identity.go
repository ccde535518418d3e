package crypto

import (
	"crypto/ecdh"
	"crypto/rand"
	"fmt"

	"lenslock/internal/domain"
)

// GenerateIdentityKeyPair returns a fresh P-256 key pair suitable for key
// agreement. The private half is marked extractable so it can be exported
// once for the server-side recovery backup; persistence is the caller's
// responsibility.
func GenerateIdentityKeyPair() (domain.IdentityKeyPair, error) {
	priv, err := ecdh.P256().GenerateKey(rand.Reader)
	if err != nil {
		return domain.IdentityKeyPair{}, fmt.Errorf("generate identity key: %w", err)
	}

	var pair domain.IdentityKeyPair
	copy(pair.Public[:], priv.PublicKey().Bytes())
	copy(pair.Private.D[:], priv.Bytes())
	pair.Private.Extractable = true
	return pair, nil
}

// PublicKeyOf derives the public half from a private identity key.
func PublicKeyOf(priv domain.P256Private) (domain.P256Public, error) {
	key, err := ecdh.P256().NewPrivateKey(priv.Slice())
	if err != nil {
		return domain.P256Public{}, domain.KeyFormatErrorf("identity private key: %v", err)
	}
	var pub domain.P256Public
	copy(pub[:], key.PublicKey().Bytes())
	return pub, nil
}
