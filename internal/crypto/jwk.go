package crypto

import (
	"crypto/ecdh"
	"encoding/base64"

	"lenslock/internal/domain"
)

const (
	jwkKty = "EC"
	jwkCrv = "P-256"

	coordinateBytes = 32
)

// ExportPublicKeyJWK serialises a public identity key to its JWK form.
func ExportPublicKeyJWK(pub domain.P256Public) (domain.JWK, error) {
	if pub[0] != 0x04 {
		return domain.JWK{}, domain.KeyFormatError("public key is not an uncompressed point")
	}
	return domain.JWK{
		Kty: jwkKty,
		Crv: jwkCrv,
		X:   b64url(pub[1 : 1+coordinateBytes]),
		Y:   b64url(pub[1+coordinateBytes:]),
	}, nil
}

// ExportPrivateKeyJWK serialises a private identity key to its JWK form.
// Only freshly generated keys are extractable; once a key has been
// persisted and reloaded, export fails with a capability error.
func ExportPrivateKeyJWK(priv domain.P256Private) (domain.JWK, error) {
	if !priv.Extractable {
		return domain.JWK{}, domain.KeyPolicyError("private key is not extractable")
	}
	pub, err := PublicKeyOf(priv)
	if err != nil {
		return domain.JWK{}, err
	}
	jwk, err := ExportPublicKeyJWK(pub)
	if err != nil {
		return domain.JWK{}, err
	}
	jwk.D = b64url(priv.Slice())
	return jwk, nil
}

// ImportPublicKeyJWK deserialises and validates a public identity key.
func ImportPublicKeyJWK(jwk domain.JWK) (domain.P256Public, error) {
	if err := checkJWKHeader(jwk); err != nil {
		return domain.P256Public{}, err
	}
	x, err := coordinate(jwk.X, "x")
	if err != nil {
		return domain.P256Public{}, err
	}
	y, err := coordinate(jwk.Y, "y")
	if err != nil {
		return domain.P256Public{}, err
	}

	point := make([]byte, 0, 1+2*coordinateBytes)
	point = append(point, 0x04)
	point = append(point, x...)
	point = append(point, y...)
	if _, err := ecdh.P256().NewPublicKey(point); err != nil {
		return domain.P256Public{}, domain.KeyFormatErrorf("public key not on curve: %v", err)
	}

	var pub domain.P256Public
	copy(pub[:], point)
	return pub, nil
}

// ImportPrivateKeyJWK deserialises and validates a private identity key.
// Imported keys are non-extractable and restricted to key agreement; they
// can never be used to produce further exportable copies.
func ImportPrivateKeyJWK(jwk domain.JWK) (domain.P256Private, error) {
	if err := checkJWKHeader(jwk); err != nil {
		return domain.P256Private{}, err
	}
	if !jwk.IsPrivate() {
		return domain.P256Private{}, domain.KeyFormatError("jwk has no private scalar")
	}
	d, err := coordinate(jwk.D, "d")
	if err != nil {
		return domain.P256Private{}, err
	}
	if _, err := ecdh.P256().NewPrivateKey(d); err != nil {
		return domain.P256Private{}, domain.KeyFormatErrorf("private scalar out of range: %v", err)
	}

	var priv domain.P256Private
	copy(priv.D[:], d)
	priv.Extractable = false
	return priv, nil
}

func checkJWKHeader(jwk domain.JWK) error {
	if jwk.Kty != jwkKty {
		return domain.KeyFormatErrorf("unexpected key type %q, want %q", jwk.Kty, jwkKty)
	}
	if jwk.Crv != jwkCrv {
		return domain.KeyFormatErrorf("unexpected curve %q, want %q", jwk.Crv, jwkCrv)
	}
	return nil
}

func coordinate(s, name string) ([]byte, error) {
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, domain.KeyFormatErrorf("jwk field %q is not valid base64url", name)
	}
	if len(b) != coordinateBytes {
		return nil, domain.KeyFormatErrorf("jwk field %q: want %d bytes, got %d", name, coordinateBytes, len(b))
	}
	return b, nil
}

func b64url(b []byte) string { return base64.RawURLEncoding.EncodeToString(b) }
