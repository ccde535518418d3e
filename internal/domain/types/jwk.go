package types

// JWK is the portable JSON representation of a P-256 key, the format the
// directory stores and serves. Coordinates and the private scalar are
// base64url without padding. D is present only on private keys.
type JWK struct {
	Kty string `json:"kty"`
	Crv string `json:"crv"`
	X   string `json:"x"`
	Y   string `json:"y"`
	D   string `json:"d,omitempty"`
}

// IsPrivate reports whether the JWK carries a private scalar.
func (j JWK) IsPrivate() bool { return j.D != "" }
