package types

// P256Public is an uncompressed NIST P-256 point (0x04 || X || Y).
type P256Public [65]byte

// Slice returns the key as a []byte.
func (p P256Public) Slice() []byte { return p[:] }

// P256Private is a NIST P-256 scalar together with its export capability.
//
// Extractable is true only on freshly generated keys, so the private half
// can be serialised once for the server-side recovery backup. Keys loaded
// from the store or imported from a backup come back non-extractable and
// are usable for key agreement only.
type P256Private struct {
	D           [32]byte `json:"d"`
	Extractable bool     `json:"-"`
}

// Slice returns the scalar as a []byte.
func (k P256Private) Slice() []byte { return k.D[:] }

// IdentityKeyPair holds a user's long-term key-agreement keys.
type IdentityKeyPair struct {
	Public  P256Public
	Private P256Private
}

// ThreadKey is the raw 256-bit content-encryption key shared by all
// participants of one thread.
type ThreadKey [32]byte

// Slice returns the key as a []byte.
func (k ThreadKey) Slice() []byte { return k[:] }
