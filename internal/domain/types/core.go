package types

// UserID identifies a marketplace user.
type UserID string

// String returns the string form of the user id.
func (u UserID) String() string { return string(u) }

// ThreadID identifies a conversation thread.
type ThreadID string

// String returns the string form of the thread id.
func (t ThreadID) String() string { return string(t) }

// Fingerprint is a short identifier for public keys presented to users.
type Fingerprint string

// String returns the string form of the fingerprint.
func (f Fingerprint) String() string { return string(f) }
