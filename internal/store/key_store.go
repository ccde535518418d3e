package store

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync"

	"lenslock/internal/domain"
)

const (
	identityKeysFile = "identity_keys.enc"
	threadKeysFile   = "thread_keys.enc"
)

// FileStore is the durable local key cache rooted at a directory.
type FileStore struct {
	dir        string
	passphrase string
	mu         sync.Mutex
}

// NewFileStore returns a FileStore rooted at dir, sealing its contents
// under passphrase.
func NewFileStore(dir, passphrase string) *FileStore {
	return &FileStore{dir: dir, passphrase: passphrase}
}

// PutIdentity stores or replaces the identity private key for userID.
func (s *FileStore) PutIdentity(userID domain.UserID, priv domain.P256Private) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := map[domain.UserID][32]byte{}
	if err := s.readSealed(identityKeysFile, &m); err != nil {
		return err
	}
	m[userID] = priv.D
	return s.writeSealed(identityKeysFile, m)
}

// GetIdentity retrieves the identity private key for userID. Loaded keys
// are non-extractable. Absence is reported via ok=false, never an error.
func (s *FileStore) GetIdentity(userID domain.UserID) (domain.P256Private, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := map[domain.UserID][32]byte{}
	if err := s.readSealed(identityKeysFile, &m); err != nil {
		return domain.P256Private{}, false, err
	}
	d, ok := m[userID]
	if !ok {
		return domain.P256Private{}, false, nil
	}
	return domain.P256Private{D: d, Extractable: false}, true, nil
}

// PutThreadKey stores or replaces the thread key for threadID.
func (s *FileStore) PutThreadKey(threadID domain.ThreadID, key domain.ThreadKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := map[domain.ThreadID]domain.ThreadKey{}
	if err := s.readSealed(threadKeysFile, &m); err != nil {
		return err
	}
	m[threadID] = key
	return s.writeSealed(threadKeysFile, m)
}

// GetThreadKey retrieves the thread key for threadID.
func (s *FileStore) GetThreadKey(threadID domain.ThreadID) (domain.ThreadKey, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := map[domain.ThreadID]domain.ThreadKey{}
	if err := s.readSealed(threadKeysFile, &m); err != nil {
		return domain.ThreadKey{}, false, err
	}
	key, ok := m[threadID]
	return key, ok, nil
}

// readSealed best-effort reads a sealed namespace file into out; a
// missing file leaves out empty.
func (s *FileStore) readSealed(name string, out any) error {
	b, err := readFile(filepath.Join(s.dir, name))
	if err != nil {
		return err
	}
	if b == nil { // file didn't exist yet
		return nil
	}
	pt, err := open(s.passphrase, b)
	if err != nil {
		return fmt.Errorf("open %s: %w", name, err)
	}
	return json.Unmarshal(pt, out)
}

func (s *FileStore) writeSealed(name string, v any) error {
	pt, err := json.Marshal(v)
	if err != nil {
		return err
	}
	sealed, err := seal(s.passphrase, pt)
	if err != nil {
		return err
	}
	return writeFile(filepath.Join(s.dir, name), sealed, 0o600)
}

// Compile-time assertion that FileStore implements domain.KeyStore.
var _ domain.KeyStore = (*FileStore)(nil)
