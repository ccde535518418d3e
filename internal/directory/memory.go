package directory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"lenslock/internal/domain"
)

type memoryIdentity struct {
	publicKey domain.JWK
	backup    *domain.JWK
	registers int
}

// Memory is an in-process directory used by tests and local wiring. It
// keeps the same semantics as the HTTP directory server: envelopes are
// first-write-wins per recipient, and message ids and timestamps are
// assigned on store.
type Memory struct {
	mu         sync.RWMutex
	identities map[domain.UserID]*memoryIdentity
	recipients map[domain.ThreadID][]domain.RecipientKey
	envelopes  map[domain.ThreadID][]domain.RecipientEnvelope
	messages   map[domain.ThreadID][]domain.EncryptedMessage
}

// NewMemory returns an empty in-process directory.
func NewMemory() *Memory {
	return &Memory{
		identities: make(map[domain.UserID]*memoryIdentity),
		recipients: make(map[domain.ThreadID][]domain.RecipientKey),
		envelopes:  make(map[domain.ThreadID][]domain.RecipientEnvelope),
		messages:   make(map[domain.ThreadID][]domain.EncryptedMessage),
	}
}

func (m *Memory) RegisterIdentity(
	_ context.Context,
	userID domain.UserID,
	publicKey domain.JWK,
	privateKeyBackup *domain.JWK,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.identities[userID]
	if !ok {
		rec = &memoryIdentity{}
		m.identities[userID] = rec
	}
	rec.publicKey = publicKey
	rec.backup = privateKeyBackup
	rec.registers++
	return nil
}

func (m *Memory) FetchIdentityBackup(
	_ context.Context,
	userID domain.UserID,
) (*domain.JWK, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.identities[userID]
	if !ok || rec.backup == nil {
		return nil, nil
	}
	backup := *rec.backup
	return &backup, nil
}

func (m *Memory) FetchThreadEnvelopes(
	_ context.Context,
	threadID domain.ThreadID,
) ([]domain.RecipientEnvelope, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]domain.RecipientEnvelope(nil), m.envelopes[threadID]...), nil
}

func (m *Memory) PushThreadEnvelopes(
	_ context.Context,
	threadID domain.ThreadID,
	envelopes []domain.RecipientEnvelope,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addEnvelopesLocked(threadID, envelopes)
	return nil
}

func (m *Memory) FetchThreadRecipients(
	_ context.Context,
	threadID domain.ThreadID,
) ([]domain.RecipientKey, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if keys, ok := m.recipients[threadID]; ok {
		return append([]domain.RecipientKey(nil), keys...), nil
	}
	// No explicit membership: every registered identity participates.
	out := make([]domain.RecipientKey, 0, len(m.identities))
	for userID, rec := range m.identities {
		out = append(out, domain.RecipientKey{UserID: userID, PublicKey: rec.publicKey})
	}
	return out, nil
}

func (m *Memory) SendMessage(
	_ context.Context,
	threadID domain.ThreadID,
	senderUserID domain.UserID,
	ciphertext string,
	freshEnvelopes []domain.RecipientEnvelope,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addEnvelopesLocked(threadID, freshEnvelopes)
	m.messages[threadID] = append(m.messages[threadID], domain.EncryptedMessage{
		ID:           uuid.NewString(),
		ThreadID:     threadID,
		SenderUserID: senderUserID,
		Ciphertext:   ciphertext,
		Timestamp:    time.Now().Unix(),
	})
	return nil
}

func (m *Memory) FetchMessages(
	_ context.Context,
	threadID domain.ThreadID,
	limit int,
) ([]domain.EncryptedMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	msgs := m.messages[threadID]
	if limit > 0 && limit < len(msgs) {
		msgs = msgs[:limit]
	}
	return append([]domain.EncryptedMessage(nil), msgs...), nil
}

// SetThreadRecipients pins a thread's membership instead of defaulting
// to all registered identities.
func (m *Memory) SetThreadRecipients(threadID domain.ThreadID, keys []domain.RecipientKey) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recipients[threadID] = append([]domain.RecipientKey(nil), keys...)
}

// Registrations reports how many times userID registered an identity.
func (m *Memory) Registrations(userID domain.UserID) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.identities[userID]
	if !ok {
		return 0
	}
	return rec.registers
}

// RegisteredPublicKey returns the public key userID registered, if any.
func (m *Memory) RegisteredPublicKey(userID domain.UserID) (domain.JWK, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.identities[userID]
	if !ok {
		return domain.JWK{}, false
	}
	return rec.publicKey, true
}

func (m *Memory) addEnvelopesLocked(threadID domain.ThreadID, envs []domain.RecipientEnvelope) {
	have := make(map[domain.UserID]bool, len(m.envelopes[threadID]))
	for _, e := range m.envelopes[threadID] {
		have[e.RecipientUserID] = true
	}
	for _, e := range envs {
		if have[e.RecipientUserID] {
			continue
		}
		m.envelopes[threadID] = append(m.envelopes[threadID], e)
		have[e.RecipientUserID] = true
	}
}

// Compile-time assertion that Memory implements domain.DirectoryClient.
var _ domain.DirectoryClient = (*Memory)(nil)
