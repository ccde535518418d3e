package session

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"lenslock/internal/crypto"
	"lenslock/internal/domain"
	"lenslock/internal/services/message"
)

// Session is the explicit per-user E2EE state machine. A zero Session is
// not usable; construct with New.
type Session struct {
	userID   domain.UserID
	identity domain.IdentityService
	messages domain.MessageService
	log      zerolog.Logger

	mu        sync.Mutex
	pair      domain.IdentityKeyPair
	ready     atomic.Bool
	readyCh   chan struct{}
	closed    chan struct{}
	closeOnce sync.Once
}

// New returns an uninitialised session for userID. Call Init before any
// thread operation, or rely on operations waiting (context-bounded) for
// an Init running elsewhere.
func New(
	userID domain.UserID,
	identity domain.IdentityService,
	messages domain.MessageService,
	log zerolog.Logger,
) *Session {
	return &Session{
		userID:   userID,
		identity: identity,
		messages: messages,
		log:      log,
		readyCh:  make(chan struct{}),
		closed:   make(chan struct{}),
	}
}

// Init resolves the user's identity and marks the session ready. A
// failure leaves the session non-ready and retryable; only one
// resolution runs at a time.
func (s *Session) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ready.Load() {
		return nil
	}
	select {
	case <-s.closed:
		return domain.KeyUnavailableError("session is torn down")
	default:
	}

	pair, err := s.identity.Resolve(ctx, s.userID)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", s.userID.String()).
			Msg("identity resolution failed; E2EE temporarily unavailable")
		return err
	}
	s.pair = pair
	s.ready.Store(true)
	close(s.readyCh)
	return nil
}

// Ready reports whether identity resolution completed.
func (s *Session) Ready() bool { return s.ready.Load() }

// Teardown releases the session. In-flight resolutions are abandoned
// without corrupting the store; store writes are atomic.
func (s *Session) Teardown() {
	s.closeOnce.Do(func() { close(s.closed) })
}

// UserID returns the session's user id.
func (s *Session) UserID() domain.UserID { return s.userID }

// Fingerprint returns a short fingerprint of the identity public key.
func (s *Session) Fingerprint() (domain.Fingerprint, error) {
	if !s.ready.Load() {
		return "", domain.KeyUnavailableError("identity not ready")
	}
	return domain.Fingerprint(crypto.Fingerprint(s.pair.Public.Slice())), nil
}

// EncryptForThread encrypts plaintext for a thread, minting and wrapping
// a fresh key for every recipient when none exists. Sending before the
// session is ready fails with a key-unavailable error so callers queue
// or disable sending rather than ever posting plaintext.
func (s *Session) EncryptForThread(
	ctx context.Context,
	threadID domain.ThreadID,
	plaintext string,
	recipients []domain.RecipientKey,
) (domain.EncryptedPayload, error) {
	if !s.awaitReady(ctx) {
		return domain.EncryptedPayload{}, domain.KeyUnavailableError("identity not ready")
	}
	return s.messages.EncryptForThread(ctx, s.userID, s.pair, threadID, plaintext, recipients)
}

// DecryptForThread decrypts ciphertext for display. It returns the
// plaintext or a degradation sentinel; it never returns an error and
// never fabricates plaintext.
func (s *Session) DecryptForThread(
	ctx context.Context,
	threadID domain.ThreadID,
	ciphertext string,
	supplied *domain.ThreadKeyEnvelope,
) string {
	if !s.awaitReady(ctx) {
		return message.PlaceholderEncrypted
	}
	return s.messages.DecryptForThread(ctx, s.userID, s.pair, threadID, ciphertext, supplied)
}

// Send encrypts and posts a message through the directory.
func (s *Session) Send(
	ctx context.Context,
	threadID domain.ThreadID,
	plaintext string,
	recipients []domain.RecipientKey,
) error {
	if !s.awaitReady(ctx) {
		return domain.KeyUnavailableError("identity not ready")
	}
	return s.messages.Send(ctx, s.userID, s.pair, threadID, plaintext, recipients)
}

// Receive fetches and decrypts stored messages for a thread.
func (s *Session) Receive(
	ctx context.Context,
	threadID domain.ThreadID,
	limit int,
) ([]domain.DecryptedMessage, error) {
	if !s.awaitReady(ctx) {
		return nil, domain.KeyUnavailableError("identity not ready")
	}
	return s.messages.Receive(ctx, s.userID, s.pair, threadID, limit)
}

// awaitReady blocks until identity resolution completes, the session is
// torn down, or ctx expires. Callers bound the wait through ctx.
func (s *Session) awaitReady(ctx context.Context) bool {
	if s.ready.Load() {
		return true
	}
	select {
	case <-s.readyCh:
		return true
	case <-s.closed:
		return false
	case <-ctx.Done():
		return false
	}
}
