package message

import (
	"context"

	"github.com/rs/zerolog"

	"lenslock/internal/crypto"
	"lenslock/internal/domain"
)

// Degradation sentinels shown in place of plaintext. The UI layer
// renders them verbatim; it never sees an error or a stack trace.
const (
	PlaceholderEncrypted        = "[encrypted]"
	PlaceholderDecryptionFailed = "[decryption failed]"
)

// Service encrypts and decrypts messages on top of resolved thread keys.
type Service struct {
	threads domain.ThreadKeyService
	dir     domain.DirectoryClient
	log     zerolog.Logger
}

// New constructs a message service with the given thread-key service and
// directory client.
func New(threads domain.ThreadKeyService, dir domain.DirectoryClient, log zerolog.Logger) *Service {
	return &Service{threads: threads, dir: dir, log: log}
}

// EncryptForThread encrypts plaintext for a thread. When no key exists
// anywhere, a fresh one is minted and the returned payload carries one
// wrapped envelope per recipient (including the sender) for the caller
// to push alongside the message.
func (s *Service) EncryptForThread(
	ctx context.Context,
	userID domain.UserID,
	identity domain.IdentityKeyPair,
	threadID domain.ThreadID,
	plaintext string,
	recipients []domain.RecipientKey,
) (domain.EncryptedPayload, error) {
	key, found, err := s.threads.Resolve(ctx, threadID, userID, identity, nil)
	if err != nil {
		return domain.EncryptedPayload{}, err
	}

	var fresh []domain.RecipientEnvelope
	if !found {
		key, fresh, err = s.threads.GenerateIfAbsent(ctx, threadID, recipients)
		if err != nil {
			return domain.EncryptedPayload{}, err
		}
	}

	ciphertext, err := crypto.EncryptMessage(key, plaintext)
	if err != nil {
		return domain.EncryptedPayload{}, err
	}
	return domain.EncryptedPayload{Ciphertext: ciphertext, FreshEnvelopes: fresh}, nil
}

// DecryptForThread decrypts a ciphertext for display. It returns the
// plaintext, or a sentinel when no key is resolvable yet or when
// authentication fails. It never fabricates plaintext and never panics.
func (s *Service) DecryptForThread(
	ctx context.Context,
	userID domain.UserID,
	identity domain.IdentityKeyPair,
	threadID domain.ThreadID,
	ciphertext string,
	supplied *domain.ThreadKeyEnvelope,
) string {
	key, found, err := s.threads.Resolve(ctx, threadID, userID, identity, supplied)
	if err != nil {
		if domain.IsKind(err, domain.KindDecryption) {
			s.log.Warn().Err(err).Str("thread_id", threadID.String()).
				Msg("thread-key envelope failed to unwrap")
			return PlaceholderDecryptionFailed
		}
		s.log.Warn().Err(err).Str("thread_id", threadID.String()).
			Msg("thread-key resolution failed; showing placeholder")
		return PlaceholderEncrypted
	}
	if !found {
		return PlaceholderEncrypted
	}

	plaintext, err := crypto.DecryptMessage(key, ciphertext)
	if err != nil {
		s.log.Warn().Err(err).Str("thread_id", threadID.String()).
			Msg("message failed to decrypt")
		return PlaceholderDecryptionFailed
	}
	return plaintext
}

// Send encrypts plaintext and posts it through the directory, together
// with any envelopes minted by this call. Plaintext never reaches the
// wire.
func (s *Service) Send(
	ctx context.Context,
	userID domain.UserID,
	identity domain.IdentityKeyPair,
	threadID domain.ThreadID,
	plaintext string,
	recipients []domain.RecipientKey,
) error {
	payload, err := s.EncryptForThread(ctx, userID, identity, threadID, plaintext, recipients)
	if err != nil {
		return err
	}
	if err := s.dir.SendMessage(ctx, threadID, userID, payload.Ciphertext, payload.FreshEnvelopes); err != nil {
		return domain.DirectoryError("send message", err)
	}
	return nil
}

// Receive fetches stored ciphertexts for a thread and decrypts each for
// display, degrading per message rather than failing the batch.
func (s *Service) Receive(
	ctx context.Context,
	userID domain.UserID,
	identity domain.IdentityKeyPair,
	threadID domain.ThreadID,
	limit int,
) ([]domain.DecryptedMessage, error) {
	messages, err := s.dir.FetchMessages(ctx, threadID, limit)
	if err != nil {
		return nil, domain.DirectoryError("fetch messages", err)
	}

	out := make([]domain.DecryptedMessage, 0, len(messages))
	for _, m := range messages {
		out = append(out, domain.DecryptedMessage{
			SenderUserID: m.SenderUserID,
			Text:         s.DecryptForThread(ctx, userID, identity, threadID, m.Ciphertext, nil),
			Timestamp:    m.Timestamp,
		})
	}
	return out, nil
}

// Compile-time assertion that Service implements domain.MessageService.
var _ domain.MessageService = (*Service)(nil)
