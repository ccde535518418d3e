package threadkey

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"lenslock/internal/crypto"
	"lenslock/internal/domain"
)

// Service resolves and mints thread keys using the local store and the
// directory collaborator.
type Service struct {
	store domain.KeyStore
	dir   domain.DirectoryClient
	log   zerolog.Logger
	group singleflight.Group
}

// New returns a thread-key service backed by the given store and directory.
func New(store domain.KeyStore, dir domain.DirectoryClient, log zerolog.Logger) *Service {
	return &Service{store: store, dir: dir, log: log}
}

type resolution struct {
	key   domain.ThreadKey
	found bool
}

// Resolve looks a thread key up without ever creating one: local store,
// then the supplied envelope, then the directory's envelopes for this
// user. found=false with a nil error means no key is resolvable yet and
// the caller should display a placeholder.
func (s *Service) Resolve(
	ctx context.Context,
	threadID domain.ThreadID,
	selfUserID domain.UserID,
	identity domain.IdentityKeyPair,
	supplied *domain.ThreadKeyEnvelope,
) (domain.ThreadKey, bool, error) {
	v, err, _ := s.group.Do("resolve:"+threadID.String(), func() (any, error) {
		key, found, err := s.resolve(ctx, threadID, selfUserID, identity, supplied)
		if err != nil {
			return nil, err
		}
		return resolution{key: key, found: found}, nil
	})
	if err != nil {
		return domain.ThreadKey{}, false, err
	}
	res := v.(resolution)
	return res.key, res.found, nil
}

func (s *Service) resolve(
	ctx context.Context,
	threadID domain.ThreadID,
	selfUserID domain.UserID,
	identity domain.IdentityKeyPair,
	supplied *domain.ThreadKeyEnvelope,
) (domain.ThreadKey, bool, error) {
	// 1) Local store.
	key, ok, err := s.store.GetThreadKey(threadID)
	if err != nil {
		return domain.ThreadKey{}, false, err
	}
	if ok {
		return key, true, nil
	}

	// 2) Envelope attached to the incoming message, if any.
	if supplied != nil {
		key, err := s.unwrapAndPersist(threadID, *supplied, identity)
		if err != nil {
			return domain.ThreadKey{}, false, err
		}
		return key, true, nil
	}

	// 3) Envelopes stored on the directory.
	envelopes, err := s.dir.FetchThreadEnvelopes(ctx, threadID)
	if err != nil {
		return domain.ThreadKey{}, false, domain.DirectoryError(
			fmt.Sprintf("fetch envelopes for thread %s", threadID), err)
	}
	for _, env := range envelopes {
		if env.RecipientUserID != selfUserID {
			continue
		}
		key, err := s.unwrapAndPersist(threadID, env.Envelope, identity)
		if err != nil {
			return domain.ThreadKey{}, false, err
		}
		return key, true, nil
	}

	// Nothing addressed to us: the message cannot be decrypted yet.
	return domain.ThreadKey{}, false, nil
}

// GenerateIfAbsent mints a fresh thread key wrapped for every recipient.
// It re-checks the store inside the coalesced section, so a racing
// resolution that already persisted a key wins and no envelopes are
// produced.
func (s *Service) GenerateIfAbsent(
	ctx context.Context,
	threadID domain.ThreadID,
	recipients []domain.RecipientKey,
) (domain.ThreadKey, []domain.RecipientEnvelope, error) {
	type generated struct {
		key       domain.ThreadKey
		envelopes []domain.RecipientEnvelope
	}
	v, err, _ := s.group.Do("generate:"+threadID.String(), func() (any, error) {
		key, ok, err := s.store.GetThreadKey(threadID)
		if err != nil {
			return nil, err
		}
		if ok {
			return generated{key: key}, nil
		}

		key, err = crypto.GenerateThreadKey()
		if err != nil {
			return nil, err
		}
		envelopes := make([]domain.RecipientEnvelope, 0, len(recipients))
		for _, recipient := range recipients {
			pub, err := crypto.ImportPublicKeyJWK(recipient.PublicKey)
			if err != nil {
				return nil, fmt.Errorf("recipient %s: %w", recipient.UserID, err)
			}
			envelope, err := crypto.WrapThreadKeyForRecipient(key, pub)
			if err != nil {
				return nil, fmt.Errorf("wrap for %s: %w", recipient.UserID, err)
			}
			envelopes = append(envelopes, domain.RecipientEnvelope{
				RecipientUserID: recipient.UserID,
				Envelope:        envelope,
			})
		}

		// Persist only after every wrap succeeded; the store write itself
		// is atomic, so no partial state is ever observable.
		if err := s.store.PutThreadKey(threadID, key); err != nil {
			return nil, err
		}
		s.log.Debug().Str("thread_id", threadID.String()).
			Int("recipients", len(envelopes)).
			Msg("minted thread key")
		return generated{key: key, envelopes: envelopes}, nil
	})
	if err != nil {
		return domain.ThreadKey{}, nil, err
	}
	gen := v.(generated)
	return gen.key, gen.envelopes, nil
}

func (s *Service) unwrapAndPersist(
	threadID domain.ThreadID,
	envelope domain.ThreadKeyEnvelope,
	identity domain.IdentityKeyPair,
) (domain.ThreadKey, error) {
	key, err := crypto.UnwrapThreadKey(envelope, identity.Private)
	if err != nil {
		return domain.ThreadKey{}, err
	}
	if err := s.store.PutThreadKey(threadID, key); err != nil {
		return domain.ThreadKey{}, err
	}
	s.log.Debug().Str("thread_id", threadID.String()).Msg("unwrapped thread key")
	return key, nil
}

// Compile-time assertion that Service implements domain.ThreadKeyService.
var _ domain.ThreadKeyService = (*Service)(nil)
