package identity

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"lenslock/internal/crypto"
	"lenslock/internal/domain"
)

// Service resolves identity key pairs using the local store and the
// directory collaborator.
//
// The identity is a P-256 key-agreement pair. It never encrypts message
// content directly; it only derives wrapping keys for thread-key
// distribution.
type Service struct {
	store domain.KeyStore
	dir   domain.DirectoryClient
	log   zerolog.Logger
	group singleflight.Group
}

// New returns an identity service backed by the given store and directory.
func New(store domain.KeyStore, dir domain.DirectoryClient, log zerolog.Logger) *Service {
	return &Service{store: store, dir: dir, log: log}
}

// Resolve returns the identity key pair for userID, creating and
// registering one if neither the local store nor the directory backup
// has it. Concurrent calls for the same user share one resolution.
func (s *Service) Resolve(
	ctx context.Context,
	userID domain.UserID,
) (domain.IdentityKeyPair, error) {
	v, err, _ := s.group.Do(userID.String(), func() (any, error) {
		return s.resolve(ctx, userID)
	})
	if err != nil {
		return domain.IdentityKeyPair{}, err
	}
	return v.(domain.IdentityKeyPair), nil
}

func (s *Service) resolve(
	ctx context.Context,
	userID domain.UserID,
) (domain.IdentityKeyPair, error) {
	// 1) Local store.
	priv, ok, err := s.store.GetIdentity(userID)
	if err != nil {
		return domain.IdentityKeyPair{}, err
	}
	if ok {
		pub, err := crypto.PublicKeyOf(priv)
		if err != nil {
			return domain.IdentityKeyPair{}, err
		}
		return domain.IdentityKeyPair{Public: pub, Private: priv}, nil
	}

	// 2) Directory backup. Fetch or import failures fall through to
	// generation rather than aborting the whole flow.
	backup, err := s.dir.FetchIdentityBackup(ctx, userID)
	switch {
	case err != nil:
		s.log.Warn().Err(err).Str("user_id", userID.String()).
			Msg("identity backup fetch failed; generating fresh identity")
	case backup != nil:
		restored, err := crypto.ImportPrivateKeyJWK(*backup)
		if err != nil {
			s.log.Warn().Err(err).Str("user_id", userID.String()).
				Msg("identity backup unusable; generating fresh identity")
			break
		}
		if err := s.store.PutIdentity(userID, restored); err != nil {
			return domain.IdentityKeyPair{}, err
		}
		pub, err := crypto.PublicKeyOf(restored)
		if err != nil {
			return domain.IdentityKeyPair{}, err
		}
		s.log.Info().Str("user_id", userID.String()).
			Str("fingerprint", crypto.Fingerprint(pub.Slice())).
			Msg("identity restored from backup")
		return domain.IdentityKeyPair{Public: pub, Private: restored}, nil
	}

	// 3) Generate, register, persist. The registration failure is the one
	// error that must propagate: without it the directory has no public
	// key and nobody can wrap thread keys for this user.
	pair, err := crypto.GenerateIdentityKeyPair()
	if err != nil {
		return domain.IdentityKeyPair{}, err
	}
	publicJWK, err := crypto.ExportPublicKeyJWK(pair.Public)
	if err != nil {
		return domain.IdentityKeyPair{}, err
	}
	backupJWK, err := crypto.ExportPrivateKeyJWK(pair.Private)
	if err != nil {
		return domain.IdentityKeyPair{}, err
	}
	if err := s.dir.RegisterIdentity(ctx, userID, publicJWK, &backupJWK); err != nil {
		return domain.IdentityKeyPair{}, domain.DirectoryError("register identity", err)
	}
	if err := s.store.PutIdentity(userID, pair.Private); err != nil {
		return domain.IdentityKeyPair{}, err
	}

	// Once persisted, the in-memory key loses its export capability too.
	pair.Private.Extractable = false

	s.log.Info().Str("user_id", userID.String()).
		Str("fingerprint", crypto.Fingerprint(pair.Public.Slice())).
		Msg("generated and registered fresh identity")
	return pair, nil
}

// Compile-time assertion that Service implements domain.IdentityService.
var _ domain.IdentityService = (*Service)(nil)
