package threadkey_test

import (
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"lenslock/internal/crypto"
	"lenslock/internal/directory"
	"lenslock/internal/domain"
	"lenslock/internal/services/threadkey"
	"lenslock/internal/store"
)

func newService(t *testing.T, dir domain.DirectoryClient) (*threadkey.Service, domain.KeyStore) {
	t.Helper()
	ks := store.NewFileStore(t.TempDir(), "pass")
	return threadkey.New(ks, dir, zerolog.Nop()), ks
}

func makeIdentity(t *testing.T) domain.IdentityKeyPair {
	t.Helper()
	pair, err := crypto.GenerateIdentityKeyPair()
	if err != nil {
		t.Fatalf("GenerateIdentityKeyPair: %v", err)
	}
	return pair
}

func recipientKey(t *testing.T, userID domain.UserID, pair domain.IdentityKeyPair) domain.RecipientKey {
	t.Helper()
	jwk, err := crypto.ExportPublicKeyJWK(pair.Public)
	if err != nil {
		t.Fatalf("ExportPublicKeyJWK: %v", err)
	}
	return domain.RecipientKey{UserID: userID, PublicKey: jwk}
}

func TestGenerateIfAbsent_WrapsForEveryRecipient(t *testing.T) {
	svc, ks := newService(t, directory.NewMemory())

	alice := makeIdentity(t)
	bob := makeIdentity(t)
	recipients := []domain.RecipientKey{
		recipientKey(t, "alice", alice),
		recipientKey(t, "bob", bob),
	}

	key, envelopes, err := svc.GenerateIfAbsent(context.Background(), "thread-1", recipients)
	if err != nil {
		t.Fatalf("GenerateIfAbsent: %v", err)
	}
	if len(envelopes) != 2 {
		t.Fatalf("want 2 envelopes, got %d", len(envelopes))
	}

	// Each recipient, the sender included, can open their envelope.
	for i, pair := range []domain.IdentityKeyPair{alice, bob} {
		got, err := crypto.UnwrapThreadKey(envelopes[i].Envelope, pair.Private)
		if err != nil {
			t.Fatalf("unwrap for %s: %v", envelopes[i].RecipientUserID, err)
		}
		if got != key {
			t.Fatalf("envelope for %s holds a different key", envelopes[i].RecipientUserID)
		}
	}

	// The minted key is persisted.
	if _, ok, err := ks.GetThreadKey("thread-1"); err != nil || !ok {
		t.Fatalf("thread key not persisted: ok=%v err=%v", ok, err)
	}
}

func TestGenerateIfAbsent_ExistingKeyWins(t *testing.T) {
	svc, ks := newService(t, directory.NewMemory())
	alice := makeIdentity(t)
	recipients := []domain.RecipientKey{recipientKey(t, "alice", alice)}

	existing := domain.ThreadKey{42}
	if err := ks.PutThreadKey("thread-1", existing); err != nil {
		t.Fatalf("put thread key: %v", err)
	}

	key, envelopes, err := svc.GenerateIfAbsent(context.Background(), "thread-1", recipients)
	if err != nil {
		t.Fatalf("GenerateIfAbsent: %v", err)
	}
	if key != existing {
		t.Fatal("existing key must win over generation")
	}
	if envelopes != nil {
		t.Fatal("no envelopes may be minted when a key exists")
	}
}

func TestGenerateIfAbsent_Concurrent_OneKey(t *testing.T) {
	svc, _ := newService(t, directory.NewMemory())
	alice := makeIdentity(t)
	recipients := []domain.RecipientKey{recipientKey(t, "alice", alice)}

	const n = 16
	var wg sync.WaitGroup
	keys := make([]domain.ThreadKey, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			keys[i], _, errs[i] = svc.GenerateIfAbsent(context.Background(), "thread-1", recipients)
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		if errs[i] != nil {
			t.Fatalf("GenerateIfAbsent %d: %v", i, errs[i])
		}
		if keys[i] != keys[0] {
			t.Fatal("concurrent generation produced different keys")
		}
	}
}

func TestGenerateIfAbsent_BadRecipientKey_NothingPersisted(t *testing.T) {
	svc, ks := newService(t, directory.NewMemory())
	alice := makeIdentity(t)
	recipients := []domain.RecipientKey{
		recipientKey(t, "alice", alice),
		{UserID: "mallory", PublicKey: domain.JWK{Kty: "EC", Crv: "P-256", X: "AAAA", Y: "AAAA"}},
	}

	if _, _, err := svc.GenerateIfAbsent(context.Background(), "thread-1", recipients); !domain.IsKind(err, domain.KindKeyFormat) {
		t.Fatalf("want key-format error, got %v", err)
	}
	if _, ok, err := ks.GetThreadKey("thread-1"); err != nil || ok {
		t.Fatalf("partial generation persisted a key: ok=%v err=%v", ok, err)
	}
}

func TestResolve_SuppliedEnvelope_Persists(t *testing.T) {
	svc, ks := newService(t, directory.NewMemory())
	bob := makeIdentity(t)

	key, err := crypto.GenerateThreadKey()
	if err != nil {
		t.Fatalf("GenerateThreadKey: %v", err)
	}
	env, err := crypto.WrapThreadKeyForRecipient(key, bob.Public)
	if err != nil {
		t.Fatalf("WrapThreadKeyForRecipient: %v", err)
	}

	got, found, err := svc.Resolve(context.Background(), "thread-1", "bob", bob, &env)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !found || got != key {
		t.Fatal("supplied envelope did not resolve the key")
	}
	if _, ok, err := ks.GetThreadKey("thread-1"); err != nil || !ok {
		t.Fatalf("unwrapped key not persisted: ok=%v err=%v", ok, err)
	}
}

func TestResolve_DirectoryEnvelope_OwnOnly(t *testing.T) {
	dir := directory.NewMemory()
	svc, _ := newService(t, dir)
	alice := makeIdentity(t)
	bob := makeIdentity(t)

	key, _ := crypto.GenerateThreadKey()
	aliceEnv, err := crypto.WrapThreadKeyForRecipient(key, alice.Public)
	if err != nil {
		t.Fatalf("WrapThreadKeyForRecipient: %v", err)
	}
	bobEnv, err := crypto.WrapThreadKeyForRecipient(key, bob.Public)
	if err != nil {
		t.Fatalf("WrapThreadKeyForRecipient: %v", err)
	}
	err = dir.PushThreadEnvelopes(context.Background(), "thread-1", []domain.RecipientEnvelope{
		{RecipientUserID: "alice", Envelope: aliceEnv},
		{RecipientUserID: "bob", Envelope: bobEnv},
	})
	if err != nil {
		t.Fatalf("PushThreadEnvelopes: %v", err)
	}

	got, found, err := svc.Resolve(context.Background(), "thread-1", "bob", bob, nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !found || got != key {
		t.Fatal("directory envelope did not resolve the key")
	}
}

func TestResolve_NoEnvelopeForUser_NotFound(t *testing.T) {
	dir := directory.NewMemory()
	svc, _ := newService(t, dir)
	alice := makeIdentity(t)
	carol := makeIdentity(t)

	key, _ := crypto.GenerateThreadKey()
	aliceEnv, err := crypto.WrapThreadKeyForRecipient(key, alice.Public)
	if err != nil {
		t.Fatalf("WrapThreadKeyForRecipient: %v", err)
	}
	err = dir.PushThreadEnvelopes(context.Background(), "thread-1", []domain.RecipientEnvelope{
		{RecipientUserID: "alice", Envelope: aliceEnv},
	})
	if err != nil {
		t.Fatalf("PushThreadEnvelopes: %v", err)
	}

	_, found, err := svc.Resolve(context.Background(), "thread-1", "carol", carol, nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if found {
		t.Fatal("carol must not resolve a key wrapped for alice")
	}
}

func TestResolve_WrongRecipientEnvelope_DecryptionError(t *testing.T) {
	svc, _ := newService(t, directory.NewMemory())
	alice := makeIdentity(t)
	bob := makeIdentity(t)

	key, _ := crypto.GenerateThreadKey()
	aliceEnv, err := crypto.WrapThreadKeyForRecipient(key, alice.Public)
	if err != nil {
		t.Fatalf("WrapThreadKeyForRecipient: %v", err)
	}

	// Bob is handed an envelope addressed to Alice.
	_, _, err = svc.Resolve(context.Background(), "thread-1", "bob", bob, &aliceEnv)
	if !domain.IsKind(err, domain.KindDecryption) {
		t.Fatalf("want decryption error, got %v", err)
	}
}
