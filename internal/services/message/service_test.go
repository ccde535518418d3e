package message_test

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"lenslock/internal/crypto"
	"lenslock/internal/directory"
	"lenslock/internal/domain"
	"lenslock/internal/services/message"
	"lenslock/internal/services/threadkey"
	"lenslock/internal/store"
)

type user struct {
	id   domain.UserID
	pair domain.IdentityKeyPair
	svc  *message.Service
}

// newUser gives each participant their own key store and service stack;
// only the directory is shared, exactly like separate devices.
func newUser(t *testing.T, id domain.UserID, dir domain.DirectoryClient) *user {
	t.Helper()
	pair, err := crypto.GenerateIdentityKeyPair()
	if err != nil {
		t.Fatalf("GenerateIdentityKeyPair: %v", err)
	}
	ks := store.NewFileStore(t.TempDir(), "pass")
	threads := threadkey.New(ks, dir, zerolog.Nop())
	return &user{
		id:   id,
		pair: pair,
		svc:  message.New(threads, dir, zerolog.Nop()),
	}
}

func (u *user) recipientKey(t *testing.T) domain.RecipientKey {
	t.Helper()
	jwk, err := crypto.ExportPublicKeyJWK(u.pair.Public)
	if err != nil {
		t.Fatalf("ExportPublicKeyJWK: %v", err)
	}
	return domain.RecipientKey{UserID: u.id, PublicKey: jwk}
}

func TestEncryptForThread_FirstMessageMintsEnvelopes(t *testing.T) {
	dir := directory.NewMemory()
	alice := newUser(t, "alice", dir)
	bob := newUser(t, "bob", dir)
	recipients := []domain.RecipientKey{alice.recipientKey(t), bob.recipientKey(t)}

	payload, err := alice.svc.EncryptForThread(
		context.Background(), alice.id, alice.pair, "thread-1", "hello", recipients)
	if err != nil {
		t.Fatalf("EncryptForThread: %v", err)
	}
	if len(payload.FreshEnvelopes) != 2 {
		t.Fatalf("want 2 fresh envelopes, got %d", len(payload.FreshEnvelopes))
	}
	if strings.Contains(payload.Ciphertext, "hello") {
		t.Fatal("ciphertext leaks plaintext")
	}

	// A second message reuses the key and mints nothing.
	again, err := alice.svc.EncryptForThread(
		context.Background(), alice.id, alice.pair, "thread-1", "hello again", recipients)
	if err != nil {
		t.Fatalf("EncryptForThread: %v", err)
	}
	if again.FreshEnvelopes != nil {
		t.Fatal("second message must not mint envelopes")
	}
}

func TestSendReceive_AcrossUsers(t *testing.T) {
	dir := directory.NewMemory()
	alice := newUser(t, "alice", dir)
	bob := newUser(t, "bob", dir)
	recipients := []domain.RecipientKey{alice.recipientKey(t), bob.recipientKey(t)}

	err := alice.svc.Send(
		context.Background(), alice.id, alice.pair, "thread-1", "shoot is confirmed", recipients)
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	// The directory stored ciphertext only.
	stored, err := dir.FetchMessages(context.Background(), "thread-1", 0)
	if err != nil {
		t.Fatalf("FetchMessages: %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("want 1 stored message, got %d", len(stored))
	}
	if strings.Contains(stored[0].Ciphertext, "shoot is confirmed") {
		t.Fatal("plaintext reached the directory")
	}

	// The sender reads back through their own store.
	got, err := alice.svc.Receive(context.Background(), alice.id, alice.pair, "thread-1", 0)
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if len(got) != 1 || got[0].Text != "shoot is confirmed" {
		t.Fatalf("sender readback: %+v", got)
	}

	// Bob resolves his envelope from the directory and decrypts.
	got, err = bob.svc.Receive(context.Background(), bob.id, bob.pair, "thread-1", 0)
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if len(got) != 1 || got[0].Text != "shoot is confirmed" {
		t.Fatalf("recipient readback: %+v", got)
	}
	if got[0].SenderUserID != "alice" {
		t.Fatalf("want sender alice, got %s", got[0].SenderUserID)
	}
}

func TestDecryptForThread_SuppliedEnvelope(t *testing.T) {
	dir := directory.NewMemory()
	alice := newUser(t, "alice", dir)
	bob := newUser(t, "bob", dir)
	recipients := []domain.RecipientKey{alice.recipientKey(t), bob.recipientKey(t)}

	payload, err := alice.svc.EncryptForThread(
		context.Background(), alice.id, alice.pair, "thread-1", "hi bob", recipients)
	if err != nil {
		t.Fatalf("EncryptForThread: %v", err)
	}

	var bobEnv *domain.ThreadKeyEnvelope
	for _, env := range payload.FreshEnvelopes {
		if env.RecipientUserID == bob.id {
			e := env.Envelope
			bobEnv = &e
		}
	}
	if bobEnv == nil {
		t.Fatal("no envelope minted for bob")
	}

	got := bob.svc.DecryptForThread(
		context.Background(), bob.id, bob.pair, "thread-1", payload.Ciphertext, bobEnv)
	if got != "hi bob" {
		t.Fatalf("want plaintext, got %q", got)
	}
}

func TestDecryptForThread_NoKey_ShowsEncrypted(t *testing.T) {
	dir := directory.NewMemory()
	carol := newUser(t, "carol", dir)

	got := carol.svc.DecryptForThread(
		context.Background(), carol.id, carol.pair, "thread-1", "irrelevant", nil)
	if got != message.PlaceholderEncrypted {
		t.Fatalf("want %q, got %q", message.PlaceholderEncrypted, got)
	}
}

func TestDecryptForThread_Tampered_ShowsFailure(t *testing.T) {
	dir := directory.NewMemory()
	alice := newUser(t, "alice", dir)
	recipients := []domain.RecipientKey{alice.recipientKey(t)}

	payload, err := alice.svc.EncryptForThread(
		context.Background(), alice.id, alice.pair, "thread-1", "private", recipients)
	if err != nil {
		t.Fatalf("EncryptForThread: %v", err)
	}
	raw, err := base64.StdEncoding.DecodeString(payload.Ciphertext)
	if err != nil {
		t.Fatalf("decode ciphertext: %v", err)
	}
	raw[len(raw)-1] ^= 0x01
	tampered := base64.StdEncoding.EncodeToString(raw)

	got := alice.svc.DecryptForThread(
		context.Background(), alice.id, alice.pair, "thread-1", tampered, nil)
	if got != message.PlaceholderDecryptionFailed {
		t.Fatalf("want %q, got %q", message.PlaceholderDecryptionFailed, got)
	}
}

func TestReceive_DegradesPerMessage(t *testing.T) {
	dir := directory.NewMemory()
	alice := newUser(t, "alice", dir)
	bob := newUser(t, "bob", dir)
	recipients := []domain.RecipientKey{alice.recipientKey(t), bob.recipientKey(t)}

	err := alice.svc.Send(
		context.Background(), alice.id, alice.pair, "thread-1", "readable", recipients)
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	// A corrupted blob lands in the same thread.
	err = dir.SendMessage(context.Background(), "thread-1", "mallory", "garbage", nil)
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	got, err := bob.svc.Receive(context.Background(), bob.id, bob.pair, "thread-1", 0)
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("want 2 messages, got %d", len(got))
	}
	if got[0].Text != "readable" {
		t.Fatalf("intact message: %q", got[0].Text)
	}
	if got[1].Text != message.PlaceholderDecryptionFailed {
		t.Fatalf("corrupt message: %q", got[1].Text)
	}
}
