package directory_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"lenslock/internal/directory"
	"lenslock/internal/domain"
)

func TestHTTP_RegisterAndBackup(t *testing.T) {
	var got struct {
		UserID           domain.UserID `json:"user_id"`
		PublicKey        domain.JWK    `json:"public_key"`
		PrivateKeyBackup *domain.JWK   `json:"private_key_backup"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/identity/register":
			if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
				t.Errorf("decode register body: %v", err)
			}
			w.WriteHeader(http.StatusOK)
		case r.Method == http.MethodGet && r.URL.Path == "/identity/backup/alice":
			_ = json.NewEncoder(w).Encode(got.PrivateKeyBackup)
		default:
			http.Error(w, "not found", http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := directory.NewHTTP(srv.URL, srv.Client())
	backup := domain.JWK{Kty: "EC", Crv: "P-256", X: "x", Y: "y", D: "d"}
	err := c.RegisterIdentity(context.Background(), "alice",
		domain.JWK{Kty: "EC", Crv: "P-256", X: "x", Y: "y"}, &backup)
	if err != nil {
		t.Fatalf("RegisterIdentity: %v", err)
	}
	if got.UserID != "alice" || got.PrivateKeyBackup == nil {
		t.Fatalf("register body: %+v", got)
	}

	fetched, err := c.FetchIdentityBackup(context.Background(), "alice")
	if err != nil {
		t.Fatalf("FetchIdentityBackup: %v", err)
	}
	if fetched == nil || fetched.D != "d" {
		t.Fatalf("backup readback: %+v", fetched)
	}

	// Absence is nil without error.
	none, err := c.FetchIdentityBackup(context.Background(), "bob")
	if err != nil {
		t.Fatalf("FetchIdentityBackup for bob: %v", err)
	}
	if none != nil {
		t.Fatalf("want nil backup for unregistered user, got %+v", none)
	}
}

func TestHTTP_MessagesAndLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/threads/thread-1/messages" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if got := r.URL.Query().Get("limit"); got != "5" {
			t.Errorf("want limit=5, got %q", got)
		}
		_ = json.NewEncoder(w).Encode([]domain.EncryptedMessage{
			{ID: "m1", ThreadID: "thread-1", SenderUserID: "alice", Ciphertext: "blob"},
		})
	}))
	defer srv.Close()

	c := directory.NewHTTP(srv.URL, srv.Client())
	msgs, err := c.FetchMessages(context.Background(), "thread-1", 5)
	if err != nil {
		t.Fatalf("FetchMessages: %v", err)
	}
	if len(msgs) != 1 || msgs[0].SenderUserID != "alice" {
		t.Fatalf("messages: %+v", msgs)
	}
}

func TestHTTP_ServerError_Surfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := directory.NewHTTP(srv.URL, srv.Client())
	if _, err := c.FetchThreadEnvelopes(context.Background(), "thread-1"); err == nil {
		t.Fatal("expected error on server failure")
	}
	if err := c.SendMessage(context.Background(), "thread-1", "alice", "blob", nil); err == nil {
		t.Fatal("expected error on server failure")
	}
}
