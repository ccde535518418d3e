package main

import (
	"encoding/json"
	"flag"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"lenslock/internal/domain"
)

type identityRecord struct {
	PublicKey domain.JWK
	Backup    *domain.JWK
}

type memoryStore struct {
	mu         sync.RWMutex
	identities map[domain.UserID]identityRecord
	envelopes  map[domain.ThreadID][]domain.RecipientEnvelope
	messages   map[domain.ThreadID][]domain.EncryptedMessage
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		identities: make(map[domain.UserID]identityRecord),
		envelopes:  make(map[domain.ThreadID][]domain.RecipientEnvelope),
		messages:   make(map[domain.ThreadID][]domain.EncryptedMessage),
	}
}

func (ms *memoryStore) registerIdentity(userID domain.UserID, pub domain.JWK, backup *domain.JWK) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.identities[userID] = identityRecord{PublicKey: pub, Backup: backup}
}

func (ms *memoryStore) backup(userID domain.UserID) (*domain.JWK, bool) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	rec, ok := ms.identities[userID]
	if !ok || rec.Backup == nil {
		return nil, false
	}
	return rec.Backup, true
}

func (ms *memoryStore) threadEnvelopes(threadID domain.ThreadID) []domain.RecipientEnvelope {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return append([]domain.RecipientEnvelope(nil), ms.envelopes[threadID]...)
}

// addEnvelopes keeps the first envelope seen per recipient; later pushes
// for the same recipient are dropped so a wrapped key never changes
// underneath a participant.
func (ms *memoryStore) addEnvelopes(threadID domain.ThreadID, envs []domain.RecipientEnvelope) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.addEnvelopesLocked(threadID, envs)
}

func (ms *memoryStore) addEnvelopesLocked(threadID domain.ThreadID, envs []domain.RecipientEnvelope) {
	have := make(map[domain.UserID]bool, len(ms.envelopes[threadID]))
	for _, e := range ms.envelopes[threadID] {
		have[e.RecipientUserID] = true
	}
	for _, e := range envs {
		if have[e.RecipientUserID] {
			continue
		}
		ms.envelopes[threadID] = append(ms.envelopes[threadID], e)
		have[e.RecipientUserID] = true
	}
}

func (ms *memoryStore) recipients(domain.ThreadID) []domain.RecipientKey {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	out := make([]domain.RecipientKey, 0, len(ms.identities))
	for userID, rec := range ms.identities {
		out = append(out, domain.RecipientKey{UserID: userID, PublicKey: rec.PublicKey})
	}
	return out
}

func (ms *memoryStore) addMessage(
	threadID domain.ThreadID,
	sender domain.UserID,
	ciphertext string,
	envs []domain.RecipientEnvelope,
) domain.EncryptedMessage {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.addEnvelopesLocked(threadID, envs)
	msg := domain.EncryptedMessage{
		ID:           uuid.NewString(),
		ThreadID:     threadID,
		SenderUserID: sender,
		Ciphertext:   ciphertext,
		Timestamp:    time.Now().Unix(),
	}
	ms.messages[threadID] = append(ms.messages[threadID], msg)
	return msg
}

func (ms *memoryStore) threadMessages(threadID domain.ThreadID, limit int) []domain.EncryptedMessage {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	msgs := ms.messages[threadID]
	if limit > 0 && limit < len(msgs) {
		msgs = msgs[:limit]
	}
	return append([]domain.EncryptedMessage(nil), msgs...)
}

type registerIdentityRequest struct {
	UserID           domain.UserID `json:"user_id"`
	PublicKey        domain.JWK    `json:"public_key"`
	PrivateKeyBackup *domain.JWK   `json:"private_key_backup"`
}

type sendMessageRequest struct {
	SenderUserID   domain.UserID              `json:"sender_user_id"`
	Ciphertext     string                     `json:"ciphertext"`
	FreshEnvelopes []domain.RecipientEnvelope `json:"fresh_envelopes"`
}

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Timestamp().Logger()
	ms := newMemoryStore()

	mux := http.NewServeMux()

	mux.HandleFunc("POST /identity/register", func(w http.ResponseWriter, r *http.Request) {
		var req registerIdentityRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.UserID == "" {
			http.Error(w, "user_id required", http.StatusBadRequest)
			return
		}
		ms.registerIdentity(req.UserID, req.PublicKey, req.PrivateKeyBackup)
		log.Info().Str("user_id", req.UserID.String()).
			Bool("backup", req.PrivateKeyBackup != nil).
			Msg("identity registered")
		w.WriteHeader(http.StatusOK)
	})

	mux.HandleFunc("GET /identity/backup/{user}", func(w http.ResponseWriter, r *http.Request) {
		userID := domain.UserID(r.PathValue("user"))
		jwk, ok := ms.backup(userID)
		if !ok {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		writeJSON(w, jwk)
	})

	mux.HandleFunc("GET /threads/{id}/envelopes", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, ms.threadEnvelopes(domain.ThreadID(r.PathValue("id"))))
	})

	mux.HandleFunc("POST /threads/{id}/envelopes", func(w http.ResponseWriter, r *http.Request) {
		var envs []domain.RecipientEnvelope
		if err := json.NewDecoder(r.Body).Decode(&envs); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		ms.addEnvelopes(domain.ThreadID(r.PathValue("id")), envs)
		w.WriteHeader(http.StatusOK)
	})

	mux.HandleFunc("GET /threads/{id}/recipients", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, ms.recipients(domain.ThreadID(r.PathValue("id"))))
	})

	mux.HandleFunc("POST /threads/{id}/messages", func(w http.ResponseWriter, r *http.Request) {
		var req sendMessageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		threadID := domain.ThreadID(r.PathValue("id"))
		msg := ms.addMessage(threadID, req.SenderUserID, req.Ciphertext, req.FreshEnvelopes)
		log.Info().Str("thread_id", threadID.String()).
			Str("sender", req.SenderUserID.String()).
			Str("message_id", msg.ID).
			Int("fresh_envelopes", len(req.FreshEnvelopes)).
			Msg("message stored")
		w.WriteHeader(http.StatusOK)
	})

	mux.HandleFunc("GET /threads/{id}/messages", func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		writeJSON(w, ms.threadMessages(domain.ThreadID(r.PathValue("id")), limit))
	})

	log.Info().Str("addr", *addr).Msg("directory listening")
	if err := http.ListenAndServe(*addr, accessLog(log, mux)); err != nil {
		log.Fatal().Err(err).Msg("directory server failed")
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func accessLog(log zerolog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Debug().Str("method", r.Method).Str("path", r.URL.Path).
			Str("remote", r.RemoteAddr).Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}
