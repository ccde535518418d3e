package app

import (
	"net/http"

	"lenslock/internal/directory"
	"lenslock/internal/domain"
	identitysvc "lenslock/internal/services/identity"
	messagesvc "lenslock/internal/services/message"
	sessionsvc "lenslock/internal/services/session"
	threadkeysvc "lenslock/internal/services/threadkey"
	"lenslock/internal/store"
)

// Wire bundles the store, services, client and session for the CLI.
type Wire struct {
	Store     domain.KeyStore
	Directory domain.DirectoryClient
	Identity  domain.IdentityService
	Threads   domain.ThreadKeyService
	Messages  domain.MessageService
	Session   *sessionsvc.Session
	HTTP      *http.Client
}

// NewWire constructs the dependency graph from cfg.
func NewWire(cfg Config) (*Wire, error) {
	keyStore := store.NewFileStore(cfg.Home, cfg.Passphrase)

	httpClient := cfg.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	dir := directory.NewHTTP(cfg.DirectoryURL, httpClient)

	identity := identitysvc.New(keyStore, dir, cfg.Logger)
	threads := threadkeysvc.New(keyStore, dir, cfg.Logger)
	messages := messagesvc.New(threads, dir, cfg.Logger)
	session := sessionsvc.New(cfg.UserID, identity, messages, cfg.Logger)

	return &Wire{
		Store:     keyStore,
		Directory: dir,
		Identity:  identity,
		Threads:   threads,
		Messages:  messages,
		Session:   session,
		HTTP:      httpClient,
	}, nil
}
