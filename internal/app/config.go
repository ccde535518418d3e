package app

import (
	"net/http"

	"github.com/rs/zerolog"

	"lenslock/internal/domain"
)

// Config holds runtime wiring options for building the app.
type Config struct {
	Home         string        // config directory, e.g. $HOME/.lenslock
	DirectoryURL string        // key-directory base URL, e.g. http://127.0.0.1:8080
	UserID       domain.UserID // the authenticated user
	Passphrase   string        // seals the local key store
	HTTP         *http.Client  // optional; defaults to http.DefaultClient
	Logger       zerolog.Logger
}
