package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"lenslock/internal/domain"
)

// HTTP talks to a key-directory server over JSON/HTTP.
type HTTP struct {
	Base string
	HTTP *http.Client
}

// NewHTTP returns a client for the directory at base.
func NewHTTP(base string, client *http.Client) *HTTP {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTP{Base: base, HTTP: client}
}

type registerIdentityRequest struct {
	UserID           domain.UserID `json:"user_id"`
	PublicKey        domain.JWK    `json:"public_key"`
	PrivateKeyBackup *domain.JWK   `json:"private_key_backup,omitempty"`
}

func (c *HTTP) RegisterIdentity(
	ctx context.Context,
	userID domain.UserID,
	publicKey domain.JWK,
	privateKeyBackup *domain.JWK,
) error {
	req := registerIdentityRequest{
		UserID:           userID,
		PublicKey:        publicKey,
		PrivateKeyBackup: privateKeyBackup,
	}
	return c.post(ctx, "/identity/register", req, nil)
}

func (c *HTTP) FetchIdentityBackup(
	ctx context.Context,
	userID domain.UserID,
) (*domain.JWK, error) {
	var out domain.JWK
	found, err := c.getJSON(ctx, "/identity/backup/"+url.PathEscape(userID.String()), &out)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &out, nil
}

func (c *HTTP) FetchThreadEnvelopes(
	ctx context.Context,
	threadID domain.ThreadID,
) ([]domain.RecipientEnvelope, error) {
	var out []domain.RecipientEnvelope
	if _, err := c.getJSON(ctx, threadPath(threadID, "envelopes"), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTP) PushThreadEnvelopes(
	ctx context.Context,
	threadID domain.ThreadID,
	envelopes []domain.RecipientEnvelope,
) error {
	return c.post(ctx, threadPath(threadID, "envelopes"), envelopes, nil)
}

func (c *HTTP) FetchThreadRecipients(
	ctx context.Context,
	threadID domain.ThreadID,
) ([]domain.RecipientKey, error) {
	var out []domain.RecipientKey
	if _, err := c.getJSON(ctx, threadPath(threadID, "recipients"), &out); err != nil {
		return nil, err
	}
	return out, nil
}

type sendMessageRequest struct {
	SenderUserID   domain.UserID              `json:"sender_user_id"`
	Ciphertext     string                     `json:"ciphertext"`
	FreshEnvelopes []domain.RecipientEnvelope `json:"fresh_envelopes,omitempty"`
}

func (c *HTTP) SendMessage(
	ctx context.Context,
	threadID domain.ThreadID,
	senderUserID domain.UserID,
	ciphertext string,
	freshEnvelopes []domain.RecipientEnvelope,
) error {
	req := sendMessageRequest{
		SenderUserID:   senderUserID,
		Ciphertext:     ciphertext,
		FreshEnvelopes: freshEnvelopes,
	}
	return c.post(ctx, threadPath(threadID, "messages"), req, nil)
}

func (c *HTTP) FetchMessages(
	ctx context.Context,
	threadID domain.ThreadID,
	limit int,
) ([]domain.EncryptedMessage, error) {
	path := threadPath(threadID, "messages")
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var out []domain.EncryptedMessage
	if _, err := c.getJSON(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func threadPath(threadID domain.ThreadID, suffix string) string {
	return "/threads/" + url.PathEscape(threadID.String()) + "/" + suffix
}

func (c *HTTP) post(ctx context.Context, path string, in, out any) error {
	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(in); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Base+path, buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("directory post %s: %s", path, resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// getJSON returns found=false for a 404 without error, so callers can
// distinguish absence from failure.
func (c *HTTP) getJSON(ctx context.Context, path string, out any) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Base+path, nil)
	if err != nil {
		return false, err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode/100 != 2 {
		return false, fmt.Errorf("directory get %s: %s", path, resp.Status)
	}
	return true, json.NewDecoder(resp.Body).Decode(out)
}

// Compile-time assertion that HTTP implements domain.DirectoryClient.
var _ domain.DirectoryClient = (*HTTP)(nil)
