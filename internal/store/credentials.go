package store

import (
	"github.com/existflow/taskdeck/internal/logger"
)

const (
	keyOAuthToken = "clickup_oauth_token"
	keyAPIKey     = "clickup_api_key"
)

// Credentials persists the bearer credential. At most one of each kind is
// active; the OAuth token wins when both exist.
type Credentials struct {
	store  *Store
	crypto *Crypto
}

// NewCredentials wraps the store with at-rest encryption keyed under dir.
func NewCredentials(s *Store, dir string) (*Credentials, error) {
	crypto, err := LoadCrypto(dir)
	if err != nil {
		return nil, &StorageError{Op: "load key", Err: err}
	}
	return &Credentials{store: s, crypto: crypto}, nil
}

func (c *Credentials) set(key, value string) error {
	encrypted, err := c.crypto.Encrypt([]byte(value))
	if err != nil {
		return &StorageError{Op: "encrypt", Err: err}
	}
	return c.store.Save(key, []byte(encrypted))
}

func (c *Credentials) get(key string) (string, bool) {
	raw, ok, err := c.store.Get(key)
	if err != nil {
		// Storage trouble means "signed out", never a crash.
		logger.Warn("credential read failed", logger.F("key", key), logger.F("error", err))
		return "", false
	}
	if !ok {
		return "", false
	}
	plain, err := c.crypto.Decrypt(string(raw))
	if err != nil {
		logger.Warn("credential decrypt failed", logger.F("key", key), logger.F("error", err))
		return "", false
	}
	return string(plain), true
}

// SetOAuthToken stores the OAuth access token.
func (c *Credentials) SetOAuthToken(token string) error {
	return c.set(keyOAuthToken, token)
}

// SetAPIKey stores a manually entered API key.
func (c *Credentials) SetAPIKey(key string) error {
	return c.set(keyAPIKey, key)
}

// Token returns the active credential, OAuth first.
func (c *Credentials) Token() (string, bool) {
	if tok, ok := c.get(keyOAuthToken); ok {
		return tok, true
	}
	return c.get(keyAPIKey)
}

// HasOAuthToken reports whether an OAuth token is stored.
func (c *Credentials) HasOAuthToken() bool {
	_, ok := c.get(keyOAuthToken)
	return ok
}

// ClearOAuthToken removes the OAuth token. Idempotent.
func (c *Credentials) ClearOAuthToken() error {
	return c.store.Delete(keyOAuthToken)
}

// Clear removes every stored credential (sign-out).
func (c *Credentials) Clear() error {
	if err := c.store.Delete(keyOAuthToken); err != nil {
		return err
	}
	return c.store.Delete(keyAPIKey)
}
