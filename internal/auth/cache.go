package auth

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gorilla/securecookie"
	"golang.org/x/crypto/scrypt"
)

const cacheName = "parkbot_session"

// Cache persists the session to disk encrypted, so a run on the same machine
// can pick up where the last one left off without logging in again.
type Cache struct {
	sc   *securecookie.SecureCookie
	path string
}

// NewCache derives separate hash and block keys from the user's key material
// and encrypts sessions with them.
func NewCache(key []byte, path string) (*Cache, error) {
	if len(key) < 16 {
		return nil, fmt.Errorf("session key too short: %d bytes", len(key))
	}
	hashKey, err := scrypt.Key(key, []byte("parkbot-hash"), 1<<15, 8, 1, 64)
	if err != nil {
		return nil, fmt.Errorf("derive hash key: %w", err)
	}
	blockKey, err := scrypt.Key(key, []byte("parkbot-block"), 1<<15, 8, 1, 32)
	if err != nil {
		return nil, fmt.Errorf("derive block key: %w", err)
	}
	return &Cache{sc: securecookie.New(hashKey, blockKey), path: path}, nil
}

func (c *Cache) Save(s Session) error {
	encoded, err := c.sc.Encode(cacheName, s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	if err := os.WriteFile(c.path, []byte(encoded), 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

func (c *Cache) Load() (Session, error) {
	raw, err := os.ReadFile(c.path)
	if err != nil {
		return Session{}, fmt.Errorf("read session: %w", err)
	}
	var s Session
	if err := c.sc.Decode(cacheName, string(raw), &s); err != nil {
		return Session{}, fmt.Errorf("decode session: %w", err)
	}
	return s, nil
}

// Clear drops the cached session. A missing file is not an error.
func (c *Cache) Clear() error {
	if err := os.Remove(c.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
