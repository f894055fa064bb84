// Package secrets is the single place that reads credential material. All
// values come from the process environment (locally populated via .env, in
// cloud runs via the repository secret store) and are treated as opaque
// strings by everything downstream.
package secrets

import (
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Env var names, matching the names used by the cloud secret sync.
const (
	KeyUsername     = "MICROSOFT_USERNAME"
	KeyPassword     = "ELIA_PASSWORD"
	KeyTOTPSecret   = "TOTP_SECRET"
	KeyBearerToken  = "ELIA_GRAPHQL_TOKEN"
	KeyEmailAddress = "EMAIL_ADDRESS"
	KeyIMAPPassword = "SMTP_PASSWORD"
	KeyIMAPHost     = "SMTP_HOST"
	KeyIMAPPort     = "SMTP_PORT"
	KeySessionKey   = "SESSION_KEY"
)

// MissingError reports a secret that is required but not set.
type MissingError struct{ Key string }

func (e *MissingError) Error() string { return fmt.Sprintf("secret %s is not set", e.Key) }

// Store looks up secrets. The lookup function is swappable for tests.
type Store struct {
	lookup func(string) (string, bool)
}

func FromEnv() *Store {
	return &Store{lookup: os.LookupEnv}
}

// FromMap is a test constructor.
func FromMap(m map[string]string) *Store {
	return &Store{lookup: func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}}
}

func (s *Store) get(key string) (string, error) {
	v, ok := s.lookup(key)
	v = strings.TrimSpace(v)
	if !ok || v == "" {
		return "", &MissingError{Key: key}
	}
	return v, nil
}

// optional returns "" when the secret is absent.
func (s *Store) optional(key string) string {
	v, _ := s.lookup(key)
	return strings.TrimSpace(v)
}

func (s *Store) Username() (string, error)   { return s.get(KeyUsername) }
func (s *Store) Password() (string, error)   { return s.get(KeyPassword) }
func (s *Store) TOTPSecret() (string, error) { return s.get(KeyTOTPSecret) }

// BearerToken returns the captured GraphQL bearer token, or "" when none was
// provided. A missing token is not an error: it just forces interactive login.
func (s *Store) BearerToken() string { return s.optional(KeyBearerToken) }

func (s *Store) EmailAddress() (string, error) { return s.get(KeyEmailAddress) }
func (s *Store) IMAPPassword() (string, error) { return s.get(KeyIMAPPassword) }

func (s *Store) IMAPHost() string {
	if h := s.optional(KeyIMAPHost); h != "" {
		return h
	}
	return "imap.gmail.com"
}

func (s *Store) IMAPPort() int {
	if p := s.optional(KeyIMAPPort); p != "" {
		if n, err := strconv.Atoi(p); err == nil {
			return n
		}
	}
	return 993
}

// SessionKey decodes the base64 secret protecting the local session cache.
func (s *Store) SessionKey() ([]byte, error) {
	v, err := s.get(KeySessionKey)
	if err != nil {
		return nil, err
	}
	b, err := base64.StdEncoding.DecodeString(v)
	if err != nil {
		b, err = base64.RawStdEncoding.DecodeString(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", KeySessionKey, err)
		}
	}
	if len(b) < 16 {
		return nil, fmt.Errorf("%s must decode to at least 16 bytes (got %d)", KeySessionKey, len(b))
	}
	return b, nil
}

// EmailMFAAvailable reports whether the email fallback has everything it needs.
func (s *Store) EmailMFAAvailable() bool {
	_, err1 := s.EmailAddress()
	_, err2 := s.IMAPPassword()
	return err1 == nil && err2 == nil
}
