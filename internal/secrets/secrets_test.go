package secrets

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequiredSecrets(t *testing.T) {
	s := FromMap(map[string]string{
		KeyUsername:   "me@corp.example",
		KeyPassword:   "hunter2",
		KeyTOTPSecret: "JBSWY3DPEHPK3PXP",
	})

	u, err := s.Username()
	require.NoError(t, err)
	assert.Equal(t, "me@corp.example", u)

	_, err = FromMap(nil).Password()
	var missing *MissingError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, KeyPassword, missing.Key)
}

func TestBlankCountsAsMissing(t *testing.T) {
	s := FromMap(map[string]string{KeyUsername: "   "})
	_, err := s.Username()
	assert.Error(t, err)
}

func TestBearerTokenOptional(t *testing.T) {
	assert.Empty(t, FromMap(nil).BearerToken())
	assert.Equal(t, "tok", FromMap(map[string]string{KeyBearerToken: " tok "}).BearerToken())
}

func TestIMAPDefaults(t *testing.T) {
	s := FromMap(nil)
	assert.Equal(t, "imap.gmail.com", s.IMAPHost())
	assert.Equal(t, 993, s.IMAPPort())

	s = FromMap(map[string]string{KeyIMAPHost: "imap.corp.example", KeyIMAPPort: "1993"})
	assert.Equal(t, "imap.corp.example", s.IMAPHost())
	assert.Equal(t, 1993, s.IMAPPort())
}

func TestSessionKey(t *testing.T) {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	s := FromMap(map[string]string{KeySessionKey: base64.StdEncoding.EncodeToString(key)})
	got, err := s.SessionKey()
	require.NoError(t, err)
	assert.Equal(t, key, got)

	_, err = FromMap(map[string]string{KeySessionKey: base64.StdEncoding.EncodeToString([]byte("tiny"))}).SessionKey()
	assert.Error(t, err, "short keys rejected")

	_, err = FromMap(map[string]string{KeySessionKey: "%%%not-base64%%%"}).SessionKey()
	assert.Error(t, err)
}

func TestEmailMFAAvailable(t *testing.T) {
	assert.False(t, FromMap(nil).EmailMFAAvailable())
	assert.True(t, FromMap(map[string]string{
		KeyEmailAddress: "me@gmail.com",
		KeyIMAPPassword: "app-password",
	}).EmailMFAAvailable())
}
