package mfa

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTOTPGeneratesValidCode(t *testing.T) {
	secret := "JBSWY3DPEHPK3PXP"

	p := NewTOTP(secret, 15*time.Second)
	code, err := p.Attempt(context.Background())
	require.NoError(t, err)
	require.Len(t, code, 6)

	ok := totp.Validate(code, secret)
	assert.True(t, ok, "generated code should validate against the shared secret")
}

func TestTOTPWithoutSecretUnavailable(t *testing.T) {
	p := NewTOTP("", 15*time.Second)
	_, err := p.Attempt(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestTOTPHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewTOTP("JBSWY3DPEHPK3PXP", 15*time.Second)
	_, err := p.Attempt(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExtractCode(t *testing.T) {
	cases := []struct {
		body string
		want string
		ok   bool
	}{
		{"Your verification code is 482913. It expires in 10 minutes.", "482913", true},
		{"code: 000123", "000123", true},
		{"order #1234567 shipped", "", false},
		{"no digits here", "", false},
	}
	for _, tc := range cases {
		got, ok := ExtractCode(tc.body)
		assert.Equal(t, tc.ok, ok, tc.body)
		assert.Equal(t, tc.want, got, tc.body)
	}
}

type fakeMailbox struct {
	calls int
	// code appears on the readyAt-th call
	readyAt int
	code    string
	err     error
}

func (f *fakeMailbox) FetchCode(ctx context.Context) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if f.calls >= f.readyAt {
		return f.code, nil
	}
	return "", ErrNoCode
}

func TestEmailCodePollsUntilDelivered(t *testing.T) {
	mb := &fakeMailbox{readyAt: 3, code: "654321"}
	p := NewEmailCode(mb, 5*time.Millisecond, time.Second)

	code, err := p.Attempt(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "654321", code)
	assert.Equal(t, 3, mb.calls)
}

func TestEmailCodeTimesOut(t *testing.T) {
	mb := &fakeMailbox{readyAt: 1000}
	p := NewEmailCode(mb, 5*time.Millisecond, 30*time.Millisecond)

	_, err := p.Attempt(context.Background())
	assert.ErrorIs(t, err, ErrTimedOut)
}

func TestEmailCodeSurfacesMailboxError(t *testing.T) {
	boom := errors.New("imap login: bad credentials")
	mb := &fakeMailbox{err: boom}
	p := NewEmailCode(mb, time.Millisecond, time.Second)

	_, err := p.Attempt(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestEmailCodeWithoutMailboxUnavailable(t *testing.T) {
	p := NewEmailCode(nil, time.Millisecond, time.Second)
	_, err := p.Attempt(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestPushApprovalApproved(t *testing.T) {
	calls := 0
	p := NewPushApproval(func(ctx context.Context) (bool, error) {
		calls++
		return calls >= 2, nil
	}, time.Second)
	p.Interval = 5 * time.Millisecond

	code, err := p.Attempt(context.Background())
	require.NoError(t, err)
	assert.Empty(t, code, "push approval carries no code")
	assert.Equal(t, 2, calls)
}

func TestPushApprovalTimesOut(t *testing.T) {
	p := NewPushApproval(func(ctx context.Context) (bool, error) {
		return false, nil
	}, 30*time.Millisecond)
	p.Interval = 5 * time.Millisecond

	_, err := p.Attempt(context.Background())
	assert.ErrorIs(t, err, ErrTimedOut)
}
