package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/elia-parkbot/internal/booking"
	"github.com/example/elia-parkbot/internal/workflow"
)

func sampleReport() workflow.RunReport {
	day := func(d int) time.Time { return time.Date(2026, 9, d, 0, 0, 0, 0, time.UTC) }
	return workflow.RunReport{
		Dates: []booking.DateOutcome{
			{Date: day(1), Outcome: booking.OutcomeBooked, Spot: &booking.Spot{Name: "P-02"}},
			{Date: day(14), Outcome: booking.OutcomeAlreadyBooked, Spot: &booking.Spot{Name: "P-07"}},
			{Date: day(5), Outcome: booking.OutcomeSkippedWeekend},
		},
	}
}

func TestFormatReport(t *testing.T) {
	got := FormatReport(sampleReport())
	assert.Contains(t, got, "1 booked")
	assert.Contains(t, got, "2026-09-01 (Tue): booked P-02")
	assert.Contains(t, got, "2026-09-14 (Mon): already booked P-07")
	assert.Contains(t, got, "2026-09-05 (Sat): weekend")
}

func TestFormatReportFatal(t *testing.T) {
	r := workflow.RunReport{Fatal: errors.New("authenticate: mfa exhausted")}
	got := FormatReport(r)
	assert.Contains(t, got, "failed")
	assert.Contains(t, got, "mfa exhausted")
}

func TestDiscordNotifierPostsContent(t *testing.T) {
	var got discordMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	n := NewDiscordNotifier(srv.URL)
	require.NoError(t, n.Notify(context.Background(), sampleReport()))
	assert.Contains(t, got.Content, "1 booked")
}

func TestDiscordNotifierDisabledWithoutURL(t *testing.T) {
	n := NewDiscordNotifier("")
	assert.NoError(t, n.Notify(context.Background(), sampleReport()))
}

func TestTelegramNotifierPostsToChat(t *testing.T) {
	var got telegramMessage
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewTelegramNotifier("123:abc", "chat-9")
	n.base = srv.URL
	require.NoError(t, n.Notify(context.Background(), sampleReport()))
	assert.Equal(t, "/bot123:abc/sendMessage", path)
	assert.Equal(t, "chat-9", got.ChatID)
}

type flakyNotifier struct {
	err   error
	calls int
}

func (f *flakyNotifier) Notify(ctx context.Context, report workflow.RunReport) error {
	f.calls++
	return f.err
}

func TestMultiNotifierReachesAllChannels(t *testing.T) {
	bad := &flakyNotifier{err: errors.New("webhook down")}
	good := &flakyNotifier{}
	m := NewMultiNotifier(bad, good)

	err := m.Notify(context.Background(), sampleReport())
	assert.Error(t, err)
	assert.Equal(t, 1, bad.calls)
	assert.Equal(t, 1, good.calls, "later channels still notified")
}
