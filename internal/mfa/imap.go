package mfa

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
)

// IMAPMailbox reads verification mails from a real inbox. Each FetchCode call
// opens a fresh connection; the codes are one-shot and the polling cadence is
// slow enough that connection reuse buys nothing.
type IMAPMailbox struct {
	Host     string
	Port     int
	Username string
	Password string

	// Sender narrows the search to the identity provider's domain.
	Sender string

	// Lookback bounds how old a mail may be and still count as current.
	Lookback time.Duration

	now func() time.Time
}

func NewIMAPMailbox(host string, port int, username, password string) *IMAPMailbox {
	return &IMAPMailbox{
		Host:     host,
		Port:     port,
		Username: username,
		Password: password,
		Sender:   "microsoft.com",
		Lookback: 10 * time.Minute,
		now:      time.Now,
	}
}

func (m *IMAPMailbox) FetchCode(ctx context.Context) (string, error) {
	c, err := client.DialTLS(fmt.Sprintf("%s:%d", m.Host, m.Port), nil)
	if err != nil {
		return "", fmt.Errorf("dial imap: %w", err)
	}
	defer c.Logout()

	if err := c.Login(m.Username, m.Password); err != nil {
		return "", fmt.Errorf("imap login: %w", err)
	}
	if _, err := c.Select("INBOX", true); err != nil {
		return "", fmt.Errorf("select inbox: %w", err)
	}

	criteria := imap.NewSearchCriteria()
	criteria.Header.Add("From", m.Sender)
	criteria.Since = m.now().Add(-m.Lookback)

	ids, err := c.Search(criteria)
	if err != nil {
		return "", fmt.Errorf("search inbox: %w", err)
	}
	if len(ids) == 0 {
		return "", ErrNoCode
	}

	// Newest mail wins when several codes are in flight.
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })

	seq := new(imap.SeqSet)
	seq.AddNum(ids[0])

	section := &imap.BodySectionName{Peek: true}
	messages := make(chan *imap.Message, 1)
	if err := c.Fetch(seq, []imap.FetchItem{section.FetchItem()}, messages); err != nil {
		return "", fmt.Errorf("fetch mail: %w", err)
	}

	msg := <-messages
	if msg == nil {
		return "", ErrNoCode
	}
	body := msg.GetBody(section)
	if body == nil {
		return "", ErrNoCode
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("read mail body: %w", err)
	}

	code, ok := ExtractCode(string(raw))
	if !ok {
		return "", ErrNoCode
	}
	return code, nil
}
