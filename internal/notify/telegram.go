package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/example/elia-parkbot/internal/workflow"
)

const telegramAPI = "https://api.telegram.org"

// TelegramNotifier sends run reports through a Telegram bot.
type TelegramNotifier struct {
	botToken string
	chatID   string
	base     string
	client   *http.Client
}

func NewTelegramNotifier(botToken, chatID string) *TelegramNotifier {
	return &TelegramNotifier{
		botToken: botToken,
		chatID:   chatID,
		base:     telegramAPI,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

type telegramMessage struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

func (n *TelegramNotifier) Notify(ctx context.Context, report workflow.RunReport) error {
	if n.botToken == "" || n.chatID == "" {
		return nil
	}

	payload, err := json.Marshal(telegramMessage{ChatID: n.chatID, Text: FormatReport(report)})
	if err != nil {
		return err
	}
	url := fmt.Sprintf("%s/bot%s/sendMessage", n.base, n.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("content-type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram returned %d", resp.StatusCode)
	}
	return nil
}
