package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/amishk599/jobboard/internal/model"
)

// DefaultTelegramBaseURL is the public Bot API endpoint.
const DefaultTelegramBaseURL = "https://api.telegram.org"

// Ensure TelegramNotifier implements model.Notifier.
var _ model.Notifier = (*TelegramNotifier)(nil)

// TelegramNotifier posts HTML messages to one chat through the Bot API.
// A failed delivery is logged and reported as false; it is never retried.
type TelegramNotifier struct {
	baseURL        string
	token          string
	chatID         string
	disablePreview bool
	httpClient     *http.Client
	logger         *slog.Logger
}

// NewTelegramNotifier returns a notifier for the bot token and chat id.
func NewTelegramNotifier(baseURL, token, chatID string, disablePreview bool, httpClient *http.Client, logger *slog.Logger) *TelegramNotifier {
	return &TelegramNotifier{
		baseURL:        strings.TrimRight(baseURL, "/"),
		token:          token,
		chatID:         chatID,
		disablePreview: disablePreview,
		httpClient:     httpClient,
		logger:         logger,
	}
}

type sendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

// Notify sends text as an HTML message and reports whether the Bot API
// accepted it.
func (t *TelegramNotifier) Notify(ctx context.Context, text string) bool {
	if err := t.send(ctx, text); err != nil {
		t.logger.Error("telegram notification failed", "chat_id", t.chatID, "error", err)
		return false
	}
	t.logger.Info("telegram message sent", "chat_id", t.chatID)
	return true
}

func (t *TelegramNotifier) send(ctx context.Context, text string) error {
	if t.token == "" || t.chatID == "" {
		return fmt.Errorf("telegram bot token or chat id not configured")
	}

	body, err := json.Marshal(sendMessageRequest{
		ChatID:                t.chatID,
		Text:                  text,
		ParseMode:             "HTML",
		DisableWebPagePreview: t.disablePreview,
	})
	if err != nil {
		return fmt.Errorf("marshal telegram payload: %w", err)
	}

	url := t.baseURL + "/bot" + t.token + "/sendMessage"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		// the URL carries the token; keep it out of logs
		return fmt.Errorf("post to telegram: %w", redact(err, t.token))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("telegram returned %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	return nil
}

type redactedError struct {
	msg string
	err error
}

func (e *redactedError) Error() string { return e.msg }
func (e *redactedError) Unwrap() error { return e.err }

func redact(err error, secret string) error {
	if secret == "" {
		return err
	}
	return &redactedError{msg: strings.ReplaceAll(err.Error(), secret, "***"), err: err}
}
