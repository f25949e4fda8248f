package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

const defaultTelegramAPI = "https://api.telegram.org"

// Telegram delivers alerts and confirmations via the Telegram Bot API.
// Alert is a plain sendMessage; Confirm sends the question and long-polls
// getUpdates for the user's reply until replyTimeout expires.
type Telegram struct {
	botToken     string
	chatID       string
	apiBase      string
	client       *http.Client
	replyTimeout time.Duration

	updateMu     sync.Mutex
	lastUpdateID int64
}

// NewTelegram creates a Telegram notifier for the configured chat.
func NewTelegram(botToken, chatID string, replyTimeout time.Duration) *Telegram {
	return &Telegram{
		botToken:     botToken,
		chatID:       chatID,
		apiBase:      defaultTelegramAPI,
		client:       &http.Client{Timeout: 30 * time.Second},
		replyTimeout: replyTimeout,
	}
}

type telegramResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description,omitempty"`
	Result      json.RawMessage `json:"result,omitempty"`
}

type telegramUpdate struct {
	UpdateID int64 `json:"update_id"`
	Message  *struct {
		Text string `json:"text"`
		From *struct {
			IsBot bool `json:"is_bot"`
		} `json:"from"`
		Chat struct {
			ID int64 `json:"id"`
		} `json:"chat"`
	} `json:"message"`
}

// Alert sends the notification text to the configured chat.
func (t *Telegram) Alert(title, message string) error {
	_, err := t.call("sendMessage", map[string]interface{}{
		"chat_id":    t.chatID,
		"text":       fmt.Sprintf("<b>%s</b>\n%s", title, message),
		"parse_mode": "HTML",
	})
	return err
}

// Confirm sends the question and waits for the user's next reply in the
// chat. An affirmative reply (yes/y/taken/done) resolves to Yes, any other
// reply to No, and silence until the timeout to NoResponse.
func (t *Telegram) Confirm(ctx context.Context, title, question string) (Response, error) {
	// Drop any updates that arrived before the question was asked.
	t.drainUpdates()

	if _, err := t.call("sendMessage", map[string]interface{}{
		"chat_id":    t.chatID,
		"text":       fmt.Sprintf("<b>%s</b>\n%s", title, question),
		"parse_mode": "HTML",
	}); err != nil {
		return NoResponse, fmt.Errorf("failed to send confirmation question: %w", err)
	}

	deadline := time.Now().Add(t.replyTimeout)
	for time.Now().Before(deadline) {
		if ctx.Err() != nil {
			return NoResponse, ctx.Err()
		}

		remaining := time.Until(deadline)
		pollTimeout := 30 * time.Second
		if remaining < pollTimeout {
			pollTimeout = remaining
		}

		text, ok, err := t.nextReply(ctx, pollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return NoResponse, ctx.Err()
			}
			continue
		}
		if !ok {
			continue
		}

		return parseReply(text), nil
	}

	return NoResponse, nil
}

func parseReply(text string) Response {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "yes", "y", "taken", "done":
		return Yes
	}
	return No
}

// nextReply long-polls getUpdates once and returns the first human reply
// from the configured chat, if any arrived.
func (t *Telegram) nextReply(ctx context.Context, pollTimeout time.Duration) (string, bool, error) {
	t.updateMu.Lock()
	offset := t.lastUpdateID
	t.updateMu.Unlock()

	payload := map[string]interface{}{
		"timeout":         int(pollTimeout.Seconds()),
		"limit":           10,
		"allowed_updates": []string{"message"},
	}
	if offset > 0 {
		payload["offset"] = offset + 1
	}

	body, err := t.callWithContext(ctx, "getUpdates", payload, pollTimeout+10*time.Second)
	if err != nil {
		return "", false, err
	}

	var updates []telegramUpdate
	if err := json.Unmarshal(body, &updates); err != nil {
		return "", false, fmt.Errorf("failed to parse updates: %w", err)
	}

	for _, u := range updates {
		t.updateMu.Lock()
		if u.UpdateID > t.lastUpdateID {
			t.lastUpdateID = u.UpdateID
		}
		t.updateMu.Unlock()

		if u.Message == nil {
			continue
		}
		if fmt.Sprintf("%d", u.Message.Chat.ID) != t.chatID {
			continue
		}
		if u.Message.From != nil && u.Message.From.IsBot {
			continue
		}
		return u.Message.Text, true, nil
	}

	return "", false, nil
}

// drainUpdates advances the update offset past anything already queued.
func (t *Telegram) drainUpdates() {
	body, err := t.call("getUpdates", map[string]interface{}{
		"timeout": 0,
		"limit":   100,
	})
	if err != nil {
		return
	}

	var updates []telegramUpdate
	if err := json.Unmarshal(body, &updates); err != nil || len(updates) == 0 {
		return
	}

	t.updateMu.Lock()
	last := updates[len(updates)-1].UpdateID
	if last > t.lastUpdateID {
		t.lastUpdateID = last
	}
	t.updateMu.Unlock()
}

func (t *Telegram) call(method string, payload map[string]interface{}) (json.RawMessage, error) {
	return t.callWithContext(context.Background(), method, payload, 0)
}

// callWithContext makes a request to the Telegram Bot API and returns the
// raw result field.
func (t *Telegram) callWithContext(ctx context.Context, method string, payload map[string]interface{}, timeout time.Duration) (json.RawMessage, error) {
	url := fmt.Sprintf("%s/bot%s/%s", t.apiBase, t.botToken, method)

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := t.client
	if timeout > 0 {
		client = &http.Client{Timeout: timeout}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var tgResp telegramResponse
	if err := json.Unmarshal(body, &tgResp); err != nil {
		return nil, fmt.Errorf("failed to parse telegram response: %w", err)
	}
	if !tgResp.OK {
		return nil, fmt.Errorf("telegram API error: %s", tgResp.Description)
	}

	return tgResp.Result, nil
}
