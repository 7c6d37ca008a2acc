// Package notify delivers notification text to an account's external chat.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Sender delivers a message to the chat identified by the account's external id.
type Sender interface {
	Send(ctx context.Context, externalID int64, text string) error
}

// Nop drops every message. Used when delivery is disabled.
type Nop struct{}

func (Nop) Send(context.Context, int64, string) error { return nil }

// TelegramSender calls the Bot API sendMessage method.
type TelegramSender struct {
	base   string
	token  string
	client *http.Client
}

func NewTelegramSender(base, token string, client *http.Client) *TelegramSender {
	if client == nil {
		client = http.DefaultClient
	}
	return &TelegramSender{base: strings.TrimRight(base, "/"), token: token, client: client}
}

type sendMessageRequest struct {
	ChatID int64  `json:"chat_id"`
	Text   string `json:"text"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

func (s *TelegramSender) Send(ctx context.Context, externalID int64, text string) error {
	body, err := json.Marshal(sendMessageRequest{ChatID: externalID, Text: text})
	if err != nil {
		return err
	}
	url := fmt.Sprintf("%s/bot%s/sendMessage", s.base, s.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var out apiResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&out); err != nil {
		return fmt.Errorf("sendMessage: status %d: %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK || !out.OK {
		return fmt.Errorf("sendMessage: status %d: %s", resp.StatusCode, out.Description)
	}
	return nil
}
