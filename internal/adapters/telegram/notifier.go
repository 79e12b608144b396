// Package telegram delivers the end-of-run summary. Sends are best-effort:
// missing configuration disables the sink and failures only log.
package telegram

import (
	"context"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

// Telegram rejects messages longer than this.
const maxMessageLength = 4096

type Notifier struct {
	token  string
	chatID string
	hc     *resty.Client
}

// New builds a notifier against apiBase (https://api.telegram.org outside of
// tests). Empty token or chatID yields a disabled notifier.
func New(apiBase, token, chatID string) *Notifier {
	return &Notifier{
		token:  token,
		chatID: chatID,
		hc:     resty.New().SetBaseURL(apiBase).SetTimeout(10 * time.Second),
	}
}

func (n *Notifier) Notify(ctx context.Context, text string) {
	if n == nil || n.token == "" || n.chatID == "" {
		return
	}
	text = strings.TrimSpace(text)
	if r := []rune(text); len(r) > maxMessageLength {
		text = string(r[:maxMessageLength])
	}
	if text == "" {
		return
	}
	resp, err := n.hc.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"chat_id":                  n.chatID,
			"text":                     text,
			"disable_web_page_preview": true,
		}).
		Post("/bot" + n.token + "/sendMessage")
	if err != nil {
		log.Warn().Err(err).Msg("telegram send failed")
		return
	}
	if resp.IsError() {
		log.Warn().Int("status", resp.StatusCode()).Msg("telegram send rejected")
	}
}
