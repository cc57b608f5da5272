// Package notify delivers admin alerts through the Telegram Bot API.
// Deliveries run on the worker pool so request handlers never wait on
// Telegram; a failed send is logged and dropped.
package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/enaya12q/smartlabs/internal/worker"
)

const defaultAPIBase = "https://api.telegram.org"

type Notifier struct {
	apiBase string
	token   string
	chatID  string
	http    *http.Client
	wp      *worker.Pool
}

type Option func(*Notifier)

// WithAPIBase overrides the Telegram endpoint (tests point it at a stub).
func WithAPIBase(base string) Option {
	return func(n *Notifier) { n.apiBase = base }
}

func New(token, chatID string, wp *worker.Pool, opts ...Option) *Notifier {
	n := &Notifier{
		apiBase: defaultAPIBase,
		token:   token,
		chatID:  chatID,
		http:    &http.Client{Timeout: 10 * time.Second},
		wp:      wp,
	}
	for _, o := range opts {
		o(n)
	}
	return n
}

// NotifyAdmin queues an HTML-formatted message to the admin chat. No-op
// when the bot is not configured.
func (n *Notifier) NotifyAdmin(text string) {
	if n.token == "" || n.chatID == "" {
		return
	}
	n.wp.Submit(func() {
		if err := n.send(text); err != nil {
			slog.Error("telegram notify", "err", err)
		}
	})
}

func (n *Notifier) send(text string) error {
	payload, err := json.Marshal(map[string]string{
		"chat_id":    n.chatID,
		"text":       text,
		"parse_mode": "HTML",
	})
	if err != nil {
		return err
	}
	url := fmt.Sprintf("%s/bot%s/sendMessage", n.apiBase, n.token)
	resp, err := n.http.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram sendMessage: status %d", resp.StatusCode)
	}
	return nil
}
