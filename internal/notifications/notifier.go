package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gabriel/manga-site-adapters/internal/connectors"
)

type Message struct {
	Title   string         `json:"title"`
	Body    string         `json:"body"`
	Context map[string]any `json:"context,omitempty"`
}

type Notifier interface {
	Notify(ctx context.Context, message Message) error
}

func SourceDown(status connectors.HealthStatus, checkedAt time.Time) Message {
	return Message{
		Title: fmt.Sprintf("%s is unreachable", status.Name),
		Body:  status.Error,
		Context: map[string]any{
			"source":    status.Key,
			"kind":      status.Kind,
			"checkedAt": checkedAt.UTC().Format(time.RFC3339),
		},
	}
}

func SourceRecovered(status connectors.HealthStatus, checkedAt time.Time) Message {
	return Message{
		Title: fmt.Sprintf("%s is reachable again", status.Name),
		Context: map[string]any{
			"source":    status.Key,
			"kind":      status.Kind,
			"checkedAt": checkedAt.UTC().Format(time.RFC3339),
		},
	}
}

type NoopNotifier struct{}

func (n NoopNotifier) Notify(_ context.Context, _ Message) error {
	return nil
}

// LogNotifier writes messages to the structured log, which is the only
// channel when no webhook is configured.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

func (l *LogNotifier) Notify(_ context.Context, message Message) error {
	attrs := []any{"title", message.Title}
	if message.Body != "" {
		attrs = append(attrs, "body", message.Body)
	}
	for key, value := range message.Context {
		attrs = append(attrs, key, value)
	}
	l.logger.Warn("notification", attrs...)
	return nil
}

type WebhookNotifier struct {
	url    string
	client *http.Client
}

func NewWebhookNotifier(webhookURL string) (*WebhookNotifier, error) {
	trimmed := strings.TrimSpace(webhookURL)
	if trimmed == "" {
		return nil, fmt.Errorf("webhook url is required")
	}
	if !strings.HasPrefix(trimmed, "http://") && !strings.HasPrefix(trimmed, "https://") {
		return nil, fmt.Errorf("webhook url must be http(s)")
	}
	return &WebhookNotifier{
		url: trimmed,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

func (w *WebhookNotifier) Notify(ctx context.Context, message Message) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("marshal webhook message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("send webhook notification: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", res.StatusCode)
	}

	return nil
}

type MultiNotifier struct {
	notifiers []Notifier
}

func NewMultiNotifier(items ...Notifier) *MultiNotifier {
	filtered := make([]Notifier, 0, len(items))
	for _, item := range items {
		if item != nil {
			filtered = append(filtered, item)
		}
	}
	return &MultiNotifier{notifiers: filtered}
}

// Notify delivers to every notifier even when an earlier one fails.
func (m *MultiNotifier) Notify(ctx context.Context, message Message) error {
	var errs []error
	for _, notifier := range m.notifiers {
		if err := notifier.Notify(ctx, message); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
