// File: internal/infra/adapters/notify/webhook_notifier.go
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"driving-school-platform/internal/domain/ports/adapter"
)

var _ adapter.Notifier = (*WebhookNotifier)(nil)

// WebhookNotifier posts workflow events as JSON to a configured endpoint.
// Delivery is fire-and-forget: a failed post is logged and dropped, it
// never blocks or fails the workflow that emitted it.
type WebhookNotifier struct {
	url    string
	client *http.Client
	log    *zerolog.Logger
}

func NewWebhookNotifier(url string, logger *zerolog.Logger) *WebhookNotifier {
	return &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
		log:    logger,
	}
}

func (n *WebhookNotifier) Notify(ctx context.Context, ev adapter.Event) {
	body, err := json.Marshal(map[string]any{
		"type":       string(ev.Type),
		"tenant_id":  ev.TenantID,
		"request_id": ev.RequestID,
		"payload":    ev.Payload,
		"sent_at":    time.Now().UTC(),
	})
	if err != nil {
		n.log.Error().Err(err).Str("type", string(ev.Type)).Msg("marshal webhook event")
		return
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		n.log.Error().Err(err).Msg("build webhook request")
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		n.log.Warn().Err(err).Str("type", string(ev.Type)).Msg("webhook delivery failed")
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		n.log.Warn().Int("status", resp.StatusCode).Str("type", string(ev.Type)).Msg("webhook rejected")
	}
}
