package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spacewatch/checker/internal/config"
	"github.com/spacewatch/checker/internal/model"
)

// WebhookChannel delivers alerts to a single configured webhook target,
// formatting the payload per vendor the way the teacher's webhook.go does.
type WebhookChannel struct {
	Target config.WebhookTarget
	Client *http.Client
}

// NewWebhookChannel builds a WebhookChannel with a sane default HTTP client.
func NewWebhookChannel(target config.WebhookTarget) *WebhookChannel {
	return &WebhookChannel{Target: target, Client: &http.Client{Timeout: 10 * time.Second}}
}

func (w *WebhookChannel) Send(ctx context.Context, a model.Alert) error {
	url := w.Target.URL()
	if url == "" {
		return fmt.Errorf("webhook %q: no URL configured", w.Target.ID)
	}

	var body []byte
	var err error
	switch w.Target.Type {
	case "slack":
		body, err = slackPayload(a)
	case "teams":
		body, err = teamsPayload(a)
	case "pagerduty", "http":
		body, err = json.Marshal(map[string]interface{}{"alert": a})
	default:
		return fmt.Errorf("webhook %q: unknown type %q", w.Target.ID, w.Target.Type)
	}
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	return w.post(ctx, url, body)
}

func slackPayload(a model.Alert) ([]byte, error) {
	return json.Marshal(map[string]string{
		"text": fmt.Sprintf("*%s* %s\n%s", urgencyLabel(a.Urgency), a.Title, a.Body),
	})
}

func teamsPayload(a model.Alert) ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"@type":      "MessageCard",
		"@context":   "http://schema.org/extensions",
		"themeColor": urgencyColor(a.Urgency),
		"summary":    a.Title,
		"title":      "Space Weather Alert: " + a.Title,
		"text":       a.Body,
	})
}

func (w *WebhookChannel) post(ctx context.Context, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.Client.Do(req)
	if err != nil {
		return fmt.Errorf("http post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned HTTP %d", resp.StatusCode)
	}
	return nil
}

func urgencyLabel(u model.Urgency) string {
	switch u {
	case model.UrgencyCritical:
		return "[CRITICAL]"
	case model.UrgencyHigh:
		return "[HIGH]"
	case model.UrgencyModerate:
		return "[MODERATE]"
	default:
		return "[INFO]"
	}
}

func urgencyColor(u model.Urgency) string {
	switch u {
	case model.UrgencyCritical:
		return "FF4F6A"
	case model.UrgencyHigh:
		return "FF8A3D"
	case model.UrgencyModerate:
		return "FFD23D"
	default:
		return "00D4FF"
	}
}
