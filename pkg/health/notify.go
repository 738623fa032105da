package health

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rankpilot/rankpilot/internal/models"
)

// Notifier delivers an alert when a health check falls below the
// configured threshold.
type Notifier interface {
	Notify(ctx context.Context, report models.SEOHealthReport) error
}

// NopNotifier discards alerts.
type NopNotifier struct{}

// Notify does nothing.
func (NopNotifier) Notify(context.Context, models.SEOHealthReport) error { return nil }

// WebhookNotifier posts a JSON alert payload to a webhook URL.
type WebhookNotifier struct {
	URL    string
	Client *http.Client
}

// NewWebhookNotifier creates a WebhookNotifier with a 10s timeout.
func NewWebhookNotifier(url string) *WebhookNotifier {
	return &WebhookNotifier{
		URL:    url,
		Client: &http.Client{Timeout: 10 * time.Second},
	}
}

type alertPayload struct {
	Type         string    `json:"type"`
	ReportID     string    `json:"report_id"`
	OverallScore int       `json:"overall_score"`
	Status       string    `json:"status"`
	IssueCount   int       `json:"issue_count"`
	Timestamp    time.Time `json:"timestamp"`
}

// Notify posts the alert. A non-2xx response is an error; the caller
// logs it and moves on.
func (w *WebhookNotifier) Notify(ctx context.Context, report models.SEOHealthReport) error {
	payload := alertPayload{
		Type:         "seo_health_alert",
		ReportID:     report.ID,
		OverallScore: report.OverallScore,
		Status:       string(report.Status),
		IssueCount:   len(report.Issues),
		Timestamp:    report.Timestamp,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode alert: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build alert request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.Client.Do(req)
	if err != nil {
		return fmt.Errorf("alert request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("alert endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

// AutoFixer applies a best-effort remediation for an auto-fixable
// issue. Failures are logged by the monitor, never fatal to the report.
type AutoFixer interface {
	Fix(ctx context.Context, issue models.SEOIssue) error
}
