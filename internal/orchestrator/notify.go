package orchestrator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"publishplane/internal/store"
)

// Notifier delivers the pre-publish reminder for an upcoming schedule.
type Notifier interface {
	NotifyUpcoming(ctx context.Context, schedule store.ScheduledArticle) error
}

// LogNotifier writes the reminder to the structured log. It is the default
// when no webhook endpoint is configured.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n *LogNotifier) NotifyUpcoming(_ context.Context, schedule store.ScheduledArticle) error {
	n.Logger.Info("upcoming auto-publish",
		"schedule_id", schedule.ID,
		"article_id", schedule.ArticleID,
		"tenant_id", schedule.TenantID,
		"scheduled_for", schedule.ScheduledFor)
	return nil
}

// WebhookNotifier POSTs the reminder to an external endpoint, typically a
// chat integration owned by the editorial team.
type WebhookNotifier struct {
	endpoint   string
	httpClient *http.Client
}

func NewWebhookNotifier(endpoint string) *WebhookNotifier {
	return &WebhookNotifier{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type reminderPayload struct {
	Event        string    `json:"event"`
	ScheduleID   string    `json:"schedule_id"`
	ArticleID    string    `json:"article_id"`
	TenantID     string    `json:"tenant_id"`
	ScheduledFor time.Time `json:"scheduled_for"`
}

func (n *WebhookNotifier) NotifyUpcoming(ctx context.Context, schedule store.ScheduledArticle) error {
	payload := reminderPayload{
		Event:        "autopublish.upcoming",
		ScheduleID:   schedule.ID.String(),
		ArticleID:    schedule.ArticleID.String(),
		TenantID:     schedule.TenantID.String(),
		ScheduledFor: schedule.ScheduledFor,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal reminder: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create reminder request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to deliver reminder: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("reminder endpoint returned status %d", resp.StatusCode)
	}
	return nil
}
