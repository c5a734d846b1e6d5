package publisher

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"publishplane/internal/autopublish"
)

// Webhook publishes by POSTing the payload to an arbitrary endpoint, signed
// with an HMAC so the receiver can verify origin.
type Webhook struct {
	endpoint   string
	secret     string
	httpClient *http.Client
}

// NewWebhook creates a webhook transport.
func NewWebhook(endpoint, secret string) *Webhook {
	return &Webhook{
		endpoint: endpoint,
		secret:   secret,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Publish sends the payload and expects a JSON body with post_id and url.
func (w *Webhook) Publish(ctx context.Context, req autopublish.PublishRequest) (*Receipt, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, w.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if w.secret != "" {
		httpReq.Header.Set("X-Publishplane-Signature", Sign(body, w.secret))
	}

	resp, err := w.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("publish request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusAccepted {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &TransportError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(msg))}
	}

	var receipt struct {
		PostID int64  `json:"post_id"`
		URL    string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&receipt); err != nil {
		return nil, fmt.Errorf("failed to decode publish response: %w", err)
	}

	return &Receipt{PostID: receipt.PostID, URL: receipt.URL}, nil
}

// Sign returns the hex HMAC-SHA256 of the body under the shared secret.
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
