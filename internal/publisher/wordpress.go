package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"publishplane/internal/autopublish"
)

// WordPress publishes through the WordPress REST API using an application
// password.
type WordPress struct {
	baseURL    string
	username   string
	appPass    string
	httpClient *http.Client
}

// NewWordPress creates a WordPress transport for the given site.
func NewWordPress(baseURL, username, appPassword string) *WordPress {
	return &WordPress{
		baseURL:  strings.TrimRight(baseURL, "/"),
		username: username,
		appPass:  appPassword,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// wpPost is the subset of the WordPress post schema we send.
type wpPost struct {
	Title   string            `json:"title"`
	Content string            `json:"content"`
	Excerpt string            `json:"excerpt,omitempty"`
	Slug    string            `json:"slug,omitempty"`
	Status  string            `json:"status"`
	Meta    map[string]string `json:"meta,omitempty"`
}

// Publish creates the post via POST /wp-json/wp/v2/posts.
func (w *WordPress) Publish(ctx context.Context, req autopublish.PublishRequest) (*Receipt, error) {
	body, err := json.Marshal(wpPost{
		Title:   req.Title,
		Content: req.Content,
		Excerpt: req.Excerpt,
		Slug:    req.Slug,
		Status:  req.Status,
		Meta: map[string]string{
			"meta_title":       req.MetaTitle,
			"meta_description": req.MetaDescription,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal post: %w", err)
	}

	url := w.baseURL + "/wp-json/wp/v2/posts"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.SetBasicAuth(w.username, w.appPass)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("publish request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &TransportError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(msg))}
	}

	// The response echoes the full post schema; only the ID and permalink
	// matter here.
	var created struct {
		ID   int64  `json:"id"`
		Link string `json:"link"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, fmt.Errorf("failed to decode publish response: %w", err)
	}

	return &Receipt{PostID: created.ID, URL: created.Link}, nil
}
