package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"publishplane/pkg/api"
)

// PublishClient handles API calls to the publishplane controller.
type PublishClient struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

// NewPublishClient creates a new client with the given base URL and token.
func NewPublishClient(baseURL, token string) *PublishClient {
	return &PublishClient{
		BaseURL: baseURL,
		Token:   token,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// APIError represents an error response from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Message)
}

// doJSON performs a request against the controller and decodes the JSON
// response into out (skipped when out is nil). Any non-2xx status becomes an
// APIError carrying the response body.
func (c *PublishClient) doJSON(method, path string, reqBody, out interface{}) error {
	var body io.Reader
	if reqBody != nil {
		bodyBytes, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(bodyBytes)
	}

	httpReq, err := http.NewRequest(method, c.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Add("Authorization", fmt.Sprintf("Bearer %s", c.Token))
	httpReq.Header.Add("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

// CreateTenant sends POST /tenants to provision a new tenant.
func (c *PublishClient) CreateTenant(req api.CreateTenantRequest) (*api.CreateTenantResponse, error) {
	var result api.CreateTenantResponse
	if err := c.doJSON(http.MethodPost, "/tenants", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// EvaluateArticle sends POST /articles/{id}/evaluate for a dry-run check.
func (c *PublishClient) EvaluateArticle(articleID string) (*api.EvaluateResponse, error) {
	var result api.EvaluateResponse
	if err := c.doJSON(http.MethodPost, fmt.Sprintf("/articles/%s/evaluate", articleID), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ScheduleArticle sends POST /articles/{id}/schedule to create a schedule.
func (c *PublishClient) ScheduleArticle(articleID string) (*api.ScheduleArticleResponse, error) {
	var result api.ScheduleArticleResponse
	if err := c.doJSON(http.MethodPost, fmt.Sprintf("/articles/%s/schedule", articleID), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetSchedule sends GET /schedules/{id} to retrieve schedule details.
func (c *PublishClient) GetSchedule(scheduleID string) (*api.ScheduleResponse, error) {
	var result api.ScheduleResponse
	if err := c.doJSON(http.MethodGet, fmt.Sprintf("/schedules/%s", scheduleID), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListSchedules sends GET /schedules with an optional status filter.
func (c *PublishClient) ListSchedules(status string) ([]api.ScheduleResponse, error) {
	path := "/schedules"
	if status != "" {
		path += "?status=" + status
	}
	var result api.ListSchedulesResponse
	if err := c.doJSON(http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return result.Schedules, nil
}

// CancelSchedule sends DELETE /schedules/{id}.
func (c *PublishClient) CancelSchedule(scheduleID string) error {
	return c.doJSON(http.MethodDelete, fmt.Sprintf("/schedules/%s", scheduleID), nil, nil)
}

// RetrySchedule sends POST /schedules/{id}/retry to re-arm a failed schedule.
func (c *PublishClient) RetrySchedule(scheduleID string) (*api.RetryScheduleResponse, error) {
	var result api.RetryScheduleResponse
	if err := c.doJSON(http.MethodPost, fmt.Sprintf("/schedules/%s/retry", scheduleID), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetConfig sends GET /config to retrieve the effective configuration.
func (c *PublishClient) GetConfig() (*api.ConfigResponse, error) {
	var result api.ConfigResponse
	if err := c.doJSON(http.MethodGet, "/config", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// UpdateConfig sends PUT /config with the override.
func (c *PublishClient) UpdateConfig(req api.ConfigOverrideRequest) (*api.ConfigResponse, error) {
	var result api.ConfigResponse
	if err := c.doJSON(http.MethodPut, "/config", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
