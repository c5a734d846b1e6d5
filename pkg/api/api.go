// Package api contains shared JSON request/response structs.
// This package is shared between the CLI and Controller.
package api

import "time"

// CreateTenantRequest is the request body for creating a new tenant.
type CreateTenantRequest struct {
	Name           string `json:"name"`
	RateLimit      int    `json:"rate_limit,omitempty"`
	RateLimitBurst int    `json:"rate_limit_burst,omitempty"`
}

// CreateTenantResponse is the response body after creating a tenant.
type CreateTenantResponse struct {
	ID     string `json:"tenant_id"`
	Name   string `json:"name"`
	ApiKey string `json:"api_key"`
}

// CreateArticleRequest is the request body for registering an article with
// the scheduling plane.
type CreateArticleRequest struct {
	Title           string     `json:"title"`
	Content         string     `json:"content"`
	Excerpt         string     `json:"excerpt,omitempty"`
	Slug            string     `json:"slug,omitempty"`
	MetaTitle       string     `json:"meta_title,omitempty"`
	MetaDescription string     `json:"meta_description,omitempty"`
	Status          string     `json:"status"`
	QualityScore    *int       `json:"quality_score,omitempty"`
	RiskLevel       string     `json:"risk_level,omitempty"`
	RiskScore       *int       `json:"risk_score,omitempty"`
	ReviewedBy      *string    `json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty"`
}

// CreateArticleResponse is the response body after registering an article.
type CreateArticleResponse struct {
	ArticleID string `json:"article_id"`
}

// ArticleResponse represents an article in API responses.
type ArticleResponse struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Status       string     `json:"status"`
	QualityScore *int       `json:"quality_score,omitempty"`
	RiskLevel    string     `json:"risk_level,omitempty"`
	RiskScore    *int       `json:"risk_score,omitempty"`
	ReviewedBy   *string    `json:"reviewed_by,omitempty"`
	ReviewedAt   *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
}

// EligibilityReason is one failed auto-publish criterion.
type EligibilityReason struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// EvaluateResponse is the response body of a dry-run eligibility check.
type EvaluateResponse struct {
	ArticleID            string              `json:"article_id"`
	Eligible             bool                `json:"eligible"`
	Reasons              []EligibilityReason `json:"reasons,omitempty"`
	SuggestedPublishDate *time.Time          `json:"suggested_publish_date,omitempty"`
	WithinWindowNow      bool                `json:"within_window_now"`
}

// ScheduleArticleResponse is the response body after scheduling an article.
type ScheduleArticleResponse struct {
	ScheduleID   string    `json:"schedule_id"`
	ScheduledFor time.Time `json:"scheduled_for"`
}

// ScheduleDisplay is the human-readable rendering of a schedule for
// dashboard and CLI status lines.
type ScheduleDisplay struct {
	DisplayDate string `json:"display_date"`
	DisplayTime string `json:"display_time"`
	StatusLabel string `json:"status_label"`
	StatusColor string `json:"status_color"`
	CanCancel   bool   `json:"can_cancel"`
}

// ScheduleResponse represents a schedule in API responses.
type ScheduleResponse struct {
	ID           string           `json:"id"`
	ArticleID    string           `json:"article_id"`
	ScheduledFor time.Time        `json:"scheduled_for"`
	Status       string           `json:"status"`
	QualityScore *int             `json:"quality_score,omitempty"`
	RiskLevel    string           `json:"risk_level,omitempty"`
	ReviewedBy   *string          `json:"reviewed_by,omitempty"`
	WPPostID     *int64           `json:"wp_post_id,omitempty"`
	PublishedURL *string          `json:"published_url,omitempty"`
	ErrorMessage *string          `json:"error_message,omitempty"`
	Attempts     int              `json:"attempts"`
	NotifiedAt   *time.Time       `json:"notified_at,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	Display      *ScheduleDisplay `json:"display,omitempty"`
}

// ListSchedulesResponse is the response body for listing schedules.
type ListSchedulesResponse struct {
	Schedules []ScheduleResponse `json:"schedules"`
}

// RetryScheduleResponse is the response body after re-arming a failed schedule.
type RetryScheduleResponse struct {
	ScheduleID   string    `json:"schedule_id"`
	ScheduledFor time.Time `json:"scheduled_for"`
}

// PublishingWindow is one recurring weekly slot in the tenant calendar.
type PublishingWindow struct {
	DayOfWeek int `json:"day_of_week"`
	StartHour int `json:"start_hour"`
	EndHour   int `json:"end_hour"`
}

// ConfigOverrideRequest is the request body for updating a tenant's
// auto-publish settings. Omitted fields keep the default.
type ConfigOverrideRequest struct {
	DefaultDaysAfterReady    *int               `json:"default_days_after_ready,omitempty"`
	RequireHumanReview       *bool              `json:"require_human_review,omitempty"`
	MinimumQualityScore      *int               `json:"minimum_quality_score,omitempty"`
	MaximumRiskLevel         *string            `json:"maximum_risk_level,omitempty"`
	NotifyBeforePublish      *bool              `json:"notify_before_publish,omitempty"`
	NotifyHoursBeforePublish *int               `json:"notify_hours_before_publish,omitempty"`
	PublishingWindows        []PublishingWindow `json:"publishing_windows,omitempty"`
	Timezone                 *string            `json:"timezone,omitempty"`
}

// ConfigResponse is the response body for config queries: the effective
// config after the tenant's override is merged over the default.
type ConfigResponse struct {
	DefaultDaysAfterReady    int                `json:"default_days_after_ready"`
	RequireHumanReview       bool               `json:"require_human_review"`
	MinimumQualityScore      int                `json:"minimum_quality_score"`
	MaximumRiskLevel         string             `json:"maximum_risk_level"`
	NotifyBeforePublish      bool               `json:"notify_before_publish"`
	NotifyHoursBeforePublish int                `json:"notify_hours_before_publish"`
	PublishingWindows        []PublishingWindow `json:"publishing_windows"`
	Timezone                 string             `json:"timezone"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error   string              `json:"error"`
	Code    string              `json:"code,omitempty"`
	Details string              `json:"details,omitempty"`
	Reasons []EligibilityReason `json:"reasons,omitempty"`
}
