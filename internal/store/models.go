// Package store contains the database layer for publishplane.
package store

import (
	"time"

	"github.com/google/uuid"

	"publishplane/internal/autopublish"
)

// Tenant represents a tenant in the multi-tenant system.
// All operations must be scoped by TenantID.
type Tenant struct {
	ID             uuid.UUID
	Name           string
	RateLimit      int
	RateLimitBurst int
	CreatedAt      time.Time
}

// Article is an editorial article owned by a tenant. The content pipeline
// (drafting, scoring, review) lives upstream; this store tracks the fields
// the scheduling engine consumes plus the editorial payload pushed to the
// publish transport.
type Article struct {
	ID              uuid.UUID
	TenantID        uuid.UUID
	Title           string
	Content         string
	Excerpt         string
	Slug            string
	MetaTitle       string
	MetaDescription string
	Status          string // draft, review, ready, published
	QualityScore    *int
	RiskLevel       string
	RiskScore       *int
	ReviewedBy      *string
	ReviewedAt      *time.Time
	CreatedAt       time.Time
	UpdatedAt       *time.Time
}

// Snapshot projects the article into the engine's eligibility input.
func (a *Article) Snapshot() autopublish.ArticleSnapshot {
	return autopublish.ArticleSnapshot{
		Status:       a.Status,
		QualityScore: a.QualityScore,
		RiskLevel:    autopublish.RiskLevel(a.RiskLevel),
		ReviewedAt:   a.ReviewedAt,
	}
}

// EditorialContent projects the article into the publish payload input.
func (a *Article) EditorialContent() autopublish.ArticleContent {
	return autopublish.ArticleContent{
		Title:           a.Title,
		Content:         a.Content,
		Excerpt:         a.Excerpt,
		Slug:            a.Slug,
		MetaTitle:       a.MetaTitle,
		MetaDescription: a.MetaDescription,
	}
}

// ScheduledArticle is one auto-publish schedule for an article. The
// evaluation pass creates it pending; the claim that flips it to publishing
// is the mutual-exclusion guard for the publish attempt.
type ScheduledArticle struct {
	ID           uuid.UUID
	ArticleID    uuid.UUID
	TenantID     uuid.UUID
	ScheduledFor time.Time
	Status       autopublish.ScheduleStatus
	QualityScore *int
	RiskLevel    string
	RiskScore    *int
	ReviewedBy   *string
	ReviewedAt   *time.Time
	WPPostID     *int64
	PublishedURL *string
	ErrorMessage *string
	Attempts     int
	NotifiedAt   *time.Time
	CreatedAt    time.Time
}
