package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"publishplane/internal/autopublish"
)

// DBTransaction defines the methods shared by *sql.DB and *sql.Tx
// This allows us to pass either a connection pool or an active transaction to the repository methods.
type DBTransaction interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type Tx interface {
	DBTransaction
	Commit() error
	Rollback() error
}

// TenantStore handles retrieving tenant information for authentication.
type TenantStore interface {
	// CreateTenant inserts a new tenant to the database
	CreateTenant(ctx context.Context, tenant *Tenant, hashedKey string) error

	// GetTenantByID returns a tenant by its ID.
	GetTenantByID(ctx context.Context, id uuid.UUID) (*Tenant, error)

	// GetTenantByAPIKeyHash returns a tenant by its API key hash.
	GetTenantByAPIKeyHash(ctx context.Context, hash string) (*Tenant, error)
}

// ArticleStore handles the persistence of articles.
type ArticleStore interface {
	// CreateArticle inserts a new article to the database.
	CreateArticle(ctx context.Context, tx DBTransaction, article *Article) error

	// GetArticleByID returns an article by its ID.
	GetArticleByID(ctx context.Context, id uuid.UUID) (*Article, error)

	// ListReadyArticles returns ready articles that do not have a live
	// (pending, publishing, or published) schedule yet.
	ListReadyArticles(ctx context.Context, limit int) ([]Article, error)

	// MarkArticlePublished transitions the article's editorial status after
	// a successful publish.
	MarkArticlePublished(ctx context.Context, tx DBTransaction, id uuid.UUID) error
}

// ConfigStore handles per-tenant auto-publish configuration overrides.
// Overrides merge shallowly over the engine default at read time.
type ConfigStore interface {
	// GetConfigOverride returns the tenant's override. A tenant with no row
	// gets a zero override, which resolves to the default config.
	GetConfigOverride(ctx context.Context, tenantID uuid.UUID) (autopublish.ConfigOverride, error)

	// UpsertConfigOverride stores the tenant's override.
	UpsertConfigOverride(ctx context.Context, tenantID uuid.UUID, override autopublish.ConfigOverride) error
}

// ScheduleFilter narrows ListSchedules.
type ScheduleFilter struct {
	Status autopublish.ScheduleStatus
	From   *time.Time
	To     *time.Time
	Limit  int
}

// ScheduleStore handles the persistence of auto-publish schedules and their
// status transitions. Transition methods returning a bool report whether the
// compare-and-swap matched; false means another actor got there first (or
// the schedule was in a different state), and the caller must not proceed.
type ScheduleStore interface {
	// CreateSchedule inserts a new pending schedule.
	CreateSchedule(ctx context.Context, tx DBTransaction, schedule *ScheduledArticle) error

	// GetScheduleByID returns a schedule by its ID.
	GetScheduleByID(ctx context.Context, id uuid.UUID) (*ScheduledArticle, error)

	// ListSchedules returns a tenant's schedules, newest first.
	ListSchedules(ctx context.Context, tenantID uuid.UUID, filter ScheduleFilter) ([]ScheduledArticle, error)

	// ClaimDueSchedules atomically claims up to 'limit' due pending
	// schedules, flipping them to publishing and incrementing attempts.
	// Implementations must use SELECT ... FOR UPDATE SKIP LOCKED semantics
	// so each schedule is claimed by at most one worker.
	ClaimDueSchedules(ctx context.Context, now time.Time, limit int) ([]ScheduledArticle, error)

	// MarkPublished transitions publishing -> published and records the
	// transport receipt.
	MarkPublished(ctx context.Context, tx DBTransaction, id uuid.UUID, wpPostID int64, publishedURL string) error

	// RequeueForRetry transitions publishing -> pending with a new publish
	// time, keeping the attempt count.
	RequeueForRetry(ctx context.Context, tx DBTransaction, id uuid.UUID, nextAttempt time.Time, errMsg string) error

	// MarkFailed transitions publishing -> failed permanently.
	MarkFailed(ctx context.Context, tx DBTransaction, id uuid.UUID, errMsg string) error

	// CancelSchedule transitions pending -> cancelled. Returns false when
	// the schedule is no longer pending; cancellation is illegal once
	// publishing has started.
	CancelSchedule(ctx context.Context, id uuid.UUID) (bool, error)

	// RetryFailedSchedule transitions failed -> pending with a fresh attempt
	// budget and publish time. Returns false unless the schedule is failed.
	RetryFailedSchedule(ctx context.Context, id uuid.UUID, scheduledFor time.Time) (bool, error)

	// ListAwaitingNotification returns pending, not yet notified schedules
	// whose publish time is still ahead of now.
	ListAwaitingNotification(ctx context.Context, now time.Time, limit int) ([]ScheduledArticle, error)

	// MarkNotified records that the pre-publish reminder fired.
	MarkNotified(ctx context.Context, id uuid.UUID, at time.Time) error

	// CountPending tracks how many schedules are waiting to publish.
	CountPending(ctx context.Context) (int64, error)
}
