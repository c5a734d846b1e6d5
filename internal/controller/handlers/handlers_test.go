package handlers

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"publishplane/internal/autopublish"
	"publishplane/internal/store"
)

// Mock transaction
type mockTx struct{}

func (m *mockTx) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return nil, nil
}
func (m *mockTx) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return nil, nil
}
func (m *mockTx) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return nil
}

func (m *mockTx) Commit() error { return nil }

func (m *mockTx) Rollback() error { return nil }

// Mock Store
type mockStore struct {
	beginTxErr error
	pingErr    error

	// Tenant Hooks
	createTenantErr error

	// Article Hooks
	createArticleErr     error
	getArticleResp       *store.Article
	getArticleErr        error
	listReadyResp        []store.Article
	listReadyErr         error
	markArticlePubErr    error
	markedPublished      []uuid.UUID
	capturedArticle      *store.Article

	// Config Hooks
	configOverrideResp autopublish.ConfigOverride
	configOverrideErr  error
	upsertConfigErr    error
	capturedOverride   *autopublish.ConfigOverride

	// Schedule Hooks
	createScheduleErr  error
	capturedSchedule   *store.ScheduledArticle
	getScheduleResp    *store.ScheduledArticle
	getScheduleErr     error
	listSchedulesResp  []store.ScheduledArticle
	listSchedulesErr   error
	capturedFilter     store.ScheduleFilter
	cancelResp         bool
	cancelErr          error
	retryResp          bool
	retryErr           error
	capturedRetryTime  time.Time
}

func (m *mockStore) BeginTx(ctx context.Context) (store.Tx, error) {
	if m.beginTxErr != nil {
		return nil, m.beginTxErr
	}
	return &mockTx{}, nil
}

func (m *mockStore) Ping(ctx context.Context) error {
	return m.pingErr
}

func (m *mockStore) CreateTenant(ctx context.Context, tenant *store.Tenant, hashedKey string) error {
	return m.createTenantErr
}

func (m *mockStore) GetTenantByID(ctx context.Context, id uuid.UUID) (*store.Tenant, error) {
	return nil, nil // Handled by Auth Middleware, not Handlers
}

func (m *mockStore) GetTenantByAPIKeyHash(ctx context.Context, hash string) (*store.Tenant, error) {
	return nil, nil // Handled by Auth Middleware, not Handlers
}

func (m *mockStore) CreateArticle(ctx context.Context, tx store.DBTransaction, article *store.Article) error {
	m.capturedArticle = article
	return m.createArticleErr
}

func (m *mockStore) GetArticleByID(ctx context.Context, id uuid.UUID) (*store.Article, error) {
	return m.getArticleResp, m.getArticleErr
}

func (m *mockStore) ListReadyArticles(ctx context.Context, limit int) ([]store.Article, error) {
	return m.listReadyResp, m.listReadyErr
}

func (m *mockStore) MarkArticlePublished(ctx context.Context, tx store.DBTransaction, id uuid.UUID) error {
	m.markedPublished = append(m.markedPublished, id)
	return m.markArticlePubErr
}

func (m *mockStore) GetConfigOverride(ctx context.Context, tenantID uuid.UUID) (autopublish.ConfigOverride, error) {
	return m.configOverrideResp, m.configOverrideErr
}

func (m *mockStore) UpsertConfigOverride(ctx context.Context, tenantID uuid.UUID, override autopublish.ConfigOverride) error {
	m.capturedOverride = &override
	return m.upsertConfigErr
}

func (m *mockStore) CreateSchedule(ctx context.Context, tx store.DBTransaction, schedule *store.ScheduledArticle) error {
	m.capturedSchedule = schedule
	return m.createScheduleErr
}

func (m *mockStore) GetScheduleByID(ctx context.Context, id uuid.UUID) (*store.ScheduledArticle, error) {
	return m.getScheduleResp, m.getScheduleErr
}

func (m *mockStore) ListSchedules(ctx context.Context, tenantID uuid.UUID, filter store.ScheduleFilter) ([]store.ScheduledArticle, error) {
	m.capturedFilter = filter
	return m.listSchedulesResp, m.listSchedulesErr
}

func (m *mockStore) ClaimDueSchedules(ctx context.Context, now time.Time, limit int) ([]store.ScheduledArticle, error) {
	return nil, nil // Worker-only, never reached from handlers
}

func (m *mockStore) MarkPublished(ctx context.Context, tx store.DBTransaction, id uuid.UUID, wpPostID int64, publishedURL string) error {
	return nil
}

func (m *mockStore) RequeueForRetry(ctx context.Context, tx store.DBTransaction, id uuid.UUID, nextAttempt time.Time, errMsg string) error {
	return nil
}

func (m *mockStore) MarkFailed(ctx context.Context, tx store.DBTransaction, id uuid.UUID, errMsg string) error {
	return nil
}

func (m *mockStore) CancelSchedule(ctx context.Context, id uuid.UUID) (bool, error) {
	return m.cancelResp, m.cancelErr
}

func (m *mockStore) RetryFailedSchedule(ctx context.Context, id uuid.UUID, scheduledFor time.Time) (bool, error) {
	m.capturedRetryTime = scheduledFor
	return m.retryResp, m.retryErr
}

func (m *mockStore) ListAwaitingNotification(ctx context.Context, now time.Time, limit int) ([]store.ScheduledArticle, error) {
	return nil, nil
}

func (m *mockStore) MarkNotified(ctx context.Context, id uuid.UUID, at time.Time) error {
	return nil
}

func (m *mockStore) CountPending(ctx context.Context) (int64, error) {
	return 0, nil
}
