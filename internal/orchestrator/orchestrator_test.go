// Package orchestrator contains the worker-side control loop for auto-publishing.
package orchestrator

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"publishplane/internal/autopublish"
	"publishplane/internal/publisher"
	"publishplane/internal/store"
)

// MockStore implements Store for testing.
type MockStore struct {
	mu sync.Mutex

	ListReadyArticlesFunc        func(ctx context.Context, limit int) ([]store.Article, error)
	GetArticleByIDFunc           func(ctx context.Context, id uuid.UUID) (*store.Article, error)
	ClaimDueSchedulesFunc        func(ctx context.Context, now time.Time, limit int) ([]store.ScheduledArticle, error)
	GetConfigOverrideFunc        func(ctx context.Context, tenantID uuid.UUID) (autopublish.ConfigOverride, error)
	ListAwaitingNotificationFunc func(ctx context.Context, now time.Time, limit int) ([]store.ScheduledArticle, error)

	// Track method calls
	CreatedSchedules []store.ScheduledArticle
	PublishedCalls   []PublishedCall
	RequeueCalls     []RequeueCall
	FailedCalls      []FailedCall
	NotifiedIDs      []uuid.UUID
	ArticlePublished []uuid.UUID
}

type PublishedCall struct {
	ScheduleID   uuid.UUID
	WPPostID     int64
	PublishedURL string
}

type RequeueCall struct {
	ScheduleID  uuid.UUID
	NextAttempt time.Time
	ErrMsg      string
}

type FailedCall struct {
	ScheduleID uuid.UUID
	ErrMsg     string
}

func (m *MockStore) ListReadyArticles(ctx context.Context, limit int) ([]store.Article, error) {
	if m.ListReadyArticlesFunc != nil {
		return m.ListReadyArticlesFunc(ctx, limit)
	}
	return nil, nil
}

func (m *MockStore) GetArticleByID(ctx context.Context, id uuid.UUID) (*store.Article, error) {
	if m.GetArticleByIDFunc != nil {
		return m.GetArticleByIDFunc(ctx, id)
	}
	return nil, errors.New("article not found")
}

func (m *MockStore) MarkArticlePublished(ctx context.Context, tx store.DBTransaction, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ArticlePublished = append(m.ArticlePublished, id)
	return nil
}

func (m *MockStore) CreateSchedule(ctx context.Context, tx store.DBTransaction, schedule *store.ScheduledArticle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreatedSchedules = append(m.CreatedSchedules, *schedule)
	return nil
}

func (m *MockStore) ClaimDueSchedules(ctx context.Context, now time.Time, limit int) ([]store.ScheduledArticle, error) {
	if m.ClaimDueSchedulesFunc != nil {
		return m.ClaimDueSchedulesFunc(ctx, now, limit)
	}
	return nil, nil
}

func (m *MockStore) MarkPublished(ctx context.Context, tx store.DBTransaction, id uuid.UUID, wpPostID int64, publishedURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PublishedCalls = append(m.PublishedCalls, PublishedCall{ScheduleID: id, WPPostID: wpPostID, PublishedURL: publishedURL})
	return nil
}

func (m *MockStore) RequeueForRetry(ctx context.Context, tx store.DBTransaction, id uuid.UUID, nextAttempt time.Time, errMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequeueCalls = append(m.RequeueCalls, RequeueCall{ScheduleID: id, NextAttempt: nextAttempt, ErrMsg: errMsg})
	return nil
}

func (m *MockStore) MarkFailed(ctx context.Context, tx store.DBTransaction, id uuid.UUID, errMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FailedCalls = append(m.FailedCalls, FailedCall{ScheduleID: id, ErrMsg: errMsg})
	return nil
}

func (m *MockStore) ListAwaitingNotification(ctx context.Context, now time.Time, limit int) ([]store.ScheduledArticle, error) {
	if m.ListAwaitingNotificationFunc != nil {
		return m.ListAwaitingNotificationFunc(ctx, now, limit)
	}
	return nil, nil
}

func (m *MockStore) MarkNotified(ctx context.Context, id uuid.UUID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.NotifiedIDs = append(m.NotifiedIDs, id)
	return nil
}

func (m *MockStore) GetConfigOverride(ctx context.Context, tenantID uuid.UUID) (autopublish.ConfigOverride, error) {
	if m.GetConfigOverrideFunc != nil {
		return m.GetConfigOverrideFunc(ctx, tenantID)
	}
	return autopublish.ConfigOverride{}, nil
}

// MockPublisher implements publisher.Publisher for testing.
type MockPublisher struct {
	PublishFunc func(ctx context.Context, req autopublish.PublishRequest) (*publisher.Receipt, error)

	mu    sync.Mutex
	Calls []autopublish.PublishRequest
}

func (m *MockPublisher) Publish(ctx context.Context, req autopublish.PublishRequest) (*publisher.Receipt, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, req)
	m.mu.Unlock()
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, req)
	}
	return &publisher.Receipt{PostID: 1, URL: "https://example.com/p/1"}, nil
}

// MockNotifier implements Notifier for testing.
type MockNotifier struct {
	Err error

	mu    sync.Mutex
	Calls []uuid.UUID
}

func (m *MockNotifier) NotifyUpcoming(ctx context.Context, schedule store.ScheduledArticle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, schedule.ID)
	return m.Err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestOrchestrator(s Store, p publisher.Publisher, n Notifier) *Orchestrator {
	return New(s, p, n, testLogger(), Config{
		Concurrency:  2,
		PollInterval: 10 * time.Millisecond,
		BatchSize:    10,
	})
}

func intPtr(v int) *int { return &v }

func timePtr(t time.Time) *time.Time { return &t }

// readyArticle returns an article that passes every eligibility gate under
// the default config.
func readyArticle() store.Article {
	reviewed := time.Date(2025, 1, 6, 10, 0, 0, 0, time.UTC)
	return store.Article{
		ID:           uuid.New(),
		TenantID:     uuid.New(),
		Title:        "Quarterly traffic report",
		Content:      strings.Repeat("Readers keep coming back for the details. ", 10),
		Status:       "ready",
		QualityScore: intPtr(90),
		RiskLevel:    "low",
		ReviewedAt:   timePtr(reviewed),
	}
}

// Test: New() defaults
func TestNew_Defaults(t *testing.T) {
	o := New(&MockStore{}, &MockPublisher{}, nil, testLogger(), Config{})

	if o.config.Concurrency != 1 {
		t.Errorf("expected default concurrency=1, got %d", o.config.Concurrency)
	}
	if o.config.PollInterval != 30*time.Second {
		t.Errorf("expected default poll interval=30s, got %v", o.config.PollInterval)
	}
	if o.config.MaxBackoff != 5*time.Minute {
		t.Errorf("expected default max backoff=5m, got %v", o.config.MaxBackoff)
	}
	if o.config.BatchSize != 10 {
		t.Errorf("expected default batch size=10, got %d", o.config.BatchSize)
	}
	if _, ok := o.notifier.(*LogNotifier); !ok {
		t.Errorf("expected default notifier to be LogNotifier, got %T", o.notifier)
	}
}

// Test: scheduleReadyArticles
func TestScheduleReadyArticles_CreatesPendingSchedule(t *testing.T) {
	article := readyArticle()
	mockStore := &MockStore{
		ListReadyArticlesFunc: func(ctx context.Context, limit int) ([]store.Article, error) {
			return []store.Article{article}, nil
		},
	}

	o := newTestOrchestrator(mockStore, &MockPublisher{}, nil)

	// The engine handles the slot search; this only checks the wiring.
	now := time.Date(2025, 1, 6, 15, 0, 0, 0, time.UTC)
	created := o.scheduleReadyArticles(context.Background(), now)

	if created != 1 {
		t.Fatalf("expected 1 schedule created, got %d", created)
	}
	sched := mockStore.CreatedSchedules[0]
	if sched.ArticleID != article.ID {
		t.Error("schedule created for wrong article")
	}
	if sched.TenantID != article.TenantID {
		t.Error("schedule created for wrong tenant")
	}
	if sched.Status != autopublish.SchedulePending {
		t.Errorf("expected pending status, got %s", sched.Status)
	}
	if sched.ScheduledFor.IsZero() {
		t.Error("expected scheduled_for to be set")
	}
	if !sched.ScheduledFor.After(now) {
		t.Errorf("expected scheduled_for after now, got %v", sched.ScheduledFor)
	}
}

func TestScheduleReadyArticles_SkipsIneligible(t *testing.T) {
	article := readyArticle()
	article.QualityScore = intPtr(40)

	mockStore := &MockStore{
		ListReadyArticlesFunc: func(ctx context.Context, limit int) ([]store.Article, error) {
			return []store.Article{article}, nil
		},
	}

	o := newTestOrchestrator(mockStore, &MockPublisher{}, nil)
	created := o.scheduleReadyArticles(context.Background(), time.Date(2025, 1, 6, 15, 0, 0, 0, time.UTC))

	if created != 0 {
		t.Errorf("expected no schedules created, got %d", created)
	}
	if len(mockStore.CreatedSchedules) != 0 {
		t.Errorf("expected no CreateSchedule calls, got %d", len(mockStore.CreatedSchedules))
	}
}

func TestScheduleReadyArticles_AppliesTenantOverride(t *testing.T) {
	article := readyArticle()
	// Default minimum is 75; the tenant lowers it to 60.
	article.QualityScore = intPtr(65)

	mockStore := &MockStore{
		ListReadyArticlesFunc: func(ctx context.Context, limit int) ([]store.Article, error) {
			return []store.Article{article}, nil
		},
		GetConfigOverrideFunc: func(ctx context.Context, tenantID uuid.UUID) (autopublish.ConfigOverride, error) {
			minScore := 60
			return autopublish.ConfigOverride{MinimumQualityScore: &minScore}, nil
		},
	}

	o := newTestOrchestrator(mockStore, &MockPublisher{}, nil)
	created := o.scheduleReadyArticles(context.Background(), time.Date(2025, 1, 6, 15, 0, 0, 0, time.UTC))

	if created != 1 {
		t.Fatalf("expected 1 schedule created under override, got %d", created)
	}
}

// Test: publishOne
func TestPublishOne_Success(t *testing.T) {
	article := readyArticle()
	mockStore := &MockStore{
		GetArticleByIDFunc: func(ctx context.Context, id uuid.UUID) (*store.Article, error) {
			return &article, nil
		},
	}
	pub := &MockPublisher{
		PublishFunc: func(ctx context.Context, req autopublish.PublishRequest) (*publisher.Receipt, error) {
			if req.Status != "publish" {
				t.Errorf("expected status 'publish', got %q", req.Status)
			}
			if req.Title != article.Title {
				t.Errorf("expected title %q, got %q", article.Title, req.Title)
			}
			return &publisher.Receipt{PostID: 42, URL: "https://example.com/p/42"}, nil
		},
	}

	o := newTestOrchestrator(mockStore, pub, nil)
	sched := store.ScheduledArticle{
		ID:        uuid.New(),
		ArticleID: article.ID,
		TenantID:  article.TenantID,
		Attempts:  1,
	}
	o.publishOne(context.Background(), sched)

	if len(mockStore.PublishedCalls) != 1 {
		t.Fatalf("expected 1 MarkPublished call, got %d", len(mockStore.PublishedCalls))
	}
	call := mockStore.PublishedCalls[0]
	if call.ScheduleID != sched.ID {
		t.Error("MarkPublished called with wrong schedule ID")
	}
	if call.WPPostID != 42 {
		t.Errorf("expected post ID 42, got %d", call.WPPostID)
	}
	if call.PublishedURL != "https://example.com/p/42" {
		t.Errorf("unexpected published URL %q", call.PublishedURL)
	}
	if len(mockStore.ArticlePublished) != 1 || mockStore.ArticlePublished[0] != article.ID {
		t.Error("expected article to be marked published")
	}
}

func TestPublishOne_TransportErrorRequeuesWithBackoff(t *testing.T) {
	article := readyArticle()
	mockStore := &MockStore{
		GetArticleByIDFunc: func(ctx context.Context, id uuid.UUID) (*store.Article, error) {
			return &article, nil
		},
	}
	pub := &MockPublisher{
		PublishFunc: func(ctx context.Context, req autopublish.PublishRequest) (*publisher.Receipt, error) {
			return nil, &publisher.TransportError{StatusCode: 503, Message: "service unavailable"}
		},
	}

	o := newTestOrchestrator(mockStore, pub, nil)
	now := time.Date(2025, 1, 6, 15, 0, 0, 0, time.UTC)
	o.now = func() time.Time { return now }

	// First attempt just happened (claim set attempts=1).
	sched := store.ScheduledArticle{ID: uuid.New(), ArticleID: article.ID, Attempts: 1}
	o.publishOne(context.Background(), sched)

	if len(mockStore.RequeueCalls) != 1 {
		t.Fatalf("expected 1 requeue, got %d", len(mockStore.RequeueCalls))
	}
	call := mockStore.RequeueCalls[0]
	if want := now.Add(5 * time.Minute); !call.NextAttempt.Equal(want) {
		t.Errorf("expected next attempt at %v, got %v", want, call.NextAttempt)
	}
	if !strings.Contains(call.ErrMsg, "503") {
		t.Errorf("expected error message to carry the status, got %q", call.ErrMsg)
	}
	if len(mockStore.FailedCalls) != 0 {
		t.Error("expected no MarkFailed call on a retryable attempt")
	}
}

func TestPublishOne_BackoffGrowsWithAttempts(t *testing.T) {
	article := readyArticle()
	mockStore := &MockStore{
		GetArticleByIDFunc: func(ctx context.Context, id uuid.UUID) (*store.Article, error) {
			return &article, nil
		},
	}
	pub := &MockPublisher{
		PublishFunc: func(ctx context.Context, req autopublish.PublishRequest) (*publisher.Receipt, error) {
			return nil, errors.New("connection reset")
		},
	}

	o := newTestOrchestrator(mockStore, pub, nil)
	now := time.Date(2025, 1, 6, 15, 0, 0, 0, time.UTC)
	o.now = func() time.Time { return now }

	// Third attempt just failed: the wait before the fourth is 45 minutes.
	sched := store.ScheduledArticle{ID: uuid.New(), ArticleID: article.ID, Attempts: 3}
	o.publishOne(context.Background(), sched)

	if len(mockStore.RequeueCalls) != 1 {
		t.Fatalf("expected 1 requeue, got %d", len(mockStore.RequeueCalls))
	}
	if want := now.Add(45 * time.Minute); !mockStore.RequeueCalls[0].NextAttempt.Equal(want) {
		t.Errorf("expected next attempt at %v, got %v", want, mockStore.RequeueCalls[0].NextAttempt)
	}
}

func TestPublishOne_ExhaustedAttemptsMarksFailed(t *testing.T) {
	article := readyArticle()
	mockStore := &MockStore{
		GetArticleByIDFunc: func(ctx context.Context, id uuid.UUID) (*store.Article, error) {
			return &article, nil
		},
	}
	pub := &MockPublisher{
		PublishFunc: func(ctx context.Context, req autopublish.PublishRequest) (*publisher.Receipt, error) {
			return nil, errors.New("still down")
		},
	}

	o := newTestOrchestrator(mockStore, pub, nil)

	// Fifth attempt just failed; the budget is spent.
	sched := store.ScheduledArticle{ID: uuid.New(), ArticleID: article.ID, Attempts: 5}
	o.publishOne(context.Background(), sched)

	if len(mockStore.RequeueCalls) != 0 {
		t.Errorf("expected no requeue after max attempts, got %d", len(mockStore.RequeueCalls))
	}
	if len(mockStore.FailedCalls) != 1 {
		t.Fatalf("expected 1 MarkFailed call, got %d", len(mockStore.FailedCalls))
	}
	if mockStore.FailedCalls[0].ErrMsg != "still down" {
		t.Errorf("unexpected failure message %q", mockStore.FailedCalls[0].ErrMsg)
	}
}

func TestPublishOne_InvalidContentFailsWithoutRetry(t *testing.T) {
	article := readyArticle()
	article.Title = "" // fails publish validation

	mockStore := &MockStore{
		GetArticleByIDFunc: func(ctx context.Context, id uuid.UUID) (*store.Article, error) {
			return &article, nil
		},
	}
	pub := &MockPublisher{}

	o := newTestOrchestrator(mockStore, pub, nil)
	sched := store.ScheduledArticle{ID: uuid.New(), ArticleID: article.ID, Attempts: 1}
	o.publishOne(context.Background(), sched)

	if len(pub.Calls) != 0 {
		t.Error("expected no transport call for invalid content")
	}
	if len(mockStore.RequeueCalls) != 0 {
		t.Error("expected no retry for invalid content")
	}
	if len(mockStore.FailedCalls) != 1 {
		t.Fatalf("expected 1 MarkFailed call, got %d", len(mockStore.FailedCalls))
	}
	if !strings.Contains(mockStore.FailedCalls[0].ErrMsg, "validation") {
		t.Errorf("expected validation failure message, got %q", mockStore.FailedCalls[0].ErrMsg)
	}
}

// Test: sweepNotifications
func TestSweepNotifications_FiresInsideLeadWindow(t *testing.T) {
	scheduledFor := time.Date(2025, 1, 7, 14, 0, 0, 0, time.UTC)
	sched := store.ScheduledArticle{
		ID:           uuid.New(),
		ArticleID:    uuid.New(),
		TenantID:     uuid.New(),
		ScheduledFor: scheduledFor,
		Status:       autopublish.SchedulePending,
	}

	mockStore := &MockStore{
		ListAwaitingNotificationFunc: func(ctx context.Context, now time.Time, limit int) ([]store.ScheduledArticle, error) {
			return []store.ScheduledArticle{sched}, nil
		},
	}
	notifier := &MockNotifier{}

	o := newTestOrchestrator(mockStore, &MockPublisher{}, notifier)

	// One hour before publish: inside the default 24h lead window.
	sent := o.sweepNotifications(context.Background(), scheduledFor.Add(-1*time.Hour))

	if sent != 1 {
		t.Fatalf("expected 1 reminder sent, got %d", sent)
	}
	if len(notifier.Calls) != 1 || notifier.Calls[0] != sched.ID {
		t.Error("reminder sent for wrong schedule")
	}
	if len(mockStore.NotifiedIDs) != 1 || mockStore.NotifiedIDs[0] != sched.ID {
		t.Error("expected schedule to be marked notified")
	}
}

func TestSweepNotifications_TooEarly(t *testing.T) {
	scheduledFor := time.Date(2025, 1, 10, 14, 0, 0, 0, time.UTC)
	sched := store.ScheduledArticle{
		ID:           uuid.New(),
		TenantID:     uuid.New(),
		ScheduledFor: scheduledFor,
	}

	mockStore := &MockStore{
		ListAwaitingNotificationFunc: func(ctx context.Context, now time.Time, limit int) ([]store.ScheduledArticle, error) {
			return []store.ScheduledArticle{sched}, nil
		},
	}
	notifier := &MockNotifier{}

	o := newTestOrchestrator(mockStore, &MockPublisher{}, notifier)

	// 25 hours out: still ahead of the lead window.
	sent := o.sweepNotifications(context.Background(), scheduledFor.Add(-25*time.Hour))

	if sent != 0 {
		t.Errorf("expected no reminders, got %d", sent)
	}
	if len(notifier.Calls) != 0 {
		t.Error("expected no notifier calls")
	}
	if len(mockStore.NotifiedIDs) != 0 {
		t.Error("schedule must not be marked notified")
	}
}

func TestSweepNotifications_NotifierErrorLeavesUnmarked(t *testing.T) {
	scheduledFor := time.Date(2025, 1, 7, 14, 0, 0, 0, time.UTC)
	sched := store.ScheduledArticle{
		ID:           uuid.New(),
		TenantID:     uuid.New(),
		ScheduledFor: scheduledFor,
	}

	mockStore := &MockStore{
		ListAwaitingNotificationFunc: func(ctx context.Context, now time.Time, limit int) ([]store.ScheduledArticle, error) {
			return []store.ScheduledArticle{sched}, nil
		},
	}
	notifier := &MockNotifier{Err: errors.New("webhook down")}

	o := newTestOrchestrator(mockStore, &MockPublisher{}, notifier)
	sent := o.sweepNotifications(context.Background(), scheduledFor.Add(-1*time.Hour))

	if sent != 0 {
		t.Errorf("expected 0 reminders sent, got %d", sent)
	}
	// Unmarked, so the next sweep retries the delivery.
	if len(mockStore.NotifiedIDs) != 0 {
		t.Error("schedule must not be marked notified after a delivery failure")
	}
}

// Test: Run() loop behavior
func TestRun_GracefulShutdown(t *testing.T) {
	o := newTestOrchestrator(&MockStore{}, &MockPublisher{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- o.Run(ctx)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(1 * time.Second):
		t.Error("Run() did not exit in time")
	}
}

func TestRun_DoneChannelClosed(t *testing.T) {
	o := newTestOrchestrator(&MockStore{}, &MockPublisher{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go o.Run(ctx)

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-o.Done():
		// Success - channel was closed
	case <-time.After(1 * time.Second):
		t.Error("Done() channel was not closed after shutdown")
	}
}

func TestRun_PublishesClaimedSchedules(t *testing.T) {
	article := readyArticle()

	var claimed bool
	var mu sync.Mutex
	mockStore := &MockStore{
		GetArticleByIDFunc: func(ctx context.Context, id uuid.UUID) (*store.Article, error) {
			return &article, nil
		},
		ClaimDueSchedulesFunc: func(ctx context.Context, now time.Time, limit int) ([]store.ScheduledArticle, error) {
			mu.Lock()
			defer mu.Unlock()
			if claimed {
				return nil, nil
			}
			claimed = true
			return []store.ScheduledArticle{
				{ID: uuid.New(), ArticleID: article.ID, TenantID: article.TenantID, Attempts: 1},
			}, nil
		},
	}

	o := newTestOrchestrator(mockStore, &MockPublisher{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go o.Run(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		mockStore.mu.Lock()
		done := len(mockStore.PublishedCalls) == 1
		mockStore.mu.Unlock()
		if done {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	<-o.Done()

	if len(mockStore.PublishedCalls) != 1 {
		t.Fatalf("expected 1 published schedule, got %d", len(mockStore.PublishedCalls))
	}
}
