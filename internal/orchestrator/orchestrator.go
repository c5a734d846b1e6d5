// Package orchestrator contains the worker-side control loop for
// auto-publishing: it evaluates ready articles into schedules, claims due
// schedules, drives the publish transport, and applies retry backoff.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"publishplane/internal/autopublish"
	"publishplane/internal/logger"
	"publishplane/internal/publisher"
	"publishplane/internal/store"
)

// Store is the persistence surface the orchestrator needs.
type Store interface {
	ListReadyArticles(ctx context.Context, limit int) ([]store.Article, error)
	GetArticleByID(ctx context.Context, id uuid.UUID) (*store.Article, error)
	MarkArticlePublished(ctx context.Context, tx store.DBTransaction, id uuid.UUID) error
	CreateSchedule(ctx context.Context, tx store.DBTransaction, schedule *store.ScheduledArticle) error
	ClaimDueSchedules(ctx context.Context, now time.Time, limit int) ([]store.ScheduledArticle, error)
	MarkPublished(ctx context.Context, tx store.DBTransaction, id uuid.UUID, wpPostID int64, publishedURL string) error
	RequeueForRetry(ctx context.Context, tx store.DBTransaction, id uuid.UUID, nextAttempt time.Time, errMsg string) error
	MarkFailed(ctx context.Context, tx store.DBTransaction, id uuid.UUID, errMsg string) error
	ListAwaitingNotification(ctx context.Context, now time.Time, limit int) ([]store.ScheduledArticle, error)
	MarkNotified(ctx context.Context, id uuid.UUID, at time.Time) error
	GetConfigOverride(ctx context.Context, tenantID uuid.UUID) (autopublish.ConfigOverride, error)
}

// Config holds configuration for the orchestrator loop.
type Config struct {
	Concurrency  int
	PollInterval time.Duration
	MaxBackoff   time.Duration // Maximum backoff when nothing is due (default: 5m)
	BatchSize    int           // Max schedules claimed per poll
}

// Orchestrator runs the pull-loop that turns ready articles into published
// posts. All scheduling decisions are delegated to the per-tenant engine;
// the loop only moves state and time forward.
type Orchestrator struct {
	store     Store
	publisher publisher.Publisher
	notifier  Notifier
	logger    *slog.Logger
	config    Config
	now       func() time.Time
	done      chan struct{}
}

// New creates a new orchestrator.
func New(s Store, p publisher.Publisher, n Notifier, logger *slog.Logger, config Config) *Orchestrator {
	if config.Concurrency <= 0 {
		config.Concurrency = 1
	}
	if config.PollInterval <= 0 {
		config.PollInterval = 30 * time.Second
	}
	if config.MaxBackoff <= 0 {
		config.MaxBackoff = 5 * time.Minute
	}
	if config.BatchSize <= 0 {
		config.BatchSize = 10
	}
	if n == nil {
		n = &LogNotifier{Logger: logger}
	}

	return &Orchestrator{
		store:     s,
		publisher: p,
		notifier:  n,
		logger:    logger,
		config:    config,
		now:       time.Now,
		done:      make(chan struct{}),
	}
}

// Run starts the main pull-loop. It blocks until the context is cancelled.
// On SIGTERM, it stops claiming new work and allows in-flight publishes to
// finish.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.logger.Info("orchestrator starting", "concurrency", o.config.Concurrency)

	// Semaphore to limit concurrency
	sem := make(chan struct{}, o.config.Concurrency)
	var wg sync.WaitGroup

	// Channel to signal when a slot becomes available (adaptive polling)
	pollNow := make(chan struct{}, 1)

	// Current backoff duration (increases on idle polls, resets on work found)
	currentBackoff := o.config.PollInterval

	triggerPoll := func() {
		select {
		case pollNow <- struct{}{}:
		default:
			// Already a poll pending
		}
	}

	// Initial poll
	triggerPoll()

	for {
		select {
		case <-ctx.Done():
			o.logger.Info("context cancelled, waiting for in-flight publishes to finish")
			wg.Wait()
			close(o.done)
			return ctx.Err()

		case <-time.After(currentBackoff):
			triggerPoll()

		case <-pollNow:
			now := o.now()

			worked := o.scheduleReadyArticles(ctx, now)
			worked += o.sweepNotifications(ctx, now)

			availableSlots := o.config.Concurrency - len(sem)
			if availableSlots > o.config.BatchSize {
				availableSlots = o.config.BatchSize
			}
			if availableSlots <= 0 {
				continue
			}

			claimed, err := o.store.ClaimDueSchedules(ctx, now, availableSlots)
			if err != nil {
				o.logger.Error("claim due schedules failed", "error", err)
				continue
			}

			if len(claimed) == 0 && worked == 0 {
				// Idle poll - increase backoff (exponential, capped at MaxBackoff)
				currentBackoff = currentBackoff * 2
				if currentBackoff > o.config.MaxBackoff {
					currentBackoff = o.config.MaxBackoff
				}
				continue
			}

			// Found work - reset backoff to minimum
			currentBackoff = o.config.PollInterval

			if len(claimed) > 0 {
				o.logger.Info("claimed due schedules", "count", len(claimed))
			}

			for _, schedule := range claimed {
				// Acquire semaphore slot
				sem <- struct{}{}

				wg.Add(1)
				go func(sched store.ScheduledArticle) {
					defer wg.Done()
					defer func() {
						<-sem
						// A slot is free again - trigger immediate re-poll
						triggerPoll()
					}()
					o.publishOne(ctx, sched)
				}(schedule)
			}

			// If there are still slots available, poll again immediately
			if len(claimed) > 0 && len(claimed) < availableSlots {
				triggerPoll()
			}
		}
	}
}

// Done returns a channel that is closed when the orchestrator has fully stopped.
func (o *Orchestrator) Done() <-chan struct{} {
	return o.done
}

// scheduleReadyArticles evaluates ready, unscheduled articles and creates
// pending schedules for the eligible ones. Returns the number of schedules
// created.
func (o *Orchestrator) scheduleReadyArticles(ctx context.Context, now time.Time) int {
	articles, err := o.store.ListReadyArticles(ctx, o.config.BatchSize)
	if err != nil {
		o.logger.Error("list ready articles failed", "error", err)
		return 0
	}

	created := 0
	for _, article := range articles {
		engine, err := o.engineFor(ctx, article.TenantID)
		if err != nil {
			o.logger.Error("failed to build engine", "tenant_id", article.TenantID, "error", err)
			continue
		}

		result := engine.Evaluate(article.Snapshot(), now)
		if !result.Eligible {
			o.logger.Debug("article not eligible",
				"article_id", article.ID, "reasons", len(result.Reasons))
			continue
		}

		schedule := &store.ScheduledArticle{
			ID:           uuid.New(),
			ArticleID:    article.ID,
			TenantID:     article.TenantID,
			ScheduledFor: *result.SuggestedPublishDate,
			Status:       autopublish.SchedulePending,
			QualityScore: article.QualityScore,
			RiskLevel:    article.RiskLevel,
			RiskScore:    article.RiskScore,
			ReviewedBy:   article.ReviewedBy,
			ReviewedAt:   article.ReviewedAt,
			CreatedAt:    now.UTC(),
		}
		if err := o.store.CreateSchedule(ctx, nil, schedule); err != nil {
			o.logger.Error("failed to create schedule", "article_id", article.ID, "error", err)
			continue
		}

		o.logger.Info("article scheduled",
			"article_id", article.ID,
			"schedule_id", schedule.ID,
			"scheduled_for", schedule.ScheduledFor)
		created++
	}
	return created
}

// publishOne pushes a single claimed schedule through the transport and
// applies the success, retry, or permanent-failure transition. The claim
// already flipped the schedule to publishing, so this goroutine is the only
// publisher for it.
func (o *Orchestrator) publishOne(ctx context.Context, sched store.ScheduledArticle) {
	tracer := otel.Tracer("orchestrator")
	ctx, span := tracer.Start(ctx, "publish_article",
		trace.WithAttributes(
			attribute.String("schedule.id", sched.ID.String()),
			attribute.String("article.id", sched.ArticleID.String()),
			attribute.String("tenant.id", sched.TenantID.String()),
			attribute.Int("attempt", sched.Attempts),
		),
		trace.WithSpanKind(trace.SpanKindConsumer),
	)
	defer span.End()

	log := logger.WithSchedule(o.logger, sched.ID, sched.ArticleID)

	article, err := o.store.GetArticleByID(ctx, sched.ArticleID)
	if err != nil {
		span.RecordError(err)
		o.failOrRetry(ctx, sched, fmt.Sprintf("failed to load article: %v", err))
		return
	}

	validation := autopublish.ValidateContent(article.EditorialContent())
	if !validation.Valid {
		// Malformed content will not fix itself; no point burning retries.
		msg := fmt.Sprintf("article failed publish validation: %v", validation.Errors)
		log.Warn("publish validation failed", "errors", validation.Errors)
		if err := o.store.MarkFailed(ctx, nil, sched.ID, msg); err != nil {
			log.Error("failed to mark schedule failed", "error", err)
		}
		return
	}

	receipt, err := o.publisher.Publish(ctx, autopublish.PrepareForPublish(article.EditorialContent()))
	if err != nil {
		span.RecordError(err)
		log.Warn("publish attempt failed", "attempt", sched.Attempts, "error", err)
		o.failOrRetry(ctx, sched, err.Error())
		return
	}

	if err := o.store.MarkPublished(ctx, nil, sched.ID, receipt.PostID, receipt.URL); err != nil {
		log.Error("failed to mark schedule published", "error", err)
		return
	}
	if err := o.store.MarkArticlePublished(ctx, nil, sched.ArticleID); err != nil {
		log.Error("failed to mark article published", "error", err)
	}

	log.Info("article published", "post_id", receipt.PostID, "url", receipt.URL)
}

// failOrRetry decides what happens after a failed attempt. The claim
// already counted this attempt, so the backoff ladder is indexed by the
// number of completed attempts before it.
func (o *Orchestrator) failOrRetry(ctx context.Context, sched store.ScheduledArticle, errMsg string) {
	log := logger.WithSchedule(o.logger, sched.ID, sched.ArticleID)

	if autopublish.ShouldRetry(sched.Attempts, autopublish.DefaultMaxAttempts) {
		delay := autopublish.RetryDelay(sched.Attempts - 1)
		nextAttempt := o.now().Add(delay)
		if err := o.store.RequeueForRetry(ctx, nil, sched.ID, nextAttempt, errMsg); err != nil {
			log.Error("failed to requeue schedule", "error", err)
			return
		}
		log.Info("schedule requeued", "attempt", sched.Attempts, "next_attempt", nextAttempt)
		return
	}

	if err := o.store.MarkFailed(ctx, nil, sched.ID, errMsg); err != nil {
		log.Error("failed to mark schedule failed", "error", err)
		return
	}
	log.Warn("schedule permanently failed", "attempts", sched.Attempts, "error", errMsg)
}

// sweepNotifications fires the pre-publish reminder for schedules whose
// notification time has arrived. Returns the number of reminders sent.
func (o *Orchestrator) sweepNotifications(ctx context.Context, now time.Time) int {
	candidates, err := o.store.ListAwaitingNotification(ctx, now, o.config.BatchSize)
	if err != nil {
		o.logger.Error("list notification candidates failed", "error", err)
		return 0
	}

	sent := 0
	for _, sched := range candidates {
		engine, err := o.engineFor(ctx, sched.TenantID)
		if err != nil {
			o.logger.Error("failed to build engine", "tenant_id", sched.TenantID, "error", err)
			continue
		}
		if !engine.ShouldNotify(sched.ScheduledFor, now) {
			continue
		}

		if err := o.notifier.NotifyUpcoming(ctx, sched); err != nil {
			o.logger.Error("failed to send reminder", "schedule_id", sched.ID, "error", err)
			continue
		}
		if err := o.store.MarkNotified(ctx, sched.ID, now); err != nil {
			o.logger.Error("failed to mark schedule notified", "schedule_id", sched.ID, "error", err)
			continue
		}
		sent++
	}
	return sent
}

// engineFor builds the per-tenant engine from the default config merged
// with the tenant's stored override.
func (o *Orchestrator) engineFor(ctx context.Context, tenantID uuid.UUID) (*autopublish.Engine, error) {
	override, err := o.store.GetConfigOverride(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return autopublish.NewEngine(autopublish.DefaultConfig().Apply(override))
}
