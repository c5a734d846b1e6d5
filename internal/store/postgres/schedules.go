package postgres

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"publishplane/internal/autopublish"
	"publishplane/internal/store"
)

const scheduleColumns = `id, article_id, tenant_id, scheduled_for, status, quality_score, risk_level,
		risk_score, reviewed_by, reviewed_at, wp_post_id, published_url, error_message, attempts,
		notified_at, created_at`

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func (s *Store) CreateSchedule(ctx context.Context, tx store.DBTransaction, schedule *store.ScheduledArticle) error {
	executor := s.getExecutor(tx)

	query := `
		INSERT INTO scheduled_articles (id, article_id, tenant_id, scheduled_for, status, quality_score,
			risk_level, risk_score, reviewed_by, reviewed_at, attempts, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := executor.ExecContext(ctx, query,
		schedule.ID,
		schedule.ArticleID,
		schedule.TenantID,
		schedule.ScheduledFor,
		schedule.Status,
		schedule.QualityScore,
		nullableString(schedule.RiskLevel),
		schedule.RiskScore,
		schedule.ReviewedBy,
		schedule.ReviewedAt,
		schedule.Attempts,
		schedule.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert schedule %s: %w", schedule.ID, err)
	}
	return nil
}

func (s *Store) GetScheduleByID(ctx context.Context, id uuid.UUID) (*store.ScheduledArticle, error) {
	query := fmt.Sprintf("SELECT %s FROM scheduled_articles WHERE id = $1", scheduleColumns)
	return scanSchedule(s.db.QueryRowContext(ctx, query, id))
}

// ListSchedules returns a tenant's schedules, newest first, narrowed by the
// filter's optional status and date bounds.
func (s *Store) ListSchedules(ctx context.Context, tenantID uuid.UUID, filter store.ScheduleFilter) ([]store.ScheduledArticle, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	builder := psql.
		Select(scheduleColumns).
		From("scheduled_articles").
		Where(sq.Eq{"tenant_id": tenantID}).
		OrderBy("created_at DESC").
		Limit(uint64(limit))

	if filter.Status != "" {
		builder = builder.Where(sq.Eq{"status": filter.Status})
	}
	if filter.From != nil {
		builder = builder.Where(sq.GtOrEq{"scheduled_for": *filter.From})
	}
	if filter.To != nil {
		builder = builder.Where(sq.Lt{"scheduled_for": *filter.To})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build schedule query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}
	defer rows.Close()

	var schedules []store.ScheduledArticle
	for rows.Next() {
		sa, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan schedule: %w", err)
		}
		schedules = append(schedules, *sa)
	}
	return schedules, rows.Err()
}

// ClaimDueSchedules claims up to 'limit' due pending schedules atomically
// using SELECT ... FOR UPDATE SKIP LOCKED, flipping each to publishing and
// incrementing its attempt count. The conditional flip is the
// at-most-one-publisher guard: a schedule another worker already claimed is
// simply skipped.
func (s *Store) ClaimDueSchedules(ctx context.Context, now time.Time, limit int) ([]store.ScheduledArticle, error) {
	if limit <= 0 {
		limit = 1
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	query := `
		WITH due AS (
			SELECT id
			FROM scheduled_articles
			WHERE status = 'pending' AND scheduled_for <= $1
			ORDER BY scheduled_for ASC
			FOR UPDATE SKIP LOCKED
			LIMIT $2
		)
		UPDATE scheduled_articles sa
		SET status = 'publishing', attempts = sa.attempts + 1
		FROM due
		WHERE sa.id = due.id
		RETURNING sa.id, sa.article_id, sa.tenant_id, sa.scheduled_for, sa.status, sa.quality_score,
			sa.risk_level, sa.risk_score, sa.reviewed_by, sa.reviewed_at, sa.wp_post_id,
			sa.published_url, sa.error_message, sa.attempts, sa.notified_at, sa.created_at
	`

	rows, err := tx.QueryContext(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("claim due schedules query failed: %w", err)
	}
	defer rows.Close()

	var claimed []store.ScheduledArticle
	for rows.Next() {
		sa, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("claim due schedules scan failed: %w", err)
		}
		claimed = append(claimed, *sa)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("claim due schedules rows error: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return claimed, nil
}

func (s *Store) MarkPublished(ctx context.Context, tx store.DBTransaction, id uuid.UUID, wpPostID int64, publishedURL string) error {
	executor := s.getExecutor(tx)
	_, err := executor.ExecContext(ctx, `
		UPDATE scheduled_articles
		SET status = 'published', wp_post_id = $1, published_url = $2, error_message = NULL
		WHERE id = $3 AND status = 'publishing'
	`, wpPostID, publishedURL, id)
	return err
}

func (s *Store) RequeueForRetry(ctx context.Context, tx store.DBTransaction, id uuid.UUID, nextAttempt time.Time, errMsg string) error {
	executor := s.getExecutor(tx)
	_, err := executor.ExecContext(ctx, `
		UPDATE scheduled_articles
		SET status = 'pending', scheduled_for = $1, error_message = $2
		WHERE id = $3 AND status = 'publishing'
	`, nextAttempt, errMsg, id)
	return err
}

func (s *Store) MarkFailed(ctx context.Context, tx store.DBTransaction, id uuid.UUID, errMsg string) error {
	executor := s.getExecutor(tx)
	_, err := executor.ExecContext(ctx, `
		UPDATE scheduled_articles
		SET status = 'failed', error_message = $1
		WHERE id = $2 AND status = 'publishing'
	`, errMsg, id)
	return err
}

// CancelSchedule flips pending -> cancelled. The WHERE clause is the
// compare-and-swap: zero rows affected means the schedule had already left
// pending and the cancellation is rejected.
func (s *Store) CancelSchedule(ctx context.Context, id uuid.UUID) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE scheduled_articles
		SET status = 'cancelled'
		WHERE id = $1 AND status = 'pending'
	`, id)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// RetryFailedSchedule re-queues a permanently failed schedule with a fresh
// attempt budget, typically after a human fixed the underlying problem.
func (s *Store) RetryFailedSchedule(ctx context.Context, id uuid.UUID, scheduledFor time.Time) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE scheduled_articles
		SET status = 'pending', scheduled_for = $1, attempts = 0, error_message = NULL
		WHERE id = $2 AND status = 'failed'
	`, scheduledFor, id)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// ListAwaitingNotification returns candidates for the pre-publish reminder
// sweep. The per-tenant notification window is applied by the caller, which
// has the merged tenant config; this query only narrows to pending,
// unnotified schedules still ahead of now.
func (s *Store) ListAwaitingNotification(ctx context.Context, now time.Time, limit int) ([]store.ScheduledArticle, error) {
	if limit <= 0 {
		limit = 100
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM scheduled_articles
		WHERE status = 'pending' AND notified_at IS NULL AND scheduled_for > $1
		ORDER BY scheduled_for ASC
		LIMIT $2
	`, scheduleColumns)

	rows, err := s.db.QueryContext(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notification candidates: %w", err)
	}
	defer rows.Close()

	var schedules []store.ScheduledArticle
	for rows.Next() {
		sa, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan schedule: %w", err)
		}
		schedules = append(schedules, *sa)
	}
	return schedules, rows.Err()
}

func (s *Store) MarkNotified(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE scheduled_articles
		SET notified_at = $1
		WHERE id = $2
	`, at, id)
	return err
}

func (s *Store) CountPending(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM scheduled_articles WHERE status = 'pending'").Scan(&count)
	return count, err
}

func scanSchedule(row rowScanner) (*store.ScheduledArticle, error) {
	var sa store.ScheduledArticle
	var status string
	var riskLevel *string

	err := row.Scan(
		&sa.ID,
		&sa.ArticleID,
		&sa.TenantID,
		&sa.ScheduledFor,
		&status,
		&sa.QualityScore,
		&riskLevel,
		&sa.RiskScore,
		&sa.ReviewedBy,
		&sa.ReviewedAt,
		&sa.WPPostID,
		&sa.PublishedURL,
		&sa.ErrorMessage,
		&sa.Attempts,
		&sa.NotifiedAt,
		&sa.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	sa.Status = autopublish.ScheduleStatus(status)
	if riskLevel != nil {
		sa.RiskLevel = *riskLevel
	}
	return &sa, nil
}
