package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"publishplane/internal/store"
)

const articleColumns = `id, tenant_id, title, content, excerpt, slug, meta_title, meta_description,
		status, quality_score, risk_level, risk_score, reviewed_by, reviewed_at, created_at, updated_at`

func (s *Store) CreateArticle(ctx context.Context, tx store.DBTransaction, article *store.Article) error {
	executor := s.getExecutor(tx)

	query := `
		INSERT INTO articles (id, tenant_id, title, content, excerpt, slug, meta_title, meta_description,
			status, quality_score, risk_level, risk_score, reviewed_by, reviewed_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := executor.ExecContext(ctx, query,
		article.ID,
		article.TenantID,
		article.Title,
		article.Content,
		article.Excerpt,
		article.Slug,
		article.MetaTitle,
		article.MetaDescription,
		article.Status,
		article.QualityScore,
		nullableString(article.RiskLevel),
		article.RiskScore,
		article.ReviewedBy,
		article.ReviewedAt,
		article.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert article %s: %w", article.ID, err)
	}
	return nil
}

func (s *Store) GetArticleByID(ctx context.Context, id uuid.UUID) (*store.Article, error) {
	query := fmt.Sprintf("SELECT %s FROM articles WHERE id = $1", articleColumns)
	return scanArticle(s.db.QueryRowContext(ctx, query, id))
}

// ListReadyArticles returns ready articles with no live schedule. An
// article already published, pending, or mid-publish must not be scheduled
// again.
func (s *Store) ListReadyArticles(ctx context.Context, limit int) ([]store.Article, error) {
	if limit <= 0 {
		limit = 50
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM articles a
		WHERE a.status = 'ready'
		AND NOT EXISTS (
			SELECT 1 FROM scheduled_articles sa
			WHERE sa.article_id = a.id
			AND sa.status IN ('pending', 'publishing', 'published')
		)
		ORDER BY a.created_at ASC
		LIMIT $1
	`, articleColumns)

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list ready articles: %w", err)
	}
	defer rows.Close()

	var articles []store.Article
	for rows.Next() {
		a, err := scanArticleRows(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, *a)
	}
	return articles, rows.Err()
}

func (s *Store) MarkArticlePublished(ctx context.Context, tx store.DBTransaction, id uuid.UUID) error {
	executor := s.getExecutor(tx)
	_, err := executor.ExecContext(ctx, `
		UPDATE articles
		SET status = 'published', updated_at = NOW()
		WHERE id = $1
	`, id)
	return err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanArticle(row rowScanner) (*store.Article, error) {
	var a store.Article
	var riskLevel *string

	err := row.Scan(
		&a.ID,
		&a.TenantID,
		&a.Title,
		&a.Content,
		&a.Excerpt,
		&a.Slug,
		&a.MetaTitle,
		&a.MetaDescription,
		&a.Status,
		&a.QualityScore,
		&riskLevel,
		&a.RiskScore,
		&a.ReviewedBy,
		&a.ReviewedAt,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if riskLevel != nil {
		a.RiskLevel = *riskLevel
	}
	return &a, nil
}

func scanArticleRows(rows rowScanner) (*store.Article, error) {
	a, err := scanArticle(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan article: %w", err)
	}
	return a, nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
