package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"publishplane/internal/autopublish"
	"publishplane/internal/controller/middleware"
	"publishplane/internal/store"
	"publishplane/pkg/api"
)

// CreateArticle handles POST /articles.
// It registers an article produced upstream with the scheduling plane.
func (h *Handlers) CreateArticle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.CreateArticleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.httpError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Title == "" || req.Content == "" {
		h.httpError(w, "Title and Content are required", http.StatusBadRequest)
		return
	}
	if req.RiskLevel != "" && !autopublish.RiskLevel(req.RiskLevel).Known() {
		h.httpError(w, "Unknown risk level", http.StatusBadRequest)
		return
	}

	tenantID, ok := middleware.TenantIDFromContext(ctx)
	if !ok {
		h.httpError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	status := req.Status
	if status == "" {
		status = "draft"
	}

	article := &store.Article{
		ID:              uuid.New(),
		TenantID:        tenantID,
		Title:           req.Title,
		Content:         req.Content,
		Excerpt:         req.Excerpt,
		Slug:            req.Slug,
		MetaTitle:       req.MetaTitle,
		MetaDescription: req.MetaDescription,
		Status:          status,
		QualityScore:    req.QualityScore,
		RiskLevel:       req.RiskLevel,
		RiskScore:       req.RiskScore,
		ReviewedBy:      req.ReviewedBy,
		ReviewedAt:      req.ReviewedAt,
		CreatedAt:       time.Now().UTC(),
	}

	if err := h.store.CreateArticle(ctx, nil, article); err != nil {
		h.httpError(w, "Failed to create article", http.StatusInternalServerError)
		return
	}

	h.respondJson(w, http.StatusCreated, api.CreateArticleResponse{
		ArticleID: article.ID.String(),
	})
}

// GetArticle handles GET /articles/{id}.
func (h *Handlers) GetArticle(w http.ResponseWriter, r *http.Request) {
	article, ok := h.articleForRequest(w, r)
	if !ok {
		return
	}

	h.respondJson(w, http.StatusOK, api.ArticleResponse{
		ID:           article.ID.String(),
		Title:        article.Title,
		Status:       article.Status,
		QualityScore: article.QualityScore,
		RiskLevel:    article.RiskLevel,
		RiskScore:    article.RiskScore,
		ReviewedBy:   article.ReviewedBy,
		ReviewedAt:   article.ReviewedAt,
		CreatedAt:    article.CreatedAt,
		UpdatedAt:    article.UpdatedAt,
	})
}

// EvaluateArticle handles POST /articles/{id}/evaluate.
// It is a dry run: the eligibility verdict with every failed criterion, plus
// the publish date the engine would pick, without creating a schedule.
func (h *Handlers) EvaluateArticle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	article, ok := h.articleForRequest(w, r)
	if !ok {
		return
	}

	engine, err := h.engineFor(ctx, article.TenantID)
	if err != nil {
		h.httpError(w, "Failed to load configuration", http.StatusInternalServerError)
		return
	}

	now := time.Now()
	result := engine.Evaluate(article.Snapshot(), now)

	h.respondJson(w, http.StatusOK, api.EvaluateResponse{
		ArticleID:            article.ID.String(),
		Eligible:             result.Eligible,
		Reasons:              toReasons(result.Reasons),
		SuggestedPublishDate: result.SuggestedPublishDate,
		WithinWindowNow:      engine.IsWithinPublishingWindow(now),
	})
}

// articleForRequest loads the article in the path and enforces tenant
// ownership. It writes the error response itself when the lookup fails.
func (h *Handlers) articleForRequest(w http.ResponseWriter, r *http.Request) (*store.Article, bool) {
	ctx := r.Context()

	articleID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.httpError(w, "Invalid article id", http.StatusBadRequest)
		return nil, false
	}

	tenantID, ok := middleware.TenantIDFromContext(ctx)
	if !ok {
		h.httpError(w, "Unauthorized", http.StatusUnauthorized)
		return nil, false
	}

	article, err := h.store.GetArticleByID(ctx, articleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.httpError(w, "Article not found", http.StatusNotFound)
			return nil, false
		}
		h.httpError(w, "Failed to load article", http.StatusInternalServerError)
		return nil, false
	}
	if article.TenantID != tenantID {
		h.httpError(w, "Article not found", http.StatusNotFound)
		return nil, false
	}
	return article, true
}
