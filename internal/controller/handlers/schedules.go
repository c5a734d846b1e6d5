package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"publishplane/internal/autopublish"
	"publishplane/internal/controller/middleware"
	"publishplane/internal/store"
	"publishplane/pkg/api"
)

// ScheduleArticle handles POST /articles/{id}/schedule.
// It runs the eligibility check and, when it passes, creates a pending
// schedule at the engine's suggested publish date. An ineligible article
// gets a 422 carrying every failed criterion.
func (h *Handlers) ScheduleArticle(w http.ResponseWriter, r *http.Request) {
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
	if !result.Eligible {
		h.respondJson(w, http.StatusUnprocessableEntity, api.ErrorResponse{
			Error:   "Article is not eligible for auto-publish",
			Code:    "422",
			Reasons: toReasons(result.Reasons),
		})
		return
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

	if err := h.store.CreateSchedule(ctx, nil, schedule); err != nil {
		h.httpError(w, "Failed to create schedule", http.StatusInternalServerError)
		return
	}

	h.respondJson(w, http.StatusCreated, api.ScheduleArticleResponse{
		ScheduleID:   schedule.ID.String(),
		ScheduledFor: schedule.ScheduledFor,
	})
}

// ListSchedules handles GET /schedules.
// Optional query params: status, from, to, limit.
func (h *Handlers) ListSchedules(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tenantID, ok := middleware.TenantIDFromContext(ctx)
	if !ok {
		h.httpError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	filter, err := scheduleFilterFromQuery(r)
	if err != nil {
		h.httpError(w, err.Error(), http.StatusBadRequest)
		return
	}

	schedules, err := h.store.ListSchedules(ctx, tenantID, filter)
	if err != nil {
		h.httpError(w, "Failed to list schedules", http.StatusInternalServerError)
		return
	}

	resp := api.ListSchedulesResponse{Schedules: make([]api.ScheduleResponse, 0, len(schedules))}
	for _, s := range schedules {
		resp.Schedules = append(resp.Schedules, toScheduleResponse(&s, nil))
	}
	h.respondJson(w, http.StatusOK, resp)
}

// GetSchedule handles GET /schedules/{id}.
// The response carries the display record rendered in the tenant's timezone.
func (h *Handlers) GetSchedule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	schedule, ok := h.scheduleForRequest(w, r)
	if !ok {
		return
	}

	// Display rendering survives a broken override; it falls back to UTC.
	var loc *time.Location
	if engine, err := h.engineFor(ctx, schedule.TenantID); err == nil {
		loc = engine.Location()
	}
	display := autopublish.FormatScheduled(schedule.ScheduledFor, schedule.Status, loc)

	h.respondJson(w, http.StatusOK, toScheduleResponse(schedule, &display))
}

// CancelSchedule handles DELETE /schedules/{id}.
// Only pending schedules can be cancelled; once the worker claims one it is
// past the point of no return and the request gets a 409.
func (h *Handlers) CancelSchedule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	schedule, ok := h.scheduleForRequest(w, r)
	if !ok {
		return
	}

	cancelled, err := h.store.CancelSchedule(ctx, schedule.ID)
	if err != nil {
		h.httpError(w, "Failed to cancel schedule", http.StatusInternalServerError)
		return
	}
	if !cancelled {
		h.httpError(w, "Schedule is no longer pending", http.StatusConflict)
		return
	}

	h.respondJson(w, http.StatusNoContent, nil)
}

// RetrySchedule handles POST /schedules/{id}/retry.
// It re-arms a permanently failed schedule with a fresh attempt budget at
// the next publishing slot.
func (h *Handlers) RetrySchedule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	schedule, ok := h.scheduleForRequest(w, r)
	if !ok {
		return
	}

	engine, err := h.engineFor(ctx, schedule.TenantID)
	if err != nil {
		h.httpError(w, "Failed to load configuration", http.StatusInternalServerError)
		return
	}

	scheduledFor := engine.FindNextPublishingSlot(time.Now().In(engine.Location()))

	retried, err := h.store.RetryFailedSchedule(ctx, schedule.ID, scheduledFor)
	if err != nil {
		h.httpError(w, "Failed to retry schedule", http.StatusInternalServerError)
		return
	}
	if !retried {
		h.httpError(w, "Schedule is not in a failed state", http.StatusConflict)
		return
	}

	h.respondJson(w, http.StatusOK, api.RetryScheduleResponse{
		ScheduleID:   schedule.ID.String(),
		ScheduledFor: scheduledFor,
	})
}

// scheduleForRequest loads the schedule in the path and enforces tenant
// ownership. It writes the error response itself when the lookup fails.
func (h *Handlers) scheduleForRequest(w http.ResponseWriter, r *http.Request) (*store.ScheduledArticle, bool) {
	ctx := r.Context()

	scheduleID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.httpError(w, "Invalid schedule id", http.StatusBadRequest)
		return nil, false
	}

	tenantID, ok := middleware.TenantIDFromContext(ctx)
	if !ok {
		h.httpError(w, "Unauthorized", http.StatusUnauthorized)
		return nil, false
	}

	schedule, err := h.store.GetScheduleByID(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.httpError(w, "Schedule not found", http.StatusNotFound)
			return nil, false
		}
		h.httpError(w, "Failed to load schedule", http.StatusInternalServerError)
		return nil, false
	}
	if schedule.TenantID != tenantID {
		h.httpError(w, "Schedule not found", http.StatusNotFound)
		return nil, false
	}
	return schedule, true
}

func scheduleFilterFromQuery(r *http.Request) (store.ScheduleFilter, error) {
	var filter store.ScheduleFilter

	if status := r.URL.Query().Get("status"); status != "" {
		filter.Status = autopublish.ScheduleStatus(status)
	}
	if from := r.URL.Query().Get("from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			return filter, errors.New("invalid 'from' timestamp, want RFC3339")
		}
		filter.From = &t
	}
	if to := r.URL.Query().Get("to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			return filter, errors.New("invalid 'to' timestamp, want RFC3339")
		}
		filter.To = &t
	}
	return filter, nil
}

func toScheduleResponse(s *store.ScheduledArticle, display *autopublish.ScheduleDisplay) api.ScheduleResponse {
	resp := api.ScheduleResponse{
		ID:           s.ID.String(),
		ArticleID:    s.ArticleID.String(),
		ScheduledFor: s.ScheduledFor,
		Status:       string(s.Status),
		QualityScore: s.QualityScore,
		RiskLevel:    s.RiskLevel,
		ReviewedBy:   s.ReviewedBy,
		WPPostID:     s.WPPostID,
		PublishedURL: s.PublishedURL,
		ErrorMessage: s.ErrorMessage,
		Attempts:     s.Attempts,
		NotifiedAt:   s.NotifiedAt,
		CreatedAt:    s.CreatedAt,
	}
	if display != nil {
		resp.Display = &api.ScheduleDisplay{
			DisplayDate: display.DisplayDate,
			DisplayTime: display.DisplayTime,
			StatusLabel: display.StatusLabel,
			StatusColor: display.StatusColor,
			CanCancel:   display.CanCancel,
		}
	}
	return resp
}
