package handlers

import (
	"encoding/json"
	"net/http"

	"publishplane/internal/autopublish"
	"publishplane/internal/controller/middleware"
	"publishplane/pkg/api"
)

// GetConfig handles GET /config.
// It returns the tenant's effective configuration: the default with the
// stored override merged in.
func (h *Handlers) GetConfig(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tenantID, ok := middleware.TenantIDFromContext(ctx)
	if !ok {
		h.httpError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	override, err := h.store.GetConfigOverride(ctx, tenantID)
	if err != nil {
		h.httpError(w, "Failed to load configuration", http.StatusInternalServerError)
		return
	}

	h.respondJson(w, http.StatusOK, toConfigResponse(autopublish.DefaultConfig().Apply(override)))
}

// UpdateConfig handles PUT /config.
// The override is validated against the default before storing: a merge that
// produces an invalid effective config is rejected wholesale.
func (h *Handlers) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tenantID, ok := middleware.TenantIDFromContext(ctx)
	if !ok {
		h.httpError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req api.ConfigOverrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.httpError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	override := toConfigOverride(req)
	merged := autopublish.DefaultConfig().Apply(override)
	if err := merged.Validate(); err != nil {
		h.httpError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.store.UpsertConfigOverride(ctx, tenantID, override); err != nil {
		h.httpError(w, "Failed to store configuration", http.StatusInternalServerError)
		return
	}

	h.respondJson(w, http.StatusOK, toConfigResponse(merged))
}

func toConfigOverride(req api.ConfigOverrideRequest) autopublish.ConfigOverride {
	override := autopublish.ConfigOverride{
		DefaultDaysAfterReady:    req.DefaultDaysAfterReady,
		RequireHumanReview:       req.RequireHumanReview,
		MinimumQualityScore:      req.MinimumQualityScore,
		NotifyBeforePublish:      req.NotifyBeforePublish,
		NotifyHoursBeforePublish: req.NotifyHoursBeforePublish,
		Timezone:                 req.Timezone,
	}
	if req.MaximumRiskLevel != nil {
		level := autopublish.RiskLevel(*req.MaximumRiskLevel)
		override.MaximumRiskLevel = &level
	}
	if req.PublishingWindows != nil {
		windows := make([]autopublish.PublishingWindow, len(req.PublishingWindows))
		for i, w := range req.PublishingWindows {
			windows[i] = autopublish.PublishingWindow{
				DayOfWeek: w.DayOfWeek,
				StartHour: w.StartHour,
				EndHour:   w.EndHour,
			}
		}
		override.PublishingWindows = windows
	}
	return override
}

func toConfigResponse(cfg autopublish.Config) api.ConfigResponse {
	windows := make([]api.PublishingWindow, len(cfg.PublishingWindows))
	for i, w := range cfg.PublishingWindows {
		windows[i] = api.PublishingWindow{
			DayOfWeek: w.DayOfWeek,
			StartHour: w.StartHour,
			EndHour:   w.EndHour,
		}
	}
	return api.ConfigResponse{
		DefaultDaysAfterReady:    cfg.DefaultDaysAfterReady,
		RequireHumanReview:       cfg.RequireHumanReview,
		MinimumQualityScore:      cfg.MinimumQualityScore,
		MaximumRiskLevel:         string(cfg.MaximumRiskLevel),
		NotifyBeforePublish:      cfg.NotifyBeforePublish,
		NotifyHoursBeforePublish: cfg.NotifyHoursBeforePublish,
		PublishingWindows:        windows,
		Timezone:                 cfg.Timezone,
	}
}
