// Package handlers contains HTTP handlers for the controller API.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"publishplane/internal/autopublish"
	"publishplane/internal/store"
	"publishplane/pkg/api"
)

// StoreFactory combines the interfaces needed for the controller to function.
type StoreFactory interface {
	BeginTx(ctx context.Context) (store.Tx, error)
	Ping(ctx context.Context) error
	store.TenantStore
	store.ArticleStore
	store.ConfigStore
	store.ScheduleStore
}

// Handlers holds all HTTP handlers and their dependencies.
type Handlers struct {
	store StoreFactory
}

// New creates a new Handlers instance with the given store dependency.
func New(s StoreFactory) *Handlers {
	return &Handlers{store: s}
}

// A helper function to write standard JSON responses.
func (h *Handlers) respondJson(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

// A helper function to return consistent error messages.
func (h *Handlers) httpError(w http.ResponseWriter, message string, code int) {
	h.respondJson(w, code, api.ErrorResponse{
		Error: message,
		Code:  strconv.Itoa(code),
	})
}

// engineFor builds the scheduling engine for a tenant: the default config
// with the tenant's stored override merged in.
func (h *Handlers) engineFor(ctx context.Context, tenantID uuid.UUID) (*autopublish.Engine, error) {
	override, err := h.store.GetConfigOverride(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return autopublish.NewEngine(autopublish.DefaultConfig().Apply(override))
}

func toReasons(reasons []autopublish.Reason) []api.EligibilityReason {
	if len(reasons) == 0 {
		return nil
	}
	out := make([]api.EligibilityReason, len(reasons))
	for i, r := range reasons {
		out[i] = api.EligibilityReason{Code: string(r.Code), Message: r.Message}
	}
	return out
}
