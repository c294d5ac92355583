package handler

import (
	"context"
	"net/http"

	"github.com/matthewbaird/sughar/internal/dashboard"
)

// StatsSource builds dashboard payloads for an owner.
type StatsSource interface {
	BuildDashboardStats(ctx context.Context, ownerID string) (dashboard.StatsPayload, error)
	BuildFinancialStats(ctx context.Context, ownerID string) (dashboard.FinancialPayload, error)
}

// DashboardHandler implements the dashboard read endpoints.
type DashboardHandler struct {
	src StatsSource
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(src StatsSource) *DashboardHandler {
	return &DashboardHandler{src: src}
}

// HandleStats returns property, unit, service request, application and
// lease counts with their detail slices.
// GET /api/dashboard/stats
func (h *DashboardHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}
	stats, err := h.src.BuildDashboardStats(r.Context(), owner)
	if err != nil {
		storeErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// HandleFinancialStats returns this month's revenue, expected rent and arrears.
// GET /api/dashboard/financial-stats
func (h *DashboardHandler) HandleFinancialStats(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}
	fin, err := h.src.BuildFinancialStats(r.Context(), owner)
	if err != nil {
		storeErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, fin)
}
