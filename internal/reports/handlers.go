package reports

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/backend-salon/internal/common"
)

// Handler exposes report read endpoints.
type Handler struct {
	Svc          *Service
	DefaultRange int
}

func (h *Handler) parseRange(r *http.Request) (time.Time, time.Time, bool) {
	query := r.URL.Query()
	fromStr := query.Get("from")
	toStr := query.Get("to")
	if fromStr != "" && toStr != "" {
		from, err := time.Parse("2006-01-02", fromStr)
		if err != nil {
			return time.Time{}, time.Time{}, false
		}
		to, err := time.Parse("2006-01-02", toStr)
		if err != nil {
			return time.Time{}, time.Time{}, false
		}
		return from, to.AddDate(0, 0, 1), from.Before(to.AddDate(0, 0, 1))
	}
	days := h.DefaultRange
	if days <= 0 {
		days = 30
	}
	if raw := query.Get("days"); raw != "" {
		if parsed := common.AtoiDefault(raw, days); parsed > 0 {
			days = parsed
		}
	}
	to := h.Svc.now().Truncate(24 * time.Hour).AddDate(0, 0, 1)
	return to.AddDate(0, 0, -days), to, true
}

// Sales returns the daily sales summary for the requested range.
func (h *Handler) Sales(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "REPORTS_NOT_CONFIGURED", "reports service not configured", nil)
		return
	}
	from, to, ok := h.parseRange(r)
	if !ok {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid report range", nil)
		return
	}
	rows, err := h.Svc.DailySales(r.Context(), from, to)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "REPORTS_ERROR", err.Error(), nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": rows})
}

// Commissions returns per-staff commission reports for the requested range.
func (h *Handler) Commissions(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "REPORTS_NOT_CONFIGURED", "reports service not configured", nil)
		return
	}
	from, to, ok := h.parseRange(r)
	if !ok {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid report range", nil)
		return
	}
	var staffID *uuid.UUID
	if raw := r.URL.Query().Get("staff_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid staff_id", nil)
			return
		}
		staffID = &parsed
	}
	out, err := h.Svc.Commissions(r.Context(), staffID, from, to)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "REPORTS_ERROR", err.Error(), nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": out})
}
