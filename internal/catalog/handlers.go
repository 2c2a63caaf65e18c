package catalog

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-salon/internal/common"
	"github.com/noah-isme/backend-salon/internal/repo"
)

type Handler struct {
	Svc      *Service
	Validate *validator.Validate
}

type servicePayload struct {
	Name            string  `json:"name" validate:"required"`
	Price           string  `json:"price" validate:"required"`
	DurationMinutes int     `json:"duration_minutes" validate:"required,gte=1"`
	CommissionRate  *string `json:"commission_rate"`
	Active          *bool   `json:"active"`
}

type serviceResponse struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Price           string    `json:"price"`
	DurationMinutes int       `json:"duration_minutes"`
	CommissionRate  *string   `json:"commission_rate,omitempty"`
	Active          bool      `json:"active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func toServiceResponse(svc repo.SalonService) serviceResponse {
	resp := serviceResponse{
		ID:              svc.ID,
		Name:            svc.Name,
		Price:           svc.Price.StringFixed(2),
		DurationMinutes: svc.DurationMinutes,
		Active:          svc.Active,
		CreatedAt:       svc.CreatedAt,
		UpdatedAt:       svc.UpdatedAt,
	}
	if svc.CommissionRate != nil {
		rate := svc.CommissionRate.String()
		resp.CommissionRate = &rate
	}
	return resp
}

// ListServices handles GET /services. Staff see active entries only;
// pass all=true to include retired ones.
func (h *Handler) ListServices(w http.ResponseWriter, r *http.Request) {
	onlyActive := r.URL.Query().Get("all") != "true"
	services, err := h.Svc.List(r.Context(), onlyActive)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "something went wrong", nil)
		return
	}
	out := make([]serviceResponse, 0, len(services))
	for _, svc := range services {
		out = append(out, toServiceResponse(svc))
	}
	common.JSON(w, http.StatusOK, map[string]any{"services": out})
}

// GetService handles GET /services/{id}.
func (h *Handler) GetService(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_INPUT", "invalid service id", nil)
		return
	}
	svc, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, toServiceResponse(svc))
}

// CreateService handles POST /admin/services.
func (h *Handler) CreateService(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decodeInput(w, r)
	if !ok {
		return
	}
	svc, err := h.Svc.Create(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, toServiceResponse(svc))
}

// UpdateService handles PUT /admin/services/{id}.
func (h *Handler) UpdateService(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_INPUT", "invalid service id", nil)
		return
	}
	in, ok := h.decodeInput(w, r)
	if !ok {
		return
	}
	svc, err := h.Svc.Update(r.Context(), id, in)
	if err != nil {
		writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, toServiceResponse(svc))
}

func (h *Handler) decodeInput(w http.ResponseWriter, r *http.Request) (CreateInput, bool) {
	var payload servicePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_INPUT", "invalid request body", nil)
		return CreateInput{}, false
	}
	if err := h.Validate.Struct(payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error(), nil)
		return CreateInput{}, false
	}
	price, err := decimal.NewFromString(payload.Price)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_INPUT", "invalid price", nil)
		return CreateInput{}, false
	}
	var rate *decimal.Decimal
	if payload.CommissionRate != nil {
		parsed, err := decimal.NewFromString(*payload.CommissionRate)
		if err != nil {
			common.JSONError(w, http.StatusBadRequest, "INVALID_INPUT", "invalid commission_rate", nil)
			return CreateInput{}, false
		}
		rate = &parsed
	}
	active := true
	if payload.Active != nil {
		active = *payload.Active
	}
	return CreateInput{
		Name:            payload.Name,
		Price:           price,
		DurationMinutes: payload.DurationMinutes,
		CommissionRate:  rate,
		Active:          active,
	}, true
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repo.ErrNotFound):
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "service not found", nil)
	case errors.Is(err, ErrInvalidInput):
		common.JSONError(w, http.StatusBadRequest, "INVALID_INPUT", "invalid service input", nil)
	default:
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "something went wrong", nil)
	}
}
