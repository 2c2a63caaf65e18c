package staff

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

type loginPayload struct {
	Email string `json:"email" validate:"required,email"`
	PIN   string `json:"pin" validate:"required"`
}

type createStaffPayload struct {
	Name           string `json:"name" validate:"required"`
	Email          string `json:"email" validate:"required,email"`
	PIN            string `json:"pin" validate:"required"`
	CommissionRate string `json:"commission_rate"`
	Role           string `json:"role"`
}

type staffResponse struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	CommissionRate string    `json:"commission_rate"`
	Role           string    `json:"role"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"created_at"`
}

func toStaffResponse(m repo.StaffMember) staffResponse {
	return staffResponse{
		ID:             m.ID,
		Name:           m.Name,
		Email:          m.Email,
		CommissionRate: m.CommissionRate.String(),
		Role:           m.Role,
		Active:         m.Active,
		CreatedAt:      m.CreatedAt,
	}
}

// Login handles POST /staff/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var payload loginPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_INPUT", "invalid request body", nil)
		return
	}
	if err := h.Validate.Struct(payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error(), nil)
		return
	}
	result, err := h.Svc.Login(r.Context(), payload.Email, payload.PIN)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{
		"staff":        toStaffResponse(result.Staff),
		"access_token": result.AccessToken,
		"expires_at":   result.ExpiresAt,
	})
}

// CreateStaff handles POST /admin/staff.
func (h *Handler) CreateStaff(w http.ResponseWriter, r *http.Request) {
	var payload createStaffPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_INPUT", "invalid request body", nil)
		return
	}
	if err := h.Validate.Struct(payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error(), nil)
		return
	}
	rate := decimal.Zero
	if payload.CommissionRate != "" {
		parsed, err := decimal.NewFromString(payload.CommissionRate)
		if err != nil {
			common.JSONError(w, http.StatusBadRequest, "INVALID_INPUT", "invalid commission_rate", nil)
			return
		}
		rate = parsed
	}
	member, err := h.Svc.Create(r.Context(), CreateInput{
		Name:           payload.Name,
		Email:          payload.Email,
		PIN:            payload.PIN,
		CommissionRate: rate,
		Role:           payload.Role,
	})
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, toStaffResponse(member))
}

// ListStaff handles GET /staff.
func (h *Handler) ListStaff(w http.ResponseWriter, r *http.Request) {
	members, err := h.Svc.List(r.Context())
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "something went wrong", nil)
		return
	}
	out := make([]staffResponse, 0, len(members))
	for _, m := range members {
		out = append(out, toStaffResponse(m))
	}
	common.JSON(w, http.StatusOK, map[string]any{"staff": out})
}

// GetStaff handles GET /staff/{id}.
func (h *Handler) GetStaff(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_INPUT", "invalid staff id", nil)
		return
	}
	member, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "staff member not found", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "something went wrong", nil)
		return
	}
	common.JSON(w, http.StatusOK, toStaffResponse(member))
}
