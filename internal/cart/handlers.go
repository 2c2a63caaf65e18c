package cart

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"

	"github.com/noah-isme/backend-salon/internal/common"
	"github.com/noah-isme/backend-salon/internal/pricing"
	"github.com/noah-isme/backend-salon/internal/repo"
)

// Handler exposes cart session endpoints.
type Handler struct {
	Svc      *Service
	Validate *validator.Validate
}

type createPayload struct {
	StaffID string `json:"staff_id"`
}

type addItemPayload struct {
	ServiceID string `json:"service_id" validate:"required,uuid4"`
	Qty       int    `json:"qty" validate:"required,gte=1"`
}

type updateItemPayload struct {
	Qty int `json:"qty" validate:"required,gte=1"`
}

// Create starts a new cart session.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var payload createPayload
	// body is optional; an empty one starts an unattributed cart
	_ = json.NewDecoder(r.Body).Decode(&payload)
	c, err := h.Svc.Create(r.Context(), payload.StaffID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": c})
}

// Get returns a cart session.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.Svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": c})
}

// AddItem appends a catalog service to the cart.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	var payload addItemPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if err := h.Validate.Struct(payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}
	c, err := h.Svc.AddItem(r.Context(), chi.URLParam(r, "id"), payload.ServiceID, payload.Qty)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": c})
}

// UpdateItem changes a line quantity.
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var payload updateItemPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if err := h.Validate.Struct(payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}
	c, err := h.Svc.UpdateItem(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "itemID"), payload.Qty)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": c})
}

// RemoveItem drops a line from the cart.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	c, err := h.Svc.RemoveItem(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "itemID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": c})
}

// Quote returns live preview totals for the cart.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	totals, err := h.Svc.Quote(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]string{
		"subtotal":         totals.Subtotal.String(),
		"tax_amount":       totals.TaxAmount.String(),
		"commission_total": totals.CommissionTotal.String(),
		"grand_total":      totals.GrandTotal.String(),
	}})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repo.ErrNotFound):
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "service not found", nil)
	case errors.Is(err, ErrNotFound):
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "cart not found", nil)
	case errors.Is(err, ErrInvalidInput), errors.Is(err, pricing.ErrInvalidInput):
		common.JSONError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error(), nil)
	default:
		common.WriteError(w, err)
	}
}
