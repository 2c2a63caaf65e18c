package sale

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/noah-isme/backend-salon/internal/common"
	"github.com/noah-isme/backend-salon/internal/repo"
)

// Source reads persisted sales.
type Source interface {
	Get(ctx context.Context, id uuid.UUID) (repo.Sale, error)
	List(ctx context.Context, limit, offset int) ([]repo.Sale, int64, error)
}

type Handler struct {
	Sales Source
}

type itemResponse struct {
	ServiceID      uuid.UUID `json:"service_id"`
	Name           string    `json:"name"`
	UnitPrice      string    `json:"unit_price"`
	Qty            int       `json:"qty"`
	CommissionRate string    `json:"commission_rate"`
	Commission     string    `json:"commission"`
}

type saleResponse struct {
	ID              uuid.UUID      `json:"id"`
	Number          string         `json:"number"`
	StaffID         uuid.UUID      `json:"staff_id"`
	Currency        string         `json:"currency"`
	TaxRate         string         `json:"tax_rate"`
	TaxMode         string         `json:"tax_mode"`
	Subtotal        string         `json:"subtotal"`
	TaxAmount       string         `json:"tax_amount"`
	CommissionTotal string         `json:"commission_total"`
	GrandTotal      string         `json:"grand_total"`
	CreatedAt       time.Time      `json:"created_at"`
	Items           []itemResponse `json:"items,omitempty"`
}

func toSaleResponse(s repo.Sale) saleResponse {
	resp := saleResponse{
		ID:              s.ID,
		Number:          s.Number,
		StaffID:         s.StaffID,
		Currency:        s.Currency,
		TaxRate:         s.TaxRate.String(),
		TaxMode:         s.TaxMode,
		Subtotal:        s.Subtotal.StringFixed(2),
		TaxAmount:       s.TaxAmount.StringFixed(2),
		CommissionTotal: s.CommissionTotal.StringFixed(2),
		GrandTotal:      s.GrandTotal.StringFixed(2),
		CreatedAt:       s.CreatedAt,
	}
	for _, it := range s.Items {
		resp.Items = append(resp.Items, itemResponse{
			ServiceID:      it.ServiceID,
			Name:           it.Name,
			UnitPrice:      it.UnitPrice.StringFixed(2),
			Qty:            it.Qty,
			CommissionRate: it.CommissionRate.String(),
			Commission:     it.Commission.StringFixed(2),
		})
	}
	return resp
}

// ListSales handles GET /sales.
func (h *Handler) ListSales(w http.ResponseWriter, r *http.Request) {
	page, perPage := common.ParsePagination(r, 20)
	sales, total, err := h.Sales.List(r.Context(), perPage, (page-1)*perPage)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "something went wrong", nil)
		return
	}
	out := make([]saleResponse, 0, len(sales))
	for _, s := range sales {
		out = append(out, toSaleResponse(s))
	}
	common.JSON(w, http.StatusOK, map[string]any{
		"sales":      out,
		"pagination": common.Pagination{Page: page, PerPage: perPage, TotalItems: int(total)},
	})
}

// GetSale handles GET /sales/{id}, including line items.
func (h *Handler) GetSale(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_INPUT", "invalid sale id", nil)
		return
	}
	s, err := h.Sales.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "sale not found", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "something went wrong", nil)
		return
	}
	common.JSON(w, http.StatusOK, toSaleResponse(s))
}
