package payroll

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

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

type commissionEntryPayload struct {
	Service    string `json:"service" validate:"required"`
	SaleNumber string `json:"sale_number"`
	Amount     string `json:"amount" validate:"required"`
}

type createPaymentPayload struct {
	StaffID     string                   `json:"staff_id" validate:"required,uuid4"`
	PeriodStart string                   `json:"period_start" validate:"required"`
	PeriodEnd   string                   `json:"period_end" validate:"required"`
	BasePay     string                   `json:"base_pay"`
	Bonuses     string                   `json:"bonuses"`
	Tips        string                   `json:"tips"`
	Commissions []commissionEntryPayload `json:"commissions"`
	Deductions  map[string]string        `json:"deductions"`
	FromSales   bool                     `json:"from_sales"`
}

type paymentResponse struct {
	ID              uuid.UUID                  `json:"id"`
	StaffID         uuid.UUID                  `json:"staff_id"`
	PeriodStart     string                     `json:"period_start"`
	PeriodEnd       string                     `json:"period_end"`
	BasePay         string                     `json:"base_pay"`
	Bonuses         string                     `json:"bonuses"`
	Tips            string                     `json:"tips"`
	CommissionTotal string                     `json:"commission_total"`
	DeductionTotal  string                     `json:"deduction_total"`
	GrossPay        string                     `json:"gross_pay"`
	NetPay          string                     `json:"net_pay"`
	Commissions     []CommissionEntry          `json:"commissions"`
	Deductions      map[string]decimal.Decimal `json:"deductions"`
	CreatedAt       time.Time                  `json:"created_at"`
}

func toPaymentResponse(p repo.CommissionPayment) paymentResponse {
	return paymentResponse{
		ID:              p.ID,
		StaffID:         p.StaffID,
		PeriodStart:     p.PeriodStart.Format("2006-01-02"),
		PeriodEnd:       p.PeriodEnd.Format("2006-01-02"),
		BasePay:         p.BasePay.StringFixed(2),
		Bonuses:         p.Bonuses.StringFixed(2),
		Tips:            p.Tips.StringFixed(2),
		CommissionTotal: p.CommissionTotal.StringFixed(2),
		DeductionTotal:  p.DeductionTotal.StringFixed(2),
		GrossPay:        p.GrossPay.StringFixed(2),
		NetPay:          p.NetPay.StringFixed(2),
		Commissions:     p.Commissions,
		Deductions:      p.Deductions,
		CreatedAt:       p.CreatedAt,
	}
}

// CreatePayment handles POST /payroll/payments.
func (h *Handler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var payload createPaymentPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_INPUT", "invalid request body", nil)
		return
	}
	if err := h.Validate.Struct(payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error(), nil)
		return
	}

	in, err := payload.toInput()
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error(), nil)
		return
	}

	payment, err := h.Svc.Create(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, toPaymentResponse(payment))
}

// ListPayments handles GET /payroll/payments.
func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	var staffID *uuid.UUID
	if raw := r.URL.Query().Get("staff_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			common.JSONError(w, http.StatusBadRequest, "INVALID_INPUT", "invalid staff_id", nil)
			return
		}
		staffID = &id
	}
	from, err := parseDateParam(r.URL.Query().Get("from"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_INPUT", "invalid from date", nil)
		return
	}
	to, err := parseDateParam(r.URL.Query().Get("to"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_INPUT", "invalid to date", nil)
		return
	}

	payments, err := h.Svc.List(r.Context(), staffID, from, to)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]paymentResponse, 0, len(payments))
	for _, p := range payments {
		out = append(out, toPaymentResponse(p))
	}
	common.JSON(w, http.StatusOK, map[string]any{"payments": out})
}

func (p createPaymentPayload) toInput() (CreateInput, error) {
	start, err := time.Parse("2006-01-02", p.PeriodStart)
	if err != nil {
		return CreateInput{}, errors.New("period_start must be YYYY-MM-DD")
	}
	end, err := time.Parse("2006-01-02", p.PeriodEnd)
	if err != nil {
		return CreateInput{}, errors.New("period_end must be YYYY-MM-DD")
	}
	basePay, err := parseAmount(p.BasePay)
	if err != nil {
		return CreateInput{}, errors.New("invalid base_pay")
	}
	bonuses, err := parseAmount(p.Bonuses)
	if err != nil {
		return CreateInput{}, errors.New("invalid bonuses")
	}
	tips, err := parseAmount(p.Tips)
	if err != nil {
		return CreateInput{}, errors.New("invalid tips")
	}

	entries := make([]CommissionEntry, 0, len(p.Commissions))
	for _, e := range p.Commissions {
		amount, err := decimal.NewFromString(e.Amount)
		if err != nil {
			return CreateInput{}, errors.New("invalid commission amount")
		}
		entries = append(entries, CommissionEntry{Service: e.Service, SaleNumber: e.SaleNumber, Amount: amount})
	}

	var deductions map[string]decimal.Decimal
	if len(p.Deductions) > 0 {
		deductions = make(map[string]decimal.Decimal, len(p.Deductions))
		for name, raw := range p.Deductions {
			amount, err := decimal.NewFromString(raw)
			if err != nil {
				return CreateInput{}, errors.New("invalid deduction amount")
			}
			deductions[name] = amount
		}
	}

	return CreateInput{
		StaffID:     p.StaffID,
		PeriodStart: start,
		PeriodEnd:   end,
		BasePay:     basePay,
		Bonuses:     bonuses,
		Tips:        tips,
		Commissions: entries,
		Deductions:  deductions,
		FromSales:   p.FromSales,
	}, nil
}

func parseAmount(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(raw)
}

func parseDateParam(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNegativeNetPay):
		common.JSONError(w, http.StatusUnprocessableEntity, "NEGATIVE_NET_PAY", "deductions exceed gross pay", nil)
	case errors.Is(err, ErrInvalidPeriod):
		common.JSONError(w, http.StatusBadRequest, "INVALID_PERIOD", "period end must not be before period start", nil)
	case errors.Is(err, ErrInvalidInput):
		common.JSONError(w, http.StatusBadRequest, "INVALID_INPUT", "invalid payment input", nil)
	default:
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "something went wrong", nil)
	}
}
