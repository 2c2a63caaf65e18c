package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/noah-isme/backend-salon/internal/cart"
	"github.com/noah-isme/backend-salon/internal/obs"
	"github.com/noah-isme/backend-salon/internal/pricing"
	"github.com/noah-isme/backend-salon/internal/repo"
	"github.com/noah-isme/backend-salon/internal/reports"
)

// Input is the checkout request payload.
type Input struct {
	CartID  string `json:"cart_id" validate:"required"`
	StaffID string `json:"staff_id"`
}

// Output is the persisted sale returned to the till.
type Output struct {
	SaleID          string `json:"sale_id"`
	Number          string `json:"number"`
	Currency        string `json:"currency"`
	Subtotal        string `json:"subtotal"`
	TaxAmount       string `json:"tax_amount"`
	CommissionTotal string `json:"commission_total"`
	GrandTotal      string `json:"grand_total"`
}

// SaleStore persists finalised sales.
type SaleStore interface {
	Create(ctx context.Context, sale repo.Sale) (repo.Sale, error)
}

// Service turns a cart session into an immutable sale snapshot. Totals are
// computed once here; the till only ever previews them.
type Service struct {
	Cart     *cart.Service
	Sales    SaleStore
	Policy   pricing.Policy
	Currency string
	Tasks    *asynq.Client
	Metrics  *obs.SaleMetrics
	Now      func() time.Time
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Create finalises the cart into a sale.
func (s *Service) Create(ctx context.Context, authStaffID string, in Input) (Output, error) {
	if s == nil || s.Cart == nil || s.Sales == nil {
		return Output{}, errors.New("checkout service not configured")
	}
	if in.CartID == "" {
		return Output{}, fmt.Errorf("cart_id is required: %w", cart.ErrInvalidInput)
	}

	c, err := s.Cart.Get(ctx, in.CartID)
	if err != nil {
		return Output{}, err
	}
	staffID := firstNonEmpty(in.StaffID, c.StaffID, authStaffID)
	sellerID, err := uuid.Parse(staffID)
	if err != nil {
		return Output{}, fmt.Errorf("staff attribution required for checkout: %w", cart.ErrInvalidInput)
	}

	items := cart.PricingItems(c)
	totals, err := pricing.ComputeCheckout(items, s.Policy)
	if err != nil {
		return Output{}, err
	}
	rounded := totals.Rounded()

	sale := repo.Sale{
		ID:              uuid.New(),
		Number:          s.saleNumber(),
		StaffID:         sellerID,
		Currency:        s.Currency,
		TaxRate:         s.Policy.TaxRate,
		TaxMode:         string(s.Policy.TaxMode),
		Subtotal:        rounded.Subtotal,
		TaxAmount:       rounded.TaxAmount,
		CommissionTotal: rounded.CommissionTotal,
		GrandTotal:      rounded.GrandTotal,
	}
	for i, it := range items {
		commission, err := pricing.LineCommission(it, s.Policy)
		if err != nil {
			return Output{}, err
		}
		rate := s.Policy.DefaultCommissionRate
		if it.CommissionRate != nil {
			rate = *it.CommissionRate
		}
		serviceID, err := uuid.Parse(c.Items[i].ServiceID)
		if err != nil {
			return Output{}, fmt.Errorf("parse service id: %w", cart.ErrInvalidInput)
		}
		sale.Items = append(sale.Items, repo.SaleItem{
			ID:             uuid.New(),
			ServiceID:      serviceID,
			Name:           it.Name,
			UnitPrice:      it.UnitPrice,
			Qty:            it.Qty,
			CommissionRate: rate,
			Commission:     commission.Round(2),
		})
	}

	stored, err := s.Sales.Create(ctx, sale)
	if err != nil {
		if s.Metrics != nil {
			s.Metrics.CheckoutErrors.Inc()
		}
		return Output{}, err
	}
	if s.Metrics != nil {
		s.Metrics.SalesTotal.WithLabelValues(sale.TaxMode).Inc()
	}

	// the sale is already persisted; a failed delete just leaves the
	// session to expire via TTL
	_ = s.Cart.Consume(ctx, c.ID)

	if s.Tasks != nil {
		if task, err := reports.NewRefreshDailyTask(stored.CreatedAt); err == nil {
			_, _ = s.Tasks.EnqueueContext(ctx, task)
		}
	}

	return Output{
		SaleID:          stored.ID.String(),
		Number:          stored.Number,
		Currency:        stored.Currency,
		Subtotal:        stored.Subtotal.String(),
		TaxAmount:       stored.TaxAmount.String(),
		CommissionTotal: stored.CommissionTotal.String(),
		GrandTotal:      stored.GrandTotal.String(),
	}, nil
}

func (s *Service) saleNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("S-%s-%s", s.now().Format("20060102"), suffix)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
