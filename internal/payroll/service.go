package payroll

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-salon/internal/repo"
)

// CommissionEntry is one earned commission attributed to a sale. The row
// type lives in repo so the persisted JSONB shape has a single owner.
type CommissionEntry = repo.CommissionEntry

// PaymentStore persists commission payments.
type PaymentStore interface {
	Create(ctx context.Context, p repo.CommissionPayment) (repo.CommissionPayment, error)
	List(ctx context.Context, staffID *uuid.UUID, from, to *time.Time) ([]repo.CommissionPayment, error)
}

// CommissionSource supplies recorded per-sale commissions for a period.
type CommissionSource interface {
	CommissionEntries(ctx context.Context, staffID *uuid.UUID, from, to time.Time) ([]repo.StaffCommission, error)
}

// CreateInput is the payout request. When FromSales is set the commission
// entries are pulled from recorded sales for the period instead of being
// supplied by the caller.
type CreateInput struct {
	StaffID     string
	PeriodStart time.Time
	PeriodEnd   time.Time
	BasePay     decimal.Decimal
	Bonuses     decimal.Decimal
	Tips        decimal.Decimal
	Commissions []CommissionEntry
	Deductions  map[string]decimal.Decimal
	FromSales   bool
}

// Service creates and lists commission payments. Persisted payments are
// immutable; a wrong payout is corrected by a new adjusting payment.
type Service struct {
	Store PaymentStore
	Sales CommissionSource
}

// Create computes the payout breakdown and persists it.
func (s *Service) Create(ctx context.Context, in CreateInput) (repo.CommissionPayment, error) {
	if s == nil || s.Store == nil {
		return repo.CommissionPayment{}, errors.New("payroll service not configured")
	}
	staffID, err := uuid.Parse(in.StaffID)
	if err != nil {
		return repo.CommissionPayment{}, fmt.Errorf("parse staff id: %w", ErrInvalidInput)
	}

	entries := in.Commissions
	if in.FromSales {
		if s.Sales == nil {
			return repo.CommissionPayment{}, errors.New("commission source not configured")
		}
		recorded, err := s.Sales.CommissionEntries(ctx, &staffID, in.PeriodStart, in.PeriodEnd.AddDate(0, 0, 1))
		if err != nil {
			return repo.CommissionPayment{}, err
		}
		entries = make([]CommissionEntry, 0, len(recorded))
		for _, rec := range recorded {
			entries = append(entries, CommissionEntry{Service: rec.Service, SaleNumber: rec.SaleNumber, Amount: rec.Amount})
		}
	}

	breakdown, err := ComputePayment(PaymentInput{
		StaffID:     in.StaffID,
		PeriodStart: in.PeriodStart,
		PeriodEnd:   in.PeriodEnd,
		BasePay:     in.BasePay,
		Bonuses:     in.Bonuses,
		Tips:        in.Tips,
		Commissions: entries,
		Deductions:  in.Deductions,
	})
	if err != nil {
		return repo.CommissionPayment{}, err
	}

	return s.Store.Create(ctx, repo.CommissionPayment{
		ID:              uuid.New(),
		StaffID:         staffID,
		PeriodStart:     in.PeriodStart,
		PeriodEnd:       in.PeriodEnd,
		BasePay:         in.BasePay.Round(2),
		Bonuses:         in.Bonuses.Round(2),
		Tips:            in.Tips.Round(2),
		CommissionTotal: breakdown.CommissionTotal.Round(2),
		DeductionTotal:  breakdown.DeductionTotal.Round(2),
		GrossPay:        breakdown.GrossPay.Round(2),
		NetPay:          breakdown.NetPay.Round(2),
		Commissions:     entries,
		Deductions:      in.Deductions,
	})
}

// List returns payments filtered by staff and period.
func (s *Service) List(ctx context.Context, staffID *uuid.UUID, from, to *time.Time) ([]repo.CommissionPayment, error) {
	if s == nil || s.Store == nil {
		return nil, errors.New("payroll service not configured")
	}
	return s.Store.List(ctx, staffID, from, to)
}
