package payroll

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInvalidPeriod is returned when the payout period is reversed.
var ErrInvalidPeriod = errors.New("period start is after period end")

// ErrNegativeNetPay is returned when deductions exceed earnings. The condition
// is surfaced, never clamped, so a human can correct the inputs before a
// payment record is persisted.
var ErrNegativeNetPay = errors.New("net pay is negative")

// ErrInvalidInput is returned when a pay component carries a negative amount.
var ErrInvalidInput = errors.New("invalid input")

// PaymentInput gathers everything needed to compute one staff payout.
type PaymentInput struct {
	StaffID     string
	PeriodStart time.Time
	PeriodEnd   time.Time
	BasePay     decimal.Decimal
	Bonuses     decimal.Decimal
	Tips        decimal.Decimal
	Commissions []CommissionEntry
	Deductions  map[string]decimal.Decimal
}

// Breakdown is the derived pay figures for one payout. GrossPay always equals
// basePay + commissions + bonuses + tips; NetPay equals gross minus deductions.
type Breakdown struct {
	CommissionTotal decimal.Decimal
	DeductionTotal  decimal.Decimal
	GrossPay        decimal.Decimal
	NetPay          decimal.Decimal
}

// ComputePayment derives gross and net pay from the supplied components.
// It is pure and idempotent: identical inputs always produce identical output.
func ComputePayment(in PaymentInput) (Breakdown, error) {
	if in.PeriodStart.After(in.PeriodEnd) {
		return Breakdown{}, ErrInvalidPeriod
	}
	for _, field := range []struct {
		name   string
		amount decimal.Decimal
	}{
		{"base_pay", in.BasePay},
		{"bonuses", in.Bonuses},
		{"tips", in.Tips},
	} {
		if field.amount.IsNegative() {
			return Breakdown{}, fmt.Errorf("%s must not be negative: %w", field.name, ErrInvalidInput)
		}
	}

	commissionTotal := decimal.Zero
	for _, entry := range in.Commissions {
		if entry.Amount.IsNegative() {
			return Breakdown{}, fmt.Errorf("commission amount for sale %s must not be negative: %w", entry.SaleNumber, ErrInvalidInput)
		}
		commissionTotal = commissionTotal.Add(entry.Amount)
	}

	deductionTotal := decimal.Zero
	for kind, amount := range in.Deductions {
		if amount.IsNegative() {
			return Breakdown{}, fmt.Errorf("deduction %q must not be negative: %w", kind, ErrInvalidInput)
		}
		deductionTotal = deductionTotal.Add(amount)
	}

	gross := in.BasePay.Add(commissionTotal).Add(in.Bonuses).Add(in.Tips)
	net := gross.Sub(deductionTotal)
	if net.IsNegative() {
		return Breakdown{}, fmt.Errorf("gross %s minus deductions %s: %w", gross, deductionTotal, ErrNegativeNetPay)
	}

	return Breakdown{
		CommissionTotal: commissionTotal,
		DeductionTotal:  deductionTotal,
		GrossPay:        gross,
		NetPay:          net,
	}, nil
}
