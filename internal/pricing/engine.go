package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrInvalidInput is returned when a line item or policy violates its invariants.
var ErrInvalidInput = errors.New("invalid input")

// ErrEmptyCart is returned by checkout computations when there is nothing to charge.
var ErrEmptyCart = errors.New("cart is empty")

// TaxMode selects how the tax rate is applied to a subtotal.
type TaxMode string

const (
	// TaxExclusive treats prices as tax-exclusive: tax is added on top of the subtotal.
	TaxExclusive TaxMode = "exclusive"
	// TaxInclusive treats prices as tax-inclusive: tax is extracted from the subtotal
	// and the grand total stays equal to it.
	TaxInclusive TaxMode = "inclusive"
)

// Policy carries the deployment-wide tax and commission configuration.
// A deployment picks exactly one tax mode; the engine never mixes the two.
type Policy struct {
	TaxRate               decimal.Decimal
	TaxMode               TaxMode
	DefaultCommissionRate decimal.Decimal
}

// Validate checks the policy rates and mode.
func (p Policy) Validate() error {
	if !fraction(p.TaxRate) {
		return fmt.Errorf("tax rate %s outside [0,1]: %w", p.TaxRate, ErrInvalidInput)
	}
	if !fraction(p.DefaultCommissionRate) {
		return fmt.Errorf("default commission rate %s outside [0,1]: %w", p.DefaultCommissionRate, ErrInvalidInput)
	}
	if p.TaxMode != TaxExclusive && p.TaxMode != TaxInclusive {
		return fmt.Errorf("unknown tax mode %q: %w", p.TaxMode, ErrInvalidInput)
	}
	return nil
}

// LineItem is one sold service or product in a cart. UnitPrice carries
// currency-minor-unit precision. CommissionRate, when set, overrides the
// policy-wide default for this item.
type LineItem struct {
	ID             string
	Name           string
	UnitPrice      decimal.Decimal
	Qty            int
	CommissionRate *decimal.Decimal
}

func (it LineItem) validate(p Policy) error {
	if it.Qty < 1 {
		return fmt.Errorf("qty must be at least 1: %w", ErrInvalidInput)
	}
	if it.UnitPrice.IsNegative() {
		return fmt.Errorf("unit price must not be negative: %w", ErrInvalidInput)
	}
	if !fraction(it.effectiveRate(p)) {
		return fmt.Errorf("commission rate outside [0,1]: %w", ErrInvalidInput)
	}
	return nil
}

func (it LineItem) effectiveRate(p Policy) decimal.Decimal {
	if it.CommissionRate != nil {
		return *it.CommissionRate
	}
	return p.DefaultCommissionRate
}

func (it LineItem) gross() decimal.Decimal {
	return it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Qty)))
}

// SaleTotals is the immutable result of a sale computation. Values are exact;
// call Rounded before displaying or persisting them.
type SaleTotals struct {
	Subtotal        decimal.Decimal
	TaxAmount       decimal.Decimal
	CommissionTotal decimal.Decimal
	GrandTotal      decimal.Decimal
}

// Rounded returns a copy with all amounts rounded half-up to 2 decimal places.
func (t SaleTotals) Rounded() SaleTotals {
	return SaleTotals{
		Subtotal:        t.Subtotal.Round(2),
		TaxAmount:       t.TaxAmount.Round(2),
		CommissionTotal: t.CommissionTotal.Round(2),
		GrandTotal:      t.GrandTotal.Round(2),
	}
}

// LineCommission computes the commission earned on a single line item:
// unit price times quantity times the effective rate. The result is exact;
// rounding happens at the display boundary so accumulation across many items
// does not compound rounding error.
func LineCommission(it LineItem, p Policy) (decimal.Decimal, error) {
	if err := it.validate(p); err != nil {
		return decimal.Decimal{}, err
	}
	return it.gross().Mul(it.effectiveRate(p)), nil
}

// Compute calculates sale totals for the given items under the policy.
// Commission is always taken on the gross per-item amount regardless of tax
// mode; inclusive extraction only reshapes the tax figure, never the
// commission base. An empty slice yields all-zero totals.
func Compute(items []LineItem, p Policy) (SaleTotals, error) {
	if err := p.Validate(); err != nil {
		return SaleTotals{}, err
	}
	subtotal := decimal.Zero
	commission := decimal.Zero
	for _, it := range items {
		if err := it.validate(p); err != nil {
			return SaleTotals{}, err
		}
		subtotal = subtotal.Add(it.gross())
		commission = commission.Add(it.gross().Mul(it.effectiveRate(p)))
	}

	var tax, grand decimal.Decimal
	switch p.TaxMode {
	case TaxInclusive:
		// Prices already embed tax; extract it and leave the total unchanged.
		base := subtotal.Div(decimal.NewFromInt(1).Add(p.TaxRate))
		tax = subtotal.Sub(base)
		grand = subtotal
	default:
		tax = subtotal.Mul(p.TaxRate)
		grand = subtotal.Add(tax)
	}

	return SaleTotals{
		Subtotal:        subtotal,
		TaxAmount:       tax,
		CommissionTotal: commission,
		GrandTotal:      grand,
	}, nil
}

// ComputeCheckout behaves like Compute but rejects an empty cart, since a
// checkout must have something to charge.
func ComputeCheckout(items []LineItem, p Policy) (SaleTotals, error) {
	if len(items) == 0 {
		return SaleTotals{}, ErrEmptyCart
	}
	return Compute(items, p)
}

func fraction(d decimal.Decimal) bool {
	return !d.IsNegative() && d.LessThanOrEqual(decimal.NewFromInt(1))
}
