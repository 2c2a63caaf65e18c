package payroll_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-salon/internal/payroll"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func period(t *testing.T) (time.Time, time.Time) {
	t.Helper()
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 13)
}

func TestComputePaymentCommissionOnly(t *testing.T) {
	start, end := period(t)
	got, err := payroll.ComputePayment(payroll.PaymentInput{
		StaffID:     "s-1",
		PeriodStart: start,
		PeriodEnd:   end,
		Commissions: []payroll.CommissionEntry{{Service: "Haircut", SaleNumber: "S-001", Amount: dec("1000")}},
	})
	require.NoError(t, err)
	require.Equal(t, "1000", got.GrossPay.String())
	require.Equal(t, "1000", got.NetPay.String())
}

func TestComputePaymentFullBreakdown(t *testing.T) {
	start, end := period(t)
	got, err := payroll.ComputePayment(payroll.PaymentInput{
		StaffID:     "s-1",
		PeriodStart: start,
		PeriodEnd:   end,
		BasePay:     dec("1200.50"),
		Bonuses:     dec("100"),
		Tips:        dec("45.25"),
		Commissions: []payroll.CommissionEntry{
			{Service: "Haircut", SaleNumber: "S-001", Amount: dec("500")},
			{Service: "Color", SaleNumber: "S-002", Amount: dec("250.75")},
		},
		Deductions: map[string]decimal.Decimal{"tax": dec("300"), "advance": dec("96.50")},
	})
	require.NoError(t, err)
	require.Equal(t, "750.75", got.CommissionTotal.String())
	require.Equal(t, "396.5", got.DeductionTotal.String())
	require.Equal(t, "2096.5", got.GrossPay.String())
	require.Equal(t, "1700", got.NetPay.String())
}

func TestComputePaymentNegativeNetPay(t *testing.T) {
	start, end := period(t)
	_, err := payroll.ComputePayment(payroll.PaymentInput{
		StaffID:     "s-1",
		PeriodStart: start,
		PeriodEnd:   end,
		Commissions: []payroll.CommissionEntry{{Service: "Haircut", SaleNumber: "S-001", Amount: dec("500")}},
		Deductions:  map[string]decimal.Decimal{"tax": dec("800")},
	})
	require.ErrorIs(t, err, payroll.ErrNegativeNetPay)
}

func TestComputePaymentInvalidPeriod(t *testing.T) {
	start, end := period(t)
	_, err := payroll.ComputePayment(payroll.PaymentInput{StaffID: "s-1", PeriodStart: end, PeriodEnd: start})
	require.ErrorIs(t, err, payroll.ErrInvalidPeriod)
}

func TestComputePaymentRejectsNegativeComponents(t *testing.T) {
	start, end := period(t)
	base := payroll.PaymentInput{StaffID: "s-1", PeriodStart: start, PeriodEnd: end}

	in := base
	in.BasePay = dec("-1")
	_, err := payroll.ComputePayment(in)
	require.ErrorIs(t, err, payroll.ErrInvalidInput)

	in = base
	in.Commissions = []payroll.CommissionEntry{{SaleNumber: "S-001", Amount: dec("-5")}}
	_, err = payroll.ComputePayment(in)
	require.ErrorIs(t, err, payroll.ErrInvalidInput)

	in = base
	in.Deductions = map[string]decimal.Decimal{"tax": dec("-5")}
	_, err = payroll.ComputePayment(in)
	require.ErrorIs(t, err, payroll.ErrInvalidInput)
}

func TestComputePaymentIdempotent(t *testing.T) {
	start, end := period(t)
	in := payroll.PaymentInput{
		StaffID:     "s-1",
		PeriodStart: start,
		PeriodEnd:   end,
		BasePay:     dec("900"),
		Commissions: []payroll.CommissionEntry{{Service: "Spa", SaleNumber: "S-003", Amount: dec("123.45")}},
		Deductions:  map[string]decimal.Decimal{"tax": dec("100")},
	}
	first, err := payroll.ComputePayment(in)
	require.NoError(t, err)
	second, err := payroll.ComputePayment(in)
	require.NoError(t, err)
	require.True(t, first.GrossPay.Equal(second.GrossPay))
	require.True(t, first.NetPay.Equal(second.NetPay))
}
