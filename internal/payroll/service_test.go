package payroll

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-salon/internal/repo"
)

type stubPaymentStore struct {
	created []repo.CommissionPayment
}

func (s *stubPaymentStore) Create(_ context.Context, p repo.CommissionPayment) (repo.CommissionPayment, error) {
	p.CreatedAt = time.Date(2026, 8, 31, 18, 0, 0, 0, time.UTC)
	s.created = append(s.created, p)
	return p, nil
}

func (s *stubPaymentStore) List(context.Context, *uuid.UUID, *time.Time, *time.Time) ([]repo.CommissionPayment, error) {
	return s.created, nil
}

type stubCommissionSource struct {
	entries []repo.StaffCommission
}

func (s *stubCommissionSource) CommissionEntries(context.Context, *uuid.UUID, time.Time, time.Time) ([]repo.StaffCommission, error) {
	return s.entries, nil
}

func TestCreatePersistsBreakdown(t *testing.T) {
	store := &stubPaymentStore{}
	svc := &Service{Store: store}

	payment, err := svc.Create(context.Background(), CreateInput{
		StaffID:     uuid.NewString(),
		PeriodStart: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC),
		BasePay:     decimal.NewFromInt(800),
		Bonuses:     decimal.NewFromFloat(96.50),
		Tips:        decimal.NewFromInt(200),
		Commissions: []CommissionEntry{
			{Service: "Color", Amount: decimal.NewFromInt(600)},
			{Service: "Cut", Amount: decimal.NewFromInt(400)},
		},
		Deductions: map[string]decimal.Decimal{
			"tax":     decimal.NewFromFloat(296.50),
			"advance": decimal.NewFromInt(100),
		},
	})
	require.NoError(t, err)
	require.Len(t, store.created, 1)
	require.Equal(t, "2096.50", payment.GrossPay.StringFixed(2))
	require.Equal(t, "1700.00", payment.NetPay.StringFixed(2))
	require.Equal(t, "1000.00", payment.CommissionTotal.StringFixed(2))
}

func TestCreateFromRecordedSales(t *testing.T) {
	store := &stubPaymentStore{}
	source := &stubCommissionSource{entries: []repo.StaffCommission{
		{Service: "Balayage", SaleNumber: "S-20260810-A1B2C3", Amount: decimal.NewFromInt(750)},
		{Service: "Trim", SaleNumber: "S-20260812-D4E5F6", Amount: decimal.NewFromInt(250)},
	}}
	svc := &Service{Store: store, Sales: source}

	payment, err := svc.Create(context.Background(), CreateInput{
		StaffID:     uuid.NewString(),
		PeriodStart: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC),
		FromSales:   true,
	})
	require.NoError(t, err)
	require.Equal(t, "1000.00", payment.GrossPay.StringFixed(2))
	require.Equal(t, "1000.00", payment.NetPay.StringFixed(2))
	require.Len(t, payment.Commissions, 2)
	require.Equal(t, "S-20260810-A1B2C3", payment.Commissions[0].SaleNumber)
}

func TestCreateRejectsNegativeNet(t *testing.T) {
	store := &stubPaymentStore{}
	svc := &Service{Store: store}

	_, err := svc.Create(context.Background(), CreateInput{
		StaffID:     uuid.NewString(),
		PeriodStart: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC),
		Commissions: []CommissionEntry{{Service: "Cut", Amount: decimal.NewFromInt(500)}},
		Deductions:  map[string]decimal.Decimal{"tax": decimal.NewFromInt(800)},
	})
	require.ErrorIs(t, err, ErrNegativeNetPay)
	require.Empty(t, store.created)
}

func TestCreateRejectsBadStaffID(t *testing.T) {
	svc := &Service{Store: &stubPaymentStore{}}
	_, err := svc.Create(context.Background(), CreateInput{StaffID: "not-a-uuid"})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestCommissionEntryMatchesStoredShape(t *testing.T) {
	var stored repo.CommissionEntry = CommissionEntry{Service: "Haircut", SaleNumber: "S-20260831-0A1B2C", Amount: decimal.NewFromInt(1000)}

	data, err := json.Marshal([]repo.CommissionEntry{stored})
	require.NoError(t, err)
	require.JSONEq(t, `[{"service":"Haircut","sale_number":"S-20260831-0A1B2C","amount":"1000"}]`, string(data))
}
