package reports_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-salon/internal/repo"
	"github.com/noah-isme/backend-salon/internal/reports"
)

type stubSales struct {
	dailyCalls      int
	commissionCalls int
	entries         []repo.StaffCommission
}

func (s *stubSales) DailySummary(_ context.Context, from, _ time.Time) ([]repo.DailySales, error) {
	s.dailyCalls++
	return []repo.DailySales{{Day: from, Sales: 2, Revenue: decimal.NewFromInt(4000)}}, nil
}

func (s *stubSales) CommissionEntries(_ context.Context, _ *uuid.UUID, _, _ time.Time) ([]repo.StaffCommission, error) {
	s.commissionCalls++
	return s.entries, nil
}

func newTestService(t *testing.T, src *stubSales) *reports.Service {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return &reports.Service{Sales: src, R: rdb, TTL: time.Minute}
}

func TestDailySalesCached(t *testing.T) {
	src := &stubSales{}
	svc := newTestService(t, src)
	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 7)

	_, err := svc.DailySales(context.Background(), from, to)
	require.NoError(t, err)
	_, err = svc.DailySales(context.Background(), from, to)
	require.NoError(t, err)
	require.Equal(t, 1, src.dailyCalls)
}

func TestCommissionsGroupedByStaff(t *testing.T) {
	alice := uuid.New()
	bob := uuid.New()
	src := &stubSales{entries: []repo.StaffCommission{
		{StaffID: alice, StaffName: "Alice", Service: "Haircut", SaleNumber: "S-001", Amount: decimal.NewFromInt(500)},
		{StaffID: bob, StaffName: "Bob", Service: "Color", SaleNumber: "S-002", Amount: decimal.NewFromInt(300)},
		{StaffID: alice, StaffName: "Alice", Service: "Spa", SaleNumber: "S-003", Amount: decimal.NewFromInt(250)},
	}}
	svc := newTestService(t, src)
	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	out, err := svc.Commissions(context.Background(), nil, from, from.AddDate(0, 0, 14))
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.Equal(t, "Alice", out[0].StaffName)
	require.Equal(t, "750", out[0].Total.String())
	require.Len(t, out[0].Entries, 2)
	require.Equal(t, "300", out[1].Total.String())
}

func TestRefreshDayInvalidatesRangeCaches(t *testing.T) {
	src := &stubSales{}
	svc := newTestService(t, src)
	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 7)

	_, err := svc.DailySales(context.Background(), from, to)
	require.NoError(t, err)
	require.Equal(t, 1, src.dailyCalls)

	require.NoError(t, svc.RefreshDay(context.Background(), from.AddDate(0, 0, 2)))

	// the cached range was dropped, so the next read goes back to the database
	_, err = svc.DailySales(context.Background(), from, to)
	require.NoError(t, err)
	require.Equal(t, 3, src.dailyCalls)
}
