package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-salon/internal/repo"
)

// SalesSource is the database access required for report aggregation.
type SalesSource interface {
	DailySummary(ctx context.Context, from, to time.Time) ([]repo.DailySales, error)
	CommissionEntries(ctx context.Context, staffID *uuid.UUID, from, to time.Time) ([]repo.StaffCommission, error)
}

// StaffCommissionReport groups earned commission per staff member over a period.
type StaffCommissionReport struct {
	StaffID   uuid.UUID              `json:"staff_id"`
	StaffName string                 `json:"staff_name"`
	Total     decimal.Decimal        `json:"total"`
	Entries   []repo.StaffCommission `json:"entries"`
}

// Service provides cached access to sales and commission aggregations.
// Caches are best-effort: a cold or absent Redis only costs a database trip.
type Service struct {
	Sales SalesSource
	R     *redis.Client
	TTL   time.Duration
	Now   func() time.Time
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func rangeKey(kind string, from, to time.Time) string {
	return fmt.Sprintf("rep:%s:%s:%s", kind, from.Format("2006-01-02"), to.Format("2006-01-02"))
}

// DailySales returns the per-day sales summary between from and to.
func (s *Service) DailySales(ctx context.Context, from, to time.Time) ([]repo.DailySales, error) {
	if s == nil || s.Sales == nil {
		return nil, fmt.Errorf("reports service not configured")
	}
	key := rangeKey("sales", from, to)
	var cached []repo.DailySales
	if s.load(ctx, key, &cached) {
		return cached, nil
	}
	rows, err := s.Sales.DailySummary(ctx, from, to)
	if err != nil {
		return nil, err
	}
	s.store(ctx, key, rows)
	return rows, nil
}

// Commissions returns earned commission grouped per staff member. When staffID
// is set only that staff member's report is returned.
func (s *Service) Commissions(ctx context.Context, staffID *uuid.UUID, from, to time.Time) ([]StaffCommissionReport, error) {
	if s == nil || s.Sales == nil {
		return nil, fmt.Errorf("reports service not configured")
	}
	key := rangeKey("comm", from, to)
	if staffID != nil {
		key += ":" + staffID.String()
	}
	var cached []StaffCommissionReport
	if s.load(ctx, key, &cached) {
		return cached, nil
	}
	entries, err := s.Sales.CommissionEntries(ctx, staffID, from, to)
	if err != nil {
		return nil, err
	}
	reports := groupByStaff(entries)
	s.store(ctx, key, reports)
	return reports, nil
}

// RefreshDay recomputes the summary for the day containing ts and drops stale
// range caches. Called by the worker after every sale.
func (s *Service) RefreshDay(ctx context.Context, ts time.Time) error {
	if s == nil || s.Sales == nil {
		return fmt.Errorf("reports service not configured")
	}
	day := ts.Truncate(24 * time.Hour)
	rows, err := s.Sales.DailySummary(ctx, day, day.AddDate(0, 0, 1))
	if err != nil {
		return err
	}
	s.invalidate(ctx, "rep:sales:*", "rep:comm:*")
	s.store(ctx, rangeKey("sales", day, day.AddDate(0, 0, 1)), rows)
	return nil
}

func groupByStaff(entries []repo.StaffCommission) []StaffCommissionReport {
	var order []uuid.UUID
	byStaff := map[uuid.UUID]*StaffCommissionReport{}
	for _, e := range entries {
		report, ok := byStaff[e.StaffID]
		if !ok {
			report = &StaffCommissionReport{StaffID: e.StaffID, StaffName: e.StaffName, Total: decimal.Zero}
			byStaff[e.StaffID] = report
			order = append(order, e.StaffID)
		}
		report.Total = report.Total.Add(e.Amount)
		report.Entries = append(report.Entries, e)
	}
	out := make([]StaffCommissionReport, 0, len(order))
	for _, id := range order {
		out = append(out, *byStaff[id])
	}
	return out
}

func (s *Service) load(ctx context.Context, key string, dest any) bool {
	if s.R == nil || s.TTL <= 0 {
		return false
	}
	data, err := s.R.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(data, dest) == nil
}

func (s *Service) store(ctx context.Context, key string, value any) {
	if s.R == nil || s.TTL <= 0 {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	_ = s.R.Set(ctx, key, data, s.TTL).Err()
}

func (s *Service) invalidate(ctx context.Context, patterns ...string) {
	if s.R == nil {
		return
	}
	for _, pattern := range patterns {
		iter := s.R.Scan(ctx, 0, pattern, 100).Iterator()
		for iter.Next(ctx) {
			_ = s.R.Del(ctx, iter.Val()).Err()
		}
	}
}
