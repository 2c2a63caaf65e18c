package repo

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// CommissionEntry is one earned commission attributed to a sale. It is
// stored as an element of the commission_payments.commissions JSONB column.
type CommissionEntry struct {
	Service    string          `json:"service"`
	SaleNumber string          `json:"sale_number"`
	Amount     decimal.Decimal `json:"amount"`
}

// CommissionPayment is one persisted staff payout. Rows are immutable:
// corrections are recorded as new payments, never as updates.
type CommissionPayment struct {
	ID              uuid.UUID
	StaffID         uuid.UUID
	PeriodStart     time.Time
	PeriodEnd       time.Time
	BasePay         decimal.Decimal
	Bonuses         decimal.Decimal
	Tips            decimal.Decimal
	CommissionTotal decimal.Decimal
	DeductionTotal  decimal.Decimal
	GrossPay        decimal.Decimal
	NetPay          decimal.Decimal
	Commissions     []CommissionEntry
	Deductions      map[string]decimal.Decimal
	CreatedAt       time.Time
}

// Payments persists commission payments.
type Payments struct {
	Pool *pgxpool.Pool
}

const paymentColumns = `id, staff_id, period_start, period_end, base_pay::text, bonuses::text, tips::text,
	commission_total::text, deduction_total::text, gross_pay::text, net_pay::text, commissions, deductions, created_at`

func scanPayment(row pgx.Row) (CommissionPayment, error) {
	var (
		p                                                      CommissionPayment
		base, bonuses, tips, commission, deduction, gross, net string
		commissionsJSON, deductionsJSON                        []byte
	)
	if err := row.Scan(&p.ID, &p.StaffID, &p.PeriodStart, &p.PeriodEnd, &base, &bonuses, &tips,
		&commission, &deduction, &gross, &net, &commissionsJSON, &deductionsJSON, &p.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return CommissionPayment{}, ErrNotFound
		}
		return CommissionPayment{}, err
	}
	var err error
	if p.BasePay, err = parseDec(base); err != nil {
		return CommissionPayment{}, err
	}
	if p.Bonuses, err = parseDec(bonuses); err != nil {
		return CommissionPayment{}, err
	}
	if p.Tips, err = parseDec(tips); err != nil {
		return CommissionPayment{}, err
	}
	if p.CommissionTotal, err = parseDec(commission); err != nil {
		return CommissionPayment{}, err
	}
	if p.DeductionTotal, err = parseDec(deduction); err != nil {
		return CommissionPayment{}, err
	}
	if p.GrossPay, err = parseDec(gross); err != nil {
		return CommissionPayment{}, err
	}
	if p.NetPay, err = parseDec(net); err != nil {
		return CommissionPayment{}, err
	}
	if len(commissionsJSON) > 0 {
		if err := json.Unmarshal(commissionsJSON, &p.Commissions); err != nil {
			return CommissionPayment{}, err
		}
	}
	if len(deductionsJSON) > 0 {
		if err := json.Unmarshal(deductionsJSON, &p.Deductions); err != nil {
			return CommissionPayment{}, err
		}
	}
	return p, nil
}

// Create inserts a payment record.
func (r *Payments) Create(ctx context.Context, p CommissionPayment) (CommissionPayment, error) {
	commissionsJSON, err := json.Marshal(p.Commissions)
	if err != nil {
		return CommissionPayment{}, err
	}
	deductionsJSON, err := json.Marshal(p.Deductions)
	if err != nil {
		return CommissionPayment{}, err
	}
	row := r.Pool.QueryRow(ctx,
		`INSERT INTO commission_payments
		 (id, staff_id, period_start, period_end, base_pay, bonuses, tips,
		  commission_total, deduction_total, gross_pay, net_pay, commissions, deductions)
		 VALUES ($1, $2, $3, $4, $5::numeric, $6::numeric, $7::numeric,
		         $8::numeric, $9::numeric, $10::numeric, $11::numeric, $12, $13)
		 RETURNING `+paymentColumns,
		p.ID, p.StaffID, p.PeriodStart, p.PeriodEnd,
		decString(p.BasePay), decString(p.Bonuses), decString(p.Tips),
		decString(p.CommissionTotal), decString(p.DeductionTotal), decString(p.GrossPay), decString(p.NetPay),
		commissionsJSON, deductionsJSON)
	return scanPayment(row)
}

// List returns payments filtered by staff and period overlap, newest first.
func (r *Payments) List(ctx context.Context, staffID *uuid.UUID, from, to *time.Time) ([]CommissionPayment, error) {
	query := `SELECT ` + paymentColumns + ` FROM commission_payments WHERE true`
	args := []any{}
	if staffID != nil {
		args = append(args, *staffID)
		query += ` AND staff_id = $1`
	}
	if from != nil {
		args = append(args, *from)
		query += ` AND period_end >= $` + strconv.Itoa(len(args))
	}
	if to != nil {
		args = append(args, *to)
		query += ` AND period_start <= $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY created_at DESC`
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []CommissionPayment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
