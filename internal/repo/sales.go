package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Sale is the persisted snapshot of one checkout: totals plus the policy that
// produced them. Rows are immutable once written.
type Sale struct {
	ID              uuid.UUID
	Number          string
	StaffID         uuid.UUID
	Currency        string
	TaxRate         decimal.Decimal
	TaxMode         string
	Subtotal        decimal.Decimal
	TaxAmount       decimal.Decimal
	CommissionTotal decimal.Decimal
	GrandTotal      decimal.Decimal
	CreatedAt       time.Time
	Items           []SaleItem
}

// SaleItem is one sold line within a sale.
type SaleItem struct {
	ID             uuid.UUID
	SaleID         uuid.UUID
	ServiceID      uuid.UUID
	Name           string
	UnitPrice      decimal.Decimal
	Qty            int
	CommissionRate decimal.Decimal
	Commission     decimal.Decimal
}

// DailySales is one row of the daily sales summary.
type DailySales struct {
	Day             time.Time       `json:"day"`
	Sales           int64           `json:"sales"`
	Revenue         decimal.Decimal `json:"revenue"`
	TaxAmount       decimal.Decimal `json:"tax_amount"`
	CommissionTotal decimal.Decimal `json:"commission_total"`
}

// StaffCommission aggregates earned commission per staff member and service.
type StaffCommission struct {
	StaffID    uuid.UUID       `json:"staff_id"`
	StaffName  string          `json:"staff_name"`
	Service    string          `json:"service"`
	SaleNumber string          `json:"sale_number"`
	Amount     decimal.Decimal `json:"amount"`
	SoldAt     time.Time       `json:"sold_at"`
}

// Sales persists sale snapshots and serves report aggregations.
type Sales struct {
	Pool *pgxpool.Pool
}

const saleColumns = `id, number, staff_id, currency, tax_rate::text, tax_mode, subtotal::text, tax_amount::text, commission_total::text, grand_total::text, created_at`

func scanSale(row pgx.Row) (Sale, error) {
	var (
		s                                    Sale
		taxRate, sub, tax, commission, grand string
	)
	if err := row.Scan(&s.ID, &s.Number, &s.StaffID, &s.Currency, &taxRate, &s.TaxMode, &sub, &tax, &commission, &grand, &s.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Sale{}, ErrNotFound
		}
		return Sale{}, err
	}
	var err error
	if s.TaxRate, err = parseDec(taxRate); err != nil {
		return Sale{}, err
	}
	if s.Subtotal, err = parseDec(sub); err != nil {
		return Sale{}, err
	}
	if s.TaxAmount, err = parseDec(tax); err != nil {
		return Sale{}, err
	}
	if s.CommissionTotal, err = parseDec(commission); err != nil {
		return Sale{}, err
	}
	if s.GrandTotal, err = parseDec(grand); err != nil {
		return Sale{}, err
	}
	return s, nil
}

// Create writes the sale and its items in one transaction.
func (r *Sales) Create(ctx context.Context, sale Sale) (Sale, error) {
	tx, err := r.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Sale{}, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	row := tx.QueryRow(ctx,
		`INSERT INTO sales (id, number, staff_id, currency, tax_rate, tax_mode, subtotal, tax_amount, commission_total, grand_total)
		 VALUES ($1, $2, $3, $4, $5::numeric, $6, $7::numeric, $8::numeric, $9::numeric, $10::numeric)
		 RETURNING `+saleColumns,
		sale.ID, sale.Number, sale.StaffID, sale.Currency,
		decString(sale.TaxRate), sale.TaxMode,
		decString(sale.Subtotal), decString(sale.TaxAmount), decString(sale.CommissionTotal), decString(sale.GrandTotal))
	stored, err := scanSale(row)
	if err != nil {
		return Sale{}, err
	}

	for _, it := range sale.Items {
		if _, err := tx.Exec(ctx,
			`INSERT INTO sale_items (id, sale_id, service_id, name, unit_price, qty, commission_rate, commission)
			 VALUES ($1, $2, $3, $4, $5::numeric, $6, $7::numeric, $8::numeric)`,
			it.ID, stored.ID, it.ServiceID, it.Name, decString(it.UnitPrice), it.Qty, decString(it.CommissionRate), decString(it.Commission)); err != nil {
			return Sale{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Sale{}, err
	}
	stored.Items = sale.Items
	return stored, nil
}

// Get loads a sale and its items.
func (r *Sales) Get(ctx context.Context, id uuid.UUID) (Sale, error) {
	sale, err := scanSale(r.Pool.QueryRow(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1`, id))
	if err != nil {
		return Sale{}, err
	}
	rows, err := r.Pool.Query(ctx,
		`SELECT id, sale_id, service_id, name, unit_price::text, qty, commission_rate::text, commission::text
		 FROM sale_items WHERE sale_id = $1 ORDER BY name`, id)
	if err != nil {
		return Sale{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			it                  SaleItem
			price, rate, earned string
		)
		if err := rows.Scan(&it.ID, &it.SaleID, &it.ServiceID, &it.Name, &price, &it.Qty, &rate, &earned); err != nil {
			return Sale{}, err
		}
		if it.UnitPrice, err = parseDec(price); err != nil {
			return Sale{}, err
		}
		if it.CommissionRate, err = parseDec(rate); err != nil {
			return Sale{}, err
		}
		if it.Commission, err = parseDec(earned); err != nil {
			return Sale{}, err
		}
		sale.Items = append(sale.Items, it)
	}
	return sale, rows.Err()
}

// List returns sales newest-first with pagination.
func (r *Sales) List(ctx context.Context, limit, offset int) ([]Sale, int64, error) {
	rows, err := r.Pool.Query(ctx,
		`SELECT `+saleColumns+` FROM sales ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var out []Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	var total int64
	if err := r.Pool.QueryRow(ctx, `SELECT count(*) FROM sales`).Scan(&total); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// DailySummary aggregates sales per day between from (inclusive) and to (exclusive).
func (r *Sales) DailySummary(ctx context.Context, from, to time.Time) ([]DailySales, error) {
	rows, err := r.Pool.Query(ctx,
		`SELECT date_trunc('day', created_at) AS day,
		        count(*),
		        coalesce(sum(grand_total), 0)::text,
		        coalesce(sum(tax_amount), 0)::text,
		        coalesce(sum(commission_total), 0)::text
		 FROM sales
		 WHERE created_at >= $1 AND created_at < $2
		 GROUP BY 1 ORDER BY 1`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []DailySales
	for rows.Next() {
		var (
			d                    DailySales
			revenue, tax, earned string
		)
		if err := rows.Scan(&d.Day, &d.Sales, &revenue, &tax, &earned); err != nil {
			return nil, err
		}
		if d.Revenue, err = parseDec(revenue); err != nil {
			return nil, err
		}
		if d.TaxAmount, err = parseDec(tax); err != nil {
			return nil, err
		}
		if d.CommissionTotal, err = parseDec(earned); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// CommissionEntries lists per-line commissions earned in the period, optionally
// restricted to one staff member. The rows feed commission payments directly.
func (r *Sales) CommissionEntries(ctx context.Context, staffID *uuid.UUID, from, to time.Time) ([]StaffCommission, error) {
	query := `SELECT s.staff_id, st.name, i.name, s.number, i.commission::text, s.created_at
		 FROM sale_items i
		 JOIN sales s ON s.id = i.sale_id
		 JOIN staff st ON st.id = s.staff_id
		 WHERE s.created_at >= $1 AND s.created_at < $2`
	args := []any{from, to}
	if staffID != nil {
		query += ` AND s.staff_id = $3`
		args = append(args, *staffID)
	}
	query += ` ORDER BY s.created_at, s.number`
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []StaffCommission
	for rows.Next() {
		var (
			c      StaffCommission
			amount string
		)
		if err := rows.Scan(&c.StaffID, &c.StaffName, &c.Service, &c.SaleNumber, &amount, &c.SoldAt); err != nil {
			return nil, err
		}
		if c.Amount, err = parseDec(amount); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
