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

// ErrNotFound indicates the requested row does not exist.
var ErrNotFound = errors.New("not found")

// SalonService is one bookable service offered by the salon.
type SalonService struct {
	ID              uuid.UUID
	Name            string
	Price           decimal.Decimal
	DurationMinutes int
	// CommissionRate overrides the policy default when set.
	CommissionRate *decimal.Decimal
	Active         bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Catalog persists the salon service catalog.
type Catalog struct {
	Pool *pgxpool.Pool
}

const serviceColumns = `id, name, price::text, duration_minutes, commission_rate::text, active, created_at, updated_at`

func scanService(row pgx.Row) (SalonService, error) {
	var (
		svc      SalonService
		price    string
		rateText *string
	)
	if err := row.Scan(&svc.ID, &svc.Name, &price, &svc.DurationMinutes, &rateText, &svc.Active, &svc.CreatedAt, &svc.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return SalonService{}, ErrNotFound
		}
		return SalonService{}, err
	}
	var err error
	if svc.Price, err = parseDec(price); err != nil {
		return SalonService{}, err
	}
	if svc.CommissionRate, err = parseDecPtr(rateText); err != nil {
		return SalonService{}, err
	}
	return svc, nil
}

// List returns catalog entries, optionally restricted to active ones.
func (c *Catalog) List(ctx context.Context, onlyActive bool) ([]SalonService, error) {
	query := `SELECT ` + serviceColumns + ` FROM services ORDER BY name`
	if onlyActive {
		query = `SELECT ` + serviceColumns + ` FROM services WHERE active ORDER BY name`
	}
	rows, err := c.Pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []SalonService
	for rows.Next() {
		svc, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, svc)
	}
	return out, rows.Err()
}

// Get loads one catalog entry by id.
func (c *Catalog) Get(ctx context.Context, id uuid.UUID) (SalonService, error) {
	row := c.Pool.QueryRow(ctx, `SELECT `+serviceColumns+` FROM services WHERE id = $1`, id)
	return scanService(row)
}

// Create inserts a catalog entry and returns the stored row.
func (c *Catalog) Create(ctx context.Context, svc SalonService) (SalonService, error) {
	row := c.Pool.QueryRow(ctx,
		`INSERT INTO services (id, name, price, duration_minutes, commission_rate, active)
		 VALUES ($1, $2, $3::numeric, $4, $5::numeric, $6)
		 RETURNING `+serviceColumns,
		svc.ID, svc.Name, decString(svc.Price), svc.DurationMinutes, decStringPtr(svc.CommissionRate), svc.Active)
	return scanService(row)
}

// Update rewrites the mutable columns of a catalog entry.
func (c *Catalog) Update(ctx context.Context, svc SalonService) (SalonService, error) {
	row := c.Pool.QueryRow(ctx,
		`UPDATE services
		 SET name = $2, price = $3::numeric, duration_minutes = $4, commission_rate = $5::numeric, active = $6, updated_at = now()
		 WHERE id = $1
		 RETURNING `+serviceColumns,
		svc.ID, svc.Name, decString(svc.Price), svc.DurationMinutes, decStringPtr(svc.CommissionRate), svc.Active)
	return scanService(row)
}
