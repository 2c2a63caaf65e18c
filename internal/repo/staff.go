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

// StaffMember is one employee who can sell services and earn commission.
type StaffMember struct {
	ID             uuid.UUID
	Name           string
	Email          string
	PinHash        string
	CommissionRate decimal.Decimal
	Role           string
	Active         bool
	CreatedAt      time.Time
}

// Staff persists staff records.
type Staff struct {
	Pool *pgxpool.Pool
}

const staffColumns = `id, name, email, pin_hash, commission_rate::text, role, active, created_at`

func scanStaff(row pgx.Row) (StaffMember, error) {
	var (
		m    StaffMember
		rate string
	)
	if err := row.Scan(&m.ID, &m.Name, &m.Email, &m.PinHash, &rate, &m.Role, &m.Active, &m.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return StaffMember{}, ErrNotFound
		}
		return StaffMember{}, err
	}
	var err error
	if m.CommissionRate, err = parseDec(rate); err != nil {
		return StaffMember{}, err
	}
	return m, nil
}

// Create inserts a staff member.
func (s *Staff) Create(ctx context.Context, m StaffMember) (StaffMember, error) {
	row := s.Pool.QueryRow(ctx,
		`INSERT INTO staff (id, name, email, pin_hash, commission_rate, role, active)
		 VALUES ($1, $2, $3, $4, $5::numeric, $6, $7)
		 RETURNING `+staffColumns,
		m.ID, m.Name, m.Email, m.PinHash, decString(m.CommissionRate), m.Role, m.Active)
	return scanStaff(row)
}

// GetByEmail loads a staff member by email.
func (s *Staff) GetByEmail(ctx context.Context, email string) (StaffMember, error) {
	row := s.Pool.QueryRow(ctx, `SELECT `+staffColumns+` FROM staff WHERE email = $1`, email)
	return scanStaff(row)
}

// GetByID loads a staff member by id.
func (s *Staff) GetByID(ctx context.Context, id uuid.UUID) (StaffMember, error) {
	row := s.Pool.QueryRow(ctx, `SELECT `+staffColumns+` FROM staff WHERE id = $1`, id)
	return scanStaff(row)
}

// List returns all staff ordered by name.
func (s *Staff) List(ctx context.Context) ([]StaffMember, error) {
	rows, err := s.Pool.Query(ctx, `SELECT `+staffColumns+` FROM staff ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []StaffMember
	for rows.Next() {
		m, err := scanStaff(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
