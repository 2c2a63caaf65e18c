package staff

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-salon/internal/auth"
	"github.com/noah-isme/backend-salon/internal/common"
	"github.com/noah-isme/backend-salon/internal/repo"
)

var ErrInvalidCredentials = common.Unauthorized("invalid email or PIN", nil)

var pinPattern = regexp.MustCompile(`^[0-9]{4,8}$`)

// Store is the persistence surface the service needs.
type Store interface {
	Create(ctx context.Context, m repo.StaffMember) (repo.StaffMember, error)
	GetByEmail(ctx context.Context, email string) (repo.StaffMember, error)
	GetByID(ctx context.Context, id uuid.UUID) (repo.StaffMember, error)
	List(ctx context.Context) ([]repo.StaffMember, error)
}

// Service manages staff records and terminal logins. PINs are hashed with
// argon2id; the plain PIN is never stored.
type Service struct {
	Store  Store
	Tokens *auth.Tokens
}

// CreateInput carries a new staff member.
type CreateInput struct {
	Name           string
	Email          string
	PIN            string
	CommissionRate decimal.Decimal
	Role           string
}

// Create hashes the PIN and stores the staff member.
func (s *Service) Create(ctx context.Context, in CreateInput) (repo.StaffMember, error) {
	if in.Name == "" || in.Email == "" {
		return repo.StaffMember{}, common.Invalid("name and email are required")
	}
	if !pinPattern.MatchString(in.PIN) {
		return repo.StaffMember{}, common.Invalid("PIN must be 4 to 8 digits")
	}
	if in.CommissionRate.IsNegative() || in.CommissionRate.GreaterThan(decimal.NewFromInt(1)) {
		return repo.StaffMember{}, common.Invalid("commission_rate must be between 0 and 1")
	}
	role := in.Role
	if role == "" {
		role = "stylist"
	}
	hash, err := argon2id.CreateHash(in.PIN, argon2id.DefaultParams)
	if err != nil {
		return repo.StaffMember{}, err
	}
	return s.Store.Create(ctx, repo.StaffMember{
		ID:             uuid.New(),
		Name:           in.Name,
		Email:          in.Email,
		PinHash:        hash,
		CommissionRate: in.CommissionRate,
		Role:           role,
		Active:         true,
	})
}

// LoginResult is a successful terminal login.
type LoginResult struct {
	Staff       repo.StaffMember
	AccessToken string
	ExpiresAt   time.Time
}

// Login verifies the PIN and issues an access token. Lookup misses and
// PIN mismatches return the same error so the response does not leak
// which emails exist.
func (s *Service) Login(ctx context.Context, email, pin string) (LoginResult, error) {
	member, err := s.Store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, err
	}
	if !member.Active {
		return LoginResult{}, ErrInvalidCredentials
	}
	ok, err := argon2id.ComparePasswordAndHash(pin, member.PinHash)
	if err != nil {
		return LoginResult{}, err
	}
	if !ok {
		return LoginResult{}, ErrInvalidCredentials
	}
	token, expiresAt, err := s.Tokens.Sign(member.ID.String())
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{Staff: member, AccessToken: token, ExpiresAt: expiresAt}, nil
}

// List returns all staff members.
func (s *Service) List(ctx context.Context) ([]repo.StaffMember, error) {
	return s.Store.List(ctx)
}

// Get loads one staff member.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (repo.StaffMember, error) {
	return s.Store.GetByID(ctx, id)
}
