package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-salon/internal/repo"
)

var ErrInvalidInput = errors.New("invalid service input")

// Store is the persistence surface the service needs.
type Store interface {
	List(ctx context.Context, onlyActive bool) ([]repo.SalonService, error)
	Get(ctx context.Context, id uuid.UUID) (repo.SalonService, error)
	Create(ctx context.Context, svc repo.SalonService) (repo.SalonService, error)
	Update(ctx context.Context, svc repo.SalonService) (repo.SalonService, error)
}

// Service serves the salon catalog with a Redis read cache in front of
// Postgres. Writes go straight through and drop the cached listings.
type Service struct {
	Store Store
	R     *redis.Client
	TTL   time.Duration
}

const (
	cacheKeyActive = "catalog:services:active"
	cacheKeyAll    = "catalog:services:all"
)

// List returns catalog entries, cached per active filter.
func (s *Service) List(ctx context.Context, onlyActive bool) ([]repo.SalonService, error) {
	key := cacheKeyAll
	if onlyActive {
		key = cacheKeyActive
	}
	if s.R != nil {
		if raw, err := s.R.Get(ctx, key).Bytes(); err == nil {
			var cached []repo.SalonService
			if json.Unmarshal(raw, &cached) == nil {
				return cached, nil
			}
		}
	}
	services, err := s.Store.List(ctx, onlyActive)
	if err != nil {
		return nil, err
	}
	if s.R != nil {
		if raw, err := json.Marshal(services); err == nil {
			s.R.Set(ctx, key, raw, s.TTL)
		}
	}
	return services, nil
}

// Get loads one catalog entry. Single entries are not cached: the cart
// flow resolves them at add time and a stale price there would be worse
// than the extra query.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (repo.SalonService, error) {
	return s.Store.Get(ctx, id)
}

// CreateInput carries a new catalog entry.
type CreateInput struct {
	Name            string
	Price           decimal.Decimal
	DurationMinutes int
	CommissionRate  *decimal.Decimal
	Active          bool
}

func (in CreateInput) validate() error {
	if in.Name == "" {
		return ErrInvalidInput
	}
	if in.Price.IsNegative() {
		return ErrInvalidInput
	}
	if in.DurationMinutes <= 0 {
		return ErrInvalidInput
	}
	if in.CommissionRate != nil {
		if in.CommissionRate.IsNegative() || in.CommissionRate.GreaterThan(decimal.NewFromInt(1)) {
			return ErrInvalidInput
		}
	}
	return nil
}

// Create stores a new catalog entry and invalidates the cached listings.
func (s *Service) Create(ctx context.Context, in CreateInput) (repo.SalonService, error) {
	if err := in.validate(); err != nil {
		return repo.SalonService{}, err
	}
	stored, err := s.Store.Create(ctx, repo.SalonService{
		ID:              uuid.New(),
		Name:            in.Name,
		Price:           in.Price,
		DurationMinutes: in.DurationMinutes,
		CommissionRate:  in.CommissionRate,
		Active:          in.Active,
	})
	if err != nil {
		return repo.SalonService{}, err
	}
	s.invalidate(ctx)
	return stored, nil
}

// Update rewrites an existing entry and invalidates the cached listings.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in CreateInput) (repo.SalonService, error) {
	if err := in.validate(); err != nil {
		return repo.SalonService{}, err
	}
	if _, err := s.Store.Get(ctx, id); err != nil {
		return repo.SalonService{}, err
	}
	stored, err := s.Store.Update(ctx, repo.SalonService{
		ID:              id,
		Name:            in.Name,
		Price:           in.Price,
		DurationMinutes: in.DurationMinutes,
		CommissionRate:  in.CommissionRate,
		Active:          in.Active,
	})
	if err != nil {
		return repo.SalonService{}, err
	}
	s.invalidate(ctx)
	return stored, nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.R == nil {
		return
	}
	s.R.Del(ctx, cacheKeyActive, cacheKeyAll)
}
