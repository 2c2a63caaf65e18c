package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-salon/internal/repo"
)

type stubStore struct {
	services  map[uuid.UUID]repo.SalonService
	listCalls int
}

func newStubStore() *stubStore {
	return &stubStore{services: map[uuid.UUID]repo.SalonService{}}
}

func (s *stubStore) List(_ context.Context, onlyActive bool) ([]repo.SalonService, error) {
	s.listCalls++
	var out []repo.SalonService
	for _, svc := range s.services {
		if onlyActive && !svc.Active {
			continue
		}
		out = append(out, svc)
	}
	return out, nil
}

func (s *stubStore) Get(_ context.Context, id uuid.UUID) (repo.SalonService, error) {
	svc, ok := s.services[id]
	if !ok {
		return repo.SalonService{}, repo.ErrNotFound
	}
	return svc, nil
}

func (s *stubStore) Create(_ context.Context, svc repo.SalonService) (repo.SalonService, error) {
	svc.CreatedAt = time.Now()
	svc.UpdatedAt = svc.CreatedAt
	s.services[svc.ID] = svc
	return svc, nil
}

func (s *stubStore) Update(_ context.Context, svc repo.SalonService) (repo.SalonService, error) {
	existing, ok := s.services[svc.ID]
	if !ok {
		return repo.SalonService{}, repo.ErrNotFound
	}
	svc.CreatedAt = existing.CreatedAt
	svc.UpdatedAt = time.Now()
	s.services[svc.ID] = svc
	return svc, nil
}

func newTestService(t *testing.T) (*Service, *stubStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	store := newStubStore()
	return &Service{Store: store, R: rdb, TTL: time.Minute}, store
}

func TestListCachesResult(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{Name: "Haircut", Price: decimal.NewFromInt(2000), DurationMinutes: 45, Active: true})
	require.NoError(t, err)

	first, err := svc.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := svc.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, second, 1)
	require.Equal(t, 1, store.listCalls)
}

func TestWriteInvalidatesCache(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	_, err := svc.List(ctx, true)
	require.NoError(t, err)
	require.Equal(t, 1, store.listCalls)

	_, err = svc.Create(ctx, CreateInput{Name: "Manicure", Price: decimal.NewFromInt(1500), DurationMinutes: 30, Active: true})
	require.NoError(t, err)

	listed, err := svc.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, 2, store.listCalls)
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{Name: "", Price: decimal.NewFromInt(100), DurationMinutes: 30})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Create(ctx, CreateInput{Name: "Facial", Price: decimal.NewFromInt(-5), DurationMinutes: 30})
	require.ErrorIs(t, err, ErrInvalidInput)

	over := decimal.NewFromFloat(1.5)
	_, err = svc.Create(ctx, CreateInput{Name: "Facial", Price: decimal.NewFromInt(100), DurationMinutes: 30, CommissionRate: &over})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestUpdateUnknownService(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Update(context.Background(), uuid.New(), CreateInput{Name: "Facial", Price: decimal.NewFromInt(100), DurationMinutes: 30})
	require.ErrorIs(t, err, repo.ErrNotFound)
}
