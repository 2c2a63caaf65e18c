package cart_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-salon/internal/cart"
	"github.com/noah-isme/backend-salon/internal/pricing"
	"github.com/noah-isme/backend-salon/internal/repo"
)

type stubCatalog struct {
	services map[uuid.UUID]repo.SalonService
}

func (s *stubCatalog) Get(_ context.Context, id uuid.UUID) (repo.SalonService, error) {
	svc, ok := s.services[id]
	if !ok {
		return repo.SalonService{}, repo.ErrNotFound
	}
	return svc, nil
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func newTestService(t *testing.T) (*cart.Service, uuid.UUID) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	haircutID := uuid.New()
	catalog := &stubCatalog{services: map[uuid.UUID]repo.SalonService{
		haircutID: {ID: haircutID, Name: "Haircut", Price: dec("2000"), Active: true},
	}}
	svc := &cart.Service{
		Store:   cart.Store{R: rdb, TTL: time.Hour},
		Catalog: catalog,
		Policy: pricing.Policy{
			TaxRate:               dec("0.08"),
			TaxMode:               pricing.TaxExclusive,
			DefaultCommissionRate: dec("0.50"),
		},
	}
	return svc, haircutID
}

func TestCartLifecycle(t *testing.T) {
	svc, haircutID := newTestService(t)
	ctx := context.Background()

	c, err := svc.Create(ctx, "staff-1")
	require.NoError(t, err)
	require.Empty(t, c.Items)

	c, err = svc.AddItem(ctx, c.ID, haircutID.String(), 1)
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	require.Equal(t, "Haircut", c.Items[0].Name)

	// adding the same service again increments the existing line
	c, err = svc.AddItem(ctx, c.ID, haircutID.String(), 2)
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	require.Equal(t, 3, c.Items[0].Qty)

	c, err = svc.UpdateItem(ctx, c.ID, c.Items[0].ID, 1)
	require.NoError(t, err)
	require.Equal(t, 1, c.Items[0].Qty)

	c, err = svc.RemoveItem(ctx, c.ID, c.Items[0].ID)
	require.NoError(t, err)
	require.Empty(t, c.Items)
}

func TestQuoteRecomputesOnEveryEdit(t *testing.T) {
	svc, haircutID := newTestService(t)
	ctx := context.Background()

	c, err := svc.Create(ctx, "")
	require.NoError(t, err)

	totals, err := svc.Quote(ctx, c.ID)
	require.NoError(t, err)
	require.True(t, totals.Subtotal.IsZero())

	_, err = svc.AddItem(ctx, c.ID, haircutID.String(), 1)
	require.NoError(t, err)

	totals, err = svc.Quote(ctx, c.ID)
	require.NoError(t, err)
	require.Equal(t, "2000", totals.Subtotal.String())
	require.Equal(t, "160", totals.TaxAmount.String())
	require.Equal(t, "1000", totals.CommissionTotal.String())
	require.Equal(t, "2160", totals.GrandTotal.String())
}

func TestAddItemValidation(t *testing.T) {
	svc, haircutID := newTestService(t)
	ctx := context.Background()

	c, err := svc.Create(ctx, "")
	require.NoError(t, err)

	_, err = svc.AddItem(ctx, c.ID, haircutID.String(), 0)
	require.ErrorIs(t, err, cart.ErrInvalidInput)

	_, err = svc.AddItem(ctx, c.ID, uuid.NewString(), 1)
	require.ErrorIs(t, err, repo.ErrNotFound)

	_, err = svc.AddItem(ctx, "missing", haircutID.String(), 1)
	require.ErrorIs(t, err, cart.ErrNotFound)
}

func TestConsumeRemovesCart(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	c, err := svc.Create(ctx, "")
	require.NoError(t, err)
	require.NoError(t, svc.Consume(ctx, c.ID))

	_, err = svc.Get(ctx, c.ID)
	require.ErrorIs(t, err, cart.ErrNotFound)
}
