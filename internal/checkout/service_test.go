package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-salon/internal/cart"
	"github.com/noah-isme/backend-salon/internal/pricing"
	"github.com/noah-isme/backend-salon/internal/repo"
)

type stubCatalog struct {
	services map[uuid.UUID]repo.SalonService
}

func (s stubCatalog) Get(_ context.Context, id uuid.UUID) (repo.SalonService, error) {
	svc, ok := s.services[id]
	if !ok {
		return repo.SalonService{}, repo.ErrNotFound
	}
	return svc, nil
}

type stubSaleStore struct {
	created []repo.Sale
	fail    error
}

func (s *stubSaleStore) Create(_ context.Context, sale repo.Sale) (repo.Sale, error) {
	if s.fail != nil {
		return repo.Sale{}, s.fail
	}
	sale.CreatedAt = time.Date(2026, 8, 31, 15, 0, 0, 0, time.UTC)
	s.created = append(s.created, sale)
	return sale, nil
}

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func newFixture(t *testing.T, policy pricing.Policy) (*Service, *cart.Service, *stubSaleStore, uuid.UUID) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	serviceID := uuid.New()
	catalog := stubCatalog{services: map[uuid.UUID]repo.SalonService{
		serviceID: {ID: serviceID, Name: "Balayage", Price: dec("2000"), DurationMinutes: 120, Active: true},
	}}
	cartSvc := &cart.Service{
		Store:   cart.Store{R: rdb, TTL: time.Hour},
		Catalog: catalog,
		Policy:  policy,
	}
	sales := &stubSaleStore{}
	svc := &Service{
		Cart:     cartSvc,
		Sales:    sales,
		Policy:   policy,
		Currency: "KES",
	}
	return svc, cartSvc, sales, serviceID
}

func exclusivePolicy() pricing.Policy {
	return pricing.Policy{
		TaxRate:               dec("0.08"),
		TaxMode:               pricing.TaxExclusive,
		DefaultCommissionRate: dec("0.5"),
	}
}

func TestCreatePersistsSaleSnapshot(t *testing.T) {
	svc, cartSvc, sales, serviceID := newFixture(t, exclusivePolicy())
	ctx := context.Background()
	staffID := uuid.NewString()

	c, err := cartSvc.Create(ctx, staffID)
	require.NoError(t, err)
	_, err = cartSvc.AddItem(ctx, c.ID, serviceID.String(), 1)
	require.NoError(t, err)

	out, err := svc.Create(ctx, staffID, Input{CartID: c.ID})
	require.NoError(t, err)
	require.Equal(t, "2000", out.Subtotal)
	require.Equal(t, "160", out.TaxAmount)
	require.Equal(t, "1000", out.CommissionTotal)
	require.Equal(t, "2160", out.GrandTotal)
	require.Equal(t, "KES", out.Currency)
	require.Regexp(t, `^S-\d{8}-[0-9A-F]{6}$`, out.Number)

	require.Len(t, sales.created, 1)
	stored := sales.created[0]
	require.Equal(t, staffID, stored.StaffID.String())
	require.Equal(t, "exclusive", stored.TaxMode)
	require.Len(t, stored.Items, 1)
	require.Equal(t, "1000.00", stored.Items[0].Commission.StringFixed(2))

	// the session is consumed once the sale is booked
	_, err = cartSvc.Get(ctx, c.ID)
	require.ErrorIs(t, err, cart.ErrNotFound)
}

func TestCreateRejectsEmptyCart(t *testing.T) {
	svc, cartSvc, sales, _ := newFixture(t, exclusivePolicy())
	ctx := context.Background()
	staffID := uuid.NewString()

	c, err := cartSvc.Create(ctx, staffID)
	require.NoError(t, err)

	_, err = svc.Create(ctx, staffID, Input{CartID: c.ID})
	require.ErrorIs(t, err, pricing.ErrEmptyCart)
	require.Empty(t, sales.created)

	// a rejected checkout leaves the cart alone
	_, err = cartSvc.Get(ctx, c.ID)
	require.NoError(t, err)
}

func TestCreateRequiresStaffAttribution(t *testing.T) {
	svc, cartSvc, _, serviceID := newFixture(t, exclusivePolicy())
	ctx := context.Background()

	c, err := cartSvc.Create(ctx, "")
	require.NoError(t, err)
	_, err = cartSvc.AddItem(ctx, c.ID, serviceID.String(), 1)
	require.NoError(t, err)

	_, err = svc.Create(ctx, "", Input{CartID: c.ID})
	require.ErrorIs(t, err, cart.ErrInvalidInput)
}

func TestCreateUnknownCart(t *testing.T) {
	svc, _, _, _ := newFixture(t, exclusivePolicy())
	_, err := svc.Create(context.Background(), uuid.NewString(), Input{CartID: uuid.NewString()})
	require.ErrorIs(t, err, cart.ErrNotFound)
}

func TestCreateInclusiveModeKeepsDisplayedTotal(t *testing.T) {
	policy := pricing.Policy{
		TaxRate:               dec("0.16"),
		TaxMode:               pricing.TaxInclusive,
		DefaultCommissionRate: dec("0.5"),
	}
	svc, cartSvc, sales, serviceID := newFixture(t, policy)
	ctx := context.Background()
	staffID := uuid.NewString()

	c, err := cartSvc.Create(ctx, staffID)
	require.NoError(t, err)
	_, err = cartSvc.AddItem(ctx, c.ID, serviceID.String(), 1)
	require.NoError(t, err)

	out, err := svc.Create(ctx, staffID, Input{CartID: c.ID})
	require.NoError(t, err)
	require.Equal(t, "2000", out.GrandTotal)
	require.Equal(t, "275.86", out.TaxAmount)
	require.Equal(t, "1000", out.CommissionTotal)
	require.Len(t, sales.created, 1)
}
