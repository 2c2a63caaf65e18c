package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/backend-salon/internal/pricing"
	"github.com/noah-isme/backend-salon/internal/repo"
)

// ErrInvalidInput is returned when the provided payload is invalid.
var ErrInvalidInput = errors.New("invalid input")

// ServiceSource resolves catalog entries added to carts.
type ServiceSource interface {
	Get(ctx context.Context, id uuid.UUID) (repo.SalonService, error)
}

// Service encapsulates cart session operations. Prices and commission-rate
// overrides are resolved from the catalog when an item is added, so a cart
// holds everything the pricing engine needs without further lookups.
type Service struct {
	Store   Store
	Catalog ServiceSource
	Policy  pricing.Policy
	Now     func() time.Time
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Create starts an empty cart session, optionally attributed to a staff member.
func (s *Service) Create(ctx context.Context, staffID string) (Cart, error) {
	now := s.now()
	c := Cart{
		ID:        uuid.NewString(),
		StaffID:   staffID,
		Items:     []Item{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Store.Save(ctx, c); err != nil {
		return Cart{}, err
	}
	return c, nil
}

// Get loads a cart session.
func (s *Service) Get(ctx context.Context, id string) (Cart, error) {
	return s.Store.Load(ctx, id)
}

// AddItem resolves the catalog entry and appends or increments a line.
func (s *Service) AddItem(ctx context.Context, cartID, serviceID string, qty int) (Cart, error) {
	if qty < 1 {
		return Cart{}, fmt.Errorf("qty must be at least 1: %w", ErrInvalidInput)
	}
	svcID, err := uuid.Parse(serviceID)
	if err != nil {
		return Cart{}, fmt.Errorf("parse service id: %w", ErrInvalidInput)
	}
	c, err := s.Store.Load(ctx, cartID)
	if err != nil {
		return Cart{}, err
	}
	entry, err := s.Catalog.Get(ctx, svcID)
	if err != nil {
		return Cart{}, err
	}
	if !entry.Active {
		return Cart{}, fmt.Errorf("service %s is not bookable: %w", entry.Name, ErrInvalidInput)
	}

	for i := range c.Items {
		if c.Items[i].ServiceID == serviceID {
			c.Items[i].Qty += qty
			return c, s.touch(ctx, &c)
		}
	}
	c.Items = append(c.Items, Item{
		ID:             uuid.NewString(),
		ServiceID:      serviceID,
		Name:           entry.Name,
		UnitPrice:      entry.Price,
		Qty:            qty,
		CommissionRate: entry.CommissionRate,
	})
	return c, s.touch(ctx, &c)
}

// UpdateItem sets a line's quantity.
func (s *Service) UpdateItem(ctx context.Context, cartID, itemID string, qty int) (Cart, error) {
	if qty < 1 {
		return Cart{}, fmt.Errorf("qty must be at least 1: %w", ErrInvalidInput)
	}
	c, err := s.Store.Load(ctx, cartID)
	if err != nil {
		return Cart{}, err
	}
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			c.Items[i].Qty = qty
			return c, s.touch(ctx, &c)
		}
	}
	return Cart{}, fmt.Errorf("line %s: %w", itemID, ErrNotFound)
}

// RemoveItem drops a line from the cart.
func (s *Service) RemoveItem(ctx context.Context, cartID, itemID string) (Cart, error) {
	c, err := s.Store.Load(ctx, cartID)
	if err != nil {
		return Cart{}, err
	}
	kept := c.Items[:0]
	found := false
	for _, it := range c.Items {
		if it.ID == itemID {
			found = true
			continue
		}
		kept = append(kept, it)
	}
	if !found {
		return Cart{}, fmt.Errorf("line %s: %w", itemID, ErrNotFound)
	}
	c.Items = kept
	return c, s.touch(ctx, &c)
}

// Quote recomputes preview totals for the cart. Empty carts quote all-zero
// totals so the till can render a live preview on every edit.
func (s *Service) Quote(ctx context.Context, cartID string) (pricing.SaleTotals, error) {
	c, err := s.Store.Load(ctx, cartID)
	if err != nil {
		return pricing.SaleTotals{}, err
	}
	totals, err := pricing.Compute(PricingItems(c), s.Policy)
	if err != nil {
		return pricing.SaleTotals{}, err
	}
	return totals.Rounded(), nil
}

// Consume removes the cart after checkout persisted its snapshot.
func (s *Service) Consume(ctx context.Context, cartID string) error {
	return s.Store.Delete(ctx, cartID)
}

func (s *Service) touch(ctx context.Context, c *Cart) error {
	c.UpdatedAt = s.now()
	return s.Store.Save(ctx, *c)
}

// PricingItems converts cart lines into engine line items.
func PricingItems(c Cart) []pricing.LineItem {
	items := make([]pricing.LineItem, 0, len(c.Items))
	for _, it := range c.Items {
		items = append(items, pricing.LineItem{
			ID:             it.ID,
			Name:           it.Name,
			UnitPrice:      it.UnitPrice,
			Qty:            it.Qty,
			CommissionRate: it.CommissionRate,
		})
	}
	return items
}
