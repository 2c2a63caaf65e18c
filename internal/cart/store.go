package cart

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// ErrNotFound indicates the requested cart does not exist or has expired.
var ErrNotFound = errors.New("cart not found")

// Item is one line in a cart session.
type Item struct {
	ID             string           `json:"id"`
	ServiceID      string           `json:"service_id"`
	Name           string           `json:"name"`
	UnitPrice      decimal.Decimal  `json:"unit_price"`
	Qty            int              `json:"qty"`
	CommissionRate *decimal.Decimal `json:"commission_rate,omitempty"`
}

// Cart is an ephemeral checkout session. It lives in Redis under a TTL and is
// consumed exactly once at checkout; nothing about it is authoritative until
// the sale snapshot is persisted.
type Cart struct {
	ID        string    `json:"id"`
	StaffID   string    `json:"staff_id,omitempty"`
	Items     []Item    `json:"items"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store keeps cart sessions in Redis.
type Store struct {
	R   *redis.Client
	TTL time.Duration
}

func (s Store) key(id string) string { return "cart:" + id }

func (s Store) ttl() time.Duration {
	if s.TTL <= 0 {
		return 24 * time.Hour
	}
	return s.TTL
}

// Load fetches a cart by id.
func (s Store) Load(ctx context.Context, id string) (Cart, error) {
	data, err := s.R.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Cart{}, ErrNotFound
		}
		return Cart{}, err
	}
	var c Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return Cart{}, err
	}
	return c, nil
}

// Save writes a cart back, refreshing its TTL.
func (s Store) Save(ctx context.Context, c Cart) error {
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return s.R.Set(ctx, s.key(c.ID), data, s.ttl()).Err()
}

// Delete removes a cart, typically after checkout consumed it.
func (s Store) Delete(ctx context.Context, id string) error {
	return s.R.Del(ctx, s.key(id)).Err()
}
