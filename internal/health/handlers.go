package health

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/backend-salon/internal/common"
)

// Probes checks the backing stores the API cannot serve without.
type Probes struct {
	Pool         *pgxpool.Pool
	Redis        *redis.Client
	DBTimeout    time.Duration
	RedisTimeout time.Duration
}

// Live reports liveness. It answers as long as the process is up.
func (p Probes) Live(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Ready reports readiness based on Postgres and Redis pings.
func (p Probes) Ready(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{
		"db":    p.pingDB(r.Context()),
		"redis": p.pingRedis(r.Context()),
	}
	code := http.StatusOK
	for _, s := range status {
		if s != "ok" {
			code = http.StatusServiceUnavailable
			break
		}
	}
	common.JSON(w, code, status)
}

func (p Probes) pingDB(ctx context.Context) string {
	if p.Pool == nil {
		return "not configured"
	}
	ctx, cancel := context.WithTimeout(ctx, timeoutOr(p.DBTimeout, 500*time.Millisecond))
	defer cancel()
	if err := p.Pool.Ping(ctx); err != nil {
		return err.Error()
	}
	return "ok"
}

func (p Probes) pingRedis(ctx context.Context) string {
	if p.Redis == nil {
		return "not configured"
	}
	ctx, cancel := context.WithTimeout(ctx, timeoutOr(p.RedisTimeout, 300*time.Millisecond))
	defer cancel()
	if err := p.Redis.Ping(ctx).Err(); err != nil {
		return err.Error()
	}
	return "ok"
}

func timeoutOr(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}
