package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	validator "github.com/go-playground/validator/v10"
	migrate "github.com/golang-migrate/migrate/v4"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"

	"github.com/noah-isme/backend-salon/internal/auth"
	"github.com/noah-isme/backend-salon/internal/cart"
	"github.com/noah-isme/backend-salon/internal/catalog"
	"github.com/noah-isme/backend-salon/internal/checkout"
	"github.com/noah-isme/backend-salon/internal/common"
	"github.com/noah-isme/backend-salon/internal/config"
	"github.com/noah-isme/backend-salon/internal/health"
	"github.com/noah-isme/backend-salon/internal/obs"
	"github.com/noah-isme/backend-salon/internal/payroll"
	"github.com/noah-isme/backend-salon/internal/ratelimit"
	"github.com/noah-isme/backend-salon/internal/repo"
	"github.com/noah-isme/backend-salon/internal/reports"
	"github.com/noah-isme/backend-salon/internal/sale"
	"github.com/noah-isme/backend-salon/internal/staff"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logFormat := envOrDefault("OBS_LOG_FORMAT", "json")
	logLevel := envOrDefault("OBS_LOG_LEVEL", "info")
	logger := obs.NewLogger(logFormat, logLevel).With().Str("env", cfg.AppEnv).Logger()

	metricsNamespace := envOrDefault("OBS_METRICS_NAMESPACE", "salon")
	metricsEnabled := envBool("OBS_ENABLE_PROMETHEUS", true)

	tracingEnabled := envBool("OBS_ENABLE_TRACING", true)
	if tracingEnabled {
		shutdown, err := obs.InitTracer(context.Background(), obs.TracingConfig{
			ServiceName:   "salon-api",
			Endpoint:      envOrDefault("OBS_OTLP_ENDPOINT", ""),
			SamplingRatio: 1.0,
			Environment:   cfg.AppEnv,
		})
		if err != nil {
			logger.Error().Err(err).Msg("initialise tracing")
			tracingEnabled = false
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logger.Error().Err(err).Msg("shutdown tracer")
				}
			}()
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse database config")
	}
	poolConfig.ConnConfig.Tracer = obs.PGXTracer{}
	if poolConfig.ConnConfig.RuntimeParams == nil {
		poolConfig.ConnConfig.RuntimeParams = map[string]string{}
	}
	poolConfig.ConnConfig.RuntimeParams["application_name"] = "salon-api"

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		logger.Fatal().Err(err).Msg("ping database")
	}

	if err := runMigrations(cfg.DatabaseURL, cfg.MigrationsDir); err != nil {
		logger.Fatal().Err(err).Msg("run migrations")
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}
	redisClient := redis.NewClient(redisOpts)
	if tracingEnabled {
		if err := redisotel.InstrumentTracing(redisClient); err != nil {
			logger.Error().Err(err).Msg("instrument redis tracing")
		}
	}
	if metricsEnabled {
		if err := redisotel.InstrumentMetrics(redisClient); err != nil {
			logger.Error().Err(err).Msg("instrument redis metrics")
		}
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close redis")
		}
	}()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("ping redis")
	}

	taskOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url for tasks")
	}
	taskClient := asynq.NewClient(taskOpt)
	defer func() {
		if err := taskClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close task client")
		}
	}()

	validate := validator.New()
	policy := cfg.PricingPolicy()

	tokens, err := auth.NewTokens(auth.Config{Secret: cfg.JWTSecret, TTL: cfg.AccessTokenTTL})
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise tokens")
	}
	authMiddleware := auth.Middleware{Tokens: tokens}

	staffRepo := &repo.Staff{Pool: pool}
	catalogRepo := &repo.Catalog{Pool: pool}
	salesRepo := &repo.Sales{Pool: pool}
	paymentsRepo := &repo.Payments{Pool: pool}

	staffSvc := &staff.Service{Store: staffRepo, Tokens: tokens}
	staffHandler := &staff.Handler{Svc: staffSvc, Validate: validate}

	catalogSvc := &catalog.Service{Store: catalogRepo, R: redisClient, TTL: cfg.CatalogCacheTTL}
	catalogHandler := &catalog.Handler{Svc: catalogSvc, Validate: validate}

	cartSvc := &cart.Service{
		Store:   cart.Store{R: redisClient, TTL: cfg.CartTTL},
		Catalog: catalogSvc,
		Policy:  policy,
	}
	cartHandler := &cart.Handler{Svc: cartSvc, Validate: validate}

	var saleMetrics *obs.SaleMetrics
	if metricsEnabled {
		saleMetrics = obs.NewSaleMetrics(metricsNamespace, nil)
	}
	checkoutSvc := &checkout.Service{
		Cart:     cartSvc,
		Sales:    salesRepo,
		Policy:   policy,
		Currency: cfg.CurrencyCode,
		Tasks:    taskClient,
		Metrics:  saleMetrics,
	}
	checkoutHandler := &checkout.Handler{Svc: checkoutSvc}

	saleHandler := &sale.Handler{Sales: salesRepo}

	payrollSvc := &payroll.Service{Store: paymentsRepo, Sales: salesRepo}
	payrollHandler := &payroll.Handler{Svc: payrollSvc, Validate: validate}

	reportsSvc := &reports.Service{Sales: salesRepo, R: redisClient, TTL: cfg.ReportsCacheTTL}
	reportsHandler := &reports.Handler{Svc: reportsSvc, DefaultRange: 30}

	idem := common.Idem{R: redisClient, TTL: cfg.IdempotencyTTL}

	limiter, err := ratelimit.New(redisClient, cfg.RateLimit)
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise rate limiter")
	}

	var httpMetrics *obs.HTTPMetrics
	if metricsEnabled {
		httpMetrics = obs.NewHTTPMetrics(metricsNamespace, nil, nil)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(obs.RoutePatternMiddleware)
	if tracingEnabled {
		r.Use(obs.TracingMiddleware)
	}
	if metricsEnabled && httpMetrics != nil {
		r.Use(obs.HTTPObs{Metrics: httpMetrics}.Middleware)
	}
	r.Use(obs.RequestLogger{Logger: logger}.Middleware)
	r.Use(ratelimit.Middleware(limiter))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(cfg),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	probes := health.Probes{Pool: pool, Redis: redisClient}
	r.Get("/health/live", probes.Live)
	r.Get("/health/ready", probes.Ready)

	r.Route("/api/v1", func(v chi.Router) {
		v.Post("/staff/login", staffHandler.Login)

		v.Get("/services", catalogHandler.ListServices)
		v.Get("/services/{id}", catalogHandler.GetService)

		v.Route("/carts", func(c chi.Router) {
			c.Get("/{id}", cartHandler.Get)
			c.Get("/{id}/quote", cartHandler.Quote)
			c.Group(func(g chi.Router) {
				g.Use(idem.Middleware)
				g.Post("/", cartHandler.Create)
				g.Post("/{id}/items", cartHandler.AddItem)
				g.Patch("/{id}/items/{itemID}", cartHandler.UpdateItem)
				g.Delete("/{id}/items/{itemID}", cartHandler.RemoveItem)
			})
		})

		v.With(authMiddleware.RequireAuth, idem.Middleware).Post("/checkout", checkoutHandler.Checkout)

		v.Group(func(g chi.Router) {
			g.Use(authMiddleware.RequireAuth)
			g.Get("/sales", saleHandler.ListSales)
			g.Get("/sales/{id}", saleHandler.GetSale)
			g.Get("/staff", staffHandler.ListStaff)
			g.Get("/staff/{id}", staffHandler.GetStaff)

			g.Route("/payroll/payments", func(p chi.Router) {
				p.Get("/", payrollHandler.ListPayments)
				p.With(idem.Middleware).Post("/", payrollHandler.CreatePayment)
			})

			g.Route("/reports", func(rep chi.Router) {
				rep.Get("/sales", reportsHandler.Sales)
				rep.Get("/commissions", reportsHandler.Commissions)
			})
		})

		v.Route("/admin", func(admin chi.Router) {
			admin.Use(authMiddleware.RequireAuth)
			admin.Post("/services", catalogHandler.CreateService)
			admin.Put("/services/{id}", catalogHandler.UpdateService)
			admin.Post("/staff", staffHandler.CreateStaff)
		})
	})

	srv := &http.Server{
		Addr:    cfg.HTTPAddr(),
		Handler: r,
	}

	logger.Info().Str("addr", srv.Addr).Msg("server starting")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("server exited unexpectedly")
	}
}

func runMigrations(databaseURL, dir string) error {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return err
	}
	driver, err := migratepgx.WithInstance(db, &migratepgx.Config{})
	if err != nil {
		_ = db.Close()
		return err
	}
	m, err := migrate.NewWithDatabaseInstance("file://"+dir, "pgx", driver)
	if err != nil {
		_ = db.Close()
		return err
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.CORSAllowedOrigins) == 0 {
		return []string{"*"}
	}
	return cfg.CORSAllowedOrigins
}

func envOrDefault(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		trimmed := strings.TrimSpace(val)
		if trimmed != "" {
			return trimmed
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "1", "t", "true", "yes", "on":
			return true
		case "0", "f", "false", "no", "off":
			return false
		}
	}
	return fallback
}
