package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"crewshift/internal/domain/audit"
	"crewshift/internal/domain/auth"
	"crewshift/internal/domain/directory"
	"crewshift/internal/domain/notifications"
	"crewshift/internal/domain/payroll"
	"crewshift/internal/domain/shifts"
	"crewshift/internal/platform/broker"
	"crewshift/internal/platform/config"
	"crewshift/internal/platform/db"
	"crewshift/internal/platform/memstore"
	"crewshift/internal/platform/metrics"
	"crewshift/internal/platform/validation"
	"crewshift/internal/transport/http/api"
	audithandler "crewshift/internal/transport/http/handlers/audit"
	authhandler "crewshift/internal/transport/http/handlers/auth"
	directoryhandler "crewshift/internal/transport/http/handlers/directory"
	payrollhandler "crewshift/internal/transport/http/handlers/payroll"
	shiftshandler "crewshift/internal/transport/http/handlers/shifts"
	"crewshift/internal/transport/http/middleware"
)

type App struct {
	Config  config.Config
	Router  http.Handler
	Metrics *metrics.Collector

	log     zerolog.Logger
	closers []func()
}

// stores is one backend seen through each domain's store interface.
type stores struct {
	users     auth.UserStore
	directory directory.StoreAPI
	shifts    shifts.StoreAPI
	payroll   payroll.StoreAPI
	audit     audit.StoreAPI
	ping      func(context.Context) error
}

func New(ctx context.Context, cfg config.Config, log zerolog.Logger) (*App, error) {
	app := &App{Config: cfg, Metrics: metrics.New(), log: log}

	st, err := app.openStores(ctx)
	if err != nil {
		app.Close()
		return nil, err
	}

	authService := auth.NewService(st.users, cfg.JWTSecret, cfg.TokenTTL)
	if cfg.RunSeed {
		if err := db.Seed(ctx, authService, cfg); err != nil {
			app.Close()
			return nil, fmt.Errorf("seed: %w", err)
		}
	}

	loc, err := cfg.Location()
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("payroll timezone: %w", err)
	}

	var publisher notifications.Publisher = broker.Discard{}
	if cfg.RabbitMQ.URL != "" {
		client, err := broker.Dial(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue, cfg.RabbitMQ.PublishTimeout)
		if err != nil {
			app.Close()
			return nil, err
		}
		app.closers = append(app.closers, func() { _ = client.Close() })
		publisher = client
	}

	var rateOpts []middleware.RateLimitOption
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		app.closers = append(app.closers, func() { _ = rdb.Close() })
		rateOpts = append(rateOpts, middleware.WithRedis(rdb))
	}

	validate := validation.New()
	auditService := audit.New(st.audit)
	directoryService := directory.NewService(st.directory, st.users, validate, loc)
	payrollService := payroll.NewService(st.payroll, st.users, loc)
	shiftService, err := shifts.NewService(st.shifts, st.directory, validate,
		shifts.Config{Rates: cfg.Rates(), Location: loc},
		shifts.WithNotifier(notifications.New(publisher, st.users)),
		shifts.WithAudit(auditService),
		shifts.WithMetrics(app.Metrics),
		shifts.WithLogger(log),
	)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("shift workflow: %w", err)
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(log, app.Metrics))
	router.Use(middleware.Recoverer(log))
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute, rateOpts...))
	router.Use(middleware.SensitiveMutationRateLimit(cfg.RateLimitPerMinute, time.Minute, rateOpts...))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := st.ping(ctx); err != nil {
			http.Error(w, "store not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled {
		router.With(middleware.RequireRole(auth.RoleManager)).Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, app.Metrics.Snapshot(), middleware.GetRequestID(r.Context()))
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		authhandler.NewHandler(authService).RegisterRoutes(r)
		directoryhandler.NewHandler(directoryService, auditService).RegisterRoutes(r)
		shiftshandler.NewHandler(shiftService).RegisterRoutes(r)
		payrollhandler.NewHandler(payrollService).RegisterRoutes(r)
		audithandler.NewHandler(auditService).RegisterRoutes(r)
	})

	app.Router = router
	return app, nil
}

func (a *App) openStores(ctx context.Context) (stores, error) {
	switch a.Config.StoreDriver {
	case config.DriverMemory:
		mem := memstore.New()
		return stores{users: mem, directory: mem, shifts: mem, payroll: mem, audit: mem, ping: mem.Ping}, nil
	case config.DriverPostgres:
		pool, err := db.Connect(ctx, a.Config.DatabaseURL)
		if err != nil {
			return stores{}, err
		}
		a.closers = append(a.closers, pool.Close)
		if a.Config.RunMigrations {
			if err := db.Migrate(ctx, pool, a.Config.MigrationsDir); err != nil {
				return stores{}, fmt.Errorf("migrations: %w", err)
			}
		}
		return stores{
			users:     auth.NewStore(pool),
			directory: directory.NewStore(pool),
			shifts:    shifts.NewStore(pool),
			payroll:   payroll.NewStore(pool),
			audit:     audit.NewStore(pool),
			ping:      pool.Ping,
		}, nil
	default:
		return stores{}, fmt.Errorf("unknown store driver %q", a.Config.StoreDriver)
	}
}

// Close releases connections in reverse order of opening.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func Run(ctx context.Context, cfg config.Config, log zerolog.Logger) error {
	app, err := New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer app.Close()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Str("store", cfg.StoreDriver).Msg("crewshift server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info().Msg("server stopped")
	return nil
}
