package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/diagnosis/shelter-loyalty/pkg/auth"
	"github.com/diagnosis/shelter-loyalty/pkg/config"
	"github.com/diagnosis/shelter-loyalty/pkg/database"
	"github.com/diagnosis/shelter-loyalty/pkg/events"
	"github.com/diagnosis/shelter-loyalty/pkg/logger"
	"github.com/diagnosis/shelter-loyalty/pkg/metrics"
	mw "github.com/diagnosis/shelter-loyalty/pkg/middleware"
	"github.com/diagnosis/shelter-loyalty/pkg/ratelimit"
	"github.com/diagnosis/shelter-loyalty/services/loyalty/internal/handlers"
	"github.com/diagnosis/shelter-loyalty/services/loyalty/internal/repository"
	"github.com/diagnosis/shelter-loyalty/services/loyalty/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	logCloser := logger.Setup(cfg.Log)
	defer logCloser.Close()

	checker, err := auth.NewPasswordChecker(cfg.Auth)
	if err != nil {
		logger.Error("Invalid staff authentication configuration", "error", err)
		logCloser.Close()
		os.Exit(1)
	}

	if err := run(cfg, checker); err != nil {
		logger.Error("Loyalty service stopped", "error", err)
		logCloser.Close()
		os.Exit(1)
	}
}

func run(cfg *config.Config, checker *auth.PasswordChecker) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if checker.Disabled() {
		logger.Warn("Staff authentication is DISABLED; every request is accepted")
	} else {
		logger.Info("Staff authentication enabled", "scheme", string(checker.Scheme()))
	}

	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.NATS.URL != "" {
		nats, err := events.NewNATSPublisher(cfg.NATS.URL, cfg.App.ServiceName)
		if err != nil {
			return err
		}
		publisher = nats
	}
	defer publisher.Close()

	var limiter ratelimit.Limiter = ratelimit.Noop{}
	if cfg.RateLimit.Enabled && cfg.Redis.URL != "" {
		client, err := ratelimit.NewRedisClient(ctx, cfg.Redis.URL, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return err
		}
		defer client.Close()
		limiter = ratelimit.NewRedisLimiter(client, cfg.RateLimit.Requests, cfg.RateLimit.Window)
	} else if cfg.RateLimit.Enabled {
		logger.Warn("REDIS_URL not set, rate limiting disabled")
	}

	keyFunc, err := mw.ClientIPKeyFunc(cfg.RateLimit.TrustedProxies)
	if err != nil {
		return err
	}

	guestRepo := repository.NewGuestRepository(pool)
	loyaltyService := service.NewLoyaltyService(guestRepo, publisher)
	h := handlers.New(loyaltyService, checker, cfg)

	r := chi.NewRouter()

	r.Use(mw.RequestID)
	r.Use(mw.ServiceName(cfg.App.ServiceName))
	r.Use(mw.Logging)
	r.Use(mw.Recover)
	r.Use(mw.Metrics)
	r.Use(mw.Health)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", handlers.StaffPasswordHeader},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))
	r.Use(mw.MaxBody(cfg.Server.MaxBodyBytes))

	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.With(mw.RateLimit(limiter, mw.RateLimitConfig{Scope: "login", KeyFunc: keyFunc})).
			Post("/auth/login", h.Login)
		r.With(mw.RateLimit(limiter, mw.RateLimitConfig{Scope: "checkout", KeyFunc: keyFunc})).
			Post("/guest-checkout", h.CreateGuestCheckout)
		r.With(mw.RateLimit(limiter, mw.RateLimitConfig{Scope: "lookup", KeyFunc: keyFunc})).
			Get("/bonus-lookup", h.LookupBonus)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting loyalty service", "port", cfg.Server.Port, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down loyalty service...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
