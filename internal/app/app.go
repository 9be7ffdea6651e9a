package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sajilo_backend/database"
	"sajilo_backend/internal/auth"
	"sajilo_backend/internal/config"
	"sajilo_backend/internal/email"
	"sajilo_backend/internal/handlers"
	"sajilo_backend/internal/logger"
	"sajilo_backend/internal/middleware"
	"sajilo_backend/internal/payment"
	"sajilo_backend/internal/repositories"
	"sajilo_backend/internal/routes"
	"sajilo_backend/internal/scheduler"
	"sajilo_backend/internal/services"
	"sajilo_backend/internal/validator"
	"sajilo_backend/internal/workers"
	"sajilo_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

func Run() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load config", "error", err)
	}
	logger.Init(cfg.Server.Env)
	apperrors.SetDebug(cfg.Server.Env == "development")
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	logger.Info("Connecting to database...", "driver", cfg.Database.Driver)
	gormDB, err := database.Connect(cfg.Database.Driver, cfg.Database.DSN, cfg.Server.Env == "development")
	if err != nil {
		logger.Fatal("Database unavailable", "error", err)
	}
	if err := database.AutoMigrate(gormDB); err != nil {
		logger.Fatal("Migration failed", "error", err)
	}
	logger.Info("Database connected")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos := repositories.NewGorm(gormDB)
	registry := workers.NewRegistry(repos, scheduler.Options{
		Clock:      scheduler.RealClock(),
		Metrics:    scheduler.DefaultMetrics(),
		JobTimeout: cfg.Scheduler.JobTimeout.Duration,
	})
	defer registry.Shutdown()

	deps, err := initializeDeps(cfg, repos, registry)
	if err != nil {
		logger.Fatal("Failed to initialize dependencies", "error", err)
	}
	container := services.NewServiceContainer(deps)

	if err := container.AdminAuthService.SeedFirstAdmin(ctx); err != nil {
		logger.Fatal("Failed to seed first admin", "error", err)
	}

	// Pending lifecycle work must be re-armed before any request can change it.
	reports, err := registry.RestoreAll(ctx)
	for name, r := range reports {
		logger.Info("Scheduler restored", "scheduler", name,
			"scheduled", r.Scheduled, "resolved", r.Resolved, "skipped", r.Skipped, "failed", r.Failed)
	}
	if err != nil {
		// Rows that failed stay pending in the store; the sweeper retries them.
		logger.Error("Scheduler recovery incomplete", "error", err)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           SetupRouter(cfg, container, deps, prometheus.DefaultGatherer),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		workers.NewSweeper(registry, cfg.Scheduler.SweepInterval.Duration).Start(gctx)
		logger.Info(fmt.Sprintf("Server starting on %s", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server stopped with error", "error", err)
	}
	logger.Info("Server stopped")
}

func initializeDeps(cfg *config.Config, repos *repositories.Repositories, registry *workers.Registry) (*services.Deps, error) {
	provider, err := initializeEmailProvider(cfg)
	if err != nil {
		return nil, err
	}
	templates, err := email.NewDefaultTemplateManager()
	if err != nil {
		return nil, fmt.Errorf("email templates: %w", err)
	}

	timeout := cfg.Payment.Timeout.Duration
	return &services.Deps{
		Repos:   repos,
		Workers: registry,
		Tokens: auth.NewTokenManager(cfg.JWT.AccessSecret, cfg.JWT.RefreshSecret,
			cfg.JWT.AccessTTL.Duration, cfg.JWT.RefreshTTL.Duration, time.Now),
		AdminTokens: auth.NewTokenManager(cfg.JWT.AdminAccessSecret, cfg.JWT.AdminRefreshSecret,
			cfg.JWT.AccessTTL.Duration, cfg.JWT.RefreshTTL.Duration, time.Now),
		Mailer: email.NewMailer(provider, templates),
		Esewa: payment.NewEsewaClient(cfg.Payment.Esewa.MerchantID, cfg.Payment.Esewa.SecretKey,
			cfg.Payment.Esewa.BaseURL, timeout),
		Khalti: payment.NewKhaltiClient(cfg.Payment.Khalti.SecretKey, cfg.Payment.Khalti.BaseURL, timeout),
		Clock:  scheduler.RealClock(),
		Config: cfg,
	}, nil
}

// initializeEmailProvider returns the SMTP provider, or one that only logs when mail is disabled.
func initializeEmailProvider(cfg *config.Config) (email.Provider, error) {
	if cfg.Email.Disabled {
		logger.Warn("Email delivery disabled, messages are logged only")
		return email.LogProvider{}, nil
	}
	provider := email.NewSMTPProvider(&email.SMTPConfig{
		Host:      cfg.Email.SMTPHost,
		Port:      cfg.Email.SMTPPort,
		Username:  cfg.Email.SMTPUsername,
		Password:  cfg.Email.SMTPPassword,
		FromEmail: cfg.Email.FromEmail,
		FromName:  cfg.Email.FromName,
		UseTLS:    cfg.Email.UseTLS,
	})
	if err := provider.Validate(); err != nil {
		return nil, fmt.Errorf("smtp config: %w", err)
	}
	return provider, nil
}

func SetupRouter(cfg *config.Config, container *services.ServiceContainer, deps *services.Deps, gatherer prometheus.Gatherer) *gin.Engine {
	if cfg.Server.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	appHandlers := initializeHandlers(container)
	guards := handlers.Guards{
		RateLimit: middleware.NewRateLimiter(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst).Middleware(),
		User:      middleware.AuthMiddleware(deps.Tokens),
		Admin:     middleware.AdminMiddleware(deps.AdminTokens),
		Self:      middleware.SelfMiddleware("id"),
	}

	ginRouter := initializeGinRouter(cfg)
	routes.RegisterRoutes(ginRouter, appHandlers, guards, gatherer)
	return ginRouter
}

func initializeHandlers(s *services.ServiceContainer) *handlers.AppHandlers {
	base := handlers.NewBaseHandler(validator.New())

	return &handlers.AppHandlers{
		AuthHandler:      handlers.NewAuthHandler(base, s.AuthService),
		AdminAuthHandler: handlers.NewAdminAuthHandler(base, s.AdminAuthService),
		OtpHandler:       handlers.NewOtpHandler(base, s.OtpService),
		PaymentHandler:   handlers.NewPaymentHandler(base, s.PaymentService),
		TicketHandler:    handlers.NewTicketHandler(base, s.TicketService),
		AdminHandler:     handlers.NewAdminHandler(base, s.SessionService, s.InvoiceService, s.TicketService),
	}
}

func initializeGinRouter(cfg *config.Config) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.CORS.AllowedOrigins))
	return router
}
