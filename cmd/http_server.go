package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/frahmantamala/stock-management/internal"
	"github.com/frahmantamala/stock-management/internal/auth"
	authPostgres "github.com/frahmantamala/stock-management/internal/auth/postgres"
	"github.com/frahmantamala/stock-management/internal/catalog"
	catalogPostgres "github.com/frahmantamala/stock-management/internal/catalog/postgres"
	"github.com/frahmantamala/stock-management/internal/core/events"
	"github.com/frahmantamala/stock-management/internal/ledger"
	ledgerPostgres "github.com/frahmantamala/stock-management/internal/ledger/postgres"
	"github.com/frahmantamala/stock-management/internal/report"
	"github.com/frahmantamala/stock-management/internal/transport"
	"github.com/frahmantamala/stock-management/internal/transport/middleware"
	"github.com/frahmantamala/stock-management/internal/transport/rest"
	"github.com/frahmantamala/stock-management/internal/user"
	userPostgres "github.com/frahmantamala/stock-management/internal/user/postgres"
	"github.com/frahmantamala/stock-management/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Services struct {
	Auth    *auth.Service
	User    *user.Service
	Catalog *catalog.Service
	Ledger  *ledger.Service
	Report  *report.Service
}

type Dependencies struct {
	Config   *internal.Config
	GormDB   *gorm.DB
	DB       *sqlx.DB
	EventBus *events.EventBus
	Services Services
	Logger   *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}
	defer deps.Close()

	ctx := context.Background()
	if err := deps.Services.User.EnsureDefaultAccounts(ctx); err != nil {
		deps.Logger.Error("failed to ensure default accounts", "error", err)
		os.Exit(1)
	}
	if _, err := deps.Services.Auth.PurgeExpiredSessions(ctx); err != nil {
		deps.Logger.Warn("failed to purge expired sessions", "error", err)
	}

	router := chi.NewRouter()
	setupRoutes(router, deps)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr, "env", deps.Config.Env)

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			deps.Logger.Error("Server failed to start", "error", err)
			deps.Close()
			os.Exit(1)
		}
	}

	deps.Logger.Info("Server stopped")
}

func setupRoutes(router *chi.Mux, deps *Dependencies) {
	base := transport.NewBaseHandler(deps.Logger)
	cfg := deps.Config

	handlers := rest.Handlers{
		Auth: auth.NewHandler(base, deps.Services.Auth, auth.CookieConfig{
			Name:   cfg.Security.CookieName,
			Secure: cfg.Security.CookieSecure || cfg.IsProduction(),
		}),
		User:    user.NewHandler(base, deps.Services.User),
		Catalog: catalog.NewHandler(base, deps.Services.Catalog),
		Ledger:  ledger.NewHandler(base, deps.Services.Ledger),
		Report:  report.NewHandler(base, deps.Services.Report),
	}

	opts := rest.Options{
		AllowedOrigins: splitOrigins(cfg.Server.AllowedOrigins),
		OpenAPIPath:    cfg.Server.OpenAPIPath,
	}
	validator, err := middleware.NewOpenAPIValidator(cfg.Server.OpenAPIPath, deps.Logger)
	if err != nil {
		deps.Logger.Warn("request validation disabled", "path", cfg.Server.OpenAPIPath, "error", err)
	} else {
		opts.Validator = validator
	}

	rest.RegisterAllRoutes(router, deps.DB, handlers, opts, deps.Logger)
}

func initializeDependencies(path string) (*Dependencies, error) {
	config, err := loadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.Setup(logger.Options{
		Env:    config.Env,
		Level:  config.Observability.Logging.Level,
		Format: config.Observability.Logging.Format,
	})

	gormDB, db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	bus := events.NewEventBus(log)
	ledger.NewLowStockAlert(config.Ledger.LowStockThreshold, log).Register(bus)

	timeout := config.Ledger.QueryTimeout
	userRepo := userPostgres.NewUserRepository(gormDB)
	ledgerService := ledger.NewService(ledgerPostgres.NewLedgerRepository(gormDB, db), bus, log, timeout)

	return &Dependencies{
		Config:   config,
		GormDB:   gormDB,
		DB:       db,
		EventBus: bus,
		Logger:   log,
		Services: Services{
			Auth: auth.NewService(
				userRepo,
				authPostgres.NewSessionRepository(gormDB),
				auth.NewJWTTokenGenerator(config.Security.SessionSecret),
				log,
				config.Security.BCryptCost,
				timeout,
			),
			User:    user.NewService(userRepo, log, config.Security.BCryptCost, timeout),
			Catalog: catalog.NewService(catalogPostgres.NewCatalogRepository(gormDB), log, timeout),
			Ledger:  ledgerService,
			Report:  report.NewService(ledgerService, log),
		},
	}, nil
}

func (d *Dependencies) Close() {
	if err := d.DB.Close(); err != nil {
		d.Logger.Error("Database close error", "error", err)
	}
}

// initDB opens one pgx pool shared by gorm for writes and sqlx for reporting reads.
func initDB(cfg internal.DatabaseConfig) (*gorm.DB, *sqlx.DB, error) {
	const driver = "pgx"

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		DriverName: driver,
		DSN:        cfg.GetDSN(),
	}), &gorm.Config{
		TranslateError: true,
		Logger:         gormLogger.Default.LogMode(gormLogger.Warn),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// verify connection; close underlying *sql.DB on failure
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return gormDB, sqlx.NewDb(sqlDB, driver), nil
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, origin := range strings.Split(raw, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}
