// Package app provides dependency injection container for assembling application components.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/allisson/jobcrypt/internal/config"
	cryptoDomain "github.com/allisson/jobcrypt/internal/crypto/domain"
	cryptoService "github.com/allisson/jobcrypt/internal/crypto/service"
	"github.com/allisson/jobcrypt/internal/database"
	"github.com/allisson/jobcrypt/internal/http"
	jobDomain "github.com/allisson/jobcrypt/internal/job/domain"
	jobHTTP "github.com/allisson/jobcrypt/internal/job/http"
	"github.com/allisson/jobcrypt/internal/job/jobs"
	jobRepository "github.com/allisson/jobcrypt/internal/job/repository"
	jobUsecase "github.com/allisson/jobcrypt/internal/job/usecase"
	"github.com/allisson/jobcrypt/internal/metrics"
)

// Container holds all application dependencies and provides methods to access them.
// It follows the lazy initialization pattern - components are created on first access.
type Container struct {
	// Configuration
	config *config.Config

	// Infrastructure
	logger *slog.Logger
	db     *sql.DB

	// Managers
	txManager database.TxManager

	// Repositories
	jobReportRepo jobUsecase.JobReportRepository

	// Job engine
	jobRegistry *jobDomain.Registry
	jobUseCase  jobUsecase.UseCase

	// Servers
	httpServer    *http.Server
	metricsServer *http.MetricsServer

	// Crypto
	masterKeyChain *cryptoDomain.MasterKeyChain
	aeadManager    cryptoService.AEADManager
	kmsService     cryptoService.KMSService

	// Initialization flags and mutex for thread-safety
	mu                  sync.Mutex
	loggerInit          sync.Once
	dbInit              sync.Once
	txManagerInit       sync.Once
	jobReportRepoInit   sync.Once
	jobRegistryInit     sync.Once
	jobUseCaseInit      sync.Once
	httpServerInit      sync.Once
	metricsServerInit   sync.Once
	masterKeyChainInit  sync.Once
	aeadManagerInit     sync.Once
	kmsServiceInit      sync.Once
	initErrors          map[string]error
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance.
// It creates a new logger on first access based on the log level in configuration.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// DB returns the database connection.
// It creates and configures the database connection on first access.
func (c *Container) DB() (*sql.DB, error) {
	var err error
	c.dbInit.Do(func() {
		c.db, err = c.initDB()
		if err != nil {
			c.initErrors["db"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["db"]; exists {
		return nil, storedErr
	}
	return c.db, nil
}

// TxManager returns the transaction manager.
// It requires a database connection to be initialized first.
func (c *Container) TxManager() (database.TxManager, error) {
	var err error
	c.txManagerInit.Do(func() {
		c.txManager, err = c.initTxManager()
		if err != nil {
			c.initErrors["txManager"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["txManager"]; exists {
		return nil, storedErr
	}
	return c.txManager, nil
}

// JobReportRepository returns the job report repository instance.
func (c *Container) JobReportRepository() (jobUsecase.JobReportRepository, error) {
	var err error
	c.jobReportRepoInit.Do(func() {
		c.jobReportRepo, err = c.initJobReportRepository()
		if err != nil {
			c.initErrors["jobReportRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["jobReportRepo"]; exists {
		return nil, storedErr
	}
	return c.jobReportRepo, nil
}

// JobRegistry returns the job kind registry, with every reference job kind
// this module ships already registered.
func (c *Container) JobRegistry() *jobDomain.Registry {
	c.jobRegistryInit.Do(func() {
		c.jobRegistry = c.initJobRegistry()
	})
	return c.jobRegistry
}

// JobUseCase returns the job manager use case instance.
func (c *Container) JobUseCase() (jobUsecase.UseCase, error) {
	var err error
	c.jobUseCaseInit.Do(func() {
		c.jobUseCase, err = c.initJobUseCase()
		if err != nil {
			c.initErrors["jobUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["jobUseCase"]; exists {
		return nil, storedErr
	}
	return c.jobUseCase, nil
}

// HTTPServer returns the HTTP server instance.
func (c *Container) HTTPServer() (*http.Server, error) {
	var err error
	c.httpServerInit.Do(func() {
		c.httpServer, err = c.initHTTPServer()
		if err != nil {
			c.initErrors["httpServer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["httpServer"]; exists {
		return nil, storedErr
	}
	return c.httpServer, nil
}

// MetricsServer returns the standalone Prometheus metrics server.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	var err error
	c.metricsServerInit.Do(func() {
		c.metricsServer, err = c.initMetricsServer()
		if err != nil {
			c.initErrors["metricsServer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsServer"]; exists {
		return nil, storedErr
	}
	return c.metricsServer, nil
}

// Shutdown performs cleanup of all initialized resources.
// It should be called when the application is shutting down.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	// Shutdown HTTP server if initialized
	if c.httpServer != nil {
		if err := c.httpServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("http server shutdown: %w", err))
		}
	}

	if c.metricsServer != nil {
		if err := c.metricsServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	// Close database connection if initialized
	if c.db != nil {
		if err := c.db.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("database close: %w", err))
		}
	}

	if c.masterKeyChain != nil {
		c.masterKeyChain.Close()
	}

	// Return combined errors if any occurred
	if len(shutdownErrors) > 0 {
		return fmt.Errorf("shutdown errors: %v", shutdownErrors)
	}

	return nil
}

// initLogger creates and configures a structured logger based on the log level.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}

// initDB creates and configures the database connection.
func (c *Container) initDB() (*sql.DB, error) {
	db, err := database.Connect(database.Config{
		Driver:             c.config.DBDriver,
		ConnectionString:   c.config.DBConnectionString,
		MaxOpenConnections: c.config.DBMaxOpenConnections,
		MaxIdleConnections: c.config.DBMaxIdleConnections,
		ConnMaxLifetime:    c.config.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// initTxManager creates the transaction manager using the database connection.
func (c *Container) initTxManager() (database.TxManager, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for tx manager: %w", err)
	}
	return database.NewTxManager(db), nil
}

// initJobReportRepository creates the job report repository instance.
func (c *Container) initJobReportRepository() (jobUsecase.JobReportRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for job report repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return jobRepository.NewMySQLJobReportRepository(db), nil
	case "postgres":
		return jobRepository.NewPostgreSQLJobReportRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initJobRegistry builds the registry and registers every reference job
// kind this module ships. ThumbnailJob is wired to a content-hash
// Generator stub; see DESIGN.md for why no real image pipeline is wired.
func (c *Container) initJobRegistry() *jobDomain.Registry {
	registry := jobDomain.NewRegistry()
	_ = registry.Register(func() jobDomain.JobKind { return jobs.NewIndexJob() })
	_ = registry.Register(func() jobDomain.JobKind { return jobs.NewHeaderRewrapJob() })

	generator := jobs.NewHashGenerator()
	_ = registry.Register(func() jobDomain.JobKind { return jobs.NewThumbnailJob(generator) })
	return registry
}

// initJobUseCase creates the job manager with all its dependencies.
func (c *Container) initJobUseCase() (jobUsecase.UseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for job use case: %w", err)
	}

	repo, err := c.JobReportRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get job report repository for job use case: %w", err)
	}

	manager := jobUsecase.NewJobManager(
		c.JobRegistry(),
		repo,
		txManager,
		jobUsecase.Config{MaxConcurrentPerKind: c.config.JobMaxConcurrentPerKind},
		c.Logger(),
	)

	return manager, nil
}

// initHTTPServer creates the HTTP server with all its dependencies.
func (c *Container) initHTTPServer() (*http.Server, error) {
	logger := c.Logger()

	jobUseCase, err := c.JobUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get job use case for http server: %w", err)
	}

	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for http server: %w", err)
	}

	metricsProvider, err := c.metricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for http server: %w", err)
	}

	server := http.NewServer(c.config.ServerHost, c.config.ServerPort, logger)
	server.SetDB(db)
	server.SetupRouter(c.config, jobHTTP.NewJobHandler(jobUseCase, logger), metricsProvider, c.config.MetricsNamespace)

	return server, nil
}

// initMetricsServer creates the standalone metrics server.
func (c *Container) initMetricsServer() (*http.MetricsServer, error) {
	metricsProvider, err := c.metricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for metrics server: %w", err)
	}

	return http.NewMetricsServer(c.config.ServerHost, c.config.MetricsPort, c.Logger(), metricsProvider), nil
}

// metricsProvider returns a metrics.Provider built from the container's
// config, or nil if metrics are disabled. It is not memoized through a
// sync.Once since both initHTTPServer and initMetricsServer call it at
// most once each during startup.
func (c *Container) metricsProvider() (*metrics.Provider, error) {
	if !c.config.MetricsEnabled {
		return nil, nil
	}
	provider, err := metrics.NewProvider(c.config.MetricsNamespace)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics provider: %w", err)
	}
	return provider, nil
}
