package db

import (
	"fmt"

	"dispatch_crm_go/logger"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var DB *gorm.DB

// Options selects between the local sqlite file and the hosted libsql database
type Options struct {
	Path        string
	Environment string
	// When RemoteURL is set the connection goes to a hosted libsql (Turso) database
	RemoteURL string
	AuthToken string
}

// Initialize sets up the database connection. Local files run in WAL mode for concurrency.
func Initialize(opts Options) error {
	var err error

	// Determine log level based on environment
	logLevel := gormlogger.Info
	if opts.Environment == "production" {
		logLevel = gormlogger.Warn
	}

	DB, err = gorm.Open(dialector(opts), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if opts.RemoteURL != "" {
		logger.L().Info("Database connection established (libsql remote)")
	} else {
		logger.L().Info("Database connection established (WAL mode enabled)", zap.String("path", opts.Path))
	}
	return nil
}

func dialector(opts Options) gorm.Dialector {
	if opts.RemoteURL != "" {
		dsn := opts.RemoteURL
		if opts.AuthToken != "" {
			dsn += "?authToken=" + opts.AuthToken
		}
		return sqlite.New(sqlite.Config{DriverName: "libsql", DSN: dsn})
	}
	// Enable WAL mode for better concurrency support
	return sqlite.Open(opts.Path + "?_journal_mode=WAL")
}

// AutoMigrate runs database migrations for the provided models
func AutoMigrate(models ...interface{}) error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	if err := DB.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.L().Info("Database migrations completed", zap.Int("models", len(models)))
	return nil
}

// Close closes the database connection
func Close() error {
	if DB == nil {
		return nil
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	return sqlDB.Close()
}
