package db

import (
	"fmt"
	"net/url"
	"strings"

	"case_flow_app_go/config"
	"case_flow_app_go/logging"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Driver names reported by Dialector
const (
	DriverPostgres = "postgres"
	DriverLibSQL   = "libsql"
	DriverSQLite   = "sqlite"
)

// Dialector picks the database backend from configuration.
// Postgres wins over Turso, which wins over the local SQLite file.
func Dialector(cfg *config.Config) (gorm.Dialector, string, error) {
	switch {
	case cfg.DatabaseURL != "":
		if !strings.HasPrefix(cfg.DatabaseURL, "postgres://") && !strings.HasPrefix(cfg.DatabaseURL, "postgresql://") {
			return nil, "", fmt.Errorf("unsupported DATABASE_URL scheme (expected postgres://)")
		}
		return postgres.Open(cfg.DatabaseURL), DriverPostgres, nil

	case cfg.TursoDatabaseURL != "":
		dsn, err := libsqlDSN(cfg.TursoDatabaseURL, cfg.TursoAuthToken)
		if err != nil {
			return nil, "", err
		}
		return sqlite.New(sqlite.Config{DriverName: "libsql", DSN: dsn}), DriverLibSQL, nil

	default:
		// Enable WAL mode for better concurrency support
		return sqlite.Open(cfg.DBPath + "?_journal_mode=WAL&_busy_timeout=5000"), DriverSQLite, nil
	}
}

func libsqlDSN(rawURL, authToken string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid TURSO_DATABASE_URL: %w", err)
	}
	if authToken != "" {
		q := u.Query()
		q.Set("authToken", authToken)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// Initialize sets up the database connection
func Initialize(cfg *config.Config) error {
	dialector, driver, err := Dialector(cfg)
	if err != nil {
		return err
	}

	// Determine log level based on environment
	logLevel := logger.Info
	if cfg.IsProduction() {
		logLevel = logger.Warn
	}

	DB, err = gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	logging.L().Info("Database connection established", zap.String("driver", driver))
	return nil
}

// AutoMigrate runs database migrations for the provided models
func AutoMigrate(models ...interface{}) error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	if err := DB.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logging.L().Info("Database migrations completed", zap.Int("models", len(models)))
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
