package database

import (
	"fmt"
	"strings"
	"time"

	"github.com/mikepea/taskr/pkg/taskr/models"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Open initializes a database connection for the given driver and DSN.
// SQLite is the default; Postgres is available for shared deployments.
func Open(driver, dsn string, log logrus.FieldLogger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch strings.ToLower(driver) {
	case "", DriverSQLite:
		dialector = sqlite.Open(dsn)
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	cfg := &gorm.Config{TranslateError: true}
	if log != nil {
		cfg.Logger = newGormLogger(log)
	}

	db, err := gorm.Open(dialector, cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}

	// Every connection of an in-memory SQLite database is a separate database
	if isMemorySQLite(driver, dsn) {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := models.SetupJoinTables(db); err != nil {
		return nil, fmt.Errorf("setup join tables: %w", err)
	}
	return db, nil
}

// OpenAndMigrate opens the database and runs auto-migrations
func OpenAndMigrate(driver, dsn string, log logrus.FieldLogger) (*gorm.DB, error) {
	db, err := Open(driver, dsn, log)
	if err != nil {
		return nil, err
	}
	if err := models.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

func isMemorySQLite(driver, dsn string) bool {
	if driver != "" && !strings.EqualFold(driver, DriverSQLite) {
		return false
	}
	return dsn == ":memory:" || strings.Contains(dsn, "mode=memory")
}

// newGormLogger routes gorm's slow query and error output through logrus
func newGormLogger(log logrus.FieldLogger) logger.Interface {
	return logger.New(
		gormWriter{log: log.WithField("component", "gorm")},
		logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)
}

type gormWriter struct {
	log logrus.FieldLogger
}

func (w gormWriter) Printf(format string, args ...interface{}) {
	w.log.Warnf(format, args...)
}
