// Package database opens the gorm connection used for visitor preferences.
// DB_DRIVER=none disables it; callers then keep preferences in the session only.
package database

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/jhonlemus05/FastBite-Delivery/config"
)

// ErrDisabled is returned by Connect when DB_DRIVER is "none".
var ErrDisabled = errors.New("database: disabled (DB_DRIVER=none)")

var DB *gorm.DB

// Connect opens the configured database, stores it in DB and returns it.
// Returns an error instead of calling log.Fatal so the caller can
// shut down gracefully.
func Connect() (*gorm.DB, error) {
	driver := config.DatabaseDriver()
	if driver == "none" {
		return nil, ErrDisabled
	}

	db, err := Open(driver, config.DatabaseDSN())
	if err != nil {
		return nil, err
	}
	DB = db
	return db, nil
}

// Open connects with an explicit driver and DSN and configures the pool.
func Open(driver, dsn string) (*gorm.DB, error) {
	dialector, err := buildDialector(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("database: build dialector: %w", err)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent), // use pkg/logger, not GORM's own
	})
	if err != nil {
		return nil, fmt.Errorf("database: open: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database: get sql.DB: %w", err)
	}
	if driver == "sqlite" {
		// one writer; avoids "database is locked" under concurrent requests
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(10)
	}
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetConnMaxIdleTime(2 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("database: ping: %w", err)
	}
	return db, nil
}

// Close releases the global connection, if any.
func Close() error {
	if DB == nil {
		return nil
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func buildDialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "sqlite":
		return sqlite.Open(dsn), nil
	case "postgres":
		return postgres.Open(dsn), nil
	case "mysql":
		return mysql.Open(dsn), nil
	case "sqlserver":
		return sqlserver.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q (supported: sqlite, postgres, mysql, sqlserver, none)", driver)
	}
}
