// Package db opens the gorm handle for the configured database.
package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Pool limits for postgres. sqlite always runs with a single connection.
var (
	MaxOpenConns    = 20
	MaxIdleConns    = 10
	ConnMaxLifetime = 30 * time.Minute
	ConnMaxIdleTime = 5 * time.Minute
)

const sqlitePrefix = "sqlite:"

func dialector(dsn string) (gorm.Dialector, bool, error) {
	switch {
	case dsn == "":
		return nil, false, fmt.Errorf("DATABASE_URL is empty")
	case strings.HasPrefix(dsn, sqlitePrefix):
		return sqlite.Open(strings.TrimPrefix(dsn, sqlitePrefix)), true, nil
	default:
		return postgres.Open(dsn), false, nil
	}
}

// Open connects and pings. DSNs of the form "sqlite:<path>" select the
// embedded driver, anything else is handed to postgres.
func Open(ctx context.Context, dsn string) (*gorm.DB, error) {
	d, embedded, err := dialector(dsn)
	if err != nil {
		return nil, err
	}

	gdb, err := gorm.Open(d, &gorm.Config{
		PrepareStmt:    !embedded,
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	if embedded {
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(MaxOpenConns)
		sqlDB.SetMaxIdleConns(MaxIdleConns)
		sqlDB.SetConnMaxLifetime(ConnMaxLifetime)
		sqlDB.SetConnMaxIdleTime(ConnMaxIdleTime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return gdb, nil
}

func Migrate(ctx context.Context, gdb *gorm.DB) error {
	if err := gdb.WithContext(ctx).AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func Close(gdb *gorm.DB) error {
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
