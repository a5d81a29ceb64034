package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/fatflowers/paygate/internal/models"
	cfgpkg "github.com/fatflowers/paygate/pkg/config"
	gormzap "github.com/fatflowers/paygate/pkg/gormlog"
)

func NewDB(l *zap.SugaredLogger, cfg *cfgpkg.Config) (*gorm.DB, error) {
	level := gormlogger.Warn
	if cfg.Env == cfgpkg.EnvDev {
		level = gormlogger.Info
	}
	return Open(cfg.Database.Driver, cfg.Database.DSN, l, level)
}

// Open connects to driver/dsn. Driver errors on unique constraints are
// translated to gorm.ErrDuplicatedKey.
func Open(driver cfgpkg.DBDriver, dsn string, l *zap.SugaredLogger, level gormlogger.LogLevel) (*gorm.DB, error) {
	if dsn == "" {
		l.Error("database DSN is empty")
		return nil, gorm.ErrInvalidDB
	}

	var dialector gorm.Dialector
	switch driver {
	case cfgpkg.DBDriverPostgres:
		dialector = postgres.Open(dsn)
	case cfgpkg.DBDriverSQLite:
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormzap.New(l, level),
		TranslateError: true,
	})
	if err != nil {
		l.Errorf("failed to connect database: %v", err)
		return nil, err
	}

	if driver == cfgpkg.DBDriverSQLite {
		// sqlite allows a single writer; shared-cache memory databases report
		// SQLITE_LOCKED instead of waiting.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	l.Infow("connected to database", "driver", driver)
	return db, nil
}

// IsUniqueViolation reports whether err was caused by a unique or primary key conflict.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value") || strings.Contains(msg, "UNIQUE constraint failed")
}

var Module = fx.Options(
	fx.Provide(NewDB),
	fx.Invoke(AutoMigrate),
	fx.Invoke(registerDBClose),
)

// AutoMigrate runs GORM migrations on startup
func AutoMigrate(l *zap.SugaredLogger, db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Merchant{},
		&models.PaymentInitiatedEvent{},
		&models.PaymentSettledEvent{},
	); err != nil {
		l.Errorf("automigrate failed: %v", err)
		return err
	}
	l.Infow("automigrate completed")
	return nil
}

// registerDBClose ensures the underlying *sql.DB is closed on shutdown
func registerDBClose(lc fx.Lifecycle, l *zap.SugaredLogger, gdb *gorm.DB) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			sqlDB, err := gdb.DB()
			if err != nil {
				l.Warnw("gorm: get sql.DB failed", "err", err)
				return nil
			}
			l.Infow("closing database connection pool")
			return sqlDB.Close()
		},
	})
}
