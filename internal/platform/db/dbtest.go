package db

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	cfgpkg "github.com/fatflowers/paygate/pkg/config"
)

// OpenMemory opens a migrated in-memory sqlite database private to one call
// and closes it when t finishes. Tests across packages use it in place of postgres.
func OpenMemory(t testing.TB, l *zap.SugaredLogger) (*gorm.DB, error) {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name()) + "_" + uuid.NewString()
	gdb, err := Open(cfgpkg.DBDriverSQLite, fmt.Sprintf("file:%s?mode=memory&cache=shared", name), l, gormlogger.Warn)
	if err != nil {
		return nil, err
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := AutoMigrate(l, gdb); err != nil {
		return nil, err
	}
	return gdb, nil
}
