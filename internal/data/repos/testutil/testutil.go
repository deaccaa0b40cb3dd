package testutil

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	dbpkg "github.com/yungbote/pdfmentor-backend/internal/data/db"
	"github.com/yungbote/pdfmentor-backend/internal/platform/logger"
)

var (
	pgOnce sync.Once
	pgDB   *gorm.DB
	pgErr  error

	logOnce sync.Once
	logg    *logger.Logger
	logErr  error

	sqliteSeq atomic.Int64
)

func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	logOnce.Do(func() {
		logg, logErr = logger.New("test")
	})
	if logErr != nil {
		tb.Fatalf("failed to init logger: %v", logErr)
	}
	return logg
}

// DB returns a migrated database. With TEST_POSTGRES_DSN set it is a shared
// Postgres connection; otherwise each call gets its own in-memory SQLite
// database that is closed when the test ends.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()
	if dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN")); dsn != "" {
		return postgresDB(tb, dsn)
	}
	return sqliteDB(tb)
}

func postgresDB(tb testing.TB, dsn string) *gorm.DB {
	tb.Helper()
	pgOnce.Do(func() {
		pgDB, pgErr = gorm.Open(postgres.Open(dsn), &gorm.Config{
			DisableForeignKeyConstraintWhenMigrating: true,
			Logger:                                   gormLogger.Default.LogMode(gormLogger.Silent),
		})
		if pgErr != nil {
			return
		}
		pgErr = dbpkg.AutoMigrateAll(pgDB)
	})
	if pgErr != nil {
		tb.Fatalf("failed to init test db: %v", pgErr)
	}
	return pgDB
}

func sqliteDB(tb testing.TB) *gorm.DB {
	tb.Helper()
	name := fmt.Sprintf("file:pdfmentor_test_%d?mode=memory&cache=shared", sqliteSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(name), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		tb.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("sqlite pool: %v", err)
	}
	// One connection keeps the in-memory database alive and serializes writers.
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })

	if err := dbpkg.AutoMigrateAll(db); err != nil {
		tb.Fatalf("migrate sqlite: %v", err)
	}
	return db
}

func Tx(tb testing.TB, db *gorm.DB) *gorm.DB {
	tb.Helper()
	tx := db.Begin()
	if tx.Error != nil {
		tb.Fatalf("begin tx: %v", tx.Error)
	}
	tb.Cleanup(func() {
		_ = tx.Rollback().Error
	})
	return tx
}
