package database

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), GormConfig(zap.NewNop().Sugar()))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func TestHealthCheck(t *testing.T) {
	t.Run("healthy connection", func(t *testing.T) {
		assert.NoError(t, HealthCheck(context.Background(), openSQLite(t)))
	})

	t.Run("closed connection", func(t *testing.T) {
		db := openSQLite(t)
		require.NoError(t, Close(db))
		assert.Error(t, HealthCheck(context.Background(), db))
	})

	t.Run("nil database", func(t *testing.T) {
		assert.Error(t, HealthCheck(context.Background(), nil))
	})
}

func TestClose(t *testing.T) {
	assert.NoError(t, Close(nil))
	assert.NoError(t, Close(openSQLite(t)))
}

func TestGetStats(t *testing.T) {
	stats, err := GetStats(openSQLite(t))
	require.NoError(t, err)
	assert.Equal(t, 1, stats.MaxOpenConnections)

	stats, err = GetStats(nil)
	assert.Nil(t, stats)
	assert.ErrorContains(t, err, "database connection is nil")
}

type widget struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"uniqueIndex"`
}

func TestIsUniqueViolation(t *testing.T) {
	t.Run("sqlite duplicate", func(t *testing.T) {
		db := openSQLite(t)
		require.NoError(t, db.AutoMigrate(&widget{}))
		require.NoError(t, db.Create(&widget{Name: "a"}).Error)

		err := db.Create(&widget{Name: "a"}).Error
		require.Error(t, err)
		assert.True(t, IsUniqueViolation(err))
	})

	t.Run("postgres code", func(t *testing.T) {
		err := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
		assert.True(t, IsUniqueViolation(err))
		assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	})

	t.Run("other errors", func(t *testing.T) {
		assert.False(t, IsUniqueViolation(nil))
		assert.False(t, IsUniqueViolation(errors.New("timeout")))
	})
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(&pgconn.PgError{Code: "40001"}))
	assert.True(t, IsRetryable(fmt.Errorf("commit: %w", &pgconn.PgError{Code: "40P01"})))
	assert.False(t, IsRetryable(&pgconn.PgError{Code: "23505"}))
	assert.False(t, IsRetryable(errors.New("deadlock detected")))
}

func TestRunInTx(t *testing.T) {
	ctx := context.Background()

	t.Run("commits on success", func(t *testing.T) {
		db := openSQLite(t)
		require.NoError(t, db.AutoMigrate(&widget{}))

		err := RunInTx(ctx, db, func(tx *gorm.DB) error {
			return tx.Create(&widget{Name: "kept"}).Error
		})
		require.NoError(t, err)

		var count int64
		require.NoError(t, db.Model(&widget{}).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("rolls back on error", func(t *testing.T) {
		db := openSQLite(t)
		require.NoError(t, db.AutoMigrate(&widget{}))
		boom := errors.New("boom")

		err := RunInTx(ctx, db, func(tx *gorm.DB) error {
			require.NoError(t, tx.Create(&widget{Name: "dropped"}).Error)
			return boom
		})
		assert.ErrorIs(t, err, boom)

		var count int64
		require.NoError(t, db.Model(&widget{}).Count(&count).Error)
		assert.Zero(t, count)
	})

	t.Run("retries serialization failures", func(t *testing.T) {
		db := openSQLite(t)
		attempts := 0

		err := RunInTx(ctx, db, func(tx *gorm.DB) error {
			attempts++
			if attempts == 1 {
				return &pgconn.PgError{Code: "40001"}
			}
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 2, attempts)
	})
}

func TestForUpdate(t *testing.T) {
	db := openSQLite(t)
	require.NoError(t, db.AutoMigrate(&widget{}))

	assert.False(t, IsPostgres(db))
	stmt := ForUpdate(db.Session(&gorm.Session{DryRun: true})).Find(&[]widget{}).Statement
	assert.NotContains(t, stmt.SQL.String(), "FOR UPDATE")
}

func TestGormLogger(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := NewGormLogger(zap.New(core).Sugar(), 10*time.Millisecond)

	l.Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT 1", 1 }, errors.New("syntax error"))
	l.Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT 1", 0 }, gorm.ErrRecordNotFound)
	l.Trace(context.Background(), time.Now().Add(-time.Second), func() (string, int64) { return "SELECT pg_sleep(1)", 1 }, nil)

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "query failed", logs.All()[0].Message)
	assert.Equal(t, "slow query", logs.All()[1].Message)

	silent := l.LogMode(gormlogger.Silent)
	silent.Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT 1", 1 }, errors.New("ignored"))
	assert.Equal(t, 2, logs.Len())
}
