package database

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// mockDB opens a gorm handle over a sqlmock connection so driver-level
// failures can be injected.
func mockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 conn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return db, mock
}

func TestTransactionCommitAndRollback(t *testing.T) {
	db, mock := mockDB(t)
	tm := NewTransactionManager(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectCommit()

	txCtx, err := tm.BeginTransaction(ctx)
	require.NoError(t, err)
	assert.True(t, txCtx.IsActive())
	require.NoError(t, txCtx.Commit())
	assert.False(t, txCtx.IsActive())

	mock.ExpectBegin()
	mock.ExpectRollback()

	txCtx, err = tm.BeginTransaction(ctx)
	require.NoError(t, err)
	require.NoError(t, txCtx.Rollback())
	assert.False(t, txCtx.IsActive())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBeginTransactionDriverFailure(t *testing.T) {
	db, mock := mockDB(t)
	tm := NewTransactionManager(db)

	mock.ExpectBegin().WillReturnError(errors.New("connection reset"))

	_, err := tm.BeginTransaction(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to begin transaction")
}

func TestWithTransactionRollsBackOnError(t *testing.T) {
	db, mock := mockDB(t)
	tm := NewTransactionManager(db)

	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("boom")
	err := tm.WithTransaction(context.Background(), func(tx *gorm.DB) error {
		return boom
	})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTransactionCommitFailureSurfaces(t *testing.T) {
	db, mock := mockDB(t)
	tm := NewTransactionManager(db)

	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(errors.New("disk full"))

	err := tm.WithTransaction(context.Background(), func(tx *gorm.DB) error {
		return nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to commit transaction")
}
