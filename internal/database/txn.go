package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/sphildreth/melodee/internal/logger"
)

// TransactionManager hands out scoped transactions over a shared handle.
type TransactionManager struct {
	db *gorm.DB
	mu sync.RWMutex
}

// TransactionContext wraps an open transaction for safe handling.
type TransactionContext struct {
	tx      *gorm.DB
	ctx     context.Context
	started time.Time
	id      string
}

// NewTransactionManager creates a transaction manager over db.
func NewTransactionManager(db *gorm.DB) *TransactionManager {
	return &TransactionManager{db: db}
}

// BeginTransaction starts a new database transaction.
func (tm *TransactionManager) BeginTransaction(ctx context.Context) (*TransactionContext, error) {
	tm.mu.RLock()
	defer tm.mu.RUnlock()

	tx := tm.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	txCtx := &TransactionContext{
		tx:      tx,
		ctx:     ctx,
		started: time.Now(),
		id:      fmt.Sprintf("tx_%d", time.Now().UnixNano()),
	}
	logger.Debug("Started transaction", "id", txCtx.id)
	return txCtx, nil
}

// Commit commits the transaction.
func (tc *TransactionContext) Commit() error {
	if tc.tx == nil {
		return fmt.Errorf("transaction context is nil")
	}
	if err := tc.tx.Commit().Error; err != nil {
		logger.Error("Failed to commit transaction", "id", tc.id, "error", err)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	logger.Debug("Committed transaction", "id", tc.id, "duration", time.Since(tc.started))
	tc.tx = nil
	return nil
}

// Rollback rolls back the transaction.
func (tc *TransactionContext) Rollback() error {
	if tc.tx == nil {
		return fmt.Errorf("transaction context is nil")
	}
	if err := tc.tx.Rollback().Error; err != nil {
		logger.Error("Failed to rollback transaction", "id", tc.id, "error", err)
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}
	tc.tx = nil
	return nil
}

// DB returns the transaction database handle.
func (tc *TransactionContext) DB() *gorm.DB {
	return tc.tx
}

// IsActive reports whether the transaction is still open.
func (tc *TransactionContext) IsActive() bool {
	return tc.tx != nil
}

// WithTransaction executes fn inside a transaction, committing on nil
// error and rolling back otherwise.
func (tm *TransactionManager) WithTransaction(ctx context.Context, fn func(*gorm.DB) error) error {
	txCtx, err := tm.BeginTransaction(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if txCtx.IsActive() {
			txCtx.Rollback()
		}
	}()

	if err := fn(txCtx.DB()); err != nil {
		if rollbackErr := txCtx.Rollback(); rollbackErr != nil {
			logger.Error("Failed to rollback transaction after error", "error", rollbackErr)
		}
		return TranslateError(err)
	}

	return txCtx.Commit()
}
