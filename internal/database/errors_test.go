package database

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestTranslateError(t *testing.T) {
	opaque := errors.New("disk I/O error")

	tests := []struct {
		name     string
		input    error
		expected error
	}{
		{"nil passes through", nil, nil},
		{"gorm not found", gorm.ErrRecordNotFound, ErrNotFound},
		{"gorm duplicated key", gorm.ErrDuplicatedKey, ErrConstraintViolation},
		{"gorm fk violated", gorm.ErrForeignKeyViolated, ErrForeignKeyViolation},
		{"sqlite unique message", errors.New("UNIQUE constraint failed: artists.api_key"), ErrConstraintViolation},
		{"postgres unique message", errors.New("ERROR: duplicate key value violates unique constraint (SQLSTATE 23505)"), ErrConstraintViolation},
		{"sqlite fk message", errors.New("FOREIGN KEY constraint failed"), ErrForeignKeyViolation},
		{"postgres fk message", errors.New("ERROR: insert violates foreign key constraint (SQLSTATE 23503)"), ErrForeignKeyViolation},
		{"unknown passes through", opaque, opaque},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TranslateError(tt.input)
			if tt.expected == nil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tt.expected)
		})
	}
}
