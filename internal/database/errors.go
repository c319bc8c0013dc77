package database

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// Error taxonomy surfaced by every repository. All storage failures are
// mapped onto one of these sentinels so callers can branch with errors.Is
// without knowing which driver is underneath.
var (
	// ErrNotFound indicates the referenced id/apiKey/natural-key is absent.
	ErrNotFound = errors.New("record not found")

	// ErrConstraintViolation indicates a uniqueness or check constraint breach.
	ErrConstraintViolation = errors.New("constraint violation")

	// ErrForeignKeyViolation indicates a missing parent reference, or a
	// delete attempted on a referenced row without cascade.
	ErrForeignKeyViolation = errors.New("foreign key violation")

	// ErrLocked indicates a mutation was attempted on a locked entity
	// without elevated privilege.
	ErrLocked = errors.New("entity is locked")

	// ErrParse indicates a settings value could not be converted to the
	// caller's expected type. Distinct from ErrNotFound so callers can
	// tell a missing setting from a malformed one.
	ErrParse = errors.New("value parse error")
)

// TranslateError maps gorm and driver errors onto the error taxonomy.
// Unknown errors pass through untouched.
func TranslateError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrConstraintViolation
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return ErrForeignKeyViolation
	}

	// Fall back to message sniffing for drivers that predate gorm's
	// error translation (sqlite and postgres wordings differ).
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"),
		strings.Contains(msg, "duplicate key value violates unique constraint"),
		strings.Contains(msg, "SQLSTATE 23505"):
		return ErrConstraintViolation
	case strings.Contains(msg, "FOREIGN KEY constraint failed"),
		strings.Contains(msg, "violates foreign key constraint"),
		strings.Contains(msg, "SQLSTATE 23503"):
		return ErrForeignKeyViolation
	}

	return err
}
