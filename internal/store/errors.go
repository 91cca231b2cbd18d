package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrEmailExists    = errors.New("email already registered")
	ErrUsernameExists = errors.New("username already taken")
	ErrConflict       = errors.New("unique constraint violated")
)

const pgUniqueViolation = "23505"

// translateError maps driver errors onto the package sentinels.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == pgUniqueViolation {
			return uniqueViolation(pgErr.ConstraintName, err)
		}
		return err
	}

	msg := strings.ToLower(err.Error())
	if errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") {
		return uniqueViolation(msg, err)
	}
	return err
}

func uniqueViolation(hint string, err error) error {
	hint = strings.ToLower(hint)
	switch {
	case strings.Contains(hint, "email"):
		return ErrEmailExists
	case strings.Contains(hint, "username"):
		return ErrUsernameExists
	default:
		return fmt.Errorf("%w: %v", ErrConflict, err)
	}
}
