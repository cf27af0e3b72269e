package database

import (
	"errors"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	// ErrSerialization means the transaction lost a serialization race and
	// may be retried as a whole.
	ErrSerialization = errors.New("database: serialization failure")
	// ErrConflictConstraint means an exclusion constraint rejected the write.
	ErrConflictConstraint = errors.New("database: exclusion constraint violated")
	ErrDuplicate          = errors.New("database: duplicate key")
)

// TranslateError maps driver errors onto the package sentinels, keeping the
// original error in the chain. Unknown errors are returned unchanged.
func TranslateError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected:
			return errors.Join(ErrSerialization, err)
		case pgerrcode.ExclusionViolation:
			return errors.Join(ErrConflictConstraint, err)
		case pgerrcode.UniqueViolation:
			return errors.Join(ErrDuplicate, err)
		}
		return err
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errors.Join(ErrDuplicate, err)
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "unique constraint") || strings.Contains(msg, "unique failed"):
		return errors.Join(ErrDuplicate, err)
	case strings.Contains(msg, "database is locked") || strings.Contains(msg, "sqlite_busy"):
		return errors.Join(ErrSerialization, err)
	}
	return err
}
