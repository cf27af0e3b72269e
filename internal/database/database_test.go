package database

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"studiobooking/internal/domain"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:database_test_%s?mode=memory&cache=shared", t.Name())
	db, err := Connect(dsn, Options{LogLevel: "silent"})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	return db
}

func TestTranslateError_Postgres(t *testing.T) {
	cases := []struct {
		code string
		want error
	}{
		{pgerrcode.SerializationFailure, ErrSerialization},
		{pgerrcode.DeadlockDetected, ErrSerialization},
		{pgerrcode.ExclusionViolation, ErrConflictConstraint},
		{pgerrcode.UniqueViolation, ErrDuplicate},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			pgErr := &pgconn.PgError{Code: tc.code}
			err := TranslateError(fmt.Errorf("insert booking: %w", pgErr))
			assert.ErrorIs(t, err, tc.want)

			var got *pgconn.PgError
			assert.True(t, errors.As(err, &got))
		})
	}
}

func TestTranslateError_PassThrough(t *testing.T) {
	assert.NoError(t, TranslateError(nil))

	plain := errors.New("boom")
	assert.Equal(t, plain, TranslateError(plain))

	other := &pgconn.PgError{Code: pgerrcode.NotNullViolation}
	assert.Equal(t, error(other), TranslateError(other))
}

func TestTranslateError_SQLite(t *testing.T) {
	err := TranslateError(errors.New("constraint failed: UNIQUE constraint failed: users.email (2067)"))
	assert.ErrorIs(t, err, ErrDuplicate)

	err = TranslateError(errors.New("database is locked (5) (SQLITE_BUSY)"))
	assert.ErrorIs(t, err, ErrSerialization)
}

func TestTxManager_CommitAndRollback(t *testing.T) {
	db := setupDB(t)
	tx := NewTxManager(db)
	ctx := context.Background()

	err := tx.WithinTransaction(ctx, func(ctx context.Context) error {
		return Conn(ctx, db).Create(&domain.Studio{Name: "Kept", HourlyRate: 10, Capacity: 1}).Error
	})
	require.NoError(t, err)

	sentinel := errors.New("abort")
	err = tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := Conn(ctx, db).Create(&domain.Studio{Name: "Dropped", HourlyRate: 10, Capacity: 1}).Error; err != nil {
			return err
		}
		return sentinel
	})
	assert.ErrorIs(t, err, sentinel)

	var names []string
	require.NoError(t, db.Model(&domain.Studio{}).Pluck("name", &names).Error)
	assert.Equal(t, []string{"Kept"}, names)
}

func TestTxManager_NestedJoinsOuter(t *testing.T) {
	db := setupDB(t)
	tx := NewTxManager(db)

	err := tx.WithinTransaction(context.Background(), func(outer context.Context) error {
		outerConn := Conn(outer, db)
		return tx.WithinTransaction(outer, func(inner context.Context) error {
			assert.Same(t, outerConn, Conn(inner, db))
			return nil
		})
	})
	require.NoError(t, err)
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, parseLogLevel("warn"), parseLogLevel(""))
	assert.NotEqual(t, parseLogLevel("silent"), parseLogLevel("info"))
}

func TestIsPostgres(t *testing.T) {
	assert.True(t, IsPostgres("postgres://u:p@localhost/db"))
	assert.True(t, IsPostgres("postgresql://localhost/db"))
	assert.False(t, IsPostgres("file:dev.db"))
}

func TestLockForUpdate_SQLiteIsNoop(t *testing.T) {
	db := setupDB(t)
	require.NoError(t, db.Create(&domain.Studio{Name: "Locked", HourlyRate: 10, Capacity: 1, IsActive: true}).Error)

	err := NewTxManager(db).WithinTransaction(context.Background(), func(ctx context.Context) error {
		var studios []domain.Studio
		if err := LockForUpdate(ctx, Conn(ctx, db)).Find(&studios).Error; err != nil {
			return err
		}
		assert.Len(t, studios, 1)
		return nil
	})
	assert.NoError(t, err)
}
