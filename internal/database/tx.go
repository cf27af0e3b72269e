package database

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type txKey struct{}

// TxManager runs units of work in one database transaction. Repositories
// resolve the active transaction with Conn.
type TxManager struct {
	db   *gorm.DB
	opts *sql.TxOptions
}

func NewTxManager(db *gorm.DB) *TxManager {
	m := &TxManager{db: db}
	if db.Dialector.Name() == "postgres" {
		m.opts = &sql.TxOptions{Isolation: sql.LevelSerializable}
	}
	return m
}

// WithinTransaction commits when fn returns nil and rolls back otherwise. A
// call made inside a running transaction joins it.
func (m *TxManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}

	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	}, m.opts)
	return TranslateError(err)
}

// Conn returns the transaction carried by ctx, or db bound to ctx.
func Conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return db.WithContext(ctx)
}

// LockForUpdate adds FOR UPDATE to q when ctx carries a Postgres
// transaction. SQLite already serializes writers.
func LockForUpdate(ctx context.Context, q *gorm.DB) *gorm.DB {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); !ok || q.Dialector.Name() != "postgres" {
		return q
	}
	return q.Clauses(clause.Locking{Strength: "UPDATE"})
}
