package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/johnquangdev/meeting-quality/internal/domain/repositories"
)

type txKey struct{}

// transactor implements repositories.Transactor on top of gorm transactions
type transactor struct {
	db *gorm.DB
}

// NewTransactor creates a new transactor
func NewTransactor(db *gorm.DB) repositories.Transactor {
	return &transactor{db: db}
}

// WithinTransaction runs fn in a transaction, or in the caller's transaction when ctx already carries one.
func (t *transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// conn returns the transaction bound to ctx, or db.
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}
