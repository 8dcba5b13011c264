package db

import (
	"context"

	"gorm.io/gorm"
)

// txKey is the context key carrying an open transaction.
type txKey struct{}

// RunInTransaction executes fn inside a single database transaction. The
// transaction handle travels in the context so that repositories called from fn
// join it via Tx. A non-nil error from fn rolls the transaction back.
func RunInTransaction(ctx context.Context, d *gorm.DB, fn func(ctx context.Context) error) error {
	return d.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// Tx returns the transaction from ctx when one is open, otherwise the default
// handle bound to ctx.
func Tx(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return fallback.WithContext(ctx)
}
