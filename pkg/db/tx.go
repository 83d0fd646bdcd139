package db

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// WithinTx runs fn inside one database transaction. The transaction
// commits only when fn returns nil; any error or panic rolls it back.
func WithinTx(ctx context.Context, conn *gorm.DB, fn func(tx *gorm.DB) error) error {
	if conn == nil {
		return errors.New("db: nil connection")
	}
	return conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(tx.WithContext(ctx))
	})
}
