package db

import (
	"context"
	"database/sql"
	"fmt"

	"gorm.io/gorm"
)

// WithTx executes fn within a ReadCommitted transaction. fn receives a
// handle bound to the transaction and locks the rows it modifies; returning
// an error rolls it back.
func WithTx(ctx context.Context, gdb *gorm.DB, fn func(tx *gorm.DB) error) error {
	err := gdb.WithContext(ctx).Transaction(fn, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("platform/db: tx: %w", err)
	}
	return nil
}
