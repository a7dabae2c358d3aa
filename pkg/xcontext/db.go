package xcontext

import (
	"context"

	"gorm.io/gorm"
)

// dbTx is a pointer so that committing or rolling back through a derived context is observed by
// every context sharing the same transaction.
type dbTx struct {
	tx     *gorm.DB
	done   bool
	nested bool
}

func WithDB(ctx context.Context, db *gorm.DB) context.Context {
	return context.WithValue(ctx, dbKey{}, db)
}

// DB returns the current database transaction if there is an on-going one, otherwise the root
// database connection.
func DB(ctx context.Context) *gorm.DB {
	if t, ok := ctx.Value(dbTxKey{}).(*dbTx); ok && !t.done {
		return t.tx
	}

	db, _ := ctx.Value(dbKey{}).(*gorm.DB)
	if db == nil {
		return nil
	}

	return db.WithContext(ctx)
}

// WithDBTransaction begins a transaction and returns a context whose DB() is the transaction. It
// must be closed by WithCommitDBTransaction or WithRollbackDBTransaction. If ctx already carries
// an on-going transaction, the returned context joins it and only the outermost owner commits.
func WithDBTransaction(ctx context.Context) context.Context {
	if t, ok := ctx.Value(dbTxKey{}).(*dbTx); ok && !t.done {
		return context.WithValue(ctx, dbTxKey{}, &dbTx{tx: t.tx, nested: true})
	}

	tx := DB(ctx).Begin()
	return context.WithValue(ctx, dbTxKey{}, &dbTx{tx: tx})
}

func WithCommitDBTransaction(ctx context.Context) error {
	t, ok := ctx.Value(dbTxKey{}).(*dbTx)
	if !ok || t.done {
		return nil
	}

	t.done = true
	if t.nested {
		return nil
	}

	return t.tx.Commit().Error
}

// WithRollbackDBTransaction rolls back the on-going transaction. It is a no-op if the transaction
// was already committed, so it is safe to defer right after WithDBTransaction.
func WithRollbackDBTransaction(ctx context.Context) {
	t, ok := ctx.Value(dbTxKey{}).(*dbTx)
	if !ok || t.done {
		return
	}

	t.done = true
	if !t.nested {
		t.tx.Rollback()
	}
}
