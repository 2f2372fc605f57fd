package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

// Tx is an opaque transaction handle. The concrete type is infra-defined
// (pgx.Tx for Postgres); repositories accept nil for the non-transactional
// path and dispatch on the handle internally. Being inside a tx is what makes
// row-locking reads (SELECT ... FOR UPDATE) possible.
type Tx interface{}

// NoTx is passed where no transaction is intended, for readability at call sites.
var NoTx Tx

// TransactionManager executes fn inside a database transaction, passing the
// transaction handle through qx. fn returning an error rolls everything back.
// Keep the callback short: the success transition holds a row lock for its
// duration, so gateway calls must happen before WithTx, never inside it.
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, qx Tx) error) error
}
