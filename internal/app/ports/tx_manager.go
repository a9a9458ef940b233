package ports

import "context"

// TxManager runs fn in one transaction. A call made with a ctx that already
// carries a transaction joins it.
type TxManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}
