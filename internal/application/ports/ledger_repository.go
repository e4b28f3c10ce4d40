package ports

import (
	"context"

	"github.com/expricer/exclusivity-service/internal/domain/ledger"
)

// RecordSaleResult reports what a RecordSale call did. Applied is false
// when the transaction id had already been processed; the counters then
// reflect the earlier, unchanged state.
type RecordSaleResult struct {
	Applied      bool
	Record       *ledger.SaleRecord
	CopiesSold   int
	TotalRevenue float64
}

// LedgerRepository is the durable sales ledger. Implementations must
// serialize the read-check-mutate-persist sequence inside RecordSale so
// concurrent completions can neither drop a sale, double-apply one, nor
// push copies sold past the edition cap they were constructed with, and
// must not expose in-memory state that a failed persist left behind.
// RecordSale returns ErrEditionSoldOut when the sale would exceed the
// cap; replays of a processed transaction id short-circuit before that
// check.
type LedgerRepository interface {
	CopiesSold(ctx context.Context) (int, error)
	RecordSale(ctx context.Context, params ledger.RecordSaleParams) (*RecordSaleResult, error)
	History(ctx context.Context) ([]ledger.SaleRecord, error)
	Snapshot(ctx context.Context) (*ledger.State, error)
	Reset(ctx context.Context) error
}
