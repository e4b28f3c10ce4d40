package ports

import (
	"context"
	"time"
)

// Cache is the fast-path layer in front of the ledger: a distributed lock
// for purchase completion, a short-lived copies-sold read cache for quote
// traffic, a bloom pre-filter over processed transaction ids, and the
// fixed-window counters behind rate limiting.
type Cache interface {
	DistributedLock(ctx context.Context, key string, expiration time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key string) error

	GetCopiesSold(ctx context.Context) (int, bool, error)
	SetCopiesSold(ctx context.Context, count int, expiration time.Duration) error
	InvalidateCopiesSold(ctx context.Context) error

	// TransactionSeen may return false positives, never false negatives;
	// a positive answer must still be confirmed against the ledger.
	TransactionSeen(ctx context.Context, transactionID string) (bool, error)
	MarkTransactionSeen(ctx context.Context, transactionID string) error

	IncrementRequestCount(ctx context.Context, clientID string, window time.Duration) (int, error)
}
