package errors

import (
	"errors"
)

var (
	ErrInvalidWorkType      = errors.New("work type must be physical or digital")
	ErrInvalidMaxCopies     = errors.New("maximum copies must be greater than zero")
	ErrInvalidMinPrice      = errors.New("minimum price must be greater than zero")
	ErrNegativeCopiesSold   = errors.New("copies sold cannot be negative")
	ErrCopiesSoldExceedsMax = errors.New("copies sold cannot exceed maximum copies")

	ErrInvalidUnitsEliminated = errors.New("units eliminated must be greater than zero")
	ErrMissingBuyerContact    = errors.New("buyer contact is required")
	ErrInvalidAmount          = errors.New("sale amount cannot be negative")

	ErrEditionSoldOut = errors.New("edition is sold out")

	ErrLedgerUnavailable = errors.New("ledger storage unavailable")
	ErrLedgerBusy        = errors.New("ledger is busy, try again")
	ErrLedgerCorrupted   = errors.New("ledger state is corrupted, operator intervention required")
)

// IsInvalidInput reports whether err is a caller error rather than a
// storage or concurrency failure. Invalid input is never retried.
func IsInvalidInput(err error) bool {
	for _, target := range []error{
		ErrInvalidWorkType,
		ErrInvalidMaxCopies,
		ErrInvalidMinPrice,
		ErrNegativeCopiesSold,
		ErrCopiesSoldExceedsMax,
		ErrInvalidUnitsEliminated,
		ErrMissingBuyerContact,
		ErrInvalidAmount,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
