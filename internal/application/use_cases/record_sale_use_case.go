package use_cases

import (
	"context"
	"fmt"
	"time"

	"github.com/expricer/exclusivity-service/internal/application/ports"
	"github.com/expricer/exclusivity-service/internal/config"
	domainErrors "github.com/expricer/exclusivity-service/internal/domain/errors"
	"github.com/expricer/exclusivity-service/internal/domain/ledger"
	"github.com/expricer/exclusivity-service/internal/infrastructure/monitoring"
	"github.com/expricer/exclusivity-service/internal/pkg/logger"
)

type RecordSaleUseCase struct {
	ledgerRepo ports.LedgerRepository
	cache      ports.Cache
	product    config.ProductConfig
	log        *logger.Logger
	lockTTL    time.Duration
}

func NewRecordSaleUseCase(
	ledgerRepo ports.LedgerRepository,
	cache ports.Cache,
	product config.ProductConfig,
	log *logger.Logger,
	lockTTL time.Duration,
) *RecordSaleUseCase {
	return &RecordSaleUseCase{
		ledgerRepo: ledgerRepo,
		cache:      cache,
		product:    product,
		log:        log,
		lockTTL:    lockTTL,
	}
}

// Execute applies one verified purchase completion to the ledger.
// Replays of an already-processed transaction id come back with
// Applied=false and are not an error; webhook retries and duplicate
// success-page loads hit this path.
func (uc *RecordSaleUseCase) Execute(ctx context.Context, params ledger.RecordSaleParams) (*ports.RecordSaleResult, error) {
	if err := params.Validate(); err != nil {
		monitoring.RecordSaleFailure("invalid_input")
		return nil, err
	}

	if params.TransactionID != "" && uc.cache != nil {
		seen, err := uc.cache.TransactionSeen(ctx, params.TransactionID)
		if err != nil {
			uc.log.Warn("Transaction bloom check failed", "error", err.Error(), "transaction_id", params.TransactionID)
		} else if seen {
			// Probable replay; the ledger below gives the authoritative
			// answer either way.
			uc.log.Info("Transaction likely already processed", "transaction_id", params.TransactionID)
		}
	}

	if params.TransactionID != "" && uc.cache != nil {
		lockKey := fmt.Sprintf("sale:%s", params.TransactionID)
		locked, err := uc.cache.DistributedLock(ctx, lockKey, uc.lockTTL)
		if err != nil {
			uc.log.Error("Failed to acquire sale lock", "error", err.Error(), "lock_key", lockKey)
			monitoring.RecordSaleFailure("lock_error")
			return nil, fmt.Errorf("%w: %v", domainErrors.ErrLedgerUnavailable, err)
		}
		if !locked {
			monitoring.RecordSaleFailure("busy")
			return nil, domainErrors.ErrLedgerBusy
		}
		defer func() {
			if err := uc.cache.ReleaseLock(ctx, lockKey); err != nil {
				uc.log.Error("Failed to release sale lock", "error", err.Error(), "lock_key", lockKey)
			}
		}()
	}

	result, err := uc.ledgerRepo.RecordSale(ctx, params)
	if err != nil {
		monitoring.RecordSaleFailure(saleFailureReason(err))
		return nil, err
	}

	if result.Applied {
		monitoring.RecordSaleApplied()
		monitoring.UpdateLedgerCounts(uc.product.MaxCopies, result.CopiesSold, result.TotalRevenue)
		uc.refreshCache(ctx, params.TransactionID, result.CopiesSold)
		uc.log.Info("Sale recorded",
			"record_id", result.Record.ID,
			"units_eliminated", params.UnitsEliminated,
			"copies_sold", result.CopiesSold,
			"transaction_id", params.TransactionID,
		)
	} else {
		monitoring.RecordSaleReplay()
		uc.log.Info("Sale replay ignored", "transaction_id", params.TransactionID)
	}

	return result, nil
}

func (uc *RecordSaleUseCase) refreshCache(ctx context.Context, transactionID string, copiesSold int) {
	if uc.cache == nil {
		return
	}

	if err := uc.cache.InvalidateCopiesSold(ctx); err != nil {
		uc.log.Warn("Failed to invalidate copies-sold cache", "error", err.Error())
	}
	if transactionID != "" {
		if err := uc.cache.MarkTransactionSeen(ctx, transactionID); err != nil {
			uc.log.Warn("Failed to mark transaction in bloom filter", "error", err.Error(), "transaction_id", transactionID)
		}
	}
}

func saleFailureReason(err error) string {
	switch {
	case domainErrors.IsInvalidInput(err):
		return "invalid_input"
	case err == domainErrors.ErrLedgerBusy:
		return "busy"
	case err == domainErrors.ErrEditionSoldOut:
		return "sold_out"
	default:
		return "storage"
	}
}
