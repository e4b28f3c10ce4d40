package use_cases

import (
	"context"
	"time"

	"github.com/expricer/exclusivity-service/internal/application/ports"
	"github.com/expricer/exclusivity-service/internal/config"
	domainErrors "github.com/expricer/exclusivity-service/internal/domain/errors"
	"github.com/expricer/exclusivity-service/internal/domain/pricing"
	"github.com/expricer/exclusivity-service/internal/infrastructure/monitoring"
	"github.com/expricer/exclusivity-service/internal/pkg/logger"
)

// copiesSoldCacheTTL bounds how stale a quote's copies-sold read may be.
// Quotes tolerate slight staleness; the ledger write path never does.
const copiesSoldCacheTTL = 5 * time.Second

type QuoteUseCase struct {
	ledgerRepo ports.LedgerRepository
	cache      ports.Cache
	product    config.ProductConfig
	log        *logger.Logger
}

func NewQuoteUseCase(
	ledgerRepo ports.LedgerRepository,
	cache ports.Cache,
	product config.ProductConfig,
	log *logger.Logger,
) *QuoteUseCase {
	return &QuoteUseCase{
		ledgerRepo: ledgerRepo,
		cache:      cache,
		product:    product,
		log:        log,
	}
}

// QuoteCurrent prices the configured product against the live ledger
// count. This is the quote the storefront displays.
func (uc *QuoteUseCase) QuoteCurrent(ctx context.Context) (*pricing.Quote, error) {
	monitoring.RecordQuoteRequest()

	copiesSold, err := uc.readCopiesSold(ctx)
	if err != nil {
		monitoring.RecordQuoteFailure("ledger_read")
		return nil, err
	}

	quote, err := pricing.Calculate(pricing.QuoteRequest{
		WorkType:   uc.product.WorkType,
		CopiesSold: copiesSold,
		MaxCopies:  uc.product.MaxCopies,
		MinPrice:   uc.product.MinPrice,
	})
	if err != nil {
		monitoring.RecordQuoteFailure(quoteFailureReason(err))
		return nil, err
	}

	return quote, nil
}

// QuoteExplicit prices caller-supplied parameters. It never touches the
// ledger and has no side effects.
func (uc *QuoteUseCase) QuoteExplicit(ctx context.Context, req pricing.QuoteRequest) (*pricing.Quote, error) {
	monitoring.RecordQuoteRequest()

	quote, err := pricing.Calculate(req)
	if err != nil {
		monitoring.RecordQuoteFailure(quoteFailureReason(err))
		return nil, err
	}

	return quote, nil
}

func (uc *QuoteUseCase) readCopiesSold(ctx context.Context) (int, error) {
	if uc.cache != nil {
		count, hit, err := uc.cache.GetCopiesSold(ctx)
		if err != nil {
			uc.log.Warn("Copies-sold cache read failed, falling back to ledger", "error", err.Error())
		} else if hit {
			return count, nil
		}
	}

	count, err := uc.ledgerRepo.CopiesSold(ctx)
	if err != nil {
		return 0, err
	}

	if uc.cache != nil {
		if err := uc.cache.SetCopiesSold(ctx, count, copiesSoldCacheTTL); err != nil {
			uc.log.Warn("Failed to cache copies sold", "error", err.Error())
		}
	}

	return count, nil
}

func quoteFailureReason(err error) string {
	if domainErrors.IsInvalidInput(err) {
		return "invalid_input"
	}
	return "internal"
}
