package commands

import (
	"context"

	"github.com/expricer/exclusivity-service/internal/application/use_cases"
	"github.com/expricer/exclusivity-service/internal/domain/pricing"
	"github.com/expricer/exclusivity-service/internal/pkg/logger"
)

type QuoteCommand struct {
	WorkType   string  `json:"work_type"`
	CopiesSold int     `json:"copies_sold"`
	MaxCopies  int     `json:"max_copies"`
	MinPrice   float64 `json:"min_price"`
}

type QuoteHandler struct {
	quoteUseCase *use_cases.QuoteUseCase
	log          *logger.Logger
}

func NewQuoteHandler(quoteUseCase *use_cases.QuoteUseCase, log *logger.Logger) *QuoteHandler {
	return &QuoteHandler{
		quoteUseCase: quoteUseCase,
		log:          log,
	}
}

func (h *QuoteHandler) Handle(ctx context.Context, cmd QuoteCommand) (*pricing.Quote, error) {
	quote, err := h.quoteUseCase.QuoteExplicit(ctx, pricing.QuoteRequest{
		WorkType:   cmd.WorkType,
		CopiesSold: cmd.CopiesSold,
		MaxCopies:  cmd.MaxCopies,
		MinPrice:   cmd.MinPrice,
	})
	if err != nil {
		h.log.Warn("Quote failed",
			"work_type", cmd.WorkType,
			"copies_sold", cmd.CopiesSold,
			"max_copies", cmd.MaxCopies,
			"error", err.Error(),
		)
		return nil, err
	}

	return quote, nil
}
