package handlers

import (
	"net/http"

	"github.com/expricer/exclusivity-service/internal/application/ports"
	"github.com/expricer/exclusivity-service/internal/config"
	"github.com/expricer/exclusivity-service/internal/infrastructure/http/response"
	"github.com/expricer/exclusivity-service/internal/pkg/logger"
)

type LedgerHandler struct {
	ledgerRepo ports.LedgerRepository
	product    config.ProductConfig
	log        *logger.Logger
}

func NewLedgerHandler(ledgerRepo ports.LedgerRepository, product config.ProductConfig, log *logger.Logger) *LedgerHandler {
	return &LedgerHandler{
		ledgerRepo: ledgerRepo,
		product:    product,
		log:        log,
	}
}

type LedgerResponse struct {
	CopiesSold      int     `json:"copies_sold"`
	CopiesRemaining int     `json:"copies_remaining"`
	MaxCopies       int     `json:"max_copies"`
	TotalRevenue    float64 `json:"total_revenue"`
	SalesCount      int     `json:"sales_count"`
	SoldOut         bool    `json:"sold_out"`
}

func (h *LedgerHandler) HandleGetLedger(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	state, err := h.ledgerRepo.Snapshot(r.Context())
	if err != nil {
		h.log.Error("Failed to read ledger snapshot", "error", err.Error())
		response.WriteDomainError(w, err)
		return
	}

	remaining := h.product.MaxCopies - state.CopiesSold

	response.WriteSuccess(w, LedgerResponse{
		CopiesSold:      state.CopiesSold,
		CopiesRemaining: remaining,
		MaxCopies:       h.product.MaxCopies,
		TotalRevenue:    state.TotalRevenue,
		SalesCount:      len(state.History),
		SoldOut:         remaining <= 0,
	})
}
