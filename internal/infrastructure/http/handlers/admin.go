package handlers

import (
	"net/http"

	"github.com/expricer/exclusivity-service/internal/application/ports"
	"github.com/expricer/exclusivity-service/internal/infrastructure/http/response"
	"github.com/expricer/exclusivity-service/internal/pkg/logger"
)

type AdminHandler struct {
	ledgerRepo ports.LedgerRepository
	cache      ports.Cache
	log        *logger.Logger
}

func NewAdminHandler(ledgerRepo ports.LedgerRepository, cache ports.Cache, log *logger.Logger) *AdminHandler {
	return &AdminHandler{
		ledgerRepo: ledgerRepo,
		cache:      cache,
		log:        log,
	}
}

// HandleResetLedger clears all counters, history and processed
// transactions. Administrative reinitialization only; the purchase path
// never calls it.
func (h *AdminHandler) HandleResetLedger(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if err := h.ledgerRepo.Reset(r.Context()); err != nil {
		h.log.Error("Ledger reset failed", "error", err.Error())
		response.WriteDomainError(w, err)
		return
	}

	if h.cache != nil {
		if err := h.cache.InvalidateCopiesSold(r.Context()); err != nil {
			h.log.Warn("Failed to invalidate copies-sold cache after reset", "error", err.Error())
		}
	}

	h.log.Info("Ledger reset")
	response.WriteSuccess(w, map[string]string{"status": "reset"})
}
