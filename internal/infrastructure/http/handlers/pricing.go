package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/expricer/exclusivity-service/internal/application/commands"
	"github.com/expricer/exclusivity-service/internal/application/use_cases"
	"github.com/expricer/exclusivity-service/internal/infrastructure/http/response"
	"github.com/expricer/exclusivity-service/internal/pkg/logger"
)

type PricingHandler struct {
	quoteUseCase *use_cases.QuoteUseCase
	log          *logger.Logger
}

func NewPricingHandler(quoteUseCase *use_cases.QuoteUseCase, log *logger.Logger) *PricingHandler {
	return &PricingHandler{
		quoteUseCase: quoteUseCase,
		log:          log,
	}
}

// HandleCurrentQuote prices the configured product against the live
// ledger count.
func (h *PricingHandler) HandleCurrentQuote(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	quote, err := h.quoteUseCase.QuoteCurrent(r.Context())
	if err != nil {
		h.log.Error("Current quote failed", "error", err.Error())
		response.WriteDomainError(w, err)
		return
	}

	response.WriteSuccess(w, quote)
}

// HandleExplicitQuote prices caller-supplied parameters without touching
// the ledger.
func (h *PricingHandler) HandleExplicitQuote(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var cmd commands.QuoteCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		response.WriteError(w, http.StatusBadRequest, response.StatusValidationError, "Invalid request body", err.Error())
		return
	}

	handler := commands.NewQuoteHandler(h.quoteUseCase, h.log)
	quote, err := handler.Handle(r.Context(), cmd)
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}

	response.WriteSuccess(w, quote)
}
