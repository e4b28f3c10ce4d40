package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/expricer/exclusivity-service/internal/application/commands"
	"github.com/expricer/exclusivity-service/internal/application/ports"
	"github.com/expricer/exclusivity-service/internal/application/use_cases"
	"github.com/expricer/exclusivity-service/internal/infrastructure/http/response"
	"github.com/expricer/exclusivity-service/internal/pkg/logger"
)

type SaleHandler struct {
	recordSaleUseCase *use_cases.RecordSaleUseCase
	ledgerRepo        ports.LedgerRepository
	log               *logger.Logger
}

func NewSaleHandler(
	recordSaleUseCase *use_cases.RecordSaleUseCase,
	ledgerRepo ports.LedgerRepository,
	log *logger.Logger,
) *SaleHandler {
	return &SaleHandler{
		recordSaleUseCase: recordSaleUseCase,
		ledgerRepo:        ledgerRepo,
		log:               log,
	}
}

// HandleRecordSale is the purchase-completion endpoint. The payment
// collaborator calls it once payment is verified; calling it again with
// the same transaction id is a safe no-op.
func (h *SaleHandler) HandleRecordSale(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var cmd commands.RecordSaleCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		response.WriteError(w, http.StatusBadRequest, response.StatusValidationError, "Invalid request body", err.Error())
		return
	}

	validationErrors := make(map[string]string)
	if cmd.UnitsEliminated <= 0 {
		validationErrors["units_eliminated"] = "must be greater than 0"
	}
	if cmd.BuyerContact == "" {
		validationErrors["buyer_contact"] = "is required"
	}
	if len(validationErrors) > 0 {
		response.WriteValidationError(w, "Validation failed", validationErrors)
		return
	}

	handler := commands.NewRecordSaleHandler(h.recordSaleUseCase, h.log)
	resp, err := handler.Handle(r.Context(), cmd)
	if err != nil {
		h.log.Error("Record sale failed",
			"transaction_id", cmd.TransactionID,
			"error", err.Error(),
		)
		response.WriteDomainError(w, err)
		return
	}

	response.WriteSuccess(w, resp)
}

type SaleRecordResponse struct {
	ID              string  `json:"id"`
	Timestamp       string  `json:"timestamp"`
	UnitsEliminated int     `json:"units_eliminated"`
	BuyerContact    string  `json:"buyer_contact"`
	Amount          float64 `json:"amount"`
	TransactionID   string  `json:"transaction_id,omitempty"`
}

func (h *SaleHandler) HandleGetHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	history, err := h.ledgerRepo.History(r.Context())
	if err != nil {
		h.log.Error("Failed to read sales history", "error", err.Error())
		response.WriteDomainError(w, err)
		return
	}

	records := make([]SaleRecordResponse, 0, len(history))
	for _, rec := range history {
		records = append(records, SaleRecordResponse{
			ID:              rec.ID,
			Timestamp:       rec.Timestamp.Format(time.RFC3339),
			UnitsEliminated: rec.UnitsEliminated,
			BuyerContact:    rec.BuyerContact,
			Amount:          rec.Amount,
			TransactionID:   rec.TransactionID,
		})
	}

	response.WriteSuccess(w, records)
}
