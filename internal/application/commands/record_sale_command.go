package commands

import (
	"context"

	"github.com/expricer/exclusivity-service/internal/application/use_cases"
	"github.com/expricer/exclusivity-service/internal/domain/ledger"
	"github.com/expricer/exclusivity-service/internal/pkg/logger"
)

type RecordSaleCommand struct {
	UnitsEliminated int     `json:"units_eliminated"`
	BuyerContact    string  `json:"buyer_contact"`
	Amount          float64 `json:"amount"`
	TransactionID   string  `json:"transaction_id,omitempty"`
}

type RecordSaleResponse struct {
	Applied      bool    `json:"applied"`
	RecordID     string  `json:"record_id,omitempty"`
	CopiesSold   int     `json:"copies_sold"`
	TotalRevenue float64 `json:"total_revenue"`
}

type RecordSaleHandler struct {
	recordSaleUseCase *use_cases.RecordSaleUseCase
	log               *logger.Logger
}

func NewRecordSaleHandler(recordSaleUseCase *use_cases.RecordSaleUseCase, log *logger.Logger) *RecordSaleHandler {
	return &RecordSaleHandler{
		recordSaleUseCase: recordSaleUseCase,
		log:               log,
	}
}

func (h *RecordSaleHandler) Handle(ctx context.Context, cmd RecordSaleCommand) (*RecordSaleResponse, error) {
	result, err := h.recordSaleUseCase.Execute(ctx, ledger.RecordSaleParams{
		UnitsEliminated: cmd.UnitsEliminated,
		BuyerContact:    cmd.BuyerContact,
		Amount:          cmd.Amount,
		TransactionID:   cmd.TransactionID,
	})
	if err != nil {
		return nil, err
	}

	resp := &RecordSaleResponse{
		Applied:      result.Applied,
		CopiesSold:   result.CopiesSold,
		TotalRevenue: result.TotalRevenue,
	}
	if result.Record != nil {
		resp.RecordID = result.Record.ID
	}

	return resp, nil
}
