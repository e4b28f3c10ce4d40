package ledger

import (
	"time"

	domainErrors "github.com/expricer/exclusivity-service/internal/domain/errors"
)

// SaleRecord is one completed sale. Records are immutable once appended;
// Reset is the only operation that removes them.
type SaleRecord struct {
	ID              string    `json:"id"`
	Timestamp       time.Time `json:"timestamp"`
	UnitsEliminated int       `json:"copies_eliminated"`
	BuyerContact    string    `json:"customer_email"`
	Amount          float64   `json:"price"`
	TransactionID   string    `json:"transaction_id,omitempty"`
}

// State is the full ledger for the single product this deployment sells.
// It is the source of truth for how many copies are gone.
type State struct {
	CopiesSold            int
	TotalRevenue          float64
	History               []SaleRecord
	ProcessedTransactions map[string]struct{}
}

func NewState() *State {
	return &State{
		History:               []SaleRecord{},
		ProcessedTransactions: map[string]struct{}{},
	}
}

// RecordSaleParams is the purchase-completion payload supplied by the
// payment collaborator once it has verified the payment.
type RecordSaleParams struct {
	UnitsEliminated int
	BuyerContact    string
	Amount          float64
	TransactionID   string
}

func (p RecordSaleParams) Validate() error {
	if p.UnitsEliminated <= 0 {
		return domainErrors.ErrInvalidUnitsEliminated
	}
	if p.BuyerContact == "" {
		return domainErrors.ErrMissingBuyerContact
	}
	if p.Amount < 0 {
		return domainErrors.ErrInvalidAmount
	}
	return nil
}

func (s *State) Seen(transactionID string) bool {
	if transactionID == "" {
		return false
	}
	_, ok := s.ProcessedTransactions[transactionID]
	return ok
}

// Apply mutates the state with one sale. A replayed transaction id is a
// defined no-op and returns applied=false with no error; callers must not
// treat it as a failure. Validation errors leave the state untouched.
func (s *State) Apply(rec SaleRecord) (applied bool, err error) {
	params := RecordSaleParams{
		UnitsEliminated: rec.UnitsEliminated,
		BuyerContact:    rec.BuyerContact,
		Amount:          rec.Amount,
		TransactionID:   rec.TransactionID,
	}
	if err := params.Validate(); err != nil {
		return false, err
	}

	if s.Seen(rec.TransactionID) {
		return false, nil
	}

	s.CopiesSold += rec.UnitsEliminated
	s.TotalRevenue += rec.Amount
	s.History = append(s.History, rec)
	if rec.TransactionID != "" {
		if s.ProcessedTransactions == nil {
			s.ProcessedTransactions = map[string]struct{}{}
		}
		s.ProcessedTransactions[rec.TransactionID] = struct{}{}
	}

	return true, nil
}
