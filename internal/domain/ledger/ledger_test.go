package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainErrors "github.com/expricer/exclusivity-service/internal/domain/errors"
)

func saleRecord(txID string) SaleRecord {
	return SaleRecord{
		ID:              "SR-test",
		Timestamp:       time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		UnitsEliminated: 1,
		BuyerContact:    "buyer@example.com",
		Amount:          120.00,
		TransactionID:   txID,
	}
}

func TestApplyAccumulatesState(t *testing.T) {
	state := NewState()

	applied, err := state.Apply(saleRecord("tx-1"))
	require.NoError(t, err)
	assert.True(t, applied)

	rec := saleRecord("tx-2")
	rec.UnitsEliminated = 3
	rec.Amount = 480.00
	applied, err = state.Apply(rec)
	require.NoError(t, err)
	assert.True(t, applied)

	assert.Equal(t, 4, state.CopiesSold)
	assert.Equal(t, 600.00, state.TotalRevenue)
	assert.Len(t, state.History, 2)
}

func TestApplyReplayIsNoOp(t *testing.T) {
	state := NewState()

	applied, err := state.Apply(saleRecord("tx-1"))
	require.NoError(t, err)
	require.True(t, applied)

	// Same transaction id again, even with a different payload.
	replay := saleRecord("tx-1")
	replay.UnitsEliminated = 5
	replay.Amount = 999.99

	applied, err = state.Apply(replay)
	require.NoError(t, err)
	assert.False(t, applied)

	assert.Equal(t, 1, state.CopiesSold)
	assert.Equal(t, 120.00, state.TotalRevenue)
	assert.Len(t, state.History, 1)
}

func TestApplyWithoutTransactionIDNeverDeduplicates(t *testing.T) {
	state := NewState()

	for i := 0; i < 3; i++ {
		applied, err := state.Apply(saleRecord(""))
		require.NoError(t, err)
		assert.True(t, applied)
	}

	assert.Equal(t, 3, state.CopiesSold)
	assert.Empty(t, state.ProcessedTransactions)
}

func TestApplyValidationLeavesStateUntouched(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*SaleRecord)
		wantErr error
	}{
		{
			name:    "zero units",
			mutate:  func(r *SaleRecord) { r.UnitsEliminated = 0 },
			wantErr: domainErrors.ErrInvalidUnitsEliminated,
		},
		{
			name:    "negative units",
			mutate:  func(r *SaleRecord) { r.UnitsEliminated = -2 },
			wantErr: domainErrors.ErrInvalidUnitsEliminated,
		},
		{
			name:    "missing buyer contact",
			mutate:  func(r *SaleRecord) { r.BuyerContact = "" },
			wantErr: domainErrors.ErrMissingBuyerContact,
		},
		{
			name:    "negative amount",
			mutate:  func(r *SaleRecord) { r.Amount = -0.01 },
			wantErr: domainErrors.ErrInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := NewState()
			rec := saleRecord("tx-1")
			tt.mutate(&rec)

			applied, err := state.Apply(rec)
			assert.False(t, applied)
			assert.ErrorIs(t, err, tt.wantErr)

			assert.Zero(t, state.CopiesSold)
			assert.Zero(t, state.TotalRevenue)
			assert.Empty(t, state.History)
			assert.False(t, state.Seen("tx-1"))
		})
	}
}

func TestApplyAcceptsZeroAmount(t *testing.T) {
	state := NewState()

	rec := saleRecord("tx-comp")
	rec.Amount = 0

	applied, err := state.Apply(rec)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, 0.00, state.TotalRevenue)
}

func TestCopiesSoldMatchesHistory(t *testing.T) {
	state := NewState()

	units := []int{1, 2, 1, 5, 3}
	for i, u := range units {
		rec := saleRecord("")
		rec.TransactionID = ""
		rec.UnitsEliminated = u
		rec.Amount = float64(u) * 120.00
		rec.ID = "SR-" + string(rune('a'+i))

		applied, err := state.Apply(rec)
		require.NoError(t, err)
		require.True(t, applied)
	}

	var sum int
	for _, rec := range state.History {
		sum += rec.UnitsEliminated
	}
	assert.Equal(t, state.CopiesSold, sum)
}
