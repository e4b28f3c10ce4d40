package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainErrors "github.com/expricer/exclusivity-service/internal/domain/errors"
)

func TestCalculateFreshPhysicalEdition(t *testing.T) {
	quote, err := Calculate(QuoteRequest{
		WorkType:   WorkTypePhysical,
		CopiesSold: 0,
		MaxCopies:  100,
		MinPrice:   100,
	})
	require.NoError(t, err)

	state := quote.CurrentState
	assert.Equal(t, 100, state.TotalCopies)
	assert.Equal(t, 100, state.CopiesRemaining)
	assert.Equal(t, 1.2, state.WorkTypeFactor)
	assert.Equal(t, 120.00, state.CurrentMarketPrice)

	require.NotEmpty(t, quote.ExclusivityLevels)

	top := quote.ExclusivityLevels[0]
	assert.Equal(t, 100, top.RemainingCopies)
	assert.Equal(t, 120.00, top.Price)
	assert.Equal(t, 100.0, top.PercentageOfEdition)
	assert.True(t, top.IsCurrentLevel)
	assert.False(t, top.IsLastCopy)

	last := quote.ExclusivityLevels[len(quote.ExclusivityLevels)-1]
	assert.Equal(t, 1, last.RemainingCopies)
	// 99 eliminated copies, each worth one market-price unit on top of
	// the market price itself.
	assert.Equal(t, 12000.00, last.Price)
	assert.Equal(t, 1.0, last.PercentageOfEdition)
	assert.True(t, last.IsLastCopy)
	assert.False(t, last.IsCurrentLevel)
}

func TestCalculateDigitalHalfSold(t *testing.T) {
	quote, err := Calculate(QuoteRequest{
		WorkType:   WorkTypeDigital,
		CopiesSold: 50,
		MaxCopies:  100,
		MinPrice:   100,
	})
	require.NoError(t, err)

	assert.Equal(t, 1.0, quote.CurrentState.WorkTypeFactor)
	assert.Equal(t, 125.00, quote.CurrentState.CurrentMarketPrice)
	assert.Equal(t, 50, quote.CurrentState.CopiesRemaining)
}

func TestCalculateSoldOut(t *testing.T) {
	quote, err := Calculate(QuoteRequest{
		WorkType:   WorkTypePhysical,
		CopiesSold: 100,
		MaxCopies:  100,
		MinPrice:   100,
	})
	require.NoError(t, err)

	assert.Equal(t, 0, quote.CurrentState.CopiesRemaining)
	assert.Equal(t, 180.00, quote.CurrentState.CurrentMarketPrice)

	require.Len(t, quote.ExclusivityLevels, 1)
	assert.Equal(t, 0, quote.ExclusivityLevels[0].RemainingCopies)
	assert.True(t, quote.ExclusivityLevels[0].IsCurrentLevel)
}

func TestCalculateValidation(t *testing.T) {
	valid := QuoteRequest{
		WorkType:   WorkTypePhysical,
		CopiesSold: 0,
		MaxCopies:  100,
		MinPrice:   100,
	}

	tests := []struct {
		name    string
		mutate  func(*QuoteRequest)
		wantErr error
	}{
		{
			name:    "unknown work type",
			mutate:  func(r *QuoteRequest) { r.WorkType = "sculpture" },
			wantErr: domainErrors.ErrInvalidWorkType,
		},
		{
			name:    "zero max copies",
			mutate:  func(r *QuoteRequest) { r.MaxCopies = 0 },
			wantErr: domainErrors.ErrInvalidMaxCopies,
		},
		{
			name:    "zero min price",
			mutate:  func(r *QuoteRequest) { r.MinPrice = 0 },
			wantErr: domainErrors.ErrInvalidMinPrice,
		},
		{
			name:    "negative copies sold",
			mutate:  func(r *QuoteRequest) { r.CopiesSold = -1 },
			wantErr: domainErrors.ErrNegativeCopiesSold,
		},
		{
			name:    "copies sold over cap",
			mutate:  func(r *QuoteRequest) { r.CopiesSold = 101 },
			wantErr: domainErrors.ErrCopiesSoldExceedsMax,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)

			quote, err := Calculate(req)
			assert.Nil(t, quote)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.True(t, domainErrors.IsInvalidInput(err))
		})
	}
}

func TestPricingIsStrictlyMonotonicInExclusivity(t *testing.T) {
	cases := []QuoteRequest{
		{WorkType: WorkTypePhysical, CopiesSold: 0, MaxCopies: 100, MinPrice: 100},
		{WorkType: WorkTypeDigital, CopiesSold: 37, MaxCopies: 250, MinPrice: 49.99},
		{WorkType: WorkTypePhysical, CopiesSold: 5, MaxCopies: 10, MinPrice: 500},
		{WorkType: WorkTypeDigital, CopiesSold: 0, MaxCopies: 3, MinPrice: 19.95},
	}

	for _, req := range cases {
		quote, err := Calculate(req)
		require.NoError(t, err)

		// Levels are ordered least exclusive first, so price must
		// strictly increase as we walk the slice.
		for i := 1; i < len(quote.ExclusivityLevels); i++ {
			prev := quote.ExclusivityLevels[i-1]
			cur := quote.ExclusivityLevels[i]
			assert.Less(t, cur.RemainingCopies, prev.RemainingCopies)
			assert.Greater(t, cur.Price, prev.Price,
				"fewer remaining copies must cost strictly more")
		}
	}
}

func TestCurrentLevelSellsAtMarketPrice(t *testing.T) {
	for _, sold := range []int{0, 1, 25, 60, 99} {
		quote, err := Calculate(QuoteRequest{
			WorkType:   WorkTypeDigital,
			CopiesSold: sold,
			MaxCopies:  100,
			MinPrice:   80,
		})
		require.NoError(t, err)

		var found bool
		for _, level := range quote.ExclusivityLevels {
			if level.IsCurrentLevel {
				found = true
				assert.Equal(t, quote.CurrentState.CopiesRemaining, level.RemainingCopies)
				assert.Equal(t, quote.CurrentState.CurrentMarketPrice, level.Price)
			}
		}
		assert.True(t, found, "every quote must mark the current level")
	}
}
