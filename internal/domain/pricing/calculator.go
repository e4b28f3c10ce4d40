package pricing

import (
	"math"

	domainErrors "github.com/expricer/exclusivity-service/internal/domain/errors"
)

const (
	WorkTypePhysical = "physical"
	WorkTypeDigital  = "digital"
)

// workTypeFactors carries the fixed handling premium per work type.
var workTypeFactors = map[string]float64{
	WorkTypePhysical: 1.2,
	WorkTypeDigital:  1.0,
}

// scarcityCeiling bounds the market factor: at full sell-through the
// market price is 1.5x the minimum.
const scarcityCeiling = 0.5

type QuoteRequest struct {
	WorkType   string  `json:"work_type"`
	CopiesSold int     `json:"copies_sold"`
	MaxCopies  int     `json:"max_copies"`
	MinPrice   float64 `json:"min_price"`
}

type ExclusivityLevel struct {
	RemainingCopies     int     `json:"remaining_copies"`
	Price               float64 `json:"price"`
	PercentageOfEdition float64 `json:"percentage_of_edition"`
	IsLastCopy          bool    `json:"is_last_copy"`
	IsCurrentLevel      bool    `json:"is_current_level"`
}

type CurrentState struct {
	TotalCopies        int     `json:"total_copies"`
	CopiesSold         int     `json:"copies_sold"`
	CopiesRemaining    int     `json:"copies_remaining"`
	WorkType           string  `json:"work_type"`
	MinPrice           float64 `json:"min_price"`
	WorkTypeFactor     float64 `json:"work_type_factor"`
	CurrentMarketPrice float64 `json:"current_market_price"`
}

type Quote struct {
	ExclusivityLevels []ExclusivityLevel `json:"exclusivity_levels"`
	CurrentState      CurrentState       `json:"current_state"`
}

func (r QuoteRequest) Validate() error {
	if _, ok := workTypeFactors[r.WorkType]; !ok {
		return domainErrors.ErrInvalidWorkType
	}
	if r.MaxCopies <= 0 {
		return domainErrors.ErrInvalidMaxCopies
	}
	if r.MinPrice <= 0 {
		return domainErrors.ErrInvalidMinPrice
	}
	if r.CopiesSold < 0 {
		return domainErrors.ErrNegativeCopiesSold
	}
	if r.CopiesSold > r.MaxCopies {
		return domainErrors.ErrCopiesSoldExceedsMax
	}
	return nil
}

// Calculate validates the request and prices every offerable exclusivity
// tier. It either returns a complete quote or an error, never a partial
// result, and reads no shared state.
func Calculate(req QuoteRequest) (*Quote, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	remaining := req.MaxCopies - req.CopiesSold
	workTypeFactor := workTypeFactors[req.WorkType]
	marketFactor := 1 + (float64(req.CopiesSold)/float64(req.MaxCopies))*scarcityCeiling
	currentMarketPrice := round2(req.MinPrice * workTypeFactor * marketFactor)

	tiers := SelectTiers(req.MaxCopies, req.CopiesSold)
	levels := make([]ExclusivityLevel, 0, len(tiers))

	for _, tier := range tiers {
		levels = append(levels, ExclusivityLevel{
			RemainingCopies:     tier,
			Price:               priceForTier(tier, remaining, currentMarketPrice),
			PercentageOfEdition: round1(float64(tier) / float64(req.MaxCopies) * 100),
			IsLastCopy:          tier == 1,
			IsCurrentLevel:      tier == remaining,
		})
	}

	return &Quote{
		ExclusivityLevels: levels,
		CurrentState: CurrentState{
			TotalCopies:        req.MaxCopies,
			CopiesSold:         req.CopiesSold,
			CopiesRemaining:    remaining,
			WorkType:           req.WorkType,
			MinPrice:           req.MinPrice,
			WorkTypeFactor:     workTypeFactor,
			CurrentMarketPrice: currentMarketPrice,
		},
	}, nil
}

// priceForTier prices one tier. The tier equal to the current remaining
// count sells at market price; every additionally eliminated copy adds one
// full market-price unit, so price is strictly increasing in exclusivity.
func priceForTier(tier, remaining int, currentMarketPrice float64) float64 {
	if tier == remaining {
		return currentMarketPrice
	}

	eliminated := remaining - tier
	exclusivityValue := currentMarketPrice * float64(eliminated)

	return round2(currentMarketPrice + exclusivityValue)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
