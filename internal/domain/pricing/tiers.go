package pricing

import (
	"math"
	"sort"
)

// smallEditionThreshold is the edition size at or below which buyers get
// the fixed granular tiers instead of percentage-based ones.
const smallEditionThreshold = 10

var reductionFractions = []float64{0.75, 0.5, 0.25, 0.10}

// SelectTiers returns the remaining-copies tiers a buyer may purchase down
// to, sorted descending and deduplicated. The first tier is always the
// current remaining count (no extra exclusivity), the last is the most
// exclusive one on offer. A sold-out edition yields a single zero tier.
func SelectTiers(maxCopies, copiesSold int) []int {
	remaining := maxCopies - copiesSold

	tiers := []int{remaining}

	if remaining > 1 {
		if maxCopies <= smallEditionThreshold {
			tiers = append(tiers, 1, 2, 3)
		} else {
			for _, fraction := range reductionFractions {
				reduced := int(math.Floor(float64(remaining) * fraction))
				if reduced < 1 {
					reduced = 1
				}
				if reduced < remaining {
					tiers = append(tiers, reduced)
				}
			}
		}
	}

	// Being the last copy is always offerable.
	if remaining >= 1 {
		tiers = append(tiers, 1)
	}

	seen := make(map[int]bool, len(tiers))
	result := make([]int, 0, len(tiers))
	for _, tier := range tiers {
		if tier > remaining || seen[tier] {
			continue
		}
		seen[tier] = true
		result = append(result, tier)
	}

	sort.Sort(sort.Reverse(sort.IntSlice(result)))

	return result
}
