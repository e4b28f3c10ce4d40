package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectTiers(t *testing.T) {
	tests := []struct {
		name       string
		maxCopies  int
		copiesSold int
		want       []int
	}{
		{
			name:       "fresh large edition",
			maxCopies:  100,
			copiesSold: 0,
			want:       []int{100, 75, 50, 25, 10, 1},
		},
		{
			name:       "half sold large edition",
			maxCopies:  100,
			copiesSold: 50,
			want:       []int{50, 37, 25, 12, 5, 1},
		},
		{
			name:       "fresh small edition",
			maxCopies:  10,
			copiesSold: 0,
			want:       []int{10, 3, 2, 1},
		},
		{
			name:       "small edition mostly sold",
			maxCopies:  10,
			copiesSold: 7,
			want:       []int{3, 2, 1},
		},
		{
			name:       "small edition two remaining",
			maxCopies:  10,
			copiesSold: 8,
			want:       []int{2, 1},
		},
		{
			name:       "one copy remaining",
			maxCopies:  100,
			copiesSold: 99,
			want:       []int{1},
		},
		{
			name:       "sold out",
			maxCopies:  100,
			copiesSold: 100,
			want:       []int{0},
		},
		{
			name:       "tiny edition",
			maxCopies:  1,
			copiesSold: 0,
			want:       []int{1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SelectTiers(tt.maxCopies, tt.copiesSold)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSelectTiersBounds(t *testing.T) {
	for maxCopies := 1; maxCopies <= 120; maxCopies++ {
		for copiesSold := 0; copiesSold < maxCopies; copiesSold++ {
			remaining := maxCopies - copiesSold
			tiers := SelectTiers(maxCopies, copiesSold)

			assert.NotEmpty(t, tiers)
			assert.Equal(t, remaining, tiers[0], "base tier must be the remaining count")
			assert.Equal(t, 1, tiers[len(tiers)-1], "last copy must always be offerable")

			seen := make(map[int]bool)
			prev := remaining + 1
			for _, tier := range tiers {
				assert.Greater(t, tier, 0)
				assert.LessOrEqual(t, tier, remaining)
				assert.Less(t, tier, prev, "tiers must be strictly descending")
				assert.False(t, seen[tier], "tiers must be unique")
				seen[tier] = true
				prev = tier
			}
		}
	}
}
