package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreImpact_CategoryTable(t *testing.T) {
	tests := []struct {
		category string
		level    int
		increase int
	}{
		{"religious", 5, 25},
		{"international", 5, 25},
		{"sports", 4, 25},
		{"cultural", 4, 25},
		{"business", 3, 15},
		{"local", 2, 5},
		{"street fair", 2, 5}, // unknown category scores as local
		{"", 2, 5},
	}

	for _, tt := range tests {
		t.Run("category "+tt.category, func(t *testing.T) {
			impact := ScoreImpact("Some Event", tt.category)
			assert.Equal(t, tt.level, impact.ImpactLevel)
			assert.Equal(t, tt.increase, impact.SuggestedIncrease)
		})
	}
}

func TestScoreImpact_NormalizesCategory(t *testing.T) {
	impact := ScoreImpact("Eid Al Fitr", "  Religious ")
	assert.Equal(t, 5, impact.ImpactLevel)
	assert.Equal(t, 25, impact.SuggestedIncrease)
}

func TestIncreaseForLevel(t *testing.T) {
	assert.Equal(t, 25, IncreaseForLevel(5))
	assert.Equal(t, 25, IncreaseForLevel(4))
	assert.Equal(t, 15, IncreaseForLevel(3))
	assert.Equal(t, 5, IncreaseForLevel(2))
	assert.Equal(t, 5, IncreaseForLevel(1))
}

func TestTierForLevel(t *testing.T) {
	assert.Equal(t, ImpactHigh, TierForLevel(5))
	assert.Equal(t, ImpactHigh, TierForLevel(4))
	assert.Equal(t, ImpactMedium, TierForLevel(3))
	assert.Equal(t, ImpactLow, TierForLevel(2))
	assert.Equal(t, ImpactLow, TierForLevel(1))
}

func TestKnownCategory(t *testing.T) {
	assert.True(t, KnownCategory("sports"))
	assert.True(t, KnownCategory(" Religious "))
	assert.False(t, KnownCategory("enormous"))
	assert.False(t, KnownCategory(""))
}

func TestScoreTier(t *testing.T) {
	assert.Equal(t, 4, ScoreTier(ImpactHigh))
	assert.Equal(t, 3, ScoreTier(ImpactMedium))
	assert.Equal(t, 2, ScoreTier(ImpactLow))
	assert.Equal(t, 3, ScoreTier(ImpactTier("whatever")))
}
