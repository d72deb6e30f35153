package proposal

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oasis/pkg/errors"
)

func TestClassifyRisk_Bands(t *testing.T) {
	tests := []struct {
		name     string
		current  string
		proposed string
		level    RiskLevel
		pct      int
	}{
		{"no change", "100", "100", RiskLow, 0},
		{"exactly 10 percent", "100", "110", RiskLow, 10},
		{"just over 10 percent", "100", "110.01", RiskMedium, 10},
		{"exactly 20 percent", "100", "120", RiskMedium, 20},
		{"just over 20 percent", "100", "120.01", RiskHigh, 20},
		{"large increase", "800", "1200", RiskHigh, 50},
		{"decrease within low band", "100", "95", RiskLow, -5},
		{"large decrease", "100", "70", RiskHigh, -30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			current, err := decimal.NewFromString(tt.current)
			require.NoError(t, err)
			proposed, err := decimal.NewFromString(tt.proposed)
			require.NoError(t, err)

			level, pct, err := ClassifyRisk(current, proposed)
			require.NoError(t, err)
			assert.Equal(t, tt.level, level)
			assert.Equal(t, tt.pct, pct)
		})
	}
}

func TestClassifyRisk_ZeroCurrentPrice(t *testing.T) {
	_, _, err := ClassifyRisk(decimal.Zero, decimal.NewFromInt(100))
	assert.ErrorIs(t, err, errors.ErrZeroCurrentPrice)
	assert.ErrorIs(t, err, errors.ErrInvalidInput)

	_, _, err = ClassifyRisk(decimal.NewFromInt(-10), decimal.NewFromInt(100))
	assert.ErrorIs(t, err, errors.ErrZeroCurrentPrice)
}
