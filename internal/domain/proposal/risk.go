package proposal

import (
	"github.com/shopspring/decimal"

	"oasis/pkg/errors"
)

var (
	riskLowCeiling    = decimal.NewFromInt(10)
	riskMediumCeiling = decimal.NewFromInt(20)
	hundred           = decimal.NewFromInt(100)
)

// ClassifyRisk buckets the price change from current to proposed into a risk
// level and returns the rounded integer percentage change for persistence.
// Banding uses the exact percentage, so a 10.01% change is medium even though
// it rounds to 10. A zero or negative current price is invalid input.
func ClassifyRisk(current, proposed decimal.Decimal) (RiskLevel, int, error) {
	if current.LessThanOrEqual(decimal.Zero) {
		return "", 0, errors.Wrap(errors.ErrZeroCurrentPrice, "risk classification")
	}

	changePct := proposed.Sub(current).Div(current).Mul(hundred)
	magnitude := changePct.Abs()

	var level RiskLevel
	switch {
	case magnitude.LessThanOrEqual(riskLowCeiling):
		level = RiskLow
	case magnitude.LessThanOrEqual(riskMediumCeiling):
		level = RiskMedium
	default:
		level = RiskHigh
	}

	rounded := int(changePct.Round(0).IntPart())
	return level, rounded, nil
}
