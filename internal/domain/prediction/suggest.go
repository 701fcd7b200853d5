package prediction

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

var recommendationBuffer = decimal.RequireFromString("1.1")

// RecommendedQuantity is the expected consumption plus a ten percent buffer.
func RecommendedQuantity(attendance int) decimal.Decimal {
	return ExpectedConsumption(attendance).Mul(recommendationBuffer)
}

// Suggest builds the deterministic recommendation text for an estimation.
func Suggest(level WasteLevel, wasteKg, wastePercentage decimal.Decimal, foodQuantity float64, attendance int) string {
	pct := wastePercentage.StringFixed(1)
	recommended := RecommendedQuantity(attendance).StringFixed(1)

	switch level {
	case LevelHigh:
		return fmt.Sprintf(
			"High waste predicted: about %s kg may be left over. Consider reducing preparation by %s%%. "+
				"Prepare around %s kg instead of %s kg and monitor portion sizes during service.",
			wasteKg.StringFixed(2), pct, recommended, formatQuantity(foodQuantity),
		)
	case LevelMedium:
		return fmt.Sprintf(
			"Moderate waste expected (%s%%). Monitor portions during service and adjust serving sizes if needed. "+
				"Consider preparing %s kg for better efficiency.",
			pct, recommended,
		)
	case LevelLow:
		return fmt.Sprintf(
			"Excellent planning! Waste level is minimal (%s%%). Continue with the current preparation strategy.",
			pct,
		)
	default:
		return "Monitor food consumption closely and adjust preparation quantities accordingly."
	}
}

func formatQuantity(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
