package prediction

import "github.com/shopspring/decimal"

var (
	hundred = decimal.NewFromInt(100)

	// upper bound of each level's waste band, in percent
	wastePercentages = map[WasteLevel]decimal.Decimal{
		LevelLow:    decimal.NewFromInt(5),
		LevelMedium: decimal.NewFromInt(15),
		LevelHigh:   decimal.NewFromInt(30),
	}
)

// Estimate classifies the input against the table and derives the waste quantities.
// FoodQuantity does not take part in the formula.
func Estimate(input NormalizedInput, table ReferenceTable) Estimation {
	level := Classify(input, table)
	pct := WastePercentage(level)
	expected := ExpectedConsumption(input.Attendance)

	wasteKg := expected.Mul(pct).Div(hundred).Round(2)
	if wasteKg.IsNegative() {
		wasteKg = decimal.Zero
	}

	return Estimation{
		Level:               level,
		WasteKg:             wasteKg,
		WastePercentage:     pct,
		ExpectedConsumption: expected,
	}
}

// Classify returns the level of the nearest row with the same menu type.
// On equal distance the earlier row wins. No matching row yields medium.
func Classify(input NormalizedInput, table ReferenceTable) WasteLevel {
	var (
		found   bool
		best    HistoricalRecord
		minDiff int
	)
	for _, row := range table.rows {
		if row.MenuType != input.MenuType {
			continue
		}
		diff := abs(row.Attendance - input.Attendance)
		if !found || diff < minDiff {
			found = true
			best = row
			minDiff = diff
		}
	}
	if !found {
		return LevelMedium
	}
	return best.WasteLevel
}

// WastePercentage returns the band upper bound for level, falling back to medium's.
func WastePercentage(level WasteLevel) decimal.Decimal {
	if pct, ok := wastePercentages[level]; ok {
		return pct
	}
	return wastePercentages[LevelMedium]
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Format renders an estimation the way the wire contract expects.
func (e Estimation) Format() (wasteKg, wastePercentage string) {
	return e.WasteKg.StringFixed(2), e.WastePercentage.StringFixed(1)
}
