package prediction

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestEstimateScenarios(t *testing.T) {
	table := DefaultReferenceTable()
	cases := []struct {
		name    string
		input   NormalizedInput
		level   WasteLevel
		pct     string
		wasteKg string
	}{
		{"veg 150", NormalizedInput{Attendance: 150, MenuType: MenuVeg, FoodQuantity: 50}, LevelMedium, "15.0", "6.75"},
		{"nonveg 200", NormalizedInput{Attendance: 200, MenuType: MenuNonVeg, FoodQuantity: 10}, LevelHigh, "30.0", "18.00"},
		{"defaults tie", NormalizedInput{Attendance: 100, MenuType: MenuVeg, FoodQuantity: 30}, LevelLow, "5.0", "1.50"},
		{"special small", NormalizedInput{Attendance: 1, MenuType: MenuSpecial, FoodQuantity: 1}, LevelMedium, "15.0", "0.05"},
		{"far above", NormalizedInput{Attendance: 10000, MenuType: MenuVeg, FoodQuantity: 1}, LevelHigh, "30.0", "900.00"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			est := Estimate(tc.input, table)
			kg, pct := est.Format()
			require.Equal(t, tc.level, est.Level)
			require.Equal(t, tc.pct, pct)
			require.Equal(t, tc.wasteKg, kg)
		})
	}
}

func TestClassifyTieKeepsFirstRow(t *testing.T) {
	table, rejected := NewReferenceTable([]HistoricalRecord{
		{Attendance: 90, MenuType: MenuVeg, WasteLevel: LevelHigh},
		{Attendance: 110, MenuType: MenuVeg, WasteLevel: LevelLow},
	})
	require.Zero(t, rejected)
	require.Equal(t, LevelHigh, Classify(NormalizedInput{Attendance: 100, MenuType: MenuVeg}, table))

	swapped, _ := NewReferenceTable([]HistoricalRecord{
		{Attendance: 110, MenuType: MenuVeg, WasteLevel: LevelLow},
		{Attendance: 90, MenuType: MenuVeg, WasteLevel: LevelHigh},
	})
	require.Equal(t, LevelLow, Classify(NormalizedInput{Attendance: 100, MenuType: MenuVeg}, swapped))
}

func TestClassifyWithoutMatchingMenuIsMedium(t *testing.T) {
	table, _ := NewReferenceTable([]HistoricalRecord{
		{Attendance: 100, MenuType: MenuVeg, WasteLevel: LevelLow},
	})
	require.Equal(t, LevelMedium, Classify(NormalizedInput{Attendance: 100, MenuType: MenuSpecial}, table))
	require.Equal(t, LevelMedium, Classify(NormalizedInput{Attendance: 100, MenuType: MenuVeg}, ReferenceTable{}))
}

func TestEstimateFormulaIgnoresFoodQuantity(t *testing.T) {
	table := DefaultReferenceTable()
	a := Estimate(NormalizedInput{Attendance: 120, MenuType: MenuNonVeg, FoodQuantity: 1}, table)
	b := Estimate(NormalizedInput{Attendance: 120, MenuType: MenuNonVeg, FoodQuantity: 500}, table)
	require.Equal(t, a, b)
}

func TestEstimateFormulaExactness(t *testing.T) {
	table := DefaultReferenceTable()
	for attendance := 1; attendance <= 400; attendance++ {
		for _, menu := range []MenuType{MenuVeg, MenuNonVeg, MenuSpecial} {
			est := Estimate(NormalizedInput{Attendance: attendance, MenuType: menu, FoodQuantity: 1}, table)
			want := decimal.NewFromInt(int64(attendance)).
				Mul(decimal.RequireFromString("0.3")).
				Mul(WastePercentage(est.Level)).
				Div(decimal.NewFromInt(100)).
				Round(2)
			require.True(t, want.Equal(est.WasteKg), "attendance=%d menu=%s", attendance, menu)
			require.False(t, est.WasteKg.IsNegative())
		}
	}
}

func TestWastePercentageUnknownLevelFallsBackToMedium(t *testing.T) {
	require.Equal(t, "15.0", WastePercentage(WasteLevel("extreme")).StringFixed(1))
}

func TestNewReferenceTableRejectsInvalidRows(t *testing.T) {
	table, rejected := NewReferenceTable([]HistoricalRecord{
		{Attendance: 0, MenuType: MenuVeg, WasteLevel: LevelLow},
		{Attendance: 10, MenuType: "vegan", WasteLevel: LevelLow},
		{Attendance: 10, MenuType: MenuVeg, WasteLevel: "none"},
		{Attendance: 10, MenuType: MenuVeg, WasteLevel: LevelLow},
	})
	require.Equal(t, 3, rejected)
	require.Equal(t, 1, table.Len())
}

func TestReferenceTableRowsAreCopies(t *testing.T) {
	table := DefaultReferenceTable()
	rows := table.Rows()
	require.Len(t, rows, 15)
	rows[0].WasteLevel = LevelHigh
	require.Equal(t, LevelLow, table.Rows()[0].WasteLevel)
}
