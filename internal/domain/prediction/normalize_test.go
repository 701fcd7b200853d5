package prediction

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeDefaults(t *testing.T) {
	cases := map[string]RawInput{
		"empty":          {},
		"nulls":          {Attendance: nil, MenuType: nil, FoodQuantity: nil},
		"negative":       {Attendance: -5, MenuType: "bogus", FoodQuantity: -1},
		"zero":           {Attendance: 0.0, MenuType: "", FoodQuantity: 0.0},
		"wrong types":    {Attendance: true, MenuType: 42.0, FoodQuantity: []any{1}},
		"garbage string": {Attendance: "abc", MenuType: map[string]any{}, FoodQuantity: "kg"},
		"non finite":     {Attendance: math.Inf(1), FoodQuantity: math.NaN()},
		"huge":           {Attendance: 1e300, FoodQuantity: "Infinity"},
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			got := Normalize(raw)
			require.Equal(t, NormalizedInput{Attendance: 100, MenuType: MenuVeg, FoodQuantity: 30}, got)
		})
	}
}

func TestNormalizeParsesLenientValues(t *testing.T) {
	got := Normalize(RawInput{Attendance: "  150 people", MenuType: "NonVeg", FoodQuantity: "12.5kg"})
	require.Equal(t, 150, got.Attendance)
	require.Equal(t, MenuNonVeg, got.MenuType)
	require.InDelta(t, 12.5, got.FoodQuantity, 1e-9)

	got = Normalize(RawInput{Attendance: 99.9, MenuType: "SPECIAL", FoodQuantity: 40})
	require.Equal(t, 99, got.Attendance)
	require.Equal(t, MenuSpecial, got.MenuType)
	require.InDelta(t, 40.0, got.FoodQuantity, 1e-9)
}

func TestNormalizeMenuTypeIsNotTrimmed(t *testing.T) {
	got := Normalize(RawInput{MenuType: " veg "})
	require.Equal(t, MenuVeg, got.MenuType)

	got = Normalize(RawInput{MenuType: " nonveg"})
	require.Equal(t, MenuVeg, got.MenuType)
}

func TestNormalizeDefaultQuantityFollowsAttendance(t *testing.T) {
	got := Normalize(RawInput{Attendance: 7})
	require.Equal(t, 7, got.Attendance)
	require.InDelta(t, 2.1, got.FoodQuantity, 1e-12)
}

func TestNormalizeAcceptsDecodedJSON(t *testing.T) {
	var raw RawInput
	require.NoError(t, json.Unmarshal([]byte(`{"attendance":"200","menu_type":"nonveg","food_quantity":10}`), &raw))

	got := Normalize(raw)
	require.Equal(t, NormalizedInput{Attendance: 200, MenuType: MenuNonVeg, FoodQuantity: 10}, got)
}

func TestParseIntegerPrefix(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"42", 42, true},
		{"\t-3x", -3, true},
		{"+7", 7, true},
		{"12.9", 12, true},
		{"-", 0, false},
		{"", 0, false},
		{"x1", 0, false},
		{"99999999999999999999", 0, false},
	}
	for _, tc := range cases {
		got, ok := parseIntegerPrefix(tc.in)
		require.Equal(t, tc.ok, ok, tc.in)
		require.Equal(t, tc.want, got, tc.in)
	}
}

func TestNormalizeJSONNumbers(t *testing.T) {
	got := Normalize(RawInput{Attendance: json.Number("1.5e2"), FoodQuantity: json.Number("4.5e1")})
	require.Equal(t, 150, got.Attendance)
	require.InDelta(t, 45.0, got.FoodQuantity, 1e-9)

	got = Normalize(RawInput{Attendance: json.Number("1e400"), FoodQuantity: json.Number("1e400")})
	require.Equal(t, NormalizedInput{Attendance: 100, MenuType: MenuVeg, FoodQuantity: 30}, got)

	got = Normalize(RawInput{Attendance: json.Number("120.9"), MenuType: json.Number("7")})
	require.Equal(t, 120, got.Attendance)
	require.Equal(t, MenuVeg, got.MenuType)
}
