package prediction

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

const (
	// DefaultAttendance replaces a missing or invalid head count.
	DefaultAttendance = 100
	// DefaultMenuType replaces a missing or unknown menu.
	DefaultMenuType = MenuVeg
)

// integers beyond this are not exactly representable as JSON numbers
const maxExactInteger = 1 << 53

var floatPrefix = regexp.MustCompile(`^[+-]?(?:\d+\.?\d*(?:[eE][+-]?\d+)?|\.\d+(?:[eE][+-]?\d+)?)`)

// Normalize turns an untrusted payload into a fully populated input. It never fails.
func Normalize(raw RawInput) NormalizedInput {
	attendance, ok := parseInteger(raw.Attendance)
	if !ok || attendance < 1 {
		attendance = DefaultAttendance
	}

	menu, ok := ParseMenuType(strings.ToLower(asString(raw.MenuType)))
	if !ok {
		menu = DefaultMenuType
	}

	quantity, ok := parseFloat(raw.FoodQuantity)
	if !ok || quantity <= 0 {
		quantity = ExpectedConsumption(attendance).InexactFloat64()
	}

	return NormalizedInput{
		Attendance:   attendance,
		MenuType:     menu,
		FoodQuantity: quantity,
	}
}

func asString(value any) string {
	s, ok := value.(string)
	if !ok {
		return ""
	}
	return s
}

func parseInteger(value any) (int, bool) {
	switch v := value.(type) {
	case float64:
		return integerFromFloat(v)
	case float32:
		return integerFromFloat(float64(v))
	case int:
		return v, true
	case int64:
		return integerFromFloat(float64(v))
	case int32:
		return int(v), true
	case json.Number:
		return integerFromNumber(v)
	case string:
		return parseIntegerPrefix(v)
	default:
		return 0, false
	}
}

func integerFromFloat(v float64) (int, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	truncated := math.Trunc(v)
	if math.Abs(truncated) >= maxExactInteger {
		return 0, false
	}
	return int(truncated), true
}

// integerFromNumber treats a JSON number like a decoded float, so 1.5e2 is 150
// and values beyond float64 range are invalid.
func integerFromNumber(n json.Number) (int, bool) {
	f, err := strconv.ParseFloat(n.String(), 64)
	if err != nil {
		return 0, false
	}
	return integerFromFloat(f)
}

// parseIntegerPrefix reads the leading base-10 integer of s, ignoring leading whitespace
// and any trailing garbage ("150 people" -> 150).
func parseIntegerPrefix(s string) (int, bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil || n >= maxExactInteger || n <= -maxExactInteger {
		return 0, false
	}
	return int(n), true
}

func parseFloat(value any) (float64, bool) {
	var f float64
	switch v := value.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case int32:
		f = float64(v)
	case json.Number:
		return parseFloatPrefix(v.String())
	case string:
		return parseFloatPrefix(v)
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// parseFloatPrefix reads the leading decimal number of s ("12.5kg" -> 12.5).
func parseFloatPrefix(s string) (float64, bool) {
	match := floatPrefix.FindString(strings.TrimLeftFunc(s, unicode.IsSpace))
	if match == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(match, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

var consumptionPerPerson = decimal.RequireFromString("0.3")

// ExpectedConsumption is the modelled food eaten: attendance x 0.3 kg.
func ExpectedConsumption(attendance int) decimal.Decimal {
	return decimal.NewFromInt(int64(attendance)).Mul(consumptionPerPerson)
}
