package prediction

import (
	"context"

	"github.com/shopspring/decimal"
)

// MenuType is the kind of menu served on a given day.
type MenuType string

const (
	MenuVeg     MenuType = "veg"
	MenuNonVeg  MenuType = "nonveg"
	MenuSpecial MenuType = "special"
)

// ParseMenuType matches the lower-cased wire value exactly.
func ParseMenuType(value string) (MenuType, bool) {
	switch MenuType(value) {
	case MenuVeg, MenuNonVeg, MenuSpecial:
		return MenuType(value), true
	default:
		return "", false
	}
}

// Label is the human readable menu name used in prompts.
func (m MenuType) Label() string {
	switch m {
	case MenuVeg:
		return "Vegetarian"
	case MenuNonVeg:
		return "Non-Vegetarian"
	default:
		return "Special Event"
	}
}

// WasteLevel is the categorical waste estimate.
type WasteLevel string

const (
	LevelLow    WasteLevel = "low"
	LevelMedium WasteLevel = "medium"
	LevelHigh   WasteLevel = "high"
)

// ParseWasteLevel matches a wire value exactly.
func ParseWasteLevel(value string) (WasteLevel, bool) {
	switch WasteLevel(value) {
	case LevelLow, LevelMedium, LevelHigh:
		return WasteLevel(value), true
	default:
		return "", false
	}
}

// RawInput is the untrusted request payload. Every field may be absent or of any JSON type.
type RawInput struct {
	Attendance   any `json:"attendance"`
	MenuType     any `json:"menu_type"`
	FoodQuantity any `json:"food_quantity"`
}

// NormalizedInput is always fully populated: Attendance >= 1, a known MenuType, FoodQuantity > 0.
type NormalizedInput struct {
	Attendance   int      `json:"attendance"`
	MenuType     MenuType `json:"menu_type"`
	FoodQuantity float64  `json:"food_quantity"`
}

// HistoricalRecord is one observation of the reference table.
type HistoricalRecord struct {
	Attendance int        `json:"attendance"`
	MenuType   MenuType   `json:"menu_type"`
	WasteLevel WasteLevel `json:"waste_level"`
}

// Estimation is the output of the waste estimator.
type Estimation struct {
	Level               WasteLevel
	WasteKg             decimal.Decimal
	WastePercentage     decimal.Decimal
	ExpectedConsumption decimal.Decimal
}

// Response is the wire contract returned to callers.
type Response struct {
	WasteLevel      WasteLevel `json:"waste_level"`
	WasteKg         string     `json:"waste_kg"`
	WastePercentage string     `json:"waste_percentage"`
	Suggestion      string     `json:"suggestion"`
	AIEnhanced      bool       `json:"ai_enhanced"`
	AIInsights      []string   `json:"ai_insights,omitempty"`
}

// Augmenter enriches a prediction with generated text. Implementations never fail:
// a false ok means the caller keeps its deterministic output.
type Augmenter interface {
	Available() bool
	Suggest(ctx context.Context, est Estimation, input NormalizedInput) (string, bool)
	Insights(ctx context.Context, est Estimation, input NormalizedInput) ([]string, bool)
}

// NoAugmenter is used when no AI service is configured.
type NoAugmenter struct{}

func (NoAugmenter) Available() bool { return false }

func (NoAugmenter) Suggest(context.Context, Estimation, NormalizedInput) (string, bool) {
	return "", false
}

func (NoAugmenter) Insights(context.Context, Estimation, NormalizedInput) ([]string, bool) {
	return nil, false
}
