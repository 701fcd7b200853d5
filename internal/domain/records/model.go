package records

import (
	"context"
	"time"

	"github.com/yanqian/food-waste-predictor/internal/domain/prediction"
)

// DailyRecord is one observed service day.
type DailyRecord struct {
	ID           string                `json:"id"`
	Date         string                `json:"date"`
	Attendance   int                   `json:"attendance"`
	MenuType     prediction.MenuType   `json:"menu_type"`
	FoodQuantity float64               `json:"food_quantity"`
	WasteLevel   prediction.WasteLevel `json:"waste_level"`
	WasteKg      *float64              `json:"waste_kg,omitempty"`
	RecordedAt   time.Time             `json:"recorded_at"`
}

// Historical projects the record onto the reference table shape.
func (r DailyRecord) Historical() prediction.HistoricalRecord {
	return prediction.HistoricalRecord{
		Attendance: r.Attendance,
		MenuType:   r.MenuType,
		WasteLevel: r.WasteLevel,
	}
}

// LogRequest is the payload accepted when recording a service day.
type LogRequest struct {
	Date         string   `json:"date"`
	Attendance   int      `json:"attendance"`
	MenuType     string   `json:"menu_type"`
	FoodQuantity float64  `json:"food_quantity"`
	WasteLevel   string   `json:"waste_level"`
	WasteKg      *float64 `json:"waste_kg,omitempty"`
}

// Store persists daily records. Implementations must be safe for concurrent use.
type Store interface {
	Append(ctx context.Context, record DailyRecord) error
	ReadHistory(ctx context.Context) ([]prediction.HistoricalRecord, error)
	Close() error
}
