package recordstore

import (
	"context"

	"github.com/yanqian/food-waste-predictor/internal/domain/prediction"
	"github.com/yanqian/food-waste-predictor/internal/domain/records"
)

// NoopStore accepts every record and remembers none of them.
type NoopStore struct{}

func (NoopStore) Append(context.Context, records.DailyRecord) error { return nil }

func (NoopStore) ReadHistory(context.Context) ([]prediction.HistoricalRecord, error) {
	return []prediction.HistoricalRecord{}, nil
}

func (NoopStore) Close() error { return nil }

var _ records.Store = NoopStore{}
