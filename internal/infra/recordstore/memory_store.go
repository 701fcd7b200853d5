package recordstore

import (
	"context"
	"sync"

	"github.com/yanqian/food-waste-predictor/internal/domain/prediction"
	"github.com/yanqian/food-waste-predictor/internal/domain/records"
)

// MemoryStore keeps records in process memory for tests and local runs.
type MemoryStore struct {
	mu      sync.RWMutex
	records []records.DailyRecord
}

// NewMemoryStore builds an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Append(_ context.Context, record records.DailyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)
	return nil
}

func (s *MemoryStore) ReadHistory(context.Context) ([]prediction.HistoricalRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]prediction.HistoricalRecord, 0, len(s.records))
	for _, record := range s.records {
		out = append(out, record.Historical())
	}
	return out, nil
}

// Records returns a copy of everything appended so far.
func (s *MemoryStore) Records() []records.DailyRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]records.DailyRecord, len(s.records))
	copy(out, s.records)
	return out
}

func (s *MemoryStore) Close() error { return nil }

var _ records.Store = (*MemoryStore)(nil)
