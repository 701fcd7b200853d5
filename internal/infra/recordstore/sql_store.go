package recordstore

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/yanqian/food-waste-predictor/internal/domain/prediction"
	"github.com/yanqian/food-waste-predictor/internal/domain/records"
)

const (
	insertRecordSQL = `INSERT INTO daily_records
		(id, service_date, attendance, menu_type, food_quantity, waste_level, waste_kg, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	selectHistorySQL = `SELECT attendance, menu_type, waste_level
		FROM daily_records
		ORDER BY service_date, recorded_at`
)

// SQLStore persists records in postgres or sqlite through database/sql.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
}

// NewSQLStore wraps an open database.
func NewSQLStore(db *sql.DB, dialect Dialect) *SQLStore {
	return &SQLStore{db: db, dialect: dialect}
}

func (s *SQLStore) Append(ctx context.Context, record records.DailyRecord) error {
	_, err := s.db.ExecContext(ctx, s.rebind(insertRecordSQL),
		record.ID,
		record.Date,
		record.Attendance,
		string(record.MenuType),
		record.FoodQuantity,
		string(record.WasteLevel),
		record.WasteKg,
		record.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("insert daily record: %w", err)
	}
	return nil
}

func (s *SQLStore) ReadHistory(ctx context.Context) ([]prediction.HistoricalRecord, error) {
	rows, err := s.db.QueryContext(ctx, selectHistorySQL)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	out := make([]prediction.HistoricalRecord, 0)
	for rows.Next() {
		var (
			attendance int
			menu       string
			level      string
		)
		if err := rows.Scan(&attendance, &menu, &level); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		out = append(out, prediction.HistoricalRecord{
			Attendance: attendance,
			MenuType:   prediction.MenuType(menu),
			WasteLevel: prediction.WasteLevel(level),
		})
	}
	return out, rows.Err()
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

// rebind rewrites ? placeholders as $n for postgres.
func (s *SQLStore) rebind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

var _ records.Store = (*SQLStore)(nil)
