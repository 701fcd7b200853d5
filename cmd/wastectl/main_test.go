package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/food-waste-predictor/internal/domain/prediction"
	"github.com/yanqian/food-waste-predictor/internal/domain/records"
	"github.com/yanqian/food-waste-predictor/internal/infra/recordstore"
)

func runCLI(t *testing.T, args ...string) (string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	app := newApp()
	app.Writer = &stdout
	app.ErrWriter = &stderr
	require.NoError(t, app.Run(append([]string{"wastectl"}, args...)))
	return stdout.String(), stderr.String()
}

// seedSQLiteStore points the config at a fresh sqlite file holding the given records.
func seedSQLiteStore(t *testing.T, stored ...records.DailyRecord) {
	t.Helper()
	dir := t.TempDir()
	chdirForTest(t, dir)
	dsn := filepath.Join(dir, "records.db")
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("GOOGLE_GEMINI_API_KEY", "")
	t.Setenv("LLM_API_KEY", "")
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", dsn)

	ctx := context.Background()
	db, err := recordstore.OpenDB(ctx, recordstore.DialectSQLite, dsn, recordstore.Options{})
	require.NoError(t, err)
	require.NoError(t, recordstore.Migrate(ctx, db, recordstore.DialectSQLite))
	store := recordstore.NewSQLStore(db, recordstore.DialectSQLite)
	for _, record := range stored {
		require.NoError(t, store.Append(ctx, record))
	}
	require.NoError(t, store.Close())
}

func dailyRecord(id string, attendance int, menu prediction.MenuType, level prediction.WasteLevel) records.DailyRecord {
	return records.DailyRecord{
		ID:           id,
		Date:         "2024-03-04",
		Attendance:   attendance,
		MenuType:     menu,
		FoodQuantity: 40,
		WasteLevel:   level,
		RecordedAt:   time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC),
	}
}

func TestPredictDefaults(t *testing.T) {
	out, _ := runCLI(t, "predict")

	var resp prediction.Response
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Equal(t, prediction.LevelLow, resp.WasteLevel)
	require.Equal(t, "1.50", resp.WasteKg)
	require.False(t, resp.AIEnhanced)
}

func TestPredictUsesStoredReferenceWhenConfigured(t *testing.T) {
	seedSQLiteStore(t, dailyRecord("rec-1", 150, prediction.MenuVeg, prediction.LevelHigh))
	t.Setenv("REFERENCE_SOURCE", "store")

	out, _ := runCLI(t, "predict", "--ai", "--attendance", "150", "--menu-type", "veg", "--food-quantity", "50")

	var resp prediction.Response
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Equal(t, prediction.LevelHigh, resp.WasteLevel)
	require.False(t, resp.AIEnhanced)
}

func TestHistoryPrintsOnlyValidRows(t *testing.T) {
	seedSQLiteStore(t,
		dailyRecord("rec-1", 120, prediction.MenuNonVeg, prediction.LevelMedium),
		dailyRecord("rec-2", 90, prediction.MenuType("soup"), prediction.LevelLow),
	)

	out, errOut := runCLI(t, "history")
	require.Contains(t, out, "120")
	require.Contains(t, out, "nonveg")
	require.NotContains(t, out, "soup")
	require.Contains(t, errOut, "skipped 1 invalid rows")
}

func TestTablePrintsBuiltInRows(t *testing.T) {
	out, _ := runCLI(t, "table")
	require.Contains(t, out, "ATTENDANCE")
	require.Equal(t, prediction.DefaultReferenceTable().Len()+1, bytes.Count([]byte(out), []byte("\n")))
}
