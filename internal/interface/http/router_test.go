package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/food-waste-predictor/internal/domain/auth"
	"github.com/yanqian/food-waste-predictor/internal/domain/prediction"
	"github.com/yanqian/food-waste-predictor/internal/domain/records"
	"github.com/yanqian/food-waste-predictor/internal/infra/config"
	"github.com/yanqian/food-waste-predictor/internal/interface/mcp"
	apperrors "github.com/yanqian/food-waste-predictor/pkg/errors"
	"github.com/yanqian/food-waste-predictor/pkg/metrics"
)

func TestRouter_PredictScenario(t *testing.T) {
	recorder := performRequest(http.MethodPost, "/api/predict", `{"attendance":150,"menu_type":"veg","food_quantity":50}`, newRouterUnderTest(t, &stubRecords{}))
	require.Equal(t, http.StatusOK, recorder.Code)

	var got prediction.Response
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &got))
	require.Equal(t, prediction.LevelMedium, got.WasteLevel)
	require.Equal(t, "6.75", got.WasteKg)
	require.Equal(t, "15.0", got.WastePercentage)
	require.False(t, got.AIEnhanced)
	require.NotContains(t, recorder.Body.String(), "ai_insights")
}

func TestRouter_PredictEmptyBodyUsesDefaults(t *testing.T) {
	recorder := performRequest(http.MethodPost, "/api/predict", "", newRouterUnderTest(t, &stubRecords{}))
	require.Equal(t, http.StatusOK, recorder.Code)

	var got prediction.Response
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &got))
	require.Equal(t, prediction.LevelLow, got.WasteLevel)
	require.Equal(t, "1.50", got.WasteKg)
	require.Equal(t, "5.0", got.WastePercentage)
}

func TestRouter_PredictWrongTypesStillSucceed(t *testing.T) {
	recorder := performRequest(http.MethodPost, "/api/predict", `{"attendance":"abc","menu_type":7,"food_quantity":null}`, newRouterUnderTest(t, &stubRecords{}))
	require.Equal(t, http.StatusOK, recorder.Code)
}

func TestRouter_PredictOutOfRangeNumbersUseDefaults(t *testing.T) {
	recorder := performRequest(http.MethodPost, "/api/predict", `{"attendance":1e400,"menu_type":"veg","food_quantity":1e400}`, newRouterUnderTest(t, &stubRecords{}))
	require.Equal(t, http.StatusOK, recorder.Code)

	var got prediction.Response
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &got))
	require.Equal(t, prediction.LevelLow, got.WasteLevel)
	require.Equal(t, "1.50", got.WasteKg)
	require.Equal(t, "5.0", got.WastePercentage)
}

func TestRouter_PredictExponentNumbers(t *testing.T) {
	recorder := performRequest(http.MethodPost, "/api/predict", `{"attendance":1.5e2,"menu_type":"veg","food_quantity":5e1}`, newRouterUnderTest(t, &stubRecords{}))
	require.Equal(t, http.StatusOK, recorder.Code)

	var got prediction.Response
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &got))
	require.Equal(t, "6.75", got.WasteKg)
}

func TestRouter_PredictRejectsNonObjectBodies(t *testing.T) {
	server := newRouterUnderTest(t, &stubRecords{})
	for _, body := range []string{`[1,2]`, `null`, `"text"`, `{"attendance":`, `{"attendance":1} {}`} {
		recorder := performRequest(http.MethodPost, "/api/predict", body, server)
		require.Equal(t, http.StatusBadRequest, recorder.Code, body)
		errBody := decodeErrorBody(t, recorder.Body.Bytes())
		require.Equal(t, "invalid_request", errBody["error"]["code"])
	}
}

func TestRouter_Health(t *testing.T) {
	recorder := performRequest(http.MethodGet, "/health", "", newRouterUnderTest(t, &stubRecords{}))
	require.Equal(t, http.StatusOK, recorder.Code)
	require.JSONEq(t, `{"status":"ok","message":"Food Waste Predictor API is running","ai_available":false}`, recorder.Body.String())
}

func TestRouter_Reference(t *testing.T) {
	recorder := performRequest(http.MethodGet, "/api/reference", "", newRouterUnderTest(t, &stubRecords{}))
	require.Equal(t, http.StatusOK, recorder.Code)

	var body struct {
		Rows  []prediction.HistoricalRecord `json:"rows"`
		Count int                           `json:"count"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	require.Equal(t, 15, body.Count)
	require.Equal(t, prediction.HistoricalRecord{Attendance: 50, MenuType: prediction.MenuVeg, WasteLevel: prediction.LevelLow}, body.Rows[0])
}

func TestRouter_LogRecord(t *testing.T) {
	store := &stubRecords{
		logFn: func(ctx context.Context, req records.LogRequest) (records.DailyRecord, error) {
			require.Equal(t, 120, req.Attendance)
			return records.DailyRecord{ID: "rec-1", Date: "2024-03-04", Attendance: 120}, nil
		},
	}
	recorder := performRequest(http.MethodPost, "/api/records", `{"attendance":120,"menu_type":"veg","food_quantity":36,"waste_level":"low"}`, newRouterUnderTest(t, store))
	require.Equal(t, http.StatusCreated, recorder.Code)
	require.Contains(t, recorder.Body.String(), `"id":"rec-1"`)
}

func TestRouter_LogRecordInvalidInput(t *testing.T) {
	store := &stubRecords{
		logFn: func(ctx context.Context, req records.LogRequest) (records.DailyRecord, error) {
			return records.DailyRecord{}, apperrors.Wrap(apperrors.CodeInvalidInput, "attendance must be at least 1", nil)
		},
	}
	recorder := performRequest(http.MethodPost, "/api/records", `{"attendance":0}`, newRouterUnderTest(t, store))
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	errBody := decodeErrorBody(t, recorder.Body.Bytes())
	require.Equal(t, "invalid_request", errBody["error"]["code"])
	require.Equal(t, "attendance must be at least 1", errBody["error"]["message"])
}

func TestRouter_LogRecordRetriesStoreFailures(t *testing.T) {
	calls := 0
	store := &stubRecords{
		logFn: func(ctx context.Context, req records.LogRequest) (records.DailyRecord, error) {
			calls++
			if calls == 1 {
				return records.DailyRecord{}, apperrors.Wrap(apperrors.CodeStoreError, "failed to store daily record", errors.New("timeout"))
			}
			return records.DailyRecord{ID: "rec-2"}, nil
		},
	}
	cfg := testConfig()
	cfg.HTTP.Retry = config.RetryConfig{Enabled: true, MaxAttempts: 2, BaseBackoff: time.Millisecond, Paths: []string{"/api/records"}}

	recorder := performRequest(http.MethodPost, "/api/records", `{"attendance":80}`, newRouterWithConfig(t, cfg, store))
	require.Equal(t, http.StatusCreated, recorder.Code)
	require.Equal(t, 2, calls)
}

func TestRouter_HistoryStoreError(t *testing.T) {
	store := &stubRecords{
		historyFn: func(ctx context.Context) ([]prediction.HistoricalRecord, error) {
			return nil, apperrors.Wrap(apperrors.CodeStoreError, "failed to read history", errors.New("down"))
		},
	}
	recorder := performRequest(http.MethodGet, "/api/records/history", "", newRouterUnderTest(t, store))
	require.Equal(t, http.StatusBadGateway, recorder.Code)
	require.Equal(t, "store_error", decodeErrorBody(t, recorder.Body.Bytes())["error"]["code"])
}

func TestRouter_GuardRejects(t *testing.T) {
	cfg := testConfig()
	server := newRouterWithGuard(t, cfg, &stubRecords{}, denyGuard{})
	recorder := performRequest(http.MethodGet, "/api/records/history", "", server)
	require.Equal(t, http.StatusUnauthorized, recorder.Code)

	recorder = performRequest(http.MethodPost, "/api/predict", "{}", server)
	require.Equal(t, http.StatusOK, recorder.Code)
}

func TestRouter_MCPCallTool(t *testing.T) {
	server := newRouterUnderTest(t, &stubRecords{})

	recorder := performRequest(http.MethodPost, "/mcp", `{"name":"predict_waste","arguments":{"attendance":200,"menu_type":"nonveg"}}`, server)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Contains(t, recorder.Body.String(), `waste_level`)
	require.Contains(t, recorder.Body.String(), `"type":"text"`)

	recorder = performRequest(http.MethodPost, "/mcp", `{"name":"nope"}`, server)
	require.Equal(t, http.StatusNotFound, recorder.Code)
	require.Equal(t, "unknown_tool", decodeErrorBody(t, recorder.Body.Bytes())["error"]["code"])
}

func TestRouter_MCPOutOfRangeNumbersUseDefaults(t *testing.T) {
	server := newRouterUnderTest(t, &stubRecords{})
	recorder := performRequest(http.MethodPost, "/mcp", `{"name":"predict_waste","arguments":{"attendance":1e400,"food_quantity":1e400}}`, server)
	require.Equal(t, http.StatusOK, recorder.Code)

	var result struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &result))
	require.Len(t, result.Content, 1)

	var got prediction.Response
	require.NoError(t, json.Unmarshal([]byte(result.Content[0].Text), &got))
	require.Equal(t, prediction.LevelLow, got.WasteLevel)
	require.Equal(t, "1.50", got.WasteKg)
}

func TestRouter_Metrics(t *testing.T) {
	server := newRouterUnderTest(t, &stubRecords{})
	performRequest(http.MethodPost, "/api/predict", "{}", server)

	recorder := performRequest(http.MethodGet, "/metrics", "", server)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Contains(t, recorder.Body.String(), `predictions_total{level="low"} 1`)
}

func TestRouter_RateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.HTTP.RateLimit = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 1, Burst: 1}
	server := newRouterWithConfig(t, cfg, &stubRecords{})

	require.Equal(t, http.StatusOK, performRequest(http.MethodPost, "/api/predict", "{}", server).Code)
	recorder := performRequest(http.MethodPost, "/api/predict", "{}", server)
	require.Equal(t, http.StatusTooManyRequests, recorder.Code)
	require.Equal(t, "60", recorder.Header().Get("Retry-After"))

	require.Equal(t, http.StatusOK, performRequest(http.MethodGet, "/health", "", server).Code)
}

func TestRouter_CORSPreflight(t *testing.T) {
	cfg := testConfig()
	cfg.HTTP.AllowedOrigins = []string{"https://canteen.example"}
	server := newRouterWithConfig(t, cfg, &stubRecords{})

	req := httptest.NewRequest(http.MethodOptions, "/api/predict", nil)
	req.Header.Set("Origin", "https://canteen.example")
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "https://canteen.example", rec.Header().Get("Access-Control-Allow-Origin"))
}

func performRequest(method, path, body string, server *http.Server) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	return rec
}

func testConfig() *config.Config {
	return &config.Config{
		HTTP: config.HTTPConfig{
			Address:      ":0",
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
		},
		MCP:     config.MCPConfig{Enabled: true, Path: "/mcp"},
		Metrics: config.MetricsConfig{Enabled: true, Path: "/metrics"},
	}
}

func newRouterUnderTest(t *testing.T, recordsSvc records.Service) *http.Server {
	return newRouterWithConfig(t, testConfig(), recordsSvc)
}

func newRouterWithConfig(t *testing.T, cfg *config.Config, recordsSvc records.Service) *http.Server {
	return newRouterWithGuard(t, cfg, recordsSvc, nil)
}

func newRouterWithGuard(t *testing.T, cfg *config.Config, recordsSvc records.Service, guard auth.Guard) *http.Server {
	t.Helper()
	logger := newTestLogger()
	registry := metrics.NewRegistry()
	predictSvc := prediction.NewService(prediction.DefaultReferenceTable(), nil, registry, logger)
	handler := NewHandler(predictSvc, recordsSvc, logger)
	mcpHandler := NewMCPHandler(mcp.NewServer(predictSvc, "test", logger))
	return NewRouter(cfg, handler, mcpHandler, guard, registry, logger)
}

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(io.Discard, nil)
	return slog.New(handler)
}

type denyGuard struct{}

func (denyGuard) Authorize(_ context.Context, header string) error {
	if strings.TrimSpace(header) == "" {
		return errors.New("missing authorization header")
	}
	return nil
}

type stubRecords struct {
	logFn     func(ctx context.Context, req records.LogRequest) (records.DailyRecord, error)
	historyFn func(ctx context.Context) ([]prediction.HistoricalRecord, error)
}

func (s *stubRecords) Log(ctx context.Context, req records.LogRequest) (records.DailyRecord, error) {
	if s.logFn != nil {
		return s.logFn(ctx, req)
	}
	return records.DailyRecord{}, nil
}

func (s *stubRecords) History(ctx context.Context) ([]prediction.HistoricalRecord, error) {
	if s.historyFn != nil {
		return s.historyFn(ctx)
	}
	return []prediction.HistoricalRecord{}, nil
}

func decodeErrorBody(t *testing.T, raw []byte) map[string]map[string]string {
	t.Helper()
	var body map[string]map[string]string
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}
