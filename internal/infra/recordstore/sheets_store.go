package recordstore

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/yanqian/food-waste-predictor/internal/domain/prediction"
	"github.com/yanqian/food-waste-predictor/internal/domain/records"
)

// SheetsStore appends records to a Google Sheets spreadsheet.
// Columns: date, attendance, menu_type, food_quantity, waste_level, waste_kg, recorded_at.
type SheetsStore struct {
	values        *sheets.SpreadsheetsValuesService
	spreadsheetID string
	sheet         string
}

// NewSheetsStore authenticates with service account credentials.
func NewSheetsStore(ctx context.Context, credentialsJSON []byte, spreadsheetID, sheet string) (*SheetsStore, error) {
	if len(credentialsJSON) == 0 {
		return nil, errors.New("sheets credentials are empty")
	}
	creds, err := google.CredentialsFromJSON(ctx, credentialsJSON, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse sheets credentials: %w", err)
	}
	return newSheetsStore(ctx, spreadsheetID, sheet, option.WithCredentials(creds))
}

// NewSheetsStoreWithClient uses an already authorised HTTP client, optionally against another endpoint.
func NewSheetsStoreWithClient(client *http.Client, endpoint, spreadsheetID, sheet string) (*SheetsStore, error) {
	if client == nil {
		client = http.DefaultClient
	}
	opts := []option.ClientOption{option.WithHTTPClient(client)}
	if strings.TrimSpace(endpoint) != "" {
		opts = append(opts, option.WithEndpoint(strings.TrimRight(endpoint, "/")+"/"))
	}
	return newSheetsStore(context.Background(), spreadsheetID, sheet, opts...)
}

func newSheetsStore(ctx context.Context, spreadsheetID, sheet string, opts ...option.ClientOption) (*SheetsStore, error) {
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, errors.New("spreadsheet id is empty")
	}
	if strings.TrimSpace(sheet) == "" {
		sheet = "Records"
	}
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &SheetsStore{
		values:        svc.Spreadsheets.Values,
		spreadsheetID: spreadsheetID,
		sheet:         sheet,
	}, nil
}

func (s *SheetsStore) Append(ctx context.Context, record records.DailyRecord) error {
	wasteKg := ""
	if record.WasteKg != nil {
		wasteKg = strconv.FormatFloat(*record.WasteKg, 'f', -1, 64)
	}
	row := &sheets.ValueRange{Values: [][]any{{
		record.Date,
		record.Attendance,
		string(record.MenuType),
		record.FoodQuantity,
		string(record.WasteLevel),
		wasteKg,
		record.RecordedAt.UTC().Format(time.RFC3339),
	}}}

	_, err := s.values.Append(s.spreadsheetID, s.sheet+"!A:G", row).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append sheet row: %w", err)
	}
	return nil
}

func (s *SheetsStore) ReadHistory(ctx context.Context) ([]prediction.HistoricalRecord, error) {
	resp, err := s.values.Get(s.spreadsheetID, s.sheet+"!A2:G").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read sheet values: %w", err)
	}

	out := make([]prediction.HistoricalRecord, 0, len(resp.Values))
	for _, row := range resp.Values {
		if len(row) < 5 {
			continue
		}
		attendance, err := strconv.Atoi(strings.TrimSpace(fmt.Sprint(row[1])))
		if err != nil {
			continue
		}
		out = append(out, prediction.HistoricalRecord{
			Attendance: attendance,
			MenuType:   prediction.MenuType(strings.ToLower(strings.TrimSpace(fmt.Sprint(row[2])))),
			WasteLevel: prediction.WasteLevel(strings.ToLower(strings.TrimSpace(fmt.Sprint(row[4])))),
		})
	}
	return out, nil
}

func (s *SheetsStore) Close() error { return nil }

var _ records.Store = (*SheetsStore)(nil)
