package records

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yanqian/food-waste-predictor/internal/domain/prediction"
	apperrors "github.com/yanqian/food-waste-predictor/pkg/errors"
	"github.com/yanqian/food-waste-predictor/pkg/util"
)

// Service records observed service days and exposes them as history.
type Service interface {
	Log(ctx context.Context, req LogRequest) (DailyRecord, error)
	History(ctx context.Context) ([]prediction.HistoricalRecord, error)
}

type service struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
}

// NewService wires the records domain.
func NewService(store Store, logger *slog.Logger) Service {
	return &service{
		store:  store,
		logger: logger.With("component", "records.service"),
		now:    util.NowUTC,
		newID:  func() string { return uuid.NewString() },
	}
}

func (s *service) Log(ctx context.Context, req LogRequest) (DailyRecord, error) {
	record, err := s.validate(req)
	if err != nil {
		return DailyRecord{}, err
	}
	if err := s.store.Append(ctx, record); err != nil {
		s.logger.Error("append daily record failed", "date", record.Date, "error", err)
		return DailyRecord{}, apperrors.Wrap(apperrors.CodeStoreError, "failed to store daily record", err)
	}
	s.logger.Info("daily record stored", "id", record.ID, "date", record.Date, "waste_level", record.WasteLevel)
	return record, nil
}

func (s *service) History(ctx context.Context) ([]prediction.HistoricalRecord, error) {
	history, err := s.store.ReadHistory(ctx)
	if err != nil {
		s.logger.Error("read history failed", "error", err)
		return nil, apperrors.Wrap(apperrors.CodeStoreError, "failed to read history", err)
	}
	if history == nil {
		history = []prediction.HistoricalRecord{}
	}
	return history, nil
}

func (s *service) validate(req LogRequest) (DailyRecord, error) {
	if req.Attendance < 1 {
		return DailyRecord{}, invalid("attendance must be at least 1")
	}
	menu, ok := prediction.ParseMenuType(strings.ToLower(strings.TrimSpace(req.MenuType)))
	if !ok {
		return DailyRecord{}, invalid("menu_type must be one of veg, nonveg, special")
	}
	level, ok := prediction.ParseWasteLevel(strings.ToLower(strings.TrimSpace(req.WasteLevel)))
	if !ok {
		return DailyRecord{}, invalid("waste_level must be one of low, medium, high")
	}
	if req.FoodQuantity <= 0 {
		return DailyRecord{}, invalid("food_quantity must be greater than 0")
	}
	if req.WasteKg != nil && *req.WasteKg < 0 {
		return DailyRecord{}, invalid("waste_kg cannot be negative")
	}

	now := s.now()
	date := strings.TrimSpace(req.Date)
	if date == "" {
		date = now.Format(util.DateLayout)
	} else if _, err := time.Parse(util.DateLayout, date); err != nil {
		return DailyRecord{}, apperrors.Wrap(apperrors.CodeInvalidInput, "date must be formatted as YYYY-MM-DD", err)
	}

	return DailyRecord{
		ID:           s.newID(),
		Date:         date,
		Attendance:   req.Attendance,
		MenuType:     menu,
		FoodQuantity: req.FoodQuantity,
		WasteLevel:   level,
		WasteKg:      req.WasteKg,
		RecordedAt:   now,
	}, nil
}

func invalid(message string) error {
	return apperrors.Wrap(apperrors.CodeInvalidInput, message, nil)
}
