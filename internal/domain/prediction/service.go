package prediction

import (
	"context"
	"log/slog"

	"github.com/yanqian/food-waste-predictor/pkg/metrics"
)

// Service exposes the prediction capability to transports.
type Service interface {
	Predict(ctx context.Context, raw RawInput) Response
	ReferenceTable() []HistoricalRecord
	AIAvailable() bool
}

type service struct {
	table       ReferenceTable
	augmenter   Augmenter
	logger      *slog.Logger
	predictions *metrics.CounterVec
}

// NewService wires the prediction pipeline. A nil augmenter disables AI enrichment.
func NewService(table ReferenceTable, augmenter Augmenter, registry *metrics.Registry, logger *slog.Logger) Service {
	if augmenter == nil {
		augmenter = NoAugmenter{}
	}
	var predictions *metrics.CounterVec
	if registry != nil {
		predictions = registry.Counter("predictions_total", "Predictions served by waste level.", "level")
	}
	return &service{
		table:       table,
		augmenter:   augmenter,
		logger:      logger.With("component", "prediction.service"),
		predictions: predictions,
	}
}

func (s *service) Predict(ctx context.Context, raw RawInput) Response {
	input := Normalize(raw)
	est := Estimate(input, s.table)
	wasteKg, wastePct := est.Format()

	resp := Response{
		WasteLevel:      est.Level,
		WasteKg:         wasteKg,
		WastePercentage: wastePct,
		Suggestion:      Suggest(est.Level, est.WasteKg, est.WastePercentage, input.FoodQuantity, input.Attendance),
	}

	if s.augmenter.Available() {
		if text, ok := s.augmenter.Suggest(ctx, est, input); ok {
			resp.Suggestion = text
			resp.AIEnhanced = true
		}
		if tips, ok := s.augmenter.Insights(ctx, est, input); ok && len(tips) > 0 {
			resp.AIInsights = tips
		}
	}

	s.predictions.Inc(string(est.Level))
	s.logger.Debug("prediction computed",
		"attendance", input.Attendance,
		"menu_type", input.MenuType,
		"waste_level", est.Level,
		"ai_enhanced", resp.AIEnhanced,
	)
	return resp
}

func (s *service) ReferenceTable() []HistoricalRecord {
	return s.table.Rows()
}

func (s *service) AIAvailable() bool {
	return s.augmenter.Available()
}
