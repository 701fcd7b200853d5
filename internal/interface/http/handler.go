package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/food-waste-predictor/internal/domain/prediction"
	"github.com/yanqian/food-waste-predictor/internal/domain/records"
	apperrors "github.com/yanqian/food-waste-predictor/pkg/errors"
)

const maxPredictBody = 64 << 10

// Handler wires the HTTP transport to domain services.
type Handler struct {
	predictSvc prediction.Service
	recordsSvc records.Service
	logger     *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(predictSvc prediction.Service, recordsSvc records.Service, logger *slog.Logger) *Handler {
	return &Handler{
		predictSvc: predictSvc,
		recordsSvc: recordsSvc,
		logger:     logger.With("component", "http.handler"),
	}
}

// Predict returns the waste estimate for the posted inputs. Field problems never fail the request.
func (h *Handler) Predict(c *gin.Context) {
	raw, err := decodeRawInput(c.Request.Body)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	c.JSON(http.StatusOK, h.predictSvc.Predict(c.Request.Context(), raw))
}

// Reference lists the active reference table.
func (h *Handler) Reference(c *gin.Context) {
	rows := h.predictSvc.ReferenceTable()
	c.JSON(http.StatusOK, gin.H{"rows": rows, "count": len(rows)})
}

// Health reports liveness and whether AI enrichment is configured.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":       "ok",
		"message":      "Food Waste Predictor API is running",
		"ai_available": h.predictSvc.AIAvailable(),
	})
}

// LogRecord stores an observed service day.
func (h *Handler) LogRecord(c *gin.Context) {
	var req records.LogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	record, err := h.recordsSvc.Log(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, fromAppError(err, "records_failed"))
		return
	}
	c.JSON(http.StatusCreated, record)
}

// History returns the stored observations in reference table shape.
func (h *Handler) History(c *gin.Context) {
	history, err := h.recordsSvc.History(c.Request.Context())
	if err != nil {
		abortWithError(c, fromAppError(err, "records_failed"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": history})
}

var errNotObject = errors.New("request body must be a JSON object")

// decodeRawInput accepts an empty body as {} and rejects anything that is not a JSON object.
func decodeRawInput(body io.Reader) (prediction.RawInput, error) {
	if body == nil {
		return prediction.RawInput{}, nil
	}
	data, err := io.ReadAll(io.LimitReader(body, maxPredictBody+1))
	if err != nil {
		return prediction.RawInput{}, err
	}
	if len(data) > maxPredictBody {
		return prediction.RawInput{}, errors.New("request body too large")
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return prediction.RawInput{}, nil
	}
	if data[0] != '{' {
		return prediction.RawInput{}, errNotObject
	}
	var fields map[string]any
	if err := decodeJSON(data, &fields); err != nil {
		return prediction.RawInput{}, err
	}
	return prediction.RawInput{
		Attendance:   fields["attendance"],
		MenuType:     fields["menu_type"],
		FoodQuantity: fields["food_quantity"],
	}, nil
}

// decodeJSON keeps numbers as json.Number so an out-of-range field is left to the
// normalizer instead of failing the whole body.
func decodeJSON(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("unexpected data after JSON value")
	}
	return nil
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
