package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"risk-workers/internal/common/logger"
	"risk-workers/internal/common/metrics"
	"risk-workers/internal/common/observability"
	"risk-workers/internal/history"
	"risk-workers/internal/models"
	"risk-workers/internal/risk"
)

const source = "api"

// Recorder is the history surface the HTTP boundary needs.
type Recorder interface {
	Record(ctx context.Context, userID string, p models.Prediction) (history.Receipt, error)
	List(ctx context.Context, userID string) ([]models.Prediction, error)
}

type PredictResponse struct {
	Success     bool             `json:"success"`
	Scores      risk.Scores      `json:"scores"`
	Explanation risk.Explanation `json:"explanation"`
	Timestamp   string           `json:"timestamp"`
}

type ListPredictionsResponse struct {
	Success     bool                `json:"success"`
	Count       int                 `json:"count"`
	Predictions []models.Prediction `json:"predictions"`
}

type SavePredictionRequest struct {
	UserID     string          `json:"userId"`
	Prediction json.RawMessage `json:"prediction"`
}

type SavePredictionResponse struct {
	Success    bool              `json:"success"`
	Message    string            `json:"message"`
	Prediction models.Prediction `json:"prediction"`
}

type PredictionHandler struct {
	recorder Recorder
	obs      *observability.Observability
	logger   logger.Logger
	now      func() time.Time
}

func NewPredictionHandler(recorder Recorder, obs *observability.Observability, log logger.Logger) *PredictionHandler {
	return &PredictionHandler{recorder: recorder, obs: obs, logger: log, now: time.Now}
}

// Predict scores the request body. Malformed JSON is reported like any other
// validation failure.
func (h *PredictionHandler) Predict(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		respondInternal(c, err)
		return
	}

	result, err := risk.Assess(body)
	if err != nil {
		if failure, ok := err.(*risk.ValidationFailure); ok {
			metrics.ObserveRejection(source)
			respondError(c, http.StatusBadRequest, "Invalid input", failure.Errors)
			return
		}
		h.logger.Error("prediction failed", map[string]interface{}{"error": err.Error()})
		respondInternal(c, err)
		return
	}

	s := result.Scores
	metrics.ObserveScores(source, s.HealthRisk, s.FinancialRisk, s.ScamRisk, s.OverallRisk)
	h.obs.RecordAssessment(c.Request.Context(), source, string(risk.LevelFor(s.OverallRisk)))

	c.JSON(http.StatusOK, PredictResponse{
		Success:     true,
		Scores:      s,
		Explanation: result.Explanation,
		Timestamp:   h.now().UTC().Format(time.RFC3339),
	})
}

func (h *PredictionHandler) ListPredictions(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		respondError(c, http.StatusBadRequest, "userId query parameter is required", nil)
		return
	}

	predictions, err := h.recorder.List(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("history read failed", map[string]interface{}{"userId": userID, "error": err.Error()})
		respondInternal(c, err)
		return
	}
	if predictions == nil {
		predictions = []models.Prediction{}
	}

	c.JSON(http.StatusOK, ListPredictionsResponse{
		Success:     true,
		Count:       len(predictions),
		Predictions: predictions,
	})
}

func (h *PredictionHandler) SavePrediction(c *gin.Context) {
	var req SavePredictionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if req.UserID == "" || len(req.Prediction) == 0 || string(req.Prediction) == "null" {
		respondError(c, http.StatusBadRequest, "userId and prediction are required", nil)
		return
	}

	var prediction models.Prediction
	if err := json.Unmarshal(req.Prediction, &prediction); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid prediction", err.Error())
		return
	}

	receipt, err := h.recorder.Record(c.Request.Context(), req.UserID, prediction)
	if err != nil {
		h.logger.Error("history write failed", map[string]interface{}{"userId": req.UserID, "error": err.Error()})
		respondInternal(c, err)
		return
	}

	c.JSON(http.StatusOK, SavePredictionResponse{
		Success:    true,
		Message:    "Prediction saved",
		Prediction: receipt.Prediction,
	})
}

// Check is one readiness probe.
type Check func(ctx context.Context) error

type HealthHandler struct {
	version string
	checks  map[string]Check
}

func NewHealthHandler(version string, checks map[string]Check) *HealthHandler {
	return &HealthHandler{version: version, checks: checks}
}

func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": h.version})
}

// Ready runs every check and answers 503 if any of them fails.
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	results := make(map[string]string, len(h.checks))
	status := http.StatusOK
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			results[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}

	state := "ready"
	if status != http.StatusOK {
		state = "not ready"
	}
	c.JSON(status, gin.H{"status": state, "checks": results})
}
