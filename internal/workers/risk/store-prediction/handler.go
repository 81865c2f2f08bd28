package storeprediction

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"risk-workers/internal/common/errors"
	"risk-workers/internal/common/logger"
	"risk-workers/internal/history"
	"risk-workers/internal/models"
	"risk-workers/internal/risk"
)

const TaskType = "store-prediction"

// Recorder persists a prediction into the user's history.
type Recorder interface {
	Record(ctx context.Context, userID string, p models.Prediction) (history.Receipt, error)
}

type Handler struct {
	config     *Config
	recorder   Recorder
	logger     logger.Logger
	errHandler *errors.ErrorHandler
}

func NewHandler(cfg *Config, recorder Recorder, log logger.Logger) (*Handler, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}
	if recorder == nil {
		return nil, fmt.Errorf("%s requires a history recorder", TaskType)
	}

	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     cfg,
		recorder:   recorder,
		logger:     log,
		errHandler: errors.NewErrorHandler(log),
	}, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":             job.GetKey(),
		"processInstanceKey": job.GetProcessInstanceKey(),
	})

	var input Input
	if err := json.Unmarshal([]byte(job.GetVariables()), &input); err != nil {
		err = errors.NewParseError(err)
		h.errHandler.HandleJobError(ctx, client, job, err)
		return err
	}

	output, err := h.Execute(ctx, &input)
	if err != nil {
		h.errHandler.HandleJobError(ctx, client, job, err)
		return err
	}

	return h.completeJob(ctx, client, job, output)
}

// Execute stores the scored assessment. Scores and explanation are recomputed
// from the validated factors, and supplied scores must agree with them.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input.UserID == "" {
		return nil, errors.NewPredictionInvalidError("userId is required")
	}
	if input.RiskScores == nil {
		return nil, errors.NewPredictionInvalidError("riskScores is required")
	}

	factors, err := risk.Validate(input.RiskAssessmentInput)
	if err != nil {
		return nil, errors.NewPredictionInvalidError(err.Error())
	}

	result := risk.Predict(factors)
	if *input.RiskScores != result.Scores {
		h.logger.Warn("supplied scores do not match factors", map[string]interface{}{
			"userId":   input.UserID,
			"supplied": *input.RiskScores,
			"computed": result.Scores,
		})
		return nil, errors.NewPredictionInvalidError(fmt.Sprintf(
			"riskScores %+v do not match the scores computed from riskAssessmentInput %+v",
			*input.RiskScores, result.Scores))
	}

	prediction := models.NewPrediction(input.UserID, factors, result)

	receipt, err := h.recorder.Record(ctx, input.UserID, prediction)
	if err != nil {
		return nil, errors.NewHistoryStoreFailedError(input.UserID, err)
	}

	return &Output{
		PredictionID: receipt.Prediction.ID,
		StoredAt:     receipt.Prediction.CreatedAt.UTC().Format(time.RFC3339),
		HistorySize:  receipt.HistorySize,
	}, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) error {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.GetKey()).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
		})
		return err
	}

	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
		})
		return err
	}

	h.logger.Info("prediction stored", map[string]interface{}{
		"jobKey":       job.GetKey(),
		"predictionId": output.PredictionID,
		"historySize":  output.HistorySize,
	})
	return nil
}
