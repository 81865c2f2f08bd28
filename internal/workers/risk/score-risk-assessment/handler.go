package scoreriskassessment

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"risk-workers/internal/common/errors"
	"risk-workers/internal/common/logger"
	"risk-workers/internal/common/metrics"
	"risk-workers/internal/common/observability"
	"risk-workers/internal/risk"
)

const (
	TaskType = "score-risk-assessment"
	source   = "worker"
)

type Handler struct {
	config     *Config
	logger     logger.Logger
	errHandler *errors.ErrorHandler
	obs        *observability.Observability
	now        func() time.Time
}

func NewHandler(cfg *Config, obs *observability.Observability, log logger.Logger) (*Handler, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}

	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     cfg,
		logger:     log,
		errHandler: errors.NewErrorHandler(log),
		obs:        obs,
		now:        time.Now,
	}, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":             job.GetKey(),
		"processInstanceKey": job.GetProcessInstanceKey(),
	})

	input, err := h.parseInput(job)
	if err != nil {
		h.errHandler.HandleJobError(ctx, client, job, err)
		return err
	}

	output, err := h.Execute(ctx, input)
	if err != nil {
		h.errHandler.HandleJobError(ctx, client, job, err)
		return err
	}

	return h.completeJob(ctx, client, job, output)
}

func (h *Handler) parseInput(job entities.Job) (*Input, error) {
	var input Input
	if err := json.Unmarshal([]byte(job.GetVariables()), &input); err != nil {
		return nil, errors.NewParseError(err)
	}
	return &input, nil
}

// Execute validates and scores the assessment. Validation failures come back as a
// RISK_INPUT_INVALID error carrying the itemized field errors.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	result, err := risk.Assess(input.RiskAssessmentInput)
	if err != nil {
		failure, ok := err.(*risk.ValidationFailure)
		if !ok {
			return nil, err
		}
		metrics.ObserveRejection(source)
		h.logger.Warn("risk assessment input rejected", map[string]interface{}{
			"userId": input.UserID,
			"fields": failure.Fields(),
		})
		return nil, errors.NewRiskInputInvalidError(failure.Error(), failure.Errors)
	}

	s := result.Scores
	levels := risk.LevelsFor(s)
	metrics.ObserveScores(source, s.HealthRisk, s.FinancialRisk, s.ScamRisk, s.OverallRisk)
	h.obs.RecordAssessment(ctx, source, string(levels.Overall))

	return &Output{
		RiskScores:  s,
		Explanation: result.Explanation,
		RiskLevels:  levels,
		AssessedAt:  h.now().UTC().Format(time.RFC3339),
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

	h.logger.Info("risk assessment scored", map[string]interface{}{
		"jobKey":      job.GetKey(),
		"overallRisk": output.RiskScores.OverallRisk,
		"level":       output.RiskLevels.Overall,
	})
	return nil
}
