package sendriskalert

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"risk-workers/internal/common/errors"
	"risk-workers/internal/common/logger"
	"risk-workers/internal/common/validation"
	"risk-workers/internal/risk"
)

const TaskType = "send-risk-alert"

// EmailSender is satisfied by aws.SESClient.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, textBody, htmlBody string) (string, error)
}

// SMSSender is satisfied by aws.SNSClient.
type SMSSender interface {
	SendSMS(ctx context.Context, phone, message string) (string, error)
}

type Handler struct {
	config     *Config
	email      EmailSender
	sms        SMSSender
	logger     logger.Logger
	errHandler *errors.ErrorHandler
}

// NewHandler wires the enabled channels; a nil sender disables its channel.
func NewHandler(cfg *Config, email EmailSender, sms SMSSender, log logger.Logger) (*Handler, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}

	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     cfg,
		email:      email,
		sms:        sms,
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

// Execute alerts the user when the overall level reaches the configured threshold.
// Contacts that are missing or malformed are skipped rather than failed.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input.RiskScores == nil {
		return nil, errors.NewPredictionInvalidError("riskScores is required")
	}

	level := risk.LevelFor(input.RiskScores.OverallRisk)
	output := &Output{Channels: []string{}, RiskLevel: string(level)}

	if !level.AtLeast(h.config.Threshold) {
		h.logger.Debug("below alert threshold", map[string]interface{}{
			"userId":    input.UserID,
			"level":     level,
			"threshold": h.config.Threshold,
		})
		return output, nil
	}

	subject, text, html := composeAlert(level, *input.RiskScores)

	if h.config.EmailEnabled && h.email != nil && input.Email != "" {
		if !validation.ValidateEmail(input.Email) {
			h.logger.Warn("skipping malformed email address", map[string]interface{}{"userId": input.UserID})
		} else {
			id, err := h.email.SendEmail(ctx, input.Email, subject, text, html)
			if err != nil {
				return nil, errors.NewAlertSendFailedError(ChannelEmail, err)
			}
			h.logger.Info("risk alert emailed", map[string]interface{}{"userId": input.UserID, "messageId": id})
			output.Channels = append(output.Channels, ChannelEmail)
		}
	}

	if h.config.SMSEnabled && h.sms != nil && input.PhoneNumber != "" {
		if !validation.ValidatePhone(input.PhoneNumber) {
			h.logger.Warn("skipping malformed phone number", map[string]interface{}{"userId": input.UserID})
		} else {
			id, err := h.sms.SendSMS(ctx, input.PhoneNumber, text)
			if err != nil {
				return nil, errors.NewAlertSendFailedError(ChannelSMS, err)
			}
			h.logger.Info("risk alert texted", map[string]interface{}{"userId": input.UserID, "messageId": id})
			output.Channels = append(output.Channels, ChannelSMS)
		}
	}

	output.AlertSent = len(output.Channels) > 0
	return output, nil
}

func composeAlert(level risk.Level, s risk.Scores) (subject, text, html string) {
	subject = fmt.Sprintf("Your risk assessment: %s overall risk", level)

	lines := []string{
		fmt.Sprintf("Overall risk: %d (%s)", s.OverallRisk, level),
		fmt.Sprintf("Health risk: %d", s.HealthRisk),
		fmt.Sprintf("Financial risk: %d", s.FinancialRisk),
		fmt.Sprintf("Scam vulnerability: %d", s.ScamRisk),
	}
	text = strings.Join(lines, "\n")
	html = "<p>" + strings.Join(lines, "<br>") + "</p>"
	return subject, text, html
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

	h.logger.Info("risk alert processed", map[string]interface{}{
		"jobKey":    job.GetKey(),
		"alertSent": output.AlertSent,
		"channels":  output.Channels,
	})
	return nil
}
