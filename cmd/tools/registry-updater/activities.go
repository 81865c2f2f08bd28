package main

import (
	apperrors "risk-workers/internal/common/errors"
	"risk-workers/internal/risk"
	scoreriskassessment "risk-workers/internal/workers/risk/score-risk-assessment"
	sendriskalert "risk-workers/internal/workers/risk/send-risk-alert"
	storeprediction "risk-workers/internal/workers/risk/store-prediction"
	"risk-workers/pkg/registry"
)

const (
	categoryRisk    = "risk"
	workflowPredict = "lifestyle-risk-assessment"
)

func scoresSchema() map[string]interface{} {
	score := map[string]interface{}{"type": "integer", "minimum": 0, "maximum": 100}
	return map[string]interface{}{
		"type":     "object",
		"required": []string{"healthRisk", "financialRisk", "scamRisk", "overallRisk"},
		"properties": map[string]interface{}{
			"healthRisk":    score,
			"financialRisk": score,
			"scamRisk":      score,
			"overallRisk":   score,
		},
	}
}

func codes(cs ...apperrors.ErrorCode) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = string(c)
	}
	return out
}

// builtinActivities describes every worker this module ships, using each
// worker's own task type and default timeout.
func builtinActivities(version string) []registry.Activity {
	return []registry.Activity{
		{
			ID:                   scoreriskassessment.TaskType,
			DisplayName:          "Score Risk Assessment",
			Description:          "Validates lifestyle factors and computes health, financial, scam and overall risk with explanations",
			Category:             categoryRisk,
			Version:              version,
			TaskType:             scoreriskassessment.TaskType,
			ImplementationStatus: "completed",
			InputSchema: map[string]interface{}{
				"type":     "object",
				"required": []string{"riskAssessmentInput"},
				"properties": map[string]interface{}{
					"userId":              map[string]interface{}{"type": "string"},
					"riskAssessmentInput": risk.InputSchema(),
				},
			},
			OutputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"riskScores":  scoresSchema(),
					"explanation": map[string]interface{}{"type": "object"},
					"riskLevels":  map[string]interface{}{"type": "object"},
					"assessedAt":  map[string]interface{}{"type": "string", "format": "date-time"},
				},
			},
			ErrorCodes: codes(apperrors.ErrCodeParseError, apperrors.ErrCodeRiskInputInvalid),
			Timeout:    scoreriskassessment.DefaultConfig().Timeout.String(),
			Retries:    apperrors.GetRetryCount(apperrors.ErrCodeRiskInputInvalid),
			Workflows:  []string{workflowPredict},
			Tags:       []string{"risk", "scoring"},
		},
		{
			ID:                   storeprediction.TaskType,
			DisplayName:          "Store Prediction",
			Description:          "Appends a scored assessment to the user's prediction history",
			Category:             categoryRisk,
			Version:              version,
			TaskType:             storeprediction.TaskType,
			ImplementationStatus: "completed",
			InputSchema: map[string]interface{}{
				"type":     "object",
				"required": []string{"userId", "riskScores"},
				"properties": map[string]interface{}{
					"userId":              map[string]interface{}{"type": "string"},
					"riskAssessmentInput": map[string]interface{}{"type": "object"},
					"riskScores":          scoresSchema(),
					"explanation":         map[string]interface{}{"type": "object"},
				},
			},
			OutputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"predictionId": map[string]interface{}{"type": "string"},
					"storedAt":     map[string]interface{}{"type": "string", "format": "date-time"},
					"historySize":  map[string]interface{}{"type": "integer"},
				},
			},
			ErrorCodes: codes(apperrors.ErrCodeParseError, apperrors.ErrCodePredictionInvalid, apperrors.ErrCodeHistoryStoreFailed),
			Timeout:    storeprediction.DefaultConfig().Timeout.String(),
			Retries:    apperrors.GetRetryCount(apperrors.ErrCodeHistoryStoreFailed),
			Workflows:  []string{workflowPredict},
			Tags:       []string{"risk", "history"},
		},
		{
			ID:                   sendriskalert.TaskType,
			DisplayName:          "Send Risk Alert",
			Description:          "Notifies the user by email or SMS when overall risk reaches the alert threshold",
			Category:             categoryRisk,
			Version:              version,
			TaskType:             sendriskalert.TaskType,
			ImplementationStatus: "completed",
			InputSchema: map[string]interface{}{
				"type":     "object",
				"required": []string{"riskScores"},
				"properties": map[string]interface{}{
					"userId":      map[string]interface{}{"type": "string"},
					"email":       map[string]interface{}{"type": "string"},
					"phoneNumber": map[string]interface{}{"type": "string"},
					"riskScores":  scoresSchema(),
				},
			},
			OutputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"alertSent": map[string]interface{}{"type": "boolean"},
					"channels":  map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
					"riskLevel": map[string]interface{}{"type": "string"},
				},
			},
			ErrorCodes: codes(apperrors.ErrCodeParseError, apperrors.ErrCodePredictionInvalid, apperrors.ErrCodeAlertSendFailed),
			Timeout:    sendriskalert.DefaultConfig().Timeout.String(),
			Retries:    apperrors.GetRetryCount(apperrors.ErrCodeAlertSendFailed),
			Workflows:  []string{workflowPredict},
			Tags:       []string{"risk", "notification"},
		},
	}
}
