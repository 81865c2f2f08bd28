// internal/models/prediction.go
package models

import (
	"time"

	"risk-workers/internal/risk"
)

// Prediction is one stored assessment in a user's history.
type Prediction struct {
	ID                       string                        `json:"id"`
	UserID                   string                        `json:"userId"`
	HealthFactors            risk.HealthFactors            `json:"healthFactors"`
	FinancialFactors         risk.FinancialFactors         `json:"financialFactors"`
	ScamVulnerabilityFactors risk.ScamVulnerabilityFactors `json:"scamVulnerabilityFactors"`
	RiskScores               risk.Scores                   `json:"riskScores"`
	Explanation              risk.Explanation              `json:"explanation"`
	CreatedAt                time.Time                     `json:"createdAt"`
}

// NewPrediction assembles a prediction from an input and its result. ID and
// CreatedAt are left for the recorder to stamp.
func NewPrediction(userID string, in risk.Input, result risk.Result) Prediction {
	return Prediction{
		UserID:                   userID,
		HealthFactors:            in.HealthFactors,
		FinancialFactors:         in.FinancialFactors,
		ScamVulnerabilityFactors: in.ScamVulnerabilityFactors,
		RiskScores:               result.Scores,
		Explanation:              result.Explanation,
	}
}

const EventPredictionRecorded = "risk.prediction.recorded"

// PredictionEvent is published on the event stream after a prediction is stored.
type PredictionEvent struct {
	EventType    string      `json:"eventType"`
	PredictionID string      `json:"predictionId"`
	UserID       string      `json:"userId"`
	RiskScores   risk.Scores `json:"riskScores"`
	RiskLevels   risk.Levels `json:"riskLevels"`
	CreatedAt    time.Time   `json:"createdAt"`
	OccurredAt   time.Time   `json:"occurredAt"`
}

func NewPredictionEvent(p Prediction, now time.Time) PredictionEvent {
	return PredictionEvent{
		EventType:    EventPredictionRecorded,
		PredictionID: p.ID,
		UserID:       p.UserID,
		RiskScores:   p.RiskScores,
		RiskLevels:   risk.LevelsFor(p.RiskScores),
		CreatedAt:    p.CreatedAt,
		OccurredAt:   now,
	}
}
