package storeprediction

import (
	"encoding/json"

	"risk-workers/internal/risk"
)

type Input struct {
	UserID              string           `json:"userId"`
	RiskAssessmentInput json.RawMessage  `json:"riskAssessmentInput"`
	RiskScores          *risk.Scores     `json:"riskScores"`
	Explanation         risk.Explanation `json:"explanation"`
}

type Output struct {
	PredictionID string `json:"predictionId"`
	StoredAt     string `json:"storedAt"`
	HistorySize  int    `json:"historySize"`
}
