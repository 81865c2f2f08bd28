package scoreriskassessment

import (
	"encoding/json"

	"risk-workers/internal/risk"
)

// Input is the job variables. RiskAssessmentInput stays raw so the validator sees
// the payload exactly as the process supplied it.
type Input struct {
	UserID              string          `json:"userId,omitempty"`
	RiskAssessmentInput json.RawMessage `json:"riskAssessmentInput"`
}

type Output struct {
	RiskScores  risk.Scores      `json:"riskScores"`
	Explanation risk.Explanation `json:"explanation"`
	RiskLevels  risk.Levels      `json:"riskLevels"`
	AssessedAt  string           `json:"assessedAt"`
}
