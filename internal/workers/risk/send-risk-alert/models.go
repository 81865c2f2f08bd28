package sendriskalert

import "risk-workers/internal/risk"

const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

type Input struct {
	UserID      string       `json:"userId"`
	Email       string       `json:"email,omitempty"`
	PhoneNumber string       `json:"phoneNumber,omitempty"`
	RiskScores  *risk.Scores `json:"riskScores"`
}

type Output struct {
	AlertSent bool     `json:"alertSent"`
	Channels  []string `json:"channels"`
	RiskLevel string   `json:"riskLevel"`
}
