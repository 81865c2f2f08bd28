package risk

import (
	"fmt"
	"math"
)

// Overall combines the category risks with weights 0.35/0.35/0.30.
func Overall(health, financial, scam int) int {
	return int(math.Round(float64(health)*0.35 + float64(financial)*0.35 + float64(scam)*0.30))
}

// Predict scores validated input. It has no failure mode.
func Predict(in Input) Result {
	health := HealthRisk(in.HealthFactors)
	financial := FinancialRisk(in.FinancialFactors)
	scam := ScamRisk(in.ScamVulnerabilityFactors)

	return Result{
		Scores: Scores{
			HealthRisk:    health,
			FinancialRisk: financial,
			ScamRisk:      scam,
			OverallRisk:   Overall(health, financial, scam),
		},
		Explanation: Explanation{
			HealthExplanation:    ExplainHealth(in.HealthFactors),
			FinancialExplanation: ExplainFinancial(in.FinancialFactors),
			ScamExplanation:      ExplainScam(in.ScamVulnerabilityFactors),
		},
	}
}

// Assess validates a raw payload and scores it.
func Assess(payload []byte) (Result, error) {
	in, err := Validate(payload)
	if err != nil {
		return Result{}, err
	}
	return Predict(in), nil
}

type Level string

const (
	LevelLow      Level = "low"
	LevelModerate Level = "moderate"
	LevelHigh     Level = "high"
	LevelCritical Level = "critical"
)

var levelRank = map[Level]int{
	LevelLow:      0,
	LevelModerate: 1,
	LevelHigh:     2,
	LevelCritical: 3,
}

// LevelFor buckets a score: low < 30 <= moderate < 50 <= high < 75 <= critical.
func LevelFor(score int) Level {
	switch {
	case score < 30:
		return LevelLow
	case score < 50:
		return LevelModerate
	case score < 75:
		return LevelHigh
	default:
		return LevelCritical
	}
}

func ParseLevel(s string) (Level, error) {
	l := Level(s)
	if _, ok := levelRank[l]; !ok {
		return "", fmt.Errorf("unknown risk level %q", s)
	}
	return l, nil
}

// AtLeast reports whether l is as severe as other or more.
func (l Level) AtLeast(other Level) bool {
	return levelRank[l] >= levelRank[other]
}

// Levels is the level of every score in a Scores value.
type Levels struct {
	Health    Level `json:"healthRisk"`
	Financial Level `json:"financialRisk"`
	Scam      Level `json:"scamRisk"`
	Overall   Level `json:"overallRisk"`
}

func LevelsFor(s Scores) Levels {
	return Levels{
		Health:    LevelFor(s.HealthRisk),
		Financial: LevelFor(s.FinancialRisk),
		Scam:      LevelFor(s.ScamRisk),
		Overall:   LevelFor(s.OverallRisk),
	}
}
