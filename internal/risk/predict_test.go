package risk

import (
	"encoding/json"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func midpointInput() Input {
	return Input{
		HealthFactors: HealthFactors{
			ExerciseFrequency:  50,
			SleepHours:         7,
			StressLevel:        50,
			AlcoholConsumption: 50,
			SmokingStatus:      50,
			DietQuality:        50,
			MedicalHistory:     []string{},
		},
		FinancialFactors: FinancialFactors{
			MonthlyIncome:       50000,
			MonthlyExpenses:     30000,
			SavingsRate:         50,
			DebtRatio:           50,
			InvestmentKnowledge: 50,
			EmergencyFund:       true,
			CreditScore:         700,
		},
		ScamVulnerabilityFactors: ScamVulnerabilityFactors{
			TechnicalLiteracy:       50,
			OnlineActivityFrequency: 50,
			PublicPersonalInfo:      50,
			PasswordHygiene:         50,
			VerificationHabits:      50,
			PastIncidents:           0,
		},
	}
}

func TestPredict_MidpointFixture(t *testing.T) {
	result := Predict(midpointInput())

	assert.Equal(t, Scores{HealthRisk: 55, FinancialRisk: 0, ScamRisk: 55, OverallRisk: 36}, result.Scores)
}

func TestHealthRisk(t *testing.T) {
	tests := []struct {
		name     string
		factors  HealthFactors
		expected int
	}{
		{
			name: "protective profile",
			factors: HealthFactors{
				ExerciseFrequency: 100, StressLevel: 0, DietQuality: 100, SleepHours: 8,
				AlcoholConsumption: 0, SmokingStatus: 0, MedicalHistory: []string{},
			},
			expected: 53,
		},
		{
			name: "credit saturates at 100",
			factors: HealthFactors{
				ExerciseFrequency: 100, StressLevel: 0, DietQuality: 100, SleepHours: 0,
				AlcoholConsumption: 100, SmokingStatus: 100, MedicalHistory: []string{"a", "b", "c"},
			},
			expected: 0,
		},
		{
			name: "zero credit",
			factors: HealthFactors{
				ExerciseFrequency: 0, StressLevel: 100, DietQuality: 0, SleepHours: 24,
				AlcoholConsumption: 0, SmokingStatus: 0, MedicalHistory: nil,
			},
			expected: 100,
		},
		{
			name: "medical history is capped at 15",
			factors: HealthFactors{
				ExerciseFrequency: 0, StressLevel: 100, DietQuality: 0, SleepHours: 24,
				MedicalHistory: []string{"a", "b", "c", "d", "e", "f"},
			},
			expected: 85,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, HealthRisk(tt.factors))
		})
	}
}

func TestFinancialRisk(t *testing.T) {
	weakest := FinancialFactors{SavingsRate: 0, CreditScore: 300, DebtRatio: 100, InvestmentKnowledge: 0}
	assert.Equal(t, 50, FinancialRisk(weakest))

	mid := midpointInput().FinancialFactors
	assert.Equal(t, 0, FinancialRisk(mid))

	// income and expenses never move the score
	mid.MonthlyIncome, mid.MonthlyExpenses = 0, 90000
	assert.Equal(t, 0, FinancialRisk(mid))
}

func TestSavingsRatio(t *testing.T) {
	assert.InDelta(t, 40.0, SavingsRatio(FinancialFactors{MonthlyIncome: 50000, MonthlyExpenses: 30000}), 1e-9)
	assert.Equal(t, 0.0, SavingsRatio(FinancialFactors{MonthlyIncome: 0, MonthlyExpenses: 30000}))
}

func TestScamRisk(t *testing.T) {
	tests := []struct {
		name     string
		factors  ScamVulnerabilityFactors
		expected int
	}{
		{
			name: "adverse profile",
			factors: ScamVulnerabilityFactors{
				TechnicalLiteracy: 0, PasswordHygiene: 0, VerificationHabits: 0,
				PublicPersonalInfo: 100, OnlineActivityFrequency: 100, PastIncidents: 5,
			},
			expected: 55,
		},
		{
			name:     "multiplier pushes past the ceiling",
			factors:  ScamVulnerabilityFactors{OnlineActivityFrequency: 71},
			expected: 100,
		},
		{
			name:     "no multiplier at exactly 70",
			factors:  ScamVulnerabilityFactors{OnlineActivityFrequency: 70},
			expected: 93,
		},
		{
			name: "credit above 100 floors at zero",
			factors: ScamVulnerabilityFactors{
				TechnicalLiteracy: 100, PasswordHygiene: 100, VerificationHabits: 100,
				PublicPersonalInfo: 100, OnlineActivityFrequency: 100, PastIncidents: 5,
			},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ScamRisk(tt.factors))
		})
	}
}

func TestExplanations_MidpointFixture(t *testing.T) {
	result := Predict(midpointInput())

	health := result.Explanation.HealthExplanation
	require.Len(t, health, 6)
	assert.Equal(t, DirectionPositive, health[0].Direction) // smoking 50 > 30
	assert.InDelta(t, 10.0, health[0].Contribution, 1e-9)
	assert.Equal(t, DirectionNegative, health[2].Direction) // stress 50
	assert.InDelta(t, 0.0, health[2].Contribution, 1e-9)
	assert.Equal(t, DirectionPositive, health[3].Direction) // exercise 50 is not above 50
	assert.InDelta(t, 4.0, health[3].Contribution, 1e-9)
	assert.Equal(t, DirectionNegative, health[4].Direction)
	assert.InDelta(t, 5.0, health[4].Contribution, 1e-9)
	assert.Equal(t, DirectionPositive, health[5].Direction)
	assert.Equal(t, 0.0, health[5].Contribution)

	financial := result.Explanation.FinancialExplanation
	require.Len(t, financial, 6)
	for _, fi := range financial {
		assert.Equal(t, DirectionNegative, fi.Direction, fi.Feature)
	}
	assert.InDelta(t, 5.0, financial[1].Contribution, 1e-9)
	assert.Equal(t, 0.0, financial[4].Contribution)
	assert.Equal(t, 0.0, financial[5].Contribution)

	scam := result.Explanation.ScamExplanation
	require.Len(t, scam, 6)
	assert.Equal(t, DirectionNegative, scam[0].Direction)
	assert.InDelta(t, 7.5, scam[0].Contribution, 1e-9)
	assert.InDelta(t, 2.0, scam[5].Contribution, 1e-9)
}

func TestExplanations_FixedFeatureOrder(t *testing.T) {
	result := Predict(midpointInput())

	names := func(fis []FeatureImportance) []string {
		out := make([]string, len(fis))
		for i, fi := range fis {
			out[i] = fi.Feature
		}
		return out
	}

	assert.Equal(t, []string{
		"Smoking Status", "Alcohol Consumption", "Stress Level",
		"Exercise Frequency", "Sleep Hours", "Medical History",
	}, names(result.Explanation.HealthExplanation))
	assert.Equal(t, []string{
		"Debt Ratio", "Credit Score", "Savings Rate",
		"Investment Knowledge", "Emergency Fund", "Income Stability",
	}, names(result.Explanation.FinancialExplanation))
	assert.Equal(t, []string{
		"Password Hygiene", "Technical Literacy", "Verification Habits",
		"Public Personal Info", "Past Incidents", "Online Activity",
	}, names(result.Explanation.ScamExplanation))
}

func TestExplainFinancial_WeakProfile(t *testing.T) {
	fis := ExplainFinancial(FinancialFactors{
		MonthlyIncome: 10000, DebtRatio: 80, CreditScore: 500, SavingsRate: 10, InvestmentKnowledge: 20,
	})

	for _, fi := range fis {
		assert.Equal(t, DirectionPositive, fi.Direction, fi.Feature)
	}
	assert.InDelta(t, 16.0, fis[0].Contribution, 1e-9)
	assert.InDelta(t, 25.0, fis[1].Contribution, 1e-9)
	assert.InDelta(t, 9.0, fis[2].Contribution, 1e-9)
	assert.InDelta(t, 6.4, fis[3].Contribution, 1e-9)
	assert.Equal(t, 15.0, fis[4].Contribution)
	assert.InDelta(t, 2.0, fis[5].Contribution, 1e-9)
}

func randomInput(r *rand.Rand) Input {
	pct := func() float64 { return math.Round(r.Float64()*1000) / 10 }
	history := make([]string, r.Intn(8))
	for i := range history {
		history[i] = "condition"
	}
	return Input{
		HealthFactors: HealthFactors{
			ExerciseFrequency: pct(), SleepHours: r.Float64() * 24, StressLevel: pct(),
			AlcoholConsumption: pct(), SmokingStatus: pct(), DietQuality: pct(), MedicalHistory: history,
		},
		FinancialFactors: FinancialFactors{
			MonthlyIncome: r.Float64() * 100000, MonthlyExpenses: r.Float64() * 100000,
			SavingsRate: pct(), DebtRatio: pct(), InvestmentKnowledge: pct(),
			EmergencyFund: r.Intn(2) == 0, CreditScore: 300 + r.Float64()*550,
		},
		ScamVulnerabilityFactors: ScamVulnerabilityFactors{
			TechnicalLiteracy: pct(), OnlineActivityFrequency: pct(), PublicPersonalInfo: pct(),
			PasswordHygiene: pct(), VerificationHabits: pct(), PastIncidents: r.Intn(6),
		},
	}
}

func TestPredict_Properties(t *testing.T) {
	r := rand.New(rand.NewSource(42))

	for i := 0; i < 2000; i++ {
		in := randomInput(r)
		first := Predict(in)
		second := Predict(in)

		assert.Equal(t, first, second, "determinism")

		s := first.Scores
		for _, v := range []int{s.HealthRisk, s.FinancialRisk, s.ScamRisk, s.OverallRisk} {
			assert.GreaterOrEqual(t, v, 0)
			assert.LessOrEqual(t, v, 100)
		}
		assert.Equal(t, Overall(s.HealthRisk, s.FinancialRisk, s.ScamRisk), s.OverallRisk)
		assert.InDelta(t, 0.35*float64(s.HealthRisk)+0.35*float64(s.FinancialRisk)+0.30*float64(s.ScamRisk),
			float64(s.OverallRisk), 0.5)

		for _, fis := range [][]FeatureImportance{
			first.Explanation.HealthExplanation,
			first.Explanation.FinancialExplanation,
			first.Explanation.ScamExplanation,
		} {
			require.Len(t, fis, 6)
			for _, fi := range fis {
				assert.Contains(t, []Direction{DirectionPositive, DirectionNegative}, fi.Direction)
			}
		}
	}
}

func TestAssess(t *testing.T) {
	payload, err := json.Marshal(midpointInput())
	require.NoError(t, err)

	result, err := Assess(payload)
	require.NoError(t, err)
	assert.Equal(t, 36, result.Scores.OverallRisk)

	_, err = Assess([]byte(`{"healthFactors":{}}`))
	var failure *ValidationFailure
	require.ErrorAs(t, err, &failure)
}

func TestLevelFor(t *testing.T) {
	tests := []struct {
		score    int
		expected Level
	}{
		{0, LevelLow},
		{29, LevelLow},
		{30, LevelModerate},
		{49, LevelModerate},
		{50, LevelHigh},
		{74, LevelHigh},
		{75, LevelCritical},
		{100, LevelCritical},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, LevelFor(tt.score), "score %d", tt.score)
	}

	assert.True(t, LevelCritical.AtLeast(LevelHigh))
	assert.True(t, LevelHigh.AtLeast(LevelHigh))
	assert.False(t, LevelModerate.AtLeast(LevelHigh))

	levels := LevelsFor(Scores{HealthRisk: 55, FinancialRisk: 0, ScamRisk: 80, OverallRisk: 36})
	assert.Equal(t, Levels{Health: LevelHigh, Financial: LevelLow, Scam: LevelCritical, Overall: LevelModerate}, levels)
}

func TestParseLevel(t *testing.T) {
	l, err := ParseLevel("critical")
	require.NoError(t, err)
	assert.Equal(t, LevelCritical, l)

	_, err = ParseLevel("severe")
	assert.Error(t, err)
}
