package risk

import "encoding/json"

// HealthFactors are the self-reported lifestyle inputs of the health scorer.
// Every numeric field is on a 0-100 scale except SleepHours (0-24).
type HealthFactors struct {
	ExerciseFrequency  float64  `json:"exerciseFrequency"`
	SleepHours         float64  `json:"sleepHours"`
	StressLevel        float64  `json:"stressLevel"`
	AlcoholConsumption float64  `json:"alcoholConsumption"`
	SmokingStatus      float64  `json:"smokingStatus"`
	DietQuality        float64  `json:"dietQuality"`
	MedicalHistory     []string `json:"medicalHistory"`
}

// FinancialFactors are the inputs of the financial scorer. CreditScore is on the
// 300-850 scale, income and expenses are unbounded above.
type FinancialFactors struct {
	MonthlyIncome       float64 `json:"monthlyIncome"`
	MonthlyExpenses     float64 `json:"monthlyExpenses"`
	SavingsRate         float64 `json:"savingsRate"`
	DebtRatio           float64 `json:"debtRatio"`
	InvestmentKnowledge float64 `json:"investmentKnowledge"`
	EmergencyFund       bool    `json:"emergencyFund"`
	CreditScore         float64 `json:"creditScore"`
}

// ScamVulnerabilityFactors are the inputs of the scam scorer.
type ScamVulnerabilityFactors struct {
	TechnicalLiteracy       float64 `json:"technicalLiteracy"`
	OnlineActivityFrequency float64 `json:"onlineActivityFrequency"`
	PublicPersonalInfo      float64 `json:"publicPersonalInfo"`
	PasswordHygiene         float64 `json:"passwordHygiene"`
	VerificationHabits      float64 `json:"verificationHabits"`
	PastIncidents           int     `json:"pastIncidents"`
}

// UnmarshalJSON accepts integral floats such as 2.0 for PastIncidents, which the
// schema treats as integers.
func (s *ScamVulnerabilityFactors) UnmarshalJSON(data []byte) error {
	type alias ScamVulnerabilityFactors
	aux := struct {
		*alias
		PastIncidents float64 `json:"pastIncidents"`
	}{alias: (*alias)(s)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	s.PastIncidents = int(aux.PastIncidents)
	return nil
}

// Input is one complete risk assessment request.
type Input struct {
	HealthFactors            HealthFactors            `json:"healthFactors"`
	FinancialFactors         FinancialFactors         `json:"financialFactors"`
	ScamVulnerabilityFactors ScamVulnerabilityFactors `json:"scamVulnerabilityFactors"`
}

// Scores holds the per-category and overall risk, each an integer in [0,100].
type Scores struct {
	HealthRisk    int `json:"healthRisk"`
	FinancialRisk int `json:"financialRisk"`
	ScamRisk      int `json:"scamRisk"`
	OverallRisk   int `json:"overallRisk"`
}

type Direction string

const (
	// DirectionPositive marks a feature that increases risk.
	DirectionPositive Direction = "positive"
	// DirectionNegative marks a feature that decreases risk.
	DirectionNegative Direction = "negative"
)

// FeatureImportance is one row of a category explanation. Importance is a fixed
// weight per feature; Direction and Contribution depend on the input.
type FeatureImportance struct {
	Feature      string    `json:"feature"`
	Importance   float64   `json:"importance"`
	Direction    Direction `json:"direction"`
	Contribution float64   `json:"contribution"`
}

// Explanation carries exactly six entries per category, in a fixed order.
type Explanation struct {
	HealthExplanation    []FeatureImportance `json:"healthExplanation"`
	FinancialExplanation []FeatureImportance `json:"financialExplanation"`
	ScamExplanation      []FeatureImportance `json:"scamExplanation"`
}

// Result is the output of one assessment.
type Result struct {
	Scores      Scores      `json:"scores"`
	Explanation Explanation `json:"explanation"`
}
