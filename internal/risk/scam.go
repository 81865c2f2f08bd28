package risk

import "math"

// heavyOnlineActivity is the activity level above which scam risk is amplified.
const heavyOnlineActivity = 70

// ScamRisk maps scam vulnerability factors to a 0-100 risk. Unlike the other
// scorers the credit is only floored before inversion, then the heavy-use
// multiplier applies and the result is clamped to [0,100].
func ScamRisk(f ScamVulnerabilityFactors) int {
	credit := 0.0

	credit += f.TechnicalLiteracy * 0.20
	credit += f.PasswordHygiene * 0.25
	credit += f.VerificationHabits * 0.20

	credit += f.PublicPersonalInfo * 0.15
	credit += f.OnlineActivityFrequency * 0.10
	credit += float64(f.PastIncidents) * 5

	multiplier := 1.0
	if f.OnlineActivityFrequency > heavyOnlineActivity {
		multiplier = 1.1
	}

	// credit can exceed 100, so the floor at 0 keeps the risk in range
	return int(math.Round(clamp((100-math.Max(credit, 0))*multiplier, 0, 100)))
}

// ExplainScam returns the six scam features in their fixed order.
func ExplainScam(f ScamVulnerabilityFactors) []FeatureImportance {
	return []FeatureImportance{
		{
			Feature:      "Password Hygiene",
			Importance:   25,
			Direction:    directionIf(f.PasswordHygiene < 50),
			Contribution: (100 - f.PasswordHygiene) * 0.15,
		},
		{
			Feature:      "Technical Literacy",
			Importance:   20,
			Direction:    directionIf(f.TechnicalLiteracy < 40),
			Contribution: (100 - f.TechnicalLiteracy) * 0.12,
		},
		{
			Feature:      "Verification Habits",
			Importance:   20,
			Direction:    directionIf(f.VerificationHabits < 50),
			Contribution: (100 - f.VerificationHabits) * 0.12,
		},
		{
			Feature:      "Public Personal Info",
			Importance:   15,
			Direction:    directionIf(f.PublicPersonalInfo > 50),
			Contribution: f.PublicPersonalInfo * 0.08,
		},
		{
			Feature:      "Past Incidents",
			Importance:   12,
			Direction:    directionIf(f.PastIncidents > 0),
			Contribution: float64(f.PastIncidents) * 5,
		},
		{
			Feature:      "Online Activity",
			Importance:   8,
			Direction:    directionIf(f.OnlineActivityFrequency > heavyOnlineActivity),
			Contribution: f.OnlineActivityFrequency / 100 * 4,
		},
	}
}
