package risk

import "math"

// medicalHistoryCap bounds the credit a medical history can add to the health score.
const medicalHistoryCap = 15

// HealthRisk maps health factors to a 0-100 risk. Alcohol and smoking are added to
// the protective credit exactly as the published model does.
func HealthRisk(f HealthFactors) int {
	credit := 0.0

	credit += f.ExerciseFrequency * 0.15
	credit += (100 - f.StressLevel) * 0.15
	credit += f.DietQuality * 0.10

	credit += (100 - f.SleepHours/24*100) * 0.10
	credit += f.AlcoholConsumption * 0.15
	credit += f.SmokingStatus * 0.20

	credit += math.Min(float64(len(f.MedicalHistory)*5), medicalHistoryCap)

	return invert(credit)
}

// ExplainHealth returns the six health features in their fixed order.
func ExplainHealth(f HealthFactors) []FeatureImportance {
	sleepGap := math.Abs(f.SleepHours - 8)

	return []FeatureImportance{
		{
			Feature:      "Smoking Status",
			Importance:   20,
			Direction:    directionIf(f.SmokingStatus > 30),
			Contribution: f.SmokingStatus * 0.2,
		},
		{
			Feature:      "Alcohol Consumption",
			Importance:   15,
			Direction:    directionIf(f.AlcoholConsumption > 40),
			Contribution: f.AlcoholConsumption * 0.15,
		},
		{
			Feature:      "Stress Level",
			Importance:   15,
			Direction:    directionIf(f.StressLevel > 60),
			Contribution: math.Abs((f.StressLevel - 50) * 0.1),
		},
		{
			Feature:      "Exercise Frequency",
			Importance:   15,
			Direction:    directionIf(f.ExerciseFrequency <= 50),
			Contribution: (100 - f.ExerciseFrequency) * 0.08,
		},
		{
			Feature:      "Sleep Hours",
			Importance:   10,
			Direction:    directionIf(sleepGap > 2),
			Contribution: sleepGap * 5,
		},
		{
			Feature:      "Medical History",
			Importance:   25,
			Direction:    DirectionPositive,
			Contribution: math.Min(float64(len(f.MedicalHistory)*5), 25),
		},
	}
}

func directionIf(increasesRisk bool) Direction {
	if increasesRisk {
		return DirectionPositive
	}
	return DirectionNegative
}

// invert clamps a protective credit to [0,100] and turns it into a rounded risk.
func invert(credit float64) int {
	return int(math.Round(100 - clamp(credit, 0, 100)))
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
