package risk

import "math"

// FinancialRisk maps financial factors to a 0-100 risk. The debt ratio enters the
// credit twice, once inverted and once capped; income and expenses do not.
func FinancialRisk(f FinancialFactors) int {
	credit := 0.0

	credit += f.SavingsRate * 0.20
	credit += f.CreditScore / 8.5
	credit += (100 - f.DebtRatio) * 0.20
	credit += f.InvestmentKnowledge * 0.15
	if f.EmergencyFund {
		credit += 15
	}

	credit += math.Min(f.DebtRatio, 100) * 0.15

	return invert(credit)
}

// SavingsRatio is the share of income left after expenses, in percent. It is zero
// when there is no income.
func SavingsRatio(f FinancialFactors) float64 {
	if f.MonthlyIncome <= 0 {
		return 0
	}
	return (f.MonthlyIncome - f.MonthlyExpenses) / f.MonthlyIncome * 100
}

// ExplainFinancial returns the six financial features in their fixed order.
func ExplainFinancial(f FinancialFactors) []FeatureImportance {
	emergency := 0.0
	if !f.EmergencyFund {
		emergency = 15
	}

	return []FeatureImportance{
		{
			Feature:      "Debt Ratio",
			Importance:   20,
			Direction:    directionIf(f.DebtRatio > 50),
			Contribution: f.DebtRatio * 0.2,
		},
		{
			Feature:      "Credit Score",
			Importance:   18,
			Direction:    directionIf(f.CreditScore < 650),
			Contribution: math.Abs((f.CreditScore - 750) / 10),
		},
		{
			Feature:      "Savings Rate",
			Importance:   20,
			Direction:    directionIf(f.SavingsRate <= 20),
			Contribution: (100 - f.SavingsRate) * 0.1,
		},
		{
			Feature:      "Investment Knowledge",
			Importance:   15,
			Direction:    directionIf(f.InvestmentKnowledge < 40),
			Contribution: (100 - f.InvestmentKnowledge) * 0.08,
		},
		{
			Feature:      "Emergency Fund",
			Importance:   15,
			Direction:    directionIf(!f.EmergencyFund),
			Contribution: emergency,
		},
		{
			Feature:      "Income Stability",
			Importance:   12,
			Direction:    directionIf(f.MonthlyIncome < 30000),
			Contribution: math.Max(0, (30000-f.MonthlyIncome)/10000),
		},
	}
}
