package loan

import "math"

// Annual interest rates by loan type, in percent.
var interestRates = map[string]float64{
	"home": 8.0,
	"car":  9.0,
	"gold": 7.0,
}

const defaultInterestRate = 10.0

// RateFor returns the annual interest rate for a loan type.
func RateFor(loanType string) float64 {
	if rate, ok := interestRates[loanType]; ok {
		return rate
	}
	return defaultInterestRate
}

// CalculateEMI returns the fixed monthly installment for an amortized loan:
// P*r*(1+r)^n / ((1+r)^n - 1) with r the monthly rate, rounded to 2 decimal
// places.
func CalculateEMI(principal, annualRatePercent float64, months int) float64 {
	if months <= 0 {
		return 0
	}
	if annualRatePercent == 0 {
		return round2(principal / float64(months))
	}
	r := (annualRatePercent / 12) / 100
	pow := math.Pow(1+r, float64(months))
	return round2(principal * r * pow / (pow - 1))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
