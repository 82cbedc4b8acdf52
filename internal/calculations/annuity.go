package calculations

import (
	"fmt"
	"math"

	"github.com/cloud-ru/mcp-investment-sim-go/pkg/utils"
)

// MonthlyPayment рассчитывает фиксированный ежемесячный платеж по аннуитетной формуле.
// При нулевой ставке платеж равен principal / termMonths.
func MonthlyPayment(principal, annualRatePercent float64, termMonths int) (float64, error) {
	if err := validateLoan(principal, annualRatePercent, termMonths); err != nil {
		return 0, err
	}
	return annuityPayment(principal, annualRatePercent, termMonths), nil
}

func validateLoan(principal, annualRatePercent float64, termMonths int) error {
	if termMonths <= 0 {
		return invalidf("срок должен быть положительным, получено %d", termMonths)
	}
	if !utils.AllFinite(principal, annualRatePercent) {
		return invalidf("сумма или ставка не является конечным числом")
	}
	if principal < 0 {
		return invalidf("сумма кредита не может быть отрицательной (%.2f)", principal)
	}
	if annualRatePercent < 0 {
		return invalidf("ставка не может быть отрицательной (%.4f)", annualRatePercent)
	}
	return nil
}

// annuityPayment считает P * r * (1+r)^n / ((1+r)^n - 1).
// (1+r)^n - 1 вычисляется через Expm1/Log1p, чтобы малые ставки сходились к P/n.
func annuityPayment(principal, annualRatePercent float64, termMonths int) float64 {
	n := float64(termMonths)
	if annualRatePercent == 0 {
		return principal / n
	}

	r := annualRatePercent / 100.0 / 12.0
	growth := math.Expm1(n * math.Log1p(r))
	if math.IsInf(growth, 1) {
		// (1+r)^n переполняется: платеж стремится к процентам за месяц
		return principal * r
	}
	return principal * r * (growth + 1) / growth
}

// AnnuitySchedule рассчитывает график аннуитетного кредита с полной точностью.
// Последний месяц гасит остаток целиком, поэтому итоговый остаток равен нулю.
func AnnuitySchedule(principal, annualRatePercent float64, months int) (*AmortizationSchedule, error) {
	monthlyPayment, err := MonthlyPayment(principal, annualRatePercent, months)
	if err != nil {
		return nil, err
	}

	r := annualRatePercent / 100.0 / 12.0
	schedule := make([]ScheduleEntry, 0, months)
	remaining := principal
	cumI := 0.0
	cumP := 0.0
	totalPaid := 0.0

	for m := 1; m <= months; m++ {
		interest := remaining * r
		principalComponent := monthlyPayment - interest
		payment := monthlyPayment

		if m == months {
			principalComponent = remaining
			payment = principalComponent + interest
		}

		remaining -= principalComponent
		cumI += interest
		cumP += principalComponent
		totalPaid += payment

		if remaining < -0.01 {
			return nil, fmt.Errorf("численная ошибка: остаток кредита стал отрицательным")
		}
		if remaining < 0 {
			remaining = 0
		}

		schedule = append(schedule, ScheduleEntry{
			Month:               m,
			Payment:             payment,
			Interest:            interest,
			PrincipalComponent:  principalComponent,
			RemainingPrincipal:  remaining,
			CumulativeInterest:  cumI,
			CumulativePrincipal: cumP,
		})
	}

	return &AmortizationSchedule{
		Principal:         principal,
		AnnualRatePercent: annualRatePercent,
		TermMonths:        months,
		MonthlyPayment:    monthlyPayment,
		TotalPaid:         totalPaid,
		TotalInterest:     cumI,
		Schedule:          schedule,
	}, nil
}
