package calculations

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/cloud-ru/mcp-investment-sim-go/pkg/utils"
)

const (
	// FinancedMismatchTolerance допустимое расхождение сумм кредитных линий и позиций
	FinancedMismatchTolerance = 1.0

	// DebtToIncomeWarningPercent порог предупреждения по долговой нагрузке
	DebtToIncomeWarningPercent = 40.0
)

// CreditLinePayments рассчитывает платеж по каждой кредитной линии.
// Тело кредита всегда считается из финансируемого остатка выбранных позиций линии;
// TotalAmount линии используется только для проверки расхождения в Analyze.
func CreditLinePayments(agg *AggregateResult, lines []CreditLine) ([]CreditLinePayment, error) {
	if agg == nil {
		return nil, invalidf("отсутствуют итоги по позициям")
	}

	if err := checkItemOwnership(lines); err != nil {
		return nil, err
	}

	balances := agg.selectedBalances()
	payments := make([]CreditLinePayment, 0, len(lines))

	for _, line := range lines {
		if err := validateCreditLine(line); err != nil {
			return nil, err
		}

		principal := 0.0
		seen := make(map[string]bool, len(line.ItemIDs))
		for _, id := range line.ItemIDs {
			if seen[id] {
				continue
			}
			seen[id] = true
			principal += balances[id]
		}

		payments = append(payments, CreditLinePayment{
			CreditLineID:   line.ID,
			Principal:      principal,
			CustomTotal:    line.TotalAmount,
			AnnualRate:     line.AnnualRate,
			TermMonths:     line.TermMonths,
			MonthlyPayment: annuityPayment(principal, line.AnnualRate, line.TermMonths),
		})
	}

	return payments, nil
}

// TotalMonthlyPayment суммирует платежи всех кредитных линий
func TotalMonthlyPayment(payments []CreditLinePayment) float64 {
	values := make([]float64, len(payments))
	for i, p := range payments {
		values[i] = p.MonthlyPayment
	}
	return floats.Sum(values)
}

// checkItemOwnership запрещает финансировать одну позицию несколькими линиями:
// иначе ее остаток амортизировался бы дважды
func checkItemOwnership(lines []CreditLine) error {
	owner := make(map[string]string)
	for _, line := range lines {
		for _, id := range line.ItemIDs {
			prev, ok := owner[id]
			if ok && prev != line.ID {
				return invalidf("позиция %q входит в кредитные линии %q и %q", id, prev, line.ID)
			}
			owner[id] = line.ID
		}
	}
	return nil
}

func validateCreditLine(line CreditLine) error {
	if !utils.AllFinite(line.TotalAmount, line.AnnualRate) {
		return invalidf("кредитная линия %q: значение не является конечным числом", line.ID)
	}
	if line.TotalAmount < 0 {
		return invalidf("кредитная линия %q: сумма не может быть отрицательной (%.2f)", line.ID, line.TotalAmount)
	}
	if line.AnnualRate < 0 {
		return invalidf("кредитная линия %q: ставка не может быть отрицательной (%.4f)", line.ID, line.AnnualRate)
	}
	if line.TermMonths < 1 {
		return invalidf("кредитная линия %q: срок должен быть ≥ 1, получено %d", line.ID, line.TermMonths)
	}
	return nil
}

// Analyze рассчитывает показатели портфеля и формирует предупреждения.
// creditLines содержит пользовательские кредитные линии (может быть nil), они
// используются только для сверки с рассчитанной суммой финансирования.
func Analyze(agg *AggregateResult, monthlyPaymentTotal, estimatedMonthlyIncome, grossMarginPercentage float64,
	creditLines []CreditLine) (*FinancialAnalysis, []Alert, error) {

	if agg == nil {
		return nil, nil, invalidf("отсутствуют итоги по позициям")
	}
	if !utils.AllFinite(monthlyPaymentTotal, estimatedMonthlyIncome, grossMarginPercentage) {
		return nil, nil, invalidf("параметры анализа должны быть конечными числами")
	}
	if monthlyPaymentTotal < 0 {
		return nil, nil, invalidf("сумма платежей не может быть отрицательной (%.2f)", monthlyPaymentTotal)
	}
	if estimatedMonthlyIncome < 0 {
		return nil, nil, invalidf("доход не может быть отрицательным (%.2f)", estimatedMonthlyIncome)
	}
	if grossMarginPercentage < 0 || grossMarginPercentage > 100 {
		return nil, nil, invalidf("валовая маржа должна быть в диапазоне [0; 100], получено %.2f", grossMarginPercentage)
	}
	for _, line := range creditLines {
		if err := validateCreditLine(line); err != nil {
			return nil, nil, err
		}
	}

	netMonthlyIncome := estimatedMonthlyIncome * grossMarginPercentage / 100.0

	analysis := &FinancialAnalysis{
		TotalInvestment:     agg.TotalAmount,
		TotalAdvances:       agg.TotalAdvance,
		TotalFinanced:       agg.TotalFinanced,
		MonthlyPaymentTotal: monthlyPaymentTotal,
		NetMonthlyIncome:    netMonthlyIncome,
		FreeCashFlow:        netMonthlyIncome - monthlyPaymentTotal,
	}

	if estimatedMonthlyIncome > 0 {
		analysis.DebtToIncomeRatio = monthlyPaymentTotal / estimatedMonthlyIncome * 100
	}

	// Точка безубыточности и срок окупаемости считаются одинаково
	if netMonthlyIncome > 0 {
		analysis.BreakEvenMonths = utils.Float64Ptr(agg.TotalAmount / netMonthlyIncome)
		analysis.PaybackPeriod = utils.Float64Ptr(agg.TotalAmount / netMonthlyIncome)
	}

	if agg.TotalAmount > 0 {
		analysis.ROI = netMonthlyIncome * 12 / agg.TotalAmount * 100
		analysis.Leverage = agg.TotalFinanced / agg.TotalAmount * 100
	}

	if monthlyPaymentTotal > 0 {
		analysis.PaymentCoverage = utils.Float64Ptr(netMonthlyIncome / monthlyPaymentTotal)
	}

	alerts := buildAlerts(agg, analysis, estimatedMonthlyIncome, creditLines)
	return analysis, alerts, nil
}

func buildAlerts(agg *AggregateResult, analysis *FinancialAnalysis, estimatedMonthlyIncome float64,
	creditLines []CreditLine) []Alert {

	alerts := []Alert{}

	if len(creditLines) > 0 {
		customTotal := 0.0
		for _, line := range creditLines {
			customTotal += line.TotalAmount
		}
		if math.Abs(customTotal-agg.TotalFinanced) > FinancedMismatchTolerance {
			alerts = append(alerts, Alert{
				Type: AlertWarning,
				Code: AlertCodeFinancedMismatch,
				Message: fmt.Sprintf("сумма кредитных линий (%.2f) не совпадает с финансируемым остатком позиций (%.2f), разница %.2f",
					customTotal, agg.TotalFinanced, customTotal-agg.TotalFinanced),
			})
		}

		alerts = append(alerts, coverageAlerts(agg, creditLines)...)
	}

	if estimatedMonthlyIncome == 0 {
		alerts = append(alerts, Alert{
			Type:    AlertInfo,
			Code:    AlertCodeNoIncome,
			Message: "ожидаемый доход не указан: срок окупаемости и долговая нагрузка не определены",
		})
	}

	if analysis.FreeCashFlow < 0 {
		alerts = append(alerts, Alert{
			Type: AlertError,
			Code: AlertCodeNegativeCashFlow,
			Message: fmt.Sprintf("свободный денежный поток отрицательный (%.2f): чистый доход %.2f не покрывает платежи %.2f",
				analysis.FreeCashFlow, analysis.NetMonthlyIncome, analysis.MonthlyPaymentTotal),
		})
	}

	if analysis.DebtToIncomeRatio > DebtToIncomeWarningPercent {
		alerts = append(alerts, Alert{
			Type: AlertWarning,
			Code: AlertCodeHighDebtToIncome,
			Message: fmt.Sprintf("долговая нагрузка %.2f%% превышает %.0f%% дохода",
				analysis.DebtToIncomeRatio, DebtToIncomeWarningPercent),
		})
	}

	return alerts
}

// coverageAlerts сообщает о ссылках на неизвестные позиции и о позициях без кредитной линии
func coverageAlerts(agg *AggregateResult, creditLines []CreditLine) []Alert {
	balances := agg.selectedBalances()
	covered := make(map[string]bool)
	unknown := make(map[string]bool)

	for _, line := range creditLines {
		for _, id := range line.ItemIDs {
			if _, ok := balances[id]; ok {
				covered[id] = true
			} else {
				unknown[id] = true
			}
		}
	}

	var alerts []Alert
	if len(unknown) > 0 {
		alerts = append(alerts, Alert{
			Type:    AlertInfo,
			Code:    AlertCodeUnknownCreditItem,
			Message: fmt.Sprintf("кредитные линии ссылаются на невыбранные или неизвестные позиции: %v", sortedKeys(unknown)),
		})
	}

	uncovered := make(map[string]bool)
	for _, split := range agg.PerItem {
		if split.FinanceBalance > 0 && !covered[split.ID] {
			uncovered[split.ID] = true
		}
	}
	if len(uncovered) > 0 {
		alerts = append(alerts, Alert{
			Type:    AlertInfo,
			Code:    AlertCodeUncoveredFinancing,
			Message: fmt.Sprintf("финансируемый остаток позиций не покрыт кредитными линиями: %v", sortedKeys(uncovered)),
		})
	}
	return alerts
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
