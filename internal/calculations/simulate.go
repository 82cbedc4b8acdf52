package calculations

import (
	"slices"
)

// DefaultCreditLineID id кредитной линии, создаваемой из Financing
const DefaultCreditLineID = "default"

// Financing задает условия кредита, если кредитные линии не переданы
type Financing struct {
	AnnualRate float64 `json:"annual_rate"`
	TermMonths int     `json:"term_months"`
}

// IndexationSettings задает параметры проекции индексации
type IndexationSettings struct {
	InflationRate    float64              `json:"inflation_rate"`
	SalaryGrowthRate float64              `json:"salary_growth_rate"`
	SampleStepMonths int                  `json:"sample_step_months,omitempty"`
	Scenarios        []ScenarioParameters `json:"scenarios,omitempty"`
}

// SensitivitySettings задает диапазоны анализа чувствительности
type SensitivitySettings struct {
	RateDeltas   DeltaRange `json:"rate_delta_range"`
	IncomeDeltas DeltaRange `json:"income_delta_range"`
	Step         float64    `json:"step"`
}

// SimulationInput полный набор входных данных одной симуляции
type SimulationInput struct {
	Items                  []InvestmentItem     `json:"items"`
	CreditLines            []CreditLine         `json:"credit_lines,omitempty"`
	DefaultFinancing       Financing            `json:"default_financing"`
	EstimatedMonthlyIncome float64              `json:"estimated_monthly_income"`
	GrossMarginPercentage  float64              `json:"gross_margin_percentage"`
	IncludeSchedules       bool                 `json:"include_schedules,omitempty"`
	Indexation             *IndexationSettings  `json:"indexation,omitempty"`
	Sensitivity            *SensitivitySettings `json:"sensitivity,omitempty"`
}

// IndexationResult представляет проекцию для текущих условий
type IndexationResult struct {
	HorizonMonths int                `json:"horizon_months"`
	Samples       []IndexationSample `json:"samples"`
	Final         IndexationSample   `json:"final"`
}

// SimulationResult результат одной симуляции
type SimulationResult struct {
	Aggregate          *AggregateResult       `json:"aggregate"`
	Payments           []CreditLinePayment    `json:"payments"`
	Analysis           *FinancialAnalysis     `json:"analysis"`
	Alerts             []Alert                `json:"alerts"`
	Schedules          []AmortizationSchedule `json:"schedules,omitempty"`
	Indexation         *IndexationResult      `json:"indexation,omitempty"`
	Scenarios          *ScenarioComparison    `json:"scenarios,omitempty"`
	Sensitivity        []SensitivityPoint     `json:"sensitivity,omitempty"`
	SensitivitySummary *SensitivitySummary    `json:"sensitivity_summary,omitempty"`
}

// Simulate выполняет полный расчет: разбиение позиций, платежи по кредитным
// линиям, показатели портфеля и, по запросу, графики, индексацию и чувствительность.
func Simulate(input SimulationInput) (*SimulationResult, error) {
	agg, err := Aggregate(input.Items)
	if err != nil {
		return nil, err
	}

	lines, err := effectiveCreditLines(input, agg)
	if err != nil {
		return nil, err
	}

	payments, err := CreditLinePayments(agg, lines)
	if err != nil {
		return nil, err
	}
	total := TotalMonthlyPayment(payments)

	analysis, alerts, err := Analyze(agg, total, input.EstimatedMonthlyIncome,
		input.GrossMarginPercentage, input.CreditLines)
	if err != nil {
		return nil, err
	}

	result := &SimulationResult{
		Aggregate: agg,
		Payments:  payments,
		Analysis:  analysis,
		Alerts:    alerts,
	}

	if input.IncludeSchedules {
		for _, p := range payments {
			schedule, err := AnnuitySchedule(p.Principal, p.AnnualRate, p.TermMonths)
			if err != nil {
				return nil, err
			}
			schedule.CreditLineID = p.CreditLineID
			result.Schedules = append(result.Schedules, *schedule)
		}
	}

	if input.Indexation != nil {
		if err := simulateIndexation(input, payments, total, result); err != nil {
			return nil, err
		}
	}

	if input.Sensitivity != nil {
		points, err := simulateSensitivity(input, agg, lines, payments)
		if err != nil {
			return nil, err
		}
		summary := SummarizeSensitivity(points)
		result.Sensitivity = points
		result.SensitivitySummary = &summary
	}

	return result, nil
}

// effectiveCreditLines возвращает пользовательские линии либо одну линию
// по условиям Financing на весь финансируемый остаток
func effectiveCreditLines(input SimulationInput, agg *AggregateResult) ([]CreditLine, error) {
	if len(input.CreditLines) > 0 {
		return input.CreditLines, nil
	}
	if agg.TotalFinanced == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(agg.PerItem))
	for _, split := range agg.PerItem {
		ids = append(ids, split.ID)
	}

	line := CreditLine{
		ID:          DefaultCreditLineID,
		ItemIDs:     ids,
		TotalAmount: agg.TotalFinanced,
		AnnualRate:  input.DefaultFinancing.AnnualRate,
		TermMonths:  input.DefaultFinancing.TermMonths,
	}
	if err := validateCreditLine(line); err != nil {
		return nil, err
	}
	return []CreditLine{line}, nil
}

func simulateIndexation(input SimulationInput, payments []CreditLinePayment, total float64,
	result *SimulationResult) error {

	settings := input.Indexation
	step := settings.SampleStepMonths
	if step == 0 {
		step = DefaultSampleStepMonths
	}

	term := longestTerm(payments)
	if term == 0 {
		term = input.DefaultFinancing.TermMonths
	}

	seq, err := Project(total, input.EstimatedMonthlyIncome, term,
		settings.InflationRate, settings.SalaryGrowthRate, step)
	if err != nil {
		return err
	}

	indexation := &IndexationResult{
		HorizonMonths: HorizonMonths(term),
		Samples:       slices.Collect(seq),
	}
	if term >= 1 {
		final, err := FinalMetrics(total, input.EstimatedMonthlyIncome, term,
			settings.InflationRate, settings.SalaryGrowthRate)
		if err != nil {
			return err
		}
		indexation.Final = final
	}
	result.Indexation = indexation

	if len(settings.Scenarios) > 0 && term >= 1 {
		comparison, err := CompareScenarios(total, input.EstimatedMonthlyIncome, term, settings.Scenarios, step)
		if err != nil {
			return err
		}
		result.Scenarios = comparison
	}
	return nil
}

// simulateSensitivity пересчитывает платежи и анализ, сдвигая ставку каждой
// кредитной линии на одно и то же отклонение
func simulateSensitivity(input SimulationInput, agg *AggregateResult, lines []CreditLine,
	payments []CreditLinePayment) ([]SensitivityPoint, error) {

	settings := input.Sensitivity
	base := SensitivityBase{
		AnnualRate:    weightedRate(payments, input.DefaultFinancing.AnnualRate),
		MonthlyIncome: input.EstimatedMonthlyIncome,
	}

	fn := func(in ScenarioInputs) (ScenarioOutcome, error) {
		shifted := make([]CreditLine, len(lines))
		for i, line := range lines {
			line.AnnualRate = max(0, line.AnnualRate+in.RateDelta)
			shifted[i] = line
		}

		adjusted, err := CreditLinePayments(agg, shifted)
		if err != nil {
			return ScenarioOutcome{}, err
		}

		analysis, _, err := Analyze(agg, TotalMonthlyPayment(adjusted), in.MonthlyIncome,
			input.GrossMarginPercentage, nil)
		if err != nil {
			return ScenarioOutcome{}, err
		}
		return ScenarioOutcome{
			MonthlyPayment:  analysis.MonthlyPaymentTotal,
			FreeCashFlow:    analysis.FreeCashFlow,
			BreakEvenMonths: analysis.BreakEvenMonths,
			ROI:             analysis.ROI,
		}, nil
	}

	return GenerateSensitivity(base, settings.RateDeltas, settings.IncomeDeltas, settings.Step, fn)
}

func longestTerm(payments []CreditLinePayment) int {
	term := 0
	for _, p := range payments {
		term = max(term, p.TermMonths)
	}
	return term
}

// weightedRate возвращает среднюю ставку, взвешенную по телу кредита
func weightedRate(payments []CreditLinePayment, fallback float64) float64 {
	principal := 0.0
	weighted := 0.0
	for _, p := range payments {
		principal += p.Principal
		weighted += p.Principal * p.AnnualRate
	}
	if principal == 0 {
		return fallback
	}
	return weighted / principal
}
