// Package report округляет результаты движка для выдачи клиенту.
// Движок считает с полной точностью; округление выполняется только здесь.
package report

import (
	"github.com/shopspring/decimal"

	"github.com/cloud-ru/mcp-investment-sim-go/internal/calculations"
)

// Money округляет денежную сумму до копеек
func Money(v float64) float64 {
	return round(v, 2)
}

// Percent округляет процент до сотых
func Percent(v float64) float64 {
	return round(v, 2)
}

// Months округляет количество месяцев до десятых
func Months(v float64) float64 {
	return round(v, 1)
}

func round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

func roundPtr(v *float64, places int32) *float64 {
	if v == nil {
		return nil
	}
	r := round(*v, places)
	return &r
}

// Aggregate возвращает округленную копию итогов по позициям
func Aggregate(a *calculations.AggregateResult) *calculations.AggregateResult {
	if a == nil {
		return nil
	}
	out := &calculations.AggregateResult{
		PerItem:       make([]calculations.ItemSplit, len(a.PerItem)),
		TotalAmount:   Money(a.TotalAmount),
		TotalAdvance:  Money(a.TotalAdvance),
		TotalFinanced: Money(a.TotalFinanced),
	}
	for i, s := range a.PerItem {
		s.Amount = Money(s.Amount)
		s.AdvanceAmount = Money(s.AdvanceAmount)
		s.FinanceBalance = Money(s.FinanceBalance)
		out.PerItem[i] = s
	}
	return out
}

// Payments округляет платежи по кредитным линиям
func Payments(payments []calculations.CreditLinePayment) []calculations.CreditLinePayment {
	out := make([]calculations.CreditLinePayment, len(payments))
	for i, p := range payments {
		p.Principal = Money(p.Principal)
		p.CustomTotal = Money(p.CustomTotal)
		p.MonthlyPayment = Money(p.MonthlyPayment)
		out[i] = p
	}
	return out
}

// Analysis возвращает округленную копию показателей портфеля.
// Неопределенные показатели остаются nil.
func Analysis(a *calculations.FinancialAnalysis) *calculations.FinancialAnalysis {
	if a == nil {
		return nil
	}
	return &calculations.FinancialAnalysis{
		TotalInvestment:     Money(a.TotalInvestment),
		TotalAdvances:       Money(a.TotalAdvances),
		TotalFinanced:       Money(a.TotalFinanced),
		MonthlyPaymentTotal: Money(a.MonthlyPaymentTotal),
		NetMonthlyIncome:    Money(a.NetMonthlyIncome),
		FreeCashFlow:        Money(a.FreeCashFlow),
		DebtToIncomeRatio:   Percent(a.DebtToIncomeRatio),
		BreakEvenMonths:     roundPtr(a.BreakEvenMonths, 1),
		PaybackPeriod:       roundPtr(a.PaybackPeriod, 1),
		ROI:                 Percent(a.ROI),
		Leverage:            Percent(a.Leverage),
		PaymentCoverage:     roundPtr(a.PaymentCoverage, 2),
	}
}

// Schedule округляет график платежей
func Schedule(s calculations.AmortizationSchedule) calculations.AmortizationSchedule {
	out := s
	out.Principal = Money(s.Principal)
	out.MonthlyPayment = Money(s.MonthlyPayment)
	out.TotalPaid = Money(s.TotalPaid)
	out.TotalInterest = Money(s.TotalInterest)
	out.Schedule = make([]calculations.ScheduleEntry, len(s.Schedule))
	for i, e := range s.Schedule {
		out.Schedule[i] = calculations.ScheduleEntry{
			Month:               e.Month,
			Payment:             Money(e.Payment),
			Interest:            Money(e.Interest),
			PrincipalComponent:  Money(e.PrincipalComponent),
			RemainingPrincipal:  Money(e.RemainingPrincipal),
			CumulativeInterest:  Money(e.CumulativeInterest),
			CumulativePrincipal: Money(e.CumulativePrincipal),
		}
	}
	return out
}

// Sample округляет одну точку проекции индексации
func Sample(s calculations.IndexationSample) calculations.IndexationSample {
	return calculations.IndexationSample{
		Month:        s.Month,
		Installment:  Money(s.Installment),
		Income:       Money(s.Income),
		RatioPercent: roundPtr(s.RatioPercent, 2),
	}
}

// Samples округляет ряд проекции индексации
func Samples(samples []calculations.IndexationSample) []calculations.IndexationSample {
	out := make([]calculations.IndexationSample, len(samples))
	for i, s := range samples {
		out[i] = Sample(s)
	}
	return out
}

// Comparison округляет сравнение сценариев
func Comparison(c *calculations.ScenarioComparison) *calculations.ScenarioComparison {
	if c == nil {
		return nil
	}
	out := &calculations.ScenarioComparison{
		HorizonMonths: c.HorizonMonths,
		Scenarios:     make([]calculations.ScenarioProjection, len(c.Scenarios)),
		BestLabel:     c.BestLabel,
		WorstLabel:    c.WorstLabel,
		RatioSpread:   roundPtr(c.RatioSpread, 2),
	}
	for i, p := range c.Scenarios {
		out.Scenarios[i] = calculations.ScenarioProjection{
			Scenario: p.Scenario,
			Samples:  Samples(p.Samples),
			Final:    Sample(p.Final),
		}
	}
	return out
}

// Sensitivity округляет точки кривой чувствительности
func Sensitivity(points []calculations.SensitivityPoint) []calculations.SensitivityPoint {
	out := make([]calculations.SensitivityPoint, len(points))
	for i, p := range points {
		p.MonthlyIncome = Money(p.MonthlyIncome)
		p.MonthlyPayment = Money(p.MonthlyPayment)
		p.FreeCashFlow = Money(p.FreeCashFlow)
		p.BreakEvenMonths = roundPtr(p.BreakEvenMonths, 1)
		p.ROI = Percent(p.ROI)
		out[i] = p
	}
	return out
}

// SensitivitySummary округляет сводку по кривой чувствительности
func SensitivitySummary(s *calculations.SensitivitySummary) *calculations.SensitivitySummary {
	if s == nil {
		return nil
	}
	return &calculations.SensitivitySummary{
		Points:             s.Points,
		MinROI:             Percent(s.MinROI),
		MaxROI:             Percent(s.MaxROI),
		MeanROI:            Percent(s.MeanROI),
		MinBreakEvenMonths: roundPtr(s.MinBreakEvenMonths, 1),
		MaxBreakEvenMonths: roundPtr(s.MaxBreakEvenMonths, 1),
		UndefinedBreakEven: s.UndefinedBreakEven,
	}
}

// Simulation возвращает округленную копию результата симуляции
func Simulation(r *calculations.SimulationResult) *calculations.SimulationResult {
	if r == nil {
		return nil
	}
	out := &calculations.SimulationResult{
		Aggregate:          Aggregate(r.Aggregate),
		Payments:           Payments(r.Payments),
		Analysis:           Analysis(r.Analysis),
		Alerts:             r.Alerts,
		Scenarios:          Comparison(r.Scenarios),
		SensitivitySummary: SensitivitySummary(r.SensitivitySummary),
	}
	for _, s := range r.Schedules {
		out.Schedules = append(out.Schedules, Schedule(s))
	}
	if r.Indexation != nil {
		out.Indexation = &calculations.IndexationResult{
			HorizonMonths: r.Indexation.HorizonMonths,
			Samples:       Samples(r.Indexation.Samples),
			Final:         Sample(r.Indexation.Final),
		}
	}
	if r.Sensitivity != nil {
		out.Sensitivity = Sensitivity(r.Sensitivity)
	}
	return out
}
