package calculations

import (
	"iter"
	"math"

	"github.com/cloud-ru/mcp-investment-sim-go/pkg/utils"
)

const (
	// DefaultSampleStepMonths шаг выборки проекции по умолчанию
	DefaultSampleStepMonths = 6

	// MaxOutlookMonths горизонт итоговых показателей (среднесрочный прогноз)
	MaxOutlookMonths = 60
)

// Project моделирует рост платежа (инфляция) и дохода (рост зарплат)
// с ежемесячной капитализацией. Точки: месяц 1, затем каждый кратный
// sampleStepMonths месяц до termMonths включительно.
//
// Последовательность ленивая и перезапускаемая. При termMonths < 1 она пуста.
func Project(initialInstallment, initialIncome float64, termMonths int,
	inflationRatePercent, salaryGrowthRatePercent float64, sampleStepMonths int) (iter.Seq[IndexationSample], error) {

	if err := validateProjection(initialInstallment, initialIncome, inflationRatePercent, salaryGrowthRatePercent); err != nil {
		return nil, err
	}
	if sampleStepMonths < 1 {
		return nil, invalidf("шаг выборки должен быть ≥ 1, получено %d", sampleStepMonths)
	}

	return func(yield func(IndexationSample) bool) {
		if termMonths < 1 {
			return
		}
		if !yield(indexAt(initialInstallment, initialIncome, inflationRatePercent, salaryGrowthRatePercent, 1)) {
			return
		}
		for m := sampleStepMonths; m <= termMonths; m += sampleStepMonths {
			if m == 1 {
				continue
			}
			if !yield(indexAt(initialInstallment, initialIncome, inflationRatePercent, salaryGrowthRatePercent, m)) {
				return
			}
		}
	}, nil
}

// HorizonMonths возвращает горизонт итоговых показателей: min(termMonths, 60)
func HorizonMonths(termMonths int) int {
	if termMonths > MaxOutlookMonths {
		return MaxOutlookMonths
	}
	return termMonths
}

// FinalMetrics возвращает платеж, доход и их отношение на горизонте min(termMonths, 60).
// В отличие от Project, которой при termMonths < 1 просто нечего выдавать,
// FinalMetrics обязана вернуть точку на горизонте, а месяца горизонта нет,
// поэтому termMonths < 1 считается ошибкой.
func FinalMetrics(initialInstallment, initialIncome float64, termMonths int,
	inflationRatePercent, salaryGrowthRatePercent float64) (IndexationSample, error) {

	if err := validateProjection(initialInstallment, initialIncome, inflationRatePercent, salaryGrowthRatePercent); err != nil {
		return IndexationSample{}, err
	}
	if termMonths < 1 {
		return IndexationSample{}, invalidf("срок должен быть положительным, получено %d", termMonths)
	}

	return indexAt(initialInstallment, initialIncome, inflationRatePercent, salaryGrowthRatePercent,
		HorizonMonths(termMonths)), nil
}

func indexAt(installment, income, inflationRatePercent, salaryGrowthRatePercent float64, month int) IndexationSample {
	i := inflationRatePercent / 100.0 / 12.0
	s := salaryGrowthRatePercent / 100.0 / 12.0
	elapsed := float64(month - 1)

	sample := IndexationSample{
		Month:       month,
		Installment: installment * math.Pow(1+i, elapsed),
		Income:      income * math.Pow(1+s, elapsed),
	}
	if sample.Income > 0 {
		sample.RatioPercent = utils.Float64Ptr(sample.Installment / sample.Income * 100)
	}
	return sample
}

func validateProjection(installment, income, inflationRatePercent, salaryGrowthRatePercent float64) error {
	if !utils.AllFinite(installment, income, inflationRatePercent, salaryGrowthRatePercent) {
		return invalidf("параметры проекции должны быть конечными числами")
	}
	if installment < 0 {
		return invalidf("начальный платеж не может быть отрицательным (%.2f)", installment)
	}
	if income < 0 {
		return invalidf("начальный доход не может быть отрицательным (%.2f)", income)
	}
	// Месячный множитель 1+r должен оставаться положительным
	if inflationRatePercent <= -1200 || salaryGrowthRatePercent <= -1200 {
		return invalidf("годовая ставка индексации должна быть больше -1200%%")
	}
	return nil
}
