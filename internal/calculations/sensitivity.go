package calculations

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/cloud-ru/mcp-investment-sim-go/pkg/utils"
)

// MaxSensitivitySteps ограничивает количество точек одного диапазона
const MaxSensitivitySteps = 10000

// steps возвращает количество шагов диапазона. Вырожденный диапазон (From == To)
// дает один шаг и удерживает отклонение постоянным.
func (r DeltaRange) steps(step float64) (int, error) {
	if !utils.AllFinite(r.From, r.To) {
		return 0, invalidf("границы диапазона должны быть конечными числами")
	}
	if r.From > r.To {
		return 0, invalidf("начало диапазона (%g) больше конца (%g)", r.From, r.To)
	}
	if r.From == r.To {
		return 1, nil
	}
	// Допуск защищает от потери последней точки из-за погрешности деления
	count := math.Floor((r.To-r.From)/step+1e-9) + 1
	if !utils.IsFinite(count) || count > MaxSensitivitySteps {
		return 0, invalidf("диапазон [%g; %g] с шагом %g дает слишком много точек (максимум %d)",
			r.From, r.To, step, MaxSensitivitySteps)
	}
	return int(count), nil
}

func (r DeltaRange) at(i int, step float64) float64 {
	if r.From == r.To {
		return r.From
	}
	return r.From + float64(i)*step
}

// GenerateSensitivity перебирает отклонения ставки (аддитивно, п.п.) и дохода
// (мультипликативно, %) в порядке возрастания и для каждой пары вызывает fn.
// Отрицательные скорректированные ставка и доход заменяются нулем.
func GenerateSensitivity(base SensitivityBase, rateDeltas, incomeDeltas DeltaRange, step float64,
	fn ScenarioFunc) ([]SensitivityPoint, error) {

	if fn == nil {
		return nil, invalidf("не задана функция пересчета")
	}
	if !utils.AllFinite(base.AnnualRate, base.MonthlyIncome, step) {
		return nil, invalidf("параметры анализа чувствительности должны быть конечными числами")
	}
	if step <= 0 {
		return nil, invalidf("шаг должен быть положительным, получено %g", step)
	}

	rateSteps, err := rateDeltas.steps(step)
	if err != nil {
		return nil, err
	}
	incomeSteps, err := incomeDeltas.steps(step)
	if err != nil {
		return nil, err
	}

	count := rateSteps
	switch {
	case rateSteps == 1:
		count = incomeSteps
	case incomeSteps == 1:
	case rateSteps != incomeSteps:
		return nil, invalidf("диапазоны ставки (%d шагов) и дохода (%d шагов) не совпадают", rateSteps, incomeSteps)
	}

	points := make([]SensitivityPoint, 0, count)
	for i := 0; i < count; i++ {
		rateDelta := rateDeltas.at(i, step)
		incomeDelta := incomeDeltas.at(i, step)

		in := ScenarioInputs{
			RateDelta:     rateDelta,
			IncomeDelta:   incomeDelta,
			AnnualRate:    utils.ClampNonNegative(base.AnnualRate + rateDelta),
			MonthlyIncome: utils.ClampNonNegative(base.MonthlyIncome * (1 + incomeDelta/100.0)),
		}

		outcome, err := fn(in)
		if err != nil {
			return nil, fmt.Errorf("сценарий %s: %w", sensitivityLabel(rateDelta, incomeDelta), err)
		}

		points = append(points, SensitivityPoint{
			Label:           sensitivityLabel(rateDelta, incomeDelta),
			RateDelta:       rateDelta,
			IncomeDelta:     incomeDelta,
			AnnualRate:      in.AnnualRate,
			MonthlyIncome:   in.MonthlyIncome,
			MonthlyPayment:  outcome.MonthlyPayment,
			FreeCashFlow:    outcome.FreeCashFlow,
			BreakEvenMonths: outcome.BreakEvenMonths,
			ROI:             outcome.ROI,
		})
	}

	return points, nil
}

func sensitivityLabel(rateDelta, incomeDelta float64) string {
	return fmt.Sprintf("rate %+g%% / income %+g%%", rateDelta, incomeDelta)
}

// SummarizeSensitivity считает разброс ROI и срока безубыточности по кривой
func SummarizeSensitivity(points []SensitivityPoint) SensitivitySummary {
	summary := SensitivitySummary{Points: len(points)}
	if len(points) == 0 {
		return summary
	}

	rois := make([]float64, len(points))
	breakEvens := make([]float64, 0, len(points))
	for i, p := range points {
		rois[i] = p.ROI
		if p.BreakEvenMonths == nil {
			summary.UndefinedBreakEven++
			continue
		}
		breakEvens = append(breakEvens, *p.BreakEvenMonths)
	}

	summary.MinROI = floats.Min(rois)
	summary.MaxROI = floats.Max(rois)
	summary.MeanROI = stat.Mean(rois, nil)

	if len(breakEvens) > 0 {
		summary.MinBreakEvenMonths = utils.Float64Ptr(floats.Min(breakEvens))
		summary.MaxBreakEvenMonths = utils.Float64Ptr(floats.Max(breakEvens))
	}
	return summary
}
