package calculations

import (
	"fmt"
	"slices"

	"github.com/cloud-ru/mcp-investment-sim-go/pkg/utils"
)

// CompareScenarios строит проекцию индексации для каждого сценария
// (например, оптимистичный, базовый, пессимистичный) в исходном порядке
// и определяет лучший и худший сценарий по итоговой долговой нагрузке.
func CompareScenarios(initialInstallment, initialIncome float64, termMonths int,
	scenarios []ScenarioParameters, sampleStepMonths int) (*ScenarioComparison, error) {

	if len(scenarios) == 0 {
		return nil, invalidf("не задан ни один сценарий")
	}
	if termMonths < 1 {
		return nil, invalidf("срок должен быть положительным, получено %d", termMonths)
	}

	comparison := &ScenarioComparison{
		HorizonMonths: HorizonMonths(termMonths),
		Scenarios:     make([]ScenarioProjection, 0, len(scenarios)),
	}

	var best, worst *ScenarioProjection
	for _, sc := range scenarios {
		seq, err := Project(initialInstallment, initialIncome, termMonths,
			sc.InflationRate, sc.SalaryGrowthRate, sampleStepMonths)
		if err != nil {
			return nil, fmt.Errorf("сценарий %q: %w", sc.Label, err)
		}
		final, err := FinalMetrics(initialInstallment, initialIncome, termMonths,
			sc.InflationRate, sc.SalaryGrowthRate)
		if err != nil {
			return nil, fmt.Errorf("сценарий %q: %w", sc.Label, err)
		}

		comparison.Scenarios = append(comparison.Scenarios, ScenarioProjection{
			Scenario: sc,
			Samples:  slices.Collect(seq),
			Final:    final,
		})
	}

	for i := range comparison.Scenarios {
		p := &comparison.Scenarios[i]
		if p.Final.RatioPercent == nil {
			continue
		}
		if best == nil || *p.Final.RatioPercent < *best.Final.RatioPercent {
			best = p
		}
		if worst == nil || *p.Final.RatioPercent > *worst.Final.RatioPercent {
			worst = p
		}
	}

	if best != nil {
		comparison.BestLabel = best.Scenario.Label
		comparison.WorstLabel = worst.Scenario.Label
		comparison.RatioSpread = utils.Float64Ptr(*worst.Final.RatioPercent - *best.Final.RatioPercent)
	}

	return comparison, nil
}
