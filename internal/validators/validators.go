package validators

import (
	"errors"
	"fmt"

	"github.com/cloud-ru/mcp-investment-sim-go/internal/calculations"
	"github.com/cloud-ru/mcp-investment-sim-go/internal/config"
	"github.com/cloud-ru/mcp-investment-sim-go/pkg/utils"
)

// ErrOutOfRange возвращается, когда параметр выходит за настроенные пределы
var ErrOutOfRange = errors.New("parameter out of range")

// ValidatePositiveNumber проверяет, что число конечно и в допустимом диапазоне
func ValidatePositiveNumber(name string, value float64, minInclusive, maxInclusive float64) error {
	if !utils.IsFinite(value) {
		return fmt.Errorf("%w: %s: значение не является конечным числом", ErrOutOfRange, name)
	}
	if value < minInclusive {
		return fmt.Errorf("%w: %s: значение должно быть ≥ %g", ErrOutOfRange, name, minInclusive)
	}
	if value > maxInclusive {
		return fmt.Errorf("%w: %s: значение слишком велико (>%g)", ErrOutOfRange, name, maxInclusive)
	}
	return nil
}

// ValidateIntRange проверяет, что целое число в допустимом диапазоне
func ValidateIntRange(name string, value int, minInclusive, maxInclusive int) error {
	if value < minInclusive || value > maxInclusive {
		return fmt.Errorf("%w: %s: значение должно быть в диапазоне [%d; %d]", ErrOutOfRange, name, minInclusive, maxInclusive)
	}
	return nil
}

// CheckAmount проверяет денежную сумму
func CheckAmount(cfg *config.Config, name string, amount float64) error {
	return ValidatePositiveNumber(name, amount, 0.0, cfg.MaxAmount)
}

// CheckRate проверяет процентную ставку
func CheckRate(cfg *config.Config, name string, rate float64) error {
	return ValidatePositiveNumber(name, rate, 0.0, cfg.MaxRate)
}

// CheckIndexRate проверяет ставку индексации (может быть отрицательной при дефляции)
func CheckIndexRate(cfg *config.Config, name string, rate float64) error {
	return ValidatePositiveNumber(name, rate, -cfg.MaxRate, cfg.MaxRate)
}

// CheckMonths проверяет срок в месяцах
func CheckMonths(cfg *config.Config, months int) error {
	return ValidateIntRange("term_months", months, 1, cfg.MaxMonths)
}

// CheckIncome проверяет ежемесячный доход
func CheckIncome(cfg *config.Config, name string, income float64) error {
	return ValidatePositiveNumber(name, income, 0.0, cfg.MaxIncome)
}

// CheckSimulation проверяет запрос симуляции на соответствие настроенным пределам.
// Структурные ошибки (например, аванс > 100%) проверяет сам движок.
func CheckSimulation(cfg *config.Config, input calculations.SimulationInput) error {
	if err := ValidateIntRange("items", len(input.Items), 0, cfg.MaxItems); err != nil {
		return err
	}
	for _, item := range input.Items {
		if err := CheckAmount(cfg, fmt.Sprintf("items[%s].amount", item.ID), item.Amount); err != nil {
			return err
		}
	}
	for _, line := range input.CreditLines {
		if err := CheckAmount(cfg, fmt.Sprintf("credit_lines[%s].total_amount", line.ID), line.TotalAmount); err != nil {
			return err
		}
		if err := CheckRate(cfg, fmt.Sprintf("credit_lines[%s].annual_rate", line.ID), line.AnnualRate); err != nil {
			return err
		}
		if err := CheckMonths(cfg, line.TermMonths); err != nil {
			return err
		}
	}
	if err := CheckRate(cfg, "default_financing.annual_rate", input.DefaultFinancing.AnnualRate); err != nil {
		return err
	}
	if input.DefaultFinancing.TermMonths > cfg.MaxMonths {
		return ValidateIntRange("default_financing.term_months", input.DefaultFinancing.TermMonths, 0, cfg.MaxMonths)
	}
	if err := CheckIncome(cfg, "estimated_monthly_income", input.EstimatedMonthlyIncome); err != nil {
		return err
	}
	if ix := input.Indexation; ix != nil {
		if err := CheckIndexRate(cfg, "indexation.inflation_rate", ix.InflationRate); err != nil {
			return err
		}
		if err := CheckIndexRate(cfg, "indexation.salary_growth_rate", ix.SalaryGrowthRate); err != nil {
			return err
		}
		if err := CheckIndexation(cfg, ix.SampleStepMonths, ix.Scenarios); err != nil {
			return err
		}
	}
	if s := input.Sensitivity; s != nil {
		if err := CheckSensitivityPoints(cfg, s.RateDeltas, s.IncomeDeltas, s.Step); err != nil {
			return err
		}
	}
	return nil
}

// CheckIndexation проверяет шаг выборки (0 означает шаг по умолчанию)
// и количество сценариев индексации
func CheckIndexation(cfg *config.Config, sampleStepMonths int, scenarios []calculations.ScenarioParameters) error {
	if err := ValidateIntRange("sample_step_months", sampleStepMonths, 0, cfg.MaxMonths); err != nil {
		return err
	}
	if err := ValidateIntRange("scenarios", len(scenarios), 0, cfg.MaxScenarios); err != nil {
		return err
	}
	for _, sc := range scenarios {
		if err := CheckIndexRate(cfg, fmt.Sprintf("scenarios[%s].inflation_rate", sc.Label), sc.InflationRate); err != nil {
			return err
		}
		if err := CheckIndexRate(cfg, fmt.Sprintf("scenarios[%s].salary_growth_rate", sc.Label), sc.SalaryGrowthRate); err != nil {
			return err
		}
	}
	return nil
}

// CheckSensitivityPoints ограничивает количество точек анализа чувствительности
func CheckSensitivityPoints(cfg *config.Config, rateDeltas, incomeDeltas calculations.DeltaRange, step float64) error {
	if !utils.IsFinite(step) || step <= 0 {
		// Некорректный шаг отклонит сам движок
		return nil
	}
	widest := max(rateDeltas.To-rateDeltas.From, incomeDeltas.To-incomeDeltas.From)
	if !utils.IsFinite(widest) {
		return fmt.Errorf("%w: sensitivity: границы диапазона должны быть конечными", ErrOutOfRange)
	}
	if points := widest/step + 1; points > float64(cfg.MaxSensitivityPoints) {
		return fmt.Errorf("%w: sensitivity: слишком много точек (%.0f > %d)", ErrOutOfRange, points, cfg.MaxSensitivityPoints)
	}
	return nil
}
