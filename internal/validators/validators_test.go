package validators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloud-ru/mcp-investment-sim-go/internal/calculations"
	"github.com/cloud-ru/mcp-investment-sim-go/internal/config"
)

func TestValidators(t *testing.T) {
	cfg, _ := config.LoadConfig()

	tests := []struct {
		name      string
		validator func(*config.Config, interface{}) error
		value     interface{}
		wantError bool
	}{
		{
			name:      "valid amount",
			validator: func(cfg *config.Config, v interface{}) error { return CheckAmount(cfg, "amount", v.(float64)) },
			value:     1000000.0,
			wantError: false,
		},
		{
			name:      "zero amount is allowed",
			validator: func(cfg *config.Config, v interface{}) error { return CheckAmount(cfg, "amount", v.(float64)) },
			value:     0.0,
			wantError: false,
		},
		{
			name:      "invalid amount negative",
			validator: func(cfg *config.Config, v interface{}) error { return CheckAmount(cfg, "amount", v.(float64)) },
			value:     -1000.0,
			wantError: true,
		},
		{
			name:      "invalid amount too large",
			validator: func(cfg *config.Config, v interface{}) error { return CheckAmount(cfg, "amount", v.(float64)) },
			value:     1e12,
			wantError: true,
		},
		{
			name:      "valid rate",
			validator: func(cfg *config.Config, v interface{}) error { return CheckRate(cfg, "rate", v.(float64)) },
			value:     12.0,
			wantError: false,
		},
		{
			name:      "invalid rate negative",
			validator: func(cfg *config.Config, v interface{}) error { return CheckRate(cfg, "rate", v.(float64)) },
			value:     -1.0,
			wantError: true,
		},
		{
			name:      "deflation is a valid index rate",
			validator: func(cfg *config.Config, v interface{}) error { return CheckIndexRate(cfg, "inflation", v.(float64)) },
			value:     -2.0,
			wantError: false,
		},
		{
			name:      "NaN index rate",
			validator: func(cfg *config.Config, v interface{}) error { return CheckIndexRate(cfg, "inflation", v.(float64)) },
			value:     math.NaN(),
			wantError: true,
		},
		{
			name:      "valid months",
			validator: func(cfg *config.Config, v interface{}) error { return CheckMonths(cfg, v.(int)) },
			value:     12,
			wantError: false,
		},
		{
			name:      "invalid months zero",
			validator: func(cfg *config.Config, v interface{}) error { return CheckMonths(cfg, v.(int)) },
			value:     0,
			wantError: true,
		},
		{
			name:      "valid income",
			validator: func(cfg *config.Config, v interface{}) error { return CheckIncome(cfg, "income", v.(float64)) },
			value:     10000.0,
			wantError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.validator(cfg, tt.value)
			if tt.wantError {
				assert.ErrorIs(t, err, ErrOutOfRange)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCheckSimulation(t *testing.T) {
	cfg, _ := config.LoadConfig()

	valid := calculations.SimulationInput{
		Items:                  []calculations.InvestmentItem{{ID: "a", Amount: 1000, IsSelected: true}},
		DefaultFinancing:       calculations.Financing{AnnualRate: 10, TermMonths: 12},
		EstimatedMonthlyIncome: 5000,
		GrossMarginPercentage:  30,
	}
	require.NoError(t, CheckSimulation(cfg, valid))

	tooManyItems := valid
	tooManyItems.Items = make([]calculations.InvestmentItem, cfg.MaxItems+1)
	assert.ErrorIs(t, CheckSimulation(cfg, tooManyItems), ErrOutOfRange)

	hugeRate := valid
	hugeRate.CreditLines = []calculations.CreditLine{{ID: "x", TotalAmount: 1, AnnualRate: 500, TermMonths: 12}}
	err := CheckSimulation(cfg, hugeRate)
	require.ErrorIs(t, err, ErrOutOfRange)
	assert.Contains(t, err.Error(), "credit_lines[x].annual_rate")

	longTerm := valid
	longTerm.DefaultFinancing.TermMonths = cfg.MaxMonths + 1
	assert.ErrorIs(t, CheckSimulation(cfg, longTerm), ErrOutOfRange)

	manyScenarios := valid
	manyScenarios.Indexation = &calculations.IndexationSettings{
		Scenarios: make([]calculations.ScenarioParameters, cfg.MaxScenarios+1),
	}
	err = CheckSimulation(cfg, manyScenarios)
	require.ErrorIs(t, err, ErrOutOfRange)
	assert.Contains(t, err.Error(), "scenarios")

	hugeStep := valid
	hugeStep.Indexation = &calculations.IndexationSettings{SampleStepMonths: cfg.MaxMonths + 1}
	err = CheckSimulation(cfg, hugeStep)
	require.ErrorIs(t, err, ErrOutOfRange)
	assert.Contains(t, err.Error(), "sample_step_months")

	negativeStep := valid
	negativeStep.Indexation = &calculations.IndexationSettings{SampleStepMonths: -1}
	assert.ErrorIs(t, CheckSimulation(cfg, negativeStep), ErrOutOfRange)

	defaultStep := valid
	defaultStep.Indexation = &calculations.IndexationSettings{
		Scenarios: []calculations.ScenarioParameters{{Label: "base", InflationRate: 4, SalaryGrowthRate: 3}},
	}
	assert.NoError(t, CheckSimulation(cfg, defaultStep))

	denseSensitivity := valid
	denseSensitivity.Sensitivity = &calculations.SensitivitySettings{
		RateDeltas: calculations.DeltaRange{From: -100, To: 100},
		Step:       0.1,
	}
	assert.ErrorIs(t, CheckSimulation(cfg, denseSensitivity), ErrOutOfRange)
}
