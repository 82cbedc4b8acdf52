package calculations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompareScenarios(t *testing.T) {
	scenarios := []ScenarioParameters{
		{Label: "optimistic", InflationRate: 20, SalaryGrowthRate: 30},
		{Label: "base", InflationRate: 40, SalaryGrowthRate: 35},
		{Label: "pessimistic", InflationRate: 80, SalaryGrowthRate: 40},
	}

	result, err := CompareScenarios(2657.14, 10000, 120, scenarios, 6)
	require.NoError(t, err)

	assert.Equal(t, 60, result.HorizonMonths)
	require.Len(t, result.Scenarios, 3)
	for i, sc := range result.Scenarios {
		assert.Equal(t, scenarios[i].Label, sc.Scenario.Label)
		assert.Equal(t, 60, sc.Final.Month)
		assert.Len(t, sc.Samples, 21)
		assert.Equal(t, 120, sc.Samples[len(sc.Samples)-1].Month)
	}

	assert.Equal(t, "optimistic", result.BestLabel)
	assert.Equal(t, "pessimistic", result.WorstLabel)
	require.NotNil(t, result.RatioSpread)
	assert.InDelta(t,
		*result.Scenarios[2].Final.RatioPercent-*result.Scenarios[0].Final.RatioPercent,
		*result.RatioSpread, 1e-9)
}

func TestCompareScenarios_ZeroIncome(t *testing.T) {
	result, err := CompareScenarios(1000, 0, 24, []ScenarioParameters{{Label: "base", InflationRate: 10}}, 6)
	require.NoError(t, err)

	assert.Empty(t, result.BestLabel)
	assert.Nil(t, result.RatioSpread)
}

func TestCompareScenarios_Invalid(t *testing.T) {
	_, err := CompareScenarios(1000, 1000, 24, nil, 6)
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = CompareScenarios(1000, 1000, 0, []ScenarioParameters{{Label: "base"}}, 6)
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = CompareScenarios(1000, 1000, 24, []ScenarioParameters{{Label: "base"}}, 0)
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), `"base"`)
}
