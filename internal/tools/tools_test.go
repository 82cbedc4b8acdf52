package tools

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/cloud-ru/mcp-investment-sim-go/internal/calculations"
	"github.com/cloud-ru/mcp-investment-sim-go/internal/config"
	"github.com/cloud-ru/mcp-investment-sim-go/internal/metrics"
	"github.com/cloud-ru/mcp-investment-sim-go/internal/validators"
)

func testRegistry(t *testing.T) map[string]ToolHandler {
	t.Helper()
	cfg, err := config.LoadConfig()
	require.NoError(t, err)
	return Registry(cfg, noop.NewTracerProvider().Tracer("test"), zerolog.Nop())
}

func portfolioParams() map[string]interface{} {
	return map[string]interface{}{
		"items": []interface{}{
			map[string]interface{}{
				"id":                 "equipment",
				"amount":             100000.0,
				"advance_percentage": 20.0,
				"is_selected":        true,
			},
		},
		"default_financing": map[string]interface{}{
			"annual_rate": 12.0,
			"term_months": 36.0,
		},
		"estimated_monthly_income": 20000.0,
		"gross_margin_percentage":  40.0,
	}
}

func TestNames(t *testing.T) {
	names := Names(testRegistry(t))
	assert.Equal(t, []string{
		ToolAmortizationSchedule,
		ToolAnalyzeInvestment,
		ToolCompareScenarios,
		ToolMonthlyPayment,
		ToolProjectIndexation,
		ToolSensitivityAnalysis,
	}, names)
}

func TestMonthlyPaymentHandler(t *testing.T) {
	handler := testRegistry(t)[ToolMonthlyPayment]
	before := testutil.ToFloat64(metrics.ToolCalls.WithLabelValues(ToolMonthlyPayment, "success"))

	out, err := handler(context.Background(), map[string]interface{}{
		"principal":           80000.0,
		"annual_rate_percent": 12.0,
		"term_months":         36.0,
	})
	require.NoError(t, err)

	result, ok := out.(MonthlyPaymentReport)
	require.True(t, ok)
	assert.Equal(t, 2657.14, result.MonthlyPayment)
	assert.Equal(t, 36, result.TermMonths)
	assert.NotEmpty(t, result.SimulationID)
	assert.InDelta(t, 15657.21, result.TotalInterest, 0.01)

	after := testutil.ToFloat64(metrics.ToolCalls.WithLabelValues(ToolMonthlyPayment, "success"))
	assert.Equal(t, before+1, after)
}

func TestMonthlyPaymentHandler_InvalidParams(t *testing.T) {
	handler := testRegistry(t)[ToolMonthlyPayment]

	tests := []struct {
		name    string
		params  map[string]interface{}
		wantErr error
	}{
		{
			name:    "zero term",
			params:  map[string]interface{}{"principal": 1000.0, "annual_rate_percent": 5.0, "term_months": 0.0},
			wantErr: validators.ErrOutOfRange,
		},
		{
			name:    "negative principal",
			params:  map[string]interface{}{"principal": -1.0, "annual_rate_percent": 5.0, "term_months": 12.0},
			wantErr: validators.ErrOutOfRange,
		},
		{
			name:    "unknown field",
			params:  map[string]interface{}{"principal": 1000.0, "rate": 5.0, "term_months": 12.0},
			wantErr: ErrBadParams,
		},
		{
			name:    "wrong type",
			params:  map[string]interface{}{"principal": "a lot", "annual_rate_percent": 5.0, "term_months": 12.0},
			wantErr: ErrBadParams,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(metrics.CalculationErrors.WithLabelValues(ToolMonthlyPayment, "validation"))

			_, err := handler(context.Background(), tt.params)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Contains(t, err.Error(), "неверные параметры")

			after := testutil.ToFloat64(metrics.CalculationErrors.WithLabelValues(ToolMonthlyPayment, "validation"))
			assert.Equal(t, before+1, after)
		})
	}
}

func TestAmortizationScheduleHandler(t *testing.T) {
	handler := testRegistry(t)[ToolAmortizationSchedule]

	out, err := handler(context.Background(), map[string]interface{}{
		"principal":           12000.0,
		"annual_rate_percent": 0.0,
		"term_months":         12.0,
	})
	require.NoError(t, err)

	result := out.(ScheduleReport)
	require.Len(t, result.Schedule, 12)
	assert.Equal(t, 1000.0, result.MonthlyPayment)
	assert.Equal(t, 0.0, result.TotalInterest)
	assert.Equal(t, 0.0, result.Schedule[11].RemainingPrincipal)
}

func TestAnalyzeInvestmentHandler(t *testing.T) {
	handler := testRegistry(t)[ToolAnalyzeInvestment]

	out, err := handler(context.Background(), portfolioParams())
	require.NoError(t, err)

	result := out.(SimulationReport)
	require.NotNil(t, result.SimulationResult)
	assert.NotEmpty(t, result.SimulationID)
	assert.Equal(t, 80000.0, result.Analysis.TotalFinanced)
	assert.Equal(t, 2657.14, result.Analysis.MonthlyPaymentTotal)
	require.NotNil(t, result.Analysis.BreakEvenMonths)
	assert.Equal(t, 12.5, *result.Analysis.BreakEvenMonths)
	assert.Empty(t, result.Alerts)
}

func TestAnalyzeInvestmentHandler_CountsAlerts(t *testing.T) {
	handler := testRegistry(t)[ToolAnalyzeInvestment]
	params := portfolioParams()
	params["estimated_monthly_income"] = 0.0

	noIncome := metrics.AlertsEmitted.WithLabelValues(string(calculations.AlertInfo), calculations.AlertCodeNoIncome)
	negative := metrics.AlertsEmitted.WithLabelValues(string(calculations.AlertError), calculations.AlertCodeNegativeCashFlow)
	beforeNoIncome := testutil.ToFloat64(noIncome)
	beforeNegative := testutil.ToFloat64(negative)

	out, err := handler(context.Background(), params)
	require.NoError(t, err)

	result := out.(SimulationReport)
	assert.Nil(t, result.Analysis.BreakEvenMonths)
	assert.Equal(t, beforeNoIncome+1, testutil.ToFloat64(noIncome))
	assert.Equal(t, beforeNegative+1, testutil.ToFloat64(negative))
}

func TestAnalyzeInvestmentHandler_EngineRejection(t *testing.T) {
	handler := testRegistry(t)[ToolAnalyzeInvestment]
	params := portfolioParams()
	params["items"] = []interface{}{
		map[string]interface{}{"id": "bad", "amount": 1000.0, "advance_percentage": 150.0, "is_selected": true},
	}

	_, err := handler(context.Background(), params)
	require.Error(t, err)
	assert.ErrorIs(t, err, calculations.ErrInvalidInput)
}

func TestProjectIndexationHandler(t *testing.T) {
	handler := testRegistry(t)[ToolProjectIndexation]

	out, err := handler(context.Background(), map[string]interface{}{
		"initial_installment":        2000.0,
		"initial_income":             10000.0,
		"term_months":                120.0,
		"inflation_rate_percent":     5.0,
		"salary_growth_rate_percent": 3.0,
		"sample_step_months":         12.0,
	})
	require.NoError(t, err)

	result := out.(ProjectionReport)
	assert.Equal(t, 60, result.HorizonMonths)
	assert.Equal(t, 60, result.Final.Month)
	require.NotEmpty(t, result.Samples)
	assert.Equal(t, 1, result.Samples[0].Month)
	assert.Equal(t, 2000.0, result.Samples[0].Installment)
	require.NotNil(t, result.Final.RatioPercent)
	assert.Greater(t, *result.Final.RatioPercent, 20.0)
}

func TestCompareScenariosHandler(t *testing.T) {
	handler := testRegistry(t)[ToolCompareScenarios]

	out, err := handler(context.Background(), map[string]interface{}{
		"initial_installment":        2000.0,
		"initial_income":             10000.0,
		"term_months":                36.0,
		"inflation_rate_percent":     0.0,
		"salary_growth_rate_percent": 0.0,
		"scenarios": []interface{}{
			map[string]interface{}{"label": "optimistic", "inflation_rate": 2.0, "salary_growth_rate": 6.0},
			map[string]interface{}{"label": "pessimistic", "inflation_rate": 8.0, "salary_growth_rate": 1.0},
		},
	})
	require.NoError(t, err)

	result := out.(ComparisonReport)
	require.Len(t, result.Scenarios, 2)
	assert.Equal(t, "optimistic", result.BestLabel)
	assert.Equal(t, "pessimistic", result.WorstLabel)
	require.NotNil(t, result.RatioSpread)
	assert.Greater(t, *result.RatioSpread, 0.0)
}

func TestCompareScenariosHandler_TooManyScenarios(t *testing.T) {
	handler := testRegistry(t)[ToolCompareScenarios]

	scenarios := make([]interface{}, 11)
	for i := range scenarios {
		scenarios[i] = map[string]interface{}{"label": "s", "inflation_rate": 4.0, "salary_growth_rate": 3.0}
	}

	_, err := handler(context.Background(), map[string]interface{}{
		"initial_installment": 2000.0,
		"initial_income":      10000.0,
		"term_months":         36.0,
		"scenarios":           scenarios,
	})
	assert.ErrorIs(t, err, validators.ErrOutOfRange)
}

func TestCompareScenariosHandler_NoScenarios(t *testing.T) {
	handler := testRegistry(t)[ToolCompareScenarios]

	_, err := handler(context.Background(), map[string]interface{}{
		"initial_installment": 2000.0,
		"initial_income":      10000.0,
		"term_months":         36.0,
	})
	assert.ErrorIs(t, err, calculations.ErrInvalidInput)
}

func TestSensitivityAnalysisHandler(t *testing.T) {
	handler := testRegistry(t)[ToolSensitivityAnalysis]
	params := portfolioParams()
	params["rate_delta_range"] = map[string]interface{}{"from": -10.0, "to": 10.0}
	params["income_delta_range"] = map[string]interface{}{"from": -10.0, "to": 10.0}
	params["step"] = 5.0

	out, err := handler(context.Background(), params)
	require.NoError(t, err)

	result := out.(SensitivityReport)
	require.Len(t, result.Points, 5)
	require.NotNil(t, result.Summary)
	assert.Equal(t, 5, result.Summary.Points)
	assert.Equal(t, result.Base.ROI, result.Points[2].ROI)
	for i := 1; i < len(result.Points); i++ {
		assert.Greater(t, result.Points[i].RateDelta, result.Points[i-1].RateDelta)
		assert.Greater(t, result.Points[i].MonthlyPayment, result.Points[i-1].MonthlyPayment)
	}
}

func TestSensitivityAnalysisHandler_TooManyPoints(t *testing.T) {
	handler := testRegistry(t)[ToolSensitivityAnalysis]
	params := portfolioParams()
	params["rate_delta_range"] = map[string]interface{}{"from": -50.0, "to": 50.0}
	params["income_delta_range"] = map[string]interface{}{"from": 0.0, "to": 0.0}
	params["step"] = 0.5

	_, err := handler(context.Background(), params)
	assert.ErrorIs(t, err, validators.ErrOutOfRange)
}
