package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/cloud-ru/mcp-investment-sim-go/internal/calculations"
	"github.com/cloud-ru/mcp-investment-sim-go/internal/config"
	"github.com/cloud-ru/mcp-investment-sim-go/internal/metrics"
	"github.com/cloud-ru/mcp-investment-sim-go/internal/report"
	"github.com/cloud-ru/mcp-investment-sim-go/internal/validators"
)

// ToolHandler представляет обработчик инструмента MCP
type ToolHandler func(ctx context.Context, params map[string]interface{}) (interface{}, error)

// ErrBadParams возвращается, если параметры не удалось разобрать
var ErrBadParams = errors.New("malformed parameters")

// Имена инструментов
const (
	ToolMonthlyPayment       = "monthly_payment"
	ToolAmortizationSchedule = "amortization_schedule"
	ToolAnalyzeInvestment    = "analyze_investment"
	ToolProjectIndexation    = "project_indexation"
	ToolCompareScenarios     = "compare_scenarios"
	ToolSensitivityAnalysis  = "sensitivity_analysis"
)

// Registry возвращает все инструменты сервиса по имени
func Registry(cfg *config.Config, tracer trace.Tracer, log zerolog.Logger) map[string]ToolHandler {
	return map[string]ToolHandler{
		ToolMonthlyPayment:       MonthlyPaymentHandler(cfg, tracer, log),
		ToolAmortizationSchedule: AmortizationScheduleHandler(cfg, tracer, log),
		ToolAnalyzeInvestment:    AnalyzeInvestmentHandler(cfg, tracer, log),
		ToolProjectIndexation:    ProjectIndexationHandler(cfg, tracer, log),
		ToolCompareScenarios:     CompareScenariosHandler(cfg, tracer, log),
		ToolSensitivityAnalysis:  SensitivityAnalysisHandler(cfg, tracer, log),
	}
}

// Names возвращает отсортированный список имен инструментов
func Names(registry map[string]ToolHandler) []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// invocation собирает общую телеметрию одного вызова инструмента
type invocation struct {
	tool  string
	span  trace.Span
	log   zerolog.Logger
	timer *prometheus.Timer
}

func begin(ctx context.Context, tracer trace.Tracer, log zerolog.Logger, tool string) (context.Context, *invocation) {
	ctx, span := tracer.Start(ctx, tool)
	metrics.APICalls.WithLabelValues("mcp", tool, "started").Inc()

	return ctx, &invocation{
		tool:  tool,
		span:  span,
		log:   log.With().Str("tool", tool).Logger(),
		timer: prometheus.NewTimer(metrics.ToolDuration.WithLabelValues(tool)),
	}
}

func (c *invocation) end() {
	c.timer.ObserveDuration()
	c.span.End()
}

func (c *invocation) validationFailed(err error) error {
	c.span.SetAttributes(attribute.String("error", "validation_error"))
	c.span.SetStatus(codes.Error, err.Error())
	metrics.ToolCalls.WithLabelValues(c.tool, "validation_error").Inc()
	metrics.CalculationErrors.WithLabelValues(c.tool, "validation").Inc()
	metrics.APICalls.WithLabelValues("mcp", c.tool, "error").Inc()
	c.log.Warn().Err(err).Msg("неверные параметры")
	return fmt.Errorf("неверные параметры: %w", err)
}

// calculationFailed отделяет отказ движка на некорректных данных от прочих ошибок
func (c *invocation) calculationFailed(err error) error {
	if errors.Is(err, calculations.ErrInvalidInput) {
		return c.validationFailed(err)
	}
	c.span.SetAttributes(attribute.String("error", "calculation_error"))
	c.span.SetStatus(codes.Error, err.Error())
	metrics.ToolCalls.WithLabelValues(c.tool, "error").Inc()
	metrics.CalculationErrors.WithLabelValues(c.tool, "calculation").Inc()
	metrics.APICalls.WithLabelValues("mcp", c.tool, "error").Inc()
	c.log.Error().Err(err).Msg("ошибка при выполнении расчета")
	return fmt.Errorf("ошибка при выполнении расчета: %w", err)
}

func (c *invocation) succeeded(simulationID string) {
	c.span.SetAttributes(
		attribute.Bool("success", true),
		attribute.String("simulation_id", simulationID),
	)
	metrics.ToolCalls.WithLabelValues(c.tool, "success").Inc()
	metrics.APICalls.WithLabelValues("mcp", c.tool, "success").Inc()
	c.log.Debug().Str("simulation_id", simulationID).Msg("расчет выполнен")
}

// decodeParams переносит параметры вызова в типизированный запрос.
// Неизвестные поля считаются ошибкой.
func decodeParams(params map[string]interface{}, dst interface{}) error {
	raw, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadParams, err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", ErrBadParams, err)
	}
	return nil
}

func countAlerts(alerts []calculations.Alert) {
	for _, a := range alerts {
		metrics.AlertsEmitted.WithLabelValues(string(a.Type), a.Code).Inc()
	}
}

// LoanRequest параметры одного кредита
type LoanRequest struct {
	Principal         float64 `json:"principal"`
	AnnualRatePercent float64 `json:"annual_rate_percent"`
	TermMonths        int     `json:"term_months"`
}

func (r LoanRequest) validate(cfg *config.Config) error {
	if err := validators.CheckAmount(cfg, "principal", r.Principal); err != nil {
		return err
	}
	if err := validators.CheckRate(cfg, "annual_rate_percent", r.AnnualRatePercent); err != nil {
		return err
	}
	return validators.CheckMonths(cfg, r.TermMonths)
}

func (r LoanRequest) attributes() []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Float64("principal", r.Principal),
		attribute.Float64("annual_rate_percent", r.AnnualRatePercent),
		attribute.Int("term_months", r.TermMonths),
	}
}

// MonthlyPaymentReport результат инструмента monthly_payment
type MonthlyPaymentReport struct {
	SimulationID      string  `json:"simulation_id"`
	Principal         float64 `json:"principal"`
	AnnualRatePercent float64 `json:"annual_rate_percent"`
	TermMonths        int     `json:"term_months"`
	MonthlyPayment    float64 `json:"monthly_payment"`
	TotalPaid         float64 `json:"total_paid"`
	TotalInterest     float64 `json:"total_interest"`
}

// MonthlyPaymentHandler обрабатывает запрос на расчет аннуитетного платежа
func MonthlyPaymentHandler(cfg *config.Config, tracer trace.Tracer, log zerolog.Logger) ToolHandler {
	return func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
		_, call := begin(ctx, tracer, log, ToolMonthlyPayment)
		defer call.end()

		var req LoanRequest
		if err := decodeParams(params, &req); err != nil {
			return nil, call.validationFailed(err)
		}
		call.span.SetAttributes(req.attributes()...)

		if err := req.validate(cfg); err != nil {
			return nil, call.validationFailed(err)
		}

		payment, err := calculations.MonthlyPayment(req.Principal, req.AnnualRatePercent, req.TermMonths)
		if err != nil {
			return nil, call.calculationFailed(err)
		}

		totalPaid := payment * float64(req.TermMonths)
		result := MonthlyPaymentReport{
			SimulationID:      uuid.NewString(),
			Principal:         report.Money(req.Principal),
			AnnualRatePercent: req.AnnualRatePercent,
			TermMonths:        req.TermMonths,
			MonthlyPayment:    report.Money(payment),
			TotalPaid:         report.Money(totalPaid),
			TotalInterest:     report.Money(totalPaid - req.Principal),
		}

		call.span.SetAttributes(attribute.Float64("monthly_payment", payment))
		call.succeeded(result.SimulationID)
		return result, nil
	}
}

// ScheduleReport результат инструмента amortization_schedule
type ScheduleReport struct {
	SimulationID string `json:"simulation_id"`
	calculations.AmortizationSchedule
}

// AmortizationScheduleHandler обрабатывает запрос на построение графика платежей
func AmortizationScheduleHandler(cfg *config.Config, tracer trace.Tracer, log zerolog.Logger) ToolHandler {
	return func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
		_, call := begin(ctx, tracer, log, ToolAmortizationSchedule)
		defer call.end()

		var req LoanRequest
		if err := decodeParams(params, &req); err != nil {
			return nil, call.validationFailed(err)
		}
		call.span.SetAttributes(req.attributes()...)

		if err := req.validate(cfg); err != nil {
			return nil, call.validationFailed(err)
		}

		schedule, err := calculations.AnnuitySchedule(req.Principal, req.AnnualRatePercent, req.TermMonths)
		if err != nil {
			return nil, call.calculationFailed(err)
		}

		result := ScheduleReport{
			SimulationID:         uuid.NewString(),
			AmortizationSchedule: report.Schedule(*schedule),
		}

		call.span.SetAttributes(
			attribute.Float64("monthly_payment", schedule.MonthlyPayment),
			attribute.Float64("total_paid", schedule.TotalPaid),
		)
		call.succeeded(result.SimulationID)
		return result, nil
	}
}

// SimulationReport результат инструмента analyze_investment
type SimulationReport struct {
	SimulationID string `json:"simulation_id"`
	*calculations.SimulationResult
}

// AnalyzeInvestmentHandler выполняет полную симуляцию портфеля
func AnalyzeInvestmentHandler(cfg *config.Config, tracer trace.Tracer, log zerolog.Logger) ToolHandler {
	return func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
		_, call := begin(ctx, tracer, log, ToolAnalyzeInvestment)
		defer call.end()

		var input calculations.SimulationInput
		if err := decodeParams(params, &input); err != nil {
			return nil, call.validationFailed(err)
		}
		call.span.SetAttributes(
			attribute.Int("items", len(input.Items)),
			attribute.Int("credit_lines", len(input.CreditLines)),
		)

		if err := validators.CheckSimulation(cfg, input); err != nil {
			return nil, call.validationFailed(err)
		}

		result, err := calculations.Simulate(input)
		if err != nil {
			return nil, call.calculationFailed(err)
		}
		countAlerts(result.Alerts)

		out := SimulationReport{
			SimulationID:     uuid.NewString(),
			SimulationResult: report.Simulation(result),
		}

		call.span.SetAttributes(
			attribute.Float64("total_investment", result.Analysis.TotalInvestment),
			attribute.Float64("free_cash_flow", result.Analysis.FreeCashFlow),
			attribute.Int("alerts", len(result.Alerts)),
		)
		call.succeeded(out.SimulationID)
		return out, nil
	}
}

// ProjectionRequest параметры проекции индексации
type ProjectionRequest struct {
	InitialInstallment      float64                           `json:"initial_installment"`
	InitialIncome           float64                           `json:"initial_income"`
	TermMonths              int                               `json:"term_months"`
	InflationRatePercent    float64                           `json:"inflation_rate_percent"`
	SalaryGrowthRatePercent float64                           `json:"salary_growth_rate_percent"`
	SampleStepMonths        int                               `json:"sample_step_months,omitempty"`
	Scenarios               []calculations.ScenarioParameters `json:"scenarios,omitempty"`
}

func (r ProjectionRequest) step() int {
	if r.SampleStepMonths == 0 {
		return calculations.DefaultSampleStepMonths
	}
	return r.SampleStepMonths
}

func (r ProjectionRequest) validate(cfg *config.Config) error {
	if err := validators.CheckAmount(cfg, "initial_installment", r.InitialInstallment); err != nil {
		return err
	}
	if err := validators.CheckIncome(cfg, "initial_income", r.InitialIncome); err != nil {
		return err
	}
	if err := validators.CheckMonths(cfg, r.TermMonths); err != nil {
		return err
	}
	if err := validators.CheckIndexRate(cfg, "inflation_rate_percent", r.InflationRatePercent); err != nil {
		return err
	}
	if err := validators.CheckIndexRate(cfg, "salary_growth_rate_percent", r.SalaryGrowthRatePercent); err != nil {
		return err
	}
	return validators.CheckIndexation(cfg, r.SampleStepMonths, r.Scenarios)
}

// ProjectionReport результат инструмента project_indexation
type ProjectionReport struct {
	SimulationID string `json:"simulation_id"`
	calculations.IndexationResult
}

// ProjectIndexationHandler строит проекцию платежа и дохода с учетом индексации
func ProjectIndexationHandler(cfg *config.Config, tracer trace.Tracer, log zerolog.Logger) ToolHandler {
	return func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
		_, call := begin(ctx, tracer, log, ToolProjectIndexation)
		defer call.end()

		var req ProjectionRequest
		if err := decodeParams(params, &req); err != nil {
			return nil, call.validationFailed(err)
		}
		call.span.SetAttributes(
			attribute.Int("term_months", req.TermMonths),
			attribute.Float64("inflation_rate_percent", req.InflationRatePercent),
			attribute.Float64("salary_growth_rate_percent", req.SalaryGrowthRatePercent),
		)

		if err := req.validate(cfg); err != nil {
			return nil, call.validationFailed(err)
		}

		seq, err := calculations.Project(req.InitialInstallment, req.InitialIncome, req.TermMonths,
			req.InflationRatePercent, req.SalaryGrowthRatePercent, req.step())
		if err != nil {
			return nil, call.calculationFailed(err)
		}
		final, err := calculations.FinalMetrics(req.InitialInstallment, req.InitialIncome, req.TermMonths,
			req.InflationRatePercent, req.SalaryGrowthRatePercent)
		if err != nil {
			return nil, call.calculationFailed(err)
		}

		result := ProjectionReport{
			SimulationID: uuid.NewString(),
			IndexationResult: calculations.IndexationResult{
				HorizonMonths: calculations.HorizonMonths(req.TermMonths),
				Samples:       report.Samples(slices.Collect(seq)),
				Final:         report.Sample(final),
			},
		}

		call.succeeded(result.SimulationID)
		return result, nil
	}
}

// ComparisonReport результат инструмента compare_scenarios
type ComparisonReport struct {
	SimulationID string `json:"simulation_id"`
	*calculations.ScenarioComparison
}

// CompareScenariosHandler сравнивает сценарии индексации
func CompareScenariosHandler(cfg *config.Config, tracer trace.Tracer, log zerolog.Logger) ToolHandler {
	return func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
		_, call := begin(ctx, tracer, log, ToolCompareScenarios)
		defer call.end()

		var req ProjectionRequest
		if err := decodeParams(params, &req); err != nil {
			return nil, call.validationFailed(err)
		}
		call.span.SetAttributes(
			attribute.Int("term_months", req.TermMonths),
			attribute.Int("scenarios", len(req.Scenarios)),
		)

		if err := req.validate(cfg); err != nil {
			return nil, call.validationFailed(err)
		}

		comparison, err := calculations.CompareScenarios(req.InitialInstallment, req.InitialIncome,
			req.TermMonths, req.Scenarios, req.step())
		if err != nil {
			return nil, call.calculationFailed(err)
		}

		result := ComparisonReport{
			SimulationID:       uuid.NewString(),
			ScenarioComparison: report.Comparison(comparison),
		}

		call.span.SetAttributes(
			attribute.String("best", comparison.BestLabel),
			attribute.String("worst", comparison.WorstLabel),
		)
		call.succeeded(result.SimulationID)
		return result, nil
	}
}

// SensitivityRequest параметры инструмента sensitivity_analysis
type SensitivityRequest struct {
	calculations.SimulationInput
	RateDeltas   calculations.DeltaRange `json:"rate_delta_range"`
	IncomeDeltas calculations.DeltaRange `json:"income_delta_range"`
	Step         float64                 `json:"step"`
}

// SensitivityReport результат инструмента sensitivity_analysis
type SensitivityReport struct {
	SimulationID string                           `json:"simulation_id"`
	Base         *calculations.FinancialAnalysis  `json:"base"`
	Points       []calculations.SensitivityPoint  `json:"points"`
	Summary      *calculations.SensitivitySummary `json:"summary"`
}

// SensitivityAnalysisHandler строит кривую чувствительности к ставке и доходу
func SensitivityAnalysisHandler(cfg *config.Config, tracer trace.Tracer, log zerolog.Logger) ToolHandler {
	return func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
		_, call := begin(ctx, tracer, log, ToolSensitivityAnalysis)
		defer call.end()

		var req SensitivityRequest
		if err := decodeParams(params, &req); err != nil {
			return nil, call.validationFailed(err)
		}

		input := req.SimulationInput
		input.IncludeSchedules = false
		input.Indexation = nil
		input.Sensitivity = &calculations.SensitivitySettings{
			RateDeltas:   req.RateDeltas,
			IncomeDeltas: req.IncomeDeltas,
			Step:         req.Step,
		}
		call.span.SetAttributes(
			attribute.Float64("step", req.Step),
			attribute.Int("items", len(input.Items)),
		)

		if err := validators.CheckSimulation(cfg, input); err != nil {
			return nil, call.validationFailed(err)
		}

		result, err := calculations.Simulate(input)
		if err != nil {
			return nil, call.calculationFailed(err)
		}

		out := SensitivityReport{
			SimulationID: uuid.NewString(),
			Base:         report.Analysis(result.Analysis),
			Points:       report.Sensitivity(result.Sensitivity),
			Summary:      report.SensitivitySummary(result.SensitivitySummary),
		}

		call.span.SetAttributes(attribute.Int("points", len(result.Sensitivity)))
		call.succeeded(out.SimulationID)
		return out, nil
	}
}
