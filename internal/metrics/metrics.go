package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ToolCalls счетчик вызовов инструментов
	ToolCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tool_calls_total",
			Help: "Общее количество вызовов инструментов",
		},
		[]string{"tool_name", "status"},
	)

	// CalculationErrors счетчик ошибок расчетов
	CalculationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "calculation_errors_total",
			Help: "Количество ошибок расчетов",
		},
		[]string{"tool_name", "error_type"},
	)

	// APICalls счетчик HTTP-запросов к инструментам
	APICalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_calls_total",
			Help: "Вызовы API инструментов",
		},
		[]string{"service", "endpoint", "status"},
	)

	// AlertsEmitted счетчик предупреждений анализа по типу и коду
	AlertsEmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "simulation_alerts_total",
			Help: "Предупреждения, сформированные анализом портфеля",
		},
		[]string{"type", "code"},
	)

	// ToolDuration длительность выполнения инструментов
	ToolDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tool_duration_seconds",
			Help:    "Длительность выполнения инструментов",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		},
		[]string{"tool_name"},
	)
)
