package calculations

// InvestmentItem представляет одну строку бюджета проекта
type InvestmentItem struct {
	ID                string  `json:"id"`
	Name              string  `json:"name,omitempty"`
	NameKey           string  `json:"name_key,omitempty"`
	Amount            float64 `json:"amount"`
	AdvancePercentage float64 `json:"advance_percentage"`
	IsSelected        bool    `json:"is_selected"`
}

// AdvanceAmount возвращает часть суммы, оплачиваемую авансом
func (i InvestmentItem) AdvanceAmount() float64 {
	return i.Amount * i.AdvancePercentage / 100.0
}

// FinanceBalance возвращает финансируемый остаток
func (i InvestmentItem) FinanceBalance() float64 {
	return i.Amount - i.AdvanceAmount()
}

// ItemSplit представляет разбиение одной позиции на аванс и финансируемый остаток
type ItemSplit struct {
	ID             string  `json:"id"`
	Name           string  `json:"name,omitempty"`
	NameKey        string  `json:"name_key,omitempty"`
	Amount         float64 `json:"amount"`
	AdvanceAmount  float64 `json:"advance_amount"`
	FinanceBalance float64 `json:"finance_balance"`
}

// AggregateResult представляет итоги по выбранным позициям
type AggregateResult struct {
	PerItem       []ItemSplit `json:"per_item"`
	TotalAmount   float64     `json:"total_amount"`
	TotalAdvance  float64     `json:"total_advance"`
	TotalFinanced float64     `json:"total_financed"`
}

// CreditLine представляет одну кредитную линию, финансирующую набор позиций
type CreditLine struct {
	ID          string   `json:"id"`
	ItemIDs     []string `json:"item_ids"`
	TotalAmount float64  `json:"total_amount"`
	AnnualRate  float64  `json:"annual_rate"`
	TermMonths  int      `json:"term_months"`
}

// CreditLinePayment представляет ежемесячный платеж по одной кредитной линии
type CreditLinePayment struct {
	CreditLineID   string  `json:"credit_line_id"`
	Principal      float64 `json:"principal"`
	CustomTotal    float64 `json:"custom_total"`
	AnnualRate     float64 `json:"annual_rate"`
	TermMonths     int     `json:"term_months"`
	MonthlyPayment float64 `json:"monthly_payment"`
}

// FinancialAnalysis представляет итоговые показатели портфеля.
// Неопределенные показатели (деление на ноль) равны nil.
type FinancialAnalysis struct {
	TotalInvestment     float64  `json:"total_investment"`
	TotalAdvances       float64  `json:"total_advances"`
	TotalFinanced       float64  `json:"total_financed"`
	MonthlyPaymentTotal float64  `json:"monthly_payment_total"`
	NetMonthlyIncome    float64  `json:"net_monthly_income"`
	FreeCashFlow        float64  `json:"free_cash_flow"`
	DebtToIncomeRatio   float64  `json:"debt_to_income_ratio"`
	BreakEvenMonths     *float64 `json:"break_even_months"`
	PaybackPeriod       *float64 `json:"payback_period"`
	ROI                 float64  `json:"roi"`
	Leverage            float64  `json:"leverage"`
	PaymentCoverage     *float64 `json:"payment_coverage"`
}

// AlertType задает серьезность предупреждения
type AlertType string

const (
	AlertError   AlertType = "error"
	AlertWarning AlertType = "warning"
	AlertInfo    AlertType = "info"
)

// Коды предупреждений
const (
	AlertCodeFinancedMismatch   = "financed_mismatch"
	AlertCodeNegativeCashFlow   = "negative_free_cash_flow"
	AlertCodeHighDebtToIncome   = "high_debt_to_income"
	AlertCodeNoIncome           = "no_income"
	AlertCodeUnknownCreditItem  = "unknown_credit_item"
	AlertCodeUncoveredFinancing = "uncovered_financed_balance"
)

// Alert представляет некритичное замечание к результату
type Alert struct {
	Type    AlertType `json:"type"`
	Code    string    `json:"code"`
	Message string    `json:"message"`
}

// ScheduleEntry представляет одну запись в графике платежей
type ScheduleEntry struct {
	Month               int     `json:"month"`
	Payment             float64 `json:"payment"`
	Interest            float64 `json:"interest"`
	PrincipalComponent  float64 `json:"principal_component"`
	RemainingPrincipal  float64 `json:"remaining_principal"`
	CumulativeInterest  float64 `json:"cumulative_interest"`
	CumulativePrincipal float64 `json:"cumulative_principal"`
}

// AmortizationSchedule представляет график аннуитетного погашения
type AmortizationSchedule struct {
	CreditLineID      string          `json:"credit_line_id,omitempty"`
	Principal         float64         `json:"principal"`
	AnnualRatePercent float64         `json:"annual_rate_percent"`
	TermMonths        int             `json:"term_months"`
	MonthlyPayment    float64         `json:"monthly_payment"`
	TotalPaid         float64         `json:"total_paid"`
	TotalInterest     float64         `json:"total_interest"`
	Schedule          []ScheduleEntry `json:"schedule"`
}

// IndexationSample представляет одну точку проекции платежа и дохода
type IndexationSample struct {
	Month        int      `json:"month"`
	Installment  float64  `json:"installment"`
	Income       float64  `json:"income"`
	RatioPercent *float64 `json:"ratio_percent"`
}

// ScenarioParameters задает именованный сценарий индексации
type ScenarioParameters struct {
	Label            string  `json:"label"`
	InflationRate    float64 `json:"inflation_rate"`
	SalaryGrowthRate float64 `json:"salary_growth_rate"`
}

// ScenarioProjection представляет проекцию одного сценария
type ScenarioProjection struct {
	Scenario ScenarioParameters `json:"scenario"`
	Samples  []IndexationSample `json:"samples"`
	Final    IndexationSample   `json:"final"`
}

// ScenarioComparison представляет сравнение сценариев индексации
type ScenarioComparison struct {
	HorizonMonths int                  `json:"horizon_months"`
	Scenarios     []ScenarioProjection `json:"scenarios"`
	BestLabel     string               `json:"best_label,omitempty"`
	WorstLabel    string               `json:"worst_label,omitempty"`
	RatioSpread   *float64             `json:"ratio_spread"`
}

// DeltaRange задает диапазон отклонений в процентах
type DeltaRange struct {
	From float64 `json:"from"`
	To   float64 `json:"to"`
}

// SensitivityBase задает базовые допущения для анализа чувствительности
type SensitivityBase struct {
	AnnualRate    float64 `json:"annual_rate"`
	MonthlyIncome float64 `json:"monthly_income"`
}

// ScenarioInputs передается в ScenarioFunc для одного шага анализа
type ScenarioInputs struct {
	RateDelta     float64
	IncomeDelta   float64
	AnnualRate    float64
	MonthlyIncome float64
}

// ScenarioOutcome представляет результат пересчета для одного шага
type ScenarioOutcome struct {
	MonthlyPayment  float64
	FreeCashFlow    float64
	BreakEvenMonths *float64
	ROI             float64
}

// ScenarioFunc пересчитывает анализ со скорректированными допущениями
type ScenarioFunc func(in ScenarioInputs) (ScenarioOutcome, error)

// SensitivityPoint представляет одну точку кривой чувствительности
type SensitivityPoint struct {
	Label           string   `json:"scenario_label"`
	RateDelta       float64  `json:"rate_delta"`
	IncomeDelta     float64  `json:"income_delta"`
	AnnualRate      float64  `json:"annual_rate"`
	MonthlyIncome   float64  `json:"monthly_income"`
	MonthlyPayment  float64  `json:"monthly_payment"`
	FreeCashFlow    float64  `json:"free_cash_flow"`
	BreakEvenMonths *float64 `json:"break_even"`
	ROI             float64  `json:"roi"`
}

// SensitivitySummary представляет сводку по кривой чувствительности
type SensitivitySummary struct {
	Points             int      `json:"points"`
	MinROI             float64  `json:"min_roi"`
	MaxROI             float64  `json:"max_roi"`
	MeanROI            float64  `json:"mean_roi"`
	MinBreakEvenMonths *float64 `json:"min_break_even_months"`
	MaxBreakEvenMonths *float64 `json:"max_break_even_months"`
	UndefinedBreakEven int      `json:"undefined_break_even"`
}
