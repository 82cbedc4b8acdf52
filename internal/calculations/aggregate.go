package calculations

import (
	"gonum.org/v1/gonum/floats"

	"github.com/cloud-ru/mcp-investment-sim-go/pkg/utils"
)

// Aggregate разбивает выбранные позиции на аванс и финансируемый остаток
// и суммирует итоги. Округление не выполняется.
func Aggregate(items []InvestmentItem) (*AggregateResult, error) {
	perItem := make([]ItemSplit, 0, len(items))
	amounts := make([]float64, 0, len(items))
	advances := make([]float64, 0, len(items))
	balances := make([]float64, 0, len(items))

	for _, item := range items {
		// Невыбранные позиции тоже проверяются: некорректный ввод остается некорректным
		if err := validateItem(item); err != nil {
			return nil, err
		}
		if !item.IsSelected {
			continue
		}

		advance := item.AdvanceAmount()
		balance := item.FinanceBalance()

		perItem = append(perItem, ItemSplit{
			ID:             item.ID,
			Name:           item.Name,
			NameKey:        item.NameKey,
			Amount:         item.Amount,
			AdvanceAmount:  advance,
			FinanceBalance: balance,
		})
		amounts = append(amounts, item.Amount)
		advances = append(advances, advance)
		balances = append(balances, balance)
	}

	return &AggregateResult{
		PerItem:       perItem,
		TotalAmount:   floats.Sum(amounts),
		TotalAdvance:  floats.Sum(advances),
		TotalFinanced: floats.Sum(balances),
	}, nil
}

func validateItem(item InvestmentItem) error {
	if !utils.AllFinite(item.Amount, item.AdvancePercentage) {
		return invalidf("позиция %q: значение не является конечным числом", item.ID)
	}
	if item.Amount < 0 {
		return invalidf("позиция %q: сумма не может быть отрицательной (%.2f)", item.ID, item.Amount)
	}
	if item.AdvancePercentage < 0 || item.AdvancePercentage > 100 {
		return invalidf("позиция %q: процент аванса должен быть в диапазоне [0; 100], получено %.2f",
			item.ID, item.AdvancePercentage)
	}
	return nil
}

// selectedBalances возвращает финансируемый остаток по id выбранных позиций
func (a *AggregateResult) selectedBalances() map[string]float64 {
	balances := make(map[string]float64, len(a.PerItem))
	for _, split := range a.PerItem {
		balances[split.ID] += split.FinanceBalance
	}
	return balances
}
