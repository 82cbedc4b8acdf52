package calculations

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregate_ScenarioExample(t *testing.T) {
	result, err := Aggregate([]InvestmentItem{
		{ID: "machine", Amount: 100000, AdvancePercentage: 20, IsSelected: true},
	})
	require.NoError(t, err)

	assert.Equal(t, 100000.0, result.TotalAmount)
	assert.InDelta(t, 20000.0, result.TotalAdvance, 1e-9)
	assert.InDelta(t, 80000.0, result.TotalFinanced, 1e-9)
	require.Len(t, result.PerItem, 1)
	assert.Equal(t, "machine", result.PerItem[0].ID)
}

func TestAggregate_SkipsUnselectedItems(t *testing.T) {
	result, err := Aggregate([]InvestmentItem{
		{ID: "a", Amount: 1000, AdvancePercentage: 50, IsSelected: true},
		{ID: "b", Amount: 5000, AdvancePercentage: 0, IsSelected: false},
		{ID: "c", NameKey: "items.vehicle", Amount: 3000, AdvancePercentage: 100, IsSelected: true},
	})
	require.NoError(t, err)

	require.Len(t, result.PerItem, 2)
	assert.Equal(t, "a", result.PerItem[0].ID)
	assert.Equal(t, "c", result.PerItem[1].ID)
	assert.Equal(t, "items.vehicle", result.PerItem[1].NameKey)
	assert.Equal(t, 4000.0, result.TotalAmount)
	assert.Equal(t, 3500.0, result.TotalAdvance)
	assert.Equal(t, 500.0, result.TotalFinanced)
}

func TestAggregate_SplitInvariant(t *testing.T) {
	items := []InvestmentItem{
		{ID: "1", Amount: 12345.67, AdvancePercentage: 33.3, IsSelected: true},
		{ID: "2", Amount: 0.01, AdvancePercentage: 99.99, IsSelected: true},
		{ID: "3", Amount: 987654321.12, AdvancePercentage: 12.5, IsSelected: true},
		{ID: "4", Amount: 0, AdvancePercentage: 50, IsSelected: true},
		{ID: "5", Amount: 777, AdvancePercentage: 0, IsSelected: true},
	}

	result, err := Aggregate(items)
	require.NoError(t, err)

	for _, split := range result.PerItem {
		assert.InDelta(t, split.Amount, split.AdvanceAmount+split.FinanceBalance, 1e-6, "item %s", split.ID)
	}
	assert.InDelta(t, result.TotalAmount, result.TotalAdvance+result.TotalFinanced, 1.0)
}

func TestAggregate_Empty(t *testing.T) {
	result, err := Aggregate(nil)
	require.NoError(t, err)
	assert.Empty(t, result.PerItem)
	assert.Equal(t, 0.0, result.TotalAmount)
	assert.Equal(t, 0.0, result.TotalFinanced)
}

func TestAggregate_InvalidItems(t *testing.T) {
	tests := []struct {
		name string
		item InvestmentItem
	}{
		{"negative amount", InvestmentItem{ID: "x", Amount: -1, IsSelected: true}},
		{"advance below zero", InvestmentItem{ID: "x", Amount: 10, AdvancePercentage: -0.1, IsSelected: true}},
		{"advance above hundred", InvestmentItem{ID: "x", Amount: 10, AdvancePercentage: 100.5, IsSelected: true}},
		{"infinite amount", InvestmentItem{ID: "x", Amount: math.Inf(1), IsSelected: true}},
		{"unselected but malformed", InvestmentItem{ID: "x", Amount: -5, IsSelected: false}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Aggregate([]InvestmentItem{tt.item})
			require.ErrorIs(t, err, ErrInvalidInput)
			assert.Contains(t, err.Error(), `"x"`)
		})
	}
}

func TestInvestmentItem_DerivedAmounts(t *testing.T) {
	item := InvestmentItem{Amount: 250, AdvancePercentage: 40}
	assert.Equal(t, 100.0, item.AdvanceAmount())
	assert.Equal(t, 150.0, item.FinanceBalance())
}
