package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aiwealth/internal/core"
	"aiwealth/internal/storage"
)

func recordExpense(t *testing.T, ledger *Ledger, amount int64, description, category string) {
	t.Helper()
	_, err := ledger.RecordExpense(context.Background(), ExpenseInput{
		Amount:      decimal.NewFromInt(amount),
		Description: description,
		Category:    category,
	})
	require.NoError(t, err)
}

func TestSummaryPercentages(t *testing.T) {
	store := newTestStore(t)
	ledger := NewLedger(store, nil)
	reports := NewReports(store)

	recordExpense(t, ledger, 75, "groceries", "food")
	recordExpense(t, ledger, 25, "bus pass", "transport")

	summary, err := reports.Summary(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, "all", summary.Period)
	assert.InDelta(t, 100.0, summary.TotalExpenses, 0.001)
	require.Len(t, summary.Categories, 2)

	// Largest category first.
	assert.Equal(t, "food", summary.Categories[0].Category)
	assert.InDelta(t, 75.0, summary.Categories[0].Percentage, 0.001)
	assert.Equal(t, "transport", summary.Categories[1].Category)
	assert.InDelta(t, 25.0, summary.Categories[1].Percentage, 0.001)

	require.NotEmpty(t, summary.DailyTrend)
	assert.InDelta(t, 100.0, summary.DailyTrend[0].Amount, 0.001)
}

func TestSummaryEmpty(t *testing.T) {
	store := newTestStore(t)
	reports := NewReports(store)

	summary, err := reports.Summary(context.Background(), "month")
	require.NoError(t, err)
	assert.Zero(t, summary.TotalExpenses)
	assert.Empty(t, summary.Categories)
	assert.Equal(t, "month", summary.Period)
}

func TestBudgetOverviewOrderingAndStatus(t *testing.T) {
	store := newTestStore(t)
	ledger := NewLedger(store, nil)
	reports := NewReports(store)

	// Against the seeded limits: entertainment 200, food 500, transport 300.
	recordExpense(t, ledger, 250, "concert tickets", "entertainment") // 125% exceeded
	recordExpense(t, ledger, 450, "monthly groceries", "food")        // 90%  warning
	recordExpense(t, ledger, 30, "fuel", "transport")                 // 10%  normal

	overview, err := reports.BudgetOverview(context.Background())
	require.NoError(t, err)
	require.Len(t, overview.Categories, 7)

	assert.Equal(t, "entertainment", overview.Categories[0].Category)
	assert.Equal(t, "exceeded", overview.Categories[0].Status)
	assert.InDelta(t, 125.0, overview.Categories[0].Percentage, 0.001)
	assert.InDelta(t, -50.0, overview.Categories[0].Remaining, 0.001)

	assert.Equal(t, "food", overview.Categories[1].Category)
	assert.Equal(t, "warning", overview.Categories[1].Status)

	statuses := make(map[string]string)
	for _, line := range overview.Categories {
		statuses[line.Category] = line.Status
	}
	assert.Equal(t, "normal", statuses["transport"])

	assert.InDelta(t, 3300.0, overview.Summary.TotalLimit, 0.001)
	assert.InDelta(t, 730.0, overview.Summary.TotalSpent, 0.001)
	assert.InDelta(t, 22.1, overview.Summary.OverallPercentage, 0.001)
}

func TestBudgetInsights(t *testing.T) {
	store := newTestStore(t)
	ledger := NewLedger(store, nil)
	reports := NewReports(store)

	require.NoError(t, ledger.SetBudget(context.Background(), "food", decimal.NewFromInt(200)))
	recordExpense(t, ledger, 100, "groceries", "food")

	insight, err := reports.BudgetInsights(context.Background(), "food")
	require.NoError(t, err)
	assert.Equal(t, "food", insight.Category)
	assert.InDelta(t, 50.0, insight.Percentage, 0.001)
	assert.Equal(t, "good", insight.Status)
	assert.Contains(t, insight.Advice, "moderate pace")

	_, err = reports.BudgetInsights(context.Background(), "nonexistent")
	assert.True(t, errors.Is(err, core.ErrNotFound))
}

func TestBudgetAdviceTiers(t *testing.T) {
	tests := []struct {
		percentage float64
		contains   string
	}{
		{110, "exceeded your budget"},
		{100, "exceeded your budget"},
		{95, "very close"},
		{80, "used most of your budget"},
		{60, "moderate pace"},
		{10, "well within your budget"},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%.0f%%", tt.percentage), func(t *testing.T) {
			assert.Contains(t, budgetAdvice(tt.percentage), tt.contains)
		})
	}
}

func TestListExpensesPagination(t *testing.T) {
	store := newTestStore(t)
	ledger := NewLedger(store, nil)
	reports := NewReports(store)

	for i := 0; i < 25; i++ {
		recordExpense(t, ledger, int64(i+1), fmt.Sprintf("item %d", i+1), "other")
	}

	page, err := reports.ListExpenses(context.Background(), storage.ExpenseFilter{Limit: 10, Offset: 10})
	require.NoError(t, err)

	assert.Equal(t, 25, page.Pagination.Total)
	assert.Equal(t, 2, page.Pagination.Page)
	assert.Equal(t, 10, page.Pagination.Limit)
	assert.Equal(t, 3, page.Pagination.Pages)
	assert.Len(t, page.Expenses, 10)
}

func TestListExpensesDefaults(t *testing.T) {
	store := newTestStore(t)
	ledger := NewLedger(store, nil)
	reports := NewReports(store)

	recordExpense(t, ledger, 10, "single item", "other")

	page, err := reports.ListExpenses(context.Background(), storage.ExpenseFilter{})
	require.NoError(t, err)

	assert.Equal(t, 100, page.Pagination.Limit)
	assert.Equal(t, 1, page.Pagination.Page)
	assert.Equal(t, 1, page.Pagination.Pages)
	require.Len(t, page.Expenses, 1)
	assert.Equal(t, "single item", page.Expenses[0].Description)
	assert.NotEmpty(t, page.Expenses[0].FormattedDate)
}
