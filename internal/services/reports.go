package services

import (
	"context"
	"math"
	"sort"

	"aiwealth/internal/core"
	"aiwealth/internal/storage"
)

// Reports serves the read-only aggregation queries behind the dashboard
// and the chat assistant's expense analysis.
type Reports struct {
	store *storage.Store
}

func NewReports(store *storage.Store) *Reports {
	return &Reports{store: store}
}

// CategoryShare is one category's slice of the summary.
type CategoryShare struct {
	Category   string  `json:"category"`
	Amount     float64 `json:"amount"`
	Percentage float64 `json:"percentage"`
}

// DailySpend is one day of the trailing-30-day trend.
type DailySpend struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
}

// Summary is the aggregate view over expenses for a period.
type Summary struct {
	TotalExpenses float64         `json:"total_expenses"`
	Categories    []CategoryShare `json:"categories"`
	DailyTrend    []DailySpend    `json:"daily_trend"`
	Period        string          `json:"period"`
}

// Summary aggregates total and per-category spend for the period
// (week, month, year, or everything), plus a daily trend for the
// trailing 30 days regardless of the period filter.
func (r *Reports) Summary(ctx context.Context, period string) (Summary, error) {
	total, err := r.store.TotalExpenses(ctx, period)
	if err != nil {
		return Summary{}, err
	}
	totals, err := r.store.CategoryTotals(ctx, period)
	if err != nil {
		return Summary{}, err
	}
	trend, err := r.store.DailyTrend(ctx)
	if err != nil {
		return Summary{}, err
	}

	totalF, _ := total.Float64()
	summary := Summary{
		TotalExpenses: totalF,
		Categories:    make([]CategoryShare, 0, len(totals)),
		DailyTrend:    make([]DailySpend, 0, len(trend)),
		Period:        period,
	}
	if summary.Period == "" {
		summary.Period = "all"
	}

	for _, ct := range totals {
		amount, _ := ct.Amount.Float64()
		percentage := 0.0
		if totalF > 0 {
			percentage = round1(amount / totalF * 100)
		}
		summary.Categories = append(summary.Categories, CategoryShare{
			Category:   ct.Category,
			Amount:     amount,
			Percentage: percentage,
		})
	}
	for _, dt := range trend {
		amount, _ := dt.Amount.Float64()
		summary.DailyTrend = append(summary.DailyTrend, DailySpend{Date: dt.Day, Amount: amount})
	}

	return summary, nil
}

// BudgetLine is one budget row of the overview.
type BudgetLine struct {
	Category   string  `json:"category"`
	Limit      float64 `json:"limit"`
	Spent      float64 `json:"spent"`
	Remaining  float64 `json:"remaining"`
	Percentage float64 `json:"percentage"`
	Status     string  `json:"status"`
}

// BudgetTotals aggregates the overview across all budgets.
type BudgetTotals struct {
	TotalLimit        float64 `json:"total_limit"`
	TotalSpent        float64 `json:"total_spent"`
	TotalRemaining    float64 `json:"total_remaining"`
	OverallPercentage float64 `json:"overall_percentage"`
}

// BudgetOverview is the full per-category budget report.
type BudgetOverview struct {
	Categories []BudgetLine `json:"categories"`
	Summary    BudgetTotals `json:"summary"`
}

// BudgetOverview reports consumption for every budget, worst first.
func (r *Reports) BudgetOverview(ctx context.Context) (BudgetOverview, error) {
	budgets, err := r.store.ListBudgets(ctx)
	if err != nil {
		return BudgetOverview{}, err
	}

	overview := BudgetOverview{Categories: make([]BudgetLine, 0, len(budgets))}
	var totalLimit, totalSpent float64

	for _, b := range budgets {
		limit, _ := b.LimitAmount.Float64()
		spent, _ := b.SpentAmount.Float64()
		percentage := b.Percentage()

		totalLimit += limit
		totalSpent += spent

		status := "normal"
		switch {
		case percentage >= exceededStatusAt:
			status = "exceeded"
		case percentage >= warningStatusAt:
			status = "warning"
		}

		overview.Categories = append(overview.Categories, BudgetLine{
			Category:   b.Category,
			Limit:      round2(limit),
			Spent:      round2(spent),
			Remaining:  round2(limit - spent),
			Percentage: round1(percentage),
			Status:     status,
		})
	}

	sort.SliceStable(overview.Categories, func(i, j int) bool {
		return overview.Categories[i].Percentage > overview.Categories[j].Percentage
	})

	overview.Summary = BudgetTotals{
		TotalLimit:     round2(totalLimit),
		TotalSpent:     round2(totalSpent),
		TotalRemaining: round2(totalLimit - totalSpent),
	}
	if totalLimit > 0 {
		overview.Summary.OverallPercentage = round1(totalSpent / totalLimit * 100)
	}

	return overview, nil
}

// BudgetInsight is the single-category detail view with qualitative
// status and canned advice.
type BudgetInsight struct {
	Category    string  `json:"category"`
	LimitAmount float64 `json:"limit_amount"`
	SpentAmount float64 `json:"spent_amount"`
	Remaining   float64 `json:"remaining"`
	Percentage  float64 `json:"percentage"`
	Status      string  `json:"status"`
	Advice      string  `json:"advice"`
}

// BudgetInsights reports a single category's consumption with advice.
// Returns core.ErrNotFound (wrapped) for an unknown category.
func (r *Reports) BudgetInsights(ctx context.Context, category string) (BudgetInsight, error) {
	b, err := r.store.GetBudget(ctx, category)
	if err != nil {
		return BudgetInsight{}, err
	}

	limit, _ := b.LimitAmount.Float64()
	spent, _ := b.SpentAmount.Float64()
	percentage := round1(b.Percentage())

	status := "good"
	switch {
	case percentage >= exceededStatusAt:
		status = "danger"
	case percentage >= warningStatusAt:
		status = "warning"
	}

	return BudgetInsight{
		Category:    b.Category,
		LimitAmount: limit,
		SpentAmount: spent,
		Remaining:   limit - spent,
		Percentage:  percentage,
		Status:      status,
		Advice:      budgetAdvice(percentage),
	}, nil
}

// budgetAdvice picks the canned advice string for a consumption level.
// The five tiers are fixed.
func budgetAdvice(percentage float64) string {
	switch {
	case percentage >= 100:
		return "You've exceeded your budget in this category. Consider reducing your spending or adjusting your budget if needed."
	case percentage >= 90:
		return "You're very close to reaching your budget limit. Be careful with additional expenses in this category."
	case percentage >= 75:
		return "You've used most of your budget. Plan carefully for remaining expenses this period."
	case percentage >= 50:
		return "You're using your budget at a moderate pace. Continue monitoring your spending."
	default:
		return "You're well within your budget. Great job managing your finances!"
	}
}

// ExpenseRecord is one row of the paginated expense list.
type ExpenseRecord struct {
	ID            int64   `json:"id"`
	Amount        float64 `json:"amount"`
	Description   string  `json:"description"`
	Category      string  `json:"category"`
	Date          string  `json:"date"`
	FormattedDate string  `json:"formatted_date"`
}

// Pagination describes the page the UI is looking at.
type Pagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Pages int `json:"pages"`
}

// ExpensePage is a filtered, paginated expense listing.
type ExpensePage struct {
	Expenses   []ExpenseRecord `json:"expenses"`
	Pagination Pagination      `json:"pagination"`
}

// ListExpenses returns a reverse-chronological page of expenses.
func (r *Reports) ListExpenses(ctx context.Context, f storage.ExpenseFilter) (ExpensePage, error) {
	if f.Limit <= 0 {
		f.Limit = 100
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	expenses, total, err := r.store.ListExpenses(ctx, f)
	if err != nil {
		return ExpensePage{}, err
	}

	page := ExpensePage{
		Expenses: make([]ExpenseRecord, 0, len(expenses)),
		Pagination: Pagination{
			Total: total,
			Page:  f.Offset/f.Limit + 1,
			Limit: f.Limit,
			Pages: (total + f.Limit - 1) / f.Limit,
		},
	}
	for _, e := range expenses {
		amount, _ := e.Amount.Float64()
		page.Expenses = append(page.Expenses, ExpenseRecord{
			ID:            e.ID,
			Amount:        amount,
			Description:   e.Description,
			Category:      e.Category.String(),
			Date:          e.Date.Format(core.TimeLayout),
			FormattedDate: e.Date.Format("Jan 02, 2006"),
		})
	}

	return page, nil
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
