package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"aiwealth/internal/core"

	"github.com/shopspring/decimal"
)

// ExpenseFilter narrows ListExpenses. Date bounds compare lexically
// against the stored canonical timestamp format, so callers should pass
// values in core.TimeLayout or core.DateLayout form.
type ExpenseFilter struct {
	Limit    int
	Offset   int
	Category string
	DateFrom string
	DateTo   string
}

// InsertExpense writes a new expense row inside the transaction and
// returns its generated id.
func (t *Tx) InsertExpense(ctx context.Context, e core.Expense) (int64, error) {
	res, err := t.tx.ExecContext(ctx,
		`INSERT INTO expenses (amount, description, category, date) VALUES (?, ?, ?, ?)`,
		e.Amount, e.Description, e.Category.String(), e.Date.Format(core.TimeLayout))
	if err != nil {
		return 0, fmt.Errorf("insert expense: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("expense id: %w", err)
	}
	return id, nil
}

// GetExpense inside a transaction; used by the ledger before deleting.
func (t *Tx) GetExpense(ctx context.Context, id int64) (core.Expense, error) {
	return getExpense(ctx, t.tx, id)
}

// GetExpense outside a transaction.
func (s *Store) GetExpense(ctx context.Context, id int64) (core.Expense, error) {
	return getExpense(ctx, s.db, id)
}

func getExpense(ctx context.Context, q querier, id int64) (core.Expense, error) {
	var (
		e       core.Expense
		dateRaw string
	)
	err := q.QueryRowContext(ctx,
		`SELECT id, amount, description, category, date FROM expenses WHERE id = ?`, id).
		Scan(&e.ID, &e.Amount, &e.Description, &e.Category, &dateRaw)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, fmt.Errorf("expense %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense %d: %w", id, err)
	}
	e.Date = parseStoredTime(dateRaw)
	return e, nil
}

// DeleteExpense removes the row inside the transaction.
func (t *Tx) DeleteExpense(ctx context.Context, id int64) error {
	res, err := t.tx.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete expense %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete expense %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("expense %d: %w", id, core.ErrNotFound)
	}
	return nil
}

// ListExpenses returns a filtered page in reverse-chronological order
// plus the total row count matching the filter.
func (s *Store) ListExpenses(ctx context.Context, f ExpenseFilter) ([]core.Expense, int, error) {
	where, args := expenseFilterClause(f)

	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM expenses`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count expenses: %w", err)
	}

	query := `SELECT id, amount, description, category, date FROM expenses` +
		where + ` ORDER BY date DESC LIMIT ? OFFSET ?`
	rows, err := s.db.QueryContext(ctx, query, append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []core.Expense
	for rows.Next() {
		var (
			e       core.Expense
			dateRaw string
		)
		if err := rows.Scan(&e.ID, &e.Amount, &e.Description, &e.Category, &dateRaw); err != nil {
			return nil, 0, fmt.Errorf("scan expense: %w", err)
		}
		e.Date = parseStoredTime(dateRaw)
		expenses = append(expenses, e)
	}
	return expenses, total, rows.Err()
}

func expenseFilterClause(f ExpenseFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.Category != "" {
		conds = append(conds, "category = ?")
		args = append(args, f.Category)
	}
	if f.DateFrom != "" {
		conds = append(conds, "date >= ?")
		args = append(args, f.DateFrom)
	}
	if f.DateTo != "" {
		conds = append(conds, "date <= ?")
		args = append(args, f.DateTo)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// CategoryTotal is one category's share of spend over a period.
type CategoryTotal struct {
	Category string
	Amount   decimal.Decimal
}

// DailyTotal is one day's aggregate spend.
type DailyTotal struct {
	Day    string
	Amount decimal.Decimal
}

// periodFilter maps a summary period to its SQL predicate. The zero
// period means no filtering.
func periodFilter(period string) string {
	switch period {
	case "week":
		return " WHERE date >= date('now', '-7 days')"
	case "month":
		return " WHERE strftime('%Y-%m', date) = strftime('%Y-%m', 'now')"
	case "year":
		return " WHERE strftime('%Y', date) = strftime('%Y', 'now')"
	default:
		return ""
	}
}

// TotalExpenses sums all expense amounts matching the period.
func (s *Store) TotalExpenses(ctx context.Context, period string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM expenses`+periodFilter(period)).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("total expenses: %w", err)
	}
	return total, nil
}

// CategoryTotals aggregates spend per category for the period, largest
// first.
func (s *Store) CategoryTotals(ctx context.Context, period string) ([]CategoryTotal, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT category, SUM(amount) AS amount FROM expenses`+periodFilter(period)+
			` GROUP BY category ORDER BY amount DESC`)
	if err != nil {
		return nil, fmt.Errorf("category totals: %w", err)
	}
	defer rows.Close()

	var totals []CategoryTotal
	for rows.Next() {
		var ct CategoryTotal
		if err := rows.Scan(&ct.Category, &ct.Amount); err != nil {
			return nil, fmt.Errorf("scan category total: %w", err)
		}
		totals = append(totals, ct)
	}
	return totals, rows.Err()
}

// DailyTrend returns day-by-day spend for the trailing 30 days,
// regardless of any summary period filter.
func (s *Store) DailyTrend(ctx context.Context) ([]DailyTotal, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT date(date) AS day, SUM(amount) AS daily_total
		 FROM expenses
		 WHERE date >= date('now', '-30 days')
		 GROUP BY day
		 ORDER BY day`)
	if err != nil {
		return nil, fmt.Errorf("daily trend: %w", err)
	}
	defer rows.Close()

	var trend []DailyTotal
	for rows.Next() {
		var dt DailyTotal
		if err := rows.Scan(&dt.Day, &dt.Amount); err != nil {
			return nil, fmt.Errorf("scan daily total: %w", err)
		}
		trend = append(trend, dt)
	}
	return trend, rows.Err()
}

// parseStoredTime reads timestamps in the canonical layout, falling
// back to date-only values written by older rows.
func parseStoredTime(raw string) time.Time {
	if t, err := time.Parse(core.TimeLayout, raw); err == nil {
		return t
	}
	if t, err := time.Parse(core.DateLayout, raw); err == nil {
		return t
	}
	return time.Time{}
}
