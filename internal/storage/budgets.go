package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"aiwealth/internal/core"

	"github.com/shopspring/decimal"
)

// EnsureBudget creates a budget row for the category if none exists,
// using the supplied default limit. Existing rows are left untouched.
// Kept separate from AddSpent so the default-limit behavior is explicit
// rather than hidden inside an upsert.
func (t *Tx) EnsureBudget(ctx context.Context, category string, defaultLimit decimal.Decimal) error {
	_, err := t.tx.ExecContext(ctx,
		`INSERT INTO budgets (category, limit_amount) VALUES (?, ?)
		 ON CONFLICT(category) DO NOTHING`,
		category, defaultLimit)
	if err != nil {
		return fmt.Errorf("ensure budget %q: %w", category, err)
	}
	return nil
}

// AddSpent increments the category's running spend total.
func (t *Tx) AddSpent(ctx context.Context, category string, amount decimal.Decimal) error {
	res, err := t.tx.ExecContext(ctx,
		`UPDATE budgets SET spent_amount = spent_amount + ? WHERE category = ?`,
		amount, category)
	if err != nil {
		return fmt.Errorf("add spent to budget %q: %w", category, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("add spent to budget %q: %w", category, err)
	}
	if n == 0 {
		return fmt.Errorf("budget %q: %w", category, core.ErrNotFound)
	}
	return nil
}

// ReduceSpent decrements the running total, floored at zero.
func (t *Tx) ReduceSpent(ctx context.Context, category string, amount decimal.Decimal) error {
	_, err := t.tx.ExecContext(ctx,
		`UPDATE budgets SET spent_amount = MAX(0, spent_amount - ?) WHERE category = ?`,
		amount, category)
	if err != nil {
		return fmt.Errorf("reduce spent on budget %q: %w", category, err)
	}
	return nil
}

// GetBudget reads a budget row inside the transaction; the ledger uses
// it to evaluate threshold crossings right after incrementing.
func (t *Tx) GetBudget(ctx context.Context, category string) (core.Budget, error) {
	return getBudget(ctx, t.tx, category)
}

// GetBudget outside a transaction.
func (s *Store) GetBudget(ctx context.Context, category string) (core.Budget, error) {
	return getBudget(ctx, s.db, category)
}

func getBudget(ctx context.Context, q querier, category string) (core.Budget, error) {
	var b core.Budget
	err := q.QueryRowContext(ctx,
		`SELECT id, category, limit_amount, spent_amount, period FROM budgets WHERE category = ?`,
		category).
		Scan(&b.ID, &b.Category, &b.LimitAmount, &b.SpentAmount, &b.Period)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, fmt.Errorf("budget %q: %w", category, core.ErrNotFound)
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("get budget %q: %w", category, err)
	}
	return b, nil
}

// ListBudgets returns every budget row.
func (s *Store) ListBudgets(ctx context.Context) ([]core.Budget, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, category, limit_amount, spent_amount, period FROM budgets`)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var budgets []core.Budget
	for rows.Next() {
		var b core.Budget
		if err := rows.Scan(&b.ID, &b.Category, &b.LimitAmount, &b.SpentAmount, &b.Period); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

// SetBudgetLimit creates the budget or overwrites its limit, leaving
// the accumulated spend untouched.
func (s *Store) SetBudgetLimit(ctx context.Context, category string, limit decimal.Decimal) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO budgets (category, limit_amount) VALUES (?, ?)
		 ON CONFLICT(category) DO UPDATE SET limit_amount = excluded.limit_amount`,
		category, limit)
	if err != nil {
		return fmt.Errorf("set budget %q: %w", category, err)
	}
	return nil
}
