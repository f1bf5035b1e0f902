package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"aiwealth/internal/core"
	"aiwealth/internal/storage"

	"github.com/shopspring/decimal"
)

// DefaultBudgetLimit is applied when an expense lands in a category
// that has no budget row yet.
var DefaultBudgetLimit = decimal.NewFromInt(300)

// Budget alert thresholds, in percent of the limit.
const (
	alertPercentage  = 120
	warningStatusAt  = 80.0
	exceededStatusAt = 100.0
)

// Publisher emits bookkeeping events to an external broker. A nil
// Publisher disables publishing; failures are logged and never fail the
// originating transaction.
type Publisher interface {
	PublishExpenseRecorded(ctx context.Context, id int64, category string, amount decimal.Decimal) error
	PublishBudgetAlert(ctx context.Context, category string, percentage int, notifType string) error
}

// Ledger reconciles expenses against budgets. Every mutation runs in a
// single transaction: partial expense/budget state is never observable.
type Ledger struct {
	store *storage.Store
	pub   Publisher
	now   func() time.Time
}

func NewLedger(store *storage.Store, pub Publisher) *Ledger {
	return &Ledger{store: store, pub: pub, now: time.Now}
}

// ExpenseInput is what the web and chat layers hand to RecordExpense.
// Category and Date are optional; blank category is derived from the
// description, unparseable dates fall back to the current time.
type ExpenseInput struct {
	Amount      decimal.Decimal
	Description string
	Category    string
	Date        string
}

// RecordExpense validates the input, derives a category if necessary
// and atomically inserts the expense, bumps the budget's running spend,
// and emits a threshold notification when the budget is exceeded.
func (l *Ledger) RecordExpense(ctx context.Context, in ExpenseInput) (int64, error) {
	category := core.Category(strings.ToLower(strings.TrimSpace(in.Category)))
	if category == "" {
		category = core.Classify(in.Description)
	}

	expense := core.Expense{
		Amount:      in.Amount,
		Description: strings.TrimSpace(in.Description),
		Category:    category,
		Date:        core.NormalizeDate(in.Date, l.now()),
	}
	if err := expense.Validate(); err != nil {
		return 0, err
	}

	tx, err := l.store.BeginTx(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	id, err := tx.InsertExpense(ctx, expense)
	if err != nil {
		return 0, err
	}
	if err := tx.EnsureBudget(ctx, category.String(), DefaultBudgetLimit); err != nil {
		return 0, err
	}
	if err := tx.AddSpent(ctx, category.String(), expense.Amount); err != nil {
		return 0, err
	}

	budget, err := tx.GetBudget(ctx, category.String())
	if err != nil {
		return 0, err
	}

	var crossed *core.Notification
	if budget.SpentAmount.GreaterThan(budget.LimitAmount) {
		percentage := int(math.Round(budget.Percentage()))
		notifType := core.NotificationWarning
		if percentage >= alertPercentage {
			notifType = core.NotificationAlert
		}
		message := fmt.Sprintf("Alert: You've exceeded your %s budget of $%s (currently at %d%%)!",
			category, budget.LimitAmount.String(), percentage)
		if err := tx.InsertNotification(ctx, message, notifType); err != nil {
			return 0, err
		}
		crossed = &core.Notification{Message: message, Type: notifType}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense recorded",
		"id", id,
		"amount", expense.Amount.String(),
		"category", category,
		"description", expense.Description)

	if l.pub != nil {
		if err := l.pub.PublishExpenseRecorded(ctx, id, category.String(), expense.Amount); err != nil {
			slog.ErrorContext(ctx, "Failed to publish expense event", "id", id, "error", err)
		}
		if crossed != nil {
			percentage := int(math.Round(budget.Percentage()))
			if err := l.pub.PublishBudgetAlert(ctx, category.String(), percentage, crossed.Type); err != nil {
				slog.ErrorContext(ctx, "Failed to publish budget alert", "category", category, "error", err)
			}
		}
	}

	return id, nil
}

// DeleteExpense removes the expense and gives its amount back to the
// budget, floored at zero, in one transaction.
func (l *Ledger) DeleteExpense(ctx context.Context, id int64) error {
	tx, err := l.store.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	expense, err := tx.GetExpense(ctx, id)
	if err != nil {
		return err
	}
	if err := tx.DeleteExpense(ctx, id); err != nil {
		return err
	}
	if err := tx.ReduceSpent(ctx, expense.Category.String(), expense.Amount); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit expense delete: %w", err)
	}

	slog.InfoContext(ctx, "Expense deleted", "id", id, "category", expense.Category)
	return nil
}

// SetBudget creates or overwrites the category's spending ceiling. The
// accumulated spend is never reset.
func (l *Ledger) SetBudget(ctx context.Context, category string, limit decimal.Decimal) error {
	category = strings.ToLower(strings.TrimSpace(category))
	if category == "" {
		return core.ErrEmptyCategory
	}
	if limit.IsNegative() {
		return core.ErrNegativeLimit
	}

	if err := l.store.SetBudgetLimit(ctx, category, limit); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Budget set", "category", category, "limit", limit.String())
	return nil
}
