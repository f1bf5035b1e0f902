package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"aiwealth/internal/core"
	"aiwealth/internal/storage"

	"github.com/shopspring/decimal"
)

// Goals manages savings goals. Progress is tracked manually; it is
// deliberately independent of expense bookkeeping.
type Goals struct {
	store *storage.Store
}

func NewGoals(store *storage.Store) *Goals {
	return &Goals{store: store}
}

// CreateGoal adds a new goal. Goal names are unique (case-sensitive).
// An unparseable deadline is silently dropped rather than rejected.
func (g *Goals) CreateGoal(ctx context.Context, name string, target decimal.Decimal, deadline string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, core.ErrEmptyGoalName
	}
	if !target.IsPositive() {
		return 0, core.ErrInvalidTarget
	}

	exists, err := g.store.GoalExists(ctx, name)
	if err != nil {
		return 0, err
	}
	if exists {
		return 0, core.ErrDuplicateGoal
	}

	goal := core.SavingsGoal{Name: name, TargetAmount: target}
	if deadline = strings.TrimSpace(deadline); deadline != "" {
		if d, err := time.Parse(core.DateLayout, deadline); err == nil {
			goal.Deadline = &d
		}
	}

	id, err := g.store.InsertGoal(ctx, goal)
	if err != nil {
		return 0, err
	}

	slog.InfoContext(ctx, "Savings goal created", "id", id, "name", name, "target", target.String())
	return id, nil
}

// UpdateGoal resolves a goal by id or name and overwrites only the
// supplied fields. Returns false when nothing was supplied to update.
func (g *Goals) UpdateGoal(ctx context.Context, id int64, name string, currentSavings, targetAmount *decimal.Decimal) (bool, error) {
	if id == 0 && strings.TrimSpace(name) == "" {
		return false, fmt.Errorf("%w: either goal id or goal name must be provided", core.ErrValidation)
	}
	if currentSavings != nil && currentSavings.IsNegative() {
		return false, core.ErrNegativeSavings
	}
	if targetAmount != nil && !targetAmount.IsPositive() {
		return false, core.ErrInvalidTarget
	}

	goalID, err := g.store.FindGoalID(ctx, id, name)
	if err != nil {
		return false, err
	}

	if currentSavings == nil && targetAmount == nil {
		return false, nil
	}

	if err := g.store.UpdateGoalFields(ctx, goalID, currentSavings, targetAmount); err != nil {
		return false, err
	}

	slog.InfoContext(ctx, "Savings goal updated", "id", goalID)
	return true, nil
}

// GoalView is a savings goal annotated with progress for the UI.
type GoalView struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	TargetAmount   float64 `json:"target_amount"`
	CurrentSavings float64 `json:"current_savings"`
	Deadline       string  `json:"deadline,omitempty"`
	Progress       float64 `json:"progress"`
	CreatedAt      string  `json:"created_at"`
}

// ListGoals returns all goals, newest first, with progress percentage.
func (g *Goals) ListGoals(ctx context.Context) ([]GoalView, error) {
	goals, err := g.store.ListGoals(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]GoalView, 0, len(goals))
	for _, goal := range goals {
		target, _ := goal.TargetAmount.Float64()
		current, _ := goal.CurrentSavings.Float64()
		view := GoalView{
			ID:             goal.ID,
			Name:           goal.Name,
			TargetAmount:   target,
			CurrentSavings: current,
			Progress:       goal.Progress(),
			CreatedAt:      goal.CreatedAt.Format(core.TimeLayout),
		}
		if goal.Deadline != nil {
			view.Deadline = goal.Deadline.Format(core.DateLayout)
		}
		views = append(views, view)
	}
	return views, nil
}
