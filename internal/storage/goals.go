package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"aiwealth/internal/core"

	"github.com/shopspring/decimal"
)

// InsertGoal writes a new savings goal and returns its id. Name
// uniqueness is checked by the caller; the UNIQUE constraint is the
// backstop.
func (s *Store) InsertGoal(ctx context.Context, g core.SavingsGoal) (int64, error) {
	var (
		res sql.Result
		err error
	)
	if g.Deadline != nil {
		res, err = s.db.ExecContext(ctx,
			`INSERT INTO savings_goals (goal_name, target_amount, deadline) VALUES (?, ?, ?)`,
			g.Name, g.TargetAmount, g.Deadline.Format(core.DateLayout))
	} else {
		res, err = s.db.ExecContext(ctx,
			`INSERT INTO savings_goals (goal_name, target_amount) VALUES (?, ?)`,
			g.Name, g.TargetAmount)
	}
	if err != nil {
		return 0, fmt.Errorf("insert goal %q: %w", g.Name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("goal id: %w", err)
	}
	return id, nil
}

// GoalExists reports whether a goal with exactly this name exists.
func (s *Store) GoalExists(ctx context.Context, name string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM savings_goals WHERE goal_name = ?`, name).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check goal %q: %w", name, err)
	}
	return true, nil
}

// FindGoalID resolves a goal by id or, when id is zero, by name.
func (s *Store) FindGoalID(ctx context.Context, id int64, name string) (int64, error) {
	var (
		row *sql.Row
	)
	if id != 0 {
		row = s.db.QueryRowContext(ctx, `SELECT id FROM savings_goals WHERE id = ?`, id)
	} else {
		row = s.db.QueryRowContext(ctx, `SELECT id FROM savings_goals WHERE goal_name = ?`, name)
	}
	var goalID int64
	err := row.Scan(&goalID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("savings goal: %w", core.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("find goal: %w", err)
	}
	return goalID, nil
}

// UpdateGoalFields overwrites only the supplied fields. Nil pointers
// leave the column alone.
func (s *Store) UpdateGoalFields(ctx context.Context, id int64, currentSavings, targetAmount *decimal.Decimal) error {
	switch {
	case currentSavings != nil && targetAmount != nil:
		_, err := s.db.ExecContext(ctx,
			`UPDATE savings_goals SET current_savings = ?, target_amount = ? WHERE id = ?`,
			*currentSavings, *targetAmount, id)
		if err != nil {
			return fmt.Errorf("update goal %d: %w", id, err)
		}
	case currentSavings != nil:
		_, err := s.db.ExecContext(ctx,
			`UPDATE savings_goals SET current_savings = ? WHERE id = ?`, *currentSavings, id)
		if err != nil {
			return fmt.Errorf("update goal %d: %w", id, err)
		}
	case targetAmount != nil:
		_, err := s.db.ExecContext(ctx,
			`UPDATE savings_goals SET target_amount = ? WHERE id = ?`, *targetAmount, id)
		if err != nil {
			return fmt.Errorf("update goal %d: %w", id, err)
		}
	}
	return nil
}

// ListGoals returns all savings goals, newest first.
func (s *Store) ListGoals(ctx context.Context) ([]core.SavingsGoal, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, goal_name, target_amount, current_savings, deadline, created_at
		 FROM savings_goals
		 ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	var goals []core.SavingsGoal
	for rows.Next() {
		var (
			g          core.SavingsGoal
			deadline   sql.NullString
			createdRaw string
		)
		if err := rows.Scan(&g.ID, &g.Name, &g.TargetAmount, &g.CurrentSavings, &deadline, &createdRaw); err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		if deadline.Valid {
			if d, err := time.Parse(core.DateLayout, deadline.String); err == nil {
				g.Deadline = &d
			}
		}
		g.CreatedAt = parseStoredTime(createdRaw)
		goals = append(goals, g)
	}
	return goals, rows.Err()
}
