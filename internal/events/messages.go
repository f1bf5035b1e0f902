package events

import (
	"encoding/json"
	"time"
)

// ExpenseRecorded is published after an expense transaction commits.
type ExpenseRecorded struct {
	ID        int64     `json:"id"`
	Category  string    `json:"category"`
	Amount    string    `json:"amount"`
	Timestamp time.Time `json:"timestamp"`
}

// BudgetAlert is published when a budget threshold crossing created a
// notification.
type BudgetAlert struct {
	Category   string    `json:"category"`
	Percentage int       `json:"percentage"`
	Type       string    `json:"type"`
	Timestamp  time.Time `json:"timestamp"`
}

func (m ExpenseRecorded) toJSON() ([]byte, error) { return json.Marshal(m) }
func (m BudgetAlert) toJSON() ([]byte, error)     { return json.Marshal(m) }
