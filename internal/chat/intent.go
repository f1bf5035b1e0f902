package chat

import (
	"strings"

	"aiwealth/internal/core"

	"github.com/shopspring/decimal"
)

// Intent extraction is best-effort substring matching over chat text,
// e.g. "add $45 for groceries" or "set budget for food to 500". When a
// message doesn't fit the patterns, no structured intent is recognized
// and the message goes to the advisor instead. The grammar is
// deliberately not hardened beyond this.

var expenseTriggers = []string{"add", "spent", "paid", "bought", "purchased"}

// ExpenseIntent is the structured result of an expense command; its
// fields match what the ledger's RecordExpense accepts.
type ExpenseIntent struct {
	Amount      decimal.Decimal
	Description string
	Category    core.Category
}

// ParseExpense extracts an expense command from a chat message.
func ParseExpense(message string) (ExpenseIntent, bool) {
	msg := strings.ToLower(strings.TrimSpace(message))

	triggered := false
	for _, trigger := range expenseTriggers {
		if strings.Contains(msg, trigger) {
			triggered = true
			break
		}
	}
	if !triggered || !strings.Contains(msg, "$") {
		return ExpenseIntent{}, false
	}

	amount, ok := amountAfterDollar(msg)
	if !ok {
		return ExpenseIntent{}, false
	}

	description := ""
	for _, connector := range []string{" for ", " on ", " at "} {
		if _, after, found := strings.Cut(msg, connector); found {
			description = strings.TrimSpace(after)
			break
		}
	}
	if description == "" {
		return ExpenseIntent{}, false
	}

	return ExpenseIntent{
		Amount:      amount,
		Description: description,
		Category:    core.Classify(description),
	}, true
}

// BudgetIntent is the structured result of a budget command.
type BudgetIntent struct {
	Category string
	Limit    decimal.Decimal
}

// ParseBudget extracts a "set budget for X to Y" command.
func ParseBudget(message string) (BudgetIntent, bool) {
	msg := strings.ToLower(strings.TrimSpace(message))

	if !strings.Contains(msg, "set budget") && !strings.Contains(msg, "set a budget") {
		return BudgetIntent{}, false
	}

	_, afterFor, found := strings.Cut(msg, " for ")
	if !found {
		return BudgetIntent{}, false
	}
	category, amountPart, found := strings.Cut(afterFor, " to ")
	if !found {
		return BudgetIntent{}, false
	}

	category = strings.TrimSpace(category)
	amountPart = strings.ReplaceAll(strings.TrimSpace(amountPart), "$", "")
	amountPart = strings.ReplaceAll(amountPart, ",", "")
	if fields := strings.Fields(amountPart); len(fields) > 0 {
		amountPart = fields[0]
	}

	limit, err := decimal.NewFromString(amountPart)
	if err != nil || category == "" {
		return BudgetIntent{}, false
	}

	return BudgetIntent{Category: category, Limit: limit}, true
}

// amountAfterDollar reads the number immediately following the first
// dollar sign, tolerating thousands separators.
func amountAfterDollar(msg string) (decimal.Decimal, bool) {
	_, after, found := strings.Cut(msg, "$")
	if !found {
		return decimal.Zero, false
	}
	fields := strings.Fields(after)
	if len(fields) == 0 {
		return decimal.Zero, false
	}
	raw := strings.ReplaceAll(fields[0], ",", "")
	raw = strings.TrimRight(raw, ".!?")

	amount, err := decimal.NewFromString(raw)
	if err != nil || !amount.IsPositive() {
		return decimal.Zero, false
	}
	return amount, true
}
