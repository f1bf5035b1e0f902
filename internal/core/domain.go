package core

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TimeLayout is the canonical timestamp format stored in the database.
const (
	TimeLayout = "2006-01-02 15:04:05"
	DateLayout = "2006-01-02"
)

// Category buckets an expense. The set is closed; CategoryOther is the
// fallback for anything the classifier cannot place.
type Category string

const (
	CategoryFood          Category = "food"
	CategoryHousing       Category = "housing"
	CategoryTransport     Category = "transport"
	CategoryEntertainment Category = "entertainment"
	CategoryShopping      Category = "shopping"
	CategoryHealth        Category = "health"
	CategoryOther         Category = "other"
)

// Categories returns the full closed set, classifier categories first.
func Categories() []Category {
	return []Category{
		CategoryFood,
		CategoryHousing,
		CategoryTransport,
		CategoryEntertainment,
		CategoryShopping,
		CategoryHealth,
		CategoryOther,
	}
}

func (c Category) String() string { return string(c) }

// Valid reports whether c belongs to the closed category set.
func (c Category) Valid() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

// Expense is a single spend record. Rows are immutable once written;
// the only mutation is deletion.
type Expense struct {
	ID          int64
	Amount      decimal.Decimal
	Description string
	Category    Category
	Date        time.Time
}

// Validate checks the invariants the ledger relies on before any row
// is written.
func (e Expense) Validate() error {
	if !e.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(e.Description) == "" {
		return ErrEmptyDescription
	}
	return nil
}

// Budget is a per-category spending ceiling with an incrementally
// maintained running total. spent_amount is never recomputed from the
// expense rows; the ledger keeps it consistent inside transactions.
type Budget struct {
	ID          int64
	Category    string
	LimitAmount decimal.Decimal
	SpentAmount decimal.Decimal
	Period      string
}

// Percentage returns spent/limit*100, or 0 when the limit is zero.
func (b Budget) Percentage() float64 {
	if b.LimitAmount.IsZero() {
		return 0
	}
	p, _ := b.SpentAmount.Div(b.LimitAmount).Mul(decimal.NewFromInt(100)).Float64()
	return p
}

// Remaining returns the unspent part of the limit; negative when the
// budget is exceeded.
func (b Budget) Remaining() decimal.Decimal {
	return b.LimitAmount.Sub(b.SpentAmount)
}

// SavingsGoal tracks a target amount with manually updated progress,
// independent of expense tracking.
type SavingsGoal struct {
	ID             int64
	Name           string
	TargetAmount   decimal.Decimal
	CurrentSavings decimal.Decimal
	Deadline       *time.Time
	CreatedAt      time.Time
}

// Progress returns current/target*100 rounded to one decimal, 0 when
// the target is zero.
func (g SavingsGoal) Progress() float64 {
	if g.TargetAmount.IsZero() {
		return 0
	}
	p, _ := g.CurrentSavings.Div(g.TargetAmount).Mul(decimal.NewFromInt(100)).Round(1).Float64()
	return p
}

// Notification statuses and types as stored.
const (
	NotificationUnread = "unread"
	NotificationRead   = "read"

	NotificationInfo    = "info"
	NotificationWarning = "warning"
	NotificationAlert   = "alert"
)

// Notification is an alert row created when a budget threshold is
// crossed. Notifications are never deleted automatically.
type Notification struct {
	ID        int64
	Message   string
	Status    string
	Type      string
	CreatedAt time.Time
}

// NormalizeDate interprets a user-supplied date string. A full
// timestamp is taken as-is, a date-only value expands to midnight, and
// anything unparseable falls back to now.
func NormalizeDate(s string, now time.Time) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return now
	}
	if t, err := time.Parse(TimeLayout, s); err == nil {
		return t
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t
	}
	return now
}
