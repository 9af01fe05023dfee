package models

import "github.com/shopspring/decimal"

// SplitKind names how an expense total is divided among its participants.
type SplitKind string

const (
	// SplitEqual divides the total evenly.
	SplitEqual SplitKind = "equal"
	// SplitExact takes a caller-supplied amount per participant.
	SplitExact SplitKind = "exact"
	// SplitPercentage takes a caller-supplied percentage per participant.
	SplitPercentage SplitKind = "percentage"
	// SplitShares takes a caller-supplied weight per participant.
	SplitShares SplitKind = "shares"
)

// Valid reports whether k is a known split kind.
func (k SplitKind) Valid() bool {
	switch k {
	case SplitEqual, SplitExact, SplitPercentage, SplitShares:
		return true
	}
	return false
}

// Expense represents a single payment made by one member on behalf of
// some members of the group. Expenses are immutable once stored.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// GroupID is the group that owns this expense.
	GroupID string

	// PayerID is the member who paid.
	PayerID int64

	// Description is a short label (e.g., "Dinner at Ramiro").
	Description string

	// Amount is the total paid. Never negative, at most two fractional digits.
	Amount decimal.Decimal

	// Split records the policy the shares were computed with.
	Split SplitKind

	// Shares are the owed portions, ordered by member ID.
	// They sum exactly to Amount.
	Shares []ExpenseShare

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64
}

// ExpenseShare is one member's owed portion of an expense.
type ExpenseShare struct {
	ExpenseID string
	MemberID  int64
	Amount    decimal.Decimal
}
