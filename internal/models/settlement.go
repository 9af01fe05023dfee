package models

import "github.com/shopspring/decimal"

// Payment is a recorded transfer between group members to clear debts.
// Unlike the settlements suggested by the calculator, payments are stored
// and count towards every later balance computation.
type Payment struct {
	// ID is the unique identifier for the payment (UUID format).
	ID string

	// GroupID is the group this payment belongs to.
	GroupID string

	// FromMemberID is the member who paid (debtor settling up).
	FromMemberID int64

	// ToMemberID is the member who received payment (creditor being paid).
	ToMemberID int64

	// Amount is the payment amount. Always positive.
	Amount decimal.Decimal

	// CreatedAt is the Unix timestamp when the payment was recorded.
	CreatedAt int64
}
