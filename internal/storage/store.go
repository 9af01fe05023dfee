// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is wrapped by every lookup that finds no matching record.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is wrapped when a member name is already taken in a group.
	ErrAlreadyExists = errors.New("already exists")
	// ErrMemberInUse is wrapped when a member still appears in an expense or payment.
	ErrMemberInUse = errors.New("member has expenses or payments")
	// ErrLastMember is wrapped when removing a member would empty the group.
	ErrLastMember = errors.New("group must keep at least one member")
)

// Store defines the interface for ledger record storage.
// The store only inserts and queries records; it never computes balances.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	// CreateGroup persists a new group together with its initial members.
	// group.ID, group.CreatedAt and each member's ID and GroupID are populated
	// by the store. Member IDs increase in the order members are given.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group and its roster ordered by member ID.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// ListGroups retrieves all groups, newest first.
	ListGroups(ctx context.Context) ([]*models.Group, error)

	// DeleteGroup removes a group with all its members, expenses and payments.
	DeleteGroup(ctx context.Context, groupID string) error

	// AddMember appends a member to an existing group and assigns its ID.
	// A name already used in the group yields ErrAlreadyExists.
	AddMember(ctx context.Context, member *models.Member) error

	// RemoveMember deletes a member from a group's roster. It fails with
	// ErrMemberInUse while any expense, share or payment references the
	// member, and with ErrLastMember when the member is the only one left.
	RemoveMember(ctx context.Context, groupID string, memberID int64) error

	// SetBudget sets the group budget, or clears it when budget is not Valid.
	SetBudget(ctx context.Context, groupID string, budget decimal.NullDecimal) error

	// CreateExpense persists an expense and its shares in one transaction.
	// expense.ID and expense.CreatedAt are populated by the store.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// GetExpense retrieves an expense with its shares.
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)

	// UpdateExpense overwrites an expense's payer, description, amount and
	// split, and replaces its shares, in one transaction. CreatedAt is kept.
	UpdateExpense(ctx context.Context, expense *models.Expense) error

	// DeleteExpense removes an expense and its shares.
	DeleteExpense(ctx context.Context, expenseID string) error

	// ListExpensesByGroup retrieves a group's expenses with their shares,
	// oldest first.
	ListExpensesByGroup(ctx context.Context, groupID string) ([]models.Expense, error)

	// CreatePayment persists a recorded payment between two members.
	CreatePayment(ctx context.Context, payment *models.Payment) error

	// ListPaymentsByGroup retrieves a group's payments, oldest first.
	ListPaymentsByGroup(ctx context.Context, groupID string) ([]models.Payment, error)

	// Close releases any resources held by the store.
	Close() error
}
