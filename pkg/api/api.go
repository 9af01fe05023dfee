// Package api defines the request and response messages of the splitledger
// RPC services. Messages are plain structs carried as JSON by the codec in
// package apiconnect; amounts travel as decimal strings ("33.34").
package api

import "github.com/shopspring/decimal"

// Split policy names accepted in CreateExpenseRequest.Split.
const (
	SplitEqual      = "equal"
	SplitExact      = "exact"
	SplitPercentage = "percentage"
	SplitShares     = "shares"
)

type Member struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Group struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Members   []Member         `json:"members"`
	Budget    *decimal.Decimal `json:"budget,omitempty"`
	CreatedAt int64            `json:"createdAt"`
}

type Share struct {
	MemberID int64           `json:"memberId"`
	Amount   decimal.Decimal `json:"amount"`
}

type Expense struct {
	ID          string          `json:"id"`
	GroupID     string          `json:"groupId"`
	PayerID     int64           `json:"payerId"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Split       string          `json:"split"`
	Shares      []Share         `json:"shares"`
	CreatedAt   int64           `json:"createdAt"`
}

type Payment struct {
	ID           string          `json:"id"`
	GroupID      string          `json:"groupId"`
	FromMemberID int64           `json:"fromMemberId"`
	ToMemberID   int64           `json:"toMemberId"`
	Amount       decimal.Decimal `json:"amount"`
	CreatedAt    int64           `json:"createdAt"`
}

// MemberBalance is one member's position. Net > 0 means the member is owed
// money, Net < 0 means the member owes money.
type MemberBalance struct {
	MemberID  int64           `json:"memberId"`
	Name      string          `json:"name"`
	TotalPaid decimal.Decimal `json:"totalPaid"`
	TotalOwed decimal.Decimal `json:"totalOwed"`
	Net       decimal.Decimal `json:"net"`
}

// Settlement is a suggested transfer that clears debts.
type Settlement struct {
	FromMemberID int64           `json:"fromMemberId"`
	FromName     string          `json:"fromName"`
	ToMemberID   int64           `json:"toMemberId"`
	ToName       string          `json:"toName"`
	Amount       decimal.Decimal `json:"amount"`
}

type BudgetStatus struct {
	TotalSpent     decimal.Decimal  `json:"totalSpent"`
	Budget         *decimal.Decimal `json:"budget,omitempty"`
	PercentageUsed decimal.Decimal  `json:"percentageUsed"`
	Alerts         []string         `json:"alerts,omitempty"`
}

// GroupService messages

type CreateGroupRequest struct {
	Name    string           `json:"name"`
	Members []string         `json:"members"`
	Budget  *decimal.Decimal `json:"budget,omitempty"`
}

type CreateGroupResponse struct {
	Group *Group `json:"group"`
}

type GetGroupRequest struct {
	GroupID string `json:"groupId"`
}

type GetGroupResponse struct {
	Group *Group `json:"group"`
}

type ListGroupsRequest struct{}

type ListGroupsResponse struct {
	Groups []*Group `json:"groups"`
}

type AddMemberRequest struct {
	GroupID string `json:"groupId"`
	Name    string `json:"name"`
}

type AddMemberResponse struct {
	Member *Member `json:"member"`
}

type RemoveMemberRequest struct {
	GroupID  string `json:"groupId"`
	MemberID int64  `json:"memberId"`
}

type RemoveMemberResponse struct{}

type DeleteGroupRequest struct {
	GroupID string `json:"groupId"`
}

type DeleteGroupResponse struct{}

// SetBudgetRequest sets the group budget. A nil Budget removes it.
type SetBudgetRequest struct {
	GroupID string           `json:"groupId"`
	Budget  *decimal.Decimal `json:"budget,omitempty"`
}

type SetBudgetResponse struct {
	Status *BudgetStatus `json:"status"`
}

type GetBudgetStatusRequest struct {
	GroupID string `json:"groupId"`
}

type GetBudgetStatusResponse struct {
	Status *BudgetStatus `json:"status"`
}

// LedgerService messages

// PreviewSharesRequest computes shares without storing anything.
// Values carries the per-participant amount, percentage or weight, keyed by
// member ID; it is ignored for equal splits.
type PreviewSharesRequest struct {
	GroupID      string                    `json:"groupId"`
	Amount       decimal.Decimal           `json:"amount"`
	Split        string                    `json:"split"`
	Participants []int64                   `json:"participants"`
	Values       map[int64]decimal.Decimal `json:"values,omitempty"`
}

type PreviewSharesResponse struct {
	Shares []Share `json:"shares"`
}

type CreateExpenseRequest struct {
	GroupID      string                    `json:"groupId"`
	PayerID      int64                     `json:"payerId"`
	Description  string                    `json:"description"`
	Amount       decimal.Decimal           `json:"amount"`
	Split        string                    `json:"split"`
	Participants []int64                   `json:"participants"`
	Values       map[int64]decimal.Decimal `json:"values,omitempty"`
}

type CreateExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

// UpdateExpenseRequest replaces an expense's fields and recomputes its shares.
// Participants and Values follow the same rules as CreateExpenseRequest.
type UpdateExpenseRequest struct {
	ExpenseID    string                    `json:"expenseId"`
	PayerID      int64                     `json:"payerId"`
	Description  string                    `json:"description"`
	Amount       decimal.Decimal           `json:"amount"`
	Split        string                    `json:"split"`
	Participants []int64                   `json:"participants"`
	Values       map[int64]decimal.Decimal `json:"values,omitempty"`
}

type UpdateExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type DeleteExpenseRequest struct {
	ExpenseID string `json:"expenseId"`
}

type DeleteExpenseResponse struct{}

type ListExpensesRequest struct {
	GroupID string `json:"groupId"`
}

type ListExpensesResponse struct {
	Expenses []*Expense `json:"expenses"`
}

type RecordPaymentRequest struct {
	GroupID      string          `json:"groupId"`
	FromMemberID int64           `json:"fromMemberId"`
	ToMemberID   int64           `json:"toMemberId"`
	Amount       decimal.Decimal `json:"amount"`
}

type RecordPaymentResponse struct {
	Payment *Payment `json:"payment"`
}

type GetBalancesRequest struct {
	GroupID string `json:"groupId"`
}

type GetBalancesResponse struct {
	Balances    []*MemberBalance `json:"balances"`
	Settlements []*Settlement    `json:"settlements"`
}
