package service

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/pkg/api"
)

func toAPIGroup(group *models.Group) *api.Group {
	members := make([]api.Member, len(group.Members))
	for i, m := range group.Members {
		members[i] = api.Member{ID: m.ID, Name: m.Name}
	}
	return &api.Group{
		ID:        group.ID,
		Name:      group.Name,
		Members:   members,
		Budget:    fromNullDecimal(group.Budget),
		CreatedAt: group.CreatedAt,
	}
}

func toAPIShares(shares []models.ExpenseShare) []api.Share {
	out := make([]api.Share, len(shares))
	for i, s := range shares {
		out[i] = api.Share{MemberID: s.MemberID, Amount: s.Amount}
	}
	return out
}

func toAPIExpense(expense *models.Expense) *api.Expense {
	return &api.Expense{
		ID:          expense.ID,
		GroupID:     expense.GroupID,
		PayerID:     expense.PayerID,
		Description: expense.Description,
		Amount:      expense.Amount,
		Split:       string(expense.Split),
		Shares:      toAPIShares(expense.Shares),
		CreatedAt:   expense.CreatedAt,
	}
}

func toAPIPayment(payment *models.Payment) *api.Payment {
	return &api.Payment{
		ID:           payment.ID,
		GroupID:      payment.GroupID,
		FromMemberID: payment.FromMemberID,
		ToMemberID:   payment.ToMemberID,
		Amount:       payment.Amount,
		CreatedAt:    payment.CreatedAt,
	}
}

func toAPIBudgetStatus(status calculator.BudgetStatus) *api.BudgetStatus {
	return &api.BudgetStatus{
		TotalSpent:     status.TotalSpent,
		Budget:         fromNullDecimal(status.Budget),
		PercentageUsed: status.PercentageUsed,
		Alerts:         status.Alerts,
	}
}

func memberNames(group *models.Group) map[int64]string {
	names := make(map[int64]string, len(group.Members))
	for _, m := range group.Members {
		names[m.ID] = m.Name
	}
	return names
}

func fromNullDecimal(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}

func toNullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*d)
}
