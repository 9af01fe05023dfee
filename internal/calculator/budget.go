package calculator

import (
	"fmt"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/shopspring/decimal"
)

// Budget alert thresholds, as percentages of the budget used.
var (
	budgetWarnAt   = decimal.NewFromInt(50)
	budgetNearAt   = decimal.NewFromInt(80)
	budgetExceedAt = decimal.NewFromInt(100)
)

// BudgetStatus summarises group spending against its optional budget.
type BudgetStatus struct {
	TotalSpent     decimal.Decimal
	Budget         decimal.NullDecimal
	PercentageUsed decimal.Decimal // Zero when there is no budget
	Alerts         []string
}

// TotalSpent returns the sum of all expense amounts.
func TotalSpent(expenses []models.Expense) decimal.Decimal {
	total := decimal.Zero
	for _, exp := range expenses {
		total = total.Add(exp.Amount)
	}
	return total
}

// ComputeBudgetStatus reports how much of budget the expenses have used.
// A missing or non-positive budget yields only the total spent.
func ComputeBudgetStatus(budget decimal.NullDecimal, expenses []models.Expense) BudgetStatus {
	status := BudgetStatus{
		TotalSpent:     TotalSpent(expenses),
		Budget:         budget,
		PercentageUsed: decimal.Zero,
	}
	if !budget.Valid || !budget.Decimal.IsPositive() {
		return status
	}

	// Thresholds are checked against the unrounded ratio; only the reported
	// percentage is rounded.
	used := status.TotalSpent.Mul(hundred).Div(budget.Decimal)
	status.PercentageUsed = used.Round(CurrencyPlaces)

	switch {
	case used.GreaterThanOrEqual(budgetExceedAt):
		status.Alerts = append(status.Alerts, fmt.Sprintf("Budget exceeded by %s%%", used.Sub(budgetExceedAt).StringFixed(1)))
	case used.GreaterThanOrEqual(budgetNearAt):
		status.Alerts = append(status.Alerts, "80% of budget used - nearing limit")
	case used.GreaterThanOrEqual(budgetWarnAt):
		status.Alerts = append(status.Alerts, "50% of budget used")
	}
	return status
}
