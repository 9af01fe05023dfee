package calculator

import (
	"fmt"
	"slices"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/shopspring/decimal"
)

// percentageTolerance is how far percentages may drift from 100 in total,
// e.g. three participants at 33.33 each.
var percentageTolerance = decimal.New(1, -2)

// SplitPolicy describes how an expense is divided.
type SplitPolicy struct {
	Kind models.SplitKind

	// Values holds one entry per participant: an amount for exact splits,
	// a percentage for percentage splits, a weight for shares splits.
	// Ignored for equal splits.
	Values map[int64]decimal.Decimal
}

// EqualSplit divides an expense evenly among its participants.
func EqualSplit() SplitPolicy {
	return SplitPolicy{Kind: models.SplitEqual}
}

// ExactSplit assigns each participant the given amount.
func ExactSplit(amounts map[int64]decimal.Decimal) SplitPolicy {
	return SplitPolicy{Kind: models.SplitExact, Values: amounts}
}

// PercentageSplit assigns each participant the given percentage of the total.
func PercentageSplit(percentages map[int64]decimal.Decimal) SplitPolicy {
	return SplitPolicy{Kind: models.SplitPercentage, Values: percentages}
}

// SharesSplit divides the total in proportion to the given weights.
func SharesSplit(weights map[int64]decimal.Decimal) SplitPolicy {
	return SplitPolicy{Kind: models.SplitShares, Values: weights}
}

// ComputeShares divides expense.Amount among participants according to policy.
//
// Amounts are worked out in minor currency units. Whenever the total does not
// divide evenly, the leftover units go one at a time to participants in
// ascending member ID order, so the shares always add up to the total exactly.
// The returned shares are ordered by member ID.
//
// Malformed input is reported as a *ValidationError.
func ComputeShares(expense models.Expense, participants []int64, policy SplitPolicy) ([]models.ExpenseShare, error) {
	total := expense.Amount
	if !total.IsPositive() {
		return nil, newValidationError("amount", "amount must be greater than zero")
	}
	if !HasCurrencyPrecision(total) {
		return nil, newValidationError("amount", "amount %s has more than %d decimal places", total, CurrencyPlaces)
	}

	ids, err := sortedParticipants(participants)
	if err != nil {
		return nil, err
	}

	var amounts []decimal.Decimal
	switch policy.Kind {
	case models.SplitEqual:
		weights := make([]decimal.Decimal, len(ids))
		for i := range weights {
			weights[i] = one
		}
		amounts = apportion(total, weights)

	case models.SplitExact:
		amounts, err = exactAmounts(total, ids, policy.Values)

	case models.SplitPercentage:
		amounts, err = percentageAmounts(total, ids, policy.Values)

	case models.SplitShares:
		amounts, err = weightedAmounts(total, ids, policy.Values)

	default:
		return nil, newValidationError("split", "unknown split policy %q", policy.Kind)
	}
	if err != nil {
		return nil, err
	}

	shares := make([]models.ExpenseShare, len(ids))
	for i, id := range ids {
		shares[i] = models.ExpenseShare{
			ExpenseID: expense.ID,
			MemberID:  id,
			Amount:    amounts[i],
		}
	}
	return shares, nil
}

func sortedParticipants(participants []int64) ([]int64, error) {
	if len(participants) == 0 {
		return nil, newValidationError("participants", "must have at least one participant")
	}

	ids := slices.Clone(participants)
	slices.Sort(ids)
	for i := 1; i < len(ids); i++ {
		if ids[i] == ids[i-1] {
			return nil, newValidationError("participants", "member %d listed more than once", ids[i])
		}
	}
	return ids, nil
}

// orderedValues lines values up with ids, rejecting missing, extra and
// negative entries.
func orderedValues(ids []int64, values map[int64]decimal.Decimal) ([]decimal.Decimal, error) {
	ordered := make([]decimal.Decimal, len(ids))
	for i, id := range ids {
		v, ok := values[id]
		if !ok {
			return nil, newValidationError(valueField(id), "missing value for participant")
		}
		if v.IsNegative() {
			return nil, newValidationError(valueField(id), "value %s must not be negative", v)
		}
		ordered[i] = v
	}
	if len(values) != len(ids) {
		for id := range values {
			if _, found := slices.BinarySearch(ids, id); !found {
				return nil, newValidationError(valueField(id), "member %d is not a participant", id)
			}
		}
	}
	return ordered, nil
}

func exactAmounts(total decimal.Decimal, ids []int64, values map[int64]decimal.Decimal) ([]decimal.Decimal, error) {
	amounts, err := orderedValues(ids, values)
	if err != nil {
		return nil, err
	}

	sum := decimal.Zero
	for i, a := range amounts {
		if !HasCurrencyPrecision(a) {
			return nil, newValidationError(valueField(ids[i]), "amount %s has more than %d decimal places", a, CurrencyPlaces)
		}
		sum = sum.Add(a)
	}
	if !sum.Equal(total) {
		return nil, newValidationError("values", "amounts sum to %s, expected %s", sum, total)
	}
	return amounts, nil
}

func percentageAmounts(total decimal.Decimal, ids []int64, values map[int64]decimal.Decimal) ([]decimal.Decimal, error) {
	percentages, err := orderedValues(ids, values)
	if err != nil {
		return nil, err
	}

	sum := decimal.Zero
	for _, p := range percentages {
		sum = sum.Add(p)
	}
	if sum.Sub(hundred).Abs().GreaterThan(percentageTolerance) {
		return nil, newValidationError("values", "percentages sum to %s, expected 100", sum)
	}

	// Percentages are used as raw weights, so shares still add up to total
	// when the percentages are off 100 within tolerance.
	return apportion(total, percentages), nil
}

func weightedAmounts(total decimal.Decimal, ids []int64, values map[int64]decimal.Decimal) ([]decimal.Decimal, error) {
	weights, err := orderedValues(ids, values)
	if err != nil {
		return nil, err
	}

	sum := decimal.Zero
	for _, w := range weights {
		sum = sum.Add(w)
	}
	if !sum.IsPositive() {
		return nil, newValidationError("values", "shares must add up to more than zero")
	}
	return apportion(total, weights), nil
}

func valueField(id int64) string {
	return fmt.Sprintf("values[%d]", id)
}
