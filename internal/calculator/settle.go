package calculator

import (
	"github.com/shopspring/decimal"
)

// Settlement is a suggested transfer that moves a group towards all-zero
// balances.
type Settlement struct {
	From   int64 // Member who owes
	To     int64 // Member who is owed
	Amount decimal.Decimal
}

type party struct {
	id     int64
	amount decimal.Decimal // outstanding magnitude, always positive
}

// ComputeSettlements turns net balances into a short list of transfers that
// discharges every balance.
//
// Greedy algorithm: take the creditor owed the most and the debtor owing the
// most, settle the smaller of the two amounts between them, and drop whoever
// reaches zero. Equal amounts are broken by lower member ID. Every step clears
// at least one member, so N members with a nonzero balance need at most N-1
// transfers.
//
// Balances that do not sum to zero cannot be settled and produce an
// *InternalInvariantError.
func ComputeSettlements(balances Balances) ([]Settlement, error) {
	if sum := balances.Sum(); !sum.IsZero() {
		return nil, newInvariantError("", "balances sum to %s, expected 0", sum)
	}

	var creditors, debtors []party
	for _, id := range balances.MemberIDs() {
		amount := balances[id]
		switch {
		case amount.IsPositive():
			creditors = append(creditors, party{id: id, amount: amount})
		case amount.IsNegative():
			debtors = append(debtors, party{id: id, amount: amount.Neg()})
		}
	}

	settlements := make([]Settlement, 0, max(len(creditors)+len(debtors)-1, 0))
	for len(creditors) > 0 && len(debtors) > 0 {
		ci := largest(creditors)
		di := largest(debtors)

		amount := decimal.Min(creditors[ci].amount, debtors[di].amount)
		settlements = append(settlements, Settlement{
			From:   debtors[di].id,
			To:     creditors[ci].id,
			Amount: amount,
		})

		creditors[ci].amount = creditors[ci].amount.Sub(amount)
		debtors[di].amount = debtors[di].amount.Sub(amount)

		if creditors[ci].amount.IsZero() {
			creditors = removeAt(creditors, ci)
		}
		if debtors[di].amount.IsZero() {
			debtors = removeAt(debtors, di)
		}
	}

	return settlements, nil
}

// largest returns the index of the party with the biggest outstanding amount,
// preferring the lower member ID on ties.
func largest(parties []party) int {
	best := 0
	for i := 1; i < len(parties); i++ {
		switch parties[i].amount.Cmp(parties[best].amount) {
		case 1:
			best = i
		case 0:
			if parties[i].id < parties[best].id {
				best = i
			}
		}
	}
	return best
}

func removeAt(parties []party, i int) []party {
	return append(parties[:i], parties[i+1:]...)
}
