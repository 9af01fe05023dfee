package calculator

import (
	"cmp"
	"slices"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/shopspring/decimal"
)

// Balances maps member ID to net position.
// Positive = owed money, Negative = owes money.
type Balances map[int64]decimal.Decimal

// Sum returns the total of all balances. A consistent ledger sums to zero.
func (b Balances) Sum() decimal.Decimal {
	sum := decimal.Zero
	for _, amount := range b {
		sum = sum.Add(amount)
	}
	return sum
}

// MemberIDs returns the member IDs in ascending order.
func (b Balances) MemberIDs() []int64 {
	ids := make([]int64, 0, len(b))
	for id := range b {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// MemberBalance represents the balance information for one group member.
type MemberBalance struct {
	MemberID  int64
	TotalPaid decimal.Decimal // Expenses paid plus payments sent
	TotalOwed decimal.Decimal // Shares owed plus payments received
	Net       decimal.Decimal // TotalPaid - TotalOwed
}

// ComputeBalances returns every roster member's net balance across the
// group's expenses and any recorded payments.
//
// See ComputeMemberBalances for the rules and failure modes.
func ComputeBalances(group models.Group, expenses []models.Expense, payments ...models.Payment) (Balances, error) {
	members, err := ComputeMemberBalances(group, expenses, payments...)
	if err != nil {
		return nil, err
	}

	balances := make(Balances, len(members))
	for _, m := range members {
		balances[m.MemberID] = m.Net
	}
	return balances, nil
}

// ComputeMemberBalances aggregates who paid what and who owes what.
//
// Algorithm:
//   - For each expense: the payer is credited the total, each share's member
//     is debited the share
//   - For each payment: the sender is credited, the receiver is debited
//   - Net = paid - owed, for every member on the roster (zero if inactive)
//
// The result is ordered by member ID. Records that reference members outside
// the roster, shares that do not add up to their expense, or a net total that
// is not exactly zero produce an *InternalInvariantError.
func ComputeMemberBalances(group models.Group, expenses []models.Expense, payments ...models.Payment) ([]MemberBalance, error) {
	if len(group.Members) == 0 && (len(expenses) > 0 || len(payments) > 0) {
		return nil, newInvariantError(group.ID, "group has expenses but no members")
	}

	balances := make(map[int64]*MemberBalance, len(group.Members))
	for _, m := range group.Members {
		if _, dup := balances[m.ID]; dup {
			return nil, newInvariantError(group.ID, "member %d appears twice on the roster", m.ID)
		}
		balances[m.ID] = &MemberBalance{MemberID: m.ID}
	}

	for _, exp := range expenses {
		if exp.GroupID != "" && group.ID != "" && exp.GroupID != group.ID {
			return nil, newInvariantError(group.ID, "expense %s belongs to group %s", exp.ID, exp.GroupID)
		}

		payer, ok := balances[exp.PayerID]
		if !ok {
			return nil, newInvariantError(group.ID, "expense %s paid by unknown member %d", exp.ID, exp.PayerID)
		}
		payer.TotalPaid = payer.TotalPaid.Add(exp.Amount)

		owed := decimal.Zero
		for _, share := range exp.Shares {
			member, ok := balances[share.MemberID]
			if !ok {
				return nil, newInvariantError(group.ID, "expense %s has a share for unknown member %d", exp.ID, share.MemberID)
			}
			member.TotalOwed = member.TotalOwed.Add(share.Amount)
			owed = owed.Add(share.Amount)
		}

		if !owed.Equal(exp.Amount) {
			return nil, newInvariantError(group.ID, "shares of expense %s sum to %s, expected %s", exp.ID, owed, exp.Amount)
		}
	}

	for _, p := range payments {
		from, ok := balances[p.FromMemberID]
		if !ok {
			return nil, newInvariantError(group.ID, "payment %s sent by unknown member %d", p.ID, p.FromMemberID)
		}
		to, ok := balances[p.ToMemberID]
		if !ok {
			return nil, newInvariantError(group.ID, "payment %s received by unknown member %d", p.ID, p.ToMemberID)
		}
		// Sender's position improves, receiver is owed less.
		from.TotalPaid = from.TotalPaid.Add(p.Amount)
		to.TotalOwed = to.TotalOwed.Add(p.Amount)
	}

	result := make([]MemberBalance, 0, len(balances))
	net := decimal.Zero
	for _, m := range group.Members {
		bal := balances[m.ID]
		bal.Net = bal.TotalPaid.Sub(bal.TotalOwed)
		net = net.Add(bal.Net)
		result = append(result, *bal)
	}
	slices.SortFunc(result, func(a, b MemberBalance) int {
		return cmp.Compare(a.MemberID, b.MemberID)
	})

	if !net.IsZero() {
		return nil, newInvariantError(group.ID, "balances sum to %s, expected 0", net)
	}

	return result, nil
}
