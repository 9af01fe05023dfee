package models

import "github.com/shopspring/decimal"

// Group represents a set of members who share expenses.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Roommates", "Lisbon Trip").
	Name string

	// Members is the group roster, ordered by member ID.
	Members []Member

	// Budget is the optional spending cap for the group.
	// Invalid (unset) when the group has no budget.
	Budget decimal.NullDecimal

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// Member is a participant in exactly one group. Members do not need a
// registered account; a display name is enough.
type Member struct {
	// ID is assigned by the store in insertion order.
	ID int64

	// GroupID is the group this member belongs to.
	GroupID string

	// Name is the display name shown to other members.
	Name string
}

// MemberIDs returns the IDs of the group's members in roster order.
func (g Group) MemberIDs() []int64 {
	ids := make([]int64, len(g.Members))
	for i, m := range g.Members {
		ids[i] = m.ID
	}
	return ids
}

// HasMember reports whether id belongs to the group's roster.
func (g Group) HasMember(id int64) bool {
	for _, m := range g.Members {
		if m.ID == id {
			return true
		}
	}
	return false
}
