// Package models defines the core domain records for splitledger.
//
// # Records
//
// The persistence layer stores and returns these as plain values:
//   - Group: a set of members sharing expenses, with an optional budget
//   - Member: a participant in exactly one group
//   - Expense: a payment made by one member on behalf of some members
//   - ExpenseShare: one member's owed portion of an expense
//   - Payment: a recorded transfer between two members that settles debt
//
// Balances and suggested settlements are never stored. They are derived on
// demand by package calculator from the records above.
//
// # Design Principles
//
// 1. **Values, not handles**: records carry IDs instead of pointers, so the
// calculator can work on snapshots without touching storage
// 2. **Fixed-point money**: every amount is a decimal.Decimal with at most
// two fractional digits
// 3. **Deterministic order**: member IDs are integers assigned in insertion
// order and are the tie-breaker everywhere ordering matters
package models
