package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func createTestGroup(t *testing.T, store *SQLiteStore, names ...string) *models.Group {
	t.Helper()

	group := &models.Group{Name: "Trip"}
	for _, name := range names {
		group.Members = append(group.Members, models.Member{Name: name})
	}
	if err := store.CreateGroup(context.Background(), group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	return group
}

func TestSQLiteStore_Groups(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("CreateGroup generates IDs in member order", func(t *testing.T) {
		group := createTestGroup(t, store, "Alice", "Bob", "Charlie")

		if group.ID == "" {
			t.Error("Expected group ID to be generated")
		}
		if group.CreatedAt == 0 {
			t.Error("Expected CreatedAt to be set")
		}
		for i, m := range group.Members {
			if m.GroupID != group.ID {
				t.Errorf("member %d GroupID = %q, want %q", i, m.GroupID, group.ID)
			}
			if i > 0 && m.ID <= group.Members[i-1].ID {
				t.Errorf("member IDs not ascending: %d after %d", m.ID, group.Members[i-1].ID)
			}
		}
	})

	t.Run("GetGroup retrieves roster ordered by ID", func(t *testing.T) {
		original := createTestGroup(t, store, "Diana", "Eve")

		retrieved, err := store.GetGroup(ctx, original.ID)
		if err != nil {
			t.Fatalf("GetGroup failed: %v", err)
		}
		if retrieved.Name != original.Name {
			t.Errorf("Name mismatch: got %s, want %s", retrieved.Name, original.Name)
		}
		if retrieved.Budget.Valid {
			t.Errorf("Expected no budget, got %s", retrieved.Budget.Decimal)
		}
		if len(retrieved.Members) != 2 {
			t.Fatalf("Members count mismatch: got %d, want 2", len(retrieved.Members))
		}
		for i, m := range retrieved.Members {
			if m != original.Members[i] {
				t.Errorf("member %d mismatch: got %+v, want %+v", i, m, original.Members[i])
			}
		}
	})

	t.Run("GetGroup returns ErrNotFound for nonexistent group", func(t *testing.T) {
		_, err := store.GetGroup(ctx, "nonexistent-id")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("CreateGroup rejects duplicate member names", func(t *testing.T) {
		group := &models.Group{Name: "Dup", Members: []models.Member{{Name: "Sam"}, {Name: "Sam"}}}
		if err := store.CreateGroup(ctx, group); err == nil {
			t.Error("Expected error for duplicate member names")
		}
	})

	t.Run("AddMember appends to the roster", func(t *testing.T) {
		group := createTestGroup(t, store, "Frank")

		member := &models.Member{GroupID: group.ID, Name: "Grace"}
		if err := store.AddMember(ctx, member); err != nil {
			t.Fatalf("AddMember failed: %v", err)
		}
		if member.ID <= group.Members[0].ID {
			t.Errorf("Expected new member ID above %d, got %d", group.Members[0].ID, member.ID)
		}

		retrieved, err := store.GetGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("GetGroup failed: %v", err)
		}
		if len(retrieved.Members) != 2 || retrieved.Members[1].Name != "Grace" {
			t.Errorf("Unexpected roster: %+v", retrieved.Members)
		}
	})

	t.Run("AddMember to nonexistent group", func(t *testing.T) {
		err := store.AddMember(ctx, &models.Member{GroupID: "missing", Name: "Nobody"})
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("SetBudget round trip", func(t *testing.T) {
		group := createTestGroup(t, store, "Heidi")

		if err := store.SetBudget(ctx, group.ID, decimal.NewNullDecimal(decimal.RequireFromString("250.75"))); err != nil {
			t.Fatalf("SetBudget failed: %v", err)
		}
		retrieved, err := store.GetGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("GetGroup failed: %v", err)
		}
		if !retrieved.Budget.Valid || !retrieved.Budget.Decimal.Equal(decimal.RequireFromString("250.75")) {
			t.Errorf("Budget = %+v, want 250.75", retrieved.Budget)
		}

		if err := store.SetBudget(ctx, group.ID, decimal.NullDecimal{}); err != nil {
			t.Fatalf("SetBudget clear failed: %v", err)
		}
		retrieved, err = store.GetGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("GetGroup failed: %v", err)
		}
		if retrieved.Budget.Valid {
			t.Errorf("Expected budget cleared, got %s", retrieved.Budget.Decimal)
		}

		err = store.SetBudget(ctx, "missing", decimal.NullDecimal{})
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("ListGroups includes members", func(t *testing.T) {
		groups, err := store.ListGroups(ctx)
		if err != nil {
			t.Fatalf("ListGroups failed: %v", err)
		}
		if len(groups) < 4 {
			t.Fatalf("Expected at least 4 groups, got %d", len(groups))
		}
		for _, g := range groups {
			if len(g.Members) == 0 {
				t.Errorf("group %s listed without members", g.ID)
			}
		}
	})
}

func TestSQLiteStore_ExpensesAndPayments(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	group := createTestGroup(t, store, "Alice", "Bob", "Charlie")
	alice, bob, charlie := group.Members[0].ID, group.Members[1].ID, group.Members[2].ID

	t.Run("CreateExpense and list with shares", func(t *testing.T) {
		expense := &models.Expense{
			GroupID:     group.ID,
			PayerID:     alice,
			Description: "Dinner",
			Amount:      decimal.RequireFromString("100"),
			Split:       models.SplitEqual,
			Shares: []models.ExpenseShare{
				{MemberID: alice, Amount: decimal.RequireFromString("33.34")},
				{MemberID: bob, Amount: decimal.RequireFromString("33.33")},
				{MemberID: charlie, Amount: decimal.RequireFromString("33.33")},
			},
		}
		if err := store.CreateExpense(ctx, expense); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}
		if expense.ID == "" {
			t.Error("Expected expense ID to be generated")
		}
		for _, share := range expense.Shares {
			if share.ExpenseID != expense.ID {
				t.Errorf("share ExpenseID = %q, want %q", share.ExpenseID, expense.ID)
			}
		}

		expenses, err := store.ListExpensesByGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("ListExpensesByGroup failed: %v", err)
		}
		if len(expenses) != 1 {
			t.Fatalf("Expected 1 expense, got %d", len(expenses))
		}
		got := expenses[0]
		if got.Description != "Dinner" || got.PayerID != alice || got.Split != models.SplitEqual {
			t.Errorf("Unexpected expense: %+v", got)
		}
		if !got.Amount.Equal(expense.Amount) {
			t.Errorf("Amount = %s, want %s", got.Amount, expense.Amount)
		}
		if len(got.Shares) != 3 {
			t.Fatalf("Expected 3 shares, got %d", len(got.Shares))
		}
		for i, share := range got.Shares {
			if share.MemberID != expense.Shares[i].MemberID || !share.Amount.Equal(expense.Shares[i].Amount) {
				t.Errorf("share %d = %+v, want %+v", i, share, expense.Shares[i])
			}
		}
	})

	t.Run("CreateExpense with unknown payer fails", func(t *testing.T) {
		expense := &models.Expense{
			GroupID: group.ID,
			PayerID: 99999,
			Amount:  decimal.RequireFromString("5"),
			Split:   models.SplitEqual,
		}
		if err := store.CreateExpense(ctx, expense); err == nil {
			t.Error("Expected foreign key error for unknown payer")
		}
	})

	t.Run("CreatePayment and list", func(t *testing.T) {
		payment := &models.Payment{
			GroupID:      group.ID,
			FromMemberID: bob,
			ToMemberID:   alice,
			Amount:       decimal.RequireFromString("33.33"),
		}
		if err := store.CreatePayment(ctx, payment); err != nil {
			t.Fatalf("CreatePayment failed: %v", err)
		}

		payments, err := store.ListPaymentsByGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("ListPaymentsByGroup failed: %v", err)
		}
		if len(payments) != 1 {
			t.Fatalf("Expected 1 payment, got %d", len(payments))
		}
		if payments[0].ID != payment.ID || !payments[0].Amount.Equal(payment.Amount) {
			t.Errorf("Unexpected payment: %+v", payments[0])
		}
	})

	t.Run("DeleteGroup cascades", func(t *testing.T) {
		if err := store.DeleteGroup(ctx, group.ID); err != nil {
			t.Fatalf("DeleteGroup failed: %v", err)
		}

		expenses, err := store.ListExpensesByGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("ListExpensesByGroup failed: %v", err)
		}
		if len(expenses) != 0 {
			t.Errorf("Expected expenses removed, got %d", len(expenses))
		}

		payments, err := store.ListPaymentsByGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("ListPaymentsByGroup failed: %v", err)
		}
		if len(payments) != 0 {
			t.Errorf("Expected payments removed, got %d", len(payments))
		}

		if err := store.DeleteGroup(ctx, group.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound on second delete, got %v", err)
		}
	})
}

func TestNew_ReopensExistingDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "ledger.db")

	first, err := New(dbPath)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	group := &models.Group{Name: "Persisted", Members: []models.Member{{Name: "Ivan"}}}
	if err := first.CreateGroup(context.Background(), group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	first.Close()

	second, err := New(dbPath)
	if err != nil {
		t.Fatalf("reopening failed: %v", err)
	}
	defer second.Close()

	if _, err := second.GetGroup(context.Background(), group.ID); err != nil {
		t.Errorf("GetGroup after reopen failed: %v", err)
	}
}

func TestSQLiteStore_AddMemberDuplicate(t *testing.T) {
	store := newTestStore(t)
	group := createTestGroup(t, store, "Alice")

	err := store.AddMember(context.Background(), &models.Member{GroupID: group.ID, Name: "Alice"})
	if !errors.Is(err, storage.ErrAlreadyExists) {
		t.Errorf("Expected ErrAlreadyExists, got %v", err)
	}
}

func TestSQLiteStore_UpdateAndDeleteExpense(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	group := createTestGroup(t, store, "Alice", "Bob")
	alice, bob := group.Members[0].ID, group.Members[1].ID

	expense := &models.Expense{
		GroupID:     group.ID,
		PayerID:     alice,
		Description: "Lunch",
		Amount:      decimal.RequireFromString("20"),
		Split:       models.SplitEqual,
		Shares: []models.ExpenseShare{
			{MemberID: alice, Amount: decimal.RequireFromString("10")},
			{MemberID: bob, Amount: decimal.RequireFromString("10")},
		},
	}
	if err := store.CreateExpense(ctx, expense); err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}

	t.Run("UpdateExpense replaces shares", func(t *testing.T) {
		updated := &models.Expense{
			ID:          expense.ID,
			GroupID:     group.ID,
			PayerID:     bob,
			Description: "Late lunch",
			Amount:      decimal.RequireFromString("30"),
			Split:       models.SplitExact,
			Shares: []models.ExpenseShare{
				{MemberID: bob, Amount: decimal.RequireFromString("30")},
			},
		}
		if err := store.UpdateExpense(ctx, updated); err != nil {
			t.Fatalf("UpdateExpense failed: %v", err)
		}

		got, err := store.GetExpense(ctx, expense.ID)
		if err != nil {
			t.Fatalf("GetExpense failed: %v", err)
		}
		if got.PayerID != bob || got.Description != "Late lunch" || got.Split != models.SplitExact {
			t.Errorf("Unexpected expense: %+v", got)
		}
		if got.CreatedAt != expense.CreatedAt {
			t.Errorf("CreatedAt changed: got %d, want %d", got.CreatedAt, expense.CreatedAt)
		}
		if len(got.Shares) != 1 || got.Shares[0].MemberID != bob || !got.Shares[0].Amount.Equal(decimal.RequireFromString("30")) {
			t.Errorf("Unexpected shares: %+v", got.Shares)
		}
	})

	t.Run("UpdateExpense rolls back on bad share", func(t *testing.T) {
		bad := &models.Expense{
			ID:          expense.ID,
			GroupID:     group.ID,
			PayerID:     alice,
			Description: "Broken",
			Amount:      decimal.RequireFromString("5"),
			Split:       models.SplitExact,
			Shares:      []models.ExpenseShare{{MemberID: 99999, Amount: decimal.RequireFromString("5")}},
		}
		if err := store.UpdateExpense(ctx, bad); err == nil {
			t.Fatal("Expected foreign key error for unknown share member")
		}

		got, err := store.GetExpense(ctx, expense.ID)
		if err != nil {
			t.Fatalf("GetExpense failed: %v", err)
		}
		if got.Description != "Late lunch" || len(got.Shares) != 1 {
			t.Errorf("Expected previous version to survive, got %+v", got)
		}
	})

	t.Run("UpdateExpense on missing expense", func(t *testing.T) {
		err := store.UpdateExpense(ctx, &models.Expense{ID: "missing", PayerID: alice, Split: models.SplitEqual})
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("DeleteExpense", func(t *testing.T) {
		if err := store.DeleteExpense(ctx, expense.ID); err != nil {
			t.Fatalf("DeleteExpense failed: %v", err)
		}
		if _, err := store.GetExpense(ctx, expense.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound after delete, got %v", err)
		}
		if err := store.DeleteExpense(ctx, expense.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound on second delete, got %v", err)
		}
	})
}

func TestSQLiteStore_RemoveMember(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	group := createTestGroup(t, store, "Alice", "Bob", "Charlie", "Dave", "Erin")
	alice, bob, charlie, dave, erin := group.Members[0].ID, group.Members[1].ID,
		group.Members[2].ID, group.Members[3].ID, group.Members[4].ID

	expense := &models.Expense{
		GroupID:     group.ID,
		PayerID:     alice,
		Description: "Cab",
		Amount:      decimal.RequireFromString("10"),
		Split:       models.SplitExact,
		Shares:      []models.ExpenseShare{{MemberID: bob, Amount: decimal.RequireFromString("10")}},
	}
	if err := store.CreateExpense(ctx, expense); err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}
	payment := &models.Payment{GroupID: group.ID, FromMemberID: bob, ToMemberID: charlie, Amount: decimal.RequireFromString("1")}
	if err := store.CreatePayment(ctx, payment); err != nil {
		t.Fatalf("CreatePayment failed: %v", err)
	}

	tests := []struct {
		name     string
		memberID int64
		wantErr  error
	}{
		{"payer", alice, storage.ErrMemberInUse},
		{"shareholder", bob, storage.ErrMemberInUse},
		{"payment receiver", charlie, storage.ErrMemberInUse},
		{"unknown member", 99999, storage.ErrNotFound},
		{"unreferenced member", dave, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.RemoveMember(ctx, group.ID, tt.memberID)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("RemoveMember(%d) = %v, want %v", tt.memberID, err, tt.wantErr)
			}
		})
	}

	retrieved, err := store.GetGroup(ctx, group.ID)
	if err != nil {
		t.Fatalf("GetGroup failed: %v", err)
	}
	if len(retrieved.Members) != 4 || retrieved.HasMember(dave) || !retrieved.HasMember(erin) {
		t.Errorf("Unexpected roster after removal: %+v", retrieved.Members)
	}

	t.Run("member of another group", func(t *testing.T) {
		other := createTestGroup(t, store, "Frank", "Grace")
		err := store.RemoveMember(ctx, group.ID, other.Members[0].ID)
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("last member", func(t *testing.T) {
		solo := createTestGroup(t, store, "Heidi")
		err := store.RemoveMember(ctx, solo.ID, solo.Members[0].ID)
		if !errors.Is(err, storage.ErrLastMember) {
			t.Errorf("Expected ErrLastMember, got %v", err)
		}
	})
}
