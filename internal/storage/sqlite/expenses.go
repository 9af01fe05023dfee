package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// CreateExpense persists an expense and its shares.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	// Generate ID if not set
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO expenses (id, group_id, payer_member_id, description, amount, split_kind, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		expense.ID, expense.GroupID, expense.PayerID, expense.Description,
		expense.Amount, string(expense.Split), expense.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	if err := insertShares(ctx, tx, expense); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetExpense retrieves an expense by ID, including its shares.
func (s *SQLiteStore) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	expense := &models.Expense{}
	var split string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, group_id, payer_member_id, description, amount, split_kind, created_at
		 FROM expenses WHERE id = ?`,
		expenseID,
	).Scan(&expense.ID, &expense.GroupID, &expense.PayerID, &expense.Description,
		&expense.Amount, &split, &expense.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	expense.Split = models.SplitKind(split)

	rows, err := s.db.QueryContext(ctx,
		"SELECT expense_id, member_id, amount FROM expense_shares WHERE expense_id = ? ORDER BY member_id",
		expenseID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get expense shares: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var share models.ExpenseShare
		if err := rows.Scan(&share.ExpenseID, &share.MemberID, &share.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan expense share: %w", err)
		}
		expense.Shares = append(expense.Shares, share)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expense shares: %w", err)
	}

	return expense, nil
}

// UpdateExpense rewrites an expense and replaces all of its shares.
func (s *SQLiteStore) UpdateExpense(ctx context.Context, expense *models.Expense) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE expenses SET payer_member_id = ?, description = ?, amount = ?, split_kind = ?
		 WHERE id = ?`,
		expense.PayerID, expense.Description, expense.Amount, string(expense.Split), expense.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	if err := expectAffected(res, "expense", expense.ID); err != nil {
		return err
	}

	// Delete old shares and insert new ones
	if _, err := tx.ExecContext(ctx, "DELETE FROM expense_shares WHERE expense_id = ?", expense.ID); err != nil {
		return fmt.Errorf("failed to delete expense shares: %w", err)
	}
	if err := insertShares(ctx, tx, expense); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// DeleteExpense removes an expense by ID. Its shares go with it.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, expenseID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", expenseID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	return expectAffected(res, "expense", expenseID)
}

func insertShares(ctx context.Context, db execer, expense *models.Expense) error {
	for i := range expense.Shares {
		share := &expense.Shares[i]
		share.ExpenseID = expense.ID

		_, err := db.ExecContext(ctx,
			"INSERT INTO expense_shares (expense_id, member_id, amount) VALUES (?, ?, ?)",
			share.ExpenseID, share.MemberID, share.Amount,
		)
		if err != nil {
			return fmt.Errorf("failed to insert expense share: %w", err)
		}
	}
	return nil
}

// ListExpensesByGroup retrieves all expenses for a group, including shares.
func (s *SQLiteStore) ListExpensesByGroup(ctx context.Context, groupID string) ([]models.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, group_id, payer_member_id, description, amount, split_kind, created_at
		 FROM expenses WHERE group_id = ? ORDER BY created_at, rowid`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses by group: %w", err)
	}
	defer rows.Close()

	var expenses []models.Expense
	index := make(map[string]int)
	for rows.Next() {
		var exp models.Expense
		var split string
		if err := rows.Scan(&exp.ID, &exp.GroupID, &exp.PayerID, &exp.Description,
			&exp.Amount, &split, &exp.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		exp.Split = models.SplitKind(split)
		index[exp.ID] = len(expenses)
		expenses = append(expenses, exp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	// Shares for every expense of the group in one pass
	shareRows, err := s.db.QueryContext(ctx,
		`SELECT s.expense_id, s.member_id, s.amount
		 FROM expense_shares s JOIN expenses e ON e.id = s.expense_id
		 WHERE e.group_id = ? ORDER BY s.expense_id, s.member_id`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get expense shares: %w", err)
	}
	defer shareRows.Close()

	for shareRows.Next() {
		var share models.ExpenseShare
		if err := shareRows.Scan(&share.ExpenseID, &share.MemberID, &share.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan expense share: %w", err)
		}
		i, ok := index[share.ExpenseID]
		if !ok {
			continue
		}
		expenses[i].Shares = append(expenses[i].Shares, share)
	}
	if err := shareRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expense shares: %w", err)
	}

	return expenses, nil
}
