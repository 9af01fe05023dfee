package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/splitledger/internal/models"
)

// CreatePayment persists a new payment to the database.
func (s *SQLiteStore) CreatePayment(ctx context.Context, payment *models.Payment) error {
	// Generate ID if not set
	if payment.ID == "" {
		payment.ID = uuid.New().String()
	}
	if payment.CreatedAt == 0 {
		payment.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO payments (id, group_id, from_member_id, to_member_id, amount, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		payment.ID, payment.GroupID, payment.FromMemberID, payment.ToMemberID,
		payment.Amount, payment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}

	return nil
}

// ListPaymentsByGroup retrieves all payments for a group.
func (s *SQLiteStore) ListPaymentsByGroup(ctx context.Context, groupID string) ([]models.Payment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, group_id, from_member_id, to_member_id, amount, created_at
		 FROM payments WHERE group_id = ? ORDER BY created_at, rowid`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments by group: %w", err)
	}
	defer rows.Close()

	var payments []models.Payment
	for rows.Next() {
		var p models.Payment
		if err := rows.Scan(&p.ID, &p.GroupID, &p.FromMemberID, &p.ToMemberID,
			&p.Amount, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payments: %w", err)
	}

	return payments, nil
}
