// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	sqlitedriver "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Pragmas go in the DSN so every pooled connection enforces foreign keys.
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := runMigrations(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateGroup persists a new group and its initial members.
func (s *SQLiteStore) CreateGroup(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt == 0 {
		group.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO groups (id, name, budget, created_at) VALUES (?, ?, ?, ?)",
		group.ID, group.Name, group.Budget, group.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert group: %w", err)
	}

	for i := range group.Members {
		member := &group.Members[i]
		member.GroupID = group.ID
		if err := insertMember(ctx, tx, member); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetGroup retrieves a group by ID, including its members.
func (s *SQLiteStore) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	group := &models.Group{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, budget, created_at FROM groups WHERE id = ?",
		groupID,
	).Scan(&group.ID, &group.Name, &group.Budget, &group.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	members, err := s.listMembers(ctx, "WHERE group_id = ?", groupID)
	if err != nil {
		return nil, err
	}
	group.Members = members[groupID]

	return group, nil
}

// ListGroups retrieves all groups with their members, newest first.
func (s *SQLiteStore) ListGroups(ctx context.Context) ([]*models.Group, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, budget, created_at FROM groups ORDER BY created_at DESC, rowid DESC",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	var groups []*models.Group
	for rows.Next() {
		group := &models.Group{}
		if err := rows.Scan(&group.ID, &group.Name, &group.Budget, &group.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, group)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}

	members, err := s.listMembers(ctx, "")
	if err != nil {
		return nil, err
	}
	for _, group := range groups {
		group.Members = members[group.ID]
	}

	return groups, nil
}

// DeleteGroup removes a group by ID. Members, expenses, shares and payments
// are removed by the foreign key cascade.
func (s *SQLiteStore) DeleteGroup(ctx context.Context, groupID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM groups WHERE id = ?", groupID)
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	return expectAffected(res, "group", groupID)
}

// AddMember adds a member to an existing group.
func (s *SQLiteStore) AddMember(ctx context.Context, member *models.Member) error {
	if err := s.groupExists(ctx, member.GroupID); err != nil {
		return err
	}
	return insertMember(ctx, s.db, member)
}

// RemoveMember deletes a member that no expense, share or payment refers to.
// The checks and the delete share one transaction.
func (s *SQLiteStore) RemoveMember(ctx context.Context, groupID string, memberID int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx,
		"SELECT 1 FROM members WHERE id = ? AND group_id = ?",
		memberID, groupID,
	).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("member %d in group %s: %w", memberID, groupID, storage.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to get member: %w", err)
	}

	var count int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM members WHERE group_id = ?", groupID,
	).Scan(&count); err != nil {
		return fmt.Errorf("failed to count members: %w", err)
	}
	if count <= 1 {
		return fmt.Errorf("member %d: %w", memberID, storage.ErrLastMember)
	}

	var inUse bool
	if err := tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM expenses WHERE payer_member_id = ?1)
		     OR EXISTS (SELECT 1 FROM expense_shares WHERE member_id = ?1)
		     OR EXISTS (SELECT 1 FROM payments WHERE from_member_id = ?1 OR to_member_id = ?1)`,
		memberID,
	).Scan(&inUse); err != nil {
		return fmt.Errorf("failed to check member references: %w", err)
	}
	if inUse {
		return fmt.Errorf("member %d: %w", memberID, storage.ErrMemberInUse)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM members WHERE id = ?", memberID); err != nil {
		return fmt.Errorf("failed to delete member: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// SetBudget updates or clears the budget of a group.
func (s *SQLiteStore) SetBudget(ctx context.Context, groupID string, budget decimal.NullDecimal) error {
	res, err := s.db.ExecContext(ctx, "UPDATE groups SET budget = ? WHERE id = ?", budget, groupID)
	if err != nil {
		return fmt.Errorf("failed to set budget: %w", err)
	}
	return expectAffected(res, "group", groupID)
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertMember(ctx context.Context, db execer, member *models.Member) error {
	res, err := db.ExecContext(ctx,
		"INSERT INTO members (group_id, name) VALUES (?, ?)",
		member.GroupID, member.Name,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("member %q: %w", member.Name, storage.ErrAlreadyExists)
	}
	if err != nil {
		return fmt.Errorf("failed to insert member %q: %w", member.Name, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read member id: %w", err)
	}
	member.ID = id
	return nil
}

// listMembers returns members matching the optional where clause, keyed by
// group ID and ordered by member ID.
func (s *SQLiteStore) listMembers(ctx context.Context, where string, args ...any) (map[string][]models.Member, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, group_id, name FROM members "+where+" ORDER BY id",
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get members: %w", err)
	}
	defer rows.Close()

	members := make(map[string][]models.Member)
	for rows.Next() {
		var m models.Member
		if err := rows.Scan(&m.ID, &m.GroupID, &m.Name); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members[m.GroupID] = append(members[m.GroupID], m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}

	return members, nil
}

func (s *SQLiteStore) groupExists(ctx context.Context, groupID string) error {
	var exists int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM groups WHERE id = ?", groupID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to check group existence: %w", err)
	}
	return nil
}

func expectAffected(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, storage.ErrNotFound)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *sqlitedriver.Error
	return errors.As(err, &sqliteErr) && sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}
