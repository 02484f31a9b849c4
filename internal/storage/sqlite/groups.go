package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/FilipPawlowski3TP/MoneySplit/internal/models"
	"github.com/FilipPawlowski3TP/MoneySplit/internal/storage"
)

const groupColumns = "g.id, g.name, g.invite_code, g.created_by, g.created_at, g.updated_at"

func scanGroup(row rowScanner) (*models.Group, error) {
	group := &models.Group{}
	err := row.Scan(&group.ID, &group.Name, &group.InviteCode, &group.CreatedBy, &group.CreatedAt, &group.UpdatedAt)
	return group, err
}

// CreateGroup persists a new group and makes its creator the first member.
func (s *SQLiteStore) CreateGroup(ctx context.Context, group *models.Group) error {
	// Generate IDs if not set
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt == 0 {
		group.CreatedAt = time.Now().Unix()
	}
	group.UpdatedAt = group.CreatedAt

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO groups (id, name, invite_code, created_by, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
		group.ID, group.Name, group.InviteCode, group.CreatedBy, group.CreatedAt, group.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert group: %w", constraintError(err))
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO group_members (group_id, user_id, joined_at) VALUES (?, ?, ?)",
		group.ID, group.CreatedBy, group.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert group creator: %w", constraintError(err))
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetGroup retrieves a group by ID, including its members.
func (s *SQLiteStore) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+groupColumns+" FROM groups g WHERE g.id = ?", groupID)
	return s.loadGroup(ctx, row, groupID)
}

// GetGroupByInviteCode retrieves the group that currently owns code.
func (s *SQLiteStore) GetGroupByInviteCode(ctx context.Context, code string) (*models.Group, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+groupColumns+" FROM groups g WHERE g.invite_code = ?", code)
	return s.loadGroup(ctx, row, code)
}

func (s *SQLiteStore) loadGroup(ctx context.Context, row *sql.Row, key string) (*models.Group, error) {
	group, err := scanGroup(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("group %s: %w", key, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	if group.Members, err = s.listMembers(ctx, group.ID); err != nil {
		return nil, err
	}
	return group, nil
}

// listMembers returns a group's members in join order.
func (s *SQLiteStore) listMembers(ctx context.Context, groupID string) ([]models.GroupMember, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT u.id, u.display_name, u.email, m.joined_at
		 FROM group_members m JOIN users u ON u.id = m.user_id
		 WHERE m.group_id = ?
		 ORDER BY m.joined_at, m.rowid`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get group members: %w", err)
	}
	defer rows.Close()

	var members []models.GroupMember
	for rows.Next() {
		var m models.GroupMember
		if err := rows.Scan(&m.UserID, &m.DisplayName, &m.Email, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan group member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate group members: %w", err)
	}

	return members, nil
}

// ListGroupsByUser retrieves all groups the user belongs to, newest first.
func (s *SQLiteStore) ListGroupsByUser(ctx context.Context, userID string) ([]*models.Group, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+groupColumns+`
		 FROM groups g JOIN group_members m ON m.group_id = g.id
		 WHERE m.user_id = ?
		 ORDER BY g.created_at DESC, g.rowid DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups by user: %w", err)
	}

	var groups []*models.Group
	for rows.Next() {
		group, err := scanGroup(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, group)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}

	// Members are loaded after the cursor is closed; the store holds one connection.
	for _, group := range groups {
		if group.Members, err = s.listMembers(ctx, group.ID); err != nil {
			return nil, err
		}
	}

	return groups, nil
}

// UpdateInviteCode replaces the group's invite code.
func (s *SQLiteStore) UpdateInviteCode(ctx context.Context, groupID, code string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE groups SET invite_code = ?, updated_at = ? WHERE id = ?",
		code, time.Now().Unix(), groupID,
	)
	if err != nil {
		return fmt.Errorf("failed to update invite code: %w", constraintError(err))
	}
	return expectRows(res, "group", groupID)
}

// AddMember adds a user to a group. Existing members are left as they are.
func (s *SQLiteStore) AddMember(ctx context.Context, groupID, userID string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO group_members (group_id, user_id, joined_at) VALUES (?, ?, ?)",
		groupID, userID, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to add group member: %w", constraintError(err))
	}
	return nil
}

// RemoveMember removes a user from a group.
func (s *SQLiteStore) RemoveMember(ctx context.Context, groupID, userID string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM group_members WHERE group_id = ? AND user_id = ?",
		groupID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to remove group member: %w", err)
	}
	return expectRows(res, "group member", userID)
}

// DeleteGroup removes a group. Memberships and expenses cascade.
func (s *SQLiteStore) DeleteGroup(ctx context.Context, groupID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM groups WHERE id = ?", groupID)
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	return expectRows(res, "group", groupID)
}
