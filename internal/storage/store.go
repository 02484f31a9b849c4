// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/FilipPawlowski3TP/MoneySplit/internal/models"
)

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned when a unique constraint would be violated.
	ErrAlreadyExists = errors.New("already exists")
)

// Store defines the interface for MoneySplit storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	UserStore
	GroupStore
	ExpenseStore

	// Close releases any resources held by the store.
	Close() error
}

// UserStore persists user accounts.
type UserStore interface {
	// CreateUser inserts a new user. Returns ErrAlreadyExists if the email is taken.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail returns ErrNotFound if no user has the email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID returns ErrNotFound if the user does not exist.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// GetUsersByIDs returns a map of user ID to user.
	// Users that don't exist are omitted from the result.
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)
}

// GroupStore persists groups and their memberships.
type GroupStore interface {
	// CreateGroup inserts the group and adds its creator as the first member.
	// The group.ID field will be populated by the store if empty.
	// Returns ErrAlreadyExists if the invite code is taken.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup returns the group with its members.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// GetGroupByInviteCode returns ErrNotFound for an unknown code.
	GetGroupByInviteCode(ctx context.Context, code string) (*models.Group, error)

	// ListGroupsByUser returns every group the user is a member of, newest first.
	ListGroupsByUser(ctx context.Context, userID string) ([]*models.Group, error)

	// UpdateInviteCode replaces the group's invite code.
	UpdateInviteCode(ctx context.Context, groupID, code string) error

	// AddMember adds userID to the group. Adding an existing member is a no-op.
	AddMember(ctx context.Context, groupID, userID string) error

	// RemoveMember removes userID from the group.
	RemoveMember(ctx context.Context, groupID, userID string) error

	// DeleteGroup removes the group, its memberships and its expenses.
	DeleteGroup(ctx context.Context, groupID string) error
}

// ExpenseStore persists expenses and their splits.
type ExpenseStore interface {
	// CreateExpense inserts the expense and its splits in one transaction.
	// The expense.ID field will be populated by the store if empty.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// GetExpense returns the expense with its splits.
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)

	// ListExpensesByGroup returns the group's expenses ordered by date, then creation.
	ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error)

	// UpdateExpense replaces the expense row and all of its splits.
	UpdateExpense(ctx context.Context, expense *models.Expense) error

	// DeleteExpense removes the expense and its splits.
	DeleteExpense(ctx context.Context, expenseID string) error
}
