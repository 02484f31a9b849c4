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

const expenseColumns = "id, group_id, payer_id, amount, description, date, created_at, updated_at"

func scanExpense(row rowScanner) (*models.Expense, error) {
	expense := &models.Expense{}
	err := row.Scan(
		&expense.ID,
		&expense.GroupID,
		&expense.PayerID,
		&expense.Amount,
		&expense.Description,
		&expense.Date,
		&expense.CreatedAt,
		&expense.UpdatedAt,
	)
	return expense, err
}

// CreateExpense persists a new expense and its splits.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	// Generate IDs if not set
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}
	expense.UpdatedAt = expense.CreatedAt

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO expenses ("+expenseColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		expense.ID, expense.GroupID, expense.PayerID, expense.Amount,
		expense.Description, expense.Date, expense.CreatedAt, expense.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", constraintError(err))
	}

	if err := insertSplits(ctx, tx, expense); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func insertSplits(ctx context.Context, tx *sql.Tx, expense *models.Expense) error {
	for i, split := range expense.Splits {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO expense_splits (expense_id, user_id, share_amount, position) VALUES (?, ?, ?, ?)",
			expense.ID, split.UserID, split.ShareAmount, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert expense split: %w", constraintError(err))
		}
	}
	return nil
}

// GetExpense retrieves an expense by ID, including its splits.
func (s *SQLiteStore) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+expenseColumns+" FROM expenses WHERE id = ?", expenseID)

	expense, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT user_id, share_amount FROM expense_splits WHERE expense_id = ? ORDER BY position",
		expenseID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get expense splits: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var split models.ExpenseSplit
		if err := rows.Scan(&split.UserID, &split.ShareAmount); err != nil {
			return nil, fmt.Errorf("failed to scan expense split: %w", err)
		}
		expense.Splits = append(expense.Splits, split)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expense splits: %w", err)
	}

	return expense, nil
}

// ListExpensesByGroup retrieves a group's ledger ordered by date, then creation.
func (s *SQLiteStore) ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE group_id = ? ORDER BY date, created_at, rowid",
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses by group: %w", err)
	}

	var expenses []*models.Expense
	byID := make(map[string]*models.Expense)
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, expense)
		byID[expense.ID] = expense
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	splitRows, err := s.db.QueryContext(ctx,
		`SELECT s.expense_id, s.user_id, s.share_amount
		 FROM expense_splits s JOIN expenses e ON e.id = s.expense_id
		 WHERE e.group_id = ?
		 ORDER BY s.expense_id, s.position`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expense splits: %w", err)
	}
	defer splitRows.Close()

	for splitRows.Next() {
		var expenseID string
		var split models.ExpenseSplit
		if err := splitRows.Scan(&expenseID, &split.UserID, &split.ShareAmount); err != nil {
			return nil, fmt.Errorf("failed to scan expense split: %w", err)
		}
		if expense, ok := byID[expenseID]; ok {
			expense.Splits = append(expense.Splits, split)
		}
	}
	if err := splitRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expense splits: %w", err)
	}

	return expenses, nil
}

// UpdateExpense replaces an expense row and all of its splits.
func (s *SQLiteStore) UpdateExpense(ctx context.Context, expense *models.Expense) error {
	expense.UpdatedAt = time.Now().Unix()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"UPDATE expenses SET payer_id = ?, amount = ?, description = ?, date = ?, updated_at = ? WHERE id = ?",
		expense.PayerID, expense.Amount, expense.Description, expense.Date, expense.UpdatedAt, expense.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	if err := expectRows(res, "expense", expense.ID); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM expense_splits WHERE expense_id = ?", expense.ID); err != nil {
		return fmt.Errorf("failed to clear expense splits: %w", err)
	}
	if err := insertSplits(ctx, tx, expense); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// DeleteExpense removes an expense by ID. Splits cascade.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, expenseID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", expenseID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	return expectRows(res, "expense", expenseID)
}
