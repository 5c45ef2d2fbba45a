package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// CreateExpense persists an expense and all of its split lines in a single
// transaction. IDs and the creation timestamp are generated if not set.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
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
		"INSERT INTO expenses (id, payer_id, amount, description, created_at) VALUES (?, ?, ?, ?, ?)",
		expense.ID, expense.PayerID, expense.Amount.String(), expense.Description, expense.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	for i := range expense.Splits {
		line := &expense.Splits[i]
		if line.ID == "" {
			line.ID = uuid.New().String()
		}

		var percentage interface{}
		if line.Percentage != nil {
			percentage = line.Percentage.String()
		}

		_, err = tx.ExecContext(ctx,
			"INSERT INTO expense_splits (id, expense_id, user_id, amount_owed, split_kind, percentage) VALUES (?, ?, ?, ?, ?, ?)",
			line.ID, expense.ID, line.UserID, line.AmountOwed.String(), string(line.Kind), percentage,
		)
		if err != nil {
			return fmt.Errorf("failed to insert split line: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetExpense retrieves an expense by ID, including all split lines.
func (s *SQLiteStore) GetExpense(ctx context.Context, id string) (*models.Expense, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, payer_id, amount, description, created_at FROM expenses WHERE id = ?",
		id,
	)

	expense, err := scanExpense(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("expense %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	if err := s.loadSplits(ctx, expense); err != nil {
		return nil, err
	}

	return expense, nil
}

// ListExpensesForUser retrieves every expense the user is party to, as payer
// or participant, oldest first.
func (s *SQLiteStore) ListExpensesForUser(ctx context.Context, userID string) ([]*models.Expense, error) {
	query := `
		SELECT DISTINCT e.id, e.payer_id, e.amount, e.description, e.created_at
		FROM expenses e
		LEFT JOIN expense_splits s ON s.expense_id = e.id
		WHERE e.payer_id = ? OR s.user_id = ?
		ORDER BY e.created_at, e.id
	`
	return s.listExpenses(ctx, query, userID, userID)
}

// ListExpenses retrieves all expenses, oldest first.
func (s *SQLiteStore) ListExpenses(ctx context.Context) ([]*models.Expense, error) {
	query := `
		SELECT id, payer_id, amount, description, created_at
		FROM expenses
		ORDER BY created_at, id
	`
	return s.listExpenses(ctx, query)
}

// DeleteExpense removes an expense; its split lines go with it via cascade.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("expense %s: %w", id, storage.ErrNotFound)
	}

	return nil
}

func (s *SQLiteStore) listExpenses(ctx context.Context, query string, args ...interface{}) ([]*models.Expense, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*models.Expense
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, expense)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	for _, expense := range expenses {
		if err := s.loadSplits(ctx, expense); err != nil {
			return nil, err
		}
	}

	return expenses, nil
}

func (s *SQLiteStore) loadSplits(ctx context.Context, expense *models.Expense) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, user_id, amount_owed, split_kind, percentage FROM expense_splits WHERE expense_id = ? ORDER BY rowid",
		expense.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get split lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			line       models.SplitLine
			amount     string
			kind       string
			percentage sql.NullString
		)
		if err := rows.Scan(&line.ID, &line.UserID, &amount, &kind, &percentage); err != nil {
			return fmt.Errorf("failed to scan split line: %w", err)
		}

		line.AmountOwed, err = decimal.NewFromString(amount)
		if err != nil {
			return fmt.Errorf("failed to parse split amount %q: %w", amount, err)
		}
		line.Kind = models.SplitKind(kind)
		if percentage.Valid {
			p, err := decimal.NewFromString(percentage.String)
			if err != nil {
				return fmt.Errorf("failed to parse split percentage %q: %w", percentage.String, err)
			}
			line.Percentage = &p
		}

		expense.Splits = append(expense.Splits, line)
	}

	return rows.Err()
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanExpense(row rowScanner) (*models.Expense, error) {
	expense := &models.Expense{}
	var amount string

	err := row.Scan(&expense.ID, &expense.PayerID, &amount, &expense.Description, &expense.CreatedAt)
	if err != nil {
		return nil, err
	}

	expense.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("failed to parse expense amount %q: %w", amount, err)
	}

	return expense, nil
}
