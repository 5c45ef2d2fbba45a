// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/splitledger/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the interface for user and expense storage. The abstraction
// allows swapping backends (SQLite, PostgreSQL, etc.) without changing the
// handlers. Expenses and their split lines are handed over and back as
// complete in-memory values.
type Store interface {
	// CreateUser persists a new user.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail retrieves a user by email.
	// Returns (nil, nil) when no such user exists.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID retrieves a user by ID.
	// Returns (nil, nil) when no such user exists.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// GetUsersByIDs retrieves multiple users keyed by ID. IDs without a
	// matching user are omitted from the result.
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)

	// CreateExpense persists an expense and all of its split lines in one
	// transaction: they succeed or fail together. Missing IDs and
	// timestamps are populated by the store.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// GetExpense retrieves an expense with its split lines.
	// Returns ErrNotFound when no such expense exists.
	GetExpense(ctx context.Context, id string) (*models.Expense, error)

	// ListExpensesForUser retrieves every expense the user is party to,
	// as payer or participant, with split lines, oldest first.
	ListExpensesForUser(ctx context.Context, userID string) ([]*models.Expense, error)

	// ListExpenses retrieves all expenses with split lines, oldest first.
	ListExpenses(ctx context.Context) ([]*models.Expense, error)

	// DeleteExpense removes an expense and, with it, all of its split
	// lines. Returns ErrNotFound when no such expense exists.
	DeleteExpense(ctx context.Context, id string) error

	// Close releases any resources held by the store.
	Close() error
}
