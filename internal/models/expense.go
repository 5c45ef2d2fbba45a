package models

import "github.com/shopspring/decimal"

// SplitKind is the method used to divide an expense among participants.
type SplitKind string

const (
	// SplitExact assigns a fixed amount to each line; the amounts must sum
	// to the expense amount exactly.
	SplitExact SplitKind = "exact"

	// SplitEqual divides the expense amount evenly across all lines.
	SplitEqual SplitKind = "equal"

	// SplitPercentage assigns each line a percentage; the percentages must
	// sum to exactly 100.
	SplitPercentage SplitKind = "percentage"
)

// Valid reports whether k is one of the known split kinds.
func (k SplitKind) Valid() bool {
	switch k {
	case SplitExact, SplitEqual, SplitPercentage:
		return true
	}
	return false
}

// Expense represents an amount paid by one user and divided among
// participants via its split lines.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// PayerID is the user who paid the expense.
	PayerID string

	// Amount is the total expense amount, fixed-point with two fractional
	// digits.
	Amount decimal.Decimal

	// Description is free text describing the expense.
	Description string

	// CreatedAt is the Unix timestamp when the expense was created.
	CreatedAt int64

	// Splits are the per-participant portions of the expense. They are
	// owned by the expense: persisted atomically with it and deleted
	// with it.
	Splits []SplitLine
}

// SplitLine represents one participant's assigned portion of an expense.
//
// The participant may be the payer; such self-splits are legal and net to
// zero when balances are computed.
type SplitLine struct {
	// ID is the unique identifier for the line (UUID format).
	ID string

	// UserID is the participant this line belongs to.
	UserID string

	// AmountOwed is the participant's portion, fixed-point with two
	// fractional digits.
	AmountOwed decimal.Decimal

	// Kind is the split method. All lines of one expense share the same
	// kind.
	Kind SplitKind

	// Percentage is set only when Kind is SplitPercentage, nil otherwise.
	Percentage *decimal.Decimal
}
