// Package calculator implements the expense-split validation and
// balance-aggregation engine.
//
// Every function is pure: inputs are never mutated, results are newly
// allocated, and concurrent calls are safe without synchronization. Amounts
// are compared with exact decimal equality, never floating-point
// approximation.
package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

var (
	oneHundred = decimal.NewFromInt(100)
	cent       = decimal.New(1, -2)
)

// ValidateSplit checks that the proposed split lines divide amount
// consistently and returns them unchanged on success. The amount must be
// positive with at most two fractional digits and lines must be non-empty.
//
// Validation stops at the first violated rule; either all lines are accepted
// or none are.
func ValidateSplit(amount decimal.Decimal, lines []models.SplitLine) ([]models.SplitLine, error) {
	if len(lines) == 0 {
		return nil, newError(CodeEmptySplitSet, "at least one split line is required")
	}
	if !amount.IsPositive() {
		return nil, newError(CodeInvalidAmount, "amount must be greater than zero, got %s", amount)
	}
	if amount.Exponent() < -2 {
		return nil, newError(CodeInvalidAmount, "amount must have at most two fractional digits, got %s", amount)
	}

	kind, err := splitKind(lines)
	if err != nil {
		return nil, err
	}

	switch kind {
	case models.SplitExact:
		err = validateExact(amount, lines)
	case models.SplitEqual:
		err = validateEqual(amount, lines)
	case models.SplitPercentage:
		err = validatePercentage(lines)
	default:
		err = newError(CodeInconsistentSplitKind, "unknown split kind %q", kind)
	}
	if err != nil {
		return nil, err
	}

	return lines, nil
}

// splitKind scans all lines up front and returns the single kind they share.
func splitKind(lines []models.SplitLine) (models.SplitKind, error) {
	kind := lines[0].Kind
	for _, line := range lines[1:] {
		if line.Kind != kind {
			return "", newError(CodeInconsistentSplitKind,
				"split lines mix kinds %q and %q", kind, line.Kind)
		}
	}
	return kind, nil
}

func validateExact(amount decimal.Decimal, lines []models.SplitLine) error {
	sum := decimal.Zero
	for _, line := range lines {
		sum = sum.Add(line.AmountOwed)
	}
	if !sum.Equal(amount) {
		return newMismatch(CodeAmountMismatch,
			"split amounts do not add up to the expense amount", sum, amount)
	}
	return nil
}

// validateEqual compares each line against its canonical per-head share.
// Shares follow the largest-remainder rule, so they always sum to amount and
// the exact-sum invariant holds for equal splits too.
func validateEqual(amount decimal.Decimal, lines []models.SplitLine) error {
	shares := EqualShares(amount, len(lines))
	for i, line := range lines {
		if !line.AmountOwed.Equal(shares[i]) {
			return newMismatch(CodeUnequalSplit,
				"line does not match its equal share", line.AmountOwed, shares[i])
		}
	}
	return nil
}

func validatePercentage(lines []models.SplitLine) error {
	sum := decimal.Zero
	for _, line := range lines {
		if line.Percentage == nil {
			return newError(CodeMissingPercentage,
				"percentage split line for user %q has no percentage", line.UserID)
		}
		sum = sum.Add(*line.Percentage)
	}
	if !sum.Equal(oneHundred) {
		return newMismatch(CodePercentageMismatch,
			"percentages do not add up to 100", sum, oneHundred)
	}
	return nil
}

// EqualShares divides amount into n per-head shares at two fractional digits.
// Each share is the amount over n floored to the cent, and the leftover cents
// are handed out one per share starting from the first, so the shares always
// sum to amount. Returns nil when n is not positive.
//
// This is the canonical equal-split rule: validation and any "expected share"
// display must both use it.
func EqualShares(amount decimal.Decimal, n int) []decimal.Decimal {
	if n <= 0 {
		return nil
	}

	count := decimal.NewFromInt(int64(n))
	base := amount.Div(count).RoundDown(2)
	leftover := amount.Sub(base.Mul(count)).Div(cent).IntPart()

	shares := make([]decimal.Decimal, n)
	for i := range shares {
		shares[i] = base
		if int64(i) < leftover {
			shares[i] = base.Add(cent)
		}
	}
	return shares
}
