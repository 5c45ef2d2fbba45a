package calculator

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Code identifies the validation rule a proposed split violated.
type Code string

const (
	// CodeEmptySplitSet means no split lines were supplied.
	CodeEmptySplitSet Code = "empty_split_set"

	// CodeInvalidAmount means the expense amount is not a positive value
	// with at most two fractional digits.
	CodeInvalidAmount Code = "invalid_amount"

	// CodeInconsistentSplitKind means the split lines disagree on kind.
	CodeInconsistentSplitKind Code = "inconsistent_split_kind"

	// CodeAmountMismatch means the exact-split sum does not equal the
	// expense amount.
	CodeAmountMismatch Code = "amount_mismatch"

	// CodeUnequalSplit means an equal-split line does not match its
	// computed per-head share.
	CodeUnequalSplit Code = "unequal_split"

	// CodeMissingPercentage means a percentage-kind line has no percentage.
	CodeMissingPercentage Code = "missing_percentage"

	// CodePercentageMismatch means the percentages do not sum to 100.
	CodePercentageMismatch Code = "percentage_mismatch"
)

// ValidationError reports the first rule a proposed split violated, together
// with the values that triggered it. Validation errors are reported outcomes
// surfaced to the caller, never process-fatal.
type ValidationError struct {
	// Code is the violated rule.
	Code Code

	// Message describes the violation in human-readable form.
	Message string

	// Got and Want carry the offending and expected values for mismatch
	// rules. Both are zero for rules without a numeric context.
	Got  decimal.Decimal
	Want decimal.Decimal
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newError(code Code, format string, args ...any) *ValidationError {
	return &ValidationError{Code: code, Message: fmt.Sprintf(format, args...)}
}

func newMismatch(code Code, msg string, got, want decimal.Decimal) *ValidationError {
	return &ValidationError{
		Code:    code,
		Message: fmt.Sprintf("%s: got %s, want %s", msg, got, want),
		Got:     got,
		Want:    want,
	}
}
