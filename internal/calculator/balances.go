package calculator

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

// BalanceEntry is the net summed amount exchanged with one counterparty.
type BalanceEntry struct {
	UserID string
	Total  decimal.Decimal
}

// BalanceView is the pair of directional summaries for one user.
type BalanceView struct {
	// OwesTo lists, per payer, what the user owes on expenses paid by
	// others the user participates in.
	OwesTo []BalanceEntry

	// OwedFrom lists, per participant, what others owe the user on
	// expenses the user paid.
	OwedFrom []BalanceEntry
}

// BalancesFor sums, per counterparty, what userID owes and is owed across the
// supplied expenses. Self-splits (payer and participant are both userID)
// contribute to neither side. Entries are ordered by descending total, ties
// broken by counterparty ID so the order is deterministic.
//
// A user with no expenses yields an empty view, never an error.
func BalancesFor(userID string, expenses []*models.Expense) BalanceView {
	owesTo := make(map[string]decimal.Decimal)
	owedFrom := make(map[string]decimal.Decimal)

	for _, expense := range expenses {
		for _, line := range expense.Splits {
			switch {
			case expense.PayerID != userID && line.UserID == userID:
				owesTo[expense.PayerID] = owesTo[expense.PayerID].Add(line.AmountOwed)
			case expense.PayerID == userID && line.UserID != userID:
				owedFrom[line.UserID] = owedFrom[line.UserID].Add(line.AmountOwed)
			}
		}
	}

	return BalanceView{
		OwesTo:   sortEntries(owesTo),
		OwedFrom: sortEntries(owedFrom),
	}
}

func sortEntries(totals map[string]decimal.Decimal) []BalanceEntry {
	entries := make([]BalanceEntry, 0, len(totals))
	for id, total := range totals {
		entries = append(entries, BalanceEntry{UserID: id, Total: total})
	}
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].Total.Equal(entries[j].Total) {
			return entries[i].Total.GreaterThan(entries[j].Total)
		}
		return entries[i].UserID < entries[j].UserID
	})
	return entries
}

// StatementLine is one exportable row of a user's per-line statement.
type StatementLine struct {
	Description string
	AmountOwed  decimal.Decimal
	Kind        models.SplitKind
	Percentage  *decimal.Decimal
	CreatedAt   int64
	Direction   string
}

// Direction label for a split line whose payer and participant are both the
// statement's user. Such lines net to zero and are reported explicitly rather
// than with a misleading directional label.
const DirectionSelf = "self"

// StatementFor flattens every split line the user is party to, oldest expense
// first, keeping each expense's line order. The nameOf function resolves user
// IDs to display names for the direction labels; names are treated as opaque
// strings.
func StatementFor(userID string, expenses []*models.Expense, nameOf func(id string) string) []StatementLine {
	sorted := make([]*models.Expense, len(expenses))
	copy(sorted, expenses)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].CreatedAt != sorted[j].CreatedAt {
			return sorted[i].CreatedAt < sorted[j].CreatedAt
		}
		return sorted[i].ID < sorted[j].ID
	})

	var statement []StatementLine
	for _, expense := range sorted {
		for _, line := range expense.Splits {
			label, ok := direction(userID, expense.PayerID, line.UserID, nameOf)
			if !ok {
				continue
			}
			statement = append(statement, StatementLine{
				Description: expense.Description,
				AmountOwed:  line.AmountOwed,
				Kind:        line.Kind,
				Percentage:  line.Percentage,
				CreatedAt:   expense.CreatedAt,
				Direction:   label,
			})
		}
	}
	return statement
}

// direction labels a line by comparing the payer and participant IDs to
// userID. Lines the user is not party to are skipped.
func direction(userID, payerID, participantID string, nameOf func(string) string) (string, bool) {
	switch {
	case payerID == userID && participantID == userID:
		return DirectionSelf, true
	case payerID == userID:
		return "owed from " + nameOf(participantID), true
	case participantID == userID:
		return "owed to " + nameOf(payerID), true
	}
	return "", false
}
