package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/export"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/respond"
	"github.com/mmynk/splitledger/internal/storage"
)

// BalanceHandler owns the balance view and balance-sheet export endpoints.
type BalanceHandler struct {
	store storage.Store
}

// NewBalanceHandler constructs the handler.
func NewBalanceHandler(store storage.Store) *BalanceHandler {
	return &BalanceHandler{store: store}
}

// Register attaches balance routes to the mux. All of them require auth.
func (h *BalanceHandler) Register(mux *http.ServeMux, requireAuth func(http.Handler) http.Handler) {
	mux.Handle("GET /api/balance", requireAuth(http.HandlerFunc(h.handleBalance)))
	mux.Handle("GET /api/balance-sheet", requireAuth(http.HandlerFunc(h.handleBalanceSheet)))
}

type balanceEntryResponse struct {
	UserID    string          `json:"user_id"`
	Name      string          `json:"name"`
	TotalOwed decimal.Decimal `json:"total_owed"`
}

type balanceResponse struct {
	OwesTo   []balanceEntryResponse `json:"owes_to"`
	OwedFrom []balanceEntryResponse `json:"owed_from"`
}

func (h *BalanceHandler) handleBalance(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	expenses, err := h.store.ListExpensesForUser(r.Context(), userID)
	if err != nil {
		slog.Error("ListExpensesForUser failed", "user_id", userID, "error", err)
		respond.Error(w, http.StatusInternalServerError, "failed to load expenses")
		return
	}

	view := calculator.BalancesFor(userID, expenses)

	nameOf, err := h.nameResolver(r, expenses)
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, "failed to resolve user names")
		return
	}

	respond.JSON(w, http.StatusOK, "ok", balanceResponse{
		OwesTo:   toEntryResponses(view.OwesTo, nameOf),
		OwedFrom: toEntryResponses(view.OwedFrom, nameOf),
	})
}

func toEntryResponses(entries []calculator.BalanceEntry, nameOf func(string) string) []balanceEntryResponse {
	responses := make([]balanceEntryResponse, len(entries))
	for i, entry := range entries {
		responses[i] = balanceEntryResponse{
			UserID:    entry.UserID,
			Name:      nameOf(entry.UserID),
			TotalOwed: entry.Total,
		}
	}
	return responses
}

// handleBalanceSheet streams the caller's per-line statement as a CSV
// download.
func (h *BalanceHandler) handleBalanceSheet(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	expenses, err := h.store.ListExpensesForUser(r.Context(), userID)
	if err != nil {
		slog.Error("ListExpensesForUser failed", "user_id", userID, "error", err)
		respond.Error(w, http.StatusInternalServerError, "failed to load expenses")
		return
	}

	nameOf, err := h.nameResolver(r, expenses)
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, "failed to resolve user names")
		return
	}

	statement := calculator.StatementFor(userID, expenses, nameOf)

	filename := "balance_sheet.csv"
	if user, err := h.store.GetUserByID(r.Context(), userID); err == nil && user != nil {
		filename = fmt.Sprintf("balance_sheet_%s.csv", user.DisplayName)
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := export.WriteCSV(w, statement); err != nil {
		// headers are gone; all we can do is log
		slog.Error("WriteCSV failed", "user_id", userID, "error", err)
	}
}

// nameResolver returns a lookup for the display names of every user appearing
// on the given expenses. Unknown IDs resolve to themselves.
func (h *BalanceHandler) nameResolver(r *http.Request, expenses []*models.Expense) (func(string) string, error) {
	idSet := make(map[string]struct{})
	for _, expense := range expenses {
		idSet[expense.PayerID] = struct{}{}
		for _, line := range expense.Splits {
			idSet[line.UserID] = struct{}{}
		}
	}

	ids := make([]string, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	users, err := h.store.GetUsersByIDs(r.Context(), ids)
	if err != nil {
		slog.Error("GetUsersByIDs failed", "error", err)
		return nil, err
	}

	return func(id string) string {
		if user, ok := users[id]; ok {
			return user.DisplayName
		}
		return id
	}, nil
}
