package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/respond"
	"github.com/mmynk/splitledger/internal/storage"
)

// ExpenseHandler owns expense creation and listing endpoints.
type ExpenseHandler struct {
	store storage.Store
}

// NewExpenseHandler constructs the handler.
func NewExpenseHandler(store storage.Store) *ExpenseHandler {
	return &ExpenseHandler{store: store}
}

// Register attaches expense routes to the mux. All of them require auth.
func (h *ExpenseHandler) Register(mux *http.ServeMux, requireAuth func(http.Handler) http.Handler) {
	mux.Handle("POST /api/expenses", requireAuth(http.HandlerFunc(h.handleCreate)))
	mux.Handle("GET /api/expenses", requireAuth(http.HandlerFunc(h.handleListMine)))
	mux.Handle("GET /api/expenses/all", requireAuth(http.HandlerFunc(h.handleListAll)))
}

type splitLineRequest struct {
	UserID     string           `json:"user_id"`
	AmountOwed decimal.Decimal  `json:"amount_owed"`
	SplitKind  string           `json:"split_kind"`
	Percentage *decimal.Decimal `json:"percentage,omitempty"`
}

type createExpenseRequest struct {
	Amount      decimal.Decimal    `json:"amount"`
	Description string             `json:"description"`
	Splits      []splitLineRequest `json:"splits"`
}

type splitLineResponse struct {
	UserID     string           `json:"user_id"`
	AmountOwed decimal.Decimal  `json:"amount_owed"`
	SplitKind  string           `json:"split_kind"`
	Percentage *decimal.Decimal `json:"percentage,omitempty"`
}

type expenseResponse struct {
	ID          string              `json:"id"`
	PayerID     string              `json:"payer_id"`
	Amount      decimal.Decimal     `json:"amount"`
	Description string              `json:"description"`
	CreatedAt   int64               `json:"created_at"`
	Splits      []splitLineResponse `json:"splits"`
}

func toExpenseResponse(expense *models.Expense) expenseResponse {
	splits := make([]splitLineResponse, len(expense.Splits))
	for i, line := range expense.Splits {
		splits[i] = splitLineResponse{
			UserID:     line.UserID,
			AmountOwed: line.AmountOwed,
			SplitKind:  string(line.Kind),
			Percentage: line.Percentage,
		}
	}
	return expenseResponse{
		ID:          expense.ID,
		PayerID:     expense.PayerID,
		Amount:      expense.Amount,
		Description: expense.Description,
		CreatedAt:   expense.CreatedAt,
		Splits:      splits,
	}
}

func toExpenseResponses(expenses []*models.Expense) []expenseResponse {
	responses := make([]expenseResponse, len(expenses))
	for i, expense := range expenses {
		responses[i] = toExpenseResponse(expense)
	}
	return responses
}

// handleCreate validates a proposed expense split and persists the expense
// with all of its lines atomically. The authenticated caller is the payer.
func (h *ExpenseHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req createExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	lines := make([]models.SplitLine, len(req.Splits))
	for i, split := range req.Splits {
		kind := models.SplitKind(split.SplitKind)
		if !kind.Valid() {
			respond.Error(w, http.StatusBadRequest, "unknown split_kind: "+split.SplitKind)
			return
		}
		lines[i] = models.SplitLine{
			UserID:     split.UserID,
			AmountOwed: split.AmountOwed,
			Kind:       kind,
			Percentage: split.Percentage,
		}
	}

	validated, err := calculator.ValidateSplit(req.Amount, lines)
	if err != nil {
		var verr *calculator.ValidationError
		if errors.As(err, &verr) {
			slog.Info("Split rejected", "user_id", userID, "code", verr.Code)
			respond.Error(w, http.StatusBadRequest, verr.Error())
			return
		}
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.checkParticipantsExist(r, validated); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	expense := &models.Expense{
		PayerID:     userID,
		Amount:      req.Amount,
		Description: req.Description,
		Splits:      validated,
	}
	if err := h.store.CreateExpense(r.Context(), expense); err != nil {
		slog.Error("CreateExpense failed", "user_id", userID, "error", err)
		respond.Error(w, http.StatusInternalServerError, "failed to create expense")
		return
	}

	slog.Info("Expense created", "expense_id", expense.ID, "payer_id", userID,
		"amount", expense.Amount, "lines", len(expense.Splits))
	respond.JSON(w, http.StatusCreated, "Expense created successfully", toExpenseResponse(expense))
}

func (h *ExpenseHandler) checkParticipantsExist(r *http.Request, lines []models.SplitLine) error {
	ids := make([]string, len(lines))
	for i, line := range lines {
		ids[i] = line.UserID
	}

	users, err := h.store.GetUsersByIDs(r.Context(), ids)
	if err != nil {
		slog.Error("GetUsersByIDs failed", "error", err)
		return errors.New("failed to resolve participants")
	}
	for _, id := range ids {
		if _, ok := users[id]; !ok {
			return errors.New("unknown participant: " + id)
		}
	}
	return nil
}

func (h *ExpenseHandler) handleListMine(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	expenses, err := h.store.ListExpensesForUser(r.Context(), userID)
	if err != nil {
		slog.Error("ListExpensesForUser failed", "user_id", userID, "error", err)
		respond.Error(w, http.StatusInternalServerError, "failed to list expenses")
		return
	}

	respond.JSON(w, http.StatusOK, "ok", toExpenseResponses(expenses))
}

func (h *ExpenseHandler) handleListAll(w http.ResponseWriter, r *http.Request) {
	expenses, err := h.store.ListExpenses(r.Context())
	if err != nil {
		slog.Error("ListExpenses failed", "error", err)
		respond.Error(w, http.StatusInternalServerError, "failed to list expenses")
		return
	}

	respond.JSON(w, http.StatusOK, "ok", toExpenseResponses(expenses))
}
