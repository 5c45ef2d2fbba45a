package server

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/config"
	"github.com/mmynk/splitledger/internal/storage/sqlite"
)

// sameAmount compares two decimal strings by value, so "40" and "40.00" match.
func sameAmount(t *testing.T, got, want string) bool {
	t.Helper()
	g, err := decimal.NewFromString(got)
	if err != nil {
		t.Fatalf("parse amount %q: %v", got, err)
	}
	return g.Equal(decimal.RequireFromString(want))
}

// envelope mirrors the respond.Envelope shape with raw data for re-decoding.
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type authPayload struct {
	Token string `json:"token"`
	User  struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	} `json:"user"`
}

type balancePayload struct {
	OwesTo []struct {
		UserID    string `json:"user_id"`
		Name      string `json:"name"`
		TotalOwed string `json:"total_owed"`
	} `json:"owes_to"`
	OwedFrom []struct {
		UserID    string `json:"user_id"`
		Name      string `json:"name"`
		TotalOwed string `json:"total_owed"`
	} `json:"owed_from"`
}

func setupTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "splitledger-server-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := sqlite.New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	cfg := config.Config{
		Port:      "0",
		JWTSecret: "test-secret",
		JWTTTL:    time.Hour,
	}

	ts := httptest.NewServer(Routes(cfg, store))
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, ts *httptest.Server, method, path, token string, body any) (*http.Response, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, ts.URL+path, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode %s %s response: %v", method, path, err)
	}
	return resp, env
}

func register(t *testing.T, ts *httptest.Server, email, name string) authPayload {
	t.Helper()

	resp, env := doJSON(t, ts, http.MethodPost, "/api/register", "", map[string]string{
		"email":    email,
		"name":     name,
		"password": "hunter2hunter2",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register %s: status %d, message %q", email, resp.StatusCode, env.Message)
	}

	var payload authPayload
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		t.Fatalf("decode register payload: %v", err)
	}
	return payload
}

func TestAuthFlow(t *testing.T) {
	ts := setupTestServer(t)

	alice := register(t, ts, "alice@example.com", "Alice")
	if alice.Token == "" || alice.User.ID == "" {
		t.Fatalf("register returned incomplete payload: %+v", alice)
	}

	t.Run("login returns a working token", func(t *testing.T) {
		resp, env := doJSON(t, ts, http.MethodPost, "/api/login", "", map[string]string{
			"email":    "alice@example.com",
			"password": "hunter2hunter2",
		})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("login: status %d, message %q", resp.StatusCode, env.Message)
		}

		var payload authPayload
		if err := json.Unmarshal(env.Data, &payload); err != nil {
			t.Fatalf("decode login payload: %v", err)
		}

		resp, env = doJSON(t, ts, http.MethodGet, "/api/me", payload.Token, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("me: status %d, message %q", resp.StatusCode, env.Message)
		}
	})

	t.Run("wrong password is unauthorized", func(t *testing.T) {
		resp, _ := doJSON(t, ts, http.MethodPost, "/api/login", "", map[string]string{
			"email":    "alice@example.com",
			"password": "not-the-password",
		})
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("login with wrong password: status %d, want 401", resp.StatusCode)
		}
	})

	t.Run("duplicate registration conflicts", func(t *testing.T) {
		resp, _ := doJSON(t, ts, http.MethodPost, "/api/register", "", map[string]string{
			"email":    "alice@example.com",
			"name":     "Alice Again",
			"password": "hunter2hunter2",
		})
		if resp.StatusCode != http.StatusConflict {
			t.Errorf("duplicate register: status %d, want 409", resp.StatusCode)
		}
	})

	t.Run("protected routes reject missing tokens", func(t *testing.T) {
		resp, _ := doJSON(t, ts, http.MethodGet, "/api/balance", "", nil)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("balance without token: status %d, want 401", resp.StatusCode)
		}
	})
}

func TestExpenseAndBalanceFlow(t *testing.T) {
	ts := setupTestServer(t)

	alice := register(t, ts, "alice@example.com", "Alice")
	bob := register(t, ts, "bob@example.com", "Bob")

	// Alice pays 100.00, split exactly between herself and Bob.
	resp, env := doJSON(t, ts, http.MethodPost, "/api/expenses", alice.Token, map[string]any{
		"amount":      "100.00",
		"description": "Groceries",
		"splits": []map[string]any{
			{"user_id": alice.User.ID, "amount_owed": "60.00", "split_kind": "exact"},
			{"user_id": bob.User.ID, "amount_owed": "40.00", "split_kind": "exact"},
		},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create expense: status %d, message %q", resp.StatusCode, env.Message)
	}

	t.Run("inconsistent split is rejected with the rule", func(t *testing.T) {
		resp, env := doJSON(t, ts, http.MethodPost, "/api/expenses", alice.Token, map[string]any{
			"amount":      "100.00",
			"description": "Broken",
			"splits": []map[string]any{
				{"user_id": alice.User.ID, "amount_owed": "60.00", "split_kind": "exact"},
				{"user_id": bob.User.ID, "amount_owed": "40.01", "split_kind": "exact"},
			},
		})
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("invalid expense: status %d, want 400", resp.StatusCode)
		}
		if !strings.Contains(env.Message, "amount_mismatch") {
			t.Errorf("message = %q, want it to name amount_mismatch", env.Message)
		}
	})

	t.Run("unknown participant is rejected", func(t *testing.T) {
		resp, _ := doJSON(t, ts, http.MethodPost, "/api/expenses", alice.Token, map[string]any{
			"amount":      "10.00",
			"description": "Ghost",
			"splits": []map[string]any{
				{"user_id": "no-such-user", "amount_owed": "10.00", "split_kind": "exact"},
			},
		})
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("ghost participant: status %d, want 400", resp.StatusCode)
		}
	})

	t.Run("balances are symmetric", func(t *testing.T) {
		resp, env := doJSON(t, ts, http.MethodGet, "/api/balance", bob.Token, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("bob balance: status %d", resp.StatusCode)
		}
		var bobView balancePayload
		if err := json.Unmarshal(env.Data, &bobView); err != nil {
			t.Fatalf("decode bob balance: %v", err)
		}
		if len(bobView.OwesTo) != 1 || bobView.OwesTo[0].UserID != alice.User.ID {
			t.Fatalf("bob owes_to = %+v, want single entry for alice", bobView.OwesTo)
		}
		if !sameAmount(t, bobView.OwesTo[0].TotalOwed, "40.00") {
			t.Errorf("bob owes %s, want 40.00", bobView.OwesTo[0].TotalOwed)
		}
		if bobView.OwesTo[0].Name != "Alice" {
			t.Errorf("counterparty name = %q, want Alice", bobView.OwesTo[0].Name)
		}

		resp, env = doJSON(t, ts, http.MethodGet, "/api/balance", alice.Token, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("alice balance: status %d", resp.StatusCode)
		}
		var aliceView balancePayload
		if err := json.Unmarshal(env.Data, &aliceView); err != nil {
			t.Fatalf("decode alice balance: %v", err)
		}
		if len(aliceView.OwedFrom) != 1 || !sameAmount(t, aliceView.OwedFrom[0].TotalOwed, "40.00") {
			t.Errorf("alice owed_from = %+v, want bob owing 40.00", aliceView.OwedFrom)
		}
		// Alice's own 60.00 share nets to zero; it must not appear.
		if len(aliceView.OwesTo) != 0 {
			t.Errorf("alice owes_to = %+v, want empty", aliceView.OwesTo)
		}
	})

	t.Run("balance sheet downloads as csv", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/balance-sheet", nil)
		if err != nil {
			t.Fatalf("build request: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+bob.Token)

		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("balance-sheet request failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("balance-sheet: status %d", resp.StatusCode)
		}
		if ct := resp.Header.Get("Content-Type"); ct != "text/csv" {
			t.Errorf("Content-Type = %q, want text/csv", ct)
		}
		if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "balance_sheet_Bob.csv") {
			t.Errorf("Content-Disposition = %q, want bob's filename", cd)
		}

		records, err := csv.NewReader(resp.Body).ReadAll()
		if err != nil {
			t.Fatalf("parse csv: %v", err)
		}
		if len(records) != 2 {
			t.Fatalf("csv has %d rows, want header + bob's single line", len(records))
		}
		if records[1][5] != "owed to Alice" {
			t.Errorf("direction = %q, want %q", records[1][5], "owed to Alice")
		}
	})

	t.Run("overall listing includes the expense", func(t *testing.T) {
		resp, env := doJSON(t, ts, http.MethodGet, "/api/expenses/all", bob.Token, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expenses/all: status %d", resp.StatusCode)
		}
		var expenses []map[string]any
		if err := json.Unmarshal(env.Data, &expenses); err != nil {
			t.Fatalf("decode expenses: %v", err)
		}
		if len(expenses) == 0 {
			t.Error("expected at least one expense in overall listing")
		}
	})
}

func TestEqualAndPercentageExpenses(t *testing.T) {
	ts := setupTestServer(t)

	alice := register(t, ts, "alice@example.com", "Alice")
	bob := register(t, ts, "bob@example.com", "Bob")
	carol := register(t, ts, "carol@example.com", "Carol")

	t.Run("equal split with remainder cent", func(t *testing.T) {
		resp, env := doJSON(t, ts, http.MethodPost, "/api/expenses", alice.Token, map[string]any{
			"amount":      "100.00",
			"description": "Road trip",
			"splits": []map[string]any{
				{"user_id": alice.User.ID, "amount_owed": "33.34", "split_kind": "equal"},
				{"user_id": bob.User.ID, "amount_owed": "33.33", "split_kind": "equal"},
				{"user_id": carol.User.ID, "amount_owed": "33.33", "split_kind": "equal"},
			},
		})
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("equal expense: status %d, message %q", resp.StatusCode, env.Message)
		}
	})

	t.Run("percentage split validates the percentages only", func(t *testing.T) {
		resp, env := doJSON(t, ts, http.MethodPost, "/api/expenses", bob.Token, map[string]any{
			"amount":      "50.00",
			"description": "Streaming",
			"splits": []map[string]any{
				{"user_id": bob.User.ID, "amount_owed": "25.00", "split_kind": "percentage", "percentage": "50.00"},
				{"user_id": carol.User.ID, "amount_owed": "25.00", "split_kind": "percentage", "percentage": "50.00"},
			},
		})
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("percentage expense: status %d, message %q", resp.StatusCode, env.Message)
		}
	})

	t.Run("percentages off by a cent are rejected", func(t *testing.T) {
		resp, env := doJSON(t, ts, http.MethodPost, "/api/expenses", bob.Token, map[string]any{
			"amount":      "50.00",
			"description": "Broken",
			"splits": []map[string]any{
				{"user_id": bob.User.ID, "amount_owed": "25.00", "split_kind": "percentage", "percentage": "49.99"},
				{"user_id": carol.User.ID, "amount_owed": "25.00", "split_kind": "percentage", "percentage": "50.00"},
			},
		})
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("bad percentages: status %d, want 400", resp.StatusCode)
		}
		if !strings.Contains(env.Message, "percentage_mismatch") {
			t.Errorf("message = %q, want it to name percentage_mismatch", env.Message)
		}
	})

	t.Run("metrics endpoint is live", func(t *testing.T) {
		resp, err := http.Get(fmt.Sprintf("%s/metrics", ts.URL))
		if err != nil {
			t.Fatalf("metrics request failed: %v", err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			t.Fatalf("read metrics: %v", err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("metrics: status %d", resp.StatusCode)
		}
		if !strings.Contains(string(body), "splitledger_http_requests_total") {
			t.Error("metrics output is missing the request counter")
		}
	})
}
