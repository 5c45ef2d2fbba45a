// Package handlers implements the JSON API. Handlers parse and validate
// requests, call the core engine and storage, and shape responses; all split
// arithmetic lives in the calculator package.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/respond"
	"github.com/mmynk/splitledger/internal/storage"
)

// AuthHandler owns the register, login, and current-user endpoints.
type AuthHandler struct {
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
	store         storage.Store
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(authenticator auth.Authenticator, jwtManager *auth.JWTManager, store storage.Store) *AuthHandler {
	return &AuthHandler{authenticator: authenticator, jwtManager: jwtManager, store: store}
}

// Register attaches auth routes to the mux. requireAuth guards the
// current-user route.
func (h *AuthHandler) Register(mux *http.ServeMux, requireAuth func(http.Handler) http.Handler) {
	mux.HandleFunc("POST /api/register", h.handleRegister)
	mux.HandleFunc("POST /api/login", h.handleLogin)
	mux.Handle("GET /api/me", requireAuth(http.HandlerFunc(h.handleCurrentUser)))
}

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	CreatedAt int64  `json:"created_at"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

func toUserResponse(user *models.User) userResponse {
	return userResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.DisplayName,
		CreatedAt: user.CreatedAt,
	}
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	email := strings.TrimSpace(req.Email)
	name := strings.TrimSpace(req.Name)
	if email == "" || name == "" {
		respond.Error(w, http.StatusBadRequest, "email and name are required")
		return
	}
	if !strings.Contains(email, "@") {
		respond.Error(w, http.StatusBadRequest, "not a valid email address")
		return
	}

	user, err := h.authenticator.Register(r.Context(), email, name, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrEmailExists):
			respond.Error(w, http.StatusConflict, err.Error())
		case errors.Is(err, auth.ErrWeakPassword):
			respond.Error(w, http.StatusBadRequest, err.Error())
		default:
			slog.Error("Registration failed", "email", email, "error", err)
			respond.Error(w, http.StatusInternalServerError, "failed to create user")
		}
		return
	}

	token, err := h.jwtManager.Generate(user)
	if err != nil {
		slog.Error("Failed to generate token", "user_id", user.ID, "error", err)
		respond.Error(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	slog.Info("User registered", "user_id", user.ID, "email", user.Email)
	respond.JSON(w, http.StatusCreated, "User created successfully", authResponse{
		Token: token,
		User:  toUserResponse(user),
	})
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if req.Email == "" || req.Password == "" {
		respond.Error(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, err := h.authenticator.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		slog.Warn("Login failed", "email", req.Email)
		respond.Error(w, http.StatusUnauthorized, auth.ErrInvalidCredentials.Error())
		return
	}

	token, err := h.jwtManager.Generate(user)
	if err != nil {
		slog.Error("Failed to generate token", "user_id", user.ID, "error", err)
		respond.Error(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	slog.Info("User logged in", "user_id", user.ID)
	respond.JSON(w, http.StatusOK, "login successful", authResponse{
		Token: token,
		User:  toUserResponse(user),
	})
}

func (h *AuthHandler) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	user, err := h.store.GetUserByID(r.Context(), userID)
	if err != nil {
		slog.Error("GetUserByID failed", "user_id", userID, "error", err)
		respond.Error(w, http.StatusInternalServerError, "failed to fetch user")
		return
	}
	if user == nil {
		respond.Error(w, http.StatusNotFound, "user not found")
		return
	}

	respond.JSON(w, http.StatusOK, "ok", toUserResponse(user))
}
