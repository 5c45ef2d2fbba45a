package auth

import (
	"context"
	"testing"
	"time"

	"github.com/mmynk/splitledger/internal/models"
)

// memoryUserStorage is an in-memory UserStorage for tests.
type memoryUserStorage struct {
	byEmail map[string]*models.User
	byID    map[string]*models.User
}

func newMemoryUserStorage() *memoryUserStorage {
	return &memoryUserStorage{
		byEmail: make(map[string]*models.User),
		byID:    make(map[string]*models.User),
	}
}

func (m *memoryUserStorage) CreateUser(_ context.Context, user *models.User) error {
	m.byEmail[user.Email] = user
	m.byID[user.ID] = user
	return nil
}

func (m *memoryUserStorage) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	return m.byEmail[email], nil
}

func (m *memoryUserStorage) GetUserByID(_ context.Context, id string) (*models.User, error) {
	return m.byID[id], nil
}

func TestPasswordAuthenticator(t *testing.T) {
	ctx := context.Background()
	authenticator := NewPasswordAuthenticator(newMemoryUserStorage())

	t.Run("register and authenticate round trip", func(t *testing.T) {
		user, err := authenticator.Register(ctx, "alice@example.com", "Alice", "correct-horse")
		if err != nil {
			t.Fatalf("Register failed: %v", err)
		}
		if user.ID == "" {
			t.Error("Expected user ID to be generated")
		}
		if user.PasswordHash == "correct-horse" {
			t.Error("Password stored in plain text")
		}

		got, err := authenticator.Authenticate(ctx, "alice@example.com", "correct-horse")
		if err != nil {
			t.Fatalf("Authenticate failed: %v", err)
		}
		if got.ID != user.ID {
			t.Errorf("Authenticated user ID = %s, want %s", got.ID, user.ID)
		}
	})

	t.Run("wrong password is rejected", func(t *testing.T) {
		if _, err := authenticator.Authenticate(ctx, "alice@example.com", "wrong"); err != ErrInvalidCredentials {
			t.Errorf("Authenticate error = %v, want ErrInvalidCredentials", err)
		}
	})

	t.Run("unknown email is rejected identically", func(t *testing.T) {
		if _, err := authenticator.Authenticate(ctx, "ghost@example.com", "whatever"); err != ErrInvalidCredentials {
			t.Errorf("Authenticate error = %v, want ErrInvalidCredentials", err)
		}
	})

	t.Run("duplicate email is rejected", func(t *testing.T) {
		if _, err := authenticator.Register(ctx, "alice@example.com", "Alice Again", "long-enough"); err != ErrEmailExists {
			t.Errorf("Register error = %v, want ErrEmailExists", err)
		}
	})

	t.Run("short password is rejected", func(t *testing.T) {
		if _, err := authenticator.Register(ctx, "bob@example.com", "Bob", "short"); err != ErrWeakPassword {
			t.Errorf("Register error = %v, want ErrWeakPassword", err)
		}
	})
}

func TestJWTManager(t *testing.T) {
	user := &models.User{ID: "user-1", Email: "alice@example.com"}

	t.Run("generate and validate round trip", func(t *testing.T) {
		manager := NewJWTManager("test-secret", time.Hour)

		token, err := manager.Generate(user)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}

		claims, err := manager.Validate(token)
		if err != nil {
			t.Fatalf("Validate failed: %v", err)
		}
		if claims.UserID != user.ID {
			t.Errorf("UserID = %s, want %s", claims.UserID, user.ID)
		}
		if claims.Email != user.Email {
			t.Errorf("Email = %s, want %s", claims.Email, user.Email)
		}
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		manager := NewJWTManager("test-secret", -time.Minute)

		token, err := manager.Generate(user)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if _, err := manager.Validate(token); err == nil {
			t.Error("Expected error for expired token, got nil")
		}
	})

	t.Run("token signed with another secret is rejected", func(t *testing.T) {
		manager := NewJWTManager("test-secret", time.Hour)
		other := NewJWTManager("other-secret", time.Hour)

		token, err := other.Generate(user)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if _, err := manager.Validate(token); err == nil {
			t.Error("Expected error for foreign token, got nil")
		}
	})

	t.Run("garbage token is rejected", func(t *testing.T) {
		manager := NewJWTManager("test-secret", time.Hour)
		if _, err := manager.Validate("not.a.token"); err == nil {
			t.Error("Expected error for garbage token, got nil")
		}
	})
}
