// Package auth handles user registration, credential verification, and
// session token issuance. The rest of the system only ever sees the user ID
// an authenticator resolves; credential formats stay behind this boundary.
package auth

import (
	"context"

	"github.com/mmynk/splitledger/internal/models"
)

// Authenticator resolves caller credentials into user accounts. The
// abstraction allows swapping auth methods (password, OAuth, etc.) without
// touching the handlers.
type Authenticator interface {
	// Register creates a new account for the given email and credential.
	Register(ctx context.Context, email, displayName, credential string) (*models.User, error)

	// Authenticate verifies the credential and returns the matching user.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	// ValidateCredential checks whether the credential meets the
	// implementation's requirements before any account is touched.
	ValidateCredential(credential string) error
}
