// Package auth implements account authentication and session tokens.
package auth

import (
	"context"

	"github.com/FilipPawlowski3TP/MoneySplit/internal/models"
)

// Authenticator registers accounts and checks their credentials.
// PasswordAuthenticator is the only implementation.
type Authenticator interface {
	// Register creates an account. The email is normalized first.
	Register(ctx context.Context, email, displayName, credential string) (*models.User, error)

	// Authenticate returns the account matching email and credential,
	// or ErrInvalidCredentials.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	// ValidateCredential rejects credentials too weak to register with.
	ValidateCredential(credential string) error
}
