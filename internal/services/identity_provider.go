package services

import (
	"context"
	"time"

	"circuitweb/internal/models"
)

// IdentityProvider is the external service that issues ID tokens and owns the
// canonical user profiles.
type IdentityProvider interface {
	VerifyIDToken(ctx context.Context, idToken string) (*models.TokenInfo, error)
	GetUser(ctx context.Context, uid string) (*models.ProviderUser, error)
	CreateUser(ctx context.Context, params *models.ProviderUserCreate) (*models.ProviderUser, error)
	UpdateUser(ctx context.Context, uid string, params *models.ProviderUserUpdate) (*models.ProviderUser, error)
	DeleteUser(ctx context.Context, uid string) error
	ListUsers(ctx context.Context) ([]*models.ProviderUser, error)
	SetCustomClaims(ctx context.Context, uid string, claims map[string]interface{}) error
}

// NormalizeProvider shortens identity-provider sign-in method ids.
func NormalizeProvider(providerID string) string {
	switch providerID {
	case "":
		return "email"
	case "google.com":
		return "google"
	case "password":
		return "email"
	default:
		return providerID
	}
}

func millisToTime(millis int64) time.Time {
	return time.UnixMilli(millis).UTC()
}

func unixToTime(seconds int64) time.Time {
	return time.Unix(seconds, 0).UTC()
}
