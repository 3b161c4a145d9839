package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"circuitweb/internal/common"
	"circuitweb/internal/models"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

const securetokenIssuerPrefix = "https://securetoken.google.com/"

// firebaseClaims are the claims carried by a Firebase ID token.
type firebaseClaims struct {
	Email         string `json:"email,omitempty"`
	EmailVerified bool   `json:"email_verified,omitempty"`
	jwt.RegisteredClaims
}

// jwksIdentityProvider verifies ID tokens against a public JWKS without admin
// credentials. It cannot manage users.
type jwksIdentityProvider struct {
	jwks      *keyfunc.JWKS
	projectID string
}

// LoadJWKSIdentityProvider fetches the key set at jwksURL and keeps it refreshed.
func LoadJWKSIdentityProvider(projectID, jwksURL string, refresh time.Duration, log zerolog.Logger) (IdentityProvider, func(), error) {
	jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{
		RefreshInterval:   refresh,
		RefreshRateLimit:  time.Minute,
		RefreshTimeout:    10 * time.Second,
		RefreshUnknownKID: true,
		RefreshErrorHandler: func(err error) {
			log.Error().Err(err).Str("jwks_url", jwksURL).Msg("failed to refresh JWKS")
		},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load JWKS from %s: %w", jwksURL, err)
	}
	return NewJWKSIdentityProvider(projectID, jwks), jwks.EndBackground, nil
}

func NewJWKSIdentityProvider(projectID string, jwks *keyfunc.JWKS) IdentityProvider {
	return &jwksIdentityProvider{jwks: jwks, projectID: projectID}
}

func (p *jwksIdentityProvider) VerifyIDToken(_ context.Context, idToken string) (*models.TokenInfo, error) {
	claims := &firebaseClaims{}
	token, err := jwt.ParseWithClaims(idToken, claims, p.jwks.Keyfunc,
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithIssuer(securetokenIssuerPrefix+p.projectID),
		jwt.WithAudience(p.projectID),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("token not valid")
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}

	info := &models.TokenInfo{UID: claims.Subject, Email: claims.Email}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time.UTC()
	}
	return info, nil
}

func (p *jwksIdentityProvider) GetUser(context.Context, string) (*models.ProviderUser, error) {
	return nil, fmt.Errorf("get user: %w", common.ErrUnsupported)
}

func (p *jwksIdentityProvider) CreateUser(context.Context, *models.ProviderUserCreate) (*models.ProviderUser, error) {
	return nil, fmt.Errorf("create user: %w", common.ErrUnsupported)
}

func (p *jwksIdentityProvider) UpdateUser(context.Context, string, *models.ProviderUserUpdate) (*models.ProviderUser, error) {
	return nil, fmt.Errorf("update user: %w", common.ErrUnsupported)
}

func (p *jwksIdentityProvider) DeleteUser(context.Context, string) error {
	return fmt.Errorf("delete user: %w", common.ErrUnsupported)
}

func (p *jwksIdentityProvider) ListUsers(context.Context) ([]*models.ProviderUser, error) {
	return nil, fmt.Errorf("list users: %w", common.ErrUnsupported)
}

func (p *jwksIdentityProvider) SetCustomClaims(context.Context, string, map[string]interface{}) error {
	return fmt.Errorf("set custom claims: %w", common.ErrUnsupported)
}
