package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"circuitweb/internal/caching"
	"circuitweb/internal/common"
	"circuitweb/internal/metrics"
	"circuitweb/internal/models"
	"circuitweb/internal/repositories"

	"github.com/rs/zerolog"
)

const (
	UserSourceProvider = "provider"
	UserSourceDatabase = "database"

	defaultSignInProvider = "email"
	createdUserProvider   = "password"
)

type AuthService interface {
	VerifyToken(ctx context.Context, idToken string) (string, error)
	VerifyUser(ctx context.Context, idToken string) (*VerifiedUser, error)
	SignIn(ctx context.Context, input SignInInput) (*models.User, bool, error)
	GetProviderUser(ctx context.Context, uid string) (*models.ProviderUser, error)
	CreateUser(ctx context.Context, params *models.ProviderUserCreate) (*models.ProviderUser, *models.User, error)
	UpdateUser(ctx context.Context, uid string, params *models.ProviderUserUpdate) (*models.ProviderUser, error)
	UpdateProfile(ctx context.Context, idToken string, params *models.ProviderUserUpdate) (*models.ProviderUser, error)
	DeleteUser(ctx context.Context, uid string) error
	SetCustomClaims(ctx context.Context, uid string, claims map[string]interface{}) error
	ListAllUsers(ctx context.Context) ([]*models.User, string, error)
	SyncProviderUsers(ctx context.Context) (int, error)
}

// SignInInput is the payload of a sign-up / sign-in call.
type SignInInput struct {
	IDToken     string
	Email       string
	DisplayName string
	Provider    string
}

// VerifiedUser is the identity behind a verified token. ID is set when a local row exists.
type VerifiedUser struct {
	ID            *int64 `json:"id,omitempty"`
	UID           string `json:"uid"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"emailVerified"`
	DisplayName   string `json:"displayName"`
}

type authService struct {
	provider IdentityProvider
	users    repositories.UserRepository
	cache    caching.CacheService
	tokenTTL time.Duration
	log      zerolog.Logger
}

func NewAuthService(provider IdentityProvider, users repositories.UserRepository, cache caching.CacheService,
	tokenTTL time.Duration, log zerolog.Logger) AuthService {
	if cache == nil {
		cache = caching.NewNoopCacheService()
	}
	return &authService{
		provider: provider,
		users:    users,
		cache:    cache,
		tokenTTL: tokenTTL,
		log:      log.With().Str("component", "auth").Logger(),
	}
}

func (s *authService) VerifyToken(ctx context.Context, idToken string) (string, error) {
	idToken = strings.TrimSpace(idToken)
	if idToken == "" {
		return "", fmt.Errorf("%w: missing token", common.ErrUnauthenticated)
	}

	if uid, err := s.cache.GetString(ctx, caching.TokenKey(idToken)); err == nil && uid != "" {
		return uid, nil
	} else if err != nil && !errors.Is(err, caching.ErrCacheMiss) {
		s.log.Warn().Err(err).Msg("token cache read failed")
	}

	info, err := s.verifyTokenInfo(ctx, idToken)
	if err != nil {
		return "", err
	}
	return info.UID, nil
}

// verifyTokenInfo checks the token with the provider and caches the result.
func (s *authService) verifyTokenInfo(ctx context.Context, idToken string) (*models.TokenInfo, error) {
	idToken = strings.TrimSpace(idToken)
	if idToken == "" {
		return nil, fmt.Errorf("%w: missing token", common.ErrUnauthenticated)
	}

	info, err := s.provider.VerifyIDToken(ctx, idToken)
	if err != nil {
		s.log.Debug().Err(err).Msg("id token rejected")
		return nil, fmt.Errorf("%w: %v", common.ErrUnauthenticated, err)
	}

	ttl := s.tokenTTL
	if !info.ExpiresAt.IsZero() {
		if untilExpiry := time.Until(info.ExpiresAt); untilExpiry < ttl {
			ttl = untilExpiry
		}
	}
	if ttl > 0 {
		s.cacheToken(ctx, caching.TokenKey(idToken), info.UID, ttl)
	}
	return info, nil
}

func (s *authService) cacheToken(ctx context.Context, key, uid string, ttl time.Duration) {
	if err := s.cache.SetString(ctx, key, uid, ttl); err != nil {
		s.log.Warn().Err(err).Msg("token cache write failed")
		return
	}
	if err := s.cache.SetString(ctx, caching.UserTokenKey(uid), key, ttl); err != nil {
		s.log.Warn().Err(err).Str("uid", uid).Msg("token index write failed")
	}
}

// evictTokens drops the cached token of uid so it has to be verified again.
func (s *authService) evictTokens(ctx context.Context, uid string) {
	indexKey := caching.UserTokenKey(uid)
	tokenKey, err := s.cache.GetString(ctx, indexKey)
	switch {
	case errors.Is(err, caching.ErrCacheMiss):
		return
	case err != nil:
		s.log.Warn().Err(err).Str("uid", uid).Msg("token index read failed")
		return
	}
	for _, key := range []string{tokenKey, indexKey} {
		if err := s.cache.Delete(ctx, key); err != nil {
			s.log.Warn().Err(err).Str("uid", uid).Msg("token cache eviction failed")
		}
	}
}

func (s *authService) VerifyUser(ctx context.Context, idToken string) (*VerifiedUser, error) {
	info, err := s.verifyTokenInfo(ctx, idToken)
	if err != nil {
		return nil, err
	}

	local, err := s.localUser(ctx, info.UID)
	if err != nil {
		return nil, err
	}

	verified := &VerifiedUser{UID: info.UID, Email: info.Email}
	if local != nil {
		verified.ID = &local.ID
		verified.Email = common.Coalesce(local.Email, info.Email)
		verified.DisplayName = local.DisplayName
	}

	providerUser, err := s.provider.GetUser(ctx, info.UID)
	switch {
	case err == nil:
		verified.Email = providerUser.Email
		verified.EmailVerified = providerUser.EmailVerified
		verified.DisplayName = providerUser.DisplayName
	case errors.Is(err, common.ErrUnsupported):
		// verify-only provider: token claims and the local row are all we have
	default:
		return nil, err
	}
	return verified, nil
}

// SignIn creates the local user on first sign-in and otherwise only records the login time.
func (s *authService) SignIn(ctx context.Context, input SignInInput) (*models.User, bool, error) {
	uid, err := s.VerifyToken(ctx, input.IDToken)
	if err != nil {
		return nil, false, err
	}

	existing, err := s.localUser(ctx, uid)
	if err != nil {
		return nil, false, err
	}

	now := time.Now().UTC()
	if existing != nil {
		if err := s.users.UpdateLastLogin(ctx, existing.ID, now); err != nil {
			return nil, false, fmt.Errorf("failed to record login for %s: %w", uid, err)
		}
		existing.LastLoginAt = &now
		return existing, false, nil
	}

	user := &models.User{
		UID:         uid,
		Email:       input.Email,
		DisplayName: input.DisplayName,
		Provider:    common.StringPtr(common.Coalesce(input.Provider, defaultSignInProvider)),
		CreatedAt:   now,
		LastLoginAt: &now,
	}

	// the provider profile only contributes the photo and a missing email
	providerUser, err := s.provider.GetUser(ctx, uid)
	if err != nil {
		s.log.Warn().Err(err).Str("uid", uid).Msg("could not load provider profile during sign-in")
	} else {
		user.PhotoURL = common.StringPtr(providerUser.PhotoURL)
		user.Email = common.Coalesce(user.Email, providerUser.Email)
		user.DisplayName = common.Coalesce(user.DisplayName, providerUser.DisplayName)
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, false, err
	}
	s.log.Info().Str("uid", uid).Msg("registered local user")
	return user, true, nil
}

func (s *authService) GetProviderUser(ctx context.Context, uid string) (*models.ProviderUser, error) {
	return s.provider.GetUser(ctx, uid)
}

// CreateUser creates the provider account first. A failed local insert is not rolled back.
func (s *authService) CreateUser(ctx context.Context, params *models.ProviderUserCreate) (*models.ProviderUser, *models.User, error) {
	providerUser, err := s.provider.CreateUser(ctx, params)
	if err != nil {
		return nil, nil, err
	}

	user := &models.User{
		UID:         providerUser.UID,
		Email:       providerUser.Email,
		DisplayName: common.Coalesce(providerUser.DisplayName, common.SafeString(params.DisplayName)),
		PhotoURL:    common.StringPtr(providerUser.PhotoURL),
		Provider:    common.StringPtr(createdUserProvider),
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		s.log.Error().Err(err).Str("uid", providerUser.UID).Msg("provider user created but local insert failed")
		return providerUser, nil, err
	}
	return providerUser, user, nil
}

func (s *authService) UpdateUser(ctx context.Context, uid string, params *models.ProviderUserUpdate) (*models.ProviderUser, error) {
	return s.provider.UpdateUser(ctx, uid, params)
}

// UpdateProfile updates the caller's provider profile and mirrors the changed
// fields onto the local row when one exists.
func (s *authService) UpdateProfile(ctx context.Context, idToken string, params *models.ProviderUserUpdate) (*models.ProviderUser, error) {
	uid, err := s.VerifyToken(ctx, idToken)
	if err != nil {
		return nil, err
	}

	providerUser, err := s.provider.UpdateUser(ctx, uid, params)
	if err != nil {
		return nil, err
	}

	local, err := s.localUser(ctx, uid)
	if err != nil || local == nil {
		return providerUser, err
	}

	if params.DisplayName != nil {
		local.DisplayName = *params.DisplayName
	}
	if params.PhotoURL != nil {
		local.PhotoURL = params.PhotoURL
	}
	if params.PhoneNumber != nil {
		local.PhoneNumber = params.PhoneNumber
	}
	if err := s.users.Update(ctx, local); err != nil {
		return nil, err
	}
	return providerUser, nil
}

// DeleteUser removes the provider account, then the local row. A provider
// account that is already gone does not block the local cleanup.
func (s *authService) DeleteUser(ctx context.Context, uid string) error {
	providerErr := s.provider.DeleteUser(ctx, uid)
	if providerErr != nil && !errors.Is(providerErr, common.ErrNotFound) {
		return providerErr
	}
	s.evictTokens(ctx, uid)

	local, err := s.localUser(ctx, uid)
	if err != nil {
		return err
	}
	if local == nil {
		return providerErr
	}
	if providerErr != nil {
		s.log.Info().Str("uid", uid).Msg("provider user already deleted, removing local row")
	}
	if _, err := s.users.Delete(ctx, local.ID); err != nil {
		return fmt.Errorf("failed to delete local user %s: %w", uid, err)
	}
	return nil
}

func (s *authService) SetCustomClaims(ctx context.Context, uid string, claims map[string]interface{}) error {
	return s.provider.SetCustomClaims(ctx, uid, claims)
}

// ListAllUsers prefers the identity provider and falls back to the local table
// when the provider fails or returns nothing. The two sources are not reconciled.
func (s *authService) ListAllUsers(ctx context.Context) ([]*models.User, string, error) {
	providerUsers, err := s.provider.ListUsers(ctx)
	if err == nil && len(providerUsers) > 0 {
		users := make([]*models.User, 0, len(providerUsers))
		for _, pu := range providerUsers {
			users = append(users, userFromProvider(pu))
		}
		return users, UserSourceProvider, nil
	}

	if err != nil {
		s.log.Warn().Err(err).Msg("provider user listing failed, falling back to database")
	}
	metrics.RecordUserListFallback()

	users, err := s.users.List(ctx)
	if err != nil {
		return nil, UserSourceDatabase, err
	}
	return users, UserSourceDatabase, nil
}

// SyncProviderUsers inserts local rows for provider users that have none.
// Existing rows are left untouched.
func (s *authService) SyncProviderUsers(ctx context.Context) (int, error) {
	providerUsers, err := s.provider.ListUsers(ctx)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, pu := range providerUsers {
		existing, err := s.localUser(ctx, pu.UID)
		if err != nil {
			return created, err
		}
		if existing != nil {
			continue
		}

		user := userFromProvider(pu)
		if err := s.users.Create(ctx, user); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

// localUser returns nil without error when the uid has no local row.
func (s *authService) localUser(ctx context.Context, uid string) (*models.User, error) {
	user, err := s.users.GetByUID(ctx, uid)
	if errors.Is(err, common.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func userFromProvider(pu *models.ProviderUser) *models.User {
	createdAt := pu.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	return &models.User{
		UID:         pu.UID,
		Email:       pu.Email,
		DisplayName: pu.DisplayName,
		PhotoURL:    common.StringPtr(pu.PhotoURL),
		PhoneNumber: common.StringPtr(pu.PhoneNumber),
		Provider:    common.StringPtr(NormalizeProvider(pu.Provider)),
		CreatedAt:   createdAt,
		LastLoginAt: pu.LastLoginAt,
	}
}
