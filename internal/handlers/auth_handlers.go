package handlers

import (
	"errors"
	"strings"

	"circuitweb/internal/common"
	"circuitweb/internal/metrics"
	"circuitweb/internal/models"
	"circuitweb/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// AuthHandlers exposes token verification and identity-provider user management.
type AuthHandlers struct {
	authService services.AuthService
	log         zerolog.Logger
}

func NewAuthHandlers(authService services.AuthService, log zerolog.Logger) *AuthHandlers {
	return &AuthHandlers{authService: authService, log: log.With().Str("handler", "auth").Logger()}
}

type VerifyTokenRequest struct {
	IDToken string `json:"idToken"`
	Token   string `json:"token"`
}

// VerifyToken handles POST /api/auth/verify
func (h *AuthHandlers) VerifyToken(c echo.Context) error {
	var req VerifyTokenRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, err := h.authService.VerifyUser(c.Request().Context(), common.Coalesce(req.IDToken, req.Token))
	metrics.RecordAuthAttempt("verify", err == nil)
	if err != nil {
		return serviceError(err, "User not found")
	}

	return ok(c, "Token verified successfully", Map{"user": user})
}

type SignUpRequest struct {
	IDToken     string `json:"idToken"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Provider    string `json:"provider"`
}

// SignUp handles POST /api/auth/signup. It registers the caller on first sign-in
// and records a login otherwise.
func (h *AuthHandlers) SignUp(c echo.Context) error {
	var req SignUpRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, created, err := h.authService.SignIn(c.Request().Context(), services.SignInInput{
		IDToken:     req.IDToken,
		Email:       strings.TrimSpace(req.Email),
		DisplayName: strings.TrimSpace(req.DisplayName),
		Provider:    strings.TrimSpace(req.Provider),
	})
	metrics.RecordAuthAttempt("signup", err == nil)
	if err != nil {
		return serviceError(err, "User not found")
	}

	message := "User login successful"
	if created {
		message = "User registered successfully"
	}
	return ok(c, message, Map{"user": localUserView(user)})
}

type CreateUserRequest struct {
	Email       string  `json:"email"`
	Password    string  `json:"password"`
	DisplayName *string `json:"displayName"`
	PhotoURL    *string `json:"photoUrl"`
}

// CreateUser handles POST /api/auth/create-user
func (h *AuthHandlers) CreateUser(c echo.Context) error {
	var req CreateUserRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if strings.TrimSpace(req.Email) == "" {
		return badRequest("Email is required")
	}
	if req.Password == "" {
		return badRequest("Password is required")
	}

	providerUser, user, err := h.authService.CreateUser(c.Request().Context(), &models.ProviderUserCreate{
		Email:       strings.TrimSpace(req.Email),
		Password:    req.Password,
		DisplayName: req.DisplayName,
		PhotoURL:    req.PhotoURL,
	})
	if err != nil {
		return providerError(err, "")
	}

	return ok(c, "User created successfully", Map{"user": Map{
		"id":          user.ID,
		"uid":         providerUser.UID,
		"email":       providerUser.Email,
		"displayName": providerUser.DisplayName,
	}})
}

// GetUser handles GET /api/auth/get-user?uid=
func (h *AuthHandlers) GetUser(c echo.Context) error {
	uid := strings.TrimSpace(c.QueryParam("uid"))
	if uid == "" {
		return badRequest("User UID is required")
	}

	user, err := h.authService.GetProviderUser(c.Request().Context(), uid)
	if err != nil {
		return serviceError(err, "User not found")
	}

	return ok(c, "User found", Map{"user": Map{
		"uid":         user.UID,
		"email":       user.Email,
		"displayName": user.DisplayName,
		"photoURL":    user.PhotoURL,
	}})
}

type UpdateUserRequest struct {
	UID         string  `json:"uid"`
	Email       *string `json:"email"`
	DisplayName *string `json:"displayName"`
	PhotoURL    *string `json:"photoUrl"`
	Password    *string `json:"password"`
	PhoneNumber *string `json:"phoneNumber"`
}

// UpdateUser handles PUT /api/auth/update-user
func (h *AuthHandlers) UpdateUser(c echo.Context) error {
	var req UpdateUserRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if strings.TrimSpace(req.UID) == "" {
		return badRequest("User UID is required")
	}

	user, err := h.authService.UpdateUser(c.Request().Context(), strings.TrimSpace(req.UID), &models.ProviderUserUpdate{
		Email:       req.Email,
		DisplayName: req.DisplayName,
		PhotoURL:    req.PhotoURL,
		Password:    req.Password,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		return providerError(err, "User not found")
	}

	return ok(c, "User updated successfully", Map{"user": profileView(user)})
}

type UpdateProfileRequest struct {
	IDToken     string  `json:"idToken"`
	DisplayName *string `json:"displayName"`
	PhotoURL    *string `json:"photoUrl"`
	PhoneNumber *string `json:"phoneNumber"`
}

// UpdateProfile handles PUT /api/auth/update-profile. Email and password cannot
// be changed through this endpoint.
func (h *AuthHandlers) UpdateProfile(c echo.Context) error {
	var req UpdateProfileRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if strings.TrimSpace(req.IDToken) == "" {
		return badRequest("ID token is required")
	}

	user, err := h.authService.UpdateProfile(c.Request().Context(), req.IDToken, &models.ProviderUserUpdate{
		DisplayName: req.DisplayName,
		PhotoURL:    req.PhotoURL,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		if errors.Is(err, common.ErrUnauthenticated) {
			return serviceError(err, "")
		}
		return providerError(err, "User not found")
	}

	return ok(c, "Profile updated successfully", Map{"user": profileView(user)})
}

// DeleteUser handles DELETE /api/auth/delete-user?uid=
func (h *AuthHandlers) DeleteUser(c echo.Context) error {
	uid := strings.TrimSpace(c.QueryParam("uid"))
	if uid == "" {
		return badRequest("User UID is required")
	}

	if err := h.authService.DeleteUser(c.Request().Context(), uid); err != nil {
		return providerError(err, "User not found")
	}
	h.log.Info().Str("uid", uid).Msg("user deleted")

	return ok(c, "User deleted successfully", nil)
}

type SetCustomClaimsRequest struct {
	UID          string                 `json:"uid"`
	CustomClaims map[string]interface{} `json:"customClaims"`
}

// SetCustomClaims handles POST /api/auth/set-custom-claims
func (h *AuthHandlers) SetCustomClaims(c echo.Context) error {
	var req SetCustomClaimsRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if strings.TrimSpace(req.UID) == "" {
		return badRequest("User UID is required")
	}
	if len(req.CustomClaims) == 0 {
		return badRequest("Custom claims are required")
	}

	if err := h.authService.SetCustomClaims(c.Request().Context(), strings.TrimSpace(req.UID), req.CustomClaims); err != nil {
		return providerError(err, "User not found")
	}

	return ok(c, "Custom claims set successfully", nil)
}

func localUserView(user *models.User) Map {
	return Map{
		"id":          user.ID,
		"uid":         user.UID,
		"email":       user.Email,
		"displayName": user.DisplayName,
	}
}

func profileView(user *models.ProviderUser) Map {
	return Map{
		"uid":         user.UID,
		"displayName": user.DisplayName,
		"photoURL":    user.PhotoURL,
		"phoneNumber": user.PhoneNumber,
	}
}
