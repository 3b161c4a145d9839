package handlers

import (
	"circuitweb/internal/services"

	"github.com/labstack/echo/v4"
)

// UserHandlers lists registered users.
type UserHandlers struct {
	authService services.AuthService
}

func NewUserHandlers(authService services.AuthService) *UserHandlers {
	return &UserHandlers{authService: authService}
}

// ListUsers handles GET /api/users. Users come from the identity provider when it
// answers with a non-empty list and from the local table otherwise; source says which.
func (h *UserHandlers) ListUsers(c echo.Context) error {
	users, source, err := h.authService.ListAllUsers(c.Request().Context())
	if err != nil {
		return serviceError(err, "")
	}
	return ok(c, "", Map{"users": users, "source": source})
}
