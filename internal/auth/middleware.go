package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/schalkje/DiagramDesigner/models"
)

const (
	// ContextKeyUser is the key for storing user in context
	ContextKeyUser = "user"
	// ContextKeyClaims is the key for storing JWT claims in context
	ContextKeyClaims = "claims"
)

// UserLookup resolves the account a token was issued for.
type UserLookup interface {
	GetUser(ctx context.Context, id uint) (*models.User, error)
}

// Middleware is the authentication middleware
type Middleware struct {
	jwtService *JWTService
	users      UserLookup
}

// NewMiddleware creates a new authentication middleware
func NewMiddleware(jwtService *JWTService, users UserLookup) *Middleware {
	return &Middleware{
		jwtService: jwtService,
		users:      users,
	}
}

// RequireAuth is middleware that requires JWT authentication. The token's
// user must still exist and be active.
func (m *Middleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		// Extract token from Authorization header
		authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
		if authHeader == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "Missing authorization header")
		}

		// Parse Bearer token
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid authorization header format")
		}

		claims, err := m.jwtService.ValidateToken(strings.TrimSpace(parts[1]))
		if err != nil {
			if errors.Is(err, ErrExpiredToken) {
				return echo.NewHTTPError(http.StatusUnauthorized, "Token has expired")
			}
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
		}

		user, err := m.users.GetUser(c.Request().Context(), claims.UserID)
		if err != nil || user == nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "User not found").SetInternal(err)
		}
		if !user.IsActive {
			return echo.NewHTTPError(http.StatusUnauthorized, "Account is deactivated")
		}

		c.Set(ContextKeyClaims, claims)
		c.Set(ContextKeyUser, user)

		return next(c)
	}
}

// GetClaims extracts JWT claims from Echo context
func GetClaims(c echo.Context) (*Claims, bool) {
	claims, ok := c.Get(ContextKeyClaims).(*Claims)
	return claims, ok
}

// GetUser returns the authenticated user loaded by RequireAuth.
func GetUser(c echo.Context) (*models.User, bool) {
	user, ok := c.Get(ContextKeyUser).(*models.User)
	return user, ok
}

// GetUserID extracts user ID from JWT claims in context
func GetUserID(c echo.Context) (uint, bool) {
	claims, ok := GetClaims(c)
	if !ok {
		return 0, false
	}
	return claims.UserID, true
}
