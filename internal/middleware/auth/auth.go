package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/glintmarket/storefront/internal/models"
	"github.com/glintmarket/storefront/internal/service/token"
)

const userContextKey = "authUser"

// Middleware gates routes behind a bearer token. All failure modes (missing
// header, bad signature, expiry, orphaned subject) answer with the same 401
// so the response never hints at which check failed.
type Middleware struct {
	DB     *gorm.DB
	Tokens *token.Service
}

func unauthenticated() error {
	return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing token")
}

func (m *Middleware) RequireUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			return unauthenticated()
		}

		userID, err := m.Tokens.Verify(raw)
		if err != nil {
			return unauthenticated()
		}

		var user models.User
		if err := m.DB.WithContext(c.Request().Context()).First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return unauthenticated()
			}
			return echo.NewHTTPError(http.StatusInternalServerError, "cannot load user")
		}

		c.Set(userContextKey, &user)
		return next(c)
	}
}

func (m *Middleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return m.RequireUser(func(c echo.Context) error {
		if !CurrentUser(c).IsAdmin() {
			return echo.NewHTTPError(http.StatusForbidden, "admin access required")
		}
		return next(c)
	})
}

// CurrentUser returns the authenticated user set by RequireUser. It panics
// when called outside a gated route; that is a routing bug, not a runtime
// condition.
func CurrentUser(c echo.Context) *models.User {
	return c.Get(userContextKey).(*models.User)
}
