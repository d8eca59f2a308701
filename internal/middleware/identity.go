package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/table-reservation/internal/model"
)

// Context keys set by JWTAuth.
const (
	ctxUserID = "user_id"
	ctxRole   = "role"
)

// CurrentUserID returns the authenticated user's id, or "" for anonymous
// requests.
func CurrentUserID(c echo.Context) string {
	id, _ := c.Get(ctxUserID).(string)
	return id
}

// CurrentRole returns the authenticated user's role, or "" for anonymous
// requests.
func CurrentRole(c echo.Context) model.Role {
	role, _ := c.Get(ctxRole).(model.Role)
	return role
}

// keyUser is CurrentUserID with a placeholder for rate-limit keys.
func keyUser(c echo.Context) string {
	if id := CurrentUserID(c); id != "" {
		return id
	}
	return "anon"
}
