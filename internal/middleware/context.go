package middleware

import "github.com/labstack/echo/v4"

// Echo context keys set by this package.
const (
	ContextKeyOperator  = "operator"
	ContextKeyRole      = "role"
	ContextKeyRequestID = "request_id"
)

// Operator returns the authenticated operator email, or "" on public routes.
func Operator(c echo.Context) string {
	operator, _ := c.Get(ContextKeyOperator).(string)
	return operator
}
