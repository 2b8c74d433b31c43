package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	authpkg "github.com/bara-directory/seeder/internal/auth"
)

// JWT validates bearer tokens and stores the operator's claims in the request
// context.
func JWT(manager *authpkg.JWTManager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization header"})
			}

			scheme, token, found := strings.Cut(authHeader, " ")
			if !found || !strings.EqualFold(scheme, "Bearer") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authorization header"})
			}

			claims, err := manager.ParseToken(strings.TrimSpace(token))
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			c.Set(ContextKeyOperator, claims.Operator())
			c.Set(ContextKeyRole, claims.Role)

			ctx := c.Request().Context()
			zerolog.Ctx(ctx).UpdateContext(func(zc zerolog.Context) zerolog.Context {
				return zc.Str("operator", claims.Operator())
			})

			return next(c)
		}
	}
}
