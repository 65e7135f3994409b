package middleware

import (
	"net/http"
	"strings"

	"pink-basket/pkg/jwtutil"
	"pink-basket/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AdminAuth admits requests carrying a valid admin session, either in the
// session cookie or as a Bearer token.
func AdminAuth(sessions *jwtutil.SessionUtil, cookieName string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromContext(c)

			token := bearerToken(c.Request().Header.Get("Authorization"))
			if token == "" {
				if cookie, err := c.Cookie(cookieName); err == nil {
					token = cookie.Value
				}
			}
			if token == "" {
				log.Warn("Admin route without session", zap.String("path", c.Path()))
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "admin session required"})
			}

			claims, err := sessions.Validate(token)
			if err != nil {
				log.Warn("Invalid admin session", zap.Error(err))
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired session"})
			}

			c.Set("admin_role", claims.Role)
			return next(c)
		}
	}
}

func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
