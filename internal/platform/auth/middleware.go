package auth

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ayeola05/IntegratedCareServer/internal/platform/httperr"
	"github.com/ayeola05/IntegratedCareServer/internal/platform/token"
)

// Authenticate extracts the bearer token from the Authorization header,
// verifies it, resolves the subject against the given store, and binds it to
// the request context. Every failure path returns immediately — a bad token
// can never fall through to the "no token" branch.
func Authenticate(tokens *token.Service, resolver Resolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if header == "" {
				return httperr.Authentication("not authorized, no token")
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return httperr.Authentication("not authorized, no token")
			}

			subjectID, err := tokens.Verify(parts[1])
			if err != nil {
				return httperr.Authentication("not authorized, token failed")
			}

			subject, err := resolver.ResolveSubject(c.Request().Context(), subjectID)
			if err != nil {
				return httperr.Authentication("not authorized, token failed")
			}

			c.SetRequest(c.Request().WithContext(NewContext(c.Request().Context(), subject)))
			return next(c)
		}
	}
}

// RequirePractitioner gates a route on the bound subject's role.
func RequirePractitioner() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			s := FromContext(c.Request().Context())
			if s == nil || s.Role != RolePractitioner {
				return httperr.Authorization("not authorized as a practitioner")
			}
			return next(c)
		}
	}
}
