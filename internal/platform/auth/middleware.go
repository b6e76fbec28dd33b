package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const identityKey = "auth_identity"

// Identity is the authenticated caller, resolved from an access token.
type Identity struct {
	AccountID uuid.UUID
	Email     string
}

func (i Identity) IsZero() bool { return i.AccountID == uuid.Nil }

// IdentityFrom returns the identity stored by JWTMiddleware. Handlers call it
// once and pass the value down explicitly.
func IdentityFrom(c echo.Context) (Identity, bool) {
	id, ok := c.Get(identityKey).(Identity)
	return id, ok && !id.IsZero()
}

// SetIdentity stores id on the echo context.
func SetIdentity(c echo.Context, id Identity) {
	c.Set(identityKey, id)
}

// AccountChecker reports whether a token subject still names an active
// account.
type AccountChecker interface {
	ActiveAccount(ctx context.Context, id uuid.UUID) (bool, error)
}

// JWTMiddleware requires a valid bearer access token on every request the
// skipper does not exempt. When accounts is set, tokens whose account was
// removed or deactivated are rejected.
func JWTMiddleware(tokens *TokenIssuer, accounts AccountChecker, skipper func(echo.Context) bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if skipper != nil && skipper(c) {
				return next(c)
			}

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication credentials were not provided")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization format")
			}

			claims, err := tokens.Parse(strings.TrimSpace(parts[1]), AccessToken)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
			}

			// Parse already validated the subject.
			accountID, _ := uuid.Parse(claims.Subject)
			if accounts != nil {
				active, err := accounts.ActiveAccount(c.Request().Context(), accountID)
				if err != nil {
					return fmt.Errorf("check token account: %w", err)
				}
				if !active {
					return echo.NewHTTPError(http.StatusUnauthorized, "user not found or inactive")
				}
			}
			SetIdentity(c, Identity{AccountID: accountID, Email: claims.Email})
			return next(c)
		}
	}
}

// RequireIdentity extracts the caller or fails with 401. It guards handlers
// mounted without JWTMiddleware.
func RequireIdentity(c echo.Context) (Identity, error) {
	id, ok := IdentityFrom(c)
	if !ok {
		return Identity{}, echo.NewHTTPError(http.StatusUnauthorized, "authentication credentials were not provided")
	}
	return id, nil
}
