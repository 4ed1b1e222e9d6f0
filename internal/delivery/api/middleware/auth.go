package middleware

import (
	"log/slog"
	"strings"

	"refugis/internal/delivery/api/response"
	deliverycontext "refugis/internal/delivery/context"
	"refugis/internal/domain/entity"
	"refugis/internal/domain/service"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

const bearerPrefix = "Bearer "

// AuthMiddlewareParams holds dependencies for AuthMiddleware, injected by Fx.
type AuthMiddlewareParams struct {
	fx.In

	Verifier service.IdentityVerifier
	Logger   *slog.Logger
}

// AuthMiddleware resolves the bearer token into the caller identity.
type AuthMiddleware struct {
	verifier service.IdentityVerifier
	logger   *slog.Logger
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(params AuthMiddlewareParams) *AuthMiddleware {
	return &AuthMiddleware{verifier: params.Verifier, logger: params.Logger}
}

// Authenticate verifies the Authorization header and stores the identity on the context.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
		if authHeader == "" {
			return response.Unauthorized(c, "UNAUTHORIZED", "Authorization header is missing")
		}

		token := strings.TrimPrefix(authHeader, bearerPrefix)
		if token == authHeader || strings.TrimSpace(token) == "" {
			return response.Unauthorized(c, "UNAUTHORIZED", "Invalid token format, must be Bearer token")
		}

		ctx := c.Request().Context()
		identity, err := m.verifier.Verify(ctx, token)
		if err != nil {
			deliverycontext.GetLoggerOrDefault(ctx, m.logger).Debug("Token rejected", slog.Any("error", err))

			return response.Unauthorized(c, "UNAUTHORIZED", "Invalid or expired token")
		}

		deliverycontext.SetIdentity(c, identity)

		reqLogger := deliverycontext.GetLoggerOrDefault(ctx, m.logger).With(slog.String("user_id", identity.UserID))
		c.SetRequest(c.Request().WithContext(deliverycontext.WithLogger(ctx, reqLogger)))

		return next(c)
	}
}

// RequireAdmin rejects callers without the administrator role. It must run after Authenticate.
func (m *AuthMiddleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		identity, ok := deliverycontext.GetIdentity(c)
		if !ok {
			return response.Unauthorized(c, "UNAUTHORIZED", "Caller identity is missing")
		}
		if !identity.IsAdmin {
			return response.Forbidden(c, "FORBIDDEN", "Permission denied: require '"+entity.RoleAdmin.String()+"' role")
		}

		return next(c)
	}
}

// GetIdentity returns the caller set by Authenticate.
func GetIdentity(c echo.Context) (entity.Identity, bool) {
	return deliverycontext.GetIdentity(c)
}
