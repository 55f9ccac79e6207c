package middleware

import (
	"context"
	"net/http"

	"ordersetu-be/internal/apperror"
	"ordersetu-be/internal/auth"
	"ordersetu-be/internal/httpx"
	"ordersetu-be/internal/logger"

	"go.uber.org/zap"
)

// Authenticate rejects requests without a valid bearer token and stores the
// resulting principal in the request context.
func Authenticate(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := auth.ExtractAccessToken(r)
			if tokenStr == "" {
				httpx.WriteError(w, r, apperror.Unauthorized("Not authorized, no token"))
				return
			}

			principal, err := auth.ParseToken(secret, tokenStr)
			if err != nil {
				logger.FromCtx(r.Context()).Debug("token rejected", zap.Error(err))
				httpx.WriteError(w, r, apperror.Unauthorized("Not authorized, token failed"))
				return
			}

			next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), principal)))
		})
	}
}

// RequireRoles must run after Authenticate.
func RequireRoles(roles ...auth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := auth.PrincipalFrom(r.Context())
			if !ok {
				httpx.WriteError(w, r, apperror.Unauthorized("Not authorized"))
				return
			}
			if !principal.HasRole(roles...) {
				httpx.WriteError(w, r, apperror.Forbidden("Access denied"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Identify attaches the principal of a valid token and lets every request
// through. Access control stays with Authenticate.
func Identify(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tokenStr := auth.ExtractAccessToken(r); tokenStr != "" {
				if principal, err := auth.ParseToken(secret, tokenStr); err == nil {
					r = r.WithContext(withPrincipal(r.Context(), principal))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// withPrincipal also tags the request logger with the caller's tenant.
func withPrincipal(ctx context.Context, p auth.Principal) context.Context {
	ctx = logger.WithFields(ctx,
		zap.String("restaurant_id", p.RestaurantID.String()),
		zap.String("role", string(p.Role)),
	)
	return auth.WithPrincipal(ctx, p)
}
