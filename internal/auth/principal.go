package auth

import (
	"context"

	"ordersetu-be/internal/apperror"

	"github.com/google/uuid"
)

// Principal is the authenticated owner or worker behind a request.
type Principal struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
	Role         Role
}

func (p Principal) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if p.Role == r {
			return true
		}
	}
	return false
}

type ctxKey string

const principalKey ctxKey = "principal"

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}

// RequirePrincipal is PrincipalFrom for handlers behind Authenticate.
func RequirePrincipal(ctx context.Context) (Principal, error) {
	p, ok := PrincipalFrom(ctx)
	if !ok {
		return Principal{}, apperror.Unauthorized("Not authorized")
	}
	return p, nil
}
