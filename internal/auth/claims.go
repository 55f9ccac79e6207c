package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type Role string

const (
	RoleOwner   Role = "owner"
	RoleChef    Role = "chef"
	RoleWaiter  Role = "waiter"
	RoleCleaner Role = "cleaner"
)

func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleChef, RoleWaiter, RoleCleaner:
		return true
	}
	return false
}

// Claims are issued by the credential service. Subject holds the owner or
// worker id.
type Claims struct {
	Role         Role   `json:"role"`
	RestaurantID string `json:"restaurant_id"`
	jwt.RegisteredClaims
}

var (
	ErrMissingSecret = errors.New("JWT secret is not set")
	ErrInvalidToken  = errors.New("invalid token")
)

// ParseToken validates tokenStr and converts its claims into a Principal.
func ParseToken(secret, tokenStr string) (Principal, error) {
	if secret == "" {
		return Principal{}, ErrMissingSecret
	}

	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return Principal{}, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Principal{}, ErrInvalidToken
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Principal{}, ErrInvalidToken
	}
	restaurantID, err := uuid.Parse(claims.RestaurantID)
	if err != nil {
		return Principal{}, ErrInvalidToken
	}
	if !claims.Role.Valid() {
		return Principal{}, ErrInvalidToken
	}

	return Principal{ID: id, RestaurantID: restaurantID, Role: claims.Role}, nil
}
