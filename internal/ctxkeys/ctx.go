package ctxkeys

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hexagonhq/hexagon/internal/model"
)

// contextKey is a type for context keys to avoid collisions
type contextKey string

const (
	UserKey   contextKey = "user"
	ClaimsKey contextKey = "claims"
)

func User(ctx context.Context) *model.User {
	user, _ := ctx.Value(UserKey).(*model.User)
	return user
}

func WithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, UserKey, user)
}

func Claims(ctx context.Context) jwt.MapClaims {
	claims, _ := ctx.Value(ClaimsKey).(jwt.MapClaims)
	return claims
}

func WithClaims(ctx context.Context, claims jwt.MapClaims) context.Context {
	return context.WithValue(ctx, ClaimsKey, claims)
}
