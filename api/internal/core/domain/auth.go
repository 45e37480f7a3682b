package domain

import "context"

type contextKey string

// UserContextKey carries the verified *UserClaims on the request context.
const UserContextKey contextKey = "user_claims"

// UserClaims is the identity extracted from a verified bearer token.
type UserClaims struct {
	UserID int    `json:"id"`
	Role   string `json:"role"`
}

// ClaimsFromContext returns the verified claims, if the auth middleware ran.
func ClaimsFromContext(ctx context.Context) (*UserClaims, bool) {
	claims, ok := ctx.Value(UserContextKey).(*UserClaims)
	return claims, ok && claims != nil
}
