package auth

import "context"

type ctxKey string

const principalKey ctxKey = "principal"

// Principal is the authenticated caller as resolved by the auth middleware.
// Its UserID is what the use cases record as performedBy.
type Principal struct {
	UserID  string
	StoreID string
	Role    string
}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}

// PerformedBy returns the caller's user id, or "system" when the context
// carries no principal (background jobs, listeners).
func PerformedBy(ctx context.Context) string {
	if p, ok := FromContext(ctx); ok && p.UserID != "" {
		return p.UserID
	}
	return "system"
}
