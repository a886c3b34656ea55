// Package principal carries the verified caller identity through context.Context.
// The auth middleware stores it after token verification. The usecase layer
// reads it back, so no code depends on an ambient global security context.
package principal

import "context"

// Principal is the identity established by a verified access token.
type Principal struct {
	UserID uint
	Email  string
	Role   string
}

type ctxKey struct{}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// FromContext returns the principal stored in ctx.
// ok is false when none is stored or the stored one has no email.
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(ctxKey{}).(Principal)
	return p, ok && p.Email != ""
}

// EmailFrom returns the verified email of the caller.
func EmailFrom(ctx context.Context) (string, bool) {
	p, ok := FromContext(ctx)
	return p.Email, ok
}
