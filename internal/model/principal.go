package model

import "context"

// Principal is the authenticated caller attached to a request.
type Principal struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
	Admin bool   `json:"admin"`
}

// CanAccess reports whether the principal may read a resource owned by ownerID.
func (p Principal) CanAccess(ownerID string) bool {
	return p.Admin || (p.ID != "" && p.ID == ownerID)
}

type principalKey struct{}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the principal attached by the auth middleware.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}
