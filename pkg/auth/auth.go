// Package auth verifies bearer tokens and enforces role requirements on HTTP
// handlers and GraphQL resolvers.
package auth

import (
	"context"
	"errors"
	"slices"
)

var (
	// ErrUnauthorized indicates a missing, malformed, or rejected bearer token.
	ErrUnauthorized = errors.New("authentication required")
	// ErrForbidden indicates a valid token that lacks every accepted role.
	ErrForbidden = errors.New("Kein Token mit ausreichender Berechtigung vorhanden")
)

// Roles recognized by the service.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Principal is the verified identity behind a request.
type Principal struct {
	Subject  string
	Username string
	Roles    []string
}

// HasAnyRole reports whether p carries at least one of roles.
func (p *Principal) HasAnyRole(roles ...string) bool {
	if p == nil {
		return false
	}
	for _, r := range roles {
		if slices.Contains(p.Roles, r) {
			return true
		}
	}
	return false
}

// Verifier validates a raw bearer token and extracts its principal.
type Verifier interface {
	Verify(ctx context.Context, raw string) (*Principal, error)
}

type principalKey struct{}

// WithPrincipal stores p on ctx.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext returns the principal stored on ctx, or nil.
func FromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalKey{}).(*Principal)
	return p
}

// Authorize checks the principal on ctx against roles.
// Returns ErrUnauthorized without a principal and ErrForbidden when no role matches.
func Authorize(ctx context.Context, roles ...string) error {
	p := FromContext(ctx)
	if p == nil {
		return ErrUnauthorized
	}
	if !p.HasAnyRole(roles...) {
		return ErrForbidden
	}
	return nil
}
