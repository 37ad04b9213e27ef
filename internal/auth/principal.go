package auth

import (
	"context"

	"github.com/jobpilot/apiserver/types"
)

// Principal is the resolved caller identity, constructed fresh per request
// from a token plus a live account lookup. Never persisted.
type Principal struct {
	ID   string
	Role Role
}

type contextKey string

const (
	principalKey contextKey = "principal"
	vendorKey    contextKey = "vendor"
)

// WithPrincipal attaches the resolved principal to the context.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext returns the principal attached by the resolver.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}

// WithVendor attaches the full vendor record. Vendor requests carry the
// whole document, not just {id, role}. Broader than the other roles on
// purpose.
func WithVendor(ctx context.Context, vendor types.Vendor) context.Context {
	return context.WithValue(ctx, vendorKey, vendor)
}

// VendorFromContext returns the vendor record attached by the resolver.
func VendorFromContext(ctx context.Context) (types.Vendor, bool) {
	v, ok := ctx.Value(vendorKey).(types.Vendor)
	return v, ok
}
