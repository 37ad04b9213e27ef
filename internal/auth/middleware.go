package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/jobpilot/apiserver/internal/store"
	"github.com/jobpilot/apiserver/types"
)

// AccountSource re-fetches the live account backing a token claim. A token
// whose subject no longer resolves is rejected even if cryptographically
// valid (revocation-by-absence).
type AccountSource interface {
	UserByID(ctx context.Context, id string) (types.User, error)
	EmployerByID(ctx context.Context, id string) (types.Employer, error)
	VendorByID(ctx context.Context, id string) (types.Vendor, error)
}

// Resolver turns a bearer token into a request-scoped Principal.
type Resolver struct {
	codec    *Codec
	accounts AccountSource
}

func NewResolver(codec *Codec, accounts AccountSource) *Resolver {
	return &Resolver{codec: codec, accounts: accounts}
}

// Verify is the identity-resolution middleware. It extracts the bearer
// token, decodes it, confirms the backing account still exists, and
// attaches the Principal. Superadmin tokens are trusted without a
// re-fetch; vendor tokens additionally attach the full vendor record.
func (rv *Resolver) Verify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString, err := bearerToken(r)
		if err != nil {
			reject(w, http.StatusUnauthorized, "Access Denied: No token provided")
			return
		}

		claims, err := rv.codec.Decode(tokenString)
		if err != nil {
			reject(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		if !claims.Role.Recognized() {
			reject(w, http.StatusForbidden, "Unauthorized role")
			return
		}

		ctx := r.Context()
		switch claims.Role {
		case RoleUser:
			user, err := rv.accounts.UserByID(ctx, claims.ID)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					reject(w, http.StatusNotFound, "User not found")
					return
				}
				reject(w, http.StatusInternalServerError, "Server error")
				return
			}
			role := Role(user.Role)
			if role == "" {
				role = RoleUser
			}
			ctx = WithPrincipal(ctx, Principal{ID: claims.ID, Role: role})

		case RoleEmployer:
			if _, err := rv.accounts.EmployerByID(ctx, claims.ID); err != nil {
				if errors.Is(err, store.ErrNotFound) {
					reject(w, http.StatusNotFound, "Employer not found")
					return
				}
				reject(w, http.StatusInternalServerError, "Server error")
				return
			}
			ctx = WithPrincipal(ctx, Principal{ID: claims.ID, Role: RoleEmployer})

		case RoleVendor:
			// Missing vendors get 401, not 404. Source behavior, kept as is.
			vendor, err := rv.accounts.VendorByID(ctx, claims.ID)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					reject(w, http.StatusUnauthorized, "Invalid vendor token")
					return
				}
				reject(w, http.StatusInternalServerError, "Server error")
				return
			}
			ctx = WithPrincipal(ctx, Principal{ID: claims.ID, Role: RoleVendor})
			ctx = WithVendor(ctx, vendor)

		case RoleSuperAdmin:
			// Superadmin identity is asserted by the token alone. The
			// privileged exception is this explicit case, never a fallthrough.
			ctx = WithPrincipal(ctx, Principal{ID: claims.ID, Role: RoleSuperAdmin})
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Gate admits only principals whose role is in the allowed set. It never
// decodes tokens itself; it runs after Verify. Superadmin entry to
// role-specific routes is granted only where the route lists it, never
// implicitly.
func Gate(allowed ...Role) func(http.Handler) http.Handler {
	allowedSet := make(map[Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFromContext(r.Context())
			if !ok {
				reject(w, http.StatusUnauthorized, "Access Denied: No token provided")
				return
			}
			if _, ok := allowedSet[membershipRole(principal.Role)]; !ok {
				reject(w, http.StatusForbidden, "Access Denied: Insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Require composes Verify and Gate for a route family.
func (rv *Resolver) Require(allowed ...Role) func(http.Handler) http.Handler {
	gate := Gate(allowed...)
	return func(next http.Handler) http.Handler {
		return rv.Verify(gate(next))
	}
}

// membershipRole maps a user's free-form job role (e.g. "Nurse") back to
// the user variant for gate checks. The other three roles pass through.
func membershipRole(role Role) Role {
	switch role {
	case RoleEmployer, RoleVendor, RoleSuperAdmin:
		return role
	}
	return RoleUser
}

func bearerToken(r *http.Request) (string, error) {
	authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
	if authHeader == "" {
		return "", errors.New("missing authorization")
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization")
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", errors.New("invalid authorization")
	}
	return token, nil
}

func reject(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}
