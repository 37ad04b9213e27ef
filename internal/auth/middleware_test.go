package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jobpilot/apiserver/internal/store"
	"github.com/jobpilot/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAccounts struct {
	users     map[string]types.User
	employers map[string]types.Employer
	vendors   map[string]types.Vendor

	lookups int
}

func (f *fakeAccounts) UserByID(ctx context.Context, id string) (types.User, error) {
	f.lookups++
	if user, ok := f.users[id]; ok {
		return user, nil
	}
	return types.User{}, store.ErrNotFound
}

func (f *fakeAccounts) EmployerByID(ctx context.Context, id string) (types.Employer, error) {
	f.lookups++
	if employer, ok := f.employers[id]; ok {
		return employer, nil
	}
	return types.Employer{}, store.ErrNotFound
}

func (f *fakeAccounts) VendorByID(ctx context.Context, id string) (types.Vendor, error) {
	f.lookups++
	if vendor, ok := f.vendors[id]; ok {
		return vendor, nil
	}
	return types.Vendor{}, store.ErrNotFound
}

func newTestResolver(accounts *fakeAccounts) (*Resolver, *Codec) {
	codec := NewCodec("test-secret")
	return NewResolver(codec, accounts), codec
}

func verifyRequest(t *testing.T, resolver *Resolver, token string, next http.Handler) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	resolver.Verify(next).ServeHTTP(rec, req)
	return rec
}

func noopHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func responseMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["message"]
}

func TestVerifyNoToken(t *testing.T) {
	resolver, _ := newTestResolver(&fakeAccounts{})

	rec := verifyRequest(t, resolver, "", noopHandler())

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Access Denied: No token provided", responseMessage(t, rec))
}

func TestVerifyInvalidToken(t *testing.T) {
	resolver, _ := newTestResolver(&fakeAccounts{})

	rec := verifyRequest(t, resolver, "garbage", noopHandler())

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid or expired token", responseMessage(t, rec))
}

func TestVerifyExpiredToken(t *testing.T) {
	resolver, codec := newTestResolver(&fakeAccounts{})
	token, err := codec.Issue("64f000000000000000000001", RoleUser, -time.Minute)
	require.NoError(t, err)

	rec := verifyRequest(t, resolver, token, noopHandler())

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestVerifyUnrecognizedRole(t *testing.T) {
	resolver, codec := newTestResolver(&fakeAccounts{})
	token, err := codec.Issue("64f000000000000000000001", Role("moderator"), time.Hour)
	require.NoError(t, err)

	rec := verifyRequest(t, resolver, token, noopHandler())

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Unauthorized role", responseMessage(t, rec))
}

func TestVerifyMissingUser(t *testing.T) {
	resolver, codec := newTestResolver(&fakeAccounts{})
	token, err := codec.Issue("64f000000000000000000001", RoleUser, time.Hour)
	require.NoError(t, err)

	rec := verifyRequest(t, resolver, token, noopHandler())

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "User not found", responseMessage(t, rec))
}

func TestVerifyMissingEmployer(t *testing.T) {
	resolver, codec := newTestResolver(&fakeAccounts{})
	token, err := codec.Issue("64f000000000000000000002", RoleEmployer, time.Hour)
	require.NoError(t, err)

	rec := verifyRequest(t, resolver, token, noopHandler())

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Employer not found", responseMessage(t, rec))
}

func TestVerifyMissingVendorGets401(t *testing.T) {
	resolver, codec := newTestResolver(&fakeAccounts{})
	token, err := codec.Issue("64f000000000000000000003", RoleVendor, time.Hour)
	require.NoError(t, err)

	rec := verifyRequest(t, resolver, token, noopHandler())

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid vendor token", responseMessage(t, rec))
}

func TestVerifyUserPrincipalRoleDefaults(t *testing.T) {
	accounts := &fakeAccounts{users: map[string]types.User{
		"64f000000000000000000001": {Role: ""},
	}}
	resolver, codec := newTestResolver(accounts)
	token, err := codec.Issue("64f000000000000000000001", RoleUser, time.Hour)
	require.NoError(t, err)

	var principal Principal
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, _ = PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	rec := verifyRequest(t, resolver, token, next)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, RoleUser, principal.Role)
}

func TestVerifyUserPrincipalCarriesJobRole(t *testing.T) {
	accounts := &fakeAccounts{users: map[string]types.User{
		"64f000000000000000000001": {Role: "Nurse"},
	}}
	resolver, codec := newTestResolver(accounts)
	token, err := codec.Issue("64f000000000000000000001", RoleUser, time.Hour)
	require.NoError(t, err)

	var principal Principal
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, _ = PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	rec := verifyRequest(t, resolver, token, next)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, Role("Nurse"), principal.Role)
}

func TestVerifyVendorAttachesFullRecord(t *testing.T) {
	vendor := types.Vendor{FirstName: "Vera", Email: "vera@example.com"}
	accounts := &fakeAccounts{vendors: map[string]types.Vendor{
		"64f000000000000000000003": vendor,
	}}
	resolver, codec := newTestResolver(accounts)
	token, err := codec.Issue("64f000000000000000000003", RoleVendor, time.Hour)
	require.NoError(t, err)

	var attached types.Vendor
	var ok bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attached, ok = VendorFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	rec := verifyRequest(t, resolver, token, next)

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, ok)
	assert.Equal(t, vendor.Email, attached.Email)
}

func TestVerifySuperAdminSkipsLookup(t *testing.T) {
	accounts := &fakeAccounts{}
	resolver, codec := newTestResolver(accounts)
	token, err := codec.Issue("64f000000000000000000004", RoleSuperAdmin, time.Hour)
	require.NoError(t, err)

	rec := verifyRequest(t, resolver, token, noopHandler())

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, accounts.lookups)
}

func TestGateAllowsListedRoles(t *testing.T) {
	gate := Gate(RoleEmployer, RoleSuperAdmin)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithPrincipal(req.Context(), Principal{ID: "x", Role: RoleEmployer}))
	rec := httptest.NewRecorder()
	gate(noopHandler()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGateRejectsUnlistedRole(t *testing.T) {
	gate := Gate(RoleEmployer, RoleSuperAdmin)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithPrincipal(req.Context(), Principal{ID: "x", Role: RoleVendor}))
	rec := httptest.NewRecorder()
	gate(noopHandler()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestGateMapsJobRoleToUser(t *testing.T) {
	gate := Gate(RoleUser)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithPrincipal(req.Context(), Principal{ID: "x", Role: Role("Plumber")}))
	rec := httptest.NewRecorder()
	gate(noopHandler()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGateWithoutPrincipal(t *testing.T) {
	gate := Gate(RoleUser)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	gate(noopHandler()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireComposesVerifyAndGate(t *testing.T) {
	accounts := &fakeAccounts{vendors: map[string]types.Vendor{
		"64f000000000000000000003": {},
	}}
	resolver, codec := newTestResolver(accounts)
	token, err := codec.Issue("64f000000000000000000003", RoleVendor, time.Hour)
	require.NoError(t, err)

	handler := resolver.Require(RoleUser)(noopHandler())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)

	handler = resolver.Require(RoleVendor)(noopHandler())
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
