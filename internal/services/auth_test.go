package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jobpilot/apiserver/internal/auth"
	"github.com/jobpilot/apiserver/internal/store"
	"github.com/jobpilot/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

type fakeUserRepo struct {
	users map[primitive.ObjectID]*types.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[primitive.ObjectID]*types.User{}}
}

func (f *fakeUserRepo) add(user types.User) types.User {
	user.ID = primitive.NewObjectID()
	f.users[user.ID] = &user
	return user
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (types.User, error) {
	if user, ok := f.users[id]; ok {
		return *user, nil
	}
	return types.User{}, store.ErrNotFound
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (types.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			return *user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (f *fakeUserRepo) GetByMobile(ctx context.Context, mobile string) (types.User, error) {
	for _, user := range f.users {
		if user.Mobile == mobile {
			return *user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (f *fakeUserRepo) List(ctx context.Context) ([]types.User, error) {
	out := []types.User{}
	for _, user := range f.users {
		out = append(out, *user)
	}
	return out, nil
}

func (f *fakeUserRepo) ListByRole(ctx context.Context, role string) ([]types.User, error) {
	out := []types.User{}
	for _, user := range f.users {
		if user.Role == role {
			out = append(out, *user)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) Create(ctx context.Context, user types.User) (types.User, error) {
	return f.add(user), nil
}

func (f *fakeUserRepo) SetOTP(ctx context.Context, id primitive.ObjectID, code string, expiresAt time.Time) error {
	user, ok := f.users[id]
	if !ok {
		return store.ErrNotFound
	}
	user.OTP = code
	user.OTPExpire = expiresAt
	return nil
}

func (f *fakeUserRepo) GetByEmailAndOTP(ctx context.Context, email, code string, now time.Time) (types.User, error) {
	for _, user := range f.users {
		if user.Email == email && user.OTP != "" && user.OTP == code && user.OTPExpire.After(now) {
			return *user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (f *fakeUserRepo) ResetPassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error {
	user, ok := f.users[id]
	if !ok {
		return store.ErrNotFound
	}
	user.PasswordHash = passwordHash
	user.OTP = ""
	user.OTPExpire = time.Time{}
	return nil
}

func (f *fakeUserRepo) SoftDelete(ctx context.Context, id primitive.ObjectID) error {
	if _, ok := f.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

type fakeEmployerRepo struct {
	employers map[primitive.ObjectID]*types.Employer
}

func newFakeEmployerRepo() *fakeEmployerRepo {
	return &fakeEmployerRepo{employers: map[primitive.ObjectID]*types.Employer{}}
}

func (f *fakeEmployerRepo) add(employer types.Employer) types.Employer {
	employer.ID = primitive.NewObjectID()
	f.employers[employer.ID] = &employer
	return employer
}

func (f *fakeEmployerRepo) GetByID(ctx context.Context, id primitive.ObjectID) (types.Employer, error) {
	if employer, ok := f.employers[id]; ok {
		return *employer, nil
	}
	return types.Employer{}, store.ErrNotFound
}

func (f *fakeEmployerRepo) GetByEmail(ctx context.Context, email string) (types.Employer, error) {
	for _, employer := range f.employers {
		if employer.Email == email {
			return *employer, nil
		}
	}
	return types.Employer{}, store.ErrNotFound
}

func (f *fakeEmployerRepo) GetByMobile(ctx context.Context, mobile string) (types.Employer, error) {
	for _, employer := range f.employers {
		if employer.Mobile == mobile {
			return *employer, nil
		}
	}
	return types.Employer{}, store.ErrNotFound
}

func (f *fakeEmployerRepo) List(ctx context.Context) ([]types.Employer, error) {
	out := []types.Employer{}
	for _, employer := range f.employers {
		out = append(out, *employer)
	}
	return out, nil
}

func (f *fakeEmployerRepo) Create(ctx context.Context, employer types.Employer) (types.Employer, error) {
	return f.add(employer), nil
}

func (f *fakeEmployerRepo) SetApproval(ctx context.Context, id primitive.ObjectID, status string) (types.Employer, error) {
	employer, ok := f.employers[id]
	if !ok {
		return types.Employer{}, store.ErrNotFound
	}
	employer.IsApproved = status
	return *employer, nil
}

func (f *fakeEmployerRepo) SetOTP(ctx context.Context, id primitive.ObjectID, code string, expiresAt time.Time) error {
	employer, ok := f.employers[id]
	if !ok {
		return store.ErrNotFound
	}
	employer.OTP = code
	employer.OTPExpire = expiresAt
	return nil
}

func (f *fakeEmployerRepo) GetByEmailAndOTP(ctx context.Context, email, code string, now time.Time) (types.Employer, error) {
	for _, employer := range f.employers {
		if employer.Email == email && employer.OTP != "" && employer.OTP == code && employer.OTPExpire.After(now) {
			return *employer, nil
		}
	}
	return types.Employer{}, store.ErrNotFound
}

func (f *fakeEmployerRepo) ResetPassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error {
	employer, ok := f.employers[id]
	if !ok {
		return store.ErrNotFound
	}
	employer.PasswordHash = passwordHash
	employer.OTP = ""
	employer.OTPExpire = time.Time{}
	return nil
}

func (f *fakeEmployerRepo) SoftDelete(ctx context.Context, id primitive.ObjectID) error {
	if _, ok := f.employers[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.employers, id)
	return nil
}

type fakeVendorRepo struct {
	vendors map[primitive.ObjectID]*types.Vendor
}

func newFakeVendorRepo() *fakeVendorRepo {
	return &fakeVendorRepo{vendors: map[primitive.ObjectID]*types.Vendor{}}
}

func (f *fakeVendorRepo) add(vendor types.Vendor) types.Vendor {
	vendor.ID = primitive.NewObjectID()
	f.vendors[vendor.ID] = &vendor
	return vendor
}

func (f *fakeVendorRepo) GetByID(ctx context.Context, id primitive.ObjectID) (types.Vendor, error) {
	if vendor, ok := f.vendors[id]; ok {
		return *vendor, nil
	}
	return types.Vendor{}, store.ErrNotFound
}

func (f *fakeVendorRepo) GetByEmail(ctx context.Context, email string) (types.Vendor, error) {
	for _, vendor := range f.vendors {
		if vendor.Email == email {
			return *vendor, nil
		}
	}
	return types.Vendor{}, store.ErrNotFound
}

func (f *fakeVendorRepo) GetByMobile(ctx context.Context, mobile string) (types.Vendor, error) {
	for _, vendor := range f.vendors {
		if vendor.Mobile == mobile {
			return *vendor, nil
		}
	}
	return types.Vendor{}, store.ErrNotFound
}

func (f *fakeVendorRepo) List(ctx context.Context) ([]types.Vendor, error) {
	out := []types.Vendor{}
	for _, vendor := range f.vendors {
		out = append(out, *vendor)
	}
	return out, nil
}

func (f *fakeVendorRepo) Create(ctx context.Context, vendor types.Vendor) (types.Vendor, error) {
	return f.add(vendor), nil
}

func (f *fakeVendorRepo) SetOTP(ctx context.Context, id primitive.ObjectID, code string, expiresAt time.Time) error {
	vendor, ok := f.vendors[id]
	if !ok {
		return store.ErrNotFound
	}
	vendor.OTP = code
	vendor.OTPExpire = expiresAt
	return nil
}

func (f *fakeVendorRepo) GetByEmailAndOTP(ctx context.Context, email, code string, now time.Time) (types.Vendor, error) {
	for _, vendor := range f.vendors {
		if vendor.Email == email && vendor.OTP != "" && vendor.OTP == code && vendor.OTPExpire.After(now) {
			return *vendor, nil
		}
	}
	return types.Vendor{}, store.ErrNotFound
}

func (f *fakeVendorRepo) ResetPassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error {
	vendor, ok := f.vendors[id]
	if !ok {
		return store.ErrNotFound
	}
	vendor.PasswordHash = passwordHash
	vendor.OTP = ""
	vendor.OTPExpire = time.Time{}
	return nil
}

type fakeSuperAdminRepo struct {
	admins map[primitive.ObjectID]*types.SuperAdmin
}

func newFakeSuperAdminRepo() *fakeSuperAdminRepo {
	return &fakeSuperAdminRepo{admins: map[primitive.ObjectID]*types.SuperAdmin{}}
}

func (f *fakeSuperAdminRepo) add(admin types.SuperAdmin) types.SuperAdmin {
	admin.ID = primitive.NewObjectID()
	f.admins[admin.ID] = &admin
	return admin
}

func (f *fakeSuperAdminRepo) GetByID(ctx context.Context, id primitive.ObjectID) (types.SuperAdmin, error) {
	if admin, ok := f.admins[id]; ok {
		return *admin, nil
	}
	return types.SuperAdmin{}, store.ErrNotFound
}

func (f *fakeSuperAdminRepo) GetByEmail(ctx context.Context, email string) (types.SuperAdmin, error) {
	for _, admin := range f.admins {
		if admin.Email == email {
			return *admin, nil
		}
	}
	return types.SuperAdmin{}, store.ErrNotFound
}

func (f *fakeSuperAdminRepo) Create(ctx context.Context, admin types.SuperAdmin) (types.SuperAdmin, error) {
	return f.add(admin), nil
}

type sentMail struct {
	To      string
	Subject string
	Body    string
}

type fakeNotifier struct {
	sent []sentMail
	err  error
}

func (f *fakeNotifier) Send(ctx context.Context, to, subject, body string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

type authFixture struct {
	users       *fakeUserRepo
	employers   *fakeEmployerRepo
	vendors     *fakeVendorRepo
	superAdmins *fakeSuperAdminRepo
	notifier    *fakeNotifier
	codec       *auth.Codec
	service     *AuthService
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	f := &authFixture{
		users:       newFakeUserRepo(),
		employers:   newFakeEmployerRepo(),
		vendors:     newFakeVendorRepo(),
		superAdmins: newFakeSuperAdminRepo(),
		notifier:    &fakeNotifier{},
		codec:       auth.NewCodec("test-secret"),
	}
	f.service = NewAuthService(
		f.users, f.employers, f.vendors, f.superAdmins,
		f.codec, f.notifier,
		time.Hour, 24*time.Hour, 10*time.Minute,
	)
	return f
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestLoginCascadePrefersSuperAdmin(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	f.superAdmins.add(types.SuperAdmin{Email: "boss@example.com", PasswordHash: hashPassword(t, "adminpass")})
	f.employers.add(types.Employer{Email: "boss@example.com", PasswordHash: hashPassword(t, "other"), IsApproved: types.ApprovalApproved})

	result, err := f.service.Login(ctx, "boss@example.com", "adminpass")
	require.NoError(t, err)
	assert.Equal(t, auth.RoleSuperAdmin, result.Role)

	claims, err := f.codec.Decode(result.Token)
	require.NoError(t, err)
	assert.Equal(t, auth.RoleSuperAdmin, claims.Role)
}

func TestLoginCascadeFallsThroughToUser(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	f.users.add(types.User{Email: "seeker@example.com", PasswordHash: hashPassword(t, "userpass")})

	result, err := f.service.Login(ctx, "seeker@example.com", "userpass")
	require.NoError(t, err)
	assert.Equal(t, auth.RoleUser, result.Role)
}

func TestLoginUnknownEmail(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.service.Login(context.Background(), "nobody@example.com", "whatever")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestLoginWrongPassword(t *testing.T) {
	f := newAuthFixture(t)

	f.users.add(types.User{Email: "seeker@example.com", PasswordHash: hashPassword(t, "right")})

	_, err := f.service.Login(context.Background(), "seeker@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidPassword)
}

func TestLoginPendingEmployerRefused(t *testing.T) {
	f := newAuthFixture(t)

	f.employers.add(types.Employer{
		Email:        "pending@example.com",
		PasswordHash: hashPassword(t, "pass"),
		IsApproved:   types.ApprovalPending,
	})

	_, err := f.service.Login(context.Background(), "pending@example.com", "pass")

	var notApproved *NotApprovedError
	require.True(t, errors.As(err, &notApproved))
	assert.Equal(t, types.ApprovalPending, notApproved.Status)
}

func TestLoginEmployerApprovalPrecedesPasswordCheck(t *testing.T) {
	f := newAuthFixture(t)

	f.employers.add(types.Employer{
		Email:        "rejected@example.com",
		PasswordHash: hashPassword(t, "pass"),
		IsApproved:   types.ApprovalRejected,
	})

	// Wrong password, but the approval refusal wins.
	_, err := f.service.LoginEmployer(context.Background(), "rejected@example.com", "wrong")

	var notApproved *NotApprovedError
	require.True(t, errors.As(err, &notApproved))
	assert.Equal(t, types.ApprovalRejected, notApproved.Status)
}

func TestLoginVendorTokenTTL(t *testing.T) {
	f := newAuthFixture(t)

	f.vendors.add(types.Vendor{Email: "vendor@example.com", PasswordHash: hashPassword(t, "pass")})

	result, err := f.service.LoginVendor(context.Background(), "vendor@example.com", "pass")
	require.NoError(t, err)

	claims, err := f.codec.Decode(result.Token)
	require.NoError(t, err)
	assert.Equal(t, auth.RoleVendor, claims.Role)

	ttl := time.Until(claims.ExpiresAt.Time)
	assert.Greater(t, ttl, 23*time.Hour)
}

func TestSendOTPUnifiedPrefersUser(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	user := f.users.add(types.User{Email: "both@example.com"})
	f.employers.add(types.Employer{Email: "both@example.com"})

	kind, err := f.service.SendOTP(ctx, "both@example.com")
	require.NoError(t, err)
	assert.Equal(t, "User", kind)

	stored := f.users.users[user.ID]
	assert.Len(t, stored.OTP, 6)
	assert.True(t, stored.OTPExpire.After(time.Now()))

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, "both@example.com", f.notifier.sent[0].To)
	assert.Contains(t, f.notifier.sent[0].Body, stored.OTP)
}

func TestSendOTPFallsBackToEmployer(t *testing.T) {
	f := newAuthFixture(t)

	f.employers.add(types.Employer{Email: "hire@example.com"})

	kind, err := f.service.SendOTP(context.Background(), "hire@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Employer", kind)
}

func TestSendOTPUnknownEmail(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.service.SendOTP(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSendOTPReissueOverwrites(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	user := f.users.add(types.User{Email: "seeker@example.com"})

	_, err := f.service.SendOTP(ctx, "seeker@example.com")
	require.NoError(t, err)
	first := f.users.users[user.ID].OTP

	// Re-issue until the code changes; a stale challenge must never survive.
	var second string
	for i := 0; i < 20; i++ {
		_, err = f.service.SendOTP(ctx, "seeker@example.com")
		require.NoError(t, err)
		second = f.users.users[user.ID].OTP
		if second != first {
			break
		}
	}
	require.NotEqual(t, first, second)

	_, err = f.users.GetByEmailAndOTP(ctx, "seeker@example.com", first, time.Now())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSendOTPDispatchFailureKeepsChallenge(t *testing.T) {
	f := newAuthFixture(t)
	f.notifier.err = errors.New("smtp down")

	user := f.users.add(types.User{Email: "seeker@example.com"})

	_, err := f.service.SendOTP(context.Background(), "seeker@example.com")
	require.Error(t, err)

	// The challenge survives the failed dispatch; a later reset can use it.
	assert.Len(t, f.users.users[user.ID].OTP, 6)
}

func TestResetPasswordConsumesOTP(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	user := f.users.add(types.User{Email: "seeker@example.com", PasswordHash: hashPassword(t, "old")})

	_, err := f.service.SendOTP(ctx, "seeker@example.com")
	require.NoError(t, err)
	code := f.users.users[user.ID].OTP

	kind, err := f.service.ResetPassword(ctx, "seeker@example.com", code, "brand-new")
	require.NoError(t, err)
	assert.Equal(t, "User", kind)

	stored := f.users.users[user.ID]
	assert.Empty(t, stored.OTP)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("brand-new")))

	// Single use: the consumed code is dead.
	_, err = f.service.ResetPassword(ctx, "seeker@example.com", code, "again")
	assert.ErrorIs(t, err, ErrInvalidOTP)
}

func TestResetPasswordWrongCode(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	f.users.add(types.User{Email: "seeker@example.com"})
	_, err := f.service.SendOTP(ctx, "seeker@example.com")
	require.NoError(t, err)

	_, err = f.service.ResetPassword(ctx, "seeker@example.com", "000000", "new")
	assert.ErrorIs(t, err, ErrInvalidOTP)
}

func TestResetVendorPasswordScoped(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	vendor := f.vendors.add(types.Vendor{Email: "vendor@example.com", PasswordHash: hashPassword(t, "old")})

	require.NoError(t, f.service.SendVendorOTP(ctx, "vendor@example.com"))
	code := f.vendors.vendors[vendor.ID].OTP

	require.NoError(t, f.service.ResetVendorPassword(ctx, "vendor@example.com", code, "fresh"))

	stored := f.vendors.vendors[vendor.ID]
	assert.Empty(t, stored.OTP)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("fresh")))
}
