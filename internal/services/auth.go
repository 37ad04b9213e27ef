package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jobpilot/apiserver/internal/auth"
	"github.com/jobpilot/apiserver/internal/store"
	"github.com/jobpilot/apiserver/types"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidPassword is returned when the password does not match the
// stored hash.
var ErrInvalidPassword = errors.New("invalid password")

// ErrInvalidOTP is returned when no account holds a live challenge
// matching the presented email and code.
var ErrInvalidOTP = errors.New("invalid or expired otp")

// NotApprovedError is returned when an employer whose approval state is
// not "Approved" attempts to log in. Status carries the current state for
// interpolation into the response body.
type NotApprovedError struct {
	Status string
}

func (e *NotApprovedError) Error() string {
	return fmt.Sprintf("account is %s", e.Status)
}

// Notifier dispatches an email with best-effort delivery.
type Notifier interface {
	Send(ctx context.Context, to, subject, body string) error
}

// LoginResult is the outcome of a successful credential check.
type LoginResult struct {
	Token string
	Role  auth.Role
}

// AuthService implements the login cascade and the OTP password-reset
// lifecycle across the four account collections.
type AuthService struct {
	users       UserRepository
	employers   EmployerRepository
	vendors     VendorRepository
	superAdmins SuperAdminRepository

	codec          *auth.Codec
	notifier       Notifier
	tokenTTL       time.Duration
	vendorTokenTTL time.Duration
	otpTTL         time.Duration
}

func NewAuthService(
	users UserRepository,
	employers EmployerRepository,
	vendors VendorRepository,
	superAdmins SuperAdminRepository,
	codec *auth.Codec,
	notifier Notifier,
	tokenTTL, vendorTokenTTL, otpTTL time.Duration,
) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = time.Hour
	}
	if vendorTokenTTL <= 0 {
		vendorTokenTTL = 24 * time.Hour
	}
	if otpTTL <= 0 {
		otpTTL = auth.OTPTTL
	}
	return &AuthService{
		users:          users,
		employers:      employers,
		vendors:        vendors,
		superAdmins:    superAdmins,
		codec:          codec,
		notifier:       notifier,
		tokenTTL:       tokenTTL,
		vendorTokenTTL: vendorTokenTTL,
		otpTTL:         otpTTL,
	}
}

// Login is the unified email login: the email is looked up as a
// SuperAdmin, then an Employer, then a User; the first collection that
// knows it decides the outcome.
func (s *AuthService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	if admin, err := s.superAdmins.GetByEmail(ctx, email); err == nil {
		return s.issue(admin.ID.Hex(), auth.RoleSuperAdmin, s.tokenTTL, admin.PasswordHash, password)
	} else if !errors.Is(err, store.ErrNotFound) {
		return LoginResult{}, err
	}

	if employer, err := s.employers.GetByEmail(ctx, email); err == nil {
		if employer.IsApproved != types.ApprovalApproved {
			return LoginResult{}, &NotApprovedError{Status: employer.IsApproved}
		}
		return s.issue(employer.ID.Hex(), auth.RoleEmployer, s.tokenTTL, employer.PasswordHash, password)
	} else if !errors.Is(err, store.ErrNotFound) {
		return LoginResult{}, err
	}

	if user, err := s.users.GetByEmail(ctx, email); err == nil {
		return s.issue(user.ID.Hex(), auth.RoleUser, s.tokenTTL, user.PasswordHash, password)
	} else if !errors.Is(err, store.ErrNotFound) {
		return LoginResult{}, err
	}

	return LoginResult{}, store.ErrNotFound
}

// LoginUser authenticates against the users collection only.
func (s *AuthService) LoginUser(ctx context.Context, email, password string) (LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return LoginResult{}, err
	}
	return s.issue(user.ID.Hex(), auth.RoleUser, s.tokenTTL, user.PasswordHash, password)
}

// LoginEmployer authenticates against the employers collection only. An
// unapproved employer is refused before the password is even checked.
func (s *AuthService) LoginEmployer(ctx context.Context, email, password string) (LoginResult, error) {
	employer, err := s.employers.GetByEmail(ctx, email)
	if err != nil {
		return LoginResult{}, err
	}
	if employer.IsApproved != types.ApprovalApproved {
		return LoginResult{}, &NotApprovedError{Status: employer.IsApproved}
	}
	return s.issue(employer.ID.Hex(), auth.RoleEmployer, s.tokenTTL, employer.PasswordHash, password)
}

// LoginVendor authenticates against the vendors collection. Vendor tokens
// live longer than the default.
func (s *AuthService) LoginVendor(ctx context.Context, email, password string) (LoginResult, error) {
	vendor, err := s.vendors.GetByEmail(ctx, email)
	if err != nil {
		return LoginResult{}, err
	}
	return s.issue(vendor.ID.Hex(), auth.RoleVendor, s.vendorTokenTTL, vendor.PasswordHash, password)
}

// LoginSuperAdmin authenticates against the superadmins collection with a
// day-long token.
func (s *AuthService) LoginSuperAdmin(ctx context.Context, email, password string) (LoginResult, error) {
	admin, err := s.superAdmins.GetByEmail(ctx, email)
	if err != nil {
		return LoginResult{}, err
	}
	return s.issue(admin.ID.Hex(), auth.RoleSuperAdmin, 24*time.Hour, admin.PasswordHash, password)
}

func (s *AuthService) issue(id string, role auth.Role, ttl time.Duration, hash, password string) (LoginResult, error) {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return LoginResult{}, ErrInvalidPassword
	}
	token, err := s.codec.Issue(id, role, ttl)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{Token: token, Role: role}, nil
}

// SendOTP issues a reset challenge for the unified flow: the users
// collection is searched first, then employers; the first match wins.
// The code is persisted before the email is dispatched, so a send failure
// leaves a valid challenge behind; a re-issue overwrites it.
func (s *AuthService) SendOTP(ctx context.Context, email string) (string, error) {
	if user, err := s.users.GetByEmail(ctx, email); err == nil {
		return "User", s.sendOTP(ctx, email, "User", func(ctx context.Context, code string, expiresAt time.Time) error {
			return s.users.SetOTP(ctx, user.ID, code, expiresAt)
		})
	} else if !errors.Is(err, store.ErrNotFound) {
		return "", err
	}

	if employer, err := s.employers.GetByEmail(ctx, email); err == nil {
		return "Employer", s.sendOTP(ctx, email, "Employer", func(ctx context.Context, code string, expiresAt time.Time) error {
			return s.employers.SetOTP(ctx, employer.ID, code, expiresAt)
		})
	} else if !errors.Is(err, store.ErrNotFound) {
		return "", err
	}

	return "", store.ErrNotFound
}

// SendUserOTP issues a reset challenge scoped to the users collection.
func (s *AuthService) SendUserOTP(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	return s.sendOTP(ctx, email, "User", func(ctx context.Context, code string, expiresAt time.Time) error {
		return s.users.SetOTP(ctx, user.ID, code, expiresAt)
	})
}

// SendEmployerOTP issues a reset challenge scoped to the employers collection.
func (s *AuthService) SendEmployerOTP(ctx context.Context, email string) error {
	employer, err := s.employers.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	return s.sendOTP(ctx, email, "Employer", func(ctx context.Context, code string, expiresAt time.Time) error {
		return s.employers.SetOTP(ctx, employer.ID, code, expiresAt)
	})
}

// SendVendorOTP issues a reset challenge scoped to the vendors collection.
func (s *AuthService) SendVendorOTP(ctx context.Context, email string) error {
	vendor, err := s.vendors.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	return s.sendOTP(ctx, email, "Vendor", func(ctx context.Context, code string, expiresAt time.Time) error {
		return s.vendors.SetOTP(ctx, vendor.ID, code, expiresAt)
	})
}

func (s *AuthService) sendOTP(ctx context.Context, email, kind string, persist func(context.Context, string, time.Time) error) error {
	code, err := auth.GenerateOTP()
	if err != nil {
		return err
	}
	expiresAt := time.Now().Add(s.otpTTL)

	if err := persist(ctx, code, expiresAt); err != nil {
		return err
	}

	logrus.WithField("email", email).Info("OTP issued")

	subject := fmt.Sprintf("%s Password Reset OTP", kind)
	body := fmt.Sprintf("Your OTP for password reset is %s. It is valid for %d minutes.", code, int(s.otpTTL.Minutes()))
	if err := s.notifier.Send(ctx, email, subject, body); err != nil {
		// The challenge is already persisted; the send failure is surfaced
		// as its own error rather than masked.
		logrus.WithField("email", email).WithError(err).Error("OTP email dispatch failed")
		return err
	}
	return nil
}

// ResetPassword consumes a challenge from the unified flow (users first,
// then employers) and installs the new password. The OTP fields are
// cleared in the same write, so a consumed code cannot be replayed.
func (s *AuthService) ResetPassword(ctx context.Context, email, code, newPassword string) (string, error) {
	now := time.Now()

	if user, err := s.users.GetByEmailAndOTP(ctx, email, code, now); err == nil {
		return "User", s.consume(ctx, newPassword, func(ctx context.Context, hash string) error {
			return s.users.ResetPassword(ctx, user.ID, hash)
		})
	} else if !errors.Is(err, store.ErrNotFound) {
		return "", err
	}

	if employer, err := s.employers.GetByEmailAndOTP(ctx, email, code, now); err == nil {
		return "Employer", s.consume(ctx, newPassword, func(ctx context.Context, hash string) error {
			return s.employers.ResetPassword(ctx, employer.ID, hash)
		})
	} else if !errors.Is(err, store.ErrNotFound) {
		return "", err
	}

	return "", ErrInvalidOTP
}

// ResetUserPassword consumes a challenge scoped to the users collection.
func (s *AuthService) ResetUserPassword(ctx context.Context, email, code, newPassword string) error {
	user, err := s.users.GetByEmailAndOTP(ctx, email, code, time.Now())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidOTP
		}
		return err
	}
	return s.consume(ctx, newPassword, func(ctx context.Context, hash string) error {
		return s.users.ResetPassword(ctx, user.ID, hash)
	})
}

// ResetEmployerPassword consumes a challenge scoped to the employers collection.
func (s *AuthService) ResetEmployerPassword(ctx context.Context, email, code, newPassword string) error {
	employer, err := s.employers.GetByEmailAndOTP(ctx, email, code, time.Now())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidOTP
		}
		return err
	}
	return s.consume(ctx, newPassword, func(ctx context.Context, hash string) error {
		return s.employers.ResetPassword(ctx, employer.ID, hash)
	})
}

// ResetVendorPassword consumes a challenge scoped to the vendors collection.
func (s *AuthService) ResetVendorPassword(ctx context.Context, email, code, newPassword string) error {
	vendor, err := s.vendors.GetByEmailAndOTP(ctx, email, code, time.Now())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidOTP
		}
		return err
	}
	return s.consume(ctx, newPassword, func(ctx context.Context, hash string) error {
		return s.vendors.ResetPassword(ctx, vendor.ID, hash)
	})
}

func (s *AuthService) consume(ctx context.Context, newPassword string, persist func(context.Context, string) error) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return persist(ctx, string(hash))
}
