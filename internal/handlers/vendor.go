package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jobpilot/apiserver/internal/auth"
	"github.com/jobpilot/apiserver/internal/services"
	"github.com/jobpilot/apiserver/internal/store"
	"github.com/jobpilot/apiserver/internal/validation"
	"github.com/jobpilot/apiserver/types"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// Service categories a vendor may browse users by.
var vendorCategories = []string{"designer", "developer", "printer", "other"}

// VendorHandler provides vendor account endpoints.
type VendorHandler struct {
	vendors *services.VendorService
	users   *services.UserService
	auth    *services.AuthService
}

// NewVendorHandler constructs a VendorHandler with the provided dependencies.
func NewVendorHandler(vendors *services.VendorService, users *services.UserService, authService *services.AuthService) *VendorHandler {
	return &VendorHandler{vendors: vendors, users: users, auth: authService}
}

// VendorRouter registers vendor routes on the given router.
func VendorRouter(r chi.Router, resolver *auth.Resolver, vendors *services.VendorService, users *services.UserService, authService *services.AuthService) {
	handler := NewVendorHandler(vendors, users, authService)

	r.Post("/create", handler.Create)
	r.Get("/", handler.List)
	r.Post("/login", handler.Login)
	r.Post("/forgot-password", handler.ForgotPassword)
	r.Post("/reset-password", handler.ResetPassword)
	// The vendor gate admits vendors only; there is no superadmin override here.
	r.With(resolver.Require(auth.RoleVendor)).Get("/users/{category}", handler.UsersByCategory)
}

// Create registers a new vendor account.
func (h *VendorHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateVendorRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validation.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	_, err = h.vendors.Create(r.Context(), types.Vendor{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Mobile:       req.Mobile,
		PasswordHash: string(hash),
		Gender:       req.Gender,
		DOB:          parseDate(req.DOB),
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmailExists):
			writeError(w, http.StatusBadRequest, "Email already exists")
		case errors.Is(err, services.ErrMobileExists):
			writeError(w, http.StatusBadRequest, "Mobile Number already exists")
		default:
			logrus.WithError(err).Error("vendor creation failed")
			writeError(w, http.StatusInternalServerError, "Server error")
		}
		return
	}

	logrus.WithField("email", req.Email).Info("vendor created")
	writeJSON(w, http.StatusCreated, MessageResponse{Message: "Vendor created successfully"})
}

// List returns every vendor.
func (h *VendorHandler) List(w http.ResponseWriter, r *http.Request) {
	vendors, err := h.vendors.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}
	writeJSON(w, http.StatusOK, vendors)
}

// Login authenticates against the vendors collection. A wrong password is
// reported as 400, matching the public API contract.
func (h *VendorHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validation.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.auth.LoginVendor(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "Vendor not found with this email")
		case errors.Is(err, services.ErrInvalidPassword):
			writeError(w, http.StatusBadRequest, "Incorrect password")
		default:
			writeError(w, http.StatusInternalServerError, "Server error")
		}
		return
	}

	// The vendor login response omits the role field.
	writeJSON(w, http.StatusOK, LoginResponse{Message: "Login successful", Token: result.Token})
}

// ForgotPassword issues an OTP scoped to the vendors collection.
func (h *VendorHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validation.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.auth.SendVendorOTP(r.Context(), req.Email); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Vendor not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Error sending OTP")
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "OTP sent to Vendor email successfully"})
}

// ResetPassword consumes a vendor-scoped OTP and installs the new password.
func (h *VendorHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validation.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.auth.ResetVendorPassword(r.Context(), req.Email, req.OTP, req.NewPassword); err != nil {
		if errors.Is(err, services.ErrInvalidOTP) {
			writeError(w, http.StatusBadRequest, "Invalid or expired OTP")
			return
		}
		writeError(w, http.StatusInternalServerError, "Error resetting password")
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Vendor password reset successfully"})
}

// UsersByCategory lists users holding one of the vendor-visible job roles.
func (h *VendorHandler) UsersByCategory(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")

	allowed := false
	for _, known := range vendorCategories {
		if category == known {
			allowed = true
			break
		}
	}
	if !allowed {
		writeError(w, http.StatusBadRequest, "Invalid category")
		return
	}

	users, err := h.users.ListByRole(r.Context(), category)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch users")
		return
	}
	writeJSON(w, http.StatusOK, users)
}

type CreateVendorRequest struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	Mobile    string `json:"mobile" validate:"required,min=10,max=15"`
	Gender    string `json:"gender" validate:"omitempty,oneof=Male Female Other"`
	DOB       string `json:"dob"`
}
