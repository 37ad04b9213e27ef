package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jobpilot/apiserver/internal/auth"
	"github.com/jobpilot/apiserver/internal/services"
	"github.com/jobpilot/apiserver/internal/store"
	"github.com/jobpilot/apiserver/internal/validation"
	"github.com/jobpilot/apiserver/types"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// Job-role categories an employer may browse users by.
var employerCategories = []string{"Nurse", "Plumber", "Electrician", "Office boy", "House Keeping", "HVAC Mevhanic"}

// EmployerHandler provides employer account endpoints.
type EmployerHandler struct {
	employers *services.EmployerService
	users     *services.UserService
	auth      *services.AuthService
}

// NewEmployerHandler constructs an EmployerHandler with the provided dependencies.
func NewEmployerHandler(employers *services.EmployerService, users *services.UserService, authService *services.AuthService) *EmployerHandler {
	return &EmployerHandler{employers: employers, users: users, auth: authService}
}

// EmployerRouter registers employer routes on the given router.
func EmployerRouter(r chi.Router, resolver *auth.Resolver, employers *services.EmployerService, users *services.UserService, authService *services.AuthService) {
	handler := NewEmployerHandler(employers, users, authService)

	r.Post("/create", handler.Create)
	r.Get("/get", handler.List)
	r.Get("/get/{id}", handler.GetByID)
	r.Post("/login", handler.Login)
	r.With(resolver.Require(auth.RoleSuperAdmin)).Put("/approve/{id}", handler.Approve)
	r.Post("/forgot-password", handler.ForgotPassword)
	r.Post("/reset-password", handler.ResetPassword)
	r.With(resolver.Require(auth.RoleEmployer, auth.RoleSuperAdmin)).Get("/users/{category}", handler.UsersByCategory)
}

// Create registers a new employer in the Pending approval state.
func (h *EmployerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployerRequest
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

	_, err = h.employers.Create(r.Context(), types.Employer{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Mobile:       req.Mobile,
		PasswordHash: string(hash),
		Gender:       req.Gender,
		DOB:          parseDate(req.DOB),
		CompanyName:  req.CompanyName,
		CompanyAddress: types.CompanyAddress{
			City:    req.CompanyAddress.City,
			State:   req.CompanyAddress.State,
			Country: req.CompanyAddress.Country,
			Pincode: req.CompanyAddress.Pincode,
		},
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmailExists):
			writeError(w, http.StatusBadRequest, "Email already exists")
		case errors.Is(err, services.ErrMobileExists):
			writeError(w, http.StatusBadRequest, "Mobile Number already exists")
		default:
			logrus.WithError(err).Error("employer creation failed")
			writeError(w, http.StatusInternalServerError, "Server error")
		}
		return
	}

	logrus.WithField("email", req.Email).Info("employer created")
	writeJSON(w, http.StatusCreated, MessageResponse{Message: "Employer created successfully"})
}

// List returns every active employer.
func (h *EmployerHandler) List(w http.ResponseWriter, r *http.Request) {
	employers, err := h.employers.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}
	writeJSON(w, http.StatusOK, employers)
}

// GetByID returns a single employer by id.
func (h *EmployerHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := objectIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid Employer ID format")
		return
	}

	employer, err := h.employers.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Employer not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}
	writeJSON(w, http.StatusOK, employer)
}

// Login authenticates against the employers collection only. Unapproved
// accounts are refused with their current status.
func (h *EmployerHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validation.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.auth.LoginEmployer(r.Context(), req.Email, req.Password)
	if err != nil {
		var notApproved *services.NotApprovedError
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "Employer not found with this email")
		case errors.As(err, &notApproved):
			writeError(w, http.StatusForbidden, fmt.Sprintf("Your account is %s", notApproved.Status))
		case errors.Is(err, services.ErrInvalidPassword):
			writeError(w, http.StatusUnauthorized, "Invalid password")
		default:
			writeError(w, http.StatusInternalServerError, "Server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{Message: "Login successful", Token: result.Token, Role: string(result.Role)})
}

// Approve moves an employer to Approved or Rejected. Superadmin only.
func (h *EmployerHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, err := objectIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid Employer ID format")
		return
	}

	var req ApproveEmployerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	employer, err := h.employers.Approve(r.Context(), id, req.Action)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidApprovalAction):
			writeError(w, http.StatusBadRequest, `Invalid action. Must be "Approved" or "Rejected"`)
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "Employer not found")
		default:
			writeError(w, http.StatusInternalServerError, "Error updating employer status")
		}
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: fmt.Sprintf("Employer %s successfully", strings.ToLower(employer.IsApproved))})
}

// ForgotPassword issues an OTP scoped to the employers collection.
func (h *EmployerHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validation.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.auth.SendEmployerOTP(r.Context(), req.Email); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Employer not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Error sending OTP")
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "OTP sent to Employer email successfully"})
}

// ResetPassword consumes an employer-scoped OTP and installs the new password.
func (h *EmployerHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validation.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.auth.ResetEmployerPassword(r.Context(), req.Email, req.OTP, req.NewPassword); err != nil {
		if errors.Is(err, services.ErrInvalidOTP) {
			writeError(w, http.StatusBadRequest, "Invalid or expired OTP")
			return
		}
		writeError(w, http.StatusInternalServerError, "Error resetting password")
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Employer password reset successfully"})
}

// UsersByCategory lists users holding one of the employer-visible job roles.
func (h *EmployerHandler) UsersByCategory(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")

	allowed := false
	for _, known := range employerCategories {
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

type CreateEmployerRequest struct {
	FirstName      string                `json:"firstName" validate:"required"`
	LastName       string                `json:"lastName" validate:"required"`
	Email          string                `json:"email" validate:"required,email"`
	Password       string                `json:"password" validate:"required,min=6"`
	Mobile         string                `json:"mobile" validate:"required,min=10,max=15"`
	Gender         string                `json:"gender" validate:"omitempty,oneof=Male Female Other"`
	DOB            string                `json:"dob"`
	CompanyName    string                `json:"companyName" validate:"required"`
	CompanyAddress CompanyAddressRequest `json:"companyAddress" validate:"required"`
}

type CompanyAddressRequest struct {
	City    string `json:"city" validate:"required"`
	State   string `json:"state" validate:"required"`
	Country string `json:"country" validate:"required"`
	Pincode string `json:"pincode" validate:"required"`
}

type ApproveEmployerRequest struct {
	Action string `json:"action"`
}
