package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jobpilot/apiserver/internal/services"
	"github.com/jobpilot/apiserver/internal/store"
	"github.com/jobpilot/apiserver/internal/validation"
)

// LoginHandler provides the unified cross-collection login and
// password-reset endpoints.
type LoginHandler struct {
	auth *services.AuthService
}

// NewLoginHandler constructs a LoginHandler with the provided dependencies.
func NewLoginHandler(auth *services.AuthService) *LoginHandler {
	return &LoginHandler{auth: auth}
}

// LoginRouter registers the unified auth routes on the given router.
func LoginRouter(r chi.Router, auth *services.AuthService) {
	handler := NewLoginHandler(auth)

	r.Post("/login", handler.Login)
	r.Post("/forgot-password", handler.ForgotPassword)
	r.Post("/reset-password", handler.ResetPassword)
}

// Login checks the email against superadmins, then employers, then users;
// the first collection that knows it decides the outcome.
func (h *LoginHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validation.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		var notApproved *services.NotApprovedError
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "Account not found with this email")
		case errors.Is(err, services.ErrInvalidPassword):
			writeError(w, http.StatusUnauthorized, "Invalid password")
		case errors.As(err, &notApproved):
			writeError(w, http.StatusForbidden, fmt.Sprintf("Your account is %s", notApproved.Status))
		default:
			writeError(w, http.StatusInternalServerError, "Server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{
		Message: "Login successful",
		Token:   result.Token,
		Role:    string(result.Role),
	})
}

// ForgotPassword issues an OTP for the unified flow: users are searched
// first, then employers.
func (h *LoginHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validation.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	kind, err := h.auth.SendOTP(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Account not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Error sending OTP")
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: fmt.Sprintf("OTP sent to %s email successfully", kind)})
}

// ResetPassword consumes an OTP from the unified flow and installs the
// new password.
func (h *LoginHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validation.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	kind, err := h.auth.ResetPassword(r.Context(), req.Email, req.OTP, req.NewPassword)
	if err != nil {
		if errors.Is(err, services.ErrInvalidOTP) {
			writeError(w, http.StatusBadRequest, "Invalid or expired OTP")
			return
		}
		writeError(w, http.StatusInternalServerError, "Error resetting password")
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: fmt.Sprintf("%s password reset successfully", kind)})
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	OTP         string `json:"otp" validate:"required,len=6"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

// LoginResponse is the uniform success body for login endpoints. Vendor
// logins leave Role empty, so it is omitted there.
type LoginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
	Role    string `json:"role,omitempty"`
}
