package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jobpilot/apiserver/internal/services"
	"github.com/jobpilot/apiserver/internal/store"
	"github.com/jobpilot/apiserver/internal/validation"
)

// SuperAdminHandler provides the superadmin login endpoint.
type SuperAdminHandler struct {
	auth *services.AuthService
}

// NewSuperAdminHandler constructs a SuperAdminHandler with the provided dependencies.
func NewSuperAdminHandler(auth *services.AuthService) *SuperAdminHandler {
	return &SuperAdminHandler{auth: auth}
}

// SuperAdminRouter registers superadmin routes on the given router.
func SuperAdminRouter(r chi.Router, auth *services.AuthService) {
	handler := NewSuperAdminHandler(auth)

	r.Post("/login", handler.Login)
}

// Login authenticates against the superadmins collection with a day-long
// token. A missing admin is reported as 400, matching the public API
// contract.
func (h *SuperAdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validation.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.auth.LoginSuperAdmin(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusBadRequest, "Admin not found")
		case errors.Is(err, services.ErrInvalidPassword):
			writeError(w, http.StatusUnauthorized, "Invalid password")
		default:
			writeError(w, http.StatusInternalServerError, "Server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, SuperAdminLoginResponse{Token: result.Token, Role: string(result.Role)})
}

// SuperAdminLoginResponse is the superadmin login body. Unlike the other
// login responses it carries no message field.
type SuperAdminLoginResponse struct {
	Token string `json:"token"`
	Role  string `json:"role"`
}
