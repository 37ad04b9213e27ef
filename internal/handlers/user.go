package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jobpilot/apiserver/internal/services"
	"github.com/jobpilot/apiserver/internal/storage"
	"github.com/jobpilot/apiserver/internal/store"
	"github.com/jobpilot/apiserver/internal/validation"
	"github.com/jobpilot/apiserver/types"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const maxUploadSize = 32 << 20

// UserHandler provides job-seeker account endpoints.
type UserHandler struct {
	users   *services.UserService
	auth    *services.AuthService
	uploads *storage.Uploads
	baseURL string
}

// NewUserHandler constructs a UserHandler with the provided dependencies.
func NewUserHandler(users *services.UserService, auth *services.AuthService, uploads *storage.Uploads, baseURL string) *UserHandler {
	return &UserHandler{users: users, auth: auth, uploads: uploads, baseURL: baseURL}
}

// UserRouter registers user routes on the given router.
func UserRouter(r chi.Router, users *services.UserService, auth *services.AuthService, uploads *storage.Uploads, baseURL string) {
	handler := NewUserHandler(users, auth, uploads, baseURL)

	r.Post("/create", handler.Create)
	r.Get("/", handler.List)
	r.Get("/get/{id}", handler.GetByID)
	r.Post("/login", handler.Login)
	r.Post("/forgot-password", handler.ForgotPassword)
	r.Post("/reset-password", handler.ResetPassword)
}

// Create registers a new job seeker from a multipart form carrying the
// profile fields plus an image (required) and a resume (optional).
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	req := CreateUserRequest{
		FirstName:          r.FormValue("firstName"),
		LastName:           r.FormValue("lastName"),
		Email:              r.FormValue("email"),
		Mobile:             r.FormValue("mobile"),
		Password:           r.FormValue("password"),
		Gender:             r.FormValue("gender"),
		DOB:                r.FormValue("dob"),
		ExperienceRange:    r.FormValue("experienceRange"),
		Role:               r.FormValue("role"),
		CurrentDesignation: r.FormValue("currentDesignation"),
	}
	if err := validation.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	imageURL, err := h.storeUpload(r, "image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			writeError(w, http.StatusBadRequest, "Image is required")
			return
		}
		logrus.WithError(err).Error("image upload failed")
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	resumeURL, err := h.storeUpload(r, "resume")
	if err != nil && !errors.Is(err, http.ErrMissingFile) {
		logrus.WithError(err).Error("resume upload failed")
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	lati, _ := strconv.ParseFloat(r.FormValue("lati"), 64)
	longi, _ := strconv.ParseFloat(r.FormValue("longi"), 64)

	_, err = h.users.Create(r.Context(), types.User{
		FirstName:          req.FirstName,
		LastName:           req.LastName,
		Email:              req.Email,
		Mobile:             req.Mobile,
		PasswordHash:       string(hash),
		Gender:             req.Gender,
		DOB:                parseDate(req.DOB),
		Latitude:           lati,
		Longitude:          longi,
		Image:              imageURL,
		Resume:             resumeURL,
		ExperienceRange:    req.ExperienceRange,
		KeySkills:          formValues(r, "keySkills"),
		Role:               req.Role,
		CurrentDesignation: req.CurrentDesignation,
		Platform:           r.FormValue("platform"),
		Model:              r.FormValue("model"),
		OSVersion:          r.FormValue("os_version"),
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmailExists):
			writeError(w, http.StatusBadRequest, "Email already exists")
		case errors.Is(err, services.ErrMobileExists):
			writeError(w, http.StatusBadRequest, "Mobile Number already exists")
		default:
			logrus.WithError(err).Error("user creation failed")
			writeError(w, http.StatusInternalServerError, "Server error")
		}
		return
	}

	logrus.WithField("email", req.Email).Info("user created")
	writeJSON(w, http.StatusCreated, MessageResponse{Message: "User created successfully"})
}

// List returns every active user.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch users")
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// GetByID returns a single user by id.
func (h *UserHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := objectIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid User ID format")
		return
	}

	user, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Login authenticates against the users collection only.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validation.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.auth.LoginUser(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "User not found with this email")
		case errors.Is(err, services.ErrInvalidPassword):
			writeError(w, http.StatusUnauthorized, "Invalid password")
		default:
			writeError(w, http.StatusInternalServerError, "Server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{Message: "Login successful", Token: result.Token, Role: string(result.Role)})
}

// ForgotPassword issues an OTP scoped to the users collection.
func (h *UserHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validation.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.auth.SendUserOTP(r.Context(), req.Email); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Error sending OTP")
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "OTP sent to User email successfully"})
}

// ResetPassword consumes a user-scoped OTP and installs the new password.
func (h *UserHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validation.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.auth.ResetUserPassword(r.Context(), req.Email, req.OTP, req.NewPassword); err != nil {
		if errors.Is(err, services.ErrInvalidOTP) {
			writeError(w, http.StatusBadRequest, "Invalid or expired OTP")
			return
		}
		writeError(w, http.StatusInternalServerError, "Error resetting password")
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "User password reset successfully"})
}

// storeUpload saves a multipart file field to object storage and returns
// its public URL. http.ErrMissingFile is returned when the field is absent.
func (h *UserHandler) storeUpload(r *http.Request, field string) (string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return "", err
	}
	defer file.Close()

	if h.uploads == nil {
		return "", errors.New("object storage is not configured")
	}

	key, err := h.uploads.Save(r.Context(), "uploads", header.Filename, file, header.Size, fileContentType(header))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/%s", strings.TrimRight(h.baseURL, "/"), key), nil
}

func fileContentType(header *multipart.FileHeader) string {
	if ct := header.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

func formValues(r *http.Request, field string) []string {
	values := r.Form[field]
	if len(values) == 1 && strings.Contains(values[0], ",") {
		parts := strings.Split(values[0], ",")
		values = values[:0:0]
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				values = append(values, trimmed)
			}
		}
	}
	return values
}

func parseDate(value string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}

type CreateUserRequest struct {
	FirstName          string `validate:"required"`
	LastName           string `validate:"required"`
	Email              string `validate:"required,email"`
	Mobile             string `validate:"required,min=10,max=15"`
	Password           string `validate:"required,min=6"`
	Gender             string `validate:"omitempty,oneof=Male Female Other"`
	DOB                string `validate:"required"`
	ExperienceRange    string `validate:"omitempty"`
	Role               string `validate:"required"`
	CurrentDesignation string `validate:"omitempty"`
}
