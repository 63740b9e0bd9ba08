package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"samachar/internal/core"
)

// Handlers provides HTTP handlers for the auth endpoints
type Handlers struct {
	service *Service
	logger  *core.Logger
}

// NewHandlers creates auth HTTP handlers
func NewHandlers(service *Service, logger *core.Logger) *Handlers {
	return &Handlers{
		service: service,
		logger:  logger.ForFeature("auth"),
	}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateProfileRequest struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar"`
}

// Register handles POST /api/auth/register
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.WriteErrorResponse(w, http.StatusBadRequest,
			core.NewValidationError("Invalid request body", err))
		return
	}

	if problems := ValidateRegistration(req.Name, req.Email, req.Password); len(problems) > 0 {
		core.WriteValidationErrors(w, problems)
		return
	}

	user, token, err := h.service.Register(req.Name, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrDuplicateEmail):
			core.WriteErrorResponse(w, http.StatusBadRequest,
				core.NewValidationError("User with this email already exists", nil))
		default:
			h.logger.Error("Registration failed", "error", err)
			core.HandleError(w, err)
		}
		return
	}

	core.WriteSuccess(w, http.StatusCreated, "User registered successfully", map[string]any{
		"user":  user.Profile(),
		"token": token,
	})
}

// Login handles POST /api/auth/login
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.WriteErrorResponse(w, http.StatusBadRequest,
			core.NewValidationError("Invalid request body", err))
		return
	}

	if problems := ValidateLogin(req.Email, req.Password); len(problems) > 0 {
		core.WriteValidationErrors(w, problems)
		return
	}

	user, token, err := h.service.Login(req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			core.WriteErrorResponse(w, http.StatusUnauthorized,
				core.NewUnauthorizedError("Invalid credentials", nil))
		default:
			h.logger.Error("Login failed", "error", err)
			core.HandleError(w, err)
		}
		return
	}

	core.WriteSuccess(w, http.StatusOK, "Login successful", map[string]any{
		"user":  user.Profile(),
		"token": token,
	})
}

// Me handles GET /api/auth/me
func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)

	core.WriteSuccess(w, http.StatusOK, "Profile fetched successfully", map[string]any{
		"user": user.Profile(),
	})
}

// UpdateProfile handles PUT /api/auth/profile
func (h *Handlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.WriteErrorResponse(w, http.StatusBadRequest,
			core.NewValidationError("Invalid request body", err))
		return
	}

	if req.Email != "" {
		if problems := validateEmail(req.Email); len(problems) > 0 {
			core.WriteValidationErrors(w, problems)
			return
		}
	}

	updated, err := h.service.UpdateProfile(user.ID, req.Name, req.Email, req.Avatar)
	if err != nil {
		switch {
		case errors.Is(err, ErrDuplicateEmail):
			core.WriteErrorResponse(w, http.StatusBadRequest,
				core.NewValidationError("Email is already taken", nil))
		case errors.Is(err, ErrRecordNotFound):
			core.WriteErrorResponse(w, http.StatusNotFound,
				core.NewNotFoundError("User not found", nil))
		default:
			h.logger.Error("Profile update failed", "error", err)
			core.HandleError(w, err)
		}
		return
	}

	core.WriteSuccess(w, http.StatusOK, "Profile updated successfully", map[string]any{
		"user": updated.Profile(),
	})
}

// Logout handles POST /api/auth/logout.
// Tokens are stateless, so logout is an acknowledgement; the client discards
// its copy of the token.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	core.WriteSuccess(w, http.StatusOK, "Logged out successfully", nil)
}
