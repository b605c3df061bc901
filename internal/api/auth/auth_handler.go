package auth

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/workboard/go-job-board/internal/api"
)

// AuthHandler wires the HTTP surface of the credential flow.
type AuthHandler struct {
	logger   *slog.Logger
	service  AuthService
	validate *validator.Validate
}

func NewAuthHandler(service AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
	}
}

// Signup handles POST /api/auth/signup. The canonical contract returns the
// token alongside the created identity.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.validate.Struct(req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, validationMessage(err))
		return
	}

	user, token, err := h.service.Register(r.Context(), req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		api.HandleDomainError(w, r, err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusCreated, AuthResponse{Token: token, User: user})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.validate.Struct(req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, validationMessage(err))
		return
	}

	user, token, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		api.HandleDomainError(w, r, err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, AuthResponse{Token: token, User: user})
}

// Protected handles GET /api/auth/protected, a smoke endpoint proving the
// auth gate ran and attached an identity.
func (h *AuthHandler) Protected(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Access granted for user " + userID.String(),
	})
}

// validationMessage flattens validator errors into a single client-facing line.
func validationMessage(err error) string {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok || len(validationErrors) == 0 {
		return "Invalid request payload"
	}
	fieldErr := validationErrors[0]
	switch fieldErr.Tag() {
	case "required":
		return fieldErr.Field() + " is required"
	case "email":
		return fieldErr.Field() + " must be a valid email address"
	case "min":
		return fieldErr.Field() + " must be at least " + fieldErr.Param() + " characters"
	default:
		return fieldErr.Field() + " is invalid"
	}
}
