package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	"github.com/google/uuid"

	apperrors "github.com/clinicore/clinicore/pkg/errors"
	"github.com/clinicore/clinicore/pkg/login"
	"github.com/clinicore/clinicore/pkg/user"
)

// Handler exposes the login service over HTTP
type Handler struct {
	service *login.Service
}

// NewHandler creates a new login API handler
func NewHandler(service *login.Service) *Handler {
	return &Handler{
		service: service,
	}
}

// Register handles POST /register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode register payload", "error", err)
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "Invalid payload"})
		return
	}
	if !req.Valid() {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "Invalid payload"})
		return
	}

	if err := h.service.Register(r.Context(), req.Username, req.Usersurname, req.Email, req.Password); err != nil {
		slog.Error("Failed to register user", "username", req.Username, "error", err)
		render.Status(r, apperrors.HTTPStatus(err))
		render.JSON(w, r, ErrorResponse{Error: "Failed to register user"})
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, RegisterResponse{Success: true})
}

// Login handles POST /login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode login payload", "error", err)
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "Invalid payload"})
		return
	}
	if !req.Valid() {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "Invalid payload"})
		return
	}

	jwt, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, login.ErrInvalidCredentials) {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, ErrorResponse{Error: "Invalid credentials"})
			return
		}
		slog.Error("Login failed", "error", err)
		render.Status(r, apperrors.HTTPStatus(err))
		render.JSON(w, r, ErrorResponse{Error: "Failed to log in"})
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, LoginResponse{JWT: jwt, Success: true})
}

// Onboard handles POST /onboarded. The claims in already-issued tokens keep
// their old values until the user logs in again.
func (h *Handler) Onboard(w http.ResponseWriter, r *http.Request) {
	var req OnboardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "Invalid payload"})
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "Invalid payload"})
		return
	}

	if err := h.service.Onboard(r.Context(), userID); err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, ErrorResponse{Error: "User not found"})
			return
		}
		slog.Error("Failed to onboard user", "user_id", userID, "error", err)
		render.Status(r, apperrors.HTTPStatus(err))
		render.JSON(w, r, ErrorResponse{Error: "Failed to onboard user"})
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, OnboardResponse{Success: true})
}

// GetAllUsers handles GET /all
func (h *Handler) GetAllUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.GetAllUsers(r.Context())
	if err != nil {
		slog.Error("Failed to list users", "error", err)
		render.Status(r, apperrors.HTTPStatus(err))
		render.JSON(w, r, ErrorResponse{Error: "Failed to list users"})
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, GetAllUsersResponse{Success: true, Data: users})
}
