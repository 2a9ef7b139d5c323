package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	"github.com/google/uuid"

	apperrors "github.com/clinicore/clinicore/pkg/errors"
	"github.com/clinicore/clinicore/pkg/verification"
)

// Handler exposes the verification lifecycle over HTTP
type Handler struct {
	service *verification.Service
}

// NewHandler creates a new verification API handler
func NewHandler(service *verification.Service) *Handler {
	return &Handler{
		service: service,
	}
}

// Generate handles POST /generate. It mints or reuses the user's pending
// token and emails the verification link.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
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

	tok, err := h.service.GenerateAndNotify(r.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, verification.ErrUserNotFound):
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, ErrorResponse{Error: "User not found"})
		case errors.Is(err, verification.ErrAlreadyVerified):
			render.Status(r, http.StatusConflict)
			render.JSON(w, r, ErrorResponse{Error: "Email is already verified"})
		default:
			slog.Error("Failed to generate verification token", "user_id", userID, "error", err)
			render.Status(r, apperrors.HTTPStatus(err))
			render.JSON(w, r, ErrorResponse{Error: "Failed to generate verification token"})
		}
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, GenerateResponse{Success: true, Data: tok})
}

// Verify handles GET /verify?token=. Consuming a token is single use, so a
// second request with the same link fails.
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "Invalid payload"})
		return
	}

	if err := h.service.Verify(r.Context(), token); err != nil {
		if errors.Is(err, verification.ErrTokenNotFound) {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, ErrorResponse{Error: "Invalid verification token"})
			return
		}
		slog.Error("Failed to verify token", "error", err)
		render.Status(r, apperrors.HTTPStatus(err))
		render.JSON(w, r, ErrorResponse{Error: "Failed to verify token"})
		return
	}

	render.Status(r, http.StatusAccepted)
	render.JSON(w, r, VerifyResponse{Success: true})
}
