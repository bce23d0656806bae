package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/sinatle/donation/internal/domain"
	"github.com/sinatle/donation/internal/middleware"
	"github.com/sinatle/donation/internal/service"
)

// UserHandler exposes the authenticated user's profile.
type UserHandler struct {
	users  service.UserService
	logger *slog.Logger
}

func NewUserHandler(users service.UserService, logger *slog.Logger) *UserHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserHandler{users: users, logger: logger}
}

type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	LastName  string    `json:"last_name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:        u.ID.String(),
		Email:     u.Email,
		Name:      u.Name,
		LastName:  u.LastName,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// Me returns the caller's profile.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		ErrorResponse(w, r, domain.Unauthorized("user.me", "Invalid token subject"))
		return
	}

	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, toUserResponse(user))
}

type updateUserRequest struct {
	Name     string `json:"name"`
	LastName string `json:"last_name"`
}

// UpdateMe changes the caller's name fields; blanks keep current values.
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		ErrorResponse(w, r, domain.Unauthorized("user.update", "Invalid token subject"))
		return
	}

	var req updateUserRequest
	if err := decodeAndValidate(r, &req); err != nil {
		ErrorResponse(w, r, err)
		return
	}

	user, err := h.users.Update(r.Context(), userID, req.Name, req.LastName)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, toUserResponse(user))
}
