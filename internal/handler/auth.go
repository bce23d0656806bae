package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/sinatle/donation/internal/service"
)

// AuthHandler exposes the OTP login flow.
type AuthHandler struct {
	otp    service.OtpService
	auth   service.AuthService
	logger *slog.Logger
}

func NewAuthHandler(otp service.OtpService, auth service.AuthService, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{otp: otp, auth: auth, logger: logger}
}

type sendOtpRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// SendOtp emails a login code. Responds 202 regardless of whether the email
// has an account, so the endpoint cannot be used to enumerate donors.
func (h *AuthHandler) SendOtp(w http.ResponseWriter, r *http.Request) {
	var req sendOtpRequest
	if err := decodeAndValidate(r, &req); err != nil {
		ErrorResponse(w, r, err)
		return
	}

	if err := h.otp.Send(r.Context(), req.Email); err != nil {
		ErrorResponse(w, r, err)
		return
	}

	respondJSON(w, http.StatusAccepted, map[string]string{"status": "sent"})
}

type loginRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
}

// Login exchanges a valid OTP for a bearer token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeAndValidate(r, &req); err != nil {
		ErrorResponse(w, r, err)
		return
	}

	result, err := h.auth.Login(r.Context(), req.Email, req.Code)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, loginResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		UserID:    result.User.ID.String(),
		Email:     result.User.Email,
	})
}
