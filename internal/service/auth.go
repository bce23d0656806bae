package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sinatle/donation/internal/domain"
	"github.com/sinatle/donation/internal/telemetry"
)

// AuthService turns a verified OTP into a signed session token, creating the
// user on first login.
type AuthService interface {
	// Login verifies the code and returns a bearer token for the user.
	Login(ctx context.Context, emailAddr, code string) (*LoginResult, error)

	// ParseToken validates a bearer token and returns its claims.
	ParseToken(tokenString string) (*TokenClaims, error)
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

// TokenClaims is the authenticated identity carried by a session token.
type TokenClaims struct {
	UserID string
	Email  string
	Role   string
}

type authService struct {
	users    UserStore
	otp      OtpService
	secret   []byte
	tokenTTL time.Duration
	logger   *slog.Logger
}

func NewAuthService(users UserStore, otp OtpService, secret []byte, tokenTTL time.Duration, logger *slog.Logger) AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &authService{
		users:    users,
		otp:      otp,
		secret:   secret,
		tokenTTL: tokenTTL,
		logger:   logger,
	}
}

func (s *authService) Login(ctx context.Context, emailAddr, code string) (*LoginResult, error) {
	const op = "auth.login"

	addr := domain.NormalizeEmail(emailAddr)
	if err := s.otp.Verify(ctx, addr, code); err != nil {
		if telemetry.Business != nil && domain.ErrorCode(err) == domain.EUNAUTHORIZED {
			telemetry.Business.LoginsFailed.WithLabelValues("otp_invalid").Inc()
		}
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, addr)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to look up user")
	}
	if user == nil {
		// First login provisions the account; the name can be filled in
		// later via the profile update.
		user = domain.NewUser(addr, "", "")
		if err := s.users.Create(ctx, user); err != nil {
			return nil, domain.Internal(err, op, "failed to create user")
		}
		s.logger.Info("user provisioned at first login", slog.String("user_id", user.ID.String()))
	}

	expiresAt := time.Now().UTC().Add(s.tokenTTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   user.ID.String(),
		"email": user.Email,
		"role":  user.Role,
		"iat":   time.Now().UTC().Unix(),
		"exp":   expiresAt.Unix(),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to sign token")
	}

	if telemetry.Business != nil {
		telemetry.Business.Logins.WithLabelValues().Inc()
	}
	s.logger.Info("login succeeded", slog.String("user_id", user.ID.String()))

	return &LoginResult{Token: signed, ExpiresAt: expiresAt, User: user}, nil
}

func (s *authService) ParseToken(tokenString string) (*TokenClaims, error) {
	const op = "auth.parse_token"

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, domain.Unauthorized(op, "Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, domain.Unauthorized(op, "Invalid or expired token")
	}

	sub, _ := claims["sub"].(string)
	emailClaim, _ := claims["email"].(string)
	role, _ := claims["role"].(string)
	if sub == "" {
		return nil, domain.Unauthorized(op, "Invalid or expired token")
	}

	return &TokenClaims{
		UserID: sub,
		Email:  emailClaim,
		Role:   role,
	}, nil
}
