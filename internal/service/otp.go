package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/sinatle/donation/internal/domain"
	"github.com/sinatle/donation/internal/email"
	"github.com/sinatle/donation/internal/telemetry"
)

// OtpService issues and verifies single-use login codes delivered by email.
type OtpService interface {
	// Send generates a fresh code for the email and delivers it. It
	// succeeds for unknown addresses too: OTP login doubles as signup.
	Send(ctx context.Context, emailAddr string) error

	// Verify burns the latest code for the email. Wrong, expired and
	// already-used codes all come back as ErrOtpInvalid.
	Verify(ctx context.Context, emailAddr, code string) error
}

type otpService struct {
	otps   OtpStore
	sender email.Sender
	logger *slog.Logger
}

func NewOtpService(otps OtpStore, sender email.Sender, logger *slog.Logger) OtpService {
	if logger == nil {
		logger = slog.Default()
	}
	return &otpService{otps: otps, sender: sender, logger: logger}
}

func (s *otpService) Send(ctx context.Context, emailAddr string) error {
	const op = "otp.send"

	addr := domain.NormalizeEmail(emailAddr)
	if addr == "" {
		return ErrMissingEmail
	}

	code, err := generateCode(4)
	if err != nil {
		return domain.Internal(err, op, "failed to generate code")
	}

	otp := domain.NewOtp(addr, code)
	if err := s.otps.Create(ctx, otp); err != nil {
		return domain.Internal(err, op, "failed to store code")
	}

	_, err = s.sender.Send(ctx, &email.Email{
		To:      []string{addr},
		Subject: "Your login code",
		TextBody: fmt.Sprintf(
			"Your one-time login code is %s. It expires in %d minutes.",
			code, int(domain.OtpTTL.Minutes()),
		),
	})
	if err != nil {
		if telemetry.Business != nil {
			telemetry.Business.OtpSent.WithLabelValues("failed").Inc()
		}
		return domain.WrapError(err, domain.EINTERNAL, op, "Failed to send login code")
	}

	if telemetry.Business != nil {
		telemetry.Business.OtpSent.WithLabelValues("sent").Inc()
	}
	s.logger.Info("otp sent", slog.String("email", addr))
	return nil
}

func (s *otpService) Verify(ctx context.Context, emailAddr, code string) error {
	const op = "otp.verify"

	addr := domain.NormalizeEmail(emailAddr)
	if addr == "" || code == "" {
		return ErrOtpInvalid
	}

	otp, err := s.otps.GetLatestByEmail(ctx, addr)
	if err != nil {
		return domain.Internal(err, op, "failed to look up code")
	}
	// The same error for a missing, stale or wrong code keeps the endpoint
	// from confirming which emails have requested logins.
	if otp == nil || !otp.Redeemable(time.Now().UTC()) || otp.Code != code {
		return ErrOtpInvalid
	}

	if err := s.otps.MarkUsed(ctx, otp.ID); err != nil {
		return domain.Internal(err, op, "failed to burn code")
	}
	return nil
}

// generateCode returns n uniformly random decimal digits.
func generateCode(n int) (string, error) {
	digits := make([]byte, n)
	for i := range digits {
		v, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		digits[i] = '0' + byte(v.Int64())
	}
	return string(digits), nil
}
