package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sinatle/donation/internal/domain"
	"github.com/sinatle/donation/internal/email"
)

type memOtpStore struct {
	otps []*domain.Otp
}

func (s *memOtpStore) Create(_ context.Context, otp *domain.Otp) error {
	cp := *otp
	s.otps = append(s.otps, &cp)
	return nil
}

func (s *memOtpStore) GetLatestByEmail(_ context.Context, emailAddr string) (*domain.Otp, error) {
	var latest *domain.Otp
	for _, otp := range s.otps {
		if otp.Email != emailAddr {
			continue
		}
		if latest == nil || otp.CreatedAt.After(latest.CreatedAt) {
			latest = otp
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	return &cp, nil
}

func (s *memOtpStore) MarkUsed(_ context.Context, id uuid.UUID) error {
	for _, otp := range s.otps {
		if otp.ID == id {
			otp.Used = true
			return nil
		}
	}
	return errors.New("otp not found")
}

func TestOtpSendAndVerify(t *testing.T) {
	store := &memOtpStore{}
	sender := &email.MockSender{}
	svc := NewOtpService(store, sender, nil)

	require.NoError(t, svc.Send(context.Background(), "Donor@Example.com "))

	// Code stored under the normalized email and delivered by mail.
	require.Len(t, store.otps, 1)
	otp := store.otps[0]
	assert.Equal(t, "donor@example.com", otp.Email)
	assert.Len(t, otp.Code, 4)

	sent := sender.Last()
	require.NotNil(t, sent)
	assert.Equal(t, []string{"donor@example.com"}, sent.To)
	assert.Contains(t, sent.TextBody, otp.Code)

	require.NoError(t, svc.Verify(context.Background(), "donor@example.com", otp.Code))

	// A code only redeems once.
	err := svc.Verify(context.Background(), "donor@example.com", otp.Code)
	require.ErrorIs(t, err, ErrOtpInvalid)
}

func TestOtpVerifyRejections(t *testing.T) {
	store := &memOtpStore{}
	svc := NewOtpService(store, &email.MockSender{}, nil)

	// No code requested at all.
	err := svc.Verify(context.Background(), "nobody@example.com", "1234")
	require.ErrorIs(t, err, ErrOtpInvalid)

	require.NoError(t, svc.Send(context.Background(), "donor@example.com"))
	code := store.otps[0].Code

	// Wrong code.
	wrong := "0000"
	if wrong == code {
		wrong = "0001"
	}
	err = svc.Verify(context.Background(), "donor@example.com", wrong)
	require.ErrorIs(t, err, ErrOtpInvalid)

	// Expired code.
	store.otps[0].ExpiresAt = time.Now().UTC().Add(-time.Minute)
	err = svc.Verify(context.Background(), "donor@example.com", code)
	require.ErrorIs(t, err, ErrOtpInvalid)
}

func TestOtpNewCodeInvalidatesNothingButLatestWins(t *testing.T) {
	store := &memOtpStore{}
	svc := NewOtpService(store, &email.MockSender{}, nil)

	require.NoError(t, svc.Send(context.Background(), "donor@example.com"))
	first := store.otps[0].Code
	// Force distinct creation times so "latest" is deterministic.
	store.otps[0].CreatedAt = store.otps[0].CreatedAt.Add(-time.Second)

	require.NoError(t, svc.Send(context.Background(), "donor@example.com"))
	second := store.otps[1].Code

	if first != second {
		err := svc.Verify(context.Background(), "donor@example.com", first)
		require.ErrorIs(t, err, ErrOtpInvalid, "only the latest code is redeemable")
	}
	require.NoError(t, svc.Verify(context.Background(), "donor@example.com", second))
}

func TestOtpSendFailureSurfaces(t *testing.T) {
	store := &memOtpStore{}
	sender := &email.MockSender{
		SendFunc: func(context.Context, *email.Email) (string, error) {
			return "", errors.New("smtp unreachable")
		},
	}
	svc := NewOtpService(store, sender, nil)

	err := svc.Send(context.Background(), "donor@example.com")
	require.Error(t, err)
	assert.Equal(t, domain.EINTERNAL, domain.ErrorCode(err))
}

func TestOtpSendRequiresEmail(t *testing.T) {
	svc := NewOtpService(&memOtpStore{}, &email.MockSender{}, nil)
	err := svc.Send(context.Background(), "   ")
	require.ErrorIs(t, err, ErrMissingEmail)
}
