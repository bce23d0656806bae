package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sinatle/donation/internal/service"
)

// stubSubscriptionService captures HandleCallback input and returns a canned
// error. The other methods are unused by the webhook handler.
type stubSubscriptionService struct {
	gotParams map[string]string
	err       error
}

func (s *stubSubscriptionService) Subscribe(context.Context, service.SubscribeParams) (string, error) {
	return "", nil
}

func (s *stubSubscriptionService) EditSubscription(context.Context, uuid.UUID, uuid.UUID, int64) (string, error) {
	return "", nil
}

func (s *stubSubscriptionService) Unsubscribe(context.Context, uuid.UUID, uuid.UUID) (bool, error) {
	return false, nil
}

func (s *stubSubscriptionService) HandleCallback(_ context.Context, params map[string]string) error {
	s.gotParams = params
	return s.err
}

func TestHandleFlittCallbackForm(t *testing.T) {
	stub := &stubSubscriptionService{}
	h := NewWebhookHandler(stub, nil)

	form := url.Values{}
	form.Set("order_id", "ord-1")
	form.Set("order_status", "approved")
	form.Set("response_status", "success")
	form.Set("amount", "2500")
	form.Set("signature", "sig")

	req := httptest.NewRequest(http.MethodPost, "/webhook/flitt/callback", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()

	h.HandleFlittCallback(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
	require.NotNil(t, stub.gotParams)
	assert.Equal(t, "ord-1", stub.gotParams["order_id"])
	assert.Equal(t, "sig", stub.gotParams["signature"])
}

func TestHandleFlittCallbackJSON(t *testing.T) {
	stub := &stubSubscriptionService{}
	h := NewWebhookHandler(stub, nil)

	body := `{
		"order_id": "ord-2",
		"amount": 2500,
		"order_status": "approved",
		"response_status": "success",
		"merchant_data": null,
		"signature": "sig"
	}`
	req := httptest.NewRequest(http.MethodPost, "/webhook/flitt/callback", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	rec := httptest.NewRecorder()

	h.HandleFlittCallback(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, stub.gotParams)
	assert.Equal(t, "ord-2", stub.gotParams["order_id"])
	assert.Equal(t, "2500", stub.gotParams["amount"])
	assert.Equal(t, "", stub.gotParams["merchant_data"])
}

func TestHandleFlittCallbackJSONNumberFidelity(t *testing.T) {
	stub := &stubSubscriptionService{}
	h := NewWebhookHandler(stub, nil)

	// The gateway signs the literal it sent: a trailing-zero amount must not
	// collapse and a payment id above 2^53 must not round.
	body := `{
		"order_id": "ord-3",
		"amount": 2500.00,
		"payment_id": 9007199254740993,
		"signature": "sig"
	}`
	req := httptest.NewRequest(http.MethodPost, "/webhook/flitt/callback", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	h.HandleFlittCallback(rec, req)

	require.NotNil(t, stub.gotParams)
	assert.Equal(t, "2500.00", stub.gotParams["amount"])
	assert.Equal(t, "9007199254740993", stub.gotParams["payment_id"])
}

func TestHandleFlittCallbackErrorMapping(t *testing.T) {
	tests := []struct {
		name           string
		serviceErr     error
		expectedStatus int
	}{
		{"invalid signature", service.ErrSignatureInvalid, http.StatusUnauthorized},
		{"missing parameter", service.ErrMissingParameter, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubSubscriptionService{err: tt.serviceErr}
			h := NewWebhookHandler(stub, nil)

			req := httptest.NewRequest(http.MethodPost, "/webhook/flitt/callback", strings.NewReader("order_id=x"))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			rec := httptest.NewRecorder()

			h.HandleFlittCallback(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
		})
	}
}

func TestHandleFlittCallbackBadJSON(t *testing.T) {
	stub := &stubSubscriptionService{}
	h := NewWebhookHandler(stub, nil)

	req := httptest.NewRequest(http.MethodPost, "/webhook/flitt/callback", strings.NewReader("{broken"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	h.HandleFlittCallback(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, stub.gotParams, "service must not run on an unreadable payload")
}
