package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"mime"
	"net/http"

	"github.com/sinatle/donation/internal/domain"
	"github.com/sinatle/donation/internal/middleware"
	"github.com/sinatle/donation/internal/service"
)

// WebhookHandler receives the payment gateway's server callbacks.
type WebhookHandler struct {
	subscriptions service.SubscriptionService
	logger        *slog.Logger
}

func NewWebhookHandler(subscriptions service.SubscriptionService, logger *slog.Logger) *WebhookHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebhookHandler{subscriptions: subscriptions, logger: logger}
}

// HandleFlittCallback processes one gateway callback. The gateway delivers
// either a form post or a JSON object; both flatten to string parameters
// before signature verification. The gateway retries anything but 2xx, so
// only errors where a retry could help return 5xx.
func (h *WebhookHandler) HandleFlittCallback(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	params, err := callbackParams(r)
	if err != nil {
		h.logger.Warn("webhook: unreadable payload", "error", err, "request_id", requestID)
		ErrorResponse(w, r, domain.Invalid("webhook.parse", "Unreadable callback payload"))
		return
	}

	if err := h.subscriptions.HandleCallback(r.Context(), params); err != nil {
		h.logger.Error("webhook: reconciliation failed",
			"error", err,
			"order_id", params["order_id"],
			"request_id", requestID,
		)
		ErrorResponse(w, r, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// callbackParams flattens the request payload into string parameters, the
// form the signature is computed over.
func callbackParams(r *http.Request) (map[string]string, error) {
	contentType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	if contentType == "application/json" {
		// UseNumber keeps the delivered numeric literal intact: the gateway
		// signed the exact bytes it sent, so "2500.00" must not collapse to
		// "2500" and ids above 2^53 must not round.
		dec := json.NewDecoder(r.Body)
		dec.UseNumber()

		var raw map[string]any
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("decode json callback: %w", err)
		}
		params := make(map[string]string, len(raw))
		for k, v := range raw {
			switch t := v.(type) {
			case nil:
				params[k] = ""
			case string:
				params[k] = t
			case json.Number:
				params[k] = t.String()
			case bool:
				params[k] = fmt.Sprintf("%t", t)
			default:
				// Nested values keep their JSON form; signature
				// verification hashes the delivered string as-is.
				b, err := json.Marshal(t)
				if err != nil {
					return nil, fmt.Errorf("flatten callback field %s: %w", k, err)
				}
				params[k] = string(b)
			}
		}
		return params, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("parse form callback: %w", err)
	}
	params := make(map[string]string, len(r.PostForm))
	for k := range r.PostForm {
		params[k] = r.PostForm.Get(k)
	}
	return params, nil
}
