package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sinatle/donation/internal/domain"
)

// RecurringConfig holds the static recurring-charge parameters attached to
// every checkout request.
type RecurringConfig struct {
	// Every is the cadence multiplier: charge every N periods.
	Every int

	// Period is the cadence unit: "day", "week" or "month".
	Period string

	// Quantity is the total number of charges. Either Quantity or EndTime
	// must be set.
	Quantity int

	// EndTime is the last charge date (YYYY-MM-DD), alternative to Quantity.
	EndTime string

	// Trial is the number of free periods before the first charge. Optional.
	Trial int
}

// Validate fails fast on a recurrence setup the gateway would silently
// ignore, which would turn every "subscription" into a one-time charge.
func (c RecurringConfig) Validate() error {
	if c.Every <= 0 {
		return fmt.Errorf("recurring config: every must be > 0, got %d", c.Every)
	}
	switch c.Period {
	case "day", "week", "month":
	case "":
		return fmt.Errorf("recurring config: period is required")
	default:
		return fmt.Errorf("recurring config: unknown period %q", c.Period)
	}
	if c.Quantity <= 0 && c.EndTime == "" {
		return fmt.Errorf("recurring config: either quantity or end_time must be set")
	}
	return nil
}

// Config holds the Flitt merchant account and endpoint configuration.
type Config struct {
	MerchantID int
	SecretKey  string

	// BaseURL is the gateway origin, e.g. "https://pay.flitt.com".
	BaseURL string

	// CheckoutPath and SubscriptionPath are joined onto BaseURL.
	CheckoutPath     string
	SubscriptionPath string

	// ResponseURL is where the payer's browser lands after checkout.
	ResponseURL string

	// ServerCallbackURL receives the asynchronous webhook callbacks.
	ServerCallbackURL string

	Recurring RecurringConfig
}

// Validate checks the configuration at startup.
func (c Config) Validate() error {
	if c.MerchantID == 0 {
		return fmt.Errorf("gateway config: merchant id is required")
	}
	if c.SecretKey == "" {
		return fmt.Errorf("gateway config: secret key is required")
	}
	if c.BaseURL == "" {
		return fmt.Errorf("gateway config: base url is required")
	}
	return c.Recurring.Validate()
}

// FlittClient implements Provider against the Flitt card processor.
type FlittClient struct {
	cfg    Config
	http   *http.Client
	signer *Signer
	logger *slog.Logger
}

// Compile-time check that FlittClient implements Provider.
var _ Provider = (*FlittClient)(nil)

// NewFlittClient creates a gateway client. A nil httpClient gets a default
// with a 30s timeout; the per-request context still governs cancellation.
func NewFlittClient(cfg Config, httpClient *http.Client, logger *slog.Logger) (*FlittClient, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &FlittClient{
		cfg:    cfg,
		http:   httpClient,
		signer: NewSigner(cfg.SecretKey),
		logger: logger,
	}, nil
}

// CreateCheckout requests a hosted recurring-payment page. The generated
// order id and the payer identity ride along in merchant_data so that the
// later callback can be reconciled without a prior local write.
func (c *FlittClient) CreateCheckout(ctx context.Context, params CreateCheckoutParams) (*Checkout, error) {
	orderID := strings.ReplaceAll(uuid.NewString(), "-", "")

	merchantData := domain.EncodeMerchantData(domain.MerchantIdentity{
		Email:    params.Email,
		Name:     params.Name,
		LastName: params.LastName,
		OrderID:  orderID,
	})

	req := map[string]any{
		"order_id":            orderID,
		"merchant_id":         c.cfg.MerchantID,
		"order_desc":          params.Description,
		"amount":              params.AmountMinor,
		"currency":            params.Currency,
		"response_url":        c.cfg.ResponseURL,
		"server_callback_url": c.cfg.ServerCallbackURL,
		"merchant_data":       merchantData,
	}

	if !params.OneTime {
		recurring := map[string]any{
			"amount": params.AmountMinor,
			"every":  c.cfg.Recurring.Every,
			"period": c.cfg.Recurring.Period,
		}
		if c.cfg.Recurring.Quantity > 0 {
			recurring["quantity"] = c.cfg.Recurring.Quantity
		} else {
			recurring["end_time"] = c.cfg.Recurring.EndTime
		}
		if c.cfg.Recurring.Trial > 0 {
			recurring["trial"] = c.cfg.Recurring.Trial
		}
		req["subscription"] = "Y"
		req["recurring_data"] = recurring
	}

	req["signature"] = c.signer.Sign(req)

	resp, err := c.post(ctx, c.cfg.CheckoutPath, req)
	if err != nil {
		return nil, err
	}

	if !strings.EqualFold(asString(resp["response_status"]), "success") {
		return nil, remoteError(resp)
	}

	checkoutURL := asString(resp["checkout_url"])
	paymentID := asString(resp["payment_id"])
	if checkoutURL == "" || paymentID == "" {
		return nil, &Error{Message: "checkout response missing checkout_url or payment_id"}
	}

	c.logger.Info("gateway: checkout created",
		slog.String("order_id", orderID),
		slog.String("payment_id", paymentID),
		slog.Int64("amount_minor", params.AmountMinor),
	)

	return &Checkout{
		URL:       checkoutURL,
		OrderID:   orderID,
		PaymentID: paymentID,
	}, nil
}

// CancelSubscription issues a "stop" action for the gateway-side recurring
// order. A remote failure status is an answer, not an error.
func (c *FlittClient) CancelSubscription(ctx context.Context, externalID string) (bool, error) {
	req := map[string]any{
		"order_id":    externalID,
		"merchant_id": c.cfg.MerchantID,
		"action":      "stop",
	}
	req["signature"] = c.signer.Sign(req)

	resp, err := c.post(ctx, c.cfg.SubscriptionPath, req)
	if err != nil {
		return false, err
	}

	ok := strings.EqualFold(asString(resp["response_status"]), "success")
	if !ok {
		c.logger.Warn("gateway: cancellation refused",
			slog.String("order_id", externalID),
			slog.String("response_status", asString(resp["response_status"])),
		)
	}
	return ok, nil
}

// VerifySignature authenticates an inbound callback.
func (c *FlittClient) VerifySignature(callback map[string]string) bool {
	return c.signer.Verify(callback)
}

// post sends {"request": ...} and unwraps {"response": ...}.
func (c *FlittClient) post(ctx context.Context, path string, request map[string]any) (map[string]any, error) {
	body, err := json.Marshal(map[string]any{"request": request})
	if err != nil {
		return nil, fmt.Errorf("gateway: encode request: %w", err)
	}

	url := strings.TrimSuffix(c.cfg.BaseURL, "/") + path
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("gateway: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("gateway: post %s: %w", path, err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return nil, fmt.Errorf("gateway: post %s: unexpected status %d", path, httpResp.StatusCode)
	}

	var envelope struct {
		Response map[string]any `json:"response"`
	}
	if err := json.NewDecoder(httpResp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("gateway: decode response: %w", err)
	}
	if envelope.Response == nil {
		return nil, fmt.Errorf("gateway: response envelope missing")
	}

	return envelope.Response, nil
}

// remoteError shapes a non-success gateway envelope into *Error, keeping the
// remote code and message for diagnostics.
func remoteError(resp map[string]any) error {
	gerr := &Error{Message: asString(resp["error_message"])}
	if gerr.Message == "" {
		gerr.Message = fmt.Sprintf("request failed with status %q", asString(resp["response_status"]))
	}
	if code, err := json.Number(asString(resp["error_code"])).Int64(); err == nil {
		gerr.Code = int(code)
	}
	return gerr
}

// asString renders a JSON-decoded value as the gateway's textual form.
// Numeric ids arrive as float64 from encoding/json and must not grow an
// exponent or trailing zeros.
func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strings.TrimSuffix(fmt.Sprintf("%.0f", t), ".")
	case json.Number:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}
