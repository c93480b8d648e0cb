package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"crowlands/internal/domain"
)

// CheckoutSession is the processor-side handle for a newly created checkout.
// URL is where the user completes payment.
type CheckoutSession struct {
	ID  string
	URL string
}

// Processor abstracts the external payment provider. Session identifiers are
// the provider's own; we never mint them.
type Processor interface {
	CreateSession(ctx context.Context, userID, successURL, cancelURL string) (CheckoutSession, error)
	SessionStatus(ctx context.Context, sessionID string) (domain.PaymentStatus, error)
}

// StripeOptions configures the Stripe checkout client.
type StripeOptions struct {
	SecretKey  string
	BaseURL    string
	PriceID    string
	HTTPClient *http.Client
}

// StripeProcessor drives Stripe's hosted checkout through its REST API.
type StripeProcessor struct {
	secretKey string
	baseURL   string
	priceID   string
	client    *http.Client
}

func NewStripeProcessor(opts StripeOptions) *StripeProcessor {
	base := strings.TrimSuffix(opts.BaseURL, "/")
	if base == "" {
		base = "https://api.stripe.com"
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &StripeProcessor{
		secretKey: opts.SecretKey,
		baseURL:   base,
		priceID:   opts.PriceID,
		client:    client,
	}
}

type stripeSession struct {
	ID            string `json:"id"`
	URL           string `json:"url"`
	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status"`
	Error         *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (s *StripeProcessor) CreateSession(ctx context.Context, userID, successURL, cancelURL string) (CheckoutSession, error) {
	if s.secretKey == "" {
		return CheckoutSession{}, fmt.Errorf("stripe secret key is not configured")
	}

	form := url.Values{}
	form.Set("mode", "subscription")
	form.Set("line_items[0][price]", s.priceID)
	form.Set("line_items[0][quantity]", "1")
	form.Set("success_url", successURL)
	form.Set("cancel_url", cancelURL)
	form.Set("client_reference_id", userID)

	sess, err := s.do(ctx, http.MethodPost, "/v1/checkout/sessions", strings.NewReader(form.Encode()))
	if err != nil {
		return CheckoutSession{}, err
	}
	if sess.ID == "" || sess.URL == "" {
		return CheckoutSession{}, fmt.Errorf("stripe returned a session without id or url")
	}
	return CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}

func (s *StripeProcessor) SessionStatus(ctx context.Context, sessionID string) (domain.PaymentStatus, error) {
	sess, err := s.do(ctx, http.MethodGet, "/v1/checkout/sessions/"+url.PathEscape(sessionID), nil)
	if err != nil {
		return "", err
	}
	return mapStripeStatus(sess.Status, sess.PaymentStatus), nil
}

func (s *StripeProcessor) do(ctx context.Context, method, path string, body io.Reader) (*stripeSession, error) {
	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build stripe request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.secretKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call stripe: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read stripe response: %w", err)
	}

	var sess stripeSession
	if err := json.Unmarshal(payload, &sess); err != nil {
		return nil, fmt.Errorf("decode stripe response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := strings.TrimSpace(string(payload))
		if sess.Error != nil && sess.Error.Message != "" {
			msg = sess.Error.Message
		}
		return nil, fmt.Errorf("stripe status %d: %s", resp.StatusCode, msg)
	}
	return &sess, nil
}

// mapStripeStatus folds Stripe's two status fields into our session state.
// A complete session without payment (free trials, no_payment_required) still
// counts as paid for entitlement purposes.
func mapStripeStatus(status, paymentStatus string) domain.PaymentStatus {
	switch {
	case paymentStatus == "paid" || paymentStatus == "no_payment_required":
		return domain.PaymentPaid
	case status == "expired":
		return domain.PaymentExpired
	default:
		return domain.PaymentPending
	}
}
