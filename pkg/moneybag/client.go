// Package moneybag is a client for the Moneybag payment gateway REST API
// (checkout, verify, refund). Transport retries live in HTTPClient; this
// layer validates requests before any network call and classifies HTTP
// failures into the typed Error kinds.
package moneybag

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Environment selects which Moneybag API the client talks to.
type Environment string

const (
	EnvStaging    Environment = "staging"
	EnvProduction Environment = "production"
)

const (
	productionBaseURL = "https://api.moneybag.com.bd/api/v2"
	stagingBaseURL    = "https://staging.api.moneybag.com.bd/api/v2"
)

// Client calls the Moneybag gateway on behalf of one merchant. All state is
// set at construction and read-only afterwards, so a single Client is safe
// for concurrent use.
type Client struct {
	apiKey  string
	baseURL string
	http    *HTTPClient
}

// NewClient rejects an unknown environment outright rather than silently
// falling back to staging; a typo must not decide which API handles real
// money.
func NewClient(apiKey string, env Environment, httpClient *HTTPClient) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("moneybag: api key is required")
	}
	var base string
	switch env {
	case EnvProduction:
		base = productionBaseURL
	case EnvStaging:
		base = stagingBaseURL
	default:
		return nil, fmt.Errorf("moneybag: unknown environment %q (use %q or %q)", env, EnvStaging, EnvProduction)
	}
	if httpClient == nil {
		httpClient = NewHTTPClient(0, 0, false)
	}
	return &Client{apiKey: apiKey, baseURL: base, http: httpClient}, nil
}

func (c *Client) headers() map[string]string {
	return map[string]string{
		"Content-Type":       "application/json",
		"X-Merchant-API-Key": c.apiKey,
	}
}

// Checkout opens a payment session. The request is validated locally first so
// a malformed request never costs a network round-trip. A timed-out Checkout
// leaves the session in an unknown state server-side: call Verify before
// retrying rather than blindly resubmitting.
func (c *Client) Checkout(ctx context.Context, req *CheckoutRequest) (*CheckoutResponse, error) {
	if req == nil {
		return nil, newValidationError("checkout request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, newValidationError("encode checkout request: " + err.Error())
	}
	res, err := c.http.Post(ctx, c.baseURL+"/payments/checkout", c.headers(), payload)
	if err != nil {
		return nil, err
	}
	data, cerr := envelopeData(res)
	if cerr != nil {
		return nil, cerr
	}
	return newCheckoutResponse(data), nil
}

// Verify fetches the settlement status of a transaction. It has no side
// effects and is safe to call repeatedly.
func (c *Client) Verify(ctx context.Context, transactionID string) (*VerifyResponse, error) {
	if strings.TrimSpace(transactionID) == "" {
		return nil, newValidationError("transaction id is required")
	}
	res, err := c.http.Get(ctx, c.baseURL+"/payments/verify/"+url.PathEscape(transactionID), c.headers())
	if err != nil {
		return nil, err
	}
	data, cerr := envelopeData(res)
	if cerr != nil {
		return nil, cerr
	}
	return newVerifyResponse(data), nil
}

type refundRequest struct {
	TransactionID string `json:"transaction_id"`
	Amount        string `json:"amount,omitempty"`
	Reason        string `json:"reason,omitempty"`
}

// Refund reverses a settled transaction, fully when amount is empty or
// partially for a positive decimal amount. Like Checkout, an ambiguous
// failure (timeout) must be resolved with the provider before retrying.
func (c *Client) Refund(ctx context.Context, transactionID, amount, reason string) (*RefundResponse, error) {
	if strings.TrimSpace(transactionID) == "" {
		return nil, newValidationError("transaction id is required")
	}
	if amount != "" {
		v, err := strconv.ParseFloat(amount, 64)
		if err != nil || v <= 0 {
			return nil, newValidationError(fmt.Sprintf("refund amount %q must be a positive decimal", amount))
		}
	}
	payload, err := json.Marshal(refundRequest{TransactionID: transactionID, Amount: amount, Reason: reason})
	if err != nil {
		return nil, newValidationError("encode refund request: " + err.Error())
	}
	res, err := c.http.Post(ctx, c.baseURL+"/refund", c.headers(), payload)
	if err != nil {
		return nil, err
	}
	data, cerr := envelopeData(res)
	if cerr != nil {
		return nil, cerr
	}
	return newRefundResponse(data), nil
}

// envelopeData unwraps the gateway's {success: true, data: {...}} envelope.
// Anything else, including a 2xx with success=false or a missing data object,
// is classified into a typed error.
func envelopeData(res *Result) (map[string]any, *Error) {
	if res.Success {
		if ok, _ := res.Body["success"].(bool); ok {
			if data, okd := res.Body["data"].(map[string]any); okd {
				return data, nil
			}
		}
	}
	return nil, classify(res)
}
