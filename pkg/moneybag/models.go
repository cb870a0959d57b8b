package moneybag

import (
	"fmt"
	"net/mail"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// CheckoutRequest is one payment-initiation attempt. Wire keys are snake_case
// via the struct tags; optional string fields carry omitempty because the API
// rejects optional URLs sent as empty strings. Construct it fresh per attempt
// and do not reuse after Checkout returns.
type CheckoutRequest struct {
	OrderID          string         `json:"order_id"`
	Currency         string         `json:"currency"`
	OrderAmount      string         `json:"order_amount"`
	OrderDescription string         `json:"order_description,omitempty"`
	SuccessURL       string         `json:"success_url"`
	FailURL          string         `json:"fail_url"`
	CancelURL        string         `json:"cancel_url"`
	IPNURL           string         `json:"ipn_url,omitempty"`
	Customer         Customer       `json:"customer"`
	Shipping         *Shipping      `json:"shipping,omitempty"`
	OrderItems       []OrderItem    `json:"order_items,omitempty"`
	PaymentInfo      PaymentInfo    `json:"payment_info"`
	Metadata         map[string]any `json:"metadata,omitempty"`
}

type Customer struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Address  string `json:"address,omitempty"`
	City     string `json:"city,omitempty"`
	Postcode string `json:"postcode,omitempty"`
	Country  string `json:"country,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

type Shipping struct {
	Name     string         `json:"name,omitempty"`
	Address  string         `json:"address,omitempty"`
	City     string         `json:"city,omitempty"`
	State    string         `json:"state,omitempty"`
	Postcode string         `json:"postcode,omitempty"`
	Country  string         `json:"country,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// OrderItem is one order line, in the same order as the merchant's cart.
type OrderItem struct {
	SKU            string         `json:"sku,omitempty"`
	ProductName    string         `json:"product_name"`
	Category       string         `json:"category,omitempty"`
	Quantity       int            `json:"quantity"`
	UnitPrice      string         `json:"unit_price"`
	VAT            string         `json:"vat,omitempty"`
	ConvenienceFee string         `json:"convenience_fee,omitempty"`
	DiscountAmount string         `json:"discount_amount,omitempty"`
	NetAmount      string         `json:"net_amount,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

// PaymentInfo describes payment constraints for the session, not identifying
// data.
type PaymentInfo struct {
	IsRecurring           bool     `json:"is_recurring"`
	InstallmentCount      int      `json:"installment_count,omitempty"`
	CurrencyConversion    bool     `json:"currency_conversion"`
	AllowedPaymentMethods []string `json:"allowed_payment_methods,omitempty"`
	RequiresEMI           bool     `json:"requires_emi"`
}

var currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)

// Validate runs the pre-flight checks Checkout performs before any network
// call. It returns a KindValidation *Error naming the violated field, or nil.
func (r *CheckoutRequest) Validate() error {
	if strings.TrimSpace(r.OrderID) == "" {
		return newValidationError("order_id is required")
	}
	if !currencyPattern.MatchString(r.Currency) {
		return newValidationError(fmt.Sprintf("currency %q must be a 3-letter uppercase ISO code", r.Currency))
	}
	amount, err := strconv.ParseFloat(r.OrderAmount, 64)
	if err != nil || amount <= 0 {
		return newValidationError(fmt.Sprintf("order_amount %q must be a positive decimal", r.OrderAmount))
	}
	if err := validateURL("success_url", r.SuccessURL); err != nil {
		return err
	}
	if err := validateURL("fail_url", r.FailURL); err != nil {
		return err
	}
	if err := validateURL("cancel_url", r.CancelURL); err != nil {
		return err
	}
	if r.IPNURL != "" {
		if err := validateURL("ipn_url", r.IPNURL); err != nil {
			return err
		}
	}
	if strings.TrimSpace(r.Customer.Name) == "" {
		return newValidationError("customer.name is required")
	}
	if !validEmail(r.Customer.Email) {
		return newValidationError(fmt.Sprintf("customer.email %q is not a valid email address", r.Customer.Email))
	}
	for i, item := range r.OrderItems {
		if item.Quantity <= 0 {
			return newValidationError(fmt.Sprintf("order_items[%d].quantity must be positive", i))
		}
	}
	return nil
}

func validateURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return newValidationError(fmt.Sprintf("%s %q must be an absolute http(s) URL", field, raw))
	}
	return nil
}

func validEmail(addr string) bool {
	if addr == "" {
		return false
	}
	parsed, err := mail.ParseAddress(addr)
	// reject display-name forms like "A B <a@b.com>"
	return err == nil && parsed.Address == addr
}

// CheckoutResponse correlates one checkout attempt with later verify and
// callback calls. SessionID is the opaque join key the caller persists;
// CheckoutURL is where the customer gets redirected to pay.
type CheckoutResponse struct {
	CheckoutURL string
	SessionID   string
	Raw         map[string]any
}

func newCheckoutResponse(data map[string]any) *CheckoutResponse {
	return &CheckoutResponse{
		CheckoutURL: getString(data, "checkout_url"),
		SessionID:   getString(data, "session_id"),
		Raw:         data,
	}
}

// VerifyResponse is the settlement status of one transaction. Verify is
// idempotent, so the same transaction id always yields the same content for a
// settled payment.
type VerifyResponse struct {
	TransactionID string
	OrderID       string
	SessionID     string
	Status        string
	Amount        string
	Currency      string
	PaymentMethod string
	Raw           map[string]any
}

func newVerifyResponse(data map[string]any) *VerifyResponse {
	return &VerifyResponse{
		TransactionID: getString(data, "transaction_id"),
		OrderID:       getString(data, "order_id"),
		SessionID:     getString(data, "session_id"),
		Status:        getString(data, "status"),
		Amount:        getString(data, "amount"),
		Currency:      getString(data, "currency"),
		PaymentMethod: getString(data, "payment_method"),
		Raw:           data,
	}
}

// Settled reports whether the provider confirmed the payment as completed.
func (v *VerifyResponse) Settled() bool {
	switch strings.ToUpper(v.Status) {
	case "SUCCESS", "SUCCESSFUL", "COMPLETED", "PAID":
		return true
	}
	return false
}

// RefundResponse is the minimal refund result shape: a refund id plus an
// optional provider message.
type RefundResponse struct {
	RefundID string
	Status   string
	Message  string
	Raw      map[string]any
}

func newRefundResponse(data map[string]any) *RefundResponse {
	return &RefundResponse{
		RefundID: getString(data, "refund_id"),
		Status:   getString(data, "status"),
		Message:  getString(data, "message"),
		Raw:      data,
	}
}

func getString(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}
