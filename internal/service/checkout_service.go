package service

import (
	"fmt"
	"strings"

	"moneybag/config"
	"moneybag/internal/models"
	"moneybag/pkg/moneybag"
)

// CheckoutInput is the merchant-facing payload for initiating a payment.
// Monetary values are integer cents; they are converted to the gateway's
// decimal-string format during mapping.
type CheckoutInput struct {
	AmountCents    int64          `json:"amount_cents" binding:"required,min=1"`
	Currency       string         `json:"currency" binding:"required,len=3"`
	Description    string         `json:"description"`
	Customer       CustomerInput  `json:"customer" binding:"required"`
	Shipping       *ShippingInput `json:"shipping"`
	Items          []ItemInput    `json:"items" binding:"omitempty,dive"`
	AllowedMethods []string       `json:"allowed_payment_methods"`
	Metadata       map[string]any `json:"metadata"`
}

type CustomerInput struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	City     string `json:"city"`
	Postcode string `json:"postcode"`
	Country  string `json:"country"`
}

type ShippingInput struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	City     string `json:"city"`
	State    string `json:"state"`
	Postcode string `json:"postcode"`
	Country  string `json:"country"`
}

type ItemInput struct {
	SKU            string `json:"sku"`
	Name           string `json:"name" binding:"required"`
	Category       string `json:"category"`
	Quantity       int    `json:"quantity" binding:"required,min=1"`
	UnitPriceCents int64  `json:"unit_price_cents" binding:"required,min=1"`
	VATCents       int64  `json:"vat_cents" binding:"min=0"`
	DiscountCents  int64  `json:"discount_cents" binding:"min=0"`
}

// CheckoutService maps stored orders to the wire requests the Moneybag SDK
// expects, deriving callback URLs from the configured public base.
type CheckoutService struct {
	cfg *config.Config
}

func NewCheckoutService(cfg *config.Config) *CheckoutService {
	return &CheckoutService{cfg: cfg}
}

func (s *CheckoutService) BuildRequest(order *models.Order, in *CheckoutInput) (*moneybag.CheckoutRequest, error) {
	base := strings.TrimRight(s.cfg.Moneybag.PublicBaseURL, "/")
	req := &moneybag.CheckoutRequest{
		OrderID:          order.OrderID,
		Currency:         order.Currency,
		OrderAmount:      CentsToDecimal(order.AmountCents),
		OrderDescription: in.Description,
		SuccessURL:       base + "/api/v1/payments/callback/success",
		FailURL:          base + "/api/v1/payments/callback/fail",
		CancelURL:        base + "/api/v1/payments/callback/cancel",
		IPNURL:           base + "/api/v1/webhooks/moneybag",
		Customer: moneybag.Customer{
			Name:     in.Customer.Name,
			Email:    in.Customer.Email,
			Phone:    in.Customer.Phone,
			Address:  in.Customer.Address,
			City:     in.Customer.City,
			Postcode: in.Customer.Postcode,
			Country:  in.Customer.Country,
		},
		PaymentInfo: moneybag.PaymentInfo{
			AllowedPaymentMethods: in.AllowedMethods,
		},
		Metadata: in.Metadata,
	}
	if in.Shipping != nil {
		req.Shipping = &moneybag.Shipping{
			Name:     in.Shipping.Name,
			Address:  in.Shipping.Address,
			City:     in.Shipping.City,
			State:    in.Shipping.State,
			Postcode: in.Shipping.Postcode,
			Country:  in.Shipping.Country,
		}
	}
	for i, item := range in.Items {
		net := item.UnitPriceCents*int64(item.Quantity) + item.VATCents - item.DiscountCents
		// a discount larger than the line total would put a negative net
		// amount on the wire
		if net < 0 {
			return nil, fmt.Errorf("items[%d]: discount_cents %d exceeds the line total", i, item.DiscountCents)
		}
		wireItem := moneybag.OrderItem{
			SKU:         item.SKU,
			ProductName: item.Name,
			Category:    item.Category,
			Quantity:    item.Quantity,
			UnitPrice:   CentsToDecimal(item.UnitPriceCents),
			NetAmount:   CentsToDecimal(net),
		}
		if item.VATCents > 0 {
			wireItem.VAT = CentsToDecimal(item.VATCents)
		}
		if item.DiscountCents > 0 {
			wireItem.DiscountAmount = CentsToDecimal(item.DiscountCents)
		}
		req.OrderItems = append(req.OrderItems, wireItem)
	}
	return req, nil
}

// CentsToDecimal renders integer cents as the two-decimal string the gateway
// expects, e.g. 10050 -> "100.50". The sign is applied once, up front, so
// negative amounts like -150 render as "-1.50".
func CentsToDecimal(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
