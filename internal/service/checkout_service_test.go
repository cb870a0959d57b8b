package service

import (
	"testing"

	"moneybag/config"
	"moneybag/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	cfg := config.Load()
	cfg.Moneybag.PublicBaseURL = "https://shop.example.com/"
	return cfg
}

func TestBuildRequestMapsOrderAndInput(t *testing.T) {
	svc := NewCheckoutService(testConfig())
	order := &models.Order{
		OrderID:     "mb-123",
		AmountCents: 25050,
		Currency:    "BDT",
	}
	in := &CheckoutInput{
		AmountCents: 25050,
		Currency:    "BDT",
		Description: "Order #42",
		Customer: CustomerInput{
			Name:  "Rahim Uddin",
			Email: "rahim@example.com",
			City:  "Dhaka",
		},
		Shipping: &ShippingInput{City: "Dhaka", Country: "BD"},
		Items: []ItemInput{
			{Name: "Widget", Quantity: 2, UnitPriceCents: 10000, VATCents: 1500},
			{SKU: "GAD-1", Name: "Gadget", Quantity: 1, UnitPriceCents: 5050, DiscountCents: 500},
		},
		AllowedMethods: []string{"card"},
		Metadata:       map[string]any{"source": "storefront"},
	}

	req, err := svc.BuildRequest(order, in)
	require.NoError(t, err)

	assert.Equal(t, "mb-123", req.OrderID)
	assert.Equal(t, "250.50", req.OrderAmount)
	assert.Equal(t, "BDT", req.Currency)

	// callback URLs derive from the public base with the trailing slash trimmed
	assert.Equal(t, "https://shop.example.com/api/v1/payments/callback/success", req.SuccessURL)
	assert.Equal(t, "https://shop.example.com/api/v1/payments/callback/fail", req.FailURL)
	assert.Equal(t, "https://shop.example.com/api/v1/payments/callback/cancel", req.CancelURL)
	assert.Equal(t, "https://shop.example.com/api/v1/webhooks/moneybag", req.IPNURL)

	assert.Equal(t, "Rahim Uddin", req.Customer.Name)
	require.NotNil(t, req.Shipping)
	assert.Equal(t, "BD", req.Shipping.Country)

	require.Len(t, req.OrderItems, 2)
	assert.Equal(t, "100.00", req.OrderItems[0].UnitPrice)
	assert.Equal(t, "15.00", req.OrderItems[0].VAT)
	assert.Equal(t, "215.00", req.OrderItems[0].NetAmount)
	assert.Equal(t, "5.00", req.OrderItems[1].DiscountAmount)
	assert.Empty(t, req.OrderItems[1].VAT)

	assert.Equal(t, []string{"card"}, req.PaymentInfo.AllowedPaymentMethods)

	// the mapped request must pass the SDK's own pre-flight checks
	require.NoError(t, req.Validate())
}

func TestBuildRequestWithoutShippingOrItems(t *testing.T) {
	svc := NewCheckoutService(testConfig())
	order := &models.Order{OrderID: "mb-9", AmountCents: 100, Currency: "BDT"}
	in := &CheckoutInput{
		AmountCents: 100,
		Currency:    "BDT",
		Customer:    CustomerInput{Name: "A B", Email: "a@b.com"},
	}

	req, err := svc.BuildRequest(order, in)
	require.NoError(t, err)

	assert.Nil(t, req.Shipping)
	assert.Empty(t, req.OrderItems)
	assert.Equal(t, "1.00", req.OrderAmount)
	require.NoError(t, req.Validate())
}

func TestBuildRequestRejectsDiscountExceedingLineTotal(t *testing.T) {
	svc := NewCheckoutService(testConfig())
	order := &models.Order{OrderID: "mb-7", AmountCents: 100, Currency: "BDT"}
	in := &CheckoutInput{
		AmountCents: 100,
		Currency:    "BDT",
		Customer:    CustomerInput{Name: "A B", Email: "a@b.com"},
		Items: []ItemInput{
			{Name: "Widget", Quantity: 1, UnitPriceCents: 100, DiscountCents: 250},
		},
	}

	req, err := svc.BuildRequest(order, in)

	require.Error(t, err)
	assert.Nil(t, req)
	assert.Contains(t, err.Error(), "discount_cents")
}

func TestCentsToDecimal(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{0, "0.00"},
		{5, "0.05"},
		{100, "1.00"},
		{10050, "100.50"},
		{99999, "999.99"},
		{-5, "-0.05"},
		{-150, "-1.50"},
		{-10050, "-100.50"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CentsToDecimal(tt.cents))
	}
}
