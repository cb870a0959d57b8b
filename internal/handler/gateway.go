package handler

import (
	"context"
	"errors"
	"net/http"

	"moneybag/pkg/moneybag"
)

// Gateway is the slice of the Moneybag SDK the handlers use. Satisfied by
// *moneybag.Client; stubbed in tests.
type Gateway interface {
	Checkout(ctx context.Context, req *moneybag.CheckoutRequest) (*moneybag.CheckoutResponse, error)
	Verify(ctx context.Context, transactionID string) (*moneybag.VerifyResponse, error)
	Refund(ctx context.Context, transactionID, amount, reason string) (*moneybag.RefundResponse, error)
}

// gatewayError maps a classified SDK error to an HTTP status and a message
// safe to show the customer; the raw error stays in the server log.
func gatewayError(err error) (int, string) {
	var mbErr *moneybag.Error
	if errors.As(err, &mbErr) {
		switch mbErr.Kind {
		case moneybag.KindValidation:
			return http.StatusBadRequest, mbErr.Message
		case moneybag.KindAuthentication:
			return http.StatusBadGateway, "payment gateway rejected our credentials; check the configured API key"
		case moneybag.KindTransport:
			return http.StatusBadGateway, "payment gateway unreachable; please try again shortly"
		default:
			return http.StatusBadGateway, "payment gateway error; please try again or contact support"
		}
	}
	return http.StatusInternalServerError, "internal error"
}
