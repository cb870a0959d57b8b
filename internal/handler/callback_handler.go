package handler

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"moneybag/internal/models"
	"moneybag/internal/repository"
)

type CallbackHandler struct {
	orderRepo *repository.OrderRepository
	eventRepo *repository.PaymentEventRepository
	gateway   Gateway
}

func NewCallbackHandler(
	orderRepo *repository.OrderRepository,
	eventRepo *repository.PaymentEventRepository,
	gateway Gateway,
) *CallbackHandler {
	return &CallbackHandler{orderRepo: orderRepo, eventRepo: eventRepo, gateway: gateway}
}

// Success handles the browser redirect after a payment. Callback query
// parameters alone never mark an order paid: the transaction is verified with
// the gateway first, since anyone can craft the redirect URL.
func (h *CallbackHandler) Success(c *gin.Context) {
	orderID := c.Query("order_id")
	transactionID := c.Query("transaction_id")
	h.settle(c, orderID, transactionID, "callback")
}

// Fail marks a PENDING order FAILED after the provider redirected the
// customer to the failure URL.
func (h *CallbackHandler) Fail(c *gin.Context) {
	h.close(c, c.Query("order_id"), models.OrderFailed, "payment_failed")
}

// Cancel marks a PENDING order CANCELLED after the customer abandoned the
// checkout page.
func (h *CallbackHandler) Cancel(c *gin.Context) {
	h.close(c, c.Query("order_id"), models.OrderCancelled, "payment_cancelled")
}

// IPNPayload is the asynchronous notification body from Moneybag.
type IPNPayload struct {
	OrderID       string `json:"order_id"`
	TransactionID string `json:"transaction_id"`
	SessionID     string `json:"session_id"`
	Status        string `json:"status"`
}

// IPN processes the server-to-server notification. Same rule as the success
// redirect: verify before completing. Unknown orders are acknowledged so the
// provider stops redelivering.
func (h *CallbackHandler) IPN(c *gin.Context) {
	var payload IPNPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	log.Printf("[IPN] order_id=%s transaction_id=%s status=%s", payload.OrderID, payload.TransactionID, payload.Status)
	orderID := payload.OrderID
	if orderID == "" && payload.SessionID != "" {
		if o, err := h.orderRepo.GetBySessionID(payload.SessionID); err == nil {
			orderID = o.OrderID
		}
	}
	if orderID != "" {
		if _, err := h.orderRepo.GetByOrderID(orderID); err != nil {
			log.Printf("[IPN] order_id=%s not found, acknowledging", orderID)
			orderID = ""
		}
	}
	if orderID == "" {
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}
	h.settle(c, orderID, payload.TransactionID, "ipn")
}

// settle verifies the transaction with the gateway and, only on a settled
// result, transitions the order to COMPLETED. Re-delivery for an already
// completed order is acknowledged without a second transition.
func (h *CallbackHandler) settle(c *gin.Context, orderID, transactionID, source string) {
	if orderID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "order_id is required"})
		return
	}
	order, err := h.orderRepo.GetByOrderID(orderID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}
	if order.Status == models.OrderCompleted {
		log.Printf("[%s] order_id=%s already COMPLETED", source, orderID)
		c.JSON(http.StatusOK, gin.H{"order_id": orderID, "status": order.Status})
		return
	}
	if transactionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "transaction_id is required"})
		return
	}
	vr, err := h.gateway.Verify(c.Request.Context(), transactionID)
	if err != nil {
		log.Printf("[%s] order_id=%s verify error: %v", source, orderID, err)
		_ = h.eventRepo.Create(&models.PaymentEvent{
			OrderID: order.ID,
			Action:  "verify_failed",
			Detail:  err.Error(),
			IP:      c.ClientIP(),
		})
		status, msg := gatewayError(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}
	if !vr.Settled() {
		log.Printf("[%s] order_id=%s not settled, provider status=%s", source, orderID, vr.Status)
		_ = h.eventRepo.Create(&models.PaymentEvent{
			OrderID: order.ID,
			Action:  "verify_unsettled",
			Detail:  "provider status: " + vr.Status,
			IP:      c.ClientIP(),
		})
		c.JSON(http.StatusConflict, gin.H{"order_id": orderID, "status": order.Status, "provider_status": vr.Status})
		return
	}
	now := time.Now()
	order.Status = models.OrderCompleted
	order.TransactionID = transactionID
	order.CompletedAt = &now
	if err := h.orderRepo.Update(order); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "order update failed"})
		return
	}
	_ = h.eventRepo.Create(&models.PaymentEvent{
		OrderID: order.ID,
		Action:  "payment_completed",
		Detail:  "transaction_id=" + transactionID + " via " + source,
		IP:      c.ClientIP(),
	})
	log.Printf("[%s] order_id=%s COMPLETED transaction_id=%s", source, orderID, transactionID)
	c.JSON(http.StatusOK, gin.H{"order_id": orderID, "status": order.Status})
}

func (h *CallbackHandler) close(c *gin.Context, orderID, status, action string) {
	if orderID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "order_id is required"})
		return
	}
	order, err := h.orderRepo.GetByOrderID(orderID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}
	// only a PENDING order can be closed; late redirects must not clobber a
	// completed payment
	if order.Status == models.OrderPending {
		order.Status = status
		if err := h.orderRepo.Update(order); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "order update failed"})
			return
		}
		_ = h.eventRepo.Create(&models.PaymentEvent{
			OrderID: order.ID,
			Action:  action,
			IP:      c.ClientIP(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"order_id": orderID, "status": order.Status})
}
