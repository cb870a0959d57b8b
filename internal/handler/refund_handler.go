package handler

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"moneybag/internal/models"
	"moneybag/internal/repository"
	"moneybag/internal/service"
)

type RefundHandler struct {
	orderRepo *repository.OrderRepository
	eventRepo *repository.PaymentEventRepository
	gateway   Gateway
}

func NewRefundHandler(
	orderRepo *repository.OrderRepository,
	eventRepo *repository.PaymentEventRepository,
	gateway Gateway,
) *RefundHandler {
	return &RefundHandler{orderRepo: orderRepo, eventRepo: eventRepo, gateway: gateway}
}

// Create refunds a completed order, fully when amount_cents is omitted.
// Admin only.
func (h *RefundHandler) Create(c *gin.Context) {
	var req struct {
		AmountCents int64  `json:"amount_cents" binding:"omitempty,min=1"`
		Reason      string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	order, err := h.orderRepo.GetByOrderID(c.Param("order_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}
	if order.Status != models.OrderCompleted {
		c.JSON(http.StatusConflict, gin.H{"error": "only completed orders can be refunded"})
		return
	}
	if order.TransactionID == "" {
		c.JSON(http.StatusConflict, gin.H{"error": "order has no settled transaction"})
		return
	}
	amount := ""
	if req.AmountCents > 0 {
		if req.AmountCents > order.AmountCents {
			c.JSON(http.StatusBadRequest, gin.H{"error": "refund exceeds order amount"})
			return
		}
		amount = service.CentsToDecimal(req.AmountCents)
	}
	resp, err := h.gateway.Refund(c.Request.Context(), order.TransactionID, amount, req.Reason)
	if err != nil {
		log.Printf("[Refund] order_id=%s gateway error: %v", order.OrderID, err)
		_ = h.eventRepo.Create(&models.PaymentEvent{
			OrderID: order.ID,
			Action:  "refund_failed",
			Detail:  err.Error(),
			IP:      c.ClientIP(),
		})
		status, msg := gatewayError(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}
	now := time.Now()
	order.Status = models.OrderRefunded
	order.RefundID = resp.RefundID
	order.RefundedAt = &now
	if err := h.orderRepo.Update(order); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "order update failed"})
		return
	}
	_ = h.eventRepo.Create(&models.PaymentEvent{
		OrderID: order.ID,
		Action:  "refund_created",
		Detail:  "refund_id=" + resp.RefundID,
		IP:      c.ClientIP(),
	})
	log.Printf("[Refund] order_id=%s refund_id=%s", order.OrderID, resp.RefundID)
	c.JSON(http.StatusOK, gin.H{
		"order_id":  order.OrderID,
		"refund_id": resp.RefundID,
		"status":    resp.Status,
		"message":   resp.Message,
	})
}
