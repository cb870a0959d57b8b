package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"moneybag/internal/repository"
)

type OrderHandler struct {
	orderRepo *repository.OrderRepository
	eventRepo *repository.PaymentEventRepository
}

func NewOrderHandler(orderRepo *repository.OrderRepository, eventRepo *repository.PaymentEventRepository) *OrderHandler {
	return &OrderHandler{orderRepo: orderRepo, eventRepo: eventRepo}
}

// Get returns one order with its payment event trail. Admin only.
func (h *OrderHandler) Get(c *gin.Context) {
	order, err := h.orderRepo.GetByOrderID(c.Param("order_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}
	events, _ := h.eventRepo.ListByOrderID(order.ID)
	c.JSON(http.StatusOK, gin.H{"order": order, "events": events})
}

// List returns recent orders. Admin only.
func (h *OrderHandler) List(c *gin.Context) {
	orders, err := h.orderRepo.ListRecent(100)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}
