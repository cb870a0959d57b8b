package handler

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"moneybag/config"
	"moneybag/internal/models"
	"moneybag/internal/repository"
	"moneybag/internal/service"
)

type CheckoutHandler struct {
	cfg         *config.Config
	orderRepo   *repository.OrderRepository
	eventRepo   *repository.PaymentEventRepository
	checkoutSvc *service.CheckoutService
	gateway     Gateway
}

func NewCheckoutHandler(
	cfg *config.Config,
	orderRepo *repository.OrderRepository,
	eventRepo *repository.PaymentEventRepository,
	checkoutSvc *service.CheckoutService,
	gateway Gateway,
) *CheckoutHandler {
	return &CheckoutHandler{
		cfg:         cfg,
		orderRepo:   orderRepo,
		eventRepo:   eventRepo,
		checkoutSvc: checkoutSvc,
		gateway:     gateway,
	}
}

// Initiate opens a Moneybag checkout session for a new order and returns the
// URL the customer is redirected to. The session id is persisted on the order
// so the later callback/IPN can be reconciled against it.
func (h *CheckoutHandler) Initiate(c *gin.Context) {
	var in service.CheckoutInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	orderID := fmt.Sprintf("mb-%s", uuid.New().String())
	metadata := ""
	if in.Metadata != nil {
		if raw, err := json.Marshal(in.Metadata); err == nil {
			metadata = string(raw)
		}
	}
	order := &models.Order{
		OrderID:          orderID,
		AmountCents:      in.AmountCents,
		Currency:         in.Currency,
		Description:      in.Description,
		CustomerName:     in.Customer.Name,
		CustomerEmail:    in.Customer.Email,
		CustomerPhone:    in.Customer.Phone,
		CustomerAddress:  in.Customer.Address,
		CustomerCity:     in.Customer.City,
		CustomerPostcode: in.Customer.Postcode,
		CustomerCountry:  in.Customer.Country,
		Status:           models.OrderPending,
		Metadata:         metadata,
	}
	// build the wire request before persisting so a rejected payload leaves
	// no order behind
	req, err := h.checkoutSvc.BuildRequest(order, &in)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.orderRepo.Create(order); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "order create failed"})
		return
	}
	resp, err := h.gateway.Checkout(c.Request.Context(), req)
	if err != nil {
		log.Printf("[Checkout] order_id=%s gateway error: %v", orderID, err)
		order.Status = models.OrderFailed
		_ = h.orderRepo.Update(order)
		_ = h.eventRepo.Create(&models.PaymentEvent{
			OrderID: order.ID,
			Action:  "checkout_failed",
			Detail:  err.Error(),
			IP:      c.ClientIP(),
		})
		status, msg := gatewayError(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}
	order.SessionID = resp.SessionID
	if err := h.orderRepo.Update(order); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "order update failed"})
		return
	}
	_ = h.eventRepo.Create(&models.PaymentEvent{
		OrderID: order.ID,
		Action:  "checkout_created",
		Detail:  "session_id=" + resp.SessionID,
		IP:      c.ClientIP(),
	})
	log.Printf("[Checkout] order_id=%s session_id=%s created", orderID, resp.SessionID)
	c.JSON(http.StatusCreated, gin.H{
		"order_id":     orderID,
		"session_id":   resp.SessionID,
		"checkout_url": resp.CheckoutURL,
	})
}
