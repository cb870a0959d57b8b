package repository

import (
	"moneybag/internal/models"

	"gorm.io/gorm"
)

type PaymentEventRepository struct {
	db *gorm.DB
}

func NewPaymentEventRepository(db *gorm.DB) *PaymentEventRepository {
	return &PaymentEventRepository{db: db}
}

func (r *PaymentEventRepository) Create(e *models.PaymentEvent) error {
	return r.db.Create(e).Error
}

func (r *PaymentEventRepository) ListByOrderID(orderID uint) ([]models.PaymentEvent, error) {
	var events []models.PaymentEvent
	err := r.db.Where("order_id = ?", orderID).Order("created_at ASC").Find(&events).Error
	return events, err
}
