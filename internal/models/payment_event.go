package models

import "time"

// PaymentEvent is an append-only audit trail of gateway transitions for one
// order: checkout created, callback received, verification outcome, refund.
type PaymentEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OrderID   uint      `gorm:"not null;index" json:"order_id"`
	Action    string    `gorm:"size:50;not null" json:"action"`
	Detail    string    `gorm:"type:text" json:"detail"`
	IP        string    `gorm:"size:45" json:"ip"`
	CreatedAt time.Time `json:"created_at"`
}

func (PaymentEvent) TableName() string {
	return "payment_events"
}
