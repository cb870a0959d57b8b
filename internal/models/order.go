package models

import (
	"time"

	"gorm.io/gorm"
)

// Order is one merchant order tracked through a Moneybag checkout session.
// OrderID is our merchant reference sent to the gateway; SessionID is the
// gateway's join key returned from checkout; TransactionID arrives with the
// callback/IPN and is what verify and refund operate on.
type Order struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	OrderID     string `gorm:"size:64;uniqueIndex;not null" json:"order_id"`
	AmountCents int64  `gorm:"not null" json:"amount_cents"`
	Currency    string `gorm:"size:3;default:'BDT'" json:"currency"`
	Description string `gorm:"size:255" json:"description"`

	CustomerName     string `gorm:"size:100" json:"customer_name"`
	CustomerEmail    string `gorm:"size:255" json:"customer_email"`
	CustomerPhone    string `gorm:"size:30" json:"customer_phone"`
	CustomerAddress  string `gorm:"size:255" json:"-"`
	CustomerCity     string `gorm:"size:100" json:"-"`
	CustomerPostcode string `gorm:"size:20" json:"-"`
	CustomerCountry  string `gorm:"size:2" json:"-"`

	SessionID     string `gorm:"size:255;index" json:"session_id"`
	TransactionID string `gorm:"size:255;index" json:"transaction_id"`
	RefundID      string `gorm:"size:255" json:"refund_id,omitempty"`
	Status        string `gorm:"size:20;not null;index" json:"status"` // PENDING, COMPLETED, FAILED, CANCELLED, REFUNDED
	Metadata      string `gorm:"type:text" json:"metadata"`            // JSON

	CompletedAt *time.Time     `json:"completed_at"`
	RefundedAt  *time.Time     `json:"refunded_at"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Order) TableName() string {
	return "orders"
}

const (
	OrderPending   = "PENDING"
	OrderCompleted = "COMPLETED"
	OrderFailed    = "FAILED"
	OrderCancelled = "CANCELLED"
	OrderRefunded  = "REFUNDED"
)
