package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentStatus string

const (
	PaymentSucceeded PaymentStatus = "success"
	PaymentFailed    PaymentStatus = "failed"
	PaymentCancelled PaymentStatus = "cancelled"
)

// Payment records a settled gateway transaction. At most one row exists per
// enrollment; its presence doubles as the idempotency guard for duplicate
// webhook deliveries.
type Payment struct {
	ID           uuid.UUID     `gorm:"type:uuid;primary_key" json:"id"`
	EnrollmentID uuid.UUID     `gorm:"not null;uniqueIndex" json:"enrollment_id"`
	Amount       float64       `gorm:"type:numeric(12,2);not null" json:"amount"`
	Method       string        `gorm:"size:50;not null" json:"method"`
	Status       PaymentStatus `gorm:"size:20;not null" json:"status"`
	PaymentDate  time.Time     `json:"payment_date"`
	ReceiptURL   *string       `gorm:"size:512" json:"receipt_url"`

	Enrollment Enrollment `gorm:"foreignkey:EnrollmentID" json:"enrollment,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Payment) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
