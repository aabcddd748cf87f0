package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RefundStatus string

const (
	RefundPending       RefundStatus = "pending"
	RefundApproved      RefundStatus = "approved"
	RefundRejected      RefundStatus = "rejected"
	RefundCancelled     RefundStatus = "cancelled"
	RefundClassApproved RefundStatus = "classapproved"
)

type RefundRequest struct {
	ID           uuid.UUID    `gorm:"type:uuid;primary_key" json:"id"`
	EnrollmentID uuid.UUID    `gorm:"not null;index" json:"enrollment_id"`
	Reason       string       `gorm:"type:text;not null" json:"reason"`
	Status       RefundStatus `gorm:"size:20;not null;default:'pending'" json:"status"`
	AdminNote    *string      `gorm:"type:text" json:"admin_note"`
	RequestDate  time.Time    `json:"request_date"`
	ProcessedAt  *time.Time   `json:"processed_at"`

	Enrollment Enrollment `gorm:"foreignkey:EnrollmentID" json:"enrollment,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r *RefundRequest) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
