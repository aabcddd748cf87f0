package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EnrollmentStatus string

const (
	EnrollmentPending   EnrollmentStatus = "Pending"
	EnrollmentEnrolled  EnrollmentStatus = "Enrolled"
	EnrollmentCancelled EnrollmentStatus = "Cancelled"
	EnrollmentChange    EnrollmentStatus = "Change"
)

// MaxSafeOrderCode is the largest order code the payment gateway accepts
// (the JavaScript safe-integer ceiling on the checkout side).
const MaxSafeOrderCode = int64(9007199254740991)

type Enrollment struct {
	ID             uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	LearnerID      uuid.UUID        `gorm:"not null;index" json:"learner_id"`
	ClassID        uuid.UUID        `gorm:"not null;index" json:"class_id"`
	Status         EnrollmentStatus `gorm:"size:20;not null;default:'Pending'" json:"status"`
	OrderCode      int64            `gorm:"not null;uniqueIndex" json:"order_code"`
	EnrollmentDate time.Time        `json:"enrollment_date"`

	Learner Learner `gorm:"foreignkey:LearnerID" json:"learner,omitempty"`
	Class   Class   `gorm:"foreignkey:ClassID" json:"class,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (e *Enrollment) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
