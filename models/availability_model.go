package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SlotStatus is the per-slot availability state. AVAILABLE means the
// instructor opted to teach the slot, OTHER means a scheduled session has
// consumed it, HOLIDAY blocks it. A slot in OTHER is only released back to
// AVAILABLE by an explicit session cancellation, never by a bulk re-save.
type SlotStatus string

const (
	SlotAvailable SlotStatus = "AVAILABLE"
	SlotBooked    SlotStatus = "OTHER"
	SlotHoliday   SlotStatus = "HOLIDAY"
)

type InstructorTimeslot struct {
	ID           uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	InstructorID uuid.UUID  `gorm:"not null;index:idx_instructor_slot,unique" json:"instructor_id"`
	TimeslotID   uuid.UUID  `gorm:"not null;index:idx_instructor_slot,unique" json:"timeslot_id"`
	Date         string     `gorm:"size:10;not null;index:idx_instructor_slot,unique" json:"date"`
	Status       SlotStatus `gorm:"size:20;not null;default:'AVAILABLE'" json:"status"`
	Note         *string    `gorm:"type:text" json:"note"`

	Instructor Instructor `gorm:"foreignkey:InstructorID" json:"instructor,omitempty"`
	Timeslot   Timeslot   `gorm:"foreignkey:TimeslotID" json:"timeslot,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (it *InstructorTimeslot) BeforeCreate(*gorm.DB) error {
	if it.ID == uuid.Nil {
		it.ID = uuid.New()
	}
	return nil
}
