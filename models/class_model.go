package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ClassStatus string

const (
	ClassOpen      ClassStatus = "Open"
	ClassOngoing   ClassStatus = "Ongoing"
	ClassCompleted ClassStatus = "Completed"
	ClassCancelled ClassStatus = "Cancelled"
)

// OneOnOneMarker in a class name marks the class as ephemeral: created for a
// single paying learner and torn down if its payment fails.
const OneOnOneMarker = "1-on-1"

type Class struct {
	ID           uuid.UUID   `gorm:"type:uuid;primary_key" json:"id"`
	CourseID     uuid.UUID   `gorm:"not null;index" json:"course_id"`
	InstructorID uuid.UUID   `gorm:"not null;index" json:"instructor_id"`
	Name         string      `gorm:"size:255;not null" json:"name"`
	Fee          float64     `gorm:"type:numeric(12,2);not null;default:0" json:"fee"`
	Status       ClassStatus `gorm:"size:20;not null;default:'Open'" json:"status"`
	MaxLearners  int         `gorm:"not null;default:1" json:"max_learners"`

	Course     Course     `gorm:"foreignkey:CourseID" json:"course,omitempty"`
	Instructor Instructor `gorm:"foreignkey:InstructorID" json:"instructor,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Class) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// IsOneOnOne reports whether the class is an ephemeral single-learner class.
func (c *Class) IsOneOnOne() bool {
	return strings.Contains(c.Name, OneOnOneMarker)
}

type Timeslot struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	StartTime string    `gorm:"size:5;not null" json:"start_time"`
	EndTime   string    `gorm:"size:5;not null" json:"end_time"`
}

func (t *Timeslot) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

type SessionStatus string

const (
	SessionScheduled SessionStatus = "Scheduled"
	SessionCompleted SessionStatus = "Completed"
	SessionCancelled SessionStatus = "Cancelled"
)

type Session struct {
	ID            uuid.UUID     `gorm:"type:uuid;primary_key" json:"id"`
	ClassID       uuid.UUID     `gorm:"not null;index" json:"class_id"`
	Topic         *string       `gorm:"size:255" json:"topic"`
	Date          string        `gorm:"size:10;not null;index" json:"date"`
	Status        SessionStatus `gorm:"size:20;not null;default:'Scheduled'" json:"status"`
	ZoomMeetingID *string       `gorm:"size:64" json:"zoom_meeting_id"`
	ZoomJoinURL   *string       `gorm:"size:512" json:"zoom_join_url"`

	Class Class `gorm:"foreignkey:ClassID" json:"class,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *Session) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

type SessionTimeslot struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	SessionID  uuid.UUID `gorm:"not null;index" json:"session_id"`
	TimeslotID uuid.UUID `gorm:"not null;index" json:"timeslot_id"`

	Session  Session  `gorm:"foreignkey:SessionID" json:"session,omitempty"`
	Timeslot Timeslot `gorm:"foreignkey:TimeslotID" json:"timeslot,omitempty"`
}

func (st *SessionTimeslot) BeforeCreate(*gorm.DB) error {
	if st.ID == uuid.Nil {
		st.ID = uuid.New()
	}
	return nil
}
