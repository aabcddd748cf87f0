package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "PRESENT"
	AttendanceAbsent  AttendanceStatus = "ABSENT"
	AttendanceLate    AttendanceStatus = "LATE"
	AttendanceExcused AttendanceStatus = "EXCUSED"
)

type Attendance struct {
	ID        uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	SessionID uuid.UUID        `gorm:"not null;index:idx_attendance_session_learner,unique" json:"session_id"`
	LearnerID uuid.UUID        `gorm:"not null;index:idx_attendance_session_learner,unique" json:"learner_id"`
	Status    AttendanceStatus `gorm:"size:20;not null" json:"status"`
	Note      *string          `gorm:"type:text" json:"note"`

	Session Session `gorm:"foreignkey:SessionID" json:"session,omitempty"`
	Learner Learner `gorm:"foreignkey:LearnerID" json:"learner,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (a *Attendance) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
