package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CourseStatus is the canonical course lifecycle enum. The lifecycle is
// DRAFT -> IN_REVIEW -> APPROVED -> PUBLISHED, with IN_REVIEW -> REJECTED
// and REJECTED -> DRAFT as the rework path.
type CourseStatus string

const (
	CourseDraft     CourseStatus = "DRAFT"
	CourseInReview  CourseStatus = "IN_REVIEW"
	CourseApproved  CourseStatus = "APPROVED"
	CoursePublished CourseStatus = "PUBLISHED"
	CourseRejected  CourseStatus = "REJECTED"
)

var courseTransitions = map[CourseStatus][]CourseStatus{
	CourseDraft:    {CourseInReview},
	CourseInReview: {CourseApproved, CourseRejected},
	CourseApproved: {CoursePublished},
	CourseRejected: {CourseDraft},
}

// CanTransitionTo reports whether the lifecycle permits moving to next.
func (s CourseStatus) CanTransitionTo(next CourseStatus) bool {
	for _, allowed := range courseTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Course struct {
	ID          uuid.UUID    `gorm:"type:uuid;primary_key" json:"id"`
	Title       string       `gorm:"size:255;not null" json:"title"`
	Description *string      `gorm:"type:text" json:"description"`
	Level       *string      `gorm:"size:50" json:"level"`
	Fee         float64      `gorm:"type:numeric(12,2);not null;default:0" json:"fee"`
	Status      CourseStatus `gorm:"size:20;not null;default:'DRAFT'" json:"status"`

	Units []Unit `gorm:"foreignkey:CourseID" json:"units,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (c *Course) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

type Unit struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	CourseID   uuid.UUID `gorm:"not null;index" json:"course_id"`
	Title      string    `gorm:"size:255;not null" json:"title"`
	OrderIndex int       `gorm:"not null;default:0" json:"order_index"`

	Lessons []Lesson `gorm:"foreignkey:UnitID" json:"lessons,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *Unit) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

type Lesson struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UnitID   uuid.UUID `gorm:"not null;index" json:"unit_id"`
	Title    string    `gorm:"size:255;not null" json:"title"`
	Content  *string   `gorm:"type:text" json:"content"`
	Duration int       `gorm:"not null;default:0" json:"duration"`

	Materials []Material `gorm:"foreignkey:LessonID" json:"materials,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (l *Lesson) BeforeCreate(*gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

type Material struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	LessonID uuid.UUID `gorm:"not null;index" json:"lesson_id"`
	Title    string    `gorm:"size:255;not null" json:"title"`
	FileURL  string    `gorm:"size:512;not null" json:"file_url"`
	Type     string    `gorm:"size:50;not null;default:'document'" json:"type"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (m *Material) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
