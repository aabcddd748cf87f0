package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleAdmin      = "admin"
	RoleStaff      = "staff"
	RoleInstructor = "instructor"
	RoleLearner    = "learner"
)

type Account struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Email    string    `gorm:"size:255;not null;unique" json:"email"`
	Password string    `gorm:"not null" json:"-"`
	FullName string    `gorm:"size:255;not null" json:"full_name"`
	Phone    *string   `gorm:"size:20" json:"phone"`
	Role     string    `gorm:"size:20;not null;default:'learner'" json:"role"`
	IsActive bool      `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (a *Account) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

type Learner struct {
	ID           uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	AccountID    uuid.UUID  `gorm:"not null;unique" json:"account_id"`
	EnglishLevel *string    `gorm:"size:50" json:"english_level"`
	DateOfBirth  *time.Time `json:"date_of_birth"`

	Account Account `gorm:"foreignkey:AccountID" json:"account,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (l *Learner) BeforeCreate(*gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

const (
	InstructorFulltime = "fulltime"
	InstructorParttime = "parttime"
)

type Instructor struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	AccountID uuid.UUID `gorm:"not null;unique" json:"account_id"`
	Type      string    `gorm:"size:20;not null;default:'parttime'" json:"type"`
	Major     *string   `gorm:"size:255" json:"major"`
	Bio       *string   `gorm:"type:text" json:"bio"`
	AvatarURL *string   `gorm:"size:255" json:"avatar_url"`

	Account Account `gorm:"foreignkey:AccountID" json:"account,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (i *Instructor) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
