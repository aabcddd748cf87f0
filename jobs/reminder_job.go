package jobs

import (
	"fmt"
	"log"
	"time"

	"github.com/Hieupu/ATPS-BE-sub002/models"
	"github.com/Hieupu/ATPS-BE-sub002/notifications"
	"gorm.io/gorm"
)

// SessionReminder emails every enrolled learner the day before a scheduled
// session.
type SessionReminder struct {
	db     *gorm.DB
	emails *notifications.EmailService
}

func NewSessionReminder(db *gorm.DB, emails *notifications.EmailService) *SessionReminder {
	return &SessionReminder{db: db, emails: emails}
}

func (j *SessionReminder) Run() {
	log.Println("Running job: SessionReminder...")

	tomorrow := time.Now().AddDate(0, 0, 1).Format("2006-01-02")

	var sessions []models.Session
	err := j.db.Preload("Class").
		Where("date = ? AND status = ?", tomorrow, models.SessionScheduled).
		Find(&sessions).Error
	if err != nil {
		log.Printf("Error loading sessions for reminders: %v", err)
		return
	}
	if len(sessions) == 0 {
		log.Println("No sessions scheduled for tomorrow.")
		return
	}

	sent := 0
	for _, session := range sessions {
		var enrollments []models.Enrollment
		err := j.db.Preload("Learner.Account").
			Where("class_id = ? AND status = ?", session.ClassID, models.EnrollmentEnrolled).
			Find(&enrollments).Error
		if err != nil {
			log.Printf("Error loading enrollments for session %s: %v", session.ID, err)
			continue
		}

		for _, enrollment := range enrollments {
			body := fmt.Sprintf("<h1>Class Reminder</h1><p>Your class <b>%s</b> has a session tomorrow (%s).</p>",
				session.Class.Name, session.Date)
			if session.ZoomJoinURL != nil {
				body += fmt.Sprintf("<p>Join link: <a href=\"%s\">%s</a></p>", *session.ZoomJoinURL, *session.ZoomJoinURL)
			}
			j.emails.SendEmail(enrollment.Learner.Account.FullName, enrollment.Learner.Account.Email,
				"Class Reminder: "+session.Class.Name, body)
			sent++
		}
	}

	log.Printf("SessionReminder sent %d reminder(s).", sent)
}
