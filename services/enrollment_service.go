package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	config "github.com/Hieupu/ATPS-BE-sub002/configs"
	"github.com/Hieupu/ATPS-BE-sub002/models"
	"github.com/Hieupu/ATPS-BE-sub002/notifications"
	"github.com/Hieupu/ATPS-BE-sub002/payments"
	"github.com/Hieupu/ATPS-BE-sub002/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrClassNotFound   = errors.New("class not found")
	ErrClassNotOpen    = errors.New("class is not open for enrollment")
	ErrClassFull       = errors.New("class is full")
	ErrAlreadyEnrolled = errors.New("learner already has an active enrollment for this class")
	ErrCourseNotFound  = errors.New("course not found")
	ErrSlotUnavailable = errors.New("instructor slot is not available")
)

// EnrollmentService creates Pending enrollments and their gateway checkout
// links. Confirmation is exclusively the reconciliation core's job.
type EnrollmentService struct {
	db       *gorm.DB
	gateway  *payments.PayOSService
	notifier *notifications.Service
}

func NewEnrollmentService(db *gorm.DB, gateway *payments.PayOSService, notifier *notifications.Service) *EnrollmentService {
	return &EnrollmentService{db: db, gateway: gateway, notifier: notifier}
}

type CheckoutResult struct {
	Enrollment  models.Enrollment `json:"enrollment"`
	CheckoutURL string            `json:"checkout_url"`
}

// EnrollInClass registers a learner for an existing group class and returns
// the checkout link for the pending enrollment.
func (s *EnrollmentService) EnrollInClass(learnerID, classID uuid.UUID) (*CheckoutResult, error) {
	var class models.Class
	if err := s.db.First(&class, "id = ?", classID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClassNotFound
		}
		return nil, err
	}
	if class.Status != models.ClassOpen {
		return nil, ErrClassNotOpen
	}

	var enrollment models.Enrollment
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var active int64
		err := tx.Model(&models.Enrollment{}).
			Where("learner_id = ? AND class_id = ? AND status IN ?", learnerID, classID,
				[]models.EnrollmentStatus{models.EnrollmentPending, models.EnrollmentEnrolled}).
			Count(&active).Error
		if err != nil {
			return err
		}
		if active > 0 {
			return ErrAlreadyEnrolled
		}

		var enrolled int64
		err = tx.Model(&models.Enrollment{}).
			Where("class_id = ? AND status = ?", classID, models.EnrollmentEnrolled).
			Count(&enrolled).Error
		if err != nil {
			return err
		}
		if class.MaxLearners > 0 && enrolled >= int64(class.MaxLearners) {
			return ErrClassFull
		}

		orderCode, err := utils.GenerateOrderCode(tx)
		if err != nil {
			return err
		}

		enrollment = models.Enrollment{
			LearnerID:      learnerID,
			ClassID:        classID,
			Status:         models.EnrollmentPending,
			OrderCode:      orderCode,
			EnrollmentDate: time.Now(),
		}
		return tx.Create(&enrollment).Error
	})
	if err != nil {
		return nil, err
	}

	return s.checkout(enrollment, class)
}

// EnrollOneOnOne creates the ephemeral single-learner class, its first
// session in the chosen slot, and the pending enrollment, then returns the
// checkout link. The class is torn down by the reconciliation core if the
// payment fails.
func (s *EnrollmentService) EnrollOneOnOne(learnerID, courseID, instructorID, timeslotID uuid.UUID, date string) (*CheckoutResult, error) {
	var course models.Course
	if err := s.db.First(&course, "id = ? AND status = ?", courseID, models.CoursePublished).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}

	var enrollment models.Enrollment
	var class models.Class
	err := s.db.Transaction(func(tx *gorm.DB) error {
		// The chosen slot must be consumable right now; the guarded update is
		// the booking itself.
		res := tx.Model(&models.InstructorTimeslot{}).
			Where("instructor_id = ? AND timeslot_id = ? AND date = ? AND status = ?",
				instructorID, timeslotID, date, models.SlotAvailable).
			Update("status", models.SlotBooked)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrSlotUnavailable
		}

		class = models.Class{
			CourseID:     courseID,
			InstructorID: instructorID,
			Name:         fmt.Sprintf("%s %s", course.Title, models.OneOnOneMarker),
			Fee:          course.Fee,
			Status:       models.ClassOpen,
			MaxLearners:  1,
		}
		if err := tx.Create(&class).Error; err != nil {
			return err
		}

		session := models.Session{
			ClassID: class.ID,
			Date:    date,
			Status:  models.SessionScheduled,
		}
		if err := tx.Create(&session).Error; err != nil {
			return err
		}
		link := models.SessionTimeslot{SessionID: session.ID, TimeslotID: timeslotID}
		if err := tx.Create(&link).Error; err != nil {
			return err
		}

		orderCode, err := utils.GenerateOrderCode(tx)
		if err != nil {
			return err
		}
		enrollment = models.Enrollment{
			LearnerID:      learnerID,
			ClassID:        class.ID,
			Status:         models.EnrollmentPending,
			OrderCode:      orderCode,
			EnrollmentDate: time.Now(),
		}
		return tx.Create(&enrollment).Error
	})
	if err != nil {
		return nil, err
	}

	return s.checkout(enrollment, class)
}

func (s *EnrollmentService) checkout(enrollment models.Enrollment, class models.Class) (*CheckoutResult, error) {
	link, err := s.gateway.CreatePaymentLink(
		enrollment.OrderCode,
		int64(class.Fee),
		fmt.Sprintf("ATPS %d", enrollment.OrderCode),
		config.Config("PAYMENT_RETURN_URL"),
		config.Config("PAYMENT_CANCEL_URL"),
	)
	if err != nil {
		s.rollbackCheckout(enrollment, class)
		return nil, fmt.Errorf("create payment link for order %d: %w", enrollment.OrderCode, err)
	}

	var learner models.Learner
	if dbErr := s.db.Preload("Account").First(&learner, "id = ?", enrollment.LearnerID).Error; dbErr == nil {
		s.notifier.Notify(learner.Account.ID, "Awaiting payment",
			fmt.Sprintf("Complete your payment to confirm enrollment in %s.", class.Name),
			models.NotificationPaymentPending, &enrollment.OrderCode)
	}

	return &CheckoutResult{Enrollment: enrollment, CheckoutURL: link.CheckoutURL}, nil
}

// rollbackCheckout undoes an enrollment whose payment link could not be
// created. Without it the Pending enrollment, and for 1-on-1 the speculative
// class and its consumed slot, would outlive a checkout that never existed:
// the learner stays blocked on the active-enrollment guard and the slot is
// leaked, with no link for the poller to reconcile against.
func (s *EnrollmentService) rollbackCheckout(enrollment models.Enrollment, class models.Class) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if class.IsOneOnOne() {
			var sessions []models.Session
			if err := tx.Where("class_id = ?", class.ID).Find(&sessions).Error; err != nil {
				return err
			}
			for _, sess := range sessions {
				var links []models.SessionTimeslot
				if err := tx.Where("session_id = ?", sess.ID).Find(&links).Error; err != nil {
					return err
				}
				for _, link := range links {
					err := tx.Model(&models.InstructorTimeslot{}).
						Where("instructor_id = ? AND timeslot_id = ? AND date = ? AND status = ?",
							class.InstructorID, link.TimeslotID, sess.Date, models.SlotBooked).
						Update("status", models.SlotAvailable).Error
					if err != nil {
						return err
					}
				}
				if err := tx.Where("session_id = ?", sess.ID).Delete(&models.SessionTimeslot{}).Error; err != nil {
					return err
				}
			}
			if err := tx.Where("class_id = ?", class.ID).Delete(&models.Session{}).Error; err != nil {
				return err
			}
			if err := tx.Delete(&models.Class{}, "id = ?", class.ID).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.Enrollment{}, "id = ?", enrollment.ID).Error
	})
	if err != nil {
		log.Printf("🔥 Failed to roll back enrollment %s after checkout failure: %v", enrollment.ID, err)
	}
}
