package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Hieupu/ATPS-BE-sub002/models"
	"github.com/Hieupu/ATPS-BE-sub002/notifications"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrEnrollmentNotFound is returned when a success report references an
	// order code with no enrollment behind it.
	ErrEnrollmentNotFound = errors.New("enrollment not found for order code")

	// ErrEnrollmentConflict signals that the guarded Pending->Enrolled update
	// affected zero rows. The row lock should make this impossible, so it is
	// an integrity fault, not a retryable condition.
	ErrEnrollmentConflict = errors.New("enrollment state changed outside the lock")

	ErrInvalidPaymentStatus = errors.New("invalid payment status")
)

type PaymentUpdateResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// PaymentService owns the payment/enrollment reconciliation flow. The
// transaction around the enrollment row (selected FOR UPDATE by order code)
// is the only serialization point in the system; everything after commit is
// best-effort.
type PaymentService struct {
	db           *gorm.DB
	emails       *notifications.EmailService
	notifier     *notifications.Service
	availability *AvailabilityService
	receipts     *ReceiptService
}

func NewPaymentService(db *gorm.DB, emails *notifications.EmailService, notifier *notifications.Service, availability *AvailabilityService, receipts *ReceiptService) *PaymentService {
	return &PaymentService{
		db:           db,
		emails:       emails,
		notifier:     notifier,
		availability: availability,
		receipts:     receipts,
	}
}

// lockForUpdate adds a row lock on dialects that support it. SQLite (used by
// the test suite) serializes writes at the database level instead.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// slotRef identifies one instructor availability row to release after a
// failed 1-on-1 payment tears its sessions down.
type slotRef struct {
	instructorID uuid.UUID
	timeslotID   uuid.UUID
	date         string
}

// UpdatePaymentStatus brings the enrollment behind orderCode to a terminal
// state consistent with the gateway outcome, exactly once, regardless of how
// many times it is invoked for the same order.
func (s *PaymentService) UpdatePaymentStatus(ctx context.Context, orderCode int64, status string, amount float64) (*PaymentUpdateResult, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	switch status {
	case string(models.PaymentSucceeded), string(models.PaymentFailed), string(models.PaymentCancelled):
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidPaymentStatus, status)
	}

	var (
		result       PaymentUpdateResult
		paid         bool
		cleaned      bool
		enrollment   models.Enrollment
		class        models.Class
		releaseSlots []slotRef
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := lockForUpdate(tx).First(&enrollment, "order_code = ?", orderCode).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				if status != string(models.PaymentSucceeded) {
					// Already cleaned up by an earlier delivery.
					result = PaymentUpdateResult{Success: true, Message: "Enrollment already removed"}
					return nil
				}
				return ErrEnrollmentNotFound
			}
			return err
		}

		// Primary duplicate-delivery guard.
		if enrollment.Status == models.EnrollmentEnrolled {
			result = PaymentUpdateResult{Success: true, Message: "Enrollment already confirmed"}
			return nil
		}

		// Second guard: a payment row is durable proof the transition already
		// happened.
		var paymentCount int64
		if err := tx.Model(&models.Payment{}).Where("enrollment_id = ?", enrollment.ID).Count(&paymentCount).Error; err != nil {
			return err
		}
		if paymentCount > 0 {
			result = PaymentUpdateResult{Success: true, Message: "Payment already recorded"}
			return nil
		}

		if err := tx.First(&class, "id = ?", enrollment.ClassID).Error; err != nil {
			return err
		}

		if status == string(models.PaymentSucceeded) {
			if amount <= 0 {
				amount = class.Fee
			}
			payment := models.Payment{
				EnrollmentID: enrollment.ID,
				Amount:       amount,
				Method:       "payos",
				Status:       models.PaymentSucceeded,
				PaymentDate:  time.Now(),
			}
			if err := tx.Create(&payment).Error; err != nil {
				return err
			}

			res := tx.Model(&models.Enrollment{}).
				Where("id = ? AND status = ?", enrollment.ID, models.EnrollmentPending).
				Update("status", models.EnrollmentEnrolled)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrEnrollmentConflict
			}

			if class.IsOneOnOne() {
				if err := tx.Model(&models.Class{}).Where("id = ?", class.ID).
					Update("status", models.ClassOngoing).Error; err != nil {
					return err
				}
			}

			paid = true
			result = PaymentUpdateResult{Success: true, Message: "Payment recorded and enrollment confirmed"}
			return nil
		}

		// failed / cancelled
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
					releaseSlots = append(releaseSlots, slotRef{
						instructorID: class.InstructorID,
						timeslotID:   link.TimeslotID,
						date:         sess.Date,
					})
				}
				if err := tx.Where("session_id = ?", sess.ID).Delete(&models.SessionTimeslot{}).Error; err != nil {
					return err
				}
			}
			if err := tx.Where("class_id = ?", class.ID).Delete(&models.Session{}).Error; err != nil {
				return err
			}
			if err := tx.Delete(&models.Enrollment{}, "id = ?", enrollment.ID).Error; err != nil {
				return err
			}
			if err := tx.Delete(&models.Class{}, "id = ?", class.ID).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Delete(&models.Enrollment{}, "id = ?", enrollment.ID).Error; err != nil {
				return err
			}
		}

		cleaned = true
		result = PaymentUpdateResult{Success: true, Message: "Enrollment cleaned up"}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Everything below is best-effort bookkeeping outside the transaction.
	switch {
	case paid:
		s.notifier.DeletePaymentPending(orderCode)
		go s.announcePayment(enrollment, class, orderCode, amount)
	case cleaned:
		s.notifier.DeletePaymentPending(orderCode)
		for _, ref := range releaseSlots {
			if err := s.availability.MarkSlotAsAvailable(ref.instructorID, ref.timeslotID, ref.date); err != nil {
				log.Printf("🔥 Failed to release slot %s/%s on %s: %v", ref.instructorID, ref.timeslotID, ref.date, err)
			}
		}
	}

	return &result, nil
}

// announcePayment sends the confirmation email, creates the learner and
// instructor notifications, and kicks off receipt generation. Failures are
// logged and dropped.
func (s *PaymentService) announcePayment(enrollment models.Enrollment, class models.Class, orderCode int64, amount float64) {
	var learner models.Learner
	if err := s.db.Preload("Account").First(&learner, "id = ?", enrollment.LearnerID).Error; err != nil {
		log.Printf("🔥 Failed to load learner for payment announcement: %v", err)
		return
	}

	s.emails.SendEmail(learner.Account.FullName, learner.Account.Email,
		"Your Enrollment is Confirmed!",
		fmt.Sprintf("<h1>Enrollment Confirmed</h1><p>Your payment for <b>%s</b> was successful. See you in class!</p>", class.Name))

	s.notifier.Notify(learner.Account.ID, "Enrollment confirmed",
		fmt.Sprintf("Your payment for %s was received.", class.Name),
		models.NotificationPaymentSuccess, &orderCode)

	var instructor models.Instructor
	if err := s.db.Preload("Account").First(&instructor, "id = ?", class.InstructorID).Error; err != nil {
		log.Printf("🔥 Failed to load instructor for payment announcement: %v", err)
	} else {
		s.notifier.Notify(instructor.Account.ID, "New paid enrollment",
			fmt.Sprintf("%s has enrolled in %s.", learner.Account.FullName, class.Name),
			models.NotificationEnrollment, &orderCode)
	}

	if s.receipts != nil {
		s.receipts.GenerateForOrder(orderCode, learner.Account.FullName, class.Name, amount)
	}
}
