package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/Hieupu/ATPS-BE-sub002/models"
	"github.com/Hieupu/ATPS-BE-sub002/notifications"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrRefundEnrollmentNotFound = errors.New("enrollment not found")
	ErrRefundNotEligible        = errors.New("enrollment is not eligible for a refund")
	ErrRefundAlreadyPending     = errors.New("a pending refund request already exists for this enrollment")
	ErrRefundNotFound           = errors.New("refund request not found")
	ErrRefundNotPending         = errors.New("refund request is not pending")
	ErrRefundNotOwner           = errors.New("refund request does not belong to this learner")
)

// RefundService manages the refund request lifecycle:
// pending -> approved | rejected | cancelled. One pending request per
// enrollment at a time.
type RefundService struct {
	db       *gorm.DB
	notifier *notifications.Service
}

func NewRefundService(db *gorm.DB, notifier *notifications.Service) *RefundService {
	return &RefundService{db: db, notifier: notifier}
}

func (s *RefundService) Create(learnerID, enrollmentID uuid.UUID, reason string) (*models.RefundRequest, error) {
	var enrollment models.Enrollment
	if err := s.db.First(&enrollment, "id = ?", enrollmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRefundEnrollmentNotFound
		}
		return nil, err
	}
	if enrollment.LearnerID != learnerID {
		return nil, ErrRefundNotOwner
	}
	if enrollment.Status != models.EnrollmentEnrolled {
		return nil, ErrRefundNotEligible
	}

	var refund models.RefundRequest
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var pending int64
		err := tx.Model(&models.RefundRequest{}).
			Where("enrollment_id = ? AND status = ?", enrollmentID, models.RefundPending).
			Count(&pending).Error
		if err != nil {
			return err
		}
		if pending > 0 {
			return ErrRefundAlreadyPending
		}

		refund = models.RefundRequest{
			EnrollmentID: enrollmentID,
			Reason:       reason,
			Status:       models.RefundPending,
			RequestDate:  time.Now(),
		}
		return tx.Create(&refund).Error
	})
	if err != nil {
		return nil, err
	}
	return &refund, nil
}

// Approve moves a pending request to approved and cancels the enrollment.
func (s *RefundService) Approve(refundID uuid.UUID, adminNote *string) (*models.RefundRequest, error) {
	refund, err := s.transition(refundID, models.RefundApproved, adminNote, func(tx *gorm.DB, r *models.RefundRequest) error {
		return tx.Model(&models.Enrollment{}).Where("id = ?", r.EnrollmentID).
			Update("status", models.EnrollmentCancelled).Error
	})
	if err != nil {
		return nil, err
	}

	var enrollment models.Enrollment
	if err := s.db.Preload("Learner.Account").Preload("Class").First(&enrollment, "id = ?", refund.EnrollmentID).Error; err == nil {
		s.notifier.Notify(enrollment.Learner.Account.ID, "Refund approved",
			fmt.Sprintf("Your refund request for %s has been approved.", enrollment.Class.Name),
			models.NotificationRefund, &enrollment.OrderCode)
	}
	return refund, nil
}

func (s *RefundService) Reject(refundID uuid.UUID, adminNote *string) (*models.RefundRequest, error) {
	return s.transition(refundID, models.RefundRejected, adminNote, nil)
}

// Cancel lets the requesting learner withdraw a still-pending request.
func (s *RefundService) Cancel(learnerID, refundID uuid.UUID) (*models.RefundRequest, error) {
	var refund models.RefundRequest
	if err := s.db.Preload("Enrollment").First(&refund, "id = ?", refundID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRefundNotFound
		}
		return nil, err
	}
	if refund.Enrollment.LearnerID != learnerID {
		return nil, ErrRefundNotOwner
	}
	return s.transition(refundID, models.RefundCancelled, nil, nil)
}

func (s *RefundService) ListByStatus(status models.RefundStatus) ([]models.RefundRequest, error) {
	var refunds []models.RefundRequest
	q := s.db.Preload("Enrollment.Class").Order("request_date desc")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Find(&refunds).Error; err != nil {
		return nil, err
	}
	return refunds, nil
}

func (s *RefundService) transition(refundID uuid.UUID, next models.RefundStatus, adminNote *string, extra func(*gorm.DB, *models.RefundRequest) error) (*models.RefundRequest, error) {
	var refund models.RefundRequest
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).First(&refund, "id = ?", refundID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRefundNotFound
			}
			return err
		}
		if refund.Status != models.RefundPending {
			return ErrRefundNotPending
		}

		now := time.Now()
		refund.Status = next
		refund.AdminNote = adminNote
		refund.ProcessedAt = &now
		if err := tx.Save(&refund).Error; err != nil {
			return err
		}

		if extra != nil {
			return extra(tx, &refund)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &refund, nil
}
