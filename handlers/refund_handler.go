package handlers

import (
	"errors"

	"github.com/Hieupu/ATPS-BE-sub002/models"
	"github.com/Hieupu/ATPS-BE-sub002/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RefundHandler struct {
	db      *gorm.DB
	refunds *services.RefundService
}

func NewRefundHandler(db *gorm.DB, refunds *services.RefundService) *RefundHandler {
	return &RefundHandler{db: db, refunds: refunds}
}

func (h *RefundHandler) learnerID(c *fiber.Ctx) (uuid.UUID, error) {
	accountID := accountIDFromToken(c)
	var learner models.Learner
	if err := h.db.First(&learner, "account_id = ?", accountID).Error; err != nil {
		return uuid.Nil, err
	}
	return learner.ID, nil
}

type CreateRefundRequest struct {
	EnrollmentID string `json:"enrollment_id" validate:"required,uuid"`
	Reason       string `json:"reason" validate:"required"`
}

func (h *RefundHandler) CreateRefund(c *fiber.Ctx) error {
	learnerID, err := h.learnerID(c)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Learner profile not found"})
	}

	var req CreateRefundRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	enrollmentID, _ := uuid.Parse(req.EnrollmentID)

	refund, err := h.refunds.Create(learnerID, enrollmentID, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrRefundEnrollmentNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Enrollment not found"})
		case errors.Is(err, services.ErrRefundNotOwner):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "This is not your enrollment"})
		case errors.Is(err, services.ErrRefundNotEligible):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, services.ErrRefundAlreadyPending):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create refund request"})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(refund)
}

type ProcessRefundRequest struct {
	AdminNote *string `json:"admin_note,omitempty"`
}

func (h *RefundHandler) ApproveRefund(c *fiber.Ctx) error {
	return h.process(c, h.refunds.Approve)
}

func (h *RefundHandler) RejectRefund(c *fiber.Ctx) error {
	return h.process(c, h.refunds.Reject)
}

func (h *RefundHandler) process(c *fiber.Ctx, fn func(uuid.UUID, *string) (*models.RefundRequest, error)) error {
	refundID, err := uuid.Parse(c.Params("refundId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid refund ID"})
	}

	var req ProcessRefundRequest
	_ = c.BodyParser(&req)

	refund, err := fn(refundID, req.AdminNote)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrRefundNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Refund request not found"})
		case errors.Is(err, services.ErrRefundNotPending):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process refund request"})
		}
	}

	return c.JSON(refund)
}

func (h *RefundHandler) CancelRefund(c *fiber.Ctx) error {
	learnerID, err := h.learnerID(c)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Learner profile not found"})
	}

	refundID, err := uuid.Parse(c.Params("refundId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid refund ID"})
	}

	refund, err := h.refunds.Cancel(learnerID, refundID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrRefundNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Refund request not found"})
		case errors.Is(err, services.ErrRefundNotOwner):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "This is not your refund request"})
		case errors.Is(err, services.ErrRefundNotPending):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to cancel refund request"})
		}
	}

	return c.JSON(refund)
}

func (h *RefundHandler) ListRefunds(c *fiber.Ctx) error {
	refunds, err := h.refunds.ListByStatus(models.RefundStatus(c.Query("status")))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list refund requests"})
	}

	return c.JSON(refunds)
}
