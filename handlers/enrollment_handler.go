package handlers

import (
	"errors"

	"github.com/Hieupu/ATPS-BE-sub002/models"
	"github.com/Hieupu/ATPS-BE-sub002/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EnrollmentHandler struct {
	db          *gorm.DB
	enrollments *services.EnrollmentService
}

func NewEnrollmentHandler(db *gorm.DB, enrollments *services.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{db: db, enrollments: enrollments}
}

func (h *EnrollmentHandler) learnerID(c *fiber.Ctx) (uuid.UUID, error) {
	accountID := accountIDFromToken(c)
	var learner models.Learner
	if err := h.db.First(&learner, "account_id = ?", accountID).Error; err != nil {
		return uuid.Nil, err
	}
	return learner.ID, nil
}

type CreateEnrollmentRequest struct {
	ClassID string `json:"class_id" validate:"required,uuid"`
}

func (h *EnrollmentHandler) CreateEnrollment(c *fiber.Ctx) error {
	learnerID, err := h.learnerID(c)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Learner profile not found"})
	}

	var req CreateEnrollmentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	classID, _ := uuid.Parse(req.ClassID)

	result, err := h.enrollments.EnrollInClass(learnerID, classID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrClassNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Class not found"})
		case errors.Is(err, services.ErrClassNotOpen), errors.Is(err, services.ErrClassFull):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, services.ErrAlreadyEnrolled):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create enrollment"})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(result)
}

type OneOnOneEnrollmentRequest struct {
	CourseID     string `json:"course_id" validate:"required,uuid"`
	InstructorID string `json:"instructor_id" validate:"required,uuid"`
	TimeslotID   string `json:"timeslot_id" validate:"required,uuid"`
	Date         string `json:"date" validate:"required,datetime=2006-01-02"`
}

func (h *EnrollmentHandler) CreateOneOnOneEnrollment(c *fiber.Ctx) error {
	learnerID, err := h.learnerID(c)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Learner profile not found"})
	}

	var req OneOnOneEnrollmentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	courseID, _ := uuid.Parse(req.CourseID)
	instructorID, _ := uuid.Parse(req.InstructorID)
	timeslotID, _ := uuid.Parse(req.TimeslotID)

	result, err := h.enrollments.EnrollOneOnOne(learnerID, courseID, instructorID, timeslotID, req.Date)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCourseNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Published course not found"})
		case errors.Is(err, services.ErrSlotUnavailable):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create 1-on-1 enrollment"})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(result)
}

func (h *EnrollmentHandler) GetMyEnrollments(c *fiber.Ctx) error {
	learnerID, err := h.learnerID(c)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Learner profile not found"})
	}

	var enrollments []models.Enrollment
	h.db.Preload("Class.Course").
		Where("learner_id = ?", learnerID).
		Order("enrollment_date desc").
		Find(&enrollments)

	return c.JSON(enrollments)
}

func (h *EnrollmentHandler) GetEnrollment(c *fiber.Ctx) error {
	enrollmentID := c.Params("enrollmentId")

	var enrollment models.Enrollment
	err := h.db.Preload("Class").Preload("Learner.Account").First(&enrollment, "id = ?", enrollmentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Enrollment not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	return c.JSON(enrollment)
}
