package handlers

import (
	"errors"
	"strings"

	"github.com/Hieupu/ATPS-BE-sub002/models"
	"github.com/Hieupu/ATPS-BE-sub002/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AvailabilityHandler struct {
	db           *gorm.DB
	availability *services.AvailabilityService
}

func NewAvailabilityHandler(db *gorm.DB, availability *services.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{db: db, availability: availability}
}

func (h *AvailabilityHandler) GetAvailability(c *fiber.Ctx) error {
	instructorID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid instructor ID"})
	}
	startDate := c.Query("startDate")
	endDate := c.Query("endDate")
	if startDate == "" || endDate == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "startDate and endDate are required"})
	}

	window, err := h.availability.GetAvailability(instructorID, startDate, endDate)
	if err != nil {
		if errors.Is(err, services.ErrInvalidDateRange) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load availability"})
	}

	return c.JSON(window)
}

type SlotRequest struct {
	Date       string  `json:"date" validate:"required,datetime=2006-01-02"`
	TimeslotID string  `json:"timeslotId" validate:"required,uuid"`
	Status     string  `json:"status,omitempty"`
	Note       *string `json:"note,omitempty"`
}

type SaveAvailabilityRequest struct {
	StartDate      string        `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate        string        `json:"endDate" validate:"required,datetime=2006-01-02"`
	Slots          []SlotRequest `json:"slots" validate:"dive"`
	InstructorType string        `json:"instructorType,omitempty" validate:"omitempty,oneof=fulltime parttime"`
}

func (h *AvailabilityHandler) SaveAvailability(c *fiber.Ctx) error {
	instructorID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid instructor ID"})
	}

	var req SaveAvailabilityRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	instructorType := req.InstructorType
	if instructorType == "" {
		var instructor models.Instructor
		if err := h.db.First(&instructor, "id = ?", instructorID).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Instructor not found"})
		}
		instructorType = instructor.Type
	}

	slots := make([]services.SlotSubmission, 0, len(req.Slots))
	for _, sr := range req.Slots {
		tid, err := uuid.Parse(sr.TimeslotID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid timeslot ID: " + sr.TimeslotID})
		}

		status := models.SlotStatus(strings.ToUpper(sr.Status))
		switch status {
		case "", models.SlotAvailable, models.SlotHoliday:
		case models.SlotBooked:
			// Booked slots are owned by the scheduler; submissions cannot set
			// them directly.
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Slot status OTHER cannot be submitted"})
		default:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid slot status: " + sr.Status})
		}

		slots = append(slots, services.SlotSubmission{
			Date:       sr.Date,
			TimeslotID: tid,
			Status:     status,
			Note:       sr.Note,
		})
	}

	count, err := h.availability.SaveAvailability(instructorID, req.StartDate, req.EndDate, slots, instructorType)
	if err != nil {
		if errors.Is(err, services.ErrInvalidDateRange) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save availability"})
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"message":    "Availability saved",
		"slotsCount": count,
	})
}
