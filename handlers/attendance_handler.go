package handlers

import (
	"strings"

	"github.com/Hieupu/ATPS-BE-sub002/models"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AttendanceHandler struct {
	db *gorm.DB
}

func NewAttendanceHandler(db *gorm.DB) *AttendanceHandler {
	return &AttendanceHandler{db: db}
}

type AttendanceEntry struct {
	LearnerID string  `json:"learner_id" validate:"required,uuid"`
	Status    string  `json:"status" validate:"required"`
	Note      *string `json:"note,omitempty"`
}

type MarkAttendanceRequest struct {
	Entries []AttendanceEntry `json:"entries" validate:"required,min=1,dive"`
}

// MarkAttendance upserts the attendance sheet for one session. Statuses are
// normalized to the canonical upper-case enum at the boundary.
func (h *AttendanceHandler) MarkAttendance(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(c.Params("sessionId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session ID"})
	}

	var session models.Session
	if err := h.db.First(&session, "id = ?", sessionID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Session not found"})
	}

	var req MarkAttendanceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	records := make([]models.Attendance, 0, len(req.Entries))
	for _, entry := range req.Entries {
		status := models.AttendanceStatus(strings.ToUpper(entry.Status))
		switch status {
		case models.AttendancePresent, models.AttendanceAbsent, models.AttendanceLate, models.AttendanceExcused:
		default:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid attendance status: " + entry.Status})
		}

		learnerID, err := uuid.Parse(entry.LearnerID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid learner ID: " + entry.LearnerID})
		}

		records = append(records, models.Attendance{
			SessionID: sessionID,
			LearnerID: learnerID,
			Status:    status,
			Note:      entry.Note,
		})
	}

	err = h.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}, {Name: "learner_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "note", "updated_at"}),
	}).Create(&records).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save attendance"})
	}

	return c.JSON(fiber.Map{"message": "Attendance saved", "count": len(records)})
}

func (h *AttendanceHandler) GetSessionAttendance(c *fiber.Ctx) error {
	sessionID := c.Params("sessionId")

	var records []models.Attendance
	h.db.Preload("Learner.Account").Where("session_id = ?", sessionID).Find(&records)

	return c.JSON(records)
}
