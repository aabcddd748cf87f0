package handlers

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/Hieupu/ATPS-BE-sub002/meetings"
	"github.com/Hieupu/ATPS-BE-sub002/models"
	"github.com/Hieupu/ATPS-BE-sub002/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ClassHandler struct {
	db           *gorm.DB
	availability *services.AvailabilityService
	zoom         *meetings.ZoomService
}

func NewClassHandler(db *gorm.DB, availability *services.AvailabilityService, zoom *meetings.ZoomService) *ClassHandler {
	return &ClassHandler{db: db, availability: availability, zoom: zoom}
}

type ClassRequest struct {
	CourseID     string  `json:"course_id" validate:"required,uuid"`
	InstructorID string  `json:"instructor_id" validate:"required,uuid"`
	Name         string  `json:"name" validate:"required"`
	Fee          float64 `json:"fee" validate:"gte=0"`
	MaxLearners  int     `json:"max_learners" validate:"gte=1"`
}

func (h *ClassHandler) CreateClass(c *fiber.Ctx) error {
	var req ClassRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	courseID, _ := uuid.Parse(req.CourseID)
	instructorID, _ := uuid.Parse(req.InstructorID)

	var course models.Course
	if err := h.db.First(&course, "id = ? AND status = ?", courseID, models.CoursePublished).Error; err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Classes can only be created for published courses"})
	}
	var instructor models.Instructor
	if err := h.db.First(&instructor, "id = ?", instructorID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Instructor not found"})
	}

	class := models.Class{
		CourseID:     courseID,
		InstructorID: instructorID,
		Name:         req.Name,
		Fee:          req.Fee,
		Status:       models.ClassOpen,
		MaxLearners:  req.MaxLearners,
	}
	if err := h.db.Create(&class).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create class"})
	}

	return c.Status(fiber.StatusCreated).JSON(class)
}

func (h *ClassHandler) ListClasses(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit := c.QueryInt("limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}

	q := h.db.Model(&models.Class{}).Preload("Course").Preload("Instructor.Account")
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var classes []models.Class
	q.Order("created_at desc").Offset((page - 1) * limit).Limit(limit).Find(&classes)

	return c.JSON(classes)
}

func (h *ClassHandler) GetClass(c *fiber.Ctx) error {
	var class models.Class
	err := h.db.Preload("Course").Preload("Instructor.Account").First(&class, "id = ?", c.Params("classId")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Class not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	var sessions []models.Session
	h.db.Where("class_id = ?", class.ID).Order("date").Find(&sessions)

	return c.JSON(fiber.Map{"class": class, "sessions": sessions})
}

type ScheduleSessionRequest struct {
	Date       string  `json:"date" validate:"required,datetime=2006-01-02"`
	TimeslotID string  `json:"timeslot_id" validate:"required,uuid"`
	Topic      *string `json:"topic,omitempty"`
}

// ScheduleSession books a session into an instructor slot. The slot flips
// AVAILABLE -> OTHER; slot bookkeeping failures are logged, never fatal to
// the scheduling flow. The Zoom meeting is best-effort too.
func (h *ClassHandler) ScheduleSession(c *fiber.Ctx) error {
	classID, err := uuid.Parse(c.Params("classId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid class ID"})
	}

	var req ScheduleSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	timeslotID, _ := uuid.Parse(req.TimeslotID)

	var class models.Class
	if err := h.db.First(&class, "id = ?", classID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Class not found"})
	}

	var timeslot models.Timeslot
	if err := h.db.First(&timeslot, "id = ?", timeslotID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Timeslot not found"})
	}

	var session models.Session
	err = h.db.Transaction(func(tx *gorm.DB) error {
		session = models.Session{
			ClassID: classID,
			Topic:   req.Topic,
			Date:    req.Date,
			Status:  models.SessionScheduled,
		}
		if err := tx.Create(&session).Error; err != nil {
			return err
		}
		link := models.SessionTimeslot{SessionID: session.ID, TimeslotID: timeslotID}
		return tx.Create(&link).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to schedule session"})
	}

	if err := h.availability.MarkSlotAsBooked(class.InstructorID, timeslotID, req.Date); err != nil {
		log.Printf("🔥 Failed to mark slot booked for session %s: %v", session.ID, err)
	}

	go h.attachZoomMeeting(session, class, timeslot)

	return c.Status(fiber.StatusCreated).JSON(session)
}

func (h *ClassHandler) attachZoomMeeting(session models.Session, class models.Class, timeslot models.Timeslot) {
	startTime, err := time.Parse("2006-01-02 15:04", session.Date+" "+timeslot.StartTime)
	if err != nil {
		log.Printf("🔥 Bad session start time for %s: %v", session.ID, err)
		return
	}

	topic := class.Name
	if session.Topic != nil {
		topic = fmt.Sprintf("%s - %s", class.Name, *session.Topic)
	}

	meeting, err := h.zoom.CreateMeeting(topic, startTime, 90)
	if err != nil {
		log.Printf("🔥 Failed to create Zoom meeting for session %s: %v", session.ID, err)
		return
	}

	meetingID := strconv.FormatInt(meeting.ID, 10)
	err = h.db.Model(&models.Session{}).Where("id = ?", session.ID).
		Updates(map[string]interface{}{"zoom_meeting_id": meetingID, "zoom_join_url": meeting.JoinURL}).Error
	if err != nil {
		log.Printf("🔥 Failed to save Zoom meeting for session %s: %v", session.ID, err)
	}
}

// CancelSession releases the instructor slot (OTHER -> AVAILABLE) and tears
// down the Zoom meeting, both best-effort.
func (h *ClassHandler) CancelSession(c *fiber.Ctx) error {
	sessionID := c.Params("sessionId")

	var session models.Session
	if err := h.db.Preload("Class").First(&session, "id = ?", sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Session not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}
	if session.Status == models.SessionCancelled {
		return c.JSON(fiber.Map{"message": "Session already cancelled"})
	}

	var links []models.SessionTimeslot
	h.db.Where("session_id = ?", session.ID).Find(&links)

	session.Status = models.SessionCancelled
	if err := h.db.Save(&session).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to cancel session"})
	}

	for _, link := range links {
		if err := h.availability.MarkSlotAsAvailable(session.Class.InstructorID, link.TimeslotID, session.Date); err != nil {
			log.Printf("🔥 Failed to release slot for cancelled session %s: %v", session.ID, err)
		}
	}

	if session.ZoomMeetingID != nil {
		go func(meetingID string) {
			if err := h.zoom.DeleteMeeting(meetingID); err != nil {
				log.Printf("🔥 Failed to delete Zoom meeting %s: %v", meetingID, err)
			}
		}(*session.ZoomMeetingID)
	}

	return c.JSON(fiber.Map{"message": "Session cancelled"})
}
