package handlers

import (
	"errors"
	"strings"

	"github.com/Hieupu/ATPS-BE-sub002/models"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CourseHandler struct {
	db *gorm.DB
}

func NewCourseHandler(db *gorm.DB) *CourseHandler {
	return &CourseHandler{db: db}
}

type CourseRequest struct {
	Title       string  `json:"title" validate:"required"`
	Description *string `json:"description,omitempty"`
	Level       *string `json:"level,omitempty"`
	Fee         float64 `json:"fee" validate:"gte=0"`
}

func (h *CourseHandler) CreateCourse(c *fiber.Ctx) error {
	var req CourseRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	course := models.Course{
		Title:       req.Title,
		Description: req.Description,
		Level:       req.Level,
		Fee:         req.Fee,
		Status:      models.CourseDraft,
	}
	if err := h.db.Create(&course).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create course"})
	}

	return c.Status(fiber.StatusCreated).JSON(course)
}

func (h *CourseHandler) ListCourses(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit := c.QueryInt("limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}

	q := h.db.Model(&models.Course{})
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", strings.ToUpper(status))
	}

	var total int64
	q.Count(&total)

	var courses []models.Course
	q.Order("created_at desc").Offset((page - 1) * limit).Limit(limit).Find(&courses)

	return c.JSON(fiber.Map{"courses": courses, "total": total, "page": page})
}

func (h *CourseHandler) GetCourse(c *fiber.Ctx) error {
	var course models.Course
	err := h.db.Preload("Units.Lessons.Materials").First(&course, "id = ?", c.Params("courseId")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Course not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	return c.JSON(course)
}

func (h *CourseHandler) UpdateCourse(c *fiber.Ctx) error {
	var course models.Course
	if err := h.db.First(&course, "id = ?", c.Params("courseId")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Course not found"})
	}
	if course.Status == models.CoursePublished {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Published courses cannot be edited"})
	}

	var req CourseRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	course.Title = req.Title
	course.Description = req.Description
	course.Level = req.Level
	course.Fee = req.Fee
	if err := h.db.Save(&course).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update course"})
	}

	return c.JSON(course)
}

type CourseTransitionRequest struct {
	Status string `json:"status" validate:"required"`
}

// TransitionCourse moves a course along its lifecycle; anything outside the
// allowed edges is rejected.
func (h *CourseHandler) TransitionCourse(c *fiber.Ctx) error {
	var req CourseTransitionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	next := models.CourseStatus(strings.ToUpper(req.Status))

	var course models.Course
	if err := h.db.First(&course, "id = ?", c.Params("courseId")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Course not found"})
	}

	if !course.Status.CanTransitionTo(next) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid course status transition: " + string(course.Status) + " -> " + string(next),
		})
	}

	course.Status = next
	if err := h.db.Save(&course).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update course status"})
	}

	return c.JSON(course)
}

func (h *CourseHandler) DeleteCourse(c *fiber.Ctx) error {
	res := h.db.Delete(&models.Course{}, "id = ?", c.Params("courseId"))
	if res.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete course"})
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Course not found"})
	}

	return c.JSON(fiber.Map{"message": "Course deleted"})
}

type UnitRequest struct {
	Title      string `json:"title" validate:"required"`
	OrderIndex int    `json:"order_index"`
}

func (h *CourseHandler) CreateUnit(c *fiber.Ctx) error {
	courseID, err := uuid.Parse(c.Params("courseId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid course ID"})
	}

	var course models.Course
	if err := h.db.First(&course, "id = ?", courseID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Course not found"})
	}

	var req UnitRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	unit := models.Unit{CourseID: courseID, Title: req.Title, OrderIndex: req.OrderIndex}
	if err := h.db.Create(&unit).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create unit"})
	}

	return c.Status(fiber.StatusCreated).JSON(unit)
}

func (h *CourseHandler) DeleteUnit(c *fiber.Ctx) error {
	res := h.db.Delete(&models.Unit{}, "id = ?", c.Params("unitId"))
	if res.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete unit"})
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Unit not found"})
	}

	return c.JSON(fiber.Map{"message": "Unit deleted"})
}

type LessonRequest struct {
	Title    string  `json:"title" validate:"required"`
	Content  *string `json:"content,omitempty"`
	Duration int     `json:"duration" validate:"gte=0"`
}

func (h *CourseHandler) CreateLesson(c *fiber.Ctx) error {
	unitID, err := uuid.Parse(c.Params("unitId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid unit ID"})
	}

	var unit models.Unit
	if err := h.db.First(&unit, "id = ?", unitID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Unit not found"})
	}

	var req LessonRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	lesson := models.Lesson{UnitID: unitID, Title: req.Title, Content: req.Content, Duration: req.Duration}
	if err := h.db.Create(&lesson).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create lesson"})
	}

	return c.Status(fiber.StatusCreated).JSON(lesson)
}

func (h *CourseHandler) DeleteLesson(c *fiber.Ctx) error {
	res := h.db.Delete(&models.Lesson{}, "id = ?", c.Params("lessonId"))
	if res.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete lesson"})
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Lesson not found"})
	}

	return c.JSON(fiber.Map{"message": "Lesson deleted"})
}

type MaterialRequest struct {
	Title   string `json:"title" validate:"required"`
	FileURL string `json:"file_url" validate:"required,url"`
	Type    string `json:"type,omitempty"`
}

func (h *CourseHandler) CreateMaterial(c *fiber.Ctx) error {
	lessonID, err := uuid.Parse(c.Params("lessonId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid lesson ID"})
	}

	var lesson models.Lesson
	if err := h.db.First(&lesson, "id = ?", lessonID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Lesson not found"})
	}

	var req MaterialRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	material := models.Material{LessonID: lessonID, Title: req.Title, FileURL: req.FileURL, Type: req.Type}
	if material.Type == "" {
		material.Type = "document"
	}
	if err := h.db.Create(&material).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create material"})
	}

	return c.Status(fiber.StatusCreated).JSON(material)
}

func (h *CourseHandler) DeleteMaterial(c *fiber.Ctx) error {
	res := h.db.Delete(&models.Material{}, "id = ?", c.Params("materialId"))
	if res.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete material"})
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Material not found"})
	}

	return c.JSON(fiber.Map{"message": "Material deleted"})
}
