package handlers

import (
	"github.com/Hieupu/ATPS-BE-sub002/models"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type NotificationHandler struct {
	db *gorm.DB
}

func NewNotificationHandler(db *gorm.DB) *NotificationHandler {
	return &NotificationHandler{db: db}
}

func (h *NotificationHandler) ListMine(c *fiber.Ctx) error {
	accountID := accountIDFromToken(c)

	var notifications []models.Notification
	h.db.Where("account_id = ?", accountID).
		Order("created_at desc").
		Limit(100).
		Find(&notifications)

	return c.JSON(notifications)
}

func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	accountID := accountIDFromToken(c)

	res := h.db.Model(&models.Notification{}).
		Where("id = ? AND account_id = ?", c.Params("notificationId"), accountID).
		Update("is_read", true)
	if res.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update notification"})
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Notification not found"})
	}

	return c.JSON(fiber.Map{"message": "Notification marked as read"})
}

func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	accountID := accountIDFromToken(c)

	err := h.db.Model(&models.Notification{}).
		Where("account_id = ? AND is_read = ?", accountID, false).
		Update("is_read", true).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update notifications"})
	}

	return c.JSON(fiber.Map{"message": "All notifications marked as read"})
}
