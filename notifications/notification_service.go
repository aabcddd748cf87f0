package notifications

import (
	"log"

	"github.com/Hieupu/ATPS-BE-sub002/models"
	ws "github.com/Hieupu/ATPS-BE-sub002/websocket"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service creates in-app notifications and pushes them to connected clients.
// Every method is fire-and-forget: failures are logged and swallowed so the
// business flow that triggered the notification is never blocked.
type Service struct {
	db  *gorm.DB
	hub *ws.Hub
}

func NewService(db *gorm.DB, hub *ws.Hub) *Service {
	return &Service{db: db, hub: hub}
}

// Notify stores a notification for the account and pushes it live when the
// account has an open connection.
func (s *Service) Notify(accountID uuid.UUID, title, message, ntype string, orderCode *int64) {
	n := models.Notification{
		AccountID: accountID,
		Title:     title,
		Message:   message,
		Type:      ntype,
		OrderCode: orderCode,
	}
	if err := s.db.Create(&n).Error; err != nil {
		log.Printf("🔥 Failed to create notification for %s: %v", accountID, err)
		return
	}

	if s.hub != nil {
		s.hub.Push(accountID, n)
	}
}

// DeletePaymentPending removes the "awaiting payment" notification for an
// order once the payment has reached a terminal state.
func (s *Service) DeletePaymentPending(orderCode int64) {
	err := s.db.Where("order_code = ? AND type = ?", orderCode, models.NotificationPaymentPending).
		Delete(&models.Notification{}).Error
	if err != nil {
		log.Printf("🔥 Failed to delete pending-payment notification for order %d: %v", orderCode, err)
	}
}
