package jobs

import (
	"context"
	"log"
	"time"

	"github.com/Hieupu/ATPS-BE-sub002/models"
	"github.com/Hieupu/ATPS-BE-sub002/payments"
	"github.com/Hieupu/ATPS-BE-sub002/services"
	"gorm.io/gorm"
)

const (
	staleAfter  = 30 * time.Minute
	abandonedAt = 24 * time.Hour
	pollBatch   = 50
)

// PaymentPoller sweeps Pending enrollments whose checkout link may have
// settled without the webhook arriving, and feeds them through the same
// reconciliation core the webhook uses. Racing the webhook is safe; the
// core's idempotency guards make the second caller a no-op.
type PaymentPoller struct {
	db       *gorm.DB
	payments *services.PaymentService
	gateway  *payments.PayOSService
}

func NewPaymentPoller(db *gorm.DB, paymentService *services.PaymentService, gateway *payments.PayOSService) *PaymentPoller {
	return &PaymentPoller{db: db, payments: paymentService, gateway: gateway}
}

func (j *PaymentPoller) Run() {
	log.Println("Running job: PaymentPoller...")

	cutoff := time.Now().Add(-staleAfter)
	var stale []models.Enrollment
	err := j.db.
		Where("status = ? AND created_at < ?", models.EnrollmentPending, cutoff).
		Order("created_at").
		Limit(pollBatch).
		Find(&stale).Error
	if err != nil {
		log.Printf("Error loading stale enrollments: %v", err)
		return
	}
	if len(stale) == 0 {
		log.Println("No stale pending enrollments found.")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	for _, enrollment := range stale {
		link, err := j.gateway.GetPaymentLinkInformation(enrollment.OrderCode)
		if err != nil {
			log.Printf("Error polling gateway for order %d: %v", enrollment.OrderCode, err)
			continue
		}

		switch link.Status {
		case payments.GatewayPaid:
			if _, err := j.payments.UpdatePaymentStatus(ctx, enrollment.OrderCode, string(models.PaymentSucceeded), float64(link.Amount)); err != nil {
				log.Printf("🔥 Poll reconciliation failed for order %d: %v", enrollment.OrderCode, err)
			}
		case payments.GatewayCancelled, payments.GatewayExpired:
			if _, err := j.payments.UpdatePaymentStatus(ctx, enrollment.OrderCode, string(models.PaymentCancelled), 0); err != nil {
				log.Printf("🔥 Poll cleanup failed for order %d: %v", enrollment.OrderCode, err)
			}
		case payments.GatewayPending:
			if time.Since(enrollment.CreatedAt) < abandonedAt {
				continue
			}
			// Abandoned checkout: close the link, then clean up.
			if err := j.gateway.CancelPaymentLink(enrollment.OrderCode, "enrollment abandoned"); err != nil {
				log.Printf("Error cancelling payment link for order %d: %v", enrollment.OrderCode, err)
			}
			if _, err := j.payments.UpdatePaymentStatus(ctx, enrollment.OrderCode, string(models.PaymentCancelled), 0); err != nil {
				log.Printf("🔥 Abandoned cleanup failed for order %d: %v", enrollment.OrderCode, err)
			}
		}
	}

	log.Printf("PaymentPoller processed %d stale enrollment(s).", len(stale))
}
