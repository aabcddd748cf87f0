package routes

import (
	"github.com/Hieupu/ATPS-BE-sub002/handlers"
	"github.com/Hieupu/ATPS-BE-sub002/middleware"
	"github.com/gofiber/fiber/v2"
)

func PaymentRoutes(app *fiber.App, h *handlers.PaymentHandler) {
	api := app.Group("/api/v1")

	// Webhook and reconciliation are gateway-facing, not user-facing.
	api.Post("/payments/webhook", h.HandleWebhook)
	api.Post("/payments/update-status", h.UpdatePaymentStatus)

	api.Get("/payments/:orderCode/status", middleware.Protected(), h.GetPaymentStatus)
}

func EnrollmentRoutes(app *fiber.App, h *handlers.EnrollmentHandler) {
	api := app.Group("/api/v1")

	enrollments := api.Group("/enrollments", middleware.Protected())
	enrollments.Get("/me", h.GetMyEnrollments)
	enrollments.Post("", h.CreateEnrollment)
	enrollments.Post("/one-on-one", h.CreateOneOnOneEnrollment)
	enrollments.Get("/:enrollmentId", h.GetEnrollment)
}
