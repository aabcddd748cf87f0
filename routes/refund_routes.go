package routes

import (
	"github.com/Hieupu/ATPS-BE-sub002/handlers"
	"github.com/Hieupu/ATPS-BE-sub002/middleware"
	"github.com/gofiber/fiber/v2"
)

func RefundRoutes(app *fiber.App, h *handlers.RefundHandler) {
	api := app.Group("/api/v1")

	refunds := api.Group("/refunds", middleware.Protected())
	refunds.Post("", h.CreateRefund)
	refunds.Post("/:refundId/cancel", h.CancelRefund)

	admin := api.Group("/admin/refunds", middleware.Protected(), middleware.AdminRequired())
	admin.Get("", h.ListRefunds)
	admin.Post("/:refundId/approve", h.ApproveRefund)
	admin.Post("/:refundId/reject", h.RejectRefund)
}
