package routes

import (
	"github.com/Hieupu/ATPS-BE-sub002/handlers"
	"github.com/Hieupu/ATPS-BE-sub002/middleware"
	"github.com/gofiber/fiber/v2"
)

func InstructorRoutes(app *fiber.App, h *handlers.AvailabilityHandler) {
	api := app.Group("/api/v1")

	api.Get("/instructors/:id/availability", middleware.Protected(), h.GetAvailability)
	api.Post("/instructors/:id/availability", middleware.Protected(), middleware.InstructorRequired(), h.SaveAvailability)
}
