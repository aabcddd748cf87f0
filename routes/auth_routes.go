package routes

import (
	"github.com/Hieupu/ATPS-BE-sub002/handlers"
	"github.com/Hieupu/ATPS-BE-sub002/middleware"
	"github.com/gofiber/fiber/v2"
)

func AuthRoutes(app *fiber.App, h *handlers.AuthHandler) {
	api := app.Group("/api/v1")

	auth := api.Group("/auth")
	auth.Post("/register", h.Register)
	auth.Post("/login", h.Login)
	auth.Get("/profile", middleware.Protected(), h.GetProfile)
}
