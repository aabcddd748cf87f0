package routes

import (
	"github.com/Hieupu/ATPS-BE-sub002/handlers"
	"github.com/Hieupu/ATPS-BE-sub002/middleware"
	"github.com/gofiber/fiber/v2"
)

func CourseRoutes(app *fiber.App, h *handlers.CourseHandler) {
	api := app.Group("/api/v1")

	api.Get("/courses", h.ListCourses)
	api.Get("/courses/:courseId", h.GetCourse)

	admin := api.Group("/courses", middleware.Protected(), middleware.AdminRequired())
	admin.Post("", h.CreateCourse)
	admin.Put("/:courseId", h.UpdateCourse)
	admin.Patch("/:courseId/status", h.TransitionCourse)
	admin.Delete("/:courseId", h.DeleteCourse)

	admin.Post("/:courseId/units", h.CreateUnit)

	units := api.Group("/units", middleware.Protected(), middleware.AdminRequired())
	units.Post("/:unitId/lessons", h.CreateLesson)
	units.Delete("/:unitId", h.DeleteUnit)

	lessons := api.Group("/lessons", middleware.Protected(), middleware.AdminRequired())
	lessons.Post("/:lessonId/materials", h.CreateMaterial)
	lessons.Delete("/:lessonId", h.DeleteLesson)

	materials := api.Group("/materials", middleware.Protected(), middleware.AdminRequired())
	materials.Delete("/:materialId", h.DeleteMaterial)
}
