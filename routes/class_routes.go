package routes

import (
	"github.com/Hieupu/ATPS-BE-sub002/handlers"
	"github.com/Hieupu/ATPS-BE-sub002/middleware"
	"github.com/gofiber/fiber/v2"
)

func ClassRoutes(app *fiber.App, classes *handlers.ClassHandler, attendance *handlers.AttendanceHandler) {
	api := app.Group("/api/v1")

	api.Get("/classes", classes.ListClasses)
	api.Get("/classes/:classId", classes.GetClass)

	admin := api.Group("/classes", middleware.Protected(), middleware.AdminRequired())
	admin.Post("", classes.CreateClass)
	admin.Post("/:classId/sessions", classes.ScheduleSession)

	sessions := api.Group("/sessions", middleware.Protected())
	sessions.Delete("/:sessionId", middleware.AdminRequired(), classes.CancelSession)
	sessions.Get("/:sessionId/attendance", attendance.GetSessionAttendance)
	sessions.Post("/:sessionId/attendance", middleware.InstructorRequired(), attendance.MarkAttendance)
}
