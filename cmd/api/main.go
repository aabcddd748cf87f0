package main

import (
	"log"
	"time"

	"github.com/Hieupu/ATPS-BE-sub002/database"
	"github.com/Hieupu/ATPS-BE-sub002/handlers"
	"github.com/Hieupu/ATPS-BE-sub002/jobs"
	"github.com/Hieupu/ATPS-BE-sub002/meetings"
	"github.com/Hieupu/ATPS-BE-sub002/notifications"
	"github.com/Hieupu/ATPS-BE-sub002/payments"
	"github.com/Hieupu/ATPS-BE-sub002/routes"
	"github.com/Hieupu/ATPS-BE-sub002/services"
	ws "github.com/Hieupu/ATPS-BE-sub002/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/robfig/cron/v3"
)

func main() {
	db, err := database.Connect()
	if err != nil {
		log.Fatalf("🔥 %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("🔥 %v", err)
	}
	database.SeedAdmin(db)
	database.SeedTimeslots(db)

	hub := ws.NewHub()
	go hub.Run()

	emailService := notifications.NewEmailService()
	notifier := notifications.NewService(db, hub)
	gateway := payments.NewPayOSService()
	zoom := meetings.NewZoomService()

	availabilityService := services.NewAvailabilityService(db)
	receiptService := services.NewReceiptService(db)
	paymentService := services.NewPaymentService(db, emailService, notifier, availabilityService, receiptService)
	enrollmentService := services.NewEnrollmentService(db, gateway, notifier)
	refundService := services.NewRefundService(db, notifier)

	c := cron.New()
	poller := jobs.NewPaymentPoller(db, paymentService, gateway)
	reminder := jobs.NewSessionReminder(db, emailService)
	c.AddFunc("*/10 * * * *", poller.Run)
	c.AddFunc("0 8 * * *", reminder.Run)
	go c.Start()
	log.Println("✅ Cron jobs scheduled successfully.")

	app := fiber.New(fiber.Config{
		Prefork:           false,
		AppName:           "ATPS Backend",
		CaseSensitive:     true,
		StrictRouting:     true,
		EnablePrintRoutes: true,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}

			log.Printf("[ERROR] %v | Path: %s | Method: %s", err, c.Path(), c.Method())
			return c.Status(code).JSON(fiber.Map{
				"status":  "error",
				"code":    code,
				"message": err.Error(),
			})
		},
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowMethods:  "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders: "Content-Length, Authorization",
		MaxAge:        86400,
	}))

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "success",
			"message": "Welcome to ATPS API",
		})
	})

	routes.AuthRoutes(app, handlers.NewAuthHandler(db))
	routes.CourseRoutes(app, handlers.NewCourseHandler(db))
	routes.ClassRoutes(app,
		handlers.NewClassHandler(db, availabilityService, zoom),
		handlers.NewAttendanceHandler(db))
	routes.EnrollmentRoutes(app, handlers.NewEnrollmentHandler(db, enrollmentService))
	routes.PaymentRoutes(app, handlers.NewPaymentHandler(paymentService, gateway))
	routes.InstructorRoutes(app, handlers.NewAvailabilityHandler(db, availabilityService))
	routes.RefundRoutes(app, handlers.NewRefundHandler(db, refundService))
	routes.NotificationRoutes(app, handlers.NewNotificationHandler(db), hub)
	routes.UploadRoutes(app)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	log.Println("✅ Server is running on port 8080")
	if err := app.Listen(":8080"); err != nil {
		log.Fatalf("🔥 Server failed to start: %v", err)
	}
}
