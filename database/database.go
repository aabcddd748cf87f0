package database

import (
	"fmt"
	"log"

	config "github.com/Hieupu/ATPS-BE-sub002/configs"
	"github.com/Hieupu/ATPS-BE-sub002/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Connect opens the Postgres pool and hands the handle back to the caller;
// services receive it through their constructors instead of a package global.
func Connect() (*gorm.DB, error) {
	dsn := config.Config("DATABASE_URL")

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		PrepareStmt:                              false,
		SkipDefaultTransaction:                   true,
		DisableForeignKeyConstraintWhenMigrating: true,
		DisableNestedTransaction:                 true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	fmt.Println("✅ Database connected successfully")
	return db, nil
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Account{},
		&models.Learner{},
		&models.Instructor{},
		&models.Course{},
		&models.Unit{},
		&models.Lesson{},
		&models.Material{},
		&models.Class{},
		&models.Timeslot{},
		&models.Session{},
		&models.SessionTimeslot{},
		&models.Enrollment{},
		&models.Payment{},
		&models.RefundRequest{},
		&models.Attendance{},
		&models.Notification{},
		&models.InstructorTimeslot{},
	)
	if err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	fmt.Println("✅ Database migration successful")
	return nil
}

func SeedAdmin(db *gorm.DB) {
	adminEmail := config.Config("ADMIN_EMAIL")
	adminPassword := config.Config("ADMIN_PASSWORD")

	var count int64
	if err := db.Model(&models.Account{}).Where("email = ?", adminEmail).Count(&count).Error; err != nil {
		log.Fatalf("🔥 Failed to check for admin account: %v", err)
		return
	}

	if count > 0 {
		log.Println("Admin account already exists.")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("🔥 Failed to hash admin password: %v", err)
		return
	}

	admin := models.Account{
		FullName: config.Config("ADMIN_FULL_NAME"),
		Email:    adminEmail,
		Password: string(hashedPassword),
		Role:     models.RoleAdmin,
	}

	if err := db.Create(&admin).Error; err != nil {
		log.Fatalf("🔥 Failed to seed admin account: %v", err)
		return
	}

	log.Println("✅ Admin account seeded successfully")
}

// defaultTimeslots are the four fixed daily teaching slots.
var defaultTimeslots = [][2]string{
	{"08:00", "09:30"},
	{"10:00", "11:30"},
	{"14:00", "15:30"},
	{"19:00", "20:30"},
}

func SeedTimeslots(db *gorm.DB) {
	var count int64
	if err := db.Model(&models.Timeslot{}).Count(&count).Error; err != nil {
		log.Fatalf("🔥 Failed to check timeslots: %v", err)
		return
	}
	if count > 0 {
		return
	}

	for _, ts := range defaultTimeslots {
		slot := models.Timeslot{StartTime: ts[0], EndTime: ts[1]}
		if err := db.Create(&slot).Error; err != nil {
			log.Fatalf("🔥 Failed to seed timeslot %s-%s: %v", ts[0], ts[1], err)
			return
		}
	}
	log.Println("✅ Default timeslots seeded")
}
