package services

import (
	"fmt"
	"testing"

	"github.com/Hieupu/ATPS-BE-sub002/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens an isolated in-memory database migrated with the full
// schema. cache=shared keeps every pooled connection on the same database.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	err = db.AutoMigrate(
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
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}
