package services

import (
	"errors"
	"testing"

	"github.com/Hieupu/ATPS-BE-sub002/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedInstructor(t *testing.T, db *gorm.DB, instructorType string) models.Instructor {
	t.Helper()
	account := models.Account{Email: uuid.NewString() + "@test.test", Password: "x", FullName: "Huong Le", Role: models.RoleInstructor}
	require.NoError(t, db.Create(&account).Error)
	instructor := models.Instructor{AccountID: account.ID, Type: instructorType}
	require.NoError(t, db.Create(&instructor).Error)
	return instructor
}

func seedTimeslots(t *testing.T, db *gorm.DB, n int) []uuid.UUID {
	t.Helper()
	times := [][2]string{{"08:00", "09:30"}, {"10:00", "11:30"}, {"14:00", "15:30"}, {"19:00", "20:30"}}
	ids := make([]uuid.UUID, 0, n)
	for i := 0; i < n; i++ {
		ts := models.Timeslot{StartTime: times[i][0], EndTime: times[i][1]}
		require.NoError(t, db.Create(&ts).Error)
		ids = append(ids, ts.ID)
	}
	return ids
}

func TestGenerateFulltimeSlots(t *testing.T) {
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New(), uuid.New()}

	t.Run("one week skips sunday", func(t *testing.T) {
		// 2025-01-06 is a Monday, 2025-01-12 the following Sunday.
		slots, err := GenerateFulltimeSlots("2025-01-06", "2025-01-12", nil, ids)
		require.NoError(t, err)
		assert.Len(t, slots, 24)
		for _, s := range slots {
			assert.NotEqual(t, "2025-01-12", s.Date)
			assert.Equal(t, models.SlotAvailable, s.Status)
		}
	})

	t.Run("explicit sunday slot is kept", func(t *testing.T) {
		submitted := []SlotSubmission{{Date: "2025-01-12", TimeslotID: ids[0], Status: models.SlotAvailable}}
		slots, err := GenerateFulltimeSlots("2025-01-06", "2025-01-12", submitted, ids)
		require.NoError(t, err)
		assert.Len(t, slots, 25)
	})

	t.Run("explicit holiday overrides synthesized weekday", func(t *testing.T) {
		submitted := []SlotSubmission{{Date: "2025-01-07", TimeslotID: ids[1], Status: models.SlotHoliday}}
		slots, err := GenerateFulltimeSlots("2025-01-06", "2025-01-12", submitted, ids)
		require.NoError(t, err)
		assert.Len(t, slots, 24)

		var holidays int
		for _, s := range slots {
			if s.Status == models.SlotHoliday {
				holidays++
				assert.Equal(t, "2025-01-07", s.Date)
				assert.Equal(t, ids[1], s.TimeslotID)
			}
		}
		assert.Equal(t, 1, holidays)
	})

	t.Run("inverted window rejected", func(t *testing.T) {
		_, err := GenerateFulltimeSlots("2025-01-12", "2025-01-06", nil, ids)
		assert.True(t, errors.Is(err, ErrInvalidDateRange))
	})
}

func TestSaveAvailabilityPreservesBookedAndHoliday(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAvailabilityService(db)
	instructor := seedInstructor(t, db, models.InstructorParttime)
	ids := seedTimeslots(t, db, 2)

	booked := models.InstructorTimeslot{InstructorID: instructor.ID, TimeslotID: ids[0], Date: "2025-02-03", Status: models.SlotBooked}
	require.NoError(t, db.Create(&booked).Error)
	holiday := models.InstructorTimeslot{InstructorID: instructor.ID, TimeslotID: ids[1], Date: "2025-02-03", Status: models.SlotHoliday}
	require.NoError(t, db.Create(&holiday).Error)
	stale := models.InstructorTimeslot{InstructorID: instructor.ID, TimeslotID: ids[0], Date: "2025-02-04", Status: models.SlotAvailable}
	require.NoError(t, db.Create(&stale).Error)

	// The new submission collides with both protected rows and drops the
	// stale AVAILABLE one.
	submission := []SlotSubmission{
		{Date: "2025-02-03", TimeslotID: ids[0]},
		{Date: "2025-02-03", TimeslotID: ids[1]},
		{Date: "2025-02-05", TimeslotID: ids[0]},
	}
	written, err := svc.SaveAvailability(instructor.ID, "2025-02-03", "2025-02-09", submission, models.InstructorParttime)
	require.NoError(t, err)
	assert.Equal(t, 1, written)

	var rows []models.InstructorTimeslot
	require.NoError(t, db.Where("instructor_id = ?", instructor.ID).Order("date").Find(&rows).Error)
	require.Len(t, rows, 3)

	byKey := map[string]models.SlotStatus{}
	for _, r := range rows {
		byKey[r.Date+"|"+r.TimeslotID.String()] = r.Status
	}
	assert.Equal(t, models.SlotBooked, byKey["2025-02-03|"+ids[0].String()])
	assert.Equal(t, models.SlotHoliday, byKey["2025-02-03|"+ids[1].String()])
	assert.Equal(t, models.SlotAvailable, byKey["2025-02-05|"+ids[0].String()])
	assert.NotContains(t, byKey, "2025-02-04|"+ids[0].String(), "unsubmitted AVAILABLE row must be dropped")
}

func TestSaveAvailabilityFulltimeExpansion(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAvailabilityService(db)
	instructor := seedInstructor(t, db, models.InstructorFulltime)
	seedTimeslots(t, db, 4)

	// 2025-02-03 Monday .. 2025-02-09 Sunday: 6 working days x 4 slots.
	written, err := svc.SaveAvailability(instructor.ID, "2025-02-03", "2025-02-09", nil, models.InstructorFulltime)
	require.NoError(t, err)
	assert.Equal(t, 24, written)

	var sundayCount int64
	require.NoError(t, db.Model(&models.InstructorTimeslot{}).
		Where("instructor_id = ? AND date = ?", instructor.ID, "2025-02-09").
		Count(&sundayCount).Error)
	assert.Equal(t, int64(0), sundayCount)
}

func TestMarkSlotTransitions(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAvailabilityService(db)
	instructor := seedInstructor(t, db, models.InstructorParttime)
	ids := seedTimeslots(t, db, 2)

	available := models.InstructorTimeslot{InstructorID: instructor.ID, TimeslotID: ids[0], Date: "2025-02-10", Status: models.SlotAvailable}
	require.NoError(t, db.Create(&available).Error)
	holiday := models.InstructorTimeslot{InstructorID: instructor.ID, TimeslotID: ids[1], Date: "2025-02-10", Status: models.SlotHoliday}
	require.NoError(t, db.Create(&holiday).Error)

	require.NoError(t, svc.MarkSlotAsBooked(instructor.ID, ids[0], "2025-02-10"))
	require.NoError(t, svc.MarkSlotAsBooked(instructor.ID, ids[1], "2025-02-10"))

	var row models.InstructorTimeslot
	require.NoError(t, db.First(&row, "id = ?", available.ID).Error)
	assert.Equal(t, models.SlotBooked, row.Status)
	row = models.InstructorTimeslot{}
	require.NoError(t, db.First(&row, "id = ?", holiday.ID).Error)
	assert.Equal(t, models.SlotHoliday, row.Status, "holiday must not be bookable")

	require.NoError(t, svc.MarkSlotAsAvailable(instructor.ID, ids[0], "2025-02-10"))
	require.NoError(t, svc.MarkSlotAsAvailable(instructor.ID, ids[1], "2025-02-10"))

	row = models.InstructorTimeslot{}
	require.NoError(t, db.First(&row, "id = ?", available.ID).Error)
	assert.Equal(t, models.SlotAvailable, row.Status)
	row = models.InstructorTimeslot{}
	require.NoError(t, db.First(&row, "id = ?", holiday.ID).Error)
	assert.Equal(t, models.SlotHoliday, row.Status, "release must not touch holidays")
}

func TestGetAvailabilityIncludesSessionOccupancy(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAvailabilityService(db)
	instructor := seedInstructor(t, db, models.InstructorParttime)
	ids := seedTimeslots(t, db, 1)

	course := models.Course{Title: "IELTS Prep", Fee: 100, Status: models.CoursePublished}
	require.NoError(t, db.Create(&course).Error)
	class := models.Class{CourseID: course.ID, InstructorID: instructor.ID, Name: "IELTS Evening", Fee: 100, Status: models.ClassOngoing, MaxLearners: 10}
	require.NoError(t, db.Create(&class).Error)
	session := models.Session{ClassID: class.ID, Date: "2025-02-12", Status: models.SessionScheduled}
	require.NoError(t, db.Create(&session).Error)
	require.NoError(t, db.Create(&models.SessionTimeslot{SessionID: session.ID, TimeslotID: ids[0]}).Error)

	slot := models.InstructorTimeslot{InstructorID: instructor.ID, TimeslotID: ids[0], Date: "2025-02-12", Status: models.SlotBooked}
	require.NoError(t, db.Create(&slot).Error)

	window, err := svc.GetAvailability(instructor.ID, "2025-02-10", "2025-02-16")
	require.NoError(t, err)
	require.Len(t, window.AvailabilitySlots, 1)
	require.Len(t, window.ExistingSessions, 1)
	assert.Equal(t, session.ID, window.ExistingSessions[0].SessionID)
	assert.Equal(t, "IELTS Evening", window.ExistingSessions[0].ClassName)
}
