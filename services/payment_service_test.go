package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Hieupu/ATPS-BE-sub002/models"
	"github.com/Hieupu/ATPS-BE-sub002/notifications"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestPaymentService(db *gorm.DB) *PaymentService {
	notifier := notifications.NewService(db, nil)
	return NewPaymentService(db, nil, notifier, NewAvailabilityService(db), nil)
}

type paymentFixture struct {
	learner    models.Learner
	instructor models.Instructor
	class      models.Class
	enrollment models.Enrollment
}

func seedPendingEnrollment(t *testing.T, db *gorm.DB, className string, fee float64, orderCode int64) paymentFixture {
	t.Helper()

	learnerAccount := models.Account{Email: uuid.NewString() + "@test.test", Password: "x", FullName: "Linh Tran", Role: models.RoleLearner}
	require.NoError(t, db.Create(&learnerAccount).Error)
	learner := models.Learner{AccountID: learnerAccount.ID}
	require.NoError(t, db.Create(&learner).Error)

	instructorAccount := models.Account{Email: uuid.NewString() + "@test.test", Password: "x", FullName: "Minh Nguyen", Role: models.RoleInstructor}
	require.NoError(t, db.Create(&instructorAccount).Error)
	instructor := models.Instructor{AccountID: instructorAccount.ID, Type: models.InstructorFulltime}
	require.NoError(t, db.Create(&instructor).Error)

	course := models.Course{Title: "English", Fee: fee, Status: models.CoursePublished}
	require.NoError(t, db.Create(&course).Error)

	class := models.Class{CourseID: course.ID, InstructorID: instructor.ID, Name: className, Fee: fee, Status: models.ClassOpen, MaxLearners: 10}
	require.NoError(t, db.Create(&class).Error)

	enrollment := models.Enrollment{
		LearnerID:      learner.ID,
		ClassID:        class.ID,
		Status:         models.EnrollmentPending,
		OrderCode:      orderCode,
		EnrollmentDate: time.Now(),
	}
	require.NoError(t, db.Create(&enrollment).Error)

	return paymentFixture{learner: learner, instructor: instructor, class: class, enrollment: enrollment}
}

func TestUpdatePaymentStatusSuccessIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestPaymentService(db)
	fix := seedPendingEnrollment(t, db, "English Group A", 1500000, 170000000001)

	first, err := svc.UpdatePaymentStatus(context.Background(), 170000000001, "success", 1500000)
	require.NoError(t, err)
	assert.True(t, first.Success)

	second, err := svc.UpdatePaymentStatus(context.Background(), 170000000001, "success", 1500000)
	require.NoError(t, err)
	assert.True(t, second.Success)

	var paymentCount int64
	require.NoError(t, db.Model(&models.Payment{}).Where("enrollment_id = ?", fix.enrollment.ID).Count(&paymentCount).Error)
	assert.Equal(t, int64(1), paymentCount, "duplicate delivery must not insert a second payment row")

	var enrollment models.Enrollment
	require.NoError(t, db.First(&enrollment, "id = ?", fix.enrollment.ID).Error)
	assert.Equal(t, models.EnrollmentEnrolled, enrollment.Status)
}

func TestUpdatePaymentStatusConcurrentSuccess(t *testing.T) {
	db := setupTestDB(t)

	// sqlite cannot run two write transactions at once; a single pooled
	// connection makes the racing calls queue instead of erroring.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	svc := newTestPaymentService(db)
	fix := seedPendingEnrollment(t, db, "English Group Race", 1200000, 170000000009)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.UpdatePaymentStatus(context.Background(), 170000000009, "success", 1200000)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}

	var paymentCount int64
	require.NoError(t, db.Model(&models.Payment{}).Where("enrollment_id = ?", fix.enrollment.ID).Count(&paymentCount).Error)
	assert.Equal(t, int64(1), paymentCount, "racing callers must settle on exactly one payment row")

	var enrollment models.Enrollment
	require.NoError(t, db.First(&enrollment, "id = ?", fix.enrollment.ID).Error)
	assert.Equal(t, models.EnrollmentEnrolled, enrollment.Status)
}

func TestUpdatePaymentStatusAmountFallsBackToClassFee(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestPaymentService(db)
	fix := seedPendingEnrollment(t, db, "English Group B", 2000000, 170000000002)

	_, err := svc.UpdatePaymentStatus(context.Background(), 170000000002, "success", 0)
	require.NoError(t, err)

	var payment models.Payment
	require.NoError(t, db.First(&payment, "enrollment_id = ?", fix.enrollment.ID).Error)
	assert.Equal(t, 2000000.0, payment.Amount)
}

func TestUpdatePaymentStatusPaymentRowGuard(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestPaymentService(db)
	fix := seedPendingEnrollment(t, db, "English Group C", 1000000, 170000000003)

	// A payment row without the status transition simulates a crash between
	// steps; the guard must treat it as already done.
	payment := models.Payment{EnrollmentID: fix.enrollment.ID, Amount: 1000000, Method: "payos", Status: models.PaymentSucceeded, PaymentDate: time.Now()}
	require.NoError(t, db.Create(&payment).Error)

	result, err := svc.UpdatePaymentStatus(context.Background(), 170000000003, "success", 1000000)
	require.NoError(t, err)
	assert.True(t, result.Success)

	var paymentCount int64
	require.NoError(t, db.Model(&models.Payment{}).Where("enrollment_id = ?", fix.enrollment.ID).Count(&paymentCount).Error)
	assert.Equal(t, int64(1), paymentCount)
}

func TestUpdatePaymentStatusOneOnOneSuccessFlipsClass(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestPaymentService(db)
	fix := seedPendingEnrollment(t, db, "English 1-on-1", 500000, 170000000004)

	_, err := svc.UpdatePaymentStatus(context.Background(), 170000000004, "success", 500000)
	require.NoError(t, err)

	var class models.Class
	require.NoError(t, db.First(&class, "id = ?", fix.class.ID).Error)
	assert.Equal(t, models.ClassOngoing, class.Status)
}

func TestUpdatePaymentStatusOneOnOneCancellationTearsDownClass(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestPaymentService(db)
	fix := seedPendingEnrollment(t, db, "English 1-on-1", 500000, 170000000005)

	timeslot := models.Timeslot{StartTime: "08:00", EndTime: "09:30"}
	require.NoError(t, db.Create(&timeslot).Error)
	session := models.Session{ClassID: fix.class.ID, Date: "2025-03-10", Status: models.SessionScheduled}
	require.NoError(t, db.Create(&session).Error)
	require.NoError(t, db.Create(&models.SessionTimeslot{SessionID: session.ID, TimeslotID: timeslot.ID}).Error)

	// The slot the speculative session consumed.
	slot := models.InstructorTimeslot{InstructorID: fix.instructor.ID, TimeslotID: timeslot.ID, Date: "2025-03-10", Status: models.SlotBooked}
	require.NoError(t, db.Create(&slot).Error)

	result, err := svc.UpdatePaymentStatus(context.Background(), 170000000005, "cancelled", 0)
	require.NoError(t, err)
	assert.True(t, result.Success)

	var count int64
	db.Model(&models.Class{}).Where("id = ?", fix.class.ID).Count(&count)
	assert.Equal(t, int64(0), count, "ephemeral class must be deleted")
	db.Model(&models.Session{}).Where("class_id = ?", fix.class.ID).Count(&count)
	assert.Equal(t, int64(0), count, "sessions must be deleted")
	db.Model(&models.Enrollment{}).Where("id = ?", fix.enrollment.ID).Count(&count)
	assert.Equal(t, int64(0), count, "enrollment must be deleted")

	var released models.InstructorTimeslot
	require.NoError(t, db.First(&released, "id = ?", slot.ID).Error)
	assert.Equal(t, models.SlotAvailable, released.Status, "booked slot must be released")
}

func TestUpdatePaymentStatusGroupClassSurvivesFailure(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestPaymentService(db)
	fix := seedPendingEnrollment(t, db, "English Group A", 1500000, 170000000006)

	result, err := svc.UpdatePaymentStatus(context.Background(), 170000000006, "failed", 0)
	require.NoError(t, err)
	assert.True(t, result.Success)

	var count int64
	db.Model(&models.Enrollment{}).Where("id = ?", fix.enrollment.ID).Count(&count)
	assert.Equal(t, int64(0), count, "enrollment must be deleted")
	db.Model(&models.Class{}).Where("id = ?", fix.class.ID).Count(&count)
	assert.Equal(t, int64(1), count, "group class must survive a failed payment")
}

func TestUpdatePaymentStatusMissingEnrollment(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestPaymentService(db)

	// Failure for an unknown order is an already-cleaned-up no-op.
	result, err := svc.UpdatePaymentStatus(context.Background(), 999999999999, "cancelled", 0)
	require.NoError(t, err)
	assert.True(t, result.Success)

	// A success claim for an unknown order is a real error.
	_, err = svc.UpdatePaymentStatus(context.Background(), 999999999999, "success", 100)
	assert.True(t, errors.Is(err, ErrEnrollmentNotFound))
}

func TestUpdatePaymentStatusRejectsUnknownStatus(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestPaymentService(db)

	_, err := svc.UpdatePaymentStatus(context.Background(), 170000000007, "refunded", 0)
	assert.True(t, errors.Is(err, ErrInvalidPaymentStatus))
}

func TestUpdatePaymentStatusAlreadyEnrolled(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestPaymentService(db)
	fix := seedPendingEnrollment(t, db, "English Group D", 1000000, 170000000008)

	require.NoError(t, db.Model(&models.Enrollment{}).Where("id = ?", fix.enrollment.ID).
		Update("status", models.EnrollmentEnrolled).Error)

	result, err := svc.UpdatePaymentStatus(context.Background(), 170000000008, "success", 1000000)
	require.NoError(t, err)
	assert.True(t, result.Success)

	var paymentCount int64
	db.Model(&models.Payment{}).Where("enrollment_id = ?", fix.enrollment.ID).Count(&paymentCount)
	assert.Equal(t, int64(0), paymentCount, "already-enrolled guard must run before payment insertion")
}
