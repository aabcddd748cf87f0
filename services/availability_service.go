package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/Hieupu/ATPS-BE-sub002/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

var ErrInvalidDateRange = errors.New("invalid date range")

// AvailabilityService keeps the per-instructor teaching-slot state machine
// (AVAILABLE / OTHER / HOLIDAY) consistent with session scheduling.
type AvailabilityService struct {
	db *gorm.DB
}

func NewAvailabilityService(db *gorm.DB) *AvailabilityService {
	return &AvailabilityService{db: db}
}

// SlotSubmission is one slot in a bulk availability save.
type SlotSubmission struct {
	Date       string
	TimeslotID uuid.UUID
	Status     models.SlotStatus
	Note       *string
}

// SessionOccupancy is a derived row: a scheduled session occupying one of
// the instructor's timeslots inside the queried window.
type SessionOccupancy struct {
	SessionID  uuid.UUID `json:"sessionId"`
	ClassID    uuid.UUID `json:"classId"`
	ClassName  string    `json:"className"`
	Date       string    `json:"date"`
	TimeslotID uuid.UUID `json:"timeslotId"`
}

type AvailabilityWindow struct {
	AvailabilitySlots []models.InstructorTimeslot `json:"availabilitySlots"`
	ExistingSessions  []SessionOccupancy          `json:"existingSessions"`
}

// GetAvailability returns the stored availability rows plus the derived
// session occupancy for the window. Read-only.
func (s *AvailabilityService) GetAvailability(instructorID uuid.UUID, startDate, endDate string) (*AvailabilityWindow, error) {
	if _, _, err := parseWindow(startDate, endDate); err != nil {
		return nil, err
	}

	var slots []models.InstructorTimeslot
	err := s.db.
		Where("instructor_id = ? AND date BETWEEN ? AND ?", instructorID, startDate, endDate).
		Order("date, timeslot_id").
		Find(&slots).Error
	if err != nil {
		return nil, err
	}

	var sessions []SessionOccupancy
	err = s.db.Model(&models.Session{}).
		Select("sessions.id as session_id, sessions.class_id, classes.name as class_name, sessions.date, session_timeslots.timeslot_id").
		Joins("JOIN classes ON classes.id = sessions.class_id").
		Joins("JOIN session_timeslots ON session_timeslots.session_id = sessions.id").
		Where("classes.instructor_id = ? AND sessions.date BETWEEN ? AND ? AND sessions.status <> ?",
			instructorID, startDate, endDate, models.SessionCancelled).
		Scan(&sessions).Error
	if err != nil {
		return nil, err
	}

	return &AvailabilityWindow{AvailabilitySlots: slots, ExistingSessions: sessions}, nil
}

// GenerateFulltimeSlots synthesizes AVAILABLE entries for every weekday
// (Mon-Sat) and every timeslot in the window. Sunday entries come only from
// the explicit submission, and an explicit entry for any day overrides the
// synthesized one (e.g. a weekday marked HOLIDAY).
func GenerateFulltimeSlots(startDate, endDate string, submitted []SlotSubmission, timeslotIDs []uuid.UUID) ([]SlotSubmission, error) {
	start, end, err := parseWindow(startDate, endDate)
	if err != nil {
		return nil, err
	}

	explicit := make(map[string]SlotSubmission, len(submitted))
	for _, sub := range submitted {
		explicit[sub.Date+"|"+sub.TimeslotID.String()] = sub
	}

	var out []SlotSubmission
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		date := d.Format(dateLayout)
		for _, tid := range timeslotIDs {
			if sub, ok := explicit[date+"|"+tid.String()]; ok {
				out = append(out, sub)
				delete(explicit, date+"|"+tid.String())
				continue
			}
			if d.Weekday() == time.Sunday {
				continue
			}
			out = append(out, SlotSubmission{Date: date, TimeslotID: tid, Status: models.SlotAvailable})
		}
	}

	// Explicit slots outside the known timeslot set still count.
	for _, sub := range explicit {
		out = append(out, sub)
	}
	return out, nil
}

// SaveAvailability bulk-replaces the instructor's availability inside the
// window. Only AVAILABLE rows are replaced; rows in OTHER (booked) or
// HOLIDAY are never clobbered by a re-save, so a submission colliding with
// one of them is skipped. Returns the number of slots written.
func (s *AvailabilityService) SaveAvailability(instructorID uuid.UUID, startDate, endDate string, slots []SlotSubmission, instructorType string) (int, error) {
	if _, _, err := parseWindow(startDate, endDate); err != nil {
		return 0, err
	}

	if instructorType == models.InstructorFulltime {
		var timeslots []models.Timeslot
		if err := s.db.Order("start_time").Find(&timeslots).Error; err != nil {
			return 0, err
		}
		ids := make([]uuid.UUID, len(timeslots))
		for i, ts := range timeslots {
			ids[i] = ts.ID
		}
		var err error
		slots, err = GenerateFulltimeSlots(startDate, endDate, slots, ids)
		if err != nil {
			return 0, err
		}
	}

	written := 0
	err := s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("instructor_id = ? AND date BETWEEN ? AND ? AND status = ?",
			instructorID, startDate, endDate, models.SlotAvailable).
			Delete(&models.InstructorTimeslot{}).Error
		if err != nil {
			return err
		}

		for _, sub := range slots {
			status := sub.Status
			if status == "" {
				status = models.SlotAvailable
			}

			// Anything still standing in the window is OTHER or HOLIDAY and
			// must survive the save untouched.
			var existing models.InstructorTimeslot
			err := tx.Where("instructor_id = ? AND timeslot_id = ? AND date = ?",
				instructorID, sub.TimeslotID, sub.Date).First(&existing).Error
			if err == nil {
				continue
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}

			row := models.InstructorTimeslot{
				InstructorID: instructorID,
				TimeslotID:   sub.TimeslotID,
				Date:         sub.Date,
				Status:       status,
				Note:         sub.Note,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
			written++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return written, nil
}

// MarkSlotAsBooked consumes an AVAILABLE slot when a session is scheduled
// into it. Any other current state is left alone.
func (s *AvailabilityService) MarkSlotAsBooked(instructorID, timeslotID uuid.UUID, date string) error {
	return s.db.Model(&models.InstructorTimeslot{}).
		Where("instructor_id = ? AND timeslot_id = ? AND date = ? AND status = ?",
			instructorID, timeslotID, date, models.SlotAvailable).
		Update("status", models.SlotBooked).Error
}

// MarkSlotAsAvailable releases a booked slot when its session is cancelled
// or rescheduled. Only OTHER transitions back; HOLIDAY stays put.
func (s *AvailabilityService) MarkSlotAsAvailable(instructorID, timeslotID uuid.UUID, date string) error {
	return s.db.Model(&models.InstructorTimeslot{}).
		Where("instructor_id = ? AND timeslot_id = ? AND date = ? AND status = ?",
			instructorID, timeslotID, date, models.SlotBooked).
		Update("status", models.SlotAvailable).Error
}

func parseWindow(startDate, endDate string) (time.Time, time.Time, error) {
	start, err := time.Parse(dateLayout, startDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: start %q", ErrInvalidDateRange, startDate)
	}
	end, err := time.Parse(dateLayout, endDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: end %q", ErrInvalidDateRange, endDate)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %s after %s", ErrInvalidDateRange, startDate, endDate)
	}
	return start, end, nil
}
