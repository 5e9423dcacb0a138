package Models

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type AppointmentStatus string

const (
	AppointmentScheduled  AppointmentStatus = "scheduled"
	AppointmentInProgress AppointmentStatus = "in_progress"
	AppointmentCompleted  AppointmentStatus = "completed"
	AppointmentCancelled  AppointmentStatus = "cancelled"
)

// appointmentTransitions is the full set of legal status moves.
// Cancellation is always a transition, never a row delete.
var appointmentTransitions = map[AppointmentStatus][]AppointmentStatus{
	AppointmentScheduled:  {AppointmentInProgress, AppointmentCompleted, AppointmentCancelled},
	AppointmentInProgress: {AppointmentCompleted, AppointmentCancelled},
	AppointmentCompleted:  {},
	AppointmentCancelled:  {},
}

func (status AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	for _, allowed := range appointmentTransitions[status] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Appointment struct {
	gorm.Model
	PatientID    uint              `json:"patient_id"`
	DentistID    uint              `json:"dentist_id"`
	ServiceID    uint              `json:"service_id"`
	Type         string            `json:"type"`
	Status       AppointmentStatus `json:"status"`
	StartTime    string            `json:"start_time"`
	EndTime      string            `json:"end_time"`
	Notes        string            `json:"notes"`
	SMSReminder  bool              `json:"sms_reminder"`
	ReminderSent bool              `json:"reminder_sent"`
}

// Coarse slots the voice agent books with. Each maps to a fixed clock
// range on the requested date.
const (
	SlotMorning   = "morning"
	SlotAfternoon = "afternoon"
	SlotEvening   = "evening"
	SlotAllDay    = "all_day"
)

var (
	ErrInvalidTimeSlot = errors.New("invalid time slot")
	ErrInvalidDate     = errors.New("invalid date")
)

// TimeLayout is the ISO layout appointment rows store their start and
// end times in. Lexicographic order matches chronological order, so
// BETWEEN queries on the string column are safe.
const TimeLayout = "2006-01-02T15:04:05"

// SlotWindow expands a date plus a coarse slot into start/end timestamps
// in the same ISO layout the appointment rows store. The date must parse
// as YYYY-MM-DD; the reminder sweep's BETWEEN queries depend on every
// stored start_time being well formed.
func SlotWindow(date, slot string) (string, string, error) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return "", "", ErrInvalidDate
	}
	switch slot {
	case SlotMorning:
		return fmt.Sprintf("%sT08:00:00", date), fmt.Sprintf("%sT11:00:00", date), nil
	case SlotAfternoon:
		return fmt.Sprintf("%sT14:00:00", date), fmt.Sprintf("%sT16:00:00", date), nil
	case SlotEvening:
		return fmt.Sprintf("%sT18:00:00", date), fmt.Sprintf("%sT20:00:00", date), nil
	case SlotAllDay:
		return fmt.Sprintf("%sT08:00:00", date), fmt.Sprintf("%sT20:00:00", date), nil
	}
	return "", "", ErrInvalidTimeSlot
}
