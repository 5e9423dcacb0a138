package CronJobs

import (
	"fmt"
	"log"
	"time"

	"DentalOffice/Models"
	"DentalOffice/Notifications"

	"github.com/go-co-op/gocron"
	"gorm.io/gorm"
)

// ReminderWorker sweeps upcoming appointments and overdue bills and
// pushes SMS notices for both.
type ReminderWorker struct {
	DB *gorm.DB
}

func NewReminderWorker(db *gorm.DB) *ReminderWorker {
	return &ReminderWorker{
		DB: db,
	}
}

// StartCron starts the periodic sweeps: appointment reminders every
// minute, overdue bill notices once a day.
func (rw *ReminderWorker) StartCron() *gocron.Scheduler {
	scheduler := gocron.NewScheduler(time.Local)

	scheduler.Every(1).Minutes().Do(func() {
		if err := rw.SendAppointmentReminders(); err != nil {
			log.Printf("Error sending appointment reminders: %v", err)
		}
	})

	scheduler.Every(1).Day().At("09:00").Do(func() {
		if err := rw.SendOverdueNotices(); err != nil {
			log.Printf("Error sending overdue notices: %v", err)
		}
	})

	scheduler.StartAsync()
	log.Println("Reminder cron jobs started")

	return scheduler
}

// SendAppointmentReminders notifies patients whose appointments start
// roughly three hours from now. ReminderSent guards against the sweep
// window overlapping between runs.
func (rw *ReminderWorker) SendAppointmentReminders() error {
	now := time.Now()

	startWindow := now.Add(2*time.Hour + 53*time.Minute)
	endWindow := now.Add(3*time.Hour + 7*time.Minute)

	var appointments []Models.Appointment

	result := rw.DB.
		Where("status = ? AND sms_reminder = ? AND reminder_sent = ? AND start_time BETWEEN ? AND ?",
			Models.AppointmentScheduled,
			true,
			false,
			startWindow.Format(Models.TimeLayout),
			endWindow.Format(Models.TimeLayout)).
		Find(&appointments)

	if result.Error != nil {
		return fmt.Errorf("failed to query upcoming appointments: %w", result.Error)
	}

	for _, appointment := range appointments {
		var patient Models.Patient
		if err := rw.DB.First(&patient, appointment.PatientID).Error; err != nil {
			log.Printf("Failed to find patient for appointment ID %d: %v", appointment.ID, err)
			continue
		}

		if patient.Phone == "" {
			continue
		}

		var dentist Models.Dentist
		if err := rw.DB.First(&dentist, appointment.DentistID).Error; err != nil {
			log.Printf("Failed to find dentist for appointment ID %d: %v", appointment.ID, err)
			continue
		}

		appointmentTime, err := time.Parse(Models.TimeLayout, appointment.StartTime)
		if err != nil {
			log.Printf("Failed to parse appointment time for ID %d: %v", appointment.ID, err)
			continue
		}

		Notifications.AppointmentReminder(patient.Phone, dentist.FullName(), appointmentTime.Format("3:04 PM"))

		if err := rw.DB.Model(&appointment).UpdateColumn("reminder_sent", true).Error; err != nil {
			log.Printf("Failed to mark reminder sent for appointment ID %d: %v", appointment.ID, err)
			continue
		}

		log.Printf("Reminder sent to %s for appointment at %s", patient.FullName(), appointment.StartTime)
	}

	return nil
}

// SendOverdueNotices texts every patient holding an unpaid bill whose
// due date has passed. One notice per bill per day is acceptable, so
// no sent-flag is kept.
func (rw *ReminderWorker) SendOverdueNotices() error {
	today := time.Now().Format("2006-01-02")

	var bills []Models.Bill
	result := rw.DB.
		Where("status != ? AND due_date < ? AND patient_portion > 0", Models.BillPaid, today).
		Find(&bills)

	if result.Error != nil {
		return fmt.Errorf("failed to query overdue bills: %w", result.Error)
	}

	for _, bill := range bills {
		var patient Models.Patient
		if err := rw.DB.First(&patient, bill.PatientID).Error; err != nil {
			log.Printf("Failed to find patient for bill ID %d: %v", bill.ID, err)
			continue
		}

		if patient.Phone == "" {
			continue
		}

		Notifications.OverdueNotice(patient.Phone, bill.BillNumber, bill.PatientPortion)

		log.Printf("Overdue notice sent to %s for bill %s", patient.FullName(), bill.BillNumber)
	}

	return nil
}
