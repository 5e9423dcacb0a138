package CronJobs

import (
	"testing"
	"time"

	"DentalOffice/Models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// An in-memory sqlite database exists per connection; pin the pool to
	// one so every caller sees the same data.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, Models.Migrate(db))
	return db
}

func TestSendAppointmentReminders(t *testing.T) {
	db := setupTestDB(t)

	patient := Models.Patient{PatientNumber: "1000001", FirstName: "Alice", LastName: "Nguyen", Phone: "+15551230001"}
	require.NoError(t, db.Create(&patient).Error)
	dentist := Models.Dentist{FirstName: "Sarah", LastName: "Chen"}
	require.NoError(t, db.Create(&dentist).Error)

	inWindow := Models.Appointment{
		PatientID:   patient.ID,
		DentistID:   dentist.ID,
		Status:      Models.AppointmentScheduled,
		StartTime:   time.Now().Add(3 * time.Hour).Format(Models.TimeLayout),
		SMSReminder: true,
	}
	require.NoError(t, db.Create(&inWindow).Error)

	tomorrow := Models.Appointment{
		PatientID:   patient.ID,
		DentistID:   dentist.ID,
		Status:      Models.AppointmentScheduled,
		StartTime:   time.Now().Add(24 * time.Hour).Format(Models.TimeLayout),
		SMSReminder: true,
	}
	require.NoError(t, db.Create(&tomorrow).Error)

	optedOut := Models.Appointment{
		PatientID: patient.ID,
		DentistID: dentist.ID,
		Status:    Models.AppointmentScheduled,
		StartTime: time.Now().Add(3 * time.Hour).Format(Models.TimeLayout),
	}
	require.NoError(t, db.Create(&optedOut).Error)

	worker := NewReminderWorker(db)
	require.NoError(t, worker.SendAppointmentReminders())

	var reloadedInWindow Models.Appointment
	require.NoError(t, db.First(&reloadedInWindow, inWindow.ID).Error)
	assert.True(t, reloadedInWindow.ReminderSent)

	var reloadedTomorrow Models.Appointment
	require.NoError(t, db.First(&reloadedTomorrow, tomorrow.ID).Error)
	assert.False(t, reloadedTomorrow.ReminderSent)

	var reloadedOptedOut Models.Appointment
	require.NoError(t, db.First(&reloadedOptedOut, optedOut.ID).Error)
	assert.False(t, reloadedOptedOut.ReminderSent)

	// A second sweep in the same window sends nothing twice; the flag
	// already filtered the row out, so the sweep stays a no-op.
	require.NoError(t, worker.SendAppointmentReminders())
}

func TestSendOverdueNotices(t *testing.T) {
	db := setupTestDB(t)

	patient := Models.Patient{PatientNumber: "1000001", FirstName: "Alice", LastName: "Nguyen", Phone: "+15551230001"}
	require.NoError(t, db.Create(&patient).Error)

	overdue := Models.Bill{PatientID: patient.ID, BillNumber: "482913", Amount: 200, PatientPortion: 150, Status: Models.BillPending, DueDate: "2020-01-01"}
	require.NoError(t, db.Create(&overdue).Error)

	current := Models.Bill{PatientID: patient.ID, BillNumber: "771204", Amount: 100, PatientPortion: 100, Status: Models.BillPending, DueDate: "2099-01-01"}
	require.NoError(t, db.Create(&current).Error)

	worker := NewReminderWorker(db)
	assert.NoError(t, worker.SendOverdueNotices())
}
