package Voice

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"DentalOffice/Models"
	"DentalOffice/Notifications"
	"DentalOffice/Resolve"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type scheduleInput struct {
	ChallengeToken string `json:"challenge_token"`
	DentistID      string `json:"dentist_id" binding:"required"`
	ServiceID      string `json:"service_id" binding:"required"`
	Date           string `json:"date" binding:"required"`
	TimeSlot       string `json:"time_slot" binding:"required"`
}

// defaultDentistForService picks a provider when the caller named none
// that resolves, matching the service family to a specialization and
// falling back to the most senior dentist in the catalog.
func defaultDentistForService(db *gorm.DB, serviceType string) (Models.Dentist, error) {
	var specialization string
	switch serviceType {
	case "orthodontics":
		specialization = "%orthodont%"
	case "extraction", "root_canal":
		specialization = "%oral surgery%"
	default:
		specialization = "%general%"
	}

	var dentist Models.Dentist
	err := db.Where("LOWER(specialization) LIKE ?", specialization).Order("id").First(&dentist).Error
	if err != nil {
		err = db.Order("id").First(&dentist).Error
	}
	return dentist, err
}

// ScheduleAppointment books a new appointment from loose dentist/service
// references plus a date and coarse time slot.
func ScheduleAppointment(c *gin.Context) {
	var input scheduleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	patient, ok := authorize(c, input.ChallengeToken)
	if !ok {
		return
	}

	service, serviceCandidates, err := Resolve.Service(Models.DB, input.ServiceID)
	if errors.Is(err, Resolve.ErrNotFound) || errors.Is(err, Resolve.ErrAmbiguous) {
		respond(c, serviceLookupMessage(input.ServiceID, serviceCandidates, err), gin.H{"candidates": serviceCandidates})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	dentist, dentistCandidates, err := Resolve.Dentist(Models.DB, input.DentistID)
	if errors.Is(err, Resolve.ErrAmbiguous) {
		respond(c, dentistLookupMessage(input.DentistID, dentistCandidates, err), gin.H{"candidates": dentistCandidates})
		return
	}
	if errors.Is(err, Resolve.ErrNotFound) {
		// Unknown provider reference: auto-assign by service family
		// rather than dead-ending the booking.
		dentist, err = defaultDentistForService(Models.DB, service.Type)
		if err != nil {
			respond(c, dentistLookupMessage(input.DentistID, dentistCandidates, Resolve.ErrNotFound), gin.H{"candidates": dentistCandidates})
			return
		}
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	startTime, endTime, err := Models.SlotWindow(input.Date, input.TimeSlot)
	if errors.Is(err, Models.ErrInvalidDate) {
		respond(c, fmt.Sprintf("Invalid date '%s'. Please provide the date as YYYY-MM-DD, for example 2026-09-15.", input.Date), nil)
		return
	}
	if err != nil {
		respond(c, "Invalid time slot. Please choose morning, afternoon, evening, or all day.", nil)
		return
	}

	appointment := Models.Appointment{
		PatientID:   patient.ID,
		DentistID:   dentist.ID,
		ServiceID:   service.ID,
		Type:        service.Type,
		Status:      Models.AppointmentScheduled,
		StartTime:   startTime,
		EndTime:     endTime,
		SMSReminder: true,
	}
	if err := Models.DB.Create(&appointment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	Notifications.AppointmentScheduled(patient, service.Name, dentist.FullName(), startTime)

	respond(c, fmt.Sprintf("Appointment for %s with %s scheduled successfully for %s in the %s time slot",
		service.Name, dentist.FullName(), input.Date, input.TimeSlot), gin.H{
		"appointment_id": appointment.ID,
		"patient_id":     patient.PatientNumber,
		"dentist_id":     dentist.ID,
		"service_id":     service.ID,
		"date":           input.Date,
		"time_slot":      input.TimeSlot,
	})
}

type rescheduleInput struct {
	ChallengeToken string `json:"challenge_token"`
	AppointmentID  uint   `json:"appointment_id" binding:"required"`
	Date           string `json:"date" binding:"required"`
	TimeSlot       string `json:"time_slot" binding:"required"`
}

// RescheduleAppointment moves an existing appointment to a new date and
// slot. Only the owning patient can move it; cancelled appointments stay
// cancelled.
func RescheduleAppointment(c *gin.Context) {
	var input rescheduleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	patient, ok := authorize(c, input.ChallengeToken)
	if !ok {
		return
	}

	appointment, ok := loadOwnAppointment(c, patient, input.AppointmentID)
	if !ok {
		return
	}

	if appointment.Status == Models.AppointmentCancelled {
		respond(c, "Cannot reschedule a cancelled appointment. Please schedule a new appointment instead.", nil)
		return
	}

	startTime, endTime, err := Models.SlotWindow(input.Date, input.TimeSlot)
	if errors.Is(err, Models.ErrInvalidDate) {
		respond(c, fmt.Sprintf("Invalid date '%s'. Please provide the date as YYYY-MM-DD, for example 2026-09-15.", input.Date), nil)
		return
	}
	if err != nil {
		respond(c, "Invalid time slot. Please choose morning, afternoon, evening, or all day.", nil)
		return
	}

	if err := Models.DB.Model(&Models.Appointment{}).Where("id = ?", appointment.ID).
		Updates(map[string]interface{}{"start_time": startTime, "end_time": endTime, "reminder_sent": false}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	serviceName, dentistName := appointmentNames(appointment)
	Notifications.AppointmentRescheduled(patient, serviceName, dentistName, startTime)

	respond(c, fmt.Sprintf("Appointment rescheduled successfully to %s in the %s time slot", input.Date, input.TimeSlot), gin.H{
		"appointment_id": appointment.ID,
		"patient_id":     patient.PatientNumber,
		"date":           input.Date,
		"time_slot":      input.TimeSlot,
	})
}

type cancelInput struct {
	ChallengeToken string `json:"challenge_token"`
	AppointmentID  uint   `json:"appointment_id" binding:"required"`
}

// CancelAppointment flips the status to cancelled. The row stays for the
// audit trail.
func CancelAppointment(c *gin.Context) {
	var input cancelInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	patient, ok := authorize(c, input.ChallengeToken)
	if !ok {
		return
	}

	appointment, ok := loadOwnAppointment(c, patient, input.AppointmentID)
	if !ok {
		return
	}

	if appointment.Status == Models.AppointmentCancelled {
		respond(c, "This appointment has already been cancelled.", nil)
		return
	}
	if !appointment.Status.CanTransitionTo(Models.AppointmentCancelled) {
		respond(c, fmt.Sprintf("A %s appointment can no longer be cancelled.", appointment.Status), nil)
		return
	}

	if err := Models.DB.Model(&Models.Appointment{}).Where("id = ?", appointment.ID).
		UpdateColumn("status", Models.AppointmentCancelled).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	serviceName, dentistName := appointmentNames(appointment)
	Notifications.AppointmentCancelled(patient, serviceName, dentistName, appointment.StartTime)

	respond(c, "Appointment cancelled successfully", gin.H{
		"appointment_id": appointment.ID,
		"patient_id":     patient.PatientNumber,
	})
}

type getAppointmentsInput struct {
	ChallengeToken string `json:"challenge_token"`
	Status         string `json:"status"`
}

// GetAppointments lists the caller's appointments, optionally filtered by
// status, soonest first.
func GetAppointments(c *gin.Context) {
	var input getAppointmentsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	patient, ok := authorize(c, input.ChallengeToken)
	if !ok {
		return
	}

	tx := Models.DB.Where("patient_id = ?", patient.ID)
	if input.Status != "" {
		tx = tx.Where("status = ?", strings.ToLower(strings.TrimSpace(input.Status)))
	}

	var appointments []Models.Appointment
	if err := tx.Order("start_time").Find(&appointments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if len(appointments) == 0 {
		message := "You have no appointments on file."
		if input.Status != "" {
			message = fmt.Sprintf("You have no %s appointments on file.", input.Status)
		}
		respond(c, message, gin.H{"appointments": []Models.Appointment{}, "patient_id": patient.PatientNumber})
		return
	}

	summary := fmt.Sprintf("You have %d appointment(s).", len(appointments))
	for i, appointment := range appointments {
		serviceName, dentistName := appointmentNames(appointment)
		summary += fmt.Sprintf("\n%d. Appointment #%d - %s with %s, %s to %s (%s)",
			i+1, appointment.ID, serviceName, dentistName,
			appointment.StartTime, appointment.EndTime, appointment.Status)
	}

	respond(c, summary, gin.H{
		"appointments": appointments,
		"patient_id":   patient.PatientNumber,
	})
}

type appointmentDetailsInput struct {
	ChallengeToken string `json:"challenge_token"`
	AppointmentID  uint   `json:"appointment_id" binding:"required"`
}

// GetAppointmentDetails reads back one appointment with its service and
// provider names.
func GetAppointmentDetails(c *gin.Context) {
	var input appointmentDetailsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	patient, ok := authorize(c, input.ChallengeToken)
	if !ok {
		return
	}

	appointment, ok := loadOwnAppointment(c, patient, input.AppointmentID)
	if !ok {
		return
	}

	serviceName, dentistName := appointmentNames(appointment)
	respond(c, fmt.Sprintf("Appointment #%d: %s with %s, from %s to %s, status %s.",
		appointment.ID, serviceName, dentistName,
		appointment.StartTime, appointment.EndTime, appointment.Status), gin.H{
		"appointment":  appointment,
		"service_name": serviceName,
		"dentist_name": dentistName,
		"patient_id":   patient.PatientNumber,
	})
}

func loadOwnAppointment(c *gin.Context, patient Models.Patient, appointmentID uint) (Models.Appointment, bool) {
	var appointment Models.Appointment
	err := Models.DB.First(&appointment, appointmentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respond(c, "Appointment not found.", nil)
		return Models.Appointment{}, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return Models.Appointment{}, false
	}
	if appointment.PatientID != patient.ID {
		respond(c, "You can only manage your own appointments.", nil)
		return Models.Appointment{}, false
	}
	return appointment, true
}

func appointmentNames(appointment Models.Appointment) (string, string) {
	var serviceName, dentistName string
	var service Models.DentalService
	if err := Models.DB.First(&service, appointment.ServiceID).Error; err == nil {
		serviceName = service.Name
	}
	var dentist Models.Dentist
	if err := Models.DB.First(&dentist, appointment.DentistID).Error; err == nil {
		dentistName = dentist.FullName()
	}
	return serviceName, dentistName
}

func serviceLookupMessage(ref string, candidates []Models.DentalService, err error) string {
	var message string
	if errors.Is(err, Resolve.ErrAmbiguous) {
		message = fmt.Sprintf("More than one service matches '%s'. ", ref)
	} else {
		message = fmt.Sprintf("Service '%s' not found. ", ref)
	}
	if len(candidates) > 0 {
		var names []string
		for _, service := range candidates {
			names = append(names, service.Name)
		}
		message += "Available services include: " + strings.Join(names, ", ") + "."
	}
	return message
}

func dentistLookupMessage(ref string, candidates []Models.Dentist, err error) string {
	var message string
	if errors.Is(err, Resolve.ErrAmbiguous) {
		message = fmt.Sprintf("More than one dentist matches '%s'. ", ref)
	} else {
		message = fmt.Sprintf("Dentist '%s' not found. ", ref)
	}
	if len(candidates) > 0 {
		var names []string
		for _, dentist := range candidates {
			names = append(names, dentist.FullName())
		}
		message += "Available dentists: " + strings.Join(names, ", ") + "."
	}
	return message
}
