package Notifications

import (
	"fmt"
	"log"
	"time"

	"DentalOffice/FirebaseMessaging"
	"DentalOffice/Models"
	"DentalOffice/SSE"
)

// SMSSender is implemented by the Verify client. Injected at boot so the
// package stays testable without a live provider.
type SMSSender interface {
	SendSMS(to, message string) error
}

var SMS SMSSender

// dispatch sends one SMS off the critical path. Any failure is logged and
// swallowed; a notification must never roll back the mutation that
// triggered it and is never retried synchronously.
func dispatch(phone, message string) {
	if SMS == nil || phone == "" {
		return
	}
	go func() {
		if err := SMS.SendSMS(phone, message); err != nil {
			log.Printf("Failed to send SMS confirmation to %s: %v", phone, err)
		}
	}()
}

// notifyStaff pushes a heads-up to registered staff devices and the live
// dashboard feed. Best effort, same rules as SMS.
func notifyStaff(kind, title, body string) {
	go func() {
		SSE.Broadcaster.Broadcast(kind, body)

		fcms, err := Models.GetStaffFCMs()
		if err != nil || len(fcms) == 0 {
			return
		}
		if err := FirebaseMessaging.SendToTokens(title, body, fcms); err != nil {
			log.Printf("Failed to push staff notification: %v", err)
		}
	}()
}

func formatApptTime(startTime string) (string, string) {
	start, err := time.Parse(Models.TimeLayout, startTime)
	if err != nil {
		return startTime, ""
	}
	return start.Format("Monday, January 2, 2006"), start.Format("3:04 PM")
}

func AppointmentScheduled(patient Models.Patient, serviceName, dentistName, startTime string) {
	date, clock := formatApptTime(startTime)
	dispatch(patient.Phone, fmt.Sprintf(
		"Your appointment for %s with %s is scheduled for %s at %s.",
		serviceName, dentistName, date, clock))
	notifyStaff("appointment_scheduled", "New appointment",
		fmt.Sprintf("%s booked %s with %s on %s", patient.FullName(), serviceName, dentistName, date))
}

func AppointmentRescheduled(patient Models.Patient, serviceName, dentistName, startTime string) {
	date, clock := formatApptTime(startTime)
	dispatch(patient.Phone, fmt.Sprintf(
		"Your appointment for %s with %s has been rescheduled to %s at %s.",
		serviceName, dentistName, date, clock))
	notifyStaff("appointment_rescheduled", "Appointment rescheduled",
		fmt.Sprintf("%s moved %s with %s to %s", patient.FullName(), serviceName, dentistName, date))
}

func AppointmentCancelled(patient Models.Patient, serviceName, dentistName, startTime string) {
	date, clock := formatApptTime(startTime)
	dispatch(patient.Phone, fmt.Sprintf(
		"Your appointment for %s with %s scheduled for %s at %s has been cancelled.",
		serviceName, dentistName, date, clock))
	notifyStaff("appointment_cancelled", "Appointment cancelled",
		fmt.Sprintf("%s cancelled %s with %s on %s", patient.FullName(), serviceName, dentistName, date))
}

func PaymentReceived(patient Models.Patient, serviceName string, amount, remaining float64, transactionID, billReference string) {
	message := fmt.Sprintf("Payment confirmation: $%.2f payment received for %s. ", amount, serviceName)
	if remaining > 0 {
		message += fmt.Sprintf("Remaining balance: $%.2f.", remaining)
	} else {
		message += "Bill is now fully paid."
	}
	message += fmt.Sprintf(" Payment Ref: %s", transactionID)
	if billReference != "" {
		message += fmt.Sprintf(" | Bill Ref: %s", billReference)
	}
	dispatch(patient.Phone, message)
	notifyStaff("payment_received", "Payment received",
		fmt.Sprintf("%s paid $%.2f toward %s", patient.FullName(), amount, serviceName))
}

// AppointmentReminder is used by the cron sweep, not the voice path.
func AppointmentReminder(phone, dentistName, clock string) {
	dispatch(phone, fmt.Sprintf(
		"Reminder: you have an appointment with %s today at %s. Please arrive 10 minutes early. If you need to reschedule, please contact us.",
		dentistName, clock))
}

// OverdueNotice is sent by the daily sweep for each overdue bill.
func OverdueNotice(phone, billNumber string, balance float64) {
	dispatch(phone, fmt.Sprintf(
		"Bill #%s is past due with a remaining balance of $%.2f. You can pay by phone any time.",
		billNumber, balance))
}
