package Voice

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"DentalOffice/Identity"
	"DentalOffice/Models"
	"DentalOffice/Sessions"
	"DentalOffice/Verify"

	"github.com/gin-gonic/gin"
)

// Provider is the verification client, injected at boot.
var Provider *Verify.Client

type sendCodeInput struct {
	ToNumber  string `json:"to_number"`
	PatientID string `json:"patient_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	CallerID  string `json:"caller_id"`
}

// SendCode looks the caller up from whatever identifying information the
// agent gathered, then asks the provider to text a one-time code. A found
// patient rides along as a pending snapshot; it is not trusted until the
// code verifies.
func SendCode(c *gin.Context) {
	var input sendCodeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var found *Models.Patient

	switch {
	case input.PatientID != "":
		patient, err := Identity.FindByNumber(Models.DB, input.PatientID)
		if errors.Is(err, Identity.ErrNotFound) {
			respond(c, fmt.Sprintf("Patient ID %s not found in our records. Please check your patient ID or provide your first and last name instead.", input.PatientID), nil)
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if patient.Phone == "" {
			respond(c, fmt.Sprintf("Patient %s found but no phone number on file. Please provide your phone number to receive the verification code.", input.PatientID), nil)
			return
		}
		found = &patient

	case input.FirstName != "" && input.LastName != "":
		patient, err := Identity.FindByName(Models.DB, input.FirstName, input.LastName)
		if errors.Is(err, Identity.ErrAmbiguous) {
			respond(c, "Multiple patients found with the same first and last name. Please provide your patient ID instead.", nil)
			return
		}
		if errors.Is(err, Identity.ErrNotFound) {
			respond(c, fmt.Sprintf("No patient found with name '%s %s'. Please check the spelling or provide your patient ID.", input.FirstName, input.LastName), nil)
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		found = &patient
	}

	// Pick the number to text: the record's phone wins, then whatever the
	// caller dictated, then the caller id on the line.
	phoneToUse := ""
	switch {
	case found != nil && found.Phone != "":
		phoneToUse = found.Phone
	case input.ToNumber != "":
		phoneToUse = input.ToNumber
	case input.CallerID != "":
		phoneToUse = input.CallerID
		if found == nil {
			if patient, err := Identity.FindByPhone(Models.DB, input.CallerID); err == nil {
				found = &patient
			}
		}
	default:
		respond(c, "No phone number provided or found. Please provide a phone number or patient ID.", nil)
		return
	}

	phone, err := Identity.FormatToE164(phoneToUse)
	if err != nil {
		respond(c, fmt.Sprintf("Invalid phone number format: %s. Please provide a valid phone number including area code.", phoneToUse), nil)
		return
	}

	sessionID, err := Provider.SendCode(phone)
	if err != nil {
		log.Printf("Failed to send verification code to %s: %v", phone, err)
		respond(c, "We could not send a verification code right now. Please try again in a moment.", nil)
		return
	}

	Sessions.Store.CreateSession(sessionID, phone, found)

	patientInfo := ""
	if found != nil {
		patientInfo = " for " + found.FullName()
	}
	respond(c, fmt.Sprintf("6-digit verification code sent successfully to %s%s", phone, patientInfo), gin.H{
		"session_id":    sessionID,
		"phone_number":  phone,
		"patient_found": found != nil,
	})
}

type verifyCodeInput struct {
	SessionID string `json:"session_id"`
	Code      string `json:"code" binding:"required"`
	PatientID string `json:"patient_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	CallerID  string `json:"caller_id"`
}

// VerifyCode checks the submitted code with the provider and, on success,
// promotes the session and mints the challenge token the agent must
// present on every protected call.
func VerifyCode(c *gin.Context) {
	var input verifyCodeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sessionID := input.SessionID
	if sessionID == "" {
		sessionID = Sessions.Store.LastSessionID()
	}
	if sessionID == "" {
		respond(c, "No active verification session. Please request a new code first.", nil)
		return
	}

	result, err := Provider.VerifyCode(sessionID, input.Code)
	if err != nil {
		log.Printf("Verification failed for session %s: %v", sessionID, err)
		respond(c, "We could not verify the code right now. Please try again in a moment.", gin.H{"session_id": sessionID})
		return
	}
	if !result.Success {
		message := result.Message
		if message == "" {
			message = "Invalid verification code. Please try again."
		}
		respond(c, message, gin.H{"session_id": sessionID})
		return
	}

	// Resolve the account snapshot: pending data from the send step has
	// priority, then whatever metadata the agent gathered on the call.
	patient, ok := Sessions.Store.TakePending(sessionID)
	if !ok {
		patient, ok = resolveFromMetadata(input)
	}
	if !ok {
		respond(c, "Code verified, but we could not match you to a patient record. Please request a new code with your name or patient ID.", gin.H{
			"session_id":       sessionID,
			"patient_verified": false,
		})
		return
	}

	token := Sessions.Store.Promote(sessionID, patient)

	respond(c, fmt.Sprintf("Verification successful for %s (patient %s). You can now access your account.",
		patient.FullName(), patient.PatientNumber), gin.H{
		"session_id":       sessionID,
		"patient_verified": true,
		"patient_id":       patient.PatientNumber,
		"challenge_token":  token,
	})
}

func resolveFromMetadata(input verifyCodeInput) (Models.Patient, bool) {
	if input.PatientID != "" {
		if patient, err := Identity.FindByNumber(Models.DB, input.PatientID); err == nil {
			return patient, true
		}
	}
	if input.CallerID != "" {
		if patient, err := Identity.FindByPhone(Models.DB, input.CallerID); err == nil {
			return patient, true
		}
	}
	if input.FirstName != "" && input.LastName != "" {
		if patient, err := Identity.FindByName(Models.DB, input.FirstName, input.LastName); err == nil {
			return patient, true
		}
	}
	return Models.Patient{}, false
}
