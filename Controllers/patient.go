package Controllers

import (
	"errors"
	"log"
	"net/http"

	"DentalOffice/Identity"
	"DentalOffice/Models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type PatientInput struct {
	FirstName   string `json:"first_name" binding:"required"`
	LastName    string `json:"last_name" binding:"required"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	DateOfBirth string `json:"date_of_birth"`
	Notes       string `json:"notes"`
}

// CreatePatient registers a new patient record. Accounts are only ever
// created here, administratively; the voice channel can never mint one.
func CreatePatient(c *gin.Context) {
	var input PatientInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	patient := Models.Patient{
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		Email:       input.Email,
		DateOfBirth: input.DateOfBirth,
		Notes:       input.Notes,
	}

	if input.Phone != "" {
		phone, err := Identity.FormatToE164(input.Phone)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid phone number format"})
			return
		}
		patient.Phone = phone
	}

	number, err := Models.GenerateUniquePatientNumber(Models.DB)
	if err != nil {
		log.Println(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to assign patient number"})
		return
	}
	patient.PatientNumber = number

	if err := Models.DB.Create(&patient).Error; err != nil {
		log.Println(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Patient created", "data": patient})
}

// UpdatePatient edits mutable contact fields. Identity fields (patient
// number, name) stay as created.
func UpdatePatient(c *gin.Context) {
	var input struct {
		ID          uint   `json:"id" binding:"required"`
		Email       string `json:"email"`
		Phone       string `json:"phone"`
		DateOfBirth string `json:"date_of_birth"`
		Notes       string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var patient Models.Patient
	if err := Models.DB.First(&patient, input.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Patient not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	updates := map[string]interface{}{}
	if input.Email != "" {
		updates["email"] = input.Email
	}
	if input.Phone != "" {
		phone, err := Identity.FormatToE164(input.Phone)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid phone number format"})
			return
		}
		updates["phone"] = phone
	}
	if input.DateOfBirth != "" {
		updates["date_of_birth"] = input.DateOfBirth
	}
	if input.Notes != "" {
		updates["notes"] = input.Notes
	}

	if err := Models.DB.Model(&patient).Updates(updates).Error; err != nil {
		log.Println(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Patient updated"})
}

// FetchPatients lists patient records for staff.
func FetchPatients(c *gin.Context) {
	var patients []Models.Patient
	if err := Models.DB.Find(&patients).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "success", "data": patients})
}
