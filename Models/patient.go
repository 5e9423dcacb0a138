package Models

import (
	"errors"
	"fmt"
	"math/rand"

	"gorm.io/gorm"
)

type Patient struct {
	gorm.Model
	PatientNumber string `json:"patient_number" gorm:"size:16;not null;unique"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	DateOfBirth   string `json:"date_of_birth"`
	Notes         string `json:"notes"`
}

func (patient *Patient) FullName() string {
	return patient.FirstName + " " + patient.LastName
}

// GenerateUniquePatientNumber draws random 7-digit numbers until one is
// free. Exhausting the attempts means the number space is misconfigured,
// so the error is fatal for the caller, not something to show a patient.
func GenerateUniquePatientNumber(db *gorm.DB) (string, error) {
	const maxAttempts = 100

	for i := 0; i < maxAttempts; i++ {
		number := fmt.Sprintf("%d", 1000000+rand.Intn(9000000))

		var count int64
		if err := db.Model(&Patient{}).Where("patient_number = ?", number).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return number, nil
		}
	}

	return "", errors.New("unable to generate unique patient number after 100 attempts")
}
