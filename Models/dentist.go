package Models

import (
	"strings"

	"gorm.io/gorm"
)

type Dentist struct {
	gorm.Model
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Specialization string `json:"specialization"`
	LicenseNumber  string `json:"license_number"`
}

// FullName always carries the "Dr." prefix even when the stored first
// name already includes it.
func (dentist *Dentist) FullName() string {
	name := dentist.FirstName + " " + dentist.LastName
	if strings.HasPrefix(dentist.FirstName, "Dr.") {
		return name
	}
	return "Dr. " + name
}

type DentalService struct {
	gorm.Model
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Type        string  `json:"type"`
}
