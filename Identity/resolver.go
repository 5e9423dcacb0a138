package Identity

import (
	"errors"
	"strconv"
	"strings"

	"DentalOffice/Models"

	"gorm.io/gorm"
)

var (
	// ErrNotFound means no patient matched the supplied identifier.
	ErrNotFound = errors.New("patient not found")
	// ErrAmbiguous means more than one patient matched; the caller has to
	// supply the patient number instead.
	ErrAmbiguous = errors.New("multiple patients matched")
)

// FindByNumber looks a patient up by internal id or external patient
// number. Exact match only.
func FindByNumber(db *gorm.DB, number string) (Models.Patient, error) {
	number = strings.TrimSpace(number)
	id, idErr := strconv.Atoi(number)
	if idErr != nil {
		id = 0
	}

	var patient Models.Patient
	err := db.Where("id = ? OR patient_number = ?", id, number).First(&patient).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Models.Patient{}, ErrNotFound
	}
	if err != nil {
		return Models.Patient{}, err
	}
	return patient, nil
}

// FindByName matches on a trimmed, case-insensitive first/last pair.
// Zero hits triggers one retry with the names swapped, since callers
// routinely dictate them in the wrong order. More than one hit at either
// stage is ambiguous.
func FindByName(db *gorm.DB, firstName, lastName string) (Models.Patient, error) {
	patients, err := matchName(db, firstName, lastName)
	if err != nil {
		return Models.Patient{}, err
	}

	if len(patients) == 0 {
		patients, err = matchName(db, lastName, firstName)
		if err != nil {
			return Models.Patient{}, err
		}
	}

	switch len(patients) {
	case 0:
		return Models.Patient{}, ErrNotFound
	case 1:
		return patients[0], nil
	}
	return Models.Patient{}, ErrAmbiguous
}

func matchName(db *gorm.DB, firstName, lastName string) ([]Models.Patient, error) {
	var patients []Models.Patient
	err := db.Where("LOWER(TRIM(first_name)) = ? AND LOWER(TRIM(last_name)) = ?",
		strings.ToLower(strings.TrimSpace(firstName)),
		strings.ToLower(strings.TrimSpace(lastName))).
		Find(&patients).Error
	return patients, err
}

// FindByPhone is the fallback when the caller gave no other identifying
// information. The raw number is normalized before lookup.
func FindByPhone(db *gorm.DB, rawPhone string) (Models.Patient, error) {
	phone, err := FormatToE164(rawPhone)
	if err != nil {
		return Models.Patient{}, err
	}

	var patient Models.Patient
	err = db.Where("phone = ?", phone).First(&patient).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Models.Patient{}, ErrNotFound
	}
	if err != nil {
		return Models.Patient{}, err
	}
	return patient, nil
}
