package Resolve

import (
	"errors"
	"strconv"
	"strings"

	"DentalOffice/Models"

	"gorm.io/gorm"
)

var (
	// ErrNotFound means no record matched at any tier. Callers get a
	// candidate list (up to MaxCandidates) to offer alternatives.
	ErrNotFound = errors.New("no matching record")
	// ErrAmbiguous means a fuzzy tier matched more than one record.
	// Mutating operations must never auto-pick from the candidates.
	ErrAmbiguous = errors.New("multiple matching records")
)

// MaxCandidates caps how many alternatives a failed or ambiguous lookup
// reports back to the caller.
const MaxCandidates = 5

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, char := range s {
		if char < '0' || char > '9' {
			return false
		}
	}
	return true
}

// serviceSynonyms maps common caller phrasings onto the service type
// families in the catalog. Checked after exact name/type matching, before
// substring matching.
var serviceSynonyms = map[string]string{
	"regular cleaning":       "cleaning",
	"deep cleaning":          "cleaning",
	"dental cleaning":        "cleaning",
	"cavity filling":         "filling",
	"composite filling":      "filling",
	"teeth whitening":        "whitening",
	"professional whitening": "whitening",
	"tooth whitening":        "whitening",
	"root canal":             "root_canal",
	"root canal treatment":   "root_canal",
	"tooth extraction":       "extraction",
	"dental extraction":      "extraction",
	"braces":                 "orthodontics",
	"orthodontic":            "orthodontics",
	"dental checkup":         "checkup",
	"regular checkup":        "checkup",
	"examination":            "checkup",
}

// Service resolves a numeric id or loose service reference to exactly one
// catalog row. Tiers, first match wins: primary key, exact
// case-insensitive name or type, synonym table, substring.
func Service(db *gorm.DB, ref string) (Models.DentalService, []Models.DentalService, error) {
	ref = strings.TrimSpace(ref)

	if isDigits(ref) {
		id, _ := strconv.Atoi(ref)
		var service Models.DentalService
		if err := db.First(&service, id).Error; err == nil {
			return service, nil, nil
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return Models.DentalService{}, nil, err
		}
		candidates, err := serviceCandidates(db)
		return Models.DentalService{}, candidates, firstNonNil(err, ErrNotFound)
	}

	lowered := strings.ToLower(ref)

	var matches []Models.DentalService
	if err := db.Where("LOWER(name) = ? OR LOWER(type) = ?", lowered, lowered).Find(&matches).Error; err != nil {
		return Models.DentalService{}, nil, err
	}

	if len(matches) == 0 {
		for phrase, serviceType := range serviceSynonyms {
			if strings.Contains(lowered, phrase) {
				if err := db.Where("LOWER(type) = ?", serviceType).Find(&matches).Error; err != nil {
					return Models.DentalService{}, nil, err
				}
				break
			}
		}
	}

	if len(matches) == 0 {
		if err := db.Where("LOWER(name) LIKE ?", "%"+lowered+"%").Find(&matches).Error; err != nil {
			return Models.DentalService{}, nil, err
		}
	}

	switch len(matches) {
	case 0:
		candidates, err := serviceCandidates(db)
		return Models.DentalService{}, candidates, firstNonNil(err, ErrNotFound)
	case 1:
		return matches[0], nil, nil
	}
	return Models.DentalService{}, capServices(matches), ErrAmbiguous
}

// Dentist resolves a numeric id or loose name reference to one provider.
func Dentist(db *gorm.DB, ref string) (Models.Dentist, []Models.Dentist, error) {
	ref = strings.TrimSpace(ref)

	if isDigits(ref) {
		id, _ := strconv.Atoi(ref)
		var dentist Models.Dentist
		if err := db.First(&dentist, id).Error; err == nil {
			return dentist, nil, nil
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return Models.Dentist{}, nil, err
		}
		candidates, err := dentistCandidates(db)
		return Models.Dentist{}, candidates, firstNonNil(err, ErrNotFound)
	}

	lowered := strings.ToLower(strings.TrimPrefix(strings.TrimPrefix(ref, "Dr. "), "dr. "))

	var matches []Models.Dentist
	if err := db.Where("LOWER(first_name || ' ' || last_name) = ?", lowered).Find(&matches).Error; err != nil {
		return Models.Dentist{}, nil, err
	}

	if len(matches) == 0 {
		if err := db.Where("LOWER(first_name || ' ' || last_name) LIKE ?", "%"+lowered+"%").Find(&matches).Error; err != nil {
			return Models.Dentist{}, nil, err
		}
	}

	switch len(matches) {
	case 0:
		candidates, err := dentistCandidates(db)
		return Models.Dentist{}, candidates, firstNonNil(err, ErrNotFound)
	case 1:
		return matches[0], nil, nil
	}
	return Models.Dentist{}, capDentists(matches), ErrAmbiguous
}

func serviceCandidates(db *gorm.DB) ([]Models.DentalService, error) {
	var candidates []Models.DentalService
	err := db.Limit(MaxCandidates).Find(&candidates).Error
	return candidates, err
}

func dentistCandidates(db *gorm.DB) ([]Models.Dentist, error) {
	var candidates []Models.Dentist
	err := db.Limit(MaxCandidates).Find(&candidates).Error
	return candidates, err
}

func capServices(matches []Models.DentalService) []Models.DentalService {
	if len(matches) > MaxCandidates {
		return matches[:MaxCandidates]
	}
	return matches
}

func capDentists(matches []Models.Dentist) []Models.Dentist {
	if len(matches) > MaxCandidates {
		return matches[:MaxCandidates]
	}
	return matches
}

func firstNonNil(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
