package Resolve

import (
	"errors"
	"strconv"
	"strings"

	"DentalOffice/Models"

	"gorm.io/gorm"
)

// Bill resolves a loose bill reference for one patient. Tiers, first
// match wins: internal id, 6-digit bill number, exact reference number,
// reference suffix (last 8 characters), reference substring with
// underscores stripped. All matching is case-insensitive and scoped to
// the patient, so a caller can never resolve someone else's bill.
func Bill(db *gorm.DB, patientID uint, ref string) (Models.Bill, []Models.Bill, error) {
	ref = strings.TrimSpace(ref)
	scoped := db.Where("patient_id = ?", patientID)

	if isDigits(ref) {
		id, _ := strconv.Atoi(ref)
		var bill Models.Bill
		if err := scoped.Session(&gorm.Session{}).Where("(id = ? OR bill_number = ?)", id, ref).First(&bill).Error; err == nil {
			return bill, nil, nil
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return Models.Bill{}, nil, err
		}
	}

	upper := strings.ToUpper(ref)

	var matches []Models.Bill
	if err := scoped.Session(&gorm.Session{}).Where("UPPER(reference_number) = ?", upper).Find(&matches).Error; err != nil {
		return Models.Bill{}, nil, err
	}

	if len(matches) == 0 && len(upper) >= 8 {
		suffix := upper[len(upper)-8:]
		if err := scoped.Session(&gorm.Session{}).
			Where("LENGTH(reference_number) >= 8 AND UPPER(SUBSTR(reference_number, LENGTH(reference_number) - 7, 8)) = ?", suffix).
			Find(&matches).Error; err != nil {
			return Models.Bill{}, nil, err
		}
	}

	if len(matches) == 0 {
		stripped := strings.ReplaceAll(upper, "_", "")
		if err := scoped.Session(&gorm.Session{}).
			Where("(UPPER(reference_number) LIKE ? OR UPPER(REPLACE(reference_number, '_', '')) LIKE ?)",
				"%"+upper+"%", "%"+stripped+"%").
			Find(&matches).Error; err != nil {
			return Models.Bill{}, nil, err
		}
	}

	switch len(matches) {
	case 0:
		candidates, err := billCandidates(db, patientID)
		return Models.Bill{}, candidates, firstNonNil(err, ErrNotFound)
	case 1:
		return matches[0], nil, nil
	}
	return Models.Bill{}, capBills(matches), ErrAmbiguous
}

func billCandidates(db *gorm.DB, patientID uint) ([]Models.Bill, error) {
	var candidates []Models.Bill
	err := db.Where("patient_id = ?", patientID).
		Order("due_date DESC").
		Limit(MaxCandidates).
		Find(&candidates).Error
	return candidates, err
}

func capBills(matches []Models.Bill) []Models.Bill {
	if len(matches) > MaxCandidates {
		return matches[:MaxCandidates]
	}
	return matches
}
