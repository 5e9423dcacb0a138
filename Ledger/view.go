package Ledger

import (
	"errors"
	"time"

	"DentalOffice/Models"

	"gorm.io/gorm"
)

// BillDetails is the enriched read model behind bill lookups: the ledger
// row joined with its service, provider, and payment history.
type BillDetails struct {
	Bill          Models.Bill      `json:"bill"`
	ServiceName   string           `json:"service_name"`
	DentistName   string           `json:"dentist_name"`
	Payments      []Models.Payment `json:"payments"`
	TotalPaid     float64          `json:"total_paid"`
	DisplayStatus string           `json:"display_status"`
}

// View loads the enriched form of one bill, scoped to the owning patient.
// Read-only; no locking beyond normal read consistency.
func View(db *gorm.DB, patientID, billID uint) (BillDetails, error) {
	var bill Models.Bill
	err := db.Where("id = ? AND patient_id = ?", billID, patientID).First(&bill).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return BillDetails{}, ErrBillNotFound
	}
	if err != nil {
		return BillDetails{}, err
	}

	return enrich(db, bill)
}

// ViewAll loads the enriched form of every bill matching the query
// already applied to tx, newest due date first.
func ViewAll(tx *gorm.DB) ([]BillDetails, error) {
	var bills []Models.Bill
	if err := tx.Order("due_date DESC").Find(&bills).Error; err != nil {
		return nil, err
	}

	details := make([]BillDetails, 0, len(bills))
	for _, bill := range bills {
		detail, err := enrich(tx.Session(&gorm.Session{NewDB: true}), bill)
		if err != nil {
			return nil, err
		}
		details = append(details, detail)
	}
	return details, nil
}

func enrich(db *gorm.DB, bill Models.Bill) (BillDetails, error) {
	detail := BillDetails{
		Bill:          bill,
		DisplayStatus: bill.DisplayStatus(time.Now()),
	}

	var service Models.DentalService
	if err := db.First(&service, bill.ServiceID).Error; err == nil {
		detail.ServiceName = service.Name
	}

	var dentist Models.Dentist
	if err := db.First(&dentist, bill.DentistID).Error; err == nil {
		detail.DentistName = dentist.FullName()
	}

	var payments []Models.Payment
	if err := db.Where("bill_id = ?", bill.ID).Order("payment_date DESC").Find(&payments).Error; err != nil {
		return BillDetails{}, err
	}
	detail.Payments = payments
	for _, payment := range payments {
		detail.TotalPaid += payment.Amount
	}

	return detail, nil
}
