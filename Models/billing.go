package Models

import (
	"time"

	"gorm.io/gorm"
)

type BillStatus string

const (
	BillPending BillStatus = "pending"
	BillPartial BillStatus = "partial"
	BillPaid    BillStatus = "paid"
)

type Bill struct {
	gorm.Model
	PatientID uint `json:"patient_id"`
	DentistID uint `json:"dentist_id"`
	ServiceID uint `json:"service_id"`

	// BillNumber is the 6-digit human identifier, ReferenceNumber the
	// free-form key assigned at treatment time.
	BillNumber      string `json:"bill_number" gorm:"size:6;uniqueIndex"`
	ReferenceNumber string `json:"reference_number"`

	Amount            float64    `json:"amount"`
	InsuranceCoverage float64    `json:"insurance_coverage"`
	PatientPortion    float64    `json:"patient_portion"`
	Status            BillStatus `json:"status"`
	DueDate           string     `json:"due_date"`
	Notes             string     `json:"notes"`
}

// DisplayStatus derives "overdue" for presentation. Overdue is never
// stored; a bill can sit as "pending" in the row while presenting as
// overdue once its due date passes.
func (bill *Bill) DisplayStatus(now time.Time) string {
	if bill.Status != BillPaid && bill.DueDate != "" {
		if due, err := time.Parse("2006-01-02", bill.DueDate); err == nil {
			if due.Before(now.Truncate(24 * time.Hour)) {
				return "overdue"
			}
		}
	}
	return string(bill.Status)
}

// Payment rows are append-only; nothing in the codebase updates or
// deletes one after insert.
type Payment struct {
	gorm.Model
	BillID            uint      `json:"bill_id"`
	PatientID         uint      `json:"patient_id"`
	Amount            float64   `json:"amount"`
	PaymentDate       time.Time `json:"payment_date"`
	PaymentMethodID   uint      `json:"payment_method_id"`
	PaymentMethodType string    `json:"payment_method_type"`
	Status            string    `json:"status"`
	TransactionID     string    `json:"transaction_id"`
	Notes             string    `json:"notes"`
}

type PaymentMethod struct {
	gorm.Model
	PatientID     uint   `json:"patient_id"`
	MethodType    string `json:"method_type"`
	CardNumber    string `json:"card_number"`
	BankName      string `json:"bank_name"`
	AccountNumber string `json:"account_number"`
	IsDefault     bool   `json:"is_default"`
}

// MaskedDetails is what confirmations and exports show instead of the
// raw card or account number.
func (method *PaymentMethod) MaskedDetails() string {
	switch method.MethodType {
	case "credit_card":
		if len(method.CardNumber) >= 4 {
			return "**** **** **** " + method.CardNumber[len(method.CardNumber)-4:]
		}
	case "banking":
		if len(method.AccountNumber) >= 4 {
			return method.BankName + " - ****" + method.AccountNumber[len(method.AccountNumber)-4:]
		}
	}
	return method.MethodType
}
