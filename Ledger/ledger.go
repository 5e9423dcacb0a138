package Ledger

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	mathrand "math/rand"
	"strings"
	"time"

	"DentalOffice/Models"

	"gorm.io/gorm"
)

// MinimumPayment is the floor for a single payment.
const MinimumPayment = 5.00

// ValidationError carries an actionable, caller-facing message about a
// rejected mutation: amount below the floor, overpayment, bad method.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

var (
	ErrBillNotFound   = errors.New("bill not found")
	ErrMethodNotFound = errors.New("payment method not found or not owned by patient")
)

type PaymentResult struct {
	Payment    Models.Payment
	Bill       Models.Bill
	NewBalance float64
	NewStatus  Models.BillStatus
}

// ApplyPayment appends an immutable payment row and decrements the bill's
// patient portion in one transaction. The balance check and the write
// happen as a single guarded UPDATE, so two concurrent payments can never
// jointly overdraw the portion: the loser's guard matches zero rows and
// the whole transaction rolls back with an overpayment rejection.
func ApplyPayment(db *gorm.DB, patient Models.Patient, billID uint, amount float64, paymentMethodID uint) (PaymentResult, error) {
	if amount < MinimumPayment {
		return PaymentResult{}, &ValidationError{
			Message: fmt.Sprintf("The minimum payment amount is $%.2f. Please enter a payment amount of at least $%.2f.", MinimumPayment, MinimumPayment),
		}
	}

	var method Models.PaymentMethod
	err := db.Where("id = ? AND patient_id = ?", paymentMethodID, patient.ID).First(&method).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return PaymentResult{}, ErrMethodNotFound
	}
	if err != nil {
		return PaymentResult{}, err
	}

	var result PaymentResult

	err = db.Transaction(func(tx *gorm.DB) error {
		var bill Models.Bill
		if err := tx.Where("id = ? AND patient_id = ?", billID, patient.ID).First(&bill).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBillNotFound
			}
			return err
		}

		if amount > bill.PatientPortion+0.005 {
			return &ValidationError{
				Message: fmt.Sprintf("Payment amount $%.2f exceeds the remaining balance of $%.2f. The maximum payment for this bill is $%.2f.",
					amount, bill.PatientPortion, bill.PatientPortion),
			}
		}

		payment := Models.Payment{
			BillID:            bill.ID,
			PatientID:         patient.ID,
			Amount:            amount,
			PaymentDate:       time.Now(),
			PaymentMethodID:   method.ID,
			PaymentMethodType: method.MethodType,
			Status:            "completed",
			TransactionID:     newTransactionID(),
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}

		// Guarded decrement: the WHERE re-checks the balance so a racing
		// payment that landed first forces this one to fail, not overdraw.
		update := tx.Model(&Models.Bill{}).
			Where("id = ? AND patient_portion >= ?", bill.ID, amount-0.005).
			UpdateColumn("patient_portion", gorm.Expr("patient_portion - ?", amount))
		if update.Error != nil {
			return update.Error
		}
		if update.RowsAffected == 0 {
			var current Models.Bill
			if err := tx.First(&current, bill.ID).Error; err != nil {
				return err
			}
			return &ValidationError{
				Message: fmt.Sprintf("Payment amount $%.2f exceeds the remaining balance of $%.2f. The maximum payment for this bill is $%.2f.",
					amount, current.PatientPortion, current.PatientPortion),
			}
		}

		if err := tx.First(&bill, bill.ID).Error; err != nil {
			return err
		}

		newStatus := Models.BillPartial
		if bill.PatientPortion < 0.005 {
			newStatus = Models.BillPaid
			bill.PatientPortion = 0
			if err := tx.Model(&Models.Bill{}).Where("id = ?", bill.ID).
				UpdateColumn("patient_portion", 0).Error; err != nil {
				return err
			}
		}
		if err := tx.Model(&Models.Bill{}).Where("id = ?", bill.ID).
			UpdateColumn("status", newStatus).Error; err != nil {
			return err
		}
		bill.Status = newStatus

		result = PaymentResult{
			Payment:    payment,
			Bill:       bill,
			NewBalance: bill.PatientPortion,
			NewStatus:  newStatus,
		}
		return nil
	})
	if err != nil {
		return PaymentResult{}, err
	}

	log.Printf("Payment of $%.2f applied to bill %s for patient %s, remaining $%.2f",
		amount, result.Bill.BillNumber, patient.PatientNumber, result.NewBalance)
	return result, nil
}

// OutstandingBalance sums the live patient portion across every bill not
// yet fully paid.
func OutstandingBalance(db *gorm.DB, patientID uint) (float64, error) {
	var total float64
	err := db.Model(&Models.Bill{}).
		Where("patient_id = ? AND status != ?", patientID, Models.BillPaid).
		Select("COALESCE(SUM(patient_portion), 0)").
		Scan(&total).Error
	return total, err
}

// GenerateBillNumber draws random 6-digit numbers with an existence check
// until one is free. Running out of attempts is a configuration problem,
// never a caller-facing message.
func GenerateBillNumber(db *gorm.DB) (string, error) {
	const maxAttempts = 100

	for i := 0; i < maxAttempts; i++ {
		number := fmt.Sprintf("%d", 100000+mathrand.Intn(900000))

		var count int64
		if err := db.Model(&Models.Bill{}).Where("bill_number = ?", number).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return number, nil
		}
	}

	return "", errors.New("unable to generate unique bill number after 100 attempts")
}

// CreateBill mints a new ledger entry for a treatment. Initial patient
// portion is the total minus insurance coverage.
func CreateBill(db *gorm.DB, bill *Models.Bill) error {
	number, err := GenerateBillNumber(db)
	if err != nil {
		return err
	}
	bill.BillNumber = number
	if bill.PatientPortion == 0 {
		bill.PatientPortion = bill.Amount - bill.InsuranceCoverage
	}
	if bill.PatientPortion < 0 {
		bill.PatientPortion = 0
	}
	if bill.Status == "" {
		bill.Status = Models.BillPending
	}
	return db.Create(bill).Error
}

func newTransactionID() string {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("PAY_%08X", mathrand.Uint32())
	}
	return "PAY_" + strings.ToUpper(hex.EncodeToString(buf))
}
