package Voice

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"DentalOffice/Ledger"
	"DentalOffice/Models"
	"DentalOffice/Notifications"
	"DentalOffice/Resolve"

	"github.com/gin-gonic/gin"
)

type checkBalanceInput struct {
	ChallengeToken string `json:"challenge_token"`
}

// CheckBalance reports the caller's total outstanding balance across all
// unpaid bills.
func CheckBalance(c *gin.Context) {
	var input checkBalanceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	patient, ok := authorize(c, input.ChallengeToken)
	if !ok {
		return
	}

	balance, err := Ledger.OutstandingBalance(Models.DB, patient.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	respond(c, fmt.Sprintf("Your current outstanding balance is $%.2f", balance), gin.H{
		"balance":    balance,
		"patient_id": patient.PatientNumber,
	})
}

type getBillsInput struct {
	ChallengeToken  string   `json:"challenge_token"`
	ServiceName     string   `json:"service_name"`
	Status          string   `json:"status"`
	AmountMin       *float64 `json:"amount_min"`
	AmountMax       *float64 `json:"amount_max"`
	DueDate         string   `json:"due_date"`
	ReferenceNumber string   `json:"reference_number"`
}

// GetBills lists the caller's bills with optional fuzzy filters, each
// enriched with service, provider, and payment history.
func GetBills(c *gin.Context) {
	var input getBillsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	patient, ok := authorize(c, input.ChallengeToken)
	if !ok {
		return
	}

	tx := Models.DB.Where("patient_id = ?", patient.ID)

	var filters []string
	if input.ServiceName != "" {
		filters = append(filters, fmt.Sprintf("service '%s'", input.ServiceName))
		var serviceIDs []uint
		if err := Models.DB.Model(&Models.DentalService{}).
			Where("UPPER(name) LIKE ? OR UPPER(description) LIKE ?",
				"%"+strings.ToUpper(input.ServiceName)+"%", "%"+strings.ToUpper(input.ServiceName)+"%").
			Pluck("id", &serviceIDs).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		tx = tx.Where("service_id IN ?", serviceIDs)
	}
	if input.Status != "" {
		filters = append(filters, fmt.Sprintf("status '%s'", input.Status))
		today := time.Now().Format("2006-01-02")
		switch strings.ToLower(input.Status) {
		case "paid":
			tx = tx.Where("status = ?", Models.BillPaid)
		case "partial":
			tx = tx.Where("status = ?", Models.BillPartial)
		case "overdue":
			tx = tx.Where("status != ? AND due_date != '' AND due_date < ?", Models.BillPaid, today)
		case "pending":
			// A bill without a due date is pending, never overdue.
			tx = tx.Where("status = ? AND (due_date = '' OR due_date >= ?)", Models.BillPending, today)
		}
	}
	if input.AmountMin != nil {
		filters = append(filters, fmt.Sprintf("amount over $%.2f", *input.AmountMin))
		tx = tx.Where("(amount >= ? OR patient_portion >= ?)", *input.AmountMin, *input.AmountMin)
	}
	if input.AmountMax != nil {
		filters = append(filters, fmt.Sprintf("amount under $%.2f", *input.AmountMax))
		tx = tx.Where("(amount <= ? OR patient_portion <= ?)", *input.AmountMax, *input.AmountMax)
	}
	if input.DueDate != "" {
		filters = append(filters, fmt.Sprintf("due date '%s'", input.DueDate))
		tx = tx.Where("due_date = ?", input.DueDate)
	}
	if input.ReferenceNumber != "" {
		filters = append(filters, fmt.Sprintf("reference '%s'", input.ReferenceNumber))
		tx = tx.Where("UPPER(reference_number) LIKE ?", "%"+strings.ToUpper(strings.TrimSpace(input.ReferenceNumber))+"%")
	}

	details, err := Ledger.ViewAll(tx.Model(&Models.Bill{}))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	filterText := ""
	if len(filters) > 0 {
		filterText = " matching " + strings.Join(filters, ", ")
	}

	if len(details) == 0 {
		message := fmt.Sprintf("No bills found%s on your account.", filterText)
		if len(filters) > 0 {
			message += " Try removing some filters to see more bills."
		}
		respond(c, message, gin.H{"bills": []Ledger.BillDetails{}, "patient_id": patient.PatientNumber})
		return
	}

	var totalDue float64
	for _, detail := range details {
		if detail.Bill.Status != Models.BillPaid {
			totalDue += detail.Bill.PatientPortion
		}
	}

	summary := fmt.Sprintf("Found %d bill(s)%s. ", len(details), filterText)
	if totalDue > 0 {
		summary += fmt.Sprintf("Total amount due: $%.2f.", totalDue)
	} else {
		summary += "All matching bills are paid."
	}
	for i, detail := range details {
		summary += fmt.Sprintf("\n%d. Bill #%s - %s: $%.2f remaining (%s), reference %s",
			i+1, detail.Bill.BillNumber, detail.ServiceName, detail.Bill.PatientPortion,
			detail.DisplayStatus, detail.Bill.ReferenceNumber)
		if detail.DentistName != "" {
			summary += fmt.Sprintf(", provider %s", detail.DentistName)
		}
		if detail.Bill.DueDate != "" {
			summary += fmt.Sprintf(", due %s", detail.Bill.DueDate)
		}
		if len(detail.Payments) > 0 {
			summary += fmt.Sprintf(", %d payment(s) totaling $%.2f", len(detail.Payments), detail.TotalPaid)
		}
	}

	respond(c, summary, gin.H{
		"bills":            details,
		"patient_id":       patient.PatientNumber,
		"total_bills":      len(details),
		"total_amount_due": totalDue,
	})
}

type makePaymentInput struct {
	ChallengeToken  string  `json:"challenge_token"`
	BillID          string  `json:"bill_id" binding:"required"`
	Amount          float64 `json:"amount" binding:"required"`
	PaymentMethodID uint    `json:"payment_method_id" binding:"required"`
}

// MakePayment applies a full or partial payment to a bill identified by
// id, bill number, or reference number.
func MakePayment(c *gin.Context) {
	var input makePaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	patient, ok := authorize(c, input.ChallengeToken)
	if !ok {
		return
	}

	bill, candidates, err := Resolve.Bill(Models.DB, patient.ID, input.BillID)
	if errors.Is(err, Resolve.ErrNotFound) || errors.Is(err, Resolve.ErrAmbiguous) {
		respond(c, billLookupMessage(input.BillID, candidates, err), gin.H{"candidates": candidates})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	result, err := Ledger.ApplyPayment(Models.DB, patient, bill.ID, input.Amount, input.PaymentMethodID)
	if err != nil {
		var validation *Ledger.ValidationError
		switch {
		case errors.As(err, &validation):
			respond(c, validation.Message, nil)
		case errors.Is(err, Ledger.ErrMethodNotFound):
			respond(c, "Invalid payment method or payment method does not belong to your account.", nil)
		case errors.Is(err, Ledger.ErrBillNotFound):
			respond(c, fmt.Sprintf("No bill found for '%s' on your account.", input.BillID), nil)
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	var serviceName string
	var service Models.DentalService
	if err := Models.DB.First(&service, result.Bill.ServiceID).Error; err == nil {
		serviceName = service.Name
	}
	Notifications.PaymentReceived(patient, serviceName, input.Amount, result.NewBalance,
		result.Payment.TransactionID, result.Bill.ReferenceNumber)

	respond(c, fmt.Sprintf("Payment of $%.2f processed successfully for bill reference %s. Remaining balance: $%.2f",
		input.Amount, result.Bill.ReferenceNumber, result.NewBalance), gin.H{
		"patient_id":        patient.PatientNumber,
		"amount_paid":       input.Amount,
		"remaining_balance": result.NewBalance,
		"bill_id":           result.Bill.ID,
		"status":            result.NewStatus,
		"reference_number":  result.Bill.ReferenceNumber,
		"payment_reference": result.Payment.TransactionID,
	})
}

type getPaymentMethodsInput struct {
	ChallengeToken string `json:"challenge_token"`
}

// GetPaymentMethods lists the payment methods on file so the agent can
// offer them by id before taking a payment. Details are masked; the raw
// card or account number never crosses this surface.
func GetPaymentMethods(c *gin.Context) {
	var input getPaymentMethodsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	patient, ok := authorize(c, input.ChallengeToken)
	if !ok {
		return
	}

	var methods []Models.PaymentMethod
	if err := Models.DB.Where("patient_id = ?", patient.ID).Order("is_default DESC, id").Find(&methods).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if len(methods) == 0 {
		respond(c, "You have no payment methods on file. Please contact the office to add one before paying by phone.", gin.H{
			"payment_methods": []gin.H{},
			"patient_id":      patient.PatientNumber,
		})
		return
	}

	summary := fmt.Sprintf("You have %d payment method(s) on file.", len(methods))
	listed := make([]gin.H, 0, len(methods))
	for i, method := range methods {
		masked := method.MaskedDetails()
		summary += fmt.Sprintf("\n%d. Method #%d - %s: %s", i+1, method.ID, method.MethodType, masked)
		if method.IsDefault {
			summary += " (default)"
		}
		listed = append(listed, gin.H{
			"id":          method.ID,
			"method_type": method.MethodType,
			"details":     masked,
			"is_default":  method.IsDefault,
		})
	}

	respond(c, summary, gin.H{
		"payment_methods": listed,
		"patient_id":      patient.PatientNumber,
	})
}

type billDetailsInput struct {
	ChallengeToken string `json:"challenge_token"`
	BillID         string `json:"bill_id" binding:"required"`
}

// GetBillDetails reads back one bill with its service, provider, and full
// payment history.
func GetBillDetails(c *gin.Context) {
	var input billDetailsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	patient, ok := authorize(c, input.ChallengeToken)
	if !ok {
		return
	}

	bill, candidates, err := Resolve.Bill(Models.DB, patient.ID, input.BillID)
	if errors.Is(err, Resolve.ErrNotFound) || errors.Is(err, Resolve.ErrAmbiguous) {
		respond(c, billLookupMessage(input.BillID, candidates, err), gin.H{"candidates": candidates})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	detail, err := Ledger.View(Models.DB, patient.ID, bill.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	summary := fmt.Sprintf("Bill #%s (reference %s): total $%.2f, insurance covered $%.2f, $%.2f remaining, status %s.",
		detail.Bill.BillNumber, detail.Bill.ReferenceNumber, detail.Bill.Amount,
		detail.Bill.InsuranceCoverage, detail.Bill.PatientPortion, detail.DisplayStatus)
	if detail.ServiceName != "" {
		summary += fmt.Sprintf(" Service: %s.", detail.ServiceName)
	}
	if detail.DentistName != "" {
		summary += fmt.Sprintf(" Provider: %s.", detail.DentistName)
	}
	if detail.Bill.DueDate != "" {
		summary += fmt.Sprintf(" Due %s.", detail.Bill.DueDate)
	}
	if len(detail.Payments) > 0 {
		summary += fmt.Sprintf(" %d payment(s) totaling $%.2f:", len(detail.Payments), detail.TotalPaid)
		for _, payment := range detail.Payments {
			summary += fmt.Sprintf(" $%.2f on %s (ref %s);",
				payment.Amount, payment.PaymentDate.Format("2006-01-02"), payment.TransactionID)
		}
	} else {
		summary += " No payments recorded yet."
	}

	respond(c, summary, gin.H{
		"bill":       detail,
		"patient_id": patient.PatientNumber,
	})
}

type verifyBillReferenceInput struct {
	ChallengeToken  string `json:"challenge_token"`
	ReferenceNumber string `json:"reference_number" binding:"required"`
}

// VerifyBillReference confirms whether a dictated reference resolves to a
// bill on the caller's account before the agent commits to a payment.
func VerifyBillReference(c *gin.Context) {
	var input verifyBillReferenceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	patient, ok := authorize(c, input.ChallengeToken)
	if !ok {
		return
	}

	bill, candidates, err := Resolve.Bill(Models.DB, patient.ID, input.ReferenceNumber)
	if errors.Is(err, Resolve.ErrNotFound) || errors.Is(err, Resolve.ErrAmbiguous) {
		respond(c, billLookupMessage(input.ReferenceNumber, candidates, err), gin.H{
			"verified":   false,
			"candidates": candidates,
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	respond(c, fmt.Sprintf("Yes, that matches bill #%s with reference %s on your account: $%.2f remaining, status %s.",
		bill.BillNumber, bill.ReferenceNumber, bill.PatientPortion, bill.DisplayStatus(time.Now())), gin.H{
		"verified":         true,
		"bill_id":          bill.ID,
		"bill_number":      bill.BillNumber,
		"reference_number": bill.ReferenceNumber,
		"patient_portion":  bill.PatientPortion,
	})
}

func billLookupMessage(ref string, candidates []Models.Bill, err error) string {
	var message string
	if errors.Is(err, Resolve.ErrAmbiguous) {
		message = fmt.Sprintf("More than one bill matches '%s'. ", ref)
	} else {
		message = fmt.Sprintf("No bill found with ID or reference number '%s' for your account. ", ref)
	}
	if len(candidates) > 0 {
		var refs []string
		for _, bill := range candidates {
			refs = append(refs, fmt.Sprintf("#%s (%s)", bill.BillNumber, bill.ReferenceNumber))
		}
		message += "Your bills include: " + strings.Join(refs, ", ") + "."
	}
	return message
}
