package Controllers

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"DentalOffice/Ledger"
	"DentalOffice/Models"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/gin-gonic/gin"
)

type BillInput struct {
	PatientID         uint    `json:"patient_id" binding:"required"`
	DentistID         uint    `json:"dentist_id"`
	ServiceID         uint    `json:"service_id" binding:"required"`
	ReferenceNumber   string  `json:"reference_number"`
	Amount            float64 `json:"amount" binding:"required"`
	InsuranceCoverage float64 `json:"insurance_coverage"`
	DueDate           string  `json:"due_date"`
	Notes             string  `json:"notes"`
}

// CreateBill opens a new ledger entry for a treatment. The bill number is
// minted here; the initial patient portion is amount minus insurance.
func CreateBill(c *gin.Context) {
	var input BillInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bill := Models.Bill{
		PatientID:         input.PatientID,
		DentistID:         input.DentistID,
		ServiceID:         input.ServiceID,
		ReferenceNumber:   input.ReferenceNumber,
		Amount:            input.Amount,
		InsuranceCoverage: input.InsuranceCoverage,
		DueDate:           input.DueDate,
		Notes:             input.Notes,
	}

	if err := Ledger.CreateBill(Models.DB, &bill); err != nil {
		log.Println(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Bill created", "data": bill})
}

// AddPaymentMethod stores a payment method on file for a patient.
func AddPaymentMethod(c *gin.Context) {
	var input struct {
		PatientID     uint   `json:"patient_id" binding:"required"`
		MethodType    string `json:"method_type" binding:"required"`
		CardNumber    string `json:"card_number"`
		BankName      string `json:"bank_name"`
		AccountNumber string `json:"account_number"`
		IsDefault     bool   `json:"is_default"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	method := Models.PaymentMethod{
		PatientID:     input.PatientID,
		MethodType:    input.MethodType,
		CardNumber:    input.CardNumber,
		BankName:      input.BankName,
		AccountNumber: input.AccountNumber,
		IsDefault:     input.IsDefault,
	}
	if err := Models.DB.Create(&method).Error; err != nil {
		log.Println(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Payment method added", "data": method})
}

// ExportBillingTable writes the billing ledger to an Excel workbook for
// the front office.
func ExportBillingTable(c *gin.Context) {
	var input struct {
		DateFrom string `json:"date_from"`
		DateTo   string `json:"date_to"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, err)
		return
	}

	var bills []Models.Bill

	if input.DateFrom != "" && input.DateTo != "" {
		if err := Models.DB.Model(&Models.Bill{}).
			Where("due_date BETWEEN ? AND ?", input.DateFrom, input.DateTo).
			Find(&bills).Error; err != nil {
			c.JSON(http.StatusBadRequest, err)
			return
		}
	} else {
		if err := Models.DB.Model(&Models.Bill{}).Find(&bills).Error; err != nil {
			c.JSON(http.StatusBadRequest, err)
			return
		}
	}

	headers := map[string]string{
		"A1": "Bill Number",
		"B1": "Reference",
		"C1": "Amount",
		"D1": "Insurance",
		"E1": "Patient Portion",
		"F1": "Status",
		"G1": "Due Date",
	}
	file := excelize.NewFile()
	sheet := "Billing"
	file.NewSheet(sheet)
	file.DeleteSheet("Sheet1")
	for k, v := range headers {
		file.SetCellValue(sheet, k, v)
	}

	now := time.Now()
	for i := 0; i < len(bills); i++ {
		appendRowBilling(sheet, file, i, bills, now)
	}
	filename := "./Billing.xlsx"
	if err := file.SaveAs(filename); err != nil {
		log.Println(err)
	}
	c.File(filename)
}

func appendRowBilling(sheet string, file *excelize.File, index int, rows []Models.Bill, now time.Time) {
	rowCount := index + 2
	file.SetCellValue(sheet, fmt.Sprintf("A%v", rowCount), rows[index].BillNumber)
	file.SetCellValue(sheet, fmt.Sprintf("B%v", rowCount), rows[index].ReferenceNumber)
	file.SetCellValue(sheet, fmt.Sprintf("C%v", rowCount), rows[index].Amount)
	file.SetCellValue(sheet, fmt.Sprintf("D%v", rowCount), rows[index].InsuranceCoverage)
	file.SetCellValue(sheet, fmt.Sprintf("E%v", rowCount), rows[index].PatientPortion)
	file.SetCellValue(sheet, fmt.Sprintf("F%v", rowCount), rows[index].DisplayStatus(now))
	file.SetCellValue(sheet, fmt.Sprintf("G%v", rowCount), rows[index].DueDate)
}
