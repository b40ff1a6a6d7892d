// services/pdf.go
package services

import (
	"bytes"
	"fmt"
	"time"

	"dealerpro-backend/models"

	"github.com/jung-kurt/gofpdf"
)

// BuildReceiptPDF renders a one-page payment receipt.
func BuildReceiptPDF(dealership *models.Dealership, payment *models.Payment) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, dealership.Name, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 5, dealership.Address, "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 5, fmt.Sprintf("%s | %s", dealership.Phone, dealership.Email), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, "PAYMENT RECEIPT", "B", 1, "C", false, 0, "")
	pdf.Ln(4)

	client := payment.Purchase.Client
	vehicle := payment.Purchase.Vehicle

	rows := [][2]string{
		{"Receipt No", payment.ReceiptNumber},
		{"Date", payment.PaymentDate.Format("02 Jan 2006")},
		{"Received From", client.FullName()},
		{"Vehicle", fmt.Sprintf("%s %s (%s)", vehicle.Make, vehicle.Model, vehicle.RegistrationNumber)},
		{"Amount", fmt.Sprintf("%s %s", dealership.Currency, payment.Amount.StringFixed(2))},
		{"Method", payment.Method},
	}
	if payment.Reference != "" {
		rows = append(rows, [2]string{"Reference", payment.Reference})
	}
	rows = append(rows,
		[2]string{"Balance After", fmt.Sprintf("%s %s", dealership.Currency, payment.Purchase.Balance.StringFixed(2))},
	)
	if payment.ReceivedByName != "" {
		rows = append(rows, [2]string{"Received By", payment.ReceivedByName})
	}

	for _, row := range rows {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(45, 8, row[0], "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 8, row[1], "", 1, "L", false, 0, "")
	}

	pdf.Ln(10)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(0, 5, fmt.Sprintf("Generated %s", time.Now().Format("02 Jan 2006 15:04")), "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render receipt pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// BuildAgreementPDF renders the financing agreement for a plan: the terms
// followed by the full installment table. The plan must come with its
// schedule, purchase, client and vehicle preloaded.
func BuildAgreementPDF(dealership *models.Dealership, plan *models.InstallmentPlan) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, dealership.Name, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, "INSTALLMENT PAYMENT AGREEMENT", "B", 1, "C", false, 0, "")
	pdf.Ln(4)

	client := plan.Purchase.Client
	vehicle := plan.Purchase.Vehicle

	terms := [][2]string{
		{"Client", client.FullName()},
		{"National ID", client.NationalID},
		{"Vehicle", fmt.Sprintf("%s %s %d (%s)", vehicle.Make, vehicle.Model, vehicle.Year, vehicle.RegistrationNumber)},
		{"Total Amount", fmt.Sprintf("%s %s", dealership.Currency, plan.TotalAmount.StringFixed(2))},
		{"Deposit", fmt.Sprintf("%s %s", dealership.Currency, plan.DepositAmount.StringFixed(2))},
		{"Amount Financed", fmt.Sprintf("%s %s", dealership.Currency, plan.BalanceAfterDeposit().StringFixed(2))},
		{"Interest Rate", plan.InterestRate.StringFixed(2) + "% p.a. (simple)"},
		{"Total Payable", fmt.Sprintf("%s %s", dealership.Currency, plan.TotalWithInterest().StringFixed(2))},
		{"Installments", fmt.Sprintf("%d monthly of %s %s", plan.NumberOfInstallments,
			dealership.Currency, plan.MonthlyInstallment().StringFixed(2))},
		{"First Due", firstDueDate(plan)},
	}
	for _, row := range terms {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(45, 7, row[0], "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 7, row[1], "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(15, 7, "#", "1", 0, "C", true, 0, "")
	pdf.CellFormat(40, 7, "Due Date", "1", 0, "C", true, 0, "")
	pdf.CellFormat(45, 7, "Amount Due", "1", 0, "C", true, 0, "")
	pdf.CellFormat(45, 7, "Amount Paid", "1", 0, "C", true, 0, "")
	pdf.CellFormat(30, 7, "Status", "1", 1, "C", true, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for i := range plan.Schedule {
		row := &plan.Schedule[i]
		status := "pending"
		if row.IsPaid {
			status = "paid"
		} else if row.IsPartial {
			status = "partial"
		}
		pdf.CellFormat(15, 6, fmt.Sprintf("%d", row.InstallmentNumber), "1", 0, "C", false, 0, "")
		pdf.CellFormat(40, 6, row.DueDate.Format("02 Jan 2006"), "1", 0, "C", false, 0, "")
		pdf.CellFormat(45, 6, row.AmountDue.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(45, 6, row.AmountPaid.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, status, "1", 1, "C", false, 0, "")
	}

	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(90, 7, "Client signature: ______________________", "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 7, "For "+dealership.Name+": ______________________", "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render agreement pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func firstDueDate(plan *models.InstallmentPlan) string {
	if len(plan.Schedule) == 0 {
		return "-"
	}
	return plan.Schedule[0].DueDate.Format("02 Jan 2006")
}
