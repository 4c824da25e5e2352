package export

import (
	"bytes"
	"fmt"

	"github.com/phpdave11/gofpdf"

	"github.com/abdullaharshad/budget-tracker/internal/models"
)

// BuildPDF renders a user's transactions and summary as a printable report.
func BuildPDF(userName string, transactions []models.Transaction, summary *models.Summary) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Budget Tracker Report", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "Budget Tracker Report")
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("User: %s", userName))
	pdf.Ln(10)

	if summary != nil {
		pdf.SetFont("Helvetica", "B", 14)
		pdf.Cell(0, 8, fmt.Sprintf("Income: %.2f    Expense: %.2f    Balance: %.2f",
			summary.TotalIncome, summary.TotalExpense, summary.Balance))
		pdf.Ln(12)
	}

	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(60, 7, "Title")
	pdf.Cell(30, 7, "Amount")
	pdf.Cell(40, 7, "Category")
	pdf.Cell(25, 7, "Type")
	pdf.Cell(30, 7, "Date")
	pdf.Ln(7)

	pdf.SetFont("Helvetica", "", 11)
	for _, t := range transactions {
		pdf.Cell(60, 7, t.Title)
		pdf.Cell(30, 7, fmt.Sprintf("%.2f", t.Amount))
		pdf.Cell(40, 7, t.Category)
		pdf.Cell(25, 7, t.Type)
		pdf.Cell(30, 7, t.Date.Format("2006-01-02"))
		pdf.Ln(7)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
