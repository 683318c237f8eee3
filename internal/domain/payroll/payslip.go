package payroll

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"crewshift/internal/domain/auth"
	"crewshift/internal/domain/calendar"
)

func RenderPayslip(rec Record, worker auth.User) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Payslip")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Worker: %s", worker.Name))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Email: %s", worker.Email))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Week: %s to %s", calendar.FormatDate(rec.WeekStart), calendar.FormatDate(rec.WeekEnd)))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Shift: %s", rec.ShiftID))
	pdf.Ln(10)
	pdf.Cell(0, 8, fmt.Sprintf("Hours worked: %s", rec.HoursWorked.StringFixed(2)))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Full day rate: %s", rec.FullDayRate.StringFixed(2)))
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Total: %s", rec.TotalAmount.StringFixed(2)))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
