package reports

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/inaciosamuel465/estateflow/internal/models"
)

// BuildContractStatement renders a one-page PDF statement for a contract:
// the parties, the financial terms, and the payment position.
func BuildContractStatement(appName string, c models.Contract, generatedAt time.Time) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("%s contract statement", appName), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, fmt.Sprintf("%s - Contract Statement", appName))
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(120, 120, 120)
	pdf.Cell(0, 6, fmt.Sprintf("Generated %s", generatedAt.Format("2 Jan 2006 15:04")))
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(12)

	row := func(label, value string) {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(55, 7, label, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 7, value, "", "L", false)
	}

	row("Contract", c.ID)
	row("Property", c.PropertyTitle)
	row("Type", string(c.Type))
	row("Status", string(c.Status))
	pdf.Ln(4)

	row("Client", fmt.Sprintf("%s  %s", c.ClientName, c.ClientPhone))
	row("Owner", fmt.Sprintf("%s  %s", c.OwnerName, c.OwnerPhone))
	pdf.Ln(4)

	row("Value", fmt.Sprintf("%.2f", c.Value))
	row("Commission", fmt.Sprintf("%.2f (%.1f%%)", c.Commission(), c.CommissionRate))
	row("Start date", c.StartDate.Format("2 Jan 2006"))
	if c.EndDate != nil {
		row("End date", c.EndDate.Format("2 Jan 2006"))
	} else {
		row("End date", "open ended")
	}
	pdf.Ln(4)

	row("Next payment", string(c.NextPaymentStatus))
	if c.LastPaymentDate != nil {
		row("Last payment", c.LastPaymentDate.Format("2 Jan 2006"))
	}
	if c.InstallmentsTotal != nil {
		paid := 0
		if c.InstallmentsPaid != nil {
			paid = *c.InstallmentsPaid
		}
		row("Installments", fmt.Sprintf("%d of %d paid", paid, *c.InstallmentsTotal))
	}
	if c.OwnerPaidDate != nil {
		row("Owner payout", c.OwnerPaidDate.Format("2 Jan 2006"))
	} else {
		row("Owner payout", "pending")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render contract statement: %w", err)
	}
	return buf.Bytes(), nil
}
