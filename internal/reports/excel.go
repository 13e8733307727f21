package reports

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/inaciosamuel465/estateflow/internal/models"
	"github.com/inaciosamuel465/estateflow/internal/state"
)

// BuildFinancialWorkbook renders the portfolio report: a summary sheet with
// the headline totals and a contracts sheet with one row per contract.
// The caller owns the returned file and must Close it.
func BuildFinancialWorkbook(summary state.FinancialSummary, contracts []models.Contract, generatedAt time.Time) (*excelize.File, error) {
	f := excelize.NewFile()

	const summarySheet = "Summary"
	const contractsSheet = "Contracts"
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, fmt.Errorf("failed to rename summary sheet: %w", err)
	}
	if _, err := f.NewSheet(contractsSheet); err != nil {
		return nil, fmt.Errorf("failed to create contracts sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#DDEBF7"}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	// Summary sheet.
	summaryRows := [][]interface{}{
		{"Generated", generatedAt.Format("2006-01-02 15:04")},
		{},
		{"Active contracts", summary.ActiveContracts},
		{"Total contract value", summary.TotalContractValue},
		{"Commission revenue", summary.CommissionRevenue},
		{"Pending owner payouts", summary.PendingOwnerPayouts},
	}
	for i, row := range summaryRows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write summary row %d: %w", i+1, err)
		}
	}

	// Contracts sheet.
	headers := []interface{}{
		"Contract ID", "Property", "Type", "Status", "Client", "Owner",
		"Value", "Commission", "Start", "End", "Owner paid",
	}
	if err := f.SetSheetRow(contractsSheet, "A1", &headers); err != nil {
		return nil, fmt.Errorf("failed to write contract headers: %w", err)
	}
	if err := f.SetCellStyle(contractsSheet, "A1", "K1", headerStyle); err != nil {
		return nil, fmt.Errorf("failed to style contract headers: %w", err)
	}

	for i, c := range contracts {
		end := ""
		if c.EndDate != nil {
			end = c.EndDate.Format("2006-01-02")
		}
		ownerPaid := "no"
		if c.OwnerPaidDate != nil {
			ownerPaid = c.OwnerPaidDate.Format("2006-01-02")
		}
		row := []interface{}{
			c.ID, c.PropertyTitle, string(c.Type), string(c.Status),
			c.ClientName, c.OwnerName, c.Value, c.Commission(),
			c.StartDate.Format("2006-01-02"), end, ownerPaid,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(contractsSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write contract row %d: %w", i+2, err)
		}
	}

	if err := f.SetColWidth(contractsSheet, "A", "B", 28); err != nil {
		return nil, err
	}
	return f, nil
}
