package reports

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inaciosamuel465/estateflow/internal/models"
	"github.com/inaciosamuel465/estateflow/internal/state"
)

func sampleContract() models.Contract {
	end := time.Date(2027, 1, 31, 0, 0, 0, 0, time.UTC)
	return models.Contract{
		Base:           models.Base{ID: "c1"},
		PropertyTitle:  "Casa Azul",
		Type:           models.ContractRent,
		Status:         models.ContractActive,
		ClientName:     "Ana",
		OwnerName:      "Bruno",
		Value:          1200,
		CommissionRate: 10,
		StartDate:      time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		EndDate:        &end,
	}
}

func TestBuildFinancialWorkbook(t *testing.T) {
	summary := state.FinancialSummary{
		ActiveContracts:     1,
		TotalContractValue:  1200,
		CommissionRevenue:   120,
		PendingOwnerPayouts: 1,
	}
	f, err := BuildFinancialWorkbook(summary, []models.Contract{sampleContract()}, time.Now())
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{"Summary", "Contracts"}, f.GetSheetList())

	got, err := f.GetCellValue("Contracts", "B2")
	require.NoError(t, err)
	assert.Equal(t, "Casa Azul", got)

	label, err := f.GetCellValue("Summary", "A3")
	require.NoError(t, err)
	assert.Equal(t, "Active contracts", label)
}

func TestBuildContractStatement(t *testing.T) {
	data, err := BuildContractStatement("EstateFlow", sampleContract(), time.Now())
	require.NoError(t, err)
	require.NotEmpty(t, data)
	assert.Equal(t, "%PDF", string(data[:4]))
}
