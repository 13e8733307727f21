package state

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inaciosamuel465/estateflow/internal/models"
)

func TestFilterProperties(t *testing.T) {
	s := NewStore()
	rented := models.PropertyRented
	s.SetProperties([]models.Property{
		{Base: models.Base{ID: "p1"}, Title: "Flat A", Status: models.PropertyAvailable, Location: "Lisboa", Price: 900},
		{Base: models.Base{ID: "p2"}, Title: "Flat B", Status: rented, Location: "Lisboa", Price: 1500},
		{Base: models.Base{ID: "p3"}, Title: "Flat C", Status: models.PropertyAvailable, Location: "Porto", Price: 700},
	})

	available := models.PropertyAvailable
	got := s.FilterProperties(models.PropertyFilter{Status: &available})
	require.Len(t, got, 2)

	got = s.FilterProperties(models.PropertyFilter{Location: "lisboa"})
	require.Len(t, got, 2, "location match is case insensitive")

	min, max := 800.0, 1000.0
	got = s.FilterProperties(models.PropertyFilter{MinPrice: &min, MaxPrice: &max})
	require.Len(t, got, 1)
	assert.Equal(t, "p1", got[0].ID)
}

func TestFinancials(t *testing.T) {
	s := NewStore()
	paidOut := time.Now()
	s.SetContracts([]models.Contract{
		{Base: models.Base{ID: "c1"}, Status: models.ContractActive, Value: 1000, CommissionRate: 10},
		{Base: models.Base{ID: "c2"}, Status: models.ContractCompleted, Value: 200000, CommissionRate: 5, OwnerPaidDate: &paidOut},
	})

	sum := s.Financials()
	assert.Equal(t, 1, sum.ActiveContracts)
	assert.Equal(t, 201000.0, sum.TotalContractValue)
	assert.Equal(t, 100.0+10000.0, sum.CommissionRevenue)
	assert.Equal(t, 1, sum.PendingOwnerPayouts)
}

func TestStoreReturnsCopies(t *testing.T) {
	s := NewStore()
	s.SetProperties([]models.Property{{Base: models.Base{ID: "p1"}, Title: "Flat"}})

	got := s.Properties()
	got[0].Title = "mutated"

	fresh, ok := s.PropertyByID("p1")
	require.True(t, ok)
	assert.Equal(t, "Flat", fresh.Title, "readers get copies, not aliases into the store")
}
