package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inaciosamuel465/estateflow/internal/config"
	"github.com/inaciosamuel465/estateflow/internal/models"
	"github.com/inaciosamuel465/estateflow/internal/state"
	"github.com/inaciosamuel465/estateflow/internal/utils"
)

func TestPropertyServiceLifecycle(t *testing.T) {
	db := utils.SetupTestDB(t, "estateflow_test", propertiesCollection)
	svc := NewPropertyService(db, &config.Config{})
	ctx := context.Background()

	p := models.Property{
		Base:     models.NewBase(),
		Title:    "Casa Azul",
		Status:   models.PropertyAvailable,
		Price:    1850,
		Location: "Maputo, Sommerschield",
	}
	require.NoError(t, svc.CreateProperty(ctx, p))

	got, err := svc.FindPropertyByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Casa Azul", got.Title)
	assert.False(t, got.CreatedAt.IsZero())

	price := 1950.0
	require.NoError(t, svc.UpdateProperty(ctx, p.ID, state.PropertyUpdate{Price: &price}))
	got, err = svc.FindPropertyByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1950.0, got.Price)

	require.NoError(t, svc.SetPropertyStatus(ctx, p.ID, models.PropertyRented))
	got, err = svc.FindPropertyByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PropertyRented, got.Status)

	require.NoError(t, svc.DeleteProperty(ctx, p.ID))
	_, err = svc.FindPropertyByID(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPropertyServiceSearch(t *testing.T) {
	db := utils.SetupTestDB(t, "estateflow_test", propertiesCollection)
	svc := NewPropertyService(db, &config.Config{})
	ctx := context.Background()

	seed := []models.Property{
		{Base: models.NewBase(), Title: "Flat A", Status: models.PropertyAvailable, Price: 900, Location: "Maputo, Baixa"},
		{Base: models.NewBase(), Title: "Flat B", Status: models.PropertyRented, Price: 1400, Location: "Maputo, Polana"},
		{Base: models.NewBase(), Title: "House C", Status: models.PropertyAvailable, Price: 3200, Location: "Matola"},
	}
	for _, p := range seed {
		require.NoError(t, svc.CreateProperty(ctx, p))
	}

	available := models.PropertyAvailable
	got, err := svc.SearchProperties(ctx, models.PropertyFilter{Status: &available})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = svc.SearchProperties(ctx, models.PropertyFilter{Location: "maputo"})
	require.NoError(t, err)
	assert.Len(t, got, 2, "location match is case-insensitive")

	minPrice, maxPrice := 1000.0, 2000.0
	got, err = svc.SearchProperties(ctx, models.PropertyFilter{MinPrice: &minPrice, MaxPrice: &maxPrice})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Flat B", got[0].Title)
}

func TestPropertyServiceAddImage(t *testing.T) {
	db := utils.SetupTestDB(t, "estateflow_test", propertiesCollection)
	svc := NewPropertyService(db, &config.Config{})
	ctx := context.Background()

	p := models.Property{Base: models.NewBase(), Title: "Flat A", Status: models.PropertyAvailable}
	require.NoError(t, svc.CreateProperty(ctx, p))

	require.NoError(t, svc.AddImageToProperty(ctx, p.ID, "properties/p1/a.jpg"))
	require.NoError(t, svc.AddImageToProperty(ctx, p.ID, "properties/p1/b.jpg"))

	got, err := svc.FindPropertyByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"properties/p1/a.jpg", "properties/p1/b.jpg"}, got.Images)
	assert.Equal(t, "properties/p1/a.jpg", got.Image, "first image becomes the cover")

	assert.ErrorIs(t, svc.AddImageToProperty(ctx, "missing", "x.jpg"), ErrNotFound)
}
