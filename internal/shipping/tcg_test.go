package shipping

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"koosdoos_back_end/internal/config"
	"koosdoos_back_end/internal/models"
)

func sandboxClient() *Client {
	return NewClient(config.TCGConfig{
		Sandbox:           true,
		WarehouseCity:     "Pretoria",
		WarehouseProvince: "Gauteng",
	})
}

func TestVolumetricWeight(t *testing.T) {
	// 50×50×40 cm → 100000 cm³ / 5000 = 20 kg volumétriques
	p := models.Parcel{Length: 50, Width: 50, Height: 40, Weight: 12}
	assert.InDelta(t, 20.0, VolumetricWeight(p), 0.001)
}

func TestQuoteUsesBillableWeight(t *testing.T) {
	c := sandboxClient()
	dest := models.Address{City: "Pretoria", Province: "Gauteng", PostalCode: "0001", Street: "1 Kerk St"}

	// Léger mais volumineux : le volumétrique (20 kg) l'emporte sur les
	// 2 kg réels, donc 15 kg facturables au-delà du seuil de 5 kg.
	quotes, err := c.Quote(context.Background(),
		dest, []models.Parcel{{Length: 50, Width: 50, Height: 40, Weight: 2}})
	require.NoError(t, err)
	require.Len(t, quotes, 3)

	// base Gauteng 95 + 15×8.5 = 222.50 pour le standard
	assert.True(t, quotes[0].Price.Equal(decimal.RequireFromString("222.5")),
		"devis standard reçu %s", quotes[0].Price)
}

func TestQuoteProvinceRates(t *testing.T) {
	c := sandboxClient()
	parcel := []models.Parcel{{Length: 10, Width: 10, Height: 10, Weight: 3}}

	gauteng, err := c.Quote(context.Background(),
		models.Address{Province: "Gauteng"}, parcel)
	require.NoError(t, err)
	cape, err := c.Quote(context.Background(),
		models.Address{Province: "Northern Cape"}, parcel)
	require.NoError(t, err)

	assert.True(t, cape[0].Price.GreaterThan(gauteng[0].Price),
		"le Cap Nord coûte plus cher que le Gauteng")

	// Province inconnue : tarif zone éloignée, pas d'erreur.
	unknown, err := c.Quote(context.Background(),
		models.Address{Province: "Atlantis"}, parcel)
	require.NoError(t, err)
	assert.True(t, unknown[0].Price.GreaterThan(gauteng[0].Price))
}

func TestQuoteServiceOrdering(t *testing.T) {
	c := sandboxClient()
	quotes, err := c.Quote(context.Background(),
		models.Address{Province: "Gauteng"},
		[]models.Parcel{{Length: 10, Width: 10, Height: 10, Weight: 1}})
	require.NoError(t, err)
	require.Len(t, quotes, 3)

	assert.Equal(t, "standard", quotes[0].ServiceType)
	assert.Equal(t, "express", quotes[1].ServiceType)
	assert.Equal(t, "overnight", quotes[2].ServiceType)
	assert.True(t, quotes[1].Price.GreaterThan(quotes[0].Price))
	assert.True(t, quotes[2].Price.GreaterThan(quotes[1].Price))
	assert.True(t, quotes[2].EstimatedDelivery.Before(quotes[0].EstimatedDelivery))
}

func TestCreateShipmentSandbox(t *testing.T) {
	c := sandboxClient()
	order := &models.Order{ID: 42, ShippingService: "express"}

	shipment, err := c.CreateShipment(context.Background(), order, models.Address{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "KDW00000042", shipment.Waybill)
	assert.Contains(t, shipment.TrackingURL, shipment.Waybill)
	assert.False(t, shipment.EstimatedDelivery.IsZero())
}

func TestBusinessDaysSkipWeekends(t *testing.T) {
	// Vendredi + 1 jour ouvré = lundi
	friday := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	got := businessDaysFrom(friday, 1)
	assert.Equal(t, time.Monday, got.Weekday())
}
