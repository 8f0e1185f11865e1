package payement

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"koosdoos_back_end/internal/models"
)

// ShippingQuote retourne les devis transporteur pour une destination.
// Le front l'appelle à la saisie de l'adresse, avant le checkout.
func ShippingQuote(c *gin.Context) {
	var req struct {
		Address models.Address  `json:"address" binding:"required"`
		Parcels []models.Parcel `json:"parcels" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Adresse ou colis invalides", "details": err.Error()})
		return
	}

	quotes, err := courier.Quote(c.Request.Context(), req.Address, req.Parcels)
	if err != nil {
		log.Println("❌ Devis transporteur:", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Transporteur indisponible"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"quotes": quotes})
}

// TrackShipment retourne l'historique de suivi d'un waybill.
func TrackShipment(c *gin.Context) {
	waybill := c.Param("waybill")
	if waybill == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Waybill manquant"})
		return
	}

	events, err := courier.Track(c.Request.Context(), waybill)
	if err != nil {
		log.Println("❌ Suivi transporteur:", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Transporteur indisponible"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"waybill": waybill, "events": events})
}
