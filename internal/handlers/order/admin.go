package order

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"koosdoos_back_end/internal/models"
	"koosdoos_back_end/internal/payments"
	"koosdoos_back_end/internal/utils"
)

// ListOrders liste les commandes du back-office, filtrables par statut
// et par e-mail client.
func ListOrders(c *gin.Context) {
	status := models.OrderStatus(c.Query("status"))
	if status != "" && !status.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Statut inconnu: " + string(status)})
		return
	}

	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "50"), 10, 64)
	offset, _ := strconv.ParseInt(c.DefaultQuery("offset", "0"), 10, 64)

	list, err := orders.List(c.Request.Context(), status, c.Query("email"), limit, offset)
	if err != nil {
		log.Println("❌ Liste commandes:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture commandes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": list, "count": len(list)})
}

// AdminGetOrder retourne une commande sans garde e-mail (back-office).
func AdminGetOrder(c *gin.Context) {
	order, ok := loadOrder(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, order)
}

// UpdateStatus applique une transition de statut manuelle. La table des
// transitions fait autorité : une demande hors table est refusée en 409
// sans modifier la commande.
func UpdateStatus(c *gin.Context) {
	order, ok := loadOrder(c)
	if !ok {
		return
	}

	var req struct {
		Status models.OrderStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || !req.Status.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Statut invalide"})
		return
	}

	if err := payments.Transition(order, req.Status); err != nil {
		c.JSON(http.StatusConflict, gin.H{
			"error": fmt.Sprintf("Transition %s → %s non autorisée", order.Status, req.Status),
		})
		return
	}

	if err := orders.Save(c.Request.Context(), order); err != nil {
		log.Println("❌ Sauvegarde statut:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur sauvegarde"})
		return
	}

	log.Printf("📋 Commande #%d → %s (admin: %s)", order.ID, order.Status, c.GetString("email"))
	c.JSON(http.StatusOK, order)
}

// CreateShipment réserve un waybill chez le transporteur, passe la
// commande en Shipped et prévient le client.
func CreateShipment(c *gin.Context) {
	order, ok := loadOrder(c)
	if !ok {
		return
	}

	if !payments.CanTransition(order.Status, models.OrderShipped) {
		c.JSON(http.StatusConflict, gin.H{
			"error": fmt.Sprintf("Commande en statut %s, expédition impossible", order.Status),
		})
		return
	}

	var req struct {
		Parcels []models.Parcel `json:"parcels" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Colis invalides", "details": err.Error()})
		return
	}

	var dest models.Address
	if order.ShippingAddress == "" {
		c.JSON(http.StatusConflict, gin.H{"error": "Commande sans adresse de livraison"})
		return
	}
	if err := json.Unmarshal([]byte(order.ShippingAddress), &dest); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Adresse de livraison illisible"})
		return
	}

	shipment, err := courier.CreateShipment(c.Request.Context(), order, dest, req.Parcels)
	if err != nil {
		log.Println("❌ Réservation transporteur:", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Transporteur indisponible"})
		return
	}

	order.Waybill = shipment.Waybill
	order.TrackingURL = shipment.TrackingURL
	if err := payments.Transition(order, models.OrderShipped); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Transition vers shipped refusée"})
		return
	}
	if err := orders.Save(c.Request.Context(), order); err != nil {
		log.Println("❌ Sauvegarde expédition:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur sauvegarde"})
		return
	}

	log.Printf("🚚 Commande #%d expédiée, waybill %s", order.ID, order.Waybill)

	if mailer != nil {
		o := *order
		go func() {
			if err := mailer.SendShippingNotification(&o); err != nil {
				log.Printf("❌ Notification d'expédition commande #%d: %v", o.ID, err)
			}
		}()
	}

	c.JSON(http.StatusOK, gin.H{"order": order, "shipment": shipment})
}

// Invoice génère la facture PDF de la commande à la volée.
func Invoice(c *gin.Context) {
	order, ok := loadOrder(c)
	if !ok {
		return
	}

	if order.Status == models.OrderPending {
		c.JSON(http.StatusConflict, gin.H{"error": "Pas de facture pour une commande non payée"})
		return
	}

	pdf, err := utils.RenderInvoicePDF(c.Request.Context(), order)
	if err != nil {
		log.Println("❌ Génération facture:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération facture"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="facture_koosdoos_%d.pdf"`, order.ID))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// loadOrder lit l'id de l'URL et charge la commande ; écrit la réponse
// d'erreur et retourne false en cas d'échec.
func loadOrder(c *gin.Context) (*models.Order, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identifiant invalide"})
		return nil, false
	}

	order, err := orders.FindByID(c.Request.Context(), id)
	if errors.Is(err, payments.ErrOrderNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
		return nil, false
	}
	if err != nil {
		log.Println("❌ Lecture commande:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture commande"})
		return nil, false
	}
	return order, true
}
