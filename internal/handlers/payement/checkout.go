package payement

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v83/checkout/session"

	"koosdoos_back_end/internal/models"
	"koosdoos_back_end/internal/payments"
	"koosdoos_back_end/internal/shipping"
)

// Dépendances du package, posées par Init au démarrage.
var (
	builder    *payments.Builder
	reconciler *payments.Reconciler
	courier    *shipping.Client
	stripeCfg  stripeSettings
	payfastCfg payfastSettings
)

type stripeSettings struct {
	WebhookSecret string
}

type payfastSettings struct {
	ProcessURL string
	Passphrase string
}

func Init(b *payments.Builder, r *payments.Reconciler, tcg *shipping.Client, stripeWebhookSecret string) {
	builder = b
	reconciler = r
	courier = tcg
	stripeCfg = stripeSettings{WebhookSecret: stripeWebhookSecret}
	payfastCfg = payfastSettings{
		ProcessURL: b.Payfast.ProcessURL,
		Passphrase: b.Payfast.Passphrase,
	}
}

var (
	freeShippingThreshold = decimal.NewFromInt(2500)
	standardShippingCost  = decimal.NewFromInt(150)
)

// shippingCostFor : livraison offerte dès R2500 d'articles, sinon
// forfait standard.
func shippingCostFor(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(freeShippingThreshold) {
		return decimal.Zero
	}
	return standardShippingCost
}

// ValidateCart revalide le panier côté serveur : prix courants, stock
// disponible, total recalculé. Le front affiche ce que le back confirme.
func ValidateCart(c *gin.Context) {
	var req struct {
		Items []models.CartItem `json:"items" binding:"required,min=1,dive"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Requête invalide ou panier vide"})
		return
	}

	subtotal := decimal.Zero
	validated := make([]models.ValidatedCartItem, 0, len(req.Items))
	allValid := true

	for _, item := range req.Items {
		v := models.ValidatedCartItem{
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
		}

		variant, err := builder.Catalog.GetVariant(c.Request.Context(), item.ProductID, item.VariantID)
		if err != nil {
			allValid = false
			validated = append(validated, v)
			continue
		}

		v.SKU = variant.SKU
		v.Price = decimal.NewFromFloat(variant.Price)
		v.AvailableQty = variant.InventoryQty
		if product, err := builder.Catalog.GetProduct(c.Request.Context(), item.ProductID); err == nil {
			v.Title = product.Title
		}

		if variant.InventoryQty < item.Quantity {
			allValid = false
		} else {
			v.Available = true
			v.LineTotal = v.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
			subtotal = subtotal.Add(v.LineTotal)
		}
		validated = append(validated, v)
	}

	shippingCost := shippingCostFor(subtotal)
	c.JSON(http.StatusOK, gin.H{
		"valid":         allValid,
		"items":         validated,
		"subtotal":      subtotal.StringFixed(2),
		"shipping_cost": shippingCost.StringFixed(2),
		"total":         subtotal.Add(shippingCost).StringFixed(2),
	})
}

type checkoutRequest struct {
	Items           []models.CartItem   `json:"items" binding:"required,min=1,dive"`
	Customer        models.CustomerInfo `json:"customer" binding:"required"`
	Address         *models.Address     `json:"address"`
	ShippingService string              `json:"shipping_service"`
}

func (r *checkoutRequest) normalizedService() string {
	if r.ShippingService == "" {
		return "standard"
	}
	return r.ShippingService
}

// PayfastCheckout crée la commande Pending et retourne le jeu de champs
// signés que le front POSTe tel quel vers Payfast. L'ordre des champs
// fait partie du contrat de signature : le front ne doit rien réordonner.
func PayfastCheckout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	order, err := createOrder(c, &req, models.ProviderPayfast)
	if err != nil {
		return // la réponse HTTP est déjà écrite
	}

	fields := builder.PayfastFields(order, req.Customer)
	payload := make([]gin.H, 0, len(fields))
	for _, f := range fields {
		payload = append(payload, gin.H{"name": f.Name, "value": f.Value})
	}

	log.Printf("💳 Checkout Payfast : commande #%d (R%s)", order.ID, order.Total.StringFixed(2))
	c.JSON(http.StatusOK, gin.H{
		"order_id":    order.ID,
		"payfast_url": payfastCfg.ProcessURL,
		"form_fields": payload,
	})
}

// CreateStripeSession crée la commande Pending puis la session Checkout
// Stripe, et retourne l'URL de redirection.
func CreateStripeSession(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	order, err := createOrder(c, &req, models.ProviderStripe)
	if err != nil {
		return
	}

	params, err := builder.StripeParams(order, req.Items)
	if err != nil {
		log.Println("❌ Paramètres Stripe:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur préparation paiement"})
		return
	}

	sess, err := session.New(params)
	if err != nil {
		log.Println("❌ Erreur Stripe:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création session de paiement"})
		return
	}

	log.Printf("💳 Session Stripe %s : commande #%d (R%s)", sess.ID, order.ID, order.Total.StringFixed(2))
	c.JSON(http.StatusOK, gin.H{
		"order_id":     order.ID,
		"session_id":   sess.ID,
		"checkout_url": sess.URL,
	})
}

// createOrder factorise la création de commande des deux fournisseurs.
// En cas d'échec la réponse HTTP est écrite et l'erreur retournée est
// non-nil.
func createOrder(c *gin.Context, req *checkoutRequest, provider string) (*models.Order, error) {
	// Sous-total provisoire pour le calcul des frais de port ; le prix
	// faisant foi reste celui recalculé par CreateOrder.
	subtotal := decimal.Zero
	for _, item := range req.Items {
		variant, err := builder.Catalog.GetVariant(c.Request.Context(), item.ProductID, item.VariantID)
		if err == nil {
			subtotal = subtotal.Add(decimal.NewFromFloat(variant.Price).Mul(decimal.NewFromInt(int64(item.Quantity))))
		}
	}
	shippingCost := shippingCostFor(subtotal)

	order, err := builder.CreateOrder(c.Request.Context(), req.Items, req.Customer,
		shippingCost, req.normalizedService(), req.Address)
	if err != nil {
		switch {
		case errors.Is(err, payments.ErrInsufficientStock):
			c.JSON(http.StatusConflict, gin.H{"error": "Stock insuffisant", "details": err.Error()})
		case errors.Is(err, payments.ErrInvalidLine):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Panier invalide", "details": err.Error()})
		default:
			log.Println("❌ Création commande:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création commande"})
		}
		return nil, err
	}

	order.Provider = provider
	if err := builder.Orders.Save(c.Request.Context(), order); err != nil {
		log.Println("⚠️ Enregistrement fournisseur:", err)
	}
	return order, nil
}
