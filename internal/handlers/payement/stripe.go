package payement

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/webhook"

	"koosdoos_back_end/internal/models"
	"koosdoos_back_end/internal/payments"
)

// StripeWebhook reçoit les événements Stripe. La signature de l'en-tête
// Stripe-Signature authentifie le payload ; sans secret configuré (dev
// local) on accepte le JSON brut.
func StripeWebhook(c *gin.Context) {
	const MaxBodyBytes = int64(65536)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxBodyBytes)

	payload, err := c.GetRawData()
	if err != nil {
		log.Println("❌ Lecture payload échouée:", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Échec lecture body"})
		return
	}

	var event stripe.Event
	if stripeCfg.WebhookSecret == "" {
		log.Println("⚠️ Pas de STRIPE_WEBHOOK_SECRET — mode test")
		if err := json.Unmarshal(payload, &event); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "JSON invalide"})
			return
		}
	} else {
		event, err = webhook.ConstructEvent(payload, c.GetHeader("Stripe-Signature"), stripeCfg.WebhookSecret)
		if err != nil {
			log.Println("❌ Signature Stripe invalide:", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "Signature invalide"})
			return
		}
	}

	log.Printf("📥 Événement Stripe reçu : %s", event.Type)

	ev, err := payments.ParseStripeEvent(event)
	if err != nil {
		log.Println("❌ Événement Stripe illisible:", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Événement illisible"})
		return
	}

	// Type hors périmètre sans référence de commande : acquitter sans
	// traiter, Stripe n'a pas à réessayer.
	if ev.Status == models.PaymentUnknown && ev.OrderReference == "" {
		c.JSON(http.StatusOK, gin.H{"status": "ignored", "event_type": string(event.Type)})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), webhookTimeout)
	defer cancel()

	_, err = reconciler.Apply(ctx, ev)
	switch {
	case errors.Is(err, payments.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
		return
	case errors.Is(err, payments.ErrAmountMismatch):
		c.JSON(http.StatusOK, gin.H{"status": "success", "event_type": string(event.Type)})
		return
	case err != nil:
		log.Println("❌ Réconciliation Stripe:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur traitement événement"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "event_type": string(event.Type)})
}
