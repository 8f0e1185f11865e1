package payement

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"koosdoos_back_end/internal/payments"
)

// webhookTimeout borne la réconciliation : on répond toujours au
// fournisseur avant son propre timeout. Un verrou de commande qui
// traîne rend une 500 bornée, que le fournisseur réessaie.
var webhookTimeout = 20 * time.Second

// PayfastITN reçoit les notifications serveur-à-serveur de Payfast.
// Ordre des gardes : signature d'abord (authenticité), parsing ensuite,
// réconciliation enfin. Payfast réessaie tant qu'on ne répond pas 200 :
// on acquitte tout ce qui est authentique et traité, y compris les
// redéliveries, et on laisse en erreur ce qu'un retry peut réparer.
func PayfastITN(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Échec lecture body"})
		return
	}

	itn, err := payments.ParsePayfastITN(raw)
	if err != nil {
		log.Println("❌ ITN illisible:", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Notification illisible"})
		return
	}

	if !payments.Verify(itn.Fields, itn.Signature, payfastCfg.Passphrase) {
		log.Printf("🚨 ITN signature invalide (m_payment_id=%s, IP=%s)",
			itn.Get("m_payment_id"), c.ClientIP())
		c.JSON(http.StatusForbidden, gin.H{"error": "Signature invalide"})
		return
	}

	log.Printf("📥 ITN Payfast : commande %s, statut %s, montant %s",
		itn.Event.OrderReference, itn.Get("payment_status"), itn.Event.Amount.StringFixed(2))

	ctx, cancel := context.WithTimeout(c.Request.Context(), webhookTimeout)
	defer cancel()

	order, err := reconciler.Apply(ctx, itn.Event)
	switch {
	case errors.Is(err, payments.ErrOrderNotFound):
		// Référence inconnue : répondre 404 fait réessayer Payfast, ce
		// qui couvre la course création-commande / première notification.
		c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
		return
	case errors.Is(err, payments.ErrAmountMismatch):
		// Acquitté : un retry renverrait le même montant. L'alerte est
		// déjà loggée par le réconciliateur.
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	case err != nil:
		log.Println("❌ Réconciliation ITN:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur traitement notification"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "order_status": order.Status})
}
