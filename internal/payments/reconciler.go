package payments

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"koosdoos_back_end/internal/models"
)

// amountTolerance absorbe les écarts d'arrondi entre le fournisseur et
// nous : 0,01 unité monétaire en valeur absolue.
var amountTolerance = decimal.New(1, -2)

// Reconciler transforme un PaymentEvent authentifié en transition
// d'état faisant autorité sur la commande. Agnostique du fournisseur :
// aucune logique spécifique Payfast/Stripe ici, les adaptateurs sont
// dans parser.go.
type Reconciler struct {
	Orders    OrderStore
	Inventory *Adjuster
	Locks     OrderLocker
	Mail      ConfirmationSender // optionnel
}

// Apply exécute la séquence lookup → idempotence → montant → statut →
// persistance comme une unité atomique par commande (verrou par
// commande). Les fournisseurs livrent "au moins une fois" et rejouent
// sur non-2xx : la garde d'idempotence rend l'application effectivement
// "au plus une fois".
func (r *Reconciler) Apply(ctx context.Context, ev models.PaymentEvent) (*models.Order, error) {
	order, err := r.lookup(ctx, ev)
	if err != nil {
		return nil, err
	}

	unlock, err := r.Locks.Lock(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("verrou commande #%d: %w", order.ID, err)
	}
	defer unlock()

	// Relecture sous verrou : une livraison concurrente a pu aboutir
	// entre le lookup et la prise du verrou.
	order, err = r.Orders.FindByID(ctx, order.ID)
	if err != nil {
		return nil, err
	}

	// Garde d'idempotence : même identifiant de paiement déjà enregistré
	// et statut déjà terminal pour le chemin paiement → livraison
	// dupliquée, succès sans effet de bord.
	if ev.ExternalPaymentID != "" && order.ExternalPaymentID == ev.ExternalPaymentID &&
		(order.Status == models.OrderPaid || order.Status == models.OrderCancelled) {
		log.Printf("🔁 Notification dupliquée pour la commande #%d (%s), on ignore", order.ID, ev.ExternalPaymentID)
		return order, nil
	}

	// Vérification du montant : garde contre une notification forgée ou
	// altérée qui aurait passé la signature avec des données rejouées.
	if ev.Amount.Sub(order.Total).Abs().GreaterThan(amountTolerance) {
		// L'identifiant externe est tout de même retenu pour que la
		// garde d'idempotence ait une clé lors d'une relivraison.
		r.rememberExternalID(ctx, order, ev)
		log.Printf("🚨 ALERTE montant commande #%d: attendu %s, reçu %s (%s) — à examiner manuellement",
			order.ID, order.Total, ev.Amount, ev.Provider)
		return order, fmt.Errorf("%w: attendu %s, reçu %s", ErrAmountMismatch, order.Total, ev.Amount)
	}

	switch ev.Status {
	case models.PaymentComplete:
		return r.applyComplete(ctx, order, ev)

	case models.PaymentFailed:
		// La commande reste Pending : le client peut retenter.
		r.rememberExternalID(ctx, order, ev)
		log.Printf("⚠️ Paiement échoué pour la commande #%d (%s)", order.ID, ev.ExternalPaymentID)
		return order, nil

	case models.PaymentCancelled:
		if !CanTransition(order.Status, models.OrderCancelled) {
			log.Printf("ℹ️ Annulation ignorée: commande #%d déjà en statut %s", order.ID, order.Status)
			r.rememberExternalID(ctx, order, ev)
			return order, nil
		}
		order.Status = models.OrderCancelled
		order.ExternalPaymentID = ev.ExternalPaymentID
		order.UpdatedAt = time.Now()
		if err := r.Orders.Save(ctx, order); err != nil {
			return nil, err
		}
		log.Printf("🚫 Commande #%d annulée par le fournisseur de paiement", order.ID)
		return order, nil

	default:
		// Statut inconnu : aucun changement d'état, on loggue pour
		// investigation (le payload brut est dans l'événement).
		r.rememberExternalID(ctx, order, ev)
		log.Printf("❓ Statut de paiement inconnu pour la commande #%d: payload=%s", order.ID, ev.Raw)
		return order, nil
	}
}

func (r *Reconciler) applyComplete(ctx context.Context, order *models.Order, ev models.PaymentEvent) (*models.Order, error) {
	if !CanTransition(order.Status, models.OrderPaid) {
		// Seul Pending→Paid est permis au chemin paiement. Une commande
		// déjà avancée (admin) ne régresse pas : on accuse réception
		// pour stopper les relivraisons.
		log.Printf("ℹ️ Confirmation ignorée: commande #%d déjà en statut %s", order.ID, order.Status)
		r.rememberExternalID(ctx, order, ev)
		return order, nil
	}

	order.Status = models.OrderPaid
	order.ExternalPaymentID = ev.ExternalPaymentID
	// Backfill : le fournisseur est parfois le premier à connaître
	// l'e-mail de facturation vérifié.
	if order.CustomerEmail == "" {
		order.CustomerEmail = ev.CustomerEmail
	}
	if order.CustomerName == "" {
		order.CustomerName = ev.CustomerName
	}
	if order.CustomerPhone == "" {
		order.CustomerPhone = ev.CustomerPhone
	}
	order.UpdatedAt = time.Now()

	if err := r.Orders.Save(ctx, order); err != nil {
		return nil, err
	}

	// Décrément d'inventaire : exactement une fois par commande, garanti
	// par la garde d'idempotence exécutée sous verrou.
	if r.Inventory != nil {
		r.Inventory.Apply(ctx, order)
	}

	log.Printf("✅ Commande #%d payée (%s, %s)", order.ID, ev.Provider, ev.ExternalPaymentID)

	if r.Mail != nil && order.CustomerEmail != "" {
		o := *order
		go func() {
			if err := r.Mail.SendOrderConfirmation(&o); err != nil {
				log.Printf("❌ Envoi e-mail de confirmation commande #%d: %v", o.ID, err)
			} else {
				log.Printf("📧 Confirmation envoyée à %s (commande #%d)", o.CustomerEmail, o.ID)
			}
		}()
	}

	return order, nil
}

// lookup résout la commande cible : la référence comme id numérique
// d'abord, puis comme identifiant de paiement externe.
func (r *Reconciler) lookup(ctx context.Context, ev models.PaymentEvent) (*models.Order, error) {
	if id, err := strconv.ParseInt(ev.OrderReference, 10, 64); err == nil {
		order, err := r.Orders.FindByID(ctx, id)
		if err == nil {
			return order, nil
		}
		if !errors.Is(err, ErrOrderNotFound) {
			return nil, err
		}
	}

	ref := ev.OrderReference
	if ref == "" {
		ref = ev.ExternalPaymentID
	}
	if ref != "" {
		order, err := r.Orders.FindByExternalPaymentID(ctx, ref)
		if err == nil {
			return order, nil
		}
		if !errors.Is(err, ErrOrderNotFound) {
			return nil, err
		}
	}

	log.Printf("❓ Notification %s sans commande correspondante (ref=%q, id=%q)",
		ev.Provider, ev.OrderReference, ev.ExternalPaymentID)
	return nil, ErrOrderNotFound
}

// rememberExternalID persiste l'identifiant externe dès qu'il est connu,
// quelle que soit la branche prise, pour donner une clé à la garde
// d'idempotence lors des relivraisons.
func (r *Reconciler) rememberExternalID(ctx context.Context, order *models.Order, ev models.PaymentEvent) {
	if ev.ExternalPaymentID == "" || order.ExternalPaymentID == ev.ExternalPaymentID {
		return
	}
	order.ExternalPaymentID = ev.ExternalPaymentID
	order.UpdatedAt = time.Now()
	if err := r.Orders.Save(ctx, order); err != nil {
		log.Printf("❌ Sauvegarde external_payment_id commande #%d: %v", order.ID, err)
	}
}
