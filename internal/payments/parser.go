package payments

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v83"

	"koosdoos_back_end/internal/models"
)

// ITN est une notification Payfast décodée : les champs dans leur ordre
// de réception (nécessaire pour revérifier la signature) plus la vue
// normalisée en PaymentEvent.
type ITN struct {
	Fields    []FormField
	Signature string
	Event     models.PaymentEvent
}

// Get retourne la valeur d'un champ ITN (première occurrence).
func (i *ITN) Get(name string) string {
	for _, f := range i.Fields {
		if f.Name == name {
			return f.Value
		}
	}
	return ""
}

// ParsePayfastITN décode un corps form-encodé Payfast en préservant
// l'ordre des champs. Pure fonction, aucun I/O. ErrMalformedPayload si
// m_payment_id, pf_payment_id, amount_gross ou payment_status manquent.
func ParsePayfastITN(raw []byte) (*ITN, error) {
	fields, err := parseOrderedForm(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	itn := &ITN{Fields: fields}
	itn.Signature = itn.Get("signature")

	ref := itn.Get("m_payment_id")
	pfID := itn.Get("pf_payment_id")
	amountStr := itn.Get("amount_gross")
	statusStr := itn.Get("payment_status")

	if ref == "" || pfID == "" || amountStr == "" || statusStr == "" {
		return nil, fmt.Errorf("%w: m_payment_id/pf_payment_id/amount_gross/payment_status requis", ErrMalformedPayload)
	}

	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return nil, fmt.Errorf("%w: amount_gross %q illisible", ErrMalformedPayload, amountStr)
	}

	itn.Event = models.PaymentEvent{
		Provider:          models.ProviderPayfast,
		OrderReference:    ref,
		ExternalPaymentID: pfID,
		Amount:            amount,
		Status:            payfastStatus(statusStr),
		CustomerEmail:     itn.Get("email_address"),
		CustomerName:      strings.TrimSpace(itn.Get("name_first") + " " + itn.Get("name_last")),
		CustomerPhone:     itn.Get("cell_number"),
		Raw:               string(raw),
	}
	return itn, nil
}

// payfastStatus normalise le vocabulaire Payfast ; toute valeur inconnue
// devient Unknown, jamais une erreur.
func payfastStatus(s string) models.PaymentEventStatus {
	switch strings.ToUpper(s) {
	case "COMPLETE":
		return models.PaymentComplete
	case "FAILED":
		return models.PaymentFailed
	case "CANCELLED":
		return models.PaymentCancelled
	default:
		return models.PaymentUnknown
	}
}

// stripeObject est la partie de data.object dont le parseur a besoin.
type stripeObject struct {
	ID              string            `json:"id"`
	AmountTotal     int64             `json:"amount_total"`
	Amount          int64             `json:"amount"`
	CustomerEmail   string            `json:"customer_email"`
	Metadata        map[string]string `json:"metadata"`
	CustomerDetails struct {
		Email string `json:"email"`
		Name  string `json:"name"`
		Phone string `json:"phone"`
	} `json:"customer_details"`
}

// ParseStripeEvent normalise un événement Stripe déjà authentifié
// (webhook.ConstructEvent) en PaymentEvent. Les montants Stripe sont en
// centimes : amount_total est converti en décimal (×10^-2). Le panier
// voyage dans metadata.cart_items sous forme de chaîne JSON — second
// décodage ici, car Stripe ne renvoie pas les lignes à l'endpoint de
// notification.
func ParseStripeEvent(event stripe.Event) (models.PaymentEvent, error) {
	// En mode test (pas de secret webhook) le body est du JSON libre :
	// un événement sans champ data laisse Data à nil.
	if event.Data == nil {
		return models.PaymentEvent{}, fmt.Errorf("%w: data absent", ErrMalformedPayload)
	}

	var obj stripeObject
	if err := json.Unmarshal(event.Data.Raw, &obj); err != nil {
		return models.PaymentEvent{}, fmt.Errorf("%w: data.object illisible", ErrMalformedPayload)
	}

	status := stripeStatus(string(event.Type))

	ev := models.PaymentEvent{
		Provider:          models.ProviderStripe,
		OrderReference:    obj.Metadata["order_id"],
		ExternalPaymentID: obj.ID,
		Status:            status,
		CustomerEmail:     obj.CustomerEmail,
		CustomerName:      obj.CustomerDetails.Name,
		CustomerPhone:     obj.CustomerDetails.Phone,
		Raw:               string(event.Data.Raw),
	}
	if ev.CustomerEmail == "" {
		ev.CustomerEmail = obj.CustomerDetails.Email
	}

	minor := obj.AmountTotal
	if minor == 0 {
		minor = obj.Amount
	}
	ev.Amount = decimal.New(minor, -2)

	// Les événements au statut inconnu sont propagés tels quels : le
	// réconciliateur les loggue sans toucher à la commande.
	if status != models.PaymentUnknown {
		if obj.ID == "" || ev.OrderReference == "" {
			return models.PaymentEvent{}, fmt.Errorf("%w: id ou metadata.order_id absent", ErrMalformedPayload)
		}
	}

	if cart := obj.Metadata["cart_items"]; cart != "" {
		var items []models.CartItem
		if err := json.Unmarshal([]byte(cart), &items); err == nil {
			ev.CartItems = items
		}
	}

	return ev, nil
}

func stripeStatus(eventType string) models.PaymentEventStatus {
	switch eventType {
	case "checkout.session.completed":
		return models.PaymentComplete
	case "payment_intent.payment_failed":
		return models.PaymentFailed
	case "checkout.session.expired":
		return models.PaymentCancelled
	default:
		return models.PaymentUnknown
	}
}

// parseOrderedForm décode un corps application/x-www-form-urlencoded en
// conservant l'ordre d'apparition des champs (url.ParseQuery le perd).
func parseOrderedForm(raw []byte) ([]FormField, error) {
	body := strings.TrimSpace(string(raw))
	if body == "" {
		return nil, fmt.Errorf("corps vide")
	}

	var fields []FormField
	for _, pair := range strings.Split(body, "&") {
		if pair == "" {
			continue
		}
		name, value, _ := strings.Cut(pair, "=")
		decodedName, err := url.QueryUnescape(name)
		if err != nil {
			return nil, fmt.Errorf("nom de champ %q illisible", name)
		}
		decodedValue, err := url.QueryUnescape(value)
		if err != nil {
			return nil, fmt.Errorf("valeur du champ %q illisible", decodedName)
		}
		fields = append(fields, FormField{Name: decodedName, Value: decodedValue})
	}
	return fields, nil
}
