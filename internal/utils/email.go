package utils

import (
	"bytes"
	"fmt"
	"log"

	"github.com/shopspring/decimal"
	"github.com/wneessen/go-mail"

	"koosdoos_back_end/internal/config"
	"koosdoos_back_end/internal/models"
)

// Mailer envoie les e-mails transactionnels de la boutique.
type Mailer struct {
	cfg config.SMTPConfig
}

func NewMailer(cfg config.SMTPConfig) *Mailer {
	return &Mailer{cfg: cfg}
}

// SendOrderConfirmation envoie la confirmation de paiement au client.
func (m *Mailer) SendOrderConfirmation(order *models.Order) error {
	if order.CustomerEmail == "" {
		log.Printf("⚠️ Commande #%d payée sans e-mail client, confirmation sautée", order.ID)
		return nil
	}
	subject := fmt.Sprintf("KoosDoos — commande #%d confirmée", order.ID)
	return m.send(order.CustomerEmail, subject, orderConfirmationHTML(order), nil)
}

// SendShippingNotification prévient le client que son colis est parti.
func (m *Mailer) SendShippingNotification(order *models.Order) error {
	if order.CustomerEmail == "" {
		return nil
	}
	subject := fmt.Sprintf("KoosDoos — commande #%d expédiée", order.ID)
	return m.send(order.CustomerEmail, subject, shippingNotificationHTML(order), nil)
}

// SendInvoice joint la facture PDF à l'e-mail.
func (m *Mailer) SendInvoice(order *models.Order, pdf []byte) error {
	if order.CustomerEmail == "" {
		return nil
	}
	subject := fmt.Sprintf("KoosDoos — facture commande #%d", order.ID)
	return m.send(order.CustomerEmail, subject, orderConfirmationHTML(order), pdf)
}

func (m *Mailer) send(to, subject, htmlBody string, pdfAttachment []byte) error {
	msg := mail.NewMsg()

	if err := msg.From(m.cfg.From); err != nil {
		return err
	}
	if err := msg.To(to); err != nil {
		return err
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	if pdfAttachment != nil {
		msg.AttachReader("facture_koosdoos.pdf", bytes.NewReader(pdfAttachment))
	}

	client, err := mail.NewClient(m.cfg.Host,
		mail.WithPort(m.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthLogin),
		mail.WithUsername(m.cfg.Username),
		mail.WithPassword(m.cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return err
	}

	log.Println("📤 Envoi de l'e-mail à", to)
	return client.DialAndSend(msg)
}

func orderConfirmationHTML(order *models.Order) string {
	itemsHTML := ""
	for _, item := range order.Items {
		lineTotal := item.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		itemsHTML += fmt.Sprintf(`
			<tr>
				<td style="padding: 8px; border: 1px solid #ddd;">%s</td>
				<td style="padding: 8px; border: 1px solid #ddd;">%d</td>
				<td style="padding: 8px; border: 1px solid #ddd;">R%s</td>
				<td style="padding: 8px; border: 1px solid #ddd;">R%s</td>
			</tr>`, itemLabel(item), item.Quantity, item.Price.StringFixed(2), lineTotal.StringFixed(2))
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html lang="fr">
<head><meta charset="UTF-8"><title>Confirmation de commande</title></head>
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #333;">Merci pour votre commande !</h2>
		<p>Bonjour %s,</p>
		<p>Votre paiement pour la commande <strong>#%d</strong> a bien été reçu.
		Nous lançons la fabrication de vos articles.</p>

		<h3>Détails de la commande</h3>
		<table style="width: 100%%; border-collapse: collapse; margin: 20px 0;">
			<thead>
				<tr style="background-color: #f0f0f0;">
					<th style="padding: 8px; text-align: left; border: 1px solid #ddd;">Article</th>
					<th style="padding: 8px; text-align: left; border: 1px solid #ddd;">Qté</th>
					<th style="padding: 8px; text-align: left; border: 1px solid #ddd;">Prix</th>
					<th style="padding: 8px; text-align: left; border: 1px solid #ddd;">Total</th>
				</tr>
			</thead>
			<tbody>%s</tbody>
		</table>
		<p style="text-align: right;">Livraison : <strong>R%s</strong></p>
		<p style="text-align: right; font-size: 1.2em;">Total : <strong>R%s</strong></p>
		<p>L'équipe KoosDoos</p>
	</div>
</body>
</html>`, customerGreeting(order), order.ID, itemsHTML,
		order.ShippingCost.StringFixed(2), order.Total.StringFixed(2))
}

func shippingNotificationHTML(order *models.Order) string {
	tracking := ""
	if order.TrackingURL != "" {
		tracking = fmt.Sprintf(`<p>Suivez votre colis : <a href="%s">%s</a></p>`,
			order.TrackingURL, order.Waybill)
	}
	return fmt.Sprintf(`
<!DOCTYPE html>
<html lang="fr">
<body style="font-family: Arial, sans-serif; padding: 20px;">
	<div style="max-width: 600px; margin: auto;">
		<h2>Votre commande #%d est en route 🚚</h2>
		<p>Bonjour %s,</p>
		<p>Votre colis a été remis au transporteur.</p>
		%s
		<p>L'équipe KoosDoos</p>
	</div>
</body>
</html>`, order.ID, customerGreeting(order), tracking)
}

func customerGreeting(order *models.Order) string {
	if order.CustomerName != "" {
		return order.CustomerName
	}
	return "cher client"
}

func itemLabel(item models.OrderItem) string {
	if item.Title != "" {
		return item.Title
	}
	return item.SKU
}
