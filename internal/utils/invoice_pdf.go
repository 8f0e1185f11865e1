package utils

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/shopspring/decimal"
	"github.com/skip2/go-qrcode"

	"koosdoos_back_end/internal/models"
)

// GenerateTrackingQR encode l'URL de suivi en QR base64, prêt pour un
// <img src="...">.
func GenerateTrackingQR(trackingURL string) (string, error) {
	png, err := qrcode.Encode(trackingURL, qrcode.Medium, 256)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

// RenderInvoicePDF imprime la facture en PDF via Chrome headless. Le
// HTML est rendu localement (pas de dépendance au front) et chargé en
// data URL.
func RenderInvoicePDF(parent context.Context, order *models.Order) ([]byte, error) {
	html := invoiceHTML(order)
	dataURL := "data:text/html;base64," + base64.StdEncoding.EncodeToString([]byte(html))

	ctx, cancel := chromedp.NewContext(parent)
	defer cancel()

	ctx, cancel = context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	var pdfBuf []byte
	err := chromedp.Run(ctx,
		chromedp.Navigate(dataURL),
		chromedp.WaitVisible("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdfBuf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(8.27).  // A4 en pouces
				WithPaperHeight(11.69).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("impression facture %d: %w", order.ID, err)
	}
	return pdfBuf, nil
}

func invoiceHTML(order *models.Order) string {
	rows := ""
	for _, item := range order.Items {
		lineTotal := item.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		rows += fmt.Sprintf(`
			<tr>
				<td>%s</td><td>%s</td><td>%d</td>
				<td class="num">R%s</td><td class="num">R%s</td>
			</tr>`,
			itemLabel(item), item.SKU, item.Quantity,
			item.Price.StringFixed(2), lineTotal.StringFixed(2))
	}

	qrBlock := ""
	if order.TrackingURL != "" {
		if qr, err := GenerateTrackingQR(order.TrackingURL); err == nil {
			qrBlock = fmt.Sprintf(`
			<div class="tracking">
				<p>Suivi colis %s</p>
				<img src="%s" width="120" height="120" alt="QR suivi">
			</div>`, order.Waybill, qr)
		}
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="fr">
<head>
<meta charset="UTF-8">
<style>
	body { font-family: Arial, sans-serif; color: #222; margin: 40px; }
	h1 { color: #c1440e; }
	table { width: 100%%; border-collapse: collapse; margin: 24px 0; }
	th, td { padding: 8px; border-bottom: 1px solid #ddd; text-align: left; }
	td.num, th.num { text-align: right; }
	.totals { text-align: right; }
	.tracking { margin-top: 24px; }
	.meta { color: #666; font-size: 0.9em; }
</style>
</head>
<body>
	<h1>KoosDoos</h1>
	<p class="meta">Facture — commande #%d<br>Date : %s<br>Client : %s (%s)</p>

	<table>
		<thead>
			<tr><th>Article</th><th>SKU</th><th>Qté</th><th class="num">Prix</th><th class="num">Total</th></tr>
		</thead>
		<tbody>%s</tbody>
	</table>

	<div class="totals">
		<p>Sous-total : R%s</p>
		<p>Livraison (%s) : R%s</p>
		<p><strong>Total : R%s</strong></p>
	</div>
	%s
</body>
</html>`,
		order.ID, order.CreatedAt.Format("02/01/2006"),
		customerGreeting(order), order.CustomerEmail, rows,
		order.Subtotal().StringFixed(2),
		order.ShippingService, order.ShippingCost.StringFixed(2),
		order.Total.StringFixed(2), qrBlock)
}
