package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v83"

	"koosdoos_back_end/internal/config"
	"koosdoos_back_end/internal/models"
)

// Builder construit la requête de paiement spécifique au fournisseur à
// partir d'un panier validé, et crée la commande Pending que le
// réconciliateur résoudra plus tard.
type Builder struct {
	Catalog CatalogLookup
	Orders  OrderStore
	Payfast config.PayfastConfig
	Stripe  config.StripeConfig
}

// freeShippingThreshold : livraison offerte à partir de R2500.
var (
	freeShippingThreshold = decimal.NewFromInt(2500)
	standardShippingCost  = decimal.NewFromInt(150)
)

// CreateOrder revalide chaque ligne contre le catalogue courant (le prix
// client n'est jamais cru), calcule le total et crée la commande Pending.
// Échec global au premier problème : pas de commande partielle.
func (b *Builder) CreateOrder(ctx context.Context, lines []models.CartItem, customer models.CustomerInfo, shippingCost decimal.Decimal, shippingService string, address *models.Address) (*models.Order, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: panier vide", ErrInvalidLine)
	}

	order := &models.Order{
		Status:          models.OrderPending,
		CustomerEmail:   customer.Email,
		CustomerName:    joinName(customer.FirstName, customer.LastName),
		CustomerPhone:   customer.Phone,
		ShippingCost:    shippingCost,
		ShippingService: shippingService,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}

	subtotal := decimal.Zero
	for _, line := range lines {
		if line.Quantity < 1 {
			return nil, fmt.Errorf("%w: quantité %d pour %s", ErrInvalidLine, line.Quantity, line.VariantID)
		}
		variant, err := b.Catalog.GetVariant(ctx, line.ProductID, line.VariantID)
		if err != nil {
			return nil, fmt.Errorf("%w: %s/%s", ErrInvalidLine, line.ProductID, line.VariantID)
		}
		if variant.InventoryQty < line.Quantity {
			return nil, fmt.Errorf("%w: %s (%d disponibles, %d demandés)",
				ErrInsufficientStock, variant.SKU, variant.InventoryQty, line.Quantity)
		}

		price := decimal.NewFromFloat(variant.Price)
		subtotal = subtotal.Add(price.Mul(decimal.NewFromInt(int64(line.Quantity))))

		title := ""
		if product, err := b.Catalog.GetProduct(ctx, line.ProductID); err == nil {
			title = product.Title
		}

		order.Items = append(order.Items, models.OrderItem{
			ProductID: line.ProductID,
			VariantID: line.VariantID,
			SKU:       variant.SKU,
			Title:     title,
			Quantity:  line.Quantity,
			Price:     price, // snapshot : figé au moment de l'achat
		})
	}

	order.Total = subtotal.Add(shippingCost)

	if address != nil {
		addrJSON, err := json.Marshal(address)
		if err != nil {
			return nil, fmt.Errorf("encodage adresse: %w", err)
		}
		order.ShippingAddress = string(addrJSON)
	}

	if err := b.Orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("création commande: %w", err)
	}
	return order, nil
}

// PayfastFields produit le jeu de champs du formulaire Payfast dans
// l'ordre documenté par le fournisseur, signature comprise. Signer est
// l'opération inverse de vérifier, sur le même ordre canonique.
func (b *Builder) PayfastFields(order *models.Order, customer models.CustomerInfo) []FormField {
	fields := []FormField{
		{Name: "merchant_id", Value: b.Payfast.MerchantID},
		{Name: "merchant_key", Value: b.Payfast.MerchantKey},
		{Name: "return_url", Value: b.Payfast.ReturnURL},
		{Name: "cancel_url", Value: b.Payfast.CancelURL},
		{Name: "notify_url", Value: b.Payfast.NotifyURL},
		{Name: "name_first", Value: customer.FirstName},
		{Name: "name_last", Value: customer.LastName},
		{Name: "email_address", Value: customer.Email},
		{Name: "cell_number", Value: customer.Phone},
		{Name: "m_payment_id", Value: fmt.Sprintf("%d", order.ID)},
		{Name: "amount", Value: order.Total.StringFixed(2)},
		{Name: "item_name", Value: fmt.Sprintf("Commande KoosDoos #%d", order.ID)},
	}
	fields = append(fields, FormField{
		Name:  "signature",
		Value: Sign(fields, b.Payfast.Passphrase),
	})
	return fields
}

// StripeParams construit les paramètres de session Checkout : lignes en
// centimes (convention Stripe), panier recopié dans metadata.cart_items
// car Stripe ne renvoie pas les lignes à l'endpoint de notification.
func (b *Builder) StripeParams(order *models.Order, lines []models.CartItem) (*stripe.CheckoutSessionParams, error) {
	cartJSON, err := json.Marshal(lines)
	if err != nil {
		return nil, fmt.Errorf("sérialisation panier: %w", err)
	}

	var lineItems []*stripe.CheckoutSessionLineItemParams
	for _, item := range order.Items {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String("zar"),
				UnitAmount: stripe.Int64(item.Price.Mul(decimal.NewFromInt(100)).IntPart()),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name:        stripe.String(productName(item)),
					Description: stripe.String("SKU: " + item.SKU),
				},
			},
			Quantity: stripe.Int64(int64(item.Quantity)),
		})
	}

	shippingAmount := standardShippingCost
	shippingName := "Livraison standard"
	if order.Subtotal().GreaterThanOrEqual(freeShippingThreshold) {
		shippingAmount = decimal.Zero
		shippingName = "Livraison offerte"
	}

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:          lineItems,
		SuccessURL:         stripe.String(b.Stripe.SuccessURL),
		CancelURL:          stripe.String(b.Stripe.CancelURL),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		ShippingAddressCollection: &stripe.CheckoutSessionShippingAddressCollectionParams{
			AllowedCountries: stripe.StringSlice([]string{"ZA"}),
		},
		ShippingOptions: []*stripe.CheckoutSessionShippingOptionParams{
			{
				ShippingRateData: &stripe.CheckoutSessionShippingOptionShippingRateDataParams{
					Type:        stripe.String("fixed_amount"),
					DisplayName: stripe.String(shippingName),
					FixedAmount: &stripe.CheckoutSessionShippingOptionShippingRateDataFixedAmountParams{
						Amount:   stripe.Int64(shippingAmount.Mul(decimal.NewFromInt(100)).IntPart()),
						Currency: stripe.String("zar"),
					},
				},
			},
		},
		Metadata: map[string]string{
			"source":     "koosdoos_web",
			"order_id":   fmt.Sprintf("%d", order.ID),
			"cart_items": string(cartJSON),
		},
	}
	if order.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(order.CustomerEmail)
	}
	return params, nil
}

func productName(item models.OrderItem) string {
	if item.Title != "" {
		return item.Title
	}
	return item.SKU
}

func joinName(first, last string) string {
	switch {
	case first == "":
		return last
	case last == "":
		return first
	default:
		return first + " " + last
	}
}
