package payments

import (
	"context"
	"encoding/json"
	"strconv"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"koosdoos_back_end/internal/config"
	"koosdoos_back_end/internal/models"
)

func newTestBuilder() (*Builder, *fakeCatalog, *fakeOrderStore) {
	catalog := newFakeCatalog()
	store := newFakeOrderStore()
	builder := &Builder{
		Catalog: catalog,
		Orders:  store,
		Payfast: config.PayfastConfig{
			MerchantID:  "10000100",
			MerchantKey: "46f0cd694581a",
			Passphrase:  "jt7NOE43FZPn",
			ProcessURL:  "https://sandbox.payfast.co.za/eng/process",
			ReturnURL:   "https://shop.example/return",
			CancelURL:   "https://shop.example/cancel",
			NotifyURL:   "https://shop.example/notify",
		},
		Stripe: config.StripeConfig{
			SuccessURL: "https://shop.example/ok",
			CancelURL:  "https://shop.example/cancel",
		},
	}
	return builder, catalog, store
}

func TestCreateOrderSnapshotsCurrentPrices(t *testing.T) {
	builder, catalog, store := newTestBuilder()
	catalog.add("p1", "v1", "FP-S", 899.50, 10)
	catalog.titles["p1"] = "Feu de camp pliable"

	order, err := builder.CreateOrder(context.Background(),
		[]models.CartItem{{ProductID: "p1", VariantID: "v1", Quantity: 2}},
		models.CustomerInfo{Email: "koos@example.co.za"},
		dec("150.00"), "standard", nil)
	require.NoError(t, err)

	// subtotal 1799.00 + livraison 150.00
	assert.True(t, order.Total.Equal(dec("1949.00")), "total reçu %s", order.Total)
	require.Len(t, order.Items, 1)
	assert.True(t, order.Items[0].Price.Equal(dec("899.5")))
	assert.Equal(t, models.OrderPending, order.Status)
	assert.NotZero(t, order.ID)
	assert.Equal(t, models.OrderPending, store.get(order.ID).Status)
}

func TestCreateOrderRejectsUnknownLine(t *testing.T) {
	builder, _, store := newTestBuilder()

	_, err := builder.CreateOrder(context.Background(),
		[]models.CartItem{{ProductID: "nope", VariantID: "nope", Quantity: 1}},
		models.CustomerInfo{}, decimal.Zero, "", nil)

	assert.ErrorIs(t, err, ErrInvalidLine)
	assert.Empty(t, store.orders, "aucune commande partielle")
}

func TestCreateOrderRejectsInsufficientStock(t *testing.T) {
	builder, catalog, store := newTestBuilder()
	catalog.add("p1", "v1", "FP-S", 100, 10)
	catalog.add("p2", "v2", "FP-L", 200, 1)

	// La deuxième ligne manque de stock : tout le checkout échoue.
	_, err := builder.CreateOrder(context.Background(),
		[]models.CartItem{
			{ProductID: "p1", VariantID: "v1", Quantity: 1},
			{ProductID: "p2", VariantID: "v2", Quantity: 3},
		},
		models.CustomerInfo{}, decimal.Zero, "", nil)

	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Empty(t, store.orders)
}

func TestCreateOrderRejectsEmptyCart(t *testing.T) {
	builder, _, _ := newTestBuilder()
	_, err := builder.CreateOrder(context.Background(), nil, models.CustomerInfo{}, decimal.Zero, "", nil)
	assert.ErrorIs(t, err, ErrInvalidLine)
}

func TestPayfastFieldsOrderAndSignature(t *testing.T) {
	builder, catalog, _ := newTestBuilder()
	catalog.add("p1", "v1", "FP-S", 1999, 5)

	order, err := builder.CreateOrder(context.Background(),
		[]models.CartItem{{ProductID: "p1", VariantID: "v1", Quantity: 1}},
		models.CustomerInfo{Email: "koos@example.co.za", FirstName: "Koos", LastName: "Doos"},
		decimal.Zero, "", nil)
	require.NoError(t, err)

	fields := builder.PayfastFields(order, models.CustomerInfo{
		Email: "koos@example.co.za", FirstName: "Koos", LastName: "Doos",
	})

	// L'ordre documenté par le fournisseur, signature en dernier.
	wantOrder := []string{
		"merchant_id", "merchant_key", "return_url", "cancel_url", "notify_url",
		"name_first", "name_last", "email_address", "cell_number",
		"m_payment_id", "amount", "item_name", "signature",
	}
	require.Len(t, fields, len(wantOrder))
	for i, name := range wantOrder {
		assert.Equal(t, name, fields[i].Name, "position %d", i)
	}

	// Signer puis vérifier doit boucler (même ordre canonique).
	sig := fields[len(fields)-1].Value
	assert.True(t, Verify(fields[:len(fields)-1], sig, builder.Payfast.Passphrase))

	// Le montant est formaté à deux décimales.
	for _, f := range fields {
		if f.Name == "amount" {
			assert.Equal(t, "1999.00", f.Value)
		}
	}
}

func TestStripeParamsMinorUnitsAndMetadata(t *testing.T) {
	builder, catalog, _ := newTestBuilder()
	catalog.add("p1", "v1", "FP-S", 899.50, 5)
	catalog.titles["p1"] = "Feu de camp pliable"

	lines := []models.CartItem{{ProductID: "p1", VariantID: "v1", Quantity: 2}}
	order, err := builder.CreateOrder(context.Background(), lines,
		models.CustomerInfo{Email: "koos@example.co.za"}, dec("150.00"), "standard", nil)
	require.NoError(t, err)

	params, err := builder.StripeParams(order, lines)
	require.NoError(t, err)

	require.Len(t, params.LineItems, 1)
	assert.Equal(t, int64(89950), *params.LineItems[0].PriceData.UnitAmount, "centimes")
	assert.Equal(t, int64(2), *params.LineItems[0].Quantity)
	assert.Equal(t, "zar", *params.LineItems[0].PriceData.Currency)

	assert.Equal(t, strconv.FormatInt(order.ID, 10), params.Metadata["order_id"])
	assert.Equal(t, "koosdoos_web", params.Metadata["source"])

	// Le panier voyage en JSON dans la metadata (relu par le parseur).
	var decoded []models.CartItem
	require.NoError(t, json.Unmarshal([]byte(params.Metadata["cart_items"]), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "v1", decoded[0].VariantID)
}

func TestStripeParamsFreeShippingThreshold(t *testing.T) {
	builder, catalog, _ := newTestBuilder()
	catalog.add("p1", "v1", "FP-XL", 3000, 5)

	lines := []models.CartItem{{ProductID: "p1", VariantID: "v1", Quantity: 1}}
	order, err := builder.CreateOrder(context.Background(), lines, models.CustomerInfo{}, decimal.Zero, "", nil)
	require.NoError(t, err)

	params, err := builder.StripeParams(order, lines)
	require.NoError(t, err)

	require.Len(t, params.ShippingOptions, 1)
	amount := *params.ShippingOptions[0].ShippingRateData.FixedAmount.Amount
	assert.Equal(t, int64(0), amount, "livraison offerte dès R2500")
}
