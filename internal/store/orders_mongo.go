package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"koosdoos_back_end/internal/models"
	"koosdoos_back_end/internal/payments"
)

// MongoOrderStore persiste les commandes dans MongoDB. Les identifiants
// sont des entiers séquentiels tirés de la collection "counters" : les
// références m_payment_id / metadata.order_id des fournisseurs de
// paiement restent des petits nombres lisibles.
type MongoOrderStore struct {
	orders   *mongo.Collection
	counters *mongo.Collection
}

func NewMongoOrderStore(db *mongo.Database) *MongoOrderStore {
	return &MongoOrderStore{
		orders:   db.Collection("orders"),
		counters: db.Collection("counters"),
	}
}

// orderDoc est la forme stockée. Les montants décimaux voyagent en
// chaînes : pas de flottants en base pour de l'argent.
type orderDoc struct {
	ID                int64          `bson:"_id"`
	Status            string         `bson:"status"`
	Provider          string         `bson:"provider,omitempty"`
	ExternalPaymentID string         `bson:"external_payment_id,omitempty"`
	CustomerEmail     string         `bson:"customer_email,omitempty"`
	CustomerName      string         `bson:"customer_name,omitempty"`
	CustomerPhone     string         `bson:"customer_phone,omitempty"`
	Total             string         `bson:"total"`
	ShippingCost      string         `bson:"shipping_cost"`
	ShippingService   string         `bson:"shipping_service,omitempty"`
	ShippingAddress   string         `bson:"shipping_address,omitempty"`
	Waybill           string         `bson:"waybill,omitempty"`
	TrackingURL       string         `bson:"tracking_url,omitempty"`
	Items             []orderItemDoc `bson:"items"`
	CreatedAt         time.Time      `bson:"created_at"`
	UpdatedAt         time.Time      `bson:"updated_at"`
}

type orderItemDoc struct {
	ProductID string `bson:"product_id"`
	VariantID string `bson:"variant_id"`
	SKU       string `bson:"sku,omitempty"`
	Title     string `bson:"title,omitempty"`
	Quantity  int    `bson:"quantity"`
	Price     string `bson:"price"`
}

func toDoc(o *models.Order) orderDoc {
	doc := orderDoc{
		ID:                o.ID,
		Status:            string(o.Status),
		Provider:          o.Provider,
		ExternalPaymentID: o.ExternalPaymentID,
		CustomerEmail:     o.CustomerEmail,
		CustomerName:      o.CustomerName,
		CustomerPhone:     o.CustomerPhone,
		Total:             o.Total.String(),
		ShippingCost:      o.ShippingCost.String(),
		ShippingService:   o.ShippingService,
		ShippingAddress:   o.ShippingAddress,
		Waybill:           o.Waybill,
		TrackingURL:       o.TrackingURL,
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
	}
	for _, it := range o.Items {
		doc.Items = append(doc.Items, orderItemDoc{
			ProductID: it.ProductID,
			VariantID: it.VariantID,
			SKU:       it.SKU,
			Title:     it.Title,
			Quantity:  it.Quantity,
			Price:     it.Price.String(),
		})
	}
	return doc
}

func fromDoc(doc orderDoc) (*models.Order, error) {
	total, err := decimal.NewFromString(doc.Total)
	if err != nil {
		return nil, fmt.Errorf("total corrompu pour la commande %d: %w", doc.ID, err)
	}
	shipping := decimal.Zero
	if doc.ShippingCost != "" {
		shipping, err = decimal.NewFromString(doc.ShippingCost)
		if err != nil {
			return nil, fmt.Errorf("frais de port corrompus pour la commande %d: %w", doc.ID, err)
		}
	}

	order := &models.Order{
		ID:                doc.ID,
		Status:            models.OrderStatus(doc.Status),
		Provider:          doc.Provider,
		ExternalPaymentID: doc.ExternalPaymentID,
		CustomerEmail:     doc.CustomerEmail,
		CustomerName:      doc.CustomerName,
		CustomerPhone:     doc.CustomerPhone,
		Total:             total,
		ShippingCost:      shipping,
		ShippingService:   doc.ShippingService,
		ShippingAddress:   doc.ShippingAddress,
		Waybill:           doc.Waybill,
		TrackingURL:       doc.TrackingURL,
		CreatedAt:         doc.CreatedAt,
		UpdatedAt:         doc.UpdatedAt,
	}
	for _, it := range doc.Items {
		price, err := decimal.NewFromString(it.Price)
		if err != nil {
			return nil, fmt.Errorf("prix corrompu (%s) pour la commande %d: %w", it.SKU, doc.ID, err)
		}
		order.Items = append(order.Items, models.OrderItem{
			ProductID: it.ProductID,
			VariantID: it.VariantID,
			SKU:       it.SKU,
			Title:     it.Title,
			Quantity:  it.Quantity,
			Price:     price,
		})
	}
	return order, nil
}

// EnsureIndexes pose l'index unique (sparse : seules les commandes déjà
// rapprochées portent un external_payment_id).
func (s *MongoOrderStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.orders.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "external_payment_id", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetSparse(true),
		},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	return err
}

// nextID incrémente atomiquement le compteur "orders" et retourne la
// nouvelle valeur. L'upsert initialise le compteur au premier appel.
func (s *MongoOrderStore) nextID(ctx context.Context) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := s.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": "orders"},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().
			SetUpsert(true).
			SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("compteur de commandes: %w", err)
	}
	return counter.Seq, nil
}

func (s *MongoOrderStore) Create(ctx context.Context, order *models.Order) error {
	id, err := s.nextID(ctx)
	if err != nil {
		return err
	}
	order.ID = id

	if _, err := s.orders.InsertOne(ctx, toDoc(order)); err != nil {
		return fmt.Errorf("insertion commande: %w", err)
	}
	log.Printf("📦 Commande #%d créée (%s)", order.ID, order.Total.StringFixed(2))
	return nil
}

func (s *MongoOrderStore) FindByID(ctx context.Context, id int64) (*models.Order, error) {
	var doc orderDoc
	err := s.orders.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, payments.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return fromDoc(doc)
}

func (s *MongoOrderStore) FindByExternalPaymentID(ctx context.Context, externalID string) (*models.Order, error) {
	if externalID == "" {
		return nil, payments.ErrOrderNotFound
	}
	var doc orderDoc
	err := s.orders.FindOne(ctx, bson.M{"external_payment_id": externalID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, payments.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return fromDoc(doc)
}

// Save réécrit le document entier. Les accès concurrents sont déjà
// sérialisés par le verrou Redis par commande, pas besoin d'update
// partiel ici.
func (s *MongoOrderStore) Save(ctx context.Context, order *models.Order) error {
	res, err := s.orders.ReplaceOne(ctx, bson.M{"_id": order.ID}, toDoc(order))
	if err != nil {
		return fmt.Errorf("sauvegarde commande %d: %w", order.ID, err)
	}
	if res.MatchedCount == 0 {
		return payments.ErrOrderNotFound
	}
	return nil
}

// List retourne les commandes, les plus récentes d'abord. status vide
// = tous les statuts, email vide = tous les clients.
func (s *MongoOrderStore) List(ctx context.Context, status models.OrderStatus, email string, limit, offset int64) ([]*models.Order, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = string(status)
	}
	if email != "" {
		filter["customer_email"] = primitive.Regex{
			Pattern: "^" + regexp.QuoteMeta(email) + "$",
			Options: "i",
		}
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	cursor, err := s.orders.Find(ctx, filter, options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit).
		SetSkip(offset))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var orders []*models.Order
	for cursor.Next(ctx) {
		var doc orderDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		order, err := fromDoc(doc)
		if err != nil {
			log.Printf("⚠️ Commande %d ignorée: %v", doc.ID, err)
			continue
		}
		orders = append(orders, order)
	}
	return orders, cursor.Err()
}
