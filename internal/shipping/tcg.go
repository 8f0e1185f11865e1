package shipping

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"koosdoos_back_end/internal/config"
	"koosdoos_back_end/internal/models"
)

// Client parle à l'API The Courier Guy : devis, réservation de waybill,
// suivi. En mode Sandbox les réponses sont simulées (grille tarifaire
// par province) pour le dev et les tests sans compte transporteur.
type Client struct {
	cfg  config.TCGConfig
	http *http.Client
}

func NewClient(cfg config.TCGConfig) *Client {
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: 15 * time.Second},
	}
}

// Warehouse retourne l'adresse d'enlèvement configurée.
func (c *Client) Warehouse() models.Address {
	return models.Address{
		Street:     c.cfg.WarehouseStreet,
		Suburb:     c.cfg.WarehouseSuburb,
		City:       c.cfg.WarehouseCity,
		Province:   c.cfg.WarehouseProvince,
		PostalCode: c.cfg.WarehousePostal,
		Country:    "ZA",
	}
}

// VolumetricWeight applique le diviseur aérien 5000 (cm³/kg). Le poids
// facturable est le max du réel et du volumétrique.
func VolumetricWeight(p models.Parcel) float64 {
	return p.Length * p.Width * p.Height / 5000
}

func billableWeight(parcels []models.Parcel) float64 {
	var total float64
	for _, p := range parcels {
		w := p.Weight
		if v := VolumetricWeight(p); v > w {
			w = v
		}
		total += w
	}
	return total
}

// Grille sandbox : tarif de base par province (livraison standard),
// supplément au kilo au-delà de 5 kg.
var provinceBaseRates = map[string]float64{
	"gauteng":       95,
	"western cape":  150,
	"kwazulu-natal": 140,
	"eastern cape":  160,
	"free state":    130,
	"north west":    120,
	"mpumalanga":    120,
	"limpopo":       140,
	"northern cape": 180,
}

type serviceDef struct {
	Type       string
	Name       string
	Multiplier float64
	Days       int
}

var services = []serviceDef{
	{"standard", "Économique (ECO)", 1.0, 4},
	{"express", "Express route (RTF)", 1.6, 2},
	{"overnight", "Overnight (ONX)", 2.4, 1},
}

// Quote retourne les devis par service pour une destination donnée.
func (c *Client) Quote(ctx context.Context, dest models.Address, parcels []models.Parcel) ([]models.ShippingQuote, error) {
	if c.cfg.Sandbox {
		return c.sandboxQuote(dest, parcels), nil
	}

	payload := map[string]interface{}{
		"collection_address": c.Warehouse(),
		"delivery_address":   dest,
		"parcels":            parcels,
	}
	var resp struct {
		Rates []struct {
			ServiceLevel struct {
				Code string `json:"code"`
				Name string `json:"name"`
			} `json:"service_level"`
			Rate         string `json:"rate"`
			DeliveryDays int    `json:"delivery_days"`
		} `json:"rates"`
	}
	if err := c.post(ctx, "/rates", payload, &resp); err != nil {
		return nil, fmt.Errorf("devis transporteur: %w", err)
	}

	var quotes []models.ShippingQuote
	for _, r := range resp.Rates {
		price, err := decimal.NewFromString(r.Rate)
		if err != nil {
			log.Printf("⚠️ Tarif transporteur illisible (%s): %v", r.ServiceLevel.Code, err)
			continue
		}
		quotes = append(quotes, models.ShippingQuote{
			ServiceType:       strings.ToLower(r.ServiceLevel.Code),
			ServiceName:       r.ServiceLevel.Name,
			Price:             price,
			EstimatedDays:     r.DeliveryDays,
			EstimatedDelivery: businessDaysFrom(time.Now(), r.DeliveryDays),
		})
	}
	return quotes, nil
}

func (c *Client) sandboxQuote(dest models.Address, parcels []models.Parcel) []models.ShippingQuote {
	base, ok := provinceBaseRates[strings.ToLower(strings.TrimSpace(dest.Province))]
	if !ok {
		base = 160 // hors grille : zone éloignée
	}

	weight := billableWeight(parcels)
	if extra := weight - 5; extra > 0 {
		base += extra * 8.5
	}

	quotes := make([]models.ShippingQuote, 0, len(services))
	for _, svc := range services {
		price := decimal.NewFromFloat(base * svc.Multiplier).Round(2)
		quotes = append(quotes, models.ShippingQuote{
			ServiceType:       svc.Type,
			ServiceName:       svc.Name,
			Price:             price,
			EstimatedDays:     svc.Days,
			EstimatedDelivery: businessDaysFrom(time.Now(), svc.Days),
		})
	}
	return quotes
}

// CreateShipment réserve un enlèvement et retourne le waybill.
func (c *Client) CreateShipment(ctx context.Context, order *models.Order, dest models.Address, parcels []models.Parcel) (*models.Shipment, error) {
	if c.cfg.Sandbox {
		waybill := fmt.Sprintf("KDW%08d", order.ID)
		return &models.Shipment{
			Waybill:           waybill,
			TrackingURL:       "https://portal.thecourierguy.co.za/track?ref=" + waybill,
			CollectionDate:    businessDaysFrom(time.Now(), 1),
			EstimatedDelivery: businessDaysFrom(time.Now(), estimatedDaysFor(order.ShippingService)),
		}, nil
	}

	payload := map[string]interface{}{
		"collection_address": c.Warehouse(),
		"delivery_address":   dest,
		"parcels":            parcels,
		"service_level_code": strings.ToUpper(order.ShippingService),
		"customer_reference": fmt.Sprintf("KD-%d", order.ID),
	}
	var resp struct {
		ShortTrackingReference string `json:"short_tracking_reference"`
		TrackingURL            string `json:"tracking_url"`
		LabelURL               string `json:"label_url"`
		CollectionDate         string `json:"collection_date"`
		EstimatedDeliveryDate  string `json:"estimated_delivery_date"`
	}
	if err := c.post(ctx, "/shipments", payload, &resp); err != nil {
		return nil, fmt.Errorf("réservation envoi commande %d: %w", order.ID, err)
	}

	shipment := &models.Shipment{
		Waybill:     resp.ShortTrackingReference,
		TrackingURL: resp.TrackingURL,
		LabelURL:    resp.LabelURL,
	}
	shipment.CollectionDate, _ = time.Parse("2006-01-02", resp.CollectionDate)
	shipment.EstimatedDelivery, _ = time.Parse("2006-01-02", resp.EstimatedDeliveryDate)
	return shipment, nil
}

// Track retourne l'historique de suivi d'un waybill.
func (c *Client) Track(ctx context.Context, waybill string) ([]models.TrackingEvent, error) {
	if c.cfg.Sandbox {
		now := time.Now()
		return []models.TrackingEvent{
			{Timestamp: now.Add(-48 * time.Hour), Status: "collected", Description: "Colis enlevé à l'entrepôt", Location: c.cfg.WarehouseCity},
			{Timestamp: now.Add(-24 * time.Hour), Status: "in_transit", Description: "En transit vers le hub régional", Location: "Johannesburg"},
			{Timestamp: now.Add(-2 * time.Hour), Status: "out_for_delivery", Description: "En cours de livraison", Location: ""},
		}, nil
	}

	var resp struct {
		Events []struct {
			Date        string `json:"date"`
			Status      string `json:"status"`
			Description string `json:"description"`
			Location    string `json:"location"`
		} `json:"events"`
	}
	if err := c.get(ctx, "/track/"+waybill, &resp); err != nil {
		return nil, fmt.Errorf("suivi %s: %w", waybill, err)
	}

	events := make([]models.TrackingEvent, 0, len(resp.Events))
	for _, e := range resp.Events {
		ts, _ := time.Parse(time.RFC3339, e.Date)
		events = append(events, models.TrackingEvent{
			Timestamp:   ts,
			Status:      e.Status,
			Description: e.Description,
			Location:    e.Location,
		})
	}
	return events, nil
}

func (c *Client) post(ctx context.Context, path string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("transporteur HTTP %d: %s", resp.StatusCode, snippet)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// businessDaysFrom avance de n jours ouvrés (on saute les week-ends ;
// les jours fériés sud-africains ne sont pas modélisés ici).
func businessDaysFrom(from time.Time, days int) time.Time {
	t := from
	for days > 0 {
		t = t.AddDate(0, 0, 1)
		if t.Weekday() != time.Saturday && t.Weekday() != time.Sunday {
			days--
		}
	}
	return t
}

func estimatedDaysFor(service string) int {
	for _, svc := range services {
		if svc.Type == service {
			return svc.Days
		}
	}
	return 4
}
