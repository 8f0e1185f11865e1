package order

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"koosdoos_back_end/internal/config"
	"koosdoos_back_end/internal/models"
	"koosdoos_back_end/internal/payments"
	"koosdoos_back_end/internal/shipping"
)

type memStore struct {
	mu     sync.Mutex
	orders map[int64]*models.Order
}

func (s *memStore) FindByID(_ context.Context, id int64) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, payments.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (s *memStore) Save(_ context.Context, order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *order
	s.orders[order.ID] = &cp
	return nil
}

func (s *memStore) List(_ context.Context, status models.OrderStatus, email string, _, _ int64) ([]*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Order
	for _, o := range s.orders {
		if status != "" && o.Status != status {
			continue
		}
		if email != "" && !strings.EqualFold(o.CustomerEmail, email) {
			continue
		}
		cp := *o
		out = append(out, &cp)
	}
	return out, nil
}

func setupRouter(t *testing.T, store *memStore) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	courier := shipping.NewClient(config.TCGConfig{Sandbox: true, WarehouseCity: "Pretoria"})
	Init(store, courier, nil)

	r := gin.New()
	r.GET("/orders/:id", GetOrder)
	r.GET("/admin/orders", ListOrders)
	r.PUT("/admin/orders/:id/status", UpdateStatus)
	r.POST("/admin/orders/:id/shipment", CreateShipment)
	return r
}

func storeWith(orders ...*models.Order) *memStore {
	s := &memStore{orders: make(map[int64]*models.Order)}
	for _, o := range orders {
		cp := *o
		s.orders[o.ID] = &cp
	}
	return s
}

func paidOrder(id int64) *models.Order {
	addr, _ := json.Marshal(models.Address{
		Street: "1 Kerk St", City: "Pretoria", Province: "Gauteng", PostalCode: "0001",
	})
	return &models.Order{
		ID:              id,
		Status:          models.OrderPaid,
		CustomerEmail:   "koos@example.co.za",
		Total:           decimal.RequireFromString("1999.00"),
		ShippingService: "standard",
		ShippingAddress: string(addr),
	}
}

func doJSON(r *gin.Engine, method, path string, payload interface{}) *httptest.ResponseRecorder {
	var body bytes.Buffer
	if payload != nil {
		json.NewEncoder(&body).Encode(payload)
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGetOrderRequiresMatchingEmail(t *testing.T) {
	store := storeWith(paidOrder(42))
	r := setupRouter(t, store)

	ok := doJSON(r, http.MethodGet, "/orders/42?email=KOOS@example.co.za", nil)
	assert.Equal(t, http.StatusOK, ok.Code, "e-mail insensible à la casse")

	wrong := doJSON(r, http.MethodGet, "/orders/42?email=autre@example.co.za", nil)
	assert.Equal(t, http.StatusNotFound, wrong.Code, "mauvais e-mail indistinguable d'une commande inconnue")

	missing := doJSON(r, http.MethodGet, "/orders/42", nil)
	assert.Equal(t, http.StatusNotFound, missing.Code)
}

func TestUpdateStatusFollowsTransitionTable(t *testing.T) {
	store := storeWith(paidOrder(42))
	r := setupRouter(t, store)

	w := doJSON(r, http.MethodPut, "/admin/orders/42/status", gin.H{"status": "processing"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.OrderProcessing, store.orders[42].Status)

	// processing → delivered n'est pas dans la table : refus sans effet.
	w = doJSON(r, http.MethodPut, "/admin/orders/42/status", gin.H{"status": "delivered"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, models.OrderProcessing, store.orders[42].Status)
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	store := storeWith(paidOrder(42))
	r := setupRouter(t, store)

	w := doJSON(r, http.MethodPut, "/admin/orders/42/status", gin.H{"status": "teleported"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateShipmentBooksWaybillAndShips(t *testing.T) {
	order := paidOrder(42)
	order.Status = models.OrderProcessing
	store := storeWith(order)
	r := setupRouter(t, store)

	w := doJSON(r, http.MethodPost, "/admin/orders/42/shipment", gin.H{
		"parcels": []gin.H{{"length": 60, "width": 60, "height": 40, "weight": 18}},
	})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	saved := store.orders[42]
	assert.Equal(t, models.OrderShipped, saved.Status)
	assert.Equal(t, "KDW00000042", saved.Waybill)
	assert.NotEmpty(t, saved.TrackingURL)
}

func TestCreateShipmentRefusedForPendingOrder(t *testing.T) {
	order := paidOrder(42)
	order.Status = models.OrderPending
	store := storeWith(order)
	r := setupRouter(t, store)

	w := doJSON(r, http.MethodPost, "/admin/orders/42/shipment", gin.H{
		"parcels": []gin.H{{"length": 60, "width": 60, "height": 40, "weight": 18}},
	})

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, models.OrderPending, store.orders[42].Status)
	assert.Empty(t, store.orders[42].Waybill)
}

func TestListOrdersFiltersByStatus(t *testing.T) {
	shipped := paidOrder(2)
	shipped.Status = models.OrderShipped
	store := storeWith(paidOrder(1), shipped)
	r := setupRouter(t, store)

	w := doJSON(r, http.MethodGet, "/admin/orders?status=shipped", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Count  int             `json:"count"`
		Orders []*models.Order `json:"orders"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
	require.Len(t, resp.Orders, 1)
	assert.EqualValues(t, 2, resp.Orders[0].ID)

	bad := doJSON(r, http.MethodGet, "/admin/orders?status=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, bad.Code)
}

func TestListOrdersFiltersByEmail(t *testing.T) {
	other := paidOrder(2)
	other.CustomerEmail = "autre@example.com"
	store := storeWith(paidOrder(1), other)
	r := setupRouter(t, store)

	w := doJSON(r, http.MethodGet, "/admin/orders?email=AUTRE@example.com", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Count  int             `json:"count"`
		Orders []*models.Order `json:"orders"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Count)
	assert.EqualValues(t, 2, resp.Orders[0].ID)
}
