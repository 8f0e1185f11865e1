package payments

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"koosdoos_back_end/internal/models"
)

// fakeOrderStore garde les commandes en mémoire pour les tests.
type fakeOrderStore struct {
	mu     sync.Mutex
	nextID int64
	orders map[int64]*models.Order
	saves  int
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{nextID: 1, orders: make(map[int64]*models.Order)}
}

func (s *fakeOrderStore) FindByID(_ context.Context, id int64) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (s *fakeOrderStore) FindByExternalPaymentID(_ context.Context, externalID string) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orders {
		if o.ExternalPaymentID != "" && o.ExternalPaymentID == externalID {
			cp := *o
			return &cp, nil
		}
	}
	return nil, ErrOrderNotFound
}

func (s *fakeOrderStore) Create(_ context.Context, order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	order.ID = s.nextID
	s.nextID++
	cp := *order
	s.orders[order.ID] = &cp
	return nil
}

func (s *fakeOrderStore) Save(_ context.Context, order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *order
	s.orders[order.ID] = &cp
	s.saves++
	return nil
}

func (s *fakeOrderStore) put(o *models.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o.ID >= s.nextID {
		s.nextID = o.ID + 1
	}
	cp := *o
	s.orders[o.ID] = &cp
}

func (s *fakeOrderStore) get(id int64) *models.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *s.orders[id]
	return &cp
}

// fakeCatalog sert des variantes et titres produits fixes.
type fakeCatalog struct {
	mu       sync.Mutex
	variants map[string]*models.Variant // clé: productID/variantID
	titles   map[string]string
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{variants: make(map[string]*models.Variant), titles: make(map[string]string)}
}

func (c *fakeCatalog) add(productID, variantID, sku string, price float64, stock int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.variants[productID+"/"+variantID] = &models.Variant{
		SKU:          sku,
		Price:        price,
		InventoryQty: stock,
	}
}

func (c *fakeCatalog) GetVariant(_ context.Context, productID, variantID string) (*models.Variant, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.variants[productID+"/"+variantID]
	if !ok {
		return nil, ErrVariantNotFound
	}
	cp := *v
	return &cp, nil
}

func (c *fakeCatalog) GetProduct(_ context.Context, productID string) (*models.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return &models.Product{Title: c.titles[productID]}, nil
}

// fakeInventory compte les ajustements, plancher à zéro comme le vrai store.
type fakeInventory struct {
	mu     sync.Mutex
	stock  map[string]int
	calls  map[string]int
	absent map[string]bool
}

func newFakeInventory() *fakeInventory {
	return &fakeInventory{stock: make(map[string]int), calls: make(map[string]int), absent: make(map[string]bool)}
}

func (f *fakeInventory) AdjustStock(_ context.Context, variantID string, delta int, _ string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.absent[variantID] {
		return 0, ErrVariantNotFound
	}
	f.calls[variantID]++
	newQty := f.stock[variantID] + delta
	if newQty < 0 {
		newQty = 0
	}
	f.stock[variantID] = newQty
	return newQty, nil
}

// fakeLocker sérialise réellement par commande, comme le verrou Redis.
type fakeLocker struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func newFakeLocker() *fakeLocker {
	return &fakeLocker{locks: make(map[int64]*sync.Mutex)}
}

func (l *fakeLocker) Lock(_ context.Context, orderID int64) (func(), error) {
	l.mu.Lock()
	m, ok := l.locks[orderID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[orderID] = m
	}
	l.mu.Unlock()
	m.Lock()
	return m.Unlock, nil
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}
