package service

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"grocery-store/internal/entity"
)

type fakeProductStore struct {
	mu       sync.Mutex
	products map[int]*entity.Product
	// failDecrement simulates a concurrent order draining the product
	// between validation and reservation.
	failDecrement map[int]bool
}

func newFakeProductStore(products ...*entity.Product) *fakeProductStore {
	s := &fakeProductStore{
		products:      make(map[int]*entity.Product),
		failDecrement: make(map[int]bool),
	}
	for _, p := range products {
		s.products[p.ID] = p
	}
	return s
}

func (s *fakeProductStore) FindByID(ctx context.Context, id int) (*entity.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil, nil
	}
	clone := *p
	return &clone, nil
}

func (s *fakeProductStore) FindByIDs(ctx context.Context, ids []int) ([]*entity.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entity.Product
	for _, id := range ids {
		if p, ok := s.products[id]; ok {
			clone := *p
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (s *fakeProductStore) List(ctx context.Context) ([]*entity.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entity.Product
	for _, p := range s.products {
		clone := *p
		out = append(out, &clone)
	}
	return out, nil
}

func (s *fakeProductStore) Create(ctx context.Context, product *entity.Product) (*entity.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	product.ID = len(s.products) + 1
	clone := *product
	s.products[product.ID] = &clone
	return product, nil
}

func (s *fakeProductStore) Update(ctx context.Context, product *entity.Product) (*entity.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *product
	s.products[product.ID] = &clone
	return product, nil
}

func (s *fakeProductStore) DecrementStock(ctx context.Context, id, quantity int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok || s.failDecrement[id] || p.Stock < quantity {
		return false, nil
	}
	p.Stock -= quantity
	return true, nil
}

func (s *fakeProductStore) IncrementStock(ctx context.Context, id, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.products[id]; ok {
		p.Stock += quantity
	}
	return nil
}

func (s *fakeProductStore) stock(id int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[id].Stock
}

type fakeOrderStore struct {
	orders    map[int]*entity.Order
	nextID    int
	createErr error
	updateErr error
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{orders: make(map[int]*entity.Order)}
}

func (s *fakeOrderStore) Create(ctx context.Context, order *entity.Order) (*entity.Order, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.nextID++
	order.ID = s.nextID
	s.orders[order.ID] = order
	return order, nil
}

func (s *fakeOrderStore) FindByID(ctx context.Context, id int) (*entity.Order, error) {
	order, ok := s.orders[id]
	if !ok {
		return nil, nil
	}
	return order, nil
}

func (s *fakeOrderStore) ListByUser(ctx context.Context, userID int) ([]*entity.Order, error) {
	var out []*entity.Order
	for _, o := range s.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *fakeOrderStore) UpdateStatus(ctx context.Context, order *entity.Order, entry entity.StatusHistoryEntry) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	order.Version++
	return nil
}

type fakeCartStore struct {
	carts    map[int]*entity.Cart
	cleared  []int
	clearErr error
}

func newFakeCartStore() *fakeCartStore {
	return &fakeCartStore{carts: make(map[int]*entity.Cart)}
}

func (s *fakeCartStore) FindByUser(ctx context.Context, userID int) (*entity.Cart, error) {
	cart, ok := s.carts[userID]
	if !ok {
		return nil, nil
	}
	return cart, nil
}

func (s *fakeCartStore) Save(ctx context.Context, cart *entity.Cart) (*entity.Cart, error) {
	if cart.ID == 0 {
		cart.ID = len(s.carts) + 1
	}
	s.carts[cart.UserID] = cart
	return cart, nil
}

func (s *fakeCartStore) Clear(ctx context.Context, userID int) error {
	if s.clearErr != nil {
		return s.clearErr
	}
	s.cleared = append(s.cleared, userID)
	if cart, ok := s.carts[userID]; ok {
		cart.Items = nil
		cart.Subtotal, cart.Tax, cart.Shipping, cart.Total = 0, 0, 0, 0
	}
	return nil
}

type fakeUserStore struct {
	users  map[int]*entity.User
	nextID int
}

func newFakeUserStore(users ...*entity.User) *fakeUserStore {
	s := &fakeUserStore{users: make(map[int]*entity.User)}
	for _, u := range users {
		s.users[u.ID] = u
		if u.ID > s.nextID {
			s.nextID = u.ID
		}
	}
	return s
}

func (s *fakeUserStore) Create(ctx context.Context, user *entity.User) (*entity.User, error) {
	s.nextID++
	user.ID = s.nextID
	s.users[user.ID] = user
	return user, nil
}

func (s *fakeUserStore) FindByID(ctx context.Context, id int) (*entity.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return user, nil
}

func (s *fakeUserStore) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

type fakeNotifier struct {
	err  error
	sent chan OrderConfirmation
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{sent: make(chan OrderConfirmation, 8)}
}

func (n *fakeNotifier) SendOrderConfirmation(ctx context.Context, confirmation OrderConfirmation) error {
	if n.err != nil {
		return n.err
	}
	n.sent <- confirmation
	return nil
}

type fakeKeyStore struct {
	mu   sync.Mutex
	keys map[string]bool
}

func newFakeKeyStore() *fakeKeyStore {
	return &fakeKeyStore{keys: make(map[string]bool)}
}

func (s *fakeKeyStore) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.keys[key] {
		return redis.NewBoolResult(false, nil)
	}
	s.keys[key] = true
	return redis.NewBoolResult(true, nil)
}

func (s *fakeKeyStore) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	s.mu.Lock()
	defer s.mu.Unlock()
	var deleted int64
	for _, k := range keys {
		if s.keys[k] {
			delete(s.keys, k)
			deleted++
		}
	}
	return redis.NewIntResult(deleted, nil)
}

type fakeEvents struct {
	mu   sync.Mutex
	keys []string
}

func (e *fakeEvents) Publish(ctx context.Context, key string, payload interface{}) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.keys = append(e.keys, key)
	return nil
}

func (e *fakeEvents) published() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.keys...)
}
