package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"

	"grocery-store/internal/entity"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// idempotencyStore is the slice of the redis client used for checkout
// deduplication. *redis.Client satisfies it.
type idempotencyStore interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// OrderService owns the order lifecycle: creation with inventory
// reservation, cancellation with stock restoration, and the status
// transition table. It is the only writer of product stock.
type OrderService struct {
	products ProductStore
	orders   OrderStore
	carts    CartStore
	users    UserStore
	notifier Notifier
	events   EventPublisher
	rdb      idempotencyStore
	pricing  entity.PricingConfig
}

func NewOrderService(
	products ProductStore,
	orders OrderStore,
	carts CartStore,
	users UserStore,
	notifier Notifier,
	events EventPublisher,
	rdb idempotencyStore,
	pricing entity.PricingConfig,
) *OrderService {
	return &OrderService{
		products: products,
		orders:   orders,
		carts:    carts,
		users:    users,
		notifier: notifier,
		events:   events,
		rdb:      rdb,
		pricing:  pricing,
	}
}

type OrderItemRequest struct {
	ProductID int `json:"product_id"`
	Quantity  int `json:"quantity"`
}

type CreateOrderRequest struct {
	UserID          int                  `json:"user_id"`
	Items           []OrderItemRequest   `json:"items"`
	ShippingAddress string               `json:"shipping_address"`
	PaymentMethod   entity.PaymentMethod `json:"payment_method"`
	IdempotencyKey  string               `json:"-"`
}

// CreateOrder validates availability, snapshots item prices, reserves stock
// through atomic conditional decrements and persists the order as pending.
// No stock is touched until every item has passed validation, and a failed
// reservation releases whatever was already reserved.
func (s *OrderService) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*entity.Order, error) {
	if len(req.Items) == 0 {
		return nil, entity.ErrEmptyOrder
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("invalid quantity %d for product %d", item.Quantity, item.ProductID)
		}
	}

	if err := s.claimIdempotencyKey(ctx, req.IdempotencyKey); err != nil {
		return nil, err
	}

	created, err := s.placeOrder(ctx, req)
	if err != nil {
		// A checkout that created nothing must not burn the key: the
		// client is entitled to retry with the same one.
		s.releaseIdempotencyKey(ctx, req.IdempotencyKey)
		return nil, err
	}
	return created, nil
}

func (s *OrderService) placeOrder(ctx context.Context, req *CreateOrderRequest) (*entity.Order, error) {
	ids := distinctProductIDs(req.Items)
	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		logger.Error().Err(err).Msg("Error fetching products for order")
		return nil, err
	}
	if len(products) != len(ids) {
		return nil, fmt.Errorf("%w: %d of %d products resolved", entity.ErrProductNotFound, len(products), len(ids))
	}

	byID := make(map[int]*entity.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	// All validation happens before any stock write
	for _, item := range req.Items {
		product := byID[item.ProductID]
		if product.Status != entity.ProductActive {
			return nil, fmt.Errorf("%w: %s", entity.ErrProductUnavailable, product.Name)
		}
		if product.Stock < item.Quantity {
			return nil, fmt.Errorf("%w: %s", entity.ErrInsufficientStock, product.Name)
		}
	}

	now := time.Now()
	order := &entity.Order{
		OrderNumber:     entity.NewOrderNumber(),
		UserID:          req.UserID,
		Status:          entity.OrderPending,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		PaymentStatus:   entity.PaymentUnpaid,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	for _, item := range req.Items {
		product := byID[item.ProductID]
		order.Items = append(order.Items, entity.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Image:     product.Image,
			Price:     product.Price,
			Quantity:  item.Quantity,
		})
	}
	order.RecomputeTotals(s.pricing)
	order.AppendHistory(entity.OrderPending, req.UserID, "order placed")

	reserved, err := s.reserveStock(ctx, req.Items, byID)
	if err != nil {
		s.releaseStock(ctx, reserved)
		return nil, err
	}

	created, err := s.orders.Create(ctx, order)
	if err != nil {
		logger.Error().Err(err).Msg("Error creating order")
		s.releaseStock(ctx, reserved)
		return nil, err
	}

	// Best-effort: a cart that fails to clear must not fail the order
	if err := s.carts.Clear(ctx, req.UserID); err != nil {
		logger.Warn().Err(err).Int("user_id", req.UserID).Msg("Failed to clear cart after checkout")
	}

	s.notifyConfirmation(created)
	s.publishOrderEvent(ctx, created, "created")

	return created, nil
}

// CancelOrder cancels an order on behalf of its owner or an admin. Only
// pending and confirmed orders are cancellable through this path.
func (s *OrderService) CancelOrder(ctx context.Context, orderID, actorID int, actorRole entity.Role) (*entity.Order, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		logger.Error().Err(err).Int("order_id", orderID).Msg("Error getting order")
		return nil, err
	}
	if order == nil {
		return nil, entity.ErrOrderNotFound
	}

	if order.UserID != actorID && actorRole != entity.RoleAdmin {
		return nil, entity.ErrNotAuthorized
	}
	if order.Status != entity.OrderPending && order.Status != entity.OrderConfirmed {
		return nil, fmt.Errorf("%w: %s -> %s", entity.ErrInvalidTransition, order.Status, entity.OrderCancelled)
	}

	if err := s.applyTransition(ctx, order, entity.OrderCancelled, actorID, "cancelled by "+string(actorRole)); err != nil {
		return nil, err
	}

	s.publishOrderEvent(ctx, order, "cancelled")
	return order, nil
}

// UpdateOrderStatus moves an order along the fulfillment state machine.
// Admin only; transitions outside the allowed-next table are rejected and
// leave the order untouched. A transition to cancelled restores stock
// through the same path CancelOrder uses.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID int, newStatus entity.OrderStatus, actorID int, actorRole entity.Role) (*entity.Order, error) {
	if actorRole != entity.RoleAdmin {
		return nil, entity.ErrNotAuthorized
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		logger.Error().Err(err).Int("order_id", orderID).Msg("Error getting order")
		return nil, err
	}
	if order == nil {
		return nil, entity.ErrOrderNotFound
	}

	if err := s.applyTransition(ctx, order, newStatus, actorID, ""); err != nil {
		return nil, err
	}

	if newStatus == entity.OrderCancelled {
		s.publishOrderEvent(ctx, order, "cancelled")
	} else {
		s.publishOrderEvent(ctx, order, "status_changed")
	}
	return order, nil
}

func (s *OrderService) GetOrder(ctx context.Context, orderID, actorID int, actorRole entity.Role) (*entity.Order, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, entity.ErrOrderNotFound
	}
	if order.UserID != actorID && actorRole != entity.RoleAdmin {
		return nil, entity.ErrNotAuthorized
	}
	return order, nil
}

func (s *OrderService) ListOrders(ctx context.Context, userID int) ([]*entity.Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

// applyTransition is the single authority over status changes and their
// inventory side effect: a transition to cancelled restores stock, every
// other transition leaves inventory alone.
func (s *OrderService) applyTransition(ctx context.Context, order *entity.Order, newStatus entity.OrderStatus, actorID int, note string) error {
	if !entity.CanTransition(order.Status, newStatus) {
		return fmt.Errorf("%w: %s -> %s", entity.ErrInvalidTransition, order.Status, newStatus)
	}

	// Stage the transition on a copy so a failed persist leaves the
	// entity exactly as it was loaded.
	now := time.Now()
	next := *order
	next.Status = newStatus
	next.MarkStatusTimestamp(newStatus, now)
	if newStatus == entity.OrderCancelled {
		next.CancelledBy = actorID
	}

	entry := entity.StatusHistoryEntry{
		Status:    newStatus,
		Timestamp: now,
		Note:      note,
		ActorID:   actorID,
	}
	if err := s.orders.UpdateStatus(ctx, &next, entry); err != nil {
		logger.Error().Err(err).Int("order_id", order.ID).Str("status", string(newStatus)).Msg("Error updating order status")
		return err
	}
	*order = next
	order.History = append(order.History, entry)

	if newStatus == entity.OrderCancelled {
		s.restoreStock(ctx, order)
	}
	return nil
}

// reserveStock decrements stock item by item and reports which items were
// reserved so a failure can be compensated. The conditional update is the
// guard against two concurrent checkouts draining the same product.
func (s *OrderService) reserveStock(ctx context.Context, items []OrderItemRequest, byID map[int]*entity.Product) ([]OrderItemRequest, error) {
	var reserved []OrderItemRequest
	for _, item := range items {
		ok, err := s.products.DecrementStock(ctx, item.ProductID, item.Quantity)
		if err != nil {
			return reserved, err
		}
		if !ok {
			// Another order took the stock between validation and here
			return reserved, fmt.Errorf("%w: %s", entity.ErrInsufficientStock, byID[item.ProductID].Name)
		}
		reserved = append(reserved, item)
	}
	return reserved, nil
}

// releaseStock compensates a partially reserved order.
func (s *OrderService) releaseStock(ctx context.Context, reserved []OrderItemRequest) {
	for _, item := range reserved {
		if err := s.products.IncrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			logger.Error().Err(err).Int("product_id", item.ProductID).Msg("Error releasing reserved stock")
		}
	}
}

// restoreStock returns a cancelled order's quantities to inventory,
// best-effort per item.
func (s *OrderService) restoreStock(ctx context.Context, order *entity.Order) {
	for _, item := range order.Items {
		if err := s.products.IncrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			logger.Error().Err(err).Int("product_id", item.ProductID).Int("order_id", order.ID).Msg("Error restoring stock")
		}
	}
}

// notifyConfirmation fires the order confirmation from a detached goroutine.
// Its failure is logged and never reaches the caller.
func (s *OrderService) notifyConfirmation(order *entity.Order) {
	if s.notifier == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		user, err := s.users.FindByID(ctx, order.UserID)
		if err != nil || user == nil {
			logger.Error().Err(err).Int("user_id", order.UserID).Msg("Error loading user for confirmation")
			return
		}

		var summary []string
		for _, item := range order.Items {
			summary = append(summary, fmt.Sprintf("%dx %s", item.Quantity, item.Name))
		}

		err = s.notifier.SendOrderConfirmation(ctx, OrderConfirmation{
			Email:       user.Email,
			Name:        user.Name,
			OrderNumber: order.OrderNumber,
			ItemSummary: strings.Join(summary, ", "),
		})
		if err != nil {
			logger.Error().Err(err).Str("order_number", order.OrderNumber).Msg("Error sending order confirmation")
		}
	}()
}

func (s *OrderService) publishOrderEvent(ctx context.Context, order *entity.Order, event string) {
	if s.events == nil {
		return
	}

	// order.created.42, order.cancelled.42, order.status_changed.42
	key := fmt.Sprintf("order.%s.%d", event, order.ID)
	if err := s.events.Publish(ctx, key, order); err != nil {
		logger.Error().Err(err).Str("key", key).Msg("Error publishing order event")
	}
}

// claimIdempotencyKey deduplicates retried checkout requests through Redis.
// An empty key skips the check; a nil client disables it (tests).
func (s *OrderService) claimIdempotencyKey(ctx context.Context, key string) error {
	if key == "" || s.rdb == nil {
		return nil
	}

	redisKey := fmt.Sprintf("idempotency-key:%s", key)
	ok, err := s.rdb.SetNX(ctx, redisKey, "claimed", 24*time.Hour).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	if !ok {
		return entity.ErrDuplicateRequest
	}
	return nil
}

// releaseIdempotencyKey frees a claimed key after a failed checkout.
func (s *OrderService) releaseIdempotencyKey(ctx context.Context, key string) {
	if key == "" || s.rdb == nil {
		return
	}

	redisKey := fmt.Sprintf("idempotency-key:%s", key)
	if err := s.rdb.Del(ctx, redisKey).Err(); err != nil && !errors.Is(err, redis.Nil) {
		logger.Warn().Err(err).Str("key", key).Msg("Failed to release idempotency key")
	}
}

func distinctProductIDs(items []OrderItemRequest) []int {
	seen := make(map[int]bool, len(items))
	var ids []int
	for _, item := range items {
		if !seen[item.ProductID] {
			seen[item.ProductID] = true
			ids = append(ids, item.ProductID)
		}
	}
	return ids
}
