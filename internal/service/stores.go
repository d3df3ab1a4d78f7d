package service

import (
	"context"

	"grocery-store/internal/entity"
)

// Store contracts consumed by the services. The repository package provides
// the MySQL implementations; tests substitute in-memory fakes.

type ProductStore interface {
	FindByID(ctx context.Context, id int) (*entity.Product, error)
	FindByIDs(ctx context.Context, ids []int) ([]*entity.Product, error)
	List(ctx context.Context) ([]*entity.Product, error)
	Create(ctx context.Context, product *entity.Product) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) (*entity.Product, error)
	// DecrementStock atomically decrements stock, reporting false when the
	// product had less than the requested quantity. Nothing is written in
	// that case.
	DecrementStock(ctx context.Context, id, quantity int) (bool, error)
	IncrementStock(ctx context.Context, id, quantity int) error
}

type OrderStore interface {
	Create(ctx context.Context, order *entity.Order) (*entity.Order, error)
	FindByID(ctx context.Context, id int) (*entity.Order, error)
	ListByUser(ctx context.Context, userID int) ([]*entity.Order, error)
	// UpdateStatus persists the order's status fields guarded by its
	// optimistic version and appends the history entry. Returns
	// entity.ErrVersionConflict when a concurrent writer won.
	UpdateStatus(ctx context.Context, order *entity.Order, entry entity.StatusHistoryEntry) error
}

type CartStore interface {
	FindByUser(ctx context.Context, userID int) (*entity.Cart, error)
	Save(ctx context.Context, cart *entity.Cart) (*entity.Cart, error)
	Clear(ctx context.Context, userID int) error
}

type UserStore interface {
	Create(ctx context.Context, user *entity.User) (*entity.User, error)
	FindByID(ctx context.Context, id int) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
}

// OrderConfirmation is the payload handed to the notifier after checkout.
type OrderConfirmation struct {
	Email       string `json:"email"`
	Name        string `json:"name"`
	OrderNumber string `json:"order_number"`
	ItemSummary string `json:"item_summary"`
}

// Notifier delivers customer-facing notifications. Callers treat delivery as
// fire-and-forget; errors are logged, never propagated.
type Notifier interface {
	SendOrderConfirmation(ctx context.Context, confirmation OrderConfirmation) error
}

// EventPublisher emits order lifecycle events for downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, key string, payload interface{}) error
}
