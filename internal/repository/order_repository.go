package repository

import (
	"context"
	"database/sql"
	"time"

	"grocery-store/internal/entity"
)

type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create persists the order, its item snapshots and the initial status
// history entry in a single transaction.
func (r *OrderRepository) Create(ctx context.Context, order *entity.Order) (*entity.Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	orderQuery := `
		INSERT INTO orders (order_number, user_id, subtotal, tax, shipping, discount, total,
			status, shipping_address, payment_method, payment_status, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, orderQuery,
		order.OrderNumber, order.UserID, order.Subtotal, order.Tax, order.Shipping,
		order.Discount, order.Total, order.Status, order.ShippingAddress,
		order.PaymentMethod, order.PaymentStatus, order.Version, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	orderID, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	// Insert item snapshots with a batch insert
	itemQuery := `INSERT INTO order_items (order_id, product_id, name, image, price, quantity, line_total) VALUES `
	var values []interface{}
	for _, item := range order.Items {
		itemQuery += "(?, ?, ?, ?, ?, ?, ?),"
		values = append(values, orderID, item.ProductID, item.Name, item.Image, item.Price, item.Quantity, item.LineTotal)
	}
	itemQuery = itemQuery[:len(itemQuery)-1]

	_, err = tx.ExecContext(ctx, itemQuery, values...)
	if err != nil {
		return nil, err
	}

	historyQuery := `INSERT INTO order_status_history (order_id, status, note, actor_id, created_at) VALUES (?, ?, ?, ?, ?)`
	for _, entry := range order.History {
		_, err = tx.ExecContext(ctx, historyQuery, orderID, entry.Status, entry.Note, entry.ActorID, entry.Timestamp)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	order.ID = int(orderID)
	return order, nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id int) (*entity.Order, error) {
	orderQuery := `
		SELECT id, order_number, user_id, subtotal, tax, shipping, discount, total,
			status, shipping_address, payment_method, payment_status,
			confirmed_at, processing_at, shipped_at, delivered_at, cancelled_at, cancelled_by,
			version, created_at, updated_at
		FROM orders WHERE id = ?`

	order := &entity.Order{}
	err := r.db.QueryRowContext(ctx, orderQuery, id).Scan(
		&order.ID, &order.OrderNumber, &order.UserID, &order.Subtotal, &order.Tax,
		&order.Shipping, &order.Discount, &order.Total, &order.Status,
		&order.ShippingAddress, &order.PaymentMethod, &order.PaymentStatus,
		&order.ConfirmedAt, &order.ProcessingAt, &order.ShippedAt, &order.DeliveredAt,
		&order.CancelledAt, &order.CancelledBy, &order.Version, &order.CreatedAt, &order.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := r.loadItems(ctx, order); err != nil {
		return nil, err
	}
	if err := r.loadHistory(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *OrderRepository) ListByUser(ctx context.Context, userID int) ([]*entity.Order, error) {
	query := `SELECT id FROM orders WHERE user_id = ? ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var orders []*entity.Order
	for _, id := range ids {
		order, err := r.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, nil
}

// UpdateStatus writes the order's status fields guarded by its optimistic
// version and appends one history row, in a single transaction. When a
// concurrent writer already bumped the version it returns
// entity.ErrVersionConflict and writes nothing.
func (r *OrderRepository) UpdateStatus(ctx context.Context, order *entity.Order, entry entity.StatusHistoryEntry) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	updateQuery := `
		UPDATE orders SET status = ?, payment_status = ?,
			confirmed_at = ?, processing_at = ?, shipped_at = ?, delivered_at = ?,
			cancelled_at = ?, cancelled_by = ?, version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?`
	res, err := tx.ExecContext(ctx, updateQuery,
		order.Status, order.PaymentStatus,
		order.ConfirmedAt, order.ProcessingAt, order.ShippedAt, order.DeliveredAt,
		order.CancelledAt, order.CancelledBy, time.Now(),
		order.ID, order.Version,
	)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return entity.ErrVersionConflict
	}

	historyQuery := `INSERT INTO order_status_history (order_id, status, note, actor_id, created_at) VALUES (?, ?, ?, ?, ?)`
	_, err = tx.ExecContext(ctx, historyQuery, order.ID, entry.Status, entry.Note, entry.ActorID, entry.Timestamp)
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	order.Version++
	return nil
}

func (r *OrderRepository) loadItems(ctx context.Context, order *entity.Order) error {
	query := `SELECT product_id, name, image, price, quantity, line_total FROM order_items WHERE order_id = ?`

	rows, err := r.db.QueryContext(ctx, query, order.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var item entity.OrderItem
		err := rows.Scan(&item.ProductID, &item.Name, &item.Image, &item.Price, &item.Quantity, &item.LineTotal)
		if err != nil {
			return err
		}
		order.Items = append(order.Items, item)
	}
	return rows.Err()
}

func (r *OrderRepository) loadHistory(ctx context.Context, order *entity.Order) error {
	query := `SELECT status, note, actor_id, created_at FROM order_status_history WHERE order_id = ? ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, order.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var entry entity.StatusHistoryEntry
		err := rows.Scan(&entry.Status, &entry.Note, &entry.ActorID, &entry.Timestamp)
		if err != nil {
			return err
		}
		order.History = append(order.History, entry)
	}
	return rows.Err()
}
