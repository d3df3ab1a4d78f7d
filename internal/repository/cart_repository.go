package repository

import (
	"context"
	"database/sql"
	"time"

	"grocery-store/internal/entity"
)

type CartRepository struct {
	db *sql.DB
}

func NewCartRepository(db *sql.DB) *CartRepository {
	return &CartRepository{db: db}
}

func (r *CartRepository) FindByUser(ctx context.Context, userID int) (*entity.Cart, error) {
	cartQuery := `SELECT id, user_id, subtotal, tax, shipping, discount, total, updated_at FROM carts WHERE user_id = ?`

	cart := &entity.Cart{}
	err := r.db.QueryRowContext(ctx, cartQuery, userID).Scan(
		&cart.ID, &cart.UserID, &cart.Subtotal, &cart.Tax, &cart.Shipping,
		&cart.Discount, &cart.Total, &cart.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	itemQuery := `SELECT product_id, name, price, quantity, line_total FROM cart_items WHERE cart_id = ?`
	rows, err := r.db.QueryContext(ctx, itemQuery, cart.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item entity.CartItem
		err := rows.Scan(&item.ProductID, &item.Name, &item.Price, &item.Quantity, &item.LineTotal)
		if err != nil {
			return nil, err
		}
		cart.Items = append(cart.Items, item)
	}
	return cart, rows.Err()
}

// Save upserts the cart and replaces its items in one transaction.
func (r *CartRepository) Save(ctx context.Context, cart *entity.Cart) (*entity.Cart, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	cart.UpdatedAt = time.Now()

	if cart.ID == 0 {
		insertQuery := `INSERT INTO carts (user_id, subtotal, tax, shipping, discount, total, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`
		res, err := tx.ExecContext(ctx, insertQuery,
			cart.UserID, cart.Subtotal, cart.Tax, cart.Shipping, cart.Discount, cart.Total, cart.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, err
		}
		cart.ID = int(id)
	} else {
		updateQuery := `UPDATE carts SET subtotal = ?, tax = ?, shipping = ?, discount = ?, total = ?, updated_at = ? WHERE id = ?`
		_, err = tx.ExecContext(ctx, updateQuery,
			cart.Subtotal, cart.Tax, cart.Shipping, cart.Discount, cart.Total, cart.UpdatedAt, cart.ID,
		)
		if err != nil {
			return nil, err
		}
	}

	// Replace items wholesale; carts are small and last-write-wins is fine here
	deleteQuery := `DELETE FROM cart_items WHERE cart_id = ?`
	_, err = tx.ExecContext(ctx, deleteQuery, cart.ID)
	if err != nil {
		return nil, err
	}

	if len(cart.Items) > 0 {
		itemQuery := `INSERT INTO cart_items (cart_id, product_id, name, price, quantity, line_total) VALUES `
		var values []interface{}
		for _, item := range cart.Items {
			itemQuery += "(?, ?, ?, ?, ?, ?),"
			values = append(values, cart.ID, item.ProductID, item.Name, item.Price, item.Quantity, item.LineTotal)
		}
		itemQuery = itemQuery[:len(itemQuery)-1]

		_, err = tx.ExecContext(ctx, itemQuery, values...)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return cart, nil
}

// Clear empties the user's cart after a successful checkout. The cart row
// itself is kept.
func (r *CartRepository) Clear(ctx context.Context, userID int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	deleteQuery := `DELETE ci FROM cart_items ci JOIN carts c ON ci.cart_id = c.id WHERE c.user_id = ?`
	_, err = tx.ExecContext(ctx, deleteQuery, userID)
	if err != nil {
		return err
	}

	resetQuery := `UPDATE carts SET subtotal = 0, tax = 0, shipping = 0, discount = 0, total = 0, updated_at = ? WHERE user_id = ?`
	_, err = tx.ExecContext(ctx, resetQuery, time.Now(), userID)
	if err != nil {
		return err
	}

	return tx.Commit()
}
