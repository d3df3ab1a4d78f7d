package repository

import (
	"context"
	"database/sql"
	"strings"

	"grocery-store/internal/entity"
)

type ProductRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) FindByID(ctx context.Context, id int) (*entity.Product, error) {
	query := `SELECT id, name, description, image, price, stock, status FROM products WHERE id = ?`

	var product entity.Product
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&product.ID, &product.Name, &product.Description, &product.Image,
		&product.Price, &product.Stock, &product.Status,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// FindByIDs batch-fetches products. Missing ids are simply absent from the
// result; the caller decides whether that is an error.
func (r *ProductRepository) FindByIDs(ctx context.Context, ids []int) ([]*entity.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	query := `SELECT id, name, description, image, price, stock, status FROM products WHERE id IN (` + placeholders + `)`

	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*entity.Product
	for rows.Next() {
		var product entity.Product
		err := rows.Scan(
			&product.ID, &product.Name, &product.Description, &product.Image,
			&product.Price, &product.Stock, &product.Status,
		)
		if err != nil {
			return nil, err
		}
		products = append(products, &product)
	}
	return products, rows.Err()
}

func (r *ProductRepository) List(ctx context.Context) ([]*entity.Product, error) {
	query := `SELECT id, name, description, image, price, stock, status FROM products`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*entity.Product
	for rows.Next() {
		var product entity.Product
		err := rows.Scan(
			&product.ID, &product.Name, &product.Description, &product.Image,
			&product.Price, &product.Stock, &product.Status,
		)
		if err != nil {
			return nil, err
		}
		products = append(products, &product)
	}
	return products, rows.Err()
}

func (r *ProductRepository) Create(ctx context.Context, product *entity.Product) (*entity.Product, error) {
	query := `INSERT INTO products (name, description, image, price, stock, status) VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query,
		product.Name, product.Description, product.Image, product.Price, product.Stock, product.Status,
	)
	if err != nil {
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	product.ID = int(id)
	return product, nil
}

func (r *ProductRepository) Update(ctx context.Context, product *entity.Product) (*entity.Product, error) {
	query := `UPDATE products SET name = ?, description = ?, image = ?, price = ?, stock = ?, status = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query,
		product.Name, product.Description, product.Image, product.Price, product.Stock, product.Status, product.ID,
	)
	if err != nil {
		return nil, err
	}
	return product, nil
}

// DecrementStock performs an atomic conditional decrement. It returns false
// when the product had less stock than requested (or does not exist), in
// which case nothing was written.
func (r *ProductRepository) DecrementStock(ctx context.Context, id, quantity int) (bool, error) {
	query := `UPDATE products SET stock = stock - ? WHERE id = ? AND stock >= ?`
	res, err := r.db.ExecContext(ctx, query, quantity, id, quantity)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// IncrementStock restores stock released by a cancellation or refund.
func (r *ProductRepository) IncrementStock(ctx context.Context, id, quantity int) error {
	query := `UPDATE products SET stock = stock + ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, quantity, id)
	return err
}
