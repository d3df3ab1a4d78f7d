package migrations

import (
	"database/sql"
	"time"
)

var tables = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		email VARCHAR(100) NOT NULL UNIQUE,
		password VARCHAR(255) NOT NULL,
		role VARCHAR(20) NOT NULL DEFAULT 'customer'
	);`,
	`CREATE TABLE IF NOT EXISTS products (
		id INT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		description TEXT NOT NULL,
		image VARCHAR(255) NOT NULL DEFAULT '',
		price DOUBLE NOT NULL,
		stock INT NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'active',
		CHECK (stock >= 0),
		CHECK (price >= 0)
	);`,
	`CREATE TABLE IF NOT EXISTS orders (
		id INT AUTO_INCREMENT PRIMARY KEY,
		order_number VARCHAR(40) NOT NULL UNIQUE,
		user_id INT NOT NULL,
		subtotal DOUBLE NOT NULL,
		tax DOUBLE NOT NULL,
		shipping DOUBLE NOT NULL,
		discount DOUBLE NOT NULL,
		total DOUBLE NOT NULL,
		status VARCHAR(20) NOT NULL,
		shipping_address VARCHAR(500) NOT NULL DEFAULT '',
		payment_method VARCHAR(20) NOT NULL,
		payment_status VARCHAR(20) NOT NULL,
		confirmed_at DATETIME NULL,
		processing_at DATETIME NULL,
		shipped_at DATETIME NULL,
		delivered_at DATETIME NULL,
		cancelled_at DATETIME NULL,
		cancelled_by INT NOT NULL DEFAULT 0,
		version INT NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		INDEX idx_orders_user (user_id)
	);`,
	`CREATE TABLE IF NOT EXISTS order_items (
		id INT AUTO_INCREMENT PRIMARY KEY,
		order_id INT NOT NULL,
		product_id INT NOT NULL,
		name VARCHAR(255) NOT NULL,
		image VARCHAR(255) NOT NULL DEFAULT '',
		price DOUBLE NOT NULL,
		quantity INT NOT NULL,
		line_total DOUBLE NOT NULL,
		FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE
	);`,
	`CREATE TABLE IF NOT EXISTS order_status_history (
		id INT AUTO_INCREMENT PRIMARY KEY,
		order_id INT NOT NULL,
		status VARCHAR(20) NOT NULL,
		note VARCHAR(255) NOT NULL DEFAULT '',
		actor_id INT NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL,
		FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE
	);`,
	`CREATE TABLE IF NOT EXISTS carts (
		id INT AUTO_INCREMENT PRIMARY KEY,
		user_id INT NOT NULL UNIQUE,
		subtotal DOUBLE NOT NULL DEFAULT 0,
		tax DOUBLE NOT NULL DEFAULT 0,
		shipping DOUBLE NOT NULL DEFAULT 0,
		discount DOUBLE NOT NULL DEFAULT 0,
		total DOUBLE NOT NULL DEFAULT 0,
		updated_at DATETIME NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS cart_items (
		id INT AUTO_INCREMENT PRIMARY KEY,
		cart_id INT NOT NULL,
		product_id INT NOT NULL,
		name VARCHAR(255) NOT NULL,
		price DOUBLE NOT NULL,
		quantity INT NOT NULL,
		line_total DOUBLE NOT NULL,
		FOREIGN KEY (cart_id) REFERENCES carts(id) ON DELETE CASCADE
	);`,
}

// AutoMigrate creates the storefront tables if they do not exist, retrying
// each statement since the database may still be starting up.
func AutoMigrate(db *sql.DB, retries int) error {
	for _, query := range tables {
		_, err := db.Exec(query)
		for i := 0; err != nil && i < retries; i++ {
			time.Sleep(1 * time.Second)
			_, err = db.Exec(query)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
