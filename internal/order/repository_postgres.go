package order

import (
	"database/sql"
	"encoding/json"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	orderColumns = `order_id, reference, user_id, items, subtotal, shipping_fee, total, shipping_address, payment_method, payment_details, status, coalesce(created_at, ''), coalesce(updated_at, '')`

	// guarded decrement: floor check and subtraction in one statement, so
	// RowsAffected == 0 means the stock could not cover the quantity
	txDecrementStockQuery = `UPDATE product SET stock = stock - $1 WHERE product_id = $2 AND stock >= $1`
	txGetStockQuery       = `SELECT product_name, stock FROM product WHERE product_id = $1`

	insertOrderQuery = `
		INSERT INTO orders (reference, user_id, items, subtotal, shipping_fee, total, shipping_address, payment_method, payment_details, status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING order_id
	`
	txClearCartQuery = `UPDATE users SET cart = '{}'::jsonb, updated_at = $1 WHERE user_id = $2`
	txSaveAddressQuery = `
		INSERT INTO address (user_id, recipient_name, phone, line1, city, postal_code, created_at, updated_at)
		SELECT $1, $2, $3, $4, $5, $6, $7, $7
		WHERE NOT EXISTS (
			SELECT 1 FROM address
			WHERE user_id = $1 AND recipient_name = $2 AND phone = $3 AND line1 = $4 AND city = $5 AND postal_code = $6
		)
	`

	getOrderByIDQuery  = `SELECT ` + orderColumns + ` FROM orders WHERE order_id = $1`
	listOrdersByUserQuery = `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY order_id DESC`
	listAllOrdersQuery    = `SELECT ` + orderColumns + ` FROM orders ORDER BY order_id DESC`
	updateStatusQuery     = `
		UPDATE orders
		SET status = $1, updated_at = $2
		WHERE order_id = $3 AND status = $4
		RETURNING ` + orderColumns + `
	`
	orderExistsQuery = `SELECT 1 FROM orders WHERE order_id = $1`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Commit runs the whole checkout mutation in one transaction: per-item
// guarded stock decrements, the order insert, the cart clear and the address
// append. Any failure rolls everything back, so stock is never decremented
// without a matching order and vice versa.
func (r *PostgresRepository) Commit(ord Order, opts CommitOptions) (Order, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return Order{}, err
	}
	defer tx.Rollback()

	shortages := make([]Shortage, 0)
	for _, it := range ord.Items {
		res, err := tx.Exec(txDecrementStockQuery, it.Quantity, it.ProductID)
		if err != nil {
			return Order{}, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return Order{}, err
		}
		if n == 0 {
			var name string
			var available int
			if err := tx.QueryRow(txGetStockQuery, it.ProductID).Scan(&name, &available); err == sql.ErrNoRows {
				return Order{}, &UnknownProductError{ProductID: it.ProductID}
			} else if err != nil {
				return Order{}, err
			}
			shortages = append(shortages, Shortage{
				ProductID: it.ProductID,
				Name:      name,
				Requested: it.Quantity,
				Available: available,
			})
		}
	}
	if len(shortages) > 0 {
		return Order{}, &InsufficientStockError{Shortages: shortages}
	}

	itemsJSON, err := json.Marshal(ord.Items)
	if err != nil {
		return Order{}, err
	}
	addressJSON, err := json.Marshal(ord.ShippingAddress)
	if err != nil {
		return Order{}, err
	}
	paymentJSON, err := json.Marshal(ord.PaymentDetails)
	if err != nil {
		return Order{}, err
	}

	err = tx.QueryRow(insertOrderQuery,
		ord.Reference, ord.UserID, itemsJSON, ord.Subtotal, ord.ShippingFee, ord.Total,
		addressJSON, string(ord.PaymentMethod), paymentJSON, string(ord.Status),
		ord.CreatedAt, ord.UpdatedAt,
	).Scan(&ord.OrderID)
	if err != nil {
		return Order{}, err
	}

	if opts.ClearCart {
		if _, err := tx.Exec(txClearCartQuery, ord.UpdatedAt, ord.UserID); err != nil {
			return Order{}, err
		}
	}
	if opts.SaveAddress {
		a := ord.ShippingAddress
		if _, err := tx.Exec(txSaveAddressQuery,
			ord.UserID, a.RecipientName, a.Phone, a.Line, a.City, a.PostalCode, ord.CreatedAt); err != nil {
			return Order{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return Order{}, err
	}
	return ord, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (Order, error) {
	var ord Order
	var itemsJSON, addressJSON, paymentJSON []byte
	var method, status string
	err := row.Scan(&ord.OrderID, &ord.Reference, &ord.UserID, &itemsJSON, &ord.Subtotal,
		&ord.ShippingFee, &ord.Total, &addressJSON, &method, &paymentJSON, &status,
		&ord.CreatedAt, &ord.UpdatedAt)
	if err == sql.ErrNoRows {
		return Order{}, ErrNotFound
	}
	if err != nil {
		return Order{}, err
	}
	if err := json.Unmarshal(itemsJSON, &ord.Items); err != nil {
		return Order{}, err
	}
	if err := json.Unmarshal(addressJSON, &ord.ShippingAddress); err != nil {
		return Order{}, err
	}
	if err := json.Unmarshal(paymentJSON, &ord.PaymentDetails); err != nil {
		return Order{}, err
	}
	ord.PaymentMethod = PaymentMethod(method)
	ord.Status = Status(status)
	return ord, nil
}

func (r *PostgresRepository) GetByID(orderID int) (Order, error) {
	return scanOrder(r.db.QueryRow(getOrderByIDQuery, orderID))
}

func (r *PostgresRepository) ListByUser(userID int) ([]Order, error) {
	return r.list(listOrdersByUserQuery, userID)
}

func (r *PostgresRepository) ListAll() ([]Order, error) {
	return r.list(listAllOrdersQuery)
}

func (r *PostgresRepository) list(query string, args ...any) ([]Order, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Order, 0)
	for rows.Next() {
		ord, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ord)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) UpdateStatus(orderID int, from, to Status, updatedAt string) (Order, error) {
	ord, err := scanOrder(r.db.QueryRow(updateStatusQuery, string(to), updatedAt, orderID, string(from)))
	if err == ErrNotFound {
		// no row matched; find out whether the order is missing or the
		// status moved underneath us
		var one int
		if err2 := r.db.QueryRow(orderExistsQuery, orderID).Scan(&one); err2 == sql.ErrNoRows {
			return Order{}, ErrNotFound
		} else if err2 != nil {
			return Order{}, err2
		}
		return Order{}, ErrInvalidTransition
	}
	return ord, err
}
