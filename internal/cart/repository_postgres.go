package cart

import (
	"database/sql"
	"encoding/json"
	"strconv"

	"github.com/lib/pq"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	getCartJSONQuery = `SELECT cart FROM users WHERE user_id = $1`

	hydrateCartQuery = `
		SELECT product_id, product_name, product_price, product_pic, stock
		FROM product
		WHERE product_id = ANY($1::int[])
		ORDER BY array_position($1::int[], product_id)
	`

	// single-statement update so a concurrent cart write cannot be lost to a
	// fetch-then-patch race
	setQuantityQuery = `
		UPDATE users
		SET cart = CASE
				WHEN $2 <= 0 THEN cart - $1::text
				ELSE jsonb_set(cart, ARRAY[$1::text], to_jsonb($2::int), true)
			END,
			updated_at = $3
		WHERE user_id = $4
	`
	addQuantityQuery = `
		UPDATE users
		SET cart = CASE
				WHEN coalesce((cart ->> $1::text)::int, 0) + $2 <= 0 THEN cart - $1::text
				ELSE jsonb_set(cart, ARRAY[$1::text], to_jsonb(coalesce((cart ->> $1::text)::int, 0) + $2), true)
			END,
			updated_at = $3
		WHERE user_id = $4
	`
	clearCartQuery = `UPDATE users SET cart = '{}'::jsonb, updated_at = $1 WHERE user_id = $2`

	productExistsQuery = `SELECT 1 FROM product WHERE product_id = $1`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) AddToCart(userID int, productID int, qty int, updatedAt string) ([]CartItem, error) {
	if err := r.ensureProduct(productID); err != nil {
		return nil, err
	}

	res, err := r.db.Exec(addQuantityQuery, strconv.Itoa(productID), qty, updatedAt, userID)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, ErrNotFound
	}

	return r.GetCart(userID)
}

func (r *PostgresRepository) SetQuantity(userID int, productID int, qty int, updatedAt string) ([]CartItem, error) {
	if err := r.ensureProduct(productID); err != nil {
		return nil, err
	}

	res, err := r.db.Exec(setQuantityQuery, strconv.Itoa(productID), qty, updatedAt, userID)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, ErrNotFound
	}

	return r.GetCart(userID)
}

func (r *PostgresRepository) GetCart(userID int) ([]CartItem, error) {
	m, err := r.GetCartMap(userID)
	if err != nil {
		return nil, err
	}

	ids := make([]int, 0, len(m))
	for pid := range m {
		ids = append(ids, pid)
	}
	if len(ids) == 0 {
		return []CartItem{}, nil
	}

	rows, err := r.db.Query(hydrateCartQuery, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]CartItem, 0, len(ids))
	for rows.Next() {
		var item CartItem
		if err := rows.Scan(&item.ProductID, &item.Name, &item.Price, &item.Pic, &item.Stock); err != nil {
			return nil, err
		}
		item.Quantity = m[item.ProductID]
		out = append(out, item)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) GetCartMap(userID int) (map[int]int, error) {
	var raw sql.NullString
	if err := r.db.QueryRow(getCartJSONQuery, userID).Scan(&raw); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}

	out := make(map[int]int)
	if !raw.Valid || raw.String == "" {
		return out, nil
	}

	var m map[string]int
	if err := json.Unmarshal([]byte(raw.String), &m); err != nil {
		return nil, err
	}
	for k, qty := range m {
		pid, err := strconv.Atoi(k)
		if err != nil || qty <= 0 {
			continue
		}
		out[pid] = qty
	}
	return out, nil
}

func (r *PostgresRepository) ClearCart(userID int, updatedAt string) error {
	res, err := r.db.Exec(clearCartQuery, updatedAt, userID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) ensureProduct(productID int) error {
	var one int
	if err := r.db.QueryRow(productExistsQuery, productID).Scan(&one); err != nil {
		if err == sql.ErrNoRows {
			return ErrUnknownProduct
		}
		return err
	}
	return nil
}
