package bestseller

import (
	"database/sql"

	"github.com/lib/pq"
)

// Repository aggregates order history into the top-sellers feed.
type Repository interface {
	List(limit int) ([]Item, error)
}

type PostgresRepository struct {
	db *sql.DB
}

const (
	// cancelled orders never shipped, so they do not count as sales
	topSellersQuery = `
		SELECT (item ->> 'productId')::int AS product_id, SUM((item ->> 'quantity')::int) AS sold
		FROM orders, jsonb_array_elements(items) AS item
		WHERE status <> 'cancelled'
		GROUP BY product_id
		ORDER BY sold DESC, product_id
		LIMIT $1
	`
	hydrateQuery = `
		SELECT product_id, product_name, product_price, product_pic
		FROM product
		WHERE product_id = ANY($1::int[])
	`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(limit int) ([]Item, error) {
	rows, err := r.db.Query(topSellersQuery, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Item, 0, limit)
	ids := make([]int, 0, limit)
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ProductID, &it.Sold); err != nil {
			return nil, err
		}
		out = append(out, it)
		ids = append(ids, it.ProductID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return out, nil
	}

	// enrich with catalog data; products deleted since their sales keep
	// their id and count but carry no details
	prows, err := r.db.Query(hydrateQuery, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer prows.Close()

	details := map[int]Item{}
	for prows.Next() {
		var it Item
		if err := prows.Scan(&it.ProductID, &it.Name, &it.Price, &it.Pic); err != nil {
			return nil, err
		}
		details[it.ProductID] = it
	}
	if err := prows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		if d, ok := details[out[i].ProductID]; ok {
			out[i].Name = d.Name
			out[i].Price = d.Price
			out[i].Pic = d.Pic
		}
	}
	return out, nil
}
