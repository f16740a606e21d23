package product

import (
	"database/sql"

	"github.com/lib/pq"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	productColumns = `product_id, product_name, coalesce(product_desc, ''), coalesce(category, ''), coalesce(brand, ''), product_price, stock, product_pic, product_pic_second, tags, rating, created_at, updated_at`

	listProductsQuery = `
		SELECT ` + productColumns + `
		FROM product
		ORDER BY product_id
	`
	listProductsByCategoryQuery = `
		SELECT ` + productColumns + `
		FROM product
		WHERE category = $1
		ORDER BY product_id
	`
	getProductByIDQuery = `
		SELECT ` + productColumns + `
		FROM product
		WHERE product_id = $1
	`
	listProductsByIDsQuery = `
		SELECT ` + productColumns + `
		FROM product
		WHERE product_id = ANY($1::int[])
		ORDER BY array_position($1::int[], product_id)
	`
	listCategoriesQuery = `SELECT DISTINCT category FROM product WHERE category IS NOT NULL AND category <> '' ORDER BY category`
	insertProductQuery  = `
		INSERT INTO product (product_name, product_desc, category, brand, product_price, stock, product_pic, product_pic_second, tags, rating, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING product_id
	`
	updateProductQuery = `
		UPDATE product
		SET product_name = $1,
			product_desc = $2,
			category = $3,
			brand = $4,
			product_price = $5,
			stock = $6,
			product_pic = $7,
			product_pic_second = $8,
			tags = $9,
			rating = $10,
			updated_at = $11
		WHERE product_id = $12
	`
	deleteProductQuery = `DELETE FROM product WHERE product_id = $1`

	// stock floor check and decrement happen in one statement so concurrent
	// checkouts can never drive stock negative
	decrementStockQuery = `UPDATE product SET stock = stock - $1 WHERE product_id = $2 AND stock >= $1`
	restoreStockQuery   = `UPDATE product SET stock = stock + $1 WHERE product_id = $2`
	getStockQuery       = `SELECT stock FROM product WHERE product_id = $1`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (Product, error) {
	var p Product
	var tags pq.StringArray
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Category, &p.Brand, &p.Price, &p.Stock,
		&p.Pic, &p.PicSecond, &tags, &p.Rating, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return Product{}, ErrNotFound
	}
	if err != nil {
		return Product{}, err
	}
	p.Tags = []string(tags)
	return p, nil
}

func (r *PostgresRepository) List(category string) ([]Product, error) {
	var rows *sql.Rows
	var err error
	if category == "" {
		rows, err = r.db.Query(listProductsQuery)
	} else {
		rows, err = r.db.Query(listProductsByCategoryQuery, category)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) GetByID(id int) (Product, error) {
	return scanProduct(r.db.QueryRow(getProductByIDQuery, id))
}

func (r *PostgresRepository) ListByIDs(ids []int) ([]Product, error) {
	if len(ids) == 0 {
		return []Product{}, nil
	}

	rows, err := r.db.Query(listProductsByIDsQuery, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Product, 0, len(ids))
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Categories() ([]string, error) {
	rows, err := r.db.Query(listCategoriesQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Create(p Product) (Product, error) {
	err := r.db.QueryRow(insertProductQuery,
		p.Name, p.Description, p.Category, p.Brand, p.Price, p.Stock,
		p.Pic, p.PicSecond, pq.Array(p.Tags), p.Rating, p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID)
	if err != nil {
		return Product{}, err
	}
	return p, nil
}

func (r *PostgresRepository) Update(id int, p Product) (Product, error) {
	res, err := r.db.Exec(updateProductQuery,
		p.Name, p.Description, p.Category, p.Brand, p.Price, p.Stock,
		p.Pic, p.PicSecond, pq.Array(p.Tags), p.Rating, p.UpdatedAt, id)
	if err != nil {
		return Product{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return Product{}, ErrNotFound
	}
	p.ID = id
	return p, nil
}

func (r *PostgresRepository) Delete(id int) error {
	res, err := r.db.Exec(deleteProductQuery, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) DecrementStock(id int, qty int) error {
	res, err := r.db.Exec(decrementStockQuery, qty, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// distinguish a missing product from a failed floor check
		var stock int
		if err := r.db.QueryRow(getStockQuery, id).Scan(&stock); err == sql.ErrNoRows {
			return ErrNotFound
		} else if err != nil {
			return err
		}
		return ErrInsufficientStock
	}
	return nil
}

func (r *PostgresRepository) RestoreStock(id int, qty int) error {
	res, err := r.db.Exec(restoreStockQuery, qty, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
