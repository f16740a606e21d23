package wishlist

import (
	"database/sql"

	"github.com/lib/pq"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	// array_append is guarded so re-adding an id is a no-op rather than a
	// duplicate; RETURNING gives back the final list either way
	addWishlistQuery = `
		UPDATE users
		SET wishlist = CASE
				WHEN $2 = ANY(coalesce(wishlist, ARRAY[]::integer[])) THEN wishlist
				ELSE array_append(coalesce(wishlist, ARRAY[]::integer[]), $2)
			END,
			updated_at = $3
		WHERE user_id = $1
		RETURNING wishlist
	`
	removeWishlistQuery = `
		UPDATE users
		SET wishlist = array_remove(coalesce(wishlist, ARRAY[]::integer[]), $2),
			updated_at = $3
		WHERE user_id = $1
		RETURNING wishlist
	`
	listWishlistQuery = `SELECT coalesce(wishlist, ARRAY[]::integer[]) FROM users WHERE user_id = $1`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Add(userID int, productID int, updatedAt string) ([]int, error) {
	return r.mutate(addWishlistQuery, userID, productID, updatedAt)
}

func (r *PostgresRepository) Remove(userID int, productID int, updatedAt string) ([]int, error) {
	return r.mutate(removeWishlistQuery, userID, productID, updatedAt)
}

func (r *PostgresRepository) mutate(query string, userID, productID int, updatedAt string) ([]int, error) {
	var arr pq.Int64Array
	err := r.db.QueryRow(query, userID, productID, updatedAt).Scan(&arr)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return toInts(arr), nil
}

func (r *PostgresRepository) List(userID int) ([]int, error) {
	var arr pq.Int64Array
	err := r.db.QueryRow(listWishlistQuery, userID).Scan(&arr)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return toInts(arr), nil
}

func toInts(arr pq.Int64Array) []int {
	out := make([]int, len(arr))
	for i, v := range arr {
		out[i] = int(v)
	}
	return out
}
