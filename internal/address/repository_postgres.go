package address

import "database/sql"

type PostgresRepository struct {
	db *sql.DB
}

const (
	addressColumns = `address_id, user_id, coalesce(recipient_name, ''), coalesce(phone, ''), coalesce(line1, ''), coalesce(city, ''), coalesce(postal_code, ''), coalesce(created_at, ''), coalesce(updated_at, '')`

	getAddressesQuery = `SELECT ` + addressColumns + ` FROM address WHERE user_id = $1 ORDER BY address_id`
	getAddressQuery   = `SELECT ` + addressColumns + ` FROM address WHERE user_id = $1 AND address_id = $2`
	findSameQuery     = `
		SELECT ` + addressColumns + `
		FROM address
		WHERE user_id = $1 AND recipient_name = $2 AND phone = $3 AND line1 = $4 AND city = $5 AND postal_code = $6
		LIMIT 1
	`
	insertAddressQuery = `
		INSERT INTO address (user_id, recipient_name, phone, line1, city, postal_code, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING address_id
	`
	updateAddressQuery = `
		UPDATE address
		SET recipient_name = $1, phone = $2, line1 = $3, city = $4, postal_code = $5, updated_at = $6
		WHERE user_id = $7 AND address_id = $8
	`
	deleteAddressQuery = `DELETE FROM address WHERE user_id = $1 AND address_id = $2`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAddress(row rowScanner) (Address, error) {
	var a Address
	err := row.Scan(&a.AddressID, &a.UserID, &a.RecipientName, &a.Phone, &a.Line, &a.City, &a.PostalCode, &a.CreatedAt, &a.UpdatedAt)
	if err == sql.ErrNoRows {
		return Address{}, ErrNotFound
	}
	if err != nil {
		return Address{}, err
	}
	return a, nil
}

func (r *PostgresRepository) GetAddresses(userID int) ([]Address, error) {
	rows, err := r.db.Query(getAddressesQuery, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Address, 0)
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) GetByID(userID int, addressID int) (Address, error) {
	return scanAddress(r.db.QueryRow(getAddressQuery, userID, addressID))
}

func (r *PostgresRepository) AddIfAbsent(addr Address) (Address, error) {
	existing, err := scanAddress(r.db.QueryRow(findSameQuery,
		addr.UserID, addr.RecipientName, addr.Phone, addr.Line, addr.City, addr.PostalCode))
	if err == nil {
		return existing, nil
	}
	if err != ErrNotFound {
		return Address{}, err
	}

	err = r.db.QueryRow(insertAddressQuery,
		addr.UserID, addr.RecipientName, addr.Phone, addr.Line, addr.City, addr.PostalCode,
		addr.CreatedAt, addr.UpdatedAt,
	).Scan(&addr.AddressID)
	if err != nil {
		return Address{}, err
	}
	return addr, nil
}

func (r *PostgresRepository) UpdateAddress(addr Address) (Address, error) {
	res, err := r.db.Exec(updateAddressQuery,
		addr.RecipientName, addr.Phone, addr.Line, addr.City, addr.PostalCode, addr.UpdatedAt,
		addr.UserID, addr.AddressID)
	if err != nil {
		return Address{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return Address{}, ErrNotFound
	}
	return addr, nil
}

func (r *PostgresRepository) DeleteAddress(userID int, addressID int) error {
	res, err := r.db.Exec(deleteAddressQuery, userID, addressID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
