package user

import "database/sql"

type PostgresRepository struct {
	db *sql.DB
}

const (
	userColumns = `user_id, email, password, first_name, last_name, phone, role, blocked, coalesce(created_at, ''), coalesce(updated_at, '')`

	listUsersQuery    = `SELECT ` + userColumns + ` FROM users ORDER BY user_id`
	getUserByIDQuery  = `SELECT ` + userColumns + ` FROM users WHERE user_id = $1`
	getUserByEmailQuery = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	insertUserQuery   = `
		INSERT INTO users (email, password, first_name, last_name, phone, role, blocked, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING user_id
	`
	updateUserQuery = `
		UPDATE users
		SET email = $1,
			first_name = $2,
			last_name = $3,
			phone = $4,
			password = CASE WHEN $5 <> '' THEN $5 ELSE password END,
			updated_at = $6
		WHERE user_id = $7
		RETURNING ` + userColumns + `
	`
	setBlockedQuery = `
		UPDATE users
		SET blocked = $1, updated_at = $2
		WHERE user_id = $3
		RETURNING ` + userColumns + `
	`
	deleteUserQuery = `DELETE FROM users WHERE user_id = $1`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Password, &u.FirstName, &u.LastName, &u.Phone, &u.Role, &u.Blocked, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	return u, nil
}

func (r *PostgresRepository) List() []User {
	rows, err := r.db.Query(listUsersQuery)
	if err != nil {
		return []User{}
	}
	defer rows.Close()

	out := make([]User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			continue
		}
		out = append(out, u)
	}
	return out
}

func (r *PostgresRepository) GetByID(id int) (User, error) {
	return scanUser(r.db.QueryRow(getUserByIDQuery, id))
}

func (r *PostgresRepository) GetByEmail(email string) (User, error) {
	return scanUser(r.db.QueryRow(getUserByEmailQuery, email))
}

func (r *PostgresRepository) Create(u User) (User, error) {
	if u.Role == "" {
		u.Role = RoleUser
	}
	err := r.db.QueryRow(insertUserQuery,
		u.Email, u.Password, u.FirstName, u.LastName, u.Phone, u.Role, u.Blocked, u.CreatedAt, u.UpdatedAt,
	).Scan(&u.ID)
	if err != nil {
		return User{}, err
	}
	return u, nil
}

func (r *PostgresRepository) Update(id int, u User) (User, error) {
	return scanUser(r.db.QueryRow(updateUserQuery,
		u.Email, u.FirstName, u.LastName, u.Phone, u.Password, u.UpdatedAt, id))
}

func (r *PostgresRepository) SetBlocked(id int, blocked bool, updatedAt string) (User, error) {
	return scanUser(r.db.QueryRow(setBlockedQuery, blocked, updatedAt, id))
}

func (r *PostgresRepository) Delete(id int) error {
	res, err := r.db.Exec(deleteUserQuery, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
