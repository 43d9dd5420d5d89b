package user

import (
	"context"
	"database/sql"
	"errors"
)

type PostgresRepository struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

const (
	userColumns         = `id, email, password, name, phone, role, driver_id`
	listUsersQuery      = `SELECT ` + userColumns + ` FROM users ORDER BY id`
	getUserByIDQuery    = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	getUserByEmailQuery = `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`
	insertUserQuery     = `
		INSERT INTO users (email, password, name, phone, role, driver_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	seedUserQuery = `
		INSERT INTO users (id, email, password, name, phone, role, driver_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING
	`
	syncUserSeqQuery = `SELECT setval(pg_get_serial_sequence('users', 'id'), GREATEST((SELECT MAX(id) FROM users), 1))`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanUser(scanner rowScanner) (User, error) {
	var (
		u        User
		phone    sql.NullString
		driverID sql.NullInt64
	)
	if err := scanner.Scan(&u.ID, &u.Email, &u.Password, &u.Name, &phone, &u.Role, &driverID); err != nil {
		return User{}, err
	}
	u.Phone = phone.String
	if driverID.Valid {
		id := int(driverID.Int64)
		u.DriverID = &id
	}
	return u, nil
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func (r *PostgresRepository) List(ctx context.Context) ([]User, error) {
	rows, err := r.db.QueryContext(ctx, listUsersQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int) (User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, getUserByIDQuery, id))
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return u, err
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, getUserByEmailQuery, email))
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return u, err
}

func (r *PostgresRepository) Create(ctx context.Context, user User) (User, error) {
	if _, err := r.GetByEmail(ctx, user.Email); err == nil {
		return User{}, ErrEmailExists
	} else if !errors.Is(err, ErrNotFound) {
		return User{}, err
	}

	err := r.db.QueryRowContext(ctx, insertUserQuery,
		user.Email, user.Password, user.Name, user.Phone, string(user.Role), nullableInt(user.DriverID),
	).Scan(&user.ID)
	if err != nil {
		return User{}, err
	}
	return user, nil
}

func (r *PostgresRepository) Seed(ctx context.Context, users []User) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, u := range users {
		if _, err := tx.ExecContext(ctx, seedUserQuery,
			u.ID, u.Email, u.Password, u.Name, u.Phone, string(u.Role), nullableInt(u.DriverID),
		); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx, syncUserSeqQuery); err != nil {
		return err
	}
	return tx.Commit()
}
