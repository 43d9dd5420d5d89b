package address

import (
	"context"
	"database/sql"
	"errors"
)

// PostgresRepository stores addresses in a table with a foreign key to users.
type PostgresRepository struct {
	db *sql.DB
}

const (
	addressColumns     = `id, user_id, label, address, city, is_default`
	listAddressQuery   = `SELECT ` + addressColumns + ` FROM addresses WHERE user_id = $1 ORDER BY id`
	getAddressQuery    = `SELECT ` + addressColumns + ` FROM addresses WHERE user_id = $1 AND id = $2`
	clearDefaultQuery  = `UPDATE addresses SET is_default = FALSE WHERE user_id = $1`
	insertAddressQuery = `
		INSERT INTO addresses (user_id, label, address, city, is_default)
		VALUES ($1, $2, $3, $4,
			$5 OR NOT EXISTS (SELECT 1 FROM addresses WHERE user_id = $1))
		RETURNING id, is_default
	`
	updateAddressQuery = `
		UPDATE addresses
		SET label = $3, address = $4, city = $5, is_default = $6
		WHERE user_id = $1 AND id = $2
	`
	deleteAddressQuery = `DELETE FROM addresses WHERE user_id = $1 AND id = $2`
	seedAddressQuery   = `
		INSERT INTO addresses (id, user_id, label, address, city, is_default)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING
	`
	syncAddressSeqQuery = `SELECT setval(pg_get_serial_sequence('addresses', 'id'), GREATEST((SELECT MAX(id) FROM addresses), 1))`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAddress(s rowScanner) (Address, error) {
	var (
		a    Address
		city sql.NullString
	)
	if err := s.Scan(&a.ID, &a.UserID, &a.Label, &a.Address, &city, &a.IsDefault); err != nil {
		return Address{}, err
	}
	a.City = city.String
	return a, nil
}

func (r *PostgresRepository) List(ctx context.Context, userID int) ([]Address, error) {
	rows, err := r.db.QueryContext(ctx, listAddressQuery, userID)
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

func (r *PostgresRepository) Get(ctx context.Context, userID, addressID int) (Address, error) {
	a, err := scanAddress(r.db.QueryRowContext(ctx, getAddressQuery, userID, addressID))
	if errors.Is(err, sql.ErrNoRows) {
		return Address{}, ErrNotFound
	}
	return a, err
}

func (r *PostgresRepository) Add(ctx context.Context, a Address) (Address, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Address{}, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if a.IsDefault {
		if _, err := tx.ExecContext(ctx, clearDefaultQuery, a.UserID); err != nil {
			return Address{}, err
		}
	}
	if err := tx.QueryRowContext(ctx, insertAddressQuery, a.UserID, a.Label, a.Address, a.City, a.IsDefault).Scan(&a.ID, &a.IsDefault); err != nil {
		return Address{}, err
	}
	return a, tx.Commit()
}

func (r *PostgresRepository) Update(ctx context.Context, a Address) (Address, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Address{}, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if a.IsDefault {
		if _, err := tx.ExecContext(ctx, clearDefaultQuery, a.UserID); err != nil {
			return Address{}, err
		}
	}
	res, err := tx.ExecContext(ctx, updateAddressQuery, a.UserID, a.ID, a.Label, a.Address, a.City, a.IsDefault)
	if err != nil {
		return Address{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Address{}, ErrNotFound
	}
	return a, tx.Commit()
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, addressID int) error {
	res, err := r.db.ExecContext(ctx, deleteAddressQuery, userID, addressID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) Seed(ctx context.Context, addrs []Address) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, a := range addrs {
		if _, err := tx.ExecContext(ctx, seedAddressQuery, a.ID, a.UserID, a.Label, a.Address, a.City, a.IsDefault); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx, syncAddressSeqQuery); err != nil {
		return err
	}
	return tx.Commit()
}
