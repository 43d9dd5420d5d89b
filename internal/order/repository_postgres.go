package order

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	orderColumns = `id, user_id, address_id, lines, subtotal, delivery_fee, discount, total,
		promo_code, status, driver_id, created_at, estimated_delivery_at, updated_at`

	insertOrderQuery = `
		INSERT INTO orders (user_id, address_id, lines, subtotal, delivery_fee, discount, total,
			promo_code, status, driver_id, created_at, estimated_delivery_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		RETURNING id
	`
	seedOrderQuery = `
		INSERT INTO orders (id, user_id, address_id, lines, subtotal, delivery_fee, discount, total,
			promo_code, status, driver_id, created_at, estimated_delivery_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		ON CONFLICT (id) DO NOTHING
	`
	getOrderQuery   = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	listOrdersQuery = `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE ($1 = '' OR status = $1)
		  AND ($2 = 0 OR user_id = $2)
		  AND ($3 = 0 OR driver_id = $3)
		  AND ($4 = '' OR CAST(id AS TEXT) = $4 OR EXISTS (
			SELECT 1 FROM jsonb_array_elements(lines) AS l
			WHERE l->>'name' ILIKE '%' || $4 || '%'
		  ))
		ORDER BY id DESC
	`
	// the status guard in WHERE makes the update a compare-and-swap
	updateStatusQuery = `
		UPDATE orders
		SET status = $1, driver_id = COALESCE($2, driver_id), updated_at = $3
		WHERE id = $4 AND status = $5
		RETURNING ` + orderColumns
	orderExistsQuery  = `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`
	syncOrderSeqQuery = `SELECT setval(pg_get_serial_sequence('orders', 'id'), GREATEST((SELECT MAX(id) FROM orders), 1))`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(s rowScanner) (Order, error) {
	var (
		o         Order
		linesJSON []byte
		addressID sql.NullInt64
		promo     sql.NullString
		driverID  sql.NullInt64
		status    string
	)
	err := s.Scan(&o.ID, &o.UserID, &addressID, &linesJSON, &o.Subtotal, &o.DeliveryFee, &o.Discount, &o.Total,
		&promo, &status, &driverID, &o.CreatedAt, &o.EstimatedDeliveryAt, &o.UpdatedAt)
	if err != nil {
		return Order{}, err
	}
	if err := json.Unmarshal(linesJSON, &o.Lines); err != nil {
		return Order{}, err
	}
	o.AddressID = int(addressID.Int64)
	o.PromoCode = promo.String
	o.Status = Status(status)
	if driverID.Valid {
		id := int(driverID.Int64)
		o.DriverID = &id
	}
	return o, nil
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullableID(v int) any {
	if v == 0 {
		return nil
	}
	return v
}

func (r *PostgresRepository) Create(ctx context.Context, o Order) (Order, error) {
	linesJSON, err := json.Marshal(o.Lines)
	if err != nil {
		return Order{}, err
	}

	err = r.db.QueryRowContext(ctx, insertOrderQuery,
		o.UserID, nullableID(o.AddressID), linesJSON, o.Subtotal, o.DeliveryFee, o.Discount, o.Total,
		o.PromoCode, string(o.Status), nullableInt(o.DriverID), o.CreatedAt, o.EstimatedDeliveryAt, o.UpdatedAt,
	).Scan(&o.ID)
	if err != nil {
		return Order{}, err
	}
	return o, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int) (Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, getOrderQuery, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Order{}, ErrNotFound
	}
	return o, err
}

func (r *PostgresRepository) List(ctx context.Context, f Filter) ([]Order, error) {
	rows, err := r.db.QueryContext(ctx, listOrdersQuery, string(f.Status), f.UserID, f.DriverID, strings.TrimSpace(f.Query))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, id int, from, to Status, driverID *int, at time.Time) (Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, updateStatusQuery, string(to), nullableInt(driverID), at, id, string(from)))
	if !errors.Is(err, sql.ErrNoRows) {
		return o, err
	}

	var exists bool
	if err := r.db.QueryRowContext(ctx, orderExistsQuery, id).Scan(&exists); err != nil {
		return Order{}, err
	}
	if !exists {
		return Order{}, ErrNotFound
	}
	return Order{}, ErrStatusConflict
}

func (r *PostgresRepository) Seed(ctx context.Context, orders []Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, o := range orders {
		linesJSON, err := json.Marshal(o.Lines)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, seedOrderQuery,
			o.ID, o.UserID, nullableID(o.AddressID), linesJSON, o.Subtotal, o.DeliveryFee, o.Discount, o.Total,
			o.PromoCode, string(o.Status), nullableInt(o.DriverID), o.CreatedAt, o.EstimatedDeliveryAt, o.UpdatedAt,
		); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx, syncOrderSeqQuery); err != nil {
		return err
	}
	return tx.Commit()
}
