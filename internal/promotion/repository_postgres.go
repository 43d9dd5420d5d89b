package promotion

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	promotionColumns     = `id, title, code, kind, value, active, expiry_date`
	listPromotionsQuery  = `SELECT ` + promotionColumns + ` FROM promotions ORDER BY id`
	getPromotionQuery    = `SELECT ` + promotionColumns + ` FROM promotions WHERE id = $1`
	getByCodeQuery       = `SELECT ` + promotionColumns + ` FROM promotions WHERE code = $1`
	insertPromotionQuery = `
		INSERT INTO promotions (title, code, kind, value, active, expiry_date)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id
	`
	updatePromotionQuery = `
		UPDATE promotions
		SET title = $1, code = $2, kind = $3, value = $4, active = $5, expiry_date = $6
		WHERE id = $7
	`
	deletePromotionQuery = `DELETE FROM promotions WHERE id = $1`
	seedPromotionQuery   = `
		INSERT INTO promotions (id, title, code, kind, value, active, expiry_date)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (id) DO NOTHING
	`
	// keep the serial ahead of explicitly seeded ids
	syncPromotionSeqQuery = `SELECT setval(pg_get_serial_sequence('promotions', 'id'), GREATEST((SELECT MAX(id) FROM promotions), 1))`
)

const uniqueViolation = "23505"

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPromotion(s rowScanner) (Promotion, error) {
	var p Promotion
	err := s.Scan(&p.ID, &p.Title, &p.Code, &p.Kind, &p.Value, &p.Active, &p.ExpiryDate)
	return p, err
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == uniqueViolation
	}
	// pgx reports SQLSTATE through an interface rather than a concrete type
	var coded interface{ SQLState() string }
	return errors.As(err, &coded) && coded.SQLState() == uniqueViolation
}

func (r *PostgresRepository) List(ctx context.Context) ([]Promotion, error) {
	rows, err := r.db.QueryContext(ctx, listPromotionsQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Promotion, 0)
	for rows.Next() {
		p, err := scanPromotion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) get(ctx context.Context, q string, arg any) (Promotion, error) {
	p, err := scanPromotion(r.db.QueryRowContext(ctx, q, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return Promotion{}, ErrNotFound
	}
	return p, err
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int) (Promotion, error) {
	return r.get(ctx, getPromotionQuery, id)
}

func (r *PostgresRepository) GetByCode(ctx context.Context, code string) (Promotion, error) {
	return r.get(ctx, getByCodeQuery, code)
}

func (r *PostgresRepository) Create(ctx context.Context, p Promotion) (Promotion, error) {
	p.Code = NormalizeCode(p.Code)
	err := r.db.QueryRowContext(ctx, insertPromotionQuery, p.Title, p.Code, string(p.Kind), p.Value, p.Active, p.ExpiryDate).Scan(&p.ID)
	if isUniqueViolation(err) {
		return Promotion{}, ErrDuplicateCode
	}
	if err != nil {
		return Promotion{}, err
	}
	return p, nil
}

func (r *PostgresRepository) Update(ctx context.Context, p Promotion) (Promotion, error) {
	p.Code = NormalizeCode(p.Code)
	res, err := r.db.ExecContext(ctx, updatePromotionQuery, p.Title, p.Code, string(p.Kind), p.Value, p.Active, p.ExpiryDate, p.ID)
	if isUniqueViolation(err) {
		return Promotion{}, ErrDuplicateCode
	}
	if err != nil {
		return Promotion{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Promotion{}, ErrNotFound
	}
	return p, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, deletePromotionQuery, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) Seed(ctx context.Context, promos []Promotion) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, p := range promos {
		if _, err := tx.ExecContext(ctx, seedPromotionQuery, p.ID, p.Title, NormalizeCode(p.Code), string(p.Kind), p.Value, p.Active, p.ExpiryDate); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx, syncPromotionSeqQuery); err != nil {
		return err
	}
	return tx.Commit()
}
