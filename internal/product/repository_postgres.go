package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	listProductsQuery = `
		SELECT id, name, price, category_id, image, stock
		FROM products
		WHERE ($1 = 0 OR category_id = $1)
		  AND ($2 = '' OR name ILIKE '%' || $2 || '%')
		ORDER BY id
	`
	getProductByIDQuery = `
		SELECT id, name, price, category_id, image, stock
		FROM products
		WHERE id = $1
	`
	listProductsByIDsQuery = `
		SELECT id, name, price, category_id, image, stock
		FROM products
		WHERE id = ANY($1)
		ORDER BY id
	`
	setStockQuery     = `UPDATE products SET stock = $1 WHERE id = $2`
	reserveStockQuery = `UPDATE products SET stock = stock - $1 WHERE id = $2 AND stock >= $1`
	releaseStockQuery = `UPDATE products SET stock = stock + $1 WHERE id = $2`
	seedProductQuery  = `
		INSERT INTO products (id, name, price, category_id, image, stock)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (id) DO NOTHING
	`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(s rowScanner) (Product, error) {
	var (
		p     Product
		image sql.NullString
	)
	if err := s.Scan(&p.ID, &p.Name, &p.Price, &p.CategoryID, &image, &p.Stock); err != nil {
		return Product{}, err
	}
	p.Image = image.String
	return p, nil
}

func (r *PostgresRepository) query(ctx context.Context, q string, args ...any) ([]Product, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
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

func (r *PostgresRepository) List(ctx context.Context, f Filter) ([]Product, error) {
	return r.query(ctx, listProductsQuery, f.CategoryID, f.Query)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int) (Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx, getProductByIDQuery, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	return p, err
}

func (r *PostgresRepository) ListByIDs(ctx context.Context, ids []int) ([]Product, error) {
	if len(ids) == 0 {
		return []Product{}, nil
	}
	return r.query(ctx, listProductsByIDsQuery, pq.Array(ids))
}

func (r *PostgresRepository) SetStock(ctx context.Context, id, stock int) error {
	if stock < 0 {
		return ErrInvalidStock
	}
	res, err := r.db.ExecContext(ctx, setStockQuery, stock, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Reserve runs every decrement in one transaction; the stock >= qty guard
// rejects the line that would go negative and the rollback undoes the rest.
func (r *PostgresRepository) Reserve(ctx context.Context, changes []StockChange) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, c := range changes {
		res, err := tx.ExecContext(ctx, reserveStockQuery, c.Quantity, c.ProductID)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("product %d: %w", c.ProductID, ErrInsufficientStock)
		}
	}
	return tx.Commit()
}

func (r *PostgresRepository) Release(ctx context.Context, changes []StockChange) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, c := range changes {
		if _, err := tx.ExecContext(ctx, releaseStockQuery, c.Quantity, c.ProductID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *PostgresRepository) Seed(ctx context.Context, products []Product) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, p := range products {
		if err := p.Validate(); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, seedProductQuery, p.ID, p.Name, p.Price, p.CategoryID, p.Image, p.Stock); err != nil {
			return err
		}
	}
	return tx.Commit()
}
