package category

import (
	"context"
	"database/sql"
	"errors"
)

// PostgresRepository implements Repository using Postgres.
type PostgresRepository struct {
	db *sql.DB
}

const (
	listCategoriesQuery = `SELECT id, name, icon FROM categories ORDER BY id LIMIT $1`
	getCategoryQuery    = `SELECT id, name, icon FROM categories WHERE id = $1`
	seedCategoryQuery   = `INSERT INTO categories (id, name, icon) VALUES ($1, $2, $3) ON CONFLICT (id) DO NOTHING`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// List returns category rows ordered by id. A non-positive limit returns all rows.
func (r *PostgresRepository) List(ctx context.Context, limit int) ([]Category, error) {
	var lim any
	if limit > 0 {
		lim = limit
	}
	rows, err := r.db.QueryContext(ctx, listCategoriesQuery, lim)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Category, 0)
	for rows.Next() {
		var (
			c    Category
			icon sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.Name, &icon); err != nil {
			return nil, err
		}
		c.Icon = icon.String
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int) (Category, error) {
	var (
		c    Category
		icon sql.NullString
	)
	err := r.db.QueryRowContext(ctx, getCategoryQuery, id).Scan(&c.ID, &c.Name, &icon)
	if errors.Is(err, sql.ErrNoRows) {
		return Category{}, ErrNotFound
	}
	if err != nil {
		return Category{}, err
	}
	c.Icon = icon.String
	return c, nil
}

// Seed inserts the given categories, leaving existing ids untouched.
func (r *PostgresRepository) Seed(ctx context.Context, categories []Category) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, c := range categories {
		if _, err := tx.ExecContext(ctx, seedCategoryQuery, c.ID, c.Name, c.Icon); err != nil {
			return err
		}
	}
	return tx.Commit()
}
