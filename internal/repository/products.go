package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mmeshcher/bakeshop-system/internal/ids"
	"github.com/mmeshcher/bakeshop-system/internal/model"
)

// ErrProductSlugExists возвращается при попытке создать товар с занятым слагом.
var ErrProductSlugExists = errors.New("product slug already exists")

// CreateProduct сохраняет новый товар каталога и возвращает его идентификатор.
func (r *PostgresRepository) CreateProduct(ctx context.Context, p model.Product) (string, error) {
	id := ids.New()
	_, err := r.pool.Exec(ctx,
		`INSERT INTO products (id, slug, name, description, price_cents, category, ingredients, in_stock)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		id, p.Slug, p.Name, p.Description, p.PriceCents, p.Category, p.Ingredients, p.InStock,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return "", fmt.Errorf("%w: %s", ErrProductSlugExists, p.Slug)
		}
		return "", fmt.Errorf("create product: %w", err)
	}
	return id, nil
}

// UpdateProductBySlug обновляет товар с указанным слагом.
func (r *PostgresRepository) UpdateProductBySlug(ctx context.Context, slug string, p model.Product) error {
	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE products SET name = $2, description = $3, price_cents = $4, category = $5, ingredients = $6, in_stock = $7
		 WHERE slug = $1`,
		slug, p.Name, p.Description, p.PriceCents, p.Category, p.Ingredients, p.InStock,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

// DeleteProductBySlug удаляет товар с указанным слагом. Позиции корзин,
// ссылающиеся на удалённый товар, вычищаются лениво при чтении корзины.
func (r *PostgresRepository) DeleteProductBySlug(ctx context.Context, slug string) error {
	cmdTag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE slug = $1`, slug)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

const productColumns = `SELECT id, slug, name, description, price_cents, category, ingredients, in_stock, created_at FROM products`

// GetProductBySlug возвращает товар по слагу.
func (r *PostgresRepository) GetProductBySlug(ctx context.Context, slug string) (*model.Product, error) {
	return scanProduct(r.pool.QueryRow(ctx, productColumns+` WHERE slug = $1`, slug))
}

func scanProduct(row pgx.Row) (*model.Product, error) {
	var p model.Product
	err := row.Scan(&p.ID, &p.Slug, &p.Name, &p.Description, &p.PriceCents, &p.Category, &p.Ingredients, &p.InStock, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

// ListProducts возвращает все товары каталога.
func (r *PostgresRepository) ListProducts(ctx context.Context) ([]model.Product, error) {
	rows, err := r.pool.Query(ctx, productColumns+` ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}
	defer rows.Close()

	var res []model.Product
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(&p.ID, &p.Slug, &p.Name, &p.Description, &p.PriceCents, &p.Category, &p.Ingredients, &p.InStock, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		res = append(res, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}

// ProductsByIDs возвращает товары с указанными идентификаторами.
// Отсутствующие идентификаторы просто не попадают в результат.
func (r *PostgresRepository) ProductsByIDs(ctx context.Context, productIDs []string) (map[string]model.Product, error) {
	res := make(map[string]model.Product, len(productIDs))
	if len(productIDs) == 0 {
		return res, nil
	}

	rows, err := r.pool.Query(ctx, productColumns+` WHERE id = ANY($1)`, productIDs)
	if err != nil {
		return nil, fmt.Errorf("select products by ids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p model.Product
		if err := rows.Scan(&p.ID, &p.Slug, &p.Name, &p.Description, &p.PriceCents, &p.Category, &p.Ingredients, &p.InStock, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		res[p.ID] = p
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}
