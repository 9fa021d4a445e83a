package repository

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/ToslinRazafy/Cosm-tique-E-commerce/internal/domain"
	"github.com/lib/pq"
)

func (q *pgQueries) CreateCategory(ctx context.Context, c *domain.Category) error {
	err := q.db.QueryRowContext(ctx,
		`INSERT INTO categories (name, description) VALUES ($1, $2) RETURNING id`,
		c.Name, c.Description,
	).Scan(&c.ID)
	if err != nil {
		return mapWriteError(err, "insert category")
	}
	return nil
}

func (q *pgQueries) GetCategory(ctx context.Context, id int64) (*domain.Category, error) {
	var c domain.Category
	err := q.db.QueryRowContext(ctx, `SELECT id, name, description FROM categories WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.Description)
	if err != nil {
		return nil, notFound(err, "category", id)
	}
	return &c, nil
}

func (q *pgQueries) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT id, name, description FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var categories []*domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description); err != nil {
			return nil, fmt.Errorf("scan category row: %w", err)
		}
		categories = append(categories, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return categories, nil
}

func (q *pgQueries) UpdateCategory(ctx context.Context, c *domain.Category) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE categories SET name = $2, description = $3 WHERE id = $1`, c.ID, c.Name, c.Description)
	if err != nil {
		return mapWriteError(err, "update category")
	}
	return expectAffected(res, "category", c.ID)
}

func (q *pgQueries) DeleteCategory(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return expectAffected(res, "category", id)
}

const productColumns = `id, name, description, brand, ingredients, expiration_date, image_path,
	price, original_price, stock, low_stock_threshold, category_id, created_at, updated_at`

func scanProduct(row rowScanner) (*domain.Product, error) {
	var p domain.Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Brand, &p.Ingredients, &p.ExpirationDate, &p.ImagePath,
		&p.Price, &p.OriginalPrice, &p.Stock, &p.LowStockThreshold, &p.CategoryID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (q *pgQueries) CreateProduct(ctx context.Context, p *domain.Product) error {
	query := `INSERT INTO products (name, description, brand, ingredients, expiration_date, image_path,
	              price, original_price, stock, low_stock_threshold, category_id)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	          RETURNING id, created_at, updated_at`
	err := q.db.QueryRowContext(ctx, query,
		p.Name, p.Description, p.Brand, p.Ingredients, p.ExpirationDate, p.ImagePath,
		p.Price, p.OriginalPrice, p.Stock, p.LowStockThreshold, p.CategoryID,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return mapWriteError(err, "insert product")
	}
	return nil
}

func (q *pgQueries) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	p, err := scanProduct(q.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, "product", id)
	}
	return p, nil
}

func (q *pgQueries) LockProducts(ctx context.Context, ids ...int64) (map[int64]*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1) ORDER BY id FOR UPDATE`
	rows, err := q.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("lock products: %w", err)
	}
	defer rows.Close()

	locked := make(map[int64]*domain.Product, len(ids))
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		locked[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return locked, missingProduct(locked, ids)
}

func missingProduct(found map[int64]*domain.Product, ids []int64) error {
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	for _, id := range sorted {
		if _, ok := found[id]; !ok {
			return fmt.Errorf("product %d: %w", id, domain.ErrNotFound)
		}
	}
	return nil
}

func (q *pgQueries) ListProducts(ctx context.Context, categoryID *int64) ([]*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE ($1::BIGINT IS NULL OR category_id = $1) ORDER BY id`
	rows, err := q.db.QueryContext(ctx, query, categoryID)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []*domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return products, nil
}

func (q *pgQueries) UpdateProduct(ctx context.Context, p *domain.Product) error {
	query := `UPDATE products SET name = $2, description = $3, brand = $4, ingredients = $5, expiration_date = $6,
	              image_path = $7, price = $8, original_price = $9, stock = $10, low_stock_threshold = $11,
	              category_id = $12, updated_at = NOW()
	          WHERE id = $1
	          RETURNING updated_at`
	err := q.db.QueryRowContext(ctx, query, p.ID,
		p.Name, p.Description, p.Brand, p.Ingredients, p.ExpirationDate,
		p.ImagePath, p.Price, p.OriginalPrice, p.Stock, p.LowStockThreshold, p.CategoryID,
	).Scan(&p.UpdatedAt)
	if err != nil {
		return notFound(mapWriteError(err, "update product"), "product", p.ID)
	}
	return nil
}

func (q *pgQueries) DeleteProduct(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return expectAffected(res, "product", id)
}

// prefixed qualifies a comma separated column list with a table alias.
func prefixed(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, c := range parts {
		parts[i] = alias + "." + strings.TrimSpace(c)
	}
	return strings.Join(parts, ", ")
}
