package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gaylashop/storefront/internal/catalog/app"
	"github.com/gaylashop/storefront/internal/catalog/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS products (
	id             TEXT PRIMARY KEY,
	slug           TEXT NOT NULL UNIQUE,
	name           TEXT NOT NULL,
	description    TEXT NOT NULL DEFAULT '',
	price          TEXT NOT NULL,
	thumbnail      TEXT,
	variant_groups TEXT NOT NULL DEFAULT '{}',
	created_at     TEXT NOT NULL,
	updated_at     TEXT NOT NULL
);`

const productColumns = `id, slug, name, description, price, thumbnail, variant_groups, created_at, updated_at`

type ProductRepo struct {
	db *sql.DB
}

func NewProductRepo(ctx context.Context, db *sql.DB) (*ProductRepo, error) {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("migrate products: %w", err)
	}
	return &ProductRepo{db: db}, nil
}

func (r *ProductRepo) Create(ctx context.Context, p domain.Product) (domain.Product, error) {
	groups := p.VariantGroups
	if groups == nil {
		groups = map[string][]string{}
	}
	encoded, err := json.Marshal(groups)
	if err != nil {
		return domain.Product{}, fmt.Errorf("encode variant groups: %w", err)
	}

	p.ID = uuid.NewString()
	p.VariantGroups = groups
	p.CreatedAt = time.Now().UTC()
	p.UpdatedAt = p.CreatedAt
	stamp := p.CreatedAt.Format(time.RFC3339Nano)

	_, err = r.db.ExecContext(ctx, `INSERT INTO products (`+productColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Slug, p.Name, p.Description, p.Price.String(), p.Thumbnail, string(encoded), stamp, stamp)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return domain.Product{}, fmt.Errorf("%w: slug %q already exists", app.ErrInvalidInput, p.Slug)
		}
		return domain.Product{}, err
	}
	return p, nil
}

func (r *ProductRepo) Get(ctx context.Context, id string) (domain.Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.Product{}, app.ErrNotFound
	}
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE id = ?`, id)
}

func (r *ProductRepo) GetBySlug(ctx context.Context, slug string) (domain.Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE slug = ?`, slug)
}

func (r *ProductRepo) getOne(ctx context.Context, query string, arg string) (domain.Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, app.ErrNotFound
	}
	return p, err
}

func (r *ProductRepo) List(ctx context.Context, query string, limit int, cursor string) ([]domain.Product, string, error) {
	cursor = strings.TrimSpace(cursor)
	if cursor != "" {
		if _, err := uuid.Parse(cursor); err != nil {
			return nil, "", app.ErrInvalidInput
		}
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT `+productColumns+` FROM products
WHERE (? = '' OR name LIKE '%' || ? || '%' OR slug LIKE '%' || ? || '%')
  AND (? = '' OR id > ?)
ORDER BY id
LIMIT ?`, strings.TrimSpace(query), strings.TrimSpace(query), strings.TrimSpace(query), cursor, cursor, limit)
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()

	out := make([]domain.Product, 0, limit)
	var nextCursor string

	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, "", err
		}
		out = append(out, p)
		nextCursor = p.ID
	}
	if err := rows.Err(); err != nil {
		return nil, "", err
	}

	if len(out) < limit {
		nextCursor = ""
	}

	return out, nextCursor, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(row scanner) (domain.Product, error) {
	var (
		p                    domain.Product
		price, groups        string
		thumbnail            sql.NullString
		createdAt, updatedAt string
	)
	if err := row.Scan(&p.ID, &p.Slug, &p.Name, &p.Description, &price, &thumbnail, &groups, &createdAt, &updatedAt); err != nil {
		return domain.Product{}, err
	}

	var err error
	if p.Price, err = decimal.NewFromString(price); err != nil {
		return domain.Product{}, fmt.Errorf("product %s: price: %w", p.ID, err)
	}
	if err := json.Unmarshal([]byte(groups), &p.VariantGroups); err != nil {
		return domain.Product{}, fmt.Errorf("product %s: variant groups: %w", p.ID, err)
	}
	if thumbnail.Valid {
		p.Thumbnail = &thumbnail.String
	}
	if p.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return domain.Product{}, fmt.Errorf("product %s: created_at: %w", p.ID, err)
	}
	if p.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return domain.Product{}, fmt.Errorf("product %s: updated_at: %w", p.ID, err)
	}
	return p, nil
}
