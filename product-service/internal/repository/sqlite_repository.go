package repository

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/RajDalvi08/CamousKart/product-service/internal/domain"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// a single connection keeps ":memory:" databases shared and serializes writers
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) RunMigrations() error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("could not open migrations: %w", err)
	}

	driver, err := sqlite.WithInstance(r.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

func (r *SQLiteRepository) CreateProduct(ctx context.Context, p *domain.Product) error {
	images, err := json.Marshal(nonNil(p.Images))
	if err != nil {
		return fmt.Errorf("failed to encode images: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO products (id, title, category, category_key, description, price,
			item_condition, location, contact_info, images, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Title, p.Category, domain.CategoryKey(p.Category), p.Description, p.Price.String(),
		string(p.Condition), p.Location, p.ContactInfo, string(images), p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrDuplicateProduct
		}
		return fmt.Errorf("failed to insert product: %w", err)
	}
	return nil
}

const selectProducts = `
	SELECT id, title, category, description, price, item_condition, location,
		contact_info, images, created_at, updated_at
	FROM products`

func (r *SQLiteRepository) GetAllProducts(ctx context.Context) ([]*domain.Product, error) {
	return r.query(ctx, selectProducts+` ORDER BY created_at, rowid`)
}

func (r *SQLiteRepository) GetProductsByCategory(ctx context.Context, categoryKey string) ([]*domain.Product, error) {
	return r.query(ctx, selectProducts+` WHERE category_key = ? ORDER BY created_at, rowid`, categoryKey)
}

func (r *SQLiteRepository) DeleteCategory(ctx context.Context, categoryKey string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE category_key = ?`, categoryKey)
	if err != nil {
		return 0, fmt.Errorf("failed to delete category: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted products: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) query(ctx context.Context, query string, args ...any) ([]*domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := make([]*domain.Product, 0)
	for rows.Next() {
		var (
			p         domain.Product
			price     string
			condition string
			images    string
		)
		err := rows.Scan(
			&p.ID,
			&p.Title,
			&p.Category,
			&p.Description,
			&price,
			&condition,
			&p.Location,
			&p.ContactInfo,
			&images,
			&p.CreatedAt,
			&p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		if p.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("failed to parse price of product %s: %w", p.ID, err)
		}
		if err := json.Unmarshal([]byte(images), &p.Images); err != nil {
			return nil, fmt.Errorf("failed to decode images of product %s: %w", p.ID, err)
		}
		p.Condition = domain.Condition(condition)
		products = append(products, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return products, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
