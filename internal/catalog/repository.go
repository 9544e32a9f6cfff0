package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Deepanshu0211/MahadevEnterprises/internal/domain"
	"github.com/Deepanshu0211/MahadevEnterprises/internal/listing"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const productColumns = `id, name, description, price, discount_price, images, category_id,
	tags, colors, sizes, materials, in_stock, featured, rating, review_count, created_at`

const categoryColumns = `id, name, slug, description, image`

const reviewColumns = `id, product_id, user_id, user_name, rating, comment, created_at`

// FeaturedLimit caps the featured listing.
const FeaturedLimit = 8

type Credentials struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

func (c *Credentials) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.Host,
		c.Port,
		c.User,
		c.Password,
		c.DBName)
}

// Repository is the SQL-backed catalog. It works against SQLite and PostgreSQL.
type Repository struct {
	db     *sql.DB
	driver string
}

// NewRepository opens dsn with the given driver. For SQLite the DSN is a file
// path or ":memory:".
func NewRepository(driver, dsn string) (*Repository, error) {
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("unsupported catalog driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if driver == DriverSQLite {
		// one connection, so an in-memory database is shared by every query
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(100)
		db.SetMaxIdleConns(10)
	}

	return &Repository{db: db, driver: driver}, nil
}

// RunMigrations applies the migrations in migrationsPath/<driver>.
func (r *Repository) RunMigrations(migrationsPath string) error {
	var (
		driver database.Driver
		err    error
	)
	switch r.driver {
	case DriverPostgres:
		driver, err = migratepg.WithInstance(r.db, &migratepg.Config{})
	default:
		driver, err = migratesqlite.WithInstance(r.db, &migratesqlite.Config{})
	}
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s/%s", strings.TrimRight(migrationsPath, "/"), r.driver),
		r.driver,
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	p, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *Repository) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	return r.queryProducts(ctx, `SELECT `+productColumns+` FROM products ORDER BY seq`)
}

func (r *Repository) ListByCategory(ctx context.Context, categoryID string) ([]*domain.Product, error) {
	return r.queryProducts(ctx,
		`SELECT `+productColumns+` FROM products WHERE category_id = $1 ORDER BY seq`,
		categoryID)
}

func (r *Repository) ListFeatured(ctx context.Context) ([]*domain.Product, error) {
	return r.queryProducts(ctx,
		`SELECT `+productColumns+` FROM products WHERE featured = $1 ORDER BY seq LIMIT $2`,
		true, FeaturedLimit)
}

// Search matches in Go rather than SQL so tag matching stays exact per tag.
func (r *Repository) Search(ctx context.Context, query string) ([]*domain.Product, error) {
	all, err := r.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	return listing.Filter(all, listing.Criteria{Query: query}), nil
}

func (r *Repository) CreateProduct(ctx context.Context, p *domain.Product) error {
	cols, err := productArgs(p)
	if err != nil {
		return err
	}

	query := `INSERT INTO products (seq, ` + productColumns + `)
		VALUES ((SELECT COALESCE(MAX(seq), 0) + 1 FROM products),
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	if _, err := r.db.ExecContext(ctx, query, cols...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: product %s already exists", domain.ErrValidation, p.ID)
		}
		return fmt.Errorf("failed to insert product: %w", err)
	}
	return nil
}

func (r *Repository) UpdateProduct(ctx context.Context, p *domain.Product) error {
	cols, err := productArgs(p)
	if err != nil {
		return err
	}

	query := `UPDATE products SET
			name = $2, description = $3, price = $4, discount_price = $5, images = $6,
			category_id = $7, tags = $8, colors = $9, sizes = $10, materials = $11,
			in_stock = $12, featured = $13, rating = $14, review_count = $15, created_at = $16
		WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, cols...)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	return expectOneRow(res, "product", p.ID)
}

// DeleteProduct removes the product together with its reviews.
func (r *Repository) DeleteProduct(ctx context.Context, id string) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM reviews WHERE product_id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete reviews: %w", err)
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete product: %w", err)
		}
		return expectOneRow(res, "product", id)
	})
}

func (r *Repository) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	return r.queryCategory(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)
}

func (r *Repository) GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	return r.queryCategory(ctx, `SELECT `+categoryColumns+` FROM categories WHERE slug = $1`, slug)
}

func (r *Repository) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	categories := make([]*domain.Category, 0)
	for rows.Next() {
		c := &domain.Category{}
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.Image); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return categories, nil
}

func (r *Repository) CreateCategory(ctx context.Context, c *domain.Category) error {
	query := `INSERT INTO categories (seq, ` + categoryColumns + `)
		VALUES ((SELECT COALESCE(MAX(seq), 0) + 1 FROM categories), $1, $2, $3, $4, $5)`

	if _, err := r.db.ExecContext(ctx, query, c.ID, c.Name, c.Slug, c.Description, c.Image); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: category %s or slug %q already exists", domain.ErrValidation, c.ID, c.Slug)
		}
		return fmt.Errorf("failed to insert category: %w", err)
	}
	return nil
}

func (r *Repository) UpdateCategory(ctx context.Context, c *domain.Category) error {
	query := `UPDATE categories SET name = $2, slug = $3, description = $4, image = $5 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, c.ID, c.Name, c.Slug, c.Description, c.Image)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: slug %q is already used", domain.ErrValidation, c.Slug)
		}
		return fmt.Errorf("failed to update category: %w", err)
	}
	return expectOneRow(res, "category", c.ID)
}

func (r *Repository) DeleteCategory(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return expectOneRow(res, "category", id)
}

// ListReviews returns the product's reviews, oldest first.
func (r *Repository) ListReviews(ctx context.Context, productID string) ([]*domain.Review, error) {
	if err := requireProduct(ctx, r.db, productID); err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+reviewColumns+` FROM reviews WHERE product_id = $1 ORDER BY created_at, id`,
		productID)
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}
	defer rows.Close()

	reviews := make([]*domain.Review, 0)
	for rows.Next() {
		rv := &domain.Review{}
		if err := rows.Scan(&rv.ID, &rv.ProductID, &rv.UserID, &rv.UserName, &rv.Rating, &rv.Comment, &rv.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		rv.CreatedAt = rv.CreatedAt.UTC()
		reviews = append(reviews, rv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return reviews, nil
}

// AddReview stores rv and recomputes the product's rating and review count
// from all of its reviews. A second review by the same user is rejected.
func (r *Repository) AddReview(ctx context.Context, rv *domain.Review) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		if err := requireProduct(ctx, tx, rv.ProductID); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx,
			`INSERT INTO reviews (`+reviewColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			rv.ID, rv.ProductID, rv.UserID, rv.UserName, rv.Rating, rv.Comment, rv.CreatedAt.UTC())
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: product already reviewed", domain.ErrValidation)
		}
		if err != nil {
			return fmt.Errorf("failed to insert review: %w", err)
		}

		_, err = tx.ExecContext(ctx, `UPDATE products SET
				rating = (SELECT AVG(rating) FROM reviews WHERE product_id = $1),
				review_count = (SELECT COUNT(*) FROM reviews WHERE product_id = $1)
			WHERE id = $1`, rv.ProductID)
		if err != nil {
			return fmt.Errorf("failed to update product rating: %w", err)
		}
		return nil
	})
}

func (r *Repository) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func requireProduct(ctx context.Context, q queryRower, id string) error {
	var one int
	err := q.QueryRowContext(ctx, `SELECT 1 FROM products WHERE id = $1`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to query product: %w", err)
	}
	return nil
}

func (r *Repository) queryProducts(ctx context.Context, query string, args ...any) ([]*domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := make([]*domain.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return products, nil
}

func (r *Repository) queryCategory(ctx context.Context, query string, arg string) (*domain.Category, error) {
	c := &domain.Category{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.Image)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("category %s: %w", arg, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query category: %w", err)
	}
	return c, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	var (
		p                                      domain.Product
		discount                               sql.NullFloat64
		images, tags, colors, sizes, materials string
	)

	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Price,
		&discount,
		&images,
		&p.Category,
		&tags,
		&colors,
		&sizes,
		&materials,
		&p.InStock,
		&p.Featured,
		&p.Rating,
		&p.ReviewCount,
		&p.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan product: %w", err)
	}

	if discount.Valid {
		v := discount.Float64
		p.DiscountPrice = &v
	}

	lists := []struct {
		raw string
		dst *[]string
	}{
		{images, &p.Images},
		{tags, &p.Tags},
		{colors, &p.Colors},
		{sizes, &p.Sizes},
		{materials, &p.Materials},
	}
	for _, l := range lists {
		if err := json.Unmarshal([]byte(l.raw), l.dst); err != nil {
			return nil, fmt.Errorf("failed to decode product %s list column: %w", p.ID, err)
		}
	}

	p.CreatedAt = p.CreatedAt.UTC()
	return &p, nil
}

func productArgs(p *domain.Product) ([]any, error) {
	encoded := make([]string, 0, 5)
	for _, list := range [][]string{p.Images, p.Tags, p.Colors, p.Sizes, p.Materials} {
		if list == nil {
			list = []string{}
		}
		b, err := json.Marshal(list)
		if err != nil {
			return nil, fmt.Errorf("failed to encode product %s list column: %w", p.ID, err)
		}
		encoded = append(encoded, string(b))
	}

	var discount sql.NullFloat64
	if p.DiscountPrice != nil {
		discount = sql.NullFloat64{Float64: *p.DiscountPrice, Valid: true}
	}

	return []any{
		p.ID,
		p.Name,
		p.Description,
		p.Price,
		discount,
		encoded[0],
		p.Category,
		encoded[1],
		encoded[2],
		encoded[3],
		encoded[4],
		p.InStock,
		p.Featured,
		p.Rating,
		p.ReviewCount,
		p.CreatedAt.UTC(),
	}, nil
}

func expectOneRow(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, domain.ErrNotFound)
	}
	return nil
}

// isUniqueViolation reports whether err is a unique or primary key conflict
// from either driver.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		case sqlite3.SQLITE_CONSTRAINT:
			// primary code only when extended codes are off
			return strings.Contains(liteErr.Error(), "UNIQUE constraint failed")
		}
	}
	return false
}
