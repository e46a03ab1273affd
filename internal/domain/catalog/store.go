package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrBrandNotFound        = errors.New("brand not found")
	ErrCategoryNotFound     = errors.New("category not found")
	ErrCityNotFound         = errors.New("city not found")
	ErrProductNotFound      = errors.New("product not found")
	ErrDuplicateDisplayName = errors.New("brand with this display_name already exists")
	ErrInvalidParent        = errors.New("invalid parent category")
)

// DB is the subset of pgxpool.Pool / pgx.Tx the repository needs, so the same
// query methods run inside and outside a transaction.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Store is the data access abstraction for the catalog domain.
// Implemented by Repository.
type Store interface {
	// WithTx runs fn against a transaction-scoped Store; either every
	// mutation inside fn commits or none become visible.
	WithTx(ctx context.Context, fn func(Store) error) error

	// Brands
	CreateBrand(ctx context.Context, b *Brand) (*Brand, error)
	GetBrandByID(ctx context.Context, id int64) (*Brand, error)
	ListBrands(ctx context.Context, limit, offset int) ([]*Brand, int, error)
	UpdateBrand(ctx context.Context, b *Brand) (*Brand, error)
	DeleteBrand(ctx context.Context, id int64) error
	BrandDisplayNameTaken(ctx context.Context, displayName string, excludeID int64) (bool, error)

	// Categories
	CreateCategory(ctx context.Context, c *Category) (*Category, error)
	GetCategoryByID(ctx context.Context, id int64) (*Category, error)
	ListCategories(ctx context.Context, limit, offset int) ([]*Category, int, error)
	UpdateCategory(ctx context.Context, c *Category) (*Category, error)
	SoftDeleteCategory(ctx context.Context, id int64) error
	GetCategoryTree(ctx context.Context) ([]*CategoryNode, error)
	ListProductsByCategory(ctx context.Context, categoryID int64) ([]*Product, error)

	// Cities
	GetCityByID(ctx context.Context, id int64) (*City, error)
	ListCities(ctx context.Context, limit, offset int) ([]*City, int, error)

	// Products
	CreateProduct(ctx context.Context, p *Product) (*Product, error)
	GetProductByID(ctx context.Context, id int64) (*Product, error)
	ListProducts(ctx context.Context, limit, offset int) ([]*Product, int, error)
	UpdateProduct(ctx context.Context, p *Product) (*Product, error)
	DeleteProduct(ctx context.Context, id int64) error

	// Product images
	ListProductImages(ctx context.Context, productID int64) ([]*ProductImage, error)
	ReplaceProductImages(ctx context.Context, productID int64, filenames []string) ([]*ProductImage, error)
	DeleteProductImages(ctx context.Context, productID int64) ([]string, error)
}

type Repository struct {
	db DB
}

func NewRepository(db DB) *Repository {
	return &Repository{db: db}
}

type txBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// WithTx begins a transaction on the underlying pool (or a savepoint when
// already inside one) and runs fn against a Store bound to it.
func (r *Repository) WithTx(ctx context.Context, fn func(Store) error) error {
	b, ok := r.db.(txBeginner)
	if !ok {
		return fn(r)
	}

	tx, err := b.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	// Safe even after commit.
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewRepository(tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// ------------------------------------
// Brands
// ------------------------------------

func (r *Repository) CreateBrand(ctx context.Context, b *Brand) (*Brand, error) {
	query := `
		INSERT INTO brands (name, display_name)
		VALUES ($1, $2)
		RETURNING id, name, display_name, created_at, updated_at;
	`
	row := r.db.QueryRow(ctx, query, b.Name, b.DisplayName)
	if err := row.Scan(&b.ID, &b.Name, &b.DisplayName, &b.CreatedAt, &b.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateDisplayName
		}
		return nil, fmt.Errorf("create brand: %w", err)
	}
	return b, nil
}

func (r *Repository) GetBrandByID(ctx context.Context, id int64) (*Brand, error) {
	query := `SELECT id, name, display_name, created_at, updated_at FROM brands WHERE id = $1;`
	b := &Brand{}
	if err := r.db.QueryRow(ctx, query, id).
		Scan(&b.ID, &b.Name, &b.DisplayName, &b.CreatedAt, &b.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBrandNotFound
		}
		return nil, fmt.Errorf("get brand: %w", err)
	}
	return b, nil
}

// ListBrands returns a page of brands and the true total. COUNT(*) OVER()
// covers pages with rows; paging past the end falls back to a separate count.
func (r *Repository) ListBrands(ctx context.Context, limit, offset int) ([]*Brand, int, error) {
	limit, offset = clampPage(limit, offset)

	const q = `
		SELECT id, name, display_name, created_at, updated_at,
		       COUNT(*) OVER() AS total_count
		FROM brands
		ORDER BY id ASC
		LIMIT $1 OFFSET $2;
	`
	rows, err := r.db.Query(ctx, q, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list brands: %w", err)
	}
	defer rows.Close()

	var (
		brands     []*Brand
		totalCount int
	)
	for rows.Next() {
		var b Brand
		if err := rows.Scan(&b.ID, &b.Name, &b.DisplayName, &b.CreatedAt, &b.UpdatedAt, &totalCount); err != nil {
			return nil, 0, fmt.Errorf("scan brand: %w", err)
		}
		brands = append(brands, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows iteration: %w", err)
	}

	if len(brands) == 0 && offset > 0 {
		if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM brands;`).Scan(&totalCount); err != nil {
			return nil, 0, fmt.Errorf("count brands: %w", err)
		}
	}
	return brands, totalCount, nil
}

func (r *Repository) UpdateBrand(ctx context.Context, b *Brand) (*Brand, error) {
	query := `
		UPDATE brands
		SET name = $1, display_name = $2, updated_at = now()
		WHERE id = $3
		RETURNING id, name, display_name, created_at, updated_at;
	`
	updated := &Brand{}
	err := r.db.QueryRow(ctx, query, b.Name, b.DisplayName, b.ID).
		Scan(&updated.ID, &updated.Name, &updated.DisplayName, &updated.CreatedAt, &updated.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBrandNotFound
		}
		if isUniqueViolation(err) {
			return nil, ErrDuplicateDisplayName
		}
		return nil, fmt.Errorf("update brand: %w", err)
	}
	return updated, nil
}

func (r *Repository) DeleteBrand(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM brands WHERE id = $1;`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return fmt.Errorf("brand has dependent records: %w", err)
		}
		return fmt.Errorf("delete brand: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrBrandNotFound
	}
	return nil
}

// BrandDisplayNameTaken is the pre-insert uniqueness check. excludeID skips
// the record being updated so a no-op update keeps its own display_name.
func (r *Repository) BrandDisplayNameTaken(ctx context.Context, displayName string, excludeID int64) (bool, error) {
	const query = `
		SELECT EXISTS(
			SELECT 1 FROM brands
			WHERE LOWER(display_name) = LOWER($1) AND id <> $2
		);
	`
	var taken bool
	if err := r.db.QueryRow(ctx, query, displayName, excludeID).Scan(&taken); err != nil {
		return false, fmt.Errorf("check display_name: %w", err)
	}
	return taken, nil
}

// ------------------------------------
// Categories (soft-deleted)
// ------------------------------------

func validateCategory(c *Category) error {
	if c == nil {
		return fmt.Errorf("category cannot be nil")
	}
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("category name cannot be empty")
	}
	if c.ParentID != nil && *c.ParentID == c.ID {
		return ErrInvalidParent
	}
	return nil
}

// parentExists checks a prospective parent against non-deleted rows. Parent
// resolution is always by parent_id here.
func (r *Repository) parentExists(ctx context.Context, parentID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM categories WHERE id = $1 AND deleted_at IS NULL)`,
		parentID).Scan(&exists)
	return exists, err
}

func (r *Repository) CreateCategory(ctx context.Context, c *Category) (*Category, error) {
	if err := validateCategory(c); err != nil {
		return nil, err
	}
	if c.ParentID != nil {
		ok, err := r.parentExists(ctx, *c.ParentID)
		if err != nil {
			return nil, fmt.Errorf("validate parent: %w", err)
		}
		if !ok {
			return nil, ErrInvalidParent
		}
	}

	query := `
		INSERT INTO categories (parent_id, name, description)
		VALUES ($1, $2, $3)
		RETURNING id, parent_id, name, description, created_at, updated_at;
	`
	created := &Category{}
	err := r.db.QueryRow(ctx, query, c.ParentID, c.Name, c.Description).
		Scan(&created.ID, &created.ParentID, &created.Name, &created.Description,
			&created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return created, nil
}

func (r *Repository) GetCategoryByID(ctx context.Context, id int64) (*Category, error) {
	query := `
		SELECT id, parent_id, name, description, created_at, updated_at
		FROM categories
		WHERE id = $1 AND deleted_at IS NULL;
	`
	c := &Category{}
	err := r.db.QueryRow(ctx, query, id).
		Scan(&c.ID, &c.ParentID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

func (r *Repository) ListCategories(ctx context.Context, limit, offset int) ([]*Category, int, error) {
	limit, offset = clampPage(limit, offset)

	query := `
		SELECT id, parent_id, name, description, created_at, updated_at,
		       COUNT(*) OVER() AS total_count
		FROM categories
		WHERE deleted_at IS NULL
		ORDER BY id
		LIMIT $1 OFFSET $2;
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var (
		list       []*Category
		totalCount int
	)
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.ParentID, &c.Name, &c.Description,
			&c.CreatedAt, &c.UpdatedAt, &totalCount); err != nil {
			return nil, 0, fmt.Errorf("scan category: %w", err)
		}
		list = append(list, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows iteration: %w", err)
	}

	if len(list) == 0 && offset > 0 {
		const countQ = `SELECT COUNT(*) FROM categories WHERE deleted_at IS NULL;`
		if err := r.db.QueryRow(ctx, countQ).Scan(&totalCount); err != nil {
			return nil, 0, fmt.Errorf("count categories: %w", err)
		}
	}
	return list, totalCount, nil
}

func (r *Repository) UpdateCategory(ctx context.Context, c *Category) (*Category, error) {
	if err := validateCategory(c); err != nil {
		return nil, err
	}
	if c.ParentID != nil {
		ok, err := r.parentExists(ctx, *c.ParentID)
		if err != nil {
			return nil, fmt.Errorf("validate parent: %w", err)
		}
		if !ok {
			return nil, ErrInvalidParent
		}
	}

	query := `
		UPDATE categories
		SET parent_id = $1, name = $2, description = $3, updated_at = now()
		WHERE id = $4 AND deleted_at IS NULL
		RETURNING id, parent_id, name, description, created_at, updated_at;
	`
	updated := &Category{}
	err := r.db.QueryRow(ctx, query, c.ParentID, c.Name, c.Description, c.ID).
		Scan(&updated.ID, &updated.ParentID, &updated.Name, &updated.Description,
			&updated.CreatedAt, &updated.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("update category: %w", err)
	}
	return updated, nil
}

// SoftDeleteCategory marks the row deleted; it stays in storage and can be
// restored out of band.
func (r *Repository) SoftDeleteCategory(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx,
		`UPDATE categories SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL;`, id)
	if err != nil {
		return fmt.Errorf("soft delete category: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

func (r *Repository) GetCategoryTree(ctx context.Context) ([]*CategoryNode, error) {
	query := `
		SELECT id, parent_id, name, description
		FROM categories
		WHERE deleted_at IS NULL
		ORDER BY id;
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get category tree: %w", err)
	}
	defer rows.Close()

	var flat []*CategoryNode
	for rows.Next() {
		var n CategoryNode
		if err := rows.Scan(&n.ID, &n.ParentID, &n.Name, &n.Description); err != nil {
			return nil, fmt.Errorf("scan category node: %w", err)
		}
		flat = append(flat, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return BuildCategoryTree(flat), nil
}

// BuildCategoryTree converts flat category rows into a hierarchy. Rows whose
// parent is absent (for example soft-deleted) surface as roots rather than
// disappearing.
func BuildCategoryTree(nodes []*CategoryNode) []*CategoryNode {
	byID := make(map[int64]*CategoryNode, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}

	var roots []*CategoryNode
	for _, n := range nodes {
		if n.ParentID == nil {
			roots = append(roots, n)
			continue
		}
		if parent, ok := byID[*n.ParentID]; ok && parent != n {
			parent.Children = append(parent.Children, n)
		} else {
			roots = append(roots, n)
		}
	}
	return roots
}

func (r *Repository) ListProductsByCategory(ctx context.Context, categoryID int64) ([]*Product, error) {
	query := `
		SELECT id, name, brand_id, category_id, primary_image, price, quantity,
		       delivery_amount, description, created_at, updated_at
		FROM products
		WHERE category_id = $1
		ORDER BY id;
	`
	rows, err := r.db.Query(ctx, query, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list products by category: %w", err)
	}
	defer rows.Close()

	var list []*Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return list, nil
}

// ------------------------------------
// Cities (read-only, soft-deleted)
// ------------------------------------

func (r *Repository) GetCityByID(ctx context.Context, id int64) (*City, error) {
	query := `
		SELECT id, name, created_at, updated_at
		FROM cities
		WHERE id = $1 AND deleted_at IS NULL;
	`
	c := &City{}
	if err := r.db.QueryRow(ctx, query, id).
		Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCityNotFound
		}
		return nil, fmt.Errorf("get city: %w", err)
	}
	return c, nil
}

func (r *Repository) ListCities(ctx context.Context, limit, offset int) ([]*City, int, error) {
	limit, offset = clampPage(limit, offset)

	query := `
		SELECT id, name, created_at, updated_at,
		       COUNT(*) OVER() AS total_count
		FROM cities
		WHERE deleted_at IS NULL
		ORDER BY id
		LIMIT $1 OFFSET $2;
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list cities: %w", err)
	}
	defer rows.Close()

	var (
		list       []*City
		totalCount int
	)
	for rows.Next() {
		var c City
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt, &totalCount); err != nil {
			return nil, 0, fmt.Errorf("scan city: %w", err)
		}
		list = append(list, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows iteration: %w", err)
	}

	if len(list) == 0 && offset > 0 {
		const countQ = `SELECT COUNT(*) FROM cities WHERE deleted_at IS NULL;`
		if err := r.db.QueryRow(ctx, countQ).Scan(&totalCount); err != nil {
			return nil, 0, fmt.Errorf("count cities: %w", err)
		}
	}
	return list, totalCount, nil
}

// ------------------------------------
// Products
// ------------------------------------

func validateProduct(p *Product) error {
	if p == nil {
		return fmt.Errorf("product cannot be nil")
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("product name cannot be empty")
	}
	if strings.TrimSpace(p.PrimaryImage) == "" {
		return fmt.Errorf("product primary_image cannot be empty")
	}
	return nil
}

func (r *Repository) brandExists(ctx context.Context, brandID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM brands WHERE id = $1)`, brandID).Scan(&exists)
	return exists, err
}

func (r *Repository) categoryExists(ctx context.Context, categoryID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM categories WHERE id = $1 AND deleted_at IS NULL)`,
		categoryID).Scan(&exists)
	return exists, err
}

func (r *Repository) CreateProduct(ctx context.Context, p *Product) (*Product, error) {
	if err := validateProduct(p); err != nil {
		return nil, err
	}

	if exists, err := r.brandExists(ctx, p.BrandID); err != nil {
		return nil, fmt.Errorf("validate brand: %w", err)
	} else if !exists {
		return nil, ErrBrandNotFound
	}
	if exists, err := r.categoryExists(ctx, p.CategoryID); err != nil {
		return nil, fmt.Errorf("validate category: %w", err)
	} else if !exists {
		return nil, ErrCategoryNotFound
	}

	query := `
		INSERT INTO products (name, brand_id, category_id, primary_image, price,
		                      quantity, delivery_amount, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, name, brand_id, category_id, primary_image, price, quantity,
		          delivery_amount, description, created_at, updated_at;
	`
	row := r.db.QueryRow(ctx, query,
		p.Name, p.BrandID, p.CategoryID, p.PrimaryImage,
		p.Price, p.Quantity, p.DeliveryAmount, p.Description)
	created, err := scanProduct(row)
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return created, nil
}

func (r *Repository) GetProductByID(ctx context.Context, id int64) (*Product, error) {
	query := `
		SELECT id, name, brand_id, category_id, primary_image, price, quantity,
		       delivery_amount, description, created_at, updated_at
		FROM products
		WHERE id = $1;
	`
	p, err := scanProduct(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (r *Repository) ListProducts(ctx context.Context, limit, offset int) ([]*Product, int, error) {
	limit, offset = clampPage(limit, offset)

	query := `
		SELECT id, name, brand_id, category_id, primary_image, price, quantity,
		       delivery_amount, description, created_at, updated_at,
		       COUNT(*) OVER() AS total_count
		FROM products
		ORDER BY id
		LIMIT $1 OFFSET $2;
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var (
		list       []*Product
		totalCount int
	)
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.BrandID, &p.CategoryID, &p.PrimaryImage,
			&p.Price, &p.Quantity, &p.DeliveryAmount, &p.Description,
			&p.CreatedAt, &p.UpdatedAt, &totalCount); err != nil {
			return nil, 0, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows iteration: %w", err)
	}

	if len(list) == 0 && offset > 0 {
		if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products;`).Scan(&totalCount); err != nil {
			return nil, 0, fmt.Errorf("count products: %w", err)
		}
	}
	return list, totalCount, nil
}

func (r *Repository) UpdateProduct(ctx context.Context, p *Product) (*Product, error) {
	if err := validateProduct(p); err != nil {
		return nil, err
	}

	if exists, err := r.brandExists(ctx, p.BrandID); err != nil {
		return nil, fmt.Errorf("validate brand: %w", err)
	} else if !exists {
		return nil, ErrBrandNotFound
	}
	if exists, err := r.categoryExists(ctx, p.CategoryID); err != nil {
		return nil, fmt.Errorf("validate category: %w", err)
	} else if !exists {
		return nil, ErrCategoryNotFound
	}

	query := `
		UPDATE products
		SET name = $1, brand_id = $2, category_id = $3, primary_image = $4,
		    price = $5, quantity = $6, delivery_amount = $7, description = $8,
		    updated_at = now()
		WHERE id = $9
		RETURNING id, name, brand_id, category_id, primary_image, price, quantity,
		          delivery_amount, description, created_at, updated_at;
	`
	row := r.db.QueryRow(ctx, query,
		p.Name, p.BrandID, p.CategoryID, p.PrimaryImage,
		p.Price, p.Quantity, p.DeliveryAmount, p.Description, p.ID)
	updated, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("update product: %w", err)
	}
	return updated, nil
}

func (r *Repository) DeleteProduct(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

func scanProduct(row pgx.Row) (*Product, error) {
	p := &Product{}
	err := row.Scan(&p.ID, &p.Name, &p.BrandID, &p.CategoryID, &p.PrimaryImage,
		&p.Price, &p.Quantity, &p.DeliveryAmount, &p.Description,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ------------------------------------
// Product images
// ------------------------------------

func (r *Repository) ListProductImages(ctx context.Context, productID int64) ([]*ProductImage, error) {
	query := `
		SELECT id, product_id, image, created_at
		FROM product_images
		WHERE product_id = $1
		ORDER BY id;
	`
	rows, err := r.db.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("list product images: %w", err)
	}
	defer rows.Close()

	var list []*ProductImage
	for rows.Next() {
		var img ProductImage
		if err := rows.Scan(&img.ID, &img.ProductID, &img.Image, &img.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan product image: %w", err)
		}
		list = append(list, &img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return list, nil
}

// ReplaceProductImages swaps the gallery wholesale: every existing row for
// the product is deleted and the new set inserted. Run it inside WithTx with
// the owning product mutation.
func (r *Repository) ReplaceProductImages(ctx context.Context, productID int64, filenames []string) ([]*ProductImage, error) {
	if _, err := r.db.Exec(ctx,
		`DELETE FROM product_images WHERE product_id = $1;`, productID); err != nil {
		return nil, fmt.Errorf("clear product images: %w", err)
	}

	query := `
		INSERT INTO product_images (product_id, image)
		VALUES ($1, $2)
		RETURNING id, product_id, image, created_at;
	`
	inserted := make([]*ProductImage, 0, len(filenames))
	for _, name := range filenames {
		var img ProductImage
		if err := r.db.QueryRow(ctx, query, productID, name).
			Scan(&img.ID, &img.ProductID, &img.Image, &img.CreatedAt); err != nil {
			return nil, fmt.Errorf("insert product image: %w", err)
		}
		inserted = append(inserted, &img)
	}
	return inserted, nil
}

// DeleteProductImages removes every gallery row for the product and returns
// the stored filenames so callers can clean up the files afterwards.
func (r *Repository) DeleteProductImages(ctx context.Context, productID int64) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`DELETE FROM product_images WHERE product_id = $1 RETURNING image;`, productID)
	if err != nil {
		return nil, fmt.Errorf("delete product images: %w", err)
	}
	defer rows.Close()

	var filenames []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan image filename: %w", err)
		}
		filenames = append(filenames, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return filenames, nil
}

func clampPage(limit, offset int) (int, int) {
	if limit < 1 || limit > 100 {
		limit = 30
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
