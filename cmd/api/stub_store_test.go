package main

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"sort"
	"strings"
	"testing"
	"time"

	"dokan/internal/domain/catalog"
	"dokan/internal/domain/storage"
	"dokan/internal/ratelimiter"
	"dokan/internal/uploader"

	"go.uber.org/zap"
)

// catalogStub is an in-memory catalog.Store so handlers can be exercised
// without Postgres.
type catalogStub struct {
	brands     map[int64]*catalog.Brand
	categories map[int64]*catalog.Category
	cities     map[int64]*catalog.City
	products   map[int64]*catalog.Product
	images     map[int64][]*catalog.ProductImage
	nextID     int64

	createBrandCalls   int
	createProductCalls int
}

func newCatalogStub() *catalogStub {
	return &catalogStub{
		brands:     make(map[int64]*catalog.Brand),
		categories: make(map[int64]*catalog.Category),
		cities:     make(map[int64]*catalog.City),
		products:   make(map[int64]*catalog.Product),
		images:     make(map[int64][]*catalog.ProductImage),
	}
}

func (s *catalogStub) id() int64 {
	s.nextID++
	return s.nextID
}

func sortedKeys[M ~map[int64]V, V any](m M) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func pageBounds(n, limit, offset int) (int, int) {
	if offset > n {
		offset = n
	}
	end := offset + limit
	if end > n {
		end = n
	}
	return offset, end
}

func (s *catalogStub) WithTx(ctx context.Context, fn func(catalog.Store) error) error {
	return fn(s)
}

// Brands

func (s *catalogStub) CreateBrand(ctx context.Context, b *catalog.Brand) (*catalog.Brand, error) {
	s.createBrandCalls++
	taken, _ := s.BrandDisplayNameTaken(ctx, b.DisplayName, 0)
	if taken {
		return nil, catalog.ErrDuplicateDisplayName
	}
	created := *b
	created.ID = s.id()
	created.CreatedAt = time.Now()
	created.UpdatedAt = created.CreatedAt
	s.brands[created.ID] = &created
	return &created, nil
}

func (s *catalogStub) GetBrandByID(ctx context.Context, id int64) (*catalog.Brand, error) {
	b, ok := s.brands[id]
	if !ok {
		return nil, catalog.ErrBrandNotFound
	}
	return b, nil
}

func (s *catalogStub) ListBrands(ctx context.Context, limit, offset int) ([]*catalog.Brand, int, error) {
	keys := sortedKeys(s.brands)
	lo, hi := pageBounds(len(keys), limit, offset)
	out := make([]*catalog.Brand, 0, hi-lo)
	for _, k := range keys[lo:hi] {
		out = append(out, s.brands[k])
	}
	return out, len(keys), nil
}

func (s *catalogStub) UpdateBrand(ctx context.Context, b *catalog.Brand) (*catalog.Brand, error) {
	existing, ok := s.brands[b.ID]
	if !ok {
		return nil, catalog.ErrBrandNotFound
	}
	taken, _ := s.BrandDisplayNameTaken(ctx, b.DisplayName, b.ID)
	if taken {
		return nil, catalog.ErrDuplicateDisplayName
	}
	existing.Name = b.Name
	existing.DisplayName = b.DisplayName
	existing.UpdatedAt = time.Now()
	return existing, nil
}

func (s *catalogStub) DeleteBrand(ctx context.Context, id int64) error {
	if _, ok := s.brands[id]; !ok {
		return catalog.ErrBrandNotFound
	}
	delete(s.brands, id)
	return nil
}

func (s *catalogStub) BrandDisplayNameTaken(ctx context.Context, displayName string, excludeID int64) (bool, error) {
	for id, b := range s.brands {
		if id != excludeID && strings.EqualFold(b.DisplayName, displayName) {
			return true, nil
		}
	}
	return false, nil
}

// Categories

func (s *catalogStub) CreateCategory(ctx context.Context, c *catalog.Category) (*catalog.Category, error) {
	if c.ParentID != nil {
		parent, ok := s.categories[*c.ParentID]
		if !ok || parent.DeletedAt != nil {
			return nil, catalog.ErrInvalidParent
		}
	}
	created := *c
	created.ID = s.id()
	created.CreatedAt = time.Now()
	created.UpdatedAt = created.CreatedAt
	s.categories[created.ID] = &created
	return &created, nil
}

func (s *catalogStub) GetCategoryByID(ctx context.Context, id int64) (*catalog.Category, error) {
	c, ok := s.categories[id]
	if !ok || c.DeletedAt != nil {
		return nil, catalog.ErrCategoryNotFound
	}
	return c, nil
}

func (s *catalogStub) ListCategories(ctx context.Context, limit, offset int) ([]*catalog.Category, int, error) {
	var live []*catalog.Category
	for _, k := range sortedKeys(s.categories) {
		if s.categories[k].DeletedAt == nil {
			live = append(live, s.categories[k])
		}
	}
	lo, hi := pageBounds(len(live), limit, offset)
	return live[lo:hi], len(live), nil
}

func (s *catalogStub) UpdateCategory(ctx context.Context, c *catalog.Category) (*catalog.Category, error) {
	existing, ok := s.categories[c.ID]
	if !ok || existing.DeletedAt != nil {
		return nil, catalog.ErrCategoryNotFound
	}
	if c.ParentID != nil {
		if *c.ParentID == c.ID {
			return nil, catalog.ErrInvalidParent
		}
		parent, ok := s.categories[*c.ParentID]
		if !ok || parent.DeletedAt != nil {
			return nil, catalog.ErrInvalidParent
		}
	}
	existing.ParentID = c.ParentID
	existing.Name = c.Name
	existing.Description = c.Description
	existing.UpdatedAt = time.Now()
	return existing, nil
}

func (s *catalogStub) SoftDeleteCategory(ctx context.Context, id int64) error {
	c, ok := s.categories[id]
	if !ok || c.DeletedAt != nil {
		return catalog.ErrCategoryNotFound
	}
	now := time.Now()
	c.DeletedAt = &now
	return nil
}

func (s *catalogStub) GetCategoryTree(ctx context.Context) ([]*catalog.CategoryNode, error) {
	var flat []*catalog.CategoryNode
	for _, k := range sortedKeys(s.categories) {
		c := s.categories[k]
		if c.DeletedAt != nil {
			continue
		}
		flat = append(flat, &catalog.CategoryNode{
			ID:          c.ID,
			ParentID:    c.ParentID,
			Name:        c.Name,
			Description: c.Description,
		})
	}
	return catalog.BuildCategoryTree(flat), nil
}

func (s *catalogStub) ListProductsByCategory(ctx context.Context, categoryID int64) ([]*catalog.Product, error) {
	var out []*catalog.Product
	for _, k := range sortedKeys(s.products) {
		if s.products[k].CategoryID == categoryID {
			out = append(out, s.products[k])
		}
	}
	return out, nil
}

// Cities

func (s *catalogStub) GetCityByID(ctx context.Context, id int64) (*catalog.City, error) {
	c, ok := s.cities[id]
	if !ok || c.DeletedAt != nil {
		return nil, catalog.ErrCityNotFound
	}
	return c, nil
}

func (s *catalogStub) ListCities(ctx context.Context, limit, offset int) ([]*catalog.City, int, error) {
	var live []*catalog.City
	for _, k := range sortedKeys(s.cities) {
		if s.cities[k].DeletedAt == nil {
			live = append(live, s.cities[k])
		}
	}
	lo, hi := pageBounds(len(live), limit, offset)
	return live[lo:hi], len(live), nil
}

// Products

func (s *catalogStub) CreateProduct(ctx context.Context, p *catalog.Product) (*catalog.Product, error) {
	s.createProductCalls++
	if _, ok := s.brands[p.BrandID]; !ok {
		return nil, catalog.ErrBrandNotFound
	}
	if c, ok := s.categories[p.CategoryID]; !ok || c.DeletedAt != nil {
		return nil, catalog.ErrCategoryNotFound
	}
	created := *p
	created.ID = s.id()
	created.CreatedAt = time.Now()
	created.UpdatedAt = created.CreatedAt
	s.products[created.ID] = &created
	return &created, nil
}

func (s *catalogStub) GetProductByID(ctx context.Context, id int64) (*catalog.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, catalog.ErrProductNotFound
	}
	return p, nil
}

func (s *catalogStub) ListProducts(ctx context.Context, limit, offset int) ([]*catalog.Product, int, error) {
	keys := sortedKeys(s.products)
	lo, hi := pageBounds(len(keys), limit, offset)
	out := make([]*catalog.Product, 0, hi-lo)
	for _, k := range keys[lo:hi] {
		out = append(out, s.products[k])
	}
	return out, len(keys), nil
}

func (s *catalogStub) UpdateProduct(ctx context.Context, p *catalog.Product) (*catalog.Product, error) {
	existing, ok := s.products[p.ID]
	if !ok {
		return nil, catalog.ErrProductNotFound
	}
	if _, ok := s.brands[p.BrandID]; !ok {
		return nil, catalog.ErrBrandNotFound
	}
	if c, ok := s.categories[p.CategoryID]; !ok || c.DeletedAt != nil {
		return nil, catalog.ErrCategoryNotFound
	}
	updated := *p
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now()
	s.products[p.ID] = &updated
	return &updated, nil
}

func (s *catalogStub) DeleteProduct(ctx context.Context, id int64) error {
	if _, ok := s.products[id]; !ok {
		return catalog.ErrProductNotFound
	}
	delete(s.products, id)
	return nil
}

// Product images

func (s *catalogStub) ListProductImages(ctx context.Context, productID int64) ([]*catalog.ProductImage, error) {
	return s.images[productID], nil
}

func (s *catalogStub) ReplaceProductImages(ctx context.Context, productID int64, filenames []string) ([]*catalog.ProductImage, error) {
	out := make([]*catalog.ProductImage, 0, len(filenames))
	for _, name := range filenames {
		out = append(out, &catalog.ProductImage{
			ID:        s.id(),
			ProductID: productID,
			Image:     name,
			CreatedAt: time.Now(),
		})
	}
	s.images[productID] = out
	return out, nil
}

func (s *catalogStub) DeleteProductImages(ctx context.Context, productID int64) ([]string, error) {
	var names []string
	for _, img := range s.images[productID] {
		names = append(names, img.Image)
	}
	delete(s.images, productID)
	return names, nil
}

// newTestApp wires an application around the stub with a temp upload dir.
func newTestApp(t *testing.T, stub *catalogStub) (*application, http.Handler) {
	t.Helper()

	dir := t.TempDir()
	uploads, err := uploader.NewLocalStore(dir)
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}

	app := &application{
		config: config{
			addr:     ":0",
			env:      "test",
			pageSize: 2,
			uploads: uploadConfig{
				driver:  "local",
				dir:     dir,
				baseURL: "http://localhost:8080/uploads",
			},
			rateLimiter: ratelimiter.Config{Enabled: false},
		},
		store:   &storage.Container{Catalog: stub},
		uploads: uploads,
		logger:  zap.NewNop().Sugar(),
	}
	return app, app.mount()
}

// multipartBody builds a product form with the given text fields and files.
func multipartBody(t *testing.T, fields map[string]string, files map[string][]filePart) (io.Reader, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("WriteField(%s): %v", k, err)
		}
	}
	for field, parts := range files {
		for _, part := range parts {
			fw, err := w.CreateFormFile(field, part.name)
			if err != nil {
				t.Fatalf("CreateFormFile(%s): %v", field, err)
			}
			if _, err := fw.Write(part.content); err != nil {
				t.Fatalf("write file part: %v", err)
			}
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return &buf, w.FormDataContentType()
}

type filePart struct {
	name    string
	content []byte
}

// pngBytes is a valid-enough PNG header for content sniffing.
func pngBytes() []byte {
	return append([]byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}, make([]byte, 64)...)
}
