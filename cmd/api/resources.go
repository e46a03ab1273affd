package main

import (
	"strings"
	"time"

	"dokan/internal/domain/catalog"
)

// Response shaping: entities are mapped to the external JSON contract here,
// with stored filenames resolved against the configured public base URL.

type imageResource struct {
	ID  int64  `json:"id"`
	URL string `json:"url"`
}

type productResource struct {
	ID             int64           `json:"id"`
	Name           string          `json:"name"`
	BrandID        int64           `json:"brand_id"`
	CategoryID     int64           `json:"category_id"`
	PrimaryImage   string          `json:"primary_image"` // fully qualified URL
	Price          int64           `json:"price"`
	Quantity       int             `json:"quantity"`
	DeliveryAmount *int64          `json:"delivery_amount"`
	Description    string          `json:"description"`
	Images         []imageResource `json:"images"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

type categoryResource struct {
	ID          int64             `json:"id"`
	ParentID    *int64            `json:"parent_id"`
	Name        string            `json:"name"`
	Description *string           `json:"description,omitempty"`
	Products    []productResource `json:"products,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// imageURL builds the public URL for a stored filename.
func (app *application) imageURL(filename string) string {
	if filename == "" {
		return ""
	}
	return strings.TrimRight(app.config.uploads.baseURL, "/") + "/" + filename
}

// productResource shapes a product with its loaded gallery. A nil gallery
// still serializes as an empty array.
func (app *application) productResource(p *catalog.Product, imgs []*catalog.ProductImage) productResource {
	res := productResource{
		ID:             p.ID,
		Name:           p.Name,
		BrandID:        p.BrandID,
		CategoryID:     p.CategoryID,
		PrimaryImage:   app.imageURL(p.PrimaryImage),
		Price:          p.Price,
		Quantity:       p.Quantity,
		DeliveryAmount: p.DeliveryAmount,
		Description:    p.Description,
		Images:         make([]imageResource, 0, len(imgs)),
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
	for _, img := range imgs {
		res.Images = append(res.Images, imageResource{ID: img.ID, URL: app.imageURL(img.Image)})
	}
	return res
}

// categoryResource shapes a category; products are included only when the
// caller eagerly loaded them.
func (app *application) categoryResource(c *catalog.Category, products []*catalog.Product) categoryResource {
	res := categoryResource{
		ID:          c.ID,
		ParentID:    c.ParentID,
		Name:        c.Name,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
	for _, p := range products {
		res.Products = append(res.Products, app.productResource(p, nil))
	}
	return res
}
