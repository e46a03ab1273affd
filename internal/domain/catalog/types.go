package catalog

import "time"

type Brand struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Category struct {
	ID          int64      `json:"id"`
	ParentID    *int64     `json:"parent_id"`
	Name        string     `json:"name"`
	Description *string    `json:"description,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"-"`
}

// CategoryNode is a category with its resolved children, for the tree view.
type CategoryNode struct {
	ID          int64           `json:"id"`
	ParentID    *int64          `json:"parent_id,omitempty"`
	Name        string          `json:"name"`
	Description *string         `json:"description,omitempty"`
	Children    []*CategoryNode `json:"children,omitempty"`
}

type City struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"-"`
}

// Product prices are integer minor currency units.
type Product struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	BrandID        int64     `json:"brand_id"`
	CategoryID     int64     `json:"category_id"`
	PrimaryImage   string    `json:"primary_image"` // stored filename, not a URL
	Price          int64     `json:"price"`
	Quantity       int       `json:"quantity"`
	DeliveryAmount *int64    `json:"delivery_amount"`
	Description    string    `json:"description"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type ProductImage struct {
	ID        int64     `json:"id"`
	ProductID int64     `json:"product_id"`
	Image     string    `json:"image"` // stored filename
	CreatedAt time.Time `json:"created_at"`
}
