package main

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"dokan/internal/domain/catalog"
)

func TestCreateCategoryWithParent(t *testing.T) {
	stub := newCatalogStub()
	root, _ := stub.CreateCategory(context.Background(), &catalog.Category{Name: "Electronics"})
	_, h := newTestApp(t, stub)

	w := doRequest(t, h, http.MethodPost, "/v1/categories",
		`{"name":"Phones","parent_id":1}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d; want 201, body: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Data categoryResource `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Data.ParentID == nil || *resp.Data.ParentID != root.ID {
		t.Errorf("parent_id = %v; want %d", resp.Data.ParentID, root.ID)
	}
}

func TestCreateCategoryUnknownParent(t *testing.T) {
	stub := newCatalogStub()
	_, h := newTestApp(t, stub)

	w := doRequest(t, h, http.MethodPost, "/v1/categories",
		`{"name":"Phones","parent_id":99}`)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d; want 422", w.Code)
	}

	var resp validationResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Errors["parent_id"]) == 0 {
		t.Errorf("expected parent_id error, got %v", resp.Errors)
	}
}

func TestSoftDeleteCategory(t *testing.T) {
	stub := newCatalogStub()
	c, _ := stub.CreateCategory(context.Background(), &catalog.Category{Name: "Clothing"})
	_, h := newTestApp(t, stub)

	w := doRequest(t, h, http.MethodDelete, "/v1/categories/1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", w.Code)
	}

	var resp struct {
		Data struct {
			Message string `json:"message"`
			Deleted struct {
				ID int64 `json:"id"`
			} `json:"deleted_category"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Data.Message == "" || resp.Data.Deleted.ID != c.ID {
		t.Errorf("response = %+v", resp.Data)
	}

	// The row still exists but is marked deleted.
	if stub.categories[c.ID] == nil || stub.categories[c.ID].DeletedAt == nil {
		t.Fatalf("category should be soft-deleted, not removed")
	}

	// Reads no longer see it.
	w = doRequest(t, h, http.MethodGet, "/v1/categories/1", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d; want 404", w.Code)
	}

	// Deleting twice is a 404.
	w = doRequest(t, h, http.MethodDelete, "/v1/categories/1", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("double delete status = %d; want 404", w.Code)
	}
}

func TestCategoryTreeEndpoint(t *testing.T) {
	stub := newCatalogStub()
	root, _ := stub.CreateCategory(context.Background(), &catalog.Category{Name: "Electronics"})
	stub.CreateCategory(context.Background(), &catalog.Category{Name: "Phones", ParentID: &root.ID})
	gone, _ := stub.CreateCategory(context.Background(), &catalog.Category{Name: "Discontinued"})
	stub.SoftDeleteCategory(context.Background(), gone.ID)
	_, h := newTestApp(t, stub)

	w := doRequest(t, h, http.MethodGet, "/v1/categories/tree", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", w.Code)
	}

	var resp struct {
		Data struct {
			Tree []*catalog.CategoryNode `json:"tree"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Data.Tree) != 1 {
		t.Fatalf("roots = %d; want 1 (soft-deleted excluded)", len(resp.Data.Tree))
	}
	if len(resp.Data.Tree[0].Children) != 1 || resp.Data.Tree[0].Children[0].Name != "Phones" {
		t.Errorf("unexpected tree: %+v", resp.Data.Tree[0])
	}
}

func TestCategoryProducts(t *testing.T) {
	stub := newCatalogStub()
	brand, _ := stub.CreateBrand(context.Background(), &catalog.Brand{Name: "Acme", DisplayName: "acme"})
	cat, _ := stub.CreateCategory(context.Background(), &catalog.Category{Name: "Phones"})
	stub.CreateProduct(context.Background(), &catalog.Product{
		Name: "Phone X", BrandID: brand.ID, CategoryID: cat.ID,
		PrimaryImage: "x.jpg", Price: 10000, Quantity: 5, Description: "a phone",
	})
	_, h := newTestApp(t, stub)

	w := doRequest(t, h, http.MethodGet, "/v1/categories/2/products", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", w.Code)
	}

	var resp struct {
		Data categoryResource `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Data.Products) != 1 || resp.Data.Products[0].Name != "Phone X" {
		t.Errorf("products = %+v", resp.Data.Products)
	}
	if resp.Data.Products[0].PrimaryImage != "http://localhost:8080/uploads/x.jpg" {
		t.Errorf("primary_image = %q", resp.Data.Products[0].PrimaryImage)
	}
}
