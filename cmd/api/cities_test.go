package main

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"dokan/internal/domain/catalog"
)

func TestListCities(t *testing.T) {
	stub := newCatalogStub()
	for _, name := range []string{"Kathmandu", "Pokhara", "Lalitpur"} {
		id := stub.id()
		stub.cities[id] = &catalog.City{ID: id, Name: name}
	}
	now := time.Now()
	gone := stub.id()
	stub.cities[gone] = &catalog.City{ID: gone, Name: "Ghost Town", DeletedAt: &now}
	_, h := newTestApp(t, stub)

	w := doRequest(t, h, http.MethodGet, "/v1/cities?limit=10", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", w.Code)
	}

	var resp struct {
		Data struct {
			Cities     []catalog.City `json:"cities"`
			Pagination struct {
				Total int `json:"total"`
			} `json:"pagination"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Data.Cities) != 3 || resp.Data.Pagination.Total != 3 {
		t.Errorf("cities = %d total = %d; want 3/3", len(resp.Data.Cities), resp.Data.Pagination.Total)
	}
}

func TestGetCity(t *testing.T) {
	stub := newCatalogStub()
	id := stub.id()
	stub.cities[id] = &catalog.City{ID: id, Name: "Kathmandu"}
	_, h := newTestApp(t, stub)

	w := doRequest(t, h, http.MethodGet, "/v1/cities/1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", w.Code)
	}

	w = doRequest(t, h, http.MethodGet, "/v1/cities/99", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d; want 404", w.Code)
	}
}
