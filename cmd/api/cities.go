package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"dokan/internal/domain/catalog"
	"dokan/internal/params"

	"github.com/go-chi/chi/v5"
)

func (app *application) listCitiesHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	pagination := params.ParsePagination(r.URL.Query(), app.config.pageSize)

	cities, total, err := app.store.Catalog.ListCities(ctx, pagination.Limit, pagination.Offset)
	if err != nil {
		app.internalServerError(w, r, fmt.Errorf("list cities: %w", err))
		return
	}
	pagination.ComputeMeta(total)

	app.jsonResponse(w, http.StatusOK, map[string]any{
		"cities":     cities,
		"pagination": pagination,
	})
}

func (app *application) getCityHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	id, err := parseID(chi.URLParam(r, "cityID"))
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid city ID"))
		return
	}

	city, err := app.store.Catalog.GetCityByID(ctx, id)
	if err != nil {
		if errors.Is(err, catalog.ErrCityNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, city)
}
