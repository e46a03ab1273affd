package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"dokan/internal/domain/catalog"
	"dokan/internal/params"

	"github.com/go-chi/chi/v5"
)

type brandPayload struct {
	Name        string `json:"name" validate:"required"`
	DisplayName string `json:"display_name" validate:"required"`
}

func (app *application) listBrandsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	pagination := params.ParsePagination(r.URL.Query(), app.config.pageSize)

	brands, total, err := app.store.Catalog.ListBrands(ctx, pagination.Limit, pagination.Offset)
	if err != nil {
		app.internalServerError(w, r, fmt.Errorf("list brands: %w", err))
		return
	}
	pagination.ComputeMeta(total)

	app.jsonResponse(w, http.StatusOK, map[string]any{
		"brands":     brands,
		"pagination": pagination,
	})
}

func (app *application) createBrandHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var in brandPayload
	if err := readJSON(w, r, &in); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(in); err != nil {
		app.failedValidationResponse(w, r, validationMessages(err))
		return
	}

	taken, err := app.store.Catalog.BrandDisplayNameTaken(ctx, in.DisplayName, 0)
	if err != nil {
		app.internalServerError(w, r, fmt.Errorf("check display_name: %w", err))
		return
	}
	if taken {
		app.conflictResponse(w, r, fmt.Errorf("brand with display_name '%s' already exists", in.DisplayName))
		return
	}

	var created *catalog.Brand
	err = app.store.Catalog.WithTx(ctx, func(tx catalog.Store) error {
		var txErr error
		created, txErr = tx.CreateBrand(ctx, &catalog.Brand{
			Name:        in.Name,
			DisplayName: in.DisplayName,
		})
		return txErr
	})
	if err != nil {
		// The pre-check races with concurrent writers; the unique index is
		// the real guarantee.
		if errors.Is(err, catalog.ErrDuplicateDisplayName) {
			app.conflictResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, fmt.Errorf("create brand: %w", err))
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/v1/brands/%d", created.ID))
	app.jsonResponse(w, http.StatusCreated, created)
}

func (app *application) getBrandHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	id, err := parseID(chi.URLParam(r, "brandID"))
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid brand ID"))
		return
	}

	brand, err := app.store.Catalog.GetBrandByID(ctx, id)
	if err != nil {
		if errors.Is(err, catalog.ErrBrandNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, brand)
}

func (app *application) updateBrandHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	id, err := parseID(chi.URLParam(r, "brandID"))
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid brand ID"))
		return
	}

	var in brandPayload
	if err := readJSON(w, r, &in); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(in); err != nil {
		app.failedValidationResponse(w, r, validationMessages(err))
		return
	}

	// Ignore-self: keeping the same display_name is not a conflict.
	taken, err := app.store.Catalog.BrandDisplayNameTaken(ctx, in.DisplayName, id)
	if err != nil {
		app.internalServerError(w, r, fmt.Errorf("check display_name: %w", err))
		return
	}
	if taken {
		app.conflictResponse(w, r, fmt.Errorf("brand with display_name '%s' already exists", in.DisplayName))
		return
	}

	var updated *catalog.Brand
	err = app.store.Catalog.WithTx(ctx, func(tx catalog.Store) error {
		var txErr error
		updated, txErr = tx.UpdateBrand(ctx, &catalog.Brand{
			ID:          id,
			Name:        in.Name,
			DisplayName: in.DisplayName,
		})
		return txErr
	})
	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrBrandNotFound):
			app.notFoundResponse(w, r, err)
		case errors.Is(err, catalog.ErrDuplicateDisplayName):
			app.conflictResponse(w, r, err)
		default:
			app.internalServerError(w, r, fmt.Errorf("update brand: %w", err))
		}
		return
	}

	app.jsonResponse(w, http.StatusOK, updated)
}

func (app *application) deleteBrandHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	id, err := parseID(chi.URLParam(r, "brandID"))
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid brand ID"))
		return
	}

	err = app.store.Catalog.WithTx(ctx, func(tx catalog.Store) error {
		return tx.DeleteBrand(ctx, id)
	})
	if err != nil {
		if errors.Is(err, catalog.ErrBrandNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid ID: %s", s)
	}
	return id, nil
}
