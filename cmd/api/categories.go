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

type categoryPayload struct {
	ParentID    *int64  `json:"parent_id"`
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description"`
}

func (app *application) listCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	pagination := params.ParsePagination(r.URL.Query(), app.config.pageSize)

	cats, total, err := app.store.Catalog.ListCategories(ctx, pagination.Limit, pagination.Offset)
	if err != nil {
		app.internalServerError(w, r, fmt.Errorf("list categories: %w", err))
		return
	}
	pagination.ComputeMeta(total)

	app.jsonResponse(w, http.StatusOK, map[string]any{
		"categories": cats,
		"pagination": pagination,
	})
}

func (app *application) createCategoryHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var in categoryPayload
	if err := readJSON(w, r, &in); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(in); err != nil {
		app.failedValidationResponse(w, r, validationMessages(err))
		return
	}

	var created *catalog.Category
	err := app.store.Catalog.WithTx(ctx, func(tx catalog.Store) error {
		var txErr error
		created, txErr = tx.CreateCategory(ctx, &catalog.Category{
			ParentID:    in.ParentID,
			Name:        in.Name,
			Description: in.Description,
		})
		return txErr
	})
	if err != nil {
		if errors.Is(err, catalog.ErrInvalidParent) {
			fe := fieldErrors{}
			fe.add("parent_id", "must reference an existing category")
			app.failedValidationResponse(w, r, fe)
			return
		}
		app.internalServerError(w, r, fmt.Errorf("create category: %w", err))
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/v1/categories/%d", created.ID))
	app.jsonResponse(w, http.StatusCreated, app.categoryResource(created, nil))
}

func (app *application) getCategoryHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	id, err := parseID(chi.URLParam(r, "categoryID"))
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid category ID"))
		return
	}

	category, err := app.store.Catalog.GetCategoryByID(ctx, id)
	if err != nil {
		if errors.Is(err, catalog.ErrCategoryNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, app.categoryResource(category, nil))
}

func (app *application) updateCategoryHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	id, err := parseID(chi.URLParam(r, "categoryID"))
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid category ID"))
		return
	}

	var in categoryPayload
	if err := readJSON(w, r, &in); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(in); err != nil {
		app.failedValidationResponse(w, r, validationMessages(err))
		return
	}

	var updated *catalog.Category
	err = app.store.Catalog.WithTx(ctx, func(tx catalog.Store) error {
		var txErr error
		updated, txErr = tx.UpdateCategory(ctx, &catalog.Category{
			ID:          id,
			ParentID:    in.ParentID,
			Name:        in.Name,
			Description: in.Description,
		})
		return txErr
	})
	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrCategoryNotFound):
			app.notFoundResponse(w, r, err)
		case errors.Is(err, catalog.ErrInvalidParent):
			fe := fieldErrors{}
			fe.add("parent_id", "must reference an existing category")
			app.failedValidationResponse(w, r, fe)
		default:
			app.internalServerError(w, r, fmt.Errorf("update category: %w", err))
		}
		return
	}

	app.jsonResponse(w, http.StatusOK, app.categoryResource(updated, nil))
}

func (app *application) deleteCategoryHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	id, err := parseID(chi.URLParam(r, "categoryID"))
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid category ID"))
		return
	}

	err = app.store.Catalog.WithTx(ctx, func(tx catalog.Store) error {
		return tx.SoftDeleteCategory(ctx, id)
	})
	if err != nil {
		if errors.Is(err, catalog.ErrCategoryNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	app.logger.Infow("category soft-deleted", "category_id", id)

	app.jsonResponse(w, http.StatusOK, map[string]any{
		"message": "Category deleted successfully",
		"deleted_category": map[string]any{
			"id": id,
		},
	})
}

// categoryProductsHandler returns the category with its products eagerly
// loaded.
func (app *application) categoryProductsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	id, err := parseID(chi.URLParam(r, "categoryID"))
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid category ID"))
		return
	}

	category, err := app.store.Catalog.GetCategoryByID(ctx, id)
	if err != nil {
		if errors.Is(err, catalog.ErrCategoryNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	products, err := app.store.Catalog.ListProductsByCategory(ctx, id)
	if err != nil {
		app.internalServerError(w, r, fmt.Errorf("load category products: %w", err))
		return
	}

	app.jsonResponse(w, http.StatusOK, app.categoryResource(category, products))
}

func (app *application) getCategoryTreeHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	tree, err := app.store.Catalog.GetCategoryTree(ctx)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, map[string]any{"tree": tree})
}
