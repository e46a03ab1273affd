package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"dokan/internal/domain/catalog"
	"dokan/internal/params"
	"dokan/internal/uploader"

	"github.com/go-chi/chi/v5"
)

const maxProductFormBytes = 15 * 1024 * 1024 // 15MB

var allowedImageMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// helper: sniff first 512 bytes and reset reader
func sniffMIME(file multipart.File) (string, error) {
	buf := make([]byte, 512)
	n, err := file.Read(buf)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read: %w", err)
	}
	mime := http.DetectContentType(buf[:n])

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("seek reset: %w", err)
	}
	return mime, nil
}

// checkImageFile validates an upload's real content type, not the header.
func checkImageFile(fh *multipart.FileHeader) error {
	file, err := fh.Open()
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	mime, err := sniffMIME(file)
	if err != nil {
		return err
	}
	if !allowedImageMIME[mime] {
		return fmt.Errorf("invalid image type: %s", mime)
	}
	return nil
}

type productForm struct {
	Name           string `json:"name" validate:"required"`
	BrandID        int64  `json:"brand_id" validate:"required,gt=0"`
	CategoryID     int64  `json:"category_id" validate:"required,gt=0"`
	Price          int64  `json:"price" validate:"gte=0"`
	Quantity       int    `json:"quantity" validate:"gte=0"`
	DeliveryAmount *int64 `json:"delivery_amount"`
	Description    string `json:"description" validate:"required"`
}

// parseProductForm reads the multipart form values, accumulating every field
// problem so the client gets the complete set at once.
func parseProductForm(r *http.Request) (productForm, fieldErrors) {
	fe := fieldErrors{}
	var in productForm

	in.Name = strings.TrimSpace(r.FormValue("name"))
	in.Description = strings.TrimSpace(r.FormValue("description"))

	parseInt := func(field string) int64 {
		v := strings.TrimSpace(r.FormValue(field))
		if v == "" {
			return 0
		}
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			fe.add(field, "must be an integer")
			return 0
		}
		return n
	}

	in.BrandID = parseInt("brand_id")
	in.CategoryID = parseInt("category_id")
	in.Price = parseInt("price")
	in.Quantity = int(parseInt("quantity"))

	if v := strings.TrimSpace(r.FormValue("delivery_amount")); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			fe.add("delivery_amount", "must be an integer")
		} else {
			in.DeliveryAmount = &n
		}
	}

	if err := Validate.Struct(in); err != nil {
		for field, msgs := range validationMessages(err) {
			// Parse errors already explain the field.
			if _, seen := fe[field]; seen {
				continue
			}
			fe[field] = msgs
		}
	}
	return in, fe
}

// stageUpload stores the file under a fresh uuid name and returns that name.
func (app *application) stageUpload(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	file, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	filename := uploader.Filename(filepath.Ext(fh.Filename))
	if err := app.uploads.Save(ctx, filename, file); err != nil {
		return "", err
	}
	return filename, nil
}

// removeFilesAsync cleans up stored files best-effort, off the request path.
func (app *application) removeFilesAsync(filenames []string) {
	if len(filenames) == 0 {
		return
	}
	go func(names []string) {
		for _, name := range names {
			if name == "" {
				continue
			}
			if err := app.uploads.Remove(context.Background(), name); err != nil {
				app.logger.Errorw("image file cleanup failed", "file", name, "error", err)
			}
		}
	}(filenames)
}

func (app *application) listProductsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	pagination := params.ParsePagination(r.URL.Query(), app.config.pageSize)

	list, total, err := app.store.Catalog.ListProducts(ctx, pagination.Limit, pagination.Offset)
	if err != nil {
		app.internalServerError(w, r, fmt.Errorf("list products: %w", err))
		return
	}
	pagination.ComputeMeta(total)

	resources := make([]productResource, 0, len(list))
	for _, p := range list {
		imgs, err := app.store.Catalog.ListProductImages(ctx, p.ID)
		if err != nil {
			app.internalServerError(w, r, fmt.Errorf("load product images: %w", err))
			return
		}
		resources = append(resources, app.productResource(p, imgs))
	}

	app.jsonResponse(w, http.StatusOK, map[string]any{
		"products":   resources,
		"pagination": pagination,
	})
}

func (app *application) createProductHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	r.Body = http.MaxBytesReader(w, r.Body, maxProductFormBytes)
	if err := r.ParseMultipartForm(maxProductFormBytes); err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("failed to parse form: %w", err))
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	in, fe := parseProductForm(r)

	var primary *multipart.FileHeader
	if headers := r.MultipartForm.File["primary_image"]; len(headers) > 0 {
		primary = headers[0]
		if err := checkImageFile(primary); err != nil {
			fe.add("primary_image", "must be an image (jpeg, png or webp)")
		}
	} else {
		fe.add("primary_image", "this field is required")
	}

	gallery := r.MultipartForm.File["images"]
	for _, fh := range gallery {
		if err := checkImageFile(fh); err != nil {
			fe.add("images", "every file must be an image (jpeg, png or webp)")
			break
		}
	}

	// Nothing is written, to disk or database, on invalid input.
	if len(fe) > 0 {
		app.failedValidationResponse(w, r, fe)
		return
	}

	// Stage files before the row transaction; staged files are removed if it
	// fails.
	primaryName, err := app.stageUpload(ctx, primary)
	if err != nil {
		app.internalServerError(w, r, fmt.Errorf("store primary image: %w", err))
		return
	}
	staged := []string{primaryName}

	galleryNames := make([]string, 0, len(gallery))
	for _, fh := range gallery {
		name, err := app.stageUpload(ctx, fh)
		if err != nil {
			app.removeFilesAsync(staged)
			app.internalServerError(w, r, fmt.Errorf("store gallery image: %w", err))
			return
		}
		staged = append(staged, name)
		galleryNames = append(galleryNames, name)
	}

	var (
		created *catalog.Product
		imgs    []*catalog.ProductImage
	)
	err = app.store.Catalog.WithTx(ctx, func(tx catalog.Store) error {
		var txErr error
		created, txErr = tx.CreateProduct(ctx, &catalog.Product{
			Name:           in.Name,
			BrandID:        in.BrandID,
			CategoryID:     in.CategoryID,
			PrimaryImage:   primaryName,
			Price:          in.Price,
			Quantity:       in.Quantity,
			DeliveryAmount: in.DeliveryAmount,
			Description:    in.Description,
		})
		if txErr != nil {
			return txErr
		}
		if len(galleryNames) > 0 {
			imgs, txErr = tx.ReplaceProductImages(ctx, created.ID, galleryNames)
		}
		return txErr
	})
	if err != nil {
		app.removeFilesAsync(staged)
		switch {
		case errors.Is(err, catalog.ErrBrandNotFound):
			fe := fieldErrors{}
			fe.add("brand_id", "must reference an existing brand")
			app.failedValidationResponse(w, r, fe)
		case errors.Is(err, catalog.ErrCategoryNotFound):
			fe := fieldErrors{}
			fe.add("category_id", "must reference an existing category")
			app.failedValidationResponse(w, r, fe)
		default:
			app.internalServerError(w, r, fmt.Errorf("create product: %w", err))
		}
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/v1/products/%d", created.ID))
	app.jsonResponse(w, http.StatusCreated, app.productResource(created, imgs))
}

// getProductHandler always eager-loads the gallery.
func (app *application) getProductHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	id, err := parseID(chi.URLParam(r, "productID"))
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid product ID"))
		return
	}

	product, err := app.store.Catalog.GetProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	imgs, err := app.store.Catalog.ListProductImages(ctx, id)
	if err != nil {
		app.internalServerError(w, r, fmt.Errorf("load product images: %w", err))
		return
	}

	app.jsonResponse(w, http.StatusOK, app.productResource(product, imgs))
}

func (app *application) updateProductHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	id, err := parseID(chi.URLParam(r, "productID"))
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid product ID"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxProductFormBytes)
	if err := r.ParseMultipartForm(maxProductFormBytes); err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("failed to parse form: %w", err))
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	existing, err := app.store.Catalog.GetProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	in, fe := parseProductForm(r)

	// primary_image is optional on update; the stored one is kept otherwise.
	var primary *multipart.FileHeader
	if headers := r.MultipartForm.File["primary_image"]; len(headers) > 0 {
		primary = headers[0]
		if err := checkImageFile(primary); err != nil {
			fe.add("primary_image", "must be an image (jpeg, png or webp)")
		}
	}

	gallery := r.MultipartForm.File["images"]
	for _, fh := range gallery {
		if err := checkImageFile(fh); err != nil {
			fe.add("images", "every file must be an image (jpeg, png or webp)")
			break
		}
	}

	if len(fe) > 0 {
		app.failedValidationResponse(w, r, fe)
		return
	}

	oldImgs, err := app.store.Catalog.ListProductImages(ctx, id)
	if err != nil {
		app.internalServerError(w, r, fmt.Errorf("load product images: %w", err))
		return
	}

	var staged []string

	primaryName := existing.PrimaryImage
	if primary != nil {
		primaryName, err = app.stageUpload(ctx, primary)
		if err != nil {
			app.internalServerError(w, r, fmt.Errorf("store primary image: %w", err))
			return
		}
		staged = append(staged, primaryName)
	}

	galleryNames := make([]string, 0, len(gallery))
	for _, fh := range gallery {
		name, err := app.stageUpload(ctx, fh)
		if err != nil {
			app.removeFilesAsync(staged)
			app.internalServerError(w, r, fmt.Errorf("store gallery image: %w", err))
			return
		}
		staged = append(staged, name)
		galleryNames = append(galleryNames, name)
	}

	var (
		updated *catalog.Product
		imgs    []*catalog.ProductImage
	)
	err = app.store.Catalog.WithTx(ctx, func(tx catalog.Store) error {
		var txErr error
		updated, txErr = tx.UpdateProduct(ctx, &catalog.Product{
			ID:             id,
			Name:           in.Name,
			BrandID:        in.BrandID,
			CategoryID:     in.CategoryID,
			PrimaryImage:   primaryName,
			Price:          in.Price,
			Quantity:       in.Quantity,
			DeliveryAmount: in.DeliveryAmount,
			Description:    in.Description,
		})
		if txErr != nil {
			return txErr
		}
		// Gallery replacement is wholesale: supplying any files swaps the
		// entire set within the same transaction.
		if len(galleryNames) > 0 {
			imgs, txErr = tx.ReplaceProductImages(ctx, id, galleryNames)
		} else {
			imgs = oldImgs
		}
		return txErr
	})
	if err != nil {
		app.removeFilesAsync(staged)
		switch {
		case errors.Is(err, catalog.ErrProductNotFound):
			app.notFoundResponse(w, r, err)
		case errors.Is(err, catalog.ErrBrandNotFound):
			fe := fieldErrors{}
			fe.add("brand_id", "must reference an existing brand")
			app.failedValidationResponse(w, r, fe)
		case errors.Is(err, catalog.ErrCategoryNotFound):
			fe := fieldErrors{}
			fe.add("category_id", "must reference an existing category")
			app.failedValidationResponse(w, r, fe)
		default:
			app.internalServerError(w, r, fmt.Errorf("update product: %w", err))
		}
		return
	}

	// Replaced files are removed only after the transaction committed.
	var replaced []string
	if primary != nil && existing.PrimaryImage != primaryName {
		replaced = append(replaced, existing.PrimaryImage)
	}
	if len(galleryNames) > 0 {
		for _, img := range oldImgs {
			replaced = append(replaced, img.Image)
		}
	}
	app.removeFilesAsync(replaced)

	app.jsonResponse(w, http.StatusOK, app.productResource(updated, imgs))
}

func (app *application) deleteProductHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	id, err := parseID(chi.URLParam(r, "productID"))
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid product ID"))
		return
	}

	existing, err := app.store.Catalog.GetProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	var galleryFiles []string
	err = app.store.Catalog.WithTx(ctx, func(tx catalog.Store) error {
		var txErr error
		// Gallery rows cascade inside the same atomic unit as the product
		// row.
		galleryFiles, txErr = tx.DeleteProductImages(ctx, id)
		if txErr != nil {
			return txErr
		}
		return tx.DeleteProduct(ctx, id)
	})
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, fmt.Errorf("delete product: %w", err))
		return
	}

	app.removeFilesAsync(append(galleryFiles, existing.PrimaryImage))

	w.WriteHeader(http.StatusNoContent)
}
