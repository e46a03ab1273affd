package main

import (
	"context"
	"errors"
	"expvar"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dokan/internal/domain/storage"
	"dokan/internal/ratelimiter"
	"dokan/internal/uploader"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

type application struct {
	config      config
	store       *storage.Container
	uploads     uploader.Store
	logger      *zap.SugaredLogger
	rateLimiter *ratelimiter.FixedWindowRateLimiter
}

type config struct {
	addr        string
	env         string
	pageSize    int // default list page size
	db          dbConfig
	uploads     uploadConfig
	rateLimiter ratelimiter.Config
}

type dbConfig struct {
	addr        string
	maxConns    int32
	maxIdleTime string
}

type uploadConfig struct {
	driver  string // "local" or "cloudinary"
	dir     string // local driver: directory files are written to
	baseURL string // public base URL prefixed to stored filenames
	folder  string // cloudinary driver: folder for public IDs
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(app.RateLimiterMiddleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Abandon request processing when the handler exceeds this.
	r.Use(middleware.Timeout(60 * time.Second))

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health", app.healthCheckHandler)
		r.Get("/debug/vars", expvar.Handler().ServeHTTP)

		r.Route("/brands", func(r chi.Router) {
			r.Get("/", app.listBrandsHandler)
			r.Post("/", app.createBrandHandler)
			r.Route("/{brandID}", func(r chi.Router) {
				r.Get("/", app.getBrandHandler)
				r.Put("/", app.updateBrandHandler)
				r.Patch("/", app.updateBrandHandler)
				r.Delete("/", app.deleteBrandHandler)
			})
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", app.listCategoriesHandler)
			r.Post("/", app.createCategoryHandler)
			r.Get("/tree", app.getCategoryTreeHandler)
			r.Route("/{categoryID}", func(r chi.Router) {
				r.Get("/", app.getCategoryHandler)
				r.Put("/", app.updateCategoryHandler)
				r.Patch("/", app.updateCategoryHandler)
				r.Delete("/", app.deleteCategoryHandler)
				r.Get("/products", app.categoryProductsHandler)
			})
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", app.listProductsHandler)
			r.Post("/", app.createProductHandler)
			r.Route("/{productID}", func(r chi.Router) {
				r.Get("/", app.getProductHandler)
				r.Put("/", app.updateProductHandler)
				r.Patch("/", app.updateProductHandler)
				r.Delete("/", app.deleteProductHandler)
			})
		})

		r.Route("/cities", func(r chi.Router) {
			r.Get("/", app.listCitiesHandler)
			r.Get("/{cityID}", app.getCityHandler)
		})
	})

	// Stored images are served straight off disk for the local driver.
	if app.config.uploads.driver == "local" {
		fs := http.StripPrefix("/uploads/", http.FileServer(http.Dir(app.config.uploads.dir)))
		r.Get("/uploads/*", fs.ServeHTTP)
	}

	return r
}

func (app *application) run(mux http.Handler) error {
	srv := &http.Server{
		Addr:         app.config.addr,
		Handler:      mux,
		WriteTimeout: time.Second * 30,
		ReadTimeout:  time.Second * 10,
		IdleTimeout:  time.Minute,
	}

	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.logger.Infow("signal caught", "signal", s.String())

		shutdown <- srv.Shutdown(ctx)
	}()

	app.logger.Infow("server has started", "addr", app.config.addr, "env", app.config.env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Infow("server has stopped", "addr", app.config.addr, "env", app.config.env)

	return nil
}
