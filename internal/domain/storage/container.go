package storage

import (
	"dokan/internal/domain/catalog"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Container aggregates the domain stores over one connection pool. Atomic
// units of work go through catalog.Store.WithTx.
type Container struct {
	Catalog catalog.Store
}

func NewContainer(db *pgxpool.Pool) *Container {
	return &Container{
		Catalog: catalog.NewRepository(db),
	}
}
