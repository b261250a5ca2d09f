package usecase

import (
	"context"

	"github.com/jhoicas/sistema-ventas/internal/domain/repository"
)

// CatalogTxRunner ejecuta una función dentro de una transacción de BD con el repositorio de
// productos atado a esa tx. Garantiza que conteo y alta del código de barras sean atómicos.
type CatalogTxRunner interface {
	RunCatalog(ctx context.Context, fn func(productRepo repository.ProductRepository) error) error
}
