package sales

import (
	"context"

	"github.com/jhoicas/sistema-ventas/internal/domain/repository"
)

// SaleTxRunner ejecuta una función dentro de una transacción que incluye repos de productos y ventas.
type SaleTxRunner interface {
	RunSale(ctx context.Context, fn func(
		productRepo repository.ProductRepository,
		saleRepo repository.SaleRepository,
	) error) error
}
