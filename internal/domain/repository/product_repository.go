package repository

import (
	"context"

	"github.com/jhoicas/sistema-ventas/internal/domain/entity"
)

// ProductFilter filtros opcionales del catálogo; vacío = sin filtrar.
type ProductFilter struct {
	Gender      string
	ProductType string
}

// ProductRepository define el puerto de persistencia para Product (DIP).
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id int64) (*entity.Product, error)
	GetByBarcode(ctx context.Context, barcode string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	List(ctx context.Context, filter ProductFilter) ([]*entity.Product, error)
	Delete(ctx context.Context, id int64) error

	// LockClassification serializa las altas de una misma clasificación hasta el fin de la transacción.
	LockClassification(ctx context.Context, gender, productType, size string) error
	// CountByClassification cuenta productos con el mismo género, tipo y talla.
	CountByClassification(ctx context.Context, gender, productType, size string) (int, error)
	// DecrementStock descuenta qty solo si alcanza; false si el stock era insuficiente.
	DecrementStock(ctx context.Context, id int64, qty int) (bool, error)
}
