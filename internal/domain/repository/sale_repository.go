package repository

import (
	"context"
	"time"

	"github.com/jhoicas/sistema-ventas/internal/domain/entity"
)

// SaleFilter criterios de consulta de líneas de venta. Campos cero = sin filtro.
type SaleFilter struct {
	From          time.Time // inclusivo
	To            time.Time // exclusivo
	PaymentMethod string
	UserID        int64
	Ticket        string
	Ascending     bool // por defecto más recientes primero
}

// SaleRepository define el puerto de persistencia para Sale (DIP).
type SaleRepository interface {
	Create(ctx context.Context, sale *entity.Sale) error
	GetByID(ctx context.Context, id int64) (*entity.Sale, error)
	Delete(ctx context.Context, id int64) error
	CountByUser(ctx context.Context, userID int64) (int, error)
	ListDetails(ctx context.Context, filter SaleFilter) ([]*entity.SaleDetail, error)
}
