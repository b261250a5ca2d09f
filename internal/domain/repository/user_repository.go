package repository

import (
	"context"

	"github.com/jhoicas/sistema-ventas/internal/domain/entity"
)

// UserFilter criterios del listado administrativo de usuarios.
type UserFilter struct {
	Search        string // coincidencia parcial sin distinguir mayúsculas en nombre, apellido, email o rol
	OnlyWithSales bool   // solo usuarios con al menos una venta
}

// UserRepository define el puerto de persistencia para User (DIP).
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	List(ctx context.Context, filter UserFilter) ([]*entity.User, error)
	Delete(ctx context.Context, id int64) error
}
