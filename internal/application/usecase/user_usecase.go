package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/jhoicas/sistema-ventas/internal/application/dto"
	"github.com/jhoicas/sistema-ventas/internal/domain"
	"github.com/jhoicas/sistema-ventas/internal/domain/entity"
	"github.com/jhoicas/sistema-ventas/internal/domain/repository"
)

// UserUseCase aplica reglas de negocio para la administración de usuarios.
type UserUseCase struct {
	repo     repository.UserRepository
	saleRepo repository.SaleRepository
}

// NewUserUseCase construye el caso de uso con los puertos de persistencia.
func NewUserUseCase(repo repository.UserRepository, saleRepo repository.SaleRepository) *UserUseCase {
	return &UserUseCase{repo: repo, saleRepo: saleRepo}
}

// List lista usuarios con búsqueda libre y, si activos=1, solo los que tienen ventas.
func (uc *UserUseCase) List(ctx context.Context, q dto.UserListQuery) ([]dto.UserResponse, error) {
	list, err := uc.repo.List(ctx, repository.UserFilter{
		Search:        strings.TrimSpace(q.Search),
		OnlyWithSales: q.Active == "1",
	})
	if err != nil {
		return nil, err
	}
	return dto.UsersFromEntities(list), nil
}

// GetByID obtiene un usuario por ID.
func (uc *UserUseCase) GetByID(ctx context.Context, id int64) (*dto.UserResponse, error) {
	user, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}
	return dto.UserFromEntity(user), nil
}

// Update edita datos y rol de un usuario. Un vendedor no puede ser promovido a administrador
// desde aquí y nadie puede cambiar su propio rol; en ambos casos no se modifica nada.
func (uc *UserUseCase) Update(ctx context.Context, actorID, id int64, in dto.UpdateUserRequest) (*dto.UserResponse, error) {
	user, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	newRole := strings.TrimSpace(in.Role)
	if !entity.ValidRole(newRole) {
		return nil, domain.ErrInvalidRole
	}
	if user.Role == entity.RoleVendedor && newRole == entity.RoleAdmin {
		return nil, domain.ErrRoleEscalation
	}
	if user.ID == actorID && user.Role != newRole {
		return nil, domain.ErrSelfRoleChange
	}

	email := strings.TrimSpace(in.Email)
	if email != user.Email {
		other, err := uc.repo.GetByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		if other != nil && other.ID != user.ID {
			return nil, domain.ErrEmailAlreadyExists
		}
	}

	user.FirstName = strings.TrimSpace(in.FirstName)
	user.LastName = strings.TrimSpace(in.LastName)
	user.Email = email
	user.Phone = strings.TrimSpace(in.Phone)
	user.Role = newRole
	user.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return dto.UserFromEntity(user), nil
}

// Delete elimina un usuario. No se puede eliminar a uno mismo ni a quien tiene ventas.
func (uc *UserUseCase) Delete(ctx context.Context, actorID, id int64) error {
	user, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if user == nil {
		return domain.ErrUserNotFound
	}
	if user.ID == actorID {
		return domain.ErrSelfDelete
	}
	n, err := uc.saleRepo.CountByUser(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return domain.ErrUserHasSales
	}
	return uc.repo.Delete(ctx, id)
}
