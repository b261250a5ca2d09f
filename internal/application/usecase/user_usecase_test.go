package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/sistema-ventas/internal/application/dto"
	"github.com/jhoicas/sistema-ventas/internal/application/usecase"
	"github.com/jhoicas/sistema-ventas/internal/domain"
	"github.com/jhoicas/sistema-ventas/internal/domain/entity"
	"github.com/jhoicas/sistema-ventas/internal/infrastructure/memory"
)

func seedUser(t *testing.T, store *memory.Store, first, last, email, role string) *entity.User {
	t.Helper()
	u := &entity.User{FirstName: first, LastName: last, Email: email, Phone: "111", Role: role, PasswordHash: "x"}
	require.NoError(t, store.Users().Create(context.Background(), u))
	return u
}

func seedSale(t *testing.T, store *memory.Store, userID int64) {
	t.Helper()
	ctx := context.Background()
	p := &entity.Product{Name: "Polera", Price: decimal.NewFromInt(5000), Stock: 10, Barcode: uuid.NewString()}
	require.NoError(t, store.Products().Create(ctx, p))
	require.NoError(t, store.Sales().Create(ctx, &entity.Sale{
		Ticket: uuid.NewString(), ProductID: p.ID, UserID: userID, Quantity: 1,
		PaymentMethod: entity.PaymentCash, SoldAt: time.Now(),
	}))
}

func updateFrom(u *entity.User, role string) dto.UpdateUserRequest {
	return dto.UpdateUserRequest{FirstName: u.FirstName, LastName: u.LastName, Email: u.Email, Phone: u.Phone, Role: role}
}

func TestUserUpdate_Roles(t *testing.T) {
	store := memory.NewStore()
	uc := usecase.NewUserUseCase(store.Users(), store.Sales())
	ctx := context.Background()

	admin := seedUser(t, store, "Admin", "Principal", "admin@mail.com", entity.RoleAdmin)
	other := seedUser(t, store, "Otra", "Admin", "otra@mail.com", entity.RoleAdmin)
	seller := seedUser(t, store, "Vale", "Soto", "vale@mail.com", entity.RoleVendedor)

	t.Run("vendedor no sube a administrador", func(t *testing.T) {
		_, err := uc.Update(ctx, admin.ID, seller.ID, updateFrom(seller, entity.RoleAdmin))
		assert.ErrorIs(t, err, domain.ErrRoleEscalation)
		got, _ := store.Users().GetByID(ctx, seller.ID)
		assert.Equal(t, entity.RoleVendedor, got.Role)
	})
	t.Run("no cambia su propio rol", func(t *testing.T) {
		_, err := uc.Update(ctx, admin.ID, admin.ID, updateFrom(admin, entity.RoleVendedor))
		assert.ErrorIs(t, err, domain.ErrSelfRoleChange)
	})
	t.Run("edita sus propios datos", func(t *testing.T) {
		in := updateFrom(admin, entity.RoleAdmin)
		in.Phone = "999"
		out, err := uc.Update(ctx, admin.ID, admin.ID, in)
		require.NoError(t, err)
		assert.Equal(t, "999", out.Phone)
	})
	t.Run("degrada a otro administrador", func(t *testing.T) {
		out, err := uc.Update(ctx, admin.ID, other.ID, updateFrom(other, entity.RoleVendedor))
		require.NoError(t, err)
		assert.Equal(t, entity.RoleVendedor, out.Role)
	})
	t.Run("rol inválido", func(t *testing.T) {
		_, err := uc.Update(ctx, admin.ID, seller.ID, updateFrom(seller, "gerente"))
		assert.ErrorIs(t, err, domain.ErrInvalidRole)
	})
	t.Run("email de otro usuario", func(t *testing.T) {
		in := updateFrom(seller, entity.RoleVendedor)
		in.Email = "admin@mail.com"
		_, err := uc.Update(ctx, admin.ID, seller.ID, in)
		assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
	})
	t.Run("no existe", func(t *testing.T) {
		_, err := uc.Update(ctx, admin.ID, 999, updateFrom(seller, entity.RoleVendedor))
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}

func TestUserDelete(t *testing.T) {
	store := memory.NewStore()
	uc := usecase.NewUserUseCase(store.Users(), store.Sales())
	ctx := context.Background()

	admin := seedUser(t, store, "Admin", "Principal", "admin@mail.com", entity.RoleAdmin)
	withSales := seedUser(t, store, "Vale", "Soto", "vale@mail.com", entity.RoleVendedor)
	idle := seedUser(t, store, "Luis", "Rojas", "luis@mail.com", entity.RoleVendedor)
	seedSale(t, store, withSales.ID)

	assert.ErrorIs(t, uc.Delete(ctx, admin.ID, admin.ID), domain.ErrSelfDelete)
	assert.ErrorIs(t, uc.Delete(ctx, admin.ID, withSales.ID), domain.ErrUserHasSales)
	assert.ErrorIs(t, uc.Delete(ctx, admin.ID, 999), domain.ErrUserNotFound)
	require.NoError(t, uc.Delete(ctx, admin.ID, idle.ID))

	got, err := uc.GetByID(ctx, idle.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUserList_BusquedaYActivos(t *testing.T) {
	store := memory.NewStore()
	uc := usecase.NewUserUseCase(store.Users(), store.Sales())
	ctx := context.Background()

	seedUser(t, store, "Admin", "Principal", "admin@mail.com", entity.RoleAdmin)
	vale := seedUser(t, store, "Vale", "Soto", "vale@mail.com", entity.RoleVendedor)
	seedUser(t, store, "Luis", "Rojas", "luis@mail.com", entity.RoleVendedor)
	seedSale(t, store, vale.ID)

	tests := []struct {
		name string
		q    dto.UserListQuery
		want []string
	}{
		{"sin filtros", dto.UserListQuery{}, []string{"admin@mail.com", "vale@mail.com", "luis@mail.com"}},
		{"por apellido sin mayúsculas", dto.UserListQuery{Search: "soto"}, []string{"vale@mail.com"}},
		{"por rol", dto.UserListQuery{Search: "vendedor"}, []string{"vale@mail.com", "luis@mail.com"}},
		{"solo activos", dto.UserListQuery{Active: "1"}, []string{"vale@mail.com"}},
		{"activos distinto de 1", dto.UserListQuery{Active: "si"}, []string{"admin@mail.com", "vale@mail.com", "luis@mail.com"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := uc.List(ctx, tt.q)
			require.NoError(t, err)
			emails := make([]string, 0, len(list))
			for _, u := range list {
				emails = append(emails, u.Email)
			}
			assert.Equal(t, tt.want, emails)
		})
	}
}
