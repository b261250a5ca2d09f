package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/sistema-ventas/internal/application/analytics"
	"github.com/jhoicas/sistema-ventas/internal/application/dto"
	"github.com/jhoicas/sistema-ventas/internal/application/usecase"
	"github.com/jhoicas/sistema-ventas/internal/domain"
)

// DashboardHandler maneja el panel administrativo: contadores y gestión de usuarios.
type DashboardHandler struct {
	dashboard *appanalytics.DashboardUseCase
	users     *usecase.UserUseCase
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(dashboard *appanalytics.DashboardUseCase, users *usecase.UserUseCase) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, users: users}
}

// Panel godoc
// @Summary      Panel administrativo
// @Description  Usuarios (búsqueda libre, activos=1 solo con ventas) y contadores globales.
// @Tags         admin
// @Produce      json
// @Param        search   query  string  false  "Nombre, apellido, email o rol"
// @Param        activos  query  string  false  "1 = solo usuarios con ventas"
// @Success      200  {object}  dto.View
// @Router       /admin [get]
func (h *DashboardHandler) Panel(c *fiber.Ctx) error {
	var q dto.UserListQuery
	if err := c.QueryParser(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	users, err := h.users.List(c.UserContext(), q)
	if err != nil {
		return internalError(c, err)
	}
	summary, err := h.dashboard.GetSummary(c.UserContext())
	if err != nil {
		return internalError(c, err)
	}
	return view(c, dto.AdminView{
		Users:   users,
		Search:  q.Search,
		Active:  q.Active == "1",
		Summary: *summary,
	})
}

// EditUserPage godoc
// @Summary      Formulario de edición de usuario
// @Tags         admin
// @Produce      json
// @Param        id  path  int  true  "ID del usuario"
// @Success      200  {object}  dto.View
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /admin/editar/{id} [get]
func (h *DashboardHandler) EditUserPage(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return notFound(c, domain.ErrUserNotFound.Error())
	}
	user, err := h.users.GetByID(c.UserContext(), id)
	if err != nil {
		return internalError(c, err)
	}
	if user == nil {
		return notFound(c, domain.ErrUserNotFound.Error())
	}
	return view(c, user)
}

// UpdateUser godoc
// @Summary      Editar usuario
// @Description  No permite promover vendedor a administrador ni cambiar el rol propio.
// @Tags         admin
// @Accept       x-www-form-urlencoded
// @Param        id    path  int                    true  "ID del usuario"
// @Param        body  body  dto.UpdateUserRequest  true  "Datos del usuario"
// @Success      303
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /admin/editar/{id} [post]
func (h *DashboardHandler) UpdateUser(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return notFound(c, domain.ErrUserNotFound.Error())
	}
	back := "/admin/editar/" + strconv.FormatInt(id, 10)
	var in dto.UpdateUserRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := validatePayload(in, domain.ErrMissingFields); err != nil {
		return fail(c, err, back)
	}
	if _, err := h.users.Update(c.UserContext(), GetUserID(c), id, in); err != nil {
		return fail(c, err, back)
	}
	Flash(c, dto.FlashSuccess, "Usuario actualizado exitosamente.")
	return redirect(c, "/admin")
}

// DeleteUser godoc
// @Summary      Eliminar usuario
// @Description  No se puede eliminar a uno mismo ni a un usuario con ventas.
// @Tags         admin
// @Param        id  path  int  true  "ID del usuario"
// @Success      303
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /admin/eliminar/{id} [get]
func (h *DashboardHandler) DeleteUser(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return notFound(c, domain.ErrUserNotFound.Error())
	}
	if err := h.users.Delete(c.UserContext(), GetUserID(c), id); err != nil {
		return fail(c, err, "/admin")
	}
	loggerFrom(c).Info().Int64("user_id", id).Int64("by", GetUserID(c)).Msg("usuario eliminado")
	Flash(c, dto.FlashSuccess, "Usuario eliminado exitosamente.")
	return redirect(c, "/admin")
}
