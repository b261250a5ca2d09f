package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/sistema-ventas/internal/application/dto"
	"github.com/jhoicas/sistema-ventas/internal/domain"
)

// Errores de negocio que se muestran como aviso (warning) en vez de error.
var warningErrors = []error{
	domain.ErrEmailAlreadyExists,
	domain.ErrRoleEscalation,
	domain.ErrSelfRoleChange,
	domain.ErrSelfDelete,
	domain.ErrUserHasSales,
	domain.ErrMonthRequired,
}

// Errores de negocio cuyo mensaje se muestra tal cual al usuario.
var dangerErrors = []error{
	domain.ErrInvalidInput,
	domain.ErrInsufficientStock,
	domain.ErrMissingCredentials,
	domain.ErrMissingFields,
	domain.ErrPasswordMismatch,
	domain.ErrInvalidRole,
	domain.ErrRegistrationKeyMissing,
	domain.ErrInvalidRegistrationKey,
	domain.ErrUnauthorized,
	domain.ErrForbidden,
	domain.ErrInvalidSaleLines,
	domain.ErrCustomerRequired,
	domain.ErrInsufficientCash,
	domain.ErrDuplicate,
	domain.ErrConflict,
}

var notFoundErrors = []error{
	domain.ErrNotFound,
	domain.ErrUserNotFound,
	domain.ErrProductNotFound,
	domain.ErrSaleNotFound,
}

func isAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

// flashCategory categoría del flash para un error de negocio; ok=false si el error es interno.
func flashCategory(err error) (category string, ok bool) {
	switch {
	case isAny(err, warningErrors):
		return dto.FlashWarning, true
	case isAny(err, dangerErrors):
		return dto.FlashDanger, true
	default:
		return "", false
	}
}

// fail responde un error de caso de uso: inexistente → 404, negocio → flash y redirección
// a back, resto → 500.
func fail(c *fiber.Ctx, err error, back string) error {
	if isAny(err, notFoundErrors) {
		return notFound(c, err.Error())
	}
	if category, ok := flashCategory(err); ok {
		Flash(c, category, err.Error())
		return redirect(c, back)
	}
	return internalError(c, err)
}

func notFound(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: message})
}

func internalError(c *fiber.Ctx, err error) error {
	loggerFrom(c).Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("error interno")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno del servidor"})
}

// redirect responde 303 para que el navegador siga con GET después de un POST.
func redirect(c *fiber.Ctx, to string) error {
	return c.Redirect(to, fiber.StatusSeeOther)
}

// view responde una vista GET con los flashes pendientes y el usuario de la sesión.
func view(c *fiber.Ctx, data any) error {
	return c.JSON(dto.View{
		Flashes: PopFlashes(c),
		User:    dto.UserFromEntity(GetUser(c)),
		Data:    data,
	})
}

// sendFile responde un archivo generado como descarga.
func sendFile(c *fiber.Ctx, f *dto.FileResult) error {
	c.Attachment(f.Filename)
	c.Set(fiber.HeaderContentType, f.ContentType)
	return c.Send(f.Data)
}

// paramID lee el parámetro :id como entero positivo.
func paramID(c *fiber.Ctx) (int64, bool) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, false
	}
	return int64(id), true
}
