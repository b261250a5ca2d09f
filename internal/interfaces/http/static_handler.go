package http

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/sistema-ventas/internal/application/ports"
	"github.com/jhoicas/sistema-ventas/internal/domain"
)

// Healthz responde "ok" sin tocar la base de datos.
func Healthz(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).SendString("ok")
}

// servableImage solo imágenes rasterizadas; SVG puede llevar scripts.
func servableImage(contentType string) bool {
	return strings.HasPrefix(contentType, "image/") && !strings.Contains(contentType, "svg")
}

// UploadsHandler sirve las imágenes persistidas en el almacén.
type UploadsHandler struct {
	images ports.ImageStore
}

// NewUploadsHandler construye el handler.
func NewUploadsHandler(images ports.ImageStore) *UploadsHandler {
	return &UploadsHandler{images: images}
}

// Serve godoc
// @Summary      Imagen subida de un producto
// @Tags         static
// @Produce      image/png,image/jpeg
// @Param        key  path  string  true  "Clave de la imagen"
// @Success      200
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /static/uploads/{key} [get]
func (h *UploadsHandler) Serve(c *fiber.Ctx) error {
	if h.images == nil {
		return notFound(c, domain.ErrNotFound.Error())
	}
	rc, contentType, err := h.images.Open(c.UserContext(), c.Params("key"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return notFound(c, err.Error())
		}
		return internalError(c, err)
	}
	if !servableImage(contentType) {
		contentType = fiber.MIMEOctetStream
	}
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderXContentTypeOptions, "nosniff")
	c.Set(fiber.HeaderCacheControl, "public, max-age=86400")
	// fasthttp cierra rc al terminar de enviar.
	return c.SendStream(rc)
}
