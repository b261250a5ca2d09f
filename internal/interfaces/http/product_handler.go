package http

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/sistema-ventas/internal/application/dto"
	"github.com/jhoicas/sistema-ventas/internal/application/reporting"
	"github.com/jhoicas/sistema-ventas/internal/application/usecase"
	"github.com/jhoicas/sistema-ventas/internal/domain"
)

// ProductHandler maneja el catálogo: alta, edición, baja, consultas y etiqueta.
type ProductHandler struct {
	uc             *usecase.ProductUseCase
	reports        *reporting.ReportUseCase
	maxUploadBytes int
}

// NewProductHandler construye el handler. maxUploadBytes <= 0 no limita la imagen.
func NewProductHandler(uc *usecase.ProductUseCase, reports *reporting.ReportUseCase, maxUploadBytes int) *ProductHandler {
	return &ProductHandler{uc: uc, reports: reports, maxUploadBytes: maxUploadBytes}
}

// ProductFormView datos de los formularios de producto.
type ProductFormView struct {
	Product *dto.ProductResponse      `json:"producto,omitempty"`
	Options dto.ClassificationOptions `json:"opciones"`
}

// CatalogView catálogo filtrado.
type CatalogView struct {
	Products []dto.ProductResponse     `json:"productos"`
	Filters  dto.CatalogQuery          `json:"filtros"`
	Options  dto.ClassificationOptions `json:"opciones"`
}

// NewPage godoc
// @Summary      Formulario de alta de producto
// @Tags         productos
// @Produce      json
// @Success      200  {object}  dto.View
// @Router       /agregar_producto [get]
func (h *ProductHandler) NewPage(c *fiber.Ctx) error {
	return view(c, ProductFormView{Options: h.uc.Classification()})
}

// Create godoc
// @Summary      Crear producto
// @Description  El código de barras y el QR se generan a partir de género, tipo y talla.
// @Tags         productos
// @Accept       multipart/form-data
// @Param        body    body      dto.ProductForm  true   "Datos del producto"
// @Param        imagen  formData  file             false  "Imagen"
// @Success      303
// @Router       /agregar_producto [post]
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	form, img, err := h.parseProductForm(c)
	if err != nil {
		return fail(c, err, "/agregar_producto")
	}
	out, err := h.uc.Create(c.UserContext(), dto.CreateProductRequest{ProductForm: form}, img)
	if err != nil {
		return fail(c, err, "/agregar_producto")
	}
	loggerFrom(c).Info().Int64("product_id", out.ID).Int64("by", GetUserID(c)).Msg("producto agregado")
	Flash(c, dto.FlashSuccess, "Producto agregado correctamente con código de barras y QR.")
	return redirect(c, "/productos")
}

// List godoc
// @Summary      Listar productos
// @Tags         productos
// @Produce      json
// @Success      200  {object}  dto.View
// @Router       /productos [get]
func (h *ProductHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext())
	if err != nil {
		return internalError(c, err)
	}
	return view(c, out)
}

// Delete godoc
// @Summary      Eliminar producto
// @Description  Elimina también las ventas del producto.
// @Tags         productos
// @Param        id  path  int  true  "ID del producto"
// @Success      303
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /eliminar_producto/{id} [post]
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return notFound(c, domain.ErrProductNotFound.Error())
	}
	if err := h.uc.Delete(c.UserContext(), id); err != nil {
		return fail(c, err, "/productos")
	}
	loggerFrom(c).Info().Int64("product_id", id).Int64("by", GetUserID(c)).Msg("producto eliminado")
	Flash(c, dto.FlashSuccess, "Producto eliminado correctamente.")
	return redirect(c, "/productos")
}

// EditPage godoc
// @Summary      Formulario de edición de producto
// @Tags         productos
// @Produce      json
// @Param        id  path  int  true  "ID del producto"
// @Success      200  {object}  dto.View
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /editar_producto/{id} [get]
func (h *ProductHandler) EditPage(c *fiber.Ctx) error {
	out, err := h.find(c)
	if err != nil || out == nil {
		return err
	}
	return view(c, ProductFormView{Product: out, Options: h.uc.Classification()})
}

// Update godoc
// @Summary      Actualizar producto
// @Description  El código de barras no cambia.
// @Tags         productos
// @Accept       multipart/form-data
// @Param        id      path      int              true   "ID del producto"
// @Param        body    body      dto.ProductForm  true   "Datos del producto"
// @Param        imagen  formData  file             false  "Imagen nueva"
// @Success      303
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /editar_producto/{id} [post]
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return notFound(c, domain.ErrProductNotFound.Error())
	}
	back := "/editar_producto/" + strconv.FormatInt(id, 10)
	form, img, err := h.parseProductForm(c)
	if err != nil {
		return fail(c, err, back)
	}
	if _, err := h.uc.Update(c.UserContext(), id, dto.UpdateProductRequest{ProductForm: form}, img); err != nil {
		return fail(c, err, back)
	}
	Flash(c, dto.FlashSuccess, "Producto actualizado correctamente.")
	return redirect(c, "/productos")
}

// Stock godoc
// @Summary      Consultar stock
// @Tags         productos
// @Produce      json
// @Success      200  {object}  dto.View
// @Router       /consultar_stock [get]
func (h *ProductHandler) Stock(c *fiber.Ctx) error {
	out, err := h.uc.Stock(c.UserContext())
	if err != nil {
		return internalError(c, err)
	}
	return view(c, out)
}

// Catalog godoc
// @Summary      Catálogo
// @Tags         productos
// @Produce      json
// @Param        genero         query  string  false  "Género"
// @Param        tipo_producto  query  string  false  "Tipo de producto"
// @Success      200  {object}  dto.View
// @Router       /catalogo [get]
func (h *ProductHandler) Catalog(c *fiber.Ctx) error {
	var q dto.CatalogQuery
	if err := c.QueryParser(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	out, err := h.uc.Catalog(c.UserContext(), q)
	if err != nil {
		return internalError(c, err)
	}
	return view(c, CatalogView{Products: out, Filters: q, Options: h.uc.Classification()})
}

// Detail godoc
// @Summary      Detalle de producto
// @Tags         productos
// @Produce      json
// @Param        id  path  int  true  "ID del producto"
// @Success      200  {object}  dto.View
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /producto/{id} [get]
func (h *ProductHandler) Detail(c *fiber.Ctx) error {
	out, err := h.find(c)
	if err != nil || out == nil {
		return err
	}
	return view(c, out)
}

// Label godoc
// @Summary      Etiqueta del producto (PDF 80x50 mm con QR)
// @Tags         productos
// @Produce      application/pdf
// @Param        id  path  int  true  "ID del producto"
// @Success      200
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /descargar_etiqueta/{id} [get]
func (h *ProductHandler) Label(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return notFound(c, domain.ErrProductNotFound.Error())
	}
	file, err := h.reports.Label(c.UserContext(), id)
	if err != nil {
		return fail(c, err, "/consultar_stock")
	}
	return sendFile(c, file)
}

// find carga el producto de :id. Si no existe ya respondió 404 y devuelve (nil, nil).
func (h *ProductHandler) find(c *fiber.Ctx) (*dto.ProductResponse, error) {
	id, ok := paramID(c)
	if !ok {
		return nil, notFound(c, domain.ErrProductNotFound.Error())
	}
	out, err := h.uc.GetByID(c.UserContext(), id)
	if err != nil {
		return nil, internalError(c, err)
	}
	if out == nil {
		return nil, notFound(c, domain.ErrProductNotFound.Error())
	}
	return out, nil
}

// parseProductForm lee y valida los campos del formulario y la imagen opcional "imagen".
func (h *ProductHandler) parseProductForm(c *fiber.Ctx) (dto.ProductForm, *dto.ImageUpload, error) {
	var form dto.ProductForm
	if err := c.BodyParser(&form); err != nil {
		return form, nil, &domain.ValidationError{Fields: map[string]string{"formulario": "no se pudo leer"}}
	}
	if err := validatePayload(form, nil); err != nil {
		return form, nil, err
	}
	fh, err := c.FormFile("imagen")
	if err != nil || fh.Filename == "" || fh.Size == 0 {
		return form, nil, nil
	}
	if h.maxUploadBytes > 0 && fh.Size > int64(h.maxUploadBytes) {
		return form, nil, &domain.ValidationError{Fields: map[string]string{"imagen": fmt.Sprintf("supera el máximo de %d bytes", h.maxUploadBytes)}}
	}
	f, err := fh.Open()
	if err != nil {
		return form, nil, fmt.Errorf("abrir imagen: %w", err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return form, nil, fmt.Errorf("leer imagen: %w", err)
	}
	// El tipo sale del contenido, no del header del cliente.
	contentType := http.DetectContentType(data)
	if !servableImage(contentType) {
		return form, nil, &domain.ValidationError{Fields: map[string]string{"imagen": "debe ser una imagen PNG, JPEG, GIF o WebP"}}
	}
	return form, &dto.ImageUpload{
		Filename:    fh.Filename,
		ContentType: contentType,
		Data:        data,
	}, nil
}
