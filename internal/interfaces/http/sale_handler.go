package http

import (
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/sistema-ventas/internal/application/dto"
	"github.com/jhoicas/sistema-ventas/internal/application/sales"
	"github.com/jhoicas/sistema-ventas/internal/application/usecase"
	"github.com/jhoicas/sistema-ventas/internal/domain"
)

// SaleHandler maneja el registro de ventas, su eliminación y la boleta.
type SaleHandler struct {
	uc       *sales.SaleUseCase
	products *usecase.ProductUseCase
}

// NewSaleHandler construye el handler.
func NewSaleHandler(uc *sales.SaleUseCase, products *usecase.ProductUseCase) *SaleHandler {
	return &SaleHandler{uc: uc, products: products}
}

// NewSaleView datos de la pantalla de venta.
type NewSaleView struct {
	Products    []dto.ProductOption `json:"productos"`
	ShowMessage bool                `json:"mostrar_mensaje"`
	Ticket      string              `json:"ticket,omitempty"`
}

// Home godoc
// @Summary      Inicio del vendedor
// @Tags         ventas
// @Produce      json
// @Success      200  {object}  dto.View
// @Router       /ventas [get]
func (h *SaleHandler) Home(c *fiber.Ctx) error {
	return view(c, nil)
}

// NewSalePage godoc
// @Summary      Pantalla de nueva venta
// @Tags         ventas
// @Produce      json
// @Param        mostrar_mensaje  query  string  false  "1 tras registrar una venta"
// @Param        ticket           query  string  false  "Ticket de la última venta"
// @Success      200  {object}  dto.View
// @Router       /nueva_venta [get]
func (h *SaleHandler) NewSalePage(c *fiber.Ctx) error {
	options, err := h.products.Options(c.UserContext())
	if err != nil {
		return internalError(c, err)
	}
	return view(c, NewSaleView{
		Products:    options,
		ShowMessage: c.Query("mostrar_mensaje") == "1",
		Ticket:      c.Query("ticket"),
	})
}

// Create godoc
// @Summary      Registrar venta
// @Description  productos_seleccionados es el JSON [{"id":1,"cantidad":2}]. La venta es todo o nada.
// @Tags         ventas
// @Accept       x-www-form-urlencoded
// @Param        body  body  dto.SaleForm  true  "Venta"
// @Success      303
// @Router       /nueva_venta [post]
func (h *SaleHandler) Create(c *fiber.Ctx) error {
	var form dto.SaleForm
	if err := c.BodyParser(&form); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	in, err := saleRequest(form)
	if err != nil {
		return fail(c, err, "/nueva_venta")
	}
	result, err := h.uc.Register(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return fail(c, err, "/nueva_venta")
	}
	Flash(c, dto.FlashSuccess, "¡Venta registrada exitosamente! Total: $"+result.Total.String())
	return redirect(c, "/nueva_venta?mostrar_mensaje=1&ticket="+url.QueryEscape(result.Ticket))
}

// saleRequest valida el formulario y decodifica líneas y efectivo.
func saleRequest(form dto.SaleForm) (dto.CreateSaleRequest, error) {
	if err := validatePayload(form, nil); err != nil {
		return dto.CreateSaleRequest{}, err
	}
	lines, err := sales.ParseLines(form.Lines)
	if err != nil {
		return dto.CreateSaleRequest{}, err
	}
	in := dto.CreateSaleRequest{
		Lines:         lines,
		PaymentMethod: strings.TrimSpace(form.PaymentMethod),
		Customer:      form.Customer,
	}
	if cash := strings.TrimSpace(form.CashTendered); cash != "" {
		d, err := decimal.NewFromString(cash)
		if err != nil {
			return dto.CreateSaleRequest{}, &domain.ValidationError{Fields: map[string]string{"efectivo_entregado": "debe ser un número"}}
		}
		in.CashTendered = &d
	}
	return in, nil
}

// Delete godoc
// @Summary      Eliminar venta
// @Description  Borra la línea de venta; el stock no se repone.
// @Tags         ventas
// @Param        id  path  int  true  "ID de la venta"
// @Success      303
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /eliminar_venta/{id} [post]
func (h *SaleHandler) Delete(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return notFound(c, domain.ErrSaleNotFound.Error())
	}
	if err := h.uc.Delete(c.UserContext(), id); err != nil {
		return fail(c, err, "/historial_ventas")
	}
	loggerFrom(c).Info().Int64("sale_id", id).Int64("by", GetUserID(c)).Msg("venta eliminada")
	Flash(c, dto.FlashSuccess, "Venta eliminada correctamente")
	return redirect(c, "/historial_ventas")
}

// Receipt godoc
// @Summary      Boleta de venta (PDF)
// @Tags         ventas
// @Produce      application/pdf
// @Param        ticket  path  string  true  "Ticket de la venta"
// @Success      200
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /boleta/{ticket} [get]
func (h *SaleHandler) Receipt(c *fiber.Ctx) error {
	file, err := h.uc.Receipt(c.UserContext(), c.Params("ticket"))
	if err != nil {
		return fail(c, err, "/nueva_venta")
	}
	return sendFile(c, file)
}
