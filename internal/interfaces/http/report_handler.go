package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/sistema-ventas/internal/application/dto"
	"github.com/jhoicas/sistema-ventas/internal/application/reporting"
)

// ReportHandler historial de ventas y exportación mensual.
type ReportHandler struct {
	uc *reporting.ReportUseCase
}

// NewReportHandler construye el handler.
func NewReportHandler(uc *reporting.ReportUseCase) *ReportHandler {
	return &ReportHandler{uc: uc}
}

// History godoc
// @Summary      Historial de ventas
// @Description  Fechas YYYY-MM-DD inclusivas; "Todos" desactiva los filtros de método y vendedor.
// @Tags         reportes
// @Produce      json
// @Param        fecha_inicio  query  string  false  "Desde"
// @Param        fecha_fin     query  string  false  "Hasta"
// @Param        metodo_pago   query  string  false  "Método de pago"
// @Param        vendedor_id   query  string  false  "ID del vendedor"
// @Success      200  {object}  dto.View
// @Router       /historial_ventas [get]
func (h *ReportHandler) History(c *fiber.Ctx) error {
	var q dto.HistoryQuery
	if err := c.QueryParser(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	out, err := h.uc.History(c.UserContext(), q)
	if err != nil {
		return fail(c, err, "/historial_ventas")
	}
	return view(c, out)
}

// ExportMonth godoc
// @Summary      Exportar ventas del mes a Excel
// @Tags         reportes
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        mes  query  string  true  "Mes YYYY-MM"
// @Success      200
// @Success      303
// @Router       /exportar_excel_mes [get]
func (h *ReportHandler) ExportMonth(c *fiber.Ctx) error {
	file, err := h.uc.ExportMonth(c.UserContext(), c.Query("mes"))
	if err != nil {
		return fail(c, err, "/historial_ventas")
	}
	return sendFile(c, file)
}
