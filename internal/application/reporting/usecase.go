// Package reporting historial de ventas, exportación mensual a Excel y etiquetas de producto.
package reporting

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/sistema-ventas/internal/application/dto"
	"github.com/jhoicas/sistema-ventas/internal/application/ports"
	"github.com/jhoicas/sistema-ventas/internal/domain"
	"github.com/jhoicas/sistema-ventas/internal/domain/repository"
)

const (
	dateLayout  = "2006-01-02"
	monthLayout = "2006-01"
	// excelDate formato de la columna Fecha del Excel.
	excelDate = "02/01/2006 15:04"

	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var exportHeaders = []string{"Fecha", "Producto", "Cantidad", "Método de Pago", "Cliente", "Vendedor"}

// ReportUseCase reportes de ventas.
type ReportUseCase struct {
	saleRepo    repository.SaleRepository
	userRepo    repository.UserRepository
	productRepo repository.ProductRepository
	sheets      ports.SpreadsheetWriter
	labels      ports.LabelRenderer
	loc         *time.Location
}

// NewReportUseCase construye el caso de uso. Las fechas de los filtros se interpretan en la zona local.
func NewReportUseCase(
	saleRepo repository.SaleRepository,
	userRepo repository.UserRepository,
	productRepo repository.ProductRepository,
	sheets ports.SpreadsheetWriter,
	labels ports.LabelRenderer,
) *ReportUseCase {
	return &ReportUseCase{
		saleRepo:    saleRepo,
		userRepo:    userRepo,
		productRepo: productRepo,
		sheets:      sheets,
		labels:      labels,
		loc:         time.Local,
	}
}

// WithLocation fija la zona horaria de los filtros de fecha.
func (uc *ReportUseCase) WithLocation(loc *time.Location) *ReportUseCase {
	if loc != nil {
		uc.loc = loc
	}
	return uc
}

// History historial filtrado, más reciente primero. Ambas fechas son días inclusivos;
// "Todos" o vacío desactiva el filtro de método y de vendedor.
func (uc *ReportUseCase) History(ctx context.Context, q dto.HistoryQuery) (*dto.HistoryView, error) {
	filter, err := uc.historyFilter(q)
	if err != nil {
		return nil, err
	}
	rows, err := uc.saleRepo.ListDetails(ctx, filter)
	if err != nil {
		return nil, err
	}
	users, err := uc.userRepo.List(ctx, repository.UserFilter{})
	if err != nil {
		return nil, err
	}

	view := &dto.HistoryView{
		Sales:   make([]dto.SaleRow, 0, len(rows)),
		Users:   dto.UsersFromEntities(users),
		Filters: q,
		Total:   decimal.Zero,
	}
	for _, r := range rows {
		sub := r.Subtotal()
		view.Total = view.Total.Add(sub)
		view.Sales = append(view.Sales, dto.SaleRow{
			ID:            r.ID,
			Ticket:        r.Ticket,
			SoldAt:        r.SoldAt,
			ProductID:     r.ProductID,
			ProductName:   r.ProductName,
			Quantity:      r.Quantity,
			UnitPrice:     r.UnitPrice,
			Subtotal:      sub,
			PaymentMethod: r.PaymentMethod,
			Customer:      r.Customer,
			SellerID:      r.UserID,
			Seller:        r.SellerName(),
		})
	}
	return view, nil
}

func (uc *ReportUseCase) historyFilter(q dto.HistoryQuery) (repository.SaleFilter, error) {
	var f repository.SaleFilter
	fields := map[string]string{}

	if s := strings.TrimSpace(q.From); s != "" {
		d, err := time.ParseInLocation(dateLayout, s, uc.loc)
		if err != nil {
			fields["fecha_inicio"] = "formato esperado YYYY-MM-DD"
		}
		f.From = d
	}
	if s := strings.TrimSpace(q.To); s != "" {
		d, err := time.ParseInLocation(dateLayout, s, uc.loc)
		if err != nil {
			fields["fecha_fin"] = "formato esperado YYYY-MM-DD"
		}
		f.To = d.AddDate(0, 0, 1)
	}
	if m := strings.TrimSpace(q.PaymentMethod); m != "" && m != dto.AnyOption {
		f.PaymentMethod = m
	}
	if s := strings.TrimSpace(q.SellerID); s != "" && s != dto.AnyOption {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil || id <= 0 {
			fields["vendedor_id"] = "vendedor inválido"
		}
		f.UserID = id
	}
	if len(fields) > 0 {
		return repository.SaleFilter{}, &domain.ValidationError{Fields: fields}
	}
	return f, nil
}

// ExportMonth genera el Excel con las ventas del mes "YYYY-MM" en orden cronológico.
func (uc *ReportUseCase) ExportMonth(ctx context.Context, month string) (*dto.FileResult, error) {
	month = strings.TrimSpace(month)
	if month == "" {
		return nil, domain.ErrMonthRequired
	}
	start, err := time.ParseInLocation(monthLayout, month, uc.loc)
	if err != nil {
		return nil, &domain.ValidationError{Fields: map[string]string{"mes": "formato esperado YYYY-MM"}}
	}
	rows, err := uc.saleRepo.ListDetails(ctx, repository.SaleFilter{
		From:      start,
		To:        start.AddDate(0, 1, 0),
		Ascending: true,
	})
	if err != nil {
		return nil, err
	}

	data := make([][]any, 0, len(rows))
	for _, r := range rows {
		customer := r.Customer
		if customer == "" {
			customer = "-"
		}
		data = append(data, []any{
			r.SoldAt.In(uc.loc).Format(excelDate),
			r.ProductName,
			r.Quantity,
			r.PaymentMethod,
			customer,
			r.SellerName(),
		})
	}
	book, err := uc.sheets.Workbook("Ventas_"+month, exportHeaders, data)
	if err != nil {
		return nil, fmt.Errorf("generar excel: %w", err)
	}
	return &dto.FileResult{
		Filename:    "ventas_" + month + ".xlsx",
		ContentType: xlsxContentType,
		Data:        book,
	}, nil
}

// Label genera la etiqueta PDF de un producto con un QR nuevo de su código de barras.
func (uc *ReportUseCase) Label(ctx context.Context, productID int64) (*dto.FileResult, error) {
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}
	pdf, err := uc.labels.Label(dto.LabelData{Name: product.Name, Price: product.Price, Barcode: product.Barcode})
	if err != nil {
		return nil, fmt.Errorf("generar etiqueta: %w", err)
	}
	return &dto.FileResult{
		Filename:    "etiqueta_" + product.Name + ".pdf",
		ContentType: "application/pdf",
		Data:        pdf,
	}, nil
}
