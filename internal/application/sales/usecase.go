package sales

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/sistema-ventas/internal/application/dto"
	"github.com/jhoicas/sistema-ventas/internal/application/ports"
	"github.com/jhoicas/sistema-ventas/internal/domain"
	"github.com/jhoicas/sistema-ventas/internal/domain/entity"
	"github.com/jhoicas/sistema-ventas/internal/domain/repository"
	"github.com/jhoicas/sistema-ventas/pkg/logger"
)

// SaleUseCase registra ventas descontando stock en una sola transacción.
type SaleUseCase struct {
	txRunner SaleTxRunner
	saleRepo repository.SaleRepository
	receipts ports.ReceiptRenderer
	log      *logger.Logger
	now      func() time.Time
}

// NewSaleUseCase construye el caso de uso.
func NewSaleUseCase(txRunner SaleTxRunner, saleRepo repository.SaleRepository, receipts ports.ReceiptRenderer, log *logger.Logger) *SaleUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &SaleUseCase{
		txRunner: txRunner,
		saleRepo: saleRepo,
		receipts: receipts,
		log:      log,
		now:      time.Now,
	}
}

// ParseLines decodifica el JSON de líneas que envía la pantalla de venta.
func ParseLines(raw string) ([]dto.SaleLineInput, error) {
	var lines []dto.SaleLineInput
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &lines); err != nil {
		return nil, domain.ErrInvalidSaleLines
	}
	if len(lines) == 0 {
		return nil, domain.ErrInvalidSaleLines
	}
	return lines, nil
}

type saleLine struct {
	product  *entity.Product
	quantity int
}

// Register valida todas las líneas contra el stock y, solo si todas alcanzan, descuenta el
// stock e inserta una fila de venta por producto compartiendo el mismo ticket.
func (uc *SaleUseCase) Register(ctx context.Context, sellerID int64, in dto.CreateSaleRequest) (*dto.SaleResult, error) {
	quantities, err := aggregate(in.Lines)
	if err != nil {
		return nil, err
	}
	method := strings.TrimSpace(in.PaymentMethod)
	if method == "" {
		return nil, &domain.ValidationError{Fields: map[string]string{"metodo_pago": "es obligatorio"}}
	}
	customer := ""
	if method == entity.PaymentCredit {
		customer = strings.TrimSpace(in.Customer)
		if customer == "" {
			return nil, domain.ErrCustomerRequired
		}
	}
	var cash *decimal.Decimal
	if method == entity.PaymentCash && in.CashTendered != nil {
		if in.CashTendered.IsNegative() {
			return nil, domain.ErrInsufficientCash
		}
		c := *in.CashTendered
		cash = &c
	}

	ids := make([]int64, 0, len(quantities))
	for id := range quantities {
		ids = append(ids, id)
	}
	// Orden fijo de bloqueo entre ventas concurrentes.
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	ticket := uuid.New().String()
	now := uc.now()
	result := &dto.SaleResult{Ticket: ticket, PaymentMethod: method, Customer: customer, SoldAt: now}

	err = uc.txRunner.RunSale(ctx, func(productRepo repository.ProductRepository, saleRepo repository.SaleRepository) error {
		// 1) Validación completa antes de tocar el stock.
		lines := make([]saleLine, 0, len(ids))
		total := decimal.Zero
		for _, id := range ids {
			qty := quantities[id]
			product, err := productRepo.GetByID(ctx, id)
			if err != nil {
				return err
			}
			if product == nil {
				return &domain.InsufficientStockError{ProductID: id, Requested: qty}
			}
			if product.Stock < qty {
				return &domain.InsufficientStockError{ProductID: id, Name: product.Name, Available: product.Stock, Requested: qty}
			}
			lines = append(lines, saleLine{product: product, quantity: qty})
			total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(qty))))
		}
		if cash != nil && cash.LessThan(total) {
			return domain.ErrInsufficientCash
		}

		// 2) Descuento condicionado e inserción; cualquier fallo revierte todo.
		result.Lines = make([]dto.SaleLineResult, 0, len(lines))
		for _, l := range lines {
			ok, err := productRepo.DecrementStock(ctx, l.product.ID, l.quantity)
			if err != nil {
				return err
			}
			if !ok {
				return &domain.InsufficientStockError{ProductID: l.product.ID, Name: l.product.Name, Available: l.product.Stock, Requested: l.quantity}
			}
			sale := &entity.Sale{
				Ticket:        ticket,
				ProductID:     l.product.ID,
				UserID:        sellerID,
				Quantity:      l.quantity,
				PaymentMethod: method,
				Customer:      customer,
				CashTendered:  cash,
				SoldAt:        now,
			}
			if err := saleRepo.Create(ctx, sale); err != nil {
				return fmt.Errorf("registrar venta: %w", err)
			}
			result.Lines = append(result.Lines, dto.SaleLineResult{
				SaleID:    sale.ID,
				ProductID: l.product.ID,
				Name:      l.product.Name,
				Quantity:  l.quantity,
				UnitPrice: l.product.Price,
				Subtotal:  l.product.Price.Mul(decimal.NewFromInt(int64(l.quantity))),
			})
		}
		result.Total = total
		if cash != nil {
			change := cash.Sub(total)
			result.Change = &change
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("ticket", ticket).Int64("user_id", sellerID).Str("total", result.Total.String()).Msg("venta registrada")
	return result, nil
}

// MaxLineQuantity tope de unidades por producto en una venta (columna INTEGER).
const MaxLineQuantity = math.MaxInt32

// aggregate suma cantidades por producto. Líneas sin producto, con cantidad no positiva
// o cuya suma supere MaxLineQuantity invalidan toda la venta.
func aggregate(lines []dto.SaleLineInput) (map[int64]int, error) {
	if len(lines) == 0 {
		return nil, domain.ErrInvalidSaleLines
	}
	out := make(map[int64]int, len(lines))
	for _, l := range lines {
		if l.ProductID <= 0 || l.Quantity <= 0 || l.Quantity > MaxLineQuantity {
			return nil, domain.ErrInvalidSaleLines
		}
		if out[l.ProductID] > MaxLineQuantity-l.Quantity {
			return nil, domain.ErrInvalidSaleLines
		}
		out[l.ProductID] += l.Quantity
	}
	return out, nil
}

// Delete elimina una línea de venta. El stock descontado no se repone.
func (uc *SaleUseCase) Delete(ctx context.Context, id int64) error {
	sale, err := uc.saleRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if sale == nil {
		return domain.ErrSaleNotFound
	}
	if err := uc.saleRepo.Delete(ctx, id); err != nil {
		return err
	}
	uc.log.Info().Int64("sale_id", id).Str("ticket", sale.Ticket).Msg("venta eliminada")
	return nil
}

// ReceiptData reúne las líneas de un ticket para la boleta.
func (uc *SaleUseCase) ReceiptData(ctx context.Context, ticket string) (*dto.ReceiptData, error) {
	ticket = strings.TrimSpace(ticket)
	if ticket == "" {
		return nil, domain.ErrSaleNotFound
	}
	rows, err := uc.saleRepo.ListDetails(ctx, repository.SaleFilter{Ticket: ticket, Ascending: true})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, domain.ErrSaleNotFound
	}
	first := rows[0]
	data := &dto.ReceiptData{
		Ticket:        ticket,
		PaymentMethod: first.PaymentMethod,
		Customer:      first.Customer,
		SoldAt:        first.SoldAt,
		Seller:        first.SellerName(),
		Lines:         make([]dto.SaleLineResult, 0, len(rows)),
	}
	total := decimal.Zero
	for _, r := range rows {
		sub := r.Subtotal()
		total = total.Add(sub)
		data.Lines = append(data.Lines, dto.SaleLineResult{
			SaleID:    r.ID,
			ProductID: r.ProductID,
			Name:      r.ProductName,
			Quantity:  r.Quantity,
			UnitPrice: r.UnitPrice,
			Subtotal:  sub,
		})
	}
	data.Total = total
	if first.PaymentMethod == entity.PaymentCash && first.CashTendered != nil {
		change := first.CashTendered.Sub(total)
		data.Change = &change
	}
	return data, nil
}

// Receipt genera el PDF de la boleta de un ticket.
func (uc *SaleUseCase) Receipt(ctx context.Context, ticket string) (*dto.FileResult, error) {
	data, err := uc.ReceiptData(ctx, ticket)
	if err != nil {
		return nil, err
	}
	pdf, err := uc.receipts.Receipt(*data)
	if err != nil {
		return nil, fmt.Errorf("generar boleta: %w", err)
	}
	return &dto.FileResult{
		Filename:    "boleta_" + data.Ticket + ".pdf",
		ContentType: "application/pdf",
		Data:        pdf,
	}, nil
}
