package usecase

import (
	"context"
	"encoding/base64"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/sistema-ventas/internal/application/dto"
	"github.com/jhoicas/sistema-ventas/internal/application/ports"
	"github.com/jhoicas/sistema-ventas/internal/domain"
	"github.com/jhoicas/sistema-ventas/internal/domain/catalog"
	"github.com/jhoicas/sistema-ventas/internal/domain/entity"
	"github.com/jhoicas/sistema-ventas/internal/domain/repository"
	"github.com/jhoicas/sistema-ventas/pkg/logger"
)

// maxBarcodeProbes límite de saltos de secuencia al buscar un código libre.
const maxBarcodeProbes = 1000

// ProductUseCase casos de uso del catálogo de productos.
type ProductUseCase struct {
	repo        repository.ProductRepository
	tx          CatalogTxRunner
	qr          ports.QRGenerator
	images      ports.ImageStore // nil = solo imagen embebida
	saveUploads bool
	log         *logger.Logger
}

// ProductDeps dependencias del caso de uso de productos.
type ProductDeps struct {
	Repo        repository.ProductRepository
	Tx          CatalogTxRunner
	QR          ports.QRGenerator
	Images      ports.ImageStore
	SaveUploads bool
	Log         *logger.Logger
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(deps ProductDeps) *ProductUseCase {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	return &ProductUseCase{
		repo:        deps.Repo,
		tx:          deps.Tx,
		qr:          deps.QR,
		images:      deps.Images,
		saveUploads: deps.SaveUploads,
		log:         log,
	}
}

// Classification opciones de género, tipo y talla para formularios.
func (uc *ProductUseCase) Classification() dto.ClassificationOptions {
	return dto.ClassificationOptions{
		Genders:      catalog.Genders,
		ProductTypes: catalog.ProductTypes,
		Sizes:        catalog.Sizes,
	}
}

// Create crea un producto. Dentro de una transacción bloquea la clasificación, cuenta los
// productos que la comparten y deriva el código; si ese código ya existe (por eliminaciones
// o por valores desconocidos que caen en "00") avanza la secuencia hasta uno libre.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest, img *dto.ImageUpload) (*dto.ProductResponse, error) {
	price, err := parseForm(in.ProductForm)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	product := &entity.Product{CreatedAt: now, UpdatedAt: now}
	applyForm(product, in.ProductForm, price)
	uc.attachImage(ctx, product, img)

	err = uc.tx.RunCatalog(ctx, func(repo repository.ProductRepository) error {
		if err := repo.LockClassification(ctx, product.Gender, product.ProductType, product.Size); err != nil {
			return err
		}
		existing, err := repo.CountByClassification(ctx, product.Gender, product.ProductType, product.Size)
		if err != nil {
			return err
		}
		code, err := freeBarcode(ctx, repo, product, existing)
		if err != nil {
			return err
		}
		png, err := uc.qr.PNG(code)
		if err != nil {
			return fmt.Errorf("generar QR: %w", err)
		}
		product.Barcode = code
		product.QRB64 = base64.StdEncoding.EncodeToString(png)
		product.QRMIME = "image/png"
		return repo.Create(ctx, product)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Int64("product_id", product.ID).Str("barcode", product.Barcode).Msg("producto creado")
	return dto.ProductFromEntity(product), nil
}

func freeBarcode(ctx context.Context, repo repository.ProductRepository, p *entity.Product, existing int) (string, error) {
	for seq := existing; seq < existing+maxBarcodeProbes; seq++ {
		code := catalog.Barcode(p.Gender, p.ProductType, p.Size, seq)
		taken, err := repo.GetByBarcode(ctx, code)
		if err != nil {
			return "", err
		}
		if taken == nil {
			return code, nil
		}
	}
	return "", fmt.Errorf("sin código de barras libre para %s: %w", catalog.Prefix(p.Gender, p.ProductType, p.Size), domain.ErrConflict)
}

// GetByID obtiene un producto por ID.
func (uc *ProductUseCase) GetByID(ctx context.Context, id int64) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, nil
	}
	return dto.ProductFromEntity(product), nil
}

// Update actualiza datos, precio, stock y clasificación. El código de barras no cambia.
func (uc *ProductUseCase) Update(ctx context.Context, id int64, in dto.UpdateProductRequest, img *dto.ImageUpload) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}
	price, err := parseForm(in.ProductForm)
	if err != nil {
		return nil, err
	}
	applyForm(product, in.ProductForm, price)
	uc.attachImage(ctx, product, img)
	product.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return dto.ProductFromEntity(product), nil
}

// List lista todos los productos.
func (uc *ProductUseCase) List(ctx context.Context) ([]dto.ProductResponse, error) {
	list, err := uc.repo.List(ctx, repository.ProductFilter{})
	if err != nil {
		return nil, err
	}
	return dto.ProductsFromEntities(list), nil
}

// Catalog lista productos filtrando por género y tipo (vacío = todos).
func (uc *ProductUseCase) Catalog(ctx context.Context, q dto.CatalogQuery) ([]dto.ProductResponse, error) {
	list, err := uc.repo.List(ctx, repository.ProductFilter{
		Gender:      strings.TrimSpace(q.Gender),
		ProductType: strings.TrimSpace(q.ProductType),
	})
	if err != nil {
		return nil, err
	}
	return dto.ProductsFromEntities(list), nil
}

// Stock listado de stock con la marca de stock crítico.
func (uc *ProductUseCase) Stock(ctx context.Context) (*dto.StockView, error) {
	items, err := uc.List(ctx)
	if err != nil {
		return nil, err
	}
	critical := 0
	for _, p := range items {
		if p.Critical {
			critical++
		}
	}
	return &dto.StockView{Products: items, CriticalCount: critical, Threshold: entity.CriticalStock}, nil
}

// Options productos para armar una venta.
func (uc *ProductUseCase) Options(ctx context.Context) ([]dto.ProductOption, error) {
	list, err := uc.repo.List(ctx, repository.ProductFilter{})
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProductOption, 0, len(list))
	for _, p := range list {
		out = append(out, dto.ProductOption{ID: p.ID, Name: p.Name, Price: p.Price, Stock: p.Stock, Barcode: p.Barcode})
	}
	return out, nil
}

// Delete elimina un producto y, en cascada, sus ventas.
func (uc *ProductUseCase) Delete(ctx context.Context, id int64) error {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrProductNotFound
	}
	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}
	if product.ImageLocal != "" && uc.images != nil {
		if err := uc.images.Delete(ctx, product.ImageLocal); err != nil {
			uc.log.Warn().Err(err).Str("key", product.ImageLocal).Msg("no se pudo borrar la imagen del almacén")
		}
	}
	return nil
}

// attachImage embebe la imagen en base64 y, si está activada la persistencia de subidas,
// la guarda también en el almacén. Un fallo del almacén no impide guardar el producto.
func (uc *ProductUseCase) attachImage(ctx context.Context, p *entity.Product, img *dto.ImageUpload) {
	if img == nil || len(img.Data) == 0 {
		return
	}
	mime := img.ContentType
	if mime == "" || mime == "application/octet-stream" {
		mime = http.DetectContentType(img.Data)
	}
	p.ImageMIME = mime
	p.ImageB64 = base64.StdEncoding.EncodeToString(img.Data)

	if !uc.saveUploads || uc.images == nil {
		return
	}
	key, err := uc.images.Save(ctx, img.Filename, mime, img.Data)
	if err != nil {
		uc.log.Warn().Err(err).Str("filename", img.Filename).Msg("no se pudo persistir la imagen")
		return
	}
	p.ImageLocal = key
}

func applyForm(p *entity.Product, f dto.ProductForm, price decimal.Decimal) {
	p.Name = strings.TrimSpace(f.Name)
	p.Description = strings.TrimSpace(f.Description)
	p.Features = strings.TrimSpace(f.Features)
	p.Price = price
	if f.Stock != nil {
		p.Stock = *f.Stock
	}
	p.Size = strings.TrimSpace(f.Size)
	p.ProductType = strings.TrimSpace(f.ProductType)
	p.Brand = strings.TrimSpace(f.Brand)
	p.Gender = strings.TrimSpace(f.Gender)
}

// parseForm valida stock y precio. El precio acepta decimales y se redondea a unidades enteras.
// Topes de las columnas products.stock (INTEGER) y products.price (NUMERIC(12,0)).
const (
	MaxStock       = math.MaxInt32
	maxPriceDigits = 12
)

var maxPrice = decimal.New(1, maxPriceDigits).Sub(decimal.NewFromInt(1))

func parseForm(f dto.ProductForm) (decimal.Decimal, error) {
	if f.Stock != nil && *f.Stock < 0 {
		return decimal.Zero, &domain.ValidationError{Fields: map[string]string{"stock": "no puede ser negativo"}}
	}
	if f.Stock != nil && *f.Stock > MaxStock {
		return decimal.Zero, &domain.ValidationError{Fields: map[string]string{"stock": fmt.Sprintf("no puede superar %d", MaxStock)}}
	}
	d, err := decimal.NewFromString(strings.TrimSpace(f.Price))
	if err != nil {
		return decimal.Zero, &domain.ValidationError{Fields: map[string]string{"precio": "debe ser un número"}}
	}
	if d.IsNegative() {
		return decimal.Zero, &domain.ValidationError{Fields: map[string]string{"precio": "no puede ser negativo"}}
	}
	d = d.Round(0)
	if d.GreaterThan(maxPrice) {
		return decimal.Zero, &domain.ValidationError{Fields: map[string]string{"precio": fmt.Sprintf("admite hasta %d dígitos", maxPriceDigits)}}
	}
	return d, nil
}
