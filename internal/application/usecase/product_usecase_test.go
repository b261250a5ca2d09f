package usecase_test

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/sistema-ventas/internal/application/dto"
	"github.com/jhoicas/sistema-ventas/internal/application/usecase"
	"github.com/jhoicas/sistema-ventas/internal/domain"
	"github.com/jhoicas/sistema-ventas/internal/domain/entity"
	"github.com/jhoicas/sistema-ventas/internal/infrastructure/memory"
)

type fakeQR struct{}

func (fakeQR) PNG(content string) ([]byte, error) { return []byte("qr:" + content), nil }

type fakeImages struct {
	saved   map[string][]byte
	deleted []string
	err     error
}

func (f *fakeImages) Save(_ context.Context, filename, _ string, data []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if f.saved == nil {
		f.saved = map[string][]byte{}
	}
	key := "k-" + filename
	f.saved[key] = data
	return key, nil
}

func (f *fakeImages) Open(context.Context, string) (io.ReadCloser, string, error) {
	return nil, "", domain.ErrNotFound
}

func (f *fakeImages) Delete(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

func newProductUC(store *memory.Store, images *fakeImages, save bool) *usecase.ProductUseCase {
	deps := usecase.ProductDeps{
		Repo:        store.Products(),
		Tx:          store,
		QR:          fakeQR{},
		SaveUploads: save,
	}
	if images != nil {
		deps.Images = images
	}
	return usecase.NewProductUseCase(deps)
}

func productForm(gender, typ, size string, stock int) dto.CreateProductRequest {
	return dto.CreateProductRequest{ProductForm: dto.ProductForm{
		Name:        "Polerón básico",
		Description: "Algodón",
		Price:       "10000",
		Stock:       &stock,
		Size:        size,
		ProductType: typ,
		Brand:       "Marca",
		Gender:      gender,
	}}
}

func TestProductCreate_CodigoSecuencial(t *testing.T) {
	store := memory.NewStore()
	uc := newProductUC(store, nil, false)
	ctx := context.Background()

	var last *dto.ProductResponse
	for i := 0; i < 3; i++ {
		out, err := uc.Create(ctx, productForm("Hombre", "Polerón", "M", 5), nil)
		require.NoError(t, err)
		last = out
	}
	assert.Equal(t, "0101030003", last.Barcode)
	assert.Equal(t, "data:image/png;base64,"+base64.StdEncoding.EncodeToString([]byte("qr:0101030003")), last.QRURL)

	other, err := uc.Create(ctx, productForm("Mujer", "Polerón", "M", 5), nil)
	require.NoError(t, err)
	assert.Equal(t, "0201030001", other.Barcode, "la secuencia es por clasificación")
}

func TestProductCreate_SaltaCodigoOcupado(t *testing.T) {
	store := memory.NewStore()
	uc := newProductUC(store, nil, false)
	ctx := context.Background()

	first, err := uc.Create(ctx, productForm("Hombre", "Polera", "S", 1), nil)
	require.NoError(t, err)
	second, err := uc.Create(ctx, productForm("Hombre", "Polera", "S", 1), nil)
	require.NoError(t, err)
	assert.Equal(t, "0105020002", second.Barcode)

	// Tras borrar el primero el conteo vuelve a 1 y el candidato "...0002" ya existe.
	require.NoError(t, uc.Delete(ctx, first.ID))
	third, err := uc.Create(ctx, productForm("Hombre", "Polera", "S", 1), nil)
	require.NoError(t, err)
	assert.Equal(t, "0105020003", third.Barcode)
}

func TestProductDelete_BorraSusVentas(t *testing.T) {
	store := memory.NewStore()
	uc := newProductUC(store, nil, false)
	ctx := context.Background()

	seller := &entity.User{FirstName: "Vale", LastName: "Soto", Email: "vale@mail.com", Role: entity.RoleVendedor}
	require.NoError(t, store.Users().Create(ctx, seller))
	p, err := uc.Create(ctx, productForm("Mujer", "Blusa", "M", 4), nil)
	require.NoError(t, err)
	require.NoError(t, store.Sales().Create(ctx, &entity.Sale{
		Ticket: "t-1", ProductID: p.ID, UserID: seller.ID, Quantity: 1, PaymentMethod: entity.PaymentCash, SoldAt: time.Now(),
	}))

	require.NoError(t, uc.Delete(ctx, p.ID))

	n, err := store.Sales().CountByUser(ctx, seller.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestProductCreate_ClasificacionDesconocida(t *testing.T) {
	store := memory.NewStore()
	uc := newProductUC(store, nil, false)
	ctx := context.Background()

	a, err := uc.Create(ctx, productForm("Unisex", "Polera", "L", 1), nil)
	require.NoError(t, err)
	b, err := uc.Create(ctx, productForm("Niño", "Polera", "L", 1), nil)
	require.NoError(t, err)
	assert.Equal(t, "0005040001", a.Barcode)
	assert.Equal(t, "0005040002", b.Barcode, "dos clasificaciones distintas que caen en 00 no chocan")
}

func TestProductCreate_PrecioYStock(t *testing.T) {
	store := memory.NewStore()
	uc := newProductUC(store, nil, false)
	ctx := context.Background()

	in := productForm("Mujer", "Blusa", "S", 2)
	in.Price = "15990.6"
	out, err := uc.Create(ctx, in, nil)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(15991).Equal(out.Price))
	assert.True(t, out.Critical, "stock 2 < 5 es crítico")

	in.Price = "-1"
	_, err = uc.Create(ctx, in, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	in.Price = "1000000000000" // 13 dígitos
	_, err = uc.Create(ctx, in, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	in.Price = "999999999999"
	_, err = uc.Create(ctx, in, nil)
	assert.NoError(t, err, "12 dígitos caben en la columna")

	neg := -3
	in = productForm("Mujer", "Blusa", "S", 0)
	in.Stock = &neg
	_, err = uc.Create(ctx, in, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	huge := usecase.MaxStock + 1
	in.Stock = &huge
	_, err = uc.Create(ctx, in, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestProductCreate_Imagen(t *testing.T) {
	img := &dto.ImageUpload{Filename: "foto.png", ContentType: "image/png", Data: []byte("PNGDATA")}

	t.Run("solo embebida", func(t *testing.T) {
		images := &fakeImages{}
		uc := newProductUC(memory.NewStore(), images, false)
		out, err := uc.Create(context.Background(), productForm("Hombre", "Camisa", "L", 1), img)
		require.NoError(t, err)
		assert.Equal(t, "data:image/png;base64,"+base64.StdEncoding.EncodeToString(img.Data), out.ImageURL)
		assert.Empty(t, images.saved)
	})
	t.Run("persistida en almacén", func(t *testing.T) {
		store := memory.NewStore()
		images := &fakeImages{}
		uc := newProductUC(store, images, true)
		out, err := uc.Create(context.Background(), productForm("Hombre", "Camisa", "L", 1), img)
		require.NoError(t, err)
		assert.Contains(t, images.saved, "k-foto.png")

		p, err := store.Products().GetByID(context.Background(), out.ID)
		require.NoError(t, err)
		assert.Equal(t, "k-foto.png", p.ImageLocal)

		require.NoError(t, uc.Delete(context.Background(), out.ID))
		assert.Equal(t, []string{"k-foto.png"}, images.deleted)
	})
	t.Run("fallo del almacén no bloquea", func(t *testing.T) {
		images := &fakeImages{err: errors.New("disco de solo lectura")}
		uc := newProductUC(memory.NewStore(), images, true)
		out, err := uc.Create(context.Background(), productForm("Hombre", "Camisa", "L", 1), img)
		require.NoError(t, err)
		assert.NotEmpty(t, out.ImageURL)
	})
}

func TestProductUpdate_CodigoInmutable(t *testing.T) {
	store := memory.NewStore()
	uc := newProductUC(store, nil, false)
	ctx := context.Background()

	created, err := uc.Create(ctx, productForm("Hombre", "Polerón", "M", 5), nil)
	require.NoError(t, err)

	edit := productForm("Mujer", "Chaqueta", "XL", 12)
	edit.Name = "Chaqueta"
	out, err := uc.Update(ctx, created.ID, dto.UpdateProductRequest{ProductForm: edit.ProductForm}, nil)
	require.NoError(t, err)
	assert.Equal(t, created.Barcode, out.Barcode)
	assert.Equal(t, "Mujer", out.Gender)
	assert.Equal(t, 12, out.Stock)

	_, err = uc.Update(ctx, 999, dto.UpdateProductRequest{ProductForm: edit.ProductForm}, nil)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestProductCatalogYStock(t *testing.T) {
	store := memory.NewStore()
	uc := newProductUC(store, nil, false)
	ctx := context.Background()

	_, err := uc.Create(ctx, productForm("Hombre", "Polerón", "M", 10), nil)
	require.NoError(t, err)
	_, err = uc.Create(ctx, productForm("Mujer", "Polerón", "M", 4), nil)
	require.NoError(t, err)
	_, err = uc.Create(ctx, productForm("Mujer", "Blusa", "M", 0), nil)
	require.NoError(t, err)

	list, err := uc.Catalog(ctx, dto.CatalogQuery{Gender: "Mujer"})
	require.NoError(t, err)
	assert.Len(t, list, 2)

	list, err = uc.Catalog(ctx, dto.CatalogQuery{Gender: "Mujer", ProductType: "Blusa"})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	list, err = uc.Catalog(ctx, dto.CatalogQuery{})
	require.NoError(t, err)
	assert.Len(t, list, 3)

	stock, err := uc.Stock(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stock.CriticalCount)
	assert.Equal(t, 5, stock.Threshold)
}

func TestProductGetByID_NoExiste(t *testing.T) {
	uc := newProductUC(memory.NewStore(), nil, false)
	out, err := uc.GetByID(context.Background(), 42)
	require.NoError(t, err)
	assert.Nil(t, out)

	assert.ErrorIs(t, uc.Delete(context.Background(), 42), domain.ErrProductNotFound)
}
