package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/sistema-ventas/internal/domain"
	"github.com/jhoicas/sistema-ventas/internal/domain/catalog"
	"github.com/jhoicas/sistema-ventas/internal/domain/entity"
	"github.com/jhoicas/sistema-ventas/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `id, name, description, features, price, stock, size, product_type, brand, gender,
	image_local, image_b64, image_mime, qr_b64, qr_mime, barcode, created_at, updated_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Features, &p.Price, &p.Stock, &p.Size, &p.ProductType, &p.Brand, &p.Gender,
		&p.ImageLocal, &p.ImageB64, &p.ImageMIME, &p.QRB64, &p.QRMIME, &p.Barcode, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create persiste un nuevo producto y asigna su ID.
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	query := `
		INSERT INTO products (name, description, features, price, stock, size, product_type, brand, gender,
			image_local, image_b64, image_mime, qr_b64, qr_mime, barcode, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		product.Name, product.Description, product.Features, product.Price, product.Stock,
		product.Size, product.ProductType, product.Brand, product.Gender,
		product.ImageLocal, product.ImageB64, product.ImageMIME, product.QRB64, product.QRMIME,
		product.Barcode, product.CreatedAt, product.UpdatedAt,
	).Scan(&product.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id int64) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// GetByBarcode obtiene un producto por código de barras.
func (r *ProductRepo) GetByBarcode(ctx context.Context, barcode string) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE barcode = $1`, barcode))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product by barcode: %w", err)
	}
	return p, nil
}

// Update actualiza un producto existente. El código de barras y el QR no se modifican.
func (r *ProductRepo) Update(ctx context.Context, product *entity.Product) error {
	query := `
		UPDATE products SET name = $2, description = $3, features = $4, price = $5, stock = $6, size = $7,
			product_type = $8, brand = $9, gender = $10, image_local = $11, image_b64 = $12, image_mime = $13,
			updated_at = $14
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		product.ID, product.Name, product.Description, product.Features, product.Price, product.Stock,
		product.Size, product.ProductType, product.Brand, product.Gender,
		product.ImageLocal, product.ImageB64, product.ImageMIME, product.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	return nil
}

// List lista productos ordenados por ID, con filtros opcionales de género y tipo.
func (r *ProductRepo) List(ctx context.Context, filter repository.ProductFilter) ([]*entity.Product, error) {
	var (
		where []string
		args  []any
	)
	if filter.Gender != "" {
		args = append(args, filter.Gender)
		where = append(where, fmt.Sprintf("gender = $%d", len(args)))
	}
	if filter.ProductType != "" {
		args = append(args, filter.ProductType)
		where = append(where, fmt.Sprintf("product_type = $%d", len(args)))
	}
	query := `SELECT ` + productColumns + ` FROM products`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id"

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// Delete elimina un producto por ID; sus ventas caen por ON DELETE CASCADE.
func (r *ProductRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.q.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

// LockClassification toma un advisory lock de transacción sobre el prefijo del código.
// Solo tiene efecto dentro de una tx (se libera en Commit/Rollback).
func (r *ProductRepo) LockClassification(ctx context.Context, gender, productType, size string) error {
	key := "barcode:" + catalog.Prefix(gender, productType, size)
	if _, err := r.q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, key); err != nil {
		return fmt.Errorf("lock classification: %w", err)
	}
	return nil
}

// CountByClassification cuenta productos con el mismo género, tipo y talla.
func (r *ProductRepo) CountByClassification(ctx context.Context, gender, productType, size string) (int, error) {
	var n int
	err := r.q.QueryRow(ctx,
		`SELECT COUNT(*) FROM products WHERE gender = $1 AND product_type = $2 AND size = $3`,
		gender, productType, size,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count by classification: %w", err)
	}
	return n, nil
}

// DecrementStock descuenta qty solo si el stock alcanza. false = stock insuficiente o producto inexistente.
func (r *ProductRepo) DecrementStock(ctx context.Context, id int64, qty int) (bool, error) {
	cmd, err := r.q.Exec(ctx,
		`UPDATE products SET stock = stock - $2, updated_at = now() WHERE id = $1 AND stock >= $2`,
		id, qty,
	)
	if err != nil {
		return false, fmt.Errorf("decrement stock: %w", err)
	}
	return cmd.RowsAffected() == 1, nil
}
