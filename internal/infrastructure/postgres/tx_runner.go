package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/sistema-ventas/internal/application/sales"
	"github.com/jhoicas/sistema-ventas/internal/application/usecase"
	"github.com/jhoicas/sistema-ventas/internal/domain/repository"
)

// Ensure TxRunner implements sales.SaleTxRunner and usecase.CatalogTxRunner.
var _ sales.SaleTxRunner = (*TxRunner)(nil)
var _ usecase.CatalogTxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// run inicia una transacción, ejecuta fn y hace Commit o Rollback.
func (r *TxRunner) run(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunSale inicia una transacción con repos de productos y ventas (para registrar una venta).
func (r *TxRunner) RunSale(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	saleRepo repository.SaleRepository,
) error) error {
	return r.run(ctx, func(tx pgx.Tx) error {
		return fn(NewProductRepository(tx), NewSaleRepository(tx))
	})
}

// RunCatalog inicia una transacción con el repo de productos (alta con código de barras).
func (r *TxRunner) RunCatalog(ctx context.Context, fn func(productRepo repository.ProductRepository) error) error {
	return r.run(ctx, func(tx pgx.Tx) error {
		return fn(NewProductRepository(tx))
	})
}
