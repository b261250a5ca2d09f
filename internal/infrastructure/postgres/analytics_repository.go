package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/sistema-ventas/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo consultas de solo lectura para los contadores del panel administrativo.
type AnalyticsRepo struct {
	pool *pgxpool.Pool
}

// NewAnalyticsRepository construye el adaptador de analítica.
func NewAnalyticsRepository(pool *pgxpool.Pool) *AnalyticsRepo {
	return &AnalyticsRepo{pool: pool}
}

func (r *AnalyticsRepo) count(ctx context.Context, op, query string, args ...any) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("analytics.%s: %w", op, err)
	}
	return n, nil
}

// CountUsers total de usuarios registrados.
func (r *AnalyticsRepo) CountUsers(ctx context.Context) (int, error) {
	return r.count(ctx, "CountUsers", `SELECT COUNT(*) FROM users`)
}

// CountSales total de líneas de venta.
func (r *AnalyticsRepo) CountSales(ctx context.Context) (int, error) {
	return r.count(ctx, "CountSales", `SELECT COUNT(*) FROM sales`)
}

// CountCriticalProducts productos con stock bajo el umbral.
func (r *AnalyticsRepo) CountCriticalProducts(ctx context.Context, threshold int) (int, error) {
	return r.count(ctx, "CountCriticalProducts", `SELECT COUNT(*) FROM products WHERE stock < $1`, threshold)
}
