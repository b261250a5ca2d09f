package repository

import "context"

// AnalyticsRepository consultas de solo lectura para los contadores del panel administrativo.
type AnalyticsRepository interface {
	CountUsers(ctx context.Context) (int, error)
	CountSales(ctx context.Context) (int, error)
	// CountCriticalProducts cuenta productos con stock < threshold.
	CountCriticalProducts(ctx context.Context, threshold int) (int, error)
}
