// Package analytics contiene los casos de uso de los contadores del panel administrativo.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/sistema-ventas/internal/application/dto"
	"github.com/jhoicas/sistema-ventas/internal/domain/entity"
	"github.com/jhoicas/sistema-ventas/internal/domain/repository"
)

// DashboardUseCase genera el resumen del panel administrativo.
//
// Fuente de datos: AnalyticsRepository (consultas read-only).
type DashboardUseCase struct {
	analyticsRepo repository.AnalyticsRepository
	now           func() time.Time
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(analyticsRepo repository.AnalyticsRepository) *DashboardUseCase {
	return &DashboardUseCase{analyticsRepo: analyticsRepo, now: time.Now}
}

// GetSummary construye el DashboardSummaryDTO.
//
// Tres llamadas en paralelo:
//  1. CountUsers
//  2. CountSales
//  3. CountCriticalProducts(umbral de stock crítico)
func (uc *DashboardUseCase) GetSummary(ctx context.Context) (*dto.DashboardSummaryDTO, error) {
	type countResult struct {
		n   int
		err error
	}

	usersCh := make(chan countResult, 1)
	salesCh := make(chan countResult, 1)
	criticalCh := make(chan countResult, 1)

	go func() {
		n, err := uc.analyticsRepo.CountUsers(ctx)
		usersCh <- countResult{n, err}
	}()
	go func() {
		n, err := uc.analyticsRepo.CountSales(ctx)
		salesCh <- countResult{n, err}
	}()
	go func() {
		n, err := uc.analyticsRepo.CountCriticalProducts(ctx, entity.CriticalStock)
		criticalCh <- countResult{n, err}
	}()

	users := <-usersCh
	sales := <-salesCh
	critical := <-criticalCh

	if users.err != nil {
		return nil, fmt.Errorf("dashboard: usuarios: %w", users.err)
	}
	if sales.err != nil {
		return nil, fmt.Errorf("dashboard: ventas: %w", sales.err)
	}
	if critical.err != nil {
		return nil, fmt.Errorf("dashboard: stock crítico: %w", critical.err)
	}

	return &dto.DashboardSummaryDTO{
		TotalUsers:    users.n,
		TotalSales:    sales.n,
		CriticalStock: critical.n,
		DateLabel:     monthLabel(uc.now()),
	}, nil
}

// monthLabel devuelve una etiqueta legible del mes, ej: "Febrero 2026".
func monthLabel(t time.Time) string {
	months := [...]string{
		"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
		"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
	}
	return fmt.Sprintf("%s %d", months[t.Month()-1], t.Year())
}
