package dto

// DashboardSummaryDTO respuesta del resumen del panel administrativo.
// Contadores globales del sistema al momento de la consulta.
type DashboardSummaryDTO struct {
	TotalUsers    int `json:"total_usuarios"`
	TotalSales    int `json:"total_ventas"`           // líneas de venta registradas
	CriticalStock int `json:"productos_stock_critico"` // productos bajo el umbral

	// Metadatos del período
	DateLabel string `json:"date_label"` // ej: "Febrero 2026"
}

// AdminView panel administrativo: usuarios filtrados y contadores.
type AdminView struct {
	Users   []UserResponse      `json:"usuarios"`
	Search  string              `json:"search"`
	Active  bool                `json:"activos"`
	Summary DashboardSummaryDTO `json:"resumen"`
}
