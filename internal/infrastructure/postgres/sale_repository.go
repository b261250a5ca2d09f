package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/sistema-ventas/internal/domain"
	"github.com/jhoicas/sistema-ventas/internal/domain/entity"
	"github.com/jhoicas/sistema-ventas/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo implementación del puerto SaleRepository sobre PostgreSQL (usable con pool o tx).
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador de ventas. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

// Create inserta una línea de venta y asigna su ID.
func (r *SaleRepo) Create(ctx context.Context, sale *entity.Sale) error {
	query := `
		INSERT INTO sales (ticket, product_id, user_id, quantity, payment_method, customer, cash_tendered, sold_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		sale.Ticket, sale.ProductID, sale.UserID, sale.Quantity, sale.PaymentMethod, sale.Customer,
		sale.CashTendered, sale.SoldAt,
	).Scan(&sale.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("insert sale: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("insert sale: %w", err)
	}
	return nil
}

// GetByID obtiene una línea de venta por ID.
func (r *SaleRepo) GetByID(ctx context.Context, id int64) (*entity.Sale, error) {
	query := `
		SELECT id, ticket, product_id, user_id, quantity, payment_method, customer, cash_tendered, sold_at
		FROM sales WHERE id = $1`
	var s entity.Sale
	err := r.q.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.Ticket, &s.ProductID, &s.UserID, &s.Quantity, &s.PaymentMethod, &s.Customer, &s.CashTendered, &s.SoldAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	return &s, nil
}

// Delete elimina una línea de venta. No toca el stock.
func (r *SaleRepo) Delete(ctx context.Context, id int64) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM sales WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete sale: %w", err)
	}
	return nil
}

// CountByUser cuenta las ventas registradas por un usuario.
func (r *SaleRepo) CountByUser(ctx context.Context, userID int64) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM sales WHERE user_id = $1`, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count sales by user: %w", err)
	}
	return n, nil
}

// ListDetails ventas con producto y vendedor. From es inclusivo y To exclusivo.
func (r *SaleRepo) ListDetails(ctx context.Context, f repository.SaleFilter) ([]*entity.SaleDetail, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if !f.From.IsZero() {
		add("s.sold_at >= $%d", f.From)
	}
	if !f.To.IsZero() {
		add("s.sold_at < $%d", f.To)
	}
	if f.PaymentMethod != "" {
		add("s.payment_method = $%d", f.PaymentMethod)
	}
	if f.UserID != 0 {
		add("s.user_id = $%d", f.UserID)
	}
	if f.Ticket != "" {
		add("s.ticket = $%d", f.Ticket)
	}

	query := `
		SELECT s.id, s.ticket, s.product_id, s.user_id, s.quantity, s.payment_method, s.customer,
			s.cash_tendered, s.sold_at, p.name, p.price, u.first_name, u.last_name
		FROM sales s
		JOIN products p ON p.id = s.product_id
		JOIN users    u ON u.id = s.user_id`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	if f.Ascending {
		query += " ORDER BY s.sold_at ASC, s.id ASC"
	} else {
		query += " ORDER BY s.sold_at DESC, s.id DESC"
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()
	var list []*entity.SaleDetail
	for rows.Next() {
		var d entity.SaleDetail
		if err := rows.Scan(
			&d.ID, &d.Ticket, &d.ProductID, &d.UserID, &d.Quantity, &d.PaymentMethod, &d.Customer,
			&d.CashTendered, &d.SoldAt, &d.ProductName, &d.UnitPrice, &d.SellerFirstName, &d.SellerLastName,
		); err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		list = append(list, &d)
	}
	return list, rows.Err()
}
