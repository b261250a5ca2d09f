package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/jhoicas/sistema-ventas/internal/domain"
	"github.com/jhoicas/sistema-ventas/internal/domain/entity"
	"github.com/jhoicas/sistema-ventas/internal/domain/repository"
)

var (
	_ repository.UserRepository      = (*UserRepo)(nil)
	_ repository.ProductRepository   = (*ProductRepo)(nil)
	_ repository.SaleRepository      = (*SaleRepo)(nil)
	_ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)
)

// ── Usuarios ─────────────────────────────────────────────────────────────────

// UserRepo usuarios en memoria.
type UserRepo struct {
	s  *Store
	tx *state
}

func (r *UserRepo) Create(_ context.Context, user *entity.User) error {
	return r.s.scope(r.tx, func(st *state) error {
		for _, u := range st.users {
			if u.Email == user.Email {
				return domain.ErrEmailAlreadyExists
			}
		}
		st.nextUser++
		user.ID = st.nextUser
		cp := *user
		st.users[user.ID] = &cp
		return nil
	})
}

func (r *UserRepo) GetByID(_ context.Context, id int64) (*entity.User, error) {
	var out *entity.User
	err := r.s.scope(r.tx, func(st *state) error {
		if u, ok := st.users[id]; ok {
			cp := *u
			out = &cp
		}
		return nil
	})
	return out, err
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	var out *entity.User
	err := r.s.scope(r.tx, func(st *state) error {
		for _, u := range st.users {
			if u.Email == email {
				cp := *u
				out = &cp
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *UserRepo) Update(_ context.Context, user *entity.User) error {
	return r.s.scope(r.tx, func(st *state) error {
		for _, u := range st.users {
			if u.ID != user.ID && u.Email == user.Email {
				return domain.ErrEmailAlreadyExists
			}
		}
		if _, ok := st.users[user.ID]; !ok {
			return nil
		}
		cp := *user
		st.users[user.ID] = &cp
		return nil
	})
}

func (r *UserRepo) List(_ context.Context, filter repository.UserFilter) ([]*entity.User, error) {
	var out []*entity.User
	err := r.s.scope(r.tx, func(st *state) error {
		q := strings.ToLower(strings.TrimSpace(filter.Search))
		for _, u := range st.users {
			if q != "" && !containsAny(q, u.FirstName, u.LastName, u.Email, u.Role) {
				continue
			}
			if filter.OnlyWithSales && countSales(st, u.ID) == 0 {
				continue
			}
			cp := *u
			out = append(out, &cp)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

func (r *UserRepo) Delete(_ context.Context, id int64) error {
	return r.s.scope(r.tx, func(st *state) error {
		if countSales(st, id) > 0 {
			return domain.ErrConflict
		}
		delete(st.users, id)
		return nil
	})
}

func containsAny(q string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

func countSales(st *state, userID int64) int {
	n := 0
	for _, s := range st.sales {
		if s.UserID == userID {
			n++
		}
	}
	return n
}

// ── Productos ────────────────────────────────────────────────────────────────

// ProductRepo productos en memoria.
type ProductRepo struct {
	s  *Store
	tx *state
}

func (r *ProductRepo) Create(_ context.Context, product *entity.Product) error {
	return r.s.scope(r.tx, func(st *state) error {
		for _, p := range st.products {
			if product.Barcode != "" && p.Barcode == product.Barcode {
				return domain.ErrDuplicate
			}
		}
		st.nextProduct++
		product.ID = st.nextProduct
		cp := *product
		st.products[product.ID] = &cp
		return nil
	})
}

func (r *ProductRepo) GetByID(_ context.Context, id int64) (*entity.Product, error) {
	var out *entity.Product
	err := r.s.scope(r.tx, func(st *state) error {
		if p, ok := st.products[id]; ok {
			cp := *p
			out = &cp
		}
		return nil
	})
	return out, err
}

func (r *ProductRepo) GetByBarcode(_ context.Context, barcode string) (*entity.Product, error) {
	var out *entity.Product
	err := r.s.scope(r.tx, func(st *state) error {
		for _, p := range st.products {
			if p.Barcode == barcode {
				cp := *p
				out = &cp
				return nil
			}
		}
		return nil
	})
	return out, err
}

// Update no modifica el código de barras.
func (r *ProductRepo) Update(_ context.Context, product *entity.Product) error {
	return r.s.scope(r.tx, func(st *state) error {
		cur, ok := st.products[product.ID]
		if !ok {
			return nil
		}
		cp := *product
		cp.Barcode = cur.Barcode
		st.products[product.ID] = &cp
		return nil
	})
}

func (r *ProductRepo) List(_ context.Context, filter repository.ProductFilter) ([]*entity.Product, error) {
	var out []*entity.Product
	err := r.s.scope(r.tx, func(st *state) error {
		for _, p := range st.products {
			if filter.Gender != "" && p.Gender != filter.Gender {
				continue
			}
			if filter.ProductType != "" && p.ProductType != filter.ProductType {
				continue
			}
			cp := *p
			out = append(out, &cp)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

// Delete elimina el producto y sus ventas.
func (r *ProductRepo) Delete(_ context.Context, id int64) error {
	return r.s.scope(r.tx, func(st *state) error {
		delete(st.products, id)
		for sid, s := range st.sales {
			if s.ProductID == id {
				delete(st.sales, sid)
			}
		}
		return nil
	})
}

// LockClassification no hace nada: las transacciones en memoria ya son serializadas.
func (r *ProductRepo) LockClassification(context.Context, string, string, string) error {
	return nil
}

func (r *ProductRepo) CountByClassification(_ context.Context, gender, productType, size string) (int, error) {
	n := 0
	err := r.s.scope(r.tx, func(st *state) error {
		for _, p := range st.products {
			if p.Gender == gender && p.ProductType == productType && p.Size == size {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *ProductRepo) DecrementStock(_ context.Context, id int64, qty int) (bool, error) {
	ok := false
	err := r.s.scope(r.tx, func(st *state) error {
		p, found := st.products[id]
		if !found || p.Stock < qty {
			return nil
		}
		p.Stock -= qty
		ok = true
		return nil
	})
	return ok, err
}

// ── Ventas ───────────────────────────────────────────────────────────────────

// SaleRepo ventas en memoria.
type SaleRepo struct {
	s  *Store
	tx *state
}

func (r *SaleRepo) Create(_ context.Context, sale *entity.Sale) error {
	if r.s.SaleCreateErr != nil {
		return r.s.SaleCreateErr
	}
	return r.s.scope(r.tx, func(st *state) error {
		if _, ok := st.products[sale.ProductID]; !ok {
			return domain.ErrProductNotFound
		}
		if _, ok := st.users[sale.UserID]; !ok {
			return domain.ErrUserNotFound
		}
		st.nextSale++
		sale.ID = st.nextSale
		cp := *sale
		st.sales[sale.ID] = &cp
		return nil
	})
}

func (r *SaleRepo) GetByID(_ context.Context, id int64) (*entity.Sale, error) {
	var out *entity.Sale
	err := r.s.scope(r.tx, func(st *state) error {
		if s, ok := st.sales[id]; ok {
			cp := *s
			out = &cp
		}
		return nil
	})
	return out, err
}

func (r *SaleRepo) Delete(_ context.Context, id int64) error {
	return r.s.scope(r.tx, func(st *state) error {
		delete(st.sales, id)
		return nil
	})
}

func (r *SaleRepo) CountByUser(_ context.Context, userID int64) (int, error) {
	n := 0
	err := r.s.scope(r.tx, func(st *state) error {
		n = countSales(st, userID)
		return nil
	})
	return n, err
}

func (r *SaleRepo) ListDetails(_ context.Context, f repository.SaleFilter) ([]*entity.SaleDetail, error) {
	var out []*entity.SaleDetail
	err := r.s.scope(r.tx, func(st *state) error {
		for _, s := range st.sales {
			if !f.From.IsZero() && s.SoldAt.Before(f.From) {
				continue
			}
			if !f.To.IsZero() && !s.SoldAt.Before(f.To) {
				continue
			}
			if f.PaymentMethod != "" && s.PaymentMethod != f.PaymentMethod {
				continue
			}
			if f.UserID != 0 && s.UserID != f.UserID {
				continue
			}
			if f.Ticket != "" && s.Ticket != f.Ticket {
				continue
			}
			d := &entity.SaleDetail{Sale: *s}
			if p, ok := st.products[s.ProductID]; ok {
				d.ProductName = p.Name
				d.UnitPrice = p.Price
			}
			if u, ok := st.users[s.UserID]; ok {
				d.SellerFirstName = u.FirstName
				d.SellerLastName = u.LastName
			}
			out = append(out, d)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.SoldAt.Equal(b.SoldAt) {
			if f.Ascending {
				return a.SoldAt.Before(b.SoldAt)
			}
			return a.SoldAt.After(b.SoldAt)
		}
		if f.Ascending {
			return a.ID < b.ID
		}
		return a.ID > b.ID
	})
	return out, err
}

// ── Analítica ────────────────────────────────────────────────────────────────

// AnalyticsRepo contadores en memoria.
type AnalyticsRepo struct {
	s *Store
}

func (r *AnalyticsRepo) CountUsers(context.Context) (int, error) {
	n := 0
	err := r.s.scope(nil, func(st *state) error { n = len(st.users); return nil })
	return n, err
}

func (r *AnalyticsRepo) CountSales(context.Context) (int, error) {
	n := 0
	err := r.s.scope(nil, func(st *state) error { n = len(st.sales); return nil })
	return n, err
}

func (r *AnalyticsRepo) CountCriticalProducts(_ context.Context, threshold int) (int, error) {
	n := 0
	err := r.s.scope(nil, func(st *state) error {
		for _, p := range st.products {
			if p.Stock < threshold {
				n++
			}
		}
		return nil
	})
	return n, err
}
