// Package memory implementa los puertos de persistencia en memoria. Lo usan las pruebas de
// casos de uso y de HTTP; las transacciones trabajan sobre una copia que se publica solo
// si la función termina sin error.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/sistema-ventas/internal/domain/entity"
	"github.com/jhoicas/sistema-ventas/internal/domain/repository"
)

type state struct {
	users    map[int64]*entity.User
	products map[int64]*entity.Product
	sales    map[int64]*entity.Sale

	nextUser    int64
	nextProduct int64
	nextSale    int64
}

func newState() *state {
	return &state{
		users:    map[int64]*entity.User{},
		products: map[int64]*entity.Product{},
		sales:    map[int64]*entity.Sale{},
	}
}

func (s *state) clone() *state {
	c := &state{
		users:       make(map[int64]*entity.User, len(s.users)),
		products:    make(map[int64]*entity.Product, len(s.products)),
		sales:       make(map[int64]*entity.Sale, len(s.sales)),
		nextUser:    s.nextUser,
		nextProduct: s.nextProduct,
		nextSale:    s.nextSale,
	}
	for k, v := range s.users {
		u := *v
		c.users[k] = &u
	}
	for k, v := range s.products {
		p := *v
		c.products[k] = &p
	}
	for k, v := range s.sales {
		sl := *v
		c.sales[k] = &sl
	}
	return c
}

// Store base de datos en memoria.
type Store struct {
	mu sync.Mutex
	st *state

	// SaleCreateErr si no es nil, toda inserción de venta falla con este error.
	SaleCreateErr error
}

// NewStore crea una base vacía.
func NewStore() *Store {
	return &Store{st: newState()}
}

// scope ejecuta fn sobre el estado de la tx o, fuera de ella, sobre el estado compartido con lock.
func (s *Store) scope(tx *state, fn func(st *state) error) error {
	if tx != nil {
		return fn(tx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.st)
}

// Users repositorio de usuarios fuera de transacción.
func (s *Store) Users() *UserRepo { return &UserRepo{s: s} }

// Products repositorio de productos fuera de transacción.
func (s *Store) Products() *ProductRepo { return &ProductRepo{s: s} }

// Sales repositorio de ventas fuera de transacción.
func (s *Store) Sales() *SaleRepo { return &SaleRepo{s: s} }

// Analytics contadores del panel.
func (s *Store) Analytics() *AnalyticsRepo { return &AnalyticsRepo{s: s} }

func (s *Store) run(fn func(tx *state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := s.st.clone()
	if err := fn(tx); err != nil {
		return err
	}
	s.st = tx
	return nil
}

// RunSale ejecuta fn con repos de productos y ventas atados a una transacción.
func (s *Store) RunSale(_ context.Context, fn func(
	productRepo repository.ProductRepository,
	saleRepo repository.SaleRepository,
) error) error {
	return s.run(func(tx *state) error {
		return fn(&ProductRepo{s: s, tx: tx}, &SaleRepo{s: s, tx: tx})
	})
}

// RunCatalog ejecuta fn con el repo de productos atado a una transacción.
func (s *Store) RunCatalog(_ context.Context, fn func(productRepo repository.ProductRepository) error) error {
	return s.run(func(tx *state) error {
		return fn(&ProductRepo{s: s, tx: tx})
	})
}
