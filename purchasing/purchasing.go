/*
Package purchasing provides the purchasing administration sub-module:
suppliers, products, and purchase orders.

This is deliberately thin CRUD over the stores - the only derived quantity
is an order's total, which is the sum of its line amounts rounded to two
decimals. It shares the engine's decimal and date conventions but has no
coupling to payroll computation.
*/
package purchasing

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// ENTITIES
// =============================================================================

type Supplier struct {
	ID      string
	Name    string
	Phone   string
	Address string
}

type Product struct {
	ID         string
	SupplierID string
	Name       string
	Unit       string
	UnitPrice  decimal.Decimal
}

// OrderLine is one product line of a purchase order. Amount is derived:
// quantity x unit price, rounded to 2 decimals.
type OrderLine struct {
	ProductID string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
}

func (l OrderLine) Amount() decimal.Decimal {
	return payroll.RoundMoney(l.Quantity.Mul(l.UnitPrice))
}

type PurchaseOrder struct {
	ID         string
	SupplierID string
	Date       payroll.Date
	Lines      []OrderLine
	Total      decimal.Decimal
}

// ComputeTotal recomputes the order total from its lines.
func (o *PurchaseOrder) ComputeTotal() {
	total := decimal.Zero
	for _, l := range o.Lines {
		total = total.Add(l.Amount())
	}
	o.Total = payroll.RoundMoney(total)
}

// =============================================================================
// STORE
// =============================================================================

type Store interface {
	ListSuppliers(ctx context.Context) ([]Supplier, error)
	SaveSupplier(ctx context.Context, s Supplier) error
	DeleteSupplier(ctx context.Context, id string) error

	ListProducts(ctx context.Context) ([]Product, error)
	SaveProduct(ctx context.Context, p Product) error
	DeleteProduct(ctx context.Context, id string) error

	ListOrders(ctx context.Context) ([]PurchaseOrder, error)
	SaveOrder(ctx context.Context, o PurchaseOrder) error
	DeleteOrder(ctx context.Context, id string) error
}

// =============================================================================
// SERVICE
// =============================================================================

var ErrEmptyOrder = errors.New("purchase order has no lines")

// Service validates and persists purchasing entities.
type Service struct {
	store Store
}

func NewService(store Store) *Service { return &Service{store: store} }

// PlaceOrder recomputes the total and persists the order.
func (s *Service) PlaceOrder(ctx context.Context, o PurchaseOrder) (PurchaseOrder, error) {
	if len(o.Lines) == 0 {
		return PurchaseOrder{}, ErrEmptyOrder
	}
	o.ComputeTotal()
	if err := s.store.SaveOrder(ctx, o); err != nil {
		return PurchaseOrder{}, fmt.Errorf("save order: %w", err)
	}
	return o, nil
}
