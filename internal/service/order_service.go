package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Chen-Zehua-TP/sgvmart/internal/model"
	"github.com/Chen-Zehua-TP/sgvmart/internal/repository"
)

// OrderService converts carts into immutable orders. The whole conversion —
// stock re-validation, order insert, stock decrement, cart clearing — runs
// inside one transaction; a failure at any step leaves stock and cart
// exactly as they were.
type OrderService struct {
	tx        TxRunner
	carts     CartRepository
	products  ProductCatalog
	orders    OrderRepository
	addresses AddressBook
}

func NewOrderService(tx TxRunner, carts CartRepository, products ProductCatalog, orders OrderRepository, addresses AddressBook) *OrderService {
	return &OrderService{
		tx:        tx,
		carts:     carts,
		products:  products,
		orders:    orders,
		addresses: addresses,
	}
}

// CreateOrder checks out the owner's catalog lines. Stock and availability
// are re-validated at commit time regardless of what was checked when the
// items went into the cart. External lines stay in the cart, they are
// ordered through CreateExternalOrder.
func (s *OrderService) CreateOrder(ctx context.Context, ident Identity, addressID, paymentMethod string) (*model.Order, error) {
	if err := ident.Validate(); err != nil {
		return nil, err
	}
	if paymentMethod == "" {
		return nil, fmt.Errorf("%w: payment method is required", ErrValidation)
	}
	// Address-less checkout is a guest-only affair.
	if !ident.IsGuest() && addressID == "" {
		return nil, fmt.Errorf("%w: address is required", ErrValidation)
	}

	var order *model.Order
	err := s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		cart, err := s.carts.FindByOwner(txCtx, ident.OwnerKey())
		if errors.Is(err, repository.ErrCartNotFound) {
			return ErrEmptyCart
		}
		if err != nil {
			return err
		}

		var catalogLines []model.CartItem
		for _, item := range cart.Items {
			if item.Kind == model.LineCatalog {
				catalogLines = append(catalogLines, item)
			}
		}
		if len(catalogLines) == 0 {
			return ErrEmptyCart
		}

		if addressID != "" {
			if _, err := s.addresses.FindOwned(txCtx, addressID, ident.UserID); err != nil {
				return err
			}
		}

		lines := make([]model.OrderLine, 0, len(catalogLines))
		total := 0.0
		for _, item := range catalogLines {
			p, err := s.products.FindByID(txCtx, item.ProductID)
			if errors.Is(err, repository.ErrProductNotFound) {
				return unavailableErr(item.ProductID)
			}
			if err != nil {
				return err
			}
			if !p.IsActive {
				return unavailableErr(p.ID)
			}
			if p.Stock < item.Quantity {
				return insufficientStockErr(p, item.Quantity)
			}

			// Price captured here, at commit time, never recomputed again.
			lines = append(lines, model.OrderLine{
				Kind:      model.LineCatalog,
				ProductID: p.ID,
				Quantity:  item.Quantity,
				UnitPrice: p.Price,
			})
			total += p.Price * float64(item.Quantity)
		}

		order = &model.Order{
			ID:             uuid.NewString(),
			OwnerID:        ident.UserID,
			GuestSessionID: ident.SessionID,
			AddressID:      addressID,
			Lines:          lines,
			TotalAmount:    total,
			PaymentMethod:  paymentMethod,
			Status:         model.StatusPending,
			PaymentStatus:  model.PaymentPending,
		}
		if err := s.orders.Insert(txCtx, order); err != nil {
			return err
		}

		for _, line := range lines {
			err := s.products.DecrementStock(txCtx, line.ProductID, line.Quantity)
			if errors.Is(err, repository.ErrStockConflict) {
				return s.resolveStockConflict(txCtx, line.ProductID, line.Quantity)
			}
			if err != nil {
				return err
			}
		}

		return s.carts.RemoveCatalogLines(txCtx, ident.OwnerKey())
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// resolveStockConflict turns a failed conditional decrement into the precise
// business error. The returned error always aborts the transaction.
func (s *OrderService) resolveStockConflict(ctx context.Context, productID string, qty int) error {
	p, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return unavailableErr(productID)
	}
	if !p.IsActive {
		return unavailableErr(p.ID)
	}
	return insufficientStockErr(p, qty)
}

// CreateExternalOrder places a direct single-line order for a third-party
// product, bypassing cart and address. These are fulfilled by hand, so the
// payment method is pinned to the manual-processing sentinel.
func (s *OrderService) CreateExternalOrder(ctx context.Context, ident Identity, ext model.ExternalRef, qty int) (*model.Order, error) {
	if err := ident.Validate(); err != nil {
		return nil, err
	}
	if qty < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
	}
	if ext.Name == "" || ext.URL == "" {
		return nil, fmt.Errorf("%w: external product needs a name and url", ErrValidation)
	}
	if ext.Price <= 0 {
		return nil, fmt.Errorf("%w: external product price must be positive", ErrValidation)
	}

	order := &model.Order{
		ID:             uuid.NewString(),
		OwnerID:        ident.UserID,
		GuestSessionID: ident.SessionID,
		Lines: []model.OrderLine{{
			Kind:      model.LineExternal,
			External:  &ext,
			Quantity:  qty,
			UnitPrice: ext.Price,
		}},
		TotalAmount:   ext.Price * float64(qty),
		PaymentMethod: model.PaymentMethodManual,
		Status:        model.StatusPending,
		PaymentStatus: model.PaymentPending,
		IsExternal:    true,
	}
	if err := s.orders.Insert(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// GetOrders lists the caller's orders, newest first.
func (s *OrderService) GetOrders(ctx context.Context, ident Identity) ([]*model.Order, error) {
	if err := ident.Validate(); err != nil {
		return nil, err
	}
	if ident.IsGuest() {
		return s.orders.FindBySession(ctx, ident.SessionID)
	}
	return s.orders.FindByOwner(ctx, ident.UserID)
}

// GetOrder returns one order if the caller owns it. Someone else's order is
// indistinguishable from a missing one.
func (s *OrderService) GetOrder(ctx context.Context, ident Identity, orderID string) (*model.Order, error) {
	if err := ident.Validate(); err != nil {
		return nil, err
	}

	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	owned := (!ident.IsGuest() && o.OwnerID == ident.UserID) ||
		(ident.IsGuest() && o.OwnerID == "" && o.GuestSessionID == ident.SessionID)
	if !owned {
		return nil, repository.ErrOrderNotFound
	}
	return o, nil
}

// GetAllOrders is the admin listing. Authorization happens at the route
// guard; this layer trusts its caller.
func (s *OrderService) GetAllOrders(ctx context.Context) ([]*model.Order, error) {
	return s.orders.FindAll(ctx)
}

// UpdateStatus moves an order forward through the status enum. Transitions
// only ever go forward; a backward or undefined move is a validation error.
// No ownership check here, callers must authorize first.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID string, status model.Status) error {
	if !model.ValidStatus(status) {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	if o.Status == status {
		return nil
	}
	if !model.CanTransition(o.Status, status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, status)
	}

	return s.orders.UpdateStatus(ctx, orderID, status)
}

// SetPaymentStatus applies a payment-gateway notification. Payment status is
// independent of order status.
func (s *OrderService) SetPaymentStatus(ctx context.Context, orderID string, status model.PaymentStatus) error {
	if !model.ValidPaymentStatus(status) {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	return s.orders.SetPaymentStatus(ctx, orderID, status)
}
