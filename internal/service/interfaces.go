package service

import (
	"context"
	"time"

	"github.com/Chen-Zehua-TP/sgvmart/internal/model"
)

// Interfaces the services consume. The mongo implementations live in
// internal/repository; tests plug in mocks.

// TxRunner runs fn as one all-or-nothing transaction. Repository calls made
// with the context passed to fn join it.
type TxRunner interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type CartRepository interface {
	FindByOwner(ctx context.Context, ownerID string) (*model.Cart, error)
	AddLine(ctx context.Context, ownerID string, item model.CartItem) error
	SetLineQuantity(ctx context.Context, ownerID, itemID string, quantity int) error
	RemoveLine(ctx context.Context, ownerID, itemID string) error
	RemoveCatalogLines(ctx context.Context, ownerID string) error
	Clear(ctx context.Context, ownerID string) error
}

type ProductCatalog interface {
	FindByID(ctx context.Context, productID string) (*model.Product, error)
	DecrementStock(ctx context.Context, productID string, qty int) error
}

type OrderRepository interface {
	Insert(ctx context.Context, o *model.Order) error
	FindByID(ctx context.Context, orderID string) (*model.Order, error)
	FindByOwner(ctx context.Context, ownerID string) ([]*model.Order, error)
	FindBySession(ctx context.Context, sessionID string) ([]*model.Order, error)
	FindAll(ctx context.Context) ([]*model.Order, error)
	FindUnownedBySession(ctx context.Context, sessionID string) ([]*model.Order, error)
	UpdateStatus(ctx context.Context, orderID string, status model.Status) error
	SetPaymentStatus(ctx context.Context, orderID string, status model.PaymentStatus) error
	ClaimGuestOrder(ctx context.Context, orderID, userID string) error
	DeleteExpiredGuestOrders(ctx context.Context, cutoff time.Time) (int64, error)
}

type AddressBook interface {
	FindOwned(ctx context.Context, addressID, ownerID string) (*model.Address, error)
}
