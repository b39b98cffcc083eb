package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/Chen-Zehua-TP/sgvmart/internal/model"
	"github.com/Chen-Zehua-TP/sgvmart/internal/repository"
)

var errInjected = errors.New("injected failure")

// fakeStore is an in-memory stand-in for the mongo layer. WithTransaction
// serializes transactions behind one mutex and rolls the whole state back
// when the callback fails, which is the contract the services rely on. The
// facet types below expose it through the service interfaces; fault hooks
// let tests break individual steps.
type fakeStore struct {
	mu        sync.Mutex
	products  map[string]*model.Product
	carts     map[string]*model.Cart
	orders    map[string]*model.Order
	addresses map[string]*model.Address

	failRemoveCatalogLines error
	failInsertOrder        error
	failClaim              error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		products:  make(map[string]*model.Product),
		carts:     make(map[string]*model.Cart),
		orders:    make(map[string]*model.Order),
		addresses: make(map[string]*model.Address),
	}
}

func (f *fakeStore) cartRepo() *fakeCarts        { return &fakeCarts{f} }
func (f *fakeStore) productRepo() *fakeProducts  { return &fakeProducts{f} }
func (f *fakeStore) orderRepo() *fakeOrders      { return &fakeOrders{f} }
func (f *fakeStore) addressRepo() *fakeAddresses { return &fakeAddresses{f} }

func newOrderServiceUnderTest(f *fakeStore) *OrderService {
	return NewOrderService(f, f.cartRepo(), f.productRepo(), f.orderRepo(), f.addressRepo())
}

func newCartServiceUnderTest(f *fakeStore) *CartService {
	return NewCartService(f.cartRepo(), f.productRepo())
}

type txKey struct{}

// lock takes the store mutex unless the caller is already inside a
// transaction, which holds it for its whole lifetime.
func (f *fakeStore) lock(ctx context.Context) func() {
	if ctx.Value(txKey{}) != nil {
		return func() {}
	}
	f.mu.Lock()
	return f.mu.Unlock
}

func (f *fakeStore) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	snap := f.snapshot()
	err := fn(context.WithValue(ctx, txKey{}, true))
	if err != nil {
		f.restore(snap)
	}
	return err
}

type storeSnapshot struct {
	products  map[string]*model.Product
	carts     map[string]*model.Cart
	orders    map[string]*model.Order
	addresses map[string]*model.Address
}

func (f *fakeStore) snapshot() storeSnapshot {
	s := storeSnapshot{
		products:  make(map[string]*model.Product, len(f.products)),
		carts:     make(map[string]*model.Cart, len(f.carts)),
		orders:    make(map[string]*model.Order, len(f.orders)),
		addresses: make(map[string]*model.Address, len(f.addresses)),
	}
	for k, v := range f.products {
		s.products[k] = copyProduct(v)
	}
	for k, v := range f.carts {
		s.carts[k] = copyCart(v)
	}
	for k, v := range f.orders {
		s.orders[k] = copyOrder(v)
	}
	for k, v := range f.addresses {
		a := *v
		s.addresses[k] = &a
	}
	return s
}

func (f *fakeStore) restore(s storeSnapshot) {
	f.products = s.products
	f.carts = s.carts
	f.orders = s.orders
	f.addresses = s.addresses
}

func copyProduct(p *model.Product) *model.Product {
	c := *p
	return &c
}

func copyCart(c *model.Cart) *model.Cart {
	cp := *c
	cp.Items = make([]model.CartItem, len(c.Items))
	copy(cp.Items, c.Items)
	for i, item := range c.Items {
		if item.External != nil {
			ext := *item.External
			cp.Items[i].External = &ext
		}
	}
	return &cp
}

func copyOrder(o *model.Order) *model.Order {
	cp := *o
	cp.Lines = make([]model.OrderLine, len(o.Lines))
	copy(cp.Lines, o.Lines)
	for i, line := range o.Lines {
		if line.External != nil {
			ext := *line.External
			cp.Lines[i].External = &ext
		}
	}
	return &cp
}

// --- CartRepository facet ---

type fakeCarts struct{ *fakeStore }

func (f *fakeCarts) FindByOwner(ctx context.Context, ownerID string) (*model.Cart, error) {
	defer f.lock(ctx)()
	cart, ok := f.carts[ownerID]
	if !ok {
		return nil, repository.ErrCartNotFound
	}
	return copyCart(cart), nil
}

func (f *fakeCarts) AddLine(ctx context.Context, ownerID string, item model.CartItem) error {
	defer f.lock(ctx)()
	item.AddedAt = time.Now()
	cart, ok := f.carts[ownerID]
	if !ok {
		cart = &model.Cart{OwnerID: ownerID, CreatedAt: time.Now()}
		f.carts[ownerID] = cart
	}
	cart.Items = append(cart.Items, item)
	return nil
}

func (f *fakeCarts) SetLineQuantity(ctx context.Context, ownerID, itemID string, quantity int) error {
	defer f.lock(ctx)()
	cart, ok := f.carts[ownerID]
	if !ok {
		return repository.ErrItemNotFound
	}
	for i := range cart.Items {
		if cart.Items[i].ID == itemID {
			cart.Items[i].Quantity = quantity
			return nil
		}
	}
	return repository.ErrItemNotFound
}

func (f *fakeCarts) RemoveLine(ctx context.Context, ownerID, itemID string) error {
	defer f.lock(ctx)()
	cart, ok := f.carts[ownerID]
	if !ok {
		return repository.ErrItemNotFound
	}
	for i, item := range cart.Items {
		if item.ID == itemID {
			cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
			return nil
		}
	}
	return repository.ErrItemNotFound
}

func (f *fakeCarts) RemoveCatalogLines(ctx context.Context, ownerID string) error {
	defer f.lock(ctx)()
	if f.failRemoveCatalogLines != nil {
		return f.failRemoveCatalogLines
	}
	cart, ok := f.carts[ownerID]
	if !ok {
		return nil
	}
	var kept []model.CartItem
	for _, item := range cart.Items {
		if item.Kind != model.LineCatalog {
			kept = append(kept, item)
		}
	}
	cart.Items = kept
	return nil
}

func (f *fakeCarts) Clear(ctx context.Context, ownerID string) error {
	defer f.lock(ctx)()
	if cart, ok := f.carts[ownerID]; ok {
		cart.Items = nil
	}
	return nil
}

// --- ProductCatalog facet ---

type fakeProducts struct{ *fakeStore }

func (f *fakeProducts) FindByID(ctx context.Context, productID string) (*model.Product, error) {
	defer f.lock(ctx)()
	p, ok := f.products[productID]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return copyProduct(p), nil
}

func (f *fakeProducts) DecrementStock(ctx context.Context, productID string, qty int) error {
	defer f.lock(ctx)()
	p, ok := f.products[productID]
	if !ok || !p.IsActive || p.Stock < qty {
		return repository.ErrStockConflict
	}
	p.Stock -= qty
	return nil
}

// --- OrderRepository facet ---

type fakeOrders struct{ *fakeStore }

func (f *fakeOrders) Insert(ctx context.Context, o *model.Order) error {
	defer f.lock(ctx)()
	if f.failInsertOrder != nil {
		return f.failInsertOrder
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now()
	}
	f.orders[o.ID] = copyOrder(o)
	return nil
}

func (f *fakeOrders) FindByID(ctx context.Context, orderID string) (*model.Order, error) {
	defer f.lock(ctx)()
	o, ok := f.orders[orderID]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	return copyOrder(o), nil
}

func (f *fakeOrders) FindByOwner(ctx context.Context, ownerID string) ([]*model.Order, error) {
	defer f.lock(ctx)()
	var out []*model.Order
	for _, o := range f.orders {
		if o.OwnerID == ownerID {
			out = append(out, copyOrder(o))
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (f *fakeOrders) FindBySession(ctx context.Context, sessionID string) ([]*model.Order, error) {
	defer f.lock(ctx)()
	var out []*model.Order
	for _, o := range f.orders {
		if o.GuestSessionID == sessionID {
			out = append(out, copyOrder(o))
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (f *fakeOrders) FindAll(ctx context.Context) ([]*model.Order, error) {
	defer f.lock(ctx)()
	var out []*model.Order
	for _, o := range f.orders {
		out = append(out, copyOrder(o))
	}
	sortNewestFirst(out)
	return out, nil
}

func (f *fakeOrders) FindUnownedBySession(ctx context.Context, sessionID string) ([]*model.Order, error) {
	defer f.lock(ctx)()
	var out []*model.Order
	for _, o := range f.orders {
		if o.GuestSessionID == sessionID && o.OwnerID == "" {
			out = append(out, copyOrder(o))
		}
	}
	return out, nil
}

func (f *fakeOrders) UpdateStatus(ctx context.Context, orderID string, status model.Status) error {
	defer f.lock(ctx)()
	o, ok := f.orders[orderID]
	if !ok {
		return repository.ErrOrderNotFound
	}
	o.Status = status
	return nil
}

func (f *fakeOrders) SetPaymentStatus(ctx context.Context, orderID string, status model.PaymentStatus) error {
	defer f.lock(ctx)()
	o, ok := f.orders[orderID]
	if !ok {
		return repository.ErrOrderNotFound
	}
	o.PaymentStatus = status
	return nil
}

func (f *fakeOrders) ClaimGuestOrder(ctx context.Context, orderID, userID string) error {
	defer f.lock(ctx)()
	if f.failClaim != nil {
		return f.failClaim
	}
	o, ok := f.orders[orderID]
	if !ok || o.OwnerID != "" {
		return repository.ErrAlreadyOwned
	}
	o.OwnerID = userID
	return nil
}

func (f *fakeOrders) DeleteExpiredGuestOrders(ctx context.Context, cutoff time.Time) (int64, error) {
	defer f.lock(ctx)()
	var deleted int64
	for id, o := range f.orders {
		if o.OwnerID == "" && o.GuestSessionID != "" &&
			model.TerminalStatus(o.Status) && o.CreatedAt.Before(cutoff) {
			delete(f.orders, id)
			deleted++
		}
	}
	return deleted, nil
}

// --- AddressBook facet ---

type fakeAddresses struct{ *fakeStore }

func (f *fakeAddresses) FindOwned(ctx context.Context, addressID, ownerID string) (*model.Address, error) {
	defer f.lock(ctx)()
	a, ok := f.addresses[addressID]
	if !ok || a.OwnerID != ownerID {
		return nil, repository.ErrAddressNotFound
	}
	cp := *a
	return &cp, nil
}

func sortNewestFirst(orders []*model.Order) {
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
}
