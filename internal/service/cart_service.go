package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Chen-Zehua-TP/sgvmart/internal/model"
	"github.com/Chen-Zehua-TP/sgvmart/internal/repository"
)

// CartService maintains per-owner line items and derives totals. Totals are
// never stored: catalog lines are priced from the live catalog on every
// read, external lines from their captured price.
type CartService struct {
	carts    CartRepository
	products ProductCatalog
}

func NewCartService(carts CartRepository, products ProductCatalog) *CartService {
	return &CartService{carts: carts, products: products}
}

// CartLine is a cart item joined with its current catalog data.
type CartLine struct {
	model.CartItem
	ProductName string  `json:"productName,omitempty"`
	UnitPrice   float64 `json:"unitPrice"`
	Stock       int     `json:"stock,omitempty"`
	Unavailable bool    `json:"unavailable,omitempty"`
	LineTotal   float64 `json:"lineTotal"`
}

type CartView struct {
	OwnerID string     `json:"ownerId"`
	Items   []CartLine `json:"items"`
	Total   float64    `json:"total"`
}

// GetCart returns the owner's cart, creating the empty view lazily. A missing
// cart and an empty one are the same thing to callers.
func (s *CartService) GetCart(ctx context.Context, ownerID string) (*CartView, error) {
	cart, err := s.carts.FindByOwner(ctx, ownerID)
	if errors.Is(err, repository.ErrCartNotFound) {
		return &CartView{OwnerID: ownerID, Items: []CartLine{}}, nil
	}
	if err != nil {
		return nil, err
	}

	view := &CartView{OwnerID: ownerID, Items: make([]CartLine, 0, len(cart.Items))}
	for _, item := range cart.Items {
		line := CartLine{CartItem: item}

		switch item.Kind {
		case model.LineExternal:
			line.ProductName = item.External.Name
			line.UnitPrice = item.External.Price
		case model.LineCatalog:
			p, err := s.products.FindByID(ctx, item.ProductID)
			if errors.Is(err, repository.ErrProductNotFound) {
				line.Unavailable = true
			} else if err != nil {
				return nil, err
			} else {
				line.ProductName = p.Name
				line.UnitPrice = p.Price
				line.Stock = p.Stock
				line.Unavailable = !p.IsActive
			}
		}

		line.LineTotal = line.UnitPrice * float64(item.Quantity)
		view.Total += line.LineTotal
		view.Items = append(view.Items, line)
	}

	return view, nil
}

// AddCatalogItem puts qty units of a catalog product into the cart. A line
// for the same product merges quantities, and the merged quantity is checked
// against stock again so merging cannot silently overflow it.
func (s *CartService) AddCatalogItem(ctx context.Context, ownerID, productID string, qty int) (*model.CartItem, error) {
	if qty < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
	}

	p, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !p.IsActive {
		return nil, unavailableErr(productID)
	}
	if p.Stock < qty {
		return nil, insufficientStockErr(p, qty)
	}

	cart, err := s.carts.FindByOwner(ctx, ownerID)
	if err != nil && !errors.Is(err, repository.ErrCartNotFound) {
		return nil, err
	}

	if cart != nil {
		if existing := findCatalogLine(cart, productID); existing != nil {
			merged := existing.Quantity + qty
			if p.Stock < merged {
				return nil, insufficientStockErr(p, merged)
			}
			if err := s.carts.SetLineQuantity(ctx, ownerID, existing.ID, merged); err != nil {
				return nil, err
			}
			existing.Quantity = merged
			return existing, nil
		}
	}

	item := model.CartItem{
		ID:        uuid.NewString(),
		Kind:      model.LineCatalog,
		ProductID: productID,
		Quantity:  qty,
	}
	if err := s.carts.AddLine(ctx, ownerID, item); err != nil {
		return nil, err
	}
	return &item, nil
}

// AddExternalItem appends a third-party line. External items have no stable
// identity key, so quantities never merge and no stock check applies.
func (s *CartService) AddExternalItem(ctx context.Context, ownerID string, ext model.ExternalRef, qty int) (*model.CartItem, error) {
	if qty < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
	}
	if ext.Name == "" || ext.URL == "" {
		return nil, fmt.Errorf("%w: external product needs a name and url", ErrValidation)
	}
	if ext.Price <= 0 {
		return nil, fmt.Errorf("%w: external product price must be positive", ErrValidation)
	}

	item := model.CartItem{
		ID:       uuid.NewString(),
		Kind:     model.LineExternal,
		External: &ext,
		Quantity: qty,
	}
	if err := s.carts.AddLine(ctx, ownerID, item); err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateItemQuantity sets a line's quantity, re-validating stock for catalog
// lines. Stock may have moved since the item went in.
func (s *CartService) UpdateItemQuantity(ctx context.Context, ownerID, itemID string, qty int) error {
	if qty < 1 {
		return fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
	}

	cart, err := s.carts.FindByOwner(ctx, ownerID)
	if errors.Is(err, repository.ErrCartNotFound) {
		return repository.ErrItemNotFound
	}
	if err != nil {
		return err
	}

	var line *model.CartItem
	for i := range cart.Items {
		if cart.Items[i].ID == itemID {
			line = &cart.Items[i]
			break
		}
	}
	if line == nil {
		return repository.ErrItemNotFound
	}

	if line.Kind == model.LineCatalog {
		p, err := s.products.FindByID(ctx, line.ProductID)
		if errors.Is(err, repository.ErrProductNotFound) {
			return unavailableErr(line.ProductID)
		}
		if err != nil {
			return err
		}
		if p.Stock < qty {
			return insufficientStockErr(p, qty)
		}
	}

	return s.carts.SetLineQuantity(ctx, ownerID, itemID, qty)
}

func (s *CartService) RemoveItem(ctx context.Context, ownerID, itemID string) error {
	return s.carts.RemoveLine(ctx, ownerID, itemID)
}

// Clear empties the cart. Clearing an already-empty (or nonexistent) cart
// succeeds.
func (s *CartService) Clear(ctx context.Context, ownerID string) error {
	err := s.carts.Clear(ctx, ownerID)
	if errors.Is(err, repository.ErrCartNotFound) {
		return nil
	}
	return err
}

func findCatalogLine(cart *model.Cart, productID string) *model.CartItem {
	for i := range cart.Items {
		if cart.Items[i].Kind == model.LineCatalog && cart.Items[i].ProductID == productID {
			return &cart.Items[i]
		}
	}
	return nil
}
