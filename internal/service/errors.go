package service

import (
	"errors"
	"fmt"

	"github.com/Chen-Zehua-TP/sgvmart/internal/auth"
	"github.com/Chen-Zehua-TP/sgvmart/internal/model"
)

// Business errors exported for controllers. Repository sentinels
// (ErrProductNotFound and friends) pass through untouched; everything here is
// wrapped with enough context (ids, quantities) for the caller to render a
// precise message.
var (
	ErrValidation         = errors.New("invalid input")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrProductUnavailable = errors.New("product is not available")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrInvalidStatus      = errors.New("invalid order status")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrConflict           = errors.New("conflict")
)

func insufficientStockErr(p *model.Product, requested int) error {
	return fmt.Errorf("%w for %s: requested %d, available %d",
		ErrInsufficientStock, p.Name, requested, p.Stock)
}

func unavailableErr(productID string) error {
	return fmt.Errorf("%w: product %s", ErrProductUnavailable, productID)
}

// Identity is what the identity collaborator hands us per request: an
// authenticated user id or a guest session token, never both.
type Identity struct {
	UserID    string
	SessionID string
}

func (id Identity) IsGuest() bool {
	return id.UserID == ""
}

// OwnerKey is the cart owner key: the user id for members, the session token
// for guests.
func (id Identity) OwnerKey() string {
	if id.UserID != "" {
		return id.UserID
	}
	return id.SessionID
}

func (id Identity) Validate() error {
	if id.UserID != "" && id.SessionID != "" {
		return fmt.Errorf("%w: both user and guest session supplied", ErrValidation)
	}
	if id.UserID == "" {
		if id.SessionID == "" {
			return fmt.Errorf("%w: missing identity", ErrValidation)
		}
		if !auth.ValidSessionToken(id.SessionID) {
			return fmt.Errorf("%w: malformed session token", ErrValidation)
		}
	}
	return nil
}
