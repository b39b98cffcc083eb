package model

import "time"

// LineKind distinguishes catalog-backed lines from third-party ones.
type LineKind string

const (
	LineCatalog  LineKind = "CATALOG"
	LineExternal LineKind = "EXTERNAL"
)

// PaymentMethodManual marks external orders that are fulfilled by hand
// ("contact us" flow) instead of going through the payment gateway.
const PaymentMethodManual = "MANUAL_PROCESSING"

type Product struct {
	ID       string  `bson:"product_id" json:"id"`
	Name     string  `bson:"name" json:"name"`
	Price    float64 `bson:"price" json:"price"`
	Stock    int     `bson:"stock" json:"stock"`
	IsActive bool    `bson:"is_active" json:"isActive"`
	ImageURL string  `bson:"image_url" json:"imageUrl"`
}

type Address struct {
	ID           string `bson:"address_id" json:"id"`
	OwnerID      string `bson:"owner_id" json:"ownerId"`
	AddressLine1 string `bson:"address_line1" json:"addressLine1"`
	City         string `bson:"city" json:"city"`
	PostalCode   string `bson:"postal_code" json:"postalCode"`
	Country      string `bson:"country" json:"country"`
}

// ExternalRef describes a product that lives on a third-party marketplace.
// There is no stock tracking for these, the price is whatever was captured
// when the item entered the system.
type ExternalRef struct {
	Name     string  `bson:"name" json:"name"`
	URL      string  `bson:"url" json:"url"`
	Price    float64 `bson:"price" json:"price"`
	ImageURL string  `bson:"image_url" json:"imageUrl"`
}

// CartItem is one line in a cart. Exactly one of ProductID / External is set,
/// according to Kind. Catalog lines carry no price: the cart total is always
// recomputed from the live catalog.
type CartItem struct {
	ID        string       `bson:"item_id" json:"id"`
	Kind      LineKind     `bson:"kind" json:"kind"`
	ProductID string       `bson:"product_id,omitempty" json:"productId,omitempty"`
	External  *ExternalRef `bson:"external,omitempty" json:"external,omitempty"`
	Quantity  int          `bson:"quantity" json:"quantity"`
	AddedAt   time.Time    `bson:"added_at" json:"addedAt"`
}

// Cart holds the prospective purchase lines of one owner. The owner key is
// either a user id or a guest session token; there is at most one cart per
// owner (unique index on owner_id).
type Cart struct {
	OwnerID   string     `bson:"owner_id" json:"ownerId"`
	Items     []CartItem `bson:"items" json:"items"`
	CreatedAt time.Time  `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updatedAt"`
}

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusShipped    Status = "SHIPPED"
	StatusDelivered  Status = "DELIVERED"
	StatusCancelled  Status = "CANCELLED"
)

// ValidStatus reports whether s is a member of the status enum.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// statusTransitions lists the allowed forward transitions. DELIVERED and
// CANCELLED are final.
var statusTransitions = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
}

// CanTransition reports whether an order may move from to next.
func CanTransition(from, next Status) bool {
	for _, s := range statusTransitions[from] {
		if s == next {
			return true
		}
	}
	return false
}

// TerminalStatus reports whether s allows no further transitions. Only
// terminal guest orders are eligible for the retention sweep.
func TerminalStatus(s Status) bool {
	return s == StatusDelivered || s == StatusCancelled
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentPaid     PaymentStatus = "PAID"
	PaymentFailed   PaymentStatus = "FAILED"
	PaymentRefunded PaymentStatus = "REFUNDED"
)

func ValidPaymentStatus(s PaymentStatus) bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}

// OrderLine is one purchased line. The unit price is captured at order time
// and never recomputed, so TotalAmount stays reproducible from the lines no
// matter what happens to the catalog afterwards.
type OrderLine struct {
	Kind      LineKind     `bson:"kind" json:"kind"`
	ProductID string       `bson:"product_id,omitempty" json:"productId,omitempty"`
	External  *ExternalRef `bson:"external,omitempty" json:"external,omitempty"`
	Quantity  int          `bson:"quantity" json:"quantity"`
	UnitPrice float64      `bson:"unit_price" json:"unitPrice"`
}

// Order is immutable once created except for Status (forward-only) and
// PaymentStatus (driven by the payment gateway). Exactly one of OwnerID /
// GuestSessionID is set at creation time; reconciliation may fill OwnerID in
// later but never clears GuestSessionID.
type Order struct {
	ID             string        `bson:"order_id" json:"id"`
	OwnerID        string        `bson:"owner_id,omitempty" json:"ownerId,omitempty"`
	GuestSessionID string        `bson:"guest_session_id,omitempty" json:"guestSessionId,omitempty"`
	AddressID      string        `bson:"address_id,omitempty" json:"addressId,omitempty"`
	Lines          []OrderLine   `bson:"lines" json:"lines"`
	TotalAmount    float64       `bson:"total_amount" json:"totalAmount"`
	PaymentMethod  string        `bson:"payment_method" json:"paymentMethod"`
	Status         Status        `bson:"status" json:"status"`
	PaymentStatus  PaymentStatus `bson:"payment_status" json:"paymentStatus"`
	IsExternal     bool          `bson:"is_external" json:"isExternal"`
	CreatedAt      time.Time     `bson:"created_at" json:"createdAt"`
	UpdatedAt      time.Time     `bson:"updated_at" json:"updatedAt"`
}
