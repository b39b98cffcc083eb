package dto

// Request bodies bound by the gin controllers.

type AddCatalogItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

type AddExternalItemRequest struct {
	ProductName     string  `json:"productName" binding:"required"`
	ProductURL      string  `json:"productUrl" binding:"required,url"`
	ProductPrice    float64 `json:"productPrice" binding:"required,gt=0"`
	ProductImageURL string  `json:"productImageUrl"`
	Quantity        int     `json:"quantity" binding:"omitempty,min=1"`
}

type UpdateQuantityRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

type CreateOrderRequest struct {
	AddressID     string `json:"addressId"`
	PaymentMethod string `json:"paymentMethod" binding:"required"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type MigrateOrdersRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
}

type MigrateOrdersResponse struct {
	MigratedCount int `json:"migratedCount"`
}

type SessionResponse struct {
	SessionID string `json:"sessionId"`
}
