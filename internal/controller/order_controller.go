package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Chen-Zehua-TP/sgvmart/internal/auth"
	"github.com/Chen-Zehua-TP/sgvmart/internal/dto"
	"github.com/Chen-Zehua-TP/sgvmart/internal/model"
	"github.com/Chen-Zehua-TP/sgvmart/internal/service"
)

type OrderController struct {
	Service        *service.OrderService
	Reconciliation *service.ReconciliationService
}

func NewOrderController(s *service.OrderService, r *service.ReconciliationService) *OrderController {
	return &OrderController{Service: s, Reconciliation: r}
}

// POST /session — mints a guest session token. The client holds on to it and
// sends it back in the X-Session-Id header.
func (ctl *OrderController) NewSession(c *gin.Context) {
	c.JSON(http.StatusCreated, dto.SessionResponse{SessionID: auth.NewSessionToken()})
}

// GET /orders
func (ctl *OrderController) GetOrders(c *gin.Context) {
	orders, err := ctl.Service.GetOrders(c.Request.Context(), identityFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// GET /orders/:orderId
func (ctl *OrderController) GetOrder(c *gin.Context) {
	order, err := ctl.Service.GetOrder(c.Request.Context(), identityFrom(c), c.Param("orderId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

// POST /orders — converts the caller's cart into an order.
func (ctl *OrderController) CreateOrder(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := ctl.Service.CreateOrder(c.Request.Context(), identityFrom(c), req.AddressID, req.PaymentMethod)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"order": order})
}

// POST /orders/external — direct order for a third-party product.
func (ctl *OrderController) CreateExternalOrder(c *gin.Context) {
	var req dto.AddExternalItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	qty := req.Quantity
	if qty == 0 {
		qty = 1
	}

	order, err := ctl.Service.CreateExternalOrder(
		c.Request.Context(),
		identityFrom(c),
		model.ExternalRef{
			Name:     req.ProductName,
			URL:      req.ProductURL,
			Price:    req.ProductPrice,
			ImageURL: req.ProductImageURL,
		},
		qty,
	)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"order": order})
}

// POST /orders/migrate — reassigns the caller's guest orders to their
// account. Safe to call more than once; repeats migrate nothing.
func (ctl *OrderController) MigrateGuestOrders(c *gin.Context) {
	var req dto.MigrateOrdersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	count, err := ctl.Reconciliation.MigrateGuestOrders(c.Request.Context(), c.GetString("userID"), req.SessionID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MigrateOrdersResponse{MigratedCount: count})
}

// GET /admin/orders
func (ctl *OrderController) GetAllOrders(c *gin.Context) {
	orders, err := ctl.Service.GetAllOrders(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// PUT /admin/orders/:orderId/status — admin only; the route guard is the
// authorization boundary, the service trusts its caller.
func (ctl *OrderController) UpdateStatus(c *gin.Context) {
	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := ctl.Service.UpdateStatus(c.Request.Context(), c.Param("orderId"), model.Status(req.Status))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "status updated"})
}
