package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Chen-Zehua-TP/sgvmart/internal/dto"
	"github.com/Chen-Zehua-TP/sgvmart/internal/model"
	"github.com/Chen-Zehua-TP/sgvmart/internal/service"
)

type CartController struct {
	Service *service.CartService
}

func NewCartController(s *service.CartService) *CartController {
	return &CartController{Service: s}
}

// GET /cart
func (ctl *CartController) GetCart(c *gin.Context) {
	view, err := ctl.Service.GetCart(c.Request.Context(), identityFrom(c).OwnerKey())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// POST /cart/items
func (ctl *CartController) AddItem(c *gin.Context) {
	var req dto.AddCatalogItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := ctl.Service.AddCatalogItem(
		c.Request.Context(),
		identityFrom(c).OwnerKey(),
		req.ProductID,
		req.Quantity,
	)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// POST /cart/items/external
func (ctl *CartController) AddExternalItem(c *gin.Context) {
	var req dto.AddExternalItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	qty := req.Quantity
	if qty == 0 {
		qty = 1
	}

	item, err := ctl.Service.AddExternalItem(
		c.Request.Context(),
		identityFrom(c).OwnerKey(),
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
	c.JSON(http.StatusCreated, item)
}

// PUT /cart/items/:itemId
func (ctl *CartController) UpdateItem(c *gin.Context) {
	var req dto.UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := ctl.Service.UpdateItemQuantity(
		c.Request.Context(),
		identityFrom(c).OwnerKey(),
		c.Param("itemId"),
		req.Quantity,
	)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "quantity updated"})
}

// DELETE /cart/items/:itemId
func (ctl *CartController) RemoveItem(c *gin.Context) {
	err := ctl.Service.RemoveItem(c.Request.Context(), identityFrom(c).OwnerKey(), c.Param("itemId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "item removed"})
}

// DELETE /cart
func (ctl *CartController) ClearCart(c *gin.Context) {
	if err := ctl.Service.Clear(c.Request.Context(), identityFrom(c).OwnerKey()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "cart cleared"})
}
