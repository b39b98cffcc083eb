package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Chen-Zehua-TP/sgvmart/internal/repository"
	"github.com/Chen-Zehua-TP/sgvmart/internal/service"
)

// respondError maps a business error to its HTTP status. Error messages
// carry entity ids and quantities, so the body is precise enough for the
// client to adjust and retry.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrCartNotFound),
		errors.Is(err, repository.ErrItemNotFound),
		errors.Is(err, repository.ErrOrderNotFound),
		errors.Is(err, repository.ErrProductNotFound),
		errors.Is(err, repository.ErrAddressNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrInsufficientStock),
		errors.Is(err, service.ErrProductUnavailable),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrInvalidTransition):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrConflict),
		errors.Is(err, repository.ErrAlreadyOwned):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// identityFrom builds the service identity from what the middleware put in
// the context. A bearer token beats a guest session.
func identityFrom(c *gin.Context) service.Identity {
	if userID := c.GetString("userID"); userID != "" {
		return service.Identity{UserID: userID}
	}
	return service.Identity{SessionID: c.GetString("sessionID")}
}
