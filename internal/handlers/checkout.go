package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"park-ticketing/internal/models"
	"park-ticketing/internal/services"
)

type CheckoutHandler struct {
	checkoutService *services.CheckoutService
}

func NewCheckoutHandler(checkoutService *services.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
	}
}

// CreateSession answers the storefront's checkout request with the hosted
// payment page URL. Responses follow the storefront contract: {url} on
// success, {error} otherwise.
func (h *CheckoutHandler) CreateSession(c *gin.Context) {
	var req models.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}

	origin := c.GetHeader("Origin")
	if origin == "" {
		scheme := "https"
		if c.Request.TLS == nil {
			scheme = "http"
		}
		origin = scheme + "://" + c.Request.Host
	}

	url, err := h.checkoutService.CreateSession(c.Request.Context(), req, origin)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyCart), errors.Is(err, services.ErrMissingEmail):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}
