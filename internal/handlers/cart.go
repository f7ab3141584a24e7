package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"park-ticketing/internal/models"
	"park-ticketing/internal/services"
	"park-ticketing/internal/storage"
	"park-ticketing/internal/utils"
)

type CartHandler struct {
	cartService *services.CartService
}

func NewCartHandler(cartService *services.CartService) *CartHandler {
	return &CartHandler{
		cartService: cartService,
	}
}

// requestNotifier captures the cart service's user-facing notification so it
// can ride back in the HTTP response.
type requestNotifier struct {
	message string
	isError bool
}

func (n *requestNotifier) Success(message string) {
	n.message = message
	n.isError = false
}

func (n *requestNotifier) Error(message string) {
	n.message = message
	n.isError = true
}

func (h *CartHandler) AddItem(c *gin.Context) {
	var req models.AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request payload", err.Error()))
		return
	}

	notifier := &requestNotifier{}
	err := h.cartService.AddToCart(c.Request.Context(), req, notifier)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, services.ErrInvalidQuantity):
			status = http.StatusBadRequest
		case errors.Is(err, services.ErrPassSoldOut),
			errors.Is(err, services.ErrActivityFull),
			errors.Is(err, services.ErrSlotFull):
			status = http.StatusConflict
		}
		c.JSON(status, utils.ErrorResponse(notifier.message, err.Error()))
		return
	}

	c.JSON(http.StatusOK, utils.SuccessResponse(notifier.message, nil))
}

func (h *CartHandler) ListItems(c *gin.Context) {
	sessionID := c.Param("session")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Session ID is required", ""))
		return
	}

	items, err := h.cartService.ListCart(c.Request.Context(), sessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to list cart", err.Error()))
		return
	}

	c.JSON(http.StatusOK, utils.SuccessResponse("Cart retrieved", items))
}

func (h *CartHandler) RemoveItem(c *gin.Context) {
	sessionID := c.Param("session")
	itemID := c.Param("id")
	if sessionID == "" || itemID == "" {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Session ID and item ID are required", ""))
		return
	}

	if err := h.cartService.RemoveFromCart(c.Request.Context(), sessionID, itemID); err != nil {
		if errors.Is(err, storage.ErrCartItemNotFound) {
			c.JSON(http.StatusNotFound, utils.ErrorResponse("Cart item not found", err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to remove cart item", err.Error()))
		return
	}

	c.JSON(http.StatusOK, utils.SuccessResponse("Item removed", nil))
}

func (h *CartHandler) ClearCart(c *gin.Context) {
	sessionID := c.Param("session")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Session ID is required", ""))
		return
	}

	if err := h.cartService.ClearCart(c.Request.Context(), sessionID); err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to clear cart", err.Error()))
		return
	}

	c.JSON(http.StatusOK, utils.SuccessResponse("Cart cleared", nil))
}
