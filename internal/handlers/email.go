package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"park-ticketing/internal/services"
	"park-ticketing/internal/storage"
)

type EmailHandler struct {
	emailService *services.EmailService
}

func NewEmailHandler(emailService *services.EmailService) *EmailHandler {
	return &EmailHandler{
		emailService: emailService,
	}
}

type emailRequestBody struct {
	Email string `json:"email" binding:"required"`
}

type emailSendBody struct {
	Email         string `json:"email" binding:"required"`
	ReservationID string `json:"reservationId" binding:"required"`
}

// RequestEmail resends the confirmation for the caller's most recent
// reservation. An unknown email is {found:false}, not an error, so the
// endpoint does not leak which addresses hold reservations beyond the send
// itself.
func (h *EmailHandler) RequestEmail(c *gin.Context) {
	var body emailRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email is required"})
		return
	}

	found, sent, err := h.emailService.RequestReservationEmail(c.Request.Context(), body.Email)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidEmail):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrEmailProviderFailed):
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	if !found {
		c.JSON(http.StatusOK, gin.H{"found": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"found": true, "sent": sent})
}

// SendEmail delivers the confirmation for one reservation. Service-role
// callers only (the webhook flow and back-office tooling).
func (h *EmailHandler) SendEmail(c *gin.Context) {
	var body emailSendBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and reservationId are required"})
		return
	}

	err := h.emailService.SendReservationEmail(c.Request.Context(), body.Email, body.ReservationID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidEmail), errors.Is(err, services.ErrMissingReservationID):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, storage.ErrReservationNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrEmailProviderFailed):
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"sent": true})
}
