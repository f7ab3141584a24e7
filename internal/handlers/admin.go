package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"park-ticketing/internal/redis"
	"park-ticketing/internal/services"
	"park-ticketing/internal/utils"
)

// AdminHandler backs the provider back-office: the live validation counter
// and the communication blast.
type AdminHandler struct {
	counter      *redis.Counter
	emailService *services.EmailService
}

func NewAdminHandler(counter *redis.Counter, emailService *services.EmailService) *AdminHandler {
	return &AdminHandler{
		counter:      counter,
		emailService: emailService,
	}
}

func (h *AdminHandler) GetValidationCount(c *gin.Context) {
	day := c.Query("day")
	if day == "" {
		day = time.Now().UTC().Format("2006-01-02")
	}

	count, err := h.counter.Count(c.Request.Context(), day)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to read validation counter", err.Error()))
		return
	}

	c.JSON(http.StatusOK, utils.SuccessResponse("Validation count retrieved", gin.H{
		"day":   day,
		"count": count,
	}))
}

// RecordValidation registers one scanned ticket at the entrance.
func (h *AdminHandler) RecordValidation(c *gin.Context) {
	count, err := h.counter.Increment(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to record validation", err.Error()))
		return
	}

	c.JSON(http.StatusOK, utils.SuccessResponse("Validation recorded", gin.H{"count": count}))
}

type blastRequest struct {
	Subject    string   `json:"subject" binding:"required"`
	HTML       string   `json:"html" binding:"required"`
	Recipients []string `json:"recipients" binding:"required"`
}

func (h *AdminHandler) SendBlast(c *gin.Context) {
	var req blastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request payload", err.Error()))
		return
	}
	if len(req.Recipients) == 0 {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("At least one recipient is required", ""))
		return
	}

	sent, failed := h.emailService.SendBlast(c.Request.Context(), req.Subject, req.HTML, req.Recipients)
	c.JSON(http.StatusOK, utils.SuccessResponse("Blast processed", gin.H{
		"sent":   sent,
		"failed": failed,
	}))
}
