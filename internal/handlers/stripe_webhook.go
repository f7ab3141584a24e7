package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	"park-ticketing/internal/logger"
	"park-ticketing/internal/services"
)

type StripeWebhookHandler struct {
	webhookService *services.WebhookService
	signingSecret  string
	log            *logger.Logger
}

func NewStripeWebhookHandler(webhookService *services.WebhookService, signingSecret string, log *logger.Logger) *StripeWebhookHandler {
	return &StripeWebhookHandler{
		webhookService: webhookService,
		signingSecret:  signingSecret,
		log:            log,
	}
}

// HandleWebhook verifies the Stripe signature, filters for
// checkout.session.completed and hands the session to the webhook service.
// The response body is a plain string Stripe only inspects for the status
// code: any non-2xx triggers a redelivery.
func (h *StripeWebhookHandler) HandleWebhook(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		c.String(http.StatusBadRequest, "failed to read body")
		return
	}

	signature := c.GetHeader("Stripe-Signature")
	if signature == "" {
		h.log.LogSecurity("WEBHOOK", "Missing Stripe-Signature header")
		c.String(http.StatusBadRequest, "missing signature")
		return
	}

	// Accounts pin their own API version; only the signature decides
	// authenticity here, the handler reads nothing version-sensitive from
	// the payload.
	event, err := webhook.ConstructEventWithOptions(payload, signature, h.signingSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		h.log.LogSecurity("WEBHOOK", "Signature verification failed: "+err.Error())
		c.String(http.StatusBadRequest, "invalid signature")
		return
	}

	if event.Type != stripe.EventTypeCheckoutSessionCompleted {
		h.log.Debug("WEBHOOK", "Ignoring event type "+string(event.Type))
		c.String(http.StatusOK, "ignored")
		return
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		h.log.Error("WEBHOOK", "Failed to decode checkout session: "+err.Error())
		c.String(http.StatusBadRequest, "malformed event")
		return
	}

	outcome, err := h.webhookService.HandleCheckoutCompleted(c.Request.Context(), &session)
	if err != nil {
		h.log.Error("WEBHOOK", "Processing failed for session "+session.ID+": "+err.Error())
		c.String(http.StatusInternalServerError, "processing failed")
		return
	}

	c.String(http.StatusOK, outcome)
}
