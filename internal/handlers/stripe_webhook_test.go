package handlers_test

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"park-ticketing/internal/handlers"
	"park-ticketing/internal/logger"
	"park-ticketing/internal/models"
	"park-ticketing/internal/services"
	"park-ticketing/internal/storage"
)

const webhookSigningSecret = "whsec_test_secret"

type noopDispatcher struct{}

func (noopDispatcher) SendReservationEmail(ctx context.Context, email, reservationID string) error {
	return nil
}

type noopPublisher struct{}

func (noopPublisher) PublishReservationEvent(event *models.ReservationEvent) error { return nil }

type noopResolver struct{}

func (noopResolver) LookupEmail(ctx context.Context, customerID string) (string, error) {
	return "", nil
}

func newWebhookRouter() (*gin.Engine, *storage.InMemoryStore) {
	gin.SetMode(gin.TestMode)
	log := logger.NewLogger()
	store := storage.NewInMemoryStore()
	service := services.NewWebhookService(store, noopResolver{}, noopDispatcher{}, noopPublisher{}, nil, log)
	handler := handlers.NewStripeWebhookHandler(service, webhookSigningSecret, log)

	r := gin.New()
	r.POST("/api/v1/stripe/webhook", handler.HandleWebhook)
	return r, store
}

// signPayload builds a Stripe-Signature header the way Stripe's SDK expects:
// v1 is an HMAC-SHA256 of "<timestamp>.<payload>" keyed with the signing
// secret.
func signPayload(payload []byte, secret string) string {
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func postWebhook(router *gin.Engine, payload []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/stripe/webhook", bytes.NewReader(payload))
	if signature != "" {
		req.Header.Set("Stripe-Signature", signature)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestWebhookMissingSignature(t *testing.T) {
	router, _ := newWebhookRouter()

	w := postWebhook(router, []byte(`{}`), "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "missing signature")
}

func TestWebhookInvalidSignature(t *testing.T) {
	router, _ := newWebhookRouter()

	payload := []byte(`{"type":"checkout.session.completed"}`)
	w := postWebhook(router, payload, signPayload(payload, "whsec_wrong_secret"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid signature")
}

func TestWebhookAcceptsForeignAPIVersion(t *testing.T) {
	router, store := newWebhookRouter()

	// Stripe stamps events with the account's pinned API version, which
	// rarely matches the SDK's own pin. A correctly signed event must still
	// clear verification and reach the event-type filter.
	payload := []byte(`{"id":"evt_0","api_version":"2023-10-16","type":"payment_intent.succeeded","data":{"object":{}}}`)
	w := postWebhook(router, payload, signPayload(payload, webhookSigningSecret))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ignored", w.Body.String())
	assert.Equal(t, 0, store.CountReservations())
}

func TestWebhookIgnoresOtherEventTypes(t *testing.T) {
	router, store := newWebhookRouter()

	payload := []byte(`{"id":"evt_1","type":"payment_intent.succeeded","data":{"object":{}}}`)
	w := postWebhook(router, payload, signPayload(payload, webhookSigningSecret))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ignored", w.Body.String())
	assert.Equal(t, 0, store.CountReservations())
}

func TestWebhookProcessesCheckoutCompleted(t *testing.T) {
	router, store := newWebhookRouter()

	payload := []byte(`{
		"id": "evt_2",
		"type": "checkout.session.completed",
		"data": {
			"object": {
				"id": "cs_live_1",
				"customer_details": {"email": "client@example.com"},
				"metadata": {
					"cart": "[{\"pass\":{\"id\":\"pass-1\",\"name\":\"Pass Journée\",\"price\":12.5},\"quantity\":2}]"
				}
			}
		}
	}`)
	signature := signPayload(payload, webhookSigningSecret)

	w := postWebhook(router, payload, signature)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, services.WebhookOutcomeOK, w.Body.String())
	assert.Equal(t, 2, store.CountReservations())

	// Stripe redelivery of the same session must not duplicate reservations.
	w = postWebhook(router, payload, signature)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, services.WebhookOutcomeDuplicate, w.Body.String())
	assert.Equal(t, 2, store.CountReservations())
}
