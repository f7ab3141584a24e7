package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stripe/stripe-go/v82"

	"park-ticketing/internal/config"
	"park-ticketing/internal/handlers"
	"park-ticketing/internal/logger"
	"park-ticketing/internal/services"
)

type stubSessionCreator struct {
	calls int
}

func (s *stubSessionCreator) Create(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	s.calls++
	return &stripe.CheckoutSession{ID: "cs_test", URL: "https://checkout.stripe.com/pay/cs_test"}, nil
}

func newCheckoutRouter(creator services.SessionCreator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	service := services.NewCheckoutServiceWithCreator(creator, config.StripeConfig{
		SecretKey:   "sk_test",
		SuccessPath: "/confirmation",
		CancelPath:  "/panier",
	}, logger.NewLogger())
	handler := handlers.NewCheckoutHandler(service)

	r := gin.New()
	r.POST("/api/v1/checkout/session", handler.CreateSession)
	return r
}

func TestCreateSessionReturnsHostedURL(t *testing.T) {
	creator := &stubSessionCreator{}
	router := newCheckoutRouter(creator)

	body := `{"cartItems":[{"pass":{"id":"pass-1","name":"Pass Journée","price":12.5},"quantity":1}],"customer":{"email":"client@example.com"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout/session", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "https://parc.example.com")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, creator.calls)
	assert.Contains(t, w.Body.String(), `"url":"https://checkout.stripe.com/pay/cs_test"`)
}

func TestCreateSessionEmptyCartRejectedBeforeProvider(t *testing.T) {
	creator := &stubSessionCreator{}
	router := newCheckoutRouter(creator)

	body := `{"cartItems":[],"customer":{"email":"client@example.com"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout/session", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, creator.calls)
	assert.Contains(t, w.Body.String(), "error")
}

func TestCreateSessionMalformedPayload(t *testing.T) {
	creator := &stubSessionCreator{}
	router := newCheckoutRouter(creator)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout/session", strings.NewReader("{not-json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, creator.calls)
}
