package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"park-ticketing/internal/handlers"
	"park-ticketing/internal/logger"
	"park-ticketing/internal/services"
	"park-ticketing/internal/storage"
)

func newCartRouter() (*gin.Engine, *storage.InMemoryStore) {
	gin.SetMode(gin.TestMode)
	store := storage.NewInMemoryStore()
	handler := handlers.NewCartHandler(services.NewCartService(store, logger.NewLogger()))

	r := gin.New()
	r.POST("/api/v1/cart/items", handler.AddItem)
	r.GET("/api/v1/cart/:session", handler.ListItems)
	return r, store
}

func postCartItem(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAddItemInvalidQuantity(t *testing.T) {
	router, _ := newCartRouter()

	w := postCartItem(router, `{"sessionId":"sess","passId":"pass-1","quantity":0}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)
}

func TestAddItemSoldOutPass(t *testing.T) {
	router, store := newCartRouter()
	empty := 0
	store.SetPassStock("pass-1", &empty)

	w := postCartItem(router, `{"sessionId":"sess","passId":"pass-1","quantity":1}`)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "stock insuffisant")
}

func TestAddItemThenList(t *testing.T) {
	router, _ := newCartRouter()

	w := postCartItem(router, `{"sessionId":"sess","passId":"pass-1","quantity":2}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Ajouté au panier !")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart/sess", nil)
	list := httptest.NewRecorder()
	router.ServeHTTP(list, req)

	assert.Equal(t, http.StatusOK, list.Code)
	assert.Contains(t, list.Body.String(), `"quantity":2`)
}
