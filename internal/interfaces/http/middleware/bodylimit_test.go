package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestBodyLimit(t *testing.T) {
	t.Run("allows request within limit", func(t *testing.T) {
		router := gin.New()
		router.Use(BodyLimit(1024))
		router.POST("/api/v1/order-status", func(c *gin.Context) {
			c.Status(http.StatusOK)
		})

		body := bytes.NewBufferString(`{"order_number":"ABC123","email":"a@example.com"}`)
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/order-status", body)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("rejects oversized request", func(t *testing.T) {
		router := gin.New()
		router.Use(BodyLimit(64))
		router.POST("/api/v1/order-status", func(c *gin.Context) {
			c.Status(http.StatusOK)
		})

		body := strings.NewReader(strings.Repeat("x", 1024))
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/order-status", body)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.Contains(t, w.Body.String(), "ERR_VALIDATION")
	})
}
