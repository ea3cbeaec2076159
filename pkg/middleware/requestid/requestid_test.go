package requestid

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, Value(c))
	})
	return r
}

func TestMiddlewareGeneratesID(t *testing.T) {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/ping", nil)
	newRouter().ServeHTTP(w, req)

	id := w.Header().Get(headerKey)
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, id, w.Body.String())
}

func TestMiddlewareReusesIncomingID(t *testing.T) {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(headerKey, "abc-123")
	newRouter().ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Header().Get(headerKey))
}

func TestMiddlewareReplacesOversizedID(t *testing.T) {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(headerKey, strings.Repeat("x", maxIDLength+1))
	newRouter().ServeHTTP(w, req)

	assert.Len(t, w.Header().Get(headerKey), 36)
}

func TestMiddlewareReplacesNonPrintableID(t *testing.T) {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(headerKey, "bad id\t")
	newRouter().ServeHTTP(w, req)

	assert.NotEqual(t, "bad id\t", w.Header().Get(headerKey))
	assert.Len(t, w.Header().Get(headerKey), 36)
}

func TestFromContextSeesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	r.GET("/ctx", func(c *gin.Context) {
		c.String(http.StatusOK, FromContext(c.Request.Context()))
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/ctx", nil)
	req.Header.Set(headerKey, "lesson-trace-1")
	r.ServeHTTP(w, req)

	assert.Equal(t, "lesson-trace-1", w.Body.String())
	assert.Empty(t, FromContext(context.Background()))
}
