package cors

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func serve(origins []string, method, origin string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(New(origins))
	r.Any("/lessons", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, "/lessons", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestCORSAllowsListedOrigin(t *testing.T) {
	w := serve([]string{"http://timetable.test/"}, http.MethodGet, "http://timetable.test")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "http://timetable.test", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSRejectsUnknownOrigin(t *testing.T) {
	w := serve([]string{"http://timetable.test"}, http.MethodGet, "http://evil.test")
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSPreflight(t *testing.T) {
	w := serve(nil, http.MethodOptions, "http://any.test")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://any.test", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSWildcardAndExposedHeaders(t *testing.T) {
	w := serve([]string{"*"}, http.MethodGet, "http://Any.test")
	assert.Equal(t, "http://Any.test", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), "X-Removed-Count")
	assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), "X-Cache")
}

func TestCORSOriginMatchIsCaseInsensitive(t *testing.T) {
	w := serve([]string{"http://Timetable.test"}, http.MethodGet, "http://timetable.test/")
	assert.Equal(t, "http://timetable.test/", w.Header().Get("Access-Control-Allow-Origin"))
}
