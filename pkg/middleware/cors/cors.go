package cors

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	allowHeaders = "Content-Type, X-Requested-With, X-Request-ID"
	allowMethods = "GET, POST, PATCH, DELETE, OPTIONS"
	maxAge       = "600"
)

// exposed lists response headers browsers may read: request tracing, report cache
// status, the bulk cancellation count and export filenames.
var exposed = []string{"X-Request-ID", "X-Cache", "X-Removed-Count", "Content-Disposition"}

// New returns a CORS middleware. An empty list, or a "*" entry, allows any origin.
func New(allowedOrigins []string) gin.HandlerFunc {
	policy := newPolicy(allowedOrigins)
	exposeHeaders := strings.Join(exposed, ", ")

	return func(c *gin.Context) {
		h := c.Writer.Header()
		if origin := c.GetHeader("Origin"); origin != "" {
			if policy.allows(origin) {
				h.Set("Access-Control-Allow-Origin", origin)
			}
		} else if policy.any {
			h.Set("Access-Control-Allow-Origin", "*")
		}
		h.Add("Vary", "Origin")
		h.Set("Access-Control-Allow-Headers", allowHeaders)
		h.Set("Access-Control-Expose-Headers", exposeHeaders)
		h.Set("Access-Control-Allow-Methods", allowMethods)
		h.Set("Access-Control-Max-Age", maxAge)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

type policy struct {
	any     bool
	origins map[string]struct{}
}

func newPolicy(allowedOrigins []string) policy {
	p := policy{any: len(allowedOrigins) == 0, origins: make(map[string]struct{}, len(allowedOrigins))}
	for _, origin := range allowedOrigins {
		origin = normalize(origin)
		if origin == "*" {
			p.any = true
			continue
		}
		p.origins[origin] = struct{}{}
	}
	return p
}

func (p policy) allows(origin string) bool {
	if p.any {
		return true
	}
	_, ok := p.origins[normalize(origin)]
	return ok
}

func normalize(origin string) string {
	return strings.ToLower(strings.TrimRight(strings.TrimSpace(origin), "/"))
}
