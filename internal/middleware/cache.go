package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

const (
	responseMetaKey   = "response_meta"
	cacheHitKey       = "cache_hit"
	processingTimeKey = "processing_time_ms"
	cacheHeader       = "X-Cache"
)

// WithResponseMeta gives each request a metadata map that handlers fill and the envelope echoes.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(responseMetaKey, map[string]interface{}{"started_at": time.Now()})
		c.Next()
	}
}

// SetCacheHit records whether the payload came from cache and mirrors it in the X-Cache header.
func SetCacheHit(c *gin.Context, hit bool) {
	ensureMeta(c)[cacheHitKey] = hit
	if hit {
		c.Header(cacheHeader, "HIT")
	} else {
		c.Header(cacheHeader, "MISS")
	}
}

// ExtractMeta returns the client-facing metadata with processing time filled in.
func ExtractMeta(c *gin.Context) map[string]interface{} {
	meta := ensureMeta(c)
	out := make(map[string]interface{}, len(meta))
	for k, v := range meta {
		if k == "started_at" {
			if start, ok := v.(time.Time); ok {
				out[processingTimeKey] = time.Since(start).Milliseconds()
			}
			continue
		}
		out[k] = v
	}
	return out
}

func ensureMeta(c *gin.Context) map[string]interface{} {
	if meta, exists := c.Get(responseMetaKey); exists {
		if typed, ok := meta.(map[string]interface{}); ok {
			return typed
		}
	}
	meta := map[string]interface{}{"started_at": time.Now()}
	c.Set(responseMetaKey, meta)
	return meta
}
