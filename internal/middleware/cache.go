package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

const (
	responseMetaKey = "response_meta"
	cacheHitKey     = "cache_hit"
)

// WithResponseMeta seeds a metadata map on the request context and stamps
// the processing time once the handler chain finishes.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Set(responseMetaKey, map[string]interface{}{})
		c.Next()

		meta := metaFor(c, true)
		if _, ok := meta["processing_time_ms"]; !ok {
			meta["processing_time_ms"] = time.Since(start).Milliseconds()
		}
	}
}

// SetCacheHit notes whether the response was served from cache.
func SetCacheHit(c *gin.Context, hit bool) {
	metaFor(c, true)[cacheHitKey] = hit
}

// ExtractMeta returns the metadata map for the request, or nil when none
// was initialised.
func ExtractMeta(c *gin.Context) map[string]interface{} {
	if c == nil {
		return nil
	}
	return metaFor(c, false)
}

func metaFor(c *gin.Context, create bool) map[string]interface{} {
	if c == nil {
		return map[string]interface{}{}
	}
	if v, ok := c.Get(responseMetaKey); ok {
		if meta, ok := v.(map[string]interface{}); ok {
			return meta
		}
	}
	if !create {
		return nil
	}
	meta := make(map[string]interface{})
	c.Set(responseMetaKey, meta)
	return meta
}
